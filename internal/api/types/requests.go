package types

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=admin chief_engineer executive_engineer junior_engineer viewer"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AnalyticsQuery carries the filter parameters shared by the analytics
// endpoints. Free-text filters are length-bounded; enums are closed; numeric
// ranges are clamped later by the filter builder rather than rejected.
type AnalyticsQuery struct {
	TimeRange      int    `json:"timeRange" validate:"omitempty,gte=0"`
	IncludeArchive bool   `json:"includeArchive"`
	Period         string `json:"period" validate:"omitempty,oneof=daily weekly monthly"`
	Periods        int    `json:"periods" validate:"omitempty,gte=0"`
	Months         int    `json:"months" validate:"omitempty,gte=0"`
	GroupBy        string `json:"groupBy" validate:"omitempty,oneof=user district status fund contractor"`
	Category       string `json:"category" validate:"omitempty,oneof=road bridge building water_supply irrigation electrical"`
	Status         string `json:"status" validate:"omitempty,oneof=draft approved ongoing completed"`
	Priority       string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	District       string `json:"district" validate:"omitempty,min=2,max=100"`
	Fund           string `json:"fund" validate:"omitempty,min=2,max=200"`
	Contractor     string `json:"contractor" validate:"omitempty,min=2,max=200"`
	MinValue       string `json:"minValue" validate:"omitempty,numeric"`
	MaxValue       string `json:"maxValue" validate:"omitempty,numeric"`
	SortBy         string `json:"sortBy" validate:"omitempty,max=64"`
	SortDir        string `json:"sortDir"`
	Limit          int    `json:"limit" validate:"omitempty,gte=0"`
}
