package types

import "time"

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// FieldError is one violated input constraint. Validation failures return a
// list of these, one per field, never a single collapsed message. The shape
// is part of the client contract.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value"`
}

type Meta struct {
	RequestID   string     `json:"request_id,omitempty"`
	Role        string     `json:"role,omitempty"`
	WindowStart *time.Time `json:"window_start,omitempty"`
	WindowEnd   *time.Time `json:"window_end,omitempty"`
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
	Page        int        `json:"page,omitempty"`
	PageSize    int        `json:"page_size,omitempty"`
	Total       int64      `json:"total,omitempty"`
}
