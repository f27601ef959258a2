package validators

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/infratrack/engine/internal/api/types"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// New returns the shared validator. Struct validation collects every failed
// constraint, not just the first.
func New() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
	})
	return instance
}

// FieldErrors converts a validation failure into the wire shape: one entry
// per violated constraint, carrying the JSON-ish field name, a readable
// message, and the offending value.
func FieldErrors(err error) []types.FieldError {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []types.FieldError{{Field: "", Message: err.Error()}}
	}
	out := make([]types.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, types.FieldError{
			Field:   lowerFirst(fe.Field()),
			Message: message(fe),
			Value:   fmt.Sprintf("%v", fe.Value()),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be %s or greater", fe.Param())
	case "lte":
		return fmt.Sprintf("must be %s or less", fe.Param())
	case "numeric":
		return "must be numeric"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
