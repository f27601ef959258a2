package types

import appErr "github.com/infratrack/engine/pkg/errors"

// FromAppError converts an application error into the wire error shape.
// Internal detail is only attached when includeDetails is set (non-production
// environments); clients otherwise get the stable code and message.
func FromAppError(err error, includeDetails bool) *APIError {
	if err == nil {
		return nil
	}
	if e, ok := err.(*appErr.AppError); ok {
		out := &APIError{Code: string(e.Code), Message: e.Message}
		if includeDetails && e.Err != nil {
			out.Details = e.Err.Error()
		}
		return out
	}
	out := &APIError{Code: string(appErr.CodeUnknown), Message: "internal error"}
	if includeDetails {
		out.Details = err.Error()
	}
	return out
}
