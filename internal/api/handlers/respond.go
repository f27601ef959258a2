package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/infratrack/engine/internal/api/types"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error, includeDetails bool) {
	writeJSON(w, status, types.APIResponse{Success: false, Error: types.FromAppError(err, includeDetails)})
}

func writeErrorStr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.APIResponse{Success: false, Error: &types.APIError{Code: "invalid", Message: msg}})
}

// writeValidationErrors returns the 400 contract: a structured list with one
// entry per violated constraint.
func writeValidationErrors(w http.ResponseWriter, errs []types.FieldError) {
	writeJSON(w, http.StatusBadRequest, types.APIResponse{
		Success: false,
		Error:   &types.APIError{Code: "invalid", Message: "validation failed"},
		Errors:  errs,
	})
}
