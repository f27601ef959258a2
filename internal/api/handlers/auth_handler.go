package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/infratrack/engine/internal/api/types"
	"github.com/infratrack/engine/internal/api/validators"
	"github.com/infratrack/engine/internal/models"
	"github.com/infratrack/engine/internal/services"
)

type AuthHandler struct {
	auth           services.AuthService
	includeDetails bool
}

func NewAuthHandler(auth services.AuthService, includeDetails bool) *AuthHandler {
	return &AuthHandler{auth: auth, includeDetails: includeDetails}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validators.New().Struct(req); err != nil {
		writeValidationErrors(w, validators.FieldErrors(err))
		return
	}

	u, err := h.auth.Register(r.Context(), req.Email, req.Password, req.Name, models.Role(req.Role))
	if err != nil {
		writeErrorStr(w, http.StatusConflict, "email already exists")
		return
	}

	writeJSON(w, http.StatusCreated, types.APIResponse{
		Success: true,
		Data: map[string]any{
			"id":    u.ID,
			"email": u.Email,
			"name":  u.Name,
			"role":  u.Role,
		},
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validators.New().Struct(req); err != nil {
		writeValidationErrors(w, validators.FieldErrors(err))
		return
	}

	token, u, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeErrorStr(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	writeJSON(w, http.StatusOK, types.APIResponse{
		Success: true,
		Data: map[string]any{
			"access_token": token,
			"token_type":   "Bearer",
			"expires_in":   86400,
			"user": map[string]any{
				"id":    u.ID,
				"email": u.Email,
				"name":  u.Name,
				"role":  u.Role,
			},
		},
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true})
}
