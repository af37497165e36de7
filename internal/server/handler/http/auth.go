// Package http provides the HTTP handlers of the auth gateway.
package http

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/hajimigate/internal/middleware"
	"github.com/atinyakov/hajimigate/internal/models"
	"github.com/atinyakov/hajimigate/internal/service"
)

// AuthService defines the gateway operations required by the HTTP handlers.
type AuthService interface {
	// Login checks password and returns a classified error on failure.
	Login(ctx context.Context, password, clientIP string) (models.LoginResponse, error)
	// Logout records the logout of clientIP.
	Logout(ctx context.Context, clientIP string) (models.LogoutResponse, error)
	// Status reports the authentication configuration.
	Status(ctx context.Context) models.AuthStatus
}

// AuthHandler handles HTTP requests for login, logout and status.
type AuthHandler struct {
	// AuthService performs the underlying gateway operations.
	AuthService AuthService
	// Logger receives internal faults. May be nil.
	Logger *zap.Logger
}

const (
	msgInvalidRequest = "invalid request"
	msgInternal       = "internal server error"
)

// Login handles POST /api/auth/login.
// It expects a JSON body with a "password" field.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	resp, err := h.AuthService.Login(r.Context(), req.Password, middleware.ClientIP(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	resp, err := h.AuthService.Logout(r.Context(), middleware.ClientIP(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Status handles GET /api/auth/status.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.AuthService.Status(r.Context()))
}

// fail maps a gateway error to its HTTP status. Internal fault detail is
// logged and never written to the client.
func (h *AuthHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch service.Kind(err) {
	case service.KindEmptyCredential:
		writeError(w, http.StatusBadRequest, service.ErrEmptyCredential.Error())
	case service.KindBadCredential:
		writeError(w, http.StatusUnauthorized, service.ErrBadCredential.Error())
	default:
		if h.Logger != nil {
			h.Logger.Error("auth request failed",
				zap.String("path", r.URL.Path),
				zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
				zap.Error(err),
			)
		}
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, models.ErrorResponse{Detail: detail})
}
