package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"nodeguard-platform/internal/logger"
	"nodeguard-platform/internal/middleware"
	"nodeguard-platform/internal/services"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	logger  *logger.Logger
	authSvc services.AuthenticationService
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(log *logger.Logger, authSvc services.AuthenticationService) *AuthHandler {
	return &AuthHandler{
		logger:  log,
		authSvc: authSvc,
	}
}

// RegisterRoutes registers authentication routes
func (h *AuthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/auth/login", h.HandleLogin).Methods("POST")
	router.HandleFunc("/api/v1/auth/me", h.HandleCurrentUser).Methods("GET")
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
}

// HandleLogin authenticates a user and returns a JWT
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	token, user, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		// Credential and account-state failures all look the same to
		// the caller.
		switch {
		case errors.Is(err, services.ErrInvalidCredentials),
			errors.Is(err, services.ErrUserNotFound),
			errors.Is(err, services.ErrUserDisabled):
			writeErrorResponse(h.logger, w, http.StatusUnauthorized, "Invalid credentials", nil)
		default:
			writeErrorResponse(h.logger, w, http.StatusInternalServerError, "Login failed", err)
		}
		return
	}

	user.PasswordHash = ""
	writeJSONResponse(w, http.StatusOK, LoginResponse{
		Token: token,
		User:  user,
	})
}

// HandleCurrentUser returns the authenticated caller's identity
func (h *AuthHandler) HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeErrorResponse(h.logger, w, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	writeJSONResponse(w, http.StatusOK, user)
}
