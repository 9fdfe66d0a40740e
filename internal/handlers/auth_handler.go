package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/demobank/backend/internal/middleware"
	"github.com/demobank/backend/internal/models"
	"github.com/demobank/backend/internal/services"
	"go.uber.org/zap"
)

// Authenticator is implemented by services.AuthService.
type Authenticator interface {
	Authenticate(ctx context.Context, username, secret string) (*models.User, error)
	IssueToken(user *models.User) (string, time.Time, error)
	ParseToken(token string) (*services.Claims, error)
	Revoke(ctx context.Context, claims *services.Claims) error
}

type AuthHandler struct {
	service   Authenticator
	validator *services.ValidationHelper
	logger    *zap.Logger
}

func NewAuthHandler(service Authenticator, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service:   service,
		validator: services.NewValidationHelper(),
		logger:    logger,
	}
}

// Login handles user authentication
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.LoginRequest true "Login request"
// @Success 200 {object} services.AuthResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		sendDecodeError(w, err)
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if errors.Is(err, services.ErrAuthFailed) {
		services.SendErrorResponse(w, "Invalid credentials", http.StatusUnauthorized, nil)
		return
	}
	if err != nil {
		h.logger.Error("login failed", zap.Error(err))
		services.SendErrorResponse(w, "An Internal Error Occurred", http.StatusInternalServerError, nil)
		return
	}

	token, expiresAt, err := h.service.IssueToken(user)
	if err != nil {
		h.logger.Error("token issuance failed", zap.Int64("user_id", user.ID), zap.Error(err))
		services.SendErrorResponse(w, "Failed to generate token", http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, http.StatusOK, services.AuthResponse{Token: token, ExpiresAt: expiresAt, User: *user})
}

// Logout blacklists the presented token. It succeeds even without a valid
// token so that clients can always drop their session.
// @Summary Logout user
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := middleware.BearerToken(r); ok {
		if claims, err := h.service.ParseToken(token); err == nil {
			if err := h.service.Revoke(r.Context(), claims); err != nil {
				services.SendErrorResponse(w, "Service unavailable", http.StatusServiceUnavailable, nil)
				return
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}
