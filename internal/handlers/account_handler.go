package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/demobank/backend/internal/middleware"
	"github.com/demobank/backend/internal/models"
	"github.com/demobank/backend/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AccountLister interface {
	ListAccounts(ctx context.Context, identity models.Identity) ([]models.Account, error)
	GetAccount(ctx context.Context, identity models.Identity, id int64) (*models.Account, error)
}

type AccountHandler struct {
	service AccountLister
	logger  *zap.Logger
}

func NewAccountHandler(service AccountLister, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{service: service, logger: logger}
}

// ListAccounts returns the caller's accounts
// @Summary List accounts
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{accounts=[]models.Account}
// @Failure 401 {object} services.ErrorResponse
// @Router /accounts [get]
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	accounts, err := h.service.ListAccounts(r.Context(), identity)
	if err != nil {
		h.logger.Error("list accounts failed", zap.Int64("user_id", identity.UserID), zap.Error(err))
		services.SendErrorResponse(w, "Failed to load accounts", http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

// GetAccount returns one of the caller's accounts
// @Summary Get account
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Success 200 {object} models.Account
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /accounts/{id} [get]
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		services.SendErrorResponse(w, "Invalid account id", http.StatusBadRequest, nil)
		return
	}

	account, err := h.service.GetAccount(r.Context(), identity, id)
	switch {
	case errors.Is(err, services.ErrAccountNotFound):
		services.SendErrorResponse(w, "Account not found", http.StatusNotFound, nil)
		return
	case errors.Is(err, services.ErrValidation):
		services.SendErrorResponse(w, "Invalid account id", http.StatusBadRequest, nil)
		return
	case err != nil:
		h.logger.Error("get account failed", zap.Int64("user_id", identity.UserID), zap.Error(err))
		services.SendErrorResponse(w, "Failed to load account", http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, http.StatusOK, account)
}
