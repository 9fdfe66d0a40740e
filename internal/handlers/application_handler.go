package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/demobank/backend/internal/middleware"
	"github.com/demobank/backend/internal/models"
	"github.com/demobank/backend/internal/services"
	"go.uber.org/zap"
)

type ApplicationIntake interface {
	Submit(ctx context.Context, ownerID int64, req services.ApplicationRequest) (int64, error)
	Search(ctx context.Context, term string) ([]models.CreditApplication, error)
}

type ApplicationHandler struct {
	service   ApplicationIntake
	validator *services.ValidationHelper
	logger    *zap.Logger
}

func NewApplicationHandler(service ApplicationIntake, logger *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		service:   service,
		validator: services.NewValidationHelper(),
		logger:    logger,
	}
}

// Submit records a credit application for the caller
// @Summary Submit credit application
// @Tags credit-applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.ApplicationRequest true "Application"
// @Success 201 {object} object{id=int64,status=string}
// @Failure 400 {object} services.ErrorResponse
// @Router /credit-applications [post]
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req services.ApplicationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		sendDecodeError(w, err)
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	id, err := h.service.Submit(r.Context(), identity.UserID, req)
	if errors.Is(err, services.ErrValidation) {
		services.SendErrorResponse(w, "Invalid credit application", http.StatusBadRequest, nil)
		return
	}
	if err != nil {
		h.logger.Error("application submit failed", zap.Int64("user_id", identity.UserID), zap.Error(err))
		services.SendErrorResponse(w, "Failed to submit application", http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "status": models.ApplicationPending})
}

// Search finds applications by employment status or comments
// @Summary Search credit applications
// @Tags credit-applications
// @Produce json
// @Security BearerAuth
// @Param q query string false "Search term"
// @Success 200 {object} object{applications=[]models.CreditApplication}
// @Router /credit-applications/search [get]
func (h *ApplicationHandler) Search(w http.ResponseWriter, r *http.Request) {
	apps, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if errors.Is(err, services.ErrValidation) {
		services.SendErrorResponse(w, "Invalid search term", http.StatusBadRequest, nil)
		return
	}
	if err != nil {
		h.logger.Error("application search failed", zap.Error(err))
		services.SendErrorResponse(w, "Search unavailable", http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"applications": apps})
}
