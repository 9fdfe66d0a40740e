package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/demobank/backend/internal/middleware"
	"github.com/demobank/backend/internal/models"
	"github.com/demobank/backend/internal/services"
	"go.uber.org/zap"
)

type Transferer interface {
	Transfer(ctx context.Context, req models.TransferRequest) (*models.TransferResult, error)
}

// TransferRequest is the wire form of a transfer. Amount is a decimal string
// so that no float rounding happens before validation.
type TransferRequest struct {
	SourceAccountID          int64  `json:"sourceAccountId" validate:"required,gt=0" example:"1"`
	DestinationAccountNumber string `json:"destinationAccountNumber" validate:"required,max=20" example:"SAV-002"`
	Amount                   string `json:"amount" validate:"required,money" example:"500.00"`
}

type TransferHandler struct {
	service   Transferer
	validator *services.ValidationHelper
	logger    *zap.Logger
}

func NewTransferHandler(service Transferer, logger *zap.Logger) *TransferHandler {
	return &TransferHandler{
		service:   service,
		validator: services.NewValidationHelper(),
		logger:    logger,
	}
}

// Transfer moves money from one of the caller's accounts to any account
// @Summary Transfer funds
// @Tags transfers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "UUID making retries safe"
// @Param request body TransferRequest true "Transfer request"
// @Success 200 {object} models.TransferResult
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /transfers [post]
func (h *TransferHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req TransferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		sendDecodeError(w, err)
		return
	}

	req.DestinationAccountNumber = strings.TrimSpace(req.DestinationAccountNumber)
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	amount, err := services.ParseAmount(req.Amount)
	if err != nil {
		sendTransferError(w, err)
		return
	}

	result, err := h.service.Transfer(r.Context(), models.TransferRequest{
		OwnerID:                  identity.UserID,
		SourceAccountID:          req.SourceAccountID,
		DestinationAccountNumber: req.DestinationAccountNumber,
		Amount:                   amount,
	})
	if err != nil {
		if errors.Is(err, services.ErrOutcomeUnknown) {
			h.logger.Error("transfer outcome unknown, keeping idempotency key", zap.Int64("user_id", identity.UserID))
			middleware.RetainIdempotencyKey(r.Context())
		}
		sendTransferError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func sendTransferError(w http.ResponseWriter, err error) {
	status := services.StatusFromError(err)

	var code int
	var message string
	switch status {
	case models.TransferValidationFailed:
		code, message = http.StatusBadRequest, "Invalid transfer request"
	case models.TransferDestinationNotFound:
		code, message = http.StatusNotFound, "Destination account not found"
	case models.TransferSourceNotFound:
		code, message = http.StatusNotFound, "Source account not found"
	case models.TransferInsufficientFunds:
		code, message = http.StatusUnprocessableEntity, "Insufficient funds"
	case models.TransferSelf:
		code, message = http.StatusUnprocessableEntity, "Source and destination must differ"
	default:
		code, message = http.StatusInternalServerError, "Transfer failed"
	}

	writeJSON(w, code, services.ErrorResponse{
		Error:   message,
		Details: map[string]string{"status": string(status)},
	})
}
