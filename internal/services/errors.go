package services

import (
	"errors"

	"github.com/demobank/backend/internal/models"
)

// Business rejections. Each is returned before any mutation is committed.
var (
	ErrValidation          = errors.New("validation failed")
	ErrDestinationNotFound = errors.New("destination account not found")
	ErrSourceNotFound      = errors.New("source account not found")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrSelfTransfer        = errors.New("source and destination are the same account")
	ErrAccountNotFound     = errors.New("account not found")
	ErrAuthFailed          = errors.New("invalid credentials")
)

// System failures. The wrapped cause is for logs only and must not reach a client.
var (
	ErrTransferFailed   = errors.New("transfer failed")
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrOutcomeUnknown accompanies ErrTransferFailed when the commit itself
	// failed: the server may have applied the transfer before the error.
	ErrOutcomeUnknown = errors.New("transfer outcome unknown")
)

// StatusFromError maps a Transfer error onto the outcome reported to callers.
func StatusFromError(err error) models.TransferStatus {
	switch {
	case err == nil:
		return models.TransferSuccess
	case errors.Is(err, ErrValidation):
		return models.TransferValidationFailed
	case errors.Is(err, ErrDestinationNotFound):
		return models.TransferDestinationNotFound
	case errors.Is(err, ErrSourceNotFound):
		return models.TransferSourceNotFound
	case errors.Is(err, ErrInsufficientFunds):
		return models.TransferInsufficientFunds
	case errors.Is(err, ErrSelfTransfer):
		return models.TransferSelf
	default:
		return models.TransferFailed
	}
}
