package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransferStatus string

const (
	TransferSuccess             TransferStatus = "SUCCESS"
	TransferDestinationNotFound TransferStatus = "DESTINATION_NOT_FOUND"
	TransferSourceNotFound      TransferStatus = "SOURCE_NOT_FOUND"
	TransferInsufficientFunds   TransferStatus = "INSUFFICIENT_FUNDS"
	TransferSelf                TransferStatus = "SELF_TRANSFER"
	TransferValidationFailed    TransferStatus = "VALIDATION_FAILED"
	TransferFailed              TransferStatus = "TRANSFER_FAILED"
)

// TransferRequest moves Amount from the caller's account SourceAccountID to
// whichever account carries DestinationAccountNumber.
type TransferRequest struct {
	OwnerID                  int64
	SourceAccountID          int64
	DestinationAccountNumber string
	Amount                   decimal.Decimal
}

// TransferResult describes a committed transfer. The destination side is
// kept off the wire: the sender may not see the receiver's balance.
type TransferResult struct {
	Reference                uuid.UUID       `json:"reference"`
	Status                   TransferStatus  `json:"status"`
	SourceAccountID          int64           `json:"sourceAccountId"`
	DestinationAccountID     int64           `json:"-"`
	DestinationAccountNumber string          `json:"destinationAccountNumber"`
	Amount                   decimal.Decimal `json:"amount"`
	SourceBalance            decimal.Decimal `json:"sourceBalance"`
	DestinationBalance       decimal.Decimal `json:"-"`
	CompletedAt              time.Time       `json:"completedAt"`
}
