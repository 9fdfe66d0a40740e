package audit

import (
	"time"

	"go.uber.org/zap"
)

// AuditLogger writes ledger events to a dedicated logger. Events carry
// account identifiers and outcomes; amounts are deliberately absent.
type AuditLogger struct {
	logger *zap.Logger
}

func NewAuditLogger(logger *zap.Logger) *AuditLogger {
	return &AuditLogger{logger: logger.Named("audit")}
}

func (a *AuditLogger) LogTransfer(reference string, sourceAccountID, destinationAccountID int64, status string) {
	a.logger.Info("TRANSFER",
		zap.Time("timestamp", time.Now().UTC()),
		zap.String("reference", reference),
		zap.Int64("source_account_id", sourceAccountID),
		zap.Int64("destination_account_id", destinationAccountID),
		zap.String("status", status),
	)
}

func (a *AuditLogger) LogError(reference string, accountID int64, err error) {
	a.logger.Warn("ERROR",
		zap.Time("timestamp", time.Now().UTC()),
		zap.String("reference", reference),
		zap.Int64("account_id", accountID),
		zap.String("status", "FAILED"),
		zap.Error(err),
	)
}

func (a *AuditLogger) LogOperation(reference string, userID int64, operation, details string) {
	a.logger.Info(operation,
		zap.Time("timestamp", time.Now().UTC()),
		zap.String("reference", reference),
		zap.Int64("user_id", userID),
		zap.String("status", "SUCCESS"),
		zap.String("details", details),
	)
}
