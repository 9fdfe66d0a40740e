package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/demobank/backend/internal/audit"
	"github.com/demobank/backend/internal/metrics"
	"github.com/demobank/backend/internal/models"
	"github.com/demobank/backend/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var accountNumberPattern = regexp.MustCompile(`^[A-Z0-9-]{3,20}$`)

// LedgerService moves money between two accounts. It keeps no state between
// calls; all coordination is the database transaction and its row locks.
type LedgerService struct {
	db       *sql.DB
	accounts *store.AccountStore
	audit    *audit.AuditLogger
	logger   *zap.Logger
	timeout  time.Duration
	now      func() time.Time
}

func NewLedgerService(db *sql.DB, logger *zap.Logger, timeout time.Duration) *LedgerService {
	return &LedgerService{
		db:       db,
		accounts: store.NewAccountStore(),
		audit:    audit.NewAuditLogger(logger),
		logger:   logger.Named("ledger"),
		timeout:  timeout,
		now:      time.Now,
	}
}

// Transfer debits req.Amount from the caller's source account and credits the
// account behind req.DestinationAccountNumber in one atomic scope. Business
// rejections (ErrDestinationNotFound, ErrSourceNotFound, ErrInsufficientFunds,
// ErrSelfTransfer, ErrValidation) leave both balances untouched; anything else
// is reported as ErrTransferFailed after a full rollback.
func (s *LedgerService) Transfer(ctx context.Context, req models.TransferRequest) (*models.TransferResult, error) {
	start := time.Now()
	reference := uuid.New()

	result, err := s.transfer(ctx, reference, req)

	status := StatusFromError(err)
	metrics.TransfersTotal.WithLabelValues(string(status)).Inc()
	metrics.TransferDuration.Observe(time.Since(start).Seconds())

	fields := []zap.Field{
		zap.String("reference", reference.String()),
		zap.Int64("source_account_id", req.SourceAccountID),
		zap.String("status", string(status)),
	}
	switch status {
	case models.TransferSuccess:
		s.logger.Info("transfer committed", fields...)
		s.audit.LogTransfer(reference.String(), result.SourceAccountID, result.DestinationAccountID, string(status))
	case models.TransferFailed:
		s.logger.Error("transfer aborted", append(fields, zap.Error(err))...)
		s.audit.LogError(reference.String(), req.SourceAccountID, err)
	default:
		s.logger.Info("transfer rejected", fields...)
		s.audit.LogTransfer(reference.String(), req.SourceAccountID, 0, string(status))
	}

	return result, err
}

func (s *LedgerService) transfer(ctx context.Context, reference uuid.UUID, req models.TransferRequest) (*models.TransferResult, error) {
	req.DestinationAccountNumber = strings.TrimSpace(req.DestinationAccountNumber)
	if err := validateTransfer(req); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, transferFailed("begin", err)
	}
	defer tx.Rollback()

	result, err := s.TransferTx(ctx, tx, req)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit: %w: %w", ErrTransferFailed, ErrOutcomeUnknown, err)
	}

	result.Reference = reference
	result.CompletedAt = s.now().UTC()
	return result, nil
}

// TransferTx runs the transfer inside tx without committing it. Locks are
// taken in ascending account id order so that two transfers crossing the same
// pair of accounts in opposite directions cannot deadlock.
func (s *LedgerService) TransferTx(ctx context.Context, tx *sql.Tx, req models.TransferRequest) (*models.TransferResult, error) {
	destination, err := s.accounts.FindByAccountNumber(ctx, tx, req.DestinationAccountNumber)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrDestinationNotFound
	}
	if err != nil {
		return nil, transferFailed("resolve destination", err)
	}

	if destination.ID == req.SourceAccountID {
		// Someone else's account id must not be confirmable by guessing its number.
		if destination.UserID != req.OwnerID {
			return nil, ErrSourceNotFound
		}
		return nil, ErrSelfTransfer
	}

	firstID, secondID := req.SourceAccountID, destination.ID
	if firstID > secondID {
		firstID, secondID = secondID, firstID
	}

	first, err := s.lockAccount(ctx, tx, firstID, req.SourceAccountID)
	if err != nil {
		return nil, err
	}
	second, err := s.lockAccount(ctx, tx, secondID, req.SourceAccountID)
	if err != nil {
		return nil, err
	}

	source, dest := first, second
	if firstID != req.SourceAccountID {
		source, dest = second, first
	}

	if source.UserID != req.OwnerID {
		return nil, ErrSourceNotFound
	}

	if source.Balance.LessThan(req.Amount) {
		return nil, ErrInsufficientFunds
	}

	sourceBalance, err := s.accounts.ApplyDelta(ctx, tx, source.ID, req.Amount.Neg())
	if errors.Is(err, store.ErrInsufficientFunds) {
		return nil, ErrInsufficientFunds
	}
	if err != nil {
		return nil, transferFailed("debit", err)
	}

	destBalance, err := s.accounts.ApplyDelta(ctx, tx, dest.ID, req.Amount)
	if err != nil {
		return nil, transferFailed("credit", err)
	}

	return &models.TransferResult{
		Status:                   models.TransferSuccess,
		SourceAccountID:          source.ID,
		DestinationAccountID:     dest.ID,
		DestinationAccountNumber: dest.AccountNumber,
		Amount:                   req.Amount,
		SourceBalance:            sourceBalance,
		DestinationBalance:       destBalance,
	}, nil
}

func (s *LedgerService) lockAccount(ctx context.Context, tx *sql.Tx, id, sourceID int64) (*models.Account, error) {
	account, err := s.accounts.LockForUpdate(ctx, tx, id)
	if errors.Is(err, store.ErrNotFound) {
		if id == sourceID {
			return nil, ErrSourceNotFound
		}
		return nil, ErrDestinationNotFound
	}
	if err != nil {
		return nil, transferFailed("lock account", err)
	}
	return account, nil
}

func validateTransfer(req models.TransferRequest) error {
	if req.OwnerID <= 0 {
		return fmt.Errorf("%w: owner is required", ErrValidation)
	}
	if req.SourceAccountID <= 0 {
		return fmt.Errorf("%w: source account id must be positive", ErrValidation)
	}
	if !accountNumberPattern.MatchString(req.DestinationAccountNumber) {
		return fmt.Errorf("%w: malformed destination account number", ErrValidation)
	}
	return ValidateAmount(req.Amount, false)
}

func transferFailed(step string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrTransferFailed, step, err)
}
