package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/demobank/backend/internal/models"
	"github.com/demobank/backend/internal/store"
	"go.uber.org/zap"
)

type AccountService struct {
	db       *sql.DB
	accounts *store.AccountStore
	logger   *zap.Logger
}

func NewAccountService(db *sql.DB, logger *zap.Logger) *AccountService {
	return &AccountService{
		db:       db,
		accounts: store.NewAccountStore(),
		logger:   logger.Named("accounts"),
	}
}

// ListAccounts returns the caller's accounts ordered by id.
func (s *AccountService) ListAccounts(ctx context.Context, identity models.Identity) ([]models.Account, error) {
	if identity.UserID <= 0 {
		return nil, fmt.Errorf("%w: identity is required", ErrValidation)
	}

	accounts, err := s.accounts.ListByUser(ctx, s.db, identity.UserID)
	if err != nil {
		s.logger.Error("list accounts failed", zap.Int64("user_id", identity.UserID), zap.Error(err))
		return nil, fmt.Errorf("%w: list accounts: %w", ErrStoreUnavailable, err)
	}
	return accounts, nil
}

// GetAccount returns one of the caller's accounts. An account owned by
// someone else is reported exactly like a missing one.
func (s *AccountService) GetAccount(ctx context.Context, identity models.Identity, id int64) (*models.Account, error) {
	if identity.UserID <= 0 {
		return nil, fmt.Errorf("%w: identity is required", ErrValidation)
	}
	if id <= 0 {
		return nil, fmt.Errorf("%w: account id must be positive", ErrValidation)
	}

	account, err := s.accounts.FindByID(ctx, s.db, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		s.logger.Error("get account failed", zap.Int64("user_id", identity.UserID), zap.Error(err))
		return nil, fmt.Errorf("%w: get account: %w", ErrStoreUnavailable, err)
	}
	if account.UserID != identity.UserID {
		return nil, ErrAccountNotFound
	}
	return account, nil
}
