package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/demobank/backend/internal/models"
	"github.com/shopspring/decimal"
)

// AccountStore reads and mutates rows of the accounts table.
type AccountStore struct{}

func NewAccountStore() *AccountStore {
	return &AccountStore{}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var account models.Account
	var accountType string
	if err := row.Scan(&account.ID, &account.UserID, &accountType, &account.AccountNumber, &account.Balance); err != nil {
		return nil, err
	}
	account.AccountType = models.AccountType(accountType)
	if !account.AccountType.Valid() {
		return nil, fmt.Errorf("account %d has unknown type %q", account.ID, accountType)
	}
	return &account, nil
}

// FindByID reads the account without locking it.
func (s *AccountStore) FindByID(ctx context.Context, q Querier, id int64) (*models.Account, error) {
	account, err := scanAccount(q.QueryRowContext(ctx, selectAccountByID, id))
	if err != nil {
		return nil, notFound(err)
	}
	return account, nil
}

func (s *AccountStore) FindByAccountNumber(ctx context.Context, q Querier, number string) (*models.Account, error) {
	account, err := scanAccount(q.QueryRowContext(ctx, selectAccountByNumber, number))
	if err != nil {
		return nil, notFound(err)
	}
	return account, nil
}

// ListByUser returns the user's accounts ordered by id.
func (s *AccountStore) ListByUser(ctx context.Context, q Querier, userID int64) ([]models.Account, error) {
	rows, err := q.QueryContext(ctx, selectAccountsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

// LockForUpdate reads the account and holds its row lock until q's
// transaction ends. q must be a transaction.
func (s *AccountStore) LockForUpdate(ctx context.Context, q Querier, id int64) (*models.Account, error) {
	account, err := scanAccount(q.QueryRowContext(ctx, lockAccountByID, id))
	if err != nil {
		return nil, notFound(err)
	}
	return account, nil
}

// ApplyDelta adds delta (which may be negative) to the account balance and
// returns the new balance.
func (s *AccountStore) ApplyDelta(ctx context.Context, q Querier, id int64, delta decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := q.QueryRowContext(ctx, applyAccountDelta, delta, id).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("apply delta to account %d: %w", id, err)
	}

	var exists bool
	if err := q.QueryRowContext(ctx, accountExists, id).Scan(&exists); err != nil {
		return decimal.Zero, fmt.Errorf("probe account %d: %w", id, err)
	}
	if !exists {
		return decimal.Zero, ErrNotFound
	}
	return decimal.Zero, ErrInsufficientFunds
}
