package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/demobank/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAccountService_ListAccounts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewAccountService(db, zap.NewNop())
	alice := models.Identity{UserID: 1, Username: "alice"}

	t.Run("returns only the caller's accounts", func(t *testing.T) {
		mock.ExpectQuery("FROM accounts WHERE user_id = \\$1 ORDER BY id").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(accountColumns).
				AddRow(1, 1, "CHECKING", "CHK-001", "2500.00").
				AddRow(2, 1, "SAVINGS", "SAV-001", "15000.00").
				AddRow(3, 1, "INVESTMENT", "INV-001", "8750.50"))

		accounts, err := service.ListAccounts(context.Background(), alice)
		require.NoError(t, err)
		require.Len(t, accounts, 3)
		assert.Equal(t, "CHK-001", accounts[0].AccountNumber)
		assert.Equal(t, models.AccountTypeInvestment, accounts[2].AccountType)
		assert.True(t, dec("8750.50").Equal(accounts[2].Balance))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("store failure", func(t *testing.T) {
		mock.ExpectQuery("FROM accounts WHERE user_id").
			WithArgs(int64(1)).
			WillReturnError(errors.New("timeout"))

		_, err := service.ListAccounts(context.Background(), alice)
		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing identity", func(t *testing.T) {
		_, err := service.ListAccounts(context.Background(), models.Identity{})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestAccountService_GetAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewAccountService(db, zap.NewNop())
	alice := models.Identity{UserID: 1, Username: "alice"}
	bob := models.Identity{UserID: 2, Username: "bob"}

	expectCHK001 := func() {
		mock.ExpectQuery("FROM accounts WHERE id = \\$1$").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(accountColumns).AddRow(1, 1, "CHECKING", "CHK-001", "2500.00"))
	}

	t.Run("own account", func(t *testing.T) {
		expectCHK001()

		account, err := service.GetAccount(context.Background(), alice, 1)
		require.NoError(t, err)
		assert.Equal(t, "CHK-001", account.AccountNumber)
		assert.True(t, dec("2500.00").Equal(account.Balance))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("someone else's account looks missing", func(t *testing.T) {
		expectCHK001()

		account, err := service.GetAccount(context.Background(), bob, 1)
		assert.Nil(t, account)
		assert.ErrorIs(t, err, ErrAccountNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing account", func(t *testing.T) {
		mock.ExpectQuery("FROM accounts WHERE id = \\$1$").
			WithArgs(int64(42)).
			WillReturnError(sql.ErrNoRows)

		_, err := service.GetAccount(context.Background(), alice, 42)
		assert.ErrorIs(t, err, ErrAccountNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("store failure", func(t *testing.T) {
		mock.ExpectQuery("FROM accounts WHERE id = \\$1$").
			WithArgs(int64(1)).
			WillReturnError(errors.New("timeout"))

		_, err := service.GetAccount(context.Background(), alice, 1)
		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("non-positive id never reaches the database", func(t *testing.T) {
		_, err := service.GetAccount(context.Background(), alice, 0)
		assert.ErrorIs(t, err, ErrValidation)
	})
}
