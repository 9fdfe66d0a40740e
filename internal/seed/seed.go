// Package seed loads the demo fixtures into an empty, migrated database.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/demobank/backend/internal/services"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

type userFixture struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
}

type accountFixture struct {
	Owner         string
	AccountType   string
	AccountNumber string
	Balance       string
}

type applicationFixture struct {
	Owner            string
	RequestedLimit   string
	AnnualIncome     string
	EmploymentStatus string
	Status           string
	Age              time.Duration
	Comments         string
}

var users = []userFixture{
	{"alice", "password123", "Alice", "Johnson", "alice@example.com"},
	{"bob", "pass456", "Bob", "Smith", "bob@example.com"},
	{"admin", "admin", "Admin", "User", "admin@demobank.com"},
}

// Insertion order fixes the account ids: CHK-001 is 1, SAV-002 is 5.
var accounts = []accountFixture{
	{"alice", "CHECKING", "CHK-001", "2500.00"},
	{"alice", "SAVINGS", "SAV-001", "15000.00"},
	{"alice", "INVESTMENT", "INV-001", "8750.50"},
	{"bob", "CHECKING", "CHK-002", "1200.75"},
	{"bob", "SAVINGS", "SAV-002", "5500.25"},
	{"bob", "INVESTMENT", "INV-002", "12000.00"},
}

var applications = []applicationFixture{
	{"alice", "5000.00", "75000.00", "Full-time", "APPROVED", time.Hour, "Good credit history"},
	{"bob", "3000.00", "45000.00", "Part-time", "PENDING", 0, "Recent graduate"},
}

const (
	countUsers    = `SELECT COUNT(*) FROM users`
	selectUserIDs = `SELECT id, username FROM users`
)

// Run inserts the fixtures in one transaction. It does nothing when the
// users table already has rows.
func Run(ctx context.Context, conn *pgx.Conn, logger *zap.Logger) error {
	var count int
	if err := conn.QueryRow(ctx, countUsers).Scan(&count); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		logger.Info("database already seeded, skipping", zap.Int("users", count))
		return nil
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback(ctx)

	userRows := make([][]any, 0, len(users))
	for _, u := range users {
		hash, err := services.HashPassword(u.Password)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.Username, err)
		}
		userRows = append(userRows, []any{u.Username, hash, u.FirstName, u.LastName, u.Email})
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"users"},
		[]string{"username", "password_hash", "first_name", "last_name", "email"},
		pgx.CopyFromRows(userRows))
	if err != nil {
		return fmt.Errorf("copy users: %w", err)
	}
	logger.Info("seeded users", zap.Int64("rows", n))

	ids, err := userIDs(ctx, tx)
	if err != nil {
		return err
	}

	accountRows := make([][]any, 0, len(accounts))
	for _, a := range accounts {
		balance, err := numeric(a.Balance)
		if err != nil {
			return err
		}
		accountRows = append(accountRows, []any{ids[a.Owner], a.AccountType, a.AccountNumber, balance})
	}

	n, err = tx.CopyFrom(ctx, pgx.Identifier{"accounts"},
		[]string{"user_id", "account_type", "account_number", "balance"},
		pgx.CopyFromRows(accountRows))
	if err != nil {
		return fmt.Errorf("copy accounts: %w", err)
	}
	logger.Info("seeded accounts", zap.Int64("rows", n))

	now := time.Now().UTC()
	appRows := make([][]any, 0, len(applications))
	for _, a := range applications {
		limit, err := numeric(a.RequestedLimit)
		if err != nil {
			return err
		}
		income, err := numeric(a.AnnualIncome)
		if err != nil {
			return err
		}
		appRows = append(appRows, []any{
			ids[a.Owner], limit, income, a.EmploymentStatus, a.Status, now.Add(-a.Age), a.Comments,
		})
	}

	n, err = tx.CopyFrom(ctx, pgx.Identifier{"credit_applications"},
		[]string{"user_id", "requested_limit", "annual_income", "employment_status", "status", "application_date", "comments"},
		pgx.CopyFromRows(appRows))
	if err != nil {
		return fmt.Errorf("copy credit applications: %w", err)
	}
	logger.Info("seeded credit applications", zap.Int64("rows", n))

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}

func userIDs(ctx context.Context, tx pgx.Tx) (map[string]int64, error) {
	rows, err := tx.Query(ctx, selectUserIDs)
	if err != nil {
		return nil, fmt.Errorf("load user ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int64, len(users))
	for rows.Next() {
		var id int64
		var username string
		if err := rows.Scan(&id, &username); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids[username] = id
	}
	return ids, rows.Err()
}

func numeric(s string) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		return n, fmt.Errorf("parse numeric %q: %w", s, err)
	}
	return n, nil
}
