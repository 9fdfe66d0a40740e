//go:build integration

package services_test

import (
	"context"
	"database/sql"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/demobank/backend/internal/database"
	"github.com/demobank/backend/internal/models"
	"github.com/demobank/backend/internal/seed"
	"github.com/demobank/backend/internal/services"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// Seeded account ids.
const (
	chk001 = int64(1) // alice
	sav001 = int64(2) // alice
	inv001 = int64(3) // alice
	chk002 = int64(4) // bob
	sav002 = int64(5) // bob
	inv002 = int64(6) // bob

	alice = int64(1)
	bob   = int64(2)
)

var owners = map[int64]int64{chk001: alice, sav001: alice, inv001: alice, chk002: bob, sav002: bob, inv002: bob}

var numbers = map[int64]string{
	chk001: "CHK-001", sav001: "SAV-001", inv001: "INV-001",
	chk002: "CHK-002", sav002: "SAV-002", inv002: "INV-002",
}

// setupSeededDatabase starts a disposable PostgreSQL container, migrates it
// and loads the demo fixtures.
func setupSeededDatabase(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("demobank"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(ctx))
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.PingContext(ctx))

	require.NoError(t, database.RunMigrations(db, "demobank", zap.NewNop()))

	conn, err := pgx.Connect(ctx, dsn)
	require.NoError(t, err)
	defer conn.Close(ctx)

	require.NoError(t, seed.Run(ctx, conn, zap.NewNop()))
	// A second run must not duplicate fixtures.
	require.NoError(t, seed.Run(ctx, conn, zap.NewNop()))

	return db
}

func balance(t *testing.T, db *sql.DB, id int64) decimal.Decimal {
	t.Helper()
	var b decimal.Decimal
	require.NoError(t, db.QueryRow(`SELECT balance FROM accounts WHERE id = $1`, id).Scan(&b))
	return b
}

func totalBalance(t *testing.T, db *sql.DB) decimal.Decimal {
	t.Helper()
	var b decimal.Decimal
	require.NoError(t, db.QueryRow(`SELECT SUM(balance) FROM accounts`).Scan(&b))
	return b
}

func TestIntegration_Transfer_SeededScenario(t *testing.T) {
	db := setupSeededDatabase(t)
	ledger := services.NewLedgerService(db, zap.NewNop(), 5*time.Second)
	ctx := context.Background()

	before := totalBalance(t, db)

	result, err := ledger.Transfer(ctx, models.TransferRequest{
		OwnerID:                  alice,
		SourceAccountID:          chk001,
		DestinationAccountNumber: "SAV-002",
		Amount:                   decimal.RequireFromString("500.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.TransferSuccess, result.Status)
	assert.True(t, decimal.RequireFromString("2000.00").Equal(balance(t, db, chk001)))
	assert.True(t, decimal.RequireFromString("6000.25").Equal(balance(t, db, sav002)))

	_, err = ledger.Transfer(ctx, models.TransferRequest{
		OwnerID:                  alice,
		SourceAccountID:          chk001,
		DestinationAccountNumber: "SAV-002",
		Amount:                   decimal.RequireFromString("3000.00"),
	})
	assert.ErrorIs(t, err, services.ErrInsufficientFunds)
	assert.True(t, decimal.RequireFromString("2000.00").Equal(balance(t, db, chk001)))
	assert.True(t, decimal.RequireFromString("6000.25").Equal(balance(t, db, sav002)))

	_, err = ledger.Transfer(ctx, models.TransferRequest{
		OwnerID:                  alice,
		SourceAccountID:          chk001,
		DestinationAccountNumber: "NOPE-999",
		Amount:                   decimal.RequireFromString("1.00"),
	})
	assert.ErrorIs(t, err, services.ErrDestinationNotFound)

	_, err = ledger.Transfer(ctx, models.TransferRequest{
		OwnerID:                  bob,
		SourceAccountID:          chk001,
		DestinationAccountNumber: "SAV-002",
		Amount:                   decimal.RequireFromString("1.00"),
	})
	assert.ErrorIs(t, err, services.ErrSourceNotFound)

	assert.True(t, before.Equal(totalBalance(t, db)))
}

func TestIntegration_Transfer_DrainToZero(t *testing.T) {
	db := setupSeededDatabase(t)
	ledger := services.NewLedgerService(db, zap.NewNop(), 5*time.Second)

	_, err := ledger.Transfer(context.Background(), models.TransferRequest{
		OwnerID:                  bob,
		SourceAccountID:          chk002,
		DestinationAccountNumber: "CHK-001",
		Amount:                   decimal.RequireFromString("1200.75"),
	})
	require.NoError(t, err)
	assert.True(t, balance(t, db, chk002).IsZero())
	assert.True(t, decimal.RequireFromString("3700.75").Equal(balance(t, db, chk001)))
}

func TestIntegration_Transfer_ConcurrentConservation(t *testing.T) {
	db := setupSeededDatabase(t)
	ledger := services.NewLedgerService(db, zap.NewNop(), 10*time.Second)
	ctx := context.Background()

	before := totalBalance(t, db)
	ids := []int64{chk001, sav001, inv001, chk002, sav002, inv002}

	const workers = 8
	const perWorker = 25

	var wg sync.WaitGroup
	var mu sync.Mutex
	var systemErrors []error

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < perWorker; i++ {
				src := ids[rng.Intn(len(ids))]
				dst := ids[rng.Intn(len(ids))]
				if src == dst {
					continue
				}
				amount := decimal.New(int64(rng.Intn(300000)+1), -2)

				_, err := ledger.Transfer(ctx, models.TransferRequest{
					OwnerID:                  owners[src],
					SourceAccountID:          src,
					DestinationAccountNumber: numbers[dst],
					Amount:                   amount,
				})
				if err != nil && !errors.Is(err, services.ErrInsufficientFunds) {
					mu.Lock()
					systemErrors = append(systemErrors, err)
					mu.Unlock()
				}
			}
		}(int64(w + 1))
	}
	wg.Wait()

	assert.Empty(t, systemErrors, "crossing transfers must neither deadlock nor fail")
	assert.True(t, before.Equal(totalBalance(t, db)), "sum of balances must be conserved")

	var negative int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM accounts WHERE balance < 0`).Scan(&negative))
	assert.Zero(t, negative)
}

func TestIntegration_Transfer_DisjointPairs(t *testing.T) {
	db := setupSeededDatabase(t)
	ledger := services.NewLedgerService(db, zap.NewNop(), 10*time.Second)
	ctx := context.Background()

	aliceBefore := balance(t, db, chk001).Add(balance(t, db, sav001))
	bobBefore := balance(t, db, chk002).Add(balance(t, db, sav002))

	transfers := []models.TransferRequest{
		{OwnerID: alice, SourceAccountID: chk001, DestinationAccountNumber: "SAV-001", Amount: decimal.RequireFromString("250.00")},
		{OwnerID: bob, SourceAccountID: chk002, DestinationAccountNumber: "SAV-002", Amount: decimal.RequireFromString("200.75")},
	}

	start := make(chan struct{})
	errs := make([]error, len(transfers))
	var wg sync.WaitGroup
	for i, req := range transfers {
		wg.Add(1)
		go func(i int, req models.TransferRequest) {
			defer wg.Done()
			<-start
			_, errs[i] = ledger.Transfer(ctx, req)
		}(i, req)
	}
	close(start)
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.True(t, decimal.RequireFromString("2250.00").Equal(balance(t, db, chk001)))
	assert.True(t, decimal.RequireFromString("15250.00").Equal(balance(t, db, sav001)))
	assert.True(t, decimal.RequireFromString("1000.00").Equal(balance(t, db, chk002)))
	assert.True(t, decimal.RequireFromString("5701.00").Equal(balance(t, db, sav002)))
	assert.True(t, aliceBefore.Equal(balance(t, db, chk001).Add(balance(t, db, sav001))))
	assert.True(t, bobBefore.Equal(balance(t, db, chk002).Add(balance(t, db, sav002))))
}

func TestIntegration_Transfer_OppositeDirections(t *testing.T) {
	db := setupSeededDatabase(t)
	ledger := services.NewLedgerService(db, zap.NewNop(), 10*time.Second)
	ctx := context.Background()

	pairBefore := balance(t, db, chk001).Add(balance(t, db, chk002))

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := ledger.Transfer(ctx, models.TransferRequest{
				OwnerID: alice, SourceAccountID: chk001, DestinationAccountNumber: "CHK-002",
				Amount: decimal.RequireFromString("1.00"),
			})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := ledger.Transfer(ctx, models.TransferRequest{
				OwnerID: bob, SourceAccountID: chk002, DestinationAccountNumber: "CHK-001",
				Amount: decimal.RequireFromString("1.00"),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.True(t, decimal.RequireFromString("2500.00").Equal(balance(t, db, chk001)))
	assert.True(t, pairBefore.Equal(balance(t, db, chk001).Add(balance(t, db, chk002))))
}

func TestIntegration_ApplicationSearch(t *testing.T) {
	db := setupSeededDatabase(t)
	apps := services.NewApplicationService(db, zap.NewNop(), 100)
	ctx := context.Background()

	found, err := apps.Search(ctx, "graduate")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Recent graduate", found[0].Comments)

	found, err = apps.Search(ctx, "GRADUATE")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = apps.Search(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = apps.Search(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, found, "wildcards in the term match literally")

	found, err = apps.Search(ctx, "' OR '1'='1")
	require.NoError(t, err)
	assert.Empty(t, found)

	id, err := apps.Submit(ctx, alice, services.ApplicationRequest{
		RequestedLimit:   "2500.00",
		AnnualIncome:     "60000.00",
		EmploymentStatus: "Self-employed",
		Comments:         "Graduate school finished",
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	found, err = apps.Search(ctx, "graduate")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, id, found[0].ID, "newest first")
	assert.Equal(t, models.ApplicationPending, found[0].Status)
}
