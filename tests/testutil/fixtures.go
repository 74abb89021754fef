package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	postgresRepo "github.com/iho/goremit/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/goremit/internal/adapter/repository/redis"
	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/infrastructure/metrics"
	"github.com/iho/goremit/internal/infrastructure/postgres"
	"github.com/iho/goremit/internal/usecase"
)

// TestDB provides isolated test database connections.
type TestDB struct {
	Pool *pgxpool.Pool
	t    *testing.T
}

// NewTestDB connects to DATABASE_URL and applies migrations. The test is
// skipped when DATABASE_URL is unset.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	if err := postgres.RunMigrations(dbURL, migrationsPath(t), zerolog.Nop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, dbURL, 20, 2)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	db := &TestDB{Pool: pool, t: t}
	t.Cleanup(db.Cleanup)
	return db
}

// migrationsPath walks up from the working directory to the repo's
// migrations folder.
func migrationsPath(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("migrations directory not found")
		}
		dir = parent
	}
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes all data from tables.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `
		TRUNCATE TABLE
			audit_logs, outbox_events, liquidity_transfers, agency_balances,
			reconciliation_entries, cash_operations, cancellations,
			pending_transactions, ledger_entries, transactions,
			approval_rules, fee_settings, commission_tiers, exchange_rates
		CASCADE`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// CountRows returns the number of rows in table.
func (db *TestDB) CountRows(ctx context.Context, table string) int {
	db.t.Helper()

	var n int
	if err := db.Pool.QueryRow(ctx, `SELECT count(*) FROM `+table).Scan(&n); err != nil {
		db.t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}

// Stack is every use case wired over the test database.
type Stack struct {
	Settings       *usecase.SettingsUseCase
	Transactions   *usecase.TransactionUseCase
	Approvals      *usecase.ApprovalUseCase
	Cancellations  *usecase.CancellationUseCase
	Ledger         *usecase.LedgerUseCase
	Reconciliation *usecase.ReconciliationUseCase
	Liquidity      *usecase.LiquidityUseCase
	Metrics        *metrics.Metrics
}

// NewStack wires the use cases over db with an in-memory Redis rate cache.
func NewStack(t *testing.T, db *TestDB) *Stack {
	t.Helper()

	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	pool := db.Pool
	m := metrics.New(prometheus.NewRegistry())
	log := zerolog.Nop()

	txManager := postgresRepo.NewTxManager(pool)
	retrier := postgresRepo.NewRetrier(log)
	idGen := postgresRepo.NewULIDGenerator()
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	txRepo := postgresRepo.NewTransactionRepository(pool)
	entryRepo := postgresRepo.NewLedgerEntryRepository(pool)
	approvalRepo := postgresRepo.NewApprovalRepository(pool)
	balanceRepo := postgresRepo.NewAgencyBalanceRepository(pool)

	settings := usecase.NewSettingsUseCase(
		txManager,
		postgresRepo.NewExchangeRateRepository(pool),
		postgresRepo.NewCommissionTierRepository(pool),
		postgresRepo.NewFeeRepository(pool),
		postgresRepo.NewApprovalRuleRepository(pool),
		outboxRepo, auditRepo,
		redisRepo.NewRateCache(redisRepo.NewCache(client, "test:")),
		idGen, retrier, log, m,
	)

	reconciliation := usecase.NewReconciliationUseCase(
		txManager, postgresRepo.NewReconciliationRepository(pool), postgresRepo.NewCashOperationRepository(pool),
		txRepo, balanceRepo, outboxRepo, auditRepo, idGen, retrier, m,
	)
	liquidity := usecase.NewLiquidityUseCase(
		txManager, postgresRepo.NewLiquidityRepository(pool), balanceRepo,
		outboxRepo, auditRepo, idGen, retrier, m,
	)
	balanceLocks := usecase.NewKeyedLocker()
	reconciliation.SetLocker(balanceLocks)
	liquidity.SetLocker(balanceLocks)

	return &Stack{
		Settings: settings,
		Transactions: usecase.NewTransactionUseCase(
			txManager, settings, txRepo, approvalRepo, entryRepo,
			outboxRepo, auditRepo, idGen, retrier, log, m,
		),
		Approvals: usecase.NewApprovalUseCase(
			txManager, approvalRepo, txRepo, entryRepo, outboxRepo, auditRepo,
			idGen, retrier, log, m,
		),
		Cancellations: usecase.NewCancellationUseCase(
			txManager, postgresRepo.NewCancellationRepository(pool), txRepo, entryRepo,
			outboxRepo, auditRepo, idGen, retrier, log, m,
		),
		Ledger:         usecase.NewLedgerUseCase(entryRepo),
		Reconciliation: reconciliation,
		Liquidity:      liquidity,
		Metrics:        m,
	}
}

// SeedPricing stores a USD/EUR rate, a 1% commission tier and a fixed 2 USD
// fee, all matching every transaction type.
func (s *Stack) SeedPricing(t *testing.T, ctx context.Context) {
	t.Helper()

	if _, err := s.Settings.CreateRate(ctx, usecase.CreateRateInput{
		FromCurrency: "USD",
		ToCurrency:   "EUR",
		BaseRate:     decimal.RequireFromString("0.9"),
		TotalSpread:  decimal.RequireFromString("0.01"),
	}); err != nil {
		t.Fatalf("seed rate: %v", err)
	}

	if _, err := s.Settings.CreateTier(ctx, usecase.CreateTierInput{
		Name:            "all amounts",
		TransactionType: domain.WildcardType,
		MinAmount:       decimal.Zero,
		Type:            domain.CommissionPercentage,
		Percentage:      decimal.NewFromInt(1),
		Order:           1,
	}); err != nil {
		t.Fatalf("seed tier: %v", err)
	}

	if _, err := s.Settings.CreateFee(ctx, usecase.CreateFeeInput{
		Name:            "handling",
		Type:            domain.FeeFixed,
		FixedAmount:     decimal.NewFromInt(2),
		Currency:        "USD",
		TransactionType: domain.WildcardType,
	}); err != nil {
		t.Fatalf("seed fee: %v", err)
	}
}

// Actor returns ctx carrying an actor with the given role.
func Actor(ctx context.Context, id string, role domain.Role, agencyID string) context.Context {
	return domain.ContextWithActor(ctx, &domain.Actor{
		ID:       id,
		Name:     "Test " + string(role),
		Role:     role,
		AgencyID: agencyID,
	})
}

// Transfer is a USD to EUR submission for agencyID.
func Transfer(agencyID string, amount decimal.Decimal) usecase.SubmitTransactionInput {
	return usecase.SubmitTransactionInput{
		AgencyID:     agencyID,
		AgentID:      "agent-001",
		TillID:       "till-1",
		SenderName:   "Alice Sender",
		ReceiverName: "Bob Receiver",
		PriceInput: usecase.PriceInput{
			Amount:       amount,
			FromCurrency: "USD",
			ToCurrency:   "EUR",
			Type:         domain.TransactionTransfer,
			Direction:    domain.DirectionSend,
		},
	}
}

// GenerateID generates a new ULID.
func GenerateID() string {
	return ulid.Make().String()
}
