package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goremit/internal/domain"
)

// ExchangeRateRepository defines data access for exchange rate settings.
type ExchangeRateRepository interface {
	Create(ctx context.Context, tx Transaction, rate *domain.ExchangeRateSetting) error
	DeactivatePair(ctx context.Context, tx Transaction, from, to string, updatedAt time.Time) error
	ListActive(ctx context.Context) ([]domain.ExchangeRateSetting, error)
	List(ctx context.Context, limit, offset int) ([]domain.ExchangeRateSetting, error)
}

// CommissionTierRepository defines data access for commission tiers.
type CommissionTierRepository interface {
	Create(ctx context.Context, tx Transaction, tier *domain.CommissionTier) error
	Update(ctx context.Context, tx Transaction, tier *domain.CommissionTier) error
	ListForUpdate(ctx context.Context, tx Transaction) ([]domain.CommissionTier, error)
	List(ctx context.Context) ([]domain.CommissionTier, error)
}

// FeeRepository defines data access for fee settings.
type FeeRepository interface {
	Create(ctx context.Context, tx Transaction, fee *domain.FeeSetting) error
	List(ctx context.Context) ([]domain.FeeSetting, error)
}

// ApprovalRuleRepository defines data access for approval rules.
type ApprovalRuleRepository interface {
	Create(ctx context.Context, tx Transaction, rule *domain.ApprovalRule) error
	List(ctx context.Context) ([]domain.ApprovalRule, error)
}

// TransactionRepository defines data access for transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, t *domain.Transaction) error
	Update(ctx context.Context, tx Transaction, t *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Transaction, error)
	List(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error)
}

// CurrencyTotals is the sum of debits and credits posted in one currency.
type CurrencyTotals struct {
	Currency string          `json:"currency"`
	Debits   decimal.Decimal `json:"debits"`
	Credits  decimal.Decimal `json:"credits"`
}

// LedgerEntryRepository defines data access for ledger entries.
type LedgerEntryRepository interface {
	CreateBatch(ctx context.Context, tx Transaction, entries []domain.LedgerEntry) error
	GetByTransaction(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error)
	ListByAgency(ctx context.Context, agencyID string) ([]domain.LedgerEntry, error)
	ListAgencies(ctx context.Context) ([]string, error)
	TotalsByCurrency(ctx context.Context) ([]CurrencyTotals, error)
}

// CancellationRepository defines data access for cancellations.
type CancellationRepository interface {
	Create(ctx context.Context, tx Transaction, c *domain.Cancellation) error
	Update(ctx context.Context, tx Transaction, c *domain.Cancellation) error
	GetByID(ctx context.Context, id string) (*domain.Cancellation, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Cancellation, error)
	ListByStatus(ctx context.Context, status domain.CancellationStatus, limit, offset int) ([]domain.Cancellation, error)
}

// ApprovalRepository defines data access for pending transactions.
type ApprovalRepository interface {
	Create(ctx context.Context, tx Transaction, p *domain.PendingTransaction) error
	Update(ctx context.Context, tx Transaction, p *domain.PendingTransaction) error
	GetByID(ctx context.Context, id string) (*domain.PendingTransaction, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.PendingTransaction, error)
	ListByStatus(ctx context.Context, status domain.ApprovalStatus, limit, offset int) ([]domain.PendingTransaction, error)
}

// CashOperationRepository defines data access for till cash operations.
type CashOperationRepository interface {
	Create(ctx context.Context, tx Transaction, op *domain.CashOperation) error
	ListByTill(ctx context.Context, agencyID, agentID, tillID, currency string) ([]domain.CashOperation, error)
}

// ReconciliationRepository defines data access for reconciliation entries.
type ReconciliationRepository interface {
	Create(ctx context.Context, tx Transaction, e *domain.ReconciliationEntry) error
	Update(ctx context.Context, tx Transaction, e *domain.ReconciliationEntry) error
	GetByID(ctx context.Context, id string) (*domain.ReconciliationEntry, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.ReconciliationEntry, error)
	List(ctx context.Context, filter domain.ReconciliationFilter) ([]domain.ReconciliationEntry, error)
}

// LiquidityRepository defines data access for liquidity transfers.
type LiquidityRepository interface {
	Create(ctx context.Context, tx Transaction, t *domain.LiquidityTransfer) error
	Update(ctx context.Context, tx Transaction, t *domain.LiquidityTransfer) error
	GetByID(ctx context.Context, id string) (*domain.LiquidityTransfer, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.LiquidityTransfer, error)
}

// AgencyBalanceRepository defines data access for agency liquidity balances.
type AgencyBalanceRepository interface {
	// GetForUpdate locks the balance row, creating a zero balance if absent.
	GetForUpdate(ctx context.Context, tx Transaction, agencyID, currency string) (*domain.AgencyBalance, error)
	Update(ctx context.Context, tx Transaction, balance *domain.AgencyBalance) error
	ListByAgency(ctx context.Context, agencyID string) ([]domain.AgencyBalance, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
	GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RateCache caches the active exchange rate table.
type RateCache interface {
	// GetActive returns the cached table; ok is false on a miss.
	GetActive(ctx context.Context) (rates []domain.ExchangeRateSetting, ok bool, err error)
	SetActive(ctx context.Context, rates []domain.ExchangeRateSetting, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
