package mocks

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/usecase"
	"github.com/shopspring/decimal"
)

// MockExchangeRateRepository is an in-memory ExchangeRateRepository.
type MockExchangeRateRepository struct {
	mu    sync.RWMutex
	rates []domain.ExchangeRateSetting

	ListActiveFunc  func(ctx context.Context) ([]domain.ExchangeRateSetting, error)
	ListActiveCalls int
}

func NewMockExchangeRateRepository(rates ...domain.ExchangeRateSetting) *MockExchangeRateRepository {
	return &MockExchangeRateRepository{rates: rates}
}

func (m *MockExchangeRateRepository) Create(ctx context.Context, tx usecase.Transaction, rate *domain.ExchangeRateSetting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rates = append(m.rates, *rate)
	return nil
}

func (m *MockExchangeRateRepository) DeactivatePair(ctx context.Context, tx usecase.Transaction, from, to string, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rates {
		if m.rates[i].Matches(from, to) {
			m.rates[i].IsActive = false
			m.rates[i].UpdatedAt = updatedAt
		}
	}
	return nil
}

func (m *MockExchangeRateRepository) ListActive(ctx context.Context) ([]domain.ExchangeRateSetting, error) {
	m.mu.Lock()
	m.ListActiveCalls++
	m.mu.Unlock()
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.ExchangeRateSetting
	for _, r := range m.rates {
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MockExchangeRateRepository) List(ctx context.Context, limit, offset int) ([]domain.ExchangeRateSetting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return page(m.rates, limit, offset), nil
}

// MockCommissionTierRepository is an in-memory CommissionTierRepository.
type MockCommissionTierRepository struct {
	mu    sync.RWMutex
	tiers map[string]domain.CommissionTier

	UpdateCalls int
}

func NewMockCommissionTierRepository(tiers ...domain.CommissionTier) *MockCommissionTierRepository {
	m := &MockCommissionTierRepository{tiers: make(map[string]domain.CommissionTier)}
	for _, t := range tiers {
		m.tiers[t.ID] = t.Clone()
	}
	return m
}

func (m *MockCommissionTierRepository) Create(ctx context.Context, tx usecase.Transaction, tier *domain.CommissionTier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tiers[tier.ID] = tier.Clone()
	return nil
}

func (m *MockCommissionTierRepository) Update(ctx context.Context, tx usecase.Transaction, tier *domain.CommissionTier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tiers[tier.ID]; !ok {
		return domain.ErrTierNotFound
	}
	m.UpdateCalls++
	m.tiers[tier.ID] = tier.Clone()
	return nil
}

func (m *MockCommissionTierRepository) ListForUpdate(ctx context.Context, tx usecase.Transaction) ([]domain.CommissionTier, error) {
	return m.List(ctx)
}

func (m *MockCommissionTierRepository) List(ctx context.Context) ([]domain.CommissionTier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.CommissionTier, 0, len(m.tiers))
	for _, t := range m.tiers {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MinAmount.LessThan(out[j].MinAmount) })
	return out, nil
}

// MockFeeRepository is an in-memory FeeRepository.
type MockFeeRepository struct {
	mu   sync.RWMutex
	fees []domain.FeeSetting
}

func NewMockFeeRepository(fees ...domain.FeeSetting) *MockFeeRepository {
	return &MockFeeRepository{fees: fees}
}

func (m *MockFeeRepository) Create(ctx context.Context, tx usecase.Transaction, fee *domain.FeeSetting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fees = append(m.fees, *fee)
	return nil
}

func (m *MockFeeRepository) List(ctx context.Context) ([]domain.FeeSetting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.FeeSetting(nil), m.fees...), nil
}

// MockApprovalRuleRepository is an in-memory ApprovalRuleRepository.
type MockApprovalRuleRepository struct {
	mu    sync.RWMutex
	rules []domain.ApprovalRule
}

func NewMockApprovalRuleRepository(rules ...domain.ApprovalRule) *MockApprovalRuleRepository {
	return &MockApprovalRuleRepository{rules: rules}
}

func (m *MockApprovalRuleRepository) Create(ctx context.Context, tx usecase.Transaction, rule *domain.ApprovalRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, *rule)
	return nil
}

func (m *MockApprovalRuleRepository) List(ctx context.Context) ([]domain.ApprovalRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.ApprovalRule(nil), m.rules...), nil
}

// MockTransactionRepository is an in-memory TransactionRepository.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]domain.Transaction
	order        []string

	CreateFunc func(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{transactions: make(map[string]domain.Transaction)}
}

// Put seeds a stored transaction.
func (m *MockTransactionRepository) Put(t domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[t.ID]; !ok {
		m.order = append(m.order, t.ID)
	}
	m.transactions[t.ID] = t
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, t)
	}
	m.Put(*t)
	return nil
}

func (m *MockTransactionRepository) Update(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[t.ID]; !ok {
		return domain.ErrTransactionNotFound
	}
	m.transactions[t.ID] = *t
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.transactions[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	return &t, nil
}

func (m *MockTransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	return m.GetByID(ctx, id)
}

func (m *MockTransactionRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Transaction
	for _, id := range m.order {
		t := m.transactions[id]
		if filter.AgencyID != "" && t.AgencyID != filter.AgencyID {
			continue
		}
		if filter.AgentID != "" && t.AgentID != filter.AgentID {
			continue
		}
		if filter.Currency != "" && t.FromCurrency != filter.Currency && t.ToCurrency != filter.Currency {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, t)
	}
	return page(out, filter.Limit, filter.Offset), nil
}

// MockLedgerEntryRepository is an in-memory LedgerEntryRepository.
type MockLedgerEntryRepository struct {
	mu      sync.RWMutex
	entries []domain.LedgerEntry

	CreateBatchFunc func(ctx context.Context, tx usecase.Transaction, entries []domain.LedgerEntry) error
}

func NewMockLedgerEntryRepository(entries ...domain.LedgerEntry) *MockLedgerEntryRepository {
	return &MockLedgerEntryRepository{entries: entries}
}

func (m *MockLedgerEntryRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, entries []domain.LedgerEntry) error {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, tx, entries)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *MockLedgerEntryRepository) GetByTransaction(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.LedgerEntry
	for _, e := range m.entries {
		if e.TransactionID == transactionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockLedgerEntryRepository) ListByAgency(ctx context.Context, agencyID string) ([]domain.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.LedgerEntry
	for _, e := range m.entries {
		if e.AgencyID == agencyID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockLedgerEntryRepository) ListAgencies(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := map[string]bool{}
	var out []string
	for _, e := range m.entries {
		if !seen[e.AgencyID] {
			seen[e.AgencyID] = true
			out = append(out, e.AgencyID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *MockLedgerEntryRepository) TotalsByCurrency(ctx context.Context) ([]usecase.CurrencyTotals, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byCurrency := map[string]*usecase.CurrencyTotals{}
	var order []string
	for _, e := range m.entries {
		t, ok := byCurrency[e.Currency]
		if !ok {
			t = &usecase.CurrencyTotals{Currency: e.Currency, Debits: decimal.Zero, Credits: decimal.Zero}
			byCurrency[e.Currency] = t
			order = append(order, e.Currency)
		}
		t.Debits = t.Debits.Add(e.DebitAmount)
		t.Credits = t.Credits.Add(e.CreditAmount)
	}
	sort.Strings(order)
	out := make([]usecase.CurrencyTotals, 0, len(order))
	for _, c := range order {
		out = append(out, *byCurrency[c])
	}
	return out, nil
}

// All returns every stored entry.
func (m *MockLedgerEntryRepository) All() []domain.LedgerEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.LedgerEntry(nil), m.entries...)
}

// MockCancellationRepository is an in-memory CancellationRepository.
type MockCancellationRepository struct {
	mu            sync.RWMutex
	cancellations map[string]domain.Cancellation
}

func NewMockCancellationRepository() *MockCancellationRepository {
	return &MockCancellationRepository{cancellations: make(map[string]domain.Cancellation)}
}

func (m *MockCancellationRepository) Create(ctx context.Context, tx usecase.Transaction, c *domain.Cancellation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancellations[c.ID] = *c
	return nil
}

func (m *MockCancellationRepository) Update(ctx context.Context, tx usecase.Transaction, c *domain.Cancellation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cancellations[c.ID]; !ok {
		return domain.ErrCancellationNotFound
	}
	m.cancellations[c.ID] = *c
	return nil
}

func (m *MockCancellationRepository) GetByID(ctx context.Context, id string) (*domain.Cancellation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.cancellations[id]
	if !ok {
		return nil, domain.ErrCancellationNotFound
	}
	return &c, nil
}

func (m *MockCancellationRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Cancellation, error) {
	return m.GetByID(ctx, id)
}

func (m *MockCancellationRepository) ListByStatus(ctx context.Context, status domain.CancellationStatus, limit, offset int) ([]domain.Cancellation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Cancellation
	for _, c := range m.cancellations {
		if c.Status == status {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, limit, offset), nil
}

// MockApprovalRepository is an in-memory ApprovalRepository.
type MockApprovalRepository struct {
	mu      sync.RWMutex
	pending map[string]domain.PendingTransaction
}

func NewMockApprovalRepository() *MockApprovalRepository {
	return &MockApprovalRepository{pending: make(map[string]domain.PendingTransaction)}
}

func (m *MockApprovalRepository) Create(ctx context.Context, tx usecase.Transaction, p *domain.PendingTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[p.ID] = *p
	return nil
}

func (m *MockApprovalRepository) Update(ctx context.Context, tx usecase.Transaction, p *domain.PendingTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pending[p.ID]; !ok {
		return domain.ErrApprovalNotFound
	}
	m.pending[p.ID] = *p
	return nil
}

func (m *MockApprovalRepository) GetByID(ctx context.Context, id string) (*domain.PendingTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.pending[id]
	if !ok {
		return nil, domain.ErrApprovalNotFound
	}
	return &p, nil
}

func (m *MockApprovalRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.PendingTransaction, error) {
	return m.GetByID(ctx, id)
}

func (m *MockApprovalRepository) ListByStatus(ctx context.Context, status domain.ApprovalStatus, limit, offset int) ([]domain.PendingTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.PendingTransaction
	for _, p := range m.pending {
		if p.Status == status {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, limit, offset), nil
}

// MockCashOperationRepository is an in-memory CashOperationRepository.
type MockCashOperationRepository struct {
	mu  sync.RWMutex
	ops []domain.CashOperation
}

func NewMockCashOperationRepository(ops ...domain.CashOperation) *MockCashOperationRepository {
	return &MockCashOperationRepository{ops: ops}
}

func (m *MockCashOperationRepository) Create(ctx context.Context, tx usecase.Transaction, op *domain.CashOperation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, *op)
	return nil
}

func (m *MockCashOperationRepository) ListByTill(ctx context.Context, agencyID, agentID, tillID, currency string) ([]domain.CashOperation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.CashOperation
	for _, op := range m.ops {
		if op.AgencyID == agencyID && op.AgentID == agentID && op.TillID == tillID && op.Currency == currency {
			out = append(out, op)
		}
	}
	return out, nil
}

// MockReconciliationRepository is an in-memory ReconciliationRepository.
type MockReconciliationRepository struct {
	mu      sync.RWMutex
	entries map[string]domain.ReconciliationEntry
}

func NewMockReconciliationRepository() *MockReconciliationRepository {
	return &MockReconciliationRepository{entries: make(map[string]domain.ReconciliationEntry)}
}

func (m *MockReconciliationRepository) Create(ctx context.Context, tx usecase.Transaction, e *domain.ReconciliationEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.ID] = *e
	return nil
}

func (m *MockReconciliationRepository) Update(ctx context.Context, tx usecase.Transaction, e *domain.ReconciliationEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[e.ID]; !ok {
		return domain.ErrReconciliationNotFound
	}
	m.entries[e.ID] = *e
	return nil
}

func (m *MockReconciliationRepository) GetByID(ctx context.Context, id string) (*domain.ReconciliationEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, domain.ErrReconciliationNotFound
	}
	return &e, nil
}

func (m *MockReconciliationRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.ReconciliationEntry, error) {
	return m.GetByID(ctx, id)
}

func (m *MockReconciliationRepository) List(ctx context.Context, filter domain.ReconciliationFilter) ([]domain.ReconciliationEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.ReconciliationEntry
	for _, e := range m.entries {
		if filter.AgencyID != "" && e.AgencyID != filter.AgencyID {
			continue
		}
		if filter.AgentID != "" && e.AgentID != filter.AgentID {
			continue
		}
		if filter.Currency != "" && e.Currency != filter.Currency {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MockLiquidityRepository is an in-memory LiquidityRepository.
type MockLiquidityRepository struct {
	mu        sync.RWMutex
	transfers map[string]domain.LiquidityTransfer
}

func NewMockLiquidityRepository() *MockLiquidityRepository {
	return &MockLiquidityRepository{transfers: make(map[string]domain.LiquidityTransfer)}
}

func (m *MockLiquidityRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.LiquidityTransfer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers[t.ID] = *t
	return nil
}

func (m *MockLiquidityRepository) Update(ctx context.Context, tx usecase.Transaction, t *domain.LiquidityTransfer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transfers[t.ID]; !ok {
		return domain.ErrLiquidityTransferNotFound
	}
	m.transfers[t.ID] = *t
	return nil
}

func (m *MockLiquidityRepository) GetByID(ctx context.Context, id string) (*domain.LiquidityTransfer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.transfers[id]
	if !ok {
		return nil, domain.ErrLiquidityTransferNotFound
	}
	return &t, nil
}

func (m *MockLiquidityRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LiquidityTransfer, error) {
	return m.GetByID(ctx, id)
}

// MockAgencyBalanceRepository is an in-memory AgencyBalanceRepository.
type MockAgencyBalanceRepository struct {
	mu       sync.RWMutex
	balances map[string]domain.AgencyBalance

	// Locked records GetForUpdate calls as "agency:currency".
	Locked []string
}

func NewMockAgencyBalanceRepository(balances ...domain.AgencyBalance) *MockAgencyBalanceRepository {
	m := &MockAgencyBalanceRepository{balances: make(map[string]domain.AgencyBalance)}
	for _, b := range balances {
		m.balances[b.AgencyID+":"+b.Currency] = b
	}
	return m
}

func (m *MockAgencyBalanceRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, agencyID, currency string) (*domain.AgencyBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := agencyID + ":" + currency
	m.Locked = append(m.Locked, key)
	b, ok := m.balances[key]
	if !ok {
		b = domain.AgencyBalance{AgencyID: agencyID, Currency: currency, Balance: decimal.Zero}
		m.balances[key] = b
	}
	return &b, nil
}

func (m *MockAgencyBalanceRepository) Update(ctx context.Context, tx usecase.Transaction, balance *domain.AgencyBalance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[balance.AgencyID+":"+balance.Currency] = *balance
	return nil
}

func (m *MockAgencyBalanceRepository) ListByAgency(ctx context.Context, agencyID string) ([]domain.AgencyBalance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.AgencyBalance
	for _, b := range m.balances {
		if b.AgencyID == agencyID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out, nil
}

// MockOutboxRepository records outbox events in memory.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			out = append(out, e)
		}
	}
	return page(out, limit, 0), nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

func (m *MockOutboxRepository) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if e.AggregateType == aggregateType && e.AggregateID == aggregateID {
			out = append(out, e)
		}
	}
	return page(out, limit, offset), nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.events[:0]
	for _, e := range m.events {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	m.events = kept
	return nil
}

// EventTypes returns the recorded event types in order.
func (m *MockOutboxRepository) EventTypes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.EventType)
	}
	return out
}

// MockAuditRepository records audit logs in memory.
type MockAuditRepository struct {
	mu   sync.RWMutex
	logs []*domain.AuditLog
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *MockAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	return m.Create(ctx, log)
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.AuditLog
	for _, l := range m.logs {
		if filter.UserID != "" && l.UserID != filter.UserID {
			continue
		}
		if filter.Action != "" && l.Action != filter.Action {
			continue
		}
		if filter.ResourceType != "" && l.ResourceType != filter.ResourceType {
			continue
		}
		if filter.ResourceID != "" && l.ResourceID != filter.ResourceID {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (m *MockAuditRepository) GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	return m.List(ctx, domain.AuditFilter{ResourceType: resourceType, ResourceID: resourceID})
}

// MockRateCache is an in-memory RateCache.
type MockRateCache struct {
	mu    sync.Mutex
	rates []domain.ExchangeRateSetting
	warm  bool

	Invalidations int
}

func NewMockRateCache() *MockRateCache {
	return &MockRateCache{}
}

func (m *MockRateCache) GetActive(ctx context.Context) ([]domain.ExchangeRateSetting, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.warm {
		return nil, false, nil
	}
	return append([]domain.ExchangeRateSetting(nil), m.rates...), true, nil
}

func (m *MockRateCache) SetActive(ctx context.Context, rates []domain.ExchangeRateSetting, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rates = append([]domain.ExchangeRateSetting(nil), rates...)
	m.warm = true
	return nil
}

func (m *MockRateCache) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rates = nil
	m.warm = false
	m.Invalidations++
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	mu        sync.Mutex
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
	CommitErr error
	Commits   int
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{
		CommitFunc: func(ctx context.Context) error {
			if m.CommitErr != nil {
				return m.CommitErr
			}
			m.mu.Lock()
			m.Commits++
			m.mu.Unlock()
			return nil
		},
	}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockRetrier runs an operation up to Attempts times while it fails.
type MockRetrier struct {
	Attempts int
	Calls    int
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	var err error
	for i := 0; i < max(m.Attempts, 1); i++ {
		m.Calls++
		if err = operation(); err == nil {
			return nil
		}
	}
	return err
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return "mock-id-" + strconv.Itoa(m.counter)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
