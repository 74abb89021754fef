package usecase

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/infrastructure/metrics"
)

// KeyedLocker serializes work per key inside one process.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedLocker creates an empty KeyedLocker.
func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[string]*keyedLock)}
}

// Lock blocks until key is free and returns the matching unlock func.
func (l *KeyedLocker) Lock(key string) func() {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyedLock{}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	kl.mu.Lock()

	return func() {
		kl.mu.Unlock()

		l.mu.Lock()
		kl.refs--
		if kl.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

// LockAll takes every distinct key in sorted order, so two callers locking
// overlapping sets cannot deadlock.
func (l *KeyedLocker) LockAll(keys ...string) func() {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	sorted = slices.Compact(sorted)

	unlocks := make([]func(), 0, len(sorted))
	for _, k := range sorted {
		unlocks = append(unlocks, l.Lock(k))
	}

	return func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
}

// balanceKey names the in-process lock guarding one agency balance.
func balanceKey(agencyID, currency string) string {
	return agencyID + ":" + currency
}

func (l *KeyedLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// runInTx runs fn inside a database transaction bounded by
// DefaultTransactionTimeout and commits it. The whole attempt is repeated
// when the retrier classifies the failure as transient, so fn must load
// everything it mutates.
func runInTx(ctx context.Context, txManager TransactionManager, retrier Retrier, fn func(txCtx context.Context, tx Transaction) error) error {
	attempt := func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		if err := fn(txCtx, tx); err != nil {
			return err
		}

		return tx.Commit(txCtx)
	}

	if retrier == nil {
		return attempt()
	}

	return retrier.Retry(ctx, attempt)
}

// auditor writes audit logs in the caller's transaction. A nil repository
// disables auditing.
type auditor struct {
	repo    AuditRepository
	idGen   IDGenerator
	metrics *metrics.Metrics
}

func (a auditor) record(ctx context.Context, tx Transaction, action domain.AuditAction, resourceType, resourceID string, before, after any) error {
	if a.repo == nil {
		return nil
	}

	log := &domain.AuditLog{
		ID:           a.idGen.Generate(),
		UserID:       domain.ActorID(ctx),
		Action:       string(action),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		BeforeState:  domain.MarshalState(before),
		AfterState:   domain.MarshalState(after),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	}
	if err := a.repo.CreateTx(ctx, tx, log); err != nil {
		return err
	}

	if a.metrics != nil {
		a.metrics.AuditLogsCreated.WithLabelValues(log.Action, log.Status).Inc()
	}

	return nil
}

func newEvent(idGen IDGenerator, aggregateType, aggregateID, eventType string, payload map[string]any, now time.Time) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:            idGen.Generate(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
		Published:     false,
	}
}

// requireActor returns the authenticated actor or ErrUnauthorized.
func requireActor(ctx context.Context) (*domain.Actor, error) {
	actor, ok := domain.ActorFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return actor, nil
}

// checkRole rejects an authenticated actor whose role fails allowed.
// Unauthenticated calls pass through as the system user.
func checkRole(ctx context.Context, allowed func(domain.Role) bool) error {
	actor, ok := domain.ActorFromContext(ctx)
	if !ok {
		return nil
	}
	if !allowed(actor.Role) {
		return domain.ErrInsufficientRole
	}
	return nil
}

func pageSize(limit int) int {
	if limit <= 0 || limit > DefaultPageSize {
		return DefaultPageSize
	}
	return limit
}
