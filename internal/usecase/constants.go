package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultRateCacheTTL is how long the active rate table stays cached
	DefaultRateCacheTTL = time.Minute

	// DefaultPageSize bounds list queries that do not specify a limit
	DefaultPageSize = 100
)
