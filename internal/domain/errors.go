package domain

import "errors"

var (
	// Rate errors
	ErrRateNotFound        = errors.New("no active exchange rate for currency pair")
	ErrNegativeSpread      = errors.New("spread must not be negative")
	ErrInvalidRate         = errors.New("rate must be positive")
	ErrInvalidExchangeRate = errors.New("exchange rate must be non-zero")

	// Amount and currency errors
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrSameCurrency  = errors.New("source and destination currencies must differ")

	// Commission and fee errors
	ErrTierNotFound         = errors.New("commission tier not found")
	ErrTierOverlap          = errors.New("commission tier overlaps another tier")
	ErrInvalidTierBounds    = errors.New("commission tier minimum must be below maximum")
	ErrUnboundedTierNotLast = errors.New("only the last commission tier may be unbounded")
	ErrInvalidPercentage    = errors.New("percentage must be between 0 and 100")
	ErrTierCoverageGap      = errors.New("commission tiers are not contiguous")

	// Transaction errors
	ErrTransactionNotFound     = errors.New("transaction not found")
	ErrTransactionNotCompleted = errors.New("transaction is not completed")
	ErrInvalidTransactionState = errors.New("invalid transaction state")

	// Ledger errors
	ErrReversalOfReversal = errors.New("reversal entries cannot be reversed")
	ErrNoEntriesToReverse = errors.New("no ledger entries to reverse")
	ErrLedgerUnbalanced   = errors.New("ledger entries do not balance")

	// Cancellation errors
	ErrCancellationNotFound     = errors.New("cancellation not found")
	ErrInvalidCancellationState = errors.New("invalid cancellation state")
	ErrCancellationNotAllowed   = errors.New("cancellation not allowed")

	// Approval errors
	ErrApprovalNotFound    = errors.New("approval request not found")
	ErrApprovalNotRequired = errors.New("no approval rule matches transaction")
	ErrAlreadyTreated      = errors.New("approval request already treated")
	ErrSelfApproval        = errors.New("requester cannot approve own request")

	// Reconciliation errors
	ErrReconciliationNotFound          = errors.New("reconciliation entry not found")
	ErrInvalidReconciliationTransition = errors.New("invalid reconciliation status transition")

	// Liquidity errors
	ErrLiquidityTransferNotFound = errors.New("liquidity transfer not found")
	ErrInvalidLiquidityState     = errors.New("liquidity transfer is not pending")
	ErrInsufficientLiquidity     = errors.New("insufficient agency balance")
	ErrSameAgency                = errors.New("cannot transfer liquidity to the same agency")

	ErrNotFound = errors.New("not found")
)
