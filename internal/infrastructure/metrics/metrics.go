package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transaction metrics
	TransactionsPriced    prometheus.Counter
	TransactionsCompleted *prometheus.CounterVec
	TransactionAmount     *prometheus.HistogramVec
	TransactionDuration   prometheus.Histogram
	TransactionErrors     *prometheus.CounterVec
	MissingRates          *prometheus.CounterVec

	// Ledger metrics
	LedgerEntriesPosted prometheus.Counter
	LedgerImbalances    prometheus.Counter

	// Approval metrics
	ApprovalsRequested prometheus.Counter
	ApprovalDecisions  *prometheus.CounterVec

	// Cancellation metrics
	CancellationsDenied    *prometheus.CounterVec
	CancellationsCompleted prometheus.Counter
	CancellationsUnposted  prometheus.Counter

	// Reconciliation metrics
	ReconciliationEntries *prometheus.CounterVec

	// Liquidity metrics
	LiquidityTransfers *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Redis metrics
	RateCacheLookups *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		TransactionsPriced: f.NewCounter(prometheus.CounterOpts{
			Name: "goremit_transactions_priced_total",
			Help: "Total number of pricing computations",
		}),
		TransactionsCompleted: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goremit_transactions_completed_total",
				Help: "Total number of completed transactions",
			},
			[]string{"type", "from_currency", "to_currency"},
		),
		TransactionAmount: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "goremit_transaction_amount",
				Help:    "Transaction amounts in source currency",
				Buckets: []float64{10, 100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"from_currency"},
		),
		TransactionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "goremit_transaction_duration_seconds",
			Help:    "Duration of transaction submission",
			Buckets: prometheus.DefBuckets,
		}),
		TransactionErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goremit_transaction_errors_total",
				Help: "Total number of failed transaction submissions",
			},
			[]string{"reason"},
		),
		MissingRates: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goremit_missing_rates_total",
				Help: "Pricing attempts without an active rate",
			},
			[]string{"pair"},
		),
		LedgerEntriesPosted: f.NewCounter(prometheus.CounterOpts{
			Name: "goremit_ledger_entries_posted_total",
			Help: "Total number of ledger lines written",
		}),
		LedgerImbalances: f.NewCounter(prometheus.CounterOpts{
			Name: "goremit_ledger_imbalances_total",
			Help: "Consistency checks that found unbalanced currencies",
		}),
		ApprovalsRequested: f.NewCounter(prometheus.CounterOpts{
			Name: "goremit_approvals_requested_total",
			Help: "Transactions held for maker-checker approval",
		}),
		ApprovalDecisions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goremit_approval_decisions_total",
				Help: "Approval decisions by outcome",
			},
			[]string{"decision"},
		),
		CancellationsDenied: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goremit_cancellations_denied_total",
				Help: "Cancellation attempts denied by policy",
			},
			[]string{"role"},
		),
		CancellationsCompleted: f.NewCounter(prometheus.CounterOpts{
			Name: "goremit_cancellations_completed_total",
			Help: "Cancellations with confirmed reversal postings",
		}),
		CancellationsUnposted: f.NewCounter(prometheus.CounterOpts{
			Name: "goremit_cancellations_unposted_total",
			Help: "Cancellations whose reversal postings failed",
		}),
		ReconciliationEntries: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goremit_reconciliation_entries_total",
				Help: "Reconciliation entries by status",
			},
			[]string{"status"},
		),
		LiquidityTransfers: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goremit_liquidity_transfers_total",
				Help: "Liquidity transfers by final status",
			},
			[]string{"status"},
		),
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goremit_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "goremit_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		RateCacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goremit_rate_cache_lookups_total",
				Help: "Rate table cache lookups by result",
			},
			[]string{"result"},
		),
		RateLimitHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goremit_rate_limit_hits_total",
				Help: "Total number of rate limit hits",
			},
			[]string{"client"},
		),
		AuditLogsCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goremit_audit_logs_total",
				Help: "Total number of audit logs created",
			},
			[]string{"action", "status"},
		),
	}
}
