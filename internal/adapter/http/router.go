package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/goremit/internal/adapter/http/handler"
	"github.com/iho/goremit/internal/adapter/http/middleware"
	"github.com/iho/goremit/internal/infrastructure/auth"
	"github.com/iho/goremit/internal/infrastructure/metrics"
	"github.com/iho/goremit/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	HealthHandler         *handler.HealthHandler
	AuthHandler           *handler.AuthHandler
	SettingsHandler       *handler.SettingsHandler
	TransactionHandler    *handler.TransactionHandler
	ApprovalHandler       *handler.ApprovalHandler
	CancellationHandler   *handler.CancellationHandler
	LedgerHandler         *handler.LedgerHandler
	ReconciliationHandler *handler.ReconciliationHandler
	LiquidityHandler      *handler.LiquidityHandler

	Logger zerolog.Logger

	// Optional
	Metrics          *metrics.Metrics
	MetricsHandler   http.Handler
	RateLimiter      *middleware.RateLimiter
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	JWTManager       *auth.JWTManager
	AuthRequired     bool
	// TokenIssuing mounts POST /auth/token, which signs any requested identity.
	TokenIssuing bool
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics(cfg.Metrics))

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.AuthHandler != nil && cfg.TokenIssuing {
			r.Group(func(r chi.Router) {
				if cfg.RateLimiter != nil {
					r.Use(cfg.RateLimiter.Limit)
				}
				r.Post("/auth/token", cfg.AuthHandler.IssueToken)
			})
		}

		r.Group(func(r chi.Router) {
			apiRoutes(r, cfg)
		})
	})

	return r
}

func apiRoutes(r chi.Router, cfg RouterConfig) {
	if cfg.JWTManager != nil {
		r.Use(middleware.Authenticate(cfg.JWTManager, cfg.AuthRequired))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}
	if cfg.IdempotencyStore != nil {
		ttl := cfg.IdempotencyTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, ttl, cfg.Logger).Wrap)
	}

	if cfg.AuthHandler != nil {
		r.Get("/auth/me", cfg.AuthHandler.Me)
	}

	// Settings
	r.Route("/rates", func(r chi.Router) {
		r.Post("/", cfg.SettingsHandler.CreateRate)
		r.Get("/", cfg.SettingsHandler.ListRates)
		r.Get("/quote", cfg.SettingsHandler.Quote)
	})
	r.Route("/commission-tiers", func(r chi.Router) {
		r.Post("/", cfg.SettingsHandler.CreateTier)
		r.Get("/", cfg.SettingsHandler.ListTiers)
		r.Put("/{id}/max-amount", cfg.SettingsHandler.AdjustTierMax)
	})
	r.Route("/fees", func(r chi.Router) {
		r.Post("/", cfg.SettingsHandler.CreateFee)
		r.Get("/", cfg.SettingsHandler.ListFees)
	})
	r.Route("/approval-rules", func(r chi.Router) {
		r.Post("/", cfg.SettingsHandler.CreateApprovalRule)
		r.Get("/", cfg.SettingsHandler.ListApprovalRules)
	})

	// Transactions
	r.Route("/transactions", func(r chi.Router) {
		r.Post("/price", cfg.TransactionHandler.Price)
		r.Post("/", cfg.TransactionHandler.Submit)
		r.Get("/", cfg.TransactionHandler.List)
		r.Get("/{id}", cfg.TransactionHandler.Get)
		r.Get("/{id}/entries", cfg.LedgerHandler.Entries)
		r.Get("/{id}/cancellation-eligibility", cfg.CancellationHandler.Eligibility)
		r.Post("/{id}/cancel", cfg.CancellationHandler.Cancel)
	})
	r.Route("/cancellations", func(r chi.Router) {
		r.Get("/unposted", cfg.CancellationHandler.ListUnposted)
		r.Get("/{id}", cfg.CancellationHandler.Get)
		r.Post("/{id}/retry-posting", cfg.CancellationHandler.RetryPosting)
	})

	// Approvals
	r.Route("/approvals", func(r chi.Router) {
		r.Get("/", cfg.ApprovalHandler.List)
		r.Get("/{id}", cfg.ApprovalHandler.Get)
		r.Post("/{id}/approve", cfg.ApprovalHandler.Approve)
		r.Post("/{id}/reject", cfg.ApprovalHandler.Reject)
	})

	// Ledger
	r.Route("/ledger", func(r chi.Router) {
		r.Get("/agencies/{id}", cfg.LedgerHandler.Agency)
		r.Get("/consolidated", cfg.LedgerHandler.Consolidated)
		r.Get("/consistency", cfg.LedgerHandler.CheckConsistency)
	})

	// Tills
	r.Post("/cash-operations", cfg.ReconciliationHandler.RecordCashOperation)
	r.Route("/reconciliations", func(r chi.Router) {
		r.Post("/", cfg.ReconciliationHandler.Create)
		r.Get("/report", cfg.ReconciliationHandler.Report)
		r.Post("/{id}/document", cfg.ReconciliationHandler.Document)
		r.Post("/{id}/resolve", cfg.ReconciliationHandler.Resolve)
	})

	// Liquidity
	r.Route("/liquidity-transfers", func(r chi.Router) {
		r.Post("/", cfg.LiquidityHandler.Initiate)
		r.Get("/{id}", cfg.LiquidityHandler.Get)
		r.Post("/{id}/settle", cfg.LiquidityHandler.Settle)
		r.Post("/{id}/fail", cfg.LiquidityHandler.Fail)
	})
	r.Get("/agencies/{id}/balances", cfg.LiquidityHandler.Balances)
}
