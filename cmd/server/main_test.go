package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/goremit/internal/infrastructure/config"
)

func testConfig() *config.Config {
	return &config.Config{
		RateCacheTTL:       time.Minute,
		RateLimitRPS:       1000,
		RateLimitBurst:     1000,
		IdempotencyTTL:     time.Hour,
		OutboxBatchSize:    10,
		OutboxInterval:     time.Second,
		CancellationWindow: 24 * time.Hour,
		DefaultMargin:      decimal.RequireFromString("0.005"),
	}
}

func newTestApp(t *testing.T, cfg *config.Config) (*app, pgxmock.PgxPoolIface, *miniredis.Miniredis) {
	t.Helper()

	pool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	t.Cleanup(pool.Close)

	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return newApp(cfg, pool, client, zerolog.Nop(), prometheus.NewRegistry()), pool, s
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCheckConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{name: "defaults are accepted", mutate: func(*config.Config) {}},
		{
			name:    "auth without secret",
			mutate:  func(c *config.Config) { c.AuthEnabled = true },
			wantErr: "JWT_SECRET",
		},
		{
			name:    "token issuing without secret",
			mutate:  func(c *config.Config) { c.TokenIssuing = true },
			wantErr: "JWT_SECRET",
		},
		{
			name: "auth with secret",
			mutate: func(c *config.Config) {
				c.AuthEnabled = true
				c.JWTSecret = "secret"
			},
		},
		{
			name:    "zero cancellation window",
			mutate:  func(c *config.Config) { c.CancellationWindow = 0 },
			wantErr: "CANCELLATION_WINDOW",
		},
		{
			name:    "negative margin",
			mutate:  func(c *config.Config) { c.DefaultMargin = decimal.NewFromInt(-1) },
			wantErr: "DEFAULT_MARGIN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)

			err := checkConfig(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %s, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNewAppHealth(t *testing.T) {
	a, pool, _ := newTestApp(t, testConfig())
	pool.ExpectPing()

	if rec := get(t, a.handler, "/health"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", rec.Code)
	}
	if rec := get(t, a.handler, "/ready"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /ready, got %d: %s", rec.Code, rec.Body.String())
	}
	if err := pool.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNewAppReadinessFailsWithoutRedis(t *testing.T) {
	a, pool, s := newTestApp(t, testConfig())
	pool.ExpectPing()
	s.Close()

	rec := get(t, a.handler, "/ready")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "redis") {
		t.Fatalf("expected redis failure in body, got %s", rec.Body.String())
	}
}

func TestNewAppServesFeesFromPostgres(t *testing.T) {
	a, pool, _ := newTestApp(t, testConfig())

	pool.ExpectQuery(`FROM fee_settings`).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "type", "fixed_amount", "percentage", "currency",
			"transaction_type", "is_active", "created_at", "updated_at",
		}))

	rec := get(t, a.handler, "/api/v1/fees")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if err := pool.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNewAppExposesMetrics(t *testing.T) {
	a, _, _ := newTestApp(t, testConfig())

	_ = get(t, a.handler, "/health")

	rec := get(t, a.handler, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "goremit_http_requests_total") {
		t.Fatalf("expected http request counter in metrics output")
	}
}

func TestNewAppTokenIssuing(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = "test-secret"
	cfg.JWTExpiration = time.Hour

	a, _, _ := newTestApp(t, cfg)
	body := `{"user_id":"u-1","name":"Ada","role":"agent","agency_id":"ag-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", strings.NewReader(body))
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound && rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected token endpoint to be hidden, got %d", rec.Code)
	}

	cfg.TokenIssuing = true
	a, _, _ = newTestApp(t, cfg)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", strings.NewReader(body))
	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK && rec.Code != http.StatusCreated {
		t.Fatalf("expected token to be issued, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCleanupLimitersStopsOnCancel(t *testing.T) {
	a, _, _ := newTestApp(t, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cleanupLimiters(ctx, a.rateLimiter, zerolog.Nop())
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanupLimiters did not return after cancel")
	}
}
