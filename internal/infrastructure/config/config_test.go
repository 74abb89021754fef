package config_test

import (
	"testing"
	"time"

	"github.com/iho/goremit/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.CancellationWindow != 24*time.Hour {
		t.Fatalf("expected 24h cancellation window, got %s", cfg.CancellationWindow)
	}

	if cfg.DefaultMargin.String() != "0.005" {
		t.Fatalf("expected default margin 0.005, got %s", cfg.DefaultMargin)
	}

	if cfg.RateCacheTTL != time.Minute {
		t.Fatalf("expected 1m rate cache TTL, got %s", cfg.RateCacheTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("CANCELLATION_WINDOW", "12h")
	t.Setenv("DEFAULT_MARGIN", "0.01")
	t.Setenv("JWT_SECRET", "top-secret")
	t.Setenv("AUTH_ENABLED", "true")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" || cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom URLs, got %s %s", cfg.DatabaseURL, cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" || cfg.RateLimitRPS != 2.5 {
		t.Fatalf("expected HTTP overrides, got port=%s rps=%v", cfg.HTTPPort, cfg.RateLimitRPS)
	}

	if cfg.CancellationWindow != 12*time.Hour {
		t.Fatalf("expected cancellation window override, got %s", cfg.CancellationWindow)
	}

	if cfg.DefaultMargin.String() != "0.01" {
		t.Fatalf("expected margin override, got %s", cfg.DefaultMargin)
	}

	if cfg.JWTSecret != "top-secret" || !cfg.AuthEnabled {
		t.Fatalf("expected auth settings to be set, got secret=%s enabled=%v", cfg.JWTSecret, cfg.AuthEnabled)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := map[string]string{
		"HTTP_READ_TIMEOUT": "not-a-duration",
		"DEFAULT_MARGIN":    "half",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)

			if _, err := config.Load(); err == nil {
				t.Fatalf("expected error for invalid %s", key)
			}
		})
	}
}
