package infra

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("PUBLIC_BASE_URL", "")
	t.Setenv("PAYMENT_CURRENCY", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("PROVIDER_TIMEOUT_SECONDS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Currency != "USD" {
		t.Fatalf("Currency = %q, want USD", cfg.Currency)
	}
	if cfg.ProviderTimeout != 10*time.Second {
		t.Fatalf("ProviderTimeout = %s, want 10s", cfg.ProviderTimeout)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "http://localhost:5173" {
		t.Fatalf("CORSAllowedOrigins mismatch: %#v", cfg.CORSAllowedOrigins)
	}
	if cfg.JWTAudience != "authenticated" {
		t.Fatalf("JWTAudience = %q, want authenticated", cfg.JWTAudience)
	}
}

func TestLoadConfigReportsAllMissingVariables(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STRIPE_SECRET_KEY", "")

	_, err := LoadConfig()
	if err == nil {
		t.Fatalf("expected error for missing variables")
	}
	for _, name := range []string{"DATABASE_URL", "JWT_SECRET", "STRIPE_SECRET_KEY"} {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("error %q does not mention %s", err, name)
		}
	}
}

func TestLoadConfigRejectsUnknownCurrency(t *testing.T) {
	setRequired(t)
	t.Setenv("PAYMENT_CURRENCY", "XYZQ")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected currency validation error")
	}
}

func TestLoadConfigCheckoutURLs(t *testing.T) {
	setRequired(t)
	t.Setenv("PUBLIC_BASE_URL", "https://boost.example.com/")
	t.Setenv("CHECKOUT_SUCCESS_PATH", "payment-success")
	t.Setenv("CHECKOUT_CANCEL_PATH", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com , https://b.example.com ")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got, want := cfg.SuccessURL(), "https://boost.example.com/payment-success?session_id={CHECKOUT_SESSION_ID}"; got != want {
		t.Fatalf("SuccessURL = %q, want %q", got, want)
	}
	if got, want := cfg.CancelURL(), "https://boost.example.com/"; got != want {
		t.Fatalf("CancelURL = %q, want %q", got, want)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("CORSAllowedOrigins mismatch: %#v", cfg.CORSAllowedOrigins)
	}
}
