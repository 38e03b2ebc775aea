package infra

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/currency"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	JWTSecret          string
	JWTAudience        string
	StripeSecretKey    string
	StripeAPIBase      string
	PublicBaseURL      string
	SuccessPath        string
	CancelPath         string
	Currency           string
	GeoIPDBPath        string
	CORSAllowedOrigins []string
	ProviderTimeout    time.Duration
	DBTimeout          time.Duration
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTAudience:        getEnv("JWT_AUDIENCE", "authenticated"),
		StripeSecretKey:    os.Getenv("STRIPE_SECRET_KEY"),
		StripeAPIBase:      strings.TrimRight(os.Getenv("STRIPE_API_BASE"), "/"),
		PublicBaseURL:      strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:5173"), "/"),
		SuccessPath:        getEnv("CHECKOUT_SUCCESS_PATH", "/payment-success"),
		CancelPath:         getEnv("CHECKOUT_CANCEL_PATH", "/"),
		Currency:           strings.ToUpper(getEnv("PAYMENT_CURRENCY", "USD")),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		ProviderTimeout:    getEnvSeconds("PROVIDER_TIMEOUT_SECONDS", 10),
		DBTimeout:          getEnvSeconds("DB_TIMEOUT_SECONDS", 5),
		HTTPReadTimeout:    getEnvSeconds("HTTP_READ_TIMEOUT_SECONDS", 15),
		HTTPWriteTimeout:   getEnvSeconds("HTTP_WRITE_TIMEOUT_SECONDS", 30),
		HTTPIdleTimeout:    getEnvSeconds("HTTP_IDLE_TIMEOUT_SECONDS", 60),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	var missing []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if cfg.StripeSecretKey == "" {
		missing = append(missing, "STRIPE_SECRET_KEY")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %v", missing)
	}

	if _, err := currency.ParseISO(cfg.Currency); err != nil {
		return nil, fmt.Errorf("PAYMENT_CURRENCY %q is not an ISO 4217 code: %w", cfg.Currency, err)
	}
	if _, err := url.ParseRequestURI(cfg.PublicBaseURL); err != nil {
		return nil, fmt.Errorf("PUBLIC_BASE_URL is invalid: %w", err)
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{cfg.PublicBaseURL}
	}

	return cfg, nil
}

// SuccessURL is the hosted checkout return target. The provider substitutes
// the {CHECKOUT_SESSION_ID} placeholder with the session id.
func (c *Config) SuccessURL() string {
	return c.PublicBaseURL + ensureSlash(c.SuccessPath) + "?session_id={CHECKOUT_SESSION_ID}"
}

// CancelURL is where the hosted checkout sends a buyer who backs out.
func (c *Config) CancelURL() string {
	return c.PublicBaseURL + ensureSlash(c.CancelPath)
}

func ensureSlash(p string) string {
	if strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvSeconds(key string, fallback int) time.Duration {
	secs := getEnvInt(key, fallback)
	if secs <= 0 {
		secs = fallback
	}
	return time.Duration(secs) * time.Second
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
