package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"boostshop/internal/billing"
	"boostshop/internal/domain"
	"boostshop/internal/infra"
	"boostshop/internal/middleware"
)

// CheckoutStarter opens hosted checkout sessions.
type CheckoutStarter interface {
	Start(ctx context.Context, req billing.StartRequest) (*billing.StartResult, error)
}

// PaymentVerifier confirms a checkout session and credits the buyer.
type PaymentVerifier interface {
	Verify(ctx context.Context, sessionID string) (*billing.VerifyResult, error)
}

// PackageLister exposes the storefront price list.
type PackageLister interface {
	List() []domain.Package
}

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	Config   *infra.Config
	Logger   zerolog.Logger
	DB       Pinger
	Checkout CheckoutStarter
	Verifier PaymentVerifier
	Profiles domain.ProfileRepository
	Catalog  PackageLister
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, msg string) {
	a.json(w, status, map[string]string{"error": msg, "code": code})
}

// fail maps a domain error to a response. Only validation messages are
// echoed back; everything else gets a fixed message.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.ErrorKind(err)
	status, msg := http.StatusInternalServerError, "internal error"
	switch kind {
	case "invalid_request":
		status, msg = http.StatusBadRequest, err.Error()
	case "unauthorized":
		status, msg = http.StatusUnauthorized, "unauthorized"
	case "session_not_found":
		status, msg = http.StatusNotFound, "checkout session not found"
	case "not_found":
		status, msg = http.StatusNotFound, "not found"
	case "duplicate_session":
		status, msg = http.StatusConflict, "checkout session already recorded"
	case "unavailable":
		status, msg = http.StatusServiceUnavailable, "temporarily unavailable, please retry"
	}
	if status >= http.StatusInternalServerError {
		a.log(r).Error().Err(err).Str("kind", kind).Msg("request failed")
	}
	a.error(w, status, kind, msg)
}

func (a *App) log(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &a.Logger
}

func (a *App) currentUserID(r *http.Request) (string, error) {
	id := middleware.UserIDFromContext(r.Context())
	if id == "" {
		return "", domain.ErrUnauthorized
	}
	return id, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body", domain.ErrInvalidRequest)
	}
	return nil
}
