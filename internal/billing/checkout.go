package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"boostshop/internal/domain"
	"boostshop/internal/payment"
)

// PackageValidator resolves a client selection to a priced package.
type PackageValidator interface {
	Validate(label string, connections int, amount decimal.Decimal) (domain.Package, error)
}

// Timeouts bound each external call made while serving one request.
type Timeouts struct {
	Provider time.Duration
	Store    time.Duration
}

func (t Timeouts) withDefaults() Timeouts {
	if t.Provider <= 0 {
		t.Provider = 10 * time.Second
	}
	if t.Store <= 0 {
		t.Store = 5 * time.Second
	}
	return t
}

// StartRequest is an authenticated user's package selection.
type StartRequest struct {
	UserID      string
	PackageType string
	Connections int
	Amount      decimal.Decimal
	Country     string
}

// StartResult carries the hosted checkout redirect.
type StartResult struct {
	URL        string `json:"url"`
	SessionID  string `json:"session_id"`
	PurchaseID string `json:"-"`
}

// Checkout opens hosted checkout sessions and records them as pending purchases.
type Checkout struct {
	packages  PackageValidator
	provider  payment.Provider
	purchases domain.PurchaseRepository
	logger    zerolog.Logger
	currency  string
	timeouts  Timeouts
}

func NewCheckout(packages PackageValidator, provider payment.Provider, purchases domain.PurchaseRepository, currency string, timeouts Timeouts, logger zerolog.Logger) *Checkout {
	return &Checkout{
		packages:  packages,
		provider:  provider,
		purchases: purchases,
		logger:    logger.With().Str("component", "checkout").Logger(),
		currency:  strings.ToUpper(currency),
		timeouts:  timeouts.withDefaults(),
	}
}

// Start creates the provider session first and the ledger row second. If the
// row cannot be written the session is expired, so a payable session never
// exists without its pending purchase.
func (c *Checkout) Start(ctx context.Context, req StartRequest) (*StartResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	pkg, err := c.packages.Validate(req.PackageType, req.Connections, req.Amount)
	if err != nil {
		return nil, err
	}

	purchaseID := uuid.NewString()
	log := c.logger.With().Str("user_id", req.UserID).Str("purchase_id", purchaseID).Str("package", pkg.ID).Logger()

	pctx, cancel := context.WithTimeout(ctx, c.timeouts.Provider)
	sess, err := c.provider.CreateCheckoutSession(pctx, payment.CheckoutRequest{
		PurchaseID:  purchaseID,
		UserID:      req.UserID,
		PackageID:   pkg.ID,
		PackageName: pkg.Name,
		Connections: pkg.Connections,
		Amount:      pkg.Price,
		Currency:    c.currency,
	})
	cancel()
	if err != nil {
		log.Error().Err(err).Str("kind", domain.ErrorKind(err)).Msg("create checkout session failed")
		return nil, err
	}
	log = log.With().Str("session_id", sess.ID).Logger()

	purchase := &domain.Purchase{
		ID:          purchaseID,
		UserID:      req.UserID,
		PackageType: pkg.Name,
		Connections: pkg.Connections,
		Amount:      pkg.Price,
		Currency:    c.currency,
		SessionID:   sess.ID,
		Country:     req.Country,
	}
	sctx, cancel := context.WithTimeout(ctx, c.timeouts.Store)
	err = c.purchases.CreatePending(sctx, purchase)
	cancel()
	if err != nil {
		log.Error().Err(err).Str("kind", domain.ErrorKind(err)).Msg("record pending purchase failed")
		c.expire(ctx, sess.ID, log)
		return nil, err
	}

	log.Info().Int("connections", pkg.Connections).Str("amount", pkg.Price.StringFixed(2)).Msg("checkout session opened")
	return &StartResult{URL: sess.URL, SessionID: sess.ID, PurchaseID: purchaseID}, nil
}

func (c *Checkout) expire(ctx context.Context, sessionID string, log zerolog.Logger) {
	ectx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeouts.Provider)
	defer cancel()
	if err := c.provider.ExpireSession(ectx, sessionID); err != nil {
		log.Error().Err(err).Msg("expire orphaned checkout session failed")
		return
	}
	log.Warn().Msg("orphaned checkout session expired")
}

func (r StartRequest) validate() error {
	var problems []string
	if strings.TrimSpace(r.UserID) == "" {
		problems = append(problems, "user_id is required")
	}
	if strings.TrimSpace(r.PackageType) == "" {
		problems = append(problems, "package_type is required")
	}
	if r.Connections <= 0 {
		problems = append(problems, "connections must be positive")
	}
	if !r.Amount.IsPositive() {
		problems = append(problems, "amount must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidRequest, strings.Join(problems, "; "))
	}
	return nil
}
