package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"golang.org/x/text/currency"

	"boostshop/internal/domain"
)

// StripeConfig configures the Stripe Checkout adapter.
type StripeConfig struct {
	SecretKey  string
	APIBase    string
	SuccessURL string
	CancelURL  string
	Timeout    time.Duration
}

// StripeProvider implements Provider on Stripe Checkout.
type StripeProvider struct {
	api        *client.API
	successURL string
	cancelURL  string
}

// NewStripeProvider builds a client with network retries disabled; retries
// belong to the caller, which re-invokes the idempotent operation.
func NewStripeProvider(cfg StripeConfig, logger zerolog.Logger) *StripeProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	backendCfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: timeout},
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     stripeLogger{logger: logger.With().Str("component", "stripe").Logger()},
	}
	if cfg.APIBase != "" {
		backendCfg.URL = stripe.String(cfg.APIBase)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg)

	api := &client.API{}
	api.Init(cfg.SecretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})

	return &StripeProvider{api: api, successURL: cfg.SuccessURL, cancelURL: cfg.CancelURL}
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	unitAmount, err := MinorUnits(req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(p.successURL),
		CancelURL:         stripe.String(p.cancelURL),
		ClientReferenceID: stripe.String(req.UserID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(strings.ToLower(req.Currency)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(req.PackageName),
					Description: stripe.String(fmt.Sprintf("%d connections", req.Connections)),
				},
				UnitAmount: stripe.Int64(unitAmount),
			},
			Quantity: stripe.Int64(1),
		}},
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.PurchaseID)
	params.AddMetadata("purchase_id", req.PurchaseID)
	params.AddMetadata("user_id", req.UserID)
	params.AddMetadata("package_type", req.PackageID)
	params.AddMetadata("connections", strconv.Itoa(req.Connections))

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	if sess.ID == "" || sess.URL == "" {
		return nil, fmt.Errorf("%w: checkout session without id or url", domain.ErrProviderUnavailable)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func (p *StripeProvider) RetrieveSession(ctx context.Context, sessionID string) (*SessionStatus, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	sess, err := p.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	status := &SessionStatus{
		ID:            sess.ID,
		PaymentStatus: string(sess.PaymentStatus),
		Status:        string(sess.Status),
	}
	if sess.LastResponse != nil {
		status.Raw = sess.LastResponse.RawJSON
	}
	return status, nil
}

func (p *StripeProvider) ExpireSession(ctx context.Context, sessionID string) error {
	params := &stripe.CheckoutSessionExpireParams{}
	params.Context = ctx
	if _, err := p.api.CheckoutSessions.Expire(sessionID, params); err != nil {
		return mapStripeError(err)
	}
	return nil
}

// MinorUnits converts amount into the smallest unit of the ISO currency cur.
func MinorUnits(amount decimal.Decimal, cur string) (int64, error) {
	unit, err := currency.ParseISO(cur)
	if err != nil {
		return 0, fmt.Errorf("%w: currency %q: %v", domain.ErrInvalidRequest, cur, err)
	}
	if !amount.IsPositive() {
		return 0, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidRequest)
	}
	scale, _ := currency.Standard.Rounding(unit)
	minor := amount.Shift(int32(scale))
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("%w: amount %s has more than %d decimals", domain.ErrInvalidRequest, amount, scale)
	}
	return minor.IntPart(), nil
}

func mapStripeError(err error) error {
	var serr *stripe.Error
	if errors.As(err, &serr) {
		switch {
		case serr.Code == stripe.ErrorCodeResourceMissing || serr.HTTPStatusCode == http.StatusNotFound:
			return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, serr.Msg)
		case serr.HTTPStatusCode == http.StatusTooManyRequests,
			serr.HTTPStatusCode >= http.StatusInternalServerError,
			serr.Type == stripe.ErrorTypeAPI:
			return fmt.Errorf("%w: stripe %d: %s", domain.ErrProviderUnavailable, serr.HTTPStatusCode, serr.Msg)
		}
		return fmt.Errorf("stripe %d %s: %s", serr.HTTPStatusCode, serr.Code, serr.Msg)
	}
	return fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
}

type stripeLogger struct {
	logger zerolog.Logger
}

func (l stripeLogger) Debugf(format string, v ...interface{}) { l.logger.Debug().Msgf(format, v...) }
func (l stripeLogger) Infof(format string, v ...interface{})  { l.logger.Debug().Msgf(format, v...) }
func (l stripeLogger) Warnf(format string, v ...interface{})  { l.logger.Warn().Msgf(format, v...) }
func (l stripeLogger) Errorf(format string, v ...interface{}) { l.logger.Error().Msgf(format, v...) }

var _ Provider = (*StripeProvider)(nil)
