package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"boostshop/internal/domain"
	"boostshop/internal/payment"
)

// VerifyResult is the outcome reported to the client after checkout.
type VerifyResult struct {
	Success          bool   `json:"success"`
	Status           string `json:"status"`
	ConnectionsAdded int    `json:"connections_added,omitempty"`
}

// Verifier reconciles a provider session with the ledger and credits the
// buyer's profile exactly once.
type Verifier struct {
	provider  payment.Provider
	purchases domain.PurchaseRepository
	profiles  domain.ProfileRepository
	logger    zerolog.Logger
	timeouts  Timeouts
	group     singleflight.Group
}

func NewVerifier(provider payment.Provider, purchases domain.PurchaseRepository, profiles domain.ProfileRepository, timeouts Timeouts, logger zerolog.Logger) *Verifier {
	return &Verifier{
		provider:  provider,
		purchases: purchases,
		profiles:  profiles,
		logger:    logger.With().Str("component", "verifier").Logger(),
		timeouts:  timeouts.withDefaults(),
	}
}

// Verify may be called any number of times for the same session. Concurrent
// calls in this process share one execution; calls across processes are
// serialized by the conditional ledger update and the credit function.
func (v *Verifier) Verify(ctx context.Context, sessionID string) (*VerifyResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session_id is required", domain.ErrInvalidRequest)
	}
	// Once issued, a verification runs to completion even if the caller leaves.
	detached := context.WithoutCancel(ctx)
	res, err, _ := v.group.Do(sessionID, func() (any, error) {
		return v.verify(detached, sessionID)
	})
	if err != nil {
		return nil, err
	}
	out := *res.(*VerifyResult)
	return &out, nil
}

func (v *Verifier) verify(ctx context.Context, sessionID string) (*VerifyResult, error) {
	log := v.logger.With().Str("session_id", sessionID).Logger()

	pctx, cancel := context.WithTimeout(ctx, v.timeouts.Provider)
	status, err := v.provider.RetrieveSession(pctx, sessionID)
	cancel()
	if err != nil {
		log.Error().Err(err).Str("kind", domain.ErrorKind(err)).Msg("retrieve checkout session failed")
		return nil, err
	}

	if !status.Paid() {
		sctx, cancel := context.WithTimeout(ctx, v.timeouts.Store)
		_, err := v.purchases.GetBySessionID(sctx, sessionID)
		cancel()
		if err != nil {
			log.Error().Err(err).Str("kind", domain.ErrorKind(err)).Msg("lookup purchase failed")
			return nil, err
		}
		log.Info().Str("payment_status", status.PaymentStatus).Str("status", status.Status).Msg("session not paid")
		return &VerifyResult{Success: false, Status: status.PaymentStatus}, nil
	}

	sctx, cancel := context.WithTimeout(ctx, v.timeouts.Store)
	purchase, transitioned, err := v.purchases.MarkPaid(sctx, sessionID, status.Raw)
	cancel()
	if err != nil {
		log.Error().Err(err).Str("kind", domain.ErrorKind(err)).Msg("mark purchase paid failed")
		return nil, err
	}
	log = log.With().Str("user_id", purchase.UserID).Int("connections", purchase.Connections).Logger()
	if transitioned {
		log.Info().Msg("purchase marked paid")
	}

	if !purchase.Credited() {
		v.credit(ctx, sessionID, log)
	}

	return &VerifyResult{
		Success:          true,
		Status:           payment.PaymentStatusPaid,
		ConnectionsAdded: purchase.Connections,
	}, nil
}

// credit applies the purchase to the profile. Failures leave the purchase
// paid but uncredited; the next verification of the session retries it.
func (v *Verifier) credit(ctx context.Context, sessionID string, log zerolog.Logger) {
	sctx, cancel := context.WithTimeout(ctx, v.timeouts.Store)
	defer cancel()
	res, err := v.profiles.Credit(sctx, sessionID)
	if err != nil {
		err = fmt.Errorf("%w: %v", domain.ErrCreditingInconsistency, err)
		log.Error().Err(err).Str("kind", domain.ErrorKind(err)).Msg("credit profile failed")
		return
	}
	if res == nil {
		log.Debug().Msg("purchase already credited")
		return
	}
	log.Info().
		Int("current_connections", res.CurrentConnections).
		Int("total_purchased_connections", res.TotalPurchasedConnections).
		Msg("profile credited")
}
