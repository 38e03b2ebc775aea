package domain

import "context"

// ProfileRepository reads profiles and applies purchase credits.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*Profile, error)
	// Credit applies the connections of a paid, not yet credited purchase to
	// its owner's profile in one atomic step. It returns (nil, nil) when the
	// purchase has already been credited.
	Credit(ctx context.Context, sessionID string) (*CreditResult, error)
}

// PurchaseRepository handles the purchase ledger.
type PurchaseRepository interface {
	CreatePending(ctx context.Context, purchase *Purchase) error
	GetBySessionID(ctx context.Context, sessionID string) (*Purchase, error)
	// MarkPaid moves a pending purchase to paid. transitioned is false when the
	// row was already paid. A missing row yields ErrSessionNotFound and a row in
	// another terminal state yields ErrInvalidTransition.
	MarkPaid(ctx context.Context, sessionID string, providerPayload []byte) (purchase *Purchase, transitioned bool, err error)
}
