package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// PaymentStatusPaid is the only provider payment status that releases a credit.
const PaymentStatusPaid = "paid"

// Provider is a hosted-checkout payment processor.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*SessionStatus, error)
	ExpireSession(ctx context.Context, sessionID string) error
}

// CheckoutRequest describes one single-item purchase.
type CheckoutRequest struct {
	PurchaseID  string
	UserID      string
	PackageID   string
	PackageName string
	Connections int
	Amount      decimal.Decimal
	Currency    string
}

// CheckoutSession is the hosted page the buyer is redirected to.
type CheckoutSession struct {
	ID  string
	URL string
}

// SessionStatus is the provider's authoritative view of a session.
type SessionStatus struct {
	ID            string
	PaymentStatus string
	Status        string
	// Raw is the provider response body, kept on the ledger row.
	Raw []byte
}

// Paid reports whether the provider has captured the payment.
func (s SessionStatus) Paid() bool {
	return s.PaymentStatus == PaymentStatusPaid
}
