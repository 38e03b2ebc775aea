package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseStatus enumerates ledger row states.
type PurchaseStatus string

const (
	PurchaseStatusPending PurchaseStatus = "pending"
	PurchaseStatusPaid    PurchaseStatus = "paid"
	PurchaseStatusFailed  PurchaseStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s PurchaseStatus) IsTerminal() bool {
	return s == PurchaseStatusPaid || s == PurchaseStatusFailed
}

// Purchase is one ledger row, identified by the provider checkout session id.
type Purchase struct {
	ID          string
	UserID      string
	PackageType string
	Connections int
	Amount      decimal.Decimal
	Currency    string
	SessionID   string
	Status      PurchaseStatus
	Country     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	PaidAt      *time.Time
	CreditedAt  *time.Time
}

// Credited reports whether the purchase has already been applied to the profile.
func (p Purchase) Credited() bool {
	return p.CreditedAt != nil
}

// Package is a priced bundle of connections offered in the storefront.
type Package struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Connections int             `json:"connections"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Popular     bool            `json:"popular"`
	Features    []string        `json:"features"`
}
