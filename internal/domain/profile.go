package domain

import "time"

// ProfileTier is the badge shown next to a profile's connection count.
type ProfileTier string

const (
	TierStarter ProfileTier = "Starter"
	TierRising  ProfileTier = "Rising"
	TierPro     ProfileTier = "Pro"
	TierLegend  ProfileTier = "Legend"
)

// Profile holds the connection counters of an authenticated user.
// Counters only ever move through ProfileRepository.Credit.
type Profile struct {
	UserID                    string
	Username                  string
	CurrentConnections        int
	TotalPurchasedConnections int
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// Tier derives the display tier from the current connection count.
func (p Profile) Tier() ProfileTier {
	switch {
	case p.CurrentConnections > 1000:
		return TierLegend
	case p.CurrentConnections > 500:
		return TierPro
	case p.CurrentConnections > 100:
		return TierRising
	default:
		return TierStarter
	}
}

// PurchasedShare is the percentage of current connections that were bought.
func (p Profile) PurchasedShare() int {
	current := p.CurrentConnections
	if current < 1 {
		current = 1
	}
	return int(float64(p.TotalPurchasedConnections)/float64(current)*100 + 0.5)
}

// CreditResult is the profile state right after a purchase was credited.
type CreditResult struct {
	UserID                    string
	ConnectionsAdded          int
	CurrentConnections        int
	TotalPurchasedConnections int
}
