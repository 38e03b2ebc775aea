package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"boostshop/internal/billing"
	"boostshop/internal/middleware"
)

type checkoutRequest struct {
	PackageType string          `json:"package_type"`
	Connections int             `json:"connections"`
	Amount      decimal.Decimal `json:"amount"`
}

type checkoutResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

// CreateCheckout opens a hosted checkout for the signed-in user.
func (a *App) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	userID, err := a.currentUserID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req checkoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}

	res, err := a.Checkout.Start(r.Context(), billing.StartRequest{
		UserID:      userID,
		PackageType: req.PackageType,
		Connections: req.Connections,
		Amount:      req.Amount,
		Country:     middleware.CountryFromContext(r.Context()),
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, checkoutResponse{URL: res.URL, SessionID: res.SessionID})
}
