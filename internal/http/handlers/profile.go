package handlers

import (
	"net/http"
	"time"
)

type profileResponse struct {
	UserID                    string    `json:"user_id"`
	Username                  string    `json:"username"`
	CurrentConnections        int       `json:"current_connections"`
	TotalPurchasedConnections int       `json:"total_purchased_connections"`
	Tier                      string    `json:"tier"`
	PurchasedShare            int       `json:"purchased_share"`
	UpdatedAt                 time.Time `json:"updated_at"`
}

func (a *App) MyProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := a.currentUserID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	p, err := a.Profiles.GetByUserID(r.Context(), userID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, profileResponse{
		UserID:                    p.UserID,
		Username:                  p.Username,
		CurrentConnections:        p.CurrentConnections,
		TotalPurchasedConnections: p.TotalPurchasedConnections,
		Tier:                      string(p.Tier()),
		PurchasedShare:            p.PurchasedShare(),
		UpdatedAt:                 p.UpdatedAt,
	})
}
