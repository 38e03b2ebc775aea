package handlers

import (
	"net/http"

	"boostshop/internal/domain"
)

func (a *App) ListPackages(w http.ResponseWriter, r *http.Request) {
	currency := "USD"
	if a.Config != nil {
		currency = a.Config.Currency
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	a.json(w, http.StatusOK, struct {
		Currency string           `json:"currency"`
		Items    []domain.Package `json:"items"`
	}{Currency: currency, Items: a.Catalog.List()})
}
