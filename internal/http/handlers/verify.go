package handlers

import (
	"net/http"
	"strings"
)

type verifyRequest struct {
	SessionID string `json:"session_id"`
}

// VerifyPayment is called by the storefront after the provider redirects
// back with ?session_id=. The body takes precedence over the query string.
func (a *App) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			a.fail(w, r, err)
			return
		}
	}
	if strings.TrimSpace(req.SessionID) == "" {
		req.SessionID = r.URL.Query().Get("session_id")
	}

	res, err := a.Verifier.Verify(r.Context(), req.SessionID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, res)
}
