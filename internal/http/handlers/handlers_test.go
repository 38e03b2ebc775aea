package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"boostshop/internal/billing"
	"boostshop/internal/catalog"
	"boostshop/internal/domain"
	"boostshop/internal/infra"
	"boostshop/internal/middleware"
)

type stubCheckout struct {
	got billing.StartRequest
	res *billing.StartResult
	err error
}

func (s *stubCheckout) Start(_ context.Context, req billing.StartRequest) (*billing.StartResult, error) {
	s.got = req
	return s.res, s.err
}

type stubVerifier struct {
	gotSession string
	res        *billing.VerifyResult
	err        error
}

func (s *stubVerifier) Verify(_ context.Context, sessionID string) (*billing.VerifyResult, error) {
	s.gotSession = sessionID
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: session_id is required", domain.ErrInvalidRequest)
	}
	return s.res, s.err
}

type stubProfiles struct {
	profile *domain.Profile
}

func (s stubProfiles) GetByUserID(_ context.Context, userID string) (*domain.Profile, error) {
	if s.profile == nil || s.profile.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return s.profile, nil
}

func (stubProfiles) Credit(context.Context, string) (*domain.CreditResult, error) {
	return nil, errors.New("not used")
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newTestApp() *App {
	return &App{
		Config:  &infra.Config{Currency: "USD"},
		Logger:  zerolog.Nop(),
		Catalog: catalog.New(),
	}
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestCreateCheckout(t *testing.T) {
	app := newTestApp()
	starter := &stubCheckout{res: &billing.StartResult{URL: "https://checkout.example.com/cs_1", SessionID: "cs_1"}}
	app.Checkout = starter

	body := `{"package_type":"Professional Pro","connections":500,"amount":29.99}`
	req := httptest.NewRequest(http.MethodPost, "/v1/checkout", strings.NewReader(body))
	ctx := middleware.ContextWithUserID(req.Context(), "user-1")
	ctx = context.WithValue(ctx, middleware.CountryKey, "ID")
	rr := httptest.NewRecorder()

	app.CreateCheckout(rr, req.WithContext(ctx))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	out := decodeBody(t, rr)
	if out["url"] != "https://checkout.example.com/cs_1" || out["session_id"] != "cs_1" {
		t.Fatalf("response = %v", out)
	}
	if starter.got.UserID != "user-1" || starter.got.Connections != 500 || starter.got.Country != "ID" {
		t.Fatalf("start request = %#v", starter.got)
	}
	if !starter.got.Amount.Equal(decimal.RequireFromString("29.99")) {
		t.Fatalf("amount = %s, want 29.99", starter.got.Amount)
	}
}

func TestCreateCheckoutErrors(t *testing.T) {
	tests := []struct {
		name       string
		user       string
		body       string
		startErr   error
		wantStatus int
		wantCode   string
	}{
		{name: "anonymous", body: `{}`, wantStatus: http.StatusUnauthorized, wantCode: "unauthorized"},
		{name: "malformed body", user: "user-1", body: `{`, wantStatus: http.StatusBadRequest, wantCode: "invalid_request"},
		{name: "invalid selection", user: "user-1", body: `{}`, startErr: fmt.Errorf("%w: amount must be positive", domain.ErrInvalidRequest), wantStatus: http.StatusBadRequest, wantCode: "invalid_request"},
		{name: "provider down", user: "user-1", body: `{}`, startErr: fmt.Errorf("%w: stripe 503", domain.ErrProviderUnavailable), wantStatus: http.StatusServiceUnavailable, wantCode: "unavailable"},
		{name: "unexpected", user: "user-1", body: `{}`, startErr: errors.New("secret internal detail"), wantStatus: http.StatusInternalServerError, wantCode: "internal"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp()
			app.Checkout = &stubCheckout{err: tc.startErr}
			req := httptest.NewRequest(http.MethodPost, "/v1/checkout", strings.NewReader(tc.body))
			req = req.WithContext(middleware.ContextWithUserID(req.Context(), tc.user))
			rr := httptest.NewRecorder()

			app.CreateCheckout(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tc.wantStatus)
			}
			out := decodeBody(t, rr)
			if out["code"] != tc.wantCode {
				t.Fatalf("code = %v, want %s", out["code"], tc.wantCode)
			}
			if msg, _ := out["error"].(string); strings.Contains(msg, "secret") {
				t.Fatalf("internal detail leaked: %q", msg)
			}
		})
	}
}

func TestVerifyPayment(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		body        string
		res         *billing.VerifyResult
		err         error
		wantStatus  int
		wantSession string
		wantBody    map[string]any
	}{
		{
			name:        "paid",
			target:      "/v1/payments/verify",
			body:        `{"session_id":"cs_1"}`,
			res:         &billing.VerifyResult{Success: true, Status: "paid", ConnectionsAdded: 500},
			wantStatus:  http.StatusOK,
			wantSession: "cs_1",
			wantBody:    map[string]any{"success": true, "status": "paid", "connections_added": float64(500)},
		},
		{
			name:        "unpaid omits connections",
			target:      "/v1/payments/verify",
			body:        `{"session_id":"cs_2"}`,
			res:         &billing.VerifyResult{Success: false, Status: "unpaid"},
			wantStatus:  http.StatusOK,
			wantSession: "cs_2",
			wantBody:    map[string]any{"success": false, "status": "unpaid"},
		},
		{
			name:        "query fallback",
			target:      "/v1/payments/verify?session_id=cs_3",
			res:         &billing.VerifyResult{Success: true, Status: "paid", ConnectionsAdded: 100},
			wantStatus:  http.StatusOK,
			wantSession: "cs_3",
		},
		{
			name:       "missing session",
			target:     "/v1/payments/verify",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:        "unknown session",
			target:      "/v1/payments/verify",
			body:        `{"session_id":"cs_x"}`,
			err:         fmt.Errorf("%w: cs_x", domain.ErrSessionNotFound),
			wantStatus:  http.StatusNotFound,
			wantSession: "cs_x",
			wantBody:    map[string]any{"code": "session_not_found"},
		},
		{
			name:        "store timeout",
			target:      "/v1/payments/verify",
			body:        `{"session_id":"cs_y"}`,
			err:         context.DeadlineExceeded,
			wantStatus:  http.StatusServiceUnavailable,
			wantSession: "cs_y",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp()
			verifier := &stubVerifier{res: tc.res, err: tc.err}
			app.Verifier = verifier

			var req *http.Request
			if tc.body == "" {
				req = httptest.NewRequest(http.MethodPost, tc.target, nil)
			} else {
				req = httptest.NewRequest(http.MethodPost, tc.target, strings.NewReader(tc.body))
			}
			rr := httptest.NewRecorder()
			app.VerifyPayment(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rr.Code, tc.wantStatus, rr.Body.String())
			}
			if verifier.gotSession != tc.wantSession {
				t.Fatalf("session = %q, want %q", verifier.gotSession, tc.wantSession)
			}
			if tc.wantBody == nil {
				return
			}
			out := decodeBody(t, rr)
			for k, v := range tc.wantBody {
				if out[k] != v {
					t.Fatalf("body[%s] = %v, want %v (body %v)", k, out[k], v, out)
				}
			}
			if _, ok := tc.wantBody["connections_added"]; !ok {
				if _, present := out["connections_added"]; present && tc.res != nil {
					t.Fatalf("connections_added should be omitted: %v", out)
				}
			}
		})
	}
}

func TestMyProfile(t *testing.T) {
	app := newTestApp()
	app.Profiles = stubProfiles{profile: &domain.Profile{
		UserID:                    "user-1",
		Username:                  "rina",
		CurrentConnections:        620,
		TotalPurchasedConnections: 500,
		UpdatedAt:                 time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}}

	req := httptest.NewRequest(http.MethodGet, "/v1/me/profile", nil)
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), "user-1"))
	rr := httptest.NewRecorder()
	app.MyProfile(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	out := decodeBody(t, rr)
	if out["tier"] != "Pro" || out["purchased_share"] != float64(81) || out["current_connections"] != float64(620) {
		t.Fatalf("profile = %v", out)
	}

	other := httptest.NewRequest(http.MethodGet, "/v1/me/profile", nil)
	other = other.WithContext(middleware.ContextWithUserID(other.Context(), "user-2"))
	rr = httptest.NewRecorder()
	app.MyProfile(rr, other)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing profile status = %d, want 404", rr.Code)
	}
}

func TestListPackages(t *testing.T) {
	app := newTestApp()
	rr := httptest.NewRecorder()
	app.ListPackages(rr, httptest.NewRequest(http.MethodGet, "/v1/packages", nil))

	var out struct {
		Currency string           `json:"currency"`
		Items    []domain.Package `json:"items"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Currency != "USD" || len(out.Items) != 3 {
		t.Fatalf("packages = %#v", out)
	}
	if out.Items[1].Name != "Professional Pro" || !out.Items[1].Price.Equal(decimal.RequireFromString("29.99")) || !out.Items[1].Popular {
		t.Fatalf("professional package = %#v", out.Items[1])
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp()
	app.DB = stubPinger{}
	rr := httptest.NewRecorder()
	app.Health(rr, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	app.DB = stubPinger{err: errors.New("connection refused")}
	rr = httptest.NewRecorder()
	app.Health(rr, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
}
