package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"boostshop/internal/http/handlers"
	"boostshop/internal/middleware"
)

func NewRouter(app *handlers.App, lookup middleware.CountryLookup) http.Handler {
	cfg := app.Config
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(app.Logger),
		chimw.Recoverer,
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.Geo(lookup),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/packages", app.ListPackages)

	limited := middleware.RateLimit(cfg.RateLimitPerMin, time.Minute)
	auth := middleware.AuthJWT(cfg.JWTSecret, cfg.JWTAudience)

	r.Group(func(r chi.Router) {
		r.Use(limited)
		r.Post("/v1/payments/verify", app.VerifyPayment)
		r.Post("/functions/v1/verify-payment", app.VerifyPayment)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Get("/v1/me/profile", app.MyProfile)
		r.With(limited).Post("/v1/checkout", app.CreateCheckout)
		r.With(limited).Post("/functions/v1/create-payment", app.CreateCheckout)
	})

	return r
}
