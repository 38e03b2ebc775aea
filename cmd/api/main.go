package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"boostshop/internal/adapter/repo"
	"boostshop/internal/billing"
	"boostshop/internal/catalog"
	"boostshop/internal/http/handlers"
	httpapi "boostshop/internal/http/httpapi"
	"boostshop/internal/infra"
	"boostshop/internal/infra/geoip"
	"boostshop/internal/payment"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	geo, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer geo.Close()

	runner := infra.NewSQLRunner(dbpool, logger.With().Str("component", "sql").Logger())
	purchases := repo.NewPurchaseRepository(runner)
	profiles := repo.NewProfileRepository(runner)
	provider := payment.NewStripeProvider(payment.StripeConfig{
		SecretKey:  cfg.StripeSecretKey,
		APIBase:    cfg.StripeAPIBase,
		SuccessURL: cfg.SuccessURL(),
		CancelURL:  cfg.CancelURL(),
		Timeout:    cfg.ProviderTimeout,
	}, logger)
	timeouts := billing.Timeouts{Provider: cfg.ProviderTimeout, Store: cfg.DBTimeout}
	packages := catalog.New()

	app := &handlers.App{
		Config:   cfg,
		Logger:   logger,
		DB:       dbpool,
		Checkout: billing.NewCheckout(packages, provider, purchases, cfg.Currency, timeouts, logger),
		Verifier: billing.NewVerifier(provider, purchases, profiles, timeouts, logger),
		Profiles: profiles,
		Catalog:  packages,
	}

	server := infra.NewHTTPServer(cfg, httpapi.NewRouter(app, geo.Lookup()), logger)
	if err := server.Run(ctx, cfg.HTTPIdleTimeout); err != nil {
		logger.Fatal().Err(err).Msg("http server failed")
	}
}
