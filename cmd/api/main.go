package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/minthouse/storefront-backend/api/controllers"
	"github.com/minthouse/storefront-backend/api/routes"
	"github.com/minthouse/storefront-backend/internal/catalog"
	checkoutsvc "github.com/minthouse/storefront-backend/internal/checkout"
	"github.com/minthouse/storefront-backend/internal/coupons"
	"github.com/minthouse/storefront-backend/internal/orders"
	"github.com/minthouse/storefront-backend/internal/rates"
	"github.com/minthouse/storefront-backend/internal/tokens"
	"github.com/minthouse/storefront-backend/internal/wallets"
	"github.com/minthouse/storefront-backend/pkg/config"
	"github.com/minthouse/storefront-backend/pkg/db"
	"github.com/minthouse/storefront-backend/pkg/logger"
	"github.com/minthouse/storefront-backend/pkg/metrics"
	"github.com/minthouse/storefront-backend/pkg/migrate"
	"github.com/minthouse/storefront-backend/pkg/outbox"
	"github.com/minthouse/storefront-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	resolver, err := rates.NewResolver([]rates.QuoteProvider{
		rates.NewSwapQuoteProvider(cfg.Quotes.SwapQuoteBaseURL, cfg.Quotes.RequestTimeout),
		rates.NewPoolMidPriceProvider(cfg.Quotes.PoolBaseURL, cfg.Quotes.RequestTimeout),
		rates.NewUSDLegsProvider(cfg.Quotes.PriceBaseURL, cfg.Quotes.RequestTimeout),
	}, logg, checkoutMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to build rate resolver", err)
		os.Exit(1)
	}

	estimator, err := rates.NewSOLUSDEstimator(resolver, cfg.Settlement.SolUSDFallback, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build sol-usd estimator", err)
		os.Exit(1)
	}

	chainClient, err := tokens.NewClient(cfg.Chain.RPCURL, cfg.Chain.RequestTimeout)
	if err != nil {
		logg.Error(context.Background(), "failed to build chain client", err)
		os.Exit(1)
	}

	couponEngine, err := coupons.NewEngine(chainClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build coupon engine", err)
		os.Exit(1)
	}

	conn := dbClient.DB()
	ordersRepo := orders.NewRepository(conn)
	outboxService := outbox.NewService(outbox.NewRepository(conn), logg)

	checkoutService, err := checkoutsvc.NewService(
		catalog.NewRepository(conn),
		wallets.NewRepository(conn),
		coupons.NewRepository(conn),
		couponEngine,
		resolver,
		chainClient,
		ordersRepo,
		dbClient,
		outboxService,
		cfg.Settlement,
		logg,
		checkoutMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to build checkout service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			Redis:           redisClient,
			ReadyChecks:     map[string]controllers.Pinger{"db": dbClient, "redis": redisClient},
			CheckoutService: checkoutService,
			OrdersRepo:      ordersRepo,
			SolUSD:          estimator,
			MetricsGatherer: registry,
		}),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
