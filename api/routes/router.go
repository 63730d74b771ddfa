package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/minthouse/storefront-backend/api/controllers"
	checkoutcontrollers "github.com/minthouse/storefront-backend/api/controllers/checkout"
	ordercontrollers "github.com/minthouse/storefront-backend/api/controllers/orders"
	"github.com/minthouse/storefront-backend/api/middleware"
	checkoutsvc "github.com/minthouse/storefront-backend/internal/checkout"
	"github.com/minthouse/storefront-backend/internal/orders"
	"github.com/minthouse/storefront-backend/internal/rates"
	"github.com/minthouse/storefront-backend/pkg/config"
	"github.com/minthouse/storefront-backend/pkg/logger"
	"github.com/minthouse/storefront-backend/pkg/redis"
)

// Deps is everything the HTTP surface needs wired in.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	Redis           *redis.Client
	ReadyChecks     map[string]controllers.Pinger
	CheckoutService checkoutsvc.Service
	OrdersRepo      *orders.Repository
	SolUSD          *rates.SOLUSDEstimator
	MetricsGatherer prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.ReadyChecks))
	})

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Get("/sol-usd", controllers.SolUSDQuote(deps.SolUSD, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Post("/checkout", checkoutcontrollers.Submit(deps.CheckoutService, logg))
		r.Route("/orders", func(r chi.Router) {
			r.Get("/batch/{batchId}", ordercontrollers.GetBatch(deps.OrdersRepo, logg))
			r.Get("/{orderId}", ordercontrollers.GetOrder(deps.OrdersRepo, logg))
		})
	})

	return r
}
