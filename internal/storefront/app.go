package storefront

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"NepKart/internal/cart"
	"NepKart/internal/catalog"
	"NepKart/internal/checkout"
	"NepKart/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	CheckoutRateLimit  int
	CheckoutRateWindow int
}

// NewHandler assembles the full storefront surface: catalog, cart, and
// checkout, plus health and metrics endpoints.
func NewHandler(catalogSrv *catalog.Server, cartSrv *cart.Server, checkoutSrv *checkout.Server, deps HTTPDeps) http.Handler {
	r := chi.NewRouter()

	setupMiddleware(r, deps)
	setupMetrics(r, deps)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := catalogSrv.Store.Ping(ctx); err != nil {
			if deps.Log != nil {
				deps.Log.Warn("readyz failed", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Get("/products", catalogSrv.ListHandler())
	r.Get("/products/{id}", catalogSrv.GetHandler())

	r.Route("/cart", func(cr chi.Router) {
		cr.Get("/", cartSrv.ViewHandler())
		cr.Delete("/", cartSrv.ClearHandler())
		cr.Post("/toggle", cartSrv.ToggleHandler())
		cr.Post("/items", cartSrv.AddHandler())
		cr.Put("/items/{id}", cartSrv.UpdateHandler())
		cr.Delete("/items/{id}", cartSrv.RemoveHandler())
	})

	limiter := kit.NewIPRateLimiter(rateOrDefault(deps.CheckoutRateLimit, 10), rateOrDefault(deps.CheckoutRateWindow, 60))
	r.With(limiter.Middleware).Post("/checkout", checkoutSrv.CheckoutHandler())

	r.Get("/payment/callback", checkoutSrv.CallbackHandler())
	r.Get("/payment-success", checkoutSrv.SuccessHandler())
	r.Get("/payment-failed", checkoutSrv.FailedHandler())

	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func rateOrDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
