package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tmarowa/zimcart-backend/api/controllers"
	"github.com/tmarowa/zimcart-backend/api/middleware"
	"github.com/tmarowa/zimcart-backend/internal/auth"
	"github.com/tmarowa/zimcart-backend/internal/cart"
	checkoutsvc "github.com/tmarowa/zimcart-backend/internal/checkout"
	"github.com/tmarowa/zimcart-backend/internal/orders"
	"github.com/tmarowa/zimcart-backend/internal/payments"
	"github.com/tmarowa/zimcart-backend/internal/shipping"
	"github.com/tmarowa/zimcart-backend/pkg/auth/session"
	"github.com/tmarowa/zimcart-backend/pkg/config"
	"github.com/tmarowa/zimcart-backend/pkg/db"
	"github.com/tmarowa/zimcart-backend/pkg/logger"
	"github.com/tmarowa/zimcart-backend/pkg/redis"
)

// Deps bundles everything the HTTP layer is wired with.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              db.Pinger
	Redis           *redis.Client
	Sessions        session.AccessSessionChecker
	AuthService     auth.Service
	ShippingService shipping.Service
	GatewayRepo     payments.GatewayRepository
	CheckoutService checkoutsvc.Service
	CartStore       *cart.Store
	OrdersRepo      orders.Repository
	Metrics         *prometheus.Registry
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

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	idempotency := middleware.Idempotency(deps.Redis, cfg.Checkout.IdempotencyTTL, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(
			middleware.AuthRateLimit(registerPolicy, deps.Redis, logg),
			idempotency,
		).Post("/register", controllers.AuthRegister(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, cfg.JWT, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/shipping-methods", controllers.ShippingMethods(deps.ShippingService, logg))
		r.Get("/payment-gateways", controllers.PaymentMethods(deps.GatewayRepo, logg))

		// Checkout accepts guests; a bearer token, when present, binds
		// the batch to the signed-in customer.
		r.With(
			middleware.OptionalAuth(cfg.JWT, deps.Sessions, logg),
			idempotency,
		).Post("/checkout", controllers.Checkout(deps.CheckoutService, deps.CartStore, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(deps.CartStore, logg))
				r.Put("/", controllers.CartSave(deps.CartStore, logg))
			})
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrderList(deps.OrdersRepo, logg))
				r.Get("/{orderId}", controllers.OrderDetail(deps.OrdersRepo, logg))
			})
		})
	})

	return r
}
