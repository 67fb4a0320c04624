package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tmarowa/zimcart-backend/api/routes"
	"github.com/tmarowa/zimcart-backend/internal/auth"
	"github.com/tmarowa/zimcart-backend/internal/cart"
	checkoutsvc "github.com/tmarowa/zimcart-backend/internal/checkout"
	"github.com/tmarowa/zimcart-backend/internal/identity"
	"github.com/tmarowa/zimcart-backend/internal/orders"
	"github.com/tmarowa/zimcart-backend/internal/payments"
	"github.com/tmarowa/zimcart-backend/internal/pricing"
	"github.com/tmarowa/zimcart-backend/internal/shipping"
	"github.com/tmarowa/zimcart-backend/internal/users"
	"github.com/tmarowa/zimcart-backend/pkg/auth/session"
	"github.com/tmarowa/zimcart-backend/pkg/config"
	"github.com/tmarowa/zimcart-backend/pkg/db"
	"github.com/tmarowa/zimcart-backend/pkg/logger"
	"github.com/tmarowa/zimcart-backend/pkg/metrics"
	"github.com/tmarowa/zimcart-backend/pkg/migrate"
	"github.com/tmarowa/zimcart-backend/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	authService, err := auth.NewService(auth.ServiceParams{
		ProfileRepo:    users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	shippingService, err := shipping.NewService(shipping.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create shipping service", err)
		os.Exit(1)
	}

	identityResolver, err := identity.NewResolver(dbClient, cfg.Password, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create identity resolver", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	orderWriter, err := orders.NewWriter(ordersRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create order writer", err)
		os.Exit(1)
	}

	gatewayRepo := payments.NewGatewayRepository(dbClient.DB())
	gatewayClient := payments.NewClient(cfg.Gateways.HTTPTimeout)
	dispatcher, err := payments.NewDispatcher(payments.DispatcherParams{
		Gateways: gatewayRepo,
		Registry: payments.NewRegistry(cfg.Gateways, gatewayClient),
		Orders:   ordersRepo,
		Logger:   logg,
		Metrics:  checkoutMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment dispatcher", err)
		os.Exit(1)
	}

	cartStore, err := cart.NewStore(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart store", err)
		os.Exit(1)
	}

	taxCfg, err := pricing.ParseTaxConfig(cfg.Checkout.VATRate, cfg.Checkout.CommissionRate)
	if err != nil {
		logg.Error(context.Background(), "invalid tax configuration", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Shipping:   shippingService,
		Identities: identityResolver,
		Writer:     orderWriter,
		Dispatcher: dispatcher,
		Carts:      cartStore,
		TaxConfig:  taxCfg,
		ReturnURL:  cfg.Checkout.ReturnURL,
		Logger:     logg,
		Metrics:    checkoutMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
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
			DB:              dbClient,
			Redis:           redisClient,
			Sessions:        sessionManager,
			AuthService:     authService,
			ShippingService: shippingService,
			GatewayRepo:     gatewayRepo,
			CheckoutService: checkoutService,
			CartStore:       cartStore,
			OrdersRepo:      ordersRepo,
			Metrics:         registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
