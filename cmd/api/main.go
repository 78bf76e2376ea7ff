package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dukkanhq/dukkan-backend/api/routes"
	cartsvc "github.com/dukkanhq/dukkan-backend/internal/cart"
	checkoutsvc "github.com/dukkanhq/dukkan-backend/internal/checkout"
	"github.com/dukkanhq/dukkan-backend/internal/checkout/window"
	"github.com/dukkanhq/dukkan-backend/internal/inventory"
	notificationsvc "github.com/dukkanhq/dukkan-backend/internal/notifications"
	ordersvc "github.com/dukkanhq/dukkan-backend/internal/orders"
	productsvc "github.com/dukkanhq/dukkan-backend/internal/products"
	suppliersvc "github.com/dukkanhq/dukkan-backend/internal/suppliers"
	"github.com/dukkanhq/dukkan-backend/pkg/config"
	"github.com/dukkanhq/dukkan-backend/pkg/db"
	"github.com/dukkanhq/dukkan-backend/pkg/logger"
	"github.com/dukkanhq/dukkan-backend/pkg/migrate"
	"github.com/dukkanhq/dukkan-backend/pkg/outbox"
	"github.com/dukkanhq/dukkan-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	ordersRepo := ordersvc.NewRepository(dbClient.DB())
	cartRepo := cartsvc.NewRepository(dbClient.DB())

	productsService, err := productsvc.NewService(productsvc.NewRepository(dbClient.DB()), dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}
	suppliersService, err := suppliersvc.NewService(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create suppliers service", err)
		os.Exit(1)
	}
	cartService, err := cartsvc.NewService(cartRepo, productsService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	stock := inventory.NewService(logg)
	windows := window.NewController(logg)

	ordersService, err := ordersvc.NewService(ordersRepo, dbClient, outboxSvc, stock, cartService, windows, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(
		ordersRepo,
		dbClient,
		outboxSvc,
		cartRepo,
		productsService,
		suppliersService,
		windows,
		ordersService,
		cfg.Checkout.CancelWindow,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	notificationsService, err := notificationsvc.NewService(notificationsvc.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
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
			Config:        cfg,
			Logger:        logg,
			DB:            dbClient,
			Redis:         redisClient,
			Checkout:      checkoutService,
			Orders:        ordersService,
			Cart:          cartService,
			Products:      productsService,
			Suppliers:     suppliersService,
			Notifications: notificationsService,
		}),
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-runCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "server shutdown error", err)
		}
		// Armed windows die with the process; the cron sweep finalizes them.
		windows.Shutdown()
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shutting down gracefully")
}
