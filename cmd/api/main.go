package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/api/routes"
	"github.com/angelmondragon/storefront-backend/internal/analytics"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/categories"
	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/discounts"
	"github.com/angelmondragon/storefront-backend/internal/media"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
	"github.com/angelmondragon/storefront-backend/pkg/pubsub"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
	"github.com/angelmondragon/storefront-backend/pkg/security"
	"github.com/angelmondragon/storefront-backend/pkg/storage/gcs"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []func() error
	defer func() {
		var err error
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i]())
		}
		if err != nil {
			logg.Error(context.Background(), "error releasing resources", err)
		}
	}()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	closers = append(closers, dbClient.Close)

	err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient)
	requireResource(ctx, logg, "dev migrations", err)

	readiness := []controllers.ReadinessCheck{{Name: "postgres", Pinger: dbClient}}

	deps := routes.Dependencies{Config: cfg, Logger: logg}

	if strings.TrimSpace(cfg.Redis.URL) != "" || strings.TrimSpace(cfg.Redis.Address) != "" {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		requireResource(ctx, logg, "redis", err)
		closers = append(closers, redisClient.Close)
		readiness = append(readiness, controllers.ReadinessCheck{Name: "redis", Pinger: redisClient})
		deps.RateLimiter = redisClient
		deps.IdempotencyStore = redisClient
	} else {
		logg.Warn(ctx, "redis not configured, login throttling and order idempotency disabled")
	}

	var objectStore media.ObjectStore
	if cfg.GCS.Enabled() {
		gcsClient, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
		requireResource(ctx, logg, "gcs", err)
		readiness = append(readiness, controllers.ReadinessCheck{Name: "gcs", Pinger: gcsClient})
		objectStore = gcsClient
	} else {
		logg.Warn(ctx, "gcs bucket not configured, image uploads disabled")
	}

	publisher, err := pubsub.NewPublisher(ctx, cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	if publisher != nil {
		closers = append(closers, publisher.Close)
		readiness = append(readiness, controllers.ReadinessCheck{Name: "pubsub", Pinger: publisher})
	}

	loc, err := cfg.App.Location()
	requireResource(ctx, logg, "timezone", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	deps.Gatherer = registry
	deps.HTTPMetrics = metrics.NewHTTPMetrics(registry)
	deps.Readiness = readiness
	deps.Location = loc

	hasher, err := security.NewHasher(cfg.Password)
	requireResource(ctx, logg, "password hasher", err)

	deps.Auth, err = auth.NewService(auth.ServiceParams{
		Users:       users.NewRepository(dbClient.DB()),
		Hasher:      hasher,
		JWT:         cfg.JWT,
		AdminSecret: cfg.Admin.CreationSecret,
		Logger:      logg,
	})
	requireResource(ctx, logg, "auth service", err)

	images, err := media.NewService(objectStore, cfg.Media, logg)
	requireResource(ctx, logg, "media service", err)

	discountRepo := discounts.NewRepository(dbClient.DB())
	deps.Discounts, err = discounts.NewService(discountRepo)
	requireResource(ctx, logg, "discount service", err)

	couponRepo := coupons.NewRepository(dbClient.DB())
	deps.Coupons, err = coupons.NewService(couponRepo)
	requireResource(ctx, logg, "coupon service", err)

	deps.Categories, err = categories.NewService(categories.NewRepository(dbClient.DB()), images, logg)
	requireResource(ctx, logg, "category service", err)

	productRepo := products.NewRepository(dbClient.DB())
	deps.Products, err = products.NewService(productRepo, dbClient, deps.Discounts, images, cfg.Media, logg)
	requireResource(ctx, logg, "product service", err)

	orderParams := orders.ServiceParams{
		Repo:      orders.NewRepository(dbClient.DB()),
		Tx:        dbClient,
		Catalog:   productRepo,
		Discounts: deps.Discounts,
		Coupons:   deps.Coupons,
		Metrics:   metrics.NewOrderMetrics(registry),
		Logger:    logg,
		Location:  loc,
	}
	if publisher != nil {
		orderParams.Events = publisher
	}
	deps.Orders, err = orders.NewService(orderParams)
	requireResource(ctx, logg, "order service", err)

	deps.Analytics, err = analytics.NewService(analytics.NewRepository(dbClient.DB()), loc)
	requireResource(ctx, logg, "analytics service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("K_REVISION")
	if id == "" {
		id = "local"
	}
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			stop()
			return
		}
	case <-ctx.Done():
		logg.Info(context.Background(), "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "graceful shutdown failed", err)
	}
	logg.Info(shutdownCtx, "api server stopped")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
