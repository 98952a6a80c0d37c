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

	"github.com/habitatline/habitat-backend/api/routes"
	"github.com/habitatline/habitat-backend/internal/drafts"
	"github.com/habitatline/habitat-backend/internal/media"
	product "github.com/habitatline/habitat-backend/internal/products"
	"github.com/habitatline/habitat-backend/internal/refdata"
	"github.com/habitatline/habitat-backend/internal/variants"
	"github.com/habitatline/habitat-backend/pkg/config"
	"github.com/habitatline/habitat-backend/pkg/db"
	"github.com/habitatline/habitat-backend/pkg/logger"
	"github.com/habitatline/habitat-backend/pkg/migrate"
	"github.com/habitatline/habitat-backend/pkg/redis"
	"github.com/habitatline/habitat-backend/pkg/similar"
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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
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

	mediaService, err := media.NewService(media.NewRepository(dbClient.DB()), cfg.Media.PublicBaseURL)
	if err != nil {
		logg.Error(context.Background(), "failed to create media service", err)
		os.Exit(1)
	}

	refdataService, err := refdata.NewService(dbClient.DB(), redisClient, cfg.Refdata.TTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create refdata service", err)
		os.Exit(1)
	}

	productRepo := product.NewRepository(dbClient.DB())

	productService, err := product.NewService(productRepo, dbClient, mediaService, drafts.NewStore(), redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	similarClient, err := similar.NewClient(cfg.Similar.BaseURL, cfg.Similar.Timeout, similar.WithLimit(cfg.Similar.Limit))
	if err != nil {
		logg.Error(context.Background(), "failed to create similar-items client", err)
		os.Exit(1)
	}

	variantService, err := variants.NewService(productRepo, similarClient, mediaService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create variant service", err)
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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, productService, variantService, refdataService),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithFields(ctx, map[string]any{"signal": sig.String()}), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
