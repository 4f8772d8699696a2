package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/homecooks/profitability/internal/bootstrap"
	"github.com/homecooks/profitability/internal/infrastructure/config"
	"github.com/homecooks/profitability/internal/infrastructure/logger"
	"github.com/homecooks/profitability/internal/infrastructure/scheduler"
	"github.com/homecooks/profitability/internal/interfaces/http/handler"
	"github.com/homecooks/profitability/internal/interfaces/http/router"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Service:    cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(log)

	log.Info("Starting profitability dashboard API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Telemetry
	tel, err := bootstrap.NewTelemetry(ctx, cfg, version, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	// Upstream platforms
	platforms, err := bootstrap.NewPlatforms(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize platforms", zap.Error(err))
	}

	// Variant cost cache
	costs, err := bootstrap.NewCosts(cfg, platforms.Shopify, tel.Pipeline, log)
	if err != nil {
		log.Fatal("Failed to initialize cost cache", zap.Error(err))
	}
	defer func() {
		if err := costs.Close(); err != nil {
			log.Error("Error closing cost cache", zap.Error(err))
		}
	}()

	// Report services
	services, err := bootstrap.NewServices(cfg, platforms, costs, tel.Pipeline, log)
	if err != nil {
		log.Fatal("Failed to initialize report services", zap.Error(err))
	}

	// Daily refresh
	systemOpts := []handler.SystemOption{handler.WithVersion(version), handler.WithSystemLogger(log)}
	if cfg.Refresh.Enabled {
		refresh, err := newDailyRefresh(cfg.Refresh, services, log)
		if err != nil {
			log.Fatal("Failed to configure daily refresh", zap.Error(err))
		}
		if err := refresh.Start(ctx); err != nil {
			log.Fatal("Failed to start daily refresh", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := refresh.Stop(stopCtx); err != nil {
				log.Error("Error stopping daily refresh", zap.Error(err))
			}
		}()
		systemOpts = append(systemOpts, handler.WithRefresher(refresh))
	} else {
		log.Info("Daily refresh disabled")
	}

	// HTTP engine and routes
	engine := router.NewEngine(cfg.HTTP, log, router.EngineOptions{
		Production:  cfg.App.Env == "production",
		ServiceName: cfg.Telemetry.ServiceName,
		Tracing:     tel.Tracer.IsEnabled(),
		Meter:       tel.Meter,
	})

	r := router.NewRouter(engine)
	r.Register(handler.NewD2CHandler(services.D2C).Routes()).
		Register(handler.NewRetailHandler(services.Retail).Routes()).
		Register(handler.NewGoPuffHandler(services.GoPuff).Routes()).
		Register(handler.NewSubscriptionHandler(services.Subscriptions).Routes()).
		Register(handler.NewCostingHandler(services.Retail).Routes()).
		Register(handler.NewSystemHandler(platforms.Shopify, systemOpts...).Routes())
	r.Setup()

	srv := router.NewServer(":"+cfg.App.Port, engine, cfg.HTTP)

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// newDailyRefresh schedules the refresh job at the configured HH:MM
func newDailyRefresh(cfg config.RefreshConfig, services *bootstrap.Services, log *zap.Logger) (*scheduler.DailyRefresh, error) {
	hour, minute, err := scheduler.ParseRefreshSchedule(cfg.At)
	if err != nil {
		return nil, err
	}
	sc := scheduler.DefaultDailyRefreshConfig()
	sc.Hour = hour
	sc.Minute = minute
	if cfg.CheckInterval > 0 {
		sc.CheckInterval = cfg.CheckInterval
	}
	return scheduler.NewDailyRefresh(sc, services.Refresh, log.Named("refresh"))
}
