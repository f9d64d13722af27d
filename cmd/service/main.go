// Package main is the entry point for the quote-sync service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen/quote-sync/internal/adapters/http"
	"github.com/jsamuelsen/quote-sync/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-sync/internal/adapters/metrics"
	"github.com/jsamuelsen/quote-sync/internal/adapters/notify"
	"github.com/jsamuelsen/quote-sync/internal/bootstrap"
	"github.com/jsamuelsen/quote-sync/internal/platform/config"
	"github.com/jsamuelsen/quote-sync/internal/platform/logging"
	"github.com/jsamuelsen/quote-sync/internal/platform/telemetry"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Determine profile from environment
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	// 2. Load and validate configuration (fail fast)
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Initialize logging
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	// 4. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
		Insecure:     cfg.Telemetry.Insecure,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	// 5. Register sync metrics
	syncMetrics, err := metrics.NewSyncMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	// 6. Create the notification broker
	broker := notify.NewBroker(notify.BrokerConfig{Logger: logger})

	// 7. Assemble storage, remote client and the app layer
	components, err := bootstrap.New(ctx, cfg, bootstrap.Options{
		Logger:   logger,
		Notifier: broker,
		Metrics:  syncMetrics,
	})
	if err != nil {
		return fmt.Errorf("assembling components: %w", err)
	}

	// 8. Create HTTP server and router
	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), http.RouterConfig{
		Logger:      logger,
		ServiceName: cfg.Telemetry.ServiceName,
		Timeout:     cfg.Server.RequestTimeout,
		Health: handlers.NewHealthHandler(handlers.HealthHandlerConfig{
			Registry: components.Health,
			Build:    handlers.NewBuildInfo(Version, Commit, BuildTime),
		}),
		Quotes: handlers.NewQuoteHandler(handlers.QuoteHandlerConfig{
			Store:     components.Store,
			Selection: components.Selection,
			Transfer:  components.Transfer,
		}),
		Categories: handlers.NewCategoryHandler(components.Store, components.Selection),
		Sync:       handlers.NewSyncHandler(components.Engine),
		Notifications: handlers.NewNotificationHandler(handlers.NotificationHandlerConfig{
			Broker:         broker,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Logger:         logger,
		}),
	})

	// 9. Run until a signal arrives or a component fails
	runErr := serve(ctx, cfg, logger, server, broker, components)

	// 10. Graceful shutdown of the app layer
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()

	closeErr := components.Close(shutdownCtx)

	logger.Info("shutdown complete")

	return errors.Join(runErr, closeErr)
}

// serve runs the broker, the sync loop and the HTTP server until ctx ends or
// one of them fails.
func serve(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	broker *notify.Broker,
	components *bootstrap.Components,
) error {
	g, gctx := errgroup.WithContext(ctx)

	if cfg.Sync.Enabled {
		if err := components.Engine.Start(gctx, cfg.Sync.RunOnStart); err != nil {
			return fmt.Errorf("starting sync engine: %w", err)
		}
	} else {
		logger.Info("periodic sync disabled")
	}

	g.Go(func() error {
		return broker.Run(gctx)
	})

	g.Go(func() error {
		return server.Run(gctx, cfg.Server.ShutdownTimeout)
	})

	return g.Wait()
}
