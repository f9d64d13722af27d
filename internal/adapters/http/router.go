package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-sync/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-sync/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-sync/internal/platform/telemetry"
)

// DefaultRequestTimeout is the /api/v1 deadline when none is configured.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig contains the handlers and settings of the API.
// Nil handlers are not registered.
type RouterConfig struct {
	Logger *slog.Logger

	// ServiceName names the spans and request metrics.
	ServiceName string

	// Timeout is the /api/v1 request deadline. Zero uses
	// DefaultRequestTimeout; a negative value disables it.
	Timeout time.Duration

	Health        *handlers.HealthHandler
	Quotes        *handlers.QuoteHandler
	Categories    *handlers.CategoryHandler
	Sync          *handlers.SyncHandler
	Notifications *handlers.NotificationHandler
}

// SetupRouter installs the middleware chain and routes on engine.
// Global middleware, in order:
//  1. Recovery
//  2. ContextLogger
//  3. RequestID
//  4. CorrelationID
//  5. OpenTelemetry tracing and request metrics
//  6. Logging (skips /-/ and the websocket route)
//
// /-/ carries the probes. /api/v1 carries the quote API behind the request
// timeout; the notification websocket is exempt.
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultRequestTimeout
	}

	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.ContextLogger(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)
	engine.Use(telemetry.Middleware(cfg.ServiceName)...)
	engine.Use(middleware.Logging(cfg.Logger, handlers.NotificationsPath))

	if cfg.Health != nil {
		cfg.Health.RegisterRoutes(engine)
	}

	api := engine.Group("/api/v1")
	api.Use(middleware.Timeout(timeout, handlers.NotificationsPath))

	if cfg.Quotes != nil {
		cfg.Quotes.RegisterRoutes(api)
	}

	if cfg.Categories != nil {
		cfg.Categories.RegisterRoutes(api)
	}

	if cfg.Sync != nil {
		cfg.Sync.RegisterRoutes(api)
	}

	if cfg.Notifications != nil {
		cfg.Notifications.RegisterRoutes(api)
	}
}
