package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/jsamuelsen/quote-sync/internal/adapters/notify"
	"github.com/jsamuelsen/quote-sync/internal/platform/logging"
)

// NotificationsPath is the full websocket route. The router exempts it from
// the request timeout.
const NotificationsPath = "/api/v1/notifications/ws"

// NotificationHandler streams sync notifications over websockets.
type NotificationHandler struct {
	broker   *notify.Broker
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NotificationHandlerConfig contains the notification handler's collaborators.
type NotificationHandlerConfig struct {
	// Broker supplies subscriptions. Required.
	Broker *notify.Broker

	// AllowedOrigins lists the Origin values accepted on upgrade. Empty
	// accepts same-origin requests only; "*" accepts any origin.
	AllowedOrigins []string

	Logger *slog.Logger
}

// NewNotificationHandler creates a notification handler.
func NewNotificationHandler(cfg NotificationHandlerConfig) *NotificationHandler {
	if cfg.Broker == nil {
		panic("handlers: NotificationHandler requires a Broker")
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	if len(cfg.AllowedOrigins) > 0 {
		upgrader.CheckOrigin = originChecker(cfg.AllowedOrigins)
	}

	return &NotificationHandler{
		broker:   cfg.Broker,
		upgrader: upgrader,
		logger:   cfg.Logger,
	}
}

// Stream handles GET /api/v1/notifications/ws. Every notification published
// while the connection is open is sent as a JSON text frame.
func (h *NotificationHandler) Stream(c *gin.Context) {
	logger := logging.FromContextOr(c.Request.Context(), h.logger)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// The upgrader already answered with an HTTP error.
		logger.WarnContext(c.Request.Context(), "websocket upgrade failed", slog.Any("error", err))
		return
	}

	sub := h.broker.Subscribe()
	defer h.broker.Unsubscribe(sub.ID)

	logger.InfoContext(c.Request.Context(), "notification listener connected",
		slog.String("subscriber_id", sub.ID),
	)

	if err := notify.Stream(c.Request.Context(), conn, sub, logger); err != nil {
		logger.WarnContext(c.Request.Context(), "notification stream ended with error",
			slog.String("subscriber_id", sub.ID),
			slog.Any("error", err),
		)
	}
}

// RegisterRoutes registers the websocket route on the /api/v1 group.
func (h *NotificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/notifications/ws", h.Stream)
}

func originChecker(origins []string) func(*http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}

		allowed[o] = struct{}{}
	}

	return func(r *http.Request) bool {
		_, ok := allowed[r.Header.Get("Origin")]
		return ok
	}
}
