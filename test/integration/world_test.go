//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	httpadapter "github.com/jsamuelsen/quote-sync/internal/adapters/http"
	"github.com/jsamuelsen/quote-sync/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-sync/internal/adapters/metrics"
	"github.com/jsamuelsen/quote-sync/internal/adapters/notify"
	"github.com/jsamuelsen/quote-sync/internal/bootstrap"
	"github.com/jsamuelsen/quote-sync/internal/platform/config"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

// fakeRemote serves the remote post collection.
type fakeRemote struct {
	server *httptest.Server

	mu      sync.Mutex
	posts   []map[string]any
	failing bool

	submits atomic.Int32
}

func newFakeRemote() *fakeRemote {
	r := &fakeRemote{posts: []map[string]any{}}
	r.server = httptest.NewServer(http.HandlerFunc(r.serve))

	return r
}

func (r *fakeRemote) serve(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failing {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	if req.Method == http.MethodPost {
		r.submits.Add(1)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":101}`)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(r.posts)
}

func (r *fakeRemote) offer(posts []map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.posts = posts
}

func (r *fakeRemote) fail() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.failing = true
}

// world is one scenario's in-process service and its remote.
type world struct {
	remote     *fakeRemote
	server     *httptest.Server
	components *bootstrap.Components
	broker     *notify.Broker
	configDir  string
	cancel     context.CancelFunc
	brokerDone chan struct{}

	client       *http.Client
	response     *http.Response
	responseBody []byte

	ws *websocket.Conn
}

func newWorld() *world {
	return &world{client: &http.Client{Timeout: 10 * time.Second}}
}

// start boots the service against a fresh remote and in-memory storage.
func (w *world) start() error {
	if w.server != nil {
		return nil
	}

	gin.SetMode(gin.TestMode)

	dir, err := os.MkdirTemp("", "quote-sync-integration-")
	if err != nil {
		return err
	}

	w.configDir = dir

	cfg, err := config.LoadFrom(dir, "")
	if err != nil {
		return err
	}

	w.remote = newFakeRemote()

	cfg.Services.Quote.BaseURL = w.remote.server.URL
	cfg.Storage.Driver = config.StorageDriverMemory
	cfg.Storage.Path = ""

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	registry := prometheus.NewRegistry()

	syncMetrics, err := metrics.NewSyncMetrics(registry)
	if err != nil {
		return err
	}

	broker := notify.NewBroker(notify.BrokerConfig{Logger: logger})
	w.broker = broker

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.brokerDone = make(chan struct{})

	go func() {
		defer close(w.brokerDone)
		_ = broker.Run(ctx)
	}()

	w.components, err = bootstrap.New(ctx, cfg, bootstrap.Options{
		Logger:   logger,
		Notifier: broker,
		Metrics:  syncMetrics,
	})
	if err != nil {
		return err
	}

	engine := gin.New()
	httpadapter.SetupRouter(engine, httpadapter.RouterConfig{
		Logger:      logger,
		ServiceName: "quote-sync-integration",
		Timeout:     cfg.Server.RequestTimeout,
		Health: handlers.NewHealthHandler(handlers.HealthHandlerConfig{
			Registry: w.components.Health,
			Build:    handlers.NewBuildInfo("integration", "none", "now"),
			Gatherer: registry,
		}),
		Quotes: handlers.NewQuoteHandler(handlers.QuoteHandlerConfig{
			Store:     w.components.Store,
			Selection: w.components.Selection,
			Transfer:  w.components.Transfer,
		}),
		Categories: handlers.NewCategoryHandler(w.components.Store, w.components.Selection),
		Sync:       handlers.NewSyncHandler(w.components.Engine),
		Notifications: handlers.NewNotificationHandler(handlers.NotificationHandlerConfig{
			Broker: broker,
			Logger: logger,
		}),
	})

	w.server = httptest.NewServer(engine)

	return nil
}

// stop tears the scenario down.
func (w *world) stop() error {
	var errs []error

	if w.response != nil {
		errs = append(errs, w.response.Body.Close())
	}

	if w.ws != nil {
		errs = append(errs, w.ws.Close())
	}

	if w.server != nil {
		w.server.Close()
	}

	if w.components != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		errs = append(errs, w.components.Close(ctx))
		cancel()
	}

	if w.cancel != nil {
		w.cancel()
		<-w.brokerDone
	}

	if w.remote != nil {
		w.remote.server.Close()
	}

	if w.configDir != "" {
		errs = append(errs, os.RemoveAll(w.configDir))
	}

	*w = *newWorld()

	return errors.Join(errs...)
}

func (w *world) do(method, path, body string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, w.server.URL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	if w.response != nil {
		_ = w.response.Body.Close()
	}

	w.response, err = w.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	w.responseBody, err = io.ReadAll(w.response.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	return nil
}

func (w *world) dialNotifications() error {
	url := "ws" + strings.TrimPrefix(w.server.URL, "http") + handlers.NotificationsPath

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("dialing notifications: %w", err)
	}

	_ = resp.Body.Close()
	w.ws = conn

	deadline := time.Now().Add(5 * time.Second)
	for w.broker.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			return errors.New("notification subscriber was not registered")
		}

		time.Sleep(10 * time.Millisecond)
	}

	return nil
}

func (w *world) readNotification() (ports.Notification, error) {
	var n ports.Notification

	if err := w.ws.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		return n, err
	}

	err := w.ws.ReadJSON(&n)

	return n, err
}
