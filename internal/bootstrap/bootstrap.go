// Package bootstrap assembles the quote-sync components from configuration.
// Both the service and quotectl build on it so they share one wiring.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/quote-sync/internal/adapters/clients"
	"github.com/jsamuelsen/quote-sync/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quote-sync/internal/adapters/storage"
	"github.com/jsamuelsen/quote-sync/internal/app"
	"github.com/jsamuelsen/quote-sync/internal/platform/config"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

// Options carries the optional collaborators a caller contributes.
type Options struct {
	Logger *slog.Logger

	// Notifier receives sync notifications. Optional.
	Notifier ports.Notifier

	// Metrics records pass outcomes and the store size. Optional.
	Metrics ports.SyncMetrics

	// Session holds per-session slots. Defaults to an in-memory store.
	Session ports.SlotStore

	// Slots overrides the store selected by cfg.Storage.
	Slots storage.Store
}

// Components is the assembled application.
type Components struct {
	Config    *config.Config
	Slots     storage.Store
	Session   ports.SlotStore
	Remote    *acl.RemoteQuoteClient
	Store     *app.QuoteStore
	Selection *app.SelectionState
	Engine    *app.SyncEngine
	Transfer  *app.Transfer
	Health    *ports.DefaultHealthRegistry
}

// New opens storage, builds the remote client and the app layer, and loads
// the persisted state. The caller owns the result and must Close it.
func New(ctx context.Context, cfg *config.Config, opts Options) (*Components, error) {
	if cfg == nil {
		return nil, errors.New("bootstrap: config is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	policy, err := app.ParseImportPolicy(cfg.Import.Policy)
	if err != nil {
		return nil, err
	}

	slots := opts.Slots
	if slots == nil {
		slots, err = storage.Open(&cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Driver, err)
		}
	}

	session := opts.Session
	if session == nil {
		session = storage.NewMemoryStore()
	}

	httpClient, err := clients.New(&clients.Config{
		BaseURL:     cfg.Services.Quote.BaseURL,
		ServiceName: cfg.Services.Quote.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("creating HTTP client: %w", err), slots.Close())
	}

	remote := acl.NewRemoteQuoteClient(acl.RemoteQuoteClientConfig{
		Client:          httpClient,
		FetchPath:       cfg.Services.Quote.FetchPath,
		SubmitPath:      cfg.Services.Quote.SubmitPath,
		DefaultCategory: cfg.Services.Quote.DefaultCategory,
		Logger:          logger,
	})

	health := ports.NewHealthRegistry()
	for _, checker := range []ports.HealthChecker{slots, remote} {
		if err := health.Register(checker); err != nil {
			return nil, errors.Join(fmt.Errorf("registering %s health check: %w", checker.Name(), err), slots.Close())
		}
	}

	store := app.NewQuoteStore(app.QuoteStoreConfig{
		Slots:     slots,
		Submitter: remote,
		Metrics:   opts.Metrics,
		Logger:    logger,
	})
	store.Load(ctx)

	selection := app.NewSelectionState(app.SelectionStateConfig{
		Store:   store,
		Slots:   slots,
		Session: session,
		Logger:  logger,
	})
	selection.Load(ctx)

	engine := app.NewSyncEngine(app.SyncEngineConfig{
		Store:     store,
		Remote:    remote,
		Notifier:  opts.Notifier,
		Selection: selection,
		Metrics:   opts.Metrics,
		Interval:  cfg.Sync.Interval,
		Logger:    logger,
	})

	transfer := app.NewTransfer(app.TransferConfig{
		Store:  store,
		Policy: policy,
		Logger: logger,
	})

	logger.Info("components ready",
		slog.String("storage", slots.Name()),
		slog.Int("quotes", store.Len()),
		slog.String("selected_category", selection.Selected()),
		slog.String("import_policy", string(policy)),
	)

	return &Components{
		Config:    cfg,
		Slots:     slots,
		Session:   session,
		Remote:    remote,
		Store:     store,
		Selection: selection,
		Engine:    engine,
		Transfer:  transfer,
		Health:    health,
	}, nil
}

// Close stops the sync loop, waits for in-flight submissions until ctx ends
// and closes storage.
func (c *Components) Close(ctx context.Context) error {
	c.Engine.Stop()

	var errs []error

	if err := c.Store.WaitForSubmissions(ctx); err != nil {
		errs = append(errs, fmt.Errorf("waiting for submissions: %w", err))
	}

	if err := c.Slots.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing storage: %w", err))
	}

	return errors.Join(errs...)
}
