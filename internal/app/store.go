// Package app contains the reconciliation use cases: the quote store, the
// category index, sync passes, import and export.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/platform/logging"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

// QuoteStore is the in-memory, ordered quote collection of the running
// process. Memory is authoritative: every mutation is mirrored to the quotes
// slot while the write lock is held, so the saved snapshot always matches the
// collection it was taken from.
type QuoteStore struct {
	mu     sync.RWMutex
	quotes []domain.Quote
	index  CategoryIndex

	slots     ports.SlotStore
	submitter ports.QuoteSubmitter
	metrics   ports.SyncMetrics
	seed      func() []domain.Quote
	logger    *slog.Logger

	// submissions tracks detached submits; submitCtx outlives the requests
	// that started them and is cancelled by CancelSubmissions.
	submissions      sync.WaitGroup
	submitCtx        context.Context
	cancelSubmission context.CancelFunc
}

// QuoteStoreConfig contains the store's collaborators.
type QuoteStoreConfig struct {
	// Slots persists the collection. Required.
	Slots ports.SlotStore

	// Submitter receives every locally added quote. Nil disables submission.
	Submitter ports.QuoteSubmitter

	// Metrics observes the collection size. Optional.
	Metrics ports.SyncMetrics

	// Seed supplies the initial collection. Defaults to domain.DefaultSeed.
	Seed func() []domain.Quote

	Logger *slog.Logger
}

// NewQuoteStore creates an empty store. Call Load before serving.
func NewQuoteStore(cfg QuoteStoreConfig) *QuoteStore {
	if cfg.Slots == nil {
		panic("app: QuoteStore requires a SlotStore")
	}

	if cfg.Seed == nil {
		cfg.Seed = domain.DefaultSeed
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	submitCtx, cancel := context.WithCancel(context.Background())

	s := &QuoteStore{
		slots:            cfg.Slots,
		submitter:        cfg.Submitter,
		metrics:          cfg.Metrics,
		seed:             cfg.Seed,
		logger:           cfg.Logger.With(slog.String("component", "quote_store")),
		submitCtx:        submitCtx,
		cancelSubmission: cancel,
	}
	s.index = BuildCategoryIndex(nil)

	return s
}

// Load reads the quotes slot. An absent, unreadable or unparsable snapshot
// falls back to the seed collection. Load never fails.
func (s *QuoteStore) Load(ctx context.Context) {
	quotes := s.readSnapshot(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.quotes = quotes
	s.rebuildLocked()

	s.logger.InfoContext(ctx, "quote store loaded",
		slog.Int("quotes", len(s.quotes)),
		slog.Int("categories", s.index.Len()-1),
	)
}

func (s *QuoteStore) readSnapshot(ctx context.Context) []domain.Quote {
	data, err := s.slots.Load(ctx, ports.SlotQuotes)
	if err != nil {
		if !domain.IsNotFound(err) {
			s.logger.WarnContext(ctx, "reading quotes slot failed, using seed", slog.Any("error", err))
		}

		return s.seed()
	}

	quotes, err := DecodeQuotes(data)
	if err != nil {
		s.logger.WarnContext(ctx, "quotes slot is unparsable, using seed", slog.Any("error", err))
		return s.seed()
	}

	return quotes
}

// Add appends q unconditionally, persists and rebuilds the index, then hands
// q to the submitter on a detached goroutine. Add never waits for the remote.
//
// A persistence failure is reported as a storage UnavailableError, but the
// quote stays in memory.
func (s *QuoteStore) Add(ctx context.Context, q domain.Quote) error {
	if err := q.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.quotes = append(s.quotes, q)
	s.rebuildLocked()
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	s.submit(ctx, q)

	if err != nil {
		return err
	}

	logging.FromContextOr(ctx, s.logger).InfoContext(ctx, "quote added",
		slog.String("category", q.Category),
	)

	return nil
}

// MergeAdditive appends every candidate whose text is not already stored,
// including duplicates within candidates, and returns how many were appended.
// Stored quotes are never replaced: on a text collision the stored category
// wins. Merging the same candidates twice appends nothing the second time.
//
// MergeAdditive only touches memory; use Reconcile to persist as well.
func (s *QuoteStore) MergeAdditive(candidates []domain.Quote) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	appended := s.mergeLocked(candidates)
	if appended > 0 {
		s.rebuildLocked()
	}

	return appended
}

// Reconcile merges candidates additively and, when anything was appended,
// persists the collection and rebuilds the index under the same lock.
func (s *QuoteStore) Reconcile(ctx context.Context, candidates []domain.Quote) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appended := s.mergeLocked(candidates)
	if appended == 0 {
		return 0, nil
	}

	s.rebuildLocked()

	return appended, s.persistLocked(ctx)
}

// AppendAll appends every quote without a duplicate check, persists and
// rebuilds the index.
func (s *QuoteStore) AppendAll(ctx context.Context, quotes []domain.Quote) (int, error) {
	if len(quotes) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.quotes = append(s.quotes, quotes...)
	s.rebuildLocked()

	return len(quotes), s.persistLocked(ctx)
}

// Snapshot returns a copy of the collection in insertion order.
func (s *QuoteStore) Snapshot() []domain.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.quotes)
}

// Len returns the number of stored quotes.
func (s *QuoteStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.quotes)
}

// Categories returns the current category index.
func (s *QuoteStore) Categories() CategoryIndex {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.index
}

// Filter returns the quotes in category, in insertion order. The wildcard and
// the empty string select everything.
func (s *QuoteStore) Filter(category string) []domain.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if category == "" || category == WildcardCategory {
		return slices.Clone(s.quotes)
	}

	var out []domain.Quote

	for _, q := range s.quotes {
		if q.Category == category {
			out = append(out, q)
		}
	}

	return out
}

// WaitForSubmissions blocks until every detached submit has finished or ctx
// ends. On ctx expiry the outstanding submits are cancelled.
func (s *QuoteStore) WaitForSubmissions(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		s.submissions.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.cancelSubmission()
		return ctx.Err()
	}
}

// CancelSubmissions aborts every in-flight submit.
func (s *QuoteStore) CancelSubmissions() {
	s.cancelSubmission()
}

func (s *QuoteStore) mergeLocked(candidates []domain.Quote) int {
	known := make(map[string]struct{}, len(s.quotes)+len(candidates))
	for _, q := range s.quotes {
		known[q.Key()] = struct{}{}
	}

	appended := 0

	for _, c := range candidates {
		if _, ok := known[c.Key()]; ok {
			continue
		}

		known[c.Key()] = struct{}{}
		s.quotes = append(s.quotes, c)
		appended++
	}

	return appended
}

func (s *QuoteStore) rebuildLocked() {
	s.index = BuildCategoryIndex(s.quotes)

	if s.metrics != nil {
		s.metrics.ObserveStoreSize(len(s.quotes))
	}
}

// persistLocked saves the collection. Memory has already changed, so the save
// ignores cancellation of ctx to keep the slot in step with it.
func (s *QuoteStore) persistLocked(ctx context.Context) error {
	data, err := EncodeQuotes(s.quotes)
	if err != nil {
		return err
	}

	if err := s.slots.Save(context.WithoutCancel(ctx), ports.SlotQuotes, data); err != nil {
		s.logger.ErrorContext(ctx, "persisting quotes failed", slog.Any("error", err))
		return fmt.Errorf("%w: %w", domain.NewUnavailableError("storage", "saving quotes"), err)
	}

	return nil
}

// submit posts q without blocking the caller. The goroutine keeps the
// caller's logger and trace but not its cancellation.
func (s *QuoteStore) submit(ctx context.Context, q domain.Quote) {
	if s.submitter == nil {
		return
	}

	logger := logging.FromContextOr(ctx, s.logger)
	submitCtx := logging.WithContext(s.submitCtx, logger)
	submitCtx = trace.ContextWithSpanContext(submitCtx, trace.SpanContextFromContext(ctx))

	s.submissions.Add(1)

	go func() {
		defer s.submissions.Done()

		if err := s.submitter.SubmitQuote(submitCtx, q); err != nil {
			logger.WarnContext(submitCtx, "submitting quote to remote failed", slog.Any("error", err))
			return
		}

		logger.DebugContext(submitCtx, "quote submitted to remote")
	}()
}
