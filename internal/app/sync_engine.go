package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quote-sync/internal/platform/logging"
	"github.com/jsamuelsen/quote-sync/internal/platform/telemetry"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

// DefaultSyncInterval is the period between scheduled passes.
const DefaultSyncInterval = 30 * time.Second

// ErrEngineStarted is returned by Start when the loop is already running.
var ErrEngineStarted = errors.New("sync engine already started")

// PassOutcome is the terminal state of one reconciliation pass.
type PassOutcome string

const (
	// OutcomeSkipped means another pass was still in flight.
	OutcomeSkipped PassOutcome = "skipped"

	// OutcomeFailed means the fetch failed; nothing changed.
	OutcomeFailed PassOutcome = "failed"

	// OutcomeNoChange means the remote had nothing new.
	OutcomeNoChange PassOutcome = "no_change"

	// OutcomeMergeApplied means new quotes were appended.
	OutcomeMergeApplied PassOutcome = "merge_applied"
)

// EngineState is Idle between passes and Fetching while one runs.
type EngineState string

const (
	StateIdle     EngineState = "idle"
	StateFetching EngineState = "fetching"
)

// SelectionInvalidator is told when merged quotes make the display stale.
type SelectionInvalidator interface {
	Invalidate()
}

// PassResult describes one finished pass.
type PassResult struct {
	PassID    string        `json:"passId,omitempty"`
	Outcome   PassOutcome   `json:"outcome"`
	Fetched   int           `json:"fetched"`
	Appended  int           `json:"appended"`
	Total     int           `json:"total"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
}

// SyncStatus is a point-in-time view of the engine.
type SyncStatus struct {
	State    EngineState   `json:"state"`
	Running  bool          `json:"running"`
	Interval time.Duration `json:"interval"`
	Passes   uint64        `json:"passes"`
	LastPass *PassResult   `json:"lastPass,omitempty"`
}

// SyncEngine reconciles the store with the remote collection on a fixed
// period and on demand. Merges are additive: remote quotes are appended when
// their text is new, stored quotes are never removed or rewritten.
//
// A failed fetch ends the pass without side effects. The next tick is the
// only retry. Fetches carry no deadline of their own; a pass waiting on an
// unresponsive remote ends only when Stop or the caller's context cancels it.
type SyncEngine struct {
	store     *QuoteStore
	remote    ports.QuoteFetcher
	notifier  ports.Notifier
	selection SelectionInvalidator
	metrics   ports.SyncMetrics
	interval  time.Duration
	now       func() time.Time
	logger    *slog.Logger
	tracer    trace.Tracer

	inFlight atomic.Bool
	passes   atomic.Uint64

	mu       sync.Mutex
	lastPass *PassResult
	cancel   context.CancelFunc
	done     chan struct{}
}

// SyncEngineConfig contains the engine's collaborators.
type SyncEngineConfig struct {
	// Store is the collection being reconciled. Required.
	Store *QuoteStore

	// Remote is the authoritative collection. Required.
	Remote ports.QuoteFetcher

	// Notifier receives one notification per pass that appended quotes. Optional.
	Notifier ports.Notifier

	// Selection is invalidated after a merge. Optional.
	Selection SelectionInvalidator

	// Metrics records pass outcomes. Optional.
	Metrics ports.SyncMetrics

	// Interval defaults to DefaultSyncInterval.
	Interval time.Duration

	// Now defaults to time.Now.
	Now func() time.Time

	Logger *slog.Logger
}

// NewSyncEngine creates a stopped engine.
func NewSyncEngine(cfg SyncEngineConfig) *SyncEngine {
	if cfg.Store == nil {
		panic("app: SyncEngine requires a QuoteStore")
	}

	if cfg.Remote == nil {
		panic("app: SyncEngine requires a remote QuoteFetcher")
	}

	if cfg.Interval <= 0 {
		cfg.Interval = DefaultSyncInterval
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &SyncEngine{
		store:     cfg.Store,
		remote:    cfg.Remote,
		notifier:  cfg.Notifier,
		selection: cfg.Selection,
		metrics:   cfg.Metrics,
		interval:  cfg.Interval,
		now:       cfg.Now,
		logger:    cfg.Logger.With(slog.String("component", "sync_engine")),
		tracer:    telemetry.Tracer(),
	}
}

// Start launches the periodic loop. With runNow set, a pass runs before the
// first tick. The loop ends when ctx is cancelled or Stop is called.
func (e *SyncEngine) Start(ctx context.Context, runNow bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancel != nil {
		return ErrEngineStarted
	}

	loopCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.done = make(chan struct{})

	go e.loop(loopCtx, runNow, e.done)

	e.logger.InfoContext(ctx, "sync engine started", slog.Duration("interval", e.interval))

	return nil
}

func (e *SyncEngine) loop(ctx context.Context, runNow bool, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	if runNow {
		e.RunOnce(ctx)
	}

	for {
		select {
		case <-ticker.C:
			e.RunOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Stop cancels the loop, including a pass blocked on the remote, and waits
// for it to exit. Calling Stop on a stopped engine is a no-op.
func (e *SyncEngine) Stop() {
	e.mu.Lock()
	cancel, done := e.cancel, e.done
	e.cancel, e.done = nil, nil
	e.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done

	e.logger.Info("sync engine stopped")
}

// Running reports whether the periodic loop is active.
func (e *SyncEngine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.cancel != nil
}

// Status returns the engine state and the most recent completed pass.
func (e *SyncEngine) Status() SyncStatus {
	state := StateIdle
	if e.inFlight.Load() {
		state = StateFetching
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	status := SyncStatus{
		State:    state,
		Running:  e.cancel != nil,
		Interval: e.interval,
		Passes:   e.passes.Load(),
	}

	if e.lastPass != nil {
		last := *e.lastPass
		status.LastPass = &last
	}

	return status
}

// RunOnce performs one reconciliation pass and returns its result. If a pass
// is already in flight it returns OutcomeSkipped at once.
func (e *SyncEngine) RunOnce(ctx context.Context) PassResult {
	if !e.inFlight.CompareAndSwap(false, true) {
		e.logger.DebugContext(ctx, "sync pass skipped, previous pass still running")
		return PassResult{Outcome: OutcomeSkipped, StartedAt: e.now()}
	}
	defer e.inFlight.Store(false)

	passID := uuid.NewString()
	logger := e.logger.With(slog.String("pass_id", passID))
	ctx = logging.WithContext(ctx, logger)

	ctx, span := e.tracer.Start(ctx, "sync.pass", trace.WithAttributes(attribute.String("sync.pass_id", passID)))
	defer span.End()

	result := e.pass(ctx, logger)
	result.PassID = passID

	span.SetAttributes(
		attribute.String("sync.outcome", string(result.Outcome)),
		attribute.Int("sync.fetched", result.Fetched),
		attribute.Int("sync.appended", result.Appended),
	)

	if result.Outcome == OutcomeFailed {
		span.SetStatus(codes.Error, result.Error)
	}

	e.record(result)

	return result
}

func (e *SyncEngine) pass(ctx context.Context, logger *slog.Logger) PassResult {
	result := PassResult{StartedAt: e.now()}
	finish := func(outcome PassOutcome) PassResult {
		result.Outcome = outcome
		result.Duration = e.now().Sub(result.StartedAt)
		result.Total = e.store.Len()

		return result
	}

	logger.DebugContext(ctx, "sync pass started")

	candidates, err := e.remote.FetchRemoteQuotes(ctx)
	if err != nil {
		result.Error = err.Error()
		logger.WarnContext(ctx, "sync fetch failed, waiting for next tick", slog.Any("error", err))

		return finish(OutcomeFailed)
	}

	result.Fetched = len(candidates)
	if len(candidates) == 0 {
		logger.DebugContext(ctx, "remote returned no quotes")
		return finish(OutcomeNoChange)
	}

	appended, err := e.store.Reconcile(ctx, candidates)
	if err != nil {
		// The merge stands in memory; the next persisted mutation rewrites the slot.
		logger.ErrorContext(ctx, "persisting merged quotes failed", slog.Any("error", err))
	}

	result.Appended = appended
	if appended == 0 {
		logger.DebugContext(ctx, "remote quotes already present", slog.Int("fetched", len(candidates)))
		return finish(OutcomeNoChange)
	}

	result = finish(OutcomeMergeApplied)

	if e.selection != nil {
		e.selection.Invalidate()
	}

	e.notify(ctx, logger, result)

	logger.InfoContext(ctx, "sync merge applied",
		slog.Int("fetched", result.Fetched),
		slog.Int("appended", appended),
		slog.Int("total", result.Total),
	)

	return result
}

func (e *SyncEngine) notify(ctx context.Context, logger *slog.Logger, result PassResult) {
	if e.notifier == nil {
		return
	}

	n := ports.Notification{
		Kind:     ports.NotificationQuotesSynced,
		Summary:  SyncSummary(result.Appended),
		Appended: result.Appended,
		Total:    result.Total,
		At:       e.now(),
	}

	if err := e.notifier.Notify(ctx, n); err != nil {
		logger.WarnContext(ctx, "delivering sync notification failed", slog.Any("error", err))
	}
}

func (e *SyncEngine) record(result PassResult) {
	e.passes.Add(1)

	e.mu.Lock()
	e.lastPass = &result
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.ObservePass(string(result.Outcome), result.Fetched, result.Appended, result.Duration)
	}
}

// SyncSummary is the human-readable notification text for n appended quotes.
func SyncSummary(n int) string {
	return fmt.Sprintf("%d new quote(s) synced from server.", n)
}
