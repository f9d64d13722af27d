// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrNetwork, etc.)
//   - Keep interfaces small and focused
package ports

import (
	"context"
	"time"

	"github.com/jsamuelsen/quote-sync/internal/domain"
)

// Slot names understood by SlotStore implementations.
const (
	// SlotQuotes holds the serialized quote collection.
	SlotQuotes = "quotes"

	// SlotSelectedCategory holds the last chosen category filter.
	SlotSelectedCategory = "selectedCategory"

	// SlotLastViewedQuote holds the most recently displayed quote.
	// It is written on every display and never read back by the core.
	SlotLastViewedQuote = "lastViewedQuote"
)

// SlotStore is a durable key/value store of named text slots.
// Values survive process restarts for durable implementations.
type SlotStore interface {
	// Load returns the stored value for slot.
	// Returns domain.ErrNotFound if the slot has never been written.
	Load(ctx context.Context, slot string) ([]byte, error)

	// Save replaces the value stored in slot.
	Save(ctx context.Context, slot string, value []byte) error
}

// QuoteFetcher pulls the remote collection.
type QuoteFetcher interface {
	// FetchRemoteQuotes returns every quote the remote currently exposes.
	// Returns a *domain.NetworkError when the remote is unreachable or answers
	// with a non-success status, and a *domain.DecodeError when the payload
	// cannot be reduced to quotes.
	FetchRemoteQuotes(ctx context.Context) ([]domain.Quote, error)
}

// QuoteSubmitter pushes a single locally added quote to the remote.
type QuoteSubmitter interface {
	// SubmitQuote posts q to the remote. The acknowledgment is opaque.
	SubmitQuote(ctx context.Context, q domain.Quote) error
}

// RemoteQuotes is the full capability set of the remote quote source.
type RemoteQuotes interface {
	QuoteFetcher
	QuoteSubmitter
}

// NotificationKind identifies what a notification reports.
type NotificationKind string

// NotificationQuotesSynced is emitted once per reconciliation pass that added quotes.
const NotificationQuotesSynced NotificationKind = "quotes.synced"

// Notification is a user-facing message emitted by the reconciliation layer.
type Notification struct {
	Kind     NotificationKind `json:"kind"`
	Summary  string           `json:"summary"`
	Appended int              `json:"appended"`
	Total    int              `json:"total"`
	At       time.Time        `json:"at"`
}

// Notifier delivers notifications to whoever is listening.
type Notifier interface {
	// Notify publishes n. Implementations must not block on slow consumers.
	Notify(ctx context.Context, n Notification) error
}

// SyncMetrics records reconciliation outcomes.
type SyncMetrics interface {
	// ObservePass records one finished pass.
	ObservePass(outcome string, fetched, appended int, duration time.Duration)

	// ObserveStoreSize records the current number of stored quotes.
	ObserveStoreSize(size int)
}
