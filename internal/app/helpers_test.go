package app

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-sync/internal/adapters/storage"
	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newLoadedStore returns a seeded store backed by an in-memory slot store.
func newLoadedStore(t *testing.T, submitter ports.QuoteSubmitter) (*QuoteStore, *storage.MemoryStore) {
	t.Helper()

	slots := storage.NewMemoryStore()
	store := NewQuoteStore(QuoteStoreConfig{
		Slots:     slots,
		Submitter: submitter,
		Logger:    discardLogger(),
	})
	store.Load(context.Background())

	return store, slots
}

// persisted returns the raw quotes slot, or nil when it was never written.
func persisted(t *testing.T, slots ports.SlotStore) []byte {
	t.Helper()

	data, err := slots.Load(context.Background(), ports.SlotQuotes)
	if domain.IsNotFound(err) {
		return nil
	}

	require.NoError(t, err)

	return data
}

// recordingNotifier collects notifications.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []ports.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n ports.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sent = append(r.sent, n)

	return nil
}

func (r *recordingNotifier) all() []ports.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]ports.Notification(nil), r.sent...)
}

func texts(quotes []domain.Quote) []string {
	out := make([]string, len(quotes))
	for i, q := range quotes {
		out[i] = q.Text
	}

	return out
}
