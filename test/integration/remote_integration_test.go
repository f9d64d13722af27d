//go:build integration

package integration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-sync/internal/adapters/clients"
	"github.com/jsamuelsen/quote-sync/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quote-sync/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-sync/internal/adapters/storage"
	"github.com/jsamuelsen/quote-sync/internal/app"
	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/platform/config"
)

func newRemoteClient(t *testing.T, baseURL string, timeout time.Duration) *acl.RemoteQuoteClient {
	t.Helper()

	client, err := clients.New(&clients.Config{
		BaseURL:     baseURL,
		ServiceName: "quote-service",
		Timeout:     timeout,
		Retry:       config.RetryConfig{MaxAttempts: 1},
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	return acl.NewRemoteQuoteClient(acl.RemoteQuoteClientConfig{
		Client: client,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

// TestRemote_ConcurrentFetchesShareClient exercises one client from many
// goroutines.
func TestRemote_ConcurrentFetchesShareClient(t *testing.T) {
	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":1,"title":"Shared."},{"id":2,"body":"Body only.","category":"Misc"}]`)
	}))
	defer server.Close()

	remote := newRemoteClient(t, server.URL, 5*time.Second)

	const workers = 25

	var wg sync.WaitGroup

	errs := make(chan error, workers)

	for range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			quotes, err := remote.FetchRemoteQuotes(context.Background())
			if err != nil {
				errs <- err
				return
			}

			if len(quotes) != 2 || quotes[1].Category != "Misc" {
				errs <- fmt.Errorf("unexpected quotes %v", quotes)
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}

	assert.Equal(t, int32(workers), requests.Load())
}

// TestRemote_NoTimeoutEndsOnCancellation checks that a zero client timeout
// leaves only the context to end a hanging fetch.
func TestRemote_NoTimeoutEndsOnCancellation(t *testing.T) {
	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	remote := newRemoteClient(t, server.URL, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := remote.FetchRemoteQuotes(ctx)

	require.Error(t, err)
	assert.True(t, domain.IsNetwork(err))
	assert.Less(t, time.Since(start), 5*time.Second)
}

// TestRemote_PropagatesRequestIDs checks that IDs in the context reach the
// remote as headers.
func TestRemote_PropagatesRequestIDs(t *testing.T) {
	var gotRequestID, gotCorrelationID string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get(middleware.HeaderRequestID)
		gotCorrelationID = r.Header.Get(middleware.HeaderCorrelationID)
		_, _ = io.WriteString(w, `[]`)
	}))
	defer server.Close()

	ctx := middleware.ContextWithRequestID(context.Background(), "req-int")
	ctx = middleware.ContextWithCorrelationID(ctx, "corr-int")

	_, err := newRemoteClient(t, server.URL, 5*time.Second).FetchRemoteQuotes(ctx)
	require.NoError(t, err)

	assert.Equal(t, "req-int", gotRequestID)
	assert.Equal(t, "corr-int", gotCorrelationID)
}

// TestSync_RecoversAfterRemoteOutage runs passes against a remote that fails
// and then recovers; the failed pass leaves the store untouched.
func TestSync_RecoversAfterRemoteOutage(t *testing.T) {
	var healthy atomic.Bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}

		_, _ = io.WriteString(w, `[{"id":1,"title":"Back online."}]`)
	}))
	defer server.Close()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := app.NewQuoteStore(app.QuoteStoreConfig{Slots: storage.NewMemoryStore(), Logger: logger})
	store.Load(ctx)

	engine := app.NewSyncEngine(app.SyncEngineConfig{
		Store:  store,
		Remote: newRemoteClient(t, server.URL, 5*time.Second),
		Logger: logger,
	})

	failed := engine.RunOnce(ctx)
	assert.Equal(t, app.OutcomeFailed, failed.Outcome)
	assert.Equal(t, 3, store.Len())

	healthy.Store(true)

	merged := engine.RunOnce(ctx)
	assert.Equal(t, app.OutcomeMergeApplied, merged.Outcome)
	assert.Equal(t, 1, merged.Appended)

	again := engine.RunOnce(ctx)
	assert.Equal(t, app.OutcomeNoChange, again.Outcome)

	status := engine.Status()
	assert.Equal(t, uint64(3), status.Passes)
	assert.Equal(t, app.OutcomeNoChange, status.LastPass.Outcome)
}
