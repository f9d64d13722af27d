package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-sync/internal/adapters/storage"
	"github.com/jsamuelsen/quote-sync/internal/app"
	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/mocks"
	"github.com/jsamuelsen/quote-sync/internal/platform/config"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testConfig returns the default configuration pointed at baseURL with
// in-memory storage.
func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()

	cfg, err := config.LoadFrom(t.TempDir(), "")
	require.NoError(t, err)

	cfg.Services.Quote.BaseURL = baseURL
	cfg.Storage.Driver = config.StorageDriverMemory
	cfg.Storage.Path = ""

	return cfg
}

func remoteServer(t *testing.T, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var posts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			posts.Add(1)
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"id":101}`)

			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)

	return server, &posts
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(context.Background(), nil, Options{})
	require.Error(t, err)
}

func TestNew_RejectsUnknownImportPolicy(t *testing.T) {
	cfg := testConfig(t, "http://localhost")
	cfg.Import.Policy = "replace"

	_, err := New(context.Background(), cfg, Options{Logger: discardLogger()})

	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestNew_RejectsUnknownStorageDriver(t *testing.T) {
	cfg := testConfig(t, "http://localhost")
	cfg.Storage.Driver = "etcd"

	_, err := New(context.Background(), cfg, Options{Logger: discardLogger()})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "etcd")
}

func TestNew_WiresComponents(t *testing.T) {
	ctx := context.Background()
	server, posts := remoteServer(t, `[{"id":1,"title":"Remote wisdom."},{"id":2,"title":"The best way to predict the future is to invent it."}]`)

	cfg := testConfig(t, server.URL)
	cfg.Import.Policy = config.ImportPolicyMerge

	notifier := mocks.NewMockNotifier(t)
	notifier.EXPECT().
		Notify(mock.Anything, mock.MatchedBy(func(n ports.Notification) bool {
			return n.Appended == 1 && n.Total == 4
		})).
		Return(nil).
		Once()

	c, err := New(ctx, cfg, Options{Logger: discardLogger(), Notifier: notifier})
	require.NoError(t, err)

	assert.Equal(t, len(domain.DefaultSeed()), c.Store.Len())
	assert.Equal(t, app.WildcardCategory, c.Selection.Selected())
	assert.Equal(t, app.ImportMerge, c.Transfer.Policy())

	health := c.Health.CheckAll(ctx)
	assert.Equal(t, ports.HealthStatusHealthy, health.Status)
	assert.Contains(t, health.Checks, "storage")
	assert.Contains(t, health.Checks, c.Remote.Name())

	result := c.Engine.RunOnce(ctx)
	assert.Equal(t, app.OutcomeMergeApplied, result.Outcome)
	assert.Equal(t, 1, result.Appended)
	assert.True(t, c.Store.Categories().Contains(config.DefaultRemoteCategory))

	require.NoError(t, c.Store.Add(ctx, domain.Quote{Text: "Local.", Category: "Mine"}))

	closeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	require.NoError(t, c.Close(closeCtx))
	assert.Equal(t, int32(1), posts.Load(), "the added quote is submitted before Close returns")
	assert.False(t, c.Engine.Running())
}

func TestNew_UsesProvidedSlots(t *testing.T) {
	ctx := context.Background()
	slots := storage.NewMemoryStore()

	data, err := app.EncodeQuotes([]domain.Quote{{Text: "Persisted.", Category: "Saved"}})
	require.NoError(t, err)
	require.NoError(t, slots.Save(ctx, ports.SlotQuotes, data))
	require.NoError(t, slots.Save(ctx, ports.SlotSelectedCategory, []byte("Saved")))

	c, err := New(ctx, testConfig(t, "http://localhost"), Options{Logger: discardLogger(), Slots: slots})
	require.NoError(t, err)

	t.Cleanup(func() { _ = c.Close(context.Background()) })

	assert.Same(t, slots, c.Slots)
	assert.Equal(t, []domain.Quote{{Text: "Persisted.", Category: "Saved"}}, c.Store.Snapshot())
	assert.Equal(t, "Saved", c.Selection.Selected())
}
