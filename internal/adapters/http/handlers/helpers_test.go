package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-sync/internal/adapters/storage"
	"github.com/jsamuelsen/quote-sync/internal/app"
	"github.com/jsamuelsen/quote-sync/internal/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// apiFixture wires real app components over an in-memory slot store.
type apiFixture struct {
	router    *gin.Engine
	slots     *storage.MemoryStore
	session   *storage.MemoryStore
	remote    *mocks.MockRemoteQuotes
	store     *app.QuoteStore
	selection *app.SelectionState
	engine    *app.SyncEngine
}

func newAPIFixture(t *testing.T, policy app.ImportPolicy) *apiFixture {
	t.Helper()

	f := &apiFixture{
		router:  gin.New(),
		slots:   storage.NewMemoryStore(),
		session: storage.NewMemoryStore(),
		remote:  mocks.NewMockRemoteQuotes(t),
	}

	f.store = app.NewQuoteStore(app.QuoteStoreConfig{Slots: f.slots, Logger: discardLogger()})
	f.store.Load(context.Background())

	f.selection = app.NewSelectionState(app.SelectionStateConfig{
		Store:   f.store,
		Slots:   f.slots,
		Session: f.session,
		Pick:    func(int) int { return 0 },
		Logger:  discardLogger(),
	})
	f.selection.Load(context.Background())

	f.engine = app.NewSyncEngine(app.SyncEngineConfig{
		Store:     f.store,
		Remote:    f.remote,
		Selection: f.selection,
		Logger:    discardLogger(),
	})

	transfer := app.NewTransfer(app.TransferConfig{Store: f.store, Policy: policy, Logger: discardLogger()})

	api := f.router.Group("/api/v1")
	NewQuoteHandler(QuoteHandlerConfig{Store: f.store, Selection: f.selection, Transfer: transfer}).RegisterRoutes(api)
	NewCategoryHandler(f.store, f.selection).RegisterRoutes(api)
	NewSyncHandler(f.engine).RegisterRoutes(api)

	return f
}

func (f *apiFixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader

	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)

		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())

	return v
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}
