package benchmark

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	httpadapter "github.com/jsamuelsen/quote-sync/internal/adapters/http"
	"github.com/jsamuelsen/quote-sync/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-sync/internal/adapters/storage"
	"github.com/jsamuelsen/quote-sync/internal/app"
	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

func init() {
	// Set Gin to release mode for accurate benchmarks
	gin.SetMode(gin.ReleaseMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// quotes returns n distinct quotes spread over ten categories.
func quotes(n int) []domain.Quote {
	out := make([]domain.Quote, n)
	for i := range out {
		out[i] = domain.Quote{
			Text:     fmt.Sprintf("Quote number %d.", i),
			Category: fmt.Sprintf("Category %d", i%10),
		}
	}

	return out
}

func newStore(b *testing.B, seed []domain.Quote) *app.QuoteStore {
	b.Helper()

	store := app.NewQuoteStore(app.QuoteStoreConfig{
		Slots:  storage.NewMemoryStore(),
		Seed:   func() []domain.Quote { return seed },
		Logger: discardLogger(),
	})
	store.Load(context.Background())

	return store
}

// BenchmarkReconcile_NoChange measures a pass where the remote holds nothing new.
// This is the steady state of the periodic loop.
func BenchmarkReconcile_NoChange(b *testing.B) {
	for _, size := range []int{100, 1000, 10000} {
		b.Run(fmt.Sprintf("size=%d", size), func(b *testing.B) {
			seed := quotes(size)
			store := newStore(b, seed)
			ctx := context.Background()

			b.ResetTimer()
			b.ReportAllocs()

			for range b.N {
				if _, err := store.Reconcile(ctx, seed); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkReconcile_Append measures a pass that appends and persists one quote.
func BenchmarkReconcile_Append(b *testing.B) {
	store := newStore(b, quotes(1000))
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := range b.N {
		candidate := []domain.Quote{{Text: fmt.Sprintf("Remote %d.", i), Category: "Server"}}
		if _, err := store.Reconcile(ctx, candidate); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkBuildCategoryIndex measures rebuilding the index after a merge.
func BenchmarkBuildCategoryIndex(b *testing.B) {
	seed := quotes(10000)

	b.ResetTimer()
	b.ReportAllocs()

	for range b.N {
		_ = app.BuildCategoryIndex(seed)
	}
}

// BenchmarkDecodeQuotes measures parsing a persisted snapshot at startup.
func BenchmarkDecodeQuotes(b *testing.B) {
	data, err := app.EncodeQuotes(quotes(1000))
	if err != nil {
		b.Fatal(err)
	}

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	b.ReportAllocs()

	for range b.N {
		if _, err := app.DecodeQuotes(data); err != nil {
			b.Fatal(err)
		}
	}
}

// newRouter wires the full middleware chain over a 1000 quote store.
func newRouter(b *testing.B) *gin.Engine {
	b.Helper()

	slots := storage.NewMemoryStore()
	store := newStore(b, quotes(1000))

	selection := app.NewSelectionState(app.SelectionStateConfig{
		Store:   store,
		Slots:   slots,
		Session: storage.NewMemoryStore(),
		Logger:  discardLogger(),
	})
	selection.Load(context.Background())

	router := gin.New()
	httpadapter.SetupRouter(router, httpadapter.RouterConfig{
		Logger:      discardLogger(),
		ServiceName: "quote-sync-bench",
		Health: handlers.NewHealthHandler(handlers.HealthHandlerConfig{
			Registry: ports.NewHealthRegistry(),
			Build:    handlers.NewBuildInfo("1.0.0", "abc123", "2024-01-01T00:00:00Z"),
			Gatherer: prometheus.NewRegistry(),
		}),
		Quotes: handlers.NewQuoteHandler(handlers.QuoteHandlerConfig{
			Store:     store,
			Selection: selection,
			Transfer:  app.NewTransfer(app.TransferConfig{Store: store, Logger: discardLogger()}),
		}),
		Categories: handlers.NewCategoryHandler(store, selection),
	})

	return router
}

// BenchmarkRoutes measures requests through the full middleware chain.
func BenchmarkRoutes(b *testing.B) {
	router := newRouter(b)

	for _, path := range []string{
		"/-/live",
		"/api/v1/quotes?limit=20",
		"/api/v1/quotes?category=Category%203&limit=100",
		"/api/v1/quotes/random",
		"/api/v1/categories",
	} {
		b.Run(path, func(b *testing.B) {
			req := httptest.NewRequest(http.MethodGet, path, http.NoBody)

			b.ResetTimer()
			b.ReportAllocs()

			for range b.N {
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)

				if w.Code != http.StatusOK {
					b.Fatalf("status %d: %s", w.Code, w.Body.String())
				}
			}
		})
	}
}
