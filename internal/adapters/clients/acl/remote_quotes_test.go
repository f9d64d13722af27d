package acl

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-sync/internal/adapters/clients"
	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/platform/config"
)

// testConfig returns a minimal single-attempt client config.
func testConfig(baseURL string) *clients.Config {
	return &clients.Config{
		ServiceName: "test-quote",
		BaseURL:     baseURL,
		Timeout:     5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     1,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     100 * time.Millisecond,
			Multiplier:      2.0,
		},
	}
}

// setupRemoteClient creates a RemoteQuoteClient with a test HTTP server.
func setupRemoteClient(t *testing.T, handler http.HandlerFunc) *RemoteQuoteClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := clients.New(testConfig(server.URL))
	require.NoError(t, err)

	return NewRemoteQuoteClient(RemoteQuoteClientConfig{
		Client: client,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNewRemoteQuoteClient_PanicsWithoutClient(t *testing.T) {
	assert.Panics(t, func() {
		NewRemoteQuoteClient(RemoteQuoteClientConfig{})
	})
}

func TestNewRemoteQuoteClient_Defaults(t *testing.T) {
	client, err := clients.New(testConfig("http://localhost"))
	require.NoError(t, err)

	remote := NewRemoteQuoteClient(RemoteQuoteClientConfig{Client: client})

	assert.Equal(t, "/posts", remote.fetchPath)
	assert.Equal(t, "/posts", remote.submitPath)
	assert.Equal(t, "Server", remote.defaultCategory)
	assert.Equal(t, 1, remote.userID)
	assert.Equal(t, RemoteServiceName, remote.Name())
}

func TestFetchRemoteQuotes_MapsPosts(t *testing.T) {
	remote := setupRemoteClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posts", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)

		writeJSON(w, http.StatusOK, `[
			{"userId": 1, "id": 1, "title": "sunt aut facere", "body": "quia et suscipit"},
			{"userId": 1, "id": 2, "title": "  ", "body": "body only"},
			{"userId": 2, "id": 3, "title": "tagged", "body": "x", "category": "Wisdom"},
			{"userId": 2, "id": 4, "title": "", "body": ""},
			{"userId": 3, "id": 5, "title": "wildcard tagged", "body": "x", "category": "all"}
		]`)
	})

	quotes, err := remote.FetchRemoteQuotes(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []domain.Quote{
		{Text: "sunt aut facere", Category: "Server"},
		{Text: "body only", Category: "Server"},
		{Text: "tagged", Category: "Wisdom"},
		{Text: "wildcard tagged", Category: "Server"},
	}, quotes)
}

func TestFetchRemoteQuotes_EmptyCollection(t *testing.T) {
	remote := setupRemoteClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `[]`)
	})

	quotes, err := remote.FetchRemoteQuotes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestFetchRemoteQuotes_DecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `<html>oops</html>`},
		{name: "object instead of array", body: `{"title": "x"}`},
		{name: "null", body: `null`},
		{name: "array of strings", body: `["a", "b"]`},
		{name: "wrong field type", body: `[{"title": 7}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := setupRemoteClient(t, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusOK, tt.body)
			})

			quotes, err := remote.FetchRemoteQuotes(context.Background())

			require.Error(t, err)
			assert.Nil(t, quotes)
			assert.True(t, domain.IsDecode(err), "expected DecodeError, got %v", err)

			var decodeErr *domain.DecodeError
			require.ErrorAs(t, err, &decodeErr)
			assert.Equal(t, RemoteServiceName, decodeErr.Service)
		})
	}
}

func TestFetchRemoteQuotes_NonSuccessStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "not found", status: http.StatusNotFound, body: `{}`},
		{name: "server error", status: http.StatusInternalServerError, body: `{"message": "boom"}`},
		{name: "unavailable", status: http.StatusServiceUnavailable, body: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := setupRemoteClient(t, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			_, err := remote.FetchRemoteQuotes(context.Background())

			require.Error(t, err)
			assert.True(t, domain.IsNetwork(err))

			var netErr *domain.NetworkError
			require.ErrorAs(t, err, &netErr)
			assert.Equal(t, tt.status, netErr.StatusCode)
			assert.Equal(t, "fetch quotes", netErr.Operation)
		})
	}
}

func TestFetchRemoteQuotes_Unreachable(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	client, err := clients.New(testConfig("http://" + addr))
	require.NoError(t, err)

	remote := NewRemoteQuoteClient(RemoteQuoteClientConfig{Client: client})

	_, err = remote.FetchRemoteQuotes(context.Background())

	require.Error(t, err)
	assert.True(t, domain.IsNetwork(err))
	assert.ErrorIs(t, err, clients.ErrRequestFailed)

	var netErr *domain.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Zero(t, netErr.StatusCode)
}

func TestSubmitQuote(t *testing.T) {
	var received map[string]any

	remote := setupRemoteClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/posts", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "application/json"))

		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		writeJSON(w, http.StatusCreated, `{"id": 101}`)
	})

	err := remote.SubmitQuote(context.Background(), domain.Quote{Text: "Ship it.", Category: "Work"})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"userId":   float64(1),
		"title":    "Ship it.",
		"body":     "Ship it.",
		"category": "Work",
	}, received)
}

func TestSubmitQuote_Rejected(t *testing.T) {
	remote := setupRemoteClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"error": {"code": "BAD", "message": "title too long"}}`)
	})

	err := remote.SubmitQuote(context.Background(), domain.Quote{Text: "x", Category: "y"})

	require.Error(t, err)
	assert.True(t, domain.IsNetwork(err))
	assert.Contains(t, err.Error(), "title too long")
	assert.Contains(t, err.Error(), "HTTP 400")
}

func TestRemoteQuoteClient_Check(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)

	remote := setupRemoteClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if healthy.Load() {
			writeJSON(w, http.StatusOK, `[]`)
			return
		}

		writeJSON(w, http.StatusBadGateway, ``)
	})

	require.NoError(t, remote.Check(context.Background()))

	healthy.Store(false)
	err := remote.Check(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsNetwork(err))
}

func TestMapHTTPError(t *testing.T) {
	tests := []struct {
		name       string
		resp       *http.Response
		clientErr  error
		wantNil    bool
		wantStatus int
		wantText   string
	}{
		{
			name:    "success is nil",
			resp:    &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(""))},
			wantNil: true,
		},
		{
			name:      "transport error",
			clientErr: errors.New("connection refused"),
			wantText:  "connection refused",
		},
		{
			name:     "no response",
			wantText: "no response received",
		},
		{
			name: "nested message",
			resp: &http.Response{
				StatusCode: http.StatusConflict,
				Body:       io.NopCloser(strings.NewReader(`{"error": {"message": "already exists"}}`)),
			},
			wantStatus: http.StatusConflict,
			wantText:   "already exists",
		},
		{
			name: "flat message",
			resp: &http.Response{
				StatusCode: http.StatusTooManyRequests,
				Body:       io.NopCloser(strings.NewReader(`{"message": "slow down"}`)),
			},
			wantStatus: http.StatusTooManyRequests,
			wantText:   "slow down",
		},
		{
			name: "status text fallback",
			resp: &http.Response{
				StatusCode: http.StatusGatewayTimeout,
				Body:       io.NopCloser(strings.NewReader(`not json`)),
			},
			wantStatus: http.StatusGatewayTimeout,
			wantText:   "Gateway Timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapHTTPError(tt.resp, tt.clientErr, "svc", "op")

			if tt.wantNil {
				assert.NoError(t, err)
				return
			}

			var netErr *domain.NetworkError
			require.ErrorAs(t, err, &netErr)
			assert.Equal(t, tt.wantStatus, netErr.StatusCode)
			assert.Equal(t, "svc", netErr.Service)
			assert.Contains(t, err.Error(), tt.wantText)
		})
	}
}

func TestParseErrorResponse(t *testing.T) {
	assert.Nil(t, ParseErrorResponse(nil))
	assert.Nil(t, ParseErrorResponse(strings.NewReader(`{}`)))
	assert.Nil(t, ParseErrorResponse(strings.NewReader(`garbage`)))

	resp := ParseErrorResponse(strings.NewReader(`{"code": "X", "message": "flat"}`))
	require.NotNil(t, resp)
	assert.Equal(t, "flat", resp.GetMessage())
}

func TestTranslateSlice_KeepsAcceptedInOrder(t *testing.T) {
	got := TranslateSlice([]int{1, 2, 3, 4}, func(n *int) (string, bool) {
		return strings.Repeat("x", *n), *n%2 == 0
	})

	assert.Equal(t, []string{"xx", "xxxx"}, got)
}

func TestDecodeResponse_NilBody(t *testing.T) {
	_, err := DecodeResponse[[]remotePost](nil, "svc")
	assert.True(t, domain.IsDecode(err))
}
