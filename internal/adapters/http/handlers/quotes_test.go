package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-sync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-sync/internal/app"
	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

type quotePage = dto.PaginatedResponse[dto.QuoteResponse]

func TestNewQuoteHandler_PanicsWithoutCollaborators(t *testing.T) {
	assert.Panics(t, func() {
		NewQuoteHandler(QuoteHandlerConfig{})
	})
}

func TestQuoteHandler_List(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantTexts int
	}{
		{name: "everything by default", query: "", wantTexts: 3},
		{name: "wildcard", query: "?category=all", wantTexts: 3},
		{name: "one category", query: "?category=Motivation", wantTexts: 2},
		{name: "unknown category is empty", query: "?category=Nope", wantTexts: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture(t, app.ImportAppend)

			w := f.do(t, http.MethodGet, "/api/v1/quotes"+tt.query, nil)
			requireStatus(t, w, http.StatusOK)

			page := decode[quotePage](t, w)
			assert.Len(t, page.Items, tt.wantTexts)
			assert.Equal(t, tt.wantTexts, page.Total)
			assert.False(t, page.HasMore)
			assert.NotNil(t, page.Items)
		})
	}
}

func TestQuoteHandler_List_Pages(t *testing.T) {
	f := newAPIFixture(t, app.ImportAppend)

	w := f.do(t, http.MethodGet, "/api/v1/quotes?limit=2", nil)
	requireStatus(t, w, http.StatusOK)

	first := decode[quotePage](t, w)
	require.Len(t, first.Items, 2)
	require.True(t, first.HasMore)
	require.NotEmpty(t, first.NextCursor)

	w = f.do(t, http.MethodGet, "/api/v1/quotes?limit=2&cursor="+first.NextCursor, nil)
	requireStatus(t, w, http.StatusOK)

	second := decode[quotePage](t, w)
	require.Len(t, second.Items, 1)
	assert.False(t, second.HasMore)
	assert.Equal(t, "Life", second.Items[0].Category)

	w = f.do(t, http.MethodGet, "/api/v1/quotes?category=Life&cursor="+first.NextCursor, nil)
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, dto.ErrorCodeBadRequest, decode[dto.ErrorResponse](t, w).Error.Code)
}

func TestQuoteHandler_List_InvalidLimit(t *testing.T) {
	f := newAPIFixture(t, app.ImportAppend)

	w := f.do(t, http.MethodGet, "/api/v1/quotes?limit=500", nil)
	requireStatus(t, w, http.StatusBadRequest)

	resp := decode[dto.ErrorResponse](t, w)
	assert.Equal(t, dto.ErrorCodeValidation, resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "limit")
}

func TestQuoteHandler_Add(t *testing.T) {
	f := newAPIFixture(t, app.ImportAppend)

	w := f.do(t, http.MethodPost, "/api/v1/quotes", map[string]string{"text": "Ship it.", "category": "Work"})
	requireStatus(t, w, http.StatusCreated)

	assert.Equal(t, dto.QuoteResponse{Text: "Ship it.", Category: "Work"}, decode[dto.QuoteResponse](t, w))
	assert.Equal(t, 4, f.store.Len())
	assert.True(t, f.store.Categories().Contains("Work"))

	saved, err := f.slots.Load(context.Background(), ports.SlotQuotes)
	require.NoError(t, err)
	assert.Contains(t, string(saved), "Ship it.")
}

func TestQuoteHandler_Add_Rejected(t *testing.T) {
	tests := []struct {
		name        string
		body        any
		wantCode    string
		wantDetails string
	}{
		{name: "malformed json", body: `{"text":`, wantCode: dto.ErrorCodeBadRequest},
		{name: "missing category", body: map[string]string{"text": "x"}, wantCode: dto.ErrorCodeValidation, wantDetails: "category"},
		{name: "blank text", body: map[string]string{"text": "  ", "category": "Work"}, wantCode: dto.ErrorCodeValidation, wantDetails: "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture(t, app.ImportAppend)

			w := f.do(t, http.MethodPost, "/api/v1/quotes", tt.body)
			requireStatus(t, w, http.StatusBadRequest)

			resp := decode[dto.ErrorResponse](t, w)
			assert.Equal(t, tt.wantCode, resp.Error.Code)

			if tt.wantDetails != "" {
				assert.Contains(t, resp.Error.Details, tt.wantDetails)
			}

			assert.Equal(t, 3, f.store.Len())
		})
	}
}

func TestQuoteHandler_RandomAndCurrent(t *testing.T) {
	f := newAPIFixture(t, app.ImportAppend)

	w := f.do(t, http.MethodGet, "/api/v1/quotes/current", nil)
	requireStatus(t, w, http.StatusNotFound)

	w = f.do(t, http.MethodGet, "/api/v1/quotes/random", nil)
	requireStatus(t, w, http.StatusOK)

	drawn := decode[dto.QuoteResponse](t, w)
	assert.Equal(t, domain.DefaultSeed()[0].Text, drawn.Text)

	w = f.do(t, http.MethodGet, "/api/v1/quotes/current", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, drawn, decode[dto.QuoteResponse](t, w))

	lastViewed, err := f.session.Load(context.Background(), ports.SlotLastViewedQuote)
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"The best way to predict the future is to invent it.","category":"Motivation"}`, string(lastViewed))
}

func TestQuoteHandler_Random_Category(t *testing.T) {
	f := newAPIFixture(t, app.ImportAppend)

	w := f.do(t, http.MethodGet, "/api/v1/quotes/random?category=Life", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, "Life", decode[dto.QuoteResponse](t, w).Category)

	w = f.do(t, http.MethodGet, "/api/v1/quotes/random?category=Nope", nil)
	requireStatus(t, w, http.StatusNotFound)
	assert.Equal(t, dto.ErrorCodeNotFound, decode[dto.ErrorResponse](t, w).Error.Code)
}

func TestQuoteHandler_Export(t *testing.T) {
	f := newAPIFixture(t, app.ImportAppend)

	w := f.do(t, http.MethodGet, "/api/v1/quotes/export", nil)
	requireStatus(t, w, http.StatusOK)

	assert.Equal(t, `attachment; filename="quotes.json"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	exported := decode[[]dto.QuoteResponse](t, w)
	assert.Equal(t, dto.FromQuotes(domain.DefaultSeed()), exported)
}

func TestQuoteHandler_Import(t *testing.T) {
	tests := []struct {
		name      string
		policy    app.ImportPolicy
		body      string
		wantAdded int
		wantLen   int
	}{
		{
			name:      "append keeps duplicates",
			policy:    app.ImportAppend,
			body:      `[{"text":"The only way to do great work is to love what you do.","category":"Life"},{"text":"New","category":"Tech"}]`,
			wantAdded: 2,
			wantLen:   5,
		},
		{
			name:      "merge skips known text",
			policy:    app.ImportMerge,
			body:      `[{"category":"Life","text":"The only way to do great work is to love what you do."},{"text":"New","category":"Tech","id":7}]`,
			wantAdded: 1,
			wantLen:   4,
		},
		{
			name:    "empty collection",
			policy:  app.ImportAppend,
			body:    `[]`,
			wantLen: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture(t, tt.policy)

			w := f.do(t, http.MethodPost, "/api/v1/quotes/import", tt.body)
			requireStatus(t, w, http.StatusOK)

			result := decode[app.ImportResult](t, w)
			assert.Equal(t, tt.wantAdded, result.Added)
			assert.Equal(t, tt.policy, result.Policy)
			assert.Equal(t, tt.wantLen, f.store.Len())
		})
	}
}

func TestQuoteHandler_Import_RejectsMalformedPayload(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantRecord bool
	}{
		{name: "empty body", body: ""},
		{name: "not json", body: `quotes please`},
		{name: "object", body: `{"text":"x","category":"y"}`},
		{name: "record without category", body: `[{"text":"ok","category":"A"},{"text":"x"}]`, wantRecord: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture(t, app.ImportAppend)
			before := f.store.Snapshot()

			w := f.do(t, http.MethodPost, "/api/v1/quotes/import", tt.body)
			requireStatus(t, w, http.StatusBadRequest)

			resp := decode[dto.ErrorResponse](t, w)
			assert.Equal(t, dto.ErrorCodeParse, resp.Error.Code)

			if tt.wantRecord {
				assert.Contains(t, resp.Error.Details, "record")
			}

			assert.Equal(t, before, f.store.Snapshot())
		})
	}
}
