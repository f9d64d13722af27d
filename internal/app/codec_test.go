package app

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-sync/internal/domain"
)

func TestEncodeQuotes(t *testing.T) {
	data, err := EncodeQuotes([]domain.Quote{{Text: "Stay hungry.", Category: "Life"}})
	require.NoError(t, err)

	assert.JSONEq(t, `[{"text":"Stay hungry.","category":"Life"}]`, string(data))
	assert.Contains(t, string(data), "\n  ")
}

func TestEncodeQuotes_NilIsEmptyArray(t *testing.T) {
	data, err := EncodeQuotes(nil)
	require.NoError(t, err)

	assert.JSONEq(t, `[]`, string(data))
}

func TestDecodeQuotes_AcceptsSnapshot(t *testing.T) {
	seed := domain.DefaultSeed()
	data, err := EncodeQuotes(seed)
	require.NoError(t, err)

	got, err := DecodeQuotes(data)

	require.NoError(t, err)
	assert.Equal(t, seed, got)
}

func TestDecodeQuotes_Lenient(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []domain.Quote
	}{
		{
			name:    "empty array",
			payload: `[]`,
			want:    []domain.Quote{},
		},
		{
			name:    "field order irrelevant",
			payload: `[{"category":"Life","text":"A"}]`,
			want:    []domain.Quote{{Text: "A", Category: "Life"}},
		},
		{
			name:    "extra fields ignored",
			payload: `[{"text":"A","category":"Life","author":"anon","id":7}]`,
			want:    []domain.Quote{{Text: "A", Category: "Life"}},
		},
		{
			name:    "surrounding whitespace",
			payload: "\n  [{\"text\":\"A\",\"category\":\"Life\"}]  \n",
			want:    []domain.Quote{{Text: "A", Category: "Life"}},
		},
		{
			name:    "duplicates kept",
			payload: `[{"text":"A","category":"Life"},{"text":"A","category":"Life"}]`,
			want:    []domain.Quote{{Text: "A", Category: "Life"}, {Text: "A", Category: "Life"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeQuotes([]byte(tt.payload))

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeQuotes_Rejects(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantIndex int
	}{
		{name: "empty payload", payload: ``, wantIndex: -1},
		{name: "not json", payload: `not json`, wantIndex: -1},
		{name: "object instead of array", payload: `{"text":"A","category":"Life"}`, wantIndex: -1},
		{name: "truncated array", payload: `[{"text":"A","category":"Life"}`, wantIndex: -1},
		{name: "null", payload: `null`, wantIndex: -1},
		{name: "string element", payload: `["A"]`, wantIndex: 0},
		{name: "null element", payload: `[{"text":"A","category":"Life"},null]`, wantIndex: 1},
		{name: "missing category", payload: `[{"text":"A"}]`, wantIndex: 0},
		{name: "missing text", payload: `[{"category":"Life"}]`, wantIndex: 0},
		{name: "numeric text", payload: `[{"text":5,"category":"Life"}]`, wantIndex: 0},
		{name: "blank category", payload: `[{"text":"A","category":"  "}]`, wantIndex: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeQuotes([]byte(tt.payload))

			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, domain.IsParse(err))

			var parseErr *domain.ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.wantIndex, parseErr.Index)
		})
	}
}

func TestDecodeQuotes_MatchesQuoteJSON(t *testing.T) {
	raw, err := json.Marshal(domain.Quote{Text: "A", Category: "B"})
	require.NoError(t, err)

	got, err := DecodeQuotes([]byte("[" + string(raw) + "]"))

	require.NoError(t, err)
	assert.Equal(t, []domain.Quote{{Text: "A", Category: "B"}}, got)
}
