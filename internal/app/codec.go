package app

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jsamuelsen/quote-sync/internal/domain"
)

// quoteRecord is the wire shape of one snapshot entry. Pointer fields tell a
// missing key apart from an empty string.
type quoteRecord struct {
	Text     *string `json:"text"`
	Category *string `json:"category"`
}

// EncodeQuotes renders quotes as the snapshot format shared by the quotes
// slot and exports: an indented JSON array of {"text","category"} objects.
func EncodeQuotes(quotes []domain.Quote) ([]byte, error) {
	if quotes == nil {
		quotes = []domain.Quote{}
	}

	data, err := json.MarshalIndent(quotes, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding quotes: %w", err)
	}

	return data, nil
}

// DecodeQuotes parses a snapshot. Every record must be an object with
// non-empty string "text" and "category" fields; other fields are ignored.
// Any violation rejects the whole payload with a *domain.ParseError.
func DecodeQuotes(data []byte) ([]domain.Quote, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, domain.NewParseError("payload is empty", nil)
	}

	if trimmed[0] != '[' {
		return nil, domain.NewParseError("payload is not a JSON array", nil)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, domain.NewParseError("malformed JSON", err)
	}

	quotes := make([]domain.Quote, 0, len(raw))

	for i, item := range raw {
		q, err := decodeRecord(i, item)
		if err != nil {
			return nil, err
		}

		quotes = append(quotes, q)
	}

	return quotes, nil
}

func decodeRecord(index int, item json.RawMessage) (domain.Quote, error) {
	item = bytes.TrimSpace(item)
	if len(item) == 0 || item[0] != '{' {
		return domain.Quote{}, domain.NewRecordParseError(index, "record is not an object")
	}

	var rec quoteRecord
	if err := json.Unmarshal(item, &rec); err != nil {
		return domain.Quote{}, domain.NewRecordParseError(index, "text and category must be strings")
	}

	if rec.Text == nil || rec.Category == nil {
		return domain.Quote{}, domain.NewRecordParseError(index, "text and category are required")
	}

	q := domain.Quote{Text: *rec.Text, Category: *rec.Category}
	if err := q.Validate(); err != nil {
		return domain.Quote{}, domain.NewRecordParseError(index, err.Error())
	}

	return q, nil
}
