package dto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// DefaultLimit is the default number of items per page.
const DefaultLimit = 20

// MaxLimit is the maximum allowed items per page.
const MaxLimit = 100

// Cursor errors.
var (
	// ErrInvalidCursor is returned when cursor decoding fails or the cursor
	// belongs to a different filter.
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrNoCursor indicates no cursor was provided (first page request).
	ErrNoCursor = errors.New("no cursor provided")
)

// PaginationRequest represents pagination parameters from the request.
type PaginationRequest struct {
	// Cursor is an opaque string from a previous response's NextCursor.
	Cursor string `form:"cursor" json:"cursor"`

	// Limit is the maximum number of items to return (1-100, default 20).
	Limit int `form:"limit" json:"limit" validate:"omitempty,gte=1,lte=100"`
}

// GetLimit returns the limit with defaults applied.
func (p *PaginationRequest) GetLimit() int {
	if p.Limit <= 0 {
		return DefaultLimit
	}

	return min(p.Limit, MaxLimit)
}

// DecodeCursor decodes the cursor string into CursorData.
// Returns ErrNoCursor if cursor is empty (first page request).
func (p *PaginationRequest) DecodeCursor() (*CursorData, error) {
	return DecodeCursor(p.Cursor)
}

// PaginatedResponse is a generic paginated response structure.
type PaginatedResponse[T any] struct {
	// Items is the array of items for this page.
	Items []T `json:"items"`

	// NextCursor is the cursor to use for the next page.
	// Empty if there are no more items.
	NextCursor string `json:"nextCursor,omitempty"`

	// HasMore indicates whether there are more items after this page.
	HasMore bool `json:"hasMore"`

	// Total is the number of items matching the filter.
	Total int `json:"total"`
}

// CursorData is the position encoded in a cursor. The store is append-only,
// so an offset stays valid across mutations. Scope ties the cursor to the
// filter it was issued for.
type CursorData struct {
	Offset int    `json:"o"`
	Scope  string `json:"s"`
}

// Paginate returns the page of items selected by req. scope identifies the
// filter that produced items; a cursor issued for another scope is rejected.
func Paginate[T any](items []T, req PaginationRequest, scope string) (*PaginatedResponse[T], error) {
	offset := 0

	cursor, err := req.DecodeCursor()

	switch {
	case errors.Is(err, ErrNoCursor):
	case err != nil:
		return nil, err
	case cursor.Scope != scope || cursor.Offset < 0:
		return nil, ErrInvalidCursor
	default:
		offset = min(cursor.Offset, len(items))
	}

	end := min(offset+req.GetLimit(), len(items))

	page := make([]T, end-offset)
	copy(page, items[offset:end])

	resp := &PaginatedResponse[T]{
		Items:   page,
		HasMore: end < len(items),
		Total:   len(items),
	}

	if resp.HasMore {
		resp.NextCursor = EncodeCursor(&CursorData{Offset: end, Scope: scope})
	}

	return resp, nil
}

// EncodeCursor encodes cursor data to a base64 string.
func EncodeCursor(data *CursorData) string {
	if data == nil {
		return ""
	}

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return ""
	}

	return base64.RawURLEncoding.EncodeToString(jsonBytes)
}

// DecodeCursor decodes a base64 cursor string to cursor data.
// Returns ErrNoCursor if the encoded string is empty.
func DecodeCursor(encoded string) (*CursorData, error) {
	if encoded == "" {
		return nil, ErrNoCursor
	}

	jsonBytes, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	var data CursorData
	if err := json.Unmarshal(jsonBytes, &data); err != nil {
		return nil, ErrInvalidCursor
	}

	return &data, nil
}
