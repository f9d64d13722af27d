// Package domain contains core business entities and rules.
package domain

import (
	"fmt"
	"strings"
)

// WildcardCategory is the reserved label that means "every category". No
// quote may carry it.
const WildcardCategory = "all"

// Quote is a single quotation tagged with a free-form category.
// Text is the identity key when collections are merged: two quotes with the
// same text are the same logical quote whatever their categories say.
type Quote struct {
	// Text is the quotation itself.
	Text string `json:"text"`

	// Category is a free-form label used for filtering.
	Category string `json:"category"`
}

// Validate checks that both fields carry non-blank content.
func (q Quote) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return NewValidationError("text", "must not be empty")
	}

	if strings.TrimSpace(q.Category) == "" {
		return NewValidationError("category", "must not be empty")
	}

	if q.Category == WildcardCategory {
		return NewValidationError("category", fmt.Sprintf("%q is reserved", WildcardCategory))
	}

	return nil
}

// SameAs reports whether q and other are the same logical quote.
func (q Quote) SameAs(other Quote) bool {
	return q.Key() == other.Key()
}

// Key is the identity used to deduplicate quotes on merge.
func (q Quote) Key() string {
	return q.Text
}

// DefaultSeed returns the collection used when nothing has been persisted yet.
// A fresh slice is returned on every call.
func DefaultSeed() []Quote {
	return []Quote{
		{Text: "The best way to predict the future is to invent it.", Category: "Motivation"},
		{Text: "Life is 10% what happens to us and 90% how we react to it.", Category: "Motivation"},
		{Text: "The only way to do great work is to love what you do.", Category: "Life"},
	}
}
