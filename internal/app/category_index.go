package app

import (
	"slices"

	"github.com/jsamuelsen/quote-sync/internal/domain"
)

// WildcardCategory is the synthetic index entry meaning "no filter".
const WildcardCategory = domain.WildcardCategory

// CategoryIndex is the wildcard followed by every distinct category in
// first-seen order. It is rebuilt in full from the store on every mutation.
type CategoryIndex struct {
	labels []string
}

// BuildCategoryIndex derives the index from quotes. The result depends only
// on the order of quotes.
func BuildCategoryIndex(quotes []domain.Quote) CategoryIndex {
	labels := make([]string, 0, len(quotes)+1)
	labels = append(labels, WildcardCategory)

	seen := make(map[string]struct{}, len(quotes))
	for _, q := range quotes {
		if _, ok := seen[q.Category]; ok || q.Category == WildcardCategory {
			continue
		}

		seen[q.Category] = struct{}{}
		labels = append(labels, q.Category)
	}

	return CategoryIndex{labels: labels}
}

// Labels returns a copy of the ordered labels, wildcard first.
func (c CategoryIndex) Labels() []string {
	if len(c.labels) == 0 {
		return []string{WildcardCategory}
	}

	return slices.Clone(c.labels)
}

// Contains reports whether label is the wildcard or a known category.
func (c CategoryIndex) Contains(label string) bool {
	return label == WildcardCategory || slices.Contains(c.labels, label)
}

// Len counts the labels including the wildcard.
func (c CategoryIndex) Len() int {
	return len(c.Labels())
}
