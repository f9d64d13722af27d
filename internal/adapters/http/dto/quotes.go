package dto

import "github.com/jsamuelsen/quote-sync/internal/domain"

// QuoteResponse is the HTTP representation of a quote.
type QuoteResponse struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// FromQuote converts a domain quote.
func FromQuote(q domain.Quote) QuoteResponse {
	return QuoteResponse{Text: q.Text, Category: q.Category}
}

// FromQuotes converts a slice of domain quotes, never returning nil.
func FromQuotes(quotes []domain.Quote) []QuoteResponse {
	out := make([]QuoteResponse, len(quotes))
	for i, q := range quotes {
		out[i] = FromQuote(q)
	}

	return out
}

// AddQuoteRequest is the body of POST /api/v1/quotes.
type AddQuoteRequest struct {
	Text     string `json:"text"     validate:"required,notblank,max=2000"`
	Category string `json:"category" validate:"required,notblank,max=100"`
}

// Quote returns the domain value of the request.
func (r *AddQuoteRequest) Quote() domain.Quote {
	return domain.Quote{Text: r.Text, Category: r.Category}
}

// Validate applies the domain rules on top of the struct tags.
func (r *AddQuoteRequest) Validate() error {
	return r.Quote().Validate()
}

// ListQuotesQuery holds the query parameters of GET /api/v1/quotes.
type ListQuotesQuery struct {
	PaginationRequest

	// Category filters the list; empty or "all" lists everything.
	Category string `form:"category" json:"category" validate:"omitempty,max=100"`
}

// RandomQuoteQuery holds the query parameters of GET /api/v1/quotes/random.
type RandomQuoteQuery struct {
	// Category overrides the selected filter for this draw.
	Category string `form:"category" json:"category" validate:"omitempty,max=100"`
}

// SelectCategoryRequest is the body of PUT /api/v1/categories/selected.
type SelectCategoryRequest struct {
	Category string `json:"category" validate:"required,notblank"`
}

// CategoriesResponse lists the category index and the active filter.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
	Selected   string   `json:"selected"`
}
