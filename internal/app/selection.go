package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

// SelectionState holds the persisted category filter and the quote currently
// on display.
type SelectionState struct {
	store   *QuoteStore
	slots   ports.SlotStore
	session ports.SlotStore
	pick    func(n int) int
	logger  *slog.Logger

	mu        sync.RWMutex
	selected  string
	displayed *domain.Quote
}

// SelectionStateConfig contains the selection's collaborators.
type SelectionStateConfig struct {
	// Store is the quote collection. Required.
	Store *QuoteStore

	// Slots persists the selected category. Required.
	Slots ports.SlotStore

	// Session receives the last viewed quote. Optional.
	Session ports.SlotStore

	// Pick returns a number in [0, n). Defaults to math/rand/v2.
	Pick func(n int) int

	Logger *slog.Logger
}

// NewSelectionState creates a selection with the wildcard filter.
func NewSelectionState(cfg SelectionStateConfig) *SelectionState {
	if cfg.Store == nil {
		panic("app: SelectionState requires a QuoteStore")
	}

	if cfg.Slots == nil {
		panic("app: SelectionState requires a SlotStore")
	}

	if cfg.Pick == nil {
		cfg.Pick = rand.IntN
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &SelectionState{
		store:    cfg.Store,
		slots:    cfg.Slots,
		session:  cfg.Session,
		pick:     cfg.Pick,
		logger:   cfg.Logger.With(slog.String("component", "selection")),
		selected: WildcardCategory,
	}
}

// Load restores the persisted filter. An absent value, or one the index no
// longer knows, restores the wildcard.
func (s *SelectionState) Load(ctx context.Context) {
	selected := WildcardCategory

	data, err := s.slots.Load(ctx, ports.SlotSelectedCategory)

	switch {
	case err == nil && s.store.Categories().Contains(string(data)):
		selected = string(data)
	case err == nil:
		s.logger.InfoContext(ctx, "stored category filter is unknown, using wildcard",
			slog.String("category", string(data)),
		)
	case !domain.IsNotFound(err):
		s.logger.WarnContext(ctx, "reading category filter failed", slog.Any("error", err))
	}

	s.mu.Lock()
	s.selected = selected
	s.mu.Unlock()
}

// Selected returns the active category filter.
func (s *SelectionState) Selected() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.selected
}

// Select makes category the active filter and persists it.
// Unknown categories are rejected with a ValidationError.
func (s *SelectionState) Select(ctx context.Context, category string) error {
	if !s.store.Categories().Contains(category) {
		return domain.NewValidationError("category", fmt.Sprintf("unknown category %q", category))
	}

	s.mu.Lock()
	s.selected = category
	s.mu.Unlock()

	if err := s.slots.Save(ctx, ports.SlotSelectedCategory, []byte(category)); err != nil {
		return fmt.Errorf("%w: %w", domain.NewUnavailableError("storage", "saving category filter"), err)
	}

	return nil
}

// RandomQuote picks a quote from category, or from the selected filter when
// category is empty, and puts it on display. Returns a NotFoundError when the
// filter matches nothing.
func (s *SelectionState) RandomQuote(ctx context.Context, category string) (domain.Quote, error) {
	if category == "" {
		category = s.Selected()
	}

	candidates := s.store.Filter(category)
	if len(candidates) == 0 {
		if category == WildcardCategory {
			return domain.Quote{}, domain.NewNotFoundError("quote", "")
		}

		return domain.Quote{}, domain.NewNotFoundError("quote in category", category)
	}

	q := candidates[s.pick(len(candidates))]
	s.Show(ctx, q)

	return q, nil
}

// Show puts q on display and records it as the last viewed quote.
func (s *SelectionState) Show(ctx context.Context, q domain.Quote) {
	s.mu.Lock()
	s.displayed = &q
	s.mu.Unlock()

	if s.session == nil {
		return
	}

	data, err := json.Marshal(q)
	if err == nil {
		err = s.session.Save(ctx, ports.SlotLastViewedQuote, data)
	}

	if err != nil {
		s.logger.WarnContext(ctx, "recording last viewed quote failed", slog.Any("error", err))
	}
}

// Current returns the quote on display, if any.
func (s *SelectionState) Current() (domain.Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.displayed == nil {
		return domain.Quote{}, false
	}

	return *s.displayed, true
}

// Invalidate clears the displayed quote so consumers re-render.
func (s *SelectionState) Invalidate() {
	s.mu.Lock()
	s.displayed = nil
	s.mu.Unlock()
}
