package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/quote-sync/internal/domain"
)

// ImportPolicy decides how imported records are applied to the store.
type ImportPolicy string

const (
	// ImportAppend appends every record, duplicates included.
	ImportAppend ImportPolicy = "append"

	// ImportMerge applies the additive, text-deduplicating sync merge.
	ImportMerge ImportPolicy = "merge"
)

// ParseImportPolicy maps a config value onto a policy.
func ParseImportPolicy(s string) (ImportPolicy, error) {
	switch p := ImportPolicy(s); p {
	case ImportAppend, ImportMerge:
		return p, nil
	case "":
		return ImportAppend, nil
	default:
		return "", domain.NewValidationError("import.policy", fmt.Sprintf("unknown policy %q", s))
	}
}

// ImportResult summarizes an applied import.
type ImportResult struct {
	Parsed int          `json:"parsed"`
	Added  int          `json:"added"`
	Policy ImportPolicy `json:"policy"`
}

// Transfer exports the store as a snapshot and imports snapshots into it.
type Transfer struct {
	store    *QuoteStore
	policy   ImportPolicy
	executor *Executor
	logger   *slog.Logger
}

// TransferConfig contains the transfer's collaborators.
type TransferConfig struct {
	// Store is the collection. Required.
	Store *QuoteStore

	// Policy defaults to ImportAppend.
	Policy ImportPolicy

	Logger *slog.Logger
}

// NewTransfer creates a Transfer.
func NewTransfer(cfg TransferConfig) *Transfer {
	if cfg.Store == nil {
		panic("app: Transfer requires a QuoteStore")
	}

	if cfg.Policy == "" {
		cfg.Policy = ImportAppend
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Transfer{
		store:    cfg.Store,
		policy:   cfg.Policy,
		executor: NewExecutor(cfg.Logger),
		logger:   cfg.Logger,
	}
}

// Policy returns the configured import policy.
func (t *Transfer) Policy() ImportPolicy {
	return t.policy
}

// Export renders the whole store in insertion order. It has no side effects.
func (t *Transfer) Export(_ context.Context) ([]byte, error) {
	return EncodeQuotes(t.store.Snapshot())
}

// importPlan is what Perform parsed and Archive applied.
type importPlan struct {
	quotes []domain.Quote
	added  int
}

// Import parses data and applies it with the configured policy. A payload
// that is not a well-formed collection of {text, category} records fails with
// a *domain.ParseError and leaves the store, its snapshot and the index
// untouched.
func (t *Transfer) Import(ctx context.Context, data []byte) (*ImportResult, error) {
	op := Operation[[]byte, *importPlan, *importPlan, *ImportResult]{
		Name: "import_quotes",
		Validate: func(_ context.Context, data []byte) error {
			if len(data) == 0 {
				return domain.NewParseError("payload is empty", nil)
			}

			return nil
		},
		Perform: func(_ context.Context, data []byte) (*importPlan, error) {
			quotes, err := DecodeQuotes(data)
			if err != nil {
				return nil, err
			}

			return &importPlan{quotes: quotes}, nil
		},
		Archive: func(ctx context.Context, _ []byte, plan *importPlan) error {
			var err error

			switch t.policy {
			case ImportMerge:
				plan.added, err = t.store.Reconcile(ctx, plan.quotes)
			default:
				plan.added, err = t.store.AppendAll(ctx, plan.quotes)
			}

			return err
		},
		Respond: func(_ context.Context, _ []byte, plan *importPlan) (*ImportResult, error) {
			return &ImportResult{
				Parsed: len(plan.quotes),
				Added:  plan.added,
				Policy: t.policy,
			}, nil
		},
	}

	return Execute(ctx, t.executor, op, data)
}
