package acl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jsamuelsen/quote-sync/internal/adapters/clients"
	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/platform/logging"
)

const (
	// RemoteServiceName identifies the remote quote collection in errors and health checks.
	RemoteServiceName = "quote-service"

	defaultRemotePath     = "/posts"
	defaultRemoteCategory = "Server"
	defaultRemoteUserID   = 1
)

// RemoteQuoteClientConfig contains configuration for the remote quote client.
type RemoteQuoteClientConfig struct {
	// Client is the HTTP client to use for requests. Required.
	Client *clients.Client

	// FetchPath is the collection endpoint. Defaults to /posts.
	FetchPath string

	// SubmitPath is the endpoint accepting one new item. Defaults to /posts.
	SubmitPath string

	// DefaultCategory labels remote items that carry no category.
	DefaultCategory string

	// UserID is sent with every submitted item. Defaults to 1.
	UserID int

	Logger *slog.Logger
}

// RemoteQuoteClient reads and extends a remote collection of posts, reducing
// each post to a domain.Quote. It implements ports.RemoteQuotes and
// ports.HealthChecker.
type RemoteQuoteClient struct {
	BaseAdapter

	fetchPath       string
	submitPath      string
	defaultCategory string
	userID          int
	logger          *slog.Logger
}

// NewRemoteQuoteClient creates a new remote quote client adapter.
// Panics if Client is nil.
func NewRemoteQuoteClient(cfg RemoteQuoteClientConfig) *RemoteQuoteClient {
	if cfg.Client == nil {
		panic("RemoteQuoteClient: Client is required")
	}

	if cfg.FetchPath == "" {
		cfg.FetchPath = defaultRemotePath
	}

	if cfg.SubmitPath == "" {
		cfg.SubmitPath = defaultRemotePath
	}

	if cfg.DefaultCategory == "" || cfg.DefaultCategory == domain.WildcardCategory {
		cfg.DefaultCategory = defaultRemoteCategory
	}

	if cfg.UserID == 0 {
		cfg.UserID = defaultRemoteUserID
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &RemoteQuoteClient{
		BaseAdapter:     NewBaseAdapter(cfg.Client, RemoteServiceName),
		fetchPath:       cfg.FetchPath,
		submitPath:      cfg.SubmitPath,
		defaultCategory: cfg.DefaultCategory,
		userID:          cfg.UserID,
		logger:          logger.With(slog.String("component", "acl.RemoteQuoteClient")),
	}
}

// remotePost is the external DTO. Never exposed outside the ACL.
type remotePost struct {
	ID       int    `json:"id,omitempty"`
	UserID   int    `json:"userId"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Category string `json:"category,omitempty"`
}

// FetchRemoteQuotes returns the remote collection as quotes, in remote order.
// Implements ports.QuoteFetcher.
func (c *RemoteQuoteClient) FetchRemoteQuotes(ctx context.Context) ([]domain.Quote, error) {
	logger := logging.FromContextOr(ctx, c.logger)
	logger.Log(ctx, logging.LevelTrace, "starting request", slog.String("path", c.fetchPath))

	body, err := c.Get(ctx, c.fetchPath, "fetch quotes")
	if err != nil {
		return nil, err
	}

	posts, err := DecodeResponse[[]remotePost](body, c.ServiceName())
	if err != nil {
		return nil, err
	}

	if *posts == nil {
		return nil, domain.NewDecodeError(c.ServiceName(), fmt.Errorf("expected a JSON array"))
	}

	quotes := TranslateSlice(*posts, c.translateToDomain)

	logger.DebugContext(ctx, "fetched remote quotes",
		slog.Int("items", len(*posts)),
		slog.Int("quotes", len(quotes)),
	)

	return quotes, nil
}

// translateToDomain is the lossy mapping from a remote post to a quote.
func (c *RemoteQuoteClient) translateToDomain(ext *remotePost) (domain.Quote, bool) {
	text := strings.TrimSpace(ext.Title)
	if text == "" {
		text = strings.TrimSpace(ext.Body)
	}

	if text == "" {
		return domain.Quote{}, false
	}

	category := strings.TrimSpace(ext.Category)
	if category == "" || category == domain.WildcardCategory {
		category = c.defaultCategory
	}

	return domain.Quote{Text: text, Category: category}, true
}

// translateFromDomain builds the outgoing DTO for a locally added quote.
func (c *RemoteQuoteClient) translateFromDomain(q domain.Quote) remotePost {
	return remotePost{
		UserID:   c.userID,
		Title:    q.Text,
		Body:     q.Text,
		Category: q.Category,
	}
}

// SubmitQuote posts q to the remote. The acknowledgment is drained and
// discarded. Implements ports.QuoteSubmitter.
func (c *RemoteQuoteClient) SubmitQuote(ctx context.Context, q domain.Quote) error {
	payload, err := json.Marshal(c.translateFromDomain(q))
	if err != nil {
		return fmt.Errorf("encoding quote: %w", err)
	}

	body, err := c.Post(ctx, c.submitPath, bytes.NewReader(payload), "submit quote")
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	_, _ = io.Copy(io.Discard, body)

	logging.FromContextOr(ctx, c.logger).Log(ctx, logging.LevelTrace, "quote submitted",
		slog.String("path", c.submitPath),
	)

	return nil
}

// Name returns the health check name for this client.
// Implements ports.HealthChecker.
func (c *RemoteQuoteClient) Name() string {
	return RemoteServiceName
}

// Check verifies the collection endpoint answers with a success status.
// Implements ports.HealthChecker.
func (c *RemoteQuoteClient) Check(ctx context.Context) error {
	body, err := c.Get(ctx, c.fetchPath, "health check")
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	_, _ = io.Copy(io.Discard, body)

	return nil
}
