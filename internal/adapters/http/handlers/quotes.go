package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-sync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-sync/internal/app"
	"github.com/jsamuelsen/quote-sync/internal/domain"
)

// ExportFileName is the attachment name of GET /api/v1/quotes/export.
const ExportFileName = "quotes.json"

// QuoteHandler serves the quote collection.
type QuoteHandler struct {
	store     *app.QuoteStore
	selection *app.SelectionState
	transfer  *app.Transfer
}

// QuoteHandlerConfig contains the quote handler's collaborators. All are required.
type QuoteHandlerConfig struct {
	Store     *app.QuoteStore
	Selection *app.SelectionState
	Transfer  *app.Transfer
}

// NewQuoteHandler creates a quote handler.
func NewQuoteHandler(cfg QuoteHandlerConfig) *QuoteHandler {
	if cfg.Store == nil || cfg.Selection == nil || cfg.Transfer == nil {
		panic("handlers: QuoteHandler requires a store, a selection and a transfer")
	}

	return &QuoteHandler{
		store:     cfg.Store,
		selection: cfg.Selection,
		transfer:  cfg.Transfer,
	}
}

// List handles GET /api/v1/quotes. The category query narrows the list;
// pages are cursor-based and cursors are bound to the category.
func (h *QuoteHandler) List(c *gin.Context) {
	var query dto.ListQuotesQuery
	if err := dto.BindQueryAndValidate(c, &query); err != nil {
		respondInvalid(c, err)
		return
	}

	category := query.Category
	if category == "" {
		category = app.WildcardCategory
	}

	page, err := dto.Paginate(dto.FromQuotes(h.store.Filter(category)), query.PaginationRequest, category)
	if err != nil {
		dto.AbortWithCode(c, dto.ErrorCodeBadRequest, "invalid cursor")
		return
	}

	c.JSON(http.StatusOK, page)
}

// Add handles POST /api/v1/quotes. The quote is stored and persisted before
// the response; forwarding it to the remote source happens in the background.
func (h *QuoteHandler) Add(c *gin.Context) {
	var req dto.AddQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		respondInvalid(c, err)
		return
	}

	q := req.Quote()
	if err := h.store.Add(c.Request.Context(), q); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromQuote(q))
}

// Random handles GET /api/v1/quotes/random. Without a category query the
// selected filter applies. The drawn quote goes on display.
func (h *QuoteHandler) Random(c *gin.Context) {
	var query dto.RandomQuoteQuery
	if err := dto.BindQueryAndValidate(c, &query); err != nil {
		respondInvalid(c, err)
		return
	}

	q, err := h.selection.RandomQuote(c.Request.Context(), query.Category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromQuote(q))
}

// Current handles GET /api/v1/quotes/current. It answers 404 when nothing is
// on display, including after a sync invalidated the display.
func (h *QuoteHandler) Current(c *gin.Context) {
	q, ok := h.selection.Current()
	if !ok {
		dto.HandleError(c, domain.NewNotFoundError("displayed quote", ""))
		return
	}

	c.JSON(http.StatusOK, dto.FromQuote(q))
}

// Export handles GET /api/v1/quotes/export as a file download.
func (h *QuoteHandler) Export(c *gin.Context) {
	data, err := h.transfer.Export(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+ExportFileName+`"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// Import handles POST /api/v1/quotes/import. The body is the raw export
// format. A malformed payload is rejected as a whole with 400 PARSE_ERROR.
func (h *QuoteHandler) Import(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrorCodeBadRequest, "import payload too large").WithTraceID(dto.GetTraceID(c)))

			return
		}

		dto.AbortWithCode(c, dto.ErrorCodeBadRequest, "reading request body failed")

		return
	}

	result, err := h.transfer.Import(c.Request.Context(), data)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RegisterRoutes registers the quote routes on rg.
func (h *QuoteHandler) RegisterRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("", h.List)
	quotes.POST("", h.Add)
	quotes.GET("/random", h.Random)
	quotes.GET("/current", h.Current)
	quotes.GET("/export", h.Export)
	quotes.POST("/import", h.Import)
}

// respondInvalid answers a failed bind or validation with 400.
func respondInvalid(c *gin.Context, err error) {
	switch {
	case dto.IsValidationError(err):
		resp := dto.NewErrorResponseWithDetails(dto.ErrorCodeValidation, "request validation failed", dto.ValidationErrors(err))
		c.JSON(http.StatusBadRequest, resp.WithTraceID(dto.GetTraceID(c)))

	case domain.IsValidation(err):
		dto.HandleError(c, err)

	default:
		dto.AbortWithCode(c, dto.ErrorCodeBadRequest, "malformed request")
	}
}
