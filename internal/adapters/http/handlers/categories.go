package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-sync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-sync/internal/app"
)

// CategoryHandler serves the category index and the persisted filter.
type CategoryHandler struct {
	store     *app.QuoteStore
	selection *app.SelectionState
}

// NewCategoryHandler creates a category handler.
func NewCategoryHandler(store *app.QuoteStore, selection *app.SelectionState) *CategoryHandler {
	if store == nil || selection == nil {
		panic("handlers: CategoryHandler requires a store and a selection")
	}

	return &CategoryHandler{store: store, selection: selection}
}

// List handles GET /api/v1/categories.
func (h *CategoryHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.response())
}

// Select handles PUT /api/v1/categories/selected. Unknown labels are 400.
func (h *CategoryHandler) Select(c *gin.Context) {
	var req dto.SelectCategoryRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		respondInvalid(c, err)
		return
	}

	if err := h.selection.Select(c.Request.Context(), req.Category); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.response())
}

func (h *CategoryHandler) response() dto.CategoriesResponse {
	return dto.CategoriesResponse{
		Categories: h.store.Categories().Labels(),
		Selected:   h.selection.Selected(),
	}
}

// RegisterRoutes registers the category routes on rg.
func (h *CategoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	categories := rg.Group("/categories")
	categories.GET("", h.List)
	categories.PUT("/selected", h.Select)
}
