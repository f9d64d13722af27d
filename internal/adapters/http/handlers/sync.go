package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-sync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-sync/internal/app"
	"github.com/jsamuelsen/quote-sync/internal/domain"
)

// SyncHandler triggers and reports reconciliation passes.
type SyncHandler struct {
	engine *app.SyncEngine
}

// NewSyncHandler creates a sync handler.
func NewSyncHandler(engine *app.SyncEngine) *SyncHandler {
	if engine == nil {
		panic("handlers: SyncHandler requires a SyncEngine")
	}

	return &SyncHandler{engine: engine}
}

// Run handles POST /api/v1/sync. It runs one pass and returns its result.
// A failed fetch is a completed pass and is reported with outcome "failed";
// only a pass already in flight is an error (409).
func (h *SyncHandler) Run(c *gin.Context) {
	result := h.engine.RunOnce(c.Request.Context())
	if result.Outcome == app.OutcomeSkipped {
		dto.HandleError(c, domain.NewConflictError("sync", "a pass is already running"))
		return
	}

	c.JSON(http.StatusOK, result)
}

// Status handles GET /api/v1/sync/status.
func (h *SyncHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Status())
}

// RegisterRoutes registers the sync routes on rg.
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sync", h.Run)
	rg.GET("/sync/status", h.Status)
}
