package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rmawad/partsync/internal/server/http/dto"
)

// SyncHandler manages manual refresh and health endpoints.
type SyncHandler struct {
	facade RefreshFacade
}

// NewSyncHandler constructs SyncHandler.
func NewSyncHandler(facade RefreshFacade) *SyncHandler {
	return &SyncHandler{facade: facade}
}

// Refresh handles POST /api/refresh. The fetch is synchronous; a stale
// response discarded by the generation guard still reports success because a
// newer snapshot has already been committed.
func (h *SyncHandler) Refresh(c *gin.Context) {
	if err := h.facade.Refresh(c.Request.Context(), true); err != nil {
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "marketplace fetch failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Health handles GET /healthz.
func (h *SyncHandler) Health(c *gin.Context) {
	status := h.facade.Status()
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:               "ok",
		Generation:           status.Generation,
		LastCommitGeneration: status.LastCommitGeneration,
		LastCommitAt:         status.LastCommitAt,
		Orders:               status.Orders,
		Version:              status.Version,
	})
}
