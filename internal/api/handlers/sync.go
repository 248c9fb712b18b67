package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/se1907800-collab/mediavalut/internal/store"
)

// SyncStatus reports the persistence backend and freshness counters so the
// client can show a non-blocking online/offline indicator.
func (h *Handler) SyncStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.lib.Status())
}

// Resync reloads the snapshot from the primary backend on demand, e.g.
// after connectivity comes back.
func (h *Handler) Resync(c *gin.Context) {
	applied, err := h.lib.Refresh(c.Request.Context())
	if err != nil && !errors.Is(err, store.ErrSnapshotNotFound) {
		respondError(c, err)
		return
	}
	if applied {
		h.hub.BroadcastSnapshotReplaced(h.lib.Status().LastUpdated)
	}
	c.JSON(http.StatusOK, gin.H{"replaced": applied, "status": h.lib.Status()})
}
