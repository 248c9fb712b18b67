// Package handlers contains the HTTP and WebSocket handlers. All of them go
// through one *Handler that owns the application dependencies; there is no
// package-level state.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/se1907800-collab/mediavalut/internal/config"
	"github.com/se1907800-collab/mediavalut/internal/library"
	"github.com/se1907800-collab/mediavalut/internal/store"
	"github.com/se1907800-collab/mediavalut/internal/tree"
	"github.com/se1907800-collab/mediavalut/internal/websocket"
)

type Handler struct {
	cfg *config.Config
	lib *library.Library
	hub *websocket.Manager
}

func New(cfg *config.Config, lib *library.Library, hub *websocket.Manager) *Handler {
	return &Handler{cfg: cfg, lib: lib, hub: hub}
}

// respondError maps the domain error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, tree.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, tree.ErrInvalidParent), errors.Is(err, tree.ErrInvalidInput),
		errors.Is(err, tree.ErrInvalidOperation):
		status = http.StatusBadRequest
	case errors.Is(err, tree.ErrCyclicMove):
		status = http.StatusConflict
	case errors.Is(err, store.ErrUnavailable), errors.Is(err, store.ErrSnapshotNotFound):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// persist saves the snapshot after a mutation and tells connected clients
// to re-render. Persistence failures degrade to local-only operation and
// are reported through the sync status, never as a failed request.
func (h *Handler) persist(c *gin.Context) {
	if err := h.lib.Save(c.Request.Context()); err != nil {
		h.hub.Broadcast(&websocket.Notification{
			Type:    websocket.SyncError,
			Message: err.Error(),
		})
		return
	}
	h.hub.BroadcastTreeChanged(h.lib.Status().LastUpdated)
}

// HealthCheck reports liveness.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
