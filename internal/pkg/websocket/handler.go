package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/dancestudio/internal/pkg/auth"
)

// Handler upgrades admin requests into invalidation feeds
type Handler struct {
	hub    *Hub
	paths  map[string]bool
	logger zerolog.Logger
}

// NewHandler creates a handler that accepts subscriptions to the given view paths
func NewHandler(hub *Hub, paths []string, logger zerolog.Logger) *Handler {
	allowed := make(map[string]bool, len(paths))
	for _, p := range paths {
		allowed[p] = true
	}
	return &Handler{hub: hub, paths: allowed, logger: logger}
}

// HandleConnection subscribes the caller to ?path=<view path>
func (h *Handler) HandleConnection(c *gin.Context) {
	path := c.Query("path")
	if !h.paths[path] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown view path"})
		return
	}

	identity := auth.IdentityFrom(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("path", path).
			Str("userID", identity.UserID.String()).
			Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		send:   make(chan []byte, 16),
		userID: identity.UserID,
		path:   path,
		logger: h.logger,
	}
	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
