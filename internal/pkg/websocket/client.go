package websocket

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10 // must stay below pongWait
	maxMessageSize = 512                 // subscribers only send control frames
)

// upgrader keeps gorilla's default same-origin check
var upgrader = websocket.Upgrader{
	ReadBufferSize:  512,
	WriteBufferSize: 1024,
}

// Client is one admin feed subscribed to a single view path
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID uuid.UUID
	path   string
	logger zerolog.Logger
}

func (c *Client) logEvent(event *zerolog.Event) *zerolog.Event {
	return event.Str("userID", c.userID.String()).Str("path", c.path)
}

// readPump keeps the read side alive for pongs and close frames and
// unregisters the client once the peer goes away
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err == nil {
			continue
		}
		if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			c.logEvent(c.logger.Warn().Err(err)).Msg("Unexpected WebSocket close")
		}
		return
	}
}

// writePump delivers invalidation events and keeps the connection alive.
// A client watches one path, so queued events are identical and a burst is
// collapsed into a single frame.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			for drained := len(c.send); drained > 0; drained-- {
				if latest, ok := <-c.send; ok {
					message = latest
				}
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logEvent(c.logger.Debug().Err(err)).Msg("Failed to write invalidation")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
