package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// MessageTypeInvalidate tells subscribers that a view path is stale
const MessageTypeInvalidate = "invalidate"

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	// Registered clients organized by view path
	clients map[string]map[*Client]bool

	// Outbound events; buffered so publishers never wait on the hub
	broadcast chan *Message

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	// Mutex for concurrent access to clients map
	mu sync.RWMutex

	logger zerolog.Logger
}

// Message represents an event sent over WebSocket
type Message struct {
	Type      string    `json:"type"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan *Message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[string]map[*Client]bool),
		logger:     logger.With().Str("component", "websocket").Logger(),
	}
}

// Run handles registrations and broadcasts until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// NotifyInvalidated publishes an invalidate event for path.
// The event is dropped when the hub is saturated.
func (h *Hub) NotifyInvalidated(path string) {
	msg := &Message{Type: MessageTypeInvalidate, Path: path, Timestamp: time.Now()}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn().Str("path", path).Msg("Hub saturated, dropping invalidation event")
	}
}

// registerClient registers a new client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.path]; !ok {
		h.clients[client.path] = make(map[*Client]bool)
	}
	h.clients[client.path][client] = true

	h.logger.Info().
		Str("path", client.path).
		Str("userID", client.userID.String()).
		Msg("Client registered")
}

// unregisterClient unregisters a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.path]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.path)
	}

	h.logger.Info().
		Str("path", client.path).
		Str("userID", client.userID.String()).
		Msg("Client unregistered")
}

// broadcastMessage sends a message to every client subscribed to its path.
// Clients whose buffer is full are disconnected.
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().Err(err).Str("path", message.Path).Msg("Failed to marshal message for broadcast")
		return
	}

	var slow []*Client

	h.mu.RLock()
	clients := h.clients[message.Path]
	for client := range clients {
		select {
		case client.send <- data:
		default:
			slow = append(slow, client)
		}
	}
	count := len(clients)
	h.mu.RUnlock()

	for _, client := range slow {
		h.unregisterClient(client)
	}

	h.logger.Debug().
		Str("path", message.Path).
		Int("clientCount", count).
		Msg("Message broadcasted")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for path, clients := range h.clients {
		for client := range clients {
			close(client.send)
		}
		delete(h.clients, path)
	}
}

// ClientCount returns the number of connected clients for a view path
func (h *Hub) ClientCount(path string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients[path])
}
