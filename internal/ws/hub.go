package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Hub fans server events out to every connected subscriber. The broadcast
// channel is a single ordered stream: events enter it in mutation order and
// every subscriber observes them in that same relative order.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan ServerMessage
	register   chan *Client
	unregister chan *Client
	logger     *slog.Logger
	mu         sync.RWMutex
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan ServerMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case message := <-h.broadcast:
			h.broadcastAll(message)
		}
	}
}

// Broadcast enqueues one event onto the ordered stream. The send blocks only
// on the hub goroutine, never on subscriber I/O: per-client delivery inside
// the hub is non-blocking.
func (h *Hub) Broadcast(eventType EventType, data any) {
	h.broadcast <- ServerMessage{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true

	h.logger.Info("websocket client connected",
		"client_id", client.ID,
		"connections", len(h.clients),
	)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)

		h.logger.Info("websocket client disconnected",
			"client_id", client.ID,
			"connections", len(h.clients),
		)
	}
}

// broadcastAll delivers one event to every subscriber. A client whose send
// buffer is full is dropped rather than awaited, so one slow subscriber
// cannot stall the stream for the rest.
func (h *Hub) broadcastAll(message ServerMessage) {
	payload, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal broadcast event",
			"type", message.Type,
			"error", err,
		)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			delete(h.clients, client)
			close(client.send)
			h.logger.Warn("dropped slow websocket client",
				"client_id", client.ID,
				"type", message.Type,
			)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}
