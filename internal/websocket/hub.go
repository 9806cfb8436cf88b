// Package websocket pushes dataset lifecycle events to connected browsers.
// The server is the only writer; clients subscribe and re-fetch chart data
// when the dataset underneath them changes.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"envchart/internal/infrastructure"
)

// Event types pushed to clients.
const (
	TypeConnection      = "connection"
	TypeDatasetReplaced = "dataset:replaced"
	TypeDatasetCleared  = "dataset:cleared"
	TypeLoadProgress    = "dataset:progress"
	TypeError           = "error"
)

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	running bool
	quit    chan struct{}

	logger *slog.Logger

	totalConnections int64
	messagesSent     int64
}

// NewHub creates a new Hub with dependency injection.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		logger:     logger.With(slog.String("component", "websocket.hub")),
	}
}

// Start launches the hub's run loop.
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Run processes register, unregister and broadcast events until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("WebSocket hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.totalConnections++
			h.mu.Unlock()
			h.logger.Info("WebSocket client connected",
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr),
				slog.Int("active_clients", h.ClientCount()))

			// Let the client know it is live before any dataset event arrives.
			h.sendEnvelope(client, TypeConnection, map[string]interface{}{
				"status":  "connected",
				"message": "Connected to EnvChart live updates",
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Info("WebSocket client disconnected",
				slog.String("client_id", client.id),
				slog.Int("active_clients", h.ClientCount()))

		case message := <-h.broadcast:
			h.mu.RLock()
			targets := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				targets = append(targets, client)
			}
			h.mu.RUnlock()

			for _, client := range targets {
				select {
				case client.send <- message:
					h.messagesSent++
				default:
					// Buffer full: the client stopped draining, drop it.
					h.logger.Warn("Dropping slow WebSocket client",
						slog.String("client_id", client.id))
					h.mu.Lock()
					if _, ok := h.clients[client]; ok {
						delete(h.clients, client)
						close(client.send)
					}
					h.mu.Unlock()
				}
			}
		}
	}
}

// Stop gracefully stops the hub and closes all client connections.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastDatasetReplaced notifies clients that a new workbook was loaded
// and any chart data they hold is stale.
func (h *Hub) BroadcastDatasetReplaced(source string, rowsLoaded, rowsSkipped int) {
	h.broadcastEnvelope(TypeDatasetReplaced, map[string]interface{}{
		"source":       source,
		"rows_loaded":  rowsLoaded,
		"rows_skipped": rowsSkipped,
	})
}

// BroadcastDatasetCleared notifies clients that the dataset was emptied.
func (h *Hub) BroadcastDatasetCleared() {
	h.broadcastEnvelope(TypeDatasetCleared, nil)
}

// BroadcastLoadProgress reports ingest progress for large workbooks.
func (h *Hub) BroadcastLoadProgress(source string, rowsRead int) {
	h.broadcastEnvelope(TypeLoadProgress, map[string]interface{}{
		"source":    source,
		"rows_read": rowsRead,
	})
}

// BroadcastError sends a structured error event to all clients.
func (h *Hub) BroadcastError(code, message string) {
	h.broadcastEnvelope(TypeError, map[string]interface{}{
		"code":    code,
		"message": message,
	})
}

func (h *Hub) broadcastEnvelope(eventType string, data interface{}) {
	payload, err := json.Marshal(envelope(eventType, data))
	if err != nil {
		h.logger.Error("Error marshaling broadcast message",
			slog.String("type", eventType),
			slog.String("error", err.Error()))
		return
	}
	h.broadcast <- payload
}

// sendEnvelope delivers an event to a single client, bypassing the broadcast
// queue. Used for the connection handshake.
func (h *Hub) sendEnvelope(client *Client, eventType string, data interface{}) {
	payload, err := json.Marshal(envelope(eventType, data))
	if err != nil {
		h.logger.Error("Error marshaling client message",
			slog.String("type", eventType),
			slog.String("error", err.Error()))
		return
	}
	select {
	case client.send <- payload:
	default:
	}
}

func envelope(eventType string, data interface{}) map[string]interface{} {
	msg := map[string]interface{}{
		"type":      eventType,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if data != nil {
		msg["data"] = data
	}
	return msg
}
