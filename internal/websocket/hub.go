package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"ordenescli/internal/infrastructure"
	"ordenescli/pkg/contracts/events"
)

// Event types broadcast to clients, aliased from the shared contracts.
const (
	TypeConnection        = string(events.MessageTypeConnect)
	TypeDatasetUploaded   = string(events.MessageTypeDatasetUploaded)
	TypeDatasetRecomputed = string(events.MessageTypeDatasetRecomputed)
	TypeDatasetExported   = string(events.MessageTypeDatasetExported)
	TypeDatasetDeleted    = string(events.MessageTypeDatasetDeleted)
)

// WSMetrics receives connection gauge updates. Implemented by the
// infrastructure metrics providers; nil disables recording.
type WSMetrics interface {
	RecordWSClientDelta(ctx context.Context, delta int64)
}

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Inbound messages from the clients
	broadcast chan []byte

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex for thread-safe operations
	mu sync.RWMutex

	// Logger instance
	logger *slog.Logger

	// Optional connection gauge
	metrics WSMetrics

	// Counters
	totalConnections int64
	messagesSent     int64

	// Control
	quit    chan struct{}
	running bool
}

// NewHub creates a new Hub instance with dependency injection. Metrics
// may be nil.
func NewHub(logger *slog.Logger, metrics WSMetrics) *Hub {
	logger = infrastructure.WithComponent(logger, "websocket.hub")

	return &Hub{
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     logger,
		metrics:    metrics,
		quit:       make(chan struct{}),
	}
}

// Start starts the hub's main loop in its own goroutine
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

// Run processes register, unregister and broadcast requests until Stop
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.totalConnections++
			h.mu.Unlock()

			ctx := context.Background()
			if client.traceID != "" {
				ctx = infrastructure.WithTraceID(ctx, client.traceID)
			}
			h.logger.InfoContext(ctx, "client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))
			if h.metrics != nil {
				h.metrics.RecordWSClientDelta(ctx, 1)
			}

			// Greet the newly connected client
			connMsg := events.NewMessage(events.MessageTypeConnect, map[string]interface{}{
				"status":    "connected",
				"client_id": client.id,
			})
			if jsonData, err := json.Marshal(connMsg); err == nil {
				select {
				case client.send <- jsonData:
				default:
					h.logger.WarnContext(ctx, "client buffer full on connect",
						slog.String("client_id", client.id))
				}
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				count := len(h.clients)
				h.mu.Unlock()

				ctx := context.Background()
				if client.traceID != "" {
					ctx = infrastructure.WithTraceID(ctx, client.traceID)
				}
				h.logger.InfoContext(ctx, "client unregistered",
					slog.Int("total_clients", count),
					slog.String("client_id", client.id),
					slog.Duration("connection_duration", time.Since(client.connectedAt)))
				if h.metrics != nil {
					h.metrics.RecordWSClientDelta(ctx, -1)
				}
			} else {
				h.mu.Unlock()
			}

		case message := <-h.broadcast:
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			var sent int64
			for _, client := range clients {
				select {
				case client.send <- message:
					sent++
				default:
					// Client's send channel is full, drop it
					h.mu.Lock()
					close(client.send)
					delete(h.clients, client)
					h.mu.Unlock()

					h.logger.Warn("client send buffer full, disconnecting",
						slog.String("client_id", client.id))
					if h.metrics != nil {
						h.metrics.RecordWSClientDelta(context.Background(), -1)
					}
				}
			}
			if sent > 0 {
				h.mu.Lock()
				h.messagesSent += sent
				h.mu.Unlock()
			}
		}
	}
}

// PublishEvent sends a typed event to all connected clients. Satisfies
// the service layer's EventPublisher interface.
func (h *Hub) PublishEvent(eventType string, data interface{}) {
	h.BroadcastMessage(events.NewMessage(events.MessageType(eventType), data))
}

// BroadcastMessage marshals and broadcasts a message to all clients
func (h *Hub) BroadcastMessage(message events.Message) {
	jsonData, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("error marshaling message",
			slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	running := h.running
	h.mu.RUnlock()
	if !running {
		return
	}

	select {
	case h.broadcast <- jsonData:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HubStats is a point-in-time snapshot of hub activity.
type HubStats struct {
	ActiveClients    int   `json:"active_clients"`
	TotalConnections int64 `json:"total_connections"`
	MessagesSent     int64 `json:"messages_sent"`
}

// Stats returns activity counters since the hub was created.
func (h *Hub) Stats() HubStats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return HubStats{
		ActiveClients:    len(h.clients),
		TotalConnections: h.totalConnections,
		MessagesSent:     h.messagesSent,
	}
}

// Stop shuts down the hub and disconnects all clients
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	close(h.quit)

	dropped := int64(len(h.clients))
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.mu.Unlock()

	if dropped > 0 && h.metrics != nil {
		h.metrics.RecordWSClientDelta(context.Background(), -dropped)
	}
	h.logger.Info("hub stopped")
}

// Register queues a client for registration
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client. Returns immediately when the hub has
// already stopped, since nothing drains the unregister channel then.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}
