package hub

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const broadcastBufferSize = 1000

// Hub routes recommendation updates to subscribed WebSocket clients.
type Hub struct {
	clients   map[*Client]bool
	clientsMu sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan Update

	log zerolog.Logger

	// Metrics
	totalConnections int64
	totalBroadcasts  int64
	droppedMessages  int64
	metricsMu        sync.RWMutex
}

// NewHub creates a hub ready to Run.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Update, broadcastBufferSize),
		log:        log.With().Str("component", "hub").Logger(),
	}
}

// Run processes registrations and broadcasts until the context ends.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case update := <-h.broadcast:
			h.broadcastUpdate(update)

		case <-ticker.C:
			h.logMetrics()
		}
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Broadcast queues an update for delivery. Drops the update when the
// hub is saturated rather than blocking the caller.
func (h *Hub) Broadcast(update Update) {
	select {
	case h.broadcast <- update:
	default:
		h.metricsMu.Lock()
		h.droppedMessages++
		h.metricsMu.Unlock()
		h.log.Warn().Str("recommendation_id", update.Recommendation.RecommendationID).Msg("broadcast buffer full, dropping update")
	}
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// Metrics returns a snapshot of hub counters for the health endpoint.
func (h *Hub) Metrics() map[string]interface{} {
	h.metricsMu.RLock()
	defer h.metricsMu.RUnlock()
	return map[string]interface{}{
		"connected_clients": h.GetClientCount(),
		"total_connections": h.totalConnections,
		"total_broadcasts":  h.totalBroadcasts,
		"dropped_messages":  h.droppedMessages,
	}
}

func (h *Hub) addClient(client *Client) {
	h.clientsMu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.clientsMu.Unlock()

	h.metricsMu.Lock()
	h.totalConnections++
	h.metricsMu.Unlock()

	h.log.Info().Str("client", client.ID).Int("connected", count).Msg("client registered")
}

func (h *Hub) removeClient(client *Client) {
	h.clientsMu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.Send)
	}
	count := len(h.clients)
	h.clientsMu.Unlock()

	h.log.Info().Str("client", client.ID).Int("connected", count).Msg("client unregistered")
}

// broadcastUpdate delivers one update to every client whose filter
// matches. Slow clients are skipped, not waited on.
func (h *Hub) broadcastUpdate(update Update) {
	msg := ServerMessage{
		Type:      MessageTypeRecommendation,
		Payload:   update,
		Timestamp: time.Now(),
	}

	h.clientsMu.RLock()
	var delivered, dropped int
	for client := range h.clients {
		if !client.MatchesFilter(update) {
			continue
		}
		if client.TrySend(msg) {
			delivered++
		} else {
			dropped++
		}
	}
	h.clientsMu.RUnlock()

	h.metricsMu.Lock()
	h.totalBroadcasts++
	h.droppedMessages += int64(dropped)
	h.metricsMu.Unlock()

	if dropped > 0 {
		h.log.Warn().Int("delivered", delivered).Int("dropped", dropped).Msg("some clients too slow for broadcast")
	}
}

func (h *Hub) logMetrics() {
	h.metricsMu.RLock()
	defer h.metricsMu.RUnlock()
	h.log.Info().
		Int("connected", h.GetClientCount()).
		Int64("total_connections", h.totalConnections).
		Int64("total_broadcasts", h.totalBroadcasts).
		Int64("dropped_messages", h.droppedMessages).
		Msg("hub metrics")
}

// shutdown closes every client's send channel so write pumps exit.
func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	for client := range h.clients {
		close(client.Send)
		delete(h.clients, client)
	}
	h.log.Info().Msg("hub stopped")
}
