package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 1024

	// Buffer size for outbound messages
	sendBufferSize = 256
)

// Client is one WebSocket subscriber.
type Client struct {
	ID   string
	Send chan ServerMessage // Exported for hub access

	conn     *websocket.Conn
	hub      registry
	filter   SubscriptionFilter
	filterMu sync.RWMutex
	log      zerolog.Logger
}

// registry is the slice of the hub a client needs.
type registry interface {
	Unregister(client *Client)
}

// NewClient creates a client around an upgraded connection.
func NewClient(id string, conn *websocket.Conn, hub registry, log zerolog.Logger) *Client {
	return &Client{
		ID:   id,
		Send: make(chan ServerMessage, sendBufferSize),
		conn: conn,
		hub:  hub,
		log:  log.With().Str("client", id).Logger(),
	}
}

// ReadPump pumps subscription messages from the connection to the client
// state until the peer goes away.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			var msg ClientMessage
			if err := c.conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					c.log.Warn().Err(err).Msg("unexpected close")
				}
				return
			}
			c.handleClientMessage(msg)
		}
	}
}

// WritePump pumps hub messages to the connection and keeps it alive with
// pings.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.log.Warn().Err(err).Msg("write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// TrySend queues a message without blocking. Returns false when the
// client's buffer is full.
func (c *Client) TrySend(msg ServerMessage) bool {
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

// SetFilter replaces the client's subscription filter.
func (c *Client) SetFilter(filter SubscriptionFilter) {
	c.filterMu.Lock()
	defer c.filterMu.Unlock()
	c.filter = filter
}

// MatchesFilter reports whether the client wants this update.
func (c *Client) MatchesFilter(update Update) bool {
	c.filterMu.RLock()
	defer c.filterMu.RUnlock()
	return c.filter.Matches(update)
}

// handleClientMessage routes one inbound frame.
func (c *Client) handleClientMessage(msg ClientMessage) {
	switch msg.Type {
	case MessageTypeSubscribe:
		c.handleSubscribe(msg.Payload)
	case MessageTypeUnsubscribe:
		c.SetFilter(SubscriptionFilter{})
	case MessageTypeHeartbeat:
		c.TrySend(ServerMessage{Type: MessageTypeHeartbeat, Timestamp: time.Now()})
	default:
		c.sendError("unknown_message_type", "unknown message type: "+msg.Type)
	}
}

// handleSubscribe replaces the filter from the subscribe payload.
func (c *Client) handleSubscribe(payload map[string]interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		c.sendError("invalid_filter", "failed to parse filter")
		return
	}

	var filter SubscriptionFilter
	if err := json.Unmarshal(raw, &filter); err != nil {
		c.sendError("invalid_filter", "failed to parse filter")
		return
	}

	c.SetFilter(filter)
	c.log.Info().Strs("sports", filter.Sports).Strs("tiers", filter.Tiers).Msg("subscribed")
}

// sendError sends an error frame to the client.
func (c *Client) sendError(code, message string) {
	c.TrySend(ServerMessage{
		Type:      MessageTypeError,
		Payload:   ErrorMessage{Code: code, Message: message},
		Timestamp: time.Now(),
	})
}
