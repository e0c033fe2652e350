package hub

import (
	"time"

	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/recommend"
	"github.com/Rosewood1985/ai-sports-edge-sub010/pkg/models"
)

// Message types for WebSocket communication
const (
	MessageTypeRecommendation = "recommendation"
	MessageTypeSubscribe      = "subscribe"
	MessageTypeUnsubscribe    = "unsubscribe"
	MessageTypeHeartbeat      = "heartbeat"
	MessageTypeError          = "error"
)

// ClientMessage is a message from client to server.
type ClientMessage struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// ServerMessage is a message from server to client.
type ServerMessage struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ErrorMessage is the payload of an error frame.
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Update is a recommendation ready for broadcast, with the routing
// attributes clients filter on lifted out of the card.
type Update struct {
	Recommendation recommend.Recommendation `json:"recommendation"`
	Sports         []string                 `json:"sports"`
	Tier           models.Tier              `json:"tier"`
}

// NewUpdate derives the routing attributes from the recommendation's card.
func NewUpdate(rec recommend.Recommendation) Update {
	seen := make(map[string]struct{})
	sports := make([]string, 0, len(rec.Card.Legs))
	for _, leg := range rec.Card.Legs {
		key := string(leg.Sport)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		sports = append(sports, key)
	}

	return Update{
		Recommendation: rec,
		Sports:         sports,
		Tier:           rec.Tier,
	}
}

// SubscriptionFilter is a client's routing preference. Empty fields
// match everything.
type SubscriptionFilter struct {
	Sports []string `json:"sports,omitempty"` // Filter by sport keys
	Tiers  []string `json:"tiers,omitempty"`  // Filter by recommendation tiers
}

// Matches reports whether an update passes the filter.
func (f SubscriptionFilter) Matches(update Update) bool {
	if len(f.Sports) == 0 && len(f.Tiers) == 0 {
		return true
	}

	if len(f.Sports) > 0 && !overlaps(f.Sports, update.Sports) {
		return false
	}

	if len(f.Tiers) > 0 && !contains(f.Tiers, string(update.Tier)) {
		return false
	}

	return true
}

func overlaps(filter, values []string) bool {
	for _, v := range values {
		if contains(filter, v) {
			return true
		}
	}
	return false
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
