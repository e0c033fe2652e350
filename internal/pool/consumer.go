package pool

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Rosewood1985/ai-sports-edge-sub010/pkg/models"
	"github.com/Rosewood1985/ai-sports-edge-sub010/pkg/oddsmath"
)

const (
	// Batch size for reading messages
	batchSize = 100

	// Block duration when waiting for new messages
	blockDuration = 5 * time.Second
)

// CandidateMessage is the wire payload on the candidate streams. The win
// probability is optional: when the upstream model did not price the leg,
// the opposing side's decimal price lets the consumer derive a fair
// probability by devigging the two-way market.
type CandidateMessage struct {
	Leg           models.Leg `json:"leg"`
	OpposingPrice float64    `json:"opposing_price,omitempty"`
	PublishedAt   time.Time  `json:"published_at"`
}

// DecodeCandidate parses a candidate payload and resolves its win
// probability: the model's figure when present, a devigged fair
// probability from the two-way prices next, and the leg's raw implied
// probability as the last resort.
func DecodeCandidate(data []byte) (models.Leg, error) {
	var msg CandidateMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return models.Leg{}, fmt.Errorf("decode candidate: %w", err)
	}

	leg := msg.Leg
	if err := leg.Validate(); err != nil {
		return models.Leg{}, err
	}

	if leg.WinProbability > 0 {
		return leg, nil
	}

	if msg.OpposingPrice >= 1.0 {
		if fair, err := oddsmath.FairProbabilityFromPrices(leg.OddsDecimal, msg.OpposingPrice); err == nil {
			leg.WinProbability = fair
			return leg, nil
		}
	}

	implied, err := oddsmath.ImpliedProbability(leg.OddsDecimal)
	if err != nil {
		return models.Leg{}, err
	}
	leg.WinProbability = implied
	return leg, nil
}

// Consumer reads candidate legs from Redis streams into the cache.
type Consumer struct {
	redis *redis.Client
	cache *Cache
	cfg   ConsumerConfig
	log   zerolog.Logger
}

// ConsumerConfig names the streams and the consumer-group identity.
type ConsumerConfig struct {
	Streams       []string
	ConsumerGroup string
	ConsumerID    string
}

// NewConsumer creates a candidate consumer feeding the given cache.
func NewConsumer(redisClient *redis.Client, cache *Cache, cfg ConsumerConfig, log zerolog.Logger) *Consumer {
	return &Consumer{
		redis: redisClient,
		cache: cache,
		cfg:   cfg,
		log:   log,
	}
}

// Start creates the consumer groups and consumes every configured stream
// until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	for _, stream := range c.cfg.Streams {
		if err := c.createConsumerGroup(ctx, stream); err != nil {
			return fmt.Errorf("create consumer group for %s: %w", stream, err)
		}
	}

	c.log.Info().Strs("streams", c.cfg.Streams).Msg("candidate consumer started")

	for _, stream := range c.cfg.Streams {
		streamName := stream // Capture for goroutine
		go c.consumeStream(ctx, streamName)
	}

	<-ctx.Done()
	return nil
}

// createConsumerGroup creates the consumer group if it doesn't exist.
func (c *Consumer) createConsumerGroup(ctx context.Context, stream string) error {
	err := c.redis.XGroupCreateMkStream(ctx, stream, c.cfg.ConsumerGroup, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return err
	}
	return nil
}

// consumeStream reads batches from one stream until the context ends.
func (c *Consumer) consumeStream(ctx context.Context, stream string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			streams, err := c.redis.XReadGroup(ctx, &redis.XReadGroupArgs{
				Group:    c.cfg.ConsumerGroup,
				Consumer: c.cfg.ConsumerID,
				Streams:  []string{stream, ">"},
				Count:    batchSize,
				Block:    blockDuration,
			}).Result()

			if err != nil {
				if err == redis.Nil {
					// No new messages, not an error
					continue
				}
				if ctx.Err() != nil {
					return
				}
				c.log.Warn().Err(err).Str("stream", stream).Msg("stream read error")
				time.Sleep(1 * time.Second)
				continue
			}

			for _, s := range streams {
				for _, msg := range s.Messages {
					c.processMessage(ctx, s.Stream, msg)
				}
			}
		}
	}
}

// processMessage decodes one candidate and caches it. Malformed payloads
// are acknowledged and dropped so a poison message cannot wedge the group.
func (c *Consumer) processMessage(ctx context.Context, stream string, msg redis.XMessage) {
	data, ok := msg.Values["data"].(string)
	if !ok {
		c.log.Warn().Str("stream", stream).Str("id", msg.ID).Msg("message has no data field")
		c.ackMessage(ctx, stream, msg.ID)
		return
	}

	leg, err := DecodeCandidate([]byte(data))
	if err != nil {
		c.log.Warn().Err(err).Str("stream", stream).Str("id", msg.ID).Msg("dropping bad candidate")
		c.ackMessage(ctx, stream, msg.ID)
		return
	}

	c.cache.Put(leg)
	c.ackMessage(ctx, stream, msg.ID)
}

// ackMessage acknowledges a message in the stream.
func (c *Consumer) ackMessage(ctx context.Context, stream, messageID string) {
	if err := c.redis.XAck(ctx, stream, c.cfg.ConsumerGroup, messageID).Err(); err != nil {
		c.log.Warn().Err(err).Str("stream", stream).Str("id", messageID).Msg("failed to ack message")
	}
}
