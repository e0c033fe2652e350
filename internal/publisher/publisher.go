// Package publisher emits finished parlay recommendations onto a Redis
// stream for downstream consumers (notification bots, dashboards).
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/recommend"
)

// maxStreamLen caps the stream so unconsumed recommendations age out
// instead of growing Redis without bound.
const maxStreamLen = 10000

// StreamPublisher publishes recommendations to a Redis stream.
type StreamPublisher struct {
	redis  *redis.Client
	stream string
}

// NewStreamPublisher creates a publisher bound to one stream key.
func NewStreamPublisher(redisClient *redis.Client, stream string) *StreamPublisher {
	return &StreamPublisher{
		redis:  redisClient,
		stream: stream,
	}
}

// Publish appends one recommendation to the stream.
func (p *StreamPublisher) Publish(ctx context.Context, rec recommend.Recommendation) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("error marshaling recommendation: %w", err)
	}

	_, err = p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: maxStreamLen,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if err != nil {
		return fmt.Errorf("error publishing to stream %s: %w", p.stream, err)
	}

	return nil
}

// PublishBatch appends multiple recommendations in a single pipeline.
func (p *StreamPublisher) PublishBatch(ctx context.Context, recs []recommend.Recommendation) error {
	if len(recs) == 0 {
		return nil
	}

	pipe := p.redis.Pipeline()
	for _, rec := range recs {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("error marshaling recommendation %s: %w", rec.RecommendationID, err)
		}
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: p.stream,
			MaxLen: maxStreamLen,
			Approx: true,
			Values: map[string]interface{}{
				"data": string(data),
			},
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("error executing publish pipeline: %w", err)
	}

	return nil
}
