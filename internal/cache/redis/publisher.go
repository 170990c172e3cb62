package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"arbScope/internal/model"
)

// streamMaxLen caps the opportunity stream via XADD MAXLEN ~.
const streamMaxLen int64 = 10000

// PublisherConfig names the Redis keys a Publisher writes.
type PublisherConfig struct {
	// Channel receives every sealed cycle as JSON.
	Channel string
	// LatestKey holds the most recent cycle, expiring after LatestTTL.
	LatestKey string
	LatestTTL time.Duration
	// Stream, when set, receives one entry per qualifying opportunity.
	Stream string
}

// Publisher pushes sealed cycles to Redis pub/sub, a latest-cycle key and an
// optional opportunity stream.
type Publisher struct {
	rdb *redis.Client
	cfg PublisherConfig
}

func NewPublisher(c *Client, cfg PublisherConfig) *Publisher {
	return &Publisher{rdb: c.Underlying(), cfg: cfg}
}

func (p *Publisher) Name() string {
	return "redis"
}

func (p *Publisher) Publish(ctx context.Context, cycle model.ScanCycle) error {
	payload, err := json.Marshal(cycle)
	if err != nil {
		return fmt.Errorf("redis: marshal cycle: %w", err)
	}

	pipe := p.rdb.Pipeline()
	if p.cfg.Channel != "" {
		pipe.Publish(ctx, p.cfg.Channel, payload)
	}
	if p.cfg.LatestKey != "" {
		pipe.Set(ctx, p.cfg.LatestKey, payload, p.cfg.LatestTTL)
	}
	if p.cfg.Stream != "" {
		for _, plan := range cycle.Opportunities {
			entry, err := json.Marshal(plan)
			if err != nil {
				return fmt.Errorf("redis: marshal plan %s: %w", plan.ID, err)
			}
			pipe.XAdd(ctx, &redis.XAddArgs{
				Stream: p.cfg.Stream,
				MaxLen: streamMaxLen,
				Approx: true,
				Values: map[string]interface{}{
					"cycle_id": cycle.ID,
					"payload":  entry,
				},
			})
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: publish cycle %s: %w", cycle.ID, err)
	}
	return nil
}

// Latest returns the most recently published cycle. ok is false when the key
// is missing or expired.
func (p *Publisher) Latest(ctx context.Context) (model.ScanCycle, bool, error) {
	data, err := p.rdb.Get(ctx, p.cfg.LatestKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return model.ScanCycle{}, false, nil
		}
		return model.ScanCycle{}, false, fmt.Errorf("redis: get latest: %w", err)
	}
	var cycle model.ScanCycle
	if err := json.Unmarshal(data, &cycle); err != nil {
		return model.ScanCycle{}, false, fmt.Errorf("redis: parse latest: %w", err)
	}
	return cycle, true, nil
}
