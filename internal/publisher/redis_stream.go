package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// DatasetStream receives one entry per completed derivation.
const DatasetStream = "assisted.dataset.derived"

// DatasetEvent describes a completed derivation.
type DatasetEvent struct {
	RunID     string    `json:"run_id"`
	Dataset   string    `json:"dataset"`
	Players   int       `json:"players"`
	Seasons   int       `json:"seasons_loaded"`
	Gaps      int       `json:"gaps"`
	DerivedAt time.Time `json:"derived_at"`
}

// RedisPublisher publishes events to Redis streams
type RedisPublisher struct {
	client *redis.Client
	maxLen int64
}

// NewRedisPublisher creates a new Redis stream publisher
func NewRedisPublisher(redisURL string) (*RedisPublisher, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return NewRedisPublisherFromClient(client), nil
}

// NewRedisPublisherFromClient creates a publisher from an existing client
func NewRedisPublisherFromClient(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client, maxLen: 1000}
}

// Close closes the Redis connection
func (rp *RedisPublisher) Close() error {
	return rp.client.Close()
}

// PublishDatasetDerived appends a derivation event to the dataset stream
func (rp *RedisPublisher) PublishDatasetDerived(ctx context.Context, event DatasetEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return rp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: DatasetStream,
		MaxLen: rp.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data":      string(data),
			"dataset":   event.Dataset,
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}
