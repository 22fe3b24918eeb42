package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yair/festival-atlas/pkg/domain"
)

const redisDatasetKey = "festival-atlas:dataset"

// RedisStore keeps the dataset as a JSON blob with a TTL, letting several
// replicas share one snapshot and forcing a rebuild when it expires.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisConfig for the shared snapshot store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// TTL bounds snapshot staleness. Zero means no expiry.
	TTL time.Duration
}

func NewRedisStore(ctx context.Context, config RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client, ttl: config.TTL}, nil
}

func (s *RedisStore) Load(ctx context.Context) (*domain.Dataset, error) {
	payload, err := s.client.Get(ctx, redisDatasetKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrDatasetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	var dataset domain.Dataset
	if err := json.Unmarshal(payload, &dataset); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}

	return &dataset, nil
}

func (s *RedisStore) Save(ctx context.Context, dataset *domain.Dataset) error {
	payload, err := json.Marshal(dataset)
	if err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}

	if err := s.client.Set(ctx, redisDatasetKey, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save dataset: %w", err)
	}

	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
