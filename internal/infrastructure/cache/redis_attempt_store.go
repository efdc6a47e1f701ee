package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tableside/backend/internal/domain/shared"
)

// RedisAttemptStore implements AttemptStore on Redis, for venues running
// more than one engine instance behind one counter.
type RedisAttemptStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisAttemptStore creates a new Redis-based attempt store and verifies
// the connection.
func NewRedisAttemptStore(cfg RedisConfig) (*RedisAttemptStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisAttemptStore{
		client:    client,
		keyPrefix: "order:attempt:",
	}, nil
}

// NewRedisAttemptStoreWithClient creates a store around an existing client
func NewRedisAttemptStoreWithClient(client *redis.Client, keyPrefix string) *RedisAttemptStore {
	if keyPrefix == "" {
		keyPrefix = "order:attempt:"
	}
	return &RedisAttemptStore{client: client, keyPrefix: keyPrefix}
}

// MarkProcessed marks an attempt as processed with a TTL, atomically via SETNX
func (s *RedisAttemptStore) MarkProcessed(ctx context.Context, attemptID string, ttl time.Duration) (bool, error) {
	result, err := s.client.SetNX(ctx, s.keyPrefix+attemptID, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark attempt as processed: %w", err)
	}
	return result, nil
}

// IsProcessed checks if an attempt has already been processed
func (s *RedisAttemptStore) IsProcessed(ctx context.Context, attemptID string) (bool, error) {
	exists, err := s.client.Exists(ctx, s.keyPrefix+attemptID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check attempt: %w", err)
	}
	return exists > 0, nil
}

// Close closes the Redis client
func (s *RedisAttemptStore) Close() error {
	return s.client.Close()
}

var _ shared.AttemptStore = (*RedisAttemptStore)(nil)
