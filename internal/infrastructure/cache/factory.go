package cache

import (
	"github.com/tableside/backend/internal/domain/shared"
	"github.com/tableside/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewAttemptStore creates the attempt store selected by configuration.
// A Redis backend that cannot be reached falls back to the in-memory
// store; losing attempt dedup across restarts is preferable to refusing
// submissions.
func NewAttemptStore(cfg *config.Config, logger *zap.Logger) shared.AttemptStore {
	if cfg.Attempt.Backend != "redis" {
		return NewInMemoryAttemptStore()
	}

	store, err := NewRedisAttemptStore(RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Warn("redis attempt store unavailable, using in-memory store",
			zap.String("addr", cfg.RedisAddr()),
			zap.Error(err))
		return NewInMemoryAttemptStore()
	}
	logger.Info("using redis attempt store", zap.String("addr", cfg.RedisAddr()))
	return store
}
