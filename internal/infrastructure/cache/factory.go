package cache

import (
	"context"
	"io"
	"time"

	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store is the key/value surface shared by both backends
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	io.Closer
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)

// NewStore returns a Redis store when enabled and reachable, otherwise an
// in-memory one. An unreachable Redis is logged and does not stop startup.
func NewStore(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) Store {
	if !cfg.Enabled {
		logger.Info("Redis disabled, using in-memory store")
		return NewMemoryStore(time.Minute)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	store := NewRedisStore(client, "backoffice:")

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory store",
			zap.String("addr", cfg.Addr()),
			zap.Error(err),
		)
		_ = client.Close()
		return NewMemoryStore(time.Minute)
	}

	logger.Info("Using Redis store", zap.String("addr", cfg.Addr()))
	return store
}
