package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/slot-swap-service/internal/config"
)

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// RedisSnapshot persists the store snapshot under a single key.
type RedisSnapshot struct {
	rdb *Redis
	key string
}

// NewRedisSnapshot returns a snapshotter storing the blob at key.
func NewRedisSnapshot(rdb *Redis, key string) *RedisSnapshot {
	return &RedisSnapshot{rdb: rdb, key: key}
}

// Load fetches the snapshot blob. A missing key means no snapshot yet.
func (s *RedisSnapshot) Load(ctx context.Context) ([]byte, error) {
	data, err := s.rdb.Client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Save overwrites the snapshot blob. Snapshots never expire.
func (s *RedisSnapshot) Save(ctx context.Context, data []byte) error {
	return s.rdb.Client.Set(ctx, s.key, data, 0).Err()
}

// Ping verifies Redis connectivity.
func (s *RedisSnapshot) Ping(ctx context.Context) error {
	if s.rdb == nil || s.rdb.Client == nil {
		return errors.New("redis client not configured")
	}
	return s.rdb.Client.Ping(ctx).Err()
}
