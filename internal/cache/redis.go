package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/trunghai04/webmoi-sub001/internal/service"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const statsKeyPrefix = "orders:stats:"

type RedisClient struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisClient(addr, password string, db int, ttl time.Duration, log *zap.Logger) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Redis connected successfully", zap.String("addr", addr), zap.Duration("ttl", ttl))

	return &RedisClient{
		client: rdb,
		ttl:    ttl,
		log:    log,
	}, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func statsKey(scope string) string { return statsKeyPrefix + scope }

// Кэш статистики заказов

func (r *RedisClient) GetStats(ctx context.Context, scope string) (*service.Stats, bool, error) {
	raw, err := r.client.Get(ctx, statsKey(scope)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var st service.Stats
	if err := json.Unmarshal(raw, &st); err != nil {
		// битую запись просто выкидываем
		r.log.Warn("Повреждённая запись кэша статистики", zap.String("scope", scope), zap.Error(err))
		_ = r.client.Del(ctx, statsKey(scope)).Err()
		return nil, false, nil
	}
	return &st, true, nil
}

func (r *RedisClient) SetStats(ctx context.Context, scope string, st *service.Stats) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, statsKey(scope), raw, r.ttl).Err()
}

func (r *RedisClient) InvalidateStats(ctx context.Context, scopes ...string) error {
	if len(scopes) == 0 {
		return nil
	}
	keys := make([]string, len(scopes))
	for i, s := range scopes {
		keys[i] = statsKey(s)
	}
	return r.client.Del(ctx, keys...).Err()
}
