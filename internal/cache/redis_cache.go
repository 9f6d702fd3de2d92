package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/lyne-commerce/lyne-platform/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects the shared, long-lived client every in-flight
// request reuses.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {

	opt, err := redis.ParseURL(cfg.RedisConnect.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Test the connection
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

type redisCache struct {
	client *redis.Client
	cfg    *config.CacheConfig
}

func NewRedisCache(client *redis.Client, cfg *config.CacheConfig) Cache {
	return &redisCache{
		client: client,
		cfg:    cfg,
	}
}

func (r *redisCache) Get(ctx context.Context, key string, value any) (bool, error) {

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {

		if err == redis.Nil {
			return false, nil
		}

		return false, fmt.Errorf("failed to get key %s from redis: %w", key, err)

	}

	if err := DecodeInto(data, value); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache data for key %s: %w", key, err)
	}

	return true, nil
}

func (r *redisCache) Set(ctx context.Context, key, prefix string, value any, ttl time.Duration) error {

	data, err := Encode(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	if ttl <= 0 {
		ttl = r.cfg.DefaultTTL
	}

	// The entry and its membership record move together so GetAll never
	// learns about a key it cannot resolve on a healthy backend.
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, ttl)
	pipe.SAdd(ctx, CollectionKey(prefix), key)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set key %s in redis: %w", key, err)
	}

	return nil
}

func (r *redisCache) Delete(ctx context.Context, key, prefix string) error {

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.SRem(ctx, CollectionKey(prefix), key)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete key %s from redis: %w", key, err)
	}

	return nil
}

func (r *redisCache) GetAll(ctx context.Context, prefix string) ([][]byte, error) {

	setKey := CollectionKey(prefix)

	keys, err := r.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read membership set %s from redis: %w", setKey, err)
	}

	if len(keys) == 0 {
		return nil, nil
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entries for set %s from redis: %w", setKey, err)
	}

	payloads := make([][]byte, 0, len(values))

	var stale []any

	for i, value := range values {
		data, ok := value.(string)
		if !ok || data == "" {
			// Entry expired under the membership set; prune the member.
			stale = append(stale, keys[i])

			continue
		}

		payloads = append(payloads, []byte(data))
	}

	if len(stale) > 0 {
		// Best effort; a failed prune only leaves members the next read
		// will prune again.
		r.client.SRem(ctx, setKey, stale...)
	}

	return payloads, nil
}

func (r *redisCache) Close() error {
	return nil
}
