// Package rediscache caches profile display names in redis.
package rediscache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trezcool/learnhub/core"
	"github.com/trezcool/learnhub/core/profile"
	"github.com/trezcool/learnhub/services/metrics"
)

const keyPrefix = "learnhub:profile:name:"

// ProfileStore is a read-through cache in front of another profile.Store.
// Redis failures are logged and fall through to the wrapped store.
type ProfileStore struct {
	client *redis.Client
	next   profile.Store
	ttl    time.Duration
	logger core.Logger
}

var _ profile.Store = (*ProfileStore)(nil)

// NewClient connects to the redis server configured in conf.
func NewClient(conf core.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
}

func NewProfileStore(client *redis.Client, next profile.Store, ttl time.Duration, logger core.Logger) *ProfileStore {
	return &ProfileStore{client: client, next: next, ttl: ttl, logger: logger}
}

func (s *ProfileStore) DisplayName(ctx context.Context, userID string) (string, error) {
	key := keyPrefix + userID

	name, err := s.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		metrics.ProfileLookups.WithLabelValues(metrics.LookupHit).Inc()
		return name, nil
	case errors.Is(err, redis.Nil):
		metrics.ProfileLookups.WithLabelValues(metrics.LookupMiss).Inc()
	default:
		metrics.ProfileLookups.WithLabelValues(metrics.LookupError).Inc()
		s.logger.Warn("reading display name cache", err, map[string]interface{}{"user_id": userID})
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	start := time.Now()
	name, err = s.next.DisplayName(ctx, userID)
	metrics.ProfileLookupDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", err
	}

	if err := s.client.Set(ctx, key, name, s.ttl).Err(); err != nil {
		s.logger.Warn("writing display name cache", err, map[string]interface{}{"user_id": userID})
	}
	return name, nil
}

// Forget drops the cached display name of userID.
func (s *ProfileStore) Forget(ctx context.Context, userID string) error {
	return s.client.Del(ctx, keyPrefix+userID).Err()
}
