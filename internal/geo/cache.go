package geo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"community-platform-backend/internal/config"
	"community-platform-backend/internal/logger"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "geocode:"

// NewRedisClient connects and pings. Returns nil when no address is configured.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// kvStore is the subset of redis the cache needs
type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type redisStore struct {
	client redis.Cmdable
}

func (s redisStore) Get(ctx context.Context, key string) (string, error) {
	return s.client.Get(ctx, key).Result()
}

func (s redisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// CachedGeocoder remembers results, including unknown addresses. Cache
// failures are logged and never fail a lookup.
type CachedGeocoder struct {
	next  Geocoder
	store kvStore
	ttl   time.Duration
}

func NewCachedGeocoder(next Geocoder, client redis.Cmdable, ttl time.Duration) *CachedGeocoder {
	return &CachedGeocoder{next: next, store: redisStore{client: client}, ttl: ttl}
}

func (c *CachedGeocoder) Geocode(ctx context.Context, addr Address) (*Coordinates, error) {
	key := cacheKeyPrefix + addr.Key()

	cached, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var coords *Coordinates
		if err := json.Unmarshal([]byte(cached), &coords); err == nil {
			return coords, nil
		}
	case !errors.Is(err, redis.Nil):
		logger.WarnContext(ctx, "Geocode cache read failed", "error", err)
	}

	coords, err := c.next.Geocode(ctx, addr)
	if err != nil {
		return nil, err
	}

	data, _ := json.Marshal(coords)
	if err := c.store.Set(ctx, key, string(data), c.ttl); err != nil {
		logger.WarnContext(ctx, "Geocode cache write failed", "error", err)
	}
	return coords, nil
}

// NewGeocoder wires the configured geocoder, optionally behind the cache
func NewGeocoder(cfg config.GeocodingConfig, client *redis.Client) Geocoder {
	if !cfg.Enabled {
		return Disabled{}
	}
	var g Geocoder = NewNominatimClient(cfg.BaseURL, cfg.UserAgent, time.Duration(cfg.TimeoutSeconds)*time.Second)
	if client != nil {
		g = NewCachedGeocoder(g, client, time.Duration(cfg.CacheTTLHours)*time.Hour)
	}
	return g
}
