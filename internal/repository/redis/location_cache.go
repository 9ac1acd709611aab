package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/njprem/Joestate_APP_BackEnd/internal/repository/ports"
)

const locationKeyPrefix = "joestate:locations:"

func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", addr, err)
	}
	return rdb, nil
}

// LocationCache keeps location suggestion results for a short TTL. Entries are
// never invalidated on write, so a new location shows up once the TTL lapses.
type LocationCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLocationCache(client *redis.Client, ttl time.Duration) *LocationCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &LocationCache{client: client, ttl: ttl}
}

func (c *LocationCache) Get(ctx context.Context, query string) ([]string, bool, error) {
	raw, err := c.client.Get(ctx, locationKey(query)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var locations []string
	if err := json.Unmarshal([]byte(raw), &locations); err != nil {
		return nil, false, err
	}
	return locations, true, nil
}

func (c *LocationCache) Set(ctx context.Context, query string, locations []string) error {
	payload, err := json.Marshal(locations)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, locationKey(query), payload, c.ttl).Err()
}

func locationKey(query string) string {
	return locationKeyPrefix + strings.ToLower(strings.TrimSpace(query))
}

var _ ports.LocationCache = (*LocationCache)(nil)
