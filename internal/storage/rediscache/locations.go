package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quickbites/dispatch/internal/domain/model"
)

const locationKeyPrefix = "driver:location:"

// LocationCache keeps drivers' last reported locations in Redis with a TTL so
// the ~10s tracking polls read hot data without touching Postgres. Entries
// expire on their own when a driver stops reporting.
type LocationCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLocationCache constructs the cache around an existing Redis client.
func NewLocationCache(client *redis.Client, ttl time.Duration) *LocationCache {
	return &LocationCache{client: client, ttl: ttl}
}

// Set stores the driver's location, refreshing the TTL.
func (c *LocationCache) Set(ctx context.Context, driverID string, loc model.Location) error {
	body, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, locationKeyPrefix+driverID, body, c.ttl).Err()
}

// Get returns the cached location, or (nil, nil) on a miss.
func (c *LocationCache) Get(ctx context.Context, driverID string) (*model.Location, error) {
	body, err := c.client.Get(ctx, locationKeyPrefix+driverID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var loc model.Location
	if err := json.Unmarshal(body, &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

// Delete drops the cached location, used on driver deactivation.
func (c *LocationCache) Delete(ctx context.Context, driverID string) error {
	return c.client.Del(ctx, locationKeyPrefix+driverID).Err()
}
