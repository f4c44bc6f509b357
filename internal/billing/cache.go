package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const bumpChannel = "billing.bump"

// Cache wraps Redis based summary caching with per-project versioning.
// Mutations bump the project's version, which makes every cached summary for
// the old version unreachable; stale entries age out through the TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func versionKey(businessID, projectID int64) string {
	return fmt.Sprintf("lune:billing:version:%d:%d", businessID, projectID)
}

// Version returns the current summary version of a project, initialising
// when missing.
func (c *Cache) Version(ctx context.Context, businessID, projectID int64) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	key := versionKey(businessID, projectID)
	ver, err := c.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.Set(ctx, key, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

func (c *Cache) summaryKey(ctx context.Context, businessID, projectID int64) (string, error) {
	ver, err := c.Version(ctx, businessID, projectID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("lune:billing:summary:%d:%d:%d", businessID, projectID, ver), nil
}

// FetchJSON loads the cached summary or populates it using the loader.
func (c *Cache) FetchJSON(ctx context.Context, businessID, projectID int64, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("billing: cache loader required")
	}
	if c == nil || c.client == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}
	key, err := c.summaryKey(ctx, businessID, projectID)
	if err != nil {
		return err
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) {
		return err
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalidates a project's cached summary by incrementing its version
// and publishing the change.
func (c *Cache) Bump(ctx context.Context, businessID, projectID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	ver, err := c.client.Incr(ctx, versionKey(businessID, projectID)).Result()
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, bumpChannel, strconv.FormatInt(ver, 10)).Err()
}
