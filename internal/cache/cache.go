// FilePath: internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/farmsense/farmhub/internal/config"
	"github.com/farmsense/farmhub/internal/models"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

// StatusCache keeps the latest device snapshot in Redis so the
// dashboard status endpoint does not hit TimescaleDB on every poll.
// Writes happen best-effort after ingestion; a cache miss falls back
// to the time-series store.
type StatusCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(cfg config.RedisConfig) *StatusCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &StatusCache{rdb: rdb, ttl: cfg.StatusTTL}
}

func statusKey(deviceID string) string {
	return "device:status:" + deviceID
}

func (c *StatusCache) SetDeviceStatus(ctx context.Context, snapshot *models.DeviceSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, statusKey(snapshot.DeviceID), payload, c.ttl).Err()
}

// GetDeviceStatus returns nil without error on a cache miss.
func (c *StatusCache) GetDeviceStatus(ctx context.Context, deviceID string) (*models.DeviceSnapshot, error) {
	payload, err := c.rdb.Get(ctx, statusKey(deviceID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	snapshot := &models.DeviceSnapshot{}
	if err := json.Unmarshal(payload, snapshot); err != nil {
		// Treat a corrupt entry as a miss; the next ingest rewrites it.
		nuts.L.Warnf("[StatusCache] Dropping corrupt entry for device %s: %v", deviceID, err)
		return nil, nil
	}
	return snapshot, nil
}

func (c *StatusCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *StatusCache) Close() error {
	return c.rdb.Close()
}
