package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// DriverCacheTTL bounds staleness of cached driver profiles; status can
// change on every accept/complete.
const DriverCacheTTL = 30 * time.Second

const driverCachePrefix = "cache:driver:"

// CachedDriver is the cached join of a driver's user record and vehicle
// profile, used to enrich passenger order views without hitting Postgres.
type CachedDriver struct {
	UserID       string  `json:"user_id"`
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	Rating       float64 `json:"rating"`
	CarBrand     string  `json:"car_brand"`
	CarModel     string  `json:"car_model"`
	CarColor     string  `json:"car_color"`
	LicensePlate string  `json:"license_plate"`
	Status       string  `json:"status"`
}

// DriverCache handles driver profile caching in Redis.
type DriverCache struct {
	client *redis.Client
}

// NewDriverCache creates a new DriverCache.
func NewDriverCache(client *redis.Client) *DriverCache {
	return &DriverCache{client: client}
}

// GetDriver retrieves a driver from cache. A cache miss returns (nil, nil).
func (s *DriverCache) GetDriver(ctx context.Context, userID string) (*CachedDriver, error) {
	key := driverCachePrefix + userID
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var driver CachedDriver
	if err := json.Unmarshal(data, &driver); err != nil {
		return nil, err
	}
	return &driver, nil
}

// SetDriver stores a driver in cache.
func (s *DriverCache) SetDriver(ctx context.Context, driver *CachedDriver) error {
	key := driverCachePrefix + driver.UserID
	data, err := json.Marshal(driver)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, DriverCacheTTL).Err()
}

// InvalidateDriver removes a driver from cache.
func (s *DriverCache) InvalidateDriver(ctx context.Context, userID string) error {
	key := driverCachePrefix + userID
	return s.client.Del(ctx, key).Err()
}
