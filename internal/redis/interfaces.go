package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the interface for distributed locking around
// order acceptance.
type LockStoreInterface interface {
	AcquireOrderLock(ctx context.Context, orderID string, ttl time.Duration) (bool, error)
	ReleaseOrderLock(ctx context.Context, orderID string) error
}

// DriverCacheInterface defines the interface for cached driver profiles.
type DriverCacheInterface interface {
	GetDriver(ctx context.Context, userID string) (*CachedDriver, error)
	SetDriver(ctx context.Context, driver *CachedDriver) error
	InvalidateDriver(ctx context.Context, userID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface   = (*LockStore)(nil)
	_ DriverCacheInterface = (*DriverCache)(nil)
)
