package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/eko/gocache/lib/v4/codec"
	"github.com/eko/gocache/lib/v4/store"
	"github.com/homedeck/homedeck/internal/config"
	"github.com/homedeck/homedeck/internal/database"
)

// UserAppsCachePrefix is the key prefix of cached per-user app lists.
const UserAppsCachePrefix = "user-apps-"

// AppCache caches the ordered app list of each user.
// Errors are logged and reported as misses so callers fall back to the database.
//
// Every invalidation advances a sequence number. A list read from the database
// is only stored when no invalidation happened since the caller took its Stamp,
// so a slow reader cannot put back a list that a replacement already superseded.
// The epoch is part of every key: InvalidateAll moves to a new key space.
type AppCache struct {
	userApps *PrefixedCache[[]database.UserAppView]
	ttl      time.Duration

	mu     sync.Mutex
	nonce  int64
	seq    uint64
	epoch  uint64
	stamps map[uint]uint64
}

// NewAppCache creates an AppCache backed by the configured store.
func NewAppCache(cfg *config.CacheConfig) *AppCache {
	return &AppCache{
		userApps: NewPrefixedCache[[]database.UserAppView](
			newCacheInstanceByType(cfg),
			cfg.Type,
			UserAppsCachePrefix,
		),
		ttl: cfg.TTL,
		// lists written by an earlier process are never read back
		nonce:  time.Now().UnixNano(),
		stamps: make(map[uint]uint64),
	}
}

func (a *AppCache) keyLocked(userID uint) string {
	return fmt.Sprintf("%x-%d-%d", a.nonce, a.epoch, userID)
}

func (a *AppCache) stampLocked(userID uint) uint64 {
	if s, ok := a.stamps[userID]; ok && s > a.epoch {
		return s
	}
	return a.epoch
}

// Stamp returns the current invalidation stamp of the user's list.
// Take it before reading the list from the database and hand it to SetUserApps.
func (a *AppCache) Stamp(userID uint) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stampLocked(userID)
}

// GetUserApps returns the cached list of the user, if present.
func (a *AppCache) GetUserApps(ctx context.Context, userID uint) ([]database.UserAppView, bool) {
	a.mu.Lock()
	key := a.keyLocked(userID)
	a.mu.Unlock()

	views, err := a.userApps.Get(ctx, key)
	if err != nil {
		log.Debug("user apps cache miss", "user_id", userID, "error", err)
		return nil, false
	}
	return views, true
}

// SetUserApps caches the list of the user unless it was invalidated after stamp was taken.
func (a *AppCache) SetUserApps(ctx context.Context, userID uint, stamp uint64, views []database.UserAppView) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stampLocked(userID) != stamp {
		log.Debug("user apps changed during read, not caching", "user_id", userID)
		return false
	}
	if err := a.userApps.Set(ctx, a.keyLocked(userID), views, store.WithExpiration(a.ttl)); err != nil {
		log.Warn("failed to cache user apps", "user_id", userID, "error", err)
		return false
	}
	return true
}

// StoreReplacement invalidates the user's list and caches the committed views.
// When another invalidation happened after stamp was taken the order of the
// commits is unknown and the entry is dropped instead.
func (a *AppCache) StoreReplacement(ctx context.Context, userID uint, stamp uint64, views []database.UserAppView) {
	a.mu.Lock()
	defer a.mu.Unlock()

	current := a.stampLocked(userID)
	a.seq++
	a.stamps[userID] = a.seq
	key := a.keyLocked(userID)

	if current == stamp {
		err := a.userApps.Set(ctx, key, views, store.WithExpiration(a.ttl))
		if err == nil {
			return
		}
		log.Warn("failed to cache replaced user apps", "user_id", userID, "error", err)
	}
	if err := a.userApps.Delete(ctx, key); err != nil {
		log.Warn("failed to invalidate user apps", "user_id", userID, "error", err)
	}
}

// InvalidateAll drops every cached list of this process. Entries of the old
// key space expire with their TTL.
func (a *AppCache) InvalidateAll() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.seq++
	a.epoch = a.seq
	a.stamps = make(map[uint]uint64)
	log.Debug("invalidated all user app lists", "epoch", a.epoch)
}

// ClearAll invalidates every list and empties the backing store.
func (a *AppCache) ClearAll(ctx context.Context) error {
	a.InvalidateAll()
	if err := a.userApps.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// Stats is a snapshot of cache statistics.
type Stats struct {
	*codec.Stats
	CacheName string           `json:"cacheName"`
	CacheType config.CacheType `json:"cacheType"`
}

// GetStats returns the statistics of the user apps cache.
func (a *AppCache) GetStats() *Stats {
	return &Stats{
		Stats:     a.userApps.GetStats(),
		CacheName: "user-apps",
		CacheType: a.userApps.GetType(),
	}
}
