package viewcache

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
)

// View paths whose cached responses or live feeds depend on studio data
const (
	PathCourses      = "/courses"
	PathProfile      = "/profile"
	PathAdminScanner = "/admin/scanner"
	PathAdminUsers   = "/admin/users"
	PathAdminReviews = "/admin/verifications"
)

// Notifier is told about every invalidated path, after the cache entry is gone
type Notifier interface {
	NotifyInvalidated(path string)
}

// Cache is the view cache with path invalidation
type Cache struct {
	store     Store
	notifiers []Notifier
	logger    zerolog.Logger
}

// New creates a Cache over store
func New(store Store, logger zerolog.Logger, notifiers ...Notifier) *Cache {
	return &Cache{
		store:     store,
		notifiers: notifiers,
		logger:    logger.With().Str("component", "viewcache").Logger(),
	}
}

// Invalidate marks each path stale. Failures are logged and never returned,
// so a broken cache cannot turn a completed action into a failed one.
func (c *Cache) Invalidate(ctx context.Context, paths ...string) {
	// the request may already be finished; the drop must still happen
	ctx = context.WithoutCancel(ctx)
	for _, path := range paths {
		if err := c.store.Drop(ctx, path); err != nil {
			c.logger.Warn().Err(err).Str("path", path).Msg("Failed to drop cached view")
		}
		for _, n := range c.notifiers {
			n.NotifyInvalidated(path)
		}
		c.logger.Debug().Str("path", path).Msg("View invalidated")
	}
}

// Fetch returns the cached value of path/key or loads, stores and returns it.
// Cache errors fall through to load; load errors are returned and nothing is stored.
// A value loaded while path was invalidated is returned but not stored.
func Fetch[T any](ctx context.Context, c *Cache, path, key string, load func(context.Context) (T, error)) (T, error) {
	raw, ok, err := c.store.Get(ctx, path, key)
	if err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("Failed to read cached view")
	}
	if ok {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		c.logger.Warn().Str("path", path).Str("key", key).Msg("Discarding undecodable cached view")
	}

	generation, genErr := c.store.Generation(ctx, path)
	if genErr != nil {
		c.logger.Warn().Err(genErr).Str("path", path).Msg("Failed to read view generation")
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	if genErr != nil {
		return value, nil
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return value, nil
	}
	stored, err := c.store.Set(ctx, path, key, encoded, generation)
	switch {
	case err != nil:
		c.logger.Warn().Err(err).Str("path", path).Msg("Failed to store view")
	case !stored:
		c.logger.Debug().Str("path", path).Str("key", key).Msg("View invalidated during load, not stored")
	}
	return value, nil
}
