package propertydata

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// notFoundMarker caches negative lookups so a missing address is not
// re-queried on every wizard step.
const notFoundMarker = "\x00not-found"

// CachedLookup serves lookups from a Cache before falling back to next.
// Cache errors never fail a lookup; they are logged and skipped.
type CachedLookup struct {
	next   Lookuper
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedLookup(next Lookuper, cache Cache, ttl time.Duration, logger *zap.Logger) *CachedLookup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedLookup{next: next, cache: cache, ttl: ttl, logger: logger}
}

// CacheKey derives the cache key for an address. Case and spacing do not
// change the key.
func CacheKey(address string) string {
	norm := strings.ToLower(NormalizeAddress(address))
	return "property:" + strconv.FormatUint(xxhash.Sum64String(norm), 16)
}

func (c *CachedLookup) Lookup(ctx context.Context, address string) ([]byte, error) {
	key := CacheKey(address)

	if val, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("property cache get failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		if val == notFoundMarker {
			return nil, ErrNotFound
		}
		return []byte(val), nil
	}

	raw, err := c.next.Lookup(ctx, address)
	switch {
	case errors.Is(err, ErrNotFound):
		c.store(ctx, key, notFoundMarker)
		return nil, err
	case err != nil:
		return nil, err
	}

	c.store(ctx, key, string(raw))
	return raw, nil
}

func (c *CachedLookup) store(ctx context.Context, key, val string) {
	if err := c.cache.Set(ctx, key, val, c.ttl); err != nil {
		c.logger.Warn("property cache set failed", zap.String("key", key), zap.Error(err))
	}
}
