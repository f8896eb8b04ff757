package propertydata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/denisok6893-rgb/renovation-advisor/internal/config"
)

func newProvider(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewClient(config.PropertyDataConfig{
		BaseURL:    ts.URL,
		LookupPath: "property/lookup",
		APIKey:     "secret",
		Timeout:    "2s",
	})
}

func TestClient_Lookup(t *testing.T) {
	c := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/property/lookup" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("X-API-Key") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("address") != "12 Oak Lane" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"yearBuilt":1960}`))
	})

	raw, err := c.Lookup(context.Background(), "12 Oak Lane")
	require.NoError(t, err)
	assert.JSONEq(t, `{"yearBuilt":1960}`, string(raw))

	_, err = c.Lookup(context.Background(), "nowhere")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_ServerError(t *testing.T) {
	c := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := c.Lookup(context.Background(), "12 Oak Lane")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestNormalizeAddressAndKey(t *testing.T) {
	assert.Equal(t, "12 Oak Lane, Springfield", NormalizeAddress("  12  Oak Lane,\tSpringfield "))
	assert.Equal(t, CacheKey("12 oak lane"), CacheKey(" 12 OAK  Lane "))
	assert.NotEqual(t, CacheKey("12 Oak Lane"), CacheKey("14 Oak Lane"))
	assert.Regexp(t, `^property:[0-9a-f]+$`, CacheKey("12 Oak Lane"))
}

type countingLookup struct {
	calls atomic.Int32
	raw   []byte
	err   error
}

func (c *countingLookup) Lookup(context.Context, string) ([]byte, error) {
	c.calls.Add(1)
	return c.raw, c.err
}

func TestCachedLookup_HitsCacheOnSecondCall(t *testing.T) {
	next := &countingLookup{raw: []byte(`{"yearBuilt":1990}`)}
	cl := NewCachedLookup(next, NewMemoryCache(), time.Hour, zap.NewNop())

	for i := 0; i < 3; i++ {
		raw, err := cl.Lookup(context.Background(), "12 Oak Lane")
		require.NoError(t, err)
		assert.Equal(t, `{"yearBuilt":1990}`, string(raw))
	}
	assert.Equal(t, int32(1), next.calls.Load())
}

func TestCachedLookup_CachesNotFound(t *testing.T) {
	next := &countingLookup{err: ErrNotFound}
	cl := NewCachedLookup(next, NewMemoryCache(), time.Hour, nil)

	for i := 0; i < 2; i++ {
		_, err := cl.Lookup(context.Background(), "nowhere")
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, int32(1), next.calls.Load())
}

func TestCachedLookup_DoesNotCacheFailures(t *testing.T) {
	next := &countingLookup{err: errors.New("boom")}
	cache := NewMemoryCache()
	cl := NewCachedLookup(next, cache, time.Hour, nil)

	_, err := cl.Lookup(context.Background(), "12 Oak Lane")
	require.Error(t, err)
	assert.Zero(t, cache.Len())
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("cache down")
}

func (brokenCache) Set(context.Context, string, string, time.Duration) error {
	return errors.New("cache down")
}

func TestCachedLookup_CacheErrorsAreIgnored(t *testing.T) {
	next := &countingLookup{raw: []byte(`{}`)}
	cl := NewCachedLookup(next, brokenCache{}, time.Hour, zap.NewNop())

	raw, err := cl.Lookup(context.Background(), "12 Oak Lane")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(raw))
}

func TestMemoryCache_Expiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryCache()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, m.Set(ctx, "forever", "v", 0))

	v, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	now = now.Add(time.Minute)
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok)

	_, ok, _ = m.Get(ctx, "forever")
	assert.True(t, ok)
	assert.Equal(t, 1, m.Len())
}

func TestRedisCache_UnreachableServerReturnsError(t *testing.T) {
	r := NewRedisCache("127.0.0.1:1", "", 0)
	t.Cleanup(func() { _ = r.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, ok, err := r.Get(ctx, "k")
	assert.False(t, ok)
	assert.Error(t, err)
	assert.Error(t, r.Set(ctx, "k", "v", time.Minute))
}
