// Package buildcache caches finished bitstream text in Redis, keyed by
// the content hash of everything that determines the run's output:
// chipdb, package, seed, pipeline options, and the input netlist bytes.
// A hit lets a repeat invocation (or a --route-only rerun over the same
// already-placed netlist) skip straight to the cached bitstream, which
// is sound because the pipeline is deterministic given a seed.
package buildcache

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"golang.org/x/crypto/blake2b"
)

// Key identifies one cacheable run.
type Key struct {
	Chipdb     string
	Package    string
	Seed       int64
	RouteOnly  bool
	NoPromote  bool
	NetlistSrc []byte
}

// Hash returns the blake2b-256 content hash of k, hex-encoded, used as
// the Redis key.
func (k Key) Hash() string {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic("buildcache: blake2b.New256: " + err.Error())
	}
	fmt.Fprintf(h, "%s|%s|%d|%t|%t|", k.Chipdb, k.Package, k.Seed, k.RouteOnly, k.NoPromote)
	h.Write(k.NetlistSrc)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Cache is a Redis-backed store of finished bitstream text, addressed by
// Key.Hash(). A nil *Cache (as returned when no address is configured)
// is a valid no-op cache: every Get misses, every Put is a no-op.
type Cache struct {
	client *redis.Client
}

// Open connects to a Redis instance at addr. Passing an empty addr
// returns a nil *Cache, the no-op cache used when ICEPNR_CACHE_ADDR is
// unset.
func Open(addr string) *Cache {
	if addr == "" {
		return nil
	}
	return &Cache{client: redis.NewClient(&redis.Options{Addr: addr})}
}

// Close releases the underlying Redis connection. Safe to call on a nil
// *Cache.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

const keyPrefix = "icepnr:bitstream:"

// Get returns the cached bitstream text for k, and whether it was
// present. Always misses on a nil *Cache.
func (c *Cache) Get(ctx context.Context, k Key) (string, bool) {
	if c == nil {
		return "", false
	}
	val, err := c.client.Get(ctx, keyPrefix+k.Hash()).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Put stores bitstream text for k. A no-op on a nil *Cache; errors
// talking to Redis are swallowed (a cache write failure must never fail
// the build).
func (c *Cache) Put(ctx context.Context, k Key, bitstream string) {
	if c == nil {
		return
	}
	c.client.Set(ctx, keyPrefix+k.Hash(), bitstream, 0)
}
