package schema

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// kvBucket is the JetStream key-value bucket backing the persistent layer.
const kvBucket = "schema-cache"

// Cache holds per-endpoint schema dictionaries and prefix maps with an
// explicit refresh policy. The in-memory layer serves repeated lookups
// within a process; an optional JetStream key-value bucket shares fetched
// schemas across restarts and instances.
type Cache struct {
	provider *Provider
	maxAge   time.Duration
	logger   *slog.Logger
	kv       jetstream.KeyValue

	mu       sync.Mutex
	schemas  map[string]*cacheEntry[Dict]
	prefixes map[string]*cacheEntry[PrefixMap]
}

type cacheEntry[T any] struct {
	Value     T         `json:"value"`
	FetchedAt time.Time `json:"fetched_at"`
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithMaxAge sets how long a fetched schema stays fresh. Zero disables
// expiry; entries then live until an explicit Refresh.
func WithMaxAge(d time.Duration) CacheOption {
	return func(c *Cache) {
		c.maxAge = d
	}
}

// WithKeyValue attaches a JetStream key-value bucket as the persistent
// layer. Use OpenKVBucket to create or open the conventional bucket.
func WithKeyValue(kv jetstream.KeyValue) CacheOption {
	return func(c *Cache) {
		c.kv = kv
	}
}

// WithCacheLogger sets the logger.
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *Cache) {
		c.logger = logger
	}
}

// OpenKVBucket creates or opens the schema cache bucket on a JetStream
// context.
func OpenKVBucket(ctx context.Context, js jetstream.JetStream) (jetstream.KeyValue, error) {
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      kvBucket,
		Description: "per-endpoint VoID schemas and prefix maps",
	})
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", kvBucket, err)
	}
	return kv, nil
}

// NewCache creates a cache over the given provider. Defaults: 24h max age,
// in-memory only.
func NewCache(provider *Provider, opts ...CacheOption) *Cache {
	c := &Cache{
		provider: provider,
		maxAge:   24 * time.Hour,
		logger:   slog.Default(),
		schemas:  make(map[string]*cacheEntry[Dict]),
		prefixes: make(map[string]*cacheEntry[PrefixMap]),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Schema returns the endpoint's schema dictionary, fetching it through the
// provider when the cached copy is missing or stale.
func (c *Cache) Schema(ctx context.Context, endpoint string) (Dict, error) {
	return lookup(ctx, c, c.schemas, endpoint, "dict", c.provider.FetchSchema)
}

// Prefixes returns the endpoint's prefix map, fetching it through the
// provider when the cached copy is missing or stale.
func (c *Cache) Prefixes(ctx context.Context, endpoint string) (PrefixMap, error) {
	return lookup(ctx, c, c.prefixes, endpoint, "prefixes", c.provider.FetchPrefixes)
}

// Refresh discards both cached entries for the endpoint and fetches the
// schema again.
func (c *Cache) Refresh(ctx context.Context, endpoint string) (Dict, error) {
	c.mu.Lock()
	delete(c.schemas, endpoint)
	delete(c.prefixes, endpoint)
	c.mu.Unlock()
	return c.Schema(ctx, endpoint)
}

// Snapshot gathers schemas for several endpoints into one EndpointsDict.
// Endpoints that fail to fetch are logged and skipped; validation treats a
// missing schema as unknown rather than as an error.
func (c *Cache) Snapshot(ctx context.Context, endpoints []string) EndpointsDict {
	out := make(EndpointsDict, len(endpoints))
	for _, endpoint := range endpoints {
		dict, err := c.Schema(ctx, endpoint)
		if err != nil {
			c.logger.Warn("Schema unavailable, skipping endpoint",
				"endpoint", endpoint,
				"error", err)
			continue
		}
		out[endpoint] = dict
	}
	return out
}

// lookup is the shared memory -> KV -> provider read path.
func lookup[T any](ctx context.Context, c *Cache, memory map[string]*cacheEntry[T],
	endpoint, kind string, fetch func(context.Context, string) (T, error)) (T, error) {

	c.mu.Lock()
	entry, ok := memory[endpoint]
	c.mu.Unlock()
	if ok && c.fresh(entry.FetchedAt) {
		return entry.Value, nil
	}

	if c.kv != nil {
		if entry, err := kvGet[T](ctx, c.kv, kvKey(endpoint, kind)); err == nil && c.fresh(entry.FetchedAt) {
			c.mu.Lock()
			memory[endpoint] = entry
			c.mu.Unlock()
			return entry.Value, nil
		}
	}

	value, err := fetch(ctx, endpoint)
	if err != nil {
		var zero T
		// a stale copy beats a failed fetch
		if ok {
			c.logger.Warn("Refresh failed, serving stale entry",
				"endpoint", endpoint,
				"kind", kind,
				"age", time.Since(entry.FetchedAt),
				"error", err)
			return entry.Value, nil
		}
		return zero, err
	}

	fresh := &cacheEntry[T]{Value: value, FetchedAt: time.Now()}
	c.mu.Lock()
	memory[endpoint] = fresh
	c.mu.Unlock()

	if c.kv != nil {
		if err := kvPut(ctx, c.kv, kvKey(endpoint, kind), fresh); err != nil {
			c.logger.Warn("Failed to persist cache entry",
				"endpoint", endpoint,
				"kind", kind,
				"error", err)
		}
	}

	return value, nil
}

func (c *Cache) fresh(fetchedAt time.Time) bool {
	if c.maxAge <= 0 {
		return true
	}
	return time.Since(fetchedAt) < c.maxAge
}

// kvKey derives a bucket-safe key from the endpoint URL.
func kvKey(endpoint, kind string) string {
	sum := sha256.Sum256([]byte(endpoint))
	return kind + "." + hex.EncodeToString(sum[:])
}

func kvGet[T any](ctx context.Context, kv jetstream.KeyValue, key string) (*cacheEntry[T], error) {
	kvEntry, err := kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("kv get %s: %w", key, err)
	}
	var entry cacheEntry[T]
	if err := json.Unmarshal(kvEntry.Value(), &entry); err != nil {
		return nil, fmt.Errorf("decode kv entry %s: %w", key, err)
	}
	return &entry, nil
}

func kvPut[T any](ctx context.Context, kv jetstream.KeyValue, key string, entry *cacheEntry[T]) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode kv entry: %w", err)
	}
	if _, err := kv.Put(ctx, key, data); err != nil {
		return fmt.Errorf("kv put %s: %w", key, err)
	}
	return nil
}
