package cache

import (
	"bytes"
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
)

// Store caches JSON-encodable values by key.
type Store interface {
	// Get decodes the value stored under key into dst and reports whether
	// it was found.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, val any) error
	Flush(ctx context.Context) error
}

// Cache wraps go-cache with GOB persistence. Values are held as JSON so
// the persisted file needs no type registration.
type Cache struct {
	inner *gocache.Cache
	ttl   time.Duration
}

// New creates an empty cache whose entries expire after ttl.
func New(ttl time.Duration) *Cache {
	return &Cache{inner: gocache.New(ttl, 2*ttl), ttl: ttl}
}

// LoadFromFile loads a cache from a GOB file, returning a fresh cache on error.
func LoadFromFile(filename string, ttl time.Duration) (*Cache, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return New(ttl), nil
		}
		return nil, err
	}
	dec := gob.NewDecoder(bytes.NewReader(data))
	items := map[string]gocache.Item{}
	if err := dec.Decode(&items); err != nil {
		log.Warn().Err(err).Str("file", filename).Msg("Cache decode error, starting fresh")
		return New(ttl), nil
	}
	return &Cache{inner: gocache.NewFrom(ttl, 2*ttl, items), ttl: ttl}, nil
}

// SaveToFile saves the unexpired entries to a GOB file.
func (c *Cache) SaveToFile(filename string) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(c.inner.Items()); err != nil {
		return err
	}
	return os.WriteFile(filename, buf.Bytes(), 0600)
}

func (c *Cache) Get(_ context.Context, key string, dst any) (bool, error) {
	val, found := c.inner.Get(key)
	if !found {
		return false, nil
	}
	data, ok := val.([]byte)
	if !ok {
		return false, fmt.Errorf("cache entry %q has unexpected type %T", key, val)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decoding cache entry %q: %w", key, err)
	}
	return true, nil
}

func (c *Cache) Set(_ context.Context, key string, val any) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("encoding cache entry %q: %w", key, err)
	}
	c.inner.Set(key, data, gocache.DefaultExpiration)
	return nil
}

// Flush clears all cached items.
func (c *Cache) Flush(context.Context) error {
	c.inner.Flush()
	return nil
}

// Len returns the number of entries, including expired ones not yet evicted.
func (c *Cache) Len() int {
	return c.inner.ItemCount()
}
