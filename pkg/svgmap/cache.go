package svgmap

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is the process-wide bounded LRU of rendered distribution maps
// (§5 "Shared resources"): keyed by a stable hash of the input geography
// id set plus a preference flag, capacity-bounded, evicting the
// least-recently-*accessed* entry rather than the oldest inserted one —
// exactly what hashicorp/golang-lru/v2 implements.
type Cache struct {
	lru *lru.Cache[string, string]
}

// NewCache returns an empty Cache holding at most capacity rendered
// maps.
func NewCache(capacity int) (*Cache, error) {
	c, err := lru.New[string, string](capacity)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: c}, nil
}

// Key derives the cache key for a geography id set plus an opaque
// preference flag (e.g. a color scheme), order-independent in ids.
func Key(geographyIDs []string, pref string) string {
	sorted := append([]string(nil), geographyIDs...)
	sort.Strings(sorted)
	h := sha256.Sum256([]byte(strings.Join(sorted, "\x00") + "\x00" + pref))
	return hex.EncodeToString(h[:])
}

// Get returns a previously rendered map for key, marking it as recently
// accessed.
func (c *Cache) Get(key string) (string, bool) {
	return c.lru.Get(key)
}

// Put stores a rendered map under key, evicting the least-recently-
// accessed entry if the cache is at capacity.
func (c *Cache) Put(key, svg string) {
	c.lru.Add(key, svg)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}
