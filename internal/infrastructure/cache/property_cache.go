// Package cache holds the in-process property cache that fronts tenant
// resolution, plus the plumbing that keeps it in step with property changes
// across server instances.
package cache

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/property"
	"github.com/google/uuid"
)

// Lookup kinds used as key prefixes
const (
	KindID           = "id"
	KindSlug         = "slug"
	KindSubdomain    = "subdomain"
	KindCustomDomain = "custom_domain"
)

// Key builds a cache key from a lookup kind and value
func Key(kind, value string) string {
	return kind + ":" + strings.ToLower(value)
}

// KeysFor returns every key a property may be cached under
func KeysFor(id uuid.UUID, keys property.RoutingKeys) []string {
	out := []string{Key(KindID, id.String())}
	if keys.Slug != "" {
		out = append(out, Key(KindSlug, keys.Slug))
	}
	if keys.Subdomain != "" {
		out = append(out, Key(KindSubdomain, keys.Subdomain))
	}
	if keys.CustomDomain != "" {
		out = append(out, Key(KindCustomDomain, keys.CustomDomain))
	}
	if keys.PreviousCustomDomain != "" {
		out = append(out, Key(KindCustomDomain, keys.PreviousCustomDomain))
	}
	return out
}

// PropertyCache is a bounded TTL cache of properties keyed by lookup key.
// Entries are copies so callers can never mutate cached state.
type PropertyCache struct {
	c   *ristretto.Cache[string, property.Property]
	ttl time.Duration
}

// NewPropertyCache creates a cache holding up to maxEntries properties for ttl
func NewPropertyCache(maxEntries int64, ttl time.Duration) (*PropertyCache, error) {
	if maxEntries <= 0 {
		return nil, fmt.Errorf("cache max entries must be positive, got %d", maxEntries)
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, property.Property]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &PropertyCache{c: c, ttl: ttl}, nil
}

// Get returns a copy of the cached property under key
func (pc *PropertyCache) Get(key string) (*property.Property, bool) {
	p, ok := pc.c.Get(key)
	if !ok {
		return nil, false
	}
	return &p, true
}

// Set caches a copy of p under key. Pending domain events are not cached.
func (pc *PropertyCache) Set(key string, p *property.Property) {
	cp := *p
	cp.ClearDomainEvents()
	pc.c.SetWithTTL(key, cp, 1, pc.ttl)
	pc.c.Wait()
}

// Delete drops keys from the cache
func (pc *PropertyCache) Delete(keys ...string) {
	for _, k := range keys {
		pc.c.Del(k)
	}
}

// Clear drops every entry
func (pc *PropertyCache) Clear() {
	pc.c.Clear()
}

// Close releases the cache's background goroutines
func (pc *PropertyCache) Close() {
	pc.c.Close()
}
