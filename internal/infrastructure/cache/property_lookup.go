package cache

import (
	"context"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/property"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// PropertySource is the store the cache reads through to
type PropertySource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*property.Property, error)
	FindBySlug(ctx context.Context, slug string) (*property.Property, error)
	FindBySubdomain(ctx context.Context, subdomain string) (*property.Property, error)
	FindByCustomDomain(ctx context.Context, domain string) (*property.Property, error)
}

// CachedPropertyLookup reads properties through the cache.
// Concurrent misses for one key share a single store query. Misses and
// errors are never cached, so a newly created property is visible at once.
type CachedPropertyLookup struct {
	source PropertySource
	cache  *PropertyCache
	group  singleflight.Group
}

// NewCachedPropertyLookup creates a read-through lookup
func NewCachedPropertyLookup(source PropertySource, cache *PropertyCache) *CachedPropertyLookup {
	return &CachedPropertyLookup{source: source, cache: cache}
}

// FindByID looks a property up by id
func (l *CachedPropertyLookup) FindByID(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	return l.load(ctx, Key(KindID, id.String()), func(ctx context.Context) (*property.Property, error) {
		return l.source.FindByID(ctx, id)
	})
}

// FindBySlug looks a property up by slug
func (l *CachedPropertyLookup) FindBySlug(ctx context.Context, slug string) (*property.Property, error) {
	return l.load(ctx, Key(KindSlug, slug), func(ctx context.Context) (*property.Property, error) {
		return l.source.FindBySlug(ctx, slug)
	})
}

// FindBySubdomain looks a property up by subdomain label
func (l *CachedPropertyLookup) FindBySubdomain(ctx context.Context, subdomain string) (*property.Property, error) {
	return l.load(ctx, Key(KindSubdomain, subdomain), func(ctx context.Context) (*property.Property, error) {
		return l.source.FindBySubdomain(ctx, subdomain)
	})
}

// FindByCustomDomain looks a property up by custom domain
func (l *CachedPropertyLookup) FindByCustomDomain(ctx context.Context, domain string) (*property.Property, error) {
	return l.load(ctx, Key(KindCustomDomain, domain), func(ctx context.Context) (*property.Property, error) {
		return l.source.FindByCustomDomain(ctx, domain)
	})
}

func (l *CachedPropertyLookup) load(ctx context.Context, key string, fetch func(context.Context) (*property.Property, error)) (*property.Property, error) {
	if p, ok := l.cache.Get(key); ok {
		return p, nil
	}

	v, err, _ := l.group.Do(key, func() (any, error) {
		p, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		l.cache.Set(key, p)
		return p, nil
	})
	if err != nil {
		return nil, err
	}

	// hand every caller its own copy
	cp := *v.(*property.Property)
	return &cp, nil
}
