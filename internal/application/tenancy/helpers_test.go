package tenancy

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/property"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockPropertyLookup is a testify mock of PropertyLookup
type mockPropertyLookup struct {
	mock.Mock
}

func (m *mockPropertyLookup) result(args mock.Arguments) (*property.Property, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*property.Property), args.Error(1)
}

func (m *mockPropertyLookup) FindByID(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	return m.result(m.Called(ctx, id))
}

func (m *mockPropertyLookup) FindBySlug(ctx context.Context, slug string) (*property.Property, error) {
	return m.result(m.Called(ctx, slug))
}

func (m *mockPropertyLookup) FindBySubdomain(ctx context.Context, subdomain string) (*property.Property, error) {
	return m.result(m.Called(ctx, subdomain))
}

func (m *mockPropertyLookup) FindByCustomDomain(ctx context.Context, domain string) (*property.Property, error) {
	return m.result(m.Called(ctx, domain))
}

// memoryPropertyRepo is an in-memory property.Repository
type memoryPropertyRepo struct {
	mu      sync.Mutex
	items   map[uuid.UUID]property.Property
	saves   int
	saveErr error
	findErr error
}

func newMemoryPropertyRepo(props ...*property.Property) *memoryPropertyRepo {
	r := &memoryPropertyRepo{items: make(map[uuid.UUID]property.Property)}
	for _, p := range props {
		cp := *p
		cp.ClearDomainEvents()
		r.items[p.ID] = cp
	}
	return r
}

func (r *memoryPropertyRepo) get(id uuid.UUID) property.Property {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[id]
}

func (r *memoryPropertyRepo) find(match func(property.Property) bool) (*property.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, p := range r.items {
		if match(p) {
			cp := p
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryPropertyRepo) FindByID(_ context.Context, id uuid.UUID) (*property.Property, error) {
	return r.find(func(p property.Property) bool { return p.ID == id })
}

func (r *memoryPropertyRepo) FindBySlug(_ context.Context, slug string) (*property.Property, error) {
	return r.find(func(p property.Property) bool { return p.Slug == slug })
}

func (r *memoryPropertyRepo) FindBySubdomain(_ context.Context, sub string) (*property.Property, error) {
	return r.find(func(p property.Property) bool { return sub != "" && p.Subdomain == sub })
}

func (r *memoryPropertyRepo) FindByCustomDomain(_ context.Context, d string) (*property.Property, error) {
	return r.find(func(p property.Property) bool { return d != "" && p.CustomDomain == d })
}

func (r *memoryPropertyRepo) FindAll(_ context.Context, filter shared.Filter) (shared.Page[property.Property], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	page := shared.Page[property.Property]{Page: filter.Page, PageSize: filter.PageSize}
	for _, p := range r.items {
		if filter.Search == "" || strings.Contains(p.Name, filter.Search) {
			page.Items = append(page.Items, p)
		}
	}
	page.Total = int64(len(page.Items))
	return page, nil
}

func (r *memoryPropertyRepo) FindVerifiedDomains(_ context.Context) ([]property.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	var out []property.Property
	for _, p := range r.items {
		if p.DomainVerificationStatus == property.DomainStatusVerified && p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryPropertyRepo) exists(match func(property.Property) bool) (bool, error) {
	_, err := r.find(match)
	if err == shared.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *memoryPropertyRepo) ExistsBySlug(_ context.Context, slug string) (bool, error) {
	return r.exists(func(p property.Property) bool { return p.Slug == slug })
}

func (r *memoryPropertyRepo) ExistsBySubdomain(_ context.Context, sub string) (bool, error) {
	return r.exists(func(p property.Property) bool { return p.Subdomain == sub })
}

func (r *memoryPropertyRepo) ExistsByCustomDomain(_ context.Context, d string) (bool, error) {
	return r.exists(func(p property.Property) bool { return p.CustomDomain == d })
}

func (r *memoryPropertyRepo) Save(_ context.Context, p *property.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	cp := *p
	cp.ClearDomainEvents()
	r.items[p.ID] = cp
	r.saves++
	return nil
}

func (r *memoryPropertyRepo) SaveWithLock(_ context.Context, p *property.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	stored, ok := r.items[p.ID]
	if !ok || stored.Version != p.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	cp := *p
	cp.ClearDomainEvents()
	r.items[p.ID] = cp
	r.saves++
	return nil
}

var _ property.Repository = (*memoryPropertyRepo)(nil)

// recordingPublisher collects published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

func newTestProperty(t *testing.T, slug string) *property.Property {
	t.Helper()
	p, err := property.NewProperty("Hotel "+slug, slug)
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func withSubdomain(t *testing.T, p *property.Property, label string) *property.Property {
	t.Helper()
	require.NoError(t, p.SetSubdomain(label))
	return p
}
