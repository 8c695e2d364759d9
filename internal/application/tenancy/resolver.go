// Package tenancy binds requests to properties: by host for public and
// admin pages, by session for authenticated admin calls, and it owns the
// custom-domain verification workflow.
package tenancy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/property"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PropertyLookup finds properties by their routing keys.
// Misses return shared.ErrNotFound.
type PropertyLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*property.Property, error)
	FindBySlug(ctx context.Context, slug string) (*property.Property, error)
	FindBySubdomain(ctx context.Context, subdomain string) (*property.Property, error)
	FindByCustomDomain(ctx context.Context, domain string) (*property.Property, error)
}

// RequestContext selects the post-binding policy
type RequestContext string

const (
	// ContextPublic serves guest-facing pages; a disabled frontend hides the property
	ContextPublic RequestContext = "public"
	// ContextAdmin serves staff pages; the property resolves even with its frontend off
	ContextAdmin RequestContext = "admin"
)

// IdentifierType is the kind of an upstream routing identifier
type IdentifierType string

const (
	IdentifierSubdomain    IdentifierType = "subdomain"
	IdentifierCustomDomain IdentifierType = "custom_domain"
	IdentifierSlug         IdentifierType = "slug"
)

// Kind tags a Resolution
type Kind int

const (
	KindPlatform Kind = iota + 1
	KindTenant
)

func (k Kind) String() string {
	switch k {
	case KindPlatform:
		return "platform"
	case KindTenant:
		return "tenant"
	}
	return "unknown"
}

// MatchedBy records which rule bound the property
type MatchedBy string

const (
	MatchedByCustomDomain MatchedBy = "custom_domain"
	MatchedBySubdomain    MatchedBy = "subdomain"
	MatchedBySlug         MatchedBy = "slug"
	MatchedByDefault      MatchedBy = "default"
)

// ResolveInput is what the HTTP boundary knows about a request
type ResolveInput struct {
	Host string
	// Identifier and IdentifierType come from a trusted upstream router
	Identifier     string
	IdentifierType IdentifierType
	Context        RequestContext
}

// Resolution is either the platform itself or exactly one property
type Resolution struct {
	Kind      Kind
	Property  *property.Property
	MatchedBy MatchedBy
	Host      string
}

// IsPlatform reports whether the request targets the platform root
func (r Resolution) IsPlatform() bool { return r.Kind == KindPlatform }

// PropertyID returns the bound property id or uuid.Nil
func (r Resolution) PropertyID() uuid.UUID {
	if r.Property == nil {
		return uuid.Nil
	}
	return r.Property.ID
}

// ResolutionMetrics observes resolver outcomes
type ResolutionMetrics interface {
	RecordResolution(ctx context.Context, outcome string)
}

type noopResolutionMetrics struct{}

func (noopResolutionMetrics) RecordResolution(context.Context, string) {}

// ResolverConfig holds the platform-level routing settings
type ResolverConfig struct {
	RootDomain     string
	DevRootDomains []string
	// DefaultTenantID binds otherwise unresolved hosts; uuid.Nil disables it
	DefaultTenantID uuid.UUID
}

// ResolverConfigFrom converts application config
func ResolverConfigFrom(cfg config.TenancyConfig) (ResolverConfig, error) {
	out := ResolverConfig{
		RootDomain:     strings.ToLower(strings.TrimSuffix(cfg.RootDomain, ".")),
		DevRootDomains: cfg.DevRootDomains,
	}
	if cfg.DefaultTenantID != "" {
		id, err := uuid.Parse(cfg.DefaultTenantID)
		if err != nil {
			return ResolverConfig{}, fmt.Errorf("tenancy.default_tenant_id: %w", err)
		}
		out.DefaultTenantID = id
	}
	return out, nil
}

// Roots returns every domain treated as the platform root
func (c ResolverConfig) Roots() []string {
	roots := make([]string, 0, 1+len(c.DevRootDomains))
	if c.RootDomain != "" {
		roots = append(roots, c.RootDomain)
	}
	for _, r := range c.DevRootDomains {
		r = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(r), "."))
		if r != "" {
			roots = append(roots, r)
		}
	}
	return roots
}

// IsPlatformHost reports whether host is a root domain or its www alias
func (c ResolverConfig) IsPlatformHost(host string) bool {
	for _, root := range c.Roots() {
		if host == root || host == "www."+root {
			return true
		}
	}
	return false
}

// UnderPlatform reports whether host is a root or any name below one
func (c ResolverConfig) UnderPlatform(host string) bool {
	for _, root := range c.Roots() {
		if host == root || strings.HasSuffix(host, "."+root) {
			return true
		}
	}
	return false
}

// Resolver binds a request host to a property
type Resolver struct {
	lookup  PropertyLookup
	cfg     ResolverConfig
	metrics ResolutionMetrics
	logger  *zap.Logger
}

// ResolverOption configures a Resolver
type ResolverOption func(*Resolver)

// WithResolutionMetrics records each outcome
func WithResolutionMetrics(m ResolutionMetrics) ResolverOption {
	return func(r *Resolver) {
		if m != nil {
			r.metrics = m
		}
	}
}

// NewResolver creates a Resolver
func NewResolver(lookup PropertyLookup, cfg ResolverConfig, logger *zap.Logger, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		lookup:  lookup,
		cfg:     cfg,
		metrics: noopResolutionMetrics{},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the routing settings
func (r *Resolver) Config() ResolverConfig {
	return r.cfg
}

// Resolve binds the request to the platform or to one property.
//
// Order: upstream identifier, platform root, verified custom domain,
// platform subdomain, configured default. The default only applies when no
// explicit identifier was supplied. Inactive properties never bind; a
// property with its frontend off binds for ContextAdmin only.
func (r *Resolver) Resolve(ctx context.Context, in ResolveInput) (Resolution, error) {
	res, err := r.resolve(ctx, in)
	r.metrics.RecordResolution(ctx, outcomeOf(res, err))
	return res, err
}

func (r *Resolver) resolve(ctx context.Context, in ResolveInput) (Resolution, error) {
	host, hostErr := property.NormalizeHost(in.Host)

	if ident := strings.TrimSpace(in.Identifier); ident != "" {
		p, matched, err := r.byIdentifier(ctx, ident, in.IdentifierType)
		if err != nil {
			return Resolution{}, err
		}
		return r.bind(p, matched, host, in.Context)
	}

	if hostErr == nil {
		if r.cfg.IsPlatformHost(host) {
			return Resolution{Kind: KindPlatform, Host: host}, nil
		}

		p, err := r.byCustomDomain(ctx, host)
		if err != nil {
			return Resolution{}, err
		}
		if p != nil {
			return r.bind(p, MatchedByCustomDomain, host, in.Context)
		}

		for _, root := range r.cfg.Roots() {
			label, ok := property.SubdomainOf(host, root)
			if !ok || label == "www" {
				continue
			}
			p, err := r.bySubdomain(ctx, label)
			if err != nil {
				return Resolution{}, err
			}
			if p != nil {
				return r.bind(p, MatchedBySubdomain, host, in.Context)
			}
		}
	}

	if r.cfg.DefaultTenantID != uuid.Nil {
		p, err := r.lookup.FindByID(ctx, r.cfg.DefaultTenantID)
		if err != nil {
			if isMiss(err) {
				r.logger.Warn("Default tenant does not exist", zap.String("tenant_id", r.cfg.DefaultTenantID.String()))
				return Resolution{}, shared.ErrTenantNotFound
			}
			return Resolution{}, storeFailure("resolve tenant", err)
		}
		return r.bind(p, MatchedByDefault, host, in.Context)
	}

	return Resolution{}, shared.ErrTenantNotFound
}

func (r *Resolver) byIdentifier(ctx context.Context, ident string, typ IdentifierType) (*property.Property, MatchedBy, error) {
	var (
		p   *property.Property
		err error
	)
	switch typ {
	case IdentifierSubdomain:
		p, err = r.bySubdomain(ctx, strings.ToLower(ident))
		return p, MatchedBySubdomain, notFoundIfNil(p, err)
	case IdentifierCustomDomain:
		host, herr := property.NormalizeHost(ident)
		if herr != nil {
			return nil, "", shared.ErrTenantNotFound
		}
		p, err = r.byCustomDomain(ctx, host)
		return p, MatchedByCustomDomain, notFoundIfNil(p, err)
	case IdentifierSlug:
		slug := strings.ToLower(ident)
		p, err = r.lookup.FindBySlug(ctx, slug)
		if err != nil {
			if isMiss(err) {
				return nil, "", shared.ErrTenantNotFound
			}
			return nil, "", storeFailure("resolve tenant", err)
		}
		if p.Slug != slug {
			return nil, "", shared.ErrTenantNotFound
		}
		return p, MatchedBySlug, nil
	default:
		return nil, "", shared.ErrTenantNotFound
	}
}

func notFoundIfNil(p *property.Property, err error) error {
	if err != nil {
		return err
	}
	if p == nil {
		return shared.ErrTenantNotFound
	}
	return nil
}

// byCustomDomain returns nil without error when no verified owner exists.
// The returned property is rechecked against host so a stale cache entry
// can never route an unverified or moved domain.
func (r *Resolver) byCustomDomain(ctx context.Context, host string) (*property.Property, error) {
	p, err := r.lookup.FindByCustomDomain(ctx, host)
	if err != nil {
		if isMiss(err) {
			return nil, nil
		}
		return nil, storeFailure("resolve tenant", err)
	}
	if d, ok := p.RoutableCustomDomain(); !ok || d != host {
		return nil, nil
	}
	return p, nil
}

func (r *Resolver) bySubdomain(ctx context.Context, label string) (*property.Property, error) {
	p, err := r.lookup.FindBySubdomain(ctx, label)
	if err != nil {
		if isMiss(err) {
			return nil, nil
		}
		return nil, storeFailure("resolve tenant", err)
	}
	if p.Subdomain != label {
		return nil, nil
	}
	return p, nil
}

func (r *Resolver) bind(p *property.Property, matched MatchedBy, host string, rc RequestContext) (Resolution, error) {
	if !p.IsActive {
		return Resolution{}, shared.ErrTenantNotFound
	}
	if rc != ContextAdmin && !p.Features.FrontendEnabled {
		return Resolution{}, shared.ErrTenantDisabled
	}
	return Resolution{Kind: KindTenant, Property: p, MatchedBy: matched, Host: host}, nil
}

func outcomeOf(res Resolution, err error) string {
	switch {
	case err == nil && res.Kind == KindPlatform:
		return "platform"
	case err == nil:
		return string(res.MatchedBy)
	case errors.Is(err, shared.ErrTenantDisabled):
		return "disabled"
	case errors.Is(err, shared.ErrTenantNotFound):
		return "not_found"
	default:
		return "error"
	}
}
