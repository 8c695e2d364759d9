package tenancy

import (
	"context"
	"errors"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/property"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreatePropertyInput is the super-admin request to onboard a hotel
type CreatePropertyInput struct {
	Name      string
	Slug      string
	Subdomain string
	Plan      property.Plan
}

// DomainInstructions tells the operator which TXT record to publish
type DomainInstructions struct {
	Domain     string
	RecordType string
	RecordName string
	Value      string
	Status     property.DomainStatus
}

// AdminService runs property lifecycle operations. Every mutation is saved
// first and its events are published afterwards, which is what keeps the
// resolver cache coherent.
type AdminService struct {
	repo      property.Repository
	publisher shared.EventPublisher
	routing   ResolverConfig
	clock     clock.Clock
	logger    *zap.Logger
}

// AdminOption configures an AdminService
type AdminOption func(*AdminService)

// WithAdminClock sets the time source for UpdatedAt stamps
func WithAdminClock(c clock.Clock) AdminOption {
	return func(s *AdminService) {
		if c != nil {
			s.clock = c
		}
	}
}

// NewAdminService creates an AdminService
func NewAdminService(repo property.Repository, publisher shared.EventPublisher, routing ResolverConfig, logger *zap.Logger, opts ...AdminOption) *AdminService {
	s := &AdminService{repo: repo, publisher: publisher, routing: routing, clock: clock.New(), logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateProperty creates an active property, checking slug and subdomain uniqueness
func (s *AdminService) CreateProperty(ctx context.Context, in CreatePropertyInput) (*property.Property, error) {
	p, err := property.NewProperty(in.Name, in.Slug)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	p.CreatedAt = now
	p.Touch(now)
	if in.Subdomain != "" {
		if err := p.SetSubdomain(in.Subdomain); err != nil {
			return nil, err
		}
	}
	if in.Plan != "" {
		if err := p.SetPlan(in.Plan); err != nil {
			return nil, err
		}
	}

	exists, err := s.repo.ExistsBySlug(ctx, p.Slug)
	if err != nil {
		return nil, storeFailure("check slug", err)
	}
	if exists {
		return nil, shared.ErrAlreadyExists.WithMessage(fmt.Sprintf("Slug %q is already taken", p.Slug))
	}
	if p.Subdomain != "" {
		exists, err := s.repo.ExistsBySubdomain(ctx, p.Subdomain)
		if err != nil {
			return nil, storeFailure("check subdomain", err)
		}
		if exists {
			return nil, shared.ErrAlreadyExists.WithMessage(fmt.Sprintf("Subdomain %q is already taken", p.Subdomain))
		}
	}

	if err := s.save(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("Property created",
		zap.String("tenant_id", p.ID.String()),
		zap.String("slug", p.Slug),
	)
	return p, nil
}

// GetProperty loads one property
func (s *AdminService) GetProperty(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isMiss(err) {
			return nil, shared.ErrPropertyNotFound
		}
		return nil, storeFailure("load property", err)
	}
	return p, nil
}

// ListProperties pages through all properties
func (s *AdminService) ListProperties(ctx context.Context, filter shared.Filter) (shared.Page[property.Property], error) {
	page, err := s.repo.FindAll(ctx, filter.Normalize())
	if err != nil {
		return shared.Page[property.Property]{}, storeFailure("list properties", err)
	}
	return page, nil
}

// ChangePlan moves a property to another subscription plan
func (s *AdminService) ChangePlan(ctx context.Context, id uuid.UUID, plan property.Plan) (*property.Property, error) {
	return s.mutate(ctx, id, func(p *property.Property) error {
		return p.SetPlan(plan)
	})
}

// SetFeatures replaces the feature switches
func (s *AdminService) SetFeatures(ctx context.Context, id uuid.UUID, f property.Features) (*property.Property, error) {
	return s.mutate(ctx, id, func(p *property.Property) error {
		p.SetFeatures(f)
		return nil
	})
}

// Deactivate soft-deletes a property
func (s *AdminService) Deactivate(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	return s.mutate(ctx, id, func(p *property.Property) error {
		return p.Deactivate()
	})
}

// Reactivate restores a deactivated property
func (s *AdminService) Reactivate(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	return s.mutate(ctx, id, func(p *property.Property) error {
		return p.Reactivate()
	})
}

// RegisterCustomDomain binds domain to the property and returns the TXT
// record to publish. Domains under the platform root are refused.
func (s *AdminService) RegisterCustomDomain(ctx context.Context, id uuid.UUID, domain string) (DomainInstructions, error) {
	host, err := property.NormalizeHost(domain)
	if err != nil {
		return DomainInstructions{}, shared.NewDomainError("INVALID_DOMAIN", "Custom domain must be a fully qualified host name")
	}
	if s.routing.UnderPlatform(host) {
		return DomainInstructions{}, shared.NewDomainError("INVALID_DOMAIN", "Platform domains cannot be registered as custom domains")
	}

	p, err := s.GetProperty(ctx, id)
	if err != nil {
		return DomainInstructions{}, err
	}
	if p.CustomDomain != host {
		taken, err := s.repo.ExistsByCustomDomain(ctx, host)
		if err != nil {
			return DomainInstructions{}, storeFailure("check custom domain", err)
		}
		if taken {
			return DomainInstructions{}, shared.ErrAlreadyExists.WithMessage(fmt.Sprintf("Domain %q is already registered", host))
		}
	}

	if err := p.RegisterCustomDomain(host); err != nil {
		return DomainInstructions{}, err
	}
	if err := s.saveWithLock(ctx, p); err != nil {
		return DomainInstructions{}, err
	}
	return InstructionsFor(p), nil
}

// RemoveCustomDomain unbinds the custom domain
func (s *AdminService) RemoveCustomDomain(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	return s.mutate(ctx, id, func(p *property.Property) error {
		p.RemoveCustomDomain()
		return nil
	})
}

// InstructionsFor renders the TXT record of p's pending or verified domain
func InstructionsFor(p *property.Property) DomainInstructions {
	return DomainInstructions{
		Domain:     p.CustomDomain,
		RecordType: "TXT",
		RecordName: p.CustomDomain,
		Value:      p.DomainVerificationToken,
		Status:     p.DomainVerificationStatus,
	}
}

func (s *AdminService) mutate(ctx context.Context, id uuid.UUID, fn func(*property.Property) error) (*property.Property, error) {
	p, err := s.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := s.saveWithLock(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *AdminService) save(ctx context.Context, p *property.Property) error {
	return s.persist(ctx, p, s.repo.Save)
}

// saveWithLock bumps the version and writes only over the version it read,
// so a concurrent verifier or admin write is never overwritten.
func (s *AdminService) saveWithLock(ctx context.Context, p *property.Property) error {
	if len(p.GetDomainEvents()) == 0 {
		return nil
	}
	p.IncrementVersion()
	p.Touch(s.clock.Now())
	return s.persist(ctx, p, s.repo.SaveWithLock)
}

func (s *AdminService) persist(ctx context.Context, p *property.Property, write func(context.Context, *property.Property) error) error {
	if len(p.GetDomainEvents()) == 0 {
		return nil
	}
	if err := write(ctx, p); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return shared.ErrAlreadyExists.WithMessage("Slug, subdomain or domain is already taken")
		}
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			return err
		}
		s.logger.Error("Failed to save property",
			zap.String("tenant_id", p.ID.String()),
			zap.Error(err),
		)
		return storeFailure("save property", err)
	}
	publishEvents(ctx, s.publisher, s.logger, p)
	return nil
}
