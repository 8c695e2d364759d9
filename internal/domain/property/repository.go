package property

import (
	"context"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository persists Property aggregates.
// Find* methods return shared.ErrNotFound when nothing matches.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Property, error)
	FindBySlug(ctx context.Context, slug string) (*Property, error)
	FindBySubdomain(ctx context.Context, subdomain string) (*Property, error)
	FindByCustomDomain(ctx context.Context, domain string) (*Property, error)
	FindAll(ctx context.Context, filter shared.Filter) (shared.Page[Property], error)
	FindVerifiedDomains(ctx context.Context) ([]Property, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	ExistsBySubdomain(ctx context.Context, subdomain string) (bool, error)
	ExistsByCustomDomain(ctx context.Context, domain string) (bool, error)
	Save(ctx context.Context, p *Property) error
	// SaveWithLock updates p only when the stored version is p.Version-1
	// and returns shared.ErrConcurrencyConflict otherwise
	SaveWithLock(ctx context.Context, p *Property) error
}
