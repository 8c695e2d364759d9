package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository persists users
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, u *User) error
}

// MembershipRepository persists memberships
type MembershipRepository interface {
	// FindByUserID returns the membership of a user regardless of its state
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Membership, error)
	FindByTenantAndUser(ctx context.Context, tenantID, userID uuid.UUID) (*Membership, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]Membership, error)
	CountActiveByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
	Save(ctx context.Context, m *Membership) error
}
