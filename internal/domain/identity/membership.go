package identity

import (
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// Role is a member's role inside its property
type Role string

const (
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleStaff
}

// Membership binds a user to the single property it may act on
type Membership struct {
	shared.TenantEntity
	UserID   uuid.UUID
	Role     Role
	IsActive bool
}

// NewMembership creates an active membership
func NewMembership(tenantID, userID uuid.UUID, role Role) (*Membership, error) {
	if tenantID == uuid.Nil || userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MEMBERSHIP", "Membership needs a property and a user")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role")
	}
	return &Membership{
		TenantEntity: shared.NewTenantEntity(tenantID),
		UserID:       userID,
		Role:         role,
		IsActive:     true,
	}, nil
}

// Deactivate revokes access without deleting the record
func (m *Membership) Deactivate() {
	m.IsActive = false
	m.Touch()
}

// Activate restores access
func (m *Membership) Activate() {
	m.IsActive = true
	m.Touch()
}
