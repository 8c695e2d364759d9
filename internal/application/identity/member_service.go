package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/billing"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/identity"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/property"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PropertyFinder loads a property by id
type PropertyFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*property.Property, error)
}

// QuotaGate rejects an operation that would push a metric past its ceiling
type QuotaGate interface {
	Require(ctx context.Context, propertyID uuid.UUID, metric billing.Metric, delta int64) error
}

// MemberService manages the users of a property
type MemberService struct {
	users       identity.UserRepository
	memberships identity.MembershipRepository
	properties  PropertyFinder
	quota       QuotaGate
	blacklist   auth.TokenBlacklist
	sessionTTL  time.Duration
	logger      *zap.Logger
}

// NewMemberService creates a MemberService. sessionTTL bounds how long a
// removed member's revocation marker is kept; blacklist may be nil.
func NewMemberService(
	users identity.UserRepository,
	memberships identity.MembershipRepository,
	properties PropertyFinder,
	quota QuotaGate,
	blacklist auth.TokenBlacklist,
	sessionTTL time.Duration,
	logger *zap.Logger,
) *MemberService {
	return &MemberService{
		users:       users,
		memberships: memberships,
		properties:  properties,
		quota:       quota,
		blacklist:   blacklist,
		sessionTTL:  sessionTTL,
		logger:      logger,
	}
}

// AddMember creates a user bound to propertyID, or re-activates a former
// member of the same property. A user belongs to at most one property.
func (s *MemberService) AddMember(ctx context.Context, propertyID uuid.UUID, in AddMemberInput) (*MemberInfo, error) {
	if _, err := s.properties.FindByID(ctx, propertyID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrPropertyNotFound
		}
		return nil, shared.NewDataStoreFailure("load property", err)
	}
	role := in.Role
	if role == "" {
		role = identity.RoleStaff
	}
	if !role.IsValid() {
		return nil, shared.ErrInvalidInput.WithMessage("Unknown role")
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return s.reactivate(ctx, propertyID, user, role)
	case !errors.Is(err, shared.ErrNotFound):
		return nil, shared.NewDataStoreFailure("load user", err)
	}

	if err := s.quota.Require(ctx, propertyID, billing.MetricAdminUsers, 1); err != nil {
		return nil, err
	}

	user, err = identity.NewUser(email, in.DisplayName, in.Password)
	if err != nil {
		return nil, err
	}
	m, err := identity.NewMembership(propertyID, user.ID, role)
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, saveFailure("save user", err)
	}
	if err := s.memberships.Save(ctx, m); err != nil {
		return nil, saveFailure("save membership", err)
	}

	s.logger.Info("Member added",
		zap.String("tenant_id", propertyID.String()),
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(role)))
	return toMemberInfo(m, user), nil
}

func (s *MemberService) reactivate(ctx context.Context, propertyID uuid.UUID, user *identity.User, role identity.Role) (*MemberInfo, error) {
	m, err := s.memberships.FindByUserID(ctx, user.ID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewDataStoreFailure("load membership", err)
	}
	if m == nil || m.TenantID != propertyID || m.IsActive {
		return nil, shared.ErrAlreadyExists.WithMessage("A user with this email already exists")
	}

	if err := s.quota.Require(ctx, propertyID, billing.MetricAdminUsers, 1); err != nil {
		return nil, err
	}
	m.Role = role
	m.Activate()
	if err := s.memberships.Save(ctx, m); err != nil {
		return nil, saveFailure("save membership", err)
	}
	s.logger.Info("Member re-activated",
		zap.String("tenant_id", propertyID.String()),
		zap.String("user_id", user.ID.String()))
	return toMemberInfo(m, user), nil
}

// ListMembers returns every membership of the property, active or not
func (s *MemberService) ListMembers(ctx context.Context, propertyID uuid.UUID) ([]MemberInfo, error) {
	ms, err := s.memberships.ListByTenant(ctx, propertyID)
	if err != nil {
		return nil, shared.NewDataStoreFailure("list memberships", err)
	}
	out := make([]MemberInfo, 0, len(ms))
	for i := range ms {
		user, err := s.users.FindByID(ctx, ms[i].UserID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return nil, shared.NewDataStoreFailure("load user", err)
		}
		out = append(out, *toMemberInfo(&ms[i], user))
	}
	return out, nil
}

// RemoveMember deactivates the membership and revokes the user's sessions
func (s *MemberService) RemoveMember(ctx context.Context, propertyID, userID uuid.UUID) error {
	m, err := s.memberships.FindByTenantAndUser(ctx, propertyID, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.ErrNotFound.WithMessage("Member not found")
		}
		return shared.NewDataStoreFailure("load membership", err)
	}
	if !m.IsActive {
		return nil
	}

	m.Deactivate()
	if err := s.memberships.Save(ctx, m); err != nil {
		return saveFailure("save membership", err)
	}

	if s.blacklist != nil {
		// the inactive membership already blocks the property; this also ends open sessions
		if err := s.blacklist.AddUserTokensToBlacklist(ctx, userID.String(), s.sessionTTL); err != nil {
			s.logger.Warn("Failed to revoke sessions of removed member",
				zap.String("user_id", userID.String()),
				zap.Error(err))
		}
	}

	s.logger.Info("Member removed",
		zap.String("tenant_id", propertyID.String()),
		zap.String("user_id", userID.String()))
	return nil
}

func toMemberInfo(m *identity.Membership, u *identity.User) *MemberInfo {
	return &MemberInfo{
		UserID:      u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        m.Role,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
	}
}

func saveFailure(op string, err error) error {
	if errors.Is(err, shared.ErrAlreadyExists) {
		return shared.ErrAlreadyExists.WithMessage("A user with this email already exists")
	}
	return shared.NewDataStoreFailure(op, err)
}
