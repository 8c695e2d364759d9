package tenancy

import (
	"context"
	"time"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/identity"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/property"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionValidator verifies a session token
type SessionValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// PropertyFinder loads a property by id
type PropertyFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*property.Property, error)
}

// AuthContext is the identity an admin request acts with.
// PropertyID is uuid.Nil only for super-admins without a membership.
type AuthContext struct {
	UserID     uuid.UUID
	Email      string
	SuperAdmin bool
	PropertyID uuid.UUID
	Property   *property.Property
	Role       identity.Role
	SessionID  string
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// HasProperty reports whether the session is bound to a property
func (a AuthContext) HasProperty() bool {
	return a.PropertyID != uuid.Nil
}

// PropertyResolver derives the one property a session may act on.
// The property id always comes from the membership record, never from
// the request.
type PropertyResolver struct {
	sessions    SessionValidator
	blacklist   auth.TokenBlacklist
	users       identity.UserRepository
	memberships identity.MembershipRepository
	properties  PropertyFinder
	logger      *zap.Logger
}

// NewPropertyResolver creates a PropertyResolver. blacklist may be nil.
func NewPropertyResolver(
	sessions SessionValidator,
	blacklist auth.TokenBlacklist,
	users identity.UserRepository,
	memberships identity.MembershipRepository,
	properties PropertyFinder,
	logger *zap.Logger,
) *PropertyResolver {
	return &PropertyResolver{
		sessions:    sessions,
		blacklist:   blacklist,
		users:       users,
		memberships: memberships,
		properties:  properties,
		logger:      logger,
	}
}

// ResolveSession maps a session token to its AuthContext.
//
// A missing, invalid, expired or revoked session, an unknown or inactive
// user, and a user with no membership all fail with Unauthenticated. A
// valid session whose membership or property is inactive or gone fails
// with PropertyNotFound.
func (r *PropertyResolver) ResolveSession(ctx context.Context, token string) (AuthContext, error) {
	if token == "" {
		return AuthContext{}, shared.ErrUnauthenticated
	}

	claims, err := r.sessions.Validate(token)
	if err != nil {
		r.logger.Debug("Session rejected", zap.Error(err))
		return AuthContext{}, shared.ErrUnauthenticated
	}
	userID, err := claims.UserUUID()
	if err != nil {
		return AuthContext{}, shared.ErrUnauthenticated
	}

	if err := r.checkRevoked(ctx, claims); err != nil {
		return AuthContext{}, err
	}

	user, err := r.users.FindByID(ctx, userID)
	if err != nil {
		if isMiss(err) {
			return AuthContext{}, shared.ErrUnauthenticated
		}
		return AuthContext{}, storeFailure("load user", err)
	}
	if !user.IsActive {
		return AuthContext{}, shared.ErrUnauthenticated
	}

	ac := AuthContext{
		UserID:     user.ID,
		Email:      user.Email,
		SuperAdmin: user.IsSuperAdmin,
		SessionID:  claims.ID,
		IssuedAt:   claims.IssuedAtTime(),
	}
	if claims.ExpiresAt != nil {
		ac.ExpiresAt = claims.ExpiresAt.Time
	}

	m, err := r.memberships.FindByUserID(ctx, user.ID)
	if err != nil {
		if !isMiss(err) {
			return AuthContext{}, storeFailure("load membership", err)
		}
		if user.IsSuperAdmin {
			return ac, nil
		}
		return AuthContext{}, shared.ErrUnauthenticated
	}
	if !m.IsActive {
		return AuthContext{}, shared.ErrPropertyNotFound
	}

	p, err := r.properties.FindByID(ctx, m.TenantID)
	if err != nil {
		if isMiss(err) {
			r.logger.Warn("Membership points at a missing property",
				zap.String("user_id", user.ID.String()),
				zap.String("tenant_id", m.TenantID.String()),
			)
			return AuthContext{}, shared.ErrPropertyNotFound
		}
		return AuthContext{}, storeFailure("load property", err)
	}
	if !p.IsActive {
		return AuthContext{}, shared.ErrPropertyNotFound
	}

	ac.PropertyID = p.ID
	ac.Property = p
	ac.Role = m.Role
	return ac, nil
}

func (r *PropertyResolver) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	if r.blacklist == nil {
		return nil
	}
	if claims.ID != "" {
		revoked, err := r.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			return storeFailure("check session revocation", err)
		}
		if revoked {
			return shared.ErrUnauthenticated
		}
	}
	invalidated, err := r.blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.IssuedAtTime())
	if err != nil {
		return storeFailure("check session revocation", err)
	}
	if invalidated {
		return shared.ErrUnauthenticated
	}
	return nil
}
