// Package identity signs admin users in and out and manages the
// memberships that bind them to a property.
package identity

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/identity"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// SessionIssuer signs session tokens
type SessionIssuer interface {
	Issue(input auth.SessionInput) (*auth.Session, error)
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo  identity.UserRepository
	sessions  SessionIssuer
	blacklist auth.TokenBlacklist
	clock     clock.Clock
	logger    *zap.Logger
}

// NewAuthService creates a new authentication service. blacklist may be
// nil, in which case logout only clears the client cookie.
func NewAuthService(
	userRepo identity.UserRepository,
	sessions SessionIssuer,
	blacklist auth.TokenBlacklist,
	c clock.Clock,
	logger *zap.Logger,
) *AuthService {
	if c == nil {
		c = clock.New()
	}
	return &AuthService{
		userRepo:  userRepo,
		sessions:  sessions,
		blacklist: blacklist,
		clock:     c,
		logger:    logger,
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// burnPasswordCheck spends a bcrypt comparison so unknown emails take as
// long as wrong passwords.
func burnPasswordCheck(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password-1"), identity.PasswordCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// Login authenticates a user and returns a session token
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDataStoreFailure("load user", err)
		}
		burnPasswordCheck(input.Password)
		s.logger.Warn("Login for unknown email", zap.String("ip", input.IP))
		return nil, shared.ErrInvalidCredentials
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt",
			zap.String("user_id", user.ID.String()),
			zap.String("ip", input.IP))
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		s.logger.Warn("Login attempt for deactivated account", zap.String("user_id", user.ID.String()))
		return nil, shared.ErrInvalidCredentials
	}

	session, err := s.sessions.Issue(auth.SessionInput{
		UserID:     user.ID,
		Email:      user.Email,
		SuperAdmin: user.IsSuperAdmin,
	})
	if err != nil {
		s.logger.Error("Failed to issue session", zap.Error(err))
		return nil, err
	}

	user.RecordLogin(s.clock.Now())
	if err := s.userRepo.Save(ctx, user); err != nil {
		// the session is valid; a stale last-login stamp is not worth failing for
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))
	return &LoginResult{
		Token:     session.Token,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
		User:      ToUserInfo(user),
	}, nil
}

// Logout revokes the current session until it would have expired anyway
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if s.blacklist == nil || input.SessionID == "" {
		return nil
	}
	ttl := input.ExpiresAt.Sub(s.clock.Now())
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, input.SessionID, ttl); err != nil {
		s.logger.Error("Failed to revoke session",
			zap.String("user_id", input.UserID.String()),
			zap.Error(err))
		return shared.NewDataStoreFailure("revoke session", err)
	}
	s.logger.Info("User logged out", zap.String("user_id", input.UserID.String()))
	return nil
}

// GetCurrentUser retrieves the signed-in user's information
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthenticated
		}
		return nil, shared.NewDataStoreFailure("load user", err)
	}
	info := ToUserInfo(user)
	return &info, nil
}
