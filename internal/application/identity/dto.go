package identity

import (
	"time"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/identity"
	"github.com/google/uuid"
)

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
	IP       string // Client IP for login tracking
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	Token     string
	SessionID string
	ExpiresAt time.Time
	User      UserInfo
}

// UserInfo contains basic user information
type UserInfo struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	SuperAdmin  bool       `json:"super_admin"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// ToUserInfo converts a domain user
func ToUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		SuperAdmin:  u.IsSuperAdmin,
		LastLoginAt: u.LastLoginAt,
	}
}

// LogoutInput identifies the session to revoke
type LogoutInput struct {
	UserID    uuid.UUID
	SessionID string // JWT ID for blacklisting
	ExpiresAt time.Time
}

// AddMemberInput creates or re-activates a property member
type AddMemberInput struct {
	Email       string
	DisplayName string
	Password    string
	Role        identity.Role
}

// MemberInfo is one membership with its user
type MemberInfo struct {
	UserID      uuid.UUID     `json:"user_id"`
	Email       string        `json:"email"`
	DisplayName string        `json:"display_name"`
	Role        identity.Role `json:"role"`
	IsActive    bool          `json:"is_active"`
	CreatedAt   time.Time     `json:"created_at"`
}
