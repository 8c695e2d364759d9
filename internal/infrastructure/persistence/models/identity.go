package models

import (
	"time"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/identity"
	"github.com/google/uuid"
)

// UserModel is the persistence model for users
type UserModel struct {
	BaseModel
	Email        string `gorm:"type:varchar(200);not null;uniqueIndex"`
	DisplayName  string `gorm:"type:varchar(200)"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	IsSuperAdmin bool   `gorm:"not null"`
	IsActive     bool   `gorm:"not null"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseEntity:   m.BaseModel.ToDomain(),
		Email:        m.Email,
		DisplayName:  m.DisplayName,
		PasswordHash: m.PasswordHash,
		IsSuperAdmin: m.IsSuperAdmin,
		IsActive:     m.IsActive,
		LastLoginAt:  m.LastLoginAt,
	}
}

// UserModelFromDomain creates a persistence model from a domain User
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Email:        u.Email,
		DisplayName:  u.DisplayName,
		PasswordHash: u.PasswordHash,
		IsSuperAdmin: u.IsSuperAdmin,
		IsActive:     u.IsActive,
		LastLoginAt:  u.LastLoginAt,
	}
	m.FromDomainBaseEntity(u.BaseEntity)
	return m
}

// MembershipModel is the persistence model for memberships.
// The unique index on user_id keeps every user inside one property.
type MembershipModel struct {
	TenantModel
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Role     string    `gorm:"type:varchar(20);not null"`
	IsActive bool      `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MembershipModel) TableName() string {
	return "property_memberships"
}

// ToDomain converts the model to a domain Membership
func (m *MembershipModel) ToDomain() *identity.Membership {
	return &identity.Membership{
		TenantEntity: m.ToTenantEntity(),
		UserID:       m.UserID,
		Role:         identity.Role(m.Role),
		IsActive:     m.IsActive,
	}
}

// MembershipModelFromDomain creates a persistence model from a domain Membership
func MembershipModelFromDomain(d *identity.Membership) *MembershipModel {
	m := &MembershipModel{
		UserID:   d.UserID,
		Role:     string(d.Role),
		IsActive: d.IsActive,
	}
	m.FromDomainTenantEntity(d.TenantEntity)
	return m
}
