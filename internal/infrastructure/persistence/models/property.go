package models

import (
	"time"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/property"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
)

// PropertyModel is the persistence model for the Property aggregate.
// Subdomain and CustomDomain are NULL when unset so their unique indexes
// only constrain real values.
type PropertyModel struct {
	BaseModel
	Version                  int        `gorm:"not null"`
	Name                     string     `gorm:"type:varchar(200);not null"`
	Slug                     string     `gorm:"type:varchar(63);not null;uniqueIndex"`
	Subdomain                *string    `gorm:"type:varchar(63);uniqueIndex"`
	CustomDomain             *string    `gorm:"type:varchar(253);uniqueIndex"`
	DomainVerificationToken  string     `gorm:"type:varchar(80)"`
	DomainVerificationStatus string     `gorm:"type:varchar(20);not null"`
	DomainVerifiedAt         *time.Time
	DomainLastCheckedAt      *time.Time
	DomainLastError          string `gorm:"type:text"`
	FrontendEnabled          bool   `gorm:"not null"`
	InboxEnabled             bool   `gorm:"not null"`
	CMSEnabled               bool   `gorm:"column:cms_enabled;not null"`
	Plan                     string `gorm:"type:varchar(20);not null"`
	SubscriptionStatus       string `gorm:"type:varchar(20);not null"`
	IsActive                 bool   `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (PropertyModel) TableName() string {
	return "properties"
}

// ToDomain converts the model to a domain Property
func (m *PropertyModel) ToDomain() *property.Property {
	return &property.Property{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		Name:                     m.Name,
		Slug:                     m.Slug,
		Subdomain:                deref(m.Subdomain),
		CustomDomain:             deref(m.CustomDomain),
		DomainVerificationToken:  m.DomainVerificationToken,
		DomainVerificationStatus: property.DomainStatus(m.DomainVerificationStatus),
		DomainVerifiedAt:         m.DomainVerifiedAt,
		DomainLastCheckedAt:      m.DomainLastCheckedAt,
		DomainLastError:          m.DomainLastError,
		Features: property.Features{
			FrontendEnabled: m.FrontendEnabled,
			InboxEnabled:    m.InboxEnabled,
			CMSEnabled:      m.CMSEnabled,
		},
		Plan:               property.Plan(m.Plan),
		SubscriptionStatus: property.SubscriptionStatus(m.SubscriptionStatus),
		IsActive:           m.IsActive,
	}
}

// PropertyModelFromDomain creates a persistence model from a domain Property
func PropertyModelFromDomain(p *property.Property) *PropertyModel {
	m := &PropertyModel{
		Version:                  p.Version,
		Name:                     p.Name,
		Slug:                     p.Slug,
		Subdomain:                nullable(p.Subdomain),
		CustomDomain:             nullable(p.CustomDomain),
		DomainVerificationToken:  p.DomainVerificationToken,
		DomainVerificationStatus: string(p.DomainVerificationStatus),
		DomainVerifiedAt:         p.DomainVerifiedAt,
		DomainLastCheckedAt:      p.DomainLastCheckedAt,
		DomainLastError:          p.DomainLastError,
		FrontendEnabled:          p.Features.FrontendEnabled,
		InboxEnabled:             p.Features.InboxEnabled,
		CMSEnabled:               p.Features.CMSEnabled,
		Plan:                     string(p.Plan),
		SubscriptionStatus:       string(p.SubscriptionStatus),
		IsActive:                 p.IsActive,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}
