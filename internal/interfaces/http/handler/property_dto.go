package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/application/tenancy"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/billing"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/property"
)

// =====================
// Property Request DTOs
// =====================

// CreatePropertyRequest onboards a hotel
type CreatePropertyRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=200"`
	Slug      string `json:"slug" binding:"required,slug"`
	Subdomain string `json:"subdomain" binding:"omitempty,dnslabel"`
	Plan      string `json:"plan" binding:"omitempty,oneof=free starter pro enterprise"`
}

// ChangePlanRequest moves a property to another plan
type ChangePlanRequest struct {
	Plan string `json:"plan" binding:"required,oneof=free starter pro enterprise"`
}

// SetFeaturesRequest toggles feature switches; omitted switches keep
// their current value
type SetFeaturesRequest struct {
	FrontendEnabled *bool `json:"frontend_enabled"`
	InboxEnabled    *bool `json:"inbox_enabled"`
	CMSEnabled      *bool `json:"cms_enabled"`
}

// Apply merges the request into f
func (r SetFeaturesRequest) Apply(f property.Features) property.Features {
	if r.FrontendEnabled != nil {
		f.FrontendEnabled = *r.FrontendEnabled
	}
	if r.InboxEnabled != nil {
		f.InboxEnabled = *r.InboxEnabled
	}
	if r.CMSEnabled != nil {
		f.CMSEnabled = *r.CMSEnabled
	}
	return f
}

// RegisterDomainRequest binds a custom domain
type RegisterDomainRequest struct {
	Domain string `json:"domain" binding:"required,max=253"`
}

// =====================
// Property Response DTOs
// =====================

// FeaturesResponse mirrors property.Features
type FeaturesResponse struct {
	FrontendEnabled bool `json:"frontend_enabled"`
	InboxEnabled    bool `json:"inbox_enabled"`
	CMSEnabled      bool `json:"cms_enabled"`
}

// DomainResponse describes the custom domain and the TXT record it needs
type DomainResponse struct {
	Domain        string     `json:"domain"`
	Status        string     `json:"status"`
	RecordType    string     `json:"record_type"`
	RecordName    string     `json:"record_name"`
	RecordValue   string     `json:"record_value"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
}

// PropertyResponse is the staff and operator view of a property
type PropertyResponse struct {
	ID                 uuid.UUID        `json:"id"`
	Name               string           `json:"name"`
	Slug               string           `json:"slug"`
	Subdomain          string           `json:"subdomain,omitempty"`
	CustomDomain       *DomainResponse  `json:"custom_domain,omitempty"`
	Plan               string           `json:"plan"`
	SubscriptionStatus string           `json:"subscription_status"`
	Features           FeaturesResponse `json:"features"`
	IsActive           bool             `json:"is_active"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// PublicSiteResponse is what guests see; no operational fields
type PublicSiteResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	InboxEnabled bool      `json:"inbox_enabled"`
}

// VerificationResponse reports a successful domain check
type VerificationResponse struct {
	Domain     string     `json:"domain"`
	Verified   bool       `json:"verified"`
	CheckedAt  time.Time  `json:"checked_at"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
}

// QuotaMetricResponse is one metered resource
type QuotaMetricResponse struct {
	Metric    string  `json:"metric"`
	Usage     int64   `json:"usage"`
	Limit     int64   `json:"limit"`
	Percent   float64 `json:"percent"`
	Status    string  `json:"status"`
	Unlimited bool    `json:"unlimited"`
}

// QuotaResponse is a property's usage against its plan
type QuotaResponse struct {
	Plan         string                `json:"plan"`
	WithinLimits bool                  `json:"within_limits"`
	Metrics      []QuotaMetricResponse `json:"metrics"`
}

func toFeaturesResponse(f property.Features) FeaturesResponse {
	return FeaturesResponse{
		FrontendEnabled: f.FrontendEnabled,
		InboxEnabled:    f.InboxEnabled,
		CMSEnabled:      f.CMSEnabled,
	}
}

func toDomainResponse(p *property.Property) *DomainResponse {
	if p.CustomDomain == "" {
		return nil
	}
	in := tenancy.InstructionsFor(p)
	return &DomainResponse{
		Domain:        in.Domain,
		Status:        string(in.Status),
		RecordType:    in.RecordType,
		RecordName:    in.RecordName,
		RecordValue:   in.Value,
		VerifiedAt:    p.DomainVerifiedAt,
		LastCheckedAt: p.DomainLastCheckedAt,
		LastError:     p.DomainLastError,
	}
}

func toPropertyResponse(p *property.Property) PropertyResponse {
	return PropertyResponse{
		ID:                 p.ID,
		Name:               p.Name,
		Slug:               p.Slug,
		Subdomain:          p.Subdomain,
		CustomDomain:       toDomainResponse(p),
		Plan:               string(p.Plan),
		SubscriptionStatus: string(p.SubscriptionStatus),
		Features:           toFeaturesResponse(p.Features),
		IsActive:           p.IsActive,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func toPublicSiteResponse(p *property.Property) PublicSiteResponse {
	return PublicSiteResponse{
		ID:           p.ID,
		Name:         p.Name,
		Slug:         p.Slug,
		InboxEnabled: p.Features.InboxEnabled,
	}
}

func toDomainInstructionsResponse(in tenancy.DomainInstructions) DomainResponse {
	return DomainResponse{
		Domain:      in.Domain,
		Status:      string(in.Status),
		RecordType:  in.RecordType,
		RecordName:  in.RecordName,
		RecordValue: in.Value,
	}
}

func toQuotaResponse(s billing.Snapshot) QuotaResponse {
	resp := QuotaResponse{
		Plan:         string(s.Plan),
		WithinLimits: s.WithinLimits,
		Metrics:      make([]QuotaMetricResponse, 0, len(billing.AllMetrics)),
	}
	for _, m := range billing.AllMetrics {
		u, ok := s.Metrics[m]
		if !ok {
			continue
		}
		resp.Metrics = append(resp.Metrics, QuotaMetricResponse{
			Metric:    string(u.Metric),
			Usage:     u.Usage,
			Limit:     u.Limit,
			Percent:   u.Percent,
			Status:    string(u.Status),
			Unlimited: u.Unlimited,
		})
	}
	return resp
}
