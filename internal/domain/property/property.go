package property

import (
	"regexp"
	"strings"
	"time"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// Plan is the subscription plan of a property
type Plan string

const (
	PlanFree       Plan = "free"
	PlanStarter    Plan = "starter"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// IsValid reports whether p is a known plan
func (p Plan) IsValid() bool {
	switch p {
	case PlanFree, PlanStarter, PlanPro, PlanEnterprise:
		return true
	}
	return false
}

// SubscriptionStatus mirrors the billing provider's subscription state
type SubscriptionStatus string

const (
	SubscriptionTrialing SubscriptionStatus = "trialing"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// IsValid reports whether s is a known subscription status
func (s SubscriptionStatus) IsValid() bool {
	switch s {
	case SubscriptionTrialing, SubscriptionActive, SubscriptionPastDue, SubscriptionCanceled:
		return true
	}
	return false
}

// DomainStatus is the verification state of a custom domain
type DomainStatus string

const (
	DomainStatusNone     DomainStatus = "none"
	DomainStatusPending  DomainStatus = "pending"
	DomainStatusVerified DomainStatus = "verified"
	DomainStatusFailed   DomainStatus = "failed"
)

// Features are the per-property product switches
type Features struct {
	FrontendEnabled bool
	InboxEnabled    bool
	CMSEnabled      bool
}

// DefaultFeatures returns the switches a new property starts with
func DefaultFeatures() Features {
	return Features{
		FrontendEnabled: true,
		InboxEnabled:    true,
		CMSEnabled:      true,
	}
}

var (
	slugPattern     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	dnsLabelPattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?$`)
)

// reservedSubdomains never identify a property
var reservedSubdomains = map[string]bool{
	"www":   true,
	"api":   true,
	"admin": true,
	"app":   true,
}

// Property is a hotel account: the tenant every request is bound to.
type Property struct {
	shared.BaseAggregateRoot
	Name                     string
	Slug                     string
	Subdomain                string
	CustomDomain             string
	DomainVerificationToken  string
	DomainVerificationStatus DomainStatus
	DomainVerifiedAt         *time.Time
	DomainLastCheckedAt      *time.Time
	DomainLastError          string
	Features                 Features
	Plan                     Plan
	SubscriptionStatus       SubscriptionStatus
	IsActive                 bool
}

// NewProperty creates a new active property on the free plan
func NewProperty(name, slug string) (*Property, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Property name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Property name cannot exceed 200 characters")
	}
	slug = strings.ToLower(strings.TrimSpace(slug))
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}

	p := &Property{
		BaseAggregateRoot:        shared.NewBaseAggregateRoot(),
		Name:                     name,
		Slug:                     slug,
		DomainVerificationStatus: DomainStatusNone,
		Features:                 DefaultFeatures(),
		Plan:                     PlanFree,
		SubscriptionStatus:       SubscriptionTrialing,
		IsActive:                 true,
	}
	p.AddDomainEvent(NewPropertyCreatedEvent(p))
	return p, nil
}

// ValidateSlug checks the url-safe slug format
func ValidateSlug(slug string) error {
	if slug == "" || len(slug) > 63 || !slugPattern.MatchString(slug) {
		return shared.NewDomainError("INVALID_SLUG", "Slug must be lowercase letters, digits and single hyphens")
	}
	return nil
}

// ValidateSubdomain checks that label is a usable DNS label
func ValidateSubdomain(label string) error {
	if !dnsLabelPattern.MatchString(label) {
		return shared.NewDomainError("INVALID_SUBDOMAIN", "Subdomain must be a valid DNS label")
	}
	if reservedSubdomains[label] {
		return shared.NewDomainError("INVALID_SUBDOMAIN", "Subdomain is reserved")
	}
	return nil
}

// SetSubdomain assigns the platform subdomain; an empty label clears it
func (p *Property) SetSubdomain(label string) error {
	label = strings.ToLower(strings.TrimSpace(label))
	if label != "" {
		if err := ValidateSubdomain(label); err != nil {
			return err
		}
	}
	p.Subdomain = label
	return nil
}

// RegisterCustomDomain binds a custom domain and issues a fresh verification
// token. Re-registering the current domain keeps its token and state.
func (p *Property) RegisterCustomDomain(domain string) error {
	normalized, err := NormalizeHost(domain)
	if err != nil || !strings.Contains(normalized, ".") {
		return shared.NewDomainError("INVALID_DOMAIN", "Custom domain must be a fully qualified host name")
	}
	if normalized == p.CustomDomain && p.DomainVerificationToken != "" {
		return nil
	}

	previous := p.CustomDomain
	p.CustomDomain = normalized
	p.DomainVerificationToken = NewVerificationToken()
	p.DomainVerificationStatus = DomainStatusPending
	p.DomainVerifiedAt = nil
	p.DomainLastCheckedAt = nil
	p.DomainLastError = ""
	p.AddDomainEvent(NewCustomDomainRegisteredEvent(p, previous))
	return nil
}

// Touch records when the property last changed. Services stamp it from
// their clock before saving.
func (p *Property) Touch(at time.Time) {
	p.UpdatedAt = at
}

// RemoveCustomDomain unbinds the custom domain. The last issued token stays
// on record for audit; registering any domain issues a fresh one.
func (p *Property) RemoveCustomDomain() {
	if p.CustomDomain == "" {
		return
	}
	old := p.CustomDomain
	p.CustomDomain = ""
	p.DomainVerificationStatus = DomainStatusNone
	p.DomainVerifiedAt = nil
	p.DomainLastCheckedAt = nil
	p.DomainLastError = ""
	p.AddDomainEvent(NewCustomDomainRevokedEvent(p, old, "removed"))
}

// HasDomainToVerify reports whether both a domain and a token are present
func (p *Property) HasDomainToVerify() bool {
	return p.CustomDomain != "" && p.DomainVerificationToken != ""
}

// MarkDomainVerified records a successful DNS check at the given time.
// The first success sets DomainVerifiedAt; later successes only advance
// DomainLastCheckedAt. Returns true when the state actually transitioned.
func (p *Property) MarkDomainVerified(at time.Time) bool {
	checked := at
	p.DomainLastCheckedAt = &checked
	p.DomainLastError = ""
	if p.DomainVerificationStatus == DomainStatusVerified && p.DomainVerifiedAt != nil {
		return false
	}

	verified := at
	p.DomainVerificationStatus = DomainStatusVerified
	p.DomainVerifiedAt = &verified
	p.UpdatedAt = at
	p.AddDomainEvent(NewCustomDomainVerifiedEvent(p))
	return true
}

// RevokeDomainVerification drops routing trust after the TXT record vanished
func (p *Property) RevokeDomainVerification(at time.Time, reason string) bool {
	if p.DomainVerificationStatus != DomainStatusVerified {
		return false
	}
	checked := at
	p.DomainVerificationStatus = DomainStatusFailed
	p.DomainVerifiedAt = nil
	p.DomainLastCheckedAt = &checked
	p.DomainLastError = reason
	p.UpdatedAt = at
	p.AddDomainEvent(NewCustomDomainRevokedEvent(p, p.CustomDomain, reason))
	return true
}

// RoutableCustomDomain returns the custom domain only when it is verified
func (p *Property) RoutableCustomDomain() (string, bool) {
	if p.CustomDomain == "" || p.DomainVerificationStatus != DomainStatusVerified {
		return "", false
	}
	return p.CustomDomain, true
}

// SetFeatures replaces the feature switches
func (p *Property) SetFeatures(f Features) {
	if p.Features == f {
		return
	}
	old := p.Features
	p.Features = f
	p.AddDomainEvent(NewPropertyFeaturesChangedEvent(p, old))
}

// SetPlan changes the subscription plan
func (p *Property) SetPlan(plan Plan) error {
	if !plan.IsValid() {
		return shared.NewDomainError("INVALID_PLAN", "Unknown plan")
	}
	if p.Plan == plan {
		return nil
	}
	old := p.Plan
	p.Plan = plan
	p.AddDomainEvent(NewPropertyPlanChangedEvent(p, old))
	return nil
}

// SetSubscriptionStatus records the billing state
func (p *Property) SetSubscriptionStatus(status SubscriptionStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_SUBSCRIPTION_STATUS", "Unknown subscription status")
	}
	p.SubscriptionStatus = status
	return nil
}

// Deactivate soft-deletes the property. Historic data stays in place.
func (p *Property) Deactivate() error {
	if !p.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Property is already inactive")
	}
	p.IsActive = false
	p.AddDomainEvent(NewPropertyDeactivatedEvent(p))
	return nil
}

// Reactivate undoes Deactivate
func (p *Property) Reactivate() error {
	if p.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Property is already active")
	}
	p.IsActive = true
	p.AddDomainEvent(NewPropertyReactivatedEvent(p))
	return nil
}

// NewVerificationToken returns a random token for the DNS TXT record
func NewVerificationToken() string {
	return TokenPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// TokenPrefix marks TXT values issued by the platform
const TokenPrefix = "hotelaccel-verify-"
