package property

import (
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
)

// Aggregate type and event type names
const (
	AggregateTypeProperty = "Property"

	EventTypePropertyCreated         = "PropertyCreated"
	EventTypePropertyPlanChanged     = "PropertyPlanChanged"
	EventTypePropertyFeaturesChanged = "PropertyFeaturesChanged"
	EventTypeCustomDomainRegistered  = "CustomDomainRegistered"
	EventTypeCustomDomainVerified    = "CustomDomainVerified"
	EventTypeCustomDomainRevoked     = "CustomDomainRevoked"
	EventTypePropertyDeactivated     = "PropertyDeactivated"
	EventTypePropertyReactivated     = "PropertyReactivated"
)

// RoutingEventTypes lists the events that change how hosts map to properties
var RoutingEventTypes = []string{
	EventTypePropertyFeaturesChanged,
	EventTypeCustomDomainRegistered,
	EventTypeCustomDomainVerified,
	EventTypeCustomDomainRevoked,
	EventTypePropertyDeactivated,
	EventTypePropertyReactivated,
}

// PropertyEvent is implemented by every event raised by the Property aggregate.
// Handlers use the snapshot fields to invalidate host lookups.
type PropertyEvent interface {
	shared.DomainEvent
	Snapshot() RoutingKeys
}

// RoutingKeys are the lookup keys a property is reachable under.
// PreviousCustomDomain is set when an event moved the property off a domain.
type RoutingKeys struct {
	Slug                 string `json:"slug"`
	Subdomain            string `json:"subdomain,omitempty"`
	CustomDomain         string `json:"custom_domain,omitempty"`
	PreviousCustomDomain string `json:"previous_custom_domain,omitempty"`
}

func routingKeysOf(p *Property) RoutingKeys {
	return RoutingKeys{Slug: p.Slug, Subdomain: p.Subdomain, CustomDomain: p.CustomDomain}
}

type propertyEventBase struct {
	shared.BaseDomainEvent
	Keys RoutingKeys `json:"keys"`
}

func (e *propertyEventBase) Snapshot() RoutingKeys { return e.Keys }

func newPropertyEventBase(eventType string, p *Property) propertyEventBase {
	return propertyEventBase{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeProperty, p.ID, p.ID),
		Keys:            routingKeysOf(p),
	}
}

// PropertyCreatedEvent is raised when a super-admin creates a property
type PropertyCreatedEvent struct {
	propertyEventBase
	Name string `json:"name"`
}

func NewPropertyCreatedEvent(p *Property) *PropertyCreatedEvent {
	return &PropertyCreatedEvent{
		propertyEventBase: newPropertyEventBase(EventTypePropertyCreated, p),
		Name:              p.Name,
	}
}

// PropertyPlanChangedEvent is raised when the subscription plan changes
type PropertyPlanChangedEvent struct {
	propertyEventBase
	OldPlan Plan `json:"old_plan"`
	NewPlan Plan `json:"new_plan"`
}

func NewPropertyPlanChangedEvent(p *Property, old Plan) *PropertyPlanChangedEvent {
	return &PropertyPlanChangedEvent{
		propertyEventBase: newPropertyEventBase(EventTypePropertyPlanChanged, p),
		OldPlan:           old,
		NewPlan:           p.Plan,
	}
}

// PropertyFeaturesChangedEvent is raised when feature switches change
type PropertyFeaturesChangedEvent struct {
	propertyEventBase
	Old Features `json:"old"`
	New Features `json:"new"`
}

func NewPropertyFeaturesChangedEvent(p *Property, old Features) *PropertyFeaturesChangedEvent {
	return &PropertyFeaturesChangedEvent{
		propertyEventBase: newPropertyEventBase(EventTypePropertyFeaturesChanged, p),
		Old:               old,
		New:               p.Features,
	}
}

// CustomDomainRegisteredEvent is raised when a domain is bound and a token issued
type CustomDomainRegisteredEvent struct {
	propertyEventBase
	Domain string `json:"domain"`
}

func NewCustomDomainRegisteredEvent(p *Property, previous string) *CustomDomainRegisteredEvent {
	e := &CustomDomainRegisteredEvent{
		propertyEventBase: newPropertyEventBase(EventTypeCustomDomainRegistered, p),
		Domain:            p.CustomDomain,
	}
	e.Keys.PreviousCustomDomain = previous
	return e
}

// CustomDomainVerifiedEvent is raised once per successful verification transition
type CustomDomainVerifiedEvent struct {
	propertyEventBase
	Domain string `json:"domain"`
}

func NewCustomDomainVerifiedEvent(p *Property) *CustomDomainVerifiedEvent {
	return &CustomDomainVerifiedEvent{
		propertyEventBase: newPropertyEventBase(EventTypeCustomDomainVerified, p),
		Domain:            p.CustomDomain,
	}
}

// CustomDomainRevokedEvent is raised when a domain loses routing trust
type CustomDomainRevokedEvent struct {
	propertyEventBase
	Domain string `json:"domain"`
	Reason string `json:"reason"`
}

func NewCustomDomainRevokedEvent(p *Property, domain, reason string) *CustomDomainRevokedEvent {
	e := &CustomDomainRevokedEvent{
		propertyEventBase: newPropertyEventBase(EventTypeCustomDomainRevoked, p),
		Domain:            domain,
		Reason:            reason,
	}
	e.Keys.CustomDomain = domain
	return e
}

// PropertyDeactivatedEvent is raised on soft deactivation
type PropertyDeactivatedEvent struct {
	propertyEventBase
}

func NewPropertyDeactivatedEvent(p *Property) *PropertyDeactivatedEvent {
	return &PropertyDeactivatedEvent{propertyEventBase: newPropertyEventBase(EventTypePropertyDeactivated, p)}
}

// PropertyReactivatedEvent is raised when a deactivated property comes back
type PropertyReactivatedEvent struct {
	propertyEventBase
}

func NewPropertyReactivatedEvent(p *Property) *PropertyReactivatedEvent {
	return &PropertyReactivatedEvent{propertyEventBase: newPropertyEventBase(EventTypePropertyReactivated, p)}
}
