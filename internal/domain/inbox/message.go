// Package inbox holds guest messages received by a property.
package inbox

import (
	"context"
	"strings"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// Channel is where a message came from
type Channel string

const (
	ChannelWebForm Channel = "web_form"
	ChannelEmail   Channel = "email"
	ChannelWidget  Channel = "widget"
)

// Status is the triage state of a message
type Status string

const (
	StatusNew      Status = "new"
	StatusRead     Status = "read"
	StatusArchived Status = "archived"
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	return s == StatusNew || s == StatusRead || s == StatusArchived
}

// Message is a guest message stored in a property's inbox
type Message struct {
	shared.TenantEntity
	Channel    Channel
	GuestName  string
	GuestEmail string
	Subject    string
	Body       string
	Status     Status
}

// NewMessage validates and creates a new unread message
func NewMessage(tenantID uuid.UUID, channel Channel, guestName, guestEmail, subject, body string) (*Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, shared.NewDomainError("INVALID_MESSAGE", "Message body cannot be empty")
	}
	if len(body) > 10000 {
		return nil, shared.NewDomainError("INVALID_MESSAGE", "Message body cannot exceed 10000 characters")
	}
	if channel == "" {
		channel = ChannelWebForm
	}
	return &Message{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Channel:      channel,
		GuestName:    strings.TrimSpace(guestName),
		GuestEmail:   strings.ToLower(strings.TrimSpace(guestEmail)),
		Subject:      strings.TrimSpace(subject),
		Body:         body,
		Status:       StatusNew,
	}, nil
}

// SetStatus moves the message through triage
func (m *Message) SetStatus(s Status) error {
	if !s.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown message status")
	}
	m.Status = s
	m.Touch()
	return nil
}

// Repository persists messages. Every method is scoped by tenantID.
type Repository interface {
	Create(ctx context.Context, m *Message) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Message, error)
	List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Page[Message], error)
	Update(ctx context.Context, m *Message) error
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
