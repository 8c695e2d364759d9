// Package inbox receives guest messages from public sites and lets staff
// triage them.
package inbox

import (
	"context"
	"errors"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/billing"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/inbox"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/property"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QuotaGate rejects an operation that would push a metric past its ceiling
type QuotaGate interface {
	Require(ctx context.Context, propertyID uuid.UUID, metric billing.Metric, delta int64) error
}

// GuestMessageInput is a contact form submission
type GuestMessageInput struct {
	Name    string
	Email   string
	Subject string
	Body    string
}

// MessageService handles inbox operations
type MessageService struct {
	repo   inbox.Repository
	quota  QuotaGate
	logger *zap.Logger
}

// NewMessageService creates a MessageService
func NewMessageService(repo inbox.Repository, quota QuotaGate, logger *zap.Logger) *MessageService {
	return &MessageService{repo: repo, quota: quota, logger: logger}
}

// SubmitGuestMessage stores a public contact form message for p.
// The property comes from tenant resolution, never from the form.
func (s *MessageService) SubmitGuestMessage(ctx context.Context, p *property.Property, in GuestMessageInput) (*inbox.Message, error) {
	if !p.Features.InboxEnabled {
		return nil, shared.ErrForbidden.WithMessage("This property does not accept messages")
	}
	msg, err := inbox.NewMessage(p.ID, inbox.ChannelWebForm, in.Name, in.Email, in.Subject, in.Body)
	if err != nil {
		return nil, err
	}
	if err := s.quota.Require(ctx, p.ID, billing.MetricMessages, 1); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, shared.NewDataStoreFailure("create message", err)
	}

	s.logger.Info("Guest message received",
		zap.String("tenant_id", p.ID.String()),
		zap.String("message_id", msg.ID.String()))
	return msg, nil
}

// List pages through a property's inbox, newest first
func (s *MessageService) List(ctx context.Context, propertyID uuid.UUID, filter shared.Filter) (shared.Page[inbox.Message], error) {
	filter = filter.Normalize()
	if filter.Status != "" && !inbox.Status(filter.Status).IsValid() {
		return shared.Page[inbox.Message]{}, shared.ErrInvalidInput.WithMessage("Unknown message status")
	}
	page, err := s.repo.List(ctx, propertyID, filter)
	if err != nil {
		return shared.Page[inbox.Message]{}, shared.NewDataStoreFailure("list messages", err)
	}
	return page, nil
}

// UpdateStatus moves one message through triage
func (s *MessageService) UpdateStatus(ctx context.Context, propertyID, messageID uuid.UUID, status inbox.Status) (*inbox.Message, error) {
	msg, err := s.repo.FindByID(ctx, propertyID, messageID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound.WithMessage("Message not found")
		}
		return nil, shared.NewDataStoreFailure("load message", err)
	}
	if err := msg.SetStatus(status); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, msg); err != nil {
		return nil, shared.NewDataStoreFailure("update message", err)
	}
	return msg, nil
}
