package models

import "github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/inbox"

// MessageModel is the persistence model for inbox messages
type MessageModel struct {
	TenantModel
	Channel    string `gorm:"type:varchar(20);not null"`
	GuestName  string `gorm:"type:varchar(200)"`
	GuestEmail string `gorm:"type:varchar(200)"`
	Subject    string `gorm:"type:varchar(300)"`
	Body       string `gorm:"type:text;not null"`
	Status     string `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (MessageModel) TableName() string {
	return "inbox_messages"
}

// ToDomain converts the model to a domain Message
func (m *MessageModel) ToDomain() *inbox.Message {
	return &inbox.Message{
		TenantEntity: m.ToTenantEntity(),
		Channel:      inbox.Channel(m.Channel),
		GuestName:    m.GuestName,
		GuestEmail:   m.GuestEmail,
		Subject:      m.Subject,
		Body:         m.Body,
		Status:       inbox.Status(m.Status),
	}
}

// MessageModelFromDomain creates a persistence model from a domain Message
func MessageModelFromDomain(d *inbox.Message) *MessageModel {
	m := &MessageModel{
		Channel:    string(d.Channel),
		GuestName:  d.GuestName,
		GuestEmail: d.GuestEmail,
		Subject:    d.Subject,
		Body:       d.Body,
		Status:     string(d.Status),
	}
	m.FromDomainTenantEntity(d.TenantEntity)
	return m
}
