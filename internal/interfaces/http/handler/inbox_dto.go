package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/application/media"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/inbox"
	domainmedia "github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/media"
)

// GuestMessageRequest is the public contact form
type GuestMessageRequest struct {
	Name    string `json:"name" binding:"max=200"`
	Email   string `json:"email" binding:"required,email,max=254"`
	Subject string `json:"subject" binding:"max=300"`
	Body    string `json:"body" binding:"required,max=10000"`
}

// UpdateMessageStatusRequest triages a message
type UpdateMessageStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=new read archived"`
}

// MessageResponse is one inbox message
type MessageResponse struct {
	ID         uuid.UUID `json:"id"`
	Channel    string    `json:"channel"`
	GuestName  string    `json:"guest_name,omitempty"`
	GuestEmail string    `json:"guest_email"`
	Subject    string    `json:"subject,omitempty"`
	Body       string    `json:"body"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MessageReceipt acknowledges a guest submission without echoing it
type MessageReceipt struct {
	ID         uuid.UUID `json:"id"`
	ReceivedAt time.Time `json:"received_at"`
}

// RequestUploadRequest declares the file a client wants to upload
type RequestUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required,max=100"`
	Size        int64  `json:"size" binding:"required,gt=0"`
}

// StorageObjectResponse is one uploaded or pending object
type StorageObjectResponse struct {
	ID          uuid.UUID `json:"id"`
	Key         string    `json:"key"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// UploadTicketResponse carries the presigned URL for the client
type UploadTicketResponse struct {
	Object StorageObjectResponse `json:"object"`
	Upload media.PresignedUpload `json:"upload"`
}

func toMessageResponse(m *inbox.Message) MessageResponse {
	return MessageResponse{
		ID:         m.ID,
		Channel:    string(m.Channel),
		GuestName:  m.GuestName,
		GuestEmail: m.GuestEmail,
		Subject:    m.Subject,
		Body:       m.Body,
		Status:     string(m.Status),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func toStorageObjectResponse(o *domainmedia.StorageObject) StorageObjectResponse {
	return StorageObjectResponse{
		ID:          o.ID,
		Key:         o.Key,
		FileName:    o.FileName,
		ContentType: o.ContentType,
		SizeBytes:   o.SizeBytes,
		Status:      string(o.Status),
		CreatedAt:   o.CreatedAt,
	}
}
