// Package media tracks objects a property stores in object storage.
package media

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// Status of an upload
type Status string

const (
	StatusPending  Status = "pending"
	StatusUploaded Status = "uploaded"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// StorageObject is one object in the property's storage prefix.
// Only uploaded objects count against the storage quota.
type StorageObject struct {
	shared.TenantEntity
	Key         string
	FileName    string
	ContentType string
	SizeBytes   int64
	Status      Status
}

// NewStorageObject reserves a key for an upload of sizeBytes
func NewStorageObject(tenantID uuid.UUID, fileName, contentType string, sizeBytes int64) (*StorageObject, error) {
	if sizeBytes <= 0 {
		return nil, shared.NewDomainError("INVALID_SIZE", "Object size must be positive")
	}
	clean := unsafeNameChars.ReplaceAllString(path.Base(strings.TrimSpace(fileName)), "_")
	if clean == "" || clean == "." || clean == "_" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name is required")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	o := &StorageObject{
		TenantEntity: shared.NewTenantEntity(tenantID),
		FileName:     clean,
		ContentType:  contentType,
		SizeBytes:    sizeBytes,
		Status:       StatusPending,
	}
	o.Key = fmt.Sprintf("properties/%s/media/%s/%s", tenantID, o.ID, clean)
	return o, nil
}

// MarkUploaded confirms the client finished the upload
func (o *StorageObject) MarkUploaded() error {
	if o.Status == StatusUploaded {
		return nil
	}
	o.Status = StatusUploaded
	o.Touch()
	return nil
}

// Repository persists storage objects. Every method is scoped by tenantID.
type Repository interface {
	Create(ctx context.Context, o *StorageObject) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*StorageObject, error)
	Update(ctx context.Context, o *StorageObject) error
	SumUploadedBytes(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
