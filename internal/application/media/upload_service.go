// Package media issues presigned upload URLs for property media and
// confirms finished uploads against the storage quota.
package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/billing"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/media"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrObjectNotFound is returned by ObjectStorage when nothing is stored at a key
var ErrObjectNotFound = errors.New("object not found")

// PresignedUpload is a time-limited URL the client uploads to directly
type PresignedUpload struct {
	URL       string            `json:"url"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers,omitempty"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// ObjectInfo describes a stored object
type ObjectInfo struct {
	Size        int64
	ContentType string
}

// ObjectStorage is implemented by the S3 adapter and the development stub
type ObjectStorage interface {
	PresignUpload(ctx context.Context, key, contentType string, size int64, expiresIn time.Duration) (PresignedUpload, error)
	StatObject(ctx context.Context, key string) (ObjectInfo, error)
	DeleteObject(ctx context.Context, key string) error
}

// QuotaGate rejects an operation that would push a metric past its ceiling
type QuotaGate interface {
	Require(ctx context.Context, propertyID uuid.UUID, metric billing.Metric, delta int64) error
}

// AllowedContentTypes is the upload whitelist. SVG is excluded because it
// can carry script.
var AllowedContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"image/avif":      true,
	"application/pdf": true,
	"video/mp4":       true,
	"text/plain":      true,
}

// UploadServiceConfig holds upload limits
type UploadServiceConfig struct {
	URLExpiry     time.Duration
	MaxObjectSize int64
}

// DefaultUploadServiceConfig returns the default configuration
func DefaultUploadServiceConfig() UploadServiceConfig {
	return UploadServiceConfig{
		URLExpiry:     15 * time.Minute,
		MaxObjectSize: 50 << 20,
	}
}

// RequestUploadInput describes the file a client wants to upload
type RequestUploadInput struct {
	FileName    string
	ContentType string
	Size        int64
}

// UploadTicket is returned to the client after RequestUpload
type UploadTicket struct {
	Object *media.StorageObject
	Upload PresignedUpload
}

// UploadService handles the two-step presigned upload flow
type UploadService struct {
	repo    media.Repository
	storage ObjectStorage
	quota   QuotaGate
	cfg     UploadServiceConfig
	logger  *zap.Logger
}

// NewUploadService creates an UploadService
func NewUploadService(repo media.Repository, storage ObjectStorage, quota QuotaGate, cfg UploadServiceConfig, logger *zap.Logger) *UploadService {
	def := DefaultUploadServiceConfig()
	if cfg.URLExpiry <= 0 {
		cfg.URLExpiry = def.URLExpiry
	}
	if cfg.MaxObjectSize <= 0 {
		cfg.MaxObjectSize = def.MaxObjectSize
	}
	return &UploadService{repo: repo, storage: storage, quota: quota, cfg: cfg, logger: logger}
}

// RequestUpload checks the storage quota for the declared size, reserves a
// pending object and returns a presigned URL for it.
func (s *UploadService) RequestUpload(ctx context.Context, propertyID uuid.UUID, in RequestUploadInput) (*UploadTicket, error) {
	contentType := normalizeContentType(in.ContentType)
	if !AllowedContentTypes[contentType] {
		return nil, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("Content type %q is not allowed", in.ContentType))
	}
	if in.Size > s.cfg.MaxObjectSize {
		return nil, shared.ErrInvalidInput.
			WithMessage("File is too large").
			WithDetails(map[string]any{"max_size": s.cfg.MaxObjectSize})
	}

	obj, err := media.NewStorageObject(propertyID, in.FileName, contentType, in.Size)
	if err != nil {
		return nil, err
	}
	if err := s.quota.Require(ctx, propertyID, billing.MetricStorageBytes, obj.SizeBytes); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, obj); err != nil {
		return nil, storeFailure("create storage object", err)
	}

	upload, err := s.storage.PresignUpload(ctx, obj.Key, obj.ContentType, obj.SizeBytes, s.cfg.URLExpiry)
	if err != nil {
		s.logger.Error("Failed to presign upload",
			zap.String("tenant_id", propertyID.String()),
			zap.String("key", obj.Key),
			zap.Error(err),
		)
		return nil, shared.ErrUpstreamTimeout.WithMessage("Object storage is unavailable").Wrap(err)
	}

	return &UploadTicket{Object: obj, Upload: upload}, nil
}

// CompleteUpload marks a pending object uploaded. The stored size replaces
// the declared one so the quota counts what actually landed.
func (s *UploadService) CompleteUpload(ctx context.Context, propertyID, objectID uuid.UUID) (*media.StorageObject, error) {
	obj, err := s.repo.FindByID(ctx, propertyID, objectID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound.WithMessage("Upload not found")
		}
		return nil, storeFailure("load storage object", err)
	}
	if obj.Status == media.StatusUploaded {
		return obj, nil
	}

	info, err := s.storage.StatObject(ctx, obj.Key)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, shared.ErrInvalidState.WithMessage("Upload has not reached storage yet")
		}
		return nil, shared.ErrUpstreamTimeout.WithMessage("Object storage is unavailable").Wrap(err)
	}

	if info.Size > obj.SizeBytes {
		// larger than what the quota was checked for
		if err := s.quota.Require(ctx, propertyID, billing.MetricStorageBytes, info.Size); err != nil {
			if delErr := s.storage.DeleteObject(ctx, obj.Key); delErr != nil {
				s.logger.Warn("Failed to delete over-quota object", zap.String("key", obj.Key), zap.Error(delErr))
			}
			return nil, err
		}
	}
	if info.Size > 0 {
		obj.SizeBytes = info.Size
	}
	if err := obj.MarkUploaded(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, obj); err != nil {
		return nil, storeFailure("update storage object", err)
	}

	s.logger.Info("Upload completed",
		zap.String("tenant_id", propertyID.String()),
		zap.String("key", obj.Key),
		zap.Int64("size", obj.SizeBytes),
	)
	return obj, nil
}

func normalizeContentType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

func storeFailure(op string, err error) error {
	if errors.Is(err, shared.ErrDataStoreFailure) {
		return err
	}
	return shared.NewDataStoreFailure(op, err)
}
