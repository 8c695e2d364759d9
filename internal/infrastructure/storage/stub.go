package storage

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	mediaapp "github.com/fmancini-create/HotelAccelerator-sub003/internal/application/media"
)

// StubObjectStorage is an in-process stand-in used when no bucket is
// configured. A presigned upload counts as completed with the declared size,
// which keeps the upload flow usable in development.
type StubObjectStorage struct {
	// BaseURL prefixes generated upload URLs
	BaseURL string

	mu      sync.Mutex
	objects map[string]mediaapp.ObjectInfo
}

// NewStubObjectStorage creates a new StubObjectStorage
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{
		BaseURL: "http://storage.localhost",
		objects: make(map[string]mediaapp.ObjectInfo),
	}
}

var _ mediaapp.ObjectStorage = (*StubObjectStorage)(nil)

// PresignUpload records the object and returns a fake URL
func (s *StubObjectStorage) PresignUpload(
	_ context.Context,
	key, contentType string,
	size int64,
	expiresIn time.Duration,
) (mediaapp.PresignedUpload, error) {
	if key == "" {
		return mediaapp.PresignedUpload{}, errors.New("storage key is required")
	}

	s.mu.Lock()
	s.objects[key] = mediaapp.ObjectInfo{Size: size, ContentType: contentType}
	s.mu.Unlock()

	expiresAt := time.Now().Add(expiresIn)
	return mediaapp.PresignedUpload{
		URL:       s.BaseURL + "/upload/" + url.PathEscape(key) + "?expires=" + expiresAt.UTC().Format(time.RFC3339),
		Method:    "PUT",
		Headers:   map[string]string{"Content-Type": contentType},
		ExpiresAt: expiresAt,
	}, nil
}

// StatObject returns what PresignUpload recorded
func (s *StubObjectStorage) StatObject(_ context.Context, key string) (mediaapp.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.objects[key]
	if !ok {
		return mediaapp.ObjectInfo{}, mediaapp.ErrObjectNotFound
	}
	return info, nil
}

// DeleteObject forgets the object
func (s *StubObjectStorage) DeleteObject(_ context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}
