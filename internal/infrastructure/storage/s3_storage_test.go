package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mediaapp "github.com/fmancini-create/HotelAccelerator-sub003/internal/application/media"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStorageConfig(endpoint string) *config.StorageConfig {
	return &config.StorageConfig{
		Endpoint:        endpoint,
		Region:          "eu-west-1",
		Bucket:          "media",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		UsePathStyle:    true,
	}
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		cfg := testStorageConfig("")
		cfg.Bucket = ""
		_, err := NewS3ObjectStorage(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("missing credentials return error", func(t *testing.T) {
		cfg := testStorageConfig("")
		cfg.AccessKeyID = ""
		_, err := NewS3ObjectStorage(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access key is required")

		cfg = testStorageConfig("")
		cfg.SecretAccessKey = ""
		_, err = NewS3ObjectStorage(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret key is required")
	})

	t.Run("default presign expiration is 15 minutes", func(t *testing.T) {
		s, err := NewS3ObjectStorage(testStorageConfig("localhost:9000"))
		require.NoError(t, err)
		assert.Equal(t, "media", s.GetBucket())
		assert.Equal(t, 15*time.Minute, s.presignExpiration)
	})

	t.Run("option overrides expiration", func(t *testing.T) {
		s, err := NewS3ObjectStorage(testStorageConfig(""), WithPresignExpiration(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, time.Minute, s.presignExpiration)
	})
}

func TestS3ObjectStorage_PresignUpload(t *testing.T) {
	s, err := NewS3ObjectStorage(testStorageConfig("http://127.0.0.1:9000"))
	require.NoError(t, err)

	up, err := s.PresignUpload(context.Background(), "properties/p1/media/o1/logo.png", "image/png", 2048, 5*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, up.Method)
	assert.True(t, strings.HasPrefix(up.URL, "http://127.0.0.1:9000/media/properties/p1/media/o1/logo.png?"))
	assert.Contains(t, up.URL, "X-Amz-Signature=")
	assert.Contains(t, up.URL, "X-Amz-Expires=300")
	assert.NotContains(t, up.Headers, "Host")
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), up.ExpiresAt, 5*time.Second)

	_, err = s.PresignUpload(context.Background(), "", "image/png", 1, time.Minute)
	assert.Error(t, err)
}

func TestS3ObjectStorage_StatObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		switch r.URL.Path {
		case "/media/present.png":
			w.Header().Set("Content-Length", "4096")
			w.Header().Set("Content-Type", "image/png")
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	s, err := NewS3ObjectStorage(testStorageConfig(srv.URL))
	require.NoError(t, err)

	info, err := s.StatObject(context.Background(), "present.png")
	require.NoError(t, err)
	assert.Equal(t, int64(4096), info.Size)
	assert.Equal(t, "image/png", info.ContentType)

	_, err = s.StatObject(context.Background(), "missing.png")
	assert.ErrorIs(t, err, mediaapp.ErrObjectNotFound)
}

func TestS3ObjectStorage_EmptyKeys(t *testing.T) {
	s, err := NewS3ObjectStorage(testStorageConfig(""))
	require.NoError(t, err)

	_, err = s.StatObject(context.Background(), "")
	assert.Error(t, err)
	assert.Error(t, s.DeleteObject(context.Background(), ""))
}
