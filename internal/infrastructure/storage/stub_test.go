package storage

import (
	"context"
	"testing"
	"time"

	mediaapp "github.com/fmancini-create/HotelAccelerator-sub003/internal/application/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubObjectStorage_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewStubObjectStorage()

	_, err := s.StatObject(ctx, "a/b.png")
	assert.ErrorIs(t, err, mediaapp.ErrObjectNotFound)

	up, err := s.PresignUpload(ctx, "a/b.png", "image/png", 512, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "PUT", up.Method)
	assert.Contains(t, up.URL, "http://storage.localhost/upload/a%2Fb.png?expires=")
	assert.Equal(t, "image/png", up.Headers["Content-Type"])

	info, err := s.StatObject(ctx, "a/b.png")
	require.NoError(t, err)
	assert.Equal(t, int64(512), info.Size)

	require.NoError(t, s.DeleteObject(ctx, "a/b.png"))
	_, err = s.StatObject(ctx, "a/b.png")
	assert.ErrorIs(t, err, mediaapp.ErrObjectNotFound)
}

func TestStubObjectStorage_EmptyKey(t *testing.T) {
	s := NewStubObjectStorage()
	_, err := s.PresignUpload(context.Background(), "", "image/png", 1, time.Minute)
	assert.Error(t, err)
	assert.Error(t, s.DeleteObject(context.Background(), ""))
}
