package persistence

import (
	"context"
	"testing"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/inbox"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormMessageRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormMessageRepository(db)
	ctx := context.Background()

	tenantA, tenantB := uuid.New(), uuid.New()
	var first *inbox.Message
	for i, subject := range []string{"Late check-in", "Parking", "Breakfast"} {
		m, err := inbox.NewMessage(tenantA, inbox.ChannelWebForm, "Guest", "guest@example.com", subject, "Hello there")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, m))
		if i == 0 {
			first = m
		}
	}
	other, err := inbox.NewMessage(tenantB, inbox.ChannelEmail, "", "", "Other", "Other body")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, other))

	t.Run("list is scoped and paged", func(t *testing.T) {
		page, err := repo.List(ctx, tenantA, shared.Filter{Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		assert.Len(t, page.Items, 2)
		for _, m := range page.Items {
			assert.Equal(t, tenantA, m.TenantID)
		}
	})

	t.Run("search matches subject", func(t *testing.T) {
		page, err := repo.List(ctx, tenantA, shared.Filter{Search: "parking"})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "Parking", page.Items[0].Subject)
	})

	t.Run("cross-tenant read is not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, tenantB, first.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("update status", func(t *testing.T) {
		require.NoError(t, first.SetStatus(inbox.StatusRead))
		require.NoError(t, repo.Update(ctx, first))

		found, err := repo.FindByID(ctx, tenantA, first.ID)
		require.NoError(t, err)
		assert.Equal(t, inbox.StatusRead, found.Status)

		page, err := repo.List(ctx, tenantA, shared.Filter{Status: "new"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
	})

	t.Run("update in another property is not found", func(t *testing.T) {
		moved := *first
		moved.TenantID = tenantB
		assert.ErrorIs(t, repo.Update(ctx, &moved), shared.ErrNotFound)
	})

	t.Run("count", func(t *testing.T) {
		count, err := repo.CountByTenant(ctx, tenantA)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}
