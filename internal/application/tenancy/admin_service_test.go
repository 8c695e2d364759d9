package tenancy

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/property"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAdminService(repo *memoryPropertyRepo, pub *recordingPublisher) *AdminService {
	return NewAdminService(repo, pub, ResolverConfig{RootDomain: testRoot, DevRootDomains: []string{"localhost"}}, zap.NewNop())
}

func TestAdminService_CreateProperty(t *testing.T) {
	repo := newMemoryPropertyRepo()
	pub := &recordingPublisher{}
	svc := newTestAdminService(repo, pub)

	p, err := svc.CreateProperty(context.Background(), CreatePropertyInput{
		Name:      "Acme Hotel",
		Slug:      "acme",
		Subdomain: "acme",
		Plan:      property.PlanPro,
	})
	require.NoError(t, err)
	assert.Equal(t, "acme", p.Subdomain)
	assert.Equal(t, property.PlanPro, p.Plan)
	assert.True(t, p.IsActive)
	assert.Equal(t, 1, repo.saves)
	assert.Equal(t, []string{property.EventTypePropertyCreated}, pub.types())

	t.Run("duplicate slug", func(t *testing.T) {
		_, err := svc.CreateProperty(context.Background(), CreatePropertyInput{Name: "Other", Slug: "acme"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("duplicate subdomain", func(t *testing.T) {
		_, err := svc.CreateProperty(context.Background(), CreatePropertyInput{Name: "Other", Slug: "other", Subdomain: "acme"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("reserved subdomain", func(t *testing.T) {
		_, err := svc.CreateProperty(context.Background(), CreatePropertyInput{Name: "Other", Slug: "other", Subdomain: "www"})
		assert.Error(t, err)
	})

	t.Run("unknown plan", func(t *testing.T) {
		_, err := svc.CreateProperty(context.Background(), CreatePropertyInput{Name: "Other", Slug: "other", Plan: "platinum"})
		assert.Error(t, err)
	})
}

func TestAdminService_RegisterCustomDomain(t *testing.T) {
	acme := newTestProperty(t, "acme")
	taken := newTestProperty(t, "taken")
	require.NoError(t, taken.RegisterCustomDomain("taken.example"))
	repo := newMemoryPropertyRepo(acme, taken)
	pub := &recordingPublisher{}
	svc := newTestAdminService(repo, pub)

	instr, err := svc.RegisterCustomDomain(context.Background(), acme.ID, "WWW.AcmeHotel.com")
	require.NoError(t, err)
	assert.Equal(t, "www.acmehotel.com", instr.Domain)
	assert.Equal(t, "TXT", instr.RecordType)
	assert.Equal(t, "www.acmehotel.com", instr.RecordName)
	assert.True(t, strings.HasPrefix(instr.Value, property.TokenPrefix))
	assert.Equal(t, property.DomainStatusPending, instr.Status)
	assert.Equal(t, []string{property.EventTypeCustomDomainRegistered}, pub.types())

	stored := repo.get(acme.ID)
	assert.Equal(t, instr.Value, stored.DomainVerificationToken)
	assert.Equal(t, acme.Version+1, stored.Version)

	t.Run("re-registering keeps the token", func(t *testing.T) {
		again, err := svc.RegisterCustomDomain(context.Background(), acme.ID, "www.acmehotel.com")
		require.NoError(t, err)
		assert.Equal(t, instr.Value, again.Value)
		assert.Len(t, pub.types(), 1)
	})

	t.Run("taken by another property", func(t *testing.T) {
		_, err := svc.RegisterCustomDomain(context.Background(), acme.ID, "taken.example")
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("platform domains refused", func(t *testing.T) {
		for _, d := range []string{"platform.tld", "evil.platform.tld", "acme.localhost"} {
			_, err := svc.RegisterCustomDomain(context.Background(), acme.ID, d)
			var de *shared.DomainError
			require.True(t, errors.As(err, &de), d)
			assert.Equal(t, "INVALID_DOMAIN", de.Code)
		}
	})

	t.Run("unknown property", func(t *testing.T) {
		_, err := svc.RegisterCustomDomain(context.Background(), uuid.New(), "fresh.example")
		assert.ErrorIs(t, err, shared.ErrPropertyNotFound)
	})
}

func TestAdminService_Lifecycle(t *testing.T) {
	acme := newTestProperty(t, "acme")
	repo := newMemoryPropertyRepo(acme)
	pub := &recordingPublisher{}
	svc := newTestAdminService(repo, pub)
	ctx := context.Background()

	p, err := svc.ChangePlan(ctx, acme.ID, property.PlanEnterprise)
	require.NoError(t, err)
	assert.Equal(t, property.PlanEnterprise, p.Plan)

	f := property.DefaultFeatures()
	f.InboxEnabled = !f.InboxEnabled
	p, err = svc.SetFeatures(ctx, acme.ID, f)
	require.NoError(t, err)
	assert.Equal(t, f, p.Features)

	p, err = svc.Deactivate(ctx, acme.ID)
	require.NoError(t, err)
	assert.False(t, p.IsActive)
	assert.False(t, repo.get(acme.ID).IsActive)

	_, err = svc.Reactivate(ctx, acme.ID)
	require.NoError(t, err)
	assert.True(t, repo.get(acme.ID).IsActive)

	assert.Equal(t, []string{
		property.EventTypePropertyPlanChanged,
		property.EventTypePropertyFeaturesChanged,
		property.EventTypePropertyDeactivated,
		property.EventTypePropertyReactivated,
	}, pub.types())

	saves := repo.saves
	_, err = svc.SetFeatures(ctx, acme.ID, f)
	require.NoError(t, err)
	assert.Equal(t, saves, repo.saves, "no-op change is not saved")
}

func TestAdminService_RemoveCustomDomain(t *testing.T) {
	acme := newTestProperty(t, "acme")
	require.NoError(t, acme.RegisterCustomDomain("acme.example"))
	repo := newMemoryPropertyRepo(acme)
	pub := &recordingPublisher{}

	token := acme.DomainVerificationToken

	p, err := newTestAdminService(repo, pub).RemoveCustomDomain(context.Background(), acme.ID)
	require.NoError(t, err)
	assert.Empty(t, p.CustomDomain)
	assert.Equal(t, token, repo.get(acme.ID).DomainVerificationToken)
	assert.Equal(t, property.DomainStatusNone, repo.get(acme.ID).DomainVerificationStatus)
	assert.Equal(t, []string{property.EventTypeCustomDomainRevoked}, pub.types())
}

func TestAdminService_StampsFromClock(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC))
	repo := newMemoryPropertyRepo()
	svc := NewAdminService(repo, &recordingPublisher{}, ResolverConfig{RootDomain: testRoot}, zap.NewNop(), WithAdminClock(mock))
	ctx := context.Background()

	p, err := svc.CreateProperty(ctx, CreatePropertyInput{Name: "Acme Hotel", Slug: "acme"})
	require.NoError(t, err)
	assert.Equal(t, mock.Now(), p.CreatedAt)
	assert.Equal(t, mock.Now(), p.UpdatedAt)

	mock.Add(time.Hour)
	_, err = svc.ChangePlan(ctx, p.ID, property.PlanPro)
	require.NoError(t, err)
	stored := repo.get(p.ID)
	assert.Equal(t, mock.Now(), stored.UpdatedAt)
	assert.Equal(t, p.Version+1, stored.Version)
}

func TestAdminService_StaleWriteIsRejected(t *testing.T) {
	acme := newTestProperty(t, "acme")
	repo := newMemoryPropertyRepo(acme)
	svc := newTestAdminService(repo, &recordingPublisher{})
	ctx := context.Background()

	// another writer moves the row forward behind the service's back
	bumped := repo.get(acme.ID)
	bumped.IncrementVersion()
	require.NoError(t, repo.SaveWithLock(ctx, &bumped))

	stale := *acme
	require.NoError(t, stale.SetPlan(property.PlanPro))
	stale.IncrementVersion()
	assert.ErrorIs(t, repo.SaveWithLock(ctx, &stale), shared.ErrConcurrencyConflict)

	_, err := svc.ChangePlan(ctx, acme.ID, property.PlanPro)
	require.NoError(t, err, "the service reads the current version")
	assert.Equal(t, property.PlanPro, repo.get(acme.ID).Plan)
}

func TestAdminService_SaveFailure(t *testing.T) {
	acme := newTestProperty(t, "acme")
	repo := newMemoryPropertyRepo(acme)
	pub := &recordingPublisher{}
	svc := newTestAdminService(repo, pub)

	repo.saveErr = errors.New("connection reset")
	_, err := svc.ChangePlan(context.Background(), acme.ID, property.PlanPro)
	assert.ErrorIs(t, err, shared.ErrDataStoreFailure)
	assert.Empty(t, pub.types())

	repo.saveErr = shared.ErrAlreadyExists
	_, err = svc.ChangePlan(context.Background(), acme.ID, property.PlanEnterprise)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestAdminService_GetAndList(t *testing.T) {
	a, b := newTestProperty(t, "alpha"), newTestProperty(t, "beta")
	svc := newTestAdminService(newMemoryPropertyRepo(a, b), &recordingPublisher{})

	got, err := svc.GetProperty(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.Slug)

	_, err = svc.GetProperty(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrPropertyNotFound)

	page, err := svc.ListProperties(context.Background(), shared.Filter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
}
