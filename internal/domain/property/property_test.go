package property

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProperty(t *testing.T) *Property {
	t.Helper()
	p, err := NewProperty("Hotel Acme", "acme")
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func TestNewProperty(t *testing.T) {
	t.Run("creates active property with defaults", func(t *testing.T) {
		p, err := NewProperty("  Hotel Acme ", "Acme")

		require.NoError(t, err)
		assert.Equal(t, "Hotel Acme", p.Name)
		assert.Equal(t, "acme", p.Slug)
		assert.Equal(t, PlanFree, p.Plan)
		assert.Equal(t, SubscriptionTrialing, p.SubscriptionStatus)
		assert.Equal(t, DomainStatusNone, p.DomainVerificationStatus)
		assert.True(t, p.IsActive)
		assert.True(t, p.Features.FrontendEnabled)

		events := p.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypePropertyCreated, events[0].EventType())
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewProperty("   ", "acme")
		require.Error(t, err)
	})

	t.Run("rejects invalid slugs", func(t *testing.T) {
		for _, slug := range []string{"", "acme hotel", "-acme", "acme--hotel", "acme_hotel", strings.Repeat("a", 64)} {
			_, err := NewProperty("Hotel", slug)
			assert.Error(t, err, "slug %q", slug)
		}
	})
}

func TestProperty_SetSubdomain(t *testing.T) {
	p := newTestProperty(t)

	require.NoError(t, p.SetSubdomain("Acme"))
	assert.Equal(t, "acme", p.Subdomain)

	assert.Error(t, p.SetSubdomain("www"))
	assert.Error(t, p.SetSubdomain("bad.label"))
	assert.Error(t, p.SetSubdomain("-bad"))

	require.NoError(t, p.SetSubdomain(""))
	assert.Empty(t, p.Subdomain)
}

func TestProperty_RegisterCustomDomain(t *testing.T) {
	t.Run("issues token and sets pending", func(t *testing.T) {
		p := newTestProperty(t)

		require.NoError(t, p.RegisterCustomDomain("WWW.AcmeHotel.com."))

		assert.Equal(t, "www.acmehotel.com", p.CustomDomain)
		assert.True(t, strings.HasPrefix(p.DomainVerificationToken, TokenPrefix))
		assert.Len(t, p.DomainVerificationToken, len(TokenPrefix)+32)
		assert.Equal(t, DomainStatusPending, p.DomainVerificationStatus)
		_, routable := p.RoutableCustomDomain()
		assert.False(t, routable)
		require.Len(t, p.GetDomainEvents(), 1)
	})

	t.Run("re-registering same domain keeps token", func(t *testing.T) {
		p := newTestProperty(t)
		require.NoError(t, p.RegisterCustomDomain("acmehotel.com"))
		token := p.DomainVerificationToken

		require.NoError(t, p.RegisterCustomDomain("acmehotel.com"))
		assert.Equal(t, token, p.DomainVerificationToken)
	})

	t.Run("changing domain resets verification", func(t *testing.T) {
		p := newTestProperty(t)
		require.NoError(t, p.RegisterCustomDomain("acmehotel.com"))
		p.MarkDomainVerified(time.Now())
		token := p.DomainVerificationToken

		require.NoError(t, p.RegisterCustomDomain("acme-resort.com"))
		assert.NotEqual(t, token, p.DomainVerificationToken)
		assert.Equal(t, DomainStatusPending, p.DomainVerificationStatus)
		assert.Nil(t, p.DomainVerifiedAt)
	})

	t.Run("rejects bare labels", func(t *testing.T) {
		p := newTestProperty(t)
		assert.Error(t, p.RegisterCustomDomain("localhost"))
		assert.Error(t, p.RegisterCustomDomain(""))
	})
}

func TestProperty_MarkDomainVerified(t *testing.T) {
	p := newTestProperty(t)
	require.NoError(t, p.RegisterCustomDomain("acmehotel.com"))
	p.ClearDomainEvents()

	first := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	assert.True(t, p.MarkDomainVerified(first))
	assert.False(t, p.MarkDomainVerified(second))

	assert.Equal(t, DomainStatusVerified, p.DomainVerificationStatus)
	require.NotNil(t, p.DomainVerifiedAt)
	assert.Equal(t, first, *p.DomainVerifiedAt, "first verification time is kept")
	require.NotNil(t, p.DomainLastCheckedAt)
	assert.Equal(t, second, *p.DomainLastCheckedAt)
	assert.Equal(t, first, p.UpdatedAt, "stamped with the check time")

	events := p.GetDomainEvents()
	require.Len(t, events, 1, "no duplicate verified event")
	assert.Equal(t, EventTypeCustomDomainVerified, events[0].EventType())

	domain, ok := p.RoutableCustomDomain()
	assert.True(t, ok)
	assert.Equal(t, "acmehotel.com", domain)
}

func TestProperty_RevokeDomainVerification(t *testing.T) {
	p := newTestProperty(t)
	assert.False(t, p.RevokeDomainVerification(time.Now(), "gone"), "nothing to revoke")

	require.NoError(t, p.RegisterCustomDomain("acmehotel.com"))
	p.MarkDomainVerified(time.Now())
	p.ClearDomainEvents()

	assert.True(t, p.RevokeDomainVerification(time.Now(), "token missing"))
	assert.Equal(t, DomainStatusFailed, p.DomainVerificationStatus)
	assert.Equal(t, "token missing", p.DomainLastError)
	_, ok := p.RoutableCustomDomain()
	assert.False(t, ok)

	events := p.GetDomainEvents()
	require.Len(t, events, 1)
	revoked, ok := events[0].(*CustomDomainRevokedEvent)
	require.True(t, ok)
	assert.Equal(t, "acmehotel.com", revoked.Snapshot().CustomDomain)
}

func TestProperty_RemoveCustomDomain(t *testing.T) {
	p := newTestProperty(t)
	require.NoError(t, p.RegisterCustomDomain("acmehotel.com"))
	p.MarkDomainVerified(time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC))
	token := p.DomainVerificationToken
	p.ClearDomainEvents()

	p.RemoveCustomDomain()
	assert.Empty(t, p.CustomDomain)
	assert.Equal(t, DomainStatusNone, p.DomainVerificationStatus)
	assert.Nil(t, p.DomainVerifiedAt)
	assert.Equal(t, token, p.DomainVerificationToken, "token kept for audit")
	assert.False(t, p.HasDomainToVerify())
	require.Len(t, p.GetDomainEvents(), 1)

	// a new registration never reuses the old token
	require.NoError(t, p.RegisterCustomDomain("acmehotel.com"))
	assert.NotEqual(t, token, p.DomainVerificationToken)
	assert.Equal(t, DomainStatusPending, p.DomainVerificationStatus)
}

func TestProperty_Lifecycle(t *testing.T) {
	p := newTestProperty(t)

	require.NoError(t, p.Deactivate())
	assert.False(t, p.IsActive)
	assert.Error(t, p.Deactivate())

	require.NoError(t, p.Reactivate())
	assert.True(t, p.IsActive)

	require.NoError(t, p.SetPlan(PlanPro))
	assert.Equal(t, PlanPro, p.Plan)
	err := p.SetPlan(Plan("gold"))
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INVALID_PLAN", domainErr.Code)

	p.ClearDomainEvents()
	p.SetFeatures(Features{FrontendEnabled: false, InboxEnabled: true})
	p.SetFeatures(Features{FrontendEnabled: false, InboxEnabled: true})
	assert.Len(t, p.GetDomainEvents(), 1, "unchanged features raise nothing")
}
