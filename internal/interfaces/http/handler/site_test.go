package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appinbox "github.com/fmancini-create/HotelAccelerator-sub003/internal/application/inbox"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/application/tenancy"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/inbox"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
)

func TestSiteHandler_GetSite(t *testing.T) {
	t.Run("returns the public profile", func(t *testing.T) {
		p := newTestProperty(t)
		router := newTestRouter(t, withResolution(tenancy.Resolution{Kind: tenancy.KindTenant, Property: p}))
		router.GET("/site", NewSiteHandler(new(MockInbox)).GetSite)

		w := doJSON(router, http.MethodGet, "/site", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp PublicSiteResponse
		decodeData(t, w, &resp)
		assert.Equal(t, p.ID, resp.ID)
		assert.Equal(t, "Acme Hotel", resp.Name)
		assert.NotContains(t, w.Body.String(), "subscription_status")
	})

	t.Run("platform binding is tenant not found", func(t *testing.T) {
		router := newTestRouter(t, withResolution(tenancy.Resolution{Kind: tenancy.KindPlatform}))
		router.GET("/site", NewSiteHandler(new(MockInbox)).GetSite)

		w := doJSON(router, http.MethodGet, "/site", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, shared.CodeTenantNotFound, decode(t, w).Error.Code)
	})
}

func TestSiteHandler_SubmitMessage(t *testing.T) {
	p := newTestProperty(t)

	t.Run("stores and acknowledges", func(t *testing.T) {
		inboxMock := new(MockInbox)
		msg := &inbox.Message{}
		msg.ID = uuid.New()
		msg.CreatedAt = time.Now().UTC()
		inboxMock.On("SubmitGuestMessage", mock.Anything, p, appinbox.GuestMessageInput{
			Name: "Ada", Email: "ada@example.com", Body: "Is breakfast included?",
		}).Return(msg, nil)

		router := newTestRouter(t, withResolution(tenancy.Resolution{Kind: tenancy.KindTenant, Property: p}))
		router.POST("/site/messages", NewSiteHandler(inboxMock).SubmitMessage)

		w := doJSON(router, http.MethodPost, "/site/messages", map[string]string{
			"name": "Ada", "email": "ada@example.com", "body": "Is breakfast included?",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var receipt MessageReceipt
		decodeData(t, w, &receipt)
		assert.Equal(t, msg.ID, receipt.ID)
		assert.NotContains(t, w.Body.String(), "breakfast")
		inboxMock.AssertExpectations(t)
	})

	t.Run("missing body is a validation error", func(t *testing.T) {
		inboxMock := new(MockInbox)
		router := newTestRouter(t, withResolution(tenancy.Resolution{Kind: tenancy.KindTenant, Property: p}))
		router.POST("/site/messages", NewSiteHandler(inboxMock).SubmitMessage)

		w := doJSON(router, http.MethodPost, "/site/messages", map[string]string{"email": "ada@example.com"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w)
		require.Len(t, env.Error.Fields, 1)
		assert.Equal(t, "body", env.Error.Fields[0].Field)
		inboxMock.AssertNotCalled(t, "SubmitGuestMessage", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("quota exceeded is 403", func(t *testing.T) {
		inboxMock := new(MockInbox)
		inboxMock.On("SubmitGuestMessage", mock.Anything, p, mock.Anything).Return(nil, shared.ErrQuotaExceeded)

		router := newTestRouter(t, withResolution(tenancy.Resolution{Kind: tenancy.KindTenant, Property: p}))
		router.POST("/site/messages", NewSiteHandler(inboxMock).SubmitMessage)

		w := doJSON(router, http.MethodPost, "/site/messages", map[string]string{
			"email": "ada@example.com", "body": "hello",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, shared.CodeQuotaExceeded, decode(t, w).Error.Code)
	})
}
