package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/application/identity"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/application/tenancy"
	domainidentity "github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/identity"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/property"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
)

func newPlatformRouter(t *testing.T, admin *MockPropertyAdmin, members *MockMembers) http.Handler {
	h := NewPlatformHandler(admin, members)
	router := newTestRouter(t, withAuth(tenancy.AuthContext{UserID: uuid.New(), SuperAdmin: true}))
	router.GET("/platform/properties", h.ListProperties)
	router.POST("/platform/properties", h.CreateProperty)
	router.GET("/platform/properties/:id", h.GetProperty)
	router.PATCH("/platform/properties/:id/plan", h.ChangePlan)
	router.PATCH("/platform/properties/:id/features", h.SetFeatures)
	router.POST("/platform/properties/:id/deactivate", h.Deactivate)
	router.POST("/platform/properties/:id/reactivate", h.Reactivate)
	router.POST("/platform/properties/:id/members", h.AddMember)
	router.GET("/platform/properties/:id/members", h.ListMembers)
	router.DELETE("/platform/properties/:id/members/:userId", h.RemoveMember)
	return router
}

func TestPlatformHandler_CreateProperty(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		p := newTestProperty(t)
		admin := new(MockPropertyAdmin)
		admin.On("CreateProperty", mock.Anything, tenancy.CreatePropertyInput{
			Name: "Acme Hotel", Slug: "acme", Subdomain: "acme", Plan: property.PlanStarter,
		}).Return(p, nil)

		w := doJSON(newPlatformRouter(t, admin, new(MockMembers)), http.MethodPost, "/platform/properties", map[string]string{
			"name": "Acme Hotel", "slug": "acme", "subdomain": "acme", "plan": "starter",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp PropertyResponse
		decodeData(t, w, &resp)
		assert.Equal(t, p.ID, resp.ID)
		assert.Nil(t, resp.CustomDomain)
	})

	t.Run("bad slug and subdomain are field errors", func(t *testing.T) {
		admin := new(MockPropertyAdmin)
		w := doJSON(newPlatformRouter(t, admin, new(MockMembers)), http.MethodPost, "/platform/properties", map[string]string{
			"name": "Acme Hotel", "slug": "Acme Hotel", "subdomain": "-acme",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w)
		fields := make([]string, 0, len(env.Error.Fields))
		for _, f := range env.Error.Fields {
			fields = append(fields, f.Field)
		}
		assert.ElementsMatch(t, []string{"slug", "subdomain"}, fields)
		admin.AssertNotCalled(t, "CreateProperty", mock.Anything, mock.Anything)
	})

	t.Run("duplicate slug is a conflict", func(t *testing.T) {
		admin := new(MockPropertyAdmin)
		admin.On("CreateProperty", mock.Anything, mock.Anything).Return(nil, shared.ErrAlreadyExists)

		w := doJSON(newPlatformRouter(t, admin, new(MockMembers)), http.MethodPost, "/platform/properties", map[string]string{
			"name": "Acme Hotel", "slug": "acme",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestPlatformHandler_ListProperties(t *testing.T) {
	p := newTestProperty(t)
	admin := new(MockPropertyAdmin)
	admin.On("ListProperties", mock.Anything, shared.Filter{Page: 1, PageSize: 20, Search: "acme"}).
		Return(shared.Page[property.Property]{Items: []property.Property{*p}, Total: 1, Page: 1, PageSize: 20}, nil)

	w := doJSON(newPlatformRouter(t, admin, new(MockMembers)), http.MethodGet, "/platform/properties?search=acme", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var items []PropertyResponse
	decodeData(t, w, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "acme", items[0].Slug)
}

func TestPlatformHandler_SetFeatures(t *testing.T) {
	p := newTestProperty(t)
	admin := new(MockPropertyAdmin)
	admin.On("GetProperty", mock.Anything, p.ID).Return(p, nil)

	want := property.DefaultFeatures()
	want.InboxEnabled = false
	updated := *p
	updated.Features = want
	admin.On("SetFeatures", mock.Anything, p.ID, want).Return(&updated, nil)

	w := doJSON(newPlatformRouter(t, admin, new(MockMembers)), http.MethodPatch,
		"/platform/properties/"+p.ID.String()+"/features", map[string]bool{"inbox_enabled": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp PropertyResponse
	decodeData(t, w, &resp)
	assert.False(t, resp.Features.InboxEnabled)
	assert.True(t, resp.Features.FrontendEnabled)
	assert.True(t, resp.Features.CMSEnabled)
	admin.AssertExpectations(t)
}

func TestPlatformHandler_Lifecycle(t *testing.T) {
	p := newTestProperty(t)

	t.Run("change plan", func(t *testing.T) {
		admin := new(MockPropertyAdmin)
		admin.On("ChangePlan", mock.Anything, p.ID, property.PlanPro).Return(p, nil)
		w := doJSON(newPlatformRouter(t, admin, new(MockMembers)), http.MethodPatch,
			"/platform/properties/"+p.ID.String()+"/plan", map[string]string{"plan": "pro"})
		assert.Equal(t, http.StatusOK, w.Code)
		admin.AssertExpectations(t)
	})

	t.Run("unknown plan", func(t *testing.T) {
		admin := new(MockPropertyAdmin)
		w := doJSON(newPlatformRouter(t, admin, new(MockMembers)), http.MethodPatch,
			"/platform/properties/"+p.ID.String()+"/plan", map[string]string{"plan": "platinum"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("deactivate twice is invalid state", func(t *testing.T) {
		admin := new(MockPropertyAdmin)
		admin.On("Deactivate", mock.Anything, p.ID).Return(nil, shared.ErrInvalidState)
		w := doJSON(newPlatformRouter(t, admin, new(MockMembers)), http.MethodPost,
			"/platform/properties/"+p.ID.String()+"/deactivate", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("reactivate", func(t *testing.T) {
		admin := new(MockPropertyAdmin)
		admin.On("Reactivate", mock.Anything, p.ID).Return(p, nil)
		w := doJSON(newPlatformRouter(t, admin, new(MockMembers)), http.MethodPost,
			"/platform/properties/"+p.ID.String()+"/reactivate", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown property", func(t *testing.T) {
		admin := new(MockPropertyAdmin)
		id := uuid.New()
		admin.On("GetProperty", mock.Anything, id).Return(nil, shared.ErrNotFound)
		w := doJSON(newPlatformRouter(t, admin, new(MockMembers)), http.MethodGet, "/platform/properties/"+id.String(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPlatformHandler_Members(t *testing.T) {
	propertyID := uuid.New()
	userID := uuid.New()

	t.Run("add", func(t *testing.T) {
		members := new(MockMembers)
		members.On("AddMember", mock.Anything, propertyID, identity.AddMemberInput{
			Email: "staff@acme.test", Password: "long-enough", Role: domainidentity.RoleStaff,
		}).Return(&identity.MemberInfo{UserID: userID, Email: "staff@acme.test", Role: domainidentity.RoleStaff, IsActive: true}, nil)

		w := doJSON(newPlatformRouter(t, new(MockPropertyAdmin), members), http.MethodPost,
			"/platform/properties/"+propertyID.String()+"/members", map[string]string{
				"email": "staff@acme.test", "password": "long-enough", "role": "staff",
			})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp identity.MemberInfo
		decodeData(t, w, &resp)
		assert.Equal(t, userID, resp.UserID)
	})

	t.Run("admin user quota", func(t *testing.T) {
		members := new(MockMembers)
		members.On("AddMember", mock.Anything, propertyID, mock.Anything).Return(nil, shared.ErrQuotaExceeded)

		w := doJSON(newPlatformRouter(t, new(MockPropertyAdmin), members), http.MethodPost,
			"/platform/properties/"+propertyID.String()+"/members", map[string]string{
				"email": "staff@acme.test", "password": "long-enough", "role": "admin",
			})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		members := new(MockMembers)
		members.On("ListMembers", mock.Anything, propertyID).Return(nil, nil)

		w := doJSON(newPlatformRouter(t, new(MockPropertyAdmin), members), http.MethodGet,
			"/platform/properties/"+propertyID.String()+"/members", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", string(decode(t, w).Data))
	})

	t.Run("remove", func(t *testing.T) {
		members := new(MockMembers)
		members.On("RemoveMember", mock.Anything, propertyID, userID).Return(nil)

		w := doJSON(newPlatformRouter(t, new(MockPropertyAdmin), members), http.MethodDelete,
			"/platform/properties/"+propertyID.String()+"/members/"+userID.String(), nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		members.AssertExpectations(t)
	})
}
