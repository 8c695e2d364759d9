package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/application/identity"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/application/tenancy"
	domainidentity "github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/identity"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/property"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
)

// PropertyAdmin is the super-admin property lifecycle
type PropertyAdmin interface {
	CreateProperty(ctx context.Context, in tenancy.CreatePropertyInput) (*property.Property, error)
	GetProperty(ctx context.Context, id uuid.UUID) (*property.Property, error)
	ListProperties(ctx context.Context, filter shared.Filter) (shared.Page[property.Property], error)
	ChangePlan(ctx context.Context, id uuid.UUID, plan property.Plan) (*property.Property, error)
	SetFeatures(ctx context.Context, id uuid.UUID, f property.Features) (*property.Property, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*property.Property, error)
	Reactivate(ctx context.Context, id uuid.UUID) (*property.Property, error)
}

// Members manages property staff
type Members interface {
	AddMember(ctx context.Context, propertyID uuid.UUID, in identity.AddMemberInput) (*identity.MemberInfo, error)
	ListMembers(ctx context.Context, propertyID uuid.UUID) ([]identity.MemberInfo, error)
	RemoveMember(ctx context.Context, propertyID, userID uuid.UUID) error
}

// AddMemberRequest creates or re-activates a staff account
type AddMemberRequest struct {
	Email       string `json:"email" binding:"required,email,max=254"`
	DisplayName string `json:"display_name" binding:"max=200"`
	Password    string `json:"password" binding:"required,min=8,max=128"`
	Role        string `json:"role" binding:"required,oneof=owner admin staff"`
}

// PlatformHandler serves the super-admin console
type PlatformHandler struct {
	BaseHandler
	admin   PropertyAdmin
	members Members
}

// NewPlatformHandler creates a PlatformHandler
func NewPlatformHandler(admin PropertyAdmin, members Members) *PlatformHandler {
	return &PlatformHandler{admin: admin, members: members}
}

// ListProperties godoc
// @Summary      List properties
// @Tags         platform
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        search query string false "Search by name or domain"
// @Param        status query string false "active or inactive"
// @Success      200 {object} dto.Response{data=[]PropertyResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /platform/properties [get]
func (h *PlatformHandler) ListProperties(c *gin.Context) {
	page, err := h.admin.ListProperties(c.Request.Context(), h.ListFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	items := make([]PropertyResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, toPropertyResponse(&page.Items[i]))
	}
	h.SuccessWithMeta(c, items, page.Total, page.Page, page.PageSize)
}

// CreateProperty godoc
// @Summary      Create a property
// @Tags         platform
// @Accept       json
// @Produce      json
// @Param        request body CreatePropertyRequest true "Property"
// @Success      201 {object} dto.Response{data=PropertyResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /platform/properties [post]
func (h *PlatformHandler) CreateProperty(c *gin.Context) {
	var req CreatePropertyRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.admin.CreateProperty(c.Request.Context(), tenancy.CreatePropertyInput{
		Name:      req.Name,
		Slug:      req.Slug,
		Subdomain: req.Subdomain,
		Plan:      property.Plan(req.Plan),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toPropertyResponse(p))
}

// GetProperty godoc
// @Summary      Get a property
// @Tags         platform
// @Produce      json
// @Param        id path string true "Property ID" format(uuid)
// @Success      200 {object} dto.Response{data=PropertyResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /platform/properties/{id} [get]
func (h *PlatformHandler) GetProperty(c *gin.Context) {
	id, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}
	p, err := h.admin.GetProperty(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPropertyResponse(p))
}

// ChangePlan godoc
// @Summary      Change the plan
// @Tags         platform
// @Accept       json
// @Produce      json
// @Param        id path string true "Property ID" format(uuid)
// @Param        request body ChangePlanRequest true "Plan"
// @Success      200 {object} dto.Response{data=PropertyResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /platform/properties/{id}/plan [patch]
func (h *PlatformHandler) ChangePlan(c *gin.Context) {
	id, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req ChangePlanRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.respond(c)(h.admin.ChangePlan(c.Request.Context(), id, property.Plan(req.Plan)))
}

// SetFeatures godoc
// @Summary      Set feature switches
// @Tags         platform
// @Accept       json
// @Produce      json
// @Param        id path string true "Property ID" format(uuid)
// @Param        request body SetFeaturesRequest true "Features"
// @Success      200 {object} dto.Response{data=PropertyResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /platform/properties/{id}/features [patch]
func (h *PlatformHandler) SetFeatures(c *gin.Context) {
	id, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req SetFeaturesRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.admin.GetProperty(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respond(c)(h.admin.SetFeatures(c.Request.Context(), id, req.Apply(p.Features)))
}

// Deactivate godoc
// @Summary      Deactivate a property
// @Tags         platform
// @Produce      json
// @Param        id path string true "Property ID" format(uuid)
// @Success      200 {object} dto.Response{data=PropertyResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /platform/properties/{id}/deactivate [post]
func (h *PlatformHandler) Deactivate(c *gin.Context) {
	id, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}
	h.respond(c)(h.admin.Deactivate(c.Request.Context(), id))
}

// Reactivate godoc
// @Summary      Reactivate a property
// @Tags         platform
// @Produce      json
// @Param        id path string true "Property ID" format(uuid)
// @Success      200 {object} dto.Response{data=PropertyResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /platform/properties/{id}/reactivate [post]
func (h *PlatformHandler) Reactivate(c *gin.Context) {
	id, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}
	h.respond(c)(h.admin.Reactivate(c.Request.Context(), id))
}

// AddMember godoc
// @Summary      Add a staff member
// @Tags         platform
// @Accept       json
// @Produce      json
// @Param        id path string true "Property ID" format(uuid)
// @Param        request body AddMemberRequest true "Member"
// @Success      201 {object} dto.Response{data=identity.MemberInfo}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /platform/properties/{id}/members [post]
func (h *PlatformHandler) AddMember(c *gin.Context) {
	id, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req AddMemberRequest
	if !h.BindJSON(c, &req) {
		return
	}
	m, err := h.members.AddMember(c.Request.Context(), id, identity.AddMemberInput{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		Role:        domainidentity.Role(req.Role),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, m)
}

// ListMembers godoc
// @Summary      List staff members
// @Tags         platform
// @Produce      json
// @Param        id path string true "Property ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]identity.MemberInfo}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /platform/properties/{id}/members [get]
func (h *PlatformHandler) ListMembers(c *gin.Context) {
	id, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}
	members, err := h.members.ListMembers(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if members == nil {
		members = []identity.MemberInfo{}
	}
	h.Success(c, members)
}

// RemoveMember godoc
// @Summary      Remove a staff member
// @Description  Deactivates the membership and revokes its sessions
// @Tags         platform
// @Produce      json
// @Param        id path string true "Property ID" format(uuid)
// @Param        userId path string true "User ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /platform/properties/{id}/members/{userId} [delete]
func (h *PlatformHandler) RemoveMember(c *gin.Context) {
	id, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.UUIDParam(c, "userId")
	if !ok {
		return
	}
	if err := h.members.RemoveMember(c.Request.Context(), id, userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *PlatformHandler) respond(c *gin.Context) func(*property.Property, error) {
	return func(p *property.Property, err error) {
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, toPropertyResponse(p))
	}
}
