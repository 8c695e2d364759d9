package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	appinbox "github.com/fmancini-create/HotelAccelerator-sub003/internal/application/inbox"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/inbox"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/property"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/interfaces/http/middleware"
)

// GuestInbox accepts contact form submissions
type GuestInbox interface {
	SubmitGuestMessage(ctx context.Context, p *property.Property, in appinbox.GuestMessageInput) (*inbox.Message, error)
}

// SiteHandler serves the guest-facing API of a resolved property
type SiteHandler struct {
	BaseHandler
	inbox GuestInbox
}

// NewSiteHandler creates a SiteHandler
func NewSiteHandler(inbox GuestInbox) *SiteHandler {
	return &SiteHandler{inbox: inbox}
}

// resolvedProperty returns the property bound by TenantResolution
func (h *SiteHandler) resolvedProperty(c *gin.Context) (*property.Property, bool) {
	res, ok := middleware.GetResolution(c)
	if !ok || res.IsPlatform() || res.Property == nil {
		h.HandleError(c, shared.ErrTenantNotFound)
		return nil, false
	}
	return res.Property, true
}

// GetSite godoc
// @Summary      Public site profile
// @Description  Returns the public profile of the property bound to the request host
// @Tags         site
// @Produce      json
// @Success      200 {object} dto.Response{data=PublicSiteResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /site [get]
func (h *SiteHandler) GetSite(c *gin.Context) {
	p, ok := h.resolvedProperty(c)
	if !ok {
		return
	}
	h.Success(c, toPublicSiteResponse(p))
}

// SubmitMessage godoc
// @Summary      Submit a guest message
// @Tags         site
// @Accept       json
// @Produce      json
// @Param        request body GuestMessageRequest true "Contact form"
// @Success      201 {object} dto.Response{data=MessageReceipt}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /site/messages [post]
func (h *SiteHandler) SubmitMessage(c *gin.Context) {
	p, ok := h.resolvedProperty(c)
	if !ok {
		return
	}
	var req GuestMessageRequest
	if !h.BindJSON(c, &req) {
		return
	}

	msg, err := h.inbox.SubmitGuestMessage(c.Request.Context(), p, appinbox.GuestMessageInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Body:    req.Body,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, MessageReceipt{ID: msg.ID, ReceivedAt: msg.CreatedAt})
}
