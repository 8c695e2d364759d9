package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/application/media"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/inbox"
	domainmedia "github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/media"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/interfaces/http/middleware"
)

// StaffInbox lists and triages messages
type StaffInbox interface {
	List(ctx context.Context, propertyID uuid.UUID, filter shared.Filter) (shared.Page[inbox.Message], error)
	UpdateStatus(ctx context.Context, propertyID, messageID uuid.UUID, status inbox.Status) (*inbox.Message, error)
}

// Uploads runs the presigned upload flow
type Uploads interface {
	RequestUpload(ctx context.Context, propertyID uuid.UUID, in media.RequestUploadInput) (*media.UploadTicket, error)
	CompleteUpload(ctx context.Context, propertyID, objectID uuid.UUID) (*domainmedia.StorageObject, error)
}

// ContentHandler serves the staff inbox and media library
type ContentHandler struct {
	BaseHandler
	inbox   StaffInbox
	uploads Uploads
}

// NewContentHandler creates a ContentHandler
func NewContentHandler(inbox StaffInbox, uploads Uploads) *ContentHandler {
	return &ContentHandler{inbox: inbox, uploads: uploads}
}

func (h *ContentHandler) propertyID(c *gin.Context) (uuid.UUID, bool) {
	ac, ok := middleware.GetAuthContext(c)
	if !ok || !ac.HasProperty() {
		h.HandleError(c, shared.ErrPropertyNotFound)
		return uuid.Nil, false
	}
	return ac.PropertyID, true
}

// ListMessages godoc
// @Summary      List inbox messages
// @Tags         admin-messages
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]MessageResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/messages [get]
func (h *ContentHandler) ListMessages(c *gin.Context) {
	id, ok := h.propertyID(c)
	if !ok {
		return
	}
	page, err := h.inbox.List(c.Request.Context(), id, h.ListFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	items := make([]MessageResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, toMessageResponse(&page.Items[i]))
	}
	h.SuccessWithMeta(c, items, page.Total, page.Page, page.PageSize)
}

// UpdateMessageStatus godoc
// @Summary      Update a message status
// @Tags         admin-messages
// @Accept       json
// @Produce      json
// @Param        id path string true "Message ID" format(uuid)
// @Param        request body UpdateMessageStatusRequest true "New status"
// @Success      200 {object} dto.Response{data=MessageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/messages/{id} [patch]
func (h *ContentHandler) UpdateMessageStatus(c *gin.Context) {
	id, ok := h.propertyID(c)
	if !ok {
		return
	}
	msgID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateMessageStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	msg, err := h.inbox.UpdateStatus(c.Request.Context(), id, msgID, inbox.Status(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toMessageResponse(msg))
}

// RequestUpload godoc
// @Summary      Request an upload URL
// @Description  Reserves an object under the storage quota and returns a presigned URL
// @Tags         admin-media
// @Accept       json
// @Produce      json
// @Param        request body RequestUploadRequest true "Object to upload"
// @Success      201 {object} dto.Response{data=UploadTicketResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      504 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/media/uploads [post]
func (h *ContentHandler) RequestUpload(c *gin.Context) {
	id, ok := h.propertyID(c)
	if !ok {
		return
	}
	var req RequestUploadRequest
	if !h.BindJSON(c, &req) {
		return
	}
	ticket, err := h.uploads.RequestUpload(c.Request.Context(), id, media.RequestUploadInput{
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Size:        req.Size,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, UploadTicketResponse{
		Object: toStorageObjectResponse(ticket.Object),
		Upload: ticket.Upload,
	})
}

// CompleteUpload godoc
// @Summary      Complete an upload
// @Tags         admin-media
// @Produce      json
// @Param        id path string true "Object ID" format(uuid)
// @Success      200 {object} dto.Response{data=StorageObjectResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/media/uploads/{id}/complete [post]
func (h *ContentHandler) CompleteUpload(c *gin.Context) {
	id, ok := h.propertyID(c)
	if !ok {
		return
	}
	objectID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}
	obj, err := h.uploads.CompleteUpload(c.Request.Context(), id, objectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toStorageObjectResponse(obj))
}
