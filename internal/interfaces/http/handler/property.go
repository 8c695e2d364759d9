package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/application/tenancy"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/billing"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/property"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/interfaces/http/middleware"
)

// DomainAdmin manages a property's custom domain
type DomainAdmin interface {
	GetProperty(ctx context.Context, id uuid.UUID) (*property.Property, error)
	RegisterCustomDomain(ctx context.Context, id uuid.UUID, domain string) (tenancy.DomainInstructions, error)
	RemoveCustomDomain(ctx context.Context, id uuid.UUID) (*property.Property, error)
}

// DomainVerifier checks the TXT record of a property's domain
type DomainVerifier interface {
	Verify(ctx context.Context, propertyID uuid.UUID) (tenancy.VerificationResult, error)
}

// QuotaReporter reports usage against the plan
type QuotaReporter interface {
	Check(ctx context.Context, propertyID uuid.UUID) (billing.Snapshot, error)
}

// PropertyHandler serves the staff console of the session's property.
// The property id always comes from the AuthContext.
type PropertyHandler struct {
	BaseHandler
	admin    DomainAdmin
	verifier DomainVerifier
	quotas   QuotaReporter
}

// NewPropertyHandler creates a PropertyHandler
func NewPropertyHandler(admin DomainAdmin, verifier DomainVerifier, quotas QuotaReporter) *PropertyHandler {
	return &PropertyHandler{admin: admin, verifier: verifier, quotas: quotas}
}

func (h *PropertyHandler) propertyID(c *gin.Context) (uuid.UUID, bool) {
	ac, ok := middleware.GetAuthContext(c)
	if !ok {
		h.HandleError(c, shared.ErrUnauthenticated)
		return uuid.Nil, false
	}
	if !ac.HasProperty() {
		h.HandleError(c, shared.ErrPropertyNotFound)
		return uuid.Nil, false
	}
	return ac.PropertyID, true
}

// GetProperty godoc
// @Summary      Get my property
// @Tags         admin-property
// @Produce      json
// @Success      200 {object} dto.Response{data=PropertyResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/property [get]
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	id, ok := h.propertyID(c)
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

// RegisterDomain godoc
// @Summary      Register a custom domain
// @Description  Binds a custom domain and returns the TXT record to publish
// @Tags         admin-property
// @Accept       json
// @Produce      json
// @Param        request body RegisterDomainRequest true "Domain"
// @Success      200 {object} dto.Response{data=DomainResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/property/domain [put]
func (h *PropertyHandler) RegisterDomain(c *gin.Context) {
	id, ok := h.propertyID(c)
	if !ok {
		return
	}
	var req RegisterDomainRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := h.admin.RegisterCustomDomain(c.Request.Context(), id, req.Domain)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toDomainInstructionsResponse(in))
}

// RemoveDomain godoc
// @Summary      Remove the custom domain
// @Tags         admin-property
// @Produce      json
// @Success      204 "No Content"
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/property/domain [delete]
func (h *PropertyHandler) RemoveDomain(c *gin.Context) {
	id, ok := h.propertyID(c)
	if !ok {
		return
	}
	if _, err := h.admin.RemoveCustomDomain(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// VerifyDomain godoc
// @Summary      Verify the custom domain
// @Description  Runs the DNS TXT check; a failed check answers 422 with the expected token and the observed records
// @Tags         admin-property
// @Produce      json
// @Success      200 {object} dto.Response{data=VerificationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/property/domain/verify [post]
func (h *PropertyHandler) VerifyDomain(c *gin.Context) {
	id, ok := h.propertyID(c)
	if !ok {
		return
	}
	res, err := h.verifier.Verify(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !res.Verified {
		observed := res.Observed
		if observed == nil {
			observed = []string{}
		}
		h.HandleError(c, shared.ErrDomainVerificationFailed.
			WithMessage(res.Message).
			WithDetails(map[string]any{
				"domain":   res.Domain,
				"expected": res.Expected,
				"observed": observed,
				"reason":   res.Reason,
			}))
		return
	}
	h.Success(c, VerificationResponse{
		Domain:     res.Domain,
		Verified:   true,
		CheckedAt:  res.CheckedAt,
		VerifiedAt: res.VerifiedAt,
	})
}

// GetQuotas godoc
// @Summary      Plan usage
// @Tags         admin-property
// @Produce      json
// @Success      200 {object} dto.Response{data=QuotaResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/quotas [get]
func (h *PropertyHandler) GetQuotas(c *gin.Context) {
	id, ok := h.propertyID(c)
	if !ok {
		return
	}
	snap, err := h.quotas.Check(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toQuotaResponse(snap))
}
