package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/application/tenancy"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/logger"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/telemetry"
)

// TenantResolver binds a request to the platform or one property
type TenantResolver interface {
	Resolve(ctx context.Context, in tenancy.ResolveInput) (tenancy.Resolution, error)
}

// TenantConfig configures TenantResolution
type TenantConfig struct {
	Context tenancy.RequestContext
	// TrustRoutingHeaders honors X-Tenant-Identifier, X-Tenant-Type and
	// X-Forwarded-Host. Enable only behind a router that overwrites them.
	TrustRoutingHeaders bool
}

// TenantResolution resolves the request host into a tenancy.Resolution and
// stores it under ResolutionKey. Unresolvable hosts end the request.
func TenantResolution(resolver TenantResolver, cfg TenantConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		in := tenancy.ResolveInput{
			Host:    c.Request.Host,
			Context: cfg.Context,
		}
		if cfg.TrustRoutingHeaders {
			if fwd := c.GetHeader("X-Forwarded-Host"); fwd != "" {
				// first hop wins when proxies append
				in.Host = strings.TrimSpace(strings.Split(fwd, ",")[0])
			}
			in.Identifier = strings.TrimSpace(c.GetHeader(HeaderTenantIdentifier))
			in.IdentifierType = tenancy.IdentifierType(strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderTenantType))))
		}

		res, err := resolver.Resolve(c.Request.Context(), in)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(ResolutionKey, res)
		span := trace.SpanFromContext(c.Request.Context())
		telemetry.SetAttribute(span, telemetry.SpanAttrHost, res.Host)
		if !res.IsPlatform() {
			tenantID := res.PropertyID().String()
			c.Request = c.Request.WithContext(logger.WithTenantID(c.Request.Context(), tenantID))
			telemetry.SetAttribute(span, telemetry.SpanAttrTenantID, tenantID)
			telemetry.SetAttribute(span, telemetry.SpanAttrTenantSource, string(res.MatchedBy))
		}
		c.Next()
	}
}

// RequireTenant rejects requests that resolved to the platform root
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		res, ok := GetResolution(c)
		if !ok || res.IsPlatform() {
			AbortWithError(c, shared.ErrTenantNotFound)
			return
		}
		c.Next()
	}
}

// RequirePlatform rejects requests that resolved to a property host.
// The super-admin console is only served from the platform root.
func RequirePlatform() gin.HandlerFunc {
	return func(c *gin.Context) {
		res, ok := GetResolution(c)
		if !ok || !res.IsPlatform() {
			AbortWithError(c, shared.ErrNotFound)
			return
		}
		c.Next()
	}
}
