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

// DefaultSessionCookie is the cookie carrying the session token
const DefaultSessionCookie = "hotel_session"

// SessionResolver turns a session token into the identity it acts with
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (tenancy.AuthContext, error)
}

// ExtractToken reads the bearer token, falling back to the session cookie
func ExtractToken(c *gin.Context, cookieName string) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}
	if v, err := c.Cookie(cookieName); err == nil {
		return v
	}
	return ""
}

// PropertyAuth authenticates the session and stores its AuthContext under
// AuthKey. The property id comes from the membership, never the request.
func PropertyAuth(sessions SessionResolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c, cookieName)
		if token == "" {
			AbortWithError(c, shared.ErrUnauthenticated)
			return
		}
		ac, err := sessions.ResolveSession(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(AuthKey, ac)
		ctx := logger.WithUserID(c.Request.Context(), ac.UserID.String())
		if ac.HasProperty() {
			ctx = logger.WithTenantID(ctx, ac.PropertyID.String())
			telemetry.SetAttribute(trace.SpanFromContext(ctx), telemetry.SpanAttrTenantID, ac.PropertyID.String())
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireProperty admits sessions bound to a property
func RequireProperty() gin.HandlerFunc {
	return func(c *gin.Context) {
		ac, ok := GetAuthContext(c)
		if !ok {
			AbortWithError(c, shared.ErrUnauthenticated)
			return
		}
		if !ac.HasProperty() {
			AbortWithError(c, shared.ErrPropertyNotFound)
			return
		}
		c.Next()
	}
}

// RequireSuperAdmin admits platform operators only
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		ac, ok := GetAuthContext(c)
		if !ok {
			AbortWithError(c, shared.ErrUnauthenticated)
			return
		}
		if !ac.SuperAdmin {
			AbortWithError(c, shared.ErrForbidden)
			return
		}
		c.Next()
	}
}
