package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/application/tenancy"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/logger"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/interfaces/http/dto"
)

// gin context keys
const (
	RequestIDKey  = "request_id"
	ResolutionKey = "tenant_resolution"
	AuthKey       = "auth_context"
)

// GetRequestID returns the id set by RequestID
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// GetResolution returns the tenant bound by TenantResolution
func GetResolution(c *gin.Context) (tenancy.Resolution, bool) {
	v, ok := c.Get(ResolutionKey)
	if !ok {
		return tenancy.Resolution{}, false
	}
	res, ok := v.(tenancy.Resolution)
	return res, ok
}

// GetAuthContext returns the session bound by PropertyAuth
func GetAuthContext(c *gin.Context) (tenancy.AuthContext, bool) {
	v, ok := c.Get(AuthKey)
	if !ok {
		return tenancy.AuthContext{}, false
	}
	ac, ok := v.(tenancy.AuthContext)
	return ac, ok
}

// AbortWithError renders err in the standard envelope and stops the chain.
// 5xx responses are logged with the route; their cause never reaches the body.
func AbortWithError(c *gin.Context, err error) {
	status, info := dto.ErrorInfoFor(err, GetRequestID(c))
	if status >= http.StatusInternalServerError {
		logger.L(c.Request.Context()).Error("request failed",
			zap.String("operation", c.FullPath()),
			zap.String("code", info.Code),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(info))
}
