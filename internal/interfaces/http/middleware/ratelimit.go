package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/logger"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/ratelimit"
)

// Rate limit decision outcomes
const (
	RateLimitAllowed = "allowed"
	RateLimitLimited = "limited"
	RateLimitError   = "error"
)

// RateLimitRecorder observes limiter decisions
type RateLimitRecorder interface {
	RecordRateLimit(ctx context.Context, operation, outcome string)
}

// KeyFunc derives the counter key of a request
type KeyFunc func(c *gin.Context, operation string) string

// KeyByTenantAndIP buckets anonymous traffic per resolved tenant and client.
// Requests without a tenant share the platform bucket of their client.
func KeyByTenantAndIP(c *gin.Context, operation string) string {
	tenantID := uuid.Nil
	if res, ok := GetResolution(c); ok {
		tenantID = res.PropertyID()
	}
	return ratelimit.Key(tenantID, operation) + ":" + c.ClientIP()
}

// KeyByProperty buckets authenticated traffic per property
func KeyByProperty(c *gin.Context, operation string) string {
	if ac, ok := GetAuthContext(c); ok {
		if ac.HasProperty() {
			return ratelimit.Key(ac.PropertyID, operation)
		}
		return ratelimit.Key(uuid.Nil, operation) + ":" + ac.UserID.String()
	}
	return KeyByTenantAndIP(c, operation)
}

// RateLimiter builds per-operation rate limit middleware
type RateLimiter struct {
	limiter  ratelimit.Limiter
	rules    map[string]ratelimit.Rule
	recorder RateLimitRecorder
	enabled  bool
}

// NewRateLimiter creates a RateLimiter. A nil limiter or enabled=false
// makes every middleware it builds a pass-through.
func NewRateLimiter(limiter ratelimit.Limiter, rules map[string]ratelimit.Rule, recorder RateLimitRecorder, enabled bool) *RateLimiter {
	return &RateLimiter{
		limiter:  limiter,
		rules:    rules,
		recorder: recorder,
		enabled:  enabled && limiter != nil,
	}
}

// Limit enforces the rule of operation with keys from keyFn.
// A limiter failure lets the request through and is logged.
func (rl *RateLimiter) Limit(operation string, keyFn KeyFunc) gin.HandlerFunc {
	rule, ok := rl.rules[operation]
	if !rl.enabled || !ok || !rule.Valid() {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		res, err := rl.limiter.Allow(ctx, keyFn(c, operation), rule)
		if err != nil {
			rl.record(ctx, operation, RateLimitError)
			logger.L(ctx).Warn("rate limiter unavailable, allowing request",
				zap.String("operation", operation),
				zap.Error(err),
			)
			c.Next()
			return
		}

		ratelimit.WriteHeaders(c.Writer.Header(), res)
		if !res.Success {
			rl.record(ctx, operation, RateLimitLimited)
			AbortWithError(c, shared.ErrRateLimited.WithDetails(map[string]any{
				"operation":      operation,
				"limit":          res.Limit,
				"retry_after_ms": res.RetryAfterMs(),
			}))
			return
		}
		rl.record(ctx, operation, RateLimitAllowed)
		c.Next()
	}
}

func (rl *RateLimiter) record(ctx context.Context, operation, outcome string) {
	if rl.recorder != nil {
		rl.recorder.RecordRateLimit(ctx, operation, outcome)
	}
}
