// Package ratelimit implements fixed-window request counting keyed by
// tenant and operation.
package ratelimit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Rule is the budget of one operation: MaxRequests per Window
type Rule struct {
	Window      time.Duration
	MaxRequests int
}

// Valid reports whether the rule can be enforced
func (r Rule) Valid() bool {
	return r.Window > 0 && r.MaxRequests > 0
}

// Result is the outcome of one Allow call.
// Being limited is a normal outcome, not an error.
type Result struct {
	Success    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
	ResetAt    time.Time
}

// RetryAfterMs returns RetryAfter in whole milliseconds
func (r Result) RetryAfterMs() int64 {
	return r.RetryAfter.Milliseconds()
}

// Limiter counts requests against a rule
type Limiter interface {
	Allow(ctx context.Context, key string, rule Rule) (Result, error)
}

// Key builds the counter key for a tenant and operation.
// Requests without a tenant share the "platform" bucket of the operation.
func Key(tenantID uuid.UUID, operation string) string {
	if tenantID == uuid.Nil {
		return "platform:" + operation
	}
	return tenantID.String() + ":" + operation
}

func remaining(limit, count int) int {
	if count >= limit {
		return 0
	}
	return limit - count
}
