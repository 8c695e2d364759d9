package ratelimit

import (
	"math"
	"net/http"
	"strconv"
)

// Response header names
const (
	HeaderLimit      = "X-RateLimit-Limit"
	HeaderRemaining  = "X-RateLimit-Remaining"
	HeaderReset      = "X-RateLimit-Reset"
	HeaderRetryAfter = "Retry-After"
)

// WriteHeaders renders res onto h. Reset is a unix timestamp in seconds;
// Retry-After is only set on rejection and rounds up to whole seconds.
func WriteHeaders(h http.Header, res Result) {
	h.Set(HeaderLimit, strconv.Itoa(res.Limit))
	h.Set(HeaderRemaining, strconv.Itoa(res.Remaining))
	if !res.ResetAt.IsZero() {
		h.Set(HeaderReset, strconv.FormatInt(res.ResetAt.Unix(), 10))
	}
	if !res.Success {
		h.Set(HeaderRetryAfter, strconv.Itoa(RetryAfterSeconds(res)))
	}
}

// RetryAfterSeconds returns the wait in whole seconds, never less than one
func RetryAfterSeconds(res Result) int {
	secs := int(math.Ceil(res.RetryAfter.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
