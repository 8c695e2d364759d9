package ratelimit

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWriteHeaders(t *testing.T) {
	reset := time.Unix(1700000000, 0)

	t.Run("allowed", func(t *testing.T) {
		h := http.Header{}
		WriteHeaders(h, Result{Success: true, Limit: 10, Remaining: 7, ResetAt: reset})
		assert.Equal(t, "10", h.Get(HeaderLimit))
		assert.Equal(t, "7", h.Get(HeaderRemaining))
		assert.Equal(t, "1700000000", h.Get(HeaderReset))
		assert.Empty(t, h.Get(HeaderRetryAfter))
	})

	t.Run("rejected rounds retry-after up", func(t *testing.T) {
		h := http.Header{}
		WriteHeaders(h, Result{Limit: 10, RetryAfter: 1500 * time.Millisecond, ResetAt: reset})
		assert.Equal(t, "0", h.Get(HeaderRemaining))
		assert.Equal(t, "2", h.Get(HeaderRetryAfter))
	})

	t.Run("retry-after is at least one second", func(t *testing.T) {
		assert.Equal(t, 1, RetryAfterSeconds(Result{RetryAfter: 10 * time.Millisecond}))
	})
}
