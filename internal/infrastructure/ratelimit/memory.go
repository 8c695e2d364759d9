package ratelimit

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultMaxKeys caps the number of live counters
const DefaultMaxKeys = 100000

type window struct {
	key   string
	count int
	start time.Time
	size  time.Duration
	index int
}

func (w *window) resetAt() time.Time {
	return w.start.Add(w.size)
}

func (w *window) expired(now time.Time) bool {
	return !now.Before(w.resetAt())
}

// expiryQueue is a min-heap of windows ordered by reset time
type expiryQueue []*window

func (q expiryQueue) Len() int           { return len(q) }
func (q expiryQueue) Less(i, j int) bool { return q[i].resetAt().Before(q[j].resetAt()) }
func (q expiryQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *expiryQueue) Push(x any) {
	w := x.(*window)
	w.index = len(*q)
	*q = append(*q, w)
}

func (q *expiryQueue) Pop() any {
	old := *q
	n := len(old)
	w := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return w
}

// MemoryLimiter is a process-local fixed-window limiter.
// Counters are dropped only once their window has ended. When MaxKeys live
// counters exist, requests for new keys are refused until one expires.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	expiry  expiryQueue
	clock   clock.Clock
	maxKeys int
}

// MemoryOption configures a MemoryLimiter
type MemoryOption func(*MemoryLimiter)

// WithClock sets the time source
func WithClock(c clock.Clock) MemoryOption {
	return func(l *MemoryLimiter) { l.clock = c }
}

// WithMaxKeys caps the number of counters held
func WithMaxKeys(n int) MemoryOption {
	return func(l *MemoryLimiter) {
		if n > 0 {
			l.maxKeys = n
		}
	}
}

// NewMemoryLimiter creates a MemoryLimiter
func NewMemoryLimiter(opts ...MemoryOption) *MemoryLimiter {
	l := &MemoryLimiter{
		windows: make(map[string]*window),
		clock:   clock.New(),
		maxKeys: DefaultMaxKeys,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow counts one request for key under rule
func (l *MemoryLimiter) Allow(_ context.Context, key string, rule Rule) (Result, error) {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.purge(now)

	w, ok := l.windows[key]
	if !ok {
		if len(l.windows) >= l.maxKeys {
			return l.refuse(now, rule), nil
		}
		w = &window{key: key, start: now, size: rule.Window}
		l.windows[key] = w
		heap.Push(&l.expiry, w)
	}
	if w.size != rule.Window {
		w.count = 0
		w.start = now
		w.size = rule.Window
		heap.Fix(&l.expiry, w.index)
	}
	w.count++

	resetAt := w.resetAt()
	res := Result{
		Success:   w.count <= rule.MaxRequests,
		Limit:     rule.MaxRequests,
		Remaining: remaining(rule.MaxRequests, w.count),
		ResetAt:   resetAt,
	}
	if !res.Success {
		res.RetryAfter = resetAt.Sub(now)
	}
	return res, nil
}

// Len returns the number of counters held
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// purge drops every counter whose window has ended
func (l *MemoryLimiter) purge(now time.Time) {
	for l.expiry.Len() > 0 && l.expiry[0].expired(now) {
		w := heap.Pop(&l.expiry).(*window)
		delete(l.windows, w.key)
	}
}

// refuse rejects a new key while the table is full of live counters.
// The caller may retry once the earliest window ends.
func (l *MemoryLimiter) refuse(now time.Time, rule Rule) Result {
	resetAt := l.expiry[0].resetAt()
	return Result{
		Success:    false,
		Limit:      rule.MaxRequests,
		Remaining:  0,
		ResetAt:    resetAt,
		RetryAfter: resetAt.Sub(now),
	}
}

var _ Limiter = (*MemoryLimiter)(nil)
