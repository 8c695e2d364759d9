package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// DefaultInvalidationChannel is the Pub/Sub channel for property cache keys
	DefaultInvalidationChannel = "hotel:property-cache:invalidate"

	defaultCloseTimeout = 5 * time.Second
)

// invalidationMessage is the Pub/Sub payload
type invalidationMessage struct {
	Origin    string   `json:"origin"`
	Keys      []string `json:"keys"`
	Timestamp int64    `json:"ts"`
}

// RedisInvalidator broadcasts invalidated property keys over Redis Pub/Sub
// and applies keys broadcast by other instances to the local cache.
// Messages from this instance are ignored on receipt.
type RedisInvalidator struct {
	client   *redis.Client
	channel  string
	origin   string
	cache    *PropertyCache
	logger   *zap.Logger
	cancelFn context.CancelFunc
	doneCh   chan struct{}
	doneOnce sync.Once
	mu       sync.Mutex
	running  bool
}

// RedisInvalidatorOption is a functional option for the invalidator
type RedisInvalidatorOption func(*RedisInvalidator)

// WithInvalidatorChannel sets the Pub/Sub channel name
func WithInvalidatorChannel(channel string) RedisInvalidatorOption {
	return func(i *RedisInvalidator) {
		i.channel = channel
	}
}

// WithInvalidatorLogger sets the logger
func WithInvalidatorLogger(logger *zap.Logger) RedisInvalidatorOption {
	return func(i *RedisInvalidator) {
		i.logger = logger
	}
}

// NewRedisInvalidator creates an invalidator on a shared client.
// The caller keeps ownership of the client.
func NewRedisInvalidator(client *redis.Client, cache *PropertyCache, opts ...RedisInvalidatorOption) *RedisInvalidator {
	i := &RedisInvalidator{
		client:  client,
		channel: DefaultInvalidationChannel,
		origin:  uuid.NewString(),
		cache:   cache,
		logger:  zap.NewNop(),
		doneCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// PublishKeys implements Broadcaster
func (i *RedisInvalidator) PublishKeys(ctx context.Context, keys []string) error {
	data, err := json.Marshal(invalidationMessage{
		Origin:    i.origin,
		Keys:      keys,
		Timestamp: time.Now().UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal invalidation message: %w", err)
	}
	if err := i.client.Publish(ctx, i.channel, data).Err(); err != nil {
		i.logger.Error("Failed to publish cache invalidation",
			zap.String("channel", i.channel),
			zap.Error(err))
		return fmt.Errorf("failed to publish invalidation: %w", err)
	}
	return nil
}

// Run listens for invalidations until ctx is cancelled or Close is called.
// It blocks; start it in a goroutine.
func (i *RedisInvalidator) Run(ctx context.Context) error {
	i.mu.Lock()
	if i.running {
		i.mu.Unlock()
		return fmt.Errorf("subscription already running")
	}
	subCtx, cancel := context.WithCancel(ctx)
	i.running = true
	i.cancelFn = cancel
	i.mu.Unlock()

	defer func() {
		i.mu.Lock()
		i.running = false
		i.mu.Unlock()
		i.doneOnce.Do(func() { close(i.doneCh) })
	}()

	pubsub := i.client.Subscribe(subCtx, i.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}
	i.logger.Info("Subscribed to property cache invalidation", zap.String("channel", i.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				i.logger.Warn("Cache invalidation channel closed")
				return nil
			}
			i.apply(msg.Payload)
		}
	}
}

func (i *RedisInvalidator) apply(payload string) {
	var m invalidationMessage
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		i.logger.Error("Failed to unmarshal invalidation message", zap.Error(err))
		return
	}
	if m.Origin == i.origin {
		return
	}
	i.cache.Delete(m.Keys...)
	i.logger.Debug("Applied remote cache invalidation", zap.Strings("keys", m.Keys))
}

// Close stops Run and waits for it to return
func (i *RedisInvalidator) Close() error {
	i.mu.Lock()
	cancelFn := i.cancelFn
	i.mu.Unlock()

	if cancelFn == nil {
		return nil
	}
	cancelFn()
	select {
	case <-i.doneCh:
	case <-time.After(defaultCloseTimeout):
		i.logger.Warn("Timeout waiting for invalidation subscription to stop")
	}
	return nil
}

var _ Broadcaster = (*RedisInvalidator)(nil)
