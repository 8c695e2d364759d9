package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string, tenantID uuid.UUID) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Property", uuid.New(), tenantID),
	}
}

type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panicMsg   string
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.panicMsg != "" {
		panic(h.panicMsg)
	}
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	verified := newTestHandler("CustomDomainVerified")
	all := newTestHandler()

	bus.Subscribe(verified)
	bus.Subscribe(all)

	tenantID := uuid.New()
	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("CustomDomainVerified", tenantID),
		newTestEvent("PropertyPlanChanged", tenantID),
	))

	assert.Equal(t, 1, verified.count())
	assert.Equal(t, 2, all.count())
}

func TestInMemoryEventBus_FailingHandlersDoNotStopOthers(t *testing.T) {
	core, recorded := observer.New(zapcore.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := newTestHandler("PropertyDeactivated")
	failing.err = errors.New("cache unavailable")
	panicking := newTestHandler("PropertyDeactivated")
	panicking.panicMsg = "boom"
	healthy := newTestHandler("PropertyDeactivated")

	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("PropertyDeactivated", uuid.New()))
	require.NoError(t, err)

	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, 2, recorded.FilterMessage("handler failed to process event").Len())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newTestHandler("PropertyCreated")
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("PropertyCreated", uuid.New())))
	assert.Zero(t, h.count())
}

func TestAuditLogHandler(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	h := NewAuditLogHandler(zap.New(core))

	ctx := logger.WithRequestID(context.Background(), "req-7")
	ctx = logger.WithUserID(ctx, "user-3")
	tenantID := uuid.New()
	require.NoError(t, h.Handle(ctx, newTestEvent("CustomDomainRevoked", tenantID)))

	entries := recorded.FilterMessage("domain event").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "CustomDomainRevoked", fields["event_type"])
	assert.Equal(t, tenantID.String(), fields["tenant_id"])
	assert.Equal(t, "req-7", fields["request_id"])
	assert.Equal(t, "user-3", fields["actor_id"])
}
