package cache

import (
	"context"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/property"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"go.uber.org/zap"
)

// Broadcaster fans invalidated keys out to other server instances
type Broadcaster interface {
	PublishKeys(ctx context.Context, keys []string) error
}

// InvalidationHandler drops cached properties when a property event is
// published. It listens to every property event type because any of them
// can change what the resolver returns.
type InvalidationHandler struct {
	cache       *PropertyCache
	broadcaster Broadcaster
	logger      *zap.Logger
}

// NewInvalidationHandler creates the handler. broadcaster may be nil.
func NewInvalidationHandler(cache *PropertyCache, broadcaster Broadcaster, logger *zap.Logger) *InvalidationHandler {
	return &InvalidationHandler{cache: cache, broadcaster: broadcaster, logger: logger}
}

// EventTypes implements shared.EventHandler
func (h *InvalidationHandler) EventTypes() []string {
	return []string{
		property.EventTypePropertyCreated,
		property.EventTypePropertyPlanChanged,
		property.EventTypePropertyFeaturesChanged,
		property.EventTypeCustomDomainRegistered,
		property.EventTypeCustomDomainVerified,
		property.EventTypeCustomDomainRevoked,
		property.EventTypePropertyDeactivated,
		property.EventTypePropertyReactivated,
	}
}

// Handle deletes local keys first, then broadcasts them
func (h *InvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	pe, ok := event.(property.PropertyEvent)
	if !ok {
		return nil
	}
	keys := KeysFor(event.AggregateID(), pe.Snapshot())
	h.cache.Delete(keys...)
	h.logger.Debug("property cache invalidated",
		zap.String("event_type", event.EventType()),
		zap.Strings("keys", keys),
	)

	if h.broadcaster == nil {
		return nil
	}
	return h.broadcaster.PublishKeys(ctx, keys)
}

var _ shared.EventHandler = (*InvalidationHandler)(nil)
