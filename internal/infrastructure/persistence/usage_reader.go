package persistence

import (
	"context"
	"fmt"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/billing"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUsageReader implements billing.UsageReader by counting the records a
// property owns. Nothing is cached; every call reads current state.
type GormUsageReader struct {
	memberships *GormMembershipRepository
	messages    *GormMessageRepository
	objects     *GormStorageObjectRepository
}

// NewGormUsageReader creates a new GormUsageReader
func NewGormUsageReader(db *gorm.DB) *GormUsageReader {
	return &GormUsageReader{
		memberships: NewGormMembershipRepository(db),
		messages:    NewGormMessageRepository(db),
		objects:     NewGormStorageObjectRepository(db),
	}
}

// CountUsage returns the current usage of metric for a property
func (r *GormUsageReader) CountUsage(ctx context.Context, tenantID uuid.UUID, metric billing.Metric) (int64, error) {
	switch metric {
	case billing.MetricAdminUsers:
		return r.memberships.CountActiveByTenant(ctx, tenantID)
	case billing.MetricMessages:
		return r.messages.CountByTenant(ctx, tenantID)
	case billing.MetricStorageBytes:
		return r.objects.SumUploadedBytes(ctx, tenantID)
	default:
		return 0, fmt.Errorf("unknown metric %q", metric)
	}
}
