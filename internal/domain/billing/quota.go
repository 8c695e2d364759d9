// Package billing provides the plan quota model for properties.
//
// Usage is never stored: it is counted on demand from the records a
// property owns and compared against the ceilings of its current plan.
package billing

import (
	"context"
	"fmt"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/property"
	"github.com/google/uuid"
)

// Metric is a metered resource
type Metric string

const (
	MetricAdminUsers   Metric = "admin_users"
	MetricMessages     Metric = "messages"
	MetricStorageBytes Metric = "storage_bytes"
)

// AllMetrics lists every metered resource in reporting order
var AllMetrics = []Metric{MetricAdminUsers, MetricMessages, MetricStorageBytes}

// IsValid reports whether m is a known metric
func (m Metric) IsValid() bool {
	switch m {
	case MetricAdminUsers, MetricMessages, MetricStorageBytes:
		return true
	}
	return false
}

// QuotaStatus classifies usage against a ceiling
type QuotaStatus string

const (
	QuotaStatusOK       QuotaStatus = "ok"
	QuotaStatusWarning  QuotaStatus = "warning"
	QuotaStatusExceeded QuotaStatus = "exceeded"
)

// DefaultSoftLimitPercent is the usage share at which a metric turns to warning
const DefaultSoftLimitPercent = 80

// Limits maps each metric to its ceiling. A ceiling <= 0 means unlimited.
type Limits map[Metric]int64

// PlanTable maps plans to their ceilings
type PlanTable map[property.Plan]Limits

const (
	mebibyte = int64(1) << 20
	gibibyte = int64(1) << 30
)

// DefaultPlanTable returns the built-in ceilings
func DefaultPlanTable() PlanTable {
	return PlanTable{
		property.PlanFree: {
			MetricAdminUsers:   2,
			MetricMessages:     500,
			MetricStorageBytes: 100 * mebibyte,
		},
		property.PlanStarter: {
			MetricAdminUsers:   5,
			MetricMessages:     5000,
			MetricStorageBytes: 1 * gibibyte,
		},
		property.PlanPro: {
			MetricAdminUsers:   20,
			MetricMessages:     50000,
			MetricStorageBytes: 10 * gibibyte,
		},
		property.PlanEnterprise: {
			MetricAdminUsers:   0,
			MetricMessages:     0,
			MetricStorageBytes: 0,
		},
	}
}

// LimitsFor returns the ceilings of plan
func (t PlanTable) LimitsFor(plan property.Plan) (Limits, error) {
	limits, ok := t[plan]
	if !ok {
		return nil, fmt.Errorf("no quota limits configured for plan %q", plan)
	}
	return limits, nil
}

// MetricUsage is the classified usage of one metric
type MetricUsage struct {
	Metric    Metric
	Usage     int64
	Limit     int64
	Percent   float64
	Status    QuotaStatus
	Unlimited bool
}

// Classify compares usage with limit. Reaching the limit counts as exceeded;
// reaching softPercent of it counts as warning.
func Classify(metric Metric, usage, limit int64, softPercent int) MetricUsage {
	mu := MetricUsage{Metric: metric, Usage: usage, Limit: limit}
	if limit <= 0 {
		mu.Unlimited = true
		mu.Status = QuotaStatusOK
		return mu
	}

	mu.Percent = float64(usage) / float64(limit) * 100
	switch {
	case usage >= limit:
		mu.Status = QuotaStatusExceeded
	case softPercent > 0 && usage*100 >= limit*int64(softPercent):
		mu.Status = QuotaStatusWarning
	default:
		mu.Status = QuotaStatusOK
	}
	return mu
}

// Snapshot is the derived quota report of one property
type Snapshot struct {
	Plan         property.Plan
	Metrics      map[Metric]MetricUsage
	WithinLimits bool
}

// NewSnapshot classifies every metric of usage against limits
func NewSnapshot(plan property.Plan, usage map[Metric]int64, limits Limits, softPercent int) Snapshot {
	s := Snapshot{
		Plan:         plan,
		Metrics:      make(map[Metric]MetricUsage, len(AllMetrics)),
		WithinLimits: true,
	}
	for _, m := range AllMetrics {
		mu := Classify(m, usage[m], limits[m], softPercent)
		if mu.Status == QuotaStatusExceeded {
			s.WithinLimits = false
		}
		s.Metrics[m] = mu
	}
	return s
}

// UsageReader counts what a property currently consumes of one metric
type UsageReader interface {
	CountUsage(ctx context.Context, tenantID uuid.UUID, metric Metric) (int64, error)
}
