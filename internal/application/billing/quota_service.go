package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/billing"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/property"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PropertyFinder loads the property whose plan sets the ceilings
type PropertyFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*property.Property, error)
}

// Metrics records quota outcomes. Implementations must be safe for concurrent use.
type Metrics interface {
	RecordQuotaCheck(ctx context.Context, metric string, status string)
}

type noopMetrics struct{}

func (noopMetrics) RecordQuotaCheck(context.Context, string, string) {}

// QuotaServiceConfig contains configuration for QuotaService
type QuotaServiceConfig struct {
	SoftLimitPercent int
	Plans            billing.PlanTable
}

// DefaultQuotaServiceConfig returns default configuration
func DefaultQuotaServiceConfig() QuotaServiceConfig {
	return QuotaServiceConfig{
		SoftLimitPercent: billing.DefaultSoftLimitPercent,
		Plans:            billing.DefaultPlanTable(),
	}
}

// QuotaServiceConfigFrom builds the service config from application config.
// Plan overrides replace single ceilings of the built-in table.
func QuotaServiceConfigFrom(cfg config.QuotaConfig) (QuotaServiceConfig, error) {
	out := DefaultQuotaServiceConfig()
	if cfg.SoftLimitPercent > 0 {
		out.SoftLimitPercent = cfg.SoftLimitPercent
	}
	for planName, overrides := range cfg.Plans {
		plan := property.Plan(planName)
		if !plan.IsValid() {
			return QuotaServiceConfig{}, fmt.Errorf("quota.plans: unknown plan %q", planName)
		}
		limits := make(billing.Limits, len(billing.AllMetrics))
		for m, v := range out.Plans[plan] {
			limits[m] = v
		}
		for metricName, limit := range overrides {
			metric := billing.Metric(metricName)
			if !metric.IsValid() {
				return QuotaServiceConfig{}, fmt.Errorf("quota.plans.%s: unknown metric %q", planName, metricName)
			}
			limits[metric] = limit
		}
		out.Plans[plan] = limits
	}
	return out, nil
}

// QuotaService computes plan usage. It never blocks writes itself; callers
// use Require before creating metered records.
type QuotaService struct {
	properties  PropertyFinder
	usage       billing.UsageReader
	plans       billing.PlanTable
	softPercent int
	metrics     Metrics
	logger      *zap.Logger
}

// QuotaServiceOption configures QuotaService
type QuotaServiceOption func(*QuotaService)

// WithMetrics records each classified metric
func WithMetrics(m Metrics) QuotaServiceOption {
	return func(s *QuotaService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewQuotaService creates a new QuotaService
func NewQuotaService(
	properties PropertyFinder,
	usage billing.UsageReader,
	config QuotaServiceConfig,
	logger *zap.Logger,
	opts ...QuotaServiceOption,
) *QuotaService {
	s := &QuotaService{
		properties:  properties,
		usage:       usage,
		plans:       config.Plans,
		softPercent: config.SoftLimitPercent,
		metrics:     noopMetrics{},
		logger:      logger,
	}
	if s.plans == nil {
		s.plans = billing.DefaultPlanTable()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check reports usage of every metric against the property's plan.
// Counts run in parallel; if any of them fails the whole call fails.
func (s *QuotaService) Check(ctx context.Context, propertyID uuid.UUID) (billing.Snapshot, error) {
	p, limits, err := s.loadPlan(ctx, propertyID)
	if err != nil {
		return billing.Snapshot{}, err
	}

	counts := make([]int64, len(billing.AllMetrics))
	g, gctx := errgroup.WithContext(ctx)
	for i, metric := range billing.AllMetrics {
		g.Go(func() error {
			n, err := s.usage.CountUsage(gctx, propertyID, metric)
			if err != nil {
				return fmt.Errorf("count %s: %w", metric, err)
			}
			counts[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("Quota usage count failed",
			zap.String("tenant_id", propertyID.String()),
			zap.Error(err),
		)
		return billing.Snapshot{}, asStoreFailure("quota check", err)
	}

	usage := make(map[billing.Metric]int64, len(counts))
	for i, metric := range billing.AllMetrics {
		usage[metric] = counts[i]
	}
	snap := billing.NewSnapshot(p.Plan, usage, limits, s.softPercent)
	for _, mu := range snap.Metrics {
		s.metrics.RecordQuotaCheck(ctx, string(mu.Metric), string(mu.Status))
	}
	return snap, nil
}

// Require fails with QuotaExceeded when adding delta units of metric would
// exceed the plan ceiling. A property already at its ceiling is blocked.
func (s *QuotaService) Require(ctx context.Context, propertyID uuid.UUID, metric billing.Metric, delta int64) error {
	if !metric.IsValid() {
		return shared.ErrInvalidInput.WithMessage(fmt.Sprintf("unknown quota metric %q", metric))
	}
	_, limits, err := s.loadPlan(ctx, propertyID)
	if err != nil {
		return err
	}
	limit := limits[metric]
	if limit <= 0 {
		return nil
	}

	usage, err := s.usage.CountUsage(ctx, propertyID, metric)
	if err != nil {
		s.logger.Error("Quota usage count failed",
			zap.String("tenant_id", propertyID.String()),
			zap.String("metric", string(metric)),
			zap.Error(err),
		)
		return asStoreFailure("quota check", err)
	}

	if usage+delta > limit {
		s.metrics.RecordQuotaCheck(ctx, string(metric), string(billing.QuotaStatusExceeded))
		return shared.ErrQuotaExceeded.WithDetails(map[string]any{
			"metric":    string(metric),
			"usage":     usage,
			"limit":     limit,
			"requested": delta,
		})
	}
	return nil
}

func (s *QuotaService) loadPlan(ctx context.Context, propertyID uuid.UUID) (*property.Property, billing.Limits, error) {
	p, err := s.properties.FindByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, shared.ErrPropertyNotFound
		}
		return nil, nil, asStoreFailure("load property", err)
	}
	limits, err := s.plans.LimitsFor(p.Plan)
	if err != nil {
		return nil, nil, err
	}
	return p, limits, nil
}

func asStoreFailure(op string, err error) error {
	if errors.Is(err, shared.ErrDataStoreFailure) {
		return err
	}
	return shared.NewDataStoreFailure(op, err)
}
