package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// GatingMetrics counts the decisions of the request gate: tenant
// resolution, domain verification, quota checks and rate limiting.
// One instance satisfies the metrics ports of the tenancy and billing
// services.
type GatingMetrics struct {
	resolutions   *Counter
	verifications *Counter
	quotaChecks   *Counter
	rateLimits    *Counter
	dnsLookups    *Histogram
}

// NewGatingMetrics registers the gate instruments on meter.
func NewGatingMetrics(meter metric.Meter) (*GatingMetrics, error) {
	var (
		m   GatingMetrics
		err error
	)
	if m.resolutions, err = NewCounter(meter, "tenant_resolutions_total",
		"Tenant resolution attempts by outcome", "{resolution}"); err != nil {
		return nil, err
	}
	if m.verifications, err = NewCounter(meter, "domain_verifications_total",
		"Custom domain verification attempts by outcome", "{verification}"); err != nil {
		return nil, err
	}
	if m.quotaChecks, err = NewCounter(meter, "quota_checks_total",
		"Quota checks by metric and resulting status", "{check}"); err != nil {
		return nil, err
	}
	if m.rateLimits, err = NewCounter(meter, "rate_limit_decisions_total",
		"Rate limiter decisions by operation class", "{decision}"); err != nil {
		return nil, err
	}
	if m.dnsLookups, err = NewHistogram(meter, HistogramOpts{
		Name:        "dns_txt_lookup_duration_seconds",
		Description: "TXT lookup latency for custom domain verification",
		Unit:        "s",
		Boundaries:  DNSDurationBuckets,
	}); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordResolution counts one host resolution.
func (m *GatingMetrics) RecordResolution(ctx context.Context, outcome string) {
	m.resolutions.Inc(ctx, AttrOutcome.String(outcome))
}

// RecordVerification counts one domain verification.
func (m *GatingMetrics) RecordVerification(ctx context.Context, outcome string) {
	m.verifications.Inc(ctx, AttrOutcome.String(outcome))
}

// RecordQuotaCheck counts one quota evaluation.
func (m *GatingMetrics) RecordQuotaCheck(ctx context.Context, metricName, status string) {
	m.quotaChecks.Inc(ctx, AttrMetric.String(metricName), AttrStatus.String(status))
}

// RecordRateLimit counts one limiter decision. outcome is allowed,
// limited or error.
func (m *GatingMetrics) RecordRateLimit(ctx context.Context, operation, outcome string) {
	m.rateLimits.Inc(ctx, AttrOperation.String(operation), AttrOutcome.String(outcome))
}

// ObserveDNSLookup records the latency of one TXT lookup.
func (m *GatingMetrics) ObserveDNSLookup(ctx context.Context, d time.Duration, outcome string) {
	m.dnsLookups.RecordDuration(ctx, d, AttrOutcome.String(outcome))
}
