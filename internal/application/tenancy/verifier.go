package tenancy

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/property"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TXTResolver looks up TXT records. Each returned string is one record with
// its character-strings already joined.
type TXTResolver interface {
	LookupTXT(ctx context.Context, name string) ([]string, error)
}

// VerificationMetrics observes verification outcomes
type VerificationMetrics interface {
	RecordVerification(ctx context.Context, outcome string)
}

type noopVerificationMetrics struct{}

func (noopVerificationMetrics) RecordVerification(context.Context, string) {}

// Reasons attached to failed verification results
const (
	ReasonRecordMissing = "RECORD_MISSING"
	ReasonLookupFailed  = "DNS_LOOKUP_FAILED"
	ReasonTimeout       = shared.CodeUpstreamTimeout
)

// VerificationResult is the outcome of one DNS check
type VerificationResult struct {
	PropertyID uuid.UUID
	Domain     string
	Verified   bool
	// Expected is the TXT value the operator must publish
	Expected string
	// Observed lists every TXT value the lookup returned
	Observed   []string
	Reason     string
	Message    string
	CheckedAt  time.Time
	VerifiedAt *time.Time
	// Transitioned is true when this call flipped the status to verified
	Transitioned bool
}

// ReverifyOutcome classifies a scheduled re-check
type ReverifyOutcome string

const (
	ReverifyConfirmed    ReverifyOutcome = "confirmed"
	ReverifyRevoked      ReverifyOutcome = "revoked"
	ReverifyInconclusive ReverifyOutcome = "inconclusive"
	ReverifySkipped      ReverifyOutcome = "skipped"
)

// ReverifySummary counts the outcomes of one ReverifyAll pass
type ReverifySummary struct {
	Checked      int
	Confirmed    int
	Revoked      int
	Inconclusive int
	Failed       int
}

// VerifierConfig configures the Verifier
type VerifierConfig struct {
	Timeout time.Duration
	Clock   clock.Clock
}

// Verifier proves custom-domain ownership through a DNS TXT record
// published at the domain itself.
type Verifier struct {
	repo      property.Repository
	dns       TXTResolver
	publisher shared.EventPublisher
	timeout   time.Duration
	clock     clock.Clock
	metrics   VerificationMetrics
	logger    *zap.Logger
}

// VerifierOption configures a Verifier
type VerifierOption func(*Verifier)

// WithVerificationMetrics records each outcome
func WithVerificationMetrics(m VerificationMetrics) VerifierOption {
	return func(v *Verifier) {
		if m != nil {
			v.metrics = m
		}
	}
}

// NewVerifier creates a Verifier. publisher may be nil.
func NewVerifier(
	repo property.Repository,
	dns TXTResolver,
	publisher shared.EventPublisher,
	cfg VerifierConfig,
	logger *zap.Logger,
	opts ...VerifierOption,
) *Verifier {
	v := &Verifier{
		repo:      repo,
		dns:       dns,
		publisher: publisher,
		timeout:   cfg.Timeout,
		clock:     cfg.Clock,
		metrics:   noopVerificationMetrics{},
		logger:    logger,
	}
	if v.timeout <= 0 {
		v.timeout = 5 * time.Second
	}
	if v.clock == nil {
		v.clock = clock.New()
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks the TXT record of the property's custom domain.
//
// A mismatch or DNS failure is reported in the result, never as an error,
// and leaves the property untouched. A match marks the domain verified; the
// first successful check fixes DomainVerifiedAt and later ones only advance
// DomainLastCheckedAt.
func (v *Verifier) Verify(ctx context.Context, propertyID uuid.UUID) (VerificationResult, error) {
	p, err := v.load(ctx, propertyID)
	if err != nil {
		return VerificationResult{}, err
	}
	if !p.HasDomainToVerify() {
		return VerificationResult{}, shared.ErrDomainNotConfigured
	}

	result := v.check(ctx, p)
	if !result.Verified {
		v.metrics.RecordVerification(ctx, "failed")
		v.logger.Info("Domain verification failed",
			zap.String("tenant_id", p.ID.String()),
			zap.String("domain", p.CustomDomain),
			zap.String("reason", result.Reason),
			zap.Strings("observed", result.Observed),
		)
		return result, nil
	}

	var transitioned bool
	saved, err := v.apply(ctx, p, func(fresh *property.Property) bool {
		transitioned = fresh.MarkDomainVerified(result.CheckedAt)
		return true
	})
	if err != nil {
		return VerificationResult{}, err
	}
	if saved == nil {
		v.metrics.RecordVerification(ctx, "stale")
		return VerificationResult{}, shared.ErrConcurrencyConflict.WithMessage("The custom domain changed while it was being verified")
	}
	p = saved
	result.Transitioned = transitioned
	result.VerifiedAt = p.DomainVerifiedAt

	v.metrics.RecordVerification(ctx, "verified")
	v.logger.Info("Domain verified",
		zap.String("tenant_id", p.ID.String()),
		zap.String("domain", p.CustomDomain),
		zap.Bool("transitioned", result.Transitioned),
	)
	return result, nil
}

// Reverify re-checks a verified domain. Only a definitive answer without
// the token revokes it, NXDOMAIN included; other DNS errors keep the
// current state.
func (v *Verifier) Reverify(ctx context.Context, propertyID uuid.UUID) (ReverifyOutcome, error) {
	p, err := v.load(ctx, propertyID)
	if err != nil {
		return "", err
	}
	if p.DomainVerificationStatus != property.DomainStatusVerified || !p.HasDomainToVerify() {
		return ReverifySkipped, nil
	}

	result := v.check(ctx, p)
	switch {
	case result.Verified:
		saved, err := v.apply(ctx, p, func(fresh *property.Property) bool {
			if fresh.DomainVerificationStatus != property.DomainStatusVerified {
				return false
			}
			fresh.MarkDomainVerified(result.CheckedAt)
			return true
		})
		if err != nil {
			return "", err
		}
		if saved == nil {
			return ReverifySkipped, nil
		}
		v.metrics.RecordVerification(ctx, "reverify_confirmed")
		return ReverifyConfirmed, nil

	case result.Reason == ReasonRecordMissing:
		saved, err := v.apply(ctx, p, func(fresh *property.Property) bool {
			return fresh.RevokeDomainVerification(result.CheckedAt, result.Message)
		})
		if err != nil {
			return "", err
		}
		if saved == nil {
			return ReverifySkipped, nil
		}
		v.metrics.RecordVerification(ctx, "revoked")
		v.logger.Warn("Custom domain verification revoked",
			zap.String("tenant_id", p.ID.String()),
			zap.String("domain", p.CustomDomain),
			zap.Strings("observed", result.Observed),
		)
		return ReverifyRevoked, nil

	default:
		v.metrics.RecordVerification(ctx, "reverify_inconclusive")
		v.logger.Warn("Custom domain re-check inconclusive",
			zap.String("tenant_id", p.ID.String()),
			zap.String("domain", p.CustomDomain),
			zap.String("reason", result.Reason),
			zap.String("message", result.Message),
		)
		return ReverifyInconclusive, nil
	}
}

// ReverifyAll re-checks every verified domain. Per-property failures are
// logged and counted; only failing to list the domains aborts the pass.
func (v *Verifier) ReverifyAll(ctx context.Context) (ReverifySummary, error) {
	props, err := v.repo.FindVerifiedDomains(ctx)
	if err != nil {
		return ReverifySummary{}, storeFailure("list verified domains", err)
	}

	var sum ReverifySummary
	for i := range props {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		outcome, err := v.Reverify(ctx, props[i].ID)
		sum.Checked++
		if err != nil {
			sum.Failed++
			v.logger.Error("Domain re-verification failed",
				zap.String("tenant_id", props[i].ID.String()),
				zap.Error(err),
			)
			continue
		}
		switch outcome {
		case ReverifyConfirmed:
			sum.Confirmed++
		case ReverifyRevoked:
			sum.Revoked++
		case ReverifyInconclusive:
			sum.Inconclusive++
		}
	}
	return sum, nil
}

func (v *Verifier) check(ctx context.Context, p *property.Property) VerificationResult {
	result := VerificationResult{
		PropertyID: p.ID,
		Domain:     p.CustomDomain,
		Expected:   p.DomainVerificationToken,
		Observed:   []string{},
	}

	lookupCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	records, err := v.dns.LookupTXT(lookupCtx, p.CustomDomain)
	result.CheckedAt = v.clock.Now()
	if err != nil && isNotFound(err) {
		result.Reason = ReasonRecordMissing
		result.Message = fmt.Sprintf("Domain %s does not exist (NXDOMAIN)", p.CustomDomain)
		return result
	}
	if err != nil {
		result.Reason = ReasonLookupFailed
		if isTimeout(err) || errors.Is(lookupCtx.Err(), context.DeadlineExceeded) {
			result.Reason = ReasonTimeout
			result.Message = fmt.Sprintf("DNS lookup for %s timed out after %s", p.CustomDomain, v.timeout)
		} else {
			result.Message = fmt.Sprintf("DNS lookup for %s failed: %v", p.CustomDomain, err)
		}
		return result
	}

	if records != nil {
		result.Observed = records
	}
	for _, rec := range records {
		if rec == p.DomainVerificationToken {
			result.Verified = true
			result.Message = "Domain verified"
			return result
		}
	}

	result.Reason = ReasonRecordMissing
	if len(records) == 0 {
		result.Message = fmt.Sprintf("No TXT records found for %s", p.CustomDomain)
	} else {
		result.Message = fmt.Sprintf("None of the %d TXT records for %s matches the verification token", len(records), p.CustomDomain)
	}
	return result
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// isNotFound recognizes NXDOMAIN, a definitive answer rather than a failure
func isNotFound(err error) bool {
	var nf interface{ NotFound() bool }
	if errors.As(err, &nf) && nf.NotFound() {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr) && dnsErr.IsNotFound
}

func (v *Verifier) load(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	p, err := v.repo.FindByID(ctx, id)
	if err != nil {
		if isMiss(err) {
			return nil, shared.ErrPropertyNotFound
		}
		return nil, storeFailure("load property", err)
	}
	return p, nil
}

// maxApplyAttempts bounds retries when an admin write races a check
const maxApplyAttempts = 3

// apply writes a DNS outcome onto the current row. The property is reloaded
// after the lookup so writes made meanwhile are kept, and the save is
// version-checked. The outcome is dropped (nil, nil) when the domain or
// token checked is no longer the one stored, or when mutate declines.
func (v *Verifier) apply(ctx context.Context, checked *property.Property, mutate func(*property.Property) bool) (*property.Property, error) {
	for attempt := 0; attempt < maxApplyAttempts; attempt++ {
		fresh, err := v.load(ctx, checked.ID)
		if err != nil {
			return nil, err
		}
		if fresh.CustomDomain != checked.CustomDomain || fresh.DomainVerificationToken != checked.DomainVerificationToken {
			v.logger.Info("Custom domain changed during verification",
				zap.String("tenant_id", checked.ID.String()),
				zap.String("checked_domain", checked.CustomDomain),
				zap.String("current_domain", fresh.CustomDomain),
			)
			return nil, nil
		}
		if !mutate(fresh) {
			return nil, nil
		}

		fresh.IncrementVersion()
		err = v.repo.SaveWithLock(ctx, fresh)
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			continue
		}
		if err != nil {
			v.logger.Error("Failed to save domain verification",
				zap.String("tenant_id", fresh.ID.String()),
				zap.Error(err),
			)
			return nil, storeFailure("save property", err)
		}
		publishEvents(ctx, v.publisher, v.logger, fresh)
		return fresh, nil
	}
	return nil, shared.ErrConcurrencyConflict
}

// publishEvents hands pending aggregate events to the bus and clears them.
// Handler failures are logged by the bus and do not undo the save.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, p *property.Property) {
	events := p.GetDomainEvents()
	p.ClearDomainEvents()
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Warn("Failed to publish property events",
			zap.String("tenant_id", p.ID.String()),
			zap.Error(err),
		)
	}
}
