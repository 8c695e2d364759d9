// Package dns looks up TXT records for custom-domain verification.
package dns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	mdns "github.com/miekg/dns"
	"go.uber.org/zap"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/telemetry"
)

// FallbackNameserver is used when no nameserver is configured and the
// system resolver configuration cannot be read.
const FallbackNameserver = "1.1.1.1:53"

// DefaultTimeout bounds one lookup across all nameservers
const DefaultTimeout = 5 * time.Second

// LookupError describes a failed TXT lookup
type LookupError struct {
	Name    string
	Reason  string
	Err      error
	timeout  bool
	notFound bool
}

// Error implements error
func (e *LookupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lookup TXT %s: %s: %v", e.Name, e.Reason, e.Err)
	}
	return fmt.Sprintf("lookup TXT %s: %s", e.Name, e.Reason)
}

// Unwrap returns the cause
func (e *LookupError) Unwrap() error { return e.Err }

// Timeout reports whether the lookup ran out of time
func (e *LookupError) Timeout() bool { return e.timeout }

// NotFound reports an authoritative NXDOMAIN answer
func (e *LookupError) NotFound() bool { return e.notFound }

// Config configures the resolver
type Config struct {
	// Nameservers as host:port. Empty means the system configuration.
	Nameservers []string
	Timeout     time.Duration
	// ResolvConf is the system resolver file, /etc/resolv.conf by default
	ResolvConf string
	// Observer receives lookup latencies; nil disables it
	Observer LookupObserver
}

// LookupObserver records TXT lookup latency by outcome
type LookupObserver interface {
	ObserveDNSLookup(ctx context.Context, d time.Duration, outcome string)
}

// Resolver queries TXT records directly against nameservers
type Resolver struct {
	servers  []string
	timeout  time.Duration
	udp      *mdns.Client
	tcp      *mdns.Client
	observer LookupObserver
	logger   *zap.Logger
}

// NewResolver creates a resolver from cfg
func NewResolver(cfg Config, logger *zap.Logger) *Resolver {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.ResolvConf == "" {
		cfg.ResolvConf = "/etc/resolv.conf"
	}
	servers := append([]string(nil), cfg.Nameservers...)
	if len(servers) == 0 {
		servers = systemNameservers(cfg.ResolvConf)
	}
	for i, s := range servers {
		if _, _, err := net.SplitHostPort(s); err != nil {
			servers[i] = net.JoinHostPort(s, "53")
		}
	}

	return &Resolver{
		servers:  servers,
		timeout:  cfg.Timeout,
		udp:      &mdns.Client{Net: "udp", Timeout: cfg.Timeout},
		tcp:      &mdns.Client{Net: "tcp", Timeout: cfg.Timeout},
		observer: cfg.Observer,
		logger:   logger,
	}
}

func systemNameservers(path string) []string {
	cc, err := mdns.ClientConfigFromFile(path)
	if err != nil || len(cc.Servers) == 0 {
		return []string{FallbackNameserver}
	}
	out := make([]string, 0, len(cc.Servers))
	for _, s := range cc.Servers {
		out = append(out, net.JoinHostPort(s, cc.Port))
	}
	return out
}

// Nameservers returns the servers queried, in order
func (r *Resolver) Nameservers() []string {
	return append([]string(nil), r.servers...)
}

// LookupTXT returns the TXT values published at name. The character
// strings of one record are joined; records are returned in answer order.
// A name that exists without TXT records yields an empty slice.
func (r *Resolver) LookupTXT(ctx context.Context, name string) ([]string, error) {
	name = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".")
	if _, ok := mdns.IsDomainName(name); !ok || name == "" {
		return nil, &LookupError{Name: name, Reason: "malformed domain name"}
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "dns", "lookup_txt",
		telemetry.WithAttribute(telemetry.SpanAttrDomain, name))
	defer span.End()

	start := time.Now()
	values, err := r.lookup(ctx, name)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		var le *LookupError
		if errors.As(err, &le) && le.Timeout() {
			outcome = "timeout"
		}
		telemetry.RecordError(span, err)
	}
	if r.observer != nil {
		r.observer.ObserveDNSLookup(ctx, time.Since(start), outcome)
	}
	return values, err
}

func (r *Resolver) lookup(ctx context.Context, name string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	msg := new(mdns.Msg)
	msg.SetQuestion(mdns.Fqdn(name), mdns.TypeTXT)
	msg.RecursionDesired = true

	var lastErr error
	for _, server := range r.servers {
		resp, err := r.exchange(ctx, msg, server)
		if err != nil {
			lastErr = err
			r.logger.Debug("TXT query failed", zap.String("server", server), zap.String("name", name), zap.Error(err))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		switch resp.Rcode {
		case mdns.RcodeSuccess:
			return txtValues(resp), nil
		case mdns.RcodeNameError:
			return nil, &LookupError{Name: name, Reason: "domain does not exist (NXDOMAIN)", notFound: true}
		default:
			lastErr = fmt.Errorf("server %s answered %s", server, mdns.RcodeToString[resp.Rcode])
		}
	}

	if ctx.Err() != nil || isTimeout(lastErr) {
		return nil, &LookupError{Name: name, Reason: "timed out", Err: lastErr, timeout: true}
	}
	return nil, &LookupError{Name: name, Reason: "server failure", Err: lastErr}
}

func (r *Resolver) exchange(ctx context.Context, msg *mdns.Msg, server string) (*mdns.Msg, error) {
	resp, _, err := r.udp.ExchangeContext(ctx, msg, server)
	if err != nil {
		return nil, err
	}
	if resp.Truncated {
		resp, _, err = r.tcp.ExchangeContext(ctx, msg, server)
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func txtValues(resp *mdns.Msg) []string {
	values := make([]string, 0, len(resp.Answer))
	for _, rr := range resp.Answer {
		if txt, ok := rr.(*mdns.TXT); ok {
			values = append(values, strings.Join(txt.Txt, ""))
		}
	}
	return values
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
