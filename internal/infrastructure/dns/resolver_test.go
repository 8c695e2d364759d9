package dns

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	mdns "github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// startServer runs a UDP DNS server on loopback answering with handler
func startServer(t *testing.T, handler mdns.HandlerFunc) string {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	started := make(chan struct{})
	srv := &mdns.Server{PacketConn: pc, Handler: handler, NotifyStartedFunc: func() { close(started) }}
	go func() { _ = srv.ActivateAndServe() }()
	t.Cleanup(func() { _ = srv.Shutdown() })

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("dns server did not start")
	}
	return pc.LocalAddr().String()
}

func zone(records map[string][]string) mdns.HandlerFunc {
	return func(w mdns.ResponseWriter, req *mdns.Msg) {
		resp := new(mdns.Msg)
		resp.SetReply(req)
		q := req.Question[0]
		values, ok := records[q.Name]
		if !ok {
			resp.Rcode = mdns.RcodeNameError
			_ = w.WriteMsg(resp)
			return
		}
		for _, v := range values {
			resp.Answer = append(resp.Answer, &mdns.TXT{
				Hdr: mdns.RR_Header{Name: q.Name, Rrtype: mdns.TypeTXT, Class: mdns.ClassINET, Ttl: 60},
				Txt: splitChunks(v, 10),
			})
		}
		_ = w.WriteMsg(resp)
	}
}

func splitChunks(s string, n int) []string {
	var out []string
	for len(s) > n {
		out = append(out, s[:n])
		s = s[n:]
	}
	return append(out, s)
}

func TestResolver_LookupTXT(t *testing.T) {
	addr := startServer(t, zone(map[string][]string{
		"acmehotel.com.": {"v=spf1 -all", "hotelaccel-verify-0123456789abcdef0123456789abcdef"},
		"empty.example.": {},
	}))
	r := NewResolver(Config{Nameservers: []string{addr}, Timeout: time.Second}, zap.NewNop())
	ctx := context.Background()

	t.Run("joins strings and flattens records", func(t *testing.T) {
		values, err := r.LookupTXT(ctx, "AcmeHotel.com.")
		require.NoError(t, err)
		assert.Equal(t, []string{"v=spf1 -all", "hotelaccel-verify-0123456789abcdef0123456789abcdef"}, values)
	})

	t.Run("existing name without records", func(t *testing.T) {
		values, err := r.LookupTXT(ctx, "empty.example")
		require.NoError(t, err)
		assert.Empty(t, values)
	})

	t.Run("nxdomain is a lookup error", func(t *testing.T) {
		_, err := r.LookupTXT(ctx, "missing.example")
		var le *LookupError
		require.ErrorAs(t, err, &le)
		assert.False(t, le.Timeout())
		assert.True(t, le.NotFound())
		assert.Contains(t, err.Error(), "NXDOMAIN")
	})

	t.Run("malformed name", func(t *testing.T) {
		_, err := r.LookupTXT(ctx, "bad..name")
		var le *LookupError
		require.ErrorAs(t, err, &le)
		assert.Contains(t, le.Reason, "malformed")
	})
}

func TestResolver_ServerFailure(t *testing.T) {
	addr := startServer(t, func(w mdns.ResponseWriter, req *mdns.Msg) {
		resp := new(mdns.Msg)
		resp.SetRcode(req, mdns.RcodeServerFailure)
		_ = w.WriteMsg(resp)
	})
	r := NewResolver(Config{Nameservers: []string{addr}, Timeout: time.Second}, zap.NewNop())

	_, err := r.LookupTXT(context.Background(), "acmehotel.com")
	var le *LookupError
	require.ErrorAs(t, err, &le)
	assert.False(t, le.Timeout())
	assert.Contains(t, err.Error(), "SERVFAIL")
}

func TestResolver_Timeout(t *testing.T) {
	// a bound socket that never answers
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	r := NewResolver(Config{Nameservers: []string{pc.LocalAddr().String()}, Timeout: 100 * time.Millisecond}, zap.NewNop())
	_, err = r.LookupTXT(context.Background(), "acmehotel.com")

	var le *LookupError
	require.ErrorAs(t, err, &le)
	assert.True(t, le.Timeout())
}

func TestNewResolver_Nameservers(t *testing.T) {
	t.Run("adds default port", func(t *testing.T) {
		r := NewResolver(Config{Nameservers: []string{"10.0.0.2"}}, zap.NewNop())
		assert.Equal(t, []string{"10.0.0.2:53"}, r.Nameservers())
	})

	t.Run("reads resolv.conf", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "resolv.conf")
		require.NoError(t, os.WriteFile(path, []byte("nameserver 192.0.2.53\n"), 0o600))
		r := NewResolver(Config{ResolvConf: path}, zap.NewNop())
		assert.Equal(t, []string{"192.0.2.53:53"}, r.Nameservers())
	})

	t.Run("falls back when resolv.conf is missing", func(t *testing.T) {
		r := NewResolver(Config{ResolvConf: filepath.Join(t.TempDir(), "nope")}, zap.NewNop())
		assert.Equal(t, []string{FallbackNameserver}, r.Nameservers())
	})
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) ObserveDNSLookup(_ context.Context, _ time.Duration, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func TestResolver_Observer(t *testing.T) {
	addr := startServer(t, zone(map[string][]string{"acmehotel.com.": {"x"}}))
	obs := &recordingObserver{}
	r := NewResolver(Config{Nameservers: []string{addr}, Timeout: time.Second, Observer: obs}, zap.NewNop())

	_, err := r.LookupTXT(context.Background(), "acmehotel.com")
	require.NoError(t, err)
	_, err = r.LookupTXT(context.Background(), "missing.example")
	require.Error(t, err)

	assert.Equal(t, []string{"ok", "error"}, obs.outcomes)
}
