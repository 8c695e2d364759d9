package property

import (
	"net"
	"strings"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"golang.org/x/net/idna"
)

// ErrInvalidHost is returned for hosts that cannot be normalized
var ErrInvalidHost = shared.NewDomainError("INVALID_HOST", "Host name is not valid")

// NormalizeHost lowercases a Host header value, drops any port and trailing
// dot, and converts internationalized names to their ASCII form.
func NormalizeHost(raw string) (string, error) {
	host := strings.TrimSpace(raw)
	if host == "" {
		return "", ErrInvalidHost
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "" {
		return "", ErrInvalidHost
	}
	if ip := net.ParseIP(strings.Trim(host, "[]")); ip != nil {
		return ip.String(), nil
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", ErrInvalidHost.Wrap(err)
	}
	return ascii, nil
}

// SubdomainOf returns the leftmost label of host when host sits directly
// under root, e.g. "acme" for ("acme.platform.tld", "platform.tld").
func SubdomainOf(host, root string) (string, bool) {
	if root == "" || !strings.HasSuffix(host, "."+root) {
		return "", false
	}
	label := strings.TrimSuffix(host, "."+root)
	if label == "" || strings.Contains(label, ".") {
		return "", false
	}
	return label, true
}
