package property

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHost(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Acme.Platform.TLD", "acme.platform.tld"},
		{"strips port", "acme.platform.tld:8443", "acme.platform.tld"},
		{"strips trailing dot", "acmehotel.com.", "acmehotel.com"},
		{"converts unicode", "hôtel.example", "xn--htel-vqa.example"},
		{"keeps ipv4", "127.0.0.1:8080", "127.0.0.1"},
		{"keeps ipv6", "[::1]:8080", "::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeHost(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("rejects empty", func(t *testing.T) {
		_, err := NormalizeHost("  ")
		assert.ErrorIs(t, err, ErrInvalidHost)
	})
}

func TestSubdomainOf(t *testing.T) {
	label, ok := SubdomainOf("acme.platform.tld", "platform.tld")
	assert.True(t, ok)
	assert.Equal(t, "acme", label)

	_, ok = SubdomainOf("platform.tld", "platform.tld")
	assert.False(t, ok)

	_, ok = SubdomainOf("a.b.platform.tld", "platform.tld")
	assert.False(t, ok, "nested labels are not subdomains")

	_, ok = SubdomainOf("acme.otherplatform.tld", "platform.tld")
	assert.False(t, ok)

	_, ok = SubdomainOf("acmeplatform.tld", "platform.tld")
	assert.False(t, ok)
}
