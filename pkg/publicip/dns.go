package publicip

import (
	"context"
	"fmt"
	"net"
)

// DNSSource resolves a special hostname against a specific name server
// that answers with the querying address (e.g. myip.opendns.com at
// resolver1.opendns.com).
type DNSSource struct {
	Label  string
	Host   string
	Server string // host:port
}

// NewDNSSource returns a DNS echo source.
func NewDNSSource(name, host, server string) *DNSSource {
	return &DNSSource{Label: name, Host: host, Server: server}
}

// Name implements Source.
func (s *DNSSource) Name() string { return s.Label }

// Lookup implements Source.
func (s *DNSSource) Lookup(ctx context.Context) (string, error) {
	resolver := &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, network, s.Server)
		},
	}

	ips, err := resolver.LookupIP(ctx, "ip4", s.Host)
	if err != nil {
		return "", fmt.Errorf("lookup %s @%s: %w", s.Host, s.Server, err)
	}
	if len(ips) == 0 {
		return "", fmt.Errorf("lookup %s @%s: no A records", s.Host, s.Server)
	}
	return ips[0].String(), nil
}
