package publicip

import (
	"context"
	"sync"
)

// Built-in echo services. Order matters.
const (
	IPInfoURL      = "https://ipinfo.io/ip"
	DynDNSURL      = "http://checkip.dyndns.org"
	DynDNSPattern  = `Current IP Address:\s*([^<\s]+)`
	OpenDNSHost    = "myip.opendns.com"
	OpenDNSServer  = "resolver1.opendns.com:53"
	GoogleSTUNAddr = "stun.l.google.com:19302"
)

// DefaultSources returns the built-in lookup list: ipinfo.io over HTTP,
// checkip.dyndns.org over HTTP with text extraction, and OpenDNS over DNS.
func DefaultSources() []Source {
	dyndns, err := NewHTTPSource("dyndns", DynDNSURL).WithPattern(DynDNSPattern)
	if err != nil {
		// DynDNSPattern is a constant.
		panic(err)
	}
	return []Source{
		NewHTTPSource("ipinfo", IPInfoURL),
		dyndns,
		NewDNSSource("opendns", OpenDNSHost, OpenDNSServer),
	}
}

var (
	defaultMu       sync.RWMutex
	defaultResolver *Resolver
)

// Default returns the process-wide resolver, creating it over
// DefaultSources on first use.
func Default() *Resolver {
	defaultMu.RLock()
	r := defaultResolver
	defaultMu.RUnlock()
	if r != nil {
		return r
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultResolver == nil {
		defaultResolver = New(DefaultSources())
	}
	return defaultResolver
}

// SetDefault replaces the process-wide resolver (and its cache).
func SetDefault(r *Resolver) {
	defaultMu.Lock()
	defaultResolver = r
	defaultMu.Unlock()
}

// PublicIP returns the process-wide cached public IP, or "" when no source
// answered.
func PublicIP() string {
	return Default().PublicIP(context.Background())
}

// PublicCIDR returns PublicIP() + "/32".
func PublicCIDR() string {
	return Default().CIDR(context.Background())
}

// Invalidate drops the process-wide cached public IP.
func Invalidate() {
	Default().Invalidate()
}
