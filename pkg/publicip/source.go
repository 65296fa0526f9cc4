// Package publicip determines the machine's public IPv4 address by asking
// external echo services (HTTP, DNS, STUN or a shell command) in order and
// caching the first answer.
//
// Typical use:
//
//	ip := publicip.PublicIP()      // "203.0.113.7" or "" if nothing answered
//	cidr := publicip.PublicCIDR()  // "203.0.113.7/32"
//
// For diagnostics use a Resolver directly and call Resolve, which reports
// every attempted source.
package publicip

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoAddress is returned by Resolve when no source produced an address.
	ErrNoAddress = errors.New("publicip: no source returned an address")

	// ErrEmptyResponse means a source completed but printed nothing.
	ErrEmptyResponse = errors.New("empty response")

	// ErrInvalidAddress means validation is on and the output is not an IP.
	ErrInvalidAddress = errors.New("not an IP address")
)

// Source is one way of asking "what is my public IP".
type Source interface {
	// Name identifies the source in logs and attempt reports.
	Name() string

	// Lookup returns the raw answer. Whitespace is trimmed by the resolver.
	Lookup(ctx context.Context) (string, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc struct {
	Label string
	Fn    func(ctx context.Context) (string, error)
}

// Name implements Source.
func (s SourceFunc) Name() string { return s.Label }

// Lookup implements Source.
func (s SourceFunc) Lookup(ctx context.Context) (string, error) { return s.Fn(ctx) }

// Attempt records the outcome of running one source.
type Attempt struct {
	Source   string
	Value    string
	Err      error
	Duration time.Duration
}

// OK reports whether the attempt produced a value.
func (a Attempt) OK() bool {
	return a.Err == nil
}

// ErrorString returns the attempt's error text, or "" on success.
func (a Attempt) ErrorString() string {
	if a.Err == nil {
		return ""
	}
	return a.Err.Error()
}

// Result is what Resolve returns.
type Result struct {
	// IP is the selected address, "" when nothing succeeded.
	IP string

	// Source is the name of the source that produced IP.
	Source string

	// Cached is true when IP came from the cache and no source was run.
	Cached bool

	// Attempts lists every source run during this call, in order.
	Attempts []Attempt
}

// CIDR returns the single-host block for the result.
func (r Result) CIDR() string {
	return CIDR(r.IP)
}

// StatusError is returned by HTTP sources for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
}
