package publicip

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds a single source lookup.
const DefaultTimeout = 5 * time.Second

// Strategy decides which successful source wins.
type Strategy int

const (
	// FirstSuccess stops at the first source that answers.
	FirstSuccess Strategy = iota

	// LastSuccess runs every source and keeps the answer of the last one
	// (in list order) that succeeded.
	LastSuccess
)

func (s Strategy) String() string {
	switch s {
	case FirstSuccess:
		return "first"
	case LastSuccess:
		return "last"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy accepts "first" or "last" (case-insensitive). Empty means
// FirstSuccess.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first", "first-success":
		return FirstSuccess, nil
	case "last", "last-success", "all":
		return LastSuccess, nil
	default:
		return FirstSuccess, fmt.Errorf("unknown strategy %q (want first or last)", s)
	}
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithStrategy sets the selection strategy.
func WithStrategy(s Strategy) Option {
	return func(r *Resolver) { r.strategy = s }
}

// WithTimeout sets the per-source timeout. Zero or negative disables it.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.timeout = d }
}

// WithValidation rejects answers that do not parse as an IP address.
func WithValidation(on bool) Option {
	return func(r *Resolver) { r.validate = on }
}

// WithLogger sets the logger used for per-attempt debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
		r.hasLogger = true
	}
}

// Resolver caches the public IP found by an ordered list of sources.
// It is safe for concurrent use; concurrent first callers share a single
// resolution pass.
type Resolver struct {
	sources   []Source
	strategy  Strategy
	timeout   time.Duration
	validate  bool
	logger    zerolog.Logger
	hasLogger bool

	mu     sync.Mutex
	ip     string
	source string
}

// New returns a Resolver over sources. The slice is copied.
func New(sources []Source, opts ...Option) *Resolver {
	r := &Resolver{
		sources: append([]Source(nil), sources...),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Sources returns a copy of the configured sources.
func (r *Resolver) Sources() []Source {
	return append([]Source(nil), r.sources...)
}

// Strategy returns the selection strategy.
func (r *Resolver) Strategy() Strategy {
	return r.strategy
}

// PublicIP returns the cached address, resolving it on first use.
// It returns "" if no source answered; that outcome is not cached.
func (r *Resolver) PublicIP(ctx context.Context) string {
	res, _ := r.Resolve(ctx)
	return res.IP
}

// CIDR returns PublicIP with "/32" appended ("/32" alone on failure).
func (r *Resolver) CIDR(ctx context.Context) string {
	return CIDR(r.PublicIP(ctx))
}

// Cached returns the cached address without contacting any source.
func (r *Resolver) Cached() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ip, r.ip != ""
}

// Invalidate drops the cached address so the next call resolves again.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	r.ip, r.source = "", ""
	r.mu.Unlock()
}

// Refresh invalidates the cache and resolves again.
func (r *Resolver) Refresh(ctx context.Context) (Result, error) {
	r.Invalidate()
	return r.Resolve(ctx)
}

// Resolve returns the cached address or runs the sources per the strategy.
// On total failure it returns ErrNoAddress joined with every attempt's error.
func (r *Resolver) Resolve(ctx context.Context) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ip != "" {
		return Result{IP: r.ip, Source: r.source, Cached: true}, nil
	}

	var res Result
	for _, src := range r.sources {
		a := r.attempt(ctx, src)
		res.Attempts = append(res.Attempts, a)
		if !a.OK() {
			continue
		}
		res.IP, res.Source = a.Value, a.Source
		if r.strategy == FirstSuccess {
			break
		}
	}

	if res.IP == "" {
		return res, failure(res.Attempts)
	}

	r.ip, r.source = res.IP, res.Source
	r.log().Debug().
		Str("ip", res.IP).
		Str("source", res.Source).
		Str("strategy", r.strategy.String()).
		Int("attempts", len(res.Attempts)).
		Msg("public IP resolved")
	return res, nil
}

// Check runs every source once and reports each outcome. It neither reads
// nor writes the cache.
func (r *Resolver) Check(ctx context.Context) []Attempt {
	attempts := make([]Attempt, 0, len(r.sources))
	for _, src := range r.sources {
		attempts = append(attempts, r.attempt(ctx, src))
	}
	return attempts
}

func (r *Resolver) attempt(ctx context.Context, src Source) Attempt {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	value, err := src.Lookup(ctx)
	a := Attempt{Source: src.Name(), Duration: time.Since(start)}

	value = strings.TrimSpace(value)
	switch {
	case err != nil:
		a.Err = err
	case value == "":
		a.Err = ErrEmptyResponse
	case r.validate && net.ParseIP(value) == nil:
		a.Err = fmt.Errorf("%w: %q", ErrInvalidAddress, value)
	default:
		a.Value = value
	}

	if a.Err != nil {
		r.log().Debug().
			Str("source", a.Source).
			Dur("elapsed", a.Duration).
			Err(a.Err).
			Msg("public IP lookup failed")
	}
	return a
}

func (r *Resolver) log() *zerolog.Logger {
	if r.hasLogger {
		return &r.logger
	}
	return &log.Logger
}

func failure(attempts []Attempt) error {
	errs := []error{ErrNoAddress}
	for _, a := range attempts {
		if a.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", a.Source, a.Err))
		}
	}
	return errors.Join(errs...)
}

// CIDR appends the single-host suffix "/32" to ip. An empty ip yields "/32".
func CIDR(ip string) string {
	return ip + "/32"
}
