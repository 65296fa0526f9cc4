package publicip

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/pion/stun/v3"
)

// STUNSource sends a STUN Binding request and reports the reflexive
// address the server saw (XOR-MAPPED-ADDRESS, falling back to
// MAPPED-ADDRESS for old servers).
type STUNSource struct {
	Label  string
	Server string // host:port, e.g. stun.l.google.com:19302
}

// NewSTUNSource returns a STUN source.
func NewSTUNSource(name, server string) *STUNSource {
	return &STUNSource{Label: name, Server: server}
}

// Name implements Source.
func (s *STUNSource) Name() string { return s.Label }

// Lookup implements Source.
func (s *STUNSource) Lookup(ctx context.Context) (string, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp4", s.Server)
	if err != nil {
		return "", fmt.Errorf("dial %s: %w", s.Server, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := stun.NewClient(conn)
	if err != nil {
		conn.Close()
		return "", fmt.Errorf("stun client: %w", err)
	}
	defer client.Close()

	// Do blocks until a response or the client's own timeout; closing the
	// client unblocks it when ctx ends first.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			client.Close()
		case <-stop:
		}
	}()

	var (
		ip     net.IP
		getErr error
	)
	msg := stun.MustBuild(stun.TransactionID, stun.BindingRequest)
	doErr := client.Do(msg, func(ev stun.Event) {
		if ev.Error != nil {
			getErr = ev.Error
			return
		}
		var xor stun.XORMappedAddress
		if err := xor.GetFrom(ev.Message); err == nil {
			ip = xor.IP
			return
		}
		var mapped stun.MappedAddress
		if err := mapped.GetFrom(ev.Message); err != nil {
			getErr = fmt.Errorf("no mapped address in response: %w", err)
			return
		}
		ip = mapped.IP
	})

	err = errors.Join(doErr, getErr)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", fmt.Errorf("stun %s: %w", s.Server, ctxErr)
	}
	// The conn deadline is the ctx deadline, so I/O can time out first.
	if err != nil && (errors.Is(err, os.ErrDeadlineExceeded) || pastDeadline(ctx)) {
		return "", fmt.Errorf("stun %s: %w: %v", s.Server, context.DeadlineExceeded, err)
	}
	if err != nil {
		return "", fmt.Errorf("stun %s: %w", s.Server, err)
	}
	if ip == nil {
		return "", fmt.Errorf("stun %s: no address in response", s.Server)
	}
	return ip.String(), nil
}

func pastDeadline(ctx context.Context) bool {
	deadline, ok := ctx.Deadline()
	return ok && !time.Now().Before(deadline)
}
