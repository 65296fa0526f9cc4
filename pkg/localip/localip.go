// Package localip finds the machine's LAN-facing IPv4 address.
package localip

import (
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog/log"
)

// Fallback is returned when no non-internal IPv4 address exists.
const Fallback = "localhost"

// Family is an address family tag.
type Family string

const (
	// IPv4 tags a 4-byte address.
	IPv4 Family = "IPv4"
	// IPv6 tags a 16-byte address that is not IPv4-mapped.
	IPv6 Family = "IPv6"
)

// Address is one address bound to an interface.
type Address struct {
	IP       net.IP
	Family   Family
	Internal bool // loopback address or loopback interface
}

// Interface is a named network interface and its addresses, in the order
// the OS reported them.
type Interface struct {
	Name  string
	Addrs []Address
}

// Enumerator lists host interfaces. SystemInterfaces is the real one;
// tests pass fixed tables.
type Enumerator func() ([]Interface, error)

// SystemInterfaces enumerates the host's interfaces. Interfaces whose
// addresses cannot be read are skipped.
func SystemInterfaces() ([]Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to get network interfaces: %w", err)
	}

	out := make([]Interface, 0, len(ifaces))
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			log.Debug().Str("interface", iface.Name).Err(err).Msg("skipping interface")
			continue
		}

		loopback := iface.Flags&net.FlagLoopback != 0
		entry := Interface{Name: iface.Name}
		for _, addr := range addrs {
			var ip net.IP
			switch a := addr.(type) {
			case *net.IPNet:
				ip = a.IP
			case *net.IPAddr:
				ip = a.IP
			default:
				continue
			}
			entry.Addrs = append(entry.Addrs, newAddress(ip, loopback))
		}
		out = append(out, entry)
	}
	return out, nil
}

func newAddress(ip net.IP, loopbackIface bool) Address {
	family := IPv6
	if ip.To4() != nil {
		family = IPv4
	}
	return Address{
		IP:       ip,
		Family:   family,
		Internal: loopbackIface || ip.IsLoopback(),
	}
}

// Find returns the first IPv4, non-internal address in enumeration order.
func Find(ifaces []Interface) (string, bool) {
	for _, iface := range ifaces {
		for _, addr := range iface.Addrs {
			if addr.Family != IPv4 || addr.Internal {
				continue
			}
			if v4 := addr.IP.To4(); v4 != nil {
				return v4.String(), true
			}
		}
	}
	return "", false
}

// Resolver caches the local IP. It is safe for concurrent use.
type Resolver struct {
	enumerate Enumerator

	mu sync.Mutex
	ip string
}

// New returns a Resolver. A nil enumerator means SystemInterfaces.
func New(enumerate Enumerator) *Resolver {
	if enumerate == nil {
		enumerate = SystemInterfaces
	}
	return &Resolver{enumerate: enumerate}
}

// LocalIP returns the cached address, finding it on first use. When nothing
// qualifies it returns Fallback, which is not cached.
func (r *Resolver) LocalIP() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ip != "" {
		return r.ip
	}

	ifaces, err := r.enumerate()
	if err != nil {
		log.Debug().Err(err).Msg("interface enumeration failed")
		return Fallback
	}

	ip, ok := Find(ifaces)
	if !ok {
		log.Debug().Int("interfaces", len(ifaces)).Msg("no non-internal IPv4 address, using " + Fallback)
		return Fallback
	}

	r.ip = ip
	log.Debug().Str("ip", ip).Msg("local IP resolved")
	return ip
}

// Cached returns the cached address without enumerating.
func (r *Resolver) Cached() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ip, r.ip != ""
}

// Invalidate drops the cached address.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	r.ip = ""
	r.mu.Unlock()
}

var (
	defaultOnce     sync.Once
	defaultResolver *Resolver
)

// Default returns the process-wide resolver over SystemInterfaces.
func Default() *Resolver {
	defaultOnce.Do(func() {
		defaultResolver = New(SystemInterfaces)
	})
	return defaultResolver
}

// LocalIP returns the process-wide cached local IP, or Fallback.
func LocalIP() string {
	return Default().LocalIP()
}
