package localip

import (
	"fmt"
	"net"
)

// OutboundProbe is the address dialled by Outbound. Any routable address
// works; no packet is sent.
const OutboundProbe = "8.8.8.8:80"

// Outbound returns the local address the OS would use to reach the
// internet. UDP dial picks a route without sending traffic.
func Outbound() (string, error) {
	conn, err := net.Dial("udp4", OutboundProbe)
	if err != nil {
		return "", fmt.Errorf("failed to determine outbound IP: %w", err)
	}
	defer conn.Close()

	localAddr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "", fmt.Errorf("unexpected address type: %T", conn.LocalAddr())
	}
	return localAddr.IP.String(), nil
}
