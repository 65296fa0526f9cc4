// lanip prints the local LAN IP address.
// Cross-platform (macOS, Linux, Windows).
//
// Interface enumeration is tried first; when it finds nothing the
// routing-table address from a UDP dial is printed instead.
//
// Usage: go run ./cmd/lanip
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joeblew999/pubip/pkg/localip"
)

func main() {
	os.Exit(run(os.Stdout, os.Stderr, localip.LocalIP, localip.Outbound))
}

func run(stdout, stderr io.Writer, local func() string, outbound func() (string, error)) int {
	ip := local()
	if ip == localip.Fallback {
		var err error
		ip, err = outbound()
		if err != nil {
			fmt.Fprintf(stderr, "Could not determine LAN IP: %v\n", err)
			return 1
		}
	}
	fmt.Fprintln(stdout, ip)
	return 0
}
