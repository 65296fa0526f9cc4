package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joeblew999/pubip/pkg/localip"
)

var localOutbound bool

// LocalCmd prints the LAN IP
var LocalCmd = &cobra.Command{
	Use:   "local",
	Short: "Print the local (LAN) IPv4 address",
	Long: `Print the first non-loopback IPv4 address found on the host's interfaces.

Prints "localhost" and exits 1 when none exists.

With --outbound the address is the one the OS would route internet traffic
from (UDP dial, no packet sent).

Examples:
  pubip local
  pubip local --outbound`,
	Args: cobra.NoArgs,
	RunE: runLocal,
}

func init() {
	LocalCmd.Flags().BoolVar(&localOutbound, "outbound", false, "Use the outbound route instead of interface enumeration")
}

func runLocal(cmd *cobra.Command, args []string) error {
	if localOutbound {
		ip, err := localip.Outbound()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ip)
		return nil
	}

	ip := localip.LocalIP()
	fmt.Fprintln(cmd.OutOrStdout(), ip)
	if ip == localip.Fallback {
		return errors.New("no non-loopback IPv4 address found")
	}
	return nil
}
