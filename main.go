// pubip - Public and local IP address lookup
//
// A single binary that reports the machine's public IPv4 address (via
// HTTP, DNS, STUN or shell echo services), its /32 CIDR, and its LAN IP.
package main

import (
	"os"

	// Bootstrap MUST be imported first to set the log level before anything logs
	_ "github.com/joeblew999/pubip/internal/bootstrap"

	"github.com/joeblew999/pubip/cmd/pubip/cmd"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "pubip",
		Short: "Find this machine's public and local IP addresses",
		Long: `pubip asks external echo services for this machine's public IPv4
address and caches the first answer for the life of the process.

SOURCES (tried in order, built-in defaults):
  1. ipinfo   - https://ipinfo.io/ip
  2. dyndns   - http://checkip.dyndns.org (address extracted from HTML)
  3. opendns  - DNS query for myip.opendns.com @resolver1.opendns.com

Add HTTP, DNS, STUN or shell command sources in ~/.pubip/config.yaml
(pubip sources --init writes a starting point).

KEY COMMANDS:
  ip        - Public IP
  cidr      - Public IP as <ip>/32
  local     - LAN IP
  check     - Run every source and show results
  sources   - List configured sources
  mcp       - MCP server for AI assistants`,
		SilenceUsage: true,
	}

	cmd.AddPersistentFlags(rootCmd)

	// Pass version to the version command
	cmd.SetVersion(Version)

	rootCmd.AddCommand(cmd.VersionCmd)
	rootCmd.AddCommand(cmd.IPCmd)
	rootCmd.AddCommand(cmd.CIDRCmd)
	rootCmd.AddCommand(cmd.LocalCmd)
	rootCmd.AddCommand(cmd.CheckCmd)
	rootCmd.AddCommand(cmd.SourcesCmd)
	rootCmd.AddCommand(cmd.MCPCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
