package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// CIDRCmd prints the public IP as a single-host CIDR block
var CIDRCmd = &cobra.Command{
	Use:   "cidr",
	Short: "Print the public IP as <ip>/32",
	Long: `Print the public IP with "/32" appended, ready for firewall rules.

If no source answers, "/32" is printed and the command exits 1.

Examples:
  pubip cidr
  aws ec2 authorize-security-group-ingress --cidr "$(pubip cidr)" ...`,
	Args: cobra.NoArgs,
	RunE: runCIDR,
}

func runCIDR(cmd *cobra.Command, args []string) error {
	r, err := newResolver(cmd)
	if err != nil {
		return err
	}

	res, resolveErr := r.Resolve(cmd.Context())
	fmt.Fprintln(cmd.OutOrStdout(), res.CIDR())
	if resolveErr != nil {
		return fmt.Errorf("%w: %v", errNoAddress, resolveErr)
	}
	return nil
}
