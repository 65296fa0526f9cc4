package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joeblew999/pubip/pkg/publicip"
)

var ipJSON bool

// errNoAddress makes the command exit 1 after its output is printed.
var errNoAddress = errors.New("could not determine public IP")

// IPCmd prints the public IP
var IPCmd = &cobra.Command{
	Use:   "ip",
	Short: "Print the public IP address",
	Long: `Ask each configured source in order and print the first answer.

With --strategy last every source is run and the last answer wins.

Examples:
  pubip ip
  pubip ip --json
  pubip ip --strategy last --timeout 2s`,
	Args: cobra.NoArgs,
	RunE: runIP,
}

func init() {
	IPCmd.Flags().BoolVar(&ipJSON, "json", false, "Print the full result with every attempt as JSON")
}

func runIP(cmd *cobra.Command, args []string) error {
	r, err := newResolver(cmd)
	if err != nil {
		return err
	}

	res, resolveErr := r.Resolve(cmd.Context())
	if ipJSON {
		if err := printResultJSON(cmd, res); err != nil {
			return err
		}
	} else if res.IP != "" {
		fmt.Fprintln(cmd.OutOrStdout(), res.IP)
	}

	if resolveErr != nil {
		return fmt.Errorf("%w: %v", errNoAddress, resolveErr)
	}
	return nil
}

// resultJSON is the --json output shape.
type resultJSON struct {
	IP       string        `json:"ip"`
	CIDR     string        `json:"cidr"`
	Source   string        `json:"source,omitempty"`
	Attempts []attemptJSON `json:"attempts"`
}

type attemptJSON struct {
	Source     string `json:"source"`
	Value      string `json:"value,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

func toResultJSON(res publicip.Result) resultJSON {
	out := resultJSON{
		IP:       res.IP,
		CIDR:     res.CIDR(),
		Source:   res.Source,
		Attempts: make([]attemptJSON, 0, len(res.Attempts)),
	}
	for _, a := range res.Attempts {
		out.Attempts = append(out.Attempts, attemptJSON{
			Source:     a.Source,
			Value:      a.Value,
			Error:      a.ErrorString(),
			DurationMS: a.Duration.Milliseconds(),
		})
	}
	return out
}

func printResultJSON(cmd *cobra.Command, res publicip.Result) error {
	output, err := json.MarshalIndent(toResultJSON(res), "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(output))
	return nil
}
