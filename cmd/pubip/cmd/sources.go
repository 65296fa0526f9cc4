package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joeblew999/pubip/internal/config"
)

var (
	sourcesInit  bool
	sourcesForce bool
)

// SourcesCmd lists the configured sources
var SourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured lookup sources",
	Long: `List the lookup sources in the order they are tried.

With --init, write the built-in defaults to the config file so they can be
edited.

Examples:
  pubip sources
  pubip sources --init
  pubip sources --init --config ./pubip.yaml`,
	Args: cobra.NoArgs,
	RunE: runSources,
}

func init() {
	SourcesCmd.Flags().BoolVar(&sourcesInit, "init", false, "Write the default config file")
	SourcesCmd.Flags().BoolVar(&sourcesForce, "force", false, "Overwrite an existing config file (with --init)")
}

func runSources(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if sourcesInit {
		path := configPath()
		if _, err := os.Stat(path); err == nil && !sourcesForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.Save(path, config.DefaultFile()); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Fprintf(out, "Wrote %s\n", path)
		return nil
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// Build to surface config errors even when only listing.
	if _, err := cfg.BuildSources(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	fmt.Fprintf(out, "strategy: %s  timeout: %s  validate: %t\n\n", cfg.Strategy, cfg.Timeout, cfg.Validate)
	for i, sc := range cfg.Sources {
		fmt.Fprintf(out, "%d. %-14s %-8s %s\n", i+1, sc.Name, sc.Kind, describeSource(sc))
	}
	return nil
}

func describeSource(sc config.SourceConfig) string {
	switch sc.Kind {
	case config.KindHTTP:
		switch {
		case sc.Pattern != "":
			return fmt.Sprintf("%s  pattern=%s", sc.URL, sc.Pattern)
		case sc.Query != "":
			return fmt.Sprintf("%s  query=%s", sc.URL, sc.Query)
		}
		return sc.URL
	case config.KindDNS:
		host := sc.Host
		if host == "" {
			host = "(default)"
		}
		return fmt.Sprintf("%s @%s", host, sc.Server)
	case config.KindSTUN:
		return sc.Server
	case config.KindCommand:
		return sc.Command
	default:
		return ""
	}
}
