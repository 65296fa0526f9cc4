// Package cmd provides CLI commands for pubip.
package cmd

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/joeblew999/pubip/internal/config"
	"github.com/joeblew999/pubip/pkg/publicip"
)

var (
	flagConfig   string
	flagStrategy string
	flagTimeout  time.Duration
	flagValidate bool
)

// AddPersistentFlags registers the flags shared by every subcommand.
func AddPersistentFlags(root *cobra.Command) {
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default $PUBIP_CONFIG or ~/.pubip/config.yaml)")
	root.PersistentFlags().StringVar(&flagStrategy, "strategy", "", "Source selection: first or last")
	root.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "Per-source timeout (e.g. 3s, 0 disables)")
	root.PersistentFlags().BoolVar(&flagValidate, "validate", false, "Reject answers that are not IP addresses")
}

// configPath returns --config, falling back to the environment/home default.
func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.ConfigPath()
}

// loadConfig reads the config file, then env overrides, then flags.
func loadConfig(cmd *cobra.Command) (*config.File, error) {
	path := configPath()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if flagStrategy != "" {
		cfg.Strategy = flagStrategy
	}
	if cmd != nil && cmd.Flags().Changed("timeout") {
		cfg.Timeout = flagTimeout.String()
	}
	if cmd != nil && cmd.Flags().Changed("validate") {
		cfg.Validate = flagValidate
	}

	log.Debug().
		Str("config", path).
		Str("strategy", cfg.Strategy).
		Str("timeout", cfg.Timeout).
		Int("sources", len(cfg.Sources)).
		Msg("configuration loaded")
	return cfg, nil
}

// newResolver builds the resolver for this invocation and installs it as
// the process-wide default.
func newResolver(cmd *cobra.Command) (*publicip.Resolver, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	r, err := cfg.NewResolver()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	publicip.SetDefault(r)
	return r, nil
}
