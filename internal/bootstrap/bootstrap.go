// Package bootstrap initializes logging configuration before other packages.
//
// This package MUST be imported first (using a blank import) in main.go so
// its init() runs before any package logs. Logs go to stderr; stdout is
// reserved for the addresses the commands print.
package bootstrap

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/joeblew999/pubip/internal/config"
)

func init() {
	// Check if user has explicitly set log level
	level := os.Getenv(config.EnvLogLevel)
	if level == "" {
		level = config.DefaultLogLevel
	}

	// Parse the level to respect user's setting (e.g., PUBIP_LOG_LEVEL=debug)
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}
