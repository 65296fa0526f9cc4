// Package config provides centralized configuration and paths for pubip.
//
// pubip keeps its settings under a single home directory:
//
//	~/.pubip/config.yaml   - source list, strategy, timeout
//
// Environment variables:
//   - PUBIP_HOME: Override the home directory (default: ~/.pubip)
//   - PUBIP_CONFIG: Path to the config file (default: $PUBIP_HOME/config.yaml)
//   - PUBIP_STRATEGY: first | last
//   - PUBIP_TIMEOUT: Per-source timeout (Go duration, e.g. 3s)
//   - PUBIP_VALIDATE: true to reject answers that are not IP addresses
//   - PUBIP_LOG_LEVEL: zerolog level (default: info)
package config

import (
	"os"
	"path/filepath"
	"time"
)

// === Environment variables ===

const (
	EnvHome     = "PUBIP_HOME"
	EnvConfig   = "PUBIP_CONFIG"
	EnvStrategy = "PUBIP_STRATEGY"
	EnvTimeout  = "PUBIP_TIMEOUT"
	EnvValidate = "PUBIP_VALIDATE"
	EnvLogLevel = "PUBIP_LOG_LEVEL"
)

// === Defaults ===

const (
	// DefaultStrategy stops at the first source that answers.
	DefaultStrategy = "first"

	// DefaultTimeout bounds each source lookup.
	DefaultTimeout = 5 * time.Second

	// DefaultLogLevel is used when PUBIP_LOG_LEVEL is unset.
	DefaultLogLevel = "info"

	// DefaultMCPName is the server name reported over MCP.
	DefaultMCPName = "pubip-mcp"

	// ConfigFileName is the config file inside the home directory.
	ConfigFileName = "config.yaml"
)

// === Default permissions ===

const (
	// DefaultDirPerms is the default permission mode for created directories.
	DefaultDirPerms = 0755

	// DefaultFilePerms is the default permission mode for created files.
	DefaultFilePerms = 0644
)

// Home returns the pubip home directory.
// Uses PUBIP_HOME if set, otherwise ~/.pubip
func Home() string {
	if h := os.Getenv(EnvHome); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pubip"
	}
	return filepath.Join(home, ".pubip")
}

// ConfigPath returns the config file path.
// Uses PUBIP_CONFIG if set, otherwise ~/.pubip/config.yaml
func ConfigPath() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	return filepath.Join(Home(), ConfigFileName)
}
