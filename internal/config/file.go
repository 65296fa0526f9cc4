package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/a8m/envsubst"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/pubip/pkg/publicip"
)

// Source kinds accepted in the config file.
const (
	KindHTTP    = "http"
	KindDNS     = "dns"
	KindSTUN    = "stun"
	KindCommand = "command"
)

// File is the on-disk configuration.
// Stored at ~/.pubip/config.yaml. ${VAR} references are expanded before parsing.
type File struct {
	// Strategy is "first" (stop at first answer) or "last" (run all, keep last answer)
	Strategy string `yaml:"strategy,omitempty"`
	// Timeout is the per-source timeout, e.g. "5s"
	Timeout string `yaml:"timeout,omitempty"`
	// Validate rejects answers that are not IP addresses
	Validate bool `yaml:"validate,omitempty"`
	// Sources is the ordered lookup list (empty = built-in defaults)
	Sources []SourceConfig `yaml:"sources,omitempty"`
}

// SourceConfig describes one lookup source.
type SourceConfig struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`

	// http
	URL     string `yaml:"url,omitempty"`
	Pattern string `yaml:"pattern,omitempty"`
	Query   string `yaml:"query,omitempty"`

	// dns: Host is the echo hostname; dns and stun: Server is host:port
	Host   string `yaml:"host,omitempty"`
	Server string `yaml:"server,omitempty"`

	// command
	Command string `yaml:"command,omitempty"`
}

// DefaultFile returns the configuration equivalent to the built-in defaults.
func DefaultFile() *File {
	return &File{
		Strategy: DefaultStrategy,
		Timeout:  DefaultTimeout.String(),
		Sources: []SourceConfig{
			{Name: "ipinfo", Kind: KindHTTP, URL: publicip.IPInfoURL},
			{Name: "dyndns", Kind: KindHTTP, URL: publicip.DynDNSURL, Pattern: publicip.DynDNSPattern},
			{Name: "opendns", Kind: KindDNS, Host: publicip.OpenDNSHost, Server: publicip.OpenDNSServer},
		},
	}
}

// Load reads the config from path.
// Returns DefaultFile if the file doesn't exist.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultFile(), nil
		}
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse expands environment references in data and decodes it.
// Unset fields fall back to defaults.
func Parse(data []byte) (*File, error) {
	expanded, err := envsubst.Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("env substitution failed: %w", err)
	}

	cfg := &File{}
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// Save writes the config to path, creating parent directories.
func Save(path string, cfg *File) error {
	if err := os.MkdirAll(filepath.Dir(path), DefaultDirPerms); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, DefaultFilePerms)
}

// ApplyDefaults fills in default values for unset fields.
func (c *File) ApplyDefaults() {
	if c.Strategy == "" {
		c.Strategy = DefaultStrategy
	}
	if c.Timeout == "" {
		c.Timeout = DefaultTimeout.String()
	}
	if len(c.Sources) == 0 {
		c.Sources = DefaultFile().Sources
	}
}

// ApplyEnv overlays PUBIP_STRATEGY, PUBIP_TIMEOUT and PUBIP_VALIDATE.
func (c *File) ApplyEnv() error {
	if v := os.Getenv(EnvStrategy); v != "" {
		c.Strategy = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		c.Timeout = v
	}
	if v := os.Getenv(EnvValidate); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvValidate, err)
		}
		c.Validate = b
	}
	return nil
}

// Options converts the resolver settings.
func (c *File) Options() ([]publicip.Option, error) {
	strategy, err := publicip.ParseStrategy(c.Strategy)
	if err != nil {
		return nil, err
	}

	timeout := DefaultTimeout
	if c.Timeout != "" {
		timeout, err = time.ParseDuration(c.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
		}
	}

	return []publicip.Option{
		publicip.WithStrategy(strategy),
		publicip.WithTimeout(timeout),
		publicip.WithValidation(c.Validate),
	}, nil
}

// BuildSources turns the configured list into lookup sources.
func (c *File) BuildSources() ([]publicip.Source, error) {
	sources := make([]publicip.Source, 0, len(c.Sources))
	seen := make(map[string]bool, len(c.Sources))
	for i, sc := range c.Sources {
		src, err := sc.Build()
		if err != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, err)
		}
		if seen[src.Name()] {
			return nil, fmt.Errorf("sources[%d]: duplicate name %q", i, src.Name())
		}
		seen[src.Name()] = true
		sources = append(sources, src)
	}
	return sources, nil
}

// NewResolver builds a resolver from the config.
func (c *File) NewResolver() (*publicip.Resolver, error) {
	sources, err := c.BuildSources()
	if err != nil {
		return nil, err
	}
	opts, err := c.Options()
	if err != nil {
		return nil, err
	}
	return publicip.New(sources, opts...), nil
}

// Build returns the source described by sc.
func (sc SourceConfig) Build() (publicip.Source, error) {
	if sc.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	switch strings.ToLower(sc.Kind) {
	case KindHTTP:
		if sc.URL == "" {
			return nil, fmt.Errorf("%s: url is required", sc.Name)
		}
		if sc.Pattern != "" && sc.Query != "" {
			return nil, fmt.Errorf("%s: pattern and query are mutually exclusive", sc.Name)
		}
		src := publicip.NewHTTPSource(sc.Name, sc.URL)
		var err error
		switch {
		case sc.Pattern != "":
			src, err = src.WithPattern(sc.Pattern)
		case sc.Query != "":
			src, err = src.WithQuery(sc.Query)
		}
		if err != nil {
			return nil, err
		}
		return src, nil

	case KindDNS:
		host, server := sc.Host, sc.Server
		if host == "" {
			host = publicip.OpenDNSHost
		}
		if server == "" {
			return nil, fmt.Errorf("%s: server is required", sc.Name)
		}
		return publicip.NewDNSSource(sc.Name, host, withPort(server, "53")), nil

	case KindSTUN:
		if sc.Server == "" {
			return nil, fmt.Errorf("%s: server is required", sc.Name)
		}
		return publicip.NewSTUNSource(sc.Name, withPort(sc.Server, "3478")), nil

	case KindCommand:
		if sc.Command == "" {
			return nil, fmt.Errorf("%s: command is required", sc.Name)
		}
		return publicip.NewCommandSource(sc.Name, sc.Command), nil

	case "":
		return nil, fmt.Errorf("%s: kind is required", sc.Name)

	default:
		return nil, fmt.Errorf("%s: unknown kind %q (want http, dns, stun or command)", sc.Name, sc.Kind)
	}
}

// withPort appends port when server carries none.
func withPort(server, port string) string {
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	return net.JoinHostPort(strings.Trim(server, "[]"), port)
}
