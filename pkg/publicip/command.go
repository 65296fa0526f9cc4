package publicip

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// CommandSource runs a shell command line and uses its stdout.
//
// The line is interpreted in-process by a POSIX shell interpreter, so pipes
// and quoting work the same on every OS; the programs it calls (curl, dig,
// sed, ...) must still be on PATH. A non-zero exit status is an error.
type CommandSource struct {
	Label   string
	Command string
	Dir     string
}

// NewCommandSource returns a shell command source.
func NewCommandSource(name, command string) *CommandSource {
	return &CommandSource{Label: name, Command: command}
}

// Name implements Source.
func (s *CommandSource) Name() string { return s.Label }

// Lookup implements Source.
func (s *CommandSource) Lookup(ctx context.Context) (string, error) {
	file, err := syntax.NewParser().Parse(strings.NewReader(s.Command), s.Label)
	if err != nil {
		return "", fmt.Errorf("parse command: %w", err)
	}

	var stdout, stderr bytes.Buffer
	opts := []interp.RunnerOption{interp.StdIO(nil, &stdout, &stderr)}
	if s.Dir != "" {
		opts = append(opts, interp.Dir(s.Dir))
	}
	runner, err := interp.New(opts...)
	if err != nil {
		return "", fmt.Errorf("shell: %w", err)
	}

	if err := runner.Run(ctx, file); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%q: %w: %s", s.Command, err, msg)
		}
		return "", fmt.Errorf("%q: %w", s.Command, err)
	}
	return stdout.String(), nil
}
