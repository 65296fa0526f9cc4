package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/joeblew999/pubip/pkg/localip"
	"github.com/joeblew999/pubip/pkg/publicip"
)

const goodConfig = `
strategy: first
timeout: 2s
sources:
  - name: broken
    kind: command
    command: exit 1
  - name: echo
    kind: command
    command: echo 203.0.113.7
  - name: later
    kind: command
    command: echo 198.51.100.1
`

const badConfig = `
sources:
  - name: broken
    kind: command
    command: exit 1
`

// useConfig points the commands at a temporary config file.
func useConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if content != "" {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	prevDefault := publicip.Default()
	flagConfig = path
	t.Cleanup(func() {
		flagConfig, flagStrategy, flagTimeout, flagValidate = "", "", 0, false
		ipJSON, sourcesInit, sourcesForce = false, false, false
		publicip.SetDefault(prevDefault)
	})
	return path
}

// run executes c's RunE with captured output.
func run(t *testing.T, c *cobra.Command) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetContext(context.Background())
	t.Cleanup(func() { c.SetOut(nil) })
	err := c.RunE(c, nil)
	return out.String(), err
}

func TestIPCommand(t *testing.T) {
	useConfig(t, goodConfig)

	out, err := run(t, IPCmd)
	if err != nil {
		t.Fatalf("ip failed: %v", err)
	}
	if out != "203.0.113.7\n" {
		t.Errorf("Expected 203.0.113.7, got %q", out)
	}
}

func TestIPCommandLastStrategy(t *testing.T) {
	useConfig(t, goodConfig)
	flagStrategy = "last"

	out, err := run(t, IPCmd)
	if err != nil {
		t.Fatalf("ip failed: %v", err)
	}
	if out != "198.51.100.1\n" {
		t.Errorf("Expected last answer, got %q", out)
	}
}

func TestIPCommandJSON(t *testing.T) {
	useConfig(t, goodConfig)
	ipJSON = true

	out, err := run(t, IPCmd)
	if err != nil {
		t.Fatalf("ip --json failed: %v", err)
	}

	var res resultJSON
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("Invalid JSON %q: %v", out, err)
	}
	if res.IP != "203.0.113.7" || res.CIDR != "203.0.113.7/32" || res.Source != "echo" {
		t.Errorf("Unexpected result: %+v", res)
	}
	if len(res.Attempts) != 2 || res.Attempts[0].Error == "" {
		t.Errorf("Expected failed attempt then success, got %+v", res.Attempts)
	}
}

func TestIPCommandFailure(t *testing.T) {
	useConfig(t, badConfig)

	out, err := run(t, IPCmd)
	if !errors.Is(err, errNoAddress) {
		t.Fatalf("Expected errNoAddress, got %v", err)
	}
	if out != "" {
		t.Errorf("Expected no output, got %q", out)
	}
}

func TestCIDRCommand(t *testing.T) {
	useConfig(t, goodConfig)

	out, err := run(t, CIDRCmd)
	if err != nil {
		t.Fatalf("cidr failed: %v", err)
	}
	if out != "203.0.113.7/32\n" {
		t.Errorf("Expected 203.0.113.7/32, got %q", out)
	}
}

func TestCIDRCommandFailure(t *testing.T) {
	useConfig(t, badConfig)

	out, err := run(t, CIDRCmd)
	if !errors.Is(err, errNoAddress) {
		t.Fatalf("Expected errNoAddress, got %v", err)
	}
	if out != "/32\n" {
		t.Errorf("Expected /32, got %q", out)
	}
}

func TestCheckCommand(t *testing.T) {
	useConfig(t, goodConfig)

	out, err := run(t, CheckCmd)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	for _, want := range []string{"broken", "✗ FAIL", "echo", "✓ OK", "203.0.113.7", "later", "198.51.100.1", "different values"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q:\n%s", want, out)
		}
	}
}

func TestCheckCommandFailure(t *testing.T) {
	useConfig(t, badConfig)

	out, err := run(t, CheckCmd)
	if !errors.Is(err, errNoAddress) {
		t.Fatalf("Expected errNoAddress, got %v", err)
	}
	if !strings.Contains(out, "No source answered") {
		t.Errorf("Expected failure summary:\n%s", out)
	}
}

func TestSourcesCommand(t *testing.T) {
	useConfig(t, goodConfig)

	out, err := run(t, SourcesCmd)
	if err != nil {
		t.Fatalf("sources failed: %v", err)
	}
	for _, want := range []string{"strategy: first", "1. broken", "2. echo", "echo 203.0.113.7"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q:\n%s", want, out)
		}
	}
}

func TestSourcesInit(t *testing.T) {
	path := useConfig(t, "")
	sourcesInit = true

	if _, err := run(t, SourcesCmd); err != nil {
		t.Fatalf("sources --init failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Config file not written: %v", err)
	}

	if _, err := run(t, SourcesCmd); err == nil {
		t.Error("Expected error when config exists without --force")
	}

	sourcesForce = true
	if _, err := run(t, SourcesCmd); err != nil {
		t.Errorf("sources --init --force failed: %v", err)
	}
}

func TestInvalidConfig(t *testing.T) {
	useConfig(t, "sources:\n  - name: x\n    kind: carrier-pigeon\n")

	if _, err := run(t, IPCmd); err == nil || !strings.Contains(err.Error(), "unknown kind") {
		t.Errorf("Expected unknown kind error, got %v", err)
	}
}

func toolText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("Empty tool result")
	}
	switch c := res.Content[0].(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	default:
		t.Fatalf("Unexpected content type %T", c)
		return ""
	}
}

func TestMCPHandlers(t *testing.T) {
	calls := 0
	r := publicip.New([]publicip.Source{publicip.SourceFunc{Label: "fn", Fn: func(context.Context) (string, error) {
		calls++
		return "203.0.113.7", nil
	}}})

	res, err := publicIPHandler(r, false)(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("public_ip failed: %v", err)
	}
	if got := toolText(t, res); got != "203.0.113.7" {
		t.Errorf("Expected 203.0.113.7, got %q", got)
	}

	res, _ = publicIPHandler(r, true)(context.Background(), mcp.CallToolRequest{})
	if got := toolText(t, res); got != "203.0.113.7/32" {
		t.Errorf("Expected 203.0.113.7/32, got %q", got)
	}
	if calls != 1 {
		t.Errorf("Expected cached second call, got %d lookups", calls)
	}

	l := localip.New(func() ([]localip.Interface, error) { return nil, nil })
	res, _ = localIPHandler(l)(context.Background(), mcp.CallToolRequest{})
	if got := toolText(t, res); got != localip.Fallback {
		t.Errorf("Expected %s, got %q", localip.Fallback, got)
	}
}

func TestMCPHandlerFailure(t *testing.T) {
	r := publicip.New([]publicip.Source{publicip.SourceFunc{Label: "fn", Fn: func(context.Context) (string, error) {
		return "", errors.New("offline")
	}}})

	res, err := publicIPHandler(r, false)(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}
	if !res.IsError {
		t.Error("Expected tool error result")
	}
}

func TestTimeoutFlag(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{nil, "2s"},
		{[]string{"--timeout", "500ms"}, "500ms"},
		{[]string{"--timeout", "0"}, "0s"},
	}
	for _, tt := range tests {
		path := useConfig(t, goodConfig)

		var got string
		root := &cobra.Command{Use: "pubip", SilenceUsage: true}
		AddPersistentFlags(root)
		root.AddCommand(&cobra.Command{
			Use: "show",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				got = cfg.Timeout
				return nil
			},
		})
		root.SetArgs(append([]string{"show", "--config", path}, tt.args...))
		if err := root.Execute(); err != nil {
			t.Fatalf("%v: execute failed: %v", tt.args, err)
		}
		if got != tt.want {
			t.Errorf("%v: expected timeout %s, got %s", tt.args, tt.want, got)
		}
	}
}
