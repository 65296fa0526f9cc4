package publicip

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func echoServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPSourcePlainBody(t *testing.T) {
	srv := echoServer(t, http.StatusOK, "203.0.113.7\n")

	got, err := NewHTTPSource("plain", srv.URL).Lookup(context.Background())
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if got != "203.0.113.7\n" {
		t.Errorf("Expected raw body, got %q", got)
	}
}

func TestHTTPSourcePattern(t *testing.T) {
	body := `<html><head><title>Current IP Check</title></head><body>Current IP Address: 198.51.100.23</body></html>`
	srv := echoServer(t, http.StatusOK, body)

	src, err := NewHTTPSource("dyndns", srv.URL).WithPattern(DynDNSPattern)
	if err != nil {
		t.Fatalf("WithPattern failed: %v", err)
	}
	got, err := src.Lookup(context.Background())
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if got != "198.51.100.23" {
		t.Errorf("Expected 198.51.100.23, got %q", got)
	}
}

func TestHTTPSourcePatternNoMatch(t *testing.T) {
	srv := echoServer(t, http.StatusOK, "nothing here")

	src, _ := NewHTTPSource("dyndns", srv.URL).WithPattern(DynDNSPattern)
	if _, err := src.Lookup(context.Background()); err == nil {
		t.Error("Expected error when pattern does not match")
	}
}

func TestHTTPSourcePatternNeedsGroup(t *testing.T) {
	if _, err := NewHTTPSource("bad", "http://example.invalid").WithPattern(`\d+`); err == nil {
		t.Error("Expected error for pattern without capture group")
	}
}

func TestHTTPSourceQuery(t *testing.T) {
	srv := echoServer(t, http.StatusOK, `{"ip":"192.0.2.44","country":"NL"}`)

	src, err := NewHTTPSource("ifconfig", srv.URL).WithQuery(".ip")
	if err != nil {
		t.Fatalf("WithQuery failed: %v", err)
	}
	got, err := src.Lookup(context.Background())
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if got != "192.0.2.44" {
		t.Errorf("Expected 192.0.2.44, got %q", got)
	}
}

func TestHTTPSourceQueryNull(t *testing.T) {
	srv := echoServer(t, http.StatusOK, `{"addr":"192.0.2.44"}`)

	src, _ := NewHTTPSource("ifconfig", srv.URL).WithQuery(".ip")
	if _, err := src.Lookup(context.Background()); err == nil {
		t.Error("Expected error for null query result")
	}
}

func TestHTTPSourceStatus(t *testing.T) {
	srv := echoServer(t, http.StatusTooManyRequests, "slow down")

	_, err := NewHTTPSource("limited", srv.URL).Lookup(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", statusErr.StatusCode)
	}
}

func TestHTTPSourceThroughResolver(t *testing.T) {
	down := echoServer(t, http.StatusBadGateway, "")
	up := echoServer(t, http.StatusOK, " 203.0.113.9 \n")

	r := New([]Source{NewHTTPSource("down", down.URL), NewHTTPSource("up", up.URL)})
	if got := r.PublicIP(context.Background()); got != "203.0.113.9" {
		t.Errorf("Expected 203.0.113.9, got %q", got)
	}
}

func TestCommandSource(t *testing.T) {
	got, err := NewCommandSource("echo", "echo 203.0.113.7").Lookup(context.Background())
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if got != "203.0.113.7\n" {
		t.Errorf("Expected echoed address, got %q", got)
	}
}

func TestCommandSourceExpansion(t *testing.T) {
	cmd := `x="ip=198.51.100.23"; echo "${x#ip=}"`
	got, err := NewCommandSource("expand", cmd).Lookup(context.Background())
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if got != "198.51.100.23\n" {
		t.Errorf("Expected extracted address, got %q", got)
	}
}

func TestCommandSourceExitStatus(t *testing.T) {
	if _, err := NewCommandSource("fail", "echo nope; exit 3").Lookup(context.Background()); err == nil {
		t.Error("Expected error for non-zero exit")
	}
}

func TestCommandSourceMissingBinary(t *testing.T) {
	if _, err := NewCommandSource("missing", "definitely-not-a-real-binary-xyz").Lookup(context.Background()); err == nil {
		t.Error("Expected error for missing binary")
	}
}

func TestCommandSourceParseError(t *testing.T) {
	if _, err := NewCommandSource("broken", "echo 'unterminated").Lookup(context.Background()); err == nil {
		t.Error("Expected parse error")
	}
}

func TestDNSSourceUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	src := NewDNSSource("local", OpenDNSHost, "127.0.0.1:1")
	if _, err := src.Lookup(ctx); err == nil {
		t.Error("Expected error from unreachable DNS server")
	}
}

func TestSourceFunc(t *testing.T) {
	src := SourceFunc{Label: "fn", Fn: func(context.Context) (string, error) { return "192.0.2.1", nil }}
	if src.Name() != "fn" {
		t.Errorf("Expected name fn, got %s", src.Name())
	}
	got, _ := src.Lookup(context.Background())
	if got != "192.0.2.1" {
		t.Errorf("Expected 192.0.2.1, got %q", got)
	}
}
