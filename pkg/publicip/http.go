package publicip

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/itchyny/gojq"
)

// maxBodySize caps how much of an echo service response is read.
const maxBodySize = 64 << 10

// HTTPSource asks an HTTP echo service for the caller's address.
//
// With neither Pattern nor Query set the whole body is the answer.
// Pattern is a regular expression whose first capture group is the answer.
// Query is a jq expression applied to a JSON body.
type HTTPSource struct {
	Label   string
	URL     string
	Pattern *regexp.Regexp
	Query   *gojq.Code
	Client  *http.Client
}

// NewHTTPSource returns a source that uses the whole response body.
func NewHTTPSource(name, url string) *HTTPSource {
	return &HTTPSource{Label: name, URL: url}
}

// WithPattern sets the extraction pattern. The pattern must have at least
// one capture group.
func (s *HTTPSource) WithPattern(pattern string) (*HTTPSource, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern for %s: %w", s.Label, err)
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("pattern for %s has no capture group", s.Label)
	}
	s.Pattern = re
	return s, nil
}

// WithQuery sets a jq query to run on a JSON body.
func (s *HTTPSource) WithQuery(query string) (*HTTPSource, error) {
	parsed, err := gojq.Parse(query)
	if err != nil {
		return nil, fmt.Errorf("invalid query for %s: %w", s.Label, err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, fmt.Errorf("compile query for %s: %w", s.Label, err)
	}
	s.Query = code
	return s, nil
}

// Name implements Source.
func (s *HTTPSource) Name() string { return s.Label }

// Lookup implements Source.
func (s *HTTPSource) Lookup(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	// Some echo services return HTML to browsers and plain text to curl.
	req.Header.Set("User-Agent", "curl/8.5.0")
	req.Header.Set("Accept", "*/*")

	client := s.Client
	if client == nil {
		client = defaultHTTPClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", s.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{URL: s.URL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", s.URL, err)
	}

	switch {
	case s.Query != nil:
		return s.runQuery(ctx, body)
	case s.Pattern != nil:
		m := s.Pattern.FindSubmatch(body)
		if m == nil {
			return "", fmt.Errorf("pattern %q did not match response", s.Pattern.String())
		}
		return string(m[1]), nil
	default:
		return string(body), nil
	}
}

func (s *HTTPSource) runQuery(ctx context.Context, body []byte) (string, error) {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}

	iter := s.Query.RunWithContext(ctx, v)
	out, ok := iter.Next()
	if !ok {
		return "", fmt.Errorf("query produced no output")
	}
	if err, ok := out.(error); ok {
		return "", fmt.Errorf("query: %w", err)
	}

	switch val := out.(type) {
	case nil:
		return "", fmt.Errorf("query produced null")
	case string:
		return val, nil
	default:
		return strings.TrimSpace(fmt.Sprint(val)), nil
	}
}

// defaultHTTPClient is shared by sources that do not set their own client.
// Timeouts come from the lookup context.
var defaultHTTPClient = cleanhttp.DefaultPooledClient()
