package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/flavourfinder/flavourfinder-go/internal/logger"
)

const (
	// DefaultBaseURL is the production FlavourFinder backend.
	DefaultBaseURL = "https://flavourfinder-5dkq.onrender.com"
	// DefaultTimeout bounds a single request; recipe generation is slow.
	DefaultTimeout = 60 * time.Second

	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	headerUserAgent     = "User-Agent"
	contentTypeJSON     = "application/json"
	clientUserAgent     = "flavourfinder-go/1.0"

	maxResponseBytes = 4 << 20
)

// transport is the request plumbing shared by Client and IdentityClient.
type transport struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// Option configures a Client or IdentityClient.
type Option func(*transport)

// WithBaseURL sets a custom API base URL.
func WithBaseURL(baseURL string) Option {
	return func(t *transport) {
		t.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(t *transport) {
		t.httpClient = httpClient
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(t *transport) {
		if t.httpClient == nil {
			t.httpClient = &http.Client{}
		}
		t.httpClient.Timeout = timeout
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log *logger.Logger) Option {
	return func(t *transport) {
		t.log = log
	}
}

func newTransport(component string, opts []Option) *transport {
	t := &transport{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        logger.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.With("component", component)
	return t
}

// buildURL joins path onto the base URL. Anything that is not an absolute
// http(s) URL is an invalid request.
func (t *transport) buildURL(path string) (string, error) {
	base, err := url.Parse(t.baseURL)
	if err != nil {
		return "", invalidRequest(fmt.Errorf("parse base url: %w", err))
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return "", invalidRequest(fmt.Errorf("base url %q is not an absolute http(s) url", t.baseURL))
	}
	joined, err := url.JoinPath(t.baseURL, path)
	if err != nil {
		return "", invalidRequest(fmt.Errorf("join path %q: %w", path, err))
	}
	return joined, nil
}

// doRequest sends one JSON request. token, when non-empty, is sent as a
// bearer credential. Only a 200 response counts as success; result is then
// decoded from the body.
func (t *transport) doRequest(ctx context.Context, method, path, token string, body, result any) error {
	reqURL, err := t.buildURL(path)
	if err != nil {
		return err
	}

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return invalidRequest(fmt.Errorf("marshal request body: %w", err))
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return invalidRequest(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set(headerContentType, contentTypeJSON)
	req.Header.Set(headerUserAgent, clientUserAgent)
	if token != "" {
		req.Header.Set(headerAuthorization, "Bearer "+token)
	}

	start := time.Now()
	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.log.Debug("request failed", "method", method, "path", path, "error", err)
		return transportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return transportError(fmt.Errorf("read response body: %w", err))
	}

	t.log.Debug("request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return parseError(resp.StatusCode, respBody)
	}

	if result == nil {
		return nil
	}
	trimmed := bytes.TrimSpace(respBody)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return decodingError(errors.New("empty response body"))
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return decodingError(err)
	}
	return nil
}
