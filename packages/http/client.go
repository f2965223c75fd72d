package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net/http"
	neturl "net/url"
	"sort"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRedirects is the maximum number of redirects to follow
	DefaultMaxRedirects = 10
	// DefaultMaxIdleConns is the maximum number of idle connections in the pool
	DefaultMaxIdleConns = 100
	// DefaultMaxIdleConnsPerHost is the maximum number of idle connections per host
	DefaultMaxIdleConnsPerHost = 10
	// DefaultIdleConnTimeout is how long idle connections stay in the pool
	DefaultIdleConnTimeout = 90 * time.Second
)

// Client is the terminal transport at the bottom of the middleware
// chain. It never follows redirects itself; redirect policy belongs to
// the chain.
type Client struct {
	httpClient     *http.Client
	timeout        time.Duration
	validateSSL    bool
	proxyURL       string
	defaultHeaders []HeaderEntry
}

type ClientOption func(*Client)

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout:     DefaultTimeout,
		validateSSL: true,
	}

	for _, opt := range opts {
		opt(c)
	}

	transport := &http.Transport{
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
	}

	if !c.validateSSL {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	if c.proxyURL != "" {
		proxyURL, err := neturl.Parse(c.proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	c.httpClient = &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
		// Redirects are owned by the middleware chain.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return c
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithValidateSSL enables or disables SSL certificate validation
func WithValidateSSL(validate bool) ClientOption {
	return func(c *Client) {
		c.validateSSL = validate
	}
}

// WithProxy sets the proxy URL for all requests
func WithProxy(proxyURL string) ClientOption {
	return func(c *Client) {
		c.proxyURL = proxyURL
	}
}

// WithDefaultHeader adds a header sent on every request unless the
// request sets one with the same name.
func WithDefaultHeader(name, value string) ClientOption {
	return func(c *Client) {
		c.defaultHeaders = append(c.defaultHeaders, HeaderEntry{Name: name, Value: value})
	}
}

// Handler adapts the client to the middleware chain's terminal link.
func (c *Client) Handler() Handler {
	return c.Do
}

// Do executes one request and reads the whole response body.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	fullURL := req.BuildURL()
	if err := ValidateURL(fullURL); err != nil {
		return nil, err
	}

	var body io.Reader
	switch req.Body.Kind {
	case BodyText:
		body = strings.NewReader(req.Body.Text)
	case BodyBytes:
		body = bytes.NewReader(req.Body.Bytes)
	case BodyJSON:
		data, err := json.Marshal(req.Body.JSON)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, err
	}

	for _, h := range c.defaultHeaders {
		httpReq.Header.Set(h.Name, h.Value)
	}

	// Add, not Set: duplicate names in the assembled set are all sent.
	for _, h := range req.Headers {
		httpReq.Header.Add(h.Name, h.Value)
	}

	if req.Body.Kind == BodyJSON && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	duration := time.Since(start)

	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	finalURL := fullURL
	if httpResp.Request != nil && httpResp.Request.URL != nil {
		finalURL = httpResp.Request.URL.String()
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		URL:        finalURL,
		Headers:    flattenHeaders(httpResp.Header),
		Body:       respBody,
		Duration:   duration,
	}, nil
}

// flattenHeaders converts net/http's header map into an ordered entry
// list, one entry per value, sorted by name for deterministic output.
func flattenHeaders(header http.Header) []HeaderEntry {
	names := make([]string, 0, len(header))
	for name := range header {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]HeaderEntry, 0, len(header))
	for _, name := range names {
		for _, value := range header[name] {
			entries = append(entries, HeaderEntry{Name: name, Value: value})
		}
	}
	return entries
}
