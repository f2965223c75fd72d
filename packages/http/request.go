package http

import (
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/req/packages/core/parser"
)

// BodyKind discriminates the request body variants.
type BodyKind int

const (
	BodyEmpty BodyKind = iota
	BodyText
	BodyBytes
	BodyJSON
)

// Body is the request payload. Exactly one variant is attached to a
// request.
type Body struct {
	Kind  BodyKind
	Text  string
	Bytes []byte
	JSON  map[string]any
}

// QueryParam is one URL query parameter. Params are ordered and may
// repeat keys.
type QueryParam struct {
	Key   string
	Value string
}

// Request is a fully assembled request descriptor. It is built once
// per invocation and never mutated afterwards.
type Request struct {
	Method      string
	URL         string
	QueryParams []QueryParam
	Headers     []HeaderEntry
	Body        Body
	Timeout     time.Duration
}

// BuildURL appends the query parameters to the request URL, preserving
// their command-line order and any repeated keys.
func (r *Request) BuildURL() string {
	if len(r.QueryParams) == 0 {
		return r.URL
	}

	var sb strings.Builder
	sb.WriteString(r.URL)
	sep := "?"
	if strings.Contains(r.URL, "?") {
		sep = "&"
	}
	for _, p := range r.QueryParams {
		sb.WriteString(sep)
		sb.WriteString(url.QueryEscape(p.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.Value))
		sep = "&"
	}
	return sb.String()
}

// redirect derives the follow-up request for a redirect response.
// 301/302/303 rewrite to a bodyless GET; 307/308 preserve method and
// body, matching net/http's own policy.
func (r *Request) redirect(target string, status int) *Request {
	next := &Request{
		Method:  r.Method,
		URL:     target,
		Headers: r.Headers,
		Body:    r.Body,
		Timeout: r.Timeout,
	}
	if status != http.StatusTemporaryRedirect && status != http.StatusPermanentRedirect {
		next.Method = http.MethodGet
		next.Body = Body{}
	}
	return next
}

var allowedMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS", "TRACE", "CONNECT"}

// NormalizeURL makes shorthand URLs absolute: ":5000/path" becomes
// "http://localhost:5000/path" and "example.com" becomes
// "http://example.com". URLs already carrying a scheme pass through
// unchanged.
func NormalizeURL(raw string) string {
	if strings.HasPrefix(raw, "http") {
		return raw
	}
	if strings.HasPrefix(raw, ":") {
		raw = "localhost" + raw
	}
	return "http://" + raw
}

// ResolveMethod validates an explicit method (case-insensitive) or
// infers one: JSON and form bodies default to POST, everything else
// to GET.
func ResolveMethod(explicit string, hasBody bool) (string, error) {
	if explicit != "" {
		m := strings.ToUpper(explicit)
		for _, allowed := range allowedMethods {
			if m == allowed {
				return m, nil
			}
		}
		return "", &parser.ParseError{
			Token:  explicit,
			Reason: fmt.Sprintf("invalid method, must be one of %s", strings.Join(allowedMethods, ", ")),
		}
	}
	if hasBody {
		return http.MethodPost, nil
	}
	return http.MethodGet, nil
}

// ValidateURL checks that a URL is well-formed and uses an allowed scheme.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return &parser.ParseError{Token: rawURL, Reason: "invalid URL"}
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return &parser.ParseError{Token: rawURL, Reason: fmt.Sprintf("unsupported URL scheme %q, only http and https are allowed", u.Scheme)}
	}

	if u.Host == "" {
		return &parser.ParseError{Token: rawURL, Reason: "URL must have a host"}
	}

	return nil
}

// RequestBuilder accumulates normalized inputs and produces one
// immutable Request. Body setters are last-write-wins: only the final
// variant is attached.
type RequestBuilder struct {
	rawURL  string
	method  string
	params  []QueryParam
	headers []HeaderEntry
	body    Body
	hasBody bool // a JSON or form body drives method inference
	timeout time.Duration
	err     error
}

func NewRequestBuilder(rawURL string) *RequestBuilder {
	return &RequestBuilder{rawURL: rawURL}
}

func (b *RequestBuilder) Method(method string) *RequestBuilder {
	b.method = method
	return b
}

// QueryParams adds bare positional key=value arguments as URL query
// parameters, in order.
func (b *RequestBuilder) QueryParams(args []string) *RequestBuilder {
	for _, arg := range args {
		pair, err := parser.SplitPair(arg)
		if err != nil {
			if b.err == nil {
				b.err = err
			}
			return b
		}
		b.params = append(b.params, QueryParam{Key: pair.Key, Value: pair.Value})
	}
	return b
}

func (b *RequestBuilder) Headers(entries []HeaderEntry) *RequestBuilder {
	b.headers = append(b.headers, entries...)
	return b
}

func (b *RequestBuilder) JSONBody(tree map[string]any) *RequestBuilder {
	b.body = Body{Kind: BodyJSON, JSON: tree}
	b.hasBody = true
	return b
}

// FormBody attaches an already form-urlencoded payload.
func (b *RequestBuilder) FormBody(encoded string) *RequestBuilder {
	b.body = Body{Kind: BodyText, Text: encoded}
	b.hasBody = true
	return b
}

// FileBody reads the whole file into a bytes body and appends
// Content-Length and an extension-guessed Content-Type header.
func (b *RequestBuilder) FileBody(path string) *RequestBuilder {
	data, err := os.ReadFile(path)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return b
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	b.body = Body{Kind: BodyBytes, Bytes: data}
	b.headers = append(b.headers,
		HeaderEntry{Name: "Content-Length", Value: strconv.Itoa(len(data))},
		HeaderEntry{Name: "Content-Type", Value: contentType},
	)
	return b
}

func (b *RequestBuilder) Timeout(d time.Duration) *RequestBuilder {
	b.timeout = d
	return b
}

func (b *RequestBuilder) Build() (*Request, error) {
	if b.err != nil {
		return nil, b.err
	}

	method, err := ResolveMethod(b.method, b.hasBody)
	if err != nil {
		return nil, err
	}

	normalized := NormalizeURL(b.rawURL)
	if err := ValidateURL(normalized); err != nil {
		return nil, err
	}

	return &Request{
		Method:      method,
		URL:         normalized,
		QueryParams: b.params,
		Headers:     b.headers,
		Body:        b.body,
		Timeout:     b.timeout,
	}, nil
}
