package http

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain_Order(t *testing.T) {
	var calls []string
	record := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(ctx context.Context, req *Request) (*Response, error) {
				calls = append(calls, name+" before")
				resp, err := next(ctx, req)
				calls = append(calls, name+" after")
				return resp, err
			}
		}
	}
	terminal := func(ctx context.Context, req *Request) (*Response, error) {
		calls = append(calls, "terminal")
		return &Response{StatusCode: 200}, nil
	}

	handler := Chain(terminal, record("outer"), record("inner"))
	_, err := handler(context.Background(), &Request{})

	require.NoError(t, err)
	// FIFO build order, LIFO unwind.
	assert.Equal(t, []string{
		"outer before",
		"inner before",
		"terminal",
		"inner after",
		"outer after",
	}, calls)
}

func TestFollowRedirects(t *testing.T) {
	var urls []string
	terminal := func(ctx context.Context, req *Request) (*Response, error) {
		urls = append(urls, req.URL)
		if req.URL == "http://example.com/final" {
			return &Response{StatusCode: 200, URL: req.URL, Body: []byte("done")}, nil
		}
		return &Response{
			StatusCode: 302,
			URL:        req.URL,
			Headers:    []HeaderEntry{{Name: "Location", Value: "/final"}},
		}, nil
	}

	handler := Chain(terminal, FollowRedirects(DefaultMaxRedirects))
	resp, err := handler(context.Background(), &Request{Method: "GET", URL: "http://example.com/start"})

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "done", resp.BodyString())
	assert.Equal(t, []string{"http://example.com/start", "http://example.com/final"}, urls)
}

func TestFollowRedirects_RewritesMethod(t *testing.T) {
	var methods []string
	terminal := func(ctx context.Context, req *Request) (*Response, error) {
		methods = append(methods, req.Method)
		if req.URL == "http://example.com/done" {
			return &Response{StatusCode: 200, URL: req.URL}, nil
		}
		return &Response{
			StatusCode: 303,
			URL:        req.URL,
			Headers:    []HeaderEntry{{Name: "Location", Value: "/done"}},
		}, nil
	}

	handler := Chain(terminal, FollowRedirects(DefaultMaxRedirects))
	req := &Request{Method: "POST", URL: "http://example.com/submit", Body: Body{Kind: BodyText, Text: "x=1"}}
	_, err := handler(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, []string{"POST", "GET"}, methods)
}

func TestFollowRedirects_PreservesMethodOn307(t *testing.T) {
	var bodies []BodyKind
	terminal := func(ctx context.Context, req *Request) (*Response, error) {
		bodies = append(bodies, req.Body.Kind)
		if req.URL == "http://example.com/done" {
			return &Response{StatusCode: 200, URL: req.URL}, nil
		}
		return &Response{
			StatusCode: 307,
			URL:        req.URL,
			Headers:    []HeaderEntry{{Name: "Location", Value: "/done"}},
		}, nil
	}

	handler := Chain(terminal, FollowRedirects(DefaultMaxRedirects))
	req := &Request{Method: "POST", URL: "http://example.com/submit", Body: Body{Kind: BodyText, Text: "x=1"}}
	_, err := handler(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, []BodyKind{BodyText, BodyText}, bodies)
}

func TestFollowRedirects_Truncates(t *testing.T) {
	hops := 0
	terminal := func(ctx context.Context, req *Request) (*Response, error) {
		hops++
		return &Response{
			StatusCode: 302,
			URL:        req.URL,
			Headers:    []HeaderEntry{{Name: "Location", Value: "/loop"}},
		}, nil
	}

	handler := Chain(terminal, FollowRedirects(3))
	resp, err := handler(context.Background(), &Request{Method: "GET", URL: "http://example.com/loop"})

	// The last redirect response comes back, not an error.
	require.NoError(t, err)
	assert.Equal(t, 302, resp.StatusCode)
	assert.Equal(t, 4, hops)
}

func TestFollowRedirects_NoLocation(t *testing.T) {
	terminal := func(ctx context.Context, req *Request) (*Response, error) {
		return &Response{StatusCode: 302, URL: req.URL}, nil
	}

	handler := Chain(terminal, FollowRedirects(DefaultMaxRedirects))
	resp, err := handler(context.Background(), &Request{Method: "GET", URL: "http://example.com"})

	require.NoError(t, err)
	assert.Equal(t, 302, resp.StatusCode)
}

func TestFollowRedirects_PropagatesError(t *testing.T) {
	boom := errors.New("connection refused")
	terminal := func(ctx context.Context, req *Request) (*Response, error) {
		return nil, boom
	}

	handler := Chain(terminal, FollowRedirects(DefaultMaxRedirects))
	_, err := handler(context.Background(), &Request{Method: "GET", URL: "http://example.com"})

	assert.ErrorIs(t, err, boom)
}

func TestVerbose_TracesRequestAndResponse(t *testing.T) {
	var trace bytes.Buffer
	terminal := func(ctx context.Context, req *Request) (*Response, error) {
		return &Response{
			StatusCode: 200,
			Status:     "200 OK",
			Headers:    []HeaderEntry{{Name: "Content-Type", Value: "application/json"}},
		}, nil
	}

	req := &Request{
		Method:  "POST",
		URL:     "http://example.com/signup",
		Headers: []HeaderEntry{{Name: "Accept", Value: "application/json"}},
		Body:    Body{Kind: BodyJSON, JSON: map[string]any{"email": "a@b.com"}},
	}
	handler := Chain(terminal, Verbose(&trace))
	_, err := handler(context.Background(), req)

	require.NoError(t, err)
	out := trace.String()
	assert.Contains(t, out, "POST http://example.com/signup\n")
	assert.Contains(t, out, "Accept: application/json\n")
	assert.Contains(t, out, `"email": "a@b.com"`)
	assert.Contains(t, out, "==========\n")
	assert.Contains(t, out, "200 OK\n")
	assert.Contains(t, out, "Content-Type: application/json\n")
}

func TestVerbose_BytesBodySummary(t *testing.T) {
	var trace bytes.Buffer
	terminal := func(ctx context.Context, req *Request) (*Response, error) {
		return &Response{StatusCode: 200, Status: "200 OK"}, nil
	}

	req := &Request{
		Method: "PUT",
		URL:    "http://example.com/upload",
		Body:   Body{Kind: BodyBytes, Bytes: make([]byte, 1024)},
	}
	handler := Chain(terminal, Verbose(&trace))
	_, err := handler(context.Background(), req)

	require.NoError(t, err)
	assert.Contains(t, trace.String(), "<1024 bytes>\n")
}

func TestVerbose_DoesNotMutate(t *testing.T) {
	var trace bytes.Buffer
	want := &Response{StatusCode: 200, Status: "200 OK", Body: []byte("payload")}
	terminal := func(ctx context.Context, req *Request) (*Response, error) {
		return want, nil
	}

	handler := Chain(terminal, Verbose(&trace))
	resp, err := handler(context.Background(), &Request{Method: "GET", URL: "http://example.com"})

	require.NoError(t, err)
	assert.Same(t, want, resp)
}

func TestVerbose_ReportsAndPropagatesError(t *testing.T) {
	var trace bytes.Buffer
	boom := errors.New("dial tcp: connection refused")
	terminal := func(ctx context.Context, req *Request) (*Response, error) {
		return nil, boom
	}

	handler := Chain(terminal, Verbose(&trace))
	_, err := handler(context.Background(), &Request{Method: "GET", URL: "http://example.com"})

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, trace.String(), "connection refused")
}

// Redirect following wraps tracing, so every hop is traced.
func TestRedirectsWrapTracing(t *testing.T) {
	var trace bytes.Buffer
	terminal := func(ctx context.Context, req *Request) (*Response, error) {
		if req.URL == "http://example.com/final" {
			return &Response{StatusCode: 200, Status: "200 OK", URL: req.URL}, nil
		}
		return &Response{
			StatusCode: 302,
			Status:     "302 Found",
			URL:        req.URL,
			Headers:    []HeaderEntry{{Name: "Location", Value: "/final"}},
		}, nil
	}

	handler := Chain(terminal, FollowRedirects(DefaultMaxRedirects), Verbose(&trace))
	_, err := handler(context.Background(), &Request{Method: "GET", URL: "http://example.com/start"})

	require.NoError(t, err)
	out := trace.String()
	assert.Contains(t, out, "GET http://example.com/start\n")
	assert.Contains(t, out, "302 Found\n")
	assert.Contains(t, out, "GET http://example.com/final\n")
	assert.Contains(t, out, "200 OK\n")
}
