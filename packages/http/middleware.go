package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
)

// Handler executes one request and resolves its response.
type Handler func(ctx context.Context, req *Request) (*Response, error)

// Middleware wraps a Handler with cross-cutting behavior. A middleware
// may forward the request unchanged, inspect the outcome, or
// short-circuit by returning its own result.
type Middleware func(next Handler) Handler

// Chain folds middlewares around a terminal handler. The first
// middleware is outermost: Chain(h, a, b) runs a(b(h)).
func Chain(terminal Handler, middlewares ...Middleware) Handler {
	h := terminal
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// FollowRedirects re-issues the request while the response is a
// redirect carrying a Location header, up to max hops. Hitting the
// limit returns the last redirect response rather than an error.
// Transport errors propagate unchanged.
func FollowRedirects(max int) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*Response, error) {
			resp, err := next(ctx, req)
			if err != nil {
				return nil, err
			}
			current := req
			for hops := 0; hops < max && resp.IsRedirect(); hops++ {
				location := resp.Header("Location")
				if location == "" {
					break
				}
				target, terr := redirectTarget(resp.URL, location)
				if terr != nil {
					break
				}
				current = current.redirect(target, resp.StatusCode)
				resp, err = next(ctx, current)
				if err != nil {
					return nil, err
				}
			}
			return resp, nil
		}
	}
}

// redirectTarget resolves a possibly-relative Location against the URL
// the redirect response came from.
func redirectTarget(base, location string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	target, err := baseURL.Parse(location)
	if err != nil {
		return "", err
	}
	return target.String(), nil
}

// Verbose traces the full request/response exchange to w. It is purely
// observational: the request, the response, and any error pass through
// unchanged.
func Verbose(w io.Writer) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*Response, error) {
			fmt.Fprintf(w, "%s %s\n", req.Method, req.BuildURL())
			writeHeaders(w, req.Headers)
			if req.Body.Kind != BodyEmpty {
				fmt.Fprintln(w, "Body:")
				switch req.Body.Kind {
				case BodyBytes:
					fmt.Fprintf(w, "<%d bytes>\n", len(req.Body.Bytes))
				case BodyText:
					fmt.Fprintln(w, req.Body.Text)
				case BodyJSON:
					if data, err := json.MarshalIndent(req.Body.JSON, "", "  "); err == nil {
						fmt.Fprintln(w, string(data))
					}
				}
			}
			fmt.Fprintln(w, "==========")

			resp, err := next(ctx, req)
			if err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
				return nil, err
			}

			fmt.Fprintln(w, resp.Status)
			writeHeaders(w, resp.Headers)
			return resp, nil
		}
	}
}

func writeHeaders(w io.Writer, headers []HeaderEntry) {
	if len(headers) == 0 {
		return
	}
	fmt.Fprintln(w, "Headers:")
	for _, h := range headers {
		fmt.Fprintf(w, "%s: %s\n", h.Name, h.Value)
	}
}
