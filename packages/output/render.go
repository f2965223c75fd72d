package output

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/abdul-hamid-achik/req/packages/http"
	"github.com/fatih/color"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// ErrNoFilename is returned when a remote-name save cannot derive a
// filename from the response URL.
var ErrNoFilename = errors.New("cannot derive filename: URL path has no final segment")

type Renderer struct {
	writer       io.Writer
	raw          bool
	ignoreStatus bool
	remoteName   bool
	dir          string // destination directory for saves, CWD when empty
}

type RendererOption func(*Renderer)

func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func WithWriter(w io.Writer) RendererOption {
	return func(r *Renderer) {
		r.writer = w
	}
}

// WithRaw disables pretty-printing of JSON bodies.
func WithRaw(raw bool) RendererOption {
	return func(r *Renderer) {
		r.raw = raw
	}
}

// WithIgnoreStatus keeps non-2xx responses from failing the process.
func WithIgnoreStatus(ignore bool) RendererOption {
	return func(r *Renderer) {
		r.ignoreStatus = ignore
	}
}

// WithRemoteName saves the body to a file named after the final URL's
// last path segment instead of printing it.
func WithRemoteName(remote bool) RendererOption {
	return func(r *Renderer) {
		r.remoteName = remote
	}
}

// WithDir sets the destination directory for remote-name saves.
func WithDir(dir string) RendererOption {
	return func(r *Renderer) {
		r.dir = dir
	}
}

// Render writes the response and reports the process exit code: 0 for
// success or an ignored failure status, 1 for an unignored non-2xx.
// The status check runs before any save-to-file handling.
func (r *Renderer) Render(resp *http.Response) (int, error) {
	if !r.ignoreStatus && !resp.IsSuccess() {
		r.printBody(resp)
		return 1, nil
	}

	if r.remoteName {
		return 0, r.save(resp)
	}

	r.printBody(resp)
	return 0, nil
}

func (r *Renderer) printBody(resp *http.Response) {
	if !r.raw && resp.IsJSON() && gjson.ValidBytes(resp.Body) {
		body := pretty.Pretty(resp.Body)
		if !color.NoColor {
			body = pretty.Color(body, nil)
		}
		fmt.Fprintf(r.writer, "%s", body)
		return
	}
	fmt.Fprintln(r.writer, resp.BodyString())
}

// save writes the raw response bytes, exactly as received, to a file
// named after the final URL's last path segment.
func (r *Renderer) save(resp *http.Response) error {
	u, err := url.Parse(resp.URL)
	if err != nil {
		return err
	}
	if u.Path == "" || strings.HasSuffix(u.Path, "/") {
		return fmt.Errorf("%w (path %q)", ErrNoFilename, u.Path)
	}

	dest := path.Base(u.Path)
	if r.dir != "" {
		dest = filepath.Join(r.dir, dest)
	}
	return os.WriteFile(dest, resp.Body, 0o644)
}

// FormatError writes a fatal error message to w.
func FormatError(w io.Writer, err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(w, "%s %v\n", red("Error:"), err)
}
