package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/abdul-hamid-achik/req/packages/core/config"
	"github.com/abdul-hamid-achik/req/packages/core/parser"
	"github.com/abdul-hamid-achik/req/packages/http"
	"github.com/abdul-hamid-achik/req/packages/output"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

const examplesText = `Examples:
  # Plain GET request
  req jsonip.com

  # GET request with a URL encoded query string
  req jsonip.com apiKey='foo bar'

  # POST request with a JSON body
  req localhost:5000/signup --json email=test@example.com password=test

  # JSON POST with URL params. URL params before --json, JSON pairs after.
  req localhost:5000/search cache=0 --json query='search query'`

var rootCmd = &cobra.Command{
	Use:   "req <url> [param...]",
	Short: "Make HTTP requests from terse command-line arguments",
	Long: `req is a curl/httpie-style HTTP client. The <url> is permissive:
:5000, localhost:3000 and https://www.google.com are all valid. Bare
key=value or key:value arguments become URL query parameters.

` + examplesText,
	Args:          cobra.MinimumNArgs(1),
	RunE:          runRequest,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	methodFlag       string
	headerFlags      []string
	cookieFlags      []string
	bearerFlag       string
	tokenFlag        string
	userFlag         string
	fileFlag         string
	remoteNameFlag   bool
	noFollowFlag     bool
	rawFlag          bool
	ignoreStatusFlag bool
	verboseFlag      bool
	noColorFlag      bool
	insecureFlag     bool
	proxyFlag        string
	timeoutFlag      string
	configFlag       string

	// Greedy flag tokens, pulled out of argv before cobra parses it.
	jsonPairs []string
	formPairs []string
)

func init() {
	rootCmd.Flags().StringVarP(&methodFlag, "method", "m", "", "Request method. Defaults to GET, or POST when a JSON/form body is set. Behaves like curl -X")
	rootCmd.Flags().StringArrayVarP(&headerFlags, "header", "H", nil, "Set a header. Repeatable. Separator can be ':' or '='")
	rootCmd.Flags().StringArrayVarP(&cookieFlags, "cookie", "c", nil, "Set a cookie. Repeatable; all cookies are joined into one Cookie header")
	rootCmd.Flags().StringVar(&bearerFlag, "bearer", "", "Set header 'Authorization: Bearer <value>'")
	rootCmd.Flags().StringVar(&tokenFlag, "token", "", "Set header 'Authorization: Token <value>'")
	rootCmd.Flags().StringVarP(&userFlag, "user", "u", "", "Basic auth credentials as user:pass. Behaves like curl -u")
	rootCmd.Flags().StringVar(&fileFlag, "file", "", "Read the request body from a file")
	rootCmd.Flags().BoolVarP(&remoteNameFlag, "remote-name", "O", false, "Save the response to a file named after the URL path. Behaves like curl -O")
	rootCmd.Flags().BoolVarP(&noFollowFlag, "no-follow", "F", false, "Do not follow redirects")
	rootCmd.Flags().BoolVarP(&rawFlag, "raw", "r", false, "Disable pretty-printing of JSON responses")
	rootCmd.Flags().BoolVar(&ignoreStatusFlag, "ignore-status", false, "Do not fail on non-2xx responses")
	rootCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Trace the request and response on stderr")
	rootCmd.Flags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")
	rootCmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", false, "Disable SSL certificate validation")
	rootCmd.Flags().StringVar(&proxyFlag, "proxy", "", "Proxy URL for the request")
	rootCmd.Flags().StringVar(&timeoutFlag, "timeout", "", "Request timeout (e.g. 30s, 1m)")
	rootCmd.Flags().StringVar(&configFlag, "config", "", "Path to config file")

	// Registered for help text only: the greedy token runs are consumed
	// by splitGreedy before cobra ever parses the argument list.
	rootCmd.Flags().Bool("json", false, "Greedy: every following argument is a JSON body key=value pair. Dotted keys nest: --json foo.bar=1 foo.baz=2 gives {\"foo\":{\"bar\":1,\"baz\":2}}")
	rootCmd.Flags().Bool("form", false, "Greedy: every following argument is a form body key=value pair")
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)

	args, jsonArgs, formArgs := splitGreedy(os.Args[1:])
	jsonPairs = jsonArgs
	formPairs = formArgs
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		output.FormatError(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// splitGreedy pulls the greedy --json/--form token run out of argv.
// Everything after the first --json or --form belongs to that body,
// so URL params and flags must come before it.
func splitGreedy(args []string) (rest, jsonArgs, formArgs []string) {
	for i, arg := range args {
		switch arg {
		case "--json":
			return args[:i], args[i+1:], nil
		case "--form":
			return args[:i], nil, args[i+1:]
		}
	}
	return args, nil, nil
}

// exitCode maps an error to the process exit status. Input errors,
// local I/O errors and transport errors each get their own code so
// scripts can tell them apart.
func exitCode(err error) int {
	var parseErr *parser.ParseError
	var pathErr *fs.PathError
	var urlErr *url.Error

	switch {
	case errors.As(err, &parseErr), errors.Is(err, output.ErrNoFilename):
		return ExitInputError
	case errors.As(err, &pathErr):
		return ExitIOError
	case errors.As(err, &urlErr):
		return ExitNetworkError
	}
	return ExitUsageError
}

func runRequest(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return err
	}

	if noColorFlag || cfg.GetNoColor() {
		color.NoColor = true
	}

	timeout := time.Duration(cfg.Timeout) * time.Millisecond
	if timeoutFlag != "" {
		d, err := time.ParseDuration(timeoutFlag)
		if err != nil {
			return &parser.ParseError{Token: timeoutFlag, Reason: "invalid timeout"}
		}
		timeout = d
	}

	headers, err := http.AssembleHeaders(http.HeaderSources{
		Flags:    headerFlags,
		Bearer:   bearerFlag,
		Token:    tokenFlag,
		User:     userFlag,
		Cookies:  cookieFlags,
		JSONBody: len(jsonPairs) > 0,
		FormBody: len(formPairs) > 0,
	})
	if err != nil {
		return err
	}

	builder := http.NewRequestBuilder(args[0]).
		Method(methodFlag).
		QueryParams(args[1:]).
		Headers(headers).
		Timeout(timeout)

	if len(jsonPairs) > 0 {
		tree, err := parser.BuildTree(jsonPairs)
		if err != nil {
			return err
		}
		builder = builder.JSONBody(tree)
	}

	if len(formPairs) > 0 {
		tree, err := parser.BuildTree(formPairs)
		if err != nil {
			return err
		}
		encoded, err := parser.EncodeForm(tree)
		if err != nil {
			return err
		}
		builder = builder.FormBody(encoded)
	}

	if fileFlag != "" {
		builder = builder.FileBody(fileFlag)
	}

	req, err := builder.Build()
	if err != nil {
		return err
	}

	clientOpts := []http.ClientOption{http.WithTimeout(timeout)}
	if insecureFlag || !cfg.GetValidateSSL() {
		clientOpts = append(clientOpts, http.WithValidateSSL(false))
	}
	proxy := proxyFlag
	if proxy == "" {
		proxy = cfg.Proxy
	}
	if proxy != "" {
		clientOpts = append(clientOpts, http.WithProxy(proxy))
	}
	for name, value := range cfg.Headers {
		clientOpts = append(clientOpts, http.WithDefaultHeader(name, value))
	}
	client := http.NewClient(clientOpts...)

	// Redirect following stays outermost so every hop runs through the
	// verbose trace.
	var middlewares []http.Middleware
	if !noFollowFlag && cfg.GetFollowRedirects() {
		maxRedirects := cfg.MaxRedirects
		if maxRedirects <= 0 {
			maxRedirects = http.DefaultMaxRedirects
		}
		middlewares = append(middlewares, http.FollowRedirects(maxRedirects))
	}
	if verboseFlag {
		middlewares = append(middlewares, http.Verbose(cmd.ErrOrStderr()))
	}

	handler := http.Chain(client.Handler(), middlewares...)
	resp, err := handler(cmd.Context(), req)
	if err != nil {
		return err
	}

	renderer := output.NewRenderer(
		output.WithWriter(cmd.OutOrStdout()),
		output.WithRaw(rawFlag),
		output.WithIgnoreStatus(ignoreStatusFlag),
		output.WithRemoteName(remoteNameFlag),
	)
	code, err := renderer.Render(resp)
	if err != nil {
		return err
	}
	if code != ExitSuccess {
		os.Exit(code)
	}
	return nil
}
