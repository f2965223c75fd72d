// Package http assembles and executes HTTP requests for the req CLI.
//
// It wraps the standard library's http package with additional features:
//   - Ordered, duplicate-preserving header assembly from CLI sources
//   - Shorthand URL normalization and method inference
//   - Immutable request descriptors with typed body variants
//   - A per-invocation middleware chain (redirects, verbose tracing)
//   - A configurable terminal transport
package http
