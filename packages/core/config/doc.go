// Package config handles configuration loading for req.
//
// It provides functionality for:
//   - Loading user defaults from .req.yaml / req.yaml files
//   - A fallback config in $HOME/.config/req/config.yaml
//   - Default values matching the transport defaults
//
// Config values are defaults only; command-line flags always win.
package config
