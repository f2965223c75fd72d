// Package parser turns terse command-line arguments into structured
// request inputs.
//
// It handles:
//   - key=value / key:value pair splitting (first separator wins)
//   - folding dotted keys into nested JSON-shaped trees
//   - scalar type inference on leaf values
//   - form-urlencoded serialization of flat trees
package parser
