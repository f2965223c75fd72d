package parser

import (
	"fmt"
	"strings"
)

// ParseError describes a malformed or conflicting command-line token.
type ParseError struct {
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %q", e.Reason, e.Token)
}

// Pair is one key/value argument split on its first separator.
type Pair struct {
	Key   string
	Value string
}

// SplitPair splits s into a Pair on the first '=' or ':', whichever
// occurs first. A string without either separator is a fatal input
// error.
func SplitPair(s string) (Pair, error) {
	idx := strings.IndexAny(s, "=:")
	if idx < 0 {
		return Pair{}, &ParseError{Token: s, Reason: "malformed pair, expected key=value or key:value"}
	}
	return Pair{Key: s[:idx], Value: s[idx+1:]}, nil
}
