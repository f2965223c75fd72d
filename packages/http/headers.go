package http

import (
	"encoding/base64"
	"strings"

	"github.com/abdul-hamid-achik/req/packages/core/parser"
)

// HeaderEntry is one name/value header. Header sets are ordered
// sequences that may repeat names.
type HeaderEntry struct {
	Name  string
	Value string
}

// HeaderSources collects every input that contributes request headers.
type HeaderSources struct {
	Flags    []string // raw -H values, in command-line order
	Bearer   string
	Token    string
	User     string // user:pass for basic auth
	Cookies  []string
	JSONBody bool
	FormBody bool
}

// AssembleHeaders merges all sources into one ordered header set.
// Entries are only ever appended, never deduplicated: supplying both
// --bearer and an explicit Authorization header sends both, in merge
// order. Cookies collapse into a single Cookie header. Accept defaults
// to application/json for JSON bodies unless the caller already set
// an Accept header; form bodies always add Content-Type and Accept.
func AssembleHeaders(src HeaderSources) ([]HeaderEntry, error) {
	var entries []HeaderEntry

	for _, flag := range src.Flags {
		pair, err := parser.SplitPair(flag)
		if err != nil {
			return nil, err
		}
		entries = append(entries, HeaderEntry{Name: pair.Key, Value: pair.Value})
	}

	if src.Bearer != "" {
		entries = append(entries, HeaderEntry{Name: "Authorization", Value: "Bearer " + src.Bearer})
	}

	if src.Token != "" {
		entries = append(entries, HeaderEntry{Name: "Authorization", Value: "Token " + src.Token})
	}

	if src.User != "" {
		encoded := base64.StdEncoding.EncodeToString([]byte(src.User))
		entries = append(entries, HeaderEntry{Name: "Authorization", Value: "Basic " + encoded})
	}

	if len(src.Cookies) > 0 {
		entries = append(entries, HeaderEntry{Name: "Cookie", Value: strings.Join(src.Cookies, "; ")})
	}

	if src.JSONBody && !containsHeader(entries, "Accept") {
		entries = append(entries, HeaderEntry{Name: "Accept", Value: "application/json"})
	}

	if src.FormBody {
		entries = append(entries,
			HeaderEntry{Name: "Content-Type", Value: "application/x-www-form-urlencoded"},
			HeaderEntry{Name: "Accept", Value: "*/*"},
		)
	}

	return entries, nil
}

func containsHeader(entries []HeaderEntry, name string) bool {
	for _, e := range entries {
		if strings.EqualFold(e.Name, name) {
			return true
		}
	}
	return false
}
