package parser

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// BuildTree folds key=value arguments into a nested object. Dots in
// keys address nested objects: "foo.bar=1 foo.baz=2" yields
// {"foo": {"bar": 1, "baz": 2}}. A later pair overwrites an earlier
// one at the same path. Descending through a key already bound to a
// scalar is a fatal error.
func BuildTree(args []string) (map[string]any, error) {
	tree := make(map[string]any)
	for _, arg := range args {
		pair, err := SplitPair(arg)
		if err != nil {
			return nil, err
		}
		segments := strings.Split(pair.Key, ".")
		current := tree
		for i, segment := range segments {
			if segment == "" {
				return nil, &ParseError{Token: arg, Reason: "empty key path segment"}
			}
			if i == len(segments)-1 {
				current[segment] = inferScalar(pair.Value)
				continue
			}
			child, ok := current[segment]
			if !ok {
				next := make(map[string]any)
				current[segment] = next
				current = next
				continue
			}
			obj, ok := child.(map[string]any)
			if !ok {
				return nil, &ParseError{Token: arg, Reason: fmt.Sprintf("conflicting key path, %q is not an object", segment)}
			}
			current = obj
		}
	}
	return tree, nil
}

// inferScalar parses raw as a JSON scalar (true/false/null, numbers,
// quoted strings), falling back to the literal string when the parse
// fails. Objects and arrays are never inferred at a leaf: nested
// structure comes from dotted keys only, so "{" stays the string "{".
func inferScalar(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	switch v.(type) {
	case map[string]any, []any:
		return raw
	}
	return v
}

// EncodeForm serializes a tree as application/x-www-form-urlencoded.
// Form bodies are flat; a nested object is a fatal input error.
func EncodeForm(tree map[string]any) (string, error) {
	values := url.Values{}
	for key, value := range tree {
		switch v := value.(type) {
		case map[string]any:
			return "", &ParseError{Token: key, Reason: "form fields cannot be nested objects"}
		case nil:
			values.Set(key, "")
		default:
			values.Set(key, fmt.Sprint(v))
		}
	}
	return values.Encode(), nil
}
