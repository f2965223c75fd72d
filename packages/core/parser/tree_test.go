package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPair(t *testing.T) {
	tests := []struct {
		name  string
		input string
		key   string
		value string
	}{
		{
			name:  "equals separator",
			input: "accept=application/json",
			key:   "accept",
			value: "application/json",
		},
		{
			name:  "colon separator",
			input: "content-type:text/plain",
			key:   "content-type",
			value: "text/plain",
		},
		{
			name:  "first separator wins",
			input: "x-forward:a=b",
			key:   "x-forward",
			value: "a=b",
		},
		{
			name:  "equals before colon",
			input: "key=http://example.com",
			key:   "key",
			value: "http://example.com",
		},
		{
			name:  "empty value",
			input: "key=",
			key:   "key",
			value: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, err := SplitPair(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.key, pair.Key)
			assert.Equal(t, tt.value, pair.Value)
		})
	}
}

func TestSplitPair_MissingSeparator(t *testing.T) {
	_, err := SplitPair("nonsense")

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "nonsense", parseErr.Token)
	assert.Contains(t, err.Error(), "malformed pair")
}

func TestBuildTree_DottedKeys(t *testing.T) {
	tree, err := BuildTree([]string{
		"credential.username=test@gmail.com",
		"credential.password=foo",
	})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"credential": map[string]any{
			"username": "test@gmail.com",
			"password": "foo",
		},
	}, tree)
}

func TestBuildTree_ScalarInference(t *testing.T) {
	tree, err := BuildTree([]string{
		"a=true",
		"b=abc123",
		"c={",
		"d=5",
		"e=-5.5",
		"f=null",
		"g=\"quoted\"",
	})

	require.NoError(t, err)
	assert.Equal(t, true, tree["a"])
	assert.Equal(t, "abc123", tree["b"])
	assert.Equal(t, "{", tree["c"])
	assert.Equal(t, float64(5), tree["d"])
	assert.Equal(t, -5.5, tree["e"])
	assert.Nil(t, tree["f"])
	assert.Equal(t, "quoted", tree["g"])
}

func TestBuildTree_NoObjectsAtLeaves(t *testing.T) {
	// Nested structure comes from dotted keys, never from JSON object
	// or array syntax typed as a value.
	tree, err := BuildTree([]string{
		`a={"nested": 1}`,
		"b=[1,2]",
	})

	require.NoError(t, err)
	assert.Equal(t, `{"nested": 1}`, tree["a"])
	assert.Equal(t, "[1,2]", tree["b"])
}

func TestBuildTree_LastWriteWins(t *testing.T) {
	tree, err := BuildTree([]string{
		"a.b=first",
		"a.b=second",
	})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": map[string]any{"b": "second"},
	}, tree)
}

func TestBuildTree_ConflictingKeyPath(t *testing.T) {
	_, err := BuildTree([]string{
		"a=1",
		"a.b=2",
	})

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "a.b=2", parseErr.Token)
	assert.Contains(t, err.Error(), "conflicting key path")
}

func TestBuildTree_EmptySegment(t *testing.T) {
	_, err := BuildTree([]string{"a..b=1"})

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, err.Error(), "empty key path segment")
}

func TestBuildTree_MalformedPair(t *testing.T) {
	_, err := BuildTree([]string{"a=1", "broken"})

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "broken", parseErr.Token)
}

func TestEncodeForm(t *testing.T) {
	tree, err := BuildTree([]string{
		"email=test@example.com",
		"count=5",
		"active=true",
	})
	require.NoError(t, err)

	encoded, err := EncodeForm(tree)

	require.NoError(t, err)
	assert.Equal(t, "active=true&count=5&email=test%40example.com", encoded)
}

func TestEncodeForm_NestedObject(t *testing.T) {
	tree, err := BuildTree([]string{"a.b=1"})
	require.NoError(t, err)

	_, err = EncodeForm(tree)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, err.Error(), "nested")
}
