package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRules(t *testing.T) {
	rules, err := ParseRules("auth/login:POST, docs/*:* ,health:GET")
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.Equal(t, Rule{Pattern: "auth/login", Method: "POST"}, rules[0])
	assert.Equal(t, Rule{Pattern: "docs/*", Method: "*"}, rules[1])
	assert.Equal(t, Rule{Pattern: "health", Method: "GET"}, rules[2])

	rules, err = ParseRules("")
	require.NoError(t, err)
	assert.Empty(t, rules)

	// Methods are normalized to upper case, paths lose surrounding slashes.
	rules, err = ParseRules("/auth/login/:post")
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, Rule{Pattern: "auth/login", Method: "POST"}, rules[0])
}

func TestParseRules_Invalid(t *testing.T) {
	for _, raw := range []string{"auth/login", "auth/login:", ":GET"} {
		_, err := ParseRules(raw)
		assert.Error(t, err, "rule %q should be rejected", raw)
	}
}

func TestMatcher_IsPublic(t *testing.T) {
	rules, err := ParseRules("auth/login:POST,auth/refresh:GET,docs/*:*,health:GET")
	require.NoError(t, err)
	matcher := NewMatcher(rules)

	tests := []struct {
		name   string
		path   string
		method string
		want   bool
	}{
		{"exact match", "auth/login", "POST", true},
		{"exact match with slashes", "/auth/login/", "POST", true},
		{"method is case-insensitive", "auth/login", "post", true},
		{"wrong method", "auth/login", "GET", false},
		{"unlisted path", "auth/logout", "GET", false},
		{"wildcard matches sub-path", "docs/openapi.json", "GET", true},
		{"wildcard matches deep sub-path", "docs/v1/schema", "DELETE", true},
		{"wildcard requires a sub-segment", "docs", "GET", false},
		{"wildcard requires non-empty remainder", "docs/", "GET", false},
		{"prefix without separator does not match", "docsx", "GET", false},
		{"health probe", "health", "GET", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matcher.IsPublic(tt.path, tt.method))
		})
	}
}

func TestMatcher_FirstMatchWins(t *testing.T) {
	// A broad wildcard before a narrower rule still answers first.
	matcher := NewMatcher([]Rule{
		{Pattern: "auth/*", Method: "*"},
		{Pattern: "auth/login", Method: "POST"},
	})
	assert.True(t, matcher.IsPublic("auth/users", "GET"))
	assert.True(t, matcher.IsPublic("auth/login", "POST"))
}

func TestMatcher_Empty(t *testing.T) {
	matcher := NewMatcher(nil)
	assert.False(t, matcher.IsPublic("health", "GET"), "no rules means nothing is public")
}
