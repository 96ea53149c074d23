package auth

import (
	"fmt"
	"strings"
)

// Rule describes a single public route. Pattern is a path without the
// leading slash, either exact ("auth/login") or a prefix wildcard
// ("docs/*"). Method is an HTTP method or "*" for any.
type Rule struct {
	Pattern string
	Method  string
}

// ParseRules parses a comma-separated "path:METHOD" list into rules.
func ParseRules(raw string) ([]Rule, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	rules := make([]Rule, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx := strings.LastIndex(part, ":")
		if idx <= 0 || idx == len(part)-1 {
			return nil, fmt.Errorf("invalid public path rule %q, expected \"path:METHOD\"", part)
		}
		pattern := strings.Trim(strings.TrimSpace(part[:idx]), "/")
		method := strings.ToUpper(strings.TrimSpace(part[idx+1:]))
		if pattern == "" {
			return nil, fmt.Errorf("invalid public path rule %q, empty path", part)
		}
		rules = append(rules, Rule{Pattern: pattern, Method: method})
	}
	return rules, nil
}

// Matcher decides whether a request path is reachable without a token.
type Matcher struct {
	rules []Rule
}

// NewMatcher builds a Matcher over an ordered rule list. The first
// matching rule wins.
func NewMatcher(rules []Rule) *Matcher {
	return &Matcher{rules: rules}
}

// IsPublic reports whether path+method match a public rule. The path is
// compared without its leading slash, methods case-insensitively.
func (m *Matcher) IsPublic(path, method string) bool {
	path = strings.Trim(path, "/")
	for _, rule := range m.rules {
		if !methodMatches(rule.Method, method) {
			continue
		}
		if patternMatches(rule.Pattern, path) {
			return true
		}
	}
	return false
}

func methodMatches(ruleMethod, method string) bool {
	return ruleMethod == "*" || strings.EqualFold(ruleMethod, method)
}

// patternMatches compares a normalized path against a rule pattern.
// A "seg/*" pattern requires at least one sub-segment, bare "seg" does
// not match it.
func patternMatches(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		return strings.HasPrefix(path, prefix+"/") && len(path) > len(prefix)+1
	}
	return pattern == path
}
