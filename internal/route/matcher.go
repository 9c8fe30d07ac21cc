package route

import (
	"fmt"
	"regexp"
	"strings"
)

// Anchor distinguishes the two matcher forms: an exact matcher (leading
// '@') anchors at both ends of the path, a prefix matcher anchors only at
// the start and captures the unmatched remainder.
type Anchor int

const (
	Prefix Anchor = iota
	Exact
)

// Matcher is a compiled route matcher: a regex derived from the pattern
// grammar plus the names of its capturing variables.
type Matcher struct {
	Raw     string
	Anchor  Anchor
	re      *regexp.Regexp
	VarName []string
}

// Match is the result of successfully matching a path: the bound variable
// captures, and for a prefix matcher, the unmatched suffix (always "" for
// an exact matcher).
type Match struct {
	Captures map[string]string
	Suffix   string
}

// CompileMatcher parses and compiles a matcher string.
func CompileMatcher(spec string) (*Matcher, error) {
	anchor := Prefix
	pattern := spec
	if strings.HasPrefix(spec, "@") {
		anchor = Exact
		pattern = spec[1:]
	}
	if pattern == "" {
		pattern = "/"
	}

	endsInSlash := strings.HasSuffix(pattern, "/")
	if anchor == Prefix && len(pattern) > 1 && endsInSlash {
		// Trailing slash is insignificant on a prefix matcher.
		pattern = strings.TrimSuffix(pattern, "/")
		endsInSlash = strings.HasSuffix(pattern, "/") // true only if pattern was "/" itself
	}

	tokens, err := tokenize(pattern)
	if err != nil {
		return nil, fmt.Errorf("route: invalid matcher %q: %w", spec, err)
	}
	body, names, err := bodyRegex(tokens)
	if err != nil {
		return nil, fmt.Errorf("route: invalid matcher %q: %w", spec, err)
	}

	var full string
	switch anchor {
	case Exact:
		full = "^" + body + "$"
	default:
		if endsInSlash {
			// The literal pattern itself ends at a '/', so whatever follows
			// is unambiguously the suffix: no extra separator is required.
			full = "^" + body + fmt.Sprintf("(?P<%s>.*)$", suffixGroup)
		} else {
			full = "^" + body + fmt.Sprintf("(?:(?P<%s>/.*))?$", suffixGroup)
		}
	}

	re, err := regexp.Compile(full)
	if err != nil {
		return nil, fmt.Errorf("route: invalid matcher %q: %w", spec, err)
	}
	return &Matcher{Raw: spec, Anchor: anchor, re: re, VarName: names}, nil
}

// Match tests path (the request path, without its query string) against m.
func (m *Matcher) Match(path string) (*Match, bool) {
	sub := m.re.FindStringSubmatch(path)
	if sub == nil {
		return nil, false
	}
	result := &Match{Captures: make(map[string]string, len(m.VarName))}
	for i, name := range m.re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		if name == suffixGroup {
			result.Suffix = sub[i]
			continue
		}
		result.Captures[name] = sub[i]
	}
	return result, true
}
