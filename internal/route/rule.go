package route

import "fmt"

// Rule is a compiled rewrite-table entry: a matcher paired with the
// replacer template that fires when it matches.
type Rule struct {
	Matcher  *Matcher
	Replacer *Replacer
}

// CompileRule compiles a (matcher, replacer) pair and statically rejects a
// replacer with references the matcher never binds.
func CompileRule(matcherSpec, replacerSpec string) (*Rule, error) {
	m, err := CompileMatcher(matcherSpec)
	if err != nil {
		return nil, err
	}
	r, err := CompileReplacer(replacerSpec)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(m.VarName))
	for _, n := range m.VarName {
		known[n] = true
	}
	if bad := r.Unresolved(known); len(bad) > 0 {
		return nil, fmt.Errorf("route: replacer %q references unbound variable(s) %v from matcher %q", replacerSpec, bad, matcherSpec)
	}
	return &Rule{Matcher: m, Replacer: r}, nil
}

// Table is an ordered list of rewrite rules, evaluated top to bottom; the
// first matching rule wins and no further rule is consulted, per
// the invariant that a rewrite rule fires at most once per request.
type Table struct {
	Rules []*Rule
}

// Rewrite evaluates path against the table in order and returns the
// rewritten path and query from the first matching rule's replacer output.
// If no rule matches, path is returned unchanged and matched is false.
func (t *Table) Rewrite(path string) (newPath, newQuery string, matched bool) {
	for _, rule := range t.Rules {
		m, ok := rule.Matcher.Match(path)
		if !ok {
			continue
		}
		target := rule.Replacer.Apply(m.Captures, m.Suffix)
		p, q := SplitPathQuery(target)
		return p, q, true
	}
	return path, "", false
}

// MatcherList is an ordered, replacer-less list of matchers, the form the
// Basic-auth gate and other route-membership checks use.
type MatcherList struct {
	Matchers []*Matcher
}

// AnyMatch reports whether any matcher in the list matches path, returning
// the first hit's Match.
func (l *MatcherList) AnyMatch(path string) (*Match, bool) {
	for _, m := range l.Matchers {
		if match, ok := m.Match(path); ok {
			return match, true
		}
	}
	return nil, false
}
