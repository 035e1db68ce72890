package search

import (
	"fmt"
	"regexp"
)

// PatternSpec is one user-supplied pattern before compilation. Kind selects
// the matching mode; unknown kinds fall back to prefix semantics.
type PatternSpec struct {
	Kind  string `json:"type"`
	Value string `json:"value"`
}

// InvalidPatternError reports a regex pattern that failed to compile. It is a
// configuration error: startup aborts, the search never begins.
type InvalidPatternError struct {
	Value string
	Err   error
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid regex pattern %q: %v", e.Value, e.Err)
}

func (e *InvalidPatternError) Unwrap() error { return e.Err }

// Matcher is one compiled, case-insensitive predicate over the 0x-prefixed
// hex text of a derived address, plus a human-readable description used in
// match records.
type Matcher struct {
	Description string
	re          *regexp.Regexp
}

// Match reports whether the address text satisfies the predicate.
func (m Matcher) Match(address string) bool {
	return m.re.MatchString(address)
}

// PatternSet is an ordered set of compiled matchers. Immutable after
// compilation.
type PatternSet []Matcher

// CompileMatchers compiles pattern specs in declaration order. Only the regex
// kind can fail: prefix, suffix and contains values are quoted before they
// reach the regexp engine, so they always compile.
func CompileMatchers(specs []PatternSpec) (PatternSet, error) {
	set := make(PatternSet, 0, len(specs))
	for _, spec := range specs {
		var expr, desc string
		switch spec.Kind {
		case "suffix":
			expr = "(?i)" + regexp.QuoteMeta(spec.Value) + "$"
			desc = fmt.Sprintf("ends with %s", spec.Value)
		case "contains":
			expr = "(?i)" + regexp.QuoteMeta(spec.Value)
			desc = fmt.Sprintf("contains %s", spec.Value)
		case "regex":
			expr = "(?i)" + spec.Value
			desc = fmt.Sprintf("matches regex %s", spec.Value)
		default:
			// "prefix" and anything unrecognized. The 0x prefix is part of
			// the matched text, so the pattern anchors right after it.
			expr = "(?i)^0x" + regexp.QuoteMeta(spec.Value)
			desc = fmt.Sprintf("starts with %s", spec.Value)
		}

		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, &InvalidPatternError{Value: spec.Value, Err: err}
		}
		set = append(set, Matcher{Description: desc, re: re})
	}
	return set, nil
}

// MatchFirst returns the description of the first matcher, in declaration
// order, that accepts the address text. Later matchers are not evaluated
// after a hit: first match wins.
func (s PatternSet) MatchFirst(address string) (string, bool) {
	for _, m := range s {
		if m.Match(address) {
			return m.Description, true
		}
	}
	return "", false
}
