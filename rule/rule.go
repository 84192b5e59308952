package rule

import (
	"errors"
	"fmt"
	"regexp"
)

// Kind defines how a rule pattern is checked against the source
type Kind int

// Defines rule kinds
const (
	// not initialized kind (never matches)
	KindInvalid Kind = iota

	KindContains // literal substring
	KindRegex    // regular expression search
)

var kindToString = []string{
	"invalid",
	"contains",
	"regex",
}

func (k Kind) String() string {
	ki := int(k)
	if ki < 0 || ki >= len(kindToString) {
		return kindToString[0]
	}
	return kindToString[ki]
}

// ParseKind converts the textual kind used in rule files
func ParseKind(s string) (Kind, error) {
	switch s {
	case "contains", "CONTAINS":
		return KindContains, nil
	case "regex", "REGEX":
		return KindRegex, nil
	}
	return KindInvalid, fmt.Errorf("invalid rule kind: %q", s)
}

var errEmptyText = errors.New("rule description and failure message must not be empty")

// Rule defines a single pattern based assertion on the submitted source
type Rule struct {
	Kind        Kind
	Pattern     string         // literal for contains, source of Regexp for regex
	Regexp      *regexp.Regexp // compiled pattern, only for regex
	Description string
	Failure     string
}

// Contains creates a literal substring rule
func Contains(pattern, description, failure string) (Rule, error) {
	if description == "" || failure == "" {
		return Rule{}, errEmptyText
	}
	return Rule{
		Kind:        KindContains,
		Pattern:     pattern,
		Description: description,
		Failure:     failure,
	}, nil
}

// Regex creates a regular expression rule, the pattern is compiled once
func Regex(pattern, description, failure string) (Rule, error) {
	if description == "" || failure == "" {
		return Rule{}, errEmptyText
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("compile %q: %w", pattern, err)
	}
	return Rule{
		Kind:        KindRegex,
		Pattern:     pattern,
		Regexp:      re,
		Description: description,
		Failure:     failure,
	}, nil
}

// Hint returns the pattern shown to the learner when the rule fails.
// Only literal patterns are surfaced.
func (r Rule) Hint() (string, bool) {
	if r.Kind != KindContains {
		return "", false
	}
	return r.Pattern, true
}
