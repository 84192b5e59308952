package rule

import "strings"

// Match reports whether the source satisfies the rule.
// Rules of unknown kind never match.
func Match(source string, r Rule) bool {
	switch r.Kind {
	case KindContains:
		return strings.Contains(source, r.Pattern)

	case KindRegex:
		if r.Regexp == nil {
			return false
		}
		return r.Regexp.MatchString(source)

	default:
		return false
	}
}
