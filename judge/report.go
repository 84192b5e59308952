package judge

import (
	"strings"
)

// Banners of the rendered report
const (
	BannerPassed = "✅ All tests passed! Excellent work!"
	BannerFailed = "❌ Some tests failed:"
)

// Summary aggregates outcomes
type Summary struct {
	TestsPassed int  `json:"testsPassed"`
	TestsTotal  int  `json:"testsTotal"`
	AllPassed   bool `json:"allPassed"`
}

// Summarize counts passed outcomes. An empty list is all passed (zero of zero).
func Summarize(outcomes []Outcome) Summary {
	var s Summary
	for _, o := range outcomes {
		if o.Passed {
			s.TestsPassed++
		}
	}
	s.TestsTotal = len(outcomes)
	s.AllPassed = s.TestsPassed == s.TestsTotal
	return s
}

// Render formats the learner facing report
func Render(outcomes []Outcome) string {
	var b strings.Builder
	if Summarize(outcomes).AllPassed {
		b.WriteString(BannerPassed)
	} else {
		b.WriteString(BannerFailed)
	}
	b.WriteString("\n\n")

	for _, o := range outcomes {
		b.WriteString(o.Message)
		b.WriteByte('\n')
		if !o.Passed && o.Expected != nil {
			b.WriteString("   Expected: ")
			b.WriteString(*o.Expected)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
