package judge

import (
	"errors"
	"strings"
	"testing"

	"github.com/criyle/go-static-judge/rule"
	"github.com/google/go-cmp/cmp"
)

const (
	fullBasicsSource  = "const app = express(); app.get('/', ...); app.get('/health', ...); export default app;"
	shortBasicsSource = "const app = express();"
)

func TestCheckSyntax(t *testing.T) {
	cases := []struct {
		source string
		want   SyntaxResult
	}{
		{"", SyntaxResult{Valid: true}},
		{"{}{}", SyntaxResult{Valid: true}},
		{"}{}{", SyntaxResult{Valid: true}},
		{")(", SyntaxResult{Valid: true}},
		{"{", SyntaxResult{Error: "Unbalanced braces { }"}},
		{"function f() { return (1;", SyntaxResult{Error: "Unbalanced braces { }"}},
		{"function f() { return (1; }", SyntaxResult{Error: "Unbalanced parentheses ( )"}},
		{"{ (", SyntaxResult{Error: "Unbalanced braces { }"}},
	}
	for _, c := range cases {
		if got := CheckSyntax(c.source); got != c.want {
			t.Errorf("CheckSyntax(%q) = %+v, want %+v", c.source, got, c.want)
		}
	}
}

func TestEvaluateAllPassed(t *testing.T) {
	e := New(rule.Default())
	outcomes := e.Evaluate(fullBasicsSource, "basics", 1)
	s := Summarize(outcomes)
	if s != (Summary{TestsPassed: 5, TestsTotal: 5, AllPassed: true}) {
		t.Fatalf("Summarize = %+v", s)
	}
	report := Render(outcomes)
	if !strings.HasPrefix(report, BannerPassed) {
		t.Errorf("report does not start with passed banner:\n%s", report)
	}
	if strings.Contains(report, "Expected:") {
		t.Errorf("passed report should not contain hints:\n%s", report)
	}
}

func TestEvaluateSomeFailed(t *testing.T) {
	e := New(rule.Default())
	outcomes := e.Evaluate(shortBasicsSource, "basics", 1)
	s := Summarize(outcomes)
	if s != (Summary{TestsPassed: 2, TestsTotal: 5, AllPassed: false}) {
		t.Fatalf("Summarize = %+v", s)
	}
	rules := rule.Default().Lookup("basics", 1)
	for i, o := range outcomes {
		if o.Passed {
			continue
		}
		if !strings.HasPrefix(o.Message, "✗ ") {
			t.Errorf("outcome %d message %q lacks cross marker", i, o.Message)
		}
		if !strings.Contains(o.Message, rules[i].Failure) {
			t.Errorf("outcome %d message %q lacks failure message %q", i, o.Message, rules[i].Failure)
		}
	}

	// only the failed contains rule (export default) carries a hint
	if outcomes[4].Expected == nil || *outcomes[4].Expected != "export default" {
		t.Errorf("expected hint for export rule, got %v", outcomes[4].Expected)
	}
	if outcomes[2].Expected != nil || outcomes[3].Expected != nil {
		t.Error("regex rules must not expose hints")
	}

	want := BannerFailed + "\n\n" +
		"✓ Uses Express\n" +
		"✓ Creates Express app\n" +
		"✗ Must create GET route at /\n" +
		"✗ Must create GET route at /health\n" +
		"✗ Must export the app using export default\n" +
		"   Expected: export default\n"
	if diff := cmp.Diff(want, Render(outcomes)); diff != "" {
		t.Errorf("Render mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluateReportsParenthesisError(t *testing.T) {
	e := New(rule.Default())
	outcomes := e.Evaluate("function f() { return (1; }", "basics", 1)
	last := outcomes[len(outcomes)-1]
	if last.Description != syntaxTestName || last.Passed {
		t.Fatalf("last outcome is not a failed syntax check: %+v", last)
	}
	if last.Message != "✗ Unbalanced parentheses ( )" {
		t.Errorf("syntax message = %q", last.Message)
	}
	if last.Expected != nil {
		t.Error("syntax outcome must not carry a hint")
	}
}

func TestEvaluateUnknownTask(t *testing.T) {
	e := New(rule.Default())

	outcomes := e.Evaluate("{}", "nope", 99)
	if len(outcomes) != 0 {
		t.Fatalf("expected no outcomes, got %+v", outcomes)
	}
	if s := Summarize(outcomes); !s.AllPassed || s.TestsTotal != 0 {
		t.Errorf("Summarize = %+v", s)
	}

	outcomes = e.Evaluate("{", "basics", 99)
	if len(outcomes) != 1 || outcomes[0].Passed {
		t.Fatalf("expected only the sanity failure, got %+v", outcomes)
	}
	if s := Summarize(outcomes); s.TestsTotal != 1 || s.AllPassed {
		t.Errorf("Summarize = %+v", s)
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	e := New(rule.Default())
	for _, src := range []string{fullBasicsSource, shortBasicsSource, "((", ""} {
		a := e.Evaluate(src, "basics", 1)
		b := e.Evaluate(src, "basics", 1)
		if diff := cmp.Diff(a, b); diff != "" {
			t.Errorf("Evaluate(%q) not idempotent:\n%s", src, diff)
		}
	}
}

func TestEvaluateMalformedRule(t *testing.T) {
	bank := rule.NewBank(map[string]map[int][]rule.Rule{
		"g": {1: {{Kind: rule.Kind(7), Pattern: "x", Description: "Weird", Failure: "Weird rule failed"}}},
	})
	outcomes := New(bank).Evaluate("x", "g", 1)
	if len(outcomes) != 1 || outcomes[0].Passed || outcomes[0].Message != "✗ Weird rule failed" {
		t.Errorf("unexpected outcomes %+v", outcomes)
	}
}

func TestInputValidate(t *testing.T) {
	if err := (Input{TaskGroup: "basics", TaskID: 1, Source: "x"}).Validate(); err != nil {
		t.Errorf("valid input rejected: %v", err)
	}
	err := (Input{TaskGroup: "basics"}).Validate()
	if !errors.Is(err, ErrInputMissing) {
		t.Fatalf("expected ErrInputMissing, got %v", err)
	}
	if !strings.Contains(err.Error(), "taskId, code") {
		t.Errorf("error should name the missing fields: %v", err)
	}
}
