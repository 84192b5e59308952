// Package judge evaluates submitted source against the rules of a task
// without executing it.
package judge

import (
	"github.com/criyle/go-static-judge/rule"
)

const (
	passMark = "✓ "
	failMark = "✗ "

	syntaxTestName = "Code Syntax"
)

// Outcome is the result of a single rule (or the sanity check)
type Outcome struct {
	Description string  `json:"testName"`
	Passed      bool    `json:"passed"`
	Message     string  `json:"message"`
	Expected    *string `json:"expected,omitempty"`
}

// Engine evaluates sources with the rules of its bank.
// It holds no mutable state so a single Engine serves concurrent calls.
type Engine struct {
	bank *rule.Bank
}

// New creates an engine over the bank
func New(bank *rule.Bank) *Engine {
	return &Engine{bank: bank}
}

// Bank returns the rule bank of the engine
func (e *Engine) Bank() *rule.Bank {
	return e.bank
}

// Evaluate runs every rule of the task in authoring order, followed by the
// sanity check which is reported only when it fails.
func (e *Engine) Evaluate(source, group string, id int) []Outcome {
	rules := e.bank.Lookup(group, id)
	rt := make([]Outcome, 0, len(rules)+1)
	for _, r := range rules {
		rt = append(rt, evaluateRule(source, r))
	}
	if sc := CheckSyntax(source); !sc.Valid {
		rt = append(rt, Outcome{
			Description: syntaxTestName,
			Passed:      false,
			Message:     failMark + sc.Error,
		})
	}
	return rt
}

func evaluateRule(source string, r rule.Rule) Outcome {
	if rule.Match(source, r) {
		return Outcome{
			Description: r.Description,
			Passed:      true,
			Message:     passMark + r.Description,
		}
	}
	o := Outcome{
		Description: r.Description,
		Passed:      false,
		Message:     failMark + r.Failure,
	}
	if h, ok := r.Hint(); ok {
		o.Expected = &h
	}
	return o
}
