package judge

import "strings"

// SyntaxResult is the result of the structural sanity check
type SyntaxResult struct {
	Valid bool
	Error string
}

// CheckSyntax counts braces and parentheses independently.
// It does not check nesting order and is not aware of strings or comments,
// so code with brackets inside literals may be reported as unbalanced.
func CheckSyntax(source string) SyntaxResult {
	if strings.Count(source, "{") != strings.Count(source, "}") {
		return SyntaxResult{Error: "Unbalanced braces { }"}
	}
	if strings.Count(source, "(") != strings.Count(source, ")") {
		return SyntaxResult{Error: "Unbalanced parentheses ( )"}
	}
	return SyntaxResult{Valid: true}
}
