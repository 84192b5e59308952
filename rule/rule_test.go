package rule

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func mustContains(t *testing.T, pattern string) Rule {
	t.Helper()
	r, err := Contains(pattern, "desc", "fail")
	if err != nil {
		t.Fatalf("Contains(%q): %v", pattern, err)
	}
	return r
}

func TestMatchContainsEqualsStringsContains(t *testing.T) {
	sources := []string{"", "express()", "Express()", "const app = express();", "EXPORT DEFAULT", "export default app"}
	patterns := []string{"", "express()", "export default", "Express", "app"}
	for _, p := range patterns {
		r := mustContains(t, p)
		for _, s := range sources {
			if got, want := Match(s, r), strings.Contains(s, p); got != want {
				t.Errorf("Match(%q, contains %q) = %v, want %v", s, p, got, want)
			}
		}
	}
}

func TestMatchRegexSearch(t *testing.T) {
	r, err := Regex(`\.get\s*\(\s*['"`+"`"+`]/health['"`+"`"+`]`, "desc", "fail")
	if err != nil {
		t.Fatal(err)
	}
	if !Match("app.get( '/health', h)", r) {
		t.Error("expected match anywhere in source")
	}
	if Match("app.post('/health', h)", r) {
		t.Error("unexpected match")
	}
}

func TestMatchFailsClosed(t *testing.T) {
	cases := []Rule{
		{Kind: KindInvalid, Pattern: "x", Description: "d", Failure: "f"},
		{Kind: Kind(42), Pattern: "x", Description: "d", Failure: "f"},
		{Kind: KindRegex, Pattern: "x", Description: "d", Failure: "f"}, // not compiled
	}
	for _, r := range cases {
		if Match("x", r) {
			t.Errorf("rule of kind %v matched", r.Kind)
		}
	}
}

func TestConstructorsRejectEmptyText(t *testing.T) {
	if _, err := Contains("x", "", "f"); err == nil {
		t.Error("expected error for empty description")
	}
	if _, err := Regex("x", "d", ""); err == nil {
		t.Error("expected error for empty failure")
	}
	if _, err := Regex("(", "d", "f"); err == nil {
		t.Error("expected error for invalid regex")
	}
}

func TestHint(t *testing.T) {
	c := mustContains(t, "export default")
	if h, ok := c.Hint(); !ok || h != "export default" {
		t.Errorf("Hint() = %q, %v", h, ok)
	}
	r, _ := Regex("a+", "d", "f")
	if _, ok := r.Hint(); ok {
		t.Error("regex rule should not expose a hint")
	}
}

func TestBankLookup(t *testing.T) {
	a := mustContains(t, "a")
	b := mustContains(t, "b")
	bank := NewBank(map[string]map[int][]Rule{
		"g": {1: {a, b}},
	})
	got := bank.Lookup("g", 1)
	if len(got) != 2 || got[0].Pattern != "a" || got[1].Pattern != "b" {
		t.Fatalf("Lookup order broken: %+v", got)
	}
	got[0].Pattern = "mutated"
	if bank.Lookup("g", 1)[0].Pattern != "a" {
		t.Error("bank was mutated through returned slice")
	}
	if len(bank.Lookup("g", 2)) != 0 || len(bank.Lookup("x", 1)) != 0 {
		t.Error("unknown task should return empty rules")
	}
	var nilBank *Bank
	if len(nilBank.Lookup("g", 1)) != 0 {
		t.Error("nil bank should return empty rules")
	}
}

func TestDefaultCurriculum(t *testing.T) {
	bank := Default()
	groups := bank.Groups()
	want := []string{"basics", "database", "urlShortener"}
	if strings.Join(groups, ",") != strings.Join(want, ",") {
		t.Fatalf("Groups() = %v, want %v", groups, want)
	}
	if n := len(bank.Lookup("basics", 1)); n != 5 {
		t.Errorf("basics/1 has %d rules, want 5", n)
	}
	if n := len(bank.Tasks("urlShortener")); n != 7 {
		t.Errorf("urlShortener has %d tasks, want 7", n)
	}
	for _, ti := range bank.All() {
		for i, r := range bank.Lookup(ti.Group, ti.ID) {
			if r.Description == "" || r.Failure == "" {
				t.Errorf("%s/%d rule %d has empty text", ti.Group, ti.ID, i)
			}
		}
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"unknown kind": `
groups:
  - name: g
    tasks:
      - id: 1
        rules:
          - kind: glob
            pattern: "*"
            description: d
            failure: f
`,
		"bad regex": `
groups:
  - name: g
    tasks:
      - id: 1
        rules:
          - kind: regex
            pattern: "("
            description: d
            failure: f
`,
		"missing failure": `
groups:
  - name: g
    tasks:
      - id: 1
        rules:
          - kind: contains
            pattern: x
            description: d
`,
		"duplicated task": `
groups:
  - name: g
    tasks:
      - id: 1
      - id: 1
`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoad(t *testing.T) {
	name := filepath.Join(t.TempDir(), "rules.yaml")
	content := `
groups:
  - name: custom
    tasks:
      - id: 3
        rules:
          - kind: CONTAINS
            pattern: "hello"
            description: Says hello
            failure: Must say hello
          - kind: REGEX
            pattern: "wor+ld"
            description: Says world
            failure: Must say world
`
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	bank, err := Load(name)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rules := bank.Lookup("custom", 3)
	if len(rules) != 2 {
		t.Fatalf("got %d rules", len(rules))
	}
	if rules[0].Kind != KindContains || rules[1].Kind != KindRegex {
		t.Errorf("unexpected kinds %v %v", rules[0].Kind, rules[1].Kind)
	}
	if !Match("hello worrrld", rules[1]) {
		t.Error("regex rule from file should match")
	}
}
