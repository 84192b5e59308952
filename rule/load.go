package rule

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/goccy/go-yaml"
)

//go:embed curriculum.yaml
var curriculum []byte

// fileConfig is the layout of a rule file
type fileConfig struct {
	Groups []fileGroup `yaml:"groups"`
}

type fileGroup struct {
	Name  string     `yaml:"name"`
	Tasks []fileTask `yaml:"tasks"`
}

type fileTask struct {
	ID    int        `yaml:"id"`
	Title string     `yaml:"title"`
	Rules []fileRule `yaml:"rules"`
}

type fileRule struct {
	Kind        string `yaml:"kind"`
	Pattern     string `yaml:"pattern"`
	Description string `yaml:"description"`
	Failure     string `yaml:"failure"`
}

// Parse builds a bank from rule file content
func Parse(b []byte) (*Bank, error) {
	var conf fileConfig
	if err := yaml.Unmarshal(b, &conf); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}

	groups := make(map[string]map[int][]Rule, len(conf.Groups))
	for _, g := range conf.Groups {
		if g.Name == "" {
			return nil, fmt.Errorf("rule group without name")
		}
		if _, ok := groups[g.Name]; ok {
			return nil, fmt.Errorf("duplicated rule group %q", g.Name)
		}
		tasks := make(map[int][]Rule, len(g.Tasks))
		for _, t := range g.Tasks {
			if _, ok := tasks[t.ID]; ok {
				return nil, fmt.Errorf("%s/%d: duplicated task", g.Name, t.ID)
			}
			rules := make([]Rule, 0, len(t.Rules))
			for i, fr := range t.Rules {
				r, err := fr.build()
				if err != nil {
					return nil, fmt.Errorf("%s/%d: rule %d: %w", g.Name, t.ID, i, err)
				}
				rules = append(rules, r)
			}
			tasks[t.ID] = rules
		}
		groups[g.Name] = tasks
	}
	return NewBank(groups), nil
}

func (fr fileRule) build() (Rule, error) {
	k, err := ParseKind(fr.Kind)
	if err != nil {
		return Rule{}, err
	}
	if fr.Pattern == "" {
		return Rule{}, fmt.Errorf("empty pattern")
	}
	switch k {
	case KindContains:
		return Contains(fr.Pattern, fr.Description, fr.Failure)
	default:
		return Regex(fr.Pattern, fr.Description, fr.Failure)
	}
}

// Load builds a bank from a rule file on disk
func Load(name string) (*Bank, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

var defaultBank = sync.OnceValues(func() (*Bank, error) {
	return Parse(curriculum)
})

// Default returns the bank of the built-in curriculum
func Default() *Bank {
	b, err := defaultBank()
	if err != nil {
		panic(fmt.Sprintf("built-in curriculum is invalid: %v", err))
	}
	return b
}
