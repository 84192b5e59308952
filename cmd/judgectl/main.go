// Command judgectl checks local source files against the curriculum rules
// without running the judge server.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/criyle/go-static-judge/cmd/go-static-judge/version"
	"github.com/criyle/go-static-judge/rule"
	"github.com/spf13/cobra"
)

// errTestsFailed makes judgectl exit with status 1 without printing an error
var errTestsFailed = errors.New("some tests failed")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errTestsFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "judgectl",
		Short: "Static code judge for curriculum tasks",
		Long: `judgectl evaluates source code against the pattern rules of a curriculum task.
It prints the same report as the judge server and exits with status 1 when a test fails.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCheckCmd())
	root.AddCommand(newTasksCmd())
	root.AddCommand(newValidateCmd())
	return root
}

// loadBank loads the rule file, or the built-in curriculum when name is empty
func loadBank(name string) (*rule.Bank, error) {
	if name == "" {
		return rule.Default(), nil
	}
	return rule.Load(name)
}
