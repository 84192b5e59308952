package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/criyle/go-static-judge/judge"
	"github.com/spf13/cobra"
)

type checkOptions struct {
	group    string
	task     int
	rules    string
	jsonMode bool
}

type checkResult struct {
	Group    string          `json:"projectType"`
	Task     int             `json:"taskId"`
	Summary  judge.Summary   `json:"summary"`
	Outcomes []judge.Outcome `json:"results"`
}

func newCheckCmd() *cobra.Command {
	var opts checkOptions
	cmd := &cobra.Command{
		Use:   "check [flags] <file|->",
		Short: "Check a source file against the rules of a task",
		Example: `  judgectl check -g basics -t 1 server.js
  cat server.js | judgectl check -g basics -t 1 --json -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, args[0])
		},
	}
	cmd.Flags().StringVarP(&opts.group, "group", "g", "", "task group (project type) of the task")
	cmd.Flags().IntVarP(&opts.task, "task", "t", 0, "task id within the group")
	cmd.Flags().StringVar(&opts.rules, "rules", "", "rule file (built-in curriculum by default)")
	cmd.Flags().BoolVar(&opts.jsonMode, "json", false, "print outcomes as JSON")
	cmd.MarkFlagRequired("group")
	cmd.MarkFlagRequired("task")
	return cmd
}

func runCheck(cmd *cobra.Command, opts checkOptions, name string) error {
	source, err := readSource(cmd.InOrStdin(), name)
	if err != nil {
		return err
	}
	in := judge.Input{TaskGroup: opts.group, TaskID: opts.task, Source: source}
	if err := in.Validate(); err != nil {
		return err
	}
	bank, err := loadBank(opts.rules)
	if err != nil {
		return err
	}
	if len(bank.Lookup(opts.group, opts.task)) == 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: no rules for task %s/%d\n", opts.group, opts.task)
	}

	outcomes := judge.New(bank).Evaluate(source, opts.group, opts.task)
	summary := judge.Summarize(outcomes)

	out := cmd.OutOrStdout()
	if opts.jsonMode {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(checkResult{
			Group:    opts.group,
			Task:     opts.task,
			Summary:  summary,
			Outcomes: outcomes,
		}); err != nil {
			return err
		}
	} else {
		s := newStyles(out)
		fmt.Fprint(out, s.report(judge.Render(outcomes)))
		fmt.Fprintln(out, s.muted.Render(fmt.Sprintf("%d/%d tests passed", summary.TestsPassed, summary.TestsTotal)))
	}
	if !summary.AllPassed {
		return errTestsFailed
	}
	return nil
}

// readSource reads the named file, or r when name is "-"
func readSource(r io.Reader, name string) (string, error) {
	var (
		b   []byte
		err error
	)
	if name == "-" {
		b, err = io.ReadAll(r)
	} else {
		b, err = os.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	return string(b), nil
}
