package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTasksCmd() *cobra.Command {
	var rules string
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List the task groups and tasks of the curriculum",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bank, err := loadBank(rules)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			s := newStyles(out)
			for _, g := range bank.Groups() {
				fmt.Fprintln(out, s.title.Render(g))
				for _, t := range bank.Tasks(g) {
					fmt.Fprintf(out, "  %-4d %s\n", t.ID, s.muted.Render(fmt.Sprintf("%d rules", t.Rules)))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&rules, "rules", "", "rule file (built-in curriculum by default)")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <rules.yaml>",
		Short: "Load a rule file and report errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bank, err := loadBank(args[0])
			if err != nil {
				return err
			}
			all := bank.All()
			rules := 0
			for _, t := range all {
				rules += t.Rules
			}
			s := newStyles(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), s.success.Render(fmt.Sprintf("ok: %d groups, %d tasks, %d rules",
				len(bank.Groups()), len(all), rules)))
			return nil
		},
	}
}
