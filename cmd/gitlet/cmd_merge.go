package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gitlet/pkg/repo"
)

func newMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <branch>",
		Short: "Merge a branch into the current branch",
		Args:  operands(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			report, err := s.Merge(args[0])
			if err != nil {
				return err
			}
			printMergeReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
}

func printMergeReport(out io.Writer, report *repo.MergeReport) {
	switch report.Outcome {
	case repo.MergeAncestor:
		fmt.Fprintln(out, "Given branch is an ancestor of the current branch.")
	case repo.MergeFastForward:
		fmt.Fprintln(out, "Current branch fast-forwarded.")
	default:
		if report.Conflicts > 0 {
			fmt.Fprintln(out, "Encountered a merge conflict.")
		}
	}
}
