package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReflogCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "reflog [branch]",
		Short: "Show the movements of a branch pointer",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			branch := ""
			if len(args) == 1 {
				branch = args[0]
			}
			entries, err := s.ReadReflog(branch, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, e := range entries {
				head := e.NewHash.Short(8)
				if e.Deleted() {
					head = "(deleted)"
				}
				fmt.Fprintf(out, "%s %s %s %s\n", head, e.Time().Format("2006-01-02T15:04:05Z"), e.Branch, e.Reason)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum entries to show")
	return cmd
}
