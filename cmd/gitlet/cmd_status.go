package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gitlet/pkg/repo"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show branches, staged files, and working tree changes",
		Args:  operands(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.Status()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), repo.FormatStatus(st))
			return nil
		},
	}
}
