package main

import (
	"github.com/spf13/cobra"
)

func newBranchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "branch <name>",
		Short: "Create a branch at the current commit",
		Args:  operands(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.CreateBranch(args[0])
		},
	}
}

func newRmBranchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm-branch <name>",
		Short: "Delete a branch pointer",
		Args:  operands(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.DeleteBranch(args[0])
		},
	}
}
