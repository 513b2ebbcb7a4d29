package main

import (
	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <file>...",
		Short: "Stage files for the next commit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.Add(args)
		},
	}
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <file>...",
		Short: "Unstage a file, or stage a tracked file for removal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.Remove(args)
		},
	}
}
