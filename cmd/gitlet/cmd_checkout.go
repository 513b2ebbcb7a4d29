package main

import (
	"github.com/spf13/cobra"
)

func newCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout -- <file> | <commit> -- <file> | <branch>",
		Short: "Restore a file or switch branches",
		Args: func(cmd *cobra.Command, args []string) error {
			switch dash := cmd.ArgsLenAtDash(); {
			case dash == 0 && len(args) == 1:
			case dash == 1 && len(args) == 2:
			case dash == -1 && len(args) == 1:
			default:
				return errIncorrectOperands
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			switch cmd.ArgsLenAtDash() {
			case 0:
				return s.CheckoutFile(args[0])
			case 1:
				return s.CheckoutFileAt(args[0], args[1])
			default:
				return s.CheckoutBranch(args[0])
			}
		},
	}
}
