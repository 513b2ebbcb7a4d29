package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gitlet/pkg/repo"
)

func newCommitCmd() *cobra.Command {
	var sign bool
	var keyPath string

	cmd := &cobra.Command{
		Use:   "commit <message>",
		Short: "Record the staged changes",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return repo.ErrEmptyMessage
			}
			return operands(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if sign {
				if keyPath == "" {
					keyPath = s.cfg.Signing.Key
				}
				signer, resolved, err := newSSHCommitSigner(keyPath)
				if err != nil {
					return err
				}
				s.Signer = signer
				s.Logger.Debug("signing commit", "key", resolved)
			}

			rec, err := s.Commit(args[0])
			if err != nil {
				return err
			}

			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				branch, err := s.CurrentBranch()
				if err != nil {
					branch = "HEAD"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", branch, rec.Hash.Short(8), firstLine(rec.Message))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&sign, "sign", false, "sign the commit with an SSH key")
	cmd.Flags().StringVar(&keyPath, "key", "", "SSH private key for --sign (default: [signing] key, then ~/.ssh)")

	return cmd
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
