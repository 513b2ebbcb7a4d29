package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gitlet/pkg/object"
	"github.com/odvcencio/gitlet/pkg/repo"
)

func newLogCmd() *cobra.Command {
	var showSignature bool

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the first-parent history of the current branch",
		Args:  operands(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			records, err := s.Log()
			if err != nil {
				return err
			}
			printLog(cmd.OutOrStdout(), records, showSignature)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showSignature, "show-signature", false, "verify and report commit signatures")

	return cmd
}

func newGlobalLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "global-log",
		Short: "Show every commit ever made",
		Args:  operands(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			records, err := s.GlobalLog()
			if err != nil {
				return err
			}
			printLog(cmd.OutOrStdout(), records, false)
			return nil
		},
	}
}

func newFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <message>",
		Short: "Print the ids of commits with the given message",
		Args:  operands(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			ids, err := s.Find(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, id := range ids {
				fmt.Fprintln(out, id)
			}
			return nil
		},
	}
}

func printLog(out io.Writer, records []*repo.CommitRecord, showSignature bool) {
	for _, rec := range records {
		entry := repo.FormatLogEntry(rec)
		if showSignature {
			entry = withSignatureLine(entry, rec)
		}
		fmt.Fprintln(out, entry)
	}
}

// withSignatureLine inserts a "Signature:" line after the commit line.
func withSignatureLine(entry string, rec *repo.CommitRecord) string {
	status := "none"
	if rec.Signature != "" {
		status = "good"
		if err := verifySSHCommitSignature(rec.Signature, object.CommitSigningPayload(rec.CommitObj)); err != nil {
			status = "bad (" + err.Error() + ")"
		}
	}
	commitLine := fmt.Sprintf("===\ncommit %s\n", rec.Hash)
	return commitLine + "Signature: " + status + "\n" + entry[len(commitLine):]
}
