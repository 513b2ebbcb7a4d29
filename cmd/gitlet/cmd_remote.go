package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gitlet/pkg/remote"
)

func newAddRemoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-remote <name> <path/to/.gitlet>",
		Short: "Register a remote repository",
		Args:  operands(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.AddRemote(args[0], args[1])
		},
	}
}

func newRmRemoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm-remote <name>",
		Short: "Forget a remote repository",
		Args:  operands(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.RemoveRemote(args[0])
		},
	}
}

func newPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push <remote> <branch>",
		Short: "Append the current branch's commits to a remote branch",
		Args:  operands(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := remote.Push(contextOf(cmd), s.Repo, args[0], args[1])
			if err != nil {
				return err
			}
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				fmt.Fprintf(cmd.OutOrStdout(), "%s/%s -> %s (%d commits, %d blobs)\n",
					args[0], res.Branch, res.NewHead.Short(8), res.Commits, res.Blobs)
			}
			return nil
		},
	}
}

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <remote> <branch>",
		Short: "Copy a remote branch into <remote>/<branch>",
		Args:  operands(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := remote.Fetch(contextOf(cmd), s.Repo, args[0], args[1])
			if err != nil {
				return err
			}
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%d commits, %d blobs)\n",
					res.Ref, res.Head.Short(8), res.Commits, res.Blobs)
			}
			return nil
		},
	}
}

func newPullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull <remote> <branch>",
		Short: "Fetch a remote branch and merge it into the current branch",
		Args:  operands(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openRepo(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := remote.Pull(contextOf(cmd), s.Repo, args[0], args[1])
			if err != nil {
				return err
			}
			printMergeReport(cmd.OutOrStdout(), res.Merge)
			return nil
		},
	}
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
