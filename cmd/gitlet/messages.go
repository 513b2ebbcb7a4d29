package main

import (
	"errors"
	"strings"

	"github.com/odvcencio/gitlet/pkg/remote"
	"github.com/odvcencio/gitlet/pkg/repo"
)

var (
	errNoCommand         = errors.New("please enter a command")
	errUnknownCommand    = errors.New("no command with that name exists")
	errIncorrectOperands = errors.New("incorrect operands")
)

var messages = []struct {
	err error
	msg string
}{
	{errNoCommand, "Please enter a command."},
	{errUnknownCommand, "No command with that name exists."},
	{errIncorrectOperands, "Incorrect operands."},
	{repo.ErrEmptyMessage, "Please enter a commit message."},
	{repo.ErrNothingToCommit, "No changes added to the commit."},
	{repo.ErrUncommittedChanges, "You have uncommitted changes."},
	{repo.ErrSelfMerge, "Cannot merge a branch with itself."},
	{repo.ErrUnknownBranch, "A branch with that name does not exist."},
	{repo.ErrUntrackedFileInTheWay, "There is an untracked file in the way; delete it, or add and commit it first."},
	{repo.ErrNothingToRemove, "No reason to remove the file."},
	{repo.ErrBranchExists, "A branch with that name already exists."},
	{repo.ErrCannotRemoveCurrent, "Cannot remove the current branch."},
	{repo.ErrNoSuchCommit, "No commit with that id exists."},
	{repo.ErrFileNotFound, "File does not exist."},
	{repo.ErrFileNotInCommit, "File does not exist in that commit."},
	{repo.ErrNoSuchBranch, "No such branch exists."},
	{repo.ErrAlreadyOnBranch, "No need to checkout the current branch."},
	{repo.ErrNoCommitWithMessage, "Found no commit with that message."},
	{repo.ErrRemoteExists, "A remote with that name already exists."},
	{repo.ErrUnknownRemote, "A remote with that name does not exist."},
	{repo.ErrAlreadyInitialized, "A Gitlet version-control system already exists in the current directory."},
	{repo.ErrNotInitialized, "Not in an initialized Gitlet directory."},
	{remote.ErrRemoteNotFound, "Remote directory not found."},
	{remote.ErrNonFastForward, "Please pull down remote changes before pushing."},
	{remote.ErrRemoteBranchNotFound, "That remote does not have that branch."},
}

// userMessage renders err as the one-line message printed before exiting.
// Errors without a fixed message print as themselves.
func userMessage(err error) string {
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	// cobra reports unknown subcommands and flags as plain errors.
	if msg := err.Error(); strings.HasPrefix(msg, "unknown command") {
		return "No command with that name exists."
	}
	return err.Error()
}
