package repo

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/odvcencio/gitlet/pkg/object"
)

// ValidateBranchName rejects names that cannot be stored as a ref file.
// Slashes are allowed so fetched branches can be named "<remote>/<branch>".
func ValidateBranchName(name string) error {
	switch {
	case name == "", name == "HEAD":
		return opError("branch", ErrInvalidBranchName, fmt.Sprintf("%q", name))
	case strings.ContainsAny(name, " \t\n\\:"),
		strings.HasPrefix(name, "/"), strings.HasSuffix(name, "/"),
		strings.HasSuffix(name, ".lock"), strings.Contains(name, "//"):
		return opError("branch", ErrInvalidBranchName, fmt.Sprintf("%q", name))
	}
	for _, part := range strings.Split(name, "/") {
		if part == "." || part == ".." {
			return opError("branch", ErrInvalidBranchName, fmt.Sprintf("%q", name))
		}
	}
	return nil
}

// CreateBranch creates a new branch pointing at the current head and
// records the fork at that commit. The current branch does not change.
func (r *Repo) CreateBranch(name string) error {
	if err := ValidateBranchName(name); err != nil {
		return err
	}
	if _, err := r.HeadOf(name); err == nil {
		return opError("branch", ErrBranchExists, name)
	}
	head, err := r.CurrentHead()
	if err != nil {
		return fmt.Errorf("create branch: %w", err)
	}
	if err := r.appendFork(head, name); err != nil {
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	if err := r.UpdateRefCAS(branchRef(name), head, "branch: created from HEAD", ""); err != nil {
		if errors.Is(err, ErrRefCASMismatch) {
			return opError("branch", ErrBranchExists, name)
		}
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	r.log().Debug("branch created", "branch", name, "at", head.Short(7))
	return nil
}

// DeleteBranch removes the branch pointer only; its commits stay.
func (r *Repo) DeleteBranch(name string) error {
	current, err := r.CurrentBranch()
	if err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	if current == name {
		return opError("rm-branch", ErrCannotRemoveCurrent, name)
	}
	head, err := r.HeadOf(name)
	if err != nil {
		return err
	}
	if err := r.deleteRef(branchRef(name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return opError("rm-branch", ErrUnknownBranch, name)
		}
		return err
	}
	if err := r.appendReflog(branchRef(name), head, "", "branch: deleted"); err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	r.log().Debug("branch deleted", "branch", name)
	return nil
}

// SetCurrent makes name the current branch. It does not touch the working
// tree or staging.
func (r *Repo) SetCurrent(name string) error {
	if _, err := r.HeadOf(name); err != nil {
		return err
	}
	return r.writeHead(name)
}

// HeadOf returns the commit a branch points at.
func (r *Repo) HeadOf(name string) (object.Hash, error) {
	if ValidateBranchName(name) != nil {
		return "", opError("branch", ErrUnknownBranch, name)
	}
	h, err := r.ResolveRef(branchRef(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", opError("branch", ErrUnknownBranch, name)
		}
		return "", err
	}
	return h, nil
}

// ListBranches returns every branch name, nested ones such as
// "origin/master" included, sorted.
func (r *Repo) ListBranches() ([]string, error) {
	refs, err := r.ListRefs("heads")
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	names := make([]string, 0, len(refs))
	for name := range refs {
		names = append(names, strings.TrimPrefix(name, "heads/"))
	}
	sort.Strings(names)
	return names, nil
}

// CurrentBranch reads HEAD and returns the current branch name
// (e.g. "ref: refs/heads/master" → "master").
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("current branch: %w", err)
	}
	name, ok := strings.CutPrefix(head, headsPrefix)
	if !ok {
		return "", fmt.Errorf("current branch: HEAD points outside refs/heads: %q", head)
	}
	return name, nil
}

// CurrentHead returns the commit the current branch points at.
func (r *Repo) CurrentHead() (object.Hash, error) {
	name, err := r.CurrentBranch()
	if err != nil {
		return "", err
	}
	return r.HeadOf(name)
}

// SetBranchHead moves a branch to h, failing with ErrRefCASMismatch if the
// branch no longer points at old. An empty old creates the branch.
func (r *Repo) SetBranchHead(name string, h, old object.Hash, reason string) error {
	if err := ValidateBranchName(name); err != nil {
		return err
	}
	return r.UpdateRefCAS(branchRef(name), h, reason, old)
}
