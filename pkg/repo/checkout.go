package repo

import (
	"errors"
	"fmt"
)

// CheckoutFile restores path in the working tree to its version in the
// current commit. Staging is untouched.
func (r *Repo) CheckoutFile(path string) error {
	head, err := r.currentCommit()
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	return r.checkoutFileFrom(head, path)
}

// CheckoutFileAt restores path to its version in the commit named by a
// full or abbreviated id.
func (r *Repo) CheckoutFileAt(commitID, path string) error {
	rec, err := r.ResolveCommit(commitID)
	if err != nil {
		return err
	}
	return r.checkoutFileFrom(rec, path)
}

func (r *Repo) checkoutFileFrom(rec *CommitRecord, path string) error {
	relPath, err := r.repoRelPath(path)
	if err != nil {
		return err
	}
	h, ok := rec.Tracked[relPath]
	if !ok {
		return opError("checkout", ErrFileNotInCommit, relPath)
	}
	if err := r.writeWorkFile(relPath, h); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	return nil
}

// CheckoutBranch makes name the current branch and replaces the working
// tree with its head snapshot. Files tracked only by the old head are
// deleted and staging is cleared.
func (r *Repo) CheckoutBranch(name string) error {
	target, err := r.HeadOf(name)
	if err != nil {
		if errors.Is(err, ErrUnknownBranch) {
			return opError("checkout", ErrNoSuchBranch, name)
		}
		return err
	}
	current, err := r.CurrentBranch()
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	if current == name {
		return opError("checkout", ErrAlreadyOnBranch, name)
	}

	head, err := r.currentCommit()
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	targetCommit, err := r.ReadCommit(target)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	if err := r.replaceWorkTree("checkout", head.Tracked, targetCommit.Tracked); err != nil {
		return err
	}
	if err := r.ClearStaging(); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	if err := r.writeHead(name); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	r.log().Debug("switched branch", "from", current, "to", name)
	return nil
}
