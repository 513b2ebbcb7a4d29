package repo

import "fmt"

// Reset moves the current branch to commitID, replacing the working tree
// with that commit's snapshot and clearing staging. Files tracked by the
// old head but not the target are deleted.
func (r *Repo) Reset(commitID string) error {
	target, err := r.ResolveCommit(commitID)
	if err != nil {
		return err
	}
	branch, err := r.CurrentBranch()
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	head, err := r.currentCommit()
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	if err := r.replaceWorkTree("reset", head.Tracked, target.Tracked); err != nil {
		return err
	}
	if err := r.SetBranchHead(branch, target.Hash, head.Hash, "reset: moving to "+target.Hash.Short(7)); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if err := r.ClearStaging(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}
