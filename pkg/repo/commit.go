package repo

import (
	"fmt"
	"maps"
	"strings"

	"github.com/odvcencio/gitlet/pkg/object"
)

// CommitSigner signs canonical commit payload bytes and returns an encoded
// signature string to be persisted in CommitObj.Signature.
type CommitSigner func(payload []byte) (string, error)

// CommitRecord pairs a commit with its id.
type CommitRecord struct {
	Hash object.Hash
	*object.CommitObj
}

// CommitInput describes a commit to create on the current branch.
type CommitInput struct {
	Parents []object.Hash
	Message string
	// Base is the snapshot the new commit starts from, normally the first
	// parent's tracked files. It is not modified.
	Base map[string]object.Hash
	// Adds maps paths to blobs that must already be in the store.
	Adds    map[string]object.Hash
	Removes []string
}

// CreateCommit builds, persists and links a commit on the current branch:
//
//  1. Start from Base, drop Removes, apply Adds (each blob must exist).
//  2. Finalize every field (branch, timestamp, optional signature), then
//     derive the id from the finished content.
//  3. Write the commit, record forks for parents made on another branch,
//     then advance the current branch with a CAS against its old head.
//
// The staging area is left to the caller.
func (r *Repo) CreateCommit(in CommitInput) (*CommitRecord, error) {
	branch, err := r.CurrentBranch()
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	oldHead, err := r.HeadOf(branch)
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	tracked := maps.Clone(in.Base)
	if tracked == nil {
		tracked = make(map[string]object.Hash)
	}
	for _, p := range in.Removes {
		delete(tracked, p)
	}
	for p, h := range in.Adds {
		if !r.Store.Has(h) {
			return nil, fmt.Errorf("commit: blob %s for %q: %w", h.Short(7), p, object.ErrNotFound)
		}
		tracked[p] = h
	}

	parents := make([]*object.CommitObj, 0, len(in.Parents))
	for _, ph := range in.Parents {
		pc, err := r.Store.ReadCommit(ph)
		if err != nil {
			return nil, fmt.Errorf("commit: read parent %s: %w", ph.Short(7), err)
		}
		parents = append(parents, pc)
	}

	now := r.now()
	c := &object.CommitObj{
		Parents:   append([]object.Hash(nil), in.Parents...),
		Message:   in.Message,
		Timestamp: now.Unix(),
		Timezone:  now.Format("-0700"),
		Branch:    branch,
		Tracked:   tracked,
	}
	if r.Signer != nil {
		signature, err := r.Signer(object.CommitSigningPayload(c))
		if err != nil {
			return nil, fmt.Errorf("commit: sign commit: %w", err)
		}
		c.Signature = signature
	}

	h, err := r.Store.WriteCommit(c)
	if err != nil {
		return nil, fmt.Errorf("commit: write commit: %w", err)
	}

	for i, pc := range parents {
		if pc.Branch != branch {
			if err := r.appendFork(in.Parents[i], branch); err != nil {
				return nil, fmt.Errorf("commit: %w", err)
			}
		}
	}

	reason := "commit: " + firstLine(in.Message)
	if c.IsMerge() {
		reason = "commit (merge): " + firstLine(in.Message)
	}
	if err := r.SetBranchHead(branch, h, oldHead, reason); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	r.log().Debug("commit created", "hash", h.Short(7), "branch", branch, "files", len(tracked), "parents", len(c.Parents))
	return &CommitRecord{Hash: h, CommitObj: c}, nil
}

// Commit snapshots the current commit plus the staging area under message,
// then clears staging.
func (r *Repo) Commit(message string) (*CommitRecord, error) {
	if strings.TrimSpace(message) == "" {
		return nil, opError("commit", ErrEmptyMessage, "")
	}
	stg, err := r.ReadStaging()
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	if stg.Empty() {
		return nil, opError("commit", ErrNothingToCommit, "")
	}
	head, err := r.currentCommit()
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	adds, removes := stg.Drain()
	rec, err := r.CreateCommit(CommitInput{
		Parents: []object.Hash{head.Hash},
		Message: message,
		Base:    head.Tracked,
		Adds:    adds,
		Removes: removes,
	})
	if err != nil {
		return nil, err
	}
	if err := r.WriteStaging(stg); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

// currentCommit reads the commit the current branch points at.
func (r *Repo) currentCommit() (*CommitRecord, error) {
	h, err := r.CurrentHead()
	if err != nil {
		return nil, err
	}
	return r.ReadCommit(h)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
