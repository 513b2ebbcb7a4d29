// Package remote replicates commits between repositories reachable over a
// filesystem path.
package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/odvcencio/gitlet/pkg/object"
	"github.com/odvcencio/gitlet/pkg/repo"
)

var (
	ErrRemoteNotFound       = errors.New("remote directory not found")
	ErrNonFastForward       = errors.New("remote branch is not an ancestor of the local head")
	ErrRemoteBranchNotFound = errors.New("remote does not have that branch")
)

// Transfer counts the objects one operation copied.
type Transfer struct {
	Commits int
	Blobs   int
}

// PushResult describes a completed push.
type PushResult struct {
	Branch  string
	OldHead object.Hash // "" when the remote branch was created
	NewHead object.Hash
	Transfer
}

// FetchResult describes a completed fetch.
type FetchResult struct {
	// Ref is the local branch that now tracks the remote head,
	// "<remote>/<branch>".
	Ref        string
	Head       object.Hash
	SplitPoint object.Hash
	Transfer
}

// PullResult is a fetch followed by the merge it fed.
type PullResult struct {
	Fetch *FetchResult
	Merge *repo.MergeReport
}

// Open opens the repository registered under name in local's config.
func Open(local *repo.Repo, name string) (*repo.Repo, error) {
	path, err := local.RemotePath(name)
	if err != nil {
		return nil, err
	}
	remote, err := repo.OpenDir(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRemoteNotFound, path)
	}
	remote.Logger = local.Logger
	return remote, nil
}

// Push copies the current branch's history into branch of the named
// remote. An existing remote branch must be an ancestor of the local head;
// otherwise nothing is written. A missing remote branch is created. The
// remote's current branch is never changed.
func Push(ctx context.Context, local *repo.Repo, remoteName, branch string) (*PushResult, error) {
	remote, err := Open(local, remoteName)
	if err != nil {
		return nil, err
	}
	localHead, err := local.CurrentHead()
	if err != nil {
		return nil, fmt.Errorf("push: %w", err)
	}

	var remoteHead object.Hash
	switch h, err := remote.HeadOf(branch); {
	case err == nil:
		remoteHead = h
	case errors.Is(err, repo.ErrUnknownBranch):
	default:
		return nil, fmt.Errorf("push: %w", err)
	}

	res := &PushResult{Branch: branch, OldHead: remoteHead, NewHead: localHead}
	if remoteHead == localHead {
		return res, nil
	}
	if remoteHead != "" {
		ok, err := local.IsAncestor(remoteHead, localHead)
		if err != nil {
			return nil, fmt.Errorf("push: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("push %s/%s: %w", remoteName, branch, ErrNonFastForward)
		}
	}

	res.Transfer, err = copyClosure(ctx, local.Store, remote.Store, localHead)
	if err != nil {
		return nil, fmt.Errorf("push: %w", err)
	}
	if err := remote.SetBranchHead(branch, localHead, remoteHead, "push: "+localHead.Short(7)); err != nil {
		return nil, fmt.Errorf("push: %w", err)
	}

	logger(local).Debug("pushed", "remote", remoteName, "branch", branch,
		"head", localHead.Short(7), "commits", res.Commits, "blobs", res.Blobs)
	return res, nil
}

// Fetch copies the history of branch on the named remote into the local
// store and points the local branch "<remote>/<branch>" at it. The current
// branch is untouched. The split point between the current head and the
// fetched head is returned for a subsequent merge.
func Fetch(ctx context.Context, local *repo.Repo, remoteName, branch string) (*FetchResult, error) {
	remote, err := Open(local, remoteName)
	if err != nil {
		return nil, err
	}
	remoteHead, err := remote.HeadOf(branch)
	if err != nil {
		if errors.Is(err, repo.ErrUnknownBranch) {
			return nil, fmt.Errorf("fetch %s/%s: %w", remoteName, branch, ErrRemoteBranchNotFound)
		}
		return nil, fmt.Errorf("fetch: %w", err)
	}

	transfer, err := copyClosure(ctx, remote.Store, local.Store, remoteHead)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	ref := remoteName + "/" + branch
	var old object.Hash
	switch h, err := local.HeadOf(ref); {
	case err == nil:
		old = h
	case errors.Is(err, repo.ErrUnknownBranch):
	default:
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if old != remoteHead {
		if err := local.SetBranchHead(ref, remoteHead, old, "fetch: "+remoteName+" "+branch); err != nil {
			return nil, fmt.Errorf("fetch: %w", err)
		}
	}

	currentHead, err := local.CurrentHead()
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	split, err := local.FindMergeBase(currentHead, remoteHead)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	logger(local).Debug("fetched", "remote", remoteName, "branch", branch,
		"head", remoteHead.Short(7), "commits", transfer.Commits, "blobs", transfer.Blobs)
	return &FetchResult{Ref: ref, Head: remoteHead, SplitPoint: split, Transfer: transfer}, nil
}

// Pull fetches branch from the named remote and merges "<remote>/<branch>"
// into the current branch using the split point the fetch found. The merge
// preconditions are checked before the fetch writes anything.
func Pull(ctx context.Context, local *repo.Repo, remoteName, branch string) (*PullResult, error) {
	stg, err := local.ReadStaging()
	if err != nil {
		return nil, fmt.Errorf("pull: %w", err)
	}
	if !stg.Empty() {
		return nil, fmt.Errorf("pull: %w", repo.ErrUncommittedChanges)
	}
	current, err := local.CurrentBranch()
	if err != nil {
		return nil, fmt.Errorf("pull: %w", err)
	}
	if current == remoteName+"/"+branch {
		return nil, fmt.Errorf("pull: %w", repo.ErrSelfMerge)
	}

	fetched, err := Fetch(ctx, local, remoteName, branch)
	if err != nil {
		return nil, err
	}
	report, err := local.MergeWithBase(fetched.Ref, fetched.SplitPoint)
	if err != nil {
		return nil, err
	}
	return &PullResult{Fetch: fetched, Merge: report}, nil
}

// missingCommits lists the commits reachable from root that dst lacks,
// ordered so every commit follows its parents. The walk stops at commits
// dst already has, whose history is complete by construction.
func missingCommits(src, dst *object.Store, root object.Hash) ([]object.Hash, error) {
	type frame struct {
		hash     object.Hash
		expanded bool
	}

	visited := make(map[object.Hash]struct{})
	stack := []frame{{hash: root}}
	var order []object.Hash

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.expanded {
			order = append(order, f.hash)
			continue
		}
		if _, ok := visited[f.hash]; ok || dst.Has(f.hash) {
			continue
		}
		visited[f.hash] = struct{}{}

		c, err := src.ReadCommit(f.hash)
		if err != nil {
			return nil, fmt.Errorf("read commit %s: %w", f.hash.Short(7), err)
		}
		stack = append(stack, frame{hash: f.hash, expanded: true})
		for i := len(c.Parents) - 1; i >= 0; i-- {
			p := c.Parents[i]
			if _, ok := visited[p]; !ok {
				stack = append(stack, frame{hash: p})
			}
		}
	}
	return order, nil
}

// copyClosure copies every commit reachable from root that dst lacks,
// together with their blobs. Each commit's blobs are written before the
// commit, and parents before children.
func copyClosure(ctx context.Context, src, dst *object.Store, root object.Hash) (Transfer, error) {
	var t Transfer
	commits, err := missingCommits(src, dst, root)
	if err != nil {
		return t, err
	}

	for _, h := range commits {
		if err := ctx.Err(); err != nil {
			return t, err
		}
		c, err := src.ReadCommit(h)
		if err != nil {
			return t, fmt.Errorf("read commit %s: %w", h.Short(7), err)
		}

		paths := make([]string, 0, len(c.Tracked))
		for p := range c.Tracked {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			wrote, err := dst.CopyObject(src, c.Tracked[p])
			if err != nil {
				return t, fmt.Errorf("copy blob for %q: %w", p, err)
			}
			if wrote {
				t.Blobs++
			}
		}

		wrote, err := dst.CopyObject(src, h)
		if err != nil {
			return t, fmt.Errorf("copy commit %s: %w", h.Short(7), err)
		}
		if wrote {
			t.Commits++
		}
	}
	return t, nil
}

func logger(r *repo.Repo) *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}
