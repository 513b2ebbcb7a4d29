package repo

import (
	"errors"
	"fmt"
	"iter"

	"github.com/odvcencio/gitlet/pkg/object"
)

// ReadCommit loads the commit with the exact id h.
func (r *Repo) ReadCommit(h object.Hash) (*CommitRecord, error) {
	c, err := r.Store.ReadCommit(h)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return nil, opError("commit", ErrNoSuchCommit, string(h))
		}
		return nil, err
	}
	return &CommitRecord{Hash: h, CommitObj: c}, nil
}

// ResolveCommit finds a commit by full id or unique abbreviated prefix.
// Zero or several matches both fail with ErrNoSuchCommit.
func (r *Repo) ResolveCommit(idOrPrefix string) (*CommitRecord, error) {
	h, err := r.Store.ResolvePrefix(idOrPrefix, object.TypeCommit)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) || errors.Is(err, object.ErrAmbiguous) {
			return nil, opError("resolve", ErrNoSuchCommit, idOrPrefix)
		}
		return nil, fmt.Errorf("resolve %q: %w", idOrPrefix, err)
	}
	return r.ReadCommit(h)
}

// FirstParentWalk yields start and then each first parent until the root.
// The walk is lazy; a read failure is yielded once and ends it.
func (r *Repo) FirstParentWalk(start object.Hash) iter.Seq2[*CommitRecord, error] {
	return func(yield func(*CommitRecord, error) bool) {
		cur := start
		for cur != "" {
			rec, err := r.ReadCommit(cur)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(rec, nil) {
				return
			}
			cur = rec.FirstParent()
		}
	}
}
