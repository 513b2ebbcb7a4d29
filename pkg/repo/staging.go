package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/odvcencio/gitlet/pkg/object"
)

// Staging holds the pending changes for the next commit. A path is never
// in both ToAdd and ToRemove.
type Staging struct {
	// ToAdd maps a path to the blob its next committed version will have.
	// The blob is written to the object store when the path is staged.
	ToAdd map[string]object.Hash `json:"to_add"`
	// ToRemove is the set of paths to drop from the next commit.
	ToRemove map[string]bool `json:"to_remove"`
}

func newStaging() *Staging {
	return &Staging{
		ToAdd:    make(map[string]object.Hash),
		ToRemove: make(map[string]bool),
	}
}

// Empty reports whether nothing is staged.
func (s *Staging) Empty() bool {
	return len(s.ToAdd) == 0 && len(s.ToRemove) == 0
}

// AddedPaths returns the paths staged for addition, sorted.
func (s *Staging) AddedPaths() []string {
	out := make([]string, 0, len(s.ToAdd))
	for p := range s.ToAdd {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// RemovedPaths returns the paths staged for removal, sorted.
func (s *Staging) RemovedPaths() []string {
	out := make([]string, 0, len(s.ToRemove))
	for p := range s.ToRemove {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// stageAdd records that path should hold blob in the next commit. When blob
// equals what the current commit tracks, any stale entry is dropped instead.
func (s *Staging) stageAdd(path string, blob, tracked object.Hash) {
	if blob == tracked {
		delete(s.ToAdd, path)
		delete(s.ToRemove, path)
		return
	}
	delete(s.ToRemove, path)
	s.ToAdd[path] = blob
}

// stageRemove applies the removal rules and reports whether the working copy
// of path must be deleted.
func (s *Staging) stageRemove(path string, tracked bool) (deleteWorking bool, err error) {
	if _, ok := s.ToAdd[path]; ok {
		delete(s.ToAdd, path)
		return false, nil
	}
	if tracked {
		s.ToRemove[path] = true
		return true, nil
	}
	return false, opError("rm", ErrNothingToRemove, path)
}

// Drain returns the pending adds and removes and clears both sets.
func (s *Staging) Drain() (adds map[string]object.Hash, removes []string) {
	adds = s.ToAdd
	removes = s.RemovedPaths()
	s.ToAdd = make(map[string]object.Hash)
	s.ToRemove = make(map[string]bool)
	return adds, removes
}

// indexPath returns the filesystem path to the staging index file.
func (r *Repo) indexPath() string {
	return filepath.Join(r.GitletDir, "index")
}

// ReadStaging loads the staging area from .gitlet/index. If the file does
// not exist, an empty Staging is returned (no error).
func (r *Repo) ReadStaging() (*Staging, error) {
	data, err := os.ReadFile(r.indexPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return newStaging(), nil
		}
		return nil, fmt.Errorf("read staging: %w", err)
	}

	stg := newStaging()
	if err := json.Unmarshal(data, stg); err != nil {
		return nil, fmt.Errorf("read staging: unmarshal: %w", err)
	}
	if stg.ToAdd == nil {
		stg.ToAdd = make(map[string]object.Hash)
	}
	if stg.ToRemove == nil {
		stg.ToRemove = make(map[string]bool)
	}
	return stg, nil
}

// WriteStaging atomically writes the staging area to .gitlet/index.
func (r *Repo) WriteStaging(s *Staging) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("write staging: marshal: %w", err)
	}
	if err := writeFileAtomic(r.indexPath(), data); err != nil {
		return fmt.Errorf("write staging: %w", err)
	}
	return nil
}

// ClearStaging empties the staging area.
func (r *Repo) ClearStaging() error {
	return r.WriteStaging(newStaging())
}

// Add stages the given working-tree files. Each file's bytes are written as
// a blob immediately; a file identical to its committed version is dropped
// from staging instead.
func (r *Repo) Add(paths []string) error {
	stg, err := r.ReadStaging()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	head, err := r.currentCommit()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}

	for _, p := range paths {
		relPath, err := r.repoRelPath(p)
		if err != nil {
			return err
		}

		content, err := os.ReadFile(r.workPath(relPath))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return opError("add", ErrFileNotFound, relPath)
			}
			return fmt.Errorf("add: read %q: %w", relPath, err)
		}

		blobHash, err := r.Store.WriteBlob(&object.Blob{Data: content})
		if err != nil {
			return fmt.Errorf("add: write blob %q: %w", relPath, err)
		}
		stg.stageAdd(relPath, blobHash, head.Tracked[relPath])
		r.log().Debug("staged", "path", relPath, "blob", blobHash.Short(7))
	}

	if err := r.WriteStaging(stg); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return nil
}

// Remove unstages a file staged for addition, or, if the current commit
// tracks it, deletes the working copy and stages its removal.
func (r *Repo) Remove(paths []string) error {
	stg, err := r.ReadStaging()
	if err != nil {
		return fmt.Errorf("rm: %w", err)
	}
	head, err := r.currentCommit()
	if err != nil {
		return fmt.Errorf("rm: %w", err)
	}

	var toDelete []string
	for _, p := range paths {
		relPath, err := r.repoRelPath(p)
		if err != nil {
			return err
		}
		_, tracked := head.Tracked[relPath]
		del, err := stg.stageRemove(relPath, tracked)
		if err != nil {
			return err
		}
		if del {
			toDelete = append(toDelete, relPath)
		}
	}

	if err := r.WriteStaging(stg); err != nil {
		return fmt.Errorf("rm: %w", err)
	}
	for _, relPath := range toDelete {
		if err := r.removeWorkFile(relPath); err != nil {
			return fmt.Errorf("rm: %w", err)
		}
	}
	return nil
}

// workPath maps a repo-relative slash path to its working-tree location.
func (r *Repo) workPath(relPath string) string {
	return filepath.Join(r.RootDir, filepath.FromSlash(relPath))
}

// repoRelPath converts a path (absolute, or relative to CWD) into a clean
// slash-separated path relative to the repository root. Paths outside the
// root or inside .gitlet/ are rejected.
func (r *Repo) repoRelPath(p string) (string, error) {
	abs := p
	if !filepath.IsAbs(p) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve path %q: %w", p, err)
		}
		abs = filepath.Join(cwd, p)
	}

	rel, err := filepath.Rel(r.RootDir, abs)
	if err != nil {
		return "", opError("path", ErrInvalidPath, p)
	}
	rel = filepath.ToSlash(rel)
	// Commit headers are line-oriented; a path must fit on one line.
	if strings.ContainsAny(rel, "\n\r") {
		return "", opError("path", ErrInvalidPath, strconv.Quote(p))
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") ||
		rel == DirName || strings.HasPrefix(rel, DirName+"/") {
		return "", opError("path", ErrInvalidPath, p)
	}
	return rel, nil
}
