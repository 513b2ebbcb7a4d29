package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/odvcencio/gitlet/pkg/object"
)

// scanWorkTree lists every regular file under the working tree root as
// repo-relative slash paths, skipping .gitlet/.
func (r *Repo) scanWorkTree() (map[string]bool, error) {
	files := make(map[string]bool)
	err := filepath.WalkDir(r.RootDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(r.RootDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			if rel == DirName {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files[rel] = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan working tree: %w", err)
	}
	return files, nil
}

// workFileHash returns the blob id the working copy of relPath would get,
// or "" when the file is absent.
func (r *Repo) workFileHash(relPath string) (object.Hash, error) {
	data, err := os.ReadFile(r.workPath(relPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return object.BlobHash(data), nil
}

func (r *Repo) workFileExists(relPath string) bool {
	info, err := os.Stat(r.workPath(relPath))
	return err == nil && !info.IsDir()
}

// writeWorkFile materializes blob h at relPath.
func (r *Repo) writeWorkFile(relPath string, h object.Hash) error {
	blob, err := r.Store.ReadBlob(h)
	if err != nil {
		return fmt.Errorf("read blob for %q: %w", relPath, err)
	}
	return r.writeWorkBytes(relPath, blob.Data)
}

func (r *Repo) writeWorkBytes(relPath string, data []byte) error {
	absPath := r.workPath(relPath)
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return fmt.Errorf("mkdir for %q: %w", relPath, err)
	}
	if err := os.WriteFile(absPath, data, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", relPath, err)
	}
	return nil
}

// removeWorkFile deletes the working copy of relPath if present, then
// prunes directories it leaves empty.
func (r *Repo) removeWorkFile(relPath string) error {
	absPath := r.workPath(relPath)
	if err := os.Remove(absPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %q: %w", relPath, err)
	}
	r.removeEmptyParents(filepath.Dir(absPath))
	return nil
}

func (r *Repo) removeEmptyParents(dir string) {
	for {
		// Never remove the repo root itself.
		if dir == r.RootDir || !strings.HasPrefix(dir, r.RootDir) {
			return
		}

		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}

		os.Remove(dir)
		dir = filepath.Dir(dir)
	}
}

// checkUntracked fails with ErrUntrackedFileInTheWay if any of paths exists
// in the working tree without being tracked by current.
func (r *Repo) checkUntracked(op string, paths []string, current map[string]object.Hash) error {
	var blocked []string
	for _, p := range paths {
		if _, tracked := current[p]; tracked {
			continue
		}
		if r.workFileExists(p) {
			blocked = append(blocked, p)
		}
	}
	if len(blocked) > 0 {
		sort.Strings(blocked)
		return opError(op, ErrUntrackedFileInTheWay, strings.Join(blocked, ", "))
	}
	return nil
}

// replaceWorkTree switches the working tree from the current snapshot to
// target: files only the current snapshot tracks are deleted and every
// target file is written. The untracked guard runs before any write.
func (r *Repo) replaceWorkTree(op string, current, target map[string]object.Hash) error {
	var incoming []string
	for p, h := range target {
		if current[p] != h {
			incoming = append(incoming, p)
		}
	}
	if err := r.checkUntracked(op, incoming, current); err != nil {
		return err
	}

	for p := range current {
		if _, keep := target[p]; keep {
			continue
		}
		if err := r.removeWorkFile(p); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	paths := make([]string, 0, len(target))
	for p := range target {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		if err := r.writeWorkFile(p, target[p]); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}
