package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/gitlet/pkg/object"
)

const headsPrefix = "refs/heads/"

func branchRef(name string) string {
	return headsPrefix + name
}

// ListRefs lists references under .gitlet/refs.
// Names are returned relative to refs root, e.g. "heads/master",
// "heads/origin/master". Lock files are skipped.
func (r *Repo) ListRefs(prefix string) (map[string]object.Hash, error) {
	root := filepath.Join(r.GitletDir, "refs")
	dir := root
	if strings.TrimSpace(prefix) != "" {
		dir = filepath.Join(root, filepath.FromSlash(prefix))
	}

	refs := make(map[string]object.Hash)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || strings.HasSuffix(d.Name(), ".lock") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		refs[name] = object.Hash(strings.TrimSpace(string(data)))
		return nil
	})
	if os.IsNotExist(err) {
		return refs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	return refs, nil
}

// deleteRef removes a ref file and prunes directories left empty below
// refs/heads (left behind by names such as "origin/master").
func (r *Repo) deleteRef(name string) error {
	refPath := filepath.Join(r.GitletDir, filepath.FromSlash(name))
	if err := os.Remove(refPath); err != nil {
		return fmt.Errorf("delete ref %q: %w", name, err)
	}
	stop := filepath.Join(r.GitletDir, "refs", "heads")
	for dir := filepath.Dir(refPath); dir != stop && strings.HasPrefix(dir, stop); dir = filepath.Dir(dir) {
		if err := os.Remove(dir); err != nil {
			break
		}
	}
	return nil
}
