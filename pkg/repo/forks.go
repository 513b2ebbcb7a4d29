package repo

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/odvcencio/gitlet/pkg/object"
)

// The fork index records, per commit, the branches that diverged from it:
// a branch created while the commit was a head, or a commit made on one
// branch whose parent was made on another. It lives outside the commit
// objects so commit ids never change after creation. The file is
// append-only, one "<commit-id> <branch>" line per event.

func (r *Repo) forksPath() string {
	return filepath.Join(r.GitletDir, "forks")
}

func (r *Repo) appendFork(commit object.Hash, branch string) error {
	f, err := os.OpenFile(r.forksPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("fork index: open: %w", err)
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "%s %s\n", commit, branch); err != nil {
		return fmt.Errorf("fork index: write: %w", err)
	}
	return nil
}

// ReadForks loads the whole fork index as commit id -> sorted, distinct
// branch names.
func (r *Repo) ReadForks() (map[object.Hash][]string, error) {
	f, err := os.Open(r.forksPath())
	if err != nil {
		if os.IsNotExist(err) {
			return map[object.Hash][]string{}, nil
		}
		return nil, fmt.Errorf("fork index: %w", err)
	}
	defer f.Close()

	sets := make(map[object.Hash]map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		id, branch, ok := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		if !ok || branch == "" {
			continue
		}
		h := object.Hash(id)
		if sets[h] == nil {
			sets[h] = make(map[string]struct{})
		}
		sets[h][branch] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("fork index: %w", err)
	}

	out := make(map[object.Hash][]string, len(sets))
	for h, set := range sets {
		names := make([]string, 0, len(set))
		for name := range set {
			names = append(names, name)
		}
		sort.Strings(names)
		out[h] = names
	}
	return out, nil
}

// ForkedBranches returns the branches recorded as forking from commit.
func (r *Repo) ForkedBranches(commit object.Hash) ([]string, error) {
	forks, err := r.ReadForks()
	if err != nil {
		return nil, err
	}
	return forks[commit], nil
}
