package repo

import (
	"fmt"
	"sort"
	"strings"
)

// ChangeKind describes how a working copy differs from what commit would
// record.
type ChangeKind string

const (
	ChangeModified ChangeKind = "modified"
	ChangeDeleted  ChangeKind = "deleted"
)

// UnstagedChange is a file whose working copy differs from what the next
// commit would record.
type UnstagedChange struct {
	Path string
	Kind ChangeKind
}

// StatusReport is a snapshot of branches, staging and working tree.
type StatusReport struct {
	Current   string
	Branches  []string
	Staged    []string
	Removed   []string
	Unstaged  []UnstagedChange
	Untracked []string
}

// Status compares the working tree against the current commit and the
// staging area.
//
// A file is reported unstaged-modified when it is tracked, changed and not
// staged, or staged with bytes other than its working copy. It is
// unstaged-deleted when staged for addition or tracked (and not staged for
// removal) but missing from disk. Untracked files are neither staged for
// addition nor tracked, including re-created files staged for removal.
func (r *Repo) Status() (*StatusReport, error) {
	current, err := r.CurrentBranch()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	branches, err := r.ListBranches()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	stg, err := r.ReadStaging()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	head, err := r.currentCommit()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	work, err := r.scanWorkTree()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	st := &StatusReport{
		Current:  current,
		Branches: branches,
		Staged:   stg.AddedPaths(),
		Removed:  stg.RemovedPaths(),
	}

	candidates := make(map[string]bool, len(head.Tracked)+len(stg.ToAdd))
	for p := range head.Tracked {
		candidates[p] = true
	}
	for p := range stg.ToAdd {
		candidates[p] = true
	}
	for p := range candidates {
		workHash, err := r.workFileHash(p)
		if err != nil {
			return nil, fmt.Errorf("status: %w", err)
		}
		staged, isStaged := stg.ToAdd[p]
		switch {
		case isStaged && workHash == "":
			st.Unstaged = append(st.Unstaged, UnstagedChange{Path: p, Kind: ChangeDeleted})
		case isStaged && workHash != staged:
			st.Unstaged = append(st.Unstaged, UnstagedChange{Path: p, Kind: ChangeModified})
		case isStaged:
		case stg.ToRemove[p]:
		case workHash == "":
			st.Unstaged = append(st.Unstaged, UnstagedChange{Path: p, Kind: ChangeDeleted})
		case workHash != head.Tracked[p]:
			st.Unstaged = append(st.Unstaged, UnstagedChange{Path: p, Kind: ChangeModified})
		}
	}
	sort.Slice(st.Unstaged, func(i, j int) bool { return st.Unstaged[i].Path < st.Unstaged[j].Path })

	for p := range work {
		_, isStaged := stg.ToAdd[p]
		_, tracked := head.Tracked[p]
		if isStaged || (tracked && !stg.ToRemove[p]) {
			continue
		}
		st.Untracked = append(st.Untracked, p)
	}
	sort.Strings(st.Untracked)

	return st, nil
}

// FormatStatus renders a StatusReport in the classic sectioned layout.
func FormatStatus(st *StatusReport) string {
	var b strings.Builder
	section := func(title string, lines []string) {
		fmt.Fprintf(&b, "=== %s ===\n", title)
		for _, l := range lines {
			b.WriteString(l)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	branches := make([]string, 0, len(st.Branches))
	for _, name := range st.Branches {
		if name == st.Current {
			name = "*" + name
		}
		branches = append(branches, name)
	}
	section("Branches", branches)
	section("Staged Files", st.Staged)
	section("Removed Files", st.Removed)

	unstaged := make([]string, 0, len(st.Unstaged))
	for _, u := range st.Unstaged {
		unstaged = append(unstaged, fmt.Sprintf("%s (%s)", u.Path, u.Kind))
	}
	section("Modifications Not Staged For Commit", unstaged)
	section("Untracked Files", st.Untracked)
	return b.String()
}
