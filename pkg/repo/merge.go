package repo

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/odvcencio/gitlet/pkg/object"
)

// MergeOutcome says what a merge did.
type MergeOutcome int

const (
	// MergeAncestor: the given branch is already contained in the current
	// one. Nothing changed.
	MergeAncestor MergeOutcome = iota
	// MergeFastForward: the current branch was moved to the given branch's
	// head and the working tree updated. No commit was created.
	MergeFastForward
	// MergeCommitted: a two-parent merge commit was created.
	MergeCommitted
)

func (o MergeOutcome) String() string {
	switch o {
	case MergeAncestor:
		return "ancestor"
	case MergeFastForward:
		return "fast-forward"
	default:
		return "merged"
	}
}

// FileAction is the resolution applied to one path.
type FileAction string

const (
	FileTakeOther FileAction = "take"
	FileRemove    FileAction = "remove"
	FileConflict  FileAction = "conflict"
)

// FileMergeReport records the resolution of a path the merge changed.
// Paths that keep the current version are not listed.
type FileMergeReport struct {
	Path   string
	Action FileAction
}

// MergeReport is the overall result of a repository-level merge.
type MergeReport struct {
	Outcome    MergeOutcome
	Current    string
	Other      string
	SplitPoint object.Hash
	// SplitForks lists the branches the fork index records at SplitPoint.
	SplitForks  []string
	Files       []FileMergeReport
	Conflicts   int
	MergeCommit object.Hash // set when Outcome == MergeCommitted
}

// Merge merges branch into the current branch, finding the split point
// automatically.
func (r *Repo) Merge(branch string) (*MergeReport, error) {
	m, err := r.prepareMerge(branch)
	if err != nil {
		return nil, err
	}
	base, err := r.FindMergeBase(m.currentHead, m.otherHead)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	return r.runMerge(m, base)
}

// MergeWithBase merges branch into the current branch using base as the
// split point instead of searching for one.
func (r *Repo) MergeWithBase(branch string, base object.Hash) (*MergeReport, error) {
	m, err := r.prepareMerge(branch)
	if err != nil {
		return nil, err
	}
	return r.runMerge(m, base)
}

type mergeTarget struct {
	current     string
	other       string
	currentHead object.Hash
	otherHead   object.Hash
}

// prepareMerge runs every precondition before anything is written.
func (r *Repo) prepareMerge(branch string) (*mergeTarget, error) {
	stg, err := r.ReadStaging()
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if !stg.Empty() {
		return nil, opError("merge", ErrUncommittedChanges, "")
	}
	current, err := r.CurrentBranch()
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if branch == current {
		return nil, opError("merge", ErrSelfMerge, branch)
	}
	otherHead, err := r.HeadOf(branch)
	if err != nil {
		return nil, err
	}
	currentHead, err := r.HeadOf(current)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	return &mergeTarget{
		current:     current,
		other:       branch,
		currentHead: currentHead,
		otherHead:   otherHead,
	}, nil
}

type fileResolution struct {
	path   string
	action FileAction
	cur    object.Hash
	other  object.Hash
}

// classifyPaths applies the three-way rule to every path in the union of
// split, current and other ("" meaning absent):
//
//	current == other  keep
//	current == split  take other (content or removal)
//	other   == split  keep
//	otherwise         conflict
func classifyPaths(split, cur, other map[string]object.Hash) []fileResolution {
	paths := make(map[string]struct{}, len(cur)+len(other))
	for _, m := range []map[string]object.Hash{split, cur, other} {
		for p := range m {
			paths[p] = struct{}{}
		}
	}
	sorted := make([]string, 0, len(paths))
	for p := range paths {
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)

	var out []fileResolution
	for _, p := range sorted {
		s, c, o := split[p], cur[p], other[p]
		switch {
		case c == o, o == s:
			continue
		case c == s:
			action := FileTakeOther
			if o == "" {
				action = FileRemove
			}
			out = append(out, fileResolution{path: p, action: action, cur: c, other: o})
		default:
			out = append(out, fileResolution{path: p, action: FileConflict, cur: c, other: o})
		}
	}
	return out
}

func (r *Repo) runMerge(m *mergeTarget, base object.Hash) (*MergeReport, error) {
	report := &MergeReport{
		Current:    m.current,
		Other:      m.other,
		SplitPoint: base,
	}
	if base != "" {
		forks, err := r.ForkedBranches(base)
		if err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		report.SplitForks = forks
	}

	if base == m.otherHead {
		report.Outcome = MergeAncestor
		return report, nil
	}

	curCommit, err := r.ReadCommit(m.currentHead)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	otherCommit, err := r.ReadCommit(m.otherHead)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	if base == m.currentHead {
		if err := r.replaceWorkTree("merge", curCommit.Tracked, otherCommit.Tracked); err != nil {
			return nil, err
		}
		if err := r.SetBranchHead(m.current, m.otherHead, m.currentHead, "merge "+m.other+": fast-forward"); err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		report.Outcome = MergeFastForward
		r.log().Debug("fast-forward", "branch", m.current, "to", m.otherHead.Short(7))
		return report, nil
	}

	var splitTracked map[string]object.Hash
	if base != "" {
		splitCommit, err := r.ReadCommit(base)
		if err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		splitTracked = splitCommit.Tracked
	}

	resolutions := classifyPaths(splitTracked, curCommit.Tracked, otherCommit.Tracked)

	var incoming []string
	for _, res := range resolutions {
		if res.action != FileRemove {
			incoming = append(incoming, res.path)
		}
	}
	if err := r.checkUntracked("merge", incoming, curCommit.Tracked); err != nil {
		return nil, err
	}

	stg := newStaging()
	for _, res := range resolutions {
		switch res.action {
		case FileTakeOther:
			if err := r.writeWorkFile(res.path, res.other); err != nil {
				return nil, fmt.Errorf("merge: %w", err)
			}
			stg.stageAdd(res.path, res.other, res.cur)
		case FileRemove:
			if err := r.removeWorkFile(res.path); err != nil {
				return nil, fmt.Errorf("merge: %w", err)
			}
			if _, err := stg.stageRemove(res.path, true); err != nil {
				return nil, fmt.Errorf("merge: %w", err)
			}
		case FileConflict:
			h, err := r.writeConflict(res)
			if err != nil {
				return nil, fmt.Errorf("merge: %w", err)
			}
			stg.stageAdd(res.path, h, res.cur)
			report.Conflicts++
			r.log().Warn("merge conflict", "path", res.path)
		}
		report.Files = append(report.Files, FileMergeReport{Path: res.path, Action: res.action})
	}
	if err := r.WriteStaging(stg); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	adds, removes := stg.Drain()
	rec, err := r.CreateCommit(CommitInput{
		Parents: []object.Hash{m.currentHead, m.otherHead},
		Message: fmt.Sprintf("Merged %s into %s.", m.other, m.current),
		Base:    curCommit.Tracked,
		Adds:    adds,
		Removes: removes,
	})
	if err != nil {
		return nil, err
	}
	if err := r.WriteStaging(stg); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	report.Outcome = MergeCommitted
	report.MergeCommit = rec.Hash
	return report, nil
}

// writeConflict renders both sides of a conflicted path into the working
// tree and the object store, returning the conflict blob id.
func (r *Repo) writeConflict(res fileResolution) (object.Hash, error) {
	cur, err := r.readBlobData(res.cur)
	if err != nil {
		return "", err
	}
	other, err := r.readBlobData(res.other)
	if err != nil {
		return "", err
	}
	content := renderFileConflict(cur, other)
	h, err := r.Store.WriteBlob(&object.Blob{Data: content})
	if err != nil {
		return "", fmt.Errorf("write conflict blob for %q: %w", res.path, err)
	}
	if err := r.writeWorkBytes(res.path, content); err != nil {
		return "", err
	}
	return h, nil
}

// renderFileConflict wraps both versions in conflict markers. An absent
// side contributes nothing; a side not ending in a newline gets one.
func renderFileConflict(cur, other []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("<<<<<<< HEAD\n")
	buf.Write(cur)
	if len(cur) > 0 && cur[len(cur)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteString("=======\n")
	buf.Write(other)
	if len(other) > 0 && other[len(other)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteString(">>>>>>>\n")
	return buf.Bytes()
}

func (r *Repo) readBlobData(h object.Hash) ([]byte, error) {
	if h == "" {
		return nil, nil
	}
	blob, err := r.Store.ReadBlob(h)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return nil, fmt.Errorf("blob %s: %w", h.Short(7), err)
		}
		return nil, err
	}
	return blob.Data, nil
}
