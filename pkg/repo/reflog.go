package repo

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/odvcencio/gitlet/pkg/object"
)

// zeroHash stands for "no commit" on either side of a reflog line.
var zeroHash = object.Hash(strings.Repeat("0", object.HashLen))

// ReflogEntry is one recorded movement of a branch pointer. Lines are
// stored as "<old> <new> <unix> <reason>".
type ReflogEntry struct {
	Branch    string
	OldHash   object.Hash
	NewHash   object.Hash
	Timestamp int64
	Reason    string
}

// Created reports whether the entry brought the branch into existence.
func (e ReflogEntry) Created() bool {
	return e.OldHash == zeroHash
}

// Deleted reports whether the entry removed the branch.
func (e ReflogEntry) Deleted() bool {
	return e.NewHash == zeroHash
}

// Time returns the entry timestamp in UTC.
func (e ReflogEntry) Time() time.Time {
	return time.Unix(e.Timestamp, 0).UTC()
}

func (r *Repo) reflogPath(ref string) string {
	return filepath.Join(r.GitletDir, "logs", filepath.FromSlash(ref))
}

func (r *Repo) appendReflog(ref string, oldHash, newHash object.Hash, reason string) error {
	if oldHash == "" {
		oldHash = zeroHash
	}
	if newHash == "" {
		newHash = zeroHash
	}
	reason = strings.Join(strings.Fields(reason), " ")
	if reason == "" {
		reason = "update"
	}

	path := r.reflogPath(ref)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("reflog: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("reflog: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s %s %d %s\n", oldHash, newHash, r.now().Unix(), reason); err != nil {
		return fmt.Errorf("reflog: %w", err)
	}
	return nil
}

func parseReflogLine(branch, line string) (ReflogEntry, bool) {
	fields := strings.SplitN(line, " ", 4)
	if len(fields) != 4 {
		return ReflogEntry{}, false
	}
	ts, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return ReflogEntry{}, false
	}
	return ReflogEntry{
		Branch:    branch,
		OldHash:   object.Hash(fields[0]),
		NewHash:   object.Hash(fields[1]),
		Timestamp: ts,
		Reason:    fields[3],
	}, true
}

// ReadReflog returns the movements of branch, newest first, at most limit
// of them when limit > 0. An empty branch reads the current one. History
// outlives the branch: a deleted branch still reports its movements, and
// a name that never existed fails with ErrUnknownBranch.
func (r *Repo) ReadReflog(branch string, limit int) ([]ReflogEntry, error) {
	if branch == "" || branch == "HEAD" {
		cur, err := r.CurrentBranch()
		if err != nil {
			return nil, fmt.Errorf("reflog: %w", err)
		}
		branch = cur
	}
	if ValidateBranchName(branch) != nil {
		return nil, opError("reflog", ErrUnknownBranch, branch)
	}

	f, err := os.Open(r.reflogPath(branchRef(branch)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, opError("reflog", ErrUnknownBranch, branch)
		}
		return nil, fmt.Errorf("reflog: %w", err)
	}
	defer f.Close()

	var entries []ReflogEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if e, ok := parseReflogLine(branch, strings.TrimSpace(sc.Text())); ok {
			entries = append(entries, e)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reflog: %w", err)
	}

	slices.Reverse(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
