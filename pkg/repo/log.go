package repo

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/odvcencio/gitlet/pkg/object"
)

// LogDateLayout is the timestamp layout used by log output.
const LogDateLayout = "Mon Jan 2 15:04:05 2006 -0700"

// Time returns the commit timestamp in the zone it was recorded in.
func (c *CommitRecord) Time() time.Time {
	return time.Unix(c.Timestamp, 0).In(parseZone(c.Timezone))
}

// parseZone turns a "-0700" style offset into a fixed zone; malformed
// offsets fall back to UTC.
func parseZone(tz string) *time.Location {
	if len(tz) != 5 || (tz[0] != '+' && tz[0] != '-') {
		return time.UTC
	}
	hh, err1 := strconv.Atoi(tz[1:3])
	mm, err2 := strconv.Atoi(tz[3:5])
	if err1 != nil || err2 != nil {
		return time.UTC
	}
	offset := hh*3600 + mm*60
	if tz[0] == '-' {
		offset = -offset
	}
	return time.FixedZone(tz, offset)
}

// FormatLogEntry renders one commit the way `log` prints it.
func FormatLogEntry(c *CommitRecord) string {
	var b strings.Builder
	b.WriteString("===\n")
	fmt.Fprintf(&b, "commit %s\n", c.Hash)
	if c.IsMerge() {
		fmt.Fprintf(&b, "Merge: %s %s\n", c.Parents[0].Short(7), c.Parents[1].Short(7))
	}
	fmt.Fprintf(&b, "Date: %s\n", c.Time().Format(LogDateLayout))
	b.WriteString(c.Message)
	b.WriteString("\n")
	return b.String()
}

// Log returns the first-parent history of the current branch, newest first.
func (r *Repo) Log() ([]*CommitRecord, error) {
	head, err := r.CurrentHead()
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}
	var out []*CommitRecord
	for rec, err := range r.FirstParentWalk(head) {
		if err != nil {
			return nil, fmt.Errorf("log: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// GlobalLog returns every commit in the object store, ordered by id.
func (r *Repo) GlobalLog() ([]*CommitRecord, error) {
	hashes, err := r.Store.ListType(object.TypeCommit)
	if err != nil {
		return nil, fmt.Errorf("global-log: %w", err)
	}
	out := make([]*CommitRecord, 0, len(hashes))
	for _, h := range hashes {
		rec, err := r.ReadCommit(h)
		if err != nil {
			return nil, fmt.Errorf("global-log: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Find returns the ids of every commit whose message is exactly message.
func (r *Repo) Find(message string) ([]object.Hash, error) {
	all, err := r.GlobalLog()
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	var out []object.Hash
	for _, rec := range all {
		if rec.Message == message {
			out = append(out, rec.Hash)
		}
	}
	if len(out) == 0 {
		return nil, opError("find", ErrNoCommitWithMessage, message)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
