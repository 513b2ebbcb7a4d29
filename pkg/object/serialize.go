package object

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}

// ---------------------------------------------------------------------------
// CommitObj
// ---------------------------------------------------------------------------

// MarshalCommit serializes a CommitObj to a deterministic text format:
//
//	parent H     (zero or more, in order)
//	branch B
//	timestamp T
//	timezone Z
//	signature S  (optional)
//	file H path  (zero or more, sorted by path)
//
//	message
func MarshalCommit(c *CommitObj) []byte {
	var buf bytes.Buffer
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", string(p))
	}
	fmt.Fprintf(&buf, "branch %s\n", c.Branch)
	fmt.Fprintf(&buf, "timestamp %d\n", c.Timestamp)
	fmt.Fprintf(&buf, "timezone %s\n", c.Timezone)
	if strings.TrimSpace(c.Signature) != "" {
		fmt.Fprintf(&buf, "signature %s\n", c.Signature)
	}

	paths := make([]string, 0, len(c.Tracked))
	for p := range c.Tracked {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		fmt.Fprintf(&buf, "file %s %s\n", string(c.Tracked[p]), p)
	}

	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// UnmarshalCommit parses a CommitObj from its serialized form.
func UnmarshalCommit(data []byte) (*CommitObj, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal commit: missing header/message separator")
	}
	header := string(data[:idx])
	message := string(data[idx+2:])

	c := &CommitObj{
		Message: message,
		Tracked: make(map[string]Hash),
	}
	// Parent lines lead the header; one after any other key is corrupt.
	pastParents := false
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal commit: malformed header line %q", line)
		}
		if key != "parent" {
			pastParents = true
		}
		switch key {
		case "parent":
			if pastParents {
				return nil, fmt.Errorf("unmarshal commit: parent %q after other header lines", val)
			}
			c.Parents = append(c.Parents, Hash(val))
		case "branch":
			c.Branch = val
		case "timestamp":
			ts, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: bad timestamp %q: %w", val, err)
			}
			c.Timestamp = ts
		case "timezone":
			c.Timezone = val
		case "signature":
			c.Signature = val
		case "file":
			h, path, ok := strings.Cut(val, " ")
			if !ok || path == "" {
				return nil, fmt.Errorf("unmarshal commit: malformed file entry %q", val)
			}
			if _, dup := c.Tracked[path]; dup {
				return nil, fmt.Errorf("unmarshal commit: duplicate file entry %q", path)
			}
			c.Tracked[path] = Hash(h)
		default:
			return nil, fmt.Errorf("unmarshal commit: unknown header key %q", key)
		}
	}
	return c, nil
}
