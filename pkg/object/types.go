package object

// Hash is a 64-character hex-encoded SHA-256 digest.
type Hash string

// Short returns the first n characters of the hash, or the whole hash when
// it is shorter than n.
func (h Hash) Short(n int) string {
	if len(h) <= n {
		return string(h)
	}
	return string(h[:n])
}

// HashLen is the width of a full hex-encoded object id.
const HashLen = 64

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeCommit ObjectType = "commit"
)

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// CommitObj is an immutable snapshot node. Tracked is a complete mapping
// from repository-relative path to blob hash, not a diff against the parent.
type CommitObj struct {
	Parents   []Hash
	Message   string
	Timestamp int64
	Timezone  string
	Branch    string
	Tracked   map[string]Hash
	Signature string
}

// IsMerge reports whether the commit has two parents.
func (c *CommitObj) IsMerge() bool {
	return len(c.Parents) > 1
}

// FirstParent returns the main-lineage parent, or "" for a root commit.
func (c *CommitObj) FirstParent() Hash {
	if len(c.Parents) == 0 {
		return ""
	}
	return c.Parents[0]
}
