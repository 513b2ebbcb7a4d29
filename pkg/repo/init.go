package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/odvcencio/gitlet/pkg/object"
)

// DirName is the name of the repository metadata directory.
const DirName = ".gitlet"

// InitialCommitMessage is the message of every repository's root commit.
const InitialCommitMessage = "initial commit"

var ErrRefCASMismatch = errors.New("ref compare-and-swap mismatch")
var ErrRefUpdatedButReflogAppendFailed = errors.New("ref updated but reflog append failed")

// RefUpdateReflogError indicates the ref file update succeeded, but appending
// the corresponding reflog entry failed.
type RefUpdateReflogError struct {
	Ref     string
	OldHash object.Hash
	NewHash object.Hash
	Err     error
}

func (e *RefUpdateReflogError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf(
		"update ref %q: %s (old=%s new=%s): %v",
		e.Ref,
		ErrRefUpdatedButReflogAppendFailed,
		e.OldHash,
		e.NewHash,
		e.Err,
	)
}

func (e *RefUpdateReflogError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *RefUpdateReflogError) Is(target error) bool {
	return target == ErrRefUpdatedButReflogAppendFailed
}

const (
	refLockRetryDelay = 5 * time.Millisecond
	refLockWaitLimit  = 2 * time.Second
)

// Init creates a new repository at path: the .gitlet/ layout, a default
// config, and the root commit "initial commit" (timestamp 0, no files) on
// the default branch, which becomes current. Every repository therefore
// shares the same root commit id.
func Init(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("init: abs path: %w", err)
	}
	gitletDir := filepath.Join(abs, DirName)

	if _, err := os.Stat(gitletDir); err == nil {
		return nil, opError("init", ErrAlreadyInitialized, gitletDir)
	}

	dirs := []string{
		filepath.Join(gitletDir, "objects"),
		filepath.Join(gitletDir, "refs", "heads"),
		filepath.Join(gitletDir, "logs", "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	r := &Repo{
		RootDir:   abs,
		GitletDir: gitletDir,
		Store:     object.NewStore(gitletDir),
	}

	cfg := DefaultConfig()
	if err := r.WriteConfig(cfg); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	// Blobs (none) -> commit -> ref -> HEAD.
	root := &object.CommitObj{
		Message:   InitialCommitMessage,
		Timestamp: 0,
		Timezone:  "+0000",
		Branch:    cfg.Core.DefaultBranch,
		Tracked:   map[string]object.Hash{},
	}
	rootHash, err := r.Store.WriteCommit(root)
	if err != nil {
		return nil, fmt.Errorf("init: write root commit: %w", err)
	}
	if err := r.UpdateRefCAS(branchRef(cfg.Core.DefaultBranch), rootHash, "init", ""); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	if err := r.writeHead(cfg.Core.DefaultBranch); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	return r, nil
}

// Open searches upward from path for a .gitlet/ directory and opens the
// repository.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		gitletDir := filepath.Join(cur, DirName)
		info, err := os.Stat(gitletDir)
		if err == nil && info.IsDir() {
			return OpenDir(gitletDir)
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, opError("open", ErrNotInitialized, abs)
		}
		cur = parent
	}
}

// OpenDir opens the repository whose metadata directory is gitletDir. The
// working tree is its parent directory. Remotes are addressed this way.
func OpenDir(gitletDir string) (*Repo, error) {
	abs, err := filepath.Abs(gitletDir)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}
	if _, err := os.Stat(filepath.Join(abs, "HEAD")); err != nil {
		return nil, opError("open", ErrNotInitialized, abs)
	}
	return &Repo{
		RootDir:   filepath.Dir(abs),
		GitletDir: abs,
		Store:     object.NewStore(abs),
	}, nil
}

// Head reads .gitlet/HEAD and returns the ref path of the current branch
// (e.g., "refs/heads/master").
func (r *Repo) Head() (string, error) {
	data, err := os.ReadFile(filepath.Join(r.GitletDir, "HEAD"))
	if err != nil {
		return "", fmt.Errorf("head: %w", err)
	}
	content := strings.TrimRight(string(data), "\n")
	ref, ok := strings.CutPrefix(content, "ref: ")
	if !ok {
		return "", fmt.Errorf("head: malformed HEAD %q", content)
	}
	return ref, nil
}

func (r *Repo) writeHead(branch string) error {
	data := []byte("ref: " + branchRef(branch) + "\n")
	if err := writeFileAtomic(filepath.Join(r.GitletDir, "HEAD"), data); err != nil {
		return fmt.Errorf("write HEAD: %w", err)
	}
	return nil
}

// ResolveRef resolves a ref name to a commit hash.
//
// Resolution order:
//  1. "HEAD" resolves the current branch.
//  2. A name starting with "refs/" is read from .gitlet/<name>.
//  3. Otherwise "refs/heads/<name>".
func (r *Repo) ResolveRef(name string) (object.Hash, error) {
	if name == "HEAD" {
		head, err := r.Head()
		if err != nil {
			return "", err
		}
		return r.ResolveRef(head)
	}

	refName := name
	if !strings.HasPrefix(name, "refs/") {
		refName = branchRef(name)
	}

	h, err := readRefHash(filepath.Join(r.GitletDir, filepath.FromSlash(refName)))
	if err != nil {
		return "", fmt.Errorf("resolve ref %q: %w", name, err)
	}
	if h == "" {
		return "", fmt.Errorf("resolve ref %q: %w", name, os.ErrNotExist)
	}
	return h, nil
}

// UpdateRefCAS writes a hash to the named ref file under .gitlet/ using
// lockfile + fsync + rename. If expectedOld is provided, the update only
// succeeds when the current ref hash matches it ("" meaning the ref must
// not exist yet).
//
// Reflog append happens after the ref rename; if reflog append fails, the ref
// update remains committed and a RefUpdateReflogError is returned.
func (r *Repo) UpdateRefCAS(name string, h object.Hash, reason string, expectedOld ...object.Hash) error {
	if len(expectedOld) > 1 {
		return fmt.Errorf("update ref %q: expected at most one old hash", name)
	}
	hasExpectedOld := len(expectedOld) == 1
	wantOldHash := object.Hash("")
	if hasExpectedOld {
		wantOldHash = expectedOld[0]
	}

	refPath := filepath.Join(r.GitletDir, filepath.FromSlash(name))

	dir := filepath.Dir(refPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("update ref %q: mkdir: %w", name, err)
	}

	lockPath := refPath + ".lock"
	lockFile, err := acquireRefLock(lockPath)
	if err != nil {
		return fmt.Errorf("update ref %q: lock: %w", name, err)
	}
	cleanupLock := true
	defer func() {
		if lockFile != nil {
			_ = lockFile.Close()
		}
		if cleanupLock {
			_ = os.Remove(lockPath)
		}
	}()

	oldHash, err := readRefHash(refPath)
	if err != nil {
		return fmt.Errorf("update ref %q: read old hash: %w", name, err)
	}
	if hasExpectedOld && oldHash != wantOldHash {
		return fmt.Errorf(
			"update ref %q: %w (expected %s, found %s)",
			name,
			ErrRefCASMismatch,
			wantOldHash,
			oldHash,
		)
	}

	if _, err := lockFile.WriteString(string(h) + "\n"); err != nil {
		return fmt.Errorf("update ref %q: write: %w", name, err)
	}
	if err := lockFile.Sync(); err != nil {
		return fmt.Errorf("update ref %q: sync: %w", name, err)
	}
	if err := lockFile.Close(); err != nil {
		lockFile = nil
		return fmt.Errorf("update ref %q: close: %w", name, err)
	}
	lockFile = nil

	if err := os.Rename(lockPath, refPath); err != nil {
		return fmt.Errorf("update ref %q: rename: %w", name, err)
	}
	cleanupLock = false

	if err := r.appendReflog(name, oldHash, h, reason); err != nil {
		return &RefUpdateReflogError{
			Ref:     name,
			OldHash: oldHash,
			NewHash: h,
			Err:     err,
		}
	}

	return nil
}

func acquireRefLock(lockPath string) (*os.File, error) {
	deadline := time.Now().Add(refLockWaitLimit)
	for {
		f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if os.IsExist(err) {
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("timeout waiting for lock %q", lockPath)
			}
			time.Sleep(refLockRetryDelay)
			continue
		}
		return nil, err
	}
}

func readRefHash(refPath string) (object.Hash, error) {
	data, err := os.ReadFile(refPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return object.Hash(strings.TrimSpace(string(data))), nil
}
