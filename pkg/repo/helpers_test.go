package repo

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/odvcencio/gitlet/pkg/object"
)

// initTestRepo initializes a repository in a temp dir with a deterministic
// clock that advances one minute per commit.
func initTestRepo(t *testing.T) (*Repo, string) {
	t.Helper()
	dir := t.TempDir()
	r, err := Init(dir)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	var tick atomic.Int64
	r.Clock = func() time.Time {
		return time.Unix(1_700_000_000+60*tick.Add(1), 0).UTC()
	}
	return r, dir
}

// commitFiles writes files (nil content removes the file via Remove), stages
// them and commits.
func commitFiles(t *testing.T, r *Repo, files map[string]*string, message string) *CommitRecord {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(r.RootDir, filepath.FromSlash(name))
		if content == nil {
			if err := r.Remove([]string{path}); err != nil {
				t.Fatalf("Remove(%s): %v", name, err)
			}
			continue
		}
		writeFile(t, path, []byte(*content))
		if err := r.Add([]string{path}); err != nil {
			t.Fatalf("Add(%s): %v", name, err)
		}
	}
	rec, err := r.Commit(message)
	if err != nil {
		t.Fatalf("Commit(%q): %v", message, err)
	}
	return rec
}

func str(s string) *string { return &s }

func mustHead(t *testing.T, r *Repo, branch string) object.Hash {
	t.Helper()
	h, err := r.HeadOf(branch)
	if err != nil {
		t.Fatalf("HeadOf(%s): %v", branch, err)
	}
	return h
}

func mustCheckout(t *testing.T, r *Repo, branch string) {
	t.Helper()
	if err := r.CheckoutBranch(branch); err != nil {
		t.Fatalf("CheckoutBranch(%s): %v", branch, err)
	}
}

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll(%s): %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s): %v", path, err)
	}
	return string(data)
}

func assertDir(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected directory %q to exist: %v", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("%q exists but is not a directory", path)
	}
}

func assertFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected file %q to exist: %v", path, err)
		return
	}
	if info.IsDir() {
		t.Errorf("%q exists but is a directory, expected file", path)
	}
}

func assertNoFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected %q to be absent, stat err = %v", path, err)
	}
}
