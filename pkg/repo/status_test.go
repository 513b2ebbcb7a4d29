package repo

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestStatus_Sections(t *testing.T) {
	r, dir := initTestRepo(t)
	commitFiles(t, r, map[string]*string{
		"keep.txt":    str("k"),
		"edit.txt":    str("e"),
		"gone.txt":    str("g"),
		"removed.txt": str("r"),
	}, "base")
	if err := r.CreateBranch("other"); err != nil {
		t.Fatal(err)
	}

	writeFile(t, filepath.Join(dir, "new.txt"), []byte("n"))
	if err := r.Add([]string{filepath.Join(dir, "new.txt")}); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "staged-then-edited.txt"), []byte("1"))
	if err := r.Add([]string{filepath.Join(dir, "staged-then-edited.txt")}); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "staged-then-edited.txt"), []byte("2"))
	if err := r.Remove([]string{filepath.Join(dir, "removed.txt")}); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "edit.txt"), []byte("changed"))
	removeFile(t, filepath.Join(dir, "gone.txt"))
	writeFile(t, filepath.Join(dir, "sub", "stray.txt"), []byte("?"))

	st, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}

	if st.Current != "master" || !reflect.DeepEqual(st.Branches, []string{"master", "other"}) {
		t.Errorf("branches = %v (current %q)", st.Branches, st.Current)
	}
	if want := []string{"new.txt", "staged-then-edited.txt"}; !reflect.DeepEqual(st.Staged, want) {
		t.Errorf("staged = %v, want %v", st.Staged, want)
	}
	if want := []string{"removed.txt"}; !reflect.DeepEqual(st.Removed, want) {
		t.Errorf("removed = %v, want %v", st.Removed, want)
	}
	wantUnstaged := []UnstagedChange{
		{Path: "edit.txt", Kind: ChangeModified},
		{Path: "gone.txt", Kind: ChangeDeleted},
		{Path: "staged-then-edited.txt", Kind: ChangeModified},
	}
	if !reflect.DeepEqual(st.Unstaged, wantUnstaged) {
		t.Errorf("unstaged = %v, want %v", st.Unstaged, wantUnstaged)
	}
	if want := []string{"sub/stray.txt"}; !reflect.DeepEqual(st.Untracked, want) {
		t.Errorf("untracked = %v, want %v", st.Untracked, want)
	}
}

func TestFormatStatus(t *testing.T) {
	st := &StatusReport{
		Current:   "master",
		Branches:  []string{"master", "other"},
		Staged:    []string{"a.txt"},
		Unstaged:  []UnstagedChange{{Path: "b.txt", Kind: ChangeDeleted}},
		Untracked: []string{"c.txt"},
	}
	want := "=== Branches ===\n*master\nother\n\n" +
		"=== Staged Files ===\na.txt\n\n" +
		"=== Removed Files ===\n\n" +
		"=== Modifications Not Staged For Commit ===\nb.txt (deleted)\n\n" +
		"=== Untracked Files ===\nc.txt\n\n"
	if got := FormatStatus(st); got != want {
		t.Fatalf("FormatStatus =\n%q\nwant\n%q", got, want)
	}
}
