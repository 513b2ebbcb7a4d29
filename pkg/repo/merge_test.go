package repo

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/odvcencio/gitlet/pkg/object"
)

// setupMergeRepo commits base files on master and creates feature there.
func setupMergeRepo(t *testing.T, base map[string]*string) (*Repo, string, *CommitRecord) {
	t.Helper()
	r, dir := initTestRepo(t)
	split := commitFiles(t, r, base, "base")
	if err := r.CreateBranch("feature"); err != nil {
		t.Fatalf("CreateBranch(feature): %v", err)
	}
	return r, dir, split
}

func TestFindMergeBase_Diverged(t *testing.T) {
	// R -> A -> B on master, A -> C on feature: the split point is A.
	r, _, a := setupMergeRepo(t, map[string]*string{"f": str("a")})
	b := commitFiles(t, r, map[string]*string{"f": str("b")}, "B")
	mustCheckout(t, r, "feature")
	c := commitFiles(t, r, map[string]*string{"g": str("c")}, "C")

	for _, pair := range [][2]object.Hash{{b.Hash, c.Hash}, {c.Hash, b.Hash}} {
		got, err := r.FindMergeBase(pair[0], pair[1])
		if err != nil {
			t.Fatalf("FindMergeBase: %v", err)
		}
		if got != a.Hash {
			t.Fatalf("FindMergeBase(%s, %s) = %s, want %s", pair[0].Short(7), pair[1].Short(7), got.Short(7), a.Hash.Short(7))
		}
	}
}

func TestFindMergeBase_SeesThroughMergeParents(t *testing.T) {
	// After merging feature into master, a further feature commit has the
	// old feature head as its split point, reachable only via the second
	// parent of the merge.
	r, _, _ := setupMergeRepo(t, map[string]*string{"f": str("a")})
	commitFiles(t, r, map[string]*string{"m": str("1")}, "master 1")
	mustCheckout(t, r, "feature")
	featHead := commitFiles(t, r, map[string]*string{"x": str("1")}, "feature 1")
	mustCheckout(t, r, "master")
	if _, err := r.Merge("feature"); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	mustCheckout(t, r, "feature")
	commitFiles(t, r, map[string]*string{"x": str("2")}, "feature 2")

	base, err := r.FindMergeBase(mustHead(t, r, "master"), mustHead(t, r, "feature"))
	if err != nil {
		t.Fatal(err)
	}
	if base != featHead.Hash {
		t.Fatalf("base = %s, want %s", base.Short(7), featHead.Hash.Short(7))
	}
}

func TestFindMergeBase_StepLimit(t *testing.T) {
	r, _ := initTestRepo(t)
	for _, v := range []string{"1", "2", "3", "4"} {
		commitFiles(t, r, map[string]*string{"a": str(v)}, v)
	}
	if err := r.CreateBranch("b"); err != nil {
		t.Fatal(err)
	}
	mustCheckout(t, r, "b")
	commitFiles(t, r, map[string]*string{"b": str("b")}, "b")

	old := mergeBaseBFSStepsLimit
	mergeBaseBFSStepsLimit = 2
	t.Cleanup(func() { mergeBaseBFSStepsLimit = old })

	if _, err := r.FindMergeBase(mustHead(t, r, "master"), mustHead(t, r, "b")); err == nil {
		t.Fatal("FindMergeBase ignored the step limit")
	}
}

func TestMerge_Ancestor(t *testing.T) {
	r, _, split := setupMergeRepo(t, map[string]*string{"f": str("a")})
	before := commitFiles(t, r, map[string]*string{"f": str("b")}, "ahead")

	report, err := r.Merge("feature")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if report.Outcome != MergeAncestor || report.SplitPoint != split.Hash {
		t.Fatalf("report = %+v", report)
	}
	if got := mustHead(t, r, "master"); got != before.Hash {
		t.Fatal("ancestor merge moved the branch")
	}
}

func TestMerge_FastForward(t *testing.T) {
	r, dir, _ := setupMergeRepo(t, map[string]*string{"f": str("a"), "old": str("o")})
	mustCheckout(t, r, "feature")
	featHead := commitFiles(t, r, map[string]*string{"f": str("b"), "old": nil, "n": str("n")}, "feature work")
	mustCheckout(t, r, "master")

	commitsBefore, err := r.Store.ListType(object.TypeCommit)
	if err != nil {
		t.Fatal(err)
	}

	report, err := r.Merge("feature")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if report.Outcome != MergeFastForward {
		t.Fatalf("outcome = %v, want fast-forward", report.Outcome)
	}
	if got := mustHead(t, r, "master"); got != featHead.Hash {
		t.Fatalf("master = %s, want %s", got, featHead.Hash)
	}
	if got := readFile(t, filepath.Join(dir, "f")); got != "b" {
		t.Fatalf("f = %q, want b", got)
	}
	assertFile(t, filepath.Join(dir, "n"))
	assertNoFile(t, filepath.Join(dir, "old"))

	commitsAfter, err := r.Store.ListType(object.TypeCommit)
	if err != nil {
		t.Fatal(err)
	}
	if len(commitsAfter) != len(commitsBefore) {
		t.Fatal("fast-forward created a commit")
	}
}

func TestMerge_ConflictMarkers(t *testing.T) {
	r, dir, split := setupMergeRepo(t, map[string]*string{"a.txt": str("hello\n")})
	commitFiles(t, r, map[string]*string{"a.txt": str("there\n")}, "master edit")
	mustCheckout(t, r, "feature")
	commitFiles(t, r, map[string]*string{"a.txt": str("world\n")}, "feature edit")
	mustCheckout(t, r, "master")

	report, err := r.Merge("feature")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if report.Outcome != MergeCommitted || report.Conflicts != 1 {
		t.Fatalf("report = %+v", report)
	}
	if report.SplitPoint != split.Hash || !reflect.DeepEqual(report.SplitForks, []string{"feature"}) {
		t.Fatalf("split = %s forks = %v", report.SplitPoint.Short(7), report.SplitForks)
	}

	want := "<<<<<<< HEAD\nthere\n=======\nworld\n>>>>>>>\n"
	if got := readFile(t, filepath.Join(dir, "a.txt")); got != want {
		t.Fatalf("a.txt =\n%q\nwant\n%q", got, want)
	}

	merged, err := r.ReadCommit(report.MergeCommit)
	if err != nil {
		t.Fatal(err)
	}
	if merged.Message != "Merged feature into master." || len(merged.Parents) != 2 {
		t.Fatalf("merge commit = %+v", merged.CommitObj)
	}
	if merged.Tracked["a.txt"] != object.BlobHash([]byte(want)) {
		t.Fatal("conflict file not committed")
	}
	stg, err := r.ReadStaging()
	if err != nil {
		t.Fatal(err)
	}
	if !stg.Empty() {
		t.Fatalf("staging after merge = %+v", stg)
	}
}

func TestMerge_AutoMerge(t *testing.T) {
	r, dir, _ := setupMergeRepo(t, map[string]*string{
		"a.txt": str("a"),
		"b.txt": str("b"),
		"d.txt": str("d"),
	})
	commitFiles(t, r, map[string]*string{"a.txt": str("a2")}, "master edits a")
	mustCheckout(t, r, "feature")
	commitFiles(t, r, map[string]*string{
		"b.txt": str("b2"),
		"c.txt": str("y"),
		"d.txt": nil,
	}, "feature edits")
	mustCheckout(t, r, "master")

	report, err := r.Merge("feature")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if report.Conflicts != 0 {
		t.Fatalf("conflicts = %d", report.Conflicts)
	}
	wantFiles := []FileMergeReport{
		{Path: "b.txt", Action: FileTakeOther},
		{Path: "c.txt", Action: FileTakeOther},
		{Path: "d.txt", Action: FileRemove},
	}
	if !reflect.DeepEqual(report.Files, wantFiles) {
		t.Fatalf("files = %+v, want %+v", report.Files, wantFiles)
	}

	if got := readFile(t, filepath.Join(dir, "c.txt")); got != "y" {
		t.Fatalf("c.txt = %q, want y", got)
	}
	if got := readFile(t, filepath.Join(dir, "a.txt")); got != "a2" {
		t.Fatalf("a.txt = %q, want a2", got)
	}
	assertNoFile(t, filepath.Join(dir, "d.txt"))

	merged, err := r.ReadCommit(report.MergeCommit)
	if err != nil {
		t.Fatal(err)
	}
	if merged.Tracked["c.txt"] != object.BlobHash([]byte("y")) || merged.Tracked["b.txt"] != object.BlobHash([]byte("b2")) {
		t.Fatalf("merged tracked = %v", merged.Tracked)
	}
	if _, ok := merged.Tracked["d.txt"]; ok {
		t.Fatal("d.txt survived the merge")
	}
}

func TestMerge_Preconditions(t *testing.T) {
	r, dir, _ := setupMergeRepo(t, map[string]*string{"a.txt": str("a")})

	if _, err := r.Merge("master"); !errors.Is(err, ErrSelfMerge) {
		t.Errorf("Merge(self): got %v", err)
	}
	if _, err := r.Merge("ghost"); !errors.Is(err, ErrUnknownBranch) {
		t.Errorf("Merge(ghost): got %v", err)
	}

	writeFile(t, filepath.Join(dir, "s.txt"), []byte("s"))
	if err := r.Add([]string{filepath.Join(dir, "s.txt")}); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Merge("feature"); !errors.Is(err, ErrUncommittedChanges) {
		t.Errorf("Merge(dirty): got %v", err)
	}
}

func TestMerge_UntrackedFileInTheWay(t *testing.T) {
	r, dir, _ := setupMergeRepo(t, map[string]*string{"a.txt": str("a")})
	commitFiles(t, r, map[string]*string{"m.txt": str("m")}, "master")
	mustCheckout(t, r, "feature")
	commitFiles(t, r, map[string]*string{"new.txt": str("theirs"), "a.txt": str("a2")}, "feature")
	mustCheckout(t, r, "master")

	writeFile(t, filepath.Join(dir, "new.txt"), []byte("mine"))
	before := mustHead(t, r, "master")

	_, err := r.Merge("feature")
	if !errors.Is(err, ErrUntrackedFileInTheWay) {
		t.Fatalf("Merge: got %v, want ErrUntrackedFileInTheWay", err)
	}
	if got := readFile(t, filepath.Join(dir, "new.txt")); got != "mine" {
		t.Fatalf("untracked file overwritten: %q", got)
	}
	if got := readFile(t, filepath.Join(dir, "a.txt")); got != "a" {
		t.Fatalf("a.txt written despite failed merge: %q", got)
	}
	if mustHead(t, r, "master") != before {
		t.Fatal("branch moved after failed merge")
	}
}

func TestMergeWithBase_UsesGivenSplit(t *testing.T) {
	r, dir, split := setupMergeRepo(t, map[string]*string{"a.txt": str("a")})
	commitFiles(t, r, map[string]*string{"m.txt": str("m")}, "master")
	mustCheckout(t, r, "feature")
	commitFiles(t, r, map[string]*string{"a.txt": str("a2")}, "feature")
	mustCheckout(t, r, "master")

	report, err := r.MergeWithBase("feature", split.Hash)
	if err != nil {
		t.Fatalf("MergeWithBase: %v", err)
	}
	if report.Outcome != MergeCommitted || report.SplitPoint != split.Hash {
		t.Fatalf("report = %+v", report)
	}
	if got := readFile(t, filepath.Join(dir, "a.txt")); got != "a2" {
		t.Fatalf("a.txt = %q", got)
	}
}

func TestClassifyPaths(t *testing.T) {
	h := func(s string) object.Hash { return object.BlobHash([]byte(s)) }
	split := map[string]object.Hash{"same": h("s"), "cur": h("s"), "oth": h("s"), "both": h("s"), "del": h("s"), "delmod": h("s")}
	cur := map[string]object.Hash{"same": h("s"), "cur": h("c"), "oth": h("s"), "both": h("c"), "del": h("s"), "delmod": h("c"), "newc": h("n")}
	oth := map[string]object.Hash{"same": h("s"), "cur": h("s"), "oth": h("o"), "both": h("o"), "newo": h("n"), "newc": h("x")}

	got := map[string]FileAction{}
	for _, res := range classifyPaths(split, cur, oth) {
		got[res.path] = res.action
	}
	want := map[string]FileAction{
		"oth":    FileTakeOther,
		"both":   FileConflict,
		"del":    FileRemove,
		"newo":   FileTakeOther,
		"newc":   FileConflict,
		"delmod": FileConflict,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("classifyPaths = %v, want %v", got, want)
	}
}

func TestRenderFileConflict(t *testing.T) {
	cases := []struct {
		name       string
		cur, other string
		want       string
	}{
		{"both", "there\n", "world\n", "<<<<<<< HEAD\nthere\n=======\nworld\n>>>>>>>\n"},
		{"no trailing newline", "a", "b", "<<<<<<< HEAD\na\n=======\nb\n>>>>>>>\n"},
		{"deleted other", "mine\n", "", "<<<<<<< HEAD\nmine\n=======\n>>>>>>>\n"},
		{"deleted current", "", "theirs\n", "<<<<<<< HEAD\n=======\ntheirs\n>>>>>>>\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := string(renderFileConflict([]byte(tc.cur), []byte(tc.other))); got != tc.want {
				t.Fatalf("renderFileConflict = %q, want %q", got, tc.want)
			}
		})
	}
}
