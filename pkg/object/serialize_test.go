package object

import (
	"bytes"
	"testing"
)

func sampleCommit() *CommitObj {
	return &CommitObj{
		Parents:   []Hash{HashBytes([]byte("p1")), HashBytes([]byte("p2"))},
		Message:   "Merged feat into master.\n\nwith a body",
		Timestamp: 1700000000,
		Timezone:  "-0700",
		Branch:    "master",
		Tracked: map[string]Hash{
			"b.txt":      BlobHash([]byte("b")),
			"a.txt":      BlobHash([]byte("a")),
			"dir/c.txt":  BlobHash([]byte("c")),
			"with space": BlobHash([]byte("s")),
		},
	}
}

func TestCommitRoundTrip(t *testing.T) {
	c := sampleCommit()
	c.Signature = "sshsig-v1:ssh-ed25519:AAAA:BBBB"

	got, err := UnmarshalCommit(MarshalCommit(c))
	if err != nil {
		t.Fatalf("UnmarshalCommit: %v", err)
	}
	if got.Message != c.Message || got.Timestamp != c.Timestamp || got.Branch != c.Branch ||
		got.Timezone != c.Timezone || got.Signature != c.Signature {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, c)
	}
	if len(got.Parents) != 2 || got.Parents[0] != c.Parents[0] || got.Parents[1] != c.Parents[1] {
		t.Fatalf("parents = %v, want %v", got.Parents, c.Parents)
	}
	if len(got.Tracked) != len(c.Tracked) {
		t.Fatalf("tracked = %v, want %v", got.Tracked, c.Tracked)
	}
	for p, h := range c.Tracked {
		if got.Tracked[p] != h {
			t.Errorf("tracked[%q] = %s, want %s", p, got.Tracked[p], h)
		}
	}
}

func TestMarshalCommitSortsTracked(t *testing.T) {
	a := sampleCommit()
	b := sampleCommit()
	// Rebuild the map in a different insertion order.
	b.Tracked = map[string]Hash{}
	for _, p := range []string{"with space", "dir/c.txt", "b.txt", "a.txt"} {
		b.Tracked[p] = a.Tracked[p]
	}
	if !bytes.Equal(MarshalCommit(a), MarshalCommit(b)) {
		t.Fatal("MarshalCommit depends on map iteration order")
	}
}

func TestCommitHashDeterminism(t *testing.T) {
	if CommitHash(sampleCommit()) != CommitHash(sampleCommit()) {
		t.Fatal("identical commits produced different ids")
	}
}

func TestCommitHashChangesWithEveryField(t *testing.T) {
	base := CommitHash(sampleCommit())

	mutations := map[string]func(c *CommitObj){
		"parents": func(c *CommitObj) { c.Parents = c.Parents[:1] },
		"parent order": func(c *CommitObj) {
			c.Parents[0], c.Parents[1] = c.Parents[1], c.Parents[0]
		},
		"message":   func(c *CommitObj) { c.Message = "other" },
		"timestamp": func(c *CommitObj) { c.Timestamp++ },
		"branch":    func(c *CommitObj) { c.Branch = "feat" },
		"tracked blob": func(c *CommitObj) {
			c.Tracked["a.txt"] = BlobHash([]byte("changed"))
		},
		"tracked path": func(c *CommitObj) { delete(c.Tracked, "b.txt") },
		"signature":    func(c *CommitObj) { c.Signature = "sig" },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			c := sampleCommit()
			mutate(c)
			if CommitHash(c) == base {
				t.Fatalf("changing %s did not change the commit id", name)
			}
		})
	}
}

func TestUnmarshalCommitRejectsGarbage(t *testing.T) {
	cases := map[string]string{
		"no separator":      "branch master\ntimestamp 0",
		"unknown key":       "bogus x\n\nmsg",
		"bad timestamp":     "timestamp soon\n\nmsg",
		"bad file":          "file deadbeef\n\nmsg",
		"late parent":       "branch master\nparent 00\n\nmsg",
		"parent after file": "parent aa\nfile bb x\nparent 00\n\nmsg",
		"duplicate file":    "file aa x\nfile bb x\n\nmsg",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := UnmarshalCommit([]byte(in)); err == nil {
				t.Fatalf("UnmarshalCommit(%q) succeeded", in)
			}
		})
	}
}

func TestCommitSigningPayloadExcludesSignature(t *testing.T) {
	c := sampleCommit()
	unsigned := CommitSigningPayload(c)
	c.Signature = "sig"
	if !bytes.Equal(unsigned, CommitSigningPayload(c)) {
		t.Fatal("signing payload depends on the signature field")
	}
	if c.Signature != "sig" {
		t.Fatal("CommitSigningPayload mutated its argument")
	}
}

func TestMarshalCommitDoesNotInjectParents(t *testing.T) {
	c := sampleCommit()
	c.Tracked["a\nparent 00"] = BlobHash([]byte("x"))

	got, err := UnmarshalCommit(MarshalCommit(c))
	if err == nil {
		t.Fatalf("UnmarshalCommit accepted an injected header: parents=%v", got.Parents)
	}
}
