package repo

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigRemoteRoundTrip(t *testing.T) {
	r, dir := initTestRepo(t)

	if err := r.AddRemote("origin", "../other/.gitlet"); err != nil {
		t.Fatalf("AddRemote: %v", err)
	}
	got, err := r.RemotePath("origin")
	if err != nil {
		t.Fatalf("RemotePath: %v", err)
	}
	want := filepath.Clean(filepath.Join(dir, "..", "other", ".gitlet"))
	if got != want {
		t.Fatalf("RemotePath = %q, want %q", got, want)
	}

	if err := r.AddRemote("origin", "/elsewhere/.gitlet"); !errors.Is(err, ErrRemoteExists) {
		t.Fatalf("AddRemote duplicate: got %v, want ErrRemoteExists", err)
	}

	names, err := r.Remotes()
	if err != nil {
		t.Fatalf("Remotes: %v", err)
	}
	if len(names) != 1 || names[0] != "origin" {
		t.Fatalf("Remotes = %v", names)
	}

	if err := r.RemoveRemote("origin"); err != nil {
		t.Fatalf("RemoveRemote: %v", err)
	}
	if err := r.RemoveRemote("origin"); !errors.Is(err, ErrUnknownRemote) {
		t.Fatalf("RemoveRemote again: got %v, want ErrUnknownRemote", err)
	}
	if _, err := r.RemotePath("origin"); !errors.Is(err, ErrUnknownRemote) {
		t.Fatalf("RemotePath after remove: got %v, want ErrUnknownRemote", err)
	}
}

func TestConfigWrittenAsTOML(t *testing.T) {
	r, _ := initTestRepo(t)

	data, err := os.ReadFile(filepath.Join(r.GitletDir, "config.toml"))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(data), "[core]") || !strings.Contains(string(data), `default_branch = "master"`) {
		t.Fatalf("config.toml = %q", data)
	}
}

func TestReadConfigParsesSections(t *testing.T) {
	r, _ := initTestRepo(t)
	writeFile(t, filepath.Join(r.GitletDir, "config.toml"), []byte(`
[core]
default_branch = "trunk"

[log]
file = "gitlet.log"
level = "debug"
max_size_mb = 4
max_backups = 3

[signing]
key = "~/.ssh/id_ed25519"

[remotes]
origin = "/srv/repo/.gitlet"
`))

	cfg, err := r.ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if cfg.Core.DefaultBranch != "trunk" {
		t.Errorf("default_branch = %q", cfg.Core.DefaultBranch)
	}
	if cfg.Log.File != "gitlet.log" || cfg.Log.Level != "debug" || cfg.Log.MaxSizeMB != 4 || cfg.Log.MaxBackups != 3 {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.Signing.Key != "~/.ssh/id_ed25519" {
		t.Errorf("signing key = %q", cfg.Signing.Key)
	}
	if cfg.Remotes["origin"] != "/srv/repo/.gitlet" {
		t.Errorf("remotes = %v", cfg.Remotes)
	}
}

func TestReadConfigMissingReturnsDefaults(t *testing.T) {
	r, _ := initTestRepo(t)
	if err := os.Remove(filepath.Join(r.GitletDir, "config.toml")); err != nil {
		t.Fatal(err)
	}

	cfg, err := r.ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if cfg.Core.DefaultBranch != DefaultBranch || len(cfg.Remotes) != 0 {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestListRefs(t *testing.T) {
	r, _ := initTestRepo(t)
	head := mustHead(t, r, "master")

	if err := r.SetBranchHead("origin/master", head, "", "fetch"); err != nil {
		t.Fatal(err)
	}

	all, err := r.ListRefs("")
	if err != nil {
		t.Fatalf("ListRefs: %v", err)
	}
	if all["heads/master"] != head || all["heads/origin/master"] != head {
		t.Fatalf("ListRefs = %v", all)
	}

	branches, err := r.ListBranches()
	if err != nil {
		t.Fatalf("ListBranches: %v", err)
	}
	if len(branches) != 2 || branches[0] != "master" || branches[1] != "origin/master" {
		t.Fatalf("ListBranches = %v", branches)
	}
}
