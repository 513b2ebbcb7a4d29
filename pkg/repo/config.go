package repo

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultBranch names the branch created by Init when the config does not
// say otherwise.
const DefaultBranch = "master"

// Config mirrors .gitlet/config.toml.
type Config struct {
	Core    CoreConfig        `toml:"core"`
	Log     LogConfig         `toml:"log"`
	Signing SigningConfig     `toml:"signing"`
	Remotes map[string]string `toml:"remotes"`
}

type CoreConfig struct {
	DefaultBranch string `toml:"default_branch"`
}

// LogConfig configures the optional rotating log file. An empty File
// disables file logging.
type LogConfig struct {
	File       string `toml:"file,omitempty"`
	Level      string `toml:"level,omitempty"`
	MaxSizeMB  int    `toml:"max_size_mb,omitempty"`
	MaxBackups int    `toml:"max_backups,omitempty"`
}

// SigningConfig names the SSH private key used by `commit --sign`.
type SigningConfig struct {
	Key string `toml:"key,omitempty"`
}

// DefaultConfig is the configuration written by Init.
func DefaultConfig() *Config {
	return &Config{
		Core:    CoreConfig{DefaultBranch: DefaultBranch},
		Log:     LogConfig{Level: "info"},
		Remotes: make(map[string]string),
	}
}

func (r *Repo) configPath() string {
	return filepath.Join(r.GitletDir, "config.toml")
}

// ReadConfig reads .gitlet/config.toml. Missing config returns the defaults.
func (r *Repo) ReadConfig() (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(r.configPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("read config: decode: %w", err)
	}
	if cfg.Remotes == nil {
		cfg.Remotes = make(map[string]string)
	}
	if strings.TrimSpace(cfg.Core.DefaultBranch) == "" {
		cfg.Core.DefaultBranch = DefaultBranch
	}
	return cfg, nil
}

// WriteConfig atomically writes .gitlet/config.toml.
func (r *Repo) WriteConfig(cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Remotes == nil {
		cfg.Remotes = make(map[string]string)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: encode: %w", err)
	}
	if err := writeFileAtomic(r.configPath(), buf.Bytes()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// AddRemote registers name as a remote whose repository lives at path (the
// remote's .gitlet directory).
func (r *Repo) AddRemote(name, path string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return opError("add-remote", ErrInvalidRemoteName, "remote name is required")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return opError("add-remote", ErrInvalidPath, "remote path is required")
	}

	cfg, err := r.ReadConfig()
	if err != nil {
		return err
	}
	if _, ok := cfg.Remotes[name]; ok {
		return opError("add-remote", ErrRemoteExists, name)
	}
	cfg.Remotes[name] = filepath.ToSlash(path)
	if err := r.WriteConfig(cfg); err != nil {
		return err
	}
	r.log().Debug("remote added", "name", name, "path", path)
	return nil
}

// RemoveRemote deletes a registered remote.
func (r *Repo) RemoveRemote(name string) error {
	cfg, err := r.ReadConfig()
	if err != nil {
		return err
	}
	if _, ok := cfg.Remotes[name]; !ok {
		return opError("rm-remote", ErrUnknownRemote, name)
	}
	delete(cfg.Remotes, name)
	return r.WriteConfig(cfg)
}

// RemotePath returns the registered location of a remote. Relative paths
// are resolved against the working tree root.
func (r *Repo) RemotePath(name string) (string, error) {
	cfg, err := r.ReadConfig()
	if err != nil {
		return "", err
	}
	p, ok := cfg.Remotes[name]
	if !ok || strings.TrimSpace(p) == "" {
		return "", opError("remote", ErrUnknownRemote, name)
	}
	p = filepath.FromSlash(p)
	if !filepath.IsAbs(p) {
		p = filepath.Join(r.RootDir, p)
	}
	return filepath.Clean(p), nil
}

// Remotes returns the registered remote names, sorted.
func (r *Repo) Remotes() ([]string, error) {
	cfg, err := r.ReadConfig()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(cfg.Remotes))
	for name := range cfg.Remotes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
