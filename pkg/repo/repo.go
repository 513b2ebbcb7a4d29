package repo

import (
	"log/slog"
	"time"

	"github.com/odvcencio/gitlet/pkg/object"
)

// Repo is an opened gitlet repository. It is the explicit context every
// operation runs against; there is no process-wide state.
type Repo struct {
	RootDir   string        // working directory root
	GitletDir string        // .gitlet/ directory
	Store     *object.Store // content-addressed object store

	// Logger receives operation diagnostics. Nil discards them.
	Logger *slog.Logger
	// Clock supplies commit timestamps. Nil means time.Now.
	Clock func() time.Time
	// Signer, when set, signs every commit created through this Repo.
	Signer CommitSigner
}

func (r *Repo) log() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}

func (r *Repo) now() time.Time {
	if r.Clock == nil {
		return time.Now()
	}
	return r.Clock()
}
