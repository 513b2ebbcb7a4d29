package repo

import (
	"errors"
	"fmt"
)

// Kind classifies a failed operation. Every failing operation leaves the
// repository unchanged, whatever its kind.
type Kind int

const (
	KindInternal Kind = iota
	// KindUserInput: malformed operands.
	KindUserInput
	// KindPrecondition: the repository is not in a state that permits the
	// operation (uncommitted changes, untracked file in the way, ...).
	KindPrecondition
	// KindNotFound: an unknown commit, branch, remote, file, or blob.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindUserInput:
		return "user input"
	case KindPrecondition:
		return "precondition"
	case KindNotFound:
		return "not found"
	default:
		return "internal"
	}
}

var (
	ErrEmptyMessage          = errors.New("empty commit message")
	ErrNothingToCommit       = errors.New("no changes added to the commit")
	ErrUncommittedChanges    = errors.New("uncommitted changes")
	ErrSelfMerge             = errors.New("cannot merge a branch with itself")
	ErrUnknownBranch         = errors.New("branch does not exist")
	ErrUntrackedFileInTheWay = errors.New("untracked file in the way")
	ErrNothingToRemove       = errors.New("no reason to remove the file")
	ErrBranchExists          = errors.New("branch already exists")
	ErrCannotRemoveCurrent   = errors.New("cannot remove the current branch")
	ErrNoSuchCommit          = errors.New("no commit with that id exists")
	ErrFileNotFound          = errors.New("file does not exist")
	ErrFileNotInCommit       = errors.New("file does not exist in that commit")
	ErrNoSuchBranch          = errors.New("no such branch exists")
	ErrAlreadyOnBranch       = errors.New("no need to checkout the current branch")
	ErrNoCommitWithMessage   = errors.New("found no commit with that message")
	ErrRemoteExists          = errors.New("remote already exists")
	ErrUnknownRemote         = errors.New("remote does not exist")
	ErrAlreadyInitialized    = errors.New("repository already exists")
	ErrNotInitialized        = errors.New("not in an initialized gitlet directory")
	ErrInvalidPath           = errors.New("invalid path")
	ErrInvalidBranchName     = errors.New("invalid branch name")
	ErrInvalidRemoteName     = errors.New("invalid remote name")
)

var sentinelKinds = map[error]Kind{
	ErrEmptyMessage:          KindUserInput,
	ErrInvalidPath:           KindUserInput,
	ErrInvalidBranchName:     KindUserInput,
	ErrInvalidRemoteName:     KindUserInput,
	ErrNothingToCommit:       KindPrecondition,
	ErrUncommittedChanges:    KindPrecondition,
	ErrSelfMerge:             KindPrecondition,
	ErrUntrackedFileInTheWay: KindPrecondition,
	ErrNothingToRemove:       KindPrecondition,
	ErrBranchExists:          KindPrecondition,
	ErrCannotRemoveCurrent:   KindPrecondition,
	ErrAlreadyOnBranch:       KindPrecondition,
	ErrRemoteExists:          KindPrecondition,
	ErrAlreadyInitialized:    KindPrecondition,
	ErrUnknownBranch:         KindNotFound,
	ErrNoSuchCommit:          KindNotFound,
	ErrFileNotFound:          KindNotFound,
	ErrFileNotInCommit:       KindNotFound,
	ErrNoSuchBranch:          KindNotFound,
	ErrNoCommitWithMessage:   KindNotFound,
	ErrUnknownRemote:         KindNotFound,
	ErrNotInitialized:        KindNotFound,
}

// Error is returned by repository operations that fail a validation step.
// It unwraps to the sentinel describing the failure.
type Error struct {
	Op     string
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s: %v: %s", e.Op, e.Err, e.Detail)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// opError builds an *Error for op, taking the kind from the sentinel.
func opError(op string, sentinel error, detail string) error {
	kind, ok := sentinelKinds[sentinel]
	if !ok {
		kind = KindInternal
	}
	return &Error{Op: op, Kind: kind, Detail: detail, Err: sentinel}
}

// KindOf returns the classification of err. Errors that do not carry a
// Kind report KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	for sentinel, kind := range sentinelKinds {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindInternal
}
