package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gitlet/pkg/logging"
	"github.com/odvcencio/gitlet/pkg/repo"
)

// session is an opened repository plus the logger its config asked for.
type session struct {
	*repo.Repo
	cfg    *repo.Config
	logger *logging.Logger
}

func (s *session) Close() error {
	return s.logger.Close()
}

// openRepo opens the repository containing the working directory and wires
// its logger from the [log] config section and the --verbose flag.
func openRepo(cmd *cobra.Command) (*session, error) {
	r, err := repo.Open(".")
	if err != nil {
		return nil, err
	}
	return newSession(cmd, r)
}

func newSession(cmd *cobra.Command, r *repo.Repo) (*session, error) {
	cfg, err := r.ReadConfig()
	if err != nil {
		return nil, err
	}
	opts, err := logging.FromConfig(cfg.Log, r.GitletDir)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	opts.Console = cmd.ErrOrStderr()
	opts.Verbose, _ = cmd.Flags().GetBool("verbose")

	logger, err := logging.New(opts)
	if err != nil {
		return nil, err
	}
	r.Logger = logger.Logger
	return &session{Repo: r, cfg: cfg, logger: logger}, nil
}
