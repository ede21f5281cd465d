// Package gitsource keeps a local checkout of a remote content repository in
// sync so the docs can be served straight from git.
package gitsource

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	ferrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// Config locates the repository and the docs inside it.
type Config struct {
	URL         string
	Branch      string
	Path        string
	CheckoutDir string
	Token       string
	Depth       int
}

// Source clones or updates one repository.
type Source struct {
	cfg    Config
	logger *slog.Logger
}

// New returns a Source. Branch defaults to main.
func New(cfg Config, logger *slog.Logger) *Source {
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{cfg: cfg, logger: logger}
}

// ContentDir is the directory the content compiler should read.
func (s *Source) ContentDir() string {
	return filepath.Join(s.cfg.CheckoutDir, filepath.FromSlash(s.cfg.Path))
}

// Sync clones the repository when the checkout is missing, otherwise fetches
// and hard-resets the worktree to the remote branch head. It returns the
// checked-out commit.
func (s *Source) Sync(ctx context.Context) (string, error) {
	if _, err := os.Stat(filepath.Join(s.cfg.CheckoutDir, ".git")); err != nil {
		return s.clone(ctx)
	}
	return s.update(ctx)
}

func (s *Source) clone(ctx context.Context) (string, error) {
	s.logger.Debug("Cloning content repository",
		logfields.URL(s.cfg.URL),
		slog.String("branch", s.cfg.Branch),
		logfields.Path(s.cfg.CheckoutDir))
	if err := os.RemoveAll(s.cfg.CheckoutDir); err != nil {
		return "", ferrors.FileSystemError("clear checkout directory").WithCause(err).Build()
	}
	repo, err := git.PlainCloneContext(ctx, s.cfg.CheckoutDir, false, &git.CloneOptions{
		URL:           s.cfg.URL,
		ReferenceName: plumbing.NewBranchReferenceName(s.cfg.Branch),
		SingleBranch:  true,
		Depth:         s.cfg.Depth,
		Auth:          s.auth(),
		Tags:          git.NoTags,
	})
	if err != nil {
		return "", s.classify("clone", err)
	}
	commit, err := headCommit(repo)
	if err != nil {
		return "", err
	}
	s.logger.Info("Content repository cloned", logfields.URL(s.cfg.URL), slog.String("commit", short(commit)))
	return commit, nil
}

func (s *Source) update(ctx context.Context) (string, error) {
	repo, err := git.PlainOpen(s.cfg.CheckoutDir)
	if err != nil {
		return "", ferrors.GitError("open checkout").WithCause(err).WithContext("path", s.cfg.CheckoutDir).Build()
	}
	refspec := ggitcfg.RefSpec("+refs/heads/" + s.cfg.Branch + ":refs/remotes/origin/" + s.cfg.Branch)
	err = repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: "origin",
		RefSpecs:   []ggitcfg.RefSpec{refspec},
		Depth:      s.cfg.Depth,
		Auth:       s.auth(),
		Tags:       git.NoTags,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return "", s.classify("fetch", err)
	}

	remote, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", s.cfg.Branch), true)
	if err != nil {
		return "", ferrors.GitError("resolve remote branch").WithCause(err).WithContext("branch", s.cfg.Branch).Build()
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", ferrors.GitError("open worktree").WithCause(err).Build()
	}
	local := plumbing.NewBranchReferenceName(s.cfg.Branch)
	if err := repo.Storer.SetReference(plumbing.NewHashReference(local, remote.Hash())); err != nil {
		return "", ferrors.GitError("move local branch").WithCause(err).Build()
	}
	if err := wt.Checkout(&git.CheckoutOptions{Branch: local, Force: true}); err != nil {
		return "", ferrors.GitError("checkout branch").WithCause(err).WithContext("branch", s.cfg.Branch).Build()
	}
	if err := wt.Reset(&git.ResetOptions{Commit: remote.Hash(), Mode: git.HardReset}); err != nil {
		return "", ferrors.GitError("reset worktree").WithCause(err).Build()
	}

	commit := remote.Hash().String()
	s.logger.Info("Content repository updated", logfields.URL(s.cfg.URL), slog.String("commit", short(commit)))
	return commit, nil
}

func (s *Source) auth() transport.AuthMethod {
	if s.cfg.Token == "" {
		return nil
	}
	return &http.BasicAuth{Username: "token", Password: s.cfg.Token}
}

// classify maps go-git failures onto error categories so callers can tell
// credential problems from transient network ones.
func (s *Source) classify(op string, err error) error {
	l := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, transport.ErrAuthenticationRequired), errors.Is(err, transport.ErrAuthorizationFailed),
		strings.Contains(l, "authentication"):
		return ferrors.ConfigError("git authentication failed").
			WithCause(err).WithContext("op", op).WithContext("url", s.cfg.URL).Build()
	case errors.Is(err, transport.ErrRepositoryNotFound), strings.Contains(l, "couldn't find remote ref"):
		return ferrors.NotFoundError("git repository or branch not found").
			WithCause(err).WithContext("op", op).WithContext("url", s.cfg.URL).WithContext("branch", s.cfg.Branch).Build()
	default:
		return ferrors.GitError("git "+op+" failed").
			WithCause(err).WithContext("url", s.cfg.URL).Build()
	}
}

func headCommit(repo *git.Repository) (string, error) {
	ref, err := repo.Head()
	if err != nil {
		return "", ferrors.GitError("resolve HEAD").WithCause(err).Build()
	}
	return ref.Hash().String(), nil
}

func short(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
