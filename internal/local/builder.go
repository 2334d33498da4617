package local

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/pickbench/pickbench/internal/state"
)

const (
	defaultUserName  = "pickbench"
	defaultUserEmail = "pickbench@localhost"
)

// Builder materializes RepoStates inside a local directory by driving git.
type Builder struct {
	runner *Runner
	log    *slog.Logger

	// UserName and UserEmail configure the git identity for fixture commits.
	// Defaults are applied when empty.
	UserName  string
	UserEmail string
}

// NewBuilder returns a Builder using the given runner.
func NewBuilder(runner *Runner, log *slog.Logger) *Builder {
	return &Builder{runner: runner, log: log}
}

// Build initializes an empty repository in dir and materializes the declared
// state: the initial commit on the default branch, one branch per declared
// ref rooted at it, and each ref's commits applied in order. Everything is
// strictly sequential; dir holds a single working tree and a single checkout.
//
// dir must be an existing empty directory exclusively owned by this cycle.
// On failure no cleanup is attempted; the directory is the caller's to
// discard.
func (b *Builder) Build(ctx context.Context, dir string, s state.RepoState) error {
	if err := s.Validate(); err != nil {
		return err
	}

	userName := b.UserName
	if userName == "" {
		userName = defaultUserName
	}
	userEmail := b.UserEmail
	if userEmail == "" {
		userEmail = defaultUserEmail
	}

	if err := b.runner.Run(ctx, dir, "init", "--initial-branch="+s.DefaultRef); err != nil {
		return fmt.Errorf("git init: %w", err)
	}
	if err := b.runner.Run(ctx, dir, "config", "user.name", userName); err != nil {
		return fmt.Errorf("git config user.name: %w", err)
	}
	if err := b.runner.Run(ctx, dir, "config", "user.email", userEmail); err != nil {
		return fmt.Errorf("git config user.email: %w", err)
	}

	if err := b.commitPayload(ctx, dir, s.InitialCommit); err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	// Branch creation order carries no meaning; sorting keeps runs
	// reproducible.
	refs := make([]string, 0, len(s.RefsCommits))
	for ref := range s.RefsCommits {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	for _, ref := range refs {
		if ref == s.DefaultRef {
			continue
		}
		if err := b.runner.Run(ctx, dir, "branch", ref); err != nil {
			return fmt.Errorf("git branch %s: %w", ref, err)
		}
	}

	for _, ref := range refs {
		if err := b.runner.Run(ctx, dir, "checkout", ref); err != nil {
			return fmt.Errorf("git checkout %s: %w", ref, err)
		}
		for _, commit := range s.RefsCommits[ref] {
			if err := b.commitPayload(ctx, dir, commit); err != nil {
				return fmt.Errorf("ref %s: %w", ref, err)
			}
		}
		if b.log != nil {
			b.log.Debug("materialized local ref", "dir", dir, "ref", ref, "commits", len(s.RefsCommits[ref]))
		}
	}

	return nil
}

// commitPayload overwrites the payload file, stages it, and commits. Commits
// are allowed to be empty so consecutive identical payloads still produce
// distinct commits.
func (b *Builder) commitPayload(ctx context.Context, dir string, commit state.Commit) error {
	path := filepath.Join(dir, state.PayloadFile)
	if err := os.WriteFile(path, []byte(commit.Content()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", state.PayloadFile, err)
	}
	if err := b.runner.Run(ctx, dir, "add", state.PayloadFile); err != nil {
		return fmt.Errorf("git add: %w", err)
	}
	if err := b.runner.Run(ctx, dir, "commit", "--allow-empty", "-m", commit.Message); err != nil {
		return fmt.Errorf("git commit: %w", err)
	}
	return nil
}
