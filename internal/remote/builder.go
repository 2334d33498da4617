// Package remote materializes declarative repository states against a hosted
// git-data API and reads them back, using temporary uniquely-named refs so
// concurrent test runs can share one backing repository.
package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	gh "github.com/pickbench/pickbench/internal/github"
	"github.com/pickbench/pickbench/internal/state"
)

// RefDetails describes one materialized ref: the temporary physical ref name
// and every commit identifier in its chain, root first. SHAs[0] is always the
// shared initial commit.
type RefDetails struct {
	Ref  string   `json:"ref"`
	SHAs []string `json:"shas"`
}

// Fixture is the result of a successful (or partially successful) build. The
// caller owns its lifecycle and must invoke Cleanup to release the temporary
// refs it holds.
type Fixture struct {
	InitialSHA string
	Refs       map[string]RefDetails

	refs *RefManager
}

// Builder materializes RepoStates against a hosted repository.
type Builder struct {
	owner  string
	repo   string
	client gh.Client
	log    *slog.Logger
}

// NewBuilder returns a Builder scoped to the given repository.
func NewBuilder(owner, repo string, client gh.Client, log *slog.Logger) *Builder {
	return &Builder{owner: owner, repo: repo, client: client, log: log}
}

// Build creates the declared commit chains and one temporary ref per declared
// ref. Chains for distinct refs are built concurrently; within a chain each
// commit needs its parent's identifier, so creation is sequential.
//
// On failure the returned Fixture, when non-nil, holds every ref that was
// fully materialized before the failure; the caller must still Cleanup it.
func (b *Builder) Build(ctx context.Context, s state.RepoState) (*Fixture, error) {
	if b.client == nil {
		return nil, fmt.Errorf("github client is required")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	initialSHA, err := b.createCommit(ctx, s.InitialCommit, "")
	if err != nil {
		return nil, fmt.Errorf("create initial commit: %w", err)
	}

	if b.log != nil {
		b.log.Debug("created initial commit", "owner", b.owner, "repo", b.repo, "sha", initialSHA)
	}

	names := make([]string, 0, len(s.RefsCommits))
	for name := range s.RefsCommits {
		names = append(names, name)
	}

	type refResult struct {
		details RefDetails
		err     error
	}

	manager := NewRefManager(b.owner, b.repo, b.client)
	results := make([]refResult, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			details, err := b.buildRef(ctx, manager, name, initialSHA, s.RefsCommits[name])
			results[i] = refResult{details: details, err: err}
		}(i, name)
	}
	wg.Wait()

	fixture := &Fixture{
		InitialSHA: initialSHA,
		Refs:       make(map[string]RefDetails, len(names)),
		refs:       manager,
	}

	var errs []error
	for i, name := range names {
		if results[i].err != nil {
			errs = append(errs, fmt.Errorf("build ref %q: %w", name, results[i].err))
			continue
		}
		fixture.Refs[name] = results[i].details
	}

	if len(errs) > 0 {
		if len(fixture.Refs) == 0 {
			return nil, errors.Join(errs...)
		}
		return fixture, errors.Join(errs...)
	}

	return fixture, nil
}

// buildRef folds a ref's commit list into a chain rooted at initialSHA, then
// pins a temporary ref at the tip.
func (b *Builder) buildRef(ctx context.Context, manager *RefManager, name, initialSHA string, commits state.RefState) (RefDetails, error) {
	shas := make([]string, 0, len(commits)+1)
	shas = append(shas, initialSHA)

	parent := initialSHA
	for _, commit := range commits {
		sha, err := b.createCommit(ctx, commit, parent)
		if err != nil {
			return RefDetails{}, fmt.Errorf("create commit %q: %w", commit.Message, err)
		}
		shas = append(shas, sha)
		parent = sha
	}

	tmpRef := gh.UniqueRefName(name)
	if err := manager.Create(ctx, tmpRef, parent); err != nil {
		return RefDetails{}, err
	}

	if b.log != nil {
		b.log.Debug("materialized ref", "declared", name, "ref", tmpRef, "commits", len(shas))
	}

	return RefDetails{Ref: tmpRef, SHAs: shas}, nil
}

// createCommit composes the blob, tree, and commit objects for one fixture
// commit. parentSHA empty means a root commit.
func (b *Builder) createCommit(ctx context.Context, commit state.Commit, parentSHA string) (string, error) {
	blobSHA, err := b.client.CreateBlob(ctx, b.owner, b.repo, commit.Content())
	if err != nil {
		return "", err
	}

	treeSHA, err := b.client.CreateTree(ctx, b.owner, b.repo, state.PayloadFile, blobSHA)
	if err != nil {
		return "", err
	}

	return b.client.CreateCommit(ctx, b.owner, b.repo, treeSHA, commit.Message, parentSHA)
}

// CreatePullRequest opens a pull request from head into base. A thin
// pass-through for tests exercising pull-request workflows against fixtures.
func (b *Builder) CreatePullRequest(ctx context.Context, base, head string) (int, error) {
	pr, err := b.client.CreatePullRequest(ctx, b.owner, b.repo, gh.CreatePROptions{
		Title: fmt.Sprintf("fixture: %s into %s", head, base),
		Head:  head,
		Base:  base,
	})
	if err != nil {
		return 0, err
	}
	return pr.Number, nil
}

// Cleanup deletes every temporary ref the fixture created. Deletions run
// concurrently; every ref is attempted regardless of individual failures, and
// each failure is reported by name in the joined error.
func (f *Fixture) Cleanup(ctx context.Context) error {
	if f == nil || len(f.Refs) == 0 {
		return nil
	}

	type target struct {
		declared string
		ref      string
	}
	targets := make([]target, 0, len(f.Refs))
	for declared, details := range f.Refs {
		targets = append(targets, target{declared: declared, ref: details.Ref})
	}

	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, tgt := range targets {
		wg.Add(1)
		go func(i int, tgt target) {
			defer wg.Done()
			if err := f.refs.Delete(ctx, tgt.ref); err != nil {
				errs[i] = fmt.Errorf("cleanup ref %q (%s): %w", tgt.declared, tgt.ref, err)
			}
		}(i, tgt)
	}
	wg.Wait()

	return errors.Join(errs...)
}
