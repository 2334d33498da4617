package remote

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	gh "github.com/pickbench/pickbench/internal/github"
	"github.com/pickbench/pickbench/internal/state"
)

// maxChainLength bounds the parent walk so a cyclic or runaway chain surfaces
// as an error instead of an endless read.
const maxChainLength = 10000

// Reader reconstructs a ref's commit chain from a hosted repository.
type Reader struct {
	owner  string
	repo   string
	client gh.Client
	log    *slog.Logger
}

// NewReader returns a Reader scoped to the given repository.
func NewReader(owner, repo string, client gh.Client, log *slog.Logger) *Reader {
	return &Reader{owner: owner, repo: repo, client: client, log: log}
}

// ReadRef resolves ref to its tip and walks the parent chain down to the root
// commit, returning the full chain oldest first. The root (initial) commit is
// element 0; callers comparing against a declared RefState skip it. Trailing
// newlines on commit messages are stripped, matching the normalization git
// applies when recording messages locally.
//
// Only single-parent chains are supported: a merge commit anywhere in the
// chain is an error.
func (r *Reader) ReadRef(ctx context.Context, ref string) (state.RefState, error) {
	if r.client == nil {
		return nil, fmt.Errorf("github client is required")
	}

	sha, err := r.client.GetRefSHA(ctx, r.owner, r.repo, ref)
	if err != nil {
		return nil, err
	}

	// Walked tip first; reversed into oldest-first order below.
	var chain state.RefState
	for {
		if len(chain) >= maxChainLength {
			return nil, fmt.Errorf("ref %s: commit chain exceeds %d commits", ref, maxChainLength)
		}

		commit, err := r.readCommit(ctx, sha)
		if err != nil {
			return nil, fmt.Errorf("ref %s: %w", ref, err)
		}
		chain = append(chain, commit.commit)

		switch len(commit.parents) {
		case 0:
			reverse(chain)
			if r.log != nil {
				r.log.Debug("read ref", "owner", r.owner, "repo", r.repo, "ref", ref, "commits", len(chain))
			}
			return chain, nil
		case 1:
			sha = commit.parents[0]
		default:
			return nil, fmt.Errorf("ref %s: commit %s has %d parents; merge commits are unsupported", ref, sha, len(commit.parents))
		}
	}
}

type readCommitResult struct {
	commit  state.Commit
	parents []string
}

func (r *Reader) readCommit(ctx context.Context, sha string) (readCommitResult, error) {
	info, err := r.client.GetCommit(ctx, r.owner, r.repo, sha)
	if err != nil {
		return readCommitResult{}, err
	}

	blobSHA, err := r.client.GetFileBlobSHA(ctx, r.owner, r.repo, info.TreeSHA, state.PayloadFile)
	if err != nil {
		return readCommitResult{}, fmt.Errorf("commit %s: %w", sha, err)
	}

	content, err := r.client.GetBlobContent(ctx, r.owner, r.repo, blobSHA)
	if err != nil {
		return readCommitResult{}, fmt.Errorf("commit %s: %w", sha, err)
	}

	return readCommitResult{
		commit:  state.Commit{Lines: state.SplitLines(content), Message: strings.TrimRight(info.Message, "\n")},
		parents: info.ParentSHAs,
	}, nil
}

func reverse(commits state.RefState) {
	for i, j := 0, len(commits)-1; i < j; i, j = i+1, j-1 {
		commits[i], commits[j] = commits[j], commits[i]
	}
}
