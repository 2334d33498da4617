package gh

import (
	"context"
	"errors"
)

// CommitInfo carries the commit metadata the readers need: message, tree, and
// parent identifiers as recorded on the backend.
type CommitInfo struct {
	SHA        string
	Message    string
	TreeSHA    string
	ParentSHAs []string
}

// PullRequest represents a newly created pull request.
type PullRequest struct {
	URL    string
	Number int
	Head   string
	Base   string
}

// CreatePROptions defines the metadata required to open a pull request.
type CreatePROptions struct {
	Title string
	Body  string
	Head  string
	Base  string
	Draft bool
}

// Client exposes the low-level git-data operations the fixture engine needs,
// scoped to an owner/repository pair supplied per call.
type Client interface {
	CreateBlob(ctx context.Context, owner, repo, content string) (string, error)
	CreateTree(ctx context.Context, owner, repo, path, blobSHA string) (string, error)
	// CreateCommit creates a commit pointing at treeSHA. An empty parentSHA
	// creates a root commit.
	CreateCommit(ctx context.Context, owner, repo, treeSHA, message, parentSHA string) (string, error)
	GetCommit(ctx context.Context, owner, repo, sha string) (CommitInfo, error)
	// GetFileBlobSHA resolves the blob identifier of path within treeSHA.
	GetFileBlobSHA(ctx context.Context, owner, repo, treeSHA, path string) (string, error)
	GetBlobContent(ctx context.Context, owner, repo, blobSHA string) (string, error)
	// GetRefSHA resolves a branch ref (short name, no refs/heads/ prefix) to
	// its tip commit SHA. Returns ErrRefNotFound when the ref does not exist.
	GetRefSHA(ctx context.Context, owner, repo, ref string) (string, error)
	CreateRef(ctx context.Context, owner, repo, ref, sha string) error
	UpdateRef(ctx context.Context, owner, repo, ref, sha string, force bool) error
	DeleteRef(ctx context.Context, owner, repo, ref string) error
	CreatePullRequest(ctx context.Context, owner, repo string, input CreatePROptions) (PullRequest, error)
}

// Factory builds concrete GitHub clients (e.g., REST-backed) for the fixture engine.
type Factory interface {
	New(ctx context.Context, token string) (Client, error)
}

// ErrRefNotFound indicates the requested ref does not exist on the backend.
var ErrRefNotFound = errors.New("github: ref not found")

// retryableError marks an error that may succeed if the operation is retried.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	if e == nil || e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// IsRetryable reports whether the supplied error resulted from a retryable GitHub
// API failure (for example, a transient network problem or rate-limited request).
// The engine performs no retries itself; callers may use this to decide.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var target *retryableError
	return errors.As(err, &target)
}
