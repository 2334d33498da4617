package gh

import (
	"context"
	"fmt"
)

// NewNoopFactory returns a Factory that builds noop clients. Mutating calls
// succeed without side effects and return placeholder identifiers; read calls
// fail. Useful for dry-run invocations of the CLI.
func NewNoopFactory() Factory {
	return noopFactory{}
}

type noopFactory struct{}

func (noopFactory) New(ctx context.Context, token string) (Client, error) {
	return noopClient{}, nil
}

type noopClient struct{}

func (noopClient) CreateBlob(ctx context.Context, owner, repo, content string) (string, error) {
	return "noop-blob", nil
}

func (noopClient) CreateTree(ctx context.Context, owner, repo, path, blobSHA string) (string, error) {
	return "noop-tree", nil
}

func (noopClient) CreateCommit(ctx context.Context, owner, repo, treeSHA, message, parentSHA string) (string, error) {
	return "noop-commit", nil
}

func (noopClient) GetCommit(ctx context.Context, owner, repo, sha string) (CommitInfo, error) {
	return CommitInfo{}, fmt.Errorf("noop github client cannot read commits")
}

func (noopClient) GetFileBlobSHA(ctx context.Context, owner, repo, treeSHA, path string) (string, error) {
	return "", fmt.Errorf("noop github client cannot read trees")
}

func (noopClient) GetBlobContent(ctx context.Context, owner, repo, blobSHA string) (string, error) {
	return "", fmt.Errorf("noop github client cannot read blobs")
}

func (noopClient) GetRefSHA(ctx context.Context, owner, repo, ref string) (string, error) {
	return "", fmt.Errorf("get ref %s: %w", ref, ErrRefNotFound)
}

func (noopClient) CreateRef(ctx context.Context, owner, repo, ref, sha string) error {
	return nil
}

func (noopClient) UpdateRef(ctx context.Context, owner, repo, ref, sha string, force bool) error {
	return nil
}

func (noopClient) DeleteRef(ctx context.Context, owner, repo, ref string) error {
	return nil
}

func (noopClient) CreatePullRequest(ctx context.Context, owner, repo string, input CreatePROptions) (PullRequest, error) {
	return PullRequest{Head: input.Head, Base: input.Base}, nil
}
