package gh

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	github "github.com/google/go-github/v55/github"
	"golang.org/x/oauth2"
)

const defaultUserAgent = "pickbench"

// NewRESTFactory returns a GitHub client factory backed by the go-github REST client. When
// base and upload URLs are provided, the factory targets a GitHub Enterprise instance.
func NewRESTFactory(baseURL, uploadURL string) Factory {
	return &restFactory{
		userAgent: defaultUserAgent,
		baseURL:   strings.TrimSpace(baseURL),
		uploadURL: strings.TrimSpace(uploadURL),
	}
}

type restFactory struct {
	userAgent string
	baseURL   string
	uploadURL string
}

type restClient struct {
	client *github.Client
}

func (f *restFactory) New(ctx context.Context, token string) (Client, error) {
	if token == "" {
		return nil, fmt.Errorf("github token is required")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)

	if f.baseURL == "" && f.uploadURL != "" {
		return nil, fmt.Errorf("github upload url cannot be set without base url")
	}

	var ghClient *github.Client
	if f.baseURL != "" {
		baseURLNormalized, err := normalizeGitHubURL(f.baseURL)
		if err != nil {
			return nil, fmt.Errorf("parse github base url: %w", err)
		}

		uploadURL := f.uploadURL
		if uploadURL == "" {
			return nil, fmt.Errorf("github upload url must be provided when base url is set")
		}

		uploadURLNormalized, err := normalizeGitHubURL(uploadURL)
		if err != nil {
			return nil, fmt.Errorf("parse github upload url: %w", err)
		}

		ghClient, err = github.NewClient(tc).WithEnterpriseURLs(baseURLNormalized, uploadURLNormalized)
		if err != nil {
			return nil, fmt.Errorf("construct enterprise github client: %w", err)
		}
	} else {
		ghClient = github.NewClient(tc)
	}

	if f.userAgent != "" {
		ghClient.UserAgent = f.userAgent
	}

	return &restClient{client: ghClient}, nil
}

func normalizeGitHubURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("url cannot be empty")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	if parsed.Scheme == "" {
		return "", fmt.Errorf("url must include scheme (e.g. https://)")
	}

	if parsed.Host == "" {
		return "", fmt.Errorf("url must include host")
	}

	if parsed.Path == "" {
		parsed.Path = "/"
	} else if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}

	parsed.RawQuery = ""
	parsed.Fragment = ""

	return parsed.String(), nil
}

func (c *restClient) CreateBlob(ctx context.Context, owner, repo, content string) (string, error) {
	blob := &github.Blob{
		Content:  github.String(content),
		Encoding: github.String("utf-8"),
	}

	created, _, err := c.client.Git.CreateBlob(ctx, owner, repo, blob)
	if err != nil {
		err = classifyGitHubError(err)
		return "", fmt.Errorf("create blob: %w", err)
	}
	return created.GetSHA(), nil
}

func (c *restClient) CreateTree(ctx context.Context, owner, repo, path, blobSHA string) (string, error) {
	entries := []*github.TreeEntry{{
		Path: github.String(path),
		Mode: github.String("100644"),
		Type: github.String("blob"),
		SHA:  github.String(blobSHA),
	}}

	tree, _, err := c.client.Git.CreateTree(ctx, owner, repo, "", entries)
	if err != nil {
		err = classifyGitHubError(err)
		return "", fmt.Errorf("create tree: %w", err)
	}
	return tree.GetSHA(), nil
}

func (c *restClient) CreateCommit(ctx context.Context, owner, repo, treeSHA, message, parentSHA string) (string, error) {
	commit := &github.Commit{
		Message: github.String(message),
		Tree:    &github.Tree{SHA: github.String(treeSHA)},
	}
	if parentSHA != "" {
		commit.Parents = []*github.Commit{{SHA: github.String(parentSHA)}}
	}

	created, _, err := c.client.Git.CreateCommit(ctx, owner, repo, commit)
	if err != nil {
		err = classifyGitHubError(err)
		return "", fmt.Errorf("create commit: %w", err)
	}
	return created.GetSHA(), nil
}

func (c *restClient) GetCommit(ctx context.Context, owner, repo, sha string) (CommitInfo, error) {
	commit, _, err := c.client.Git.GetCommit(ctx, owner, repo, sha)
	if err != nil {
		err = classifyGitHubError(err)
		return CommitInfo{}, fmt.Errorf("get commit %s: %w", sha, err)
	}

	info := CommitInfo{
		SHA:     commit.GetSHA(),
		Message: commit.GetMessage(),
	}
	if tree := commit.GetTree(); tree != nil {
		info.TreeSHA = tree.GetSHA()
	}
	for _, parent := range commit.Parents {
		if parent == nil {
			continue
		}
		if parentSHA := parent.GetSHA(); parentSHA != "" {
			info.ParentSHAs = append(info.ParentSHAs, parentSHA)
		}
	}

	return info, nil
}

func (c *restClient) GetFileBlobSHA(ctx context.Context, owner, repo, treeSHA, path string) (string, error) {
	tree, _, err := c.client.Git.GetTree(ctx, owner, repo, treeSHA, false)
	if err != nil {
		err = classifyGitHubError(err)
		return "", fmt.Errorf("get tree %s: %w", treeSHA, err)
	}

	for _, entry := range tree.Entries {
		if entry == nil {
			continue
		}
		if entry.GetPath() == path {
			return entry.GetSHA(), nil
		}
	}

	return "", fmt.Errorf("tree %s has no entry %q", treeSHA, path)
}

func (c *restClient) GetBlobContent(ctx context.Context, owner, repo, blobSHA string) (string, error) {
	blob, _, err := c.client.Git.GetBlob(ctx, owner, repo, blobSHA)
	if err != nil {
		err = classifyGitHubError(err)
		return "", fmt.Errorf("get blob %s: %w", blobSHA, err)
	}

	raw := blob.GetContent()
	switch blob.GetEncoding() {
	case "base64":
		decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(raw, "\n", ""))
		if err != nil {
			return "", fmt.Errorf("decode blob %s: %w", blobSHA, err)
		}
		return string(decoded), nil
	case "", "utf-8":
		return raw, nil
	default:
		return "", fmt.Errorf("blob %s has unsupported encoding %q", blobSHA, blob.GetEncoding())
	}
}

func (c *restClient) GetRefSHA(ctx context.Context, owner, repo, ref string) (string, error) {
	reference, resp, err := c.client.Git.GetRef(ctx, owner, repo, "heads/"+ref)
	if err != nil {
		if isNotFound(resp, err) {
			return "", fmt.Errorf("get ref %s: %w", ref, ErrRefNotFound)
		}
		err = classifyGitHubError(err)
		return "", fmt.Errorf("get ref %s: %w", ref, err)
	}

	object := reference.GetObject()
	if object == nil || object.GetSHA() == "" {
		return "", fmt.Errorf("ref %s resolved without a target object", ref)
	}
	return object.GetSHA(), nil
}

func (c *restClient) CreateRef(ctx context.Context, owner, repo, ref, sha string) error {
	reference := &github.Reference{
		Ref:    github.String("refs/heads/" + ref),
		Object: &github.GitObject{SHA: github.String(sha)},
	}

	if _, _, err := c.client.Git.CreateRef(ctx, owner, repo, reference); err != nil {
		err = classifyGitHubError(err)
		return fmt.Errorf("create ref %s: %w", ref, err)
	}
	return nil
}

func (c *restClient) UpdateRef(ctx context.Context, owner, repo, ref, sha string, force bool) error {
	reference := &github.Reference{
		Ref:    github.String("refs/heads/" + ref),
		Object: &github.GitObject{SHA: github.String(sha)},
	}

	if _, _, err := c.client.Git.UpdateRef(ctx, owner, repo, reference, force); err != nil {
		err = classifyGitHubError(err)
		return fmt.Errorf("update ref %s: %w", ref, err)
	}
	return nil
}

func (c *restClient) DeleteRef(ctx context.Context, owner, repo, ref string) error {
	resp, err := c.client.Git.DeleteRef(ctx, owner, repo, "heads/"+ref)
	if err != nil {
		if isNotFound(resp, err) {
			return fmt.Errorf("delete ref %s: %w", ref, ErrRefNotFound)
		}
		err = classifyGitHubError(err)
		return fmt.Errorf("delete ref %s: %w", ref, err)
	}
	return nil
}

func (c *restClient) CreatePullRequest(ctx context.Context, owner, repo string, input CreatePROptions) (PullRequest, error) {
	pr, _, err := c.client.PullRequests.Create(ctx, owner, repo, &github.NewPullRequest{
		Title: github.String(input.Title),
		Head:  github.String(input.Head),
		Base:  github.String(input.Base),
		Body:  github.String(input.Body),
		Draft: github.Bool(input.Draft),
	})
	if err != nil {
		err = classifyGitHubError(err)
		return PullRequest{}, fmt.Errorf("create pull request: %w", err)
	}

	result := PullRequest{
		URL:    pr.GetHTMLURL(),
		Number: pr.GetNumber(),
	}
	if head := pr.GetHead(); head != nil {
		result.Head = head.GetRef()
	}
	if base := pr.GetBase(); base != nil {
		result.Base = base.GetRef()
	}

	return result, nil
}

func isNotFound(resp *github.Response, err error) bool {
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return true
	}
	var githubErr *github.ErrorResponse
	if errors.As(err, &githubErr) {
		if githubErr.Response != nil && githubErr.Response.StatusCode == http.StatusNotFound {
			return true
		}
	}
	return false
}

func classifyGitHubError(err error) error {
	if err == nil {
		return nil
	}
	if isRetryableGitHubError(err) {
		return &retryableError{err: err}
	}
	return err
}

func isRetryableGitHubError(err error) bool {
	if err == nil {
		return false
	}

	var rateLimitErr *github.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return true
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return true
	}

	var acceptedErr *github.AcceptedError
	if errors.As(err, &acceptedErr) {
		return true
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) {
		if respErr.Response != nil {
			code := respErr.Response.StatusCode
			if code == http.StatusTooManyRequests || (code >= 500 && code <= 599) {
				return true
			}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return true
		}
	}

	return false
}
