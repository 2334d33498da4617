package remote

import (
	"context"
	"errors"
	"fmt"

	gh "github.com/pickbench/pickbench/internal/github"
)

// RefManager handles the lifecycle of temporary refs in one repository.
type RefManager struct {
	owner  string
	repo   string
	client gh.Client
}

// NewRefManager returns a RefManager scoped to the given repository.
func NewRefManager(owner, repo string, client gh.Client) *RefManager {
	return &RefManager{owner: owner, repo: repo, client: client}
}

// Create points ref at sha.
func (m *RefManager) Create(ctx context.Context, ref, sha string) error {
	return m.client.CreateRef(ctx, m.owner, m.repo, ref, sha)
}

// Update force-moves ref to sha.
func (m *RefManager) Update(ctx context.Context, ref, sha string) error {
	return m.client.UpdateRef(ctx, m.owner, m.repo, ref, sha, true)
}

// Delete removes ref.
func (m *RefManager) Delete(ctx context.Context, ref string) error {
	return m.client.DeleteRef(ctx, m.owner, m.repo, ref)
}

// Resolve returns the commit SHA ref points at, or gh.ErrRefNotFound.
func (m *RefManager) Resolve(ctx context.Context, ref string) (string, error) {
	return m.client.GetRefSHA(ctx, m.owner, m.repo, ref)
}

// WithScopedRef creates a temporary uniquely-named ref derived from the
// declared name, pointed at sha, invokes action with the temporary name, and
// deletes the ref on every exit path. The action's error is preserved; a
// deletion failure is joined to it rather than masking it.
func (m *RefManager) WithScopedRef(ctx context.Context, ref, sha string, action func(ctx context.Context, tmpRef string) error) error {
	tmpRef := gh.UniqueRefName(ref)
	if err := m.Create(ctx, tmpRef, sha); err != nil {
		return fmt.Errorf("create scoped ref %q: %w", tmpRef, err)
	}

	actionErr := action(ctx, tmpRef)

	if err := m.Delete(ctx, tmpRef); err != nil {
		err = fmt.Errorf("delete scoped ref %q: %w", tmpRef, err)
		return errors.Join(actionErr, err)
	}

	return actionErr
}
