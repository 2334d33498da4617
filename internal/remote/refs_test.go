package remote_test

import (
	"context"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	gh "github.com/pickbench/pickbench/internal/github"
	"github.com/pickbench/pickbench/internal/remote"
)

var _ = Describe("RefManager", func() {
	var (
		ctx     context.Context
		client  *fakeObjectClient
		manager *remote.RefManager
		tipSHA  string
	)

	BeforeEach(func() {
		ctx = context.Background()
		client = newFakeObjectClient()
		manager = remote.NewRefManager("owner", "repo", client)

		blob, err := client.CreateBlob(ctx, "owner", "repo", "A")
		Expect(err).NotTo(HaveOccurred())
		tree, err := client.CreateTree(ctx, "owner", "repo", "content.txt", blob)
		Expect(err).NotTo(HaveOccurred())
		tipSHA, err = client.CreateCommit(ctx, "owner", "repo", tree, "init", "")
		Expect(err).NotTo(HaveOccurred())
	})

	It("creates, resolves, updates, and deletes refs", func() {
		Expect(manager.Create(ctx, "tmp-ref", tipSHA)).To(Succeed())

		sha, err := manager.Resolve(ctx, "tmp-ref")
		Expect(err).NotTo(HaveOccurred())
		Expect(sha).To(Equal(tipSHA))

		blob, err := client.CreateBlob(ctx, "owner", "repo", "B")
		Expect(err).NotTo(HaveOccurred())
		tree, err := client.CreateTree(ctx, "owner", "repo", "content.txt", blob)
		Expect(err).NotTo(HaveOccurred())
		next, err := client.CreateCommit(ctx, "owner", "repo", tree, "next", tipSHA)
		Expect(err).NotTo(HaveOccurred())

		Expect(manager.Update(ctx, "tmp-ref", next)).To(Succeed())
		sha, err = manager.Resolve(ctx, "tmp-ref")
		Expect(err).NotTo(HaveOccurred())
		Expect(sha).To(Equal(next))

		Expect(manager.Delete(ctx, "tmp-ref")).To(Succeed())
		_, err = manager.Resolve(ctx, "tmp-ref")
		Expect(errors.Is(err, gh.ErrRefNotFound)).To(BeTrue())
	})

	Describe("WithScopedRef", func() {
		It("exposes a temporary ref to the action and removes it afterward", func() {
			var seen string
			err := manager.WithScopedRef(ctx, "feature", tipSHA, func(ctx context.Context, tmpRef string) error {
				seen = tmpRef
				sha, err := manager.Resolve(ctx, tmpRef)
				Expect(err).NotTo(HaveOccurred())
				Expect(sha).To(Equal(tipSHA))
				return nil
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(seen).To(HavePrefix("feature-"))

			_, err = manager.Resolve(ctx, seen)
			Expect(errors.Is(err, gh.ErrRefNotFound)).To(BeTrue())
		})

		It("deletes the temporary ref even when the action fails, re-raising the failure", func() {
			actionErr := fmt.Errorf("assertion blew up")
			var seen string

			err := manager.WithScopedRef(ctx, "feature", tipSHA, func(ctx context.Context, tmpRef string) error {
				seen = tmpRef
				return actionErr
			})
			Expect(errors.Is(err, actionErr)).To(BeTrue())

			_, lookupErr := manager.Resolve(ctx, seen)
			Expect(errors.Is(lookupErr, gh.ErrRefNotFound)).To(BeTrue())
		})

		It("joins a deletion failure to the action failure", func() {
			actionErr := fmt.Errorf("action failed")
			client.deleteRefErr = func(ref string) error { return fmt.Errorf("delete denied") }

			err := manager.WithScopedRef(ctx, "feature", tipSHA, func(ctx context.Context, tmpRef string) error {
				return actionErr
			})
			Expect(errors.Is(err, actionErr)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("delete scoped ref"))
		})
	})
})
