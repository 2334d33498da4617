package remote_test

import (
	"context"
	"errors"
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	gh "github.com/pickbench/pickbench/internal/github"
	"github.com/pickbench/pickbench/internal/remote"
	"github.com/pickbench/pickbench/internal/state"
)

var _ = Describe("Builder", func() {
	var (
		ctx     context.Context
		client  *fakeObjectClient
		builder *remote.Builder
		decl    state.RepoState
	)

	BeforeEach(func() {
		ctx = context.Background()
		client = newFakeObjectClient()
		builder = remote.NewBuilder("owner", "repo", client, nil)
		decl = state.RepoState{
			InitialCommit: state.Commit{Lines: []string{"A"}, Message: "init"},
			DefaultRef:    "main",
			RefsCommits: map[string]state.RefState{
				"main": {
					{Lines: []string{"A", "B"}, Message: "add B"},
				},
				"feature": {
					{Lines: []string{"A", "C"}, Message: "add C"},
					{Lines: []string{"A", "C", "D"}, Message: "add D"},
				},
			},
		}
	})

	It("rejects invalid states before touching the backend", func() {
		_, err := builder.Build(ctx, state.RepoState{})
		Expect(err).To(HaveOccurred())
		Expect(client.refCount()).To(Equal(0))
	})

	It("materializes every declared ref with a unique temporary name", func() {
		fixture, err := builder.Build(ctx, decl)
		Expect(err).NotTo(HaveOccurred())
		Expect(fixture.Refs).To(HaveLen(2))

		main := fixture.Refs["main"]
		feature := fixture.Refs["feature"]

		Expect(main.Ref).To(HavePrefix("main-"))
		Expect(feature.Ref).To(HavePrefix("feature-"))
		Expect(main.Ref).NotTo(Equal(feature.Ref))

		Expect(client.refCount()).To(Equal(2))
	})

	It("returns root-to-tip identifier chains including the initial commit", func() {
		fixture, err := builder.Build(ctx, decl)
		Expect(err).NotTo(HaveOccurred())

		feature := fixture.Refs["feature"]
		Expect(feature.SHAs).To(HaveLen(len(decl.RefsCommits["feature"]) + 1))
		Expect(feature.SHAs[0]).To(Equal(fixture.InitialSHA))

		// Each commit's recorded parent must be the previous chain element.
		for i := 1; i < len(feature.SHAs); i++ {
			info, err := client.GetCommit(ctx, "owner", "repo", feature.SHAs[i])
			Expect(err).NotTo(HaveOccurred())
			Expect(info.ParentSHAs).To(Equal([]string{feature.SHAs[i-1]}))
		}

		root, err := client.GetCommit(ctx, "owner", "repo", feature.SHAs[0])
		Expect(err).NotTo(HaveOccurred())
		Expect(root.ParentSHAs).To(BeEmpty())
		Expect(root.Message).To(Equal("init"))
	})

	It("points each temporary ref at its chain tip", func() {
		fixture, err := builder.Build(ctx, decl)
		Expect(err).NotTo(HaveOccurred())

		for declared, details := range fixture.Refs {
			tip, err := client.GetRefSHA(ctx, "owner", "repo", details.Ref)
			Expect(err).NotTo(HaveOccurred(), "ref %s", declared)
			Expect(tip).To(Equal(details.SHAs[len(details.SHAs)-1]))
		}
	})

	It("round-trips declared state through build and read-back", func() {
		fixture, err := builder.Build(ctx, decl)
		Expect(err).NotTo(HaveOccurred())

		reader := remote.NewReader("owner", "repo", client, nil)
		for declared, details := range fixture.Refs {
			chain, err := reader.ReadRef(ctx, details.Ref)
			Expect(err).NotTo(HaveOccurred())

			Expect(chain[0]).To(Equal(decl.InitialCommit))
			Expect(chain[1:]).To(Equal(decl.RefsCommits[declared]))
		}
	})

	It("surfaces build failures and keeps successfully built refs for cleanup", func() {
		client.createRefErr = func(ref string) error {
			if strings.HasPrefix(ref, "feature-") {
				return fmt.Errorf("boom")
			}
			return nil
		}

		fixture, err := builder.Build(ctx, decl)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring(`build ref "feature"`))

		Expect(fixture).NotTo(BeNil())
		Expect(fixture.Refs).To(HaveKey("main"))
		Expect(fixture.Refs).NotTo(HaveKey("feature"))

		Expect(fixture.Cleanup(ctx)).To(Succeed())
		Expect(client.refCount()).To(Equal(0))
	})

	It("fails the whole build when the initial commit cannot be created", func() {
		client.createBlobErr = fmt.Errorf("unavailable")

		fixture, err := builder.Build(ctx, decl)
		Expect(err).To(HaveOccurred())
		Expect(fixture).To(BeNil())
	})

	It("opens pull requests as a pass-through", func() {
		number, err := builder.CreatePullRequest(ctx, "main", "feature-abc")
		Expect(err).NotTo(HaveOccurred())
		Expect(number).To(Equal(1))
		Expect(client.prs).To(HaveLen(1))
		Expect(client.prs[0].Base).To(Equal("main"))
		Expect(client.prs[0].Head).To(Equal("feature-abc"))
	})

	Describe("Cleanup", func() {
		It("deletes every temporary ref", func() {
			fixture, err := builder.Build(ctx, decl)
			Expect(err).NotTo(HaveOccurred())
			Expect(client.refCount()).To(Equal(2))

			Expect(fixture.Cleanup(ctx)).To(Succeed())
			Expect(client.refCount()).To(Equal(0))

			for _, details := range fixture.Refs {
				_, err := client.GetRefSHA(ctx, "owner", "repo", details.Ref)
				Expect(errors.Is(err, gh.ErrRefNotFound)).To(BeTrue())
			}
		})

		It("attempts all deletions and reports each failure by ref", func() {
			fixture, err := builder.Build(ctx, decl)
			Expect(err).NotTo(HaveOccurred())

			client.deleteRefErr = func(ref string) error {
				if strings.HasPrefix(ref, "main-") {
					return fmt.Errorf("locked")
				}
				return nil
			}

			err = fixture.Cleanup(ctx)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring(`cleanup ref "main"`))

			// The non-failing ref must still be gone.
			_, lookupErr := client.GetRefSHA(ctx, "owner", "repo", fixture.Refs["feature"].Ref)
			Expect(errors.Is(lookupErr, gh.ErrRefNotFound)).To(BeTrue())
		})

		It("is a no-op on a nil or empty fixture", func() {
			var fixture *remote.Fixture
			Expect(fixture.Cleanup(ctx)).To(Succeed())
		})
	})
})
