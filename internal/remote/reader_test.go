package remote_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	gh "github.com/pickbench/pickbench/internal/github"
	"github.com/pickbench/pickbench/internal/remote"
	"github.com/pickbench/pickbench/internal/state"
)

var _ = Describe("Reader", func() {
	var (
		ctx    context.Context
		client *fakeObjectClient
		reader *remote.Reader
	)

	BeforeEach(func() {
		ctx = context.Background()
		client = newFakeObjectClient()
		reader = remote.NewReader("owner", "repo", client, nil)
	})

	It("returns ErrRefNotFound for unknown refs", func() {
		_, err := reader.ReadRef(ctx, "missing")
		Expect(errors.Is(err, gh.ErrRefNotFound)).To(BeTrue())
	})

	It("walks the parent chain root-first and decodes each payload", func() {
		builder := remote.NewBuilder("owner", "repo", client, nil)
		decl := state.RepoState{
			InitialCommit: state.Commit{Lines: []string{"A"}, Message: "init"},
			DefaultRef:    "main",
			RefsCommits: map[string]state.RefState{
				"main": {
					{Lines: []string{"A", "B"}, Message: "add B"},
					{Lines: []string{"A", "B", "C"}, Message: "add C"},
				},
			},
		}

		fixture, err := builder.Build(ctx, decl)
		Expect(err).NotTo(HaveOccurred())

		chain, err := reader.ReadRef(ctx, fixture.Refs["main"].Ref)
		Expect(err).NotTo(HaveOccurred())

		Expect(chain).To(HaveLen(3))
		Expect(chain[0].Message).To(Equal("init"))
		Expect(chain[0].Lines).To(Equal([]string{"A"}))
		Expect(chain[1].Message).To(Equal("add B"))
		Expect(chain[2].Lines).To(Equal([]string{"A", "B", "C"}))
	})

	It("strips trailing newlines from commit messages", func() {
		builder := remote.NewBuilder("owner", "repo", client, nil)
		decl := state.RepoState{
			InitialCommit: state.Commit{Lines: []string{"A"}, Message: "init\n"},
			DefaultRef:    "main",
			RefsCommits: map[string]state.RefState{
				"main": {
					{Lines: []string{"A", "B"}, Message: "add B\n\n"},
				},
			},
		}

		fixture, err := builder.Build(ctx, decl)
		Expect(err).NotTo(HaveOccurred())

		chain, err := reader.ReadRef(ctx, fixture.Refs["main"].Ref)
		Expect(err).NotTo(HaveOccurred())
		Expect(chain[0].Message).To(Equal("init"))
		Expect(chain[1].Message).To(Equal("add B"))
	})

	It("rejects merge commits instead of silently following the first parent", func() {
		client.seedMergeCommit("merged-branch")

		_, err := reader.ReadRef(ctx, "merged-branch")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("merge commits are unsupported"))
	})
})
