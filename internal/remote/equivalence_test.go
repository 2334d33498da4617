package remote_test

import (
	"context"
	"os"
	"os/exec"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pickbench/pickbench/internal/local"
	"github.com/pickbench/pickbench/internal/remote"
	"github.com/pickbench/pickbench/internal/state"
)

// Materializing one declared state through each backend and reading it back
// through that backend's reader must produce structurally identical chains.
var _ = Describe("Backend equivalence", func() {
	It("produces identical read-back state from both backends", func() {
		if _, err := exec.LookPath("git"); err != nil {
			Skip("git binary not available")
		}

		ctx := context.Background()
		decl := state.RepoState{
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

		client := newFakeObjectClient()
		remoteBuilder := remote.NewBuilder("owner", "repo", client, nil)
		fixture, err := remoteBuilder.Build(ctx, decl)
		Expect(err).NotTo(HaveOccurred())
		defer func() {
			Expect(fixture.Cleanup(ctx)).To(Succeed())
		}()

		dir, err := os.MkdirTemp("", "pickbench-equivalence-")
		Expect(err).NotTo(HaveOccurred())
		defer os.RemoveAll(dir)

		runner := local.NewRunner()
		Expect(local.NewBuilder(runner, nil).Build(ctx, dir, decl)).To(Succeed())

		remoteReader := remote.NewReader("owner", "repo", client, nil)
		localReader := local.NewReader(runner, nil)

		for declared, details := range fixture.Refs {
			viaRemote, err := remoteReader.ReadRef(ctx, details.Ref)
			Expect(err).NotTo(HaveOccurred())

			viaLocal, err := localReader.ReadRef(ctx, dir, declared)
			Expect(err).NotTo(HaveOccurred())

			Expect(viaRemote).To(Equal(viaLocal), "ref %s", declared)
			Expect(viaRemote[1:]).To(Equal(decl.RefsCommits[declared]), "ref %s", declared)
		}
	})
})
