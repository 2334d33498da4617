package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pickbench/pickbench/internal/local"
	"github.com/pickbench/pickbench/internal/remote"
	"github.com/pickbench/pickbench/internal/report"
	"github.com/pickbench/pickbench/internal/state"
)

func newBuildCmd(c *cli) *cobra.Command {
	var (
		stateFile string
		localDir  string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Materialize a declared repository state",
		Long: `Build creates the commit chains and refs a state file declares. Against the
hosted backend it creates temporary uniquely-named refs and prints them along
with every commit SHA; pass the printed refs to "pickbench cleanup" when done.
With --local it initializes a git repository in the given empty directory
instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := state.LoadFile(stateFile)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if localDir != "" {
				runner := &local.Runner{Git: c.cfg.GitBinary}
				builder := local.NewBuilder(runner, c.log)
				builder.UserName = c.cfg.GitUserName
				builder.UserEmail = c.cfg.GitUserEmail

				if err := builder.Build(ctx, localDir, s); err != nil {
					return err
				}

				out, err := report.RenderBuild(report.BuildResult{Directory: localDir}, format)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
				return nil
			}

			client, err := c.githubClient(ctx)
			if err != nil {
				return err
			}

			builder := remote.NewBuilder(c.cfg.Owner, c.cfg.Repo, client, c.log)
			fixture, buildErr := builder.Build(ctx, s)

			// A partial fixture still gets printed so its refs can be cleaned up.
			if fixture != nil {
				out, err := report.RenderBuild(report.BuildResult{
					InitialSHA: fixture.InitialSHA,
					Refs:       fixture.Refs,
				}, format)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
			}

			return buildErr
		},
	}

	cmd.Flags().StringVarP(&stateFile, "state", "f", "", "YAML state file declaring the fixture (required)")
	cmd.Flags().StringVar(&localDir, "local", "", "build into this empty local directory instead of the hosted repository")
	cmd.Flags().StringVarP(&format, "output", "o", report.FormatText, "output format: text, json")
	_ = cmd.MarkFlagRequired("state")

	return cmd
}
