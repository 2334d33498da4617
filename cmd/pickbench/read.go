package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pickbench/pickbench/internal/local"
	"github.com/pickbench/pickbench/internal/remote"
	"github.com/pickbench/pickbench/internal/report"
	"github.com/pickbench/pickbench/internal/state"
)

func newReadCmd(c *cli) *cobra.Command {
	var (
		localDir string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "read REF",
		Short: "Read a ref's commit chain back into the declarative model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := args[0]
			ctx := cmd.Context()

			var (
				chain state.RefState
				err   error
			)
			if localDir != "" {
				runner := &local.Runner{Git: c.cfg.GitBinary}
				chain, err = local.NewReader(runner, c.log).ReadRef(ctx, localDir, ref)
			} else {
				client, clientErr := c.githubClient(ctx)
				if clientErr != nil {
					return clientErr
				}
				chain, err = remote.NewReader(c.cfg.Owner, c.cfg.Repo, client, c.log).ReadRef(ctx, ref)
			}
			if err != nil {
				return err
			}

			out, err := report.RenderRefState(ref, chain, format)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&localDir, "local", "", "read from this local repository instead of the hosted one")
	cmd.Flags().StringVarP(&format, "output", "o", report.FormatText, "output format: text, json")

	return cmd
}
