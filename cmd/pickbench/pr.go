package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pickbench/pickbench/internal/remote"
)

func newPRCmd(c *cli) *cobra.Command {
	var base, head string

	cmd := &cobra.Command{
		Use:   "pr",
		Short: "Open a pull request from one fixture ref into another",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := c.githubClient(ctx)
			if err != nil {
				return err
			}

			builder := remote.NewBuilder(c.cfg.Owner, c.cfg.Repo, client, c.log)
			number, err := builder.CreatePullRequest(ctx, base, head)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created pull request #%d (%s -> %s)\n", number, head, base)
			return nil
		},
	}

	cmd.Flags().StringVar(&base, "base", "", "base ref the pull request targets (required)")
	cmd.Flags().StringVar(&head, "head", "", "head ref with the changes (required)")
	_ = cmd.MarkFlagRequired("base")
	_ = cmd.MarkFlagRequired("head")

	return cmd
}
