package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pickbench/pickbench/internal/remote"
)

func newCleanupCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup REF [REF...]",
		Short: "Delete temporary refs left behind by a build",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := c.githubClient(ctx)
			if err != nil {
				return err
			}

			manager := remote.NewRefManager(c.cfg.Owner, c.cfg.Repo, client)

			// Every ref is attempted; failures are reported together.
			var errs []error
			for _, ref := range args {
				if err := manager.Delete(ctx, ref); err != nil {
					errs = append(errs, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", ref)
			}

			return errors.Join(errs...)
		},
	}

	return cmd
}
