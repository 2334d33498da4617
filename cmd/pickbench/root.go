package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pickbench/pickbench/internal/app"
	gh "github.com/pickbench/pickbench/internal/github"
)

// Version can be overridden at build time:
// go build -ldflags "-X main.Version=v1.0.0"
var Version = "v0.1.0"

// cli carries the options resolved once in the root command's pre-run and
// shared by every subcommand.
type cli struct {
	v       *viper.Viper
	cfgFile string
	cfg     app.Config
	log     *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{v: app.NewViper()}

	root := &cobra.Command{
		Use:   "pickbench",
		Short: "Build and inspect git repository fixtures for cherry-pick testing",
		Long: `pickbench materializes declarative repository states - an initial commit
plus named branches of commits - against either a hosted GitHub repository
(through the low-level git-data API, using temporary refs) or a local
directory driven by the git binary, and reads backend state back into the
same declarative model for structural comparison.`,
		Version:           Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "path to a YAML config file")
	flags.String("owner", "", "repository owner (or set GITHUB_REPOSITORY)")
	flags.String("repo", "", "repository name (or set GITHUB_REPOSITORY)")
	flags.String("token", "", "GitHub token (or set GITHUB_TOKEN)")
	flags.String("github-base-url", "", "GitHub Enterprise API base URL")
	flags.String("github-upload-url", "", "GitHub Enterprise upload URL")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text, json")
	flags.String("git-bin", "", "git binary for the local backend")
	flags.Bool("dry-run", false, "do not mutate the hosted repository")

	_ = c.v.BindPFlag("owner", flags.Lookup("owner"))
	_ = c.v.BindPFlag("repo", flags.Lookup("repo"))
	_ = c.v.BindPFlag("github-token", flags.Lookup("token"))
	_ = c.v.BindPFlag("github-base-url", flags.Lookup("github-base-url"))
	_ = c.v.BindPFlag("github-upload-url", flags.Lookup("github-upload-url"))
	_ = c.v.BindPFlag("log-level", flags.Lookup("log-level"))
	_ = c.v.BindPFlag("log-format", flags.Lookup("log-format"))
	_ = c.v.BindPFlag("git-bin", flags.Lookup("git-bin"))
	_ = c.v.BindPFlag("dry-run", flags.Lookup("dry-run"))

	root.AddCommand(
		newBuildCmd(c),
		newReadCmd(c),
		newCleanupCmd(c),
		newPRCmd(c),
	)

	return root
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	if c.cfgFile != "" {
		c.v.SetConfigFile(c.cfgFile)
		if err := c.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
	}

	cfg, err := app.LoadConfigFrom(c.v)
	if err != nil {
		return err
	}
	c.cfg = cfg

	logger, err := app.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	c.log = logger

	return nil
}

// githubClient builds the hosted-API client for remote subcommands. Dry runs
// get a noop client that mutates nothing.
func (c *cli) githubClient(ctx context.Context) (gh.Client, error) {
	if err := c.cfg.ValidateRemote(); err != nil {
		return nil, err
	}

	var factory gh.Factory
	if c.cfg.DryRun {
		factory = gh.NewNoopFactory()
	} else {
		factory = gh.NewRESTFactory(c.cfg.GitHubBaseURL, c.cfg.GitHubUploadURL)
	}

	client, err := factory.New(ctx, c.cfg.GitHubToken)
	if err != nil {
		return nil, fmt.Errorf("initialize github client: %w", err)
	}
	return client, nil
}
