package app

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	defaultLogLevel  = "info"
	defaultLogFormat = "text"
	defaultGitBinary = "git"
)

// Config captures runtime options sourced from flags, environment variables
// (PICKBENCH_* prefix, GITHUB_TOKEN and GITHUB_REPOSITORY honored as
// fallbacks), or an optional config file.
type Config struct {
	GitHubToken     string
	GitHubBaseURL   string
	GitHubUploadURL string
	Owner           string
	Repo            string
	LogLevel        string
	LogFormat       string
	GitBinary       string
	GitUserName     string
	GitUserEmail    string
	DryRun          bool
}

// NewViper returns a viper instance wired to this tool's environment surface.
// The CLI binds its flags into the same instance before loading.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("PICKBENCH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log-level", defaultLogLevel)
	v.SetDefault("log-format", defaultLogFormat)
	v.SetDefault("git-bin", defaultGitBinary)

	_ = v.BindEnv("github-token", "PICKBENCH_GITHUB_TOKEN", "GITHUB_TOKEN")
	_ = v.BindEnv("repository", "PICKBENCH_REPOSITORY", "GITHUB_REPOSITORY")

	return v
}

// LoadConfig reads options from the environment, applies defaults, and
// performs validation.
func LoadConfig() (Config, error) {
	return LoadConfigFrom(NewViper())
}

// LoadConfigFrom builds a Config out of an already-populated viper instance.
func LoadConfigFrom(v *viper.Viper) (Config, error) {
	cfg := Config{
		GitHubToken:     strings.TrimSpace(v.GetString("github-token")),
		GitHubBaseURL:   strings.TrimSpace(v.GetString("github-base-url")),
		GitHubUploadURL: strings.TrimSpace(v.GetString("github-upload-url")),
		Owner:           strings.TrimSpace(v.GetString("owner")),
		Repo:            strings.TrimSpace(v.GetString("repo")),
		LogLevel:        strings.ToLower(strings.TrimSpace(v.GetString("log-level"))),
		LogFormat:       strings.ToLower(strings.TrimSpace(v.GetString("log-format"))),
		GitBinary:       strings.TrimSpace(v.GetString("git-bin")),
		GitUserName:     strings.TrimSpace(v.GetString("git-user-name")),
		GitUserEmail:    strings.TrimSpace(v.GetString("git-user-email")),
		DryRun:          v.GetBool("dry-run"),
	}

	if cfg.Owner == "" || cfg.Repo == "" {
		if repository := strings.TrimSpace(v.GetString("repository")); repository != "" {
			owner, repo, err := splitRepository(repository)
			if err != nil {
				return Config{}, err
			}
			if cfg.Owner == "" {
				cfg.Owner = owner
			}
			if cfg.Repo == "" {
				cfg.Repo = repo
			}
		}
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = defaultLogFormat
	}
	if cfg.GitBinary == "" {
		cfg.GitBinary = defaultGitBinary
	}

	supportedFormats := map[string]struct{}{"text": {}, "json": {}}
	if _, ok := supportedFormats[cfg.LogFormat]; !ok {
		return Config{}, fmt.Errorf("unsupported log format %q", cfg.LogFormat)
	}

	supportedLevels := map[string]struct{}{"debug": {}, "info": {}, "warn": {}, "warning": {}, "error": {}}
	if _, ok := supportedLevels[cfg.LogLevel]; !ok {
		return Config{}, fmt.Errorf("unsupported log level %q", cfg.LogLevel)
	}

	if (cfg.GitHubBaseURL == "") != (cfg.GitHubUploadURL == "") {
		return Config{}, fmt.Errorf("github base url and upload url must both be set for GitHub Enterprise")
	}

	return cfg, nil
}

// ValidateRemote checks the fields remote operations require. Called by
// commands that talk to the hosted API; local-only commands skip it.
func (c Config) ValidateRemote() error {
	if c.Owner == "" || c.Repo == "" {
		return fmt.Errorf("repository owner and name are required (set --owner/--repo or GITHUB_REPOSITORY)")
	}
	if c.GitHubToken == "" && !c.DryRun {
		return fmt.Errorf("github token is required (set --token, PICKBENCH_GITHUB_TOKEN, or GITHUB_TOKEN)")
	}
	return nil
}

func splitRepository(repository string) (string, string, error) {
	parts := strings.SplitN(repository, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("repository must be in owner/repo form, got %q", repository)
	}
	return parts[0], parts[1], nil
}
