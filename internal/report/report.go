// Package report renders build and read-back results for the CLI.
package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pickbench/pickbench/internal/remote"
	"github.com/pickbench/pickbench/internal/state"
)

// Formats accepted by the renderers.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// BuildResult is the CLI-facing view of a materialized fixture.
type BuildResult struct {
	InitialSHA string                       `json:"initial_sha,omitempty"`
	Directory  string                       `json:"directory,omitempty"`
	Refs       map[string]remote.RefDetails `json:"refs,omitempty"`
}

// RenderBuild renders a build result in the requested format.
func RenderBuild(result BuildResult, format string) (string, error) {
	switch format {
	case FormatJSON:
		return renderJSON(result)
	case "", FormatText:
	default:
		return "", fmt.Errorf("unsupported report format %q", format)
	}

	var builder strings.Builder
	builder.WriteString("Fixture built\n")
	if result.Directory != "" {
		fmt.Fprintf(&builder, "  directory: %s\n", result.Directory)
	}
	if result.InitialSHA != "" {
		fmt.Fprintf(&builder, "  initial commit: %s\n", result.InitialSHA)
	}

	names := make([]string, 0, len(result.Refs))
	for name := range result.Refs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		details := result.Refs[name]
		fmt.Fprintf(&builder, "  %s -> %s (%d commits)\n", name, details.Ref, len(details.SHAs))
		for _, sha := range details.SHAs {
			fmt.Fprintf(&builder, "    %s\n", sha)
		}
	}

	return builder.String(), nil
}

// RenderRefState renders a read-back commit chain in the requested format.
func RenderRefState(ref string, chain state.RefState, format string) (string, error) {
	switch format {
	case FormatJSON:
		return renderJSON(struct {
			Ref     string         `json:"ref"`
			Commits state.RefState `json:"commits"`
		}{Ref: ref, Commits: chain})
	case "", FormatText:
	default:
		return "", fmt.Errorf("unsupported report format %q", format)
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Ref %s (%d commits, oldest first)\n", ref, len(chain))
	for i, commit := range chain {
		fmt.Fprintf(&builder, "  %d. %s\n", i+1, commit.Message)
		for _, line := range commit.Lines {
			fmt.Fprintf(&builder, "     | %s\n", line)
		}
	}

	return builder.String(), nil
}

func renderJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	return string(data) + "\n", nil
}
