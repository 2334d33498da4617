// Package state defines the declarative repository-state model that both
// fixture backends materialize and both readers reconstruct.
package state

import (
	"fmt"
	"strings"
)

// PayloadFile is the single tracked file holding each commit's payload.
const PayloadFile = "content.txt"

// lineSeparator joins logical lines into file content. A blank line between
// entries keeps equality checks independent of trailing-newline mechanics.
const lineSeparator = "\n\n"

// Commit is the semantic content of one fixture commit: the logical lines of
// the payload file plus the commit message.
type Commit struct {
	Lines   []string `yaml:"lines" json:"lines"`
	Message string   `yaml:"message" json:"message"`
}

// Content renders the payload file content for the commit.
func (c Commit) Content() string {
	return JoinLines(c.Lines)
}

// RefState is the ordered list of commits unique to a ref, oldest first,
// excluding the shared initial commit.
type RefState []Commit

// RepoState declares a complete fixture: one initial commit shared by every
// ref, and per-ref commit chains rooted at it. DefaultRef names the branch the
// local backend initializes the repository with; it must be a key of
// RefsCommits.
type RepoState struct {
	InitialCommit Commit              `yaml:"initial_commit"`
	DefaultRef    string              `yaml:"default_ref"`
	RefsCommits   map[string]RefState `yaml:"refs"`
}

// Validate checks the structural invariants a backend relies on before
// materializing the state.
func (s RepoState) Validate() error {
	if strings.TrimSpace(s.DefaultRef) == "" {
		return fmt.Errorf("state: default ref is required")
	}
	if len(s.RefsCommits) == 0 {
		return fmt.Errorf("state: at least one ref is required")
	}
	if _, ok := s.RefsCommits[s.DefaultRef]; !ok {
		return fmt.Errorf("state: default ref %q is not declared in refs", s.DefaultRef)
	}
	for ref, commits := range s.RefsCommits {
		if strings.TrimSpace(ref) == "" {
			return fmt.Errorf("state: ref names must be non-empty")
		}
		if len(commits) == 0 {
			return fmt.Errorf("state: ref %q declares no commits", ref)
		}
	}
	return nil
}

// JoinLines renders logical lines as raw file content. An empty or nil slice
// renders as the empty string.
func JoinLines(lines []string) string {
	return strings.Join(lines, lineSeparator)
}

// SplitLines is the inverse of JoinLines for line sequences that do not
// themselves contain the separator. Note the boundary: SplitLines("") returns
// [""] (a single empty line), not an empty slice, mirroring strings.Split.
func SplitLines(content string) []string {
	return strings.Split(content, lineSeparator)
}
