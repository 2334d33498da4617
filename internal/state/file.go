package state

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseState decodes a YAML fixture declaration and validates it.
func ParseState(data []byte) (RepoState, error) {
	var s RepoState
	if err := yaml.Unmarshal(data, &s); err != nil {
		return RepoState{}, fmt.Errorf("parse state: %w", err)
	}
	if err := s.Validate(); err != nil {
		return RepoState{}, err
	}
	return s, nil
}

// LoadFile reads a YAML fixture declaration from disk.
func LoadFile(path string) (RepoState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RepoState{}, fmt.Errorf("read state file: %w", err)
	}
	return ParseState(data)
}
