package gh

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var disallowedRefChars = regexp.MustCompile(`[^a-zA-Z0-9._/-]+`)

// suffixLength is how many characters of the generated identifier are appended
// to a ref name. 8 hex characters keep collisions negligible within a test run
// while leaving the declared name readable in the backend's branch list.
const suffixLength = 8

// UniqueRefName derives a collision-resistant temporary ref name from the
// declared one, so concurrent test runs sharing a repository never fight over
// refs. Each call returns a distinct name.
func UniqueRefName(ref string) string {
	base := sanitizeRefName(ref)
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:suffixLength]
	return fmt.Sprintf("%s-%s", base, suffix)
}

func sanitizeRefName(ref string) string {
	ref = strings.TrimSpace(ref)
	ref = strings.ReplaceAll(ref, " ", "-")
	ref = disallowedRefChars.ReplaceAllString(ref, "-")
	ref = strings.Trim(ref, "-/.")

	for strings.Contains(ref, "//") {
		ref = strings.ReplaceAll(ref, "//", "/")
	}
	for strings.Contains(ref, "--") {
		ref = strings.ReplaceAll(ref, "--", "-")
	}

	if ref == "" {
		ref = "fixture"
	}
	return ref
}
