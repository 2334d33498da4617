package local

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pickbench/pickbench/internal/state"
)

// Reader reconstructs a ref's commit chain from a local repository.
type Reader struct {
	runner *Runner
	log    *slog.Logger
}

// NewReader returns a Reader using the given runner.
func NewReader(runner *Runner, log *slog.Logger) *Reader {
	return &Reader{runner: runner, log: log}
}

// ReadRef lists ref's commits oldest first and, one checkout at a time, reads
// each commit's payload file and message. The returned chain includes the
// initial commit as element 0, and trailing newlines on commit messages are
// stripped so both backends read an identical chain. The working tree is left
// at the last commit read; callers needing a particular checkout must restore
// it themselves.
func (r *Reader) ReadRef(ctx context.Context, dir, ref string) (state.RefState, error) {
	out, err := r.runner.Capture(ctx, dir, "rev-list", "--reverse", ref)
	if err != nil {
		return nil, fmt.Errorf("git rev-list %s: %w", ref, err)
	}

	shas := strings.Fields(out)
	chain := make(state.RefState, 0, len(shas))

	for _, sha := range shas {
		if err := r.runner.Run(ctx, dir, "checkout", "--detach", sha); err != nil {
			return nil, fmt.Errorf("git checkout %s: %w", sha, err)
		}

		content, err := os.ReadFile(filepath.Join(dir, state.PayloadFile))
		if err != nil {
			return nil, fmt.Errorf("read %s at %s: %w", state.PayloadFile, sha, err)
		}

		message, err := r.runner.Capture(ctx, dir, "log", "-1", "--format=%B", sha)
		if err != nil {
			return nil, fmt.Errorf("git log %s: %w", sha, err)
		}

		chain = append(chain, state.Commit{
			Lines:   state.SplitLines(string(content)),
			Message: strings.TrimRight(message, "\n"),
		})
	}

	if r.log != nil {
		r.log.Debug("read local ref", "dir", dir, "ref", ref, "commits", len(chain))
	}

	return chain, nil
}
