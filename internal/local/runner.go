// Package local materializes declarative repository states inside a local
// working directory by driving the git binary, and reads them back through
// the same binary. A directory is owned by exactly one build/read cycle; all
// operations against it are sequential because a single checkout exists at a
// time.
package local

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Runner executes git commands against a working directory.
type Runner struct {
	// Git is the git binary to execute. Defaults to "git" when empty.
	Git string

	// Env, when non-nil, replaces the inherited environment for every
	// invocation.
	Env []string
}

// NewRunner returns a Runner backed by the system git binary.
func NewRunner() *Runner {
	return &Runner{}
}

func (r *Runner) gitBinary() string {
	if r.Git == "" {
		return "git"
	}
	return r.Git
}

// Run executes git with the given arguments in dir. A non-zero exit status is
// returned as a *GitError carrying the combined output.
func (r *Runner) Run(ctx context.Context, dir string, args ...string) error {
	_, err := r.Capture(ctx, dir, args...)
	return err
}

// Capture executes git in dir and returns its combined output.
func (r *Runner) Capture(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, r.gitBinary(), args...)
	cmd.Dir = dir
	if r.Env != nil {
		cmd.Env = r.Env
	} else {
		cmd.Env = os.Environ()
	}
	setProcessGroup(cmd)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Start(); err != nil {
		return "", &GitError{Args: args, Output: output.String(), Err: err}
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		terminateProcessGroup(cmd)
		<-done
		return "", ctx.Err()
	case err := <-done:
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			return "", &GitError{Args: args, Output: output.String(), Err: err}
		}
	}

	return output.String(), nil
}

// GitError wraps failures when invoking the git binary.
type GitError struct {
	Args   []string
	Output string
	Err    error
}

func (e *GitError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("git %s: %v\n%s", strings.Join(e.Args, " "), e.Err, e.Output)
}

func (e *GitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
