// Package git fetches release repositories into a working directory.
//
// Two backends are available: an in-process clone built on go-git, and a
// fallback that shells out to the git binary for environments that need the
// user's own git configuration (credential helpers, proxies, insteadOf rules).
package git

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/adamancini/updraft/internal/types"
)

// Cloner fetches the repository at url into dir. dir must not exist or must
// be empty.
type Cloner interface {
	Clone(ctx context.Context, url, dir string) error
}

// CommandRunner is an interface for running external commands.
// This allows for mocking in tests.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	RunInDir(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// DefaultCommandRunner uses os/exec to run commands.
type DefaultCommandRunner struct{}

// Run executes a command in the current directory.
func (r *DefaultCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// RunInDir executes a command in the specified directory.
func (r *DefaultCommandRunner) RunInDir(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// New returns the cloner for backend. depth <= 0 requests full history.
func New(backend types.GitBackend, depth int, log zerolog.Logger) (Cloner, error) {
	switch backend {
	case "", types.GitBackendGoGit:
		return NewGoGitCloner(depth, log), nil
	case types.GitBackendCLI:
		return NewCLICloner(&DefaultCommandRunner{}, depth, log), nil
	default:
		return nil, backend.Validate()
	}
}

// CLICloner clones by running the git binary.
type CLICloner struct {
	runner CommandRunner
	depth  int
	log    zerolog.Logger
}

// NewCLICloner creates a CLICloner with the given command runner.
func NewCLICloner(runner CommandRunner, depth int, log zerolog.Logger) *CLICloner {
	return &CLICloner{runner: runner, depth: depth, log: log}
}

// Clone runs git clone.
func (c *CLICloner) Clone(ctx context.Context, url, dir string) error {
	args := []string{"clone", "--quiet"}
	if c.depth > 0 {
		args = append(args, "--depth", strconv.Itoa(c.depth))
	}
	args = append(args, "--", url, dir)

	c.log.Debug().Str("url", url).Str("dir", dir).Int("depth", c.depth).Msg("cloning with git binary")

	output, err := c.runner.Run(ctx, "git", args...)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return classifyCloneError(url, fmt.Errorf("%w: %s", err, output))
	}

	if ev := c.log.Debug(); ev.Enabled() {
		if head, err := c.runner.RunInDir(ctx, dir, "git", "rev-parse", "HEAD"); err == nil {
			ev.Str("commit", strings.TrimSpace(string(head))).Msg("cloned release")
		} else {
			ev.Discard()
		}
	}
	return nil
}

// GitAvailable checks if git is available on the system.
func (c *CLICloner) GitAvailable(ctx context.Context) bool {
	_, err := c.runner.Run(ctx, "git", "--version")
	return err == nil
}
