package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/naka-gawa/repokeeper/internal/domain"
)

const gitBinary = "git"

// CommandResult captures the observable results of executing a command.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner runs an external executable.
// A non-zero exit code is reported through CommandResult, not as an error;
// the error is reserved for failures to start or wait for the process.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (CommandResult, error)
}

// ExecRunner executes commands using os/exec.
type ExecRunner struct {
	// Dir is the working directory; empty means the current directory.
	Dir string
}

// Run executes the command and collects its output.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (CommandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	// Never block on a credential prompt.
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return CommandResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: exitErr.ExitCode()}, nil
		}
		return CommandResult{}, err
	}
	return CommandResult{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

// CommandError reports a git invocation that exited with a non-zero status.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s exited with code %d", strings.Join(e.Args, " "), e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

// Git defines the git operations needed by the application.
type Git interface {
	FetchPrune(ctx context.Context) error
	RemoteUpdatePrune(ctx context.Context) error
	LocalBranches(ctx context.Context) ([]domain.LocalBranch, error)
	RemoteBranches(ctx context.Context) ([]string, error)
	DeleteBranch(ctx context.Context, name string) error
	RemoteURL(ctx context.Context, remote string) (string, error)
}

// GitGateway is the concrete implementation of the Git interface.
type GitGateway struct {
	runner CommandRunner
	logger *zap.Logger
}

// NewGitGateway creates a GitGateway that runs git through the given runner.
func NewGitGateway(runner CommandRunner, logger *zap.Logger) *GitGateway {
	return &GitGateway{runner: runner, logger: logger}
}

func (g *GitGateway) FetchPrune(ctx context.Context) error {
	_, err := g.git(ctx, "fetch", "--prune")
	return err
}

func (g *GitGateway) RemoteUpdatePrune(ctx context.Context) error {
	_, err := g.git(ctx, "remote", "update", "--prune")
	return err
}

func (g *GitGateway) LocalBranches(ctx context.Context) ([]domain.LocalBranch, error) {
	out, err := g.git(ctx, "branch", "--no-color")
	if err != nil {
		return nil, err
	}
	return parseLocalBranches(out), nil
}

func (g *GitGateway) RemoteBranches(ctx context.Context) ([]string, error) {
	out, err := g.git(ctx, "branch", "-r", "--no-color")
	if err != nil {
		return nil, err
	}
	return parseRemoteBranches(out), nil
}

// DeleteBranch force-deletes a local branch.
func (g *GitGateway) DeleteBranch(ctx context.Context, name string) error {
	_, err := g.git(ctx, "branch", "-D", name)
	return err
}

func (g *GitGateway) RemoteURL(ctx context.Context, remote string) (string, error) {
	out, err := g.git(ctx, "remote", "get-url", remote)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *GitGateway) git(ctx context.Context, args ...string) (string, error) {
	g.logger.Debug("Running git", zap.Strings("args", args))

	result, err := g.runner.Run(ctx, gitBinary, args...)
	if err != nil {
		return "", fmt.Errorf("failed to run git %s: %w", strings.Join(args, " "), err)
	}
	if result.ExitCode != 0 {
		return "", &CommandError{Args: args, ExitCode: result.ExitCode, Stderr: result.Stderr}
	}
	return result.Stdout, nil
}

// parseLocalBranches reads `git branch` output. Lines marked with "*" (checked
// out here) or "+" (checked out in another worktree) are flagged as current.
func parseLocalBranches(out string) []domain.LocalBranch {
	var branches []domain.LocalBranch
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		current := false
		if strings.HasPrefix(line, "*") || strings.HasPrefix(line, "+") {
			current = true
			line = strings.TrimSpace(line[1:])
		}
		if line == "" {
			continue
		}
		branches = append(branches, domain.LocalBranch{Name: line, Current: current})
	}
	return branches
}

// parseRemoteBranches reads `git branch -r` output. Symbolic refs such as
// "origin/HEAD -> origin/main" keep only their left-hand name.
func parseRemoteBranches(out string) []string {
	var branches []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if name, _, found := strings.Cut(line, " -> "); found {
			line = strings.TrimSpace(name)
		}
		if line == "" {
			continue
		}
		branches = append(branches, line)
	}
	return branches
}
