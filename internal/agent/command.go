package agent

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/shlex"
)

const (
	promptPlaceholder = "{{PROMPT}}"
	agentPlaceholder  = "{{AGENT}}"
)

// CommandExecutor runs tasks through an external CLI described by a command
// template. The template must contain the {{PROMPT}} placeholder, replaced
// with the enriched task input; the optional {{AGENT}} placeholder is
// replaced with the actor's agent name, letting one template dispatch to
// different agents.
type CommandExecutor struct {
	template string
	workDir  string
	env      map[string]string
}

// CommandOption configures a CommandExecutor.
type CommandOption func(*CommandExecutor)

// WithWorkDir sets the working directory for spawned commands.
func WithWorkDir(dir string) CommandOption {
	return func(c *CommandExecutor) {
		c.workDir = dir
	}
}

// WithEnv adds environment variables to spawned commands.
func WithEnv(env map[string]string) CommandOption {
	return func(c *CommandExecutor) {
		c.env = env
	}
}

// NewCommandExecutor creates an executor from a command template.
// Returns an error if the {{PROMPT}} placeholder is missing.
func NewCommandExecutor(template string, opts ...CommandOption) (*CommandExecutor, error) {
	if !strings.Contains(template, promptPlaceholder) {
		return nil, fmt.Errorf("command template must contain %s placeholder", promptPlaceholder)
	}
	c := &CommandExecutor{template: template}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name implements Executor.
func (c *CommandExecutor) Name() string {
	return "command"
}

// Validate checks that the template parses and the command exists in PATH.
func (c *CommandExecutor) Validate() error {
	expanded := strings.ReplaceAll(c.template, promptPlaceholder, "test")
	expanded = strings.ReplaceAll(expanded, agentPlaceholder, "test")
	parts, err := shlex.Split(expanded)
	if err != nil {
		return fmt.Errorf("invalid command template: %w", err)
	}
	if len(parts) == 0 {
		return fmt.Errorf("command template produces no command")
	}
	if _, err := exec.LookPath(parts[0]); err != nil {
		return fmt.Errorf("command %q not found in PATH", parts[0])
	}
	return nil
}

// Execute implements Executor. The spawned process is killed when the
// context ends; a deadline expiry surfaces as the context's error so callers
// can distinguish timeouts from command failures.
func (c *CommandExecutor) Execute(ctx context.Context, req Request) (*Response, error) {
	args, err := c.expandTemplate(req)
	if err != nil {
		return nil, fmt.Errorf("expanding command template: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("command template produced no command")
	}

	cmd := exec.Command(args[0], args[1:]...)
	if c.workDir != "" {
		cmd.Dir = c.workDir
	}
	cmd.Env = os.Environ()
	for k, v := range c.env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting task command: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return nil, fmt.Errorf("executing task %q: %w", req.TaskID, ctx.Err())
	case err = <-done:
	}
	duration := time.Since(start)

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, &ExecError{
				TaskID:   req.TaskID,
				Agent:    req.Agent,
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderr.String(),
			}
		}
		return nil, fmt.Errorf("executing task %q: %w", req.TaskID, err)
	}

	return &Response{Output: stdout.String(), Duration: duration}, nil
}

// expandTemplate substitutes the placeholders and parses the result into
// argv. The input is single-quoted so it survives word splitting intact.
func (c *CommandExecutor) expandTemplate(req Request) ([]string, error) {
	expanded := strings.ReplaceAll(c.template, promptPlaceholder, quoteForShlex(req.Input))
	expanded = strings.ReplaceAll(expanded, agentPlaceholder, quoteForShlex(req.Agent))
	return shlex.Split(expanded)
}

// quoteForShlex wraps a string in single quotes for safe shlex parsing,
// escaping embedded single quotes ('don't' becomes 'don'\''t').
func quoteForShlex(s string) string {
	if s == "" {
		return "''"
	}
	escaped := strings.ReplaceAll(s, "'", `'\''`)
	return "'" + escaped + "'"
}
