package agent

import (
	"fmt"
	"strings"
)

// ExecError represents a task command that ran but exited nonzero.
type ExecError struct {
	// TaskID is the graph node id that failed.
	TaskID string
	// Agent is the agent name the task was declared with.
	Agent string
	// ExitCode is the process exit code.
	ExitCode int
	// Stderr is the captured standard error output.
	Stderr string
}

// Error implements the error interface.
func (e *ExecError) Error() string {
	msg := fmt.Sprintf("task %q (agent %q) exited with code %d", e.TaskID, e.Agent, e.ExitCode)
	if tail := stderrTail(e.Stderr); tail != "" {
		msg += ": " + tail
	}
	return msg
}

// stderrTail returns the last non-empty stderr line, capped so error messages
// stay one line.
func stderrTail(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		const maxLen = 200
		if len(line) > maxLen {
			line = line[:maxLen] + "..."
		}
		return line
	}
	return ""
}
