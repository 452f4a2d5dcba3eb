package errors

import (
	"fmt"
	"strings"
)

// Common error messages for the atx CLI.
// These templates keep remediation consistent across commands.

// WorkflowFileNotFound creates an error for a missing workflow document.
func WorkflowFileNotFound(path string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("workflow file not found: %s", path),
		"Check the path for typos",
		"Workflow documents are YAML files, e.g. workflows/release.yml",
	)
}

// WorkflowParseFailed creates an error for a workflow that could not be parsed.
func WorkflowParseFailed(path string, err error) *CLIError {
	return WrapWithMessage(err, Validation,
		fmt.Sprintf("invalid workflow document: %s", path),
		"Run 'atx validate "+path+"' for the full list of problems",
	)
}

// AgentUnavailable creates an error when the configured agent command cannot run.
func AgentUnavailable(name string, err error) *CLIError {
	return WrapWithMessage(err, Prerequisite,
		fmt.Sprintf("agent %q is not runnable", name),
		"Install the agent CLI or check that it is in your PATH",
		"Pick another preset with --agent or agent_preset in .atx/config.yml",
		"Run 'atx doctor' to diagnose your setup",
	)
}

// UnknownAgentPreset creates an error for an unrecognized agent preset name.
func UnknownAgentPreset(name string, available []string) *CLIError {
	return NewConfigError(
		fmt.Sprintf("unknown agent preset: %s", name),
		"Available presets: "+strings.Join(available, ", "),
		"Or set custom_agent_cmd in .atx/config.yml to use your own command",
	)
}

// ConfigParseError creates an error for an invalid config file.
func ConfigParseError(path string, err error) *CLIError {
	return WrapWithMessage(err, Configuration,
		fmt.Sprintf("failed to parse config file: %s", path),
		"Check the file for YAML syntax errors",
		"Inspect the merged configuration with: atx config show",
		"Recreate defaults with: atx config init --force",
	)
}

// DatabaseOpenFailed creates an error when the session database cannot be opened.
func DatabaseOpenFailed(path string, err error) *CLIError {
	return WrapWithMessage(err, Configuration,
		fmt.Sprintf("cannot open session database: %s", path),
		"Check that the state directory exists and is writable",
		"Override the location with session_db in .atx/config.yml",
	)
}

// NoRunsFound creates an error when the run log directory holds no runs.
func NoRunsFound(dir string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("no run logs found in %s", dir),
		"Start a run with: atx run <workflow.yml>",
	)
}

// RunLogNotFound creates an error for an unknown run id.
func RunLogNotFound(runID string, available []string) *CLIError {
	remediation := []string{"List recorded runs with: atx watch --list"}
	if len(available) > 0 {
		remediation = append(remediation, "Recent runs: "+strings.Join(available, ", "))
	}
	return NewArgumentError(
		fmt.Sprintf("run not found: %s", runID),
		remediation...,
	)
}

// SessionNotFound creates an error for an unknown session id.
func SessionNotFound(sessionID string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("session not found: %s", sessionID),
		"List recorded sessions with: atx sessions list",
	)
}
