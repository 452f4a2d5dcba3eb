// Package health provides environment checks for atx. It validates that the
// configured agent command and session storage are usable, returning
// structured reports used by the 'atx doctor' command.
package health

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/shlex"

	"github.com/defai-digital/AutomatosX-sub001/internal/agent"
	"github.com/defai-digital/AutomatosX-sub001/internal/config"
	"github.com/defai-digital/AutomatosX-sub001/internal/session"
)

// CheckResult represents the result of a single health check
type CheckResult struct {
	Name    string
	Passed  bool
	Message string
}

// AgentStatus describes whether a built-in agent preset is installed.
type AgentStatus struct {
	Name      string
	Command   string
	Available bool
	Path      string
}

// Report contains all health check results
type Report struct {
	Checks []CheckResult
	Agents []AgentStatus
	// Passed is true when every core check passed.
	Passed bool
	// AnyAgent is true when at least one built-in preset is installed.
	AnyAgent bool
}

// RunChecks runs all health checks and returns a report. cfgErr carries a
// configuration load failure; preset scanning still runs in that case so one
// bad file does not hide every other problem.
func RunChecks(cfg *config.Configuration, cfgErr error) *Report {
	report := &Report{Passed: true}

	configCheck := checkConfiguration(cfgErr)
	report.Checks = append(report.Checks, configCheck)
	if !configCheck.Passed {
		report.Passed = false
	}

	if cfg != nil {
		for _, check := range []CheckResult{
			checkAgentCommand(cfg),
			checkSessionDatabase(cfg),
			checkRunLogDir(cfg),
		} {
			report.Checks = append(report.Checks, check)
			if !check.Passed {
				report.Passed = false
			}
		}
	}

	report.Agents = ScanAgents()
	for _, status := range report.Agents {
		if status.Available {
			report.AnyAgent = true
			break
		}
	}

	return report
}

// checkConfiguration reports whether the merged configuration loaded cleanly.
func checkConfiguration(cfgErr error) CheckResult {
	if cfgErr != nil {
		return CheckResult{
			Name:    "Configuration",
			Passed:  false,
			Message: cfgErr.Error(),
		}
	}
	return CheckResult{
		Name:    "Configuration",
		Passed:  true,
		Message: "merged configuration valid",
	}
}

// checkAgentCommand verifies the configured agent command parses and its
// binary is in PATH.
func checkAgentCommand(cfg *config.Configuration) CheckResult {
	executor, err := cfg.Executor()
	if err != nil {
		return CheckResult{
			Name:    "Agent command",
			Passed:  false,
			Message: err.Error(),
		}
	}

	if cmdExec, ok := executor.(*agent.CommandExecutor); ok {
		if err := cmdExec.Validate(); err != nil {
			return CheckResult{
				Name:    "Agent command",
				Passed:  false,
				Message: err.Error(),
			}
		}
	}

	return CheckResult{
		Name:    "Agent command",
		Passed:  true,
		Message: fmt.Sprintf("%s is installed", describeAgent(cfg)),
	}
}

func describeAgent(cfg *config.Configuration) string {
	if cfg.CustomAgentCmd != "" {
		return "custom agent command"
	}
	return fmt.Sprintf("preset %q", cfg.AgentPreset)
}

// checkSessionDatabase verifies the session database opens and migrates.
func checkSessionDatabase(cfg *config.Configuration) CheckResult {
	path := cfg.SessionDBPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return CheckResult{
			Name:    "Session database",
			Passed:  false,
			Message: fmt.Sprintf("cannot create state directory: %v", err),
		}
	}

	store, err := session.OpenSQLite(path)
	if err != nil {
		return CheckResult{
			Name:    "Session database",
			Passed:  false,
			Message: err.Error(),
		}
	}
	defer store.Close()

	return CheckResult{
		Name:    "Session database",
		Passed:  true,
		Message: fmt.Sprintf("writable at %s", path),
	}
}

// checkRunLogDir verifies the run log directory exists or can be created.
func checkRunLogDir(cfg *config.Configuration) CheckResult {
	dir := cfg.RunLogDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return CheckResult{
			Name:    "Run log directory",
			Passed:  false,
			Message: fmt.Sprintf("cannot create %s: %v", dir, err),
		}
	}

	return CheckResult{
		Name:    "Run log directory",
		Passed:  true,
		Message: fmt.Sprintf("writable at %s", dir),
	}
}

// ScanAgents checks which built-in agent presets are installed.
func ScanAgents() []AgentStatus {
	statuses := make([]AgentStatus, 0, len(agent.Presets()))
	for _, name := range agent.Presets() {
		template, _ := agent.Preset(name)
		statuses = append(statuses, scanAgent(name, template))
	}
	return statuses
}

func scanAgent(name, template string) AgentStatus {
	status := AgentStatus{Name: name}

	parts, err := shlex.Split(template)
	if err != nil || len(parts) == 0 {
		return status
	}
	status.Command = parts[0]

	if path, err := exec.LookPath(parts[0]); err == nil {
		status.Available = true
		status.Path = path
	}
	return status
}

// FormatReport formats the health report for console output
func FormatReport(report *Report) string {
	var output string

	for _, check := range report.Checks {
		if check.Passed {
			output += fmt.Sprintf("✓ %s: %s\n", check.Name, check.Message)
		} else {
			output += fmt.Sprintf("✗ %s: %s\n", check.Name, check.Message)
		}
	}

	if len(report.Agents) > 0 {
		output += "\nAgent presets:\n"
		for _, status := range report.Agents {
			output += FormatAgentStatus(status)
		}
	}

	return output
}

// FormatAgentStatus formats a single agent status for console output
func FormatAgentStatus(status AgentStatus) string {
	if status.Available {
		return fmt.Sprintf("  ✓ %s: %s\n", status.Name, status.Path)
	}
	return fmt.Sprintf("  ○ %s: not installed\n", status.Name)
}
