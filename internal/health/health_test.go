package health

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defai-digital/AutomatosX-sub001/internal/agent"
	"github.com/defai-digital/AutomatosX-sub001/internal/config"
)

// testConfig builds a configuration whose agent command is guaranteed to
// resolve and whose state lives under temp directories.
func testConfig(t *testing.T) *config.Configuration {
	t.Helper()
	return &config.Configuration{
		CustomAgentCmd: "echo {{PROMPT}}",
		StateDir:       t.TempDir(),
		LogDir:         t.TempDir(),
	}
}

func TestRunChecks_AllPassing(t *testing.T) {
	t.Parallel()

	report := RunChecks(testConfig(t), nil)

	require.Len(t, report.Checks, 4)
	for _, check := range report.Checks {
		assert.True(t, check.Passed, "%s: %s", check.Name, check.Message)
	}
	assert.True(t, report.Passed)
}

func TestRunChecks_ConfigLoadFailure(t *testing.T) {
	t.Parallel()

	report := RunChecks(nil, errors.New("yaml: line 3: mapping values"))

	require.Len(t, report.Checks, 1)
	assert.False(t, report.Checks[0].Passed)
	assert.Contains(t, report.Checks[0].Message, "line 3")
	assert.False(t, report.Passed)

	// Preset scanning still runs without a configuration.
	assert.Len(t, report.Agents, len(agent.Presets()))
}

func TestRunChecks_MissingAgentBinary(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.CustomAgentCmd = "definitely-not-a-real-binary-atx {{PROMPT}}"

	report := RunChecks(cfg, nil)

	assert.False(t, report.Passed)
	var agentCheck CheckResult
	for _, check := range report.Checks {
		if check.Name == "Agent command" {
			agentCheck = check
		}
	}
	assert.False(t, agentCheck.Passed)
	assert.Contains(t, agentCheck.Message, "not found in PATH")
}

func TestRunChecks_UnknownPreset(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.CustomAgentCmd = ""
	cfg.AgentPreset = "gpt9"

	report := RunChecks(cfg, nil)

	assert.False(t, report.Passed)
	found := false
	for _, check := range report.Checks {
		if check.Name == "Agent command" {
			found = true
			assert.False(t, check.Passed)
			assert.Contains(t, check.Message, "unknown agent preset")
		}
	}
	assert.True(t, found)
}

func TestScanAgents(t *testing.T) {
	t.Parallel()

	statuses := ScanAgents()

	require.Len(t, statuses, len(agent.Presets()))
	for _, status := range statuses {
		assert.NotEmpty(t, status.Name)
		assert.NotEmpty(t, status.Command)
	}
}

func TestFormatReport(t *testing.T) {
	t.Parallel()

	report := &Report{
		Checks: []CheckResult{
			{Name: "Configuration", Passed: true, Message: "merged configuration valid"},
			{Name: "Agent command", Passed: false, Message: "command \"claude\" not found in PATH"},
		},
		Agents: []AgentStatus{
			{Name: "claude", Command: "claude", Available: true, Path: "/usr/local/bin/claude"},
			{Name: "codex", Command: "codex"},
		},
	}

	out := FormatReport(report)

	assert.Contains(t, out, "✓ Configuration: merged configuration valid")
	assert.Contains(t, out, "✗ Agent command:")
	assert.Contains(t, out, "Agent presets:")
	assert.Contains(t, out, "✓ claude: /usr/local/bin/claude")
	assert.Contains(t, out, "○ codex: not installed")
}
