package config

// GetDefaultConfigTemplate returns a fully commented config template that
// helps users understand all available options.
func GetDefaultConfigTemplate() string {
	return `# atx configuration
# Priority: environment (ATX_*) > project (.atx/config.yml) > user config > defaults

# Agent settings
agent_preset: claude                  # Built-in agent: claude | codex | opencode
custom_agent_cmd: ""                  # Custom command with {{PROMPT}} placeholder (overrides preset)

# Scheduling settings
max_concurrent: 4                     # Concurrent task cap per run (1-256)
continue_on_error: false              # Keep scheduling past levels with failures
task_timeout_ms: 300000               # Per-attempt deadline for tasks without a timeoutMs hint (5 min)

# Session memory settings
recall_limit: 5                       # Prior outputs recalled per task (0 disables recall)
recall_char_budget: 2000              # Max characters per recalled output (0 = no cap)

# Notification settings
notify: false                         # Desktop notification when a run finishes
notify_min_duration_ms: 30000         # Quick successful runs stay quiet (failures always notify)

# Storage settings
state_dir: ~/.atx/state               # Directory for state files
session_db: ""                        # SQLite session database (empty = <state_dir>/sessions.db)
log_dir: ""                           # Run log directory (empty = XDG cache default)
`
}

// GetDefaults returns the default configuration values.
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"agent_preset":     "claude",
		"custom_agent_cmd": "",
		// max_concurrent: run-wide cap on concurrently executing tasks.
		"max_concurrent":    4,
		"continue_on_error": false,
		// recall_limit / recall_char_budget: how much prior session context
		// flows into each task's input.
		"recall_limit":       5,
		"recall_char_budget": 2000,
		// task_timeout_ms: 5 minutes default per attempt.
		"task_timeout_ms": 300000,
		// notify: desktop notification on run completion, opt-in.
		"notify":                 false,
		"notify_min_duration_ms": 30000,
		"state_dir":              "~/.atx/state",
		"session_db":             "",
		"log_dir":                "",
	}
}
