// Package config provides hierarchical configuration management using koanf.
// Configuration is loaded with priority: environment variables > project
// config (.atx/config.yml) > user config (~/.config/atx/config.yml) >
// defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/defai-digital/AutomatosX-sub001/internal/agent"
	"github.com/defai-digital/AutomatosX-sub001/internal/notify"
	"github.com/defai-digital/AutomatosX-sub001/internal/runlog"
)

// Configuration holds the atx runtime settings.
type Configuration struct {
	// AgentPreset selects a built-in agent by name (e.g. "claude", "codex").
	// Can be set via ATX_AGENT_PRESET.
	AgentPreset string `koanf:"agent_preset"`

	// CustomAgentCmd defines a custom agent command with a {{PROMPT}}
	// placeholder. Takes precedence over agent_preset.
	// Example: "aider --model sonnet --yes-always --message {{PROMPT}}"
	CustomAgentCmd string `koanf:"custom_agent_cmd"`

	// MaxConcurrent caps how many tasks run at once across a whole run.
	MaxConcurrent int `koanf:"max_concurrent" validate:"min=1,max=256"`

	// ContinueOnError keeps a run scheduling past a level with failures,
	// marking dependents of failed tasks as failed instead of running them.
	ContinueOnError bool `koanf:"continue_on_error"`

	// RecallLimit is how many prior session outputs each task recalls.
	// Zero disables recall.
	RecallLimit int `koanf:"recall_limit" validate:"min=0,max=100"`

	// RecallCharBudget caps each recalled output's length inside a task
	// input. Zero disables truncation.
	RecallCharBudget int `koanf:"recall_char_budget" validate:"min=0"`

	// TaskTimeoutMS is the per-attempt deadline in milliseconds for tasks
	// without a timeoutMs hint.
	TaskTimeoutMS int `koanf:"task_timeout_ms" validate:"min=0"`

	// Notify sends a desktop notification when a run finishes. Off by
	// default and never fires in CI.
	Notify bool `koanf:"notify"`

	// NotifyMinDurationMS suppresses success notifications for runs
	// shorter than this many milliseconds. Failed runs always notify.
	NotifyMinDurationMS int `koanf:"notify_min_duration_ms" validate:"min=0"`

	// StateDir is the directory for state files.
	StateDir string `koanf:"state_dir"`

	// SessionDB is the SQLite session database path. Empty means
	// <state_dir>/sessions.db.
	SessionDB string `koanf:"session_db"`

	// LogDir is the run log directory. Empty means the XDG cache default.
	LogDir string `koanf:"log_dir"`
}

// LoadOptions configures how configuration is loaded.
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path (default:
	// .atx/config.yml).
	ProjectConfigPath string
	// UserConfigPath overrides the user config path. Used by tests.
	UserConfigPath string
}

// Load loads configuration from user, project, and environment sources.
// Priority: environment variables > project config > user config > defaults.
// A non-empty projectConfigPath replaces the default project config location;
// files ending in .json are parsed as JSON, everything else as YAML.
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// LoadWithOptions loads configuration with custom options.
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")

	loadDefaults(k)

	userPath := opts.UserConfigPath
	if userPath == "" {
		userPath, _ = UserConfigPath()
	}
	if err := loadConfigFile(k, userPath, "user"); err != nil {
		return nil, err
	}

	projectPath := opts.ProjectConfigPath
	if projectPath == "" {
		projectPath = ProjectConfigPath()
	}
	if err := loadConfigFile(k, projectPath, "project"); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider("ATX_", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment config: %w", err)
	}

	return finalizeConfig(k)
}

// loadDefaults applies default configuration values.
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		k.Set(key, value)
	}
}

// loadConfigFile validates and loads one config file layer. The parser is
// chosen by extension (.json uses JSON, everything else YAML). A missing
// file is not an error; the layer is simply skipped.
func loadConfigFile(k *koanf.Koanf, path, configType string) error {
	if !fileExists(path) {
		return nil
	}
	if filepath.Ext(path) == ".json" {
		if err := k.Load(file.Provider(path), kjson.Parser()); err != nil {
			return fmt.Errorf("loading %s config %s: %w", configType, path, err)
		}
		return nil
	}
	if err := ValidateYAMLSyntax(path); err != nil {
		return fmt.Errorf("validating %s config: %w", configType, err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("loading %s config %s: %w", configType, path, err)
	}
	return nil
}

// finalizeConfig unmarshals, validates, and expands paths.
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := ValidateConfigValues(&cfg, "config"); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.StateDir = expandHomePath(cfg.StateDir)
	cfg.SessionDB = expandHomePath(cfg.SessionDB)
	cfg.LogDir = expandHomePath(cfg.LogDir)

	return &cfg, nil
}

// fileExists returns true if the file exists and is readable.
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys.
// Example: ATX_MAX_CONCURRENT -> max_concurrent.
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, "ATX_"))
}

// expandHomePath expands ~ to the user's home directory.
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}

// TaskTimeout returns the default per-attempt task deadline as a duration.
func (c *Configuration) TaskTimeout() time.Duration {
	return time.Duration(c.TaskTimeoutMS) * time.Millisecond
}

// NotifyConfig returns the desktop notification settings.
func (c *Configuration) NotifyConfig() notify.Config {
	return notify.Config{
		Enabled:     c.Notify,
		MinDuration: time.Duration(c.NotifyMinDurationMS) * time.Millisecond,
	}
}

// SessionDBPath returns the SQLite session database path, resolving the
// state-dir default when session_db is unset.
func (c *Configuration) SessionDBPath() string {
	if c.SessionDB != "" {
		return c.SessionDB
	}
	return filepath.Join(c.StateDir, "sessions.db")
}

// RunLogDir returns the run log directory, resolving the cache default when
// log_dir is unset.
func (c *Configuration) RunLogDir() string {
	if c.LogDir != "" {
		return c.LogDir
	}
	return runlog.DefaultDir()
}

// Executor builds the task executor selected by the configuration.
// Priority: custom_agent_cmd > agent_preset.
func (c *Configuration) Executor(opts ...agent.CommandOption) (agent.Executor, error) {
	template := c.CustomAgentCmd
	if template == "" {
		preset, ok := agent.Preset(c.AgentPreset)
		if !ok {
			return nil, fmt.Errorf("unknown agent preset %q; available: %s",
				c.AgentPreset, strings.Join(agent.Presets(), ", "))
		}
		template = preset
	}
	return agent.NewCommandExecutor(template, opts...)
}
