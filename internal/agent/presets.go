package agent

import "sort"

// presets maps built-in agent names to their command templates.
// Each template delivers the enriched input through {{PROMPT}}.
var presets = map[string]string{
	// claude -p <prompt>, with confirmations disabled for unattended runs.
	"claude": "claude --dangerously-skip-permissions -p {{PROMPT}}",
	// opencode's run subcommand is inherently non-interactive.
	"opencode": "opencode run {{PROMPT}}",
	// codex's exec mode is inherently autonomous.
	"codex": "codex exec {{PROMPT}}",
}

// Preset returns the command template for a built-in agent name.
func Preset(name string) (string, bool) {
	template, ok := presets[name]
	return template, ok
}

// Presets returns the built-in agent names, sorted.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
