// Package progress selects terminal presentation for run output. Capability
// detection keeps output readable when stdout is redirected or the terminal
// cannot render Unicode, and picks the spinner charset for interactive waits.
package progress

import (
	"os"

	"golang.org/x/term"
)

// TerminalCapabilities describes what the attached terminal can render.
type TerminalCapabilities struct {
	// IsTTY reports whether stdout is an interactive terminal.
	IsTTY bool
	// SupportsColor is false when stdout is not a TTY or NO_COLOR is set.
	SupportsColor bool
	// SupportsUnicode is false when stdout is not a TTY or ATX_ASCII=1.
	SupportsUnicode bool
	// Width is the terminal width in columns, 0 when unknown.
	Width int
}

// ProgressSymbols is the glyph set used for task status lines.
type ProgressSymbols struct {
	Checkmark string
	Failure   string
	Running   string
	Retry     string
	Blocked   string
	// SpinnerSet indexes spinner.CharSets.
	SpinnerSet int
}

// DetectTerminalCapabilities detects terminal features and returns capabilities.
// Checks: stdout isatty, NO_COLOR env, ATX_ASCII env, terminal width.
func DetectTerminalCapabilities() TerminalCapabilities {
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))

	noColor := os.Getenv("NO_COLOR") != ""
	forceASCII := os.Getenv("ATX_ASCII") == "1"

	width := 0
	if isTTY {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width = w
		}
	}

	return TerminalCapabilities{
		IsTTY:           isTTY,
		SupportsColor:   isTTY && !noColor,
		SupportsUnicode: isTTY && !forceASCII,
		Width:           width,
	}
}

// SelectSymbols returns the appropriate symbol set based on terminal capabilities.
// Unicode: ✓/✗ with braille spinner (set 14). ASCII: [OK]/[FAIL] with |/-\ spinner (set 9).
func SelectSymbols(caps TerminalCapabilities) ProgressSymbols {
	if caps.SupportsUnicode {
		return ProgressSymbols{
			Checkmark:  "✓",
			Failure:    "✗",
			Running:    "▶",
			Retry:      "↻",
			Blocked:    "⊘",
			SpinnerSet: 14, // Unicode dots: ⠋ ⠙ ⠹ ⠸ ⠼ ⠴ ⠦ ⠧ ⠇ ⠏
		}
	}

	return ProgressSymbols{
		Checkmark:  "[OK]",
		Failure:    "[FAIL]",
		Running:    "[RUN]",
		Retry:      "[RETRY]",
		Blocked:    "[SKIP]",
		SpinnerSet: 9, // ASCII: | / - \
	}
}
