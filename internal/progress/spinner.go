package progress

import (
	"time"

	"github.com/briandowns/spinner"
)

// NewSpinner builds a spinner matching the detected capabilities. The caller
// owns Start and Stop. On non-TTY output callers should skip the spinner and
// print plain lines instead.
func NewSpinner(caps TerminalCapabilities, message string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[SelectSymbols(caps).SpinnerSet], 120*time.Millisecond)
	s.Suffix = " " + message
	return s
}
