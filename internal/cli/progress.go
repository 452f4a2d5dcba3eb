package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/defai-digital/AutomatosX-sub001/internal/progress"
	"github.com/defai-digital/AutomatosX-sub001/internal/scheduler"
)

var (
	cBold   = color.New(color.Bold).SprintFunc()
	cGreen  = color.New(color.FgGreen).SprintFunc()
	cRed    = color.New(color.FgRed).SprintFunc()
	cYellow = color.New(color.FgYellow).SprintFunc()
	cCyan   = color.New(color.FgCyan).SprintFunc()
	cDim    = color.New(color.Faint).SprintFunc()
)

// eventRenderer turns scheduler events into terminal lines. The scheduler
// delivers events to a sink sequentially, so rendering needs no locking.
type eventRenderer struct {
	symbols progress.ProgressSymbols
	verbose bool
}

func newEventRenderer(verbose bool) *eventRenderer {
	return &eventRenderer{
		symbols: progress.SelectSymbols(progress.DetectTerminalCapabilities()),
		verbose: verbose,
	}
}

// Sink adapts the renderer to the scheduler's event callback.
func (r *eventRenderer) Sink() scheduler.EventSink {
	return func(ev scheduler.Event) { r.render(ev) }
}

func (r *eventRenderer) render(ev scheduler.Event) {
	switch ev.Type {
	case scheduler.EventRunStart:
		fmt.Printf("%s %s %s\n", cBold("Run"), ev.RunID, cDim(fmt.Sprintf("(%d tasks)", ev.TaskCount)))
	case scheduler.EventLevelStart:
		fmt.Printf("\n%s\n", cCyan(fmt.Sprintf("Level %d", ev.Level)))
	case scheduler.EventTaskStart:
		if r.verbose {
			fmt.Printf("  %s %s %s\n", r.symbols.Running, ev.TaskID, cDim("("+ev.Agent+")"))
		}
	case scheduler.EventTaskRetry:
		fmt.Printf("  %s %s %s\n", cYellow(r.symbols.Retry), ev.TaskID,
			cDim(fmt.Sprintf("retry %d: %s", ev.Attempt, ev.Error)))
	case scheduler.EventTaskComplete:
		fmt.Printf("  %s %s %s\n", cGreen(r.symbols.Checkmark), ev.TaskID,
			cDim(formatDurationMS(ev.DurationMS)))
	case scheduler.EventTaskFailed:
		fmt.Printf("  %s %s %s\n", cRed(r.symbols.Failure), ev.TaskID, cRed(ev.Error))
	case scheduler.EventLevelComplete:
		if r.verbose {
			fmt.Printf("  %s\n", cDim(fmt.Sprintf("level %d done: %d succeeded, %d failed",
				ev.Level, len(ev.Succeeded), len(ev.Failed))))
		}
	case scheduler.EventRunComplete:
		// The run summary prints separately after the scheduler returns.
	}
}

// fanout delivers each event to every sink in order.
func fanout(sinks ...scheduler.EventSink) scheduler.EventSink {
	return func(ev scheduler.Event) {
		for _, sink := range sinks {
			if sink != nil {
				sink(ev)
			}
		}
	}
}

// formatDuration renders a duration compactly: 1.2s, 3m20s, 1h5m.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

func formatDurationMS(ms int64) string {
	return formatDuration(time.Duration(ms) * time.Millisecond)
}

// formatRelativeTime formats a time as a human-readable relative string.
func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return pluralize(int(diff.Minutes()), "min ago", "mins ago")
	case diff < 24*time.Hour:
		return pluralize(int(diff.Hours()), "hour ago", "hours ago")
	case diff < 48*time.Hour:
		return "yesterday"
	default:
		return pluralize(int(diff.Hours()/24), "day ago", "days ago")
	}
}

// pluralize returns a singular or plural form based on count.
func pluralize(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}
