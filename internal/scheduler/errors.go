package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// LevelAbortedError represents a run stopped at a level barrier because the
// level had failures and the run was not configured to continue past them.
type LevelAbortedError struct {
	// Level is the index of the level that aborted the run.
	Level int
	// FailedTaskIDs lists the failed tasks in declaration order.
	FailedTaskIDs []string
}

// Error implements the error interface.
func (e *LevelAbortedError) Error() string {
	return fmt.Sprintf("level %d aborted the run: %d failed task(s): %s",
		e.Level, len(e.FailedTaskIDs), strings.Join(e.FailedTaskIDs, ", "))
}

// TimeoutError represents a task attempt that exceeded its deadline.
// Timeouts are retry-eligible failures, not fatal ones.
type TimeoutError struct {
	// TaskID is the task whose attempt timed out.
	TaskID string
	// Timeout is the deadline the attempt exceeded.
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("task %q timed out after %s", e.TaskID, e.Timeout)
}

// Unwrap lets callers match with errors.Is(err, context.DeadlineExceeded).
func (e *TimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}
