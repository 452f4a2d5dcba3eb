package scheduler

import "time"

// Status is a task's externally visible state. In-flight states (joined,
// running) are observable through events and logs; results only ever show
// pending or a terminal status.
type Status string

const (
	// StatusPending means the task never started. Tasks stay pending when
	// the run aborts or is cancelled before reaching them.
	StatusPending Status = "pending"
	// StatusCompleted means the task produced output.
	StatusCompleted Status = "completed"
	// StatusFailed means the task exhausted its attempts, or was never
	// executed because a dependency failed.
	StatusFailed Status = "failed"
)

// RunStatus is the terminal status of a whole run.
type RunStatus string

const (
	// RunCompleted means every task completed.
	RunCompleted RunStatus = "completed"
	// RunFailed means at least one task failed.
	RunFailed RunStatus = "failed"
	// RunCancelled means the run was interrupted; some tasks may never
	// have started.
	RunCancelled RunStatus = "cancelled"
)

// TaskResult is the finalized outcome of one task.
type TaskResult struct {
	TaskID string
	Agent  string
	Level  int
	Status Status
	// Output is the task output, set only on completion.
	Output string
	// Err is the last attempt's error, or a dependency-failure error for
	// tasks that never ran.
	Err error
	// Duration is the wall-clock time spent on the task across all
	// attempts. Zero for tasks that never ran.
	Duration time.Duration
	// RetryCount is the number of retries performed beyond the first
	// attempt.
	RetryCount int
	// BlockedBy lists the failed dependencies that prevented execution.
	BlockedBy []string
}

// LevelReport summarizes one level barrier.
type LevelReport struct {
	Index int
	// Succeeded and Failed list task ids in declaration order.
	Succeeded []string
	Failed    []string
	Duration  time.Duration
}

// RunResult is the outcome of a whole run. Tasks holds an entry for every
// graph node, including ones that never started.
type RunResult struct {
	RunID     string
	SessionID string
	Status    RunStatus
	Tasks     map[string]*TaskResult
	Levels    []LevelReport
	Duration  time.Duration
}

// Counts returns how many tasks completed, failed, and never started.
func (r *RunResult) Counts() (completed, failed, pending int) {
	for _, task := range r.Tasks {
		switch task.Status {
		case StatusCompleted:
			completed++
		case StatusFailed:
			failed++
		default:
			pending++
		}
	}
	return completed, failed, pending
}
