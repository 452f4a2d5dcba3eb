package agent

import (
	"context"
	"fmt"
	"time"
)

// DryRunExecutor produces placeholder output without invoking anything
// external. Runs still traverse the full task state machine and session
// recording, so a dry run exercises scheduling, recall, and persistence
// end to end.
type DryRunExecutor struct{}

// NewDryRunExecutor creates a dry-run executor.
func NewDryRunExecutor() *DryRunExecutor {
	return &DryRunExecutor{}
}

// Name implements Executor.
func (d *DryRunExecutor) Name() string {
	return "dry-run"
}

// Execute implements Executor. The output is deterministic for a given
// request so fixture comparisons stay stable.
func (d *DryRunExecutor) Execute(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("executing task %q: %w", req.TaskID, err)
	}
	output := fmt.Sprintf("[dry-run] task %q (agent %q) received %d bytes of input", req.TaskID, req.Agent, len(req.Input))
	return &Response{Output: output, Duration: time.Duration(0)}, nil
}
