// Package agent defines the task-executor collaborator contract and its
// built-in implementations. The scheduler treats executors as opaque: an
// executor receives one enriched input and either produces output or fails.
// Timeouts arrive through the context deadline; executors must stop work
// when the context is cancelled.
package agent

import (
	"context"
	"time"

	"github.com/defai-digital/AutomatosX-sub001/internal/policy"
)

// Request is one unit of work handed to an executor.
type Request struct {
	// TaskID is the graph node id being executed.
	TaskID string
	// Agent is the agent name declared on the actor.
	Agent string
	// Input is the enriched task input: the task body plus any recalled
	// prior context.
	Input string
	// Weights is the resolved policy vector, available to executors that
	// route between providers.
	Weights policy.Weights
}

// Response is a successful execution result.
type Response struct {
	// Output is the captured task output.
	Output string
	// Duration is the wall-clock execution time.
	Duration time.Duration
}

// Executor runs task requests. Implementations must be safe for concurrent
// calls; the scheduler invokes one executor from many workers at once.
type Executor interface {
	// Execute runs the request to completion or until the context ends.
	Execute(ctx context.Context, req Request) (*Response, error)
	// Name identifies the executor in logs and events.
	Name() string
}

// Func adapts a plain function into an Executor.
type Func struct {
	name string
	fn   func(ctx context.Context, req Request) (*Response, error)
}

// NewFunc wraps fn as a named Executor.
func NewFunc(name string, fn func(ctx context.Context, req Request) (*Response, error)) *Func {
	return &Func{name: name, fn: fn}
}

// Execute implements Executor.
func (f *Func) Execute(ctx context.Context, req Request) (*Response, error) {
	return f.fn(ctx, req)
}

// Name implements Executor.
func (f *Func) Name() string {
	return f.name
}
