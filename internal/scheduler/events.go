package scheduler

import (
	"sync/atomic"
	"time"
)

// EventType discriminates scheduler events.
type EventType string

const (
	// EventRunStart is emitted once when a run begins.
	EventRunStart EventType = "run_start"
	// EventRunComplete is emitted once when a run reaches a terminal status.
	EventRunComplete EventType = "run_complete"
	// EventLevelStart is emitted before any task in a level is submitted.
	EventLevelStart EventType = "level_start"
	// EventLevelComplete is emitted after every task in a level is terminal.
	EventLevelComplete EventType = "level_complete"
	// EventTaskStart is emitted when a task is admitted to a worker slot.
	EventTaskStart EventType = "task_start"
	// EventTaskRetry is emitted before each retry attempt.
	EventTaskRetry EventType = "task_retry"
	// EventTaskComplete is emitted when a task succeeds.
	EventTaskComplete EventType = "task_complete"
	// EventTaskFailed is emitted when a task exhausts its attempts or is
	// blocked by a failed dependency.
	EventTaskFailed EventType = "task_failed"
)

// Event is one observability notification. Events never carry control flow;
// consumers that lag are skipped rather than slowing the run.
type Event struct {
	Type      EventType `json:"type"`
	Time      time.Time `json:"time"`
	RunID     string    `json:"run_id"`
	SessionID string    `json:"session_id,omitempty"`
	// Level is the level index for level- and task-scoped events, -1 for
	// run-scoped events.
	Level      int      `json:"level"`
	TaskID     string   `json:"task_id,omitempty"`
	Agent      string   `json:"agent,omitempty"`
	Attempt    int      `json:"attempt,omitempty"`
	DurationMS int64    `json:"duration_ms,omitempty"`
	Error      string   `json:"error,omitempty"`
	Succeeded  []string `json:"succeeded,omitempty"`
	Failed     []string `json:"failed,omitempty"`
	TaskCount  int      `json:"task_count,omitempty"`
	Status     string   `json:"status,omitempty"`
}

// EventSink receives scheduler events in emission order.
type EventSink func(Event)

// dispatcher decouples event emission from the sink. Emission is a
// non-blocking channel send; a single drainer goroutine preserves order. All
// methods are safe on a nil receiver so a scheduler without a sink pays
// nothing.
type dispatcher struct {
	ch      chan Event
	done    chan struct{}
	dropped atomic.Int64
}

func newDispatcher(sink EventSink) *dispatcher {
	if sink == nil {
		return nil
	}
	d := &dispatcher{
		ch:   make(chan Event, 256),
		done: make(chan struct{}),
	}
	go func() {
		defer close(d.done)
		for ev := range d.ch {
			sink(ev)
		}
	}()
	return d
}

// emit queues an event, dropping it if the buffer is full.
func (d *dispatcher) emit(ev Event) {
	if d == nil {
		return
	}
	select {
	case d.ch <- ev:
	default:
		d.dropped.Add(1)
	}
}

// close stops accepting events and waits up to timeout for the drainer to
// flush. It returns the number of events dropped during the run.
func (d *dispatcher) close(timeout time.Duration) int64 {
	if d == nil {
		return 0
	}
	close(d.ch)
	select {
	case <-d.done:
	case <-time.After(timeout):
	}
	return d.dropped.Load()
}
