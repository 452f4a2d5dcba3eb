// Package session persists task outputs for cross-task context sharing.
// A session owns an append-only, chronological log of task output records;
// tasks join a session, record their outputs, and recall what earlier tasks
// produced. Stores are safe for concurrent use and appends are durable
// before Join or Record returns.
package session

import (
	"context"
	"time"
)

// Record is one appended task output entry. Seq increases strictly within a
// session; ordering by Seq is the session's chronological order.
type Record struct {
	Seq       int64         `json:"seq"`
	TaskID    string        `json:"task_id"`
	Title     string        `json:"title"`
	Agent     string        `json:"agent"`
	Output    string        `json:"output"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// Store is the session persistence contract.
//
// Join and Record auto-create the session on first use. All methods reject
// blank ids with an IDError. Recall of a session that was never written to
// yields an empty slice, never an error.
type Store interface {
	// Join registers a task as a session participant. Re-joining updates
	// the stored title and agent.
	Join(ctx context.Context, sessionID, taskID, title, agent string) error

	// Record appends a task output to the session log.
	Record(ctx context.Context, sessionID, taskID, output string, duration time.Duration) error

	// Recall returns up to limit of the most recent records in the session,
	// excluding those of excludingTaskID, in chronological order. A limit
	// of zero or less yields an empty slice.
	Recall(ctx context.Context, sessionID, excludingTaskID string, limit int) ([]Record, error)

	// Close releases any resources held by the store.
	Close() error
}
