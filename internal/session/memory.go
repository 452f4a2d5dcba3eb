package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. It is the default backend for
// single-run invocations and for tests; nothing survives process exit.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*memorySession
}

type memorySession struct {
	nextSeq int64
	tasks   map[string]taskInfo
	records []Record
}

type taskInfo struct {
	title string
	agent string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*memorySession)}
}

// Join implements Store.
func (m *MemoryStore) Join(ctx context.Context, sessionID, taskID, title, agent string) error {
	if err := validateIDs(sessionID, taskID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &StoreError{Op: "join", Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.session(sessionID)
	s.tasks[taskID] = taskInfo{title: title, agent: agent}
	return nil
}

// Record implements Store.
func (m *MemoryStore) Record(ctx context.Context, sessionID, taskID, output string, duration time.Duration) error {
	if err := validateIDs(sessionID, taskID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &StoreError{Op: "record", Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.session(sessionID)
	info := s.tasks[taskID]
	s.nextSeq++
	s.records = append(s.records, Record{
		Seq:       s.nextSeq,
		TaskID:    taskID,
		Title:     info.title,
		Agent:     info.agent,
		Output:    output,
		Duration:  duration,
		Timestamp: time.Now().UTC(),
	})
	return nil
}

// Recall implements Store.
func (m *MemoryStore) Recall(ctx context.Context, sessionID, excludingTaskID string, limit int) ([]Record, error) {
	if isBlank(sessionID) {
		return nil, &IDError{Field: "session id", Value: sessionID}
	}
	if err := ctx.Err(); err != nil {
		return nil, &StoreError{Op: "recall", Err: err}
	}
	if limit <= 0 {
		return nil, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, nil
	}

	var matched []Record
	for _, r := range s.records {
		if r.TaskID != excludingTaskID {
			matched = append(matched, r)
		}
	}
	if len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}

	out := make([]Record, len(matched))
	copy(out, matched)
	return out, nil
}

// Close implements Store. It is a no-op for the in-memory backend.
func (m *MemoryStore) Close() error {
	return nil
}

// session returns the named session, creating it on first use. Callers must
// hold mu.
func (m *MemoryStore) session(id string) *memorySession {
	s, ok := m.sessions[id]
	if !ok {
		s = &memorySession{tasks: make(map[string]taskInfo)}
		m.sessions[id] = s
	}
	return s
}
