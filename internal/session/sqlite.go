package session

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a durable Store backed by a single SQLite file. Appends
// commit before Join or Record returns, so recalled context survives process
// restarts and later runs can read earlier sessions.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the session database at path and applies the
// schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StoreError{Op: "open", Err: err}
	}
	// The driver rejects concurrent writers with SQLITE_BUSY; a single
	// connection serializes them instead.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, &StoreError{Op: "migrate", Err: err}
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS session_tasks (
		session_id TEXT NOT NULL REFERENCES sessions(id),
		task_id TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		agent TEXT NOT NULL DEFAULT '',
		joined_at TIMESTAMP NOT NULL,
		PRIMARY KEY (session_id, task_id)
	);

	CREATE TABLE IF NOT EXISTS task_outputs (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		task_id TEXT NOT NULL,
		output TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_task_outputs_session ON task_outputs(session_id, seq);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Join implements Store.
func (s *SQLiteStore) Join(ctx context.Context, sessionID, taskID, title, agent string) error {
	if err := validateIDs(sessionID, taskID); err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := s.ensureSession(ctx, sessionID, now); err != nil {
		return &StoreError{Op: "join", Err: err}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_tasks (session_id, task_id, title, agent, joined_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(session_id, task_id) DO UPDATE SET title = excluded.title, agent = excluded.agent`,
		sessionID, taskID, title, agent, now,
	)
	if err != nil {
		return &StoreError{Op: "join", Err: err}
	}
	return nil
}

// Record implements Store.
func (s *SQLiteStore) Record(ctx context.Context, sessionID, taskID, output string, duration time.Duration) error {
	if err := validateIDs(sessionID, taskID); err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := s.ensureSession(ctx, sessionID, now); err != nil {
		return &StoreError{Op: "record", Err: err}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO task_outputs (session_id, task_id, output, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		sessionID, taskID, output, duration.Milliseconds(), now,
	)
	if err != nil {
		return &StoreError{Op: "record", Err: err}
	}
	return nil
}

// Recall implements Store.
func (s *SQLiteStore) Recall(ctx context.Context, sessionID, excludingTaskID string, limit int) ([]Record, error) {
	if isBlank(sessionID) {
		return nil, &IDError{Field: "session id", Value: sessionID}
	}
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT o.seq, o.task_id, COALESCE(t.title, ''), COALESCE(t.agent, ''), o.output, o.duration_ms, o.created_at
		 FROM task_outputs o
		 LEFT JOIN session_tasks t ON t.session_id = o.session_id AND t.task_id = o.task_id
		 WHERE o.session_id = ? AND o.task_id <> ?
		 ORDER BY o.seq DESC
		 LIMIT ?`,
		sessionID, excludingTaskID, limit,
	)
	if err != nil {
		return nil, &StoreError{Op: "recall", Err: err}
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var durationMS int64
		if err := rows.Scan(&r.Seq, &r.TaskID, &r.Title, &r.Agent, &r.Output, &durationMS, &r.Timestamp); err != nil {
			return nil, &StoreError{Op: "recall", Err: err}
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "recall", Err: err}
	}

	// The query walks newest-first to apply the limit; flip back to
	// chronological order.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	return records, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ensureSession creates the session row on first use.
func (s *SQLiteStore) ensureSession(ctx context.Context, sessionID string, now time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO sessions (id, created_at) VALUES (?, ?)`,
		sessionID, now,
	)
	return err
}

// Info summarizes one stored session for listing.
type Info struct {
	ID        string
	CreatedAt time.Time
	Records   int
}

// Sessions lists stored sessions, newest first.
func (s *SQLiteStore) Sessions(ctx context.Context) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.created_at, COUNT(o.seq)
		 FROM sessions s
		 LEFT JOIN task_outputs o ON o.session_id = s.id
		 GROUP BY s.id
		 ORDER BY s.created_at DESC`,
	)
	if err != nil {
		return nil, &StoreError{Op: "sessions", Err: err}
	}
	defer rows.Close()

	var infos []Info
	for rows.Next() {
		var info Info
		if err := rows.Scan(&info.ID, &info.CreatedAt, &info.Records); err != nil {
			return nil, &StoreError{Op: "sessions", Err: err}
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
