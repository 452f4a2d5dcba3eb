package runlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/defai-digital/AutomatosX-sub001/internal/scheduler"
)

// Writer appends scheduler events to a JSONL run log. Every append is a
// single unbuffered write so a concurrent tailer sees complete lines
// promptly.
type Writer struct {
	mu     sync.Mutex
	file   *os.File
	path   string
	closed bool
}

// Create opens the run log for runID under dir, creating the directory as
// needed. An existing log for the same run id is appended to.
func Create(dir, runID string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating run log directory: %w", err)
	}

	path := FilePath(dir, runID)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening run log: %w", err)
	}

	return &Writer{file: file, path: path}, nil
}

// Append writes one event as a single line.
func (w *Writer) Append(ev scheduler.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	data = append(data, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("run log %s is closed", w.path)
	}
	if _, err := w.file.Write(data); err != nil {
		return fmt.Errorf("appending to run log: %w", err)
	}
	return nil
}

// Sink adapts the writer into a scheduler event sink. Append failures are
// logged and swallowed; the run log never interferes with the run itself.
func (w *Writer) Sink(logger *slog.Logger) scheduler.EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ev scheduler.Event) {
		if err := w.Append(ev); err != nil {
			logger.Warn("run log append failed", "err", err)
		}
	}
}

// Path returns the log file path.
func (w *Writer) Path() string {
	return w.path
}

// Close closes the underlying file. Close is idempotent.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}

// ReadAll decodes every event in the log at path. Blank lines, undecodable
// lines, and a partially written trailing line are skipped, so a log being
// written concurrently or cut short by a crash still reads cleanly.
func ReadAll(path string) ([]scheduler.Event, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer file.Close()

	var events []scheduler.Event
	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return events, nil
			}
			return events, fmt.Errorf("reading run log: %w", err)
		}
		if ev, ok := decodeLine(line); ok {
			events = append(events, ev)
		}
	}
}

// decodeLine parses one JSONL line. The second return is false for blank or
// undecodable lines.
func decodeLine(line string) (scheduler.Event, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return scheduler.Event{}, false
	}
	var ev scheduler.Event
	if err := json.Unmarshal([]byte(trimmed), &ev); err != nil {
		return scheduler.Event{}, false
	}
	return ev, true
}
