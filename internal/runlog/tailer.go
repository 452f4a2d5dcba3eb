package runlog

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/defai-digital/AutomatosX-sub001/internal/scheduler"
)

// pollInterval is the backup polling cadence for missed filesystem events.
const pollInterval = 100 * time.Millisecond

// Tailer streams events from a run log as they are appended. It uses
// fsnotify for change detection with periodic polling as a backup. The file
// does not need to exist yet; the tailer waits for its creation.
type Tailer struct {
	path    string
	watcher *fsnotify.Watcher
	mu      sync.Mutex
	closed  bool
}

// NewTailer creates a Tailer for the given run log path.
func NewTailer(path string) (*Tailer, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Tailer{path: path, watcher: watcher}, nil
}

// Tail streams events from the run log. The returned channel receives
// existing events first, then new ones as they are appended. It is closed
// when the context is cancelled or, with follow false, once existing content
// has been replayed.
func (t *Tailer) Tail(ctx context.Context, follow bool) (<-chan scheduler.Event, error) {
	events := make(chan scheduler.Event, 100)

	go t.tailLoop(ctx, events, follow)

	return events, nil
}

func (t *Tailer) tailLoop(ctx context.Context, events chan<- scheduler.Event, follow bool) {
	defer close(events)

	if err := t.waitForFile(ctx); err != nil {
		return
	}

	offset := t.drainFile(ctx, events, 0)

	if !follow {
		return
	}

	t.streamNewEvents(ctx, events, offset)
}

// waitForFile blocks until the run log exists or the context ends.
func (t *Tailer) waitForFile(ctx context.Context) error {
	if _, err := os.Stat(t.path); err == nil {
		return nil
	}

	parentDir := filepath.Dir(t.path)
	if err := os.MkdirAll(parentDir, 0o755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}
	if err := t.watcher.Add(parentDir); err != nil {
		return fmt.Errorf("watching parent directory: %w", err)
	}

	// Poll periodically in case a creation event is missed.
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-t.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			if event.Name == t.path && (event.Has(fsnotify.Create) || event.Has(fsnotify.Write)) {
				return nil
			}
		case <-ticker.C:
			if _, err := os.Stat(t.path); err == nil {
				return nil
			}
		case err, ok := <-t.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// streamNewEvents watches the file and forwards appended events until the
// context ends.
func (t *Tailer) streamNewEvents(ctx context.Context, events chan<- scheduler.Event, offset int64) {
	if err := t.watcher.Add(t.path); err != nil {
		return
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-t.watcher.Events:
			if !ok {
				return
			}
			if event.Name == t.path && (event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				offset = t.drainFile(ctx, events, offset)
			}
		case <-ticker.C:
			offset = t.drainFile(ctx, events, offset)
		case _, ok := <-t.watcher.Errors:
			if !ok {
				return
			}
			// Polling covers reads missed due to watcher errors.
		}
	}
}

// drainFile sends every complete event line at or after offset and returns
// the new offset. A partially written trailing line is left unconsumed
// until the rest of it arrives. Truncation resets the offset to the start.
func (t *Tailer) drainFile(ctx context.Context, events chan<- scheduler.Event, offset int64) int64 {
	file, err := os.Open(t.path)
	if err != nil {
		return offset
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset
	}
	if info.Size() < offset {
		offset = 0
	}

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset
	}

	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return offset
		}
		offset += int64(len(line))

		ev, ok := decodeLine(line)
		if !ok {
			continue
		}
		select {
		case <-ctx.Done():
			return offset
		case events <- ev:
		}
	}
}

// Close stops the tailer and releases the watcher. Close is idempotent.
func (t *Tailer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	return t.watcher.Close()
}

// Path returns the path being tailed.
func (t *Tailer) Path() string {
	return t.path
}
