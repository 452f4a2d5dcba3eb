package runlog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/defai-digital/AutomatosX-sub001/internal/scheduler"
)

func sampleEvent(typ scheduler.EventType, runID, taskID string) scheduler.Event {
	return scheduler.Event{
		Type:   typ,
		Time:   time.Now().UTC(),
		RunID:  runID,
		TaskID: taskID,
	}
}

func TestWriter_AppendAndReadAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "runs")

	w, err := Create(dir, "run-1")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	events := []scheduler.Event{
		sampleEvent(scheduler.EventRunStart, "run-1", ""),
		{Type: scheduler.EventTaskComplete, Time: time.Now().UTC(), RunID: "run-1", TaskID: "build", Agent: "claude", DurationMS: 1234},
		sampleEvent(scheduler.EventRunComplete, "run-1", ""),
	}
	for _, ev := range events {
		if err := w.Append(ev); err != nil {
			t.Fatalf("Append() error: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	if got, want := w.Path(), FilePath(dir, "run-1"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}

	got, err := ReadAll(w.Path())
	if err != nil {
		t.Fatalf("ReadAll() error: %v", err)
	}
	if len(got) != len(events) {
		t.Fatalf("ReadAll() returned %d events, want %d", len(got), len(events))
	}
	for i, want := range events {
		if got[i].Type != want.Type {
			t.Errorf("event %d: Type = %q, want %q", i, got[i].Type, want.Type)
		}
	}
	if got[1].TaskID != "build" || got[1].Agent != "claude" || got[1].DurationMS != 1234 {
		t.Errorf("task event did not round-trip: %+v", got[1])
	}
}

func TestWriter_AppendAfterClose(t *testing.T) {
	w, err := Create(t.TempDir(), "run-1")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}

	if err := w.Append(sampleEvent(scheduler.EventRunStart, "run-1", "")); err == nil {
		t.Error("Append() after Close() should fail")
	}
}

func TestReadAll_ToleratesDamagedLines(t *testing.T) {
	tests := map[string]struct {
		content   string
		wantTypes []scheduler.EventType
	}{
		"partial trailing line": {
			content:   `{"type":"run_start","run_id":"r"}` + "\n" + `{"type":"task_start","task_id":"a"}` + "\n" + `{"type":"task_comp`,
			wantTypes: []scheduler.EventType{scheduler.EventRunStart, scheduler.EventTaskStart},
		},
		"blank and garbage lines": {
			content:   "\n" + `{"type":"run_start"}` + "\nnot json at all\n" + `{"type":"run_complete"}` + "\n",
			wantTypes: []scheduler.EventType{scheduler.EventRunStart, scheduler.EventRunComplete},
		},
		"empty file": {
			content:   "",
			wantTypes: nil,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "run.jsonl")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("writing fixture: %v", err)
			}

			got, err := ReadAll(path)
			if err != nil {
				t.Fatalf("ReadAll() error: %v", err)
			}
			if len(got) != len(tc.wantTypes) {
				t.Fatalf("got %d events, want %d", len(got), len(tc.wantTypes))
			}
			for i, want := range tc.wantTypes {
				if got[i].Type != want {
					t.Errorf("event %d: Type = %q, want %q", i, got[i].Type, want)
				}
			}
		})
	}
}

func TestRunsAndLatest(t *testing.T) {
	dir := t.TempDir()

	ids := []string{
		"20260102_110000_bbbbbbbb",
		"20260101_090000_aaaaaaaa",
		"20260103_150000_cccccccc",
	}
	for _, id := range ids {
		if err := os.WriteFile(FilePath(dir, id), []byte("{}\n"), 0o644); err != nil {
			t.Fatalf("writing fixture: %v", err)
		}
	}
	// Non-log entries are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "archive.jsonl"), 0o755); err != nil {
		t.Fatalf("creating fixture dir: %v", err)
	}

	got, err := Runs(dir)
	if err != nil {
		t.Fatalf("Runs() error: %v", err)
	}
	want := []string{"20260101_090000_aaaaaaaa", "20260102_110000_bbbbbbbb", "20260103_150000_cccccccc"}
	if len(got) != len(want) {
		t.Fatalf("Runs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Runs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	latest, err := Latest(dir)
	if err != nil {
		t.Fatalf("Latest() error: %v", err)
	}
	if latest != "20260103_150000_cccccccc" {
		t.Errorf("Latest() = %q, want %q", latest, "20260103_150000_cccccccc")
	}
}

func TestRunsAndLatest_Empty(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	got, err := Runs(missing)
	if err != nil {
		t.Fatalf("Runs() on missing dir error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Runs() on missing dir = %v, want empty", got)
	}

	if _, err := Latest(missing); !errors.Is(err, ErrNoRuns) {
		t.Errorf("Latest() error = %v, want ErrNoRuns", err)
	}
}

func TestDefaultDir_HonorsXDGCacheHome(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", tmp)

	if got, want := DefaultDir(), filepath.Join(tmp, "atx", "runs"); got != want {
		t.Errorf("DefaultDir() = %q, want %q", got, want)
	}
}

func TestTailer_ReplayNoFollow(t *testing.T) {
	dir := t.TempDir()
	w, err := Create(dir, "run-1")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	types := []scheduler.EventType{scheduler.EventRunStart, scheduler.EventTaskStart, scheduler.EventTaskComplete, scheduler.EventRunComplete}
	for _, typ := range types {
		if err := w.Append(sampleEvent(typ, "run-1", "a")); err != nil {
			t.Fatalf("Append() error: %v", err)
		}
	}
	w.Close()

	tailer, err := NewTailer(w.Path())
	if err != nil {
		t.Fatalf("NewTailer() error: %v", err)
	}
	defer tailer.Close()

	events, err := tailer.Tail(context.Background(), false)
	if err != nil {
		t.Fatalf("Tail() error: %v", err)
	}

	var got []scheduler.EventType
	for ev := range events {
		got = append(got, ev.Type)
	}

	if len(got) != len(types) {
		t.Fatalf("got %d events, want %d", len(got), len(types))
	}
	for i, want := range types {
		if got[i] != want {
			t.Errorf("event %d: Type = %q, want %q", i, got[i], want)
		}
	}
}

func TestTailer_FollowStreamsAppends(t *testing.T) {
	dir := t.TempDir()
	w, err := Create(dir, "run-1")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	defer w.Close()

	if err := w.Append(sampleEvent(scheduler.EventRunStart, "run-1", "")); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	tailer, err := NewTailer(w.Path())
	if err != nil {
		t.Fatalf("NewTailer() error: %v", err)
	}
	defer tailer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := tailer.Tail(ctx, true)
	if err != nil {
		t.Fatalf("Tail() error: %v", err)
	}

	var got []scheduler.EventType
	collect := func(want int) {
		t.Helper()
		timeout := time.After(2 * time.Second)
		for len(got) < want {
			select {
			case ev, ok := <-events:
				if !ok {
					t.Fatalf("channel closed early, got %v", got)
				}
				got = append(got, ev.Type)
			case <-timeout:
				t.Fatalf("timed out waiting for %d events, got %v", want, got)
			}
		}
	}

	collect(1)

	if err := w.Append(sampleEvent(scheduler.EventTaskStart, "run-1", "a")); err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	if err := w.Append(sampleEvent(scheduler.EventTaskComplete, "run-1", "a")); err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	collect(3)

	if got[0] != scheduler.EventRunStart || got[1] != scheduler.EventTaskStart || got[2] != scheduler.EventTaskComplete {
		t.Errorf("unexpected event sequence: %v", got)
	}

	// Cancellation closes the stream.
	cancel()
	select {
	case _, ok := <-events:
		if ok {
			for range events {
			}
		}
	case <-time.After(time.Second):
		t.Error("channel did not close after cancellation")
	}
}

func TestTailer_WaitsForFileCreation(t *testing.T) {
	dir := t.TempDir()
	path := FilePath(dir, "run-1")

	tailer, err := NewTailer(path)
	if err != nil {
		t.Fatalf("NewTailer() error: %v", err)
	}
	defer tailer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	events, err := tailer.Tail(ctx, false)
	if err != nil {
		t.Fatalf("Tail() error: %v", err)
	}

	// The log appears atomically via rename after the tailer is waiting.
	go func() {
		time.Sleep(250 * time.Millisecond)
		tmp := filepath.Join(dir, "run-1.tmp")
		line := `{"type":"run_start","run_id":"run-1"}` + "\n"
		if err := os.WriteFile(tmp, []byte(line), 0o644); err != nil {
			return
		}
		_ = os.Rename(tmp, path)
	}()

	var got []scheduler.Event
	for ev := range events {
		got = append(got, ev)
	}

	if len(got) != 1 || got[0].Type != scheduler.EventRunStart {
		t.Errorf("got %v, want single run_start event", got)
	}
}

func TestTailer_HandlesTruncation(t *testing.T) {
	dir := t.TempDir()
	w, err := Create(dir, "run-1")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := w.Append(sampleEvent(scheduler.EventTaskStart, "20260101_000000_aaaabbbb", "some-long-task-id")); err != nil {
			t.Fatalf("Append() error: %v", err)
		}
	}
	w.Close()

	tailer, err := NewTailer(w.Path())
	if err != nil {
		t.Fatalf("NewTailer() error: %v", err)
	}
	defer tailer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	events, err := tailer.Tail(ctx, true)
	if err != nil {
		t.Fatalf("Tail() error: %v", err)
	}

	for i := 0; i < 3; i++ {
		select {
		case <-events:
		case <-time.After(time.Second):
			t.Fatal("timed out reading initial events")
		}
	}

	// Replace the log with a shorter one; the tailer resets to the start.
	if err := os.WriteFile(w.Path(), []byte(`{"type":"run_complete"}`+"\n"), 0o644); err != nil {
		t.Fatalf("truncating log: %v", err)
	}

	select {
	case ev, ok := <-events:
		if !ok {
			t.Fatal("channel closed before truncated content arrived")
		}
		if ev.Type != scheduler.EventRunComplete {
			t.Errorf("after truncation got %q, want run_complete", ev.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for post-truncation event")
	}
}

func TestTailer_CloseIdempotent(t *testing.T) {
	tailer, err := NewTailer(filepath.Join(t.TempDir(), "run.jsonl"))
	if err != nil {
		t.Fatalf("NewTailer() error: %v", err)
	}
	if err := tailer.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
	if err := tailer.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
}
