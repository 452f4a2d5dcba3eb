// Package runlog persists scheduler events as JSON Lines, one event per
// line, and streams them back for live watching. A run's log is an
// append-only file named after its run id; because run ids carry a timestamp
// prefix, lexicographic order is chronological order.
package runlog

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extension is the run log file extension.
const Extension = ".jsonl"

// ErrNoRuns is returned by Latest when the directory holds no run logs.
var ErrNoRuns = errors.New("no run logs found")

// DefaultDir returns the base directory for run logs. It honors
// XDG_CACHE_HOME, falling back to the platform cache directory.
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "atx", "runs")
	}

	cacheDir, err := os.UserCacheDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return filepath.Join(".", ".atx-runs")
		}
		return filepath.Join(home, ".cache", "atx", "runs")
	}

	return filepath.Join(cacheDir, "atx", "runs")
}

// FilePath returns the log file path for a run id inside dir.
func FilePath(dir, runID string) string {
	return filepath.Join(dir, runID+Extension)
}

// Runs lists the run ids with a log file in dir, sorted ascending. Run ids
// sort chronologically because of their timestamp prefix. A missing
// directory is treated as empty.
func Runs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Extension) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), Extension))
	}
	sort.Strings(ids)
	return ids, nil
}

// Latest returns the most recent run id in dir, or ErrNoRuns when the
// directory holds none.
func Latest(dir string) (string, error) {
	ids, err := Runs(dir)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", ErrNoRuns
	}
	return ids[len(ids)-1], nil
}
