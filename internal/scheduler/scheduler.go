// Package scheduler executes a leveled graph against an external task
// executor. Levels run in order with a synchronization barrier between them;
// within a level, tasks run concurrently under a single admission cap shared
// by the whole run. Task outputs flow forward through a session store so
// later levels see what earlier levels produced.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/defai-digital/AutomatosX-sub001/internal/agent"
	"github.com/defai-digital/AutomatosX-sub001/internal/graph"
	"github.com/defai-digital/AutomatosX-sub001/internal/session"
)

// Defaults for the scheduling knobs. Each is overridable with an Option.
const (
	DefaultMaxConcurrent    = 4
	DefaultRecallLimit      = 5
	DefaultRecallCharBudget = 2000
	DefaultTaskTimeout      = 5 * time.Minute
)

// contextHeader delimits recalled prior outputs inside an enriched input.
const (
	contextHeader = "--- prior context ---"
	contextFooter = "--- end prior context ---"
)

// Scheduler drives one run at a time. A Scheduler is cheap to construct;
// build one per run.
type Scheduler struct {
	store    session.Store
	executor agent.Executor
	logger   *slog.Logger
	events   EventSink

	maxConcurrent    int
	continueOnError  bool
	recallLimit      int
	recallCharBudget int
	taskTimeout      time.Duration
	runID            string
	sessionID        string
	now              func() time.Time
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithMaxConcurrent sets the run-wide concurrency cap. Values below 1 are
// ignored.
func WithMaxConcurrent(n int) Option {
	return func(s *Scheduler) {
		if n >= 1 {
			s.maxConcurrent = n
		}
	}
}

// WithContinueOnError lets the run proceed past a level with failures,
// marking dependents of failed tasks as failed instead of running them.
func WithContinueOnError(continueOnError bool) Option {
	return func(s *Scheduler) {
		s.continueOnError = continueOnError
	}
}

// WithRecallLimit sets how many prior outputs each task recalls. Zero
// disables recall; negative values are ignored.
func WithRecallLimit(n int) Option {
	return func(s *Scheduler) {
		if n >= 0 {
			s.recallLimit = n
		}
	}
}

// WithRecallCharBudget caps each recalled output's length inside an enriched
// input. Values of zero or less disable truncation.
func WithRecallCharBudget(n int) Option {
	return func(s *Scheduler) {
		s.recallCharBudget = n
	}
}

// WithDefaultTaskTimeout sets the per-attempt deadline for tasks that carry
// no timeout hint. Values of zero or less are ignored.
func WithDefaultTaskTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.taskTimeout = d
		}
	}
}

// WithRunID fixes the run id instead of generating one. Useful when the
// caller needs the id before the run starts, e.g. to name a log file.
func WithRunID(id string) Option {
	return func(s *Scheduler) {
		s.runID = id
	}
}

// WithSessionID joins an existing session instead of starting a fresh one,
// so recall sees outputs from earlier runs.
func WithSessionID(id string) Option {
	return func(s *Scheduler) {
		s.sessionID = id
	}
}

// WithEvents registers an observability sink.
func WithEvents(sink EventSink) Option {
	return func(s *Scheduler) {
		s.events = sink
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source for event timestamps and durations.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Scheduler with the given session store and task executor.
func New(store session.Store, executor agent.Executor, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:            store,
		executor:         executor,
		logger:           slog.Default(),
		maxConcurrent:    DefaultMaxConcurrent,
		recallLimit:      DefaultRecallLimit,
		recallCharBudget: DefaultRecallCharBudget,
		taskTimeout:      DefaultTaskTimeout,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewRunID generates a run id with a timestamp prefix for sortable listings.
// The format is YYYYMMDD_HHMMSS_<8-char-uuid>.
func NewRunID() string {
	timestamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("%s_%s", timestamp, uuid.New().String()[:8])
}

// Run executes the graph level by level and returns the finalized result.
//
// The returned error is a *LevelAbortedError when a level's failures stop
// the run, or the context's error when the run is cancelled. A run that
// finishes with failures under WithContinueOnError returns a nil error; the
// outcome is in the result's Status.
//
// Cancellation stops new task submissions. Tasks already past admission
// finish cooperatively, bounded only by their own timeout, and their results
// are kept.
func (s *Scheduler) Run(ctx context.Context, g *graph.Graph) (*RunResult, error) {
	runID := s.runID
	if runID == "" {
		runID = NewRunID()
	}
	sessionID := s.sessionID
	if sessionID == "" {
		sessionID = runID
	}

	result := &RunResult{
		RunID:     runID,
		SessionID: sessionID,
		Status:    RunCompleted,
		Tasks:     make(map[string]*TaskResult, g.Len()),
	}
	for _, node := range g.Nodes {
		result.Tasks[node.ID] = &TaskResult{
			TaskID: node.ID,
			Agent:  node.Agent,
			Level:  g.LevelOf(node.ID),
			Status: StatusPending,
		}
	}

	if g.PolicyDefaulted {
		s.logger.Warn("policy weights fell back to goal defaults",
			"cost", g.Weights.Cost, "latency", g.Weights.Latency, "reliability", g.Weights.Reliability)
	}

	events := newDispatcher(s.events)
	s.logger.Info("run started",
		"run_id", runID, "session_id", sessionID,
		"tasks", g.Len(), "levels", len(g.Levels), "max_concurrent", s.maxConcurrent)
	events.emit(Event{
		Type: EventRunStart, Time: s.now(), RunID: runID, SessionID: sessionID,
		Level: -1, TaskCount: g.Len(),
	})

	start := s.now()
	sem := make(chan struct{}, s.maxConcurrent)

	var runErr error
	anyFailed := false
	for i, ids := range g.Levels {
		if ctx.Err() != nil {
			result.Status = RunCancelled
			runErr = ctx.Err()
			break
		}

		report := s.runLevel(ctx, g, i, ids, sem, runID, sessionID, result, events)
		result.Levels = append(result.Levels, report)

		if len(report.Failed) > 0 {
			anyFailed = true
			if !s.continueOnError {
				result.Status = RunFailed
				runErr = &LevelAbortedError{Level: i, FailedTaskIDs: report.Failed}
				s.logger.Error("run aborted at level barrier", "level", i, "failed", report.Failed)
				break
			}
		}

		if ctx.Err() != nil {
			result.Status = RunCancelled
			runErr = ctx.Err()
			break
		}
	}

	if result.Status == RunCompleted && anyFailed {
		result.Status = RunFailed
	}
	result.Duration = s.now().Sub(start)

	completed, failed, pending := result.Counts()
	s.logger.Info("run finished",
		"run_id", runID, "status", result.Status, "duration", result.Duration,
		"completed", completed, "failed", failed, "pending", pending)
	events.emit(Event{
		Type: EventRunComplete, Time: s.now(), RunID: runID, SessionID: sessionID,
		Level: -1, Status: string(result.Status), DurationMS: result.Duration.Milliseconds(),
	})
	if dropped := events.close(2 * time.Second); dropped > 0 {
		s.logger.Warn("event sink lagged, events dropped", "count", dropped)
	}

	return result, runErr
}

// runLevel submits one level's tasks and waits for the barrier. Tasks whose
// dependencies failed are marked failed without running; tasks whose
// dependencies never ran are left pending.
func (s *Scheduler) runLevel(ctx context.Context, g *graph.Graph, idx int, ids []string, sem chan struct{}, runID, sessionID string, result *RunResult, events *dispatcher) LevelReport {
	levelStart := s.now()
	s.logger.Info("level started", "level", idx, "tasks", len(ids))
	events.emit(Event{
		Type: EventLevelStart, Time: s.now(), RunID: runID,
		Level: idx, TaskCount: len(ids),
	})

	var eg errgroup.Group
	for _, id := range ids {
		node, _ := g.Node(id)
		task := result.Tasks[id]

		failedDeps, allCompleted := depState(node, result)
		if len(failedDeps) > 0 {
			task.Status = StatusFailed
			task.BlockedBy = failedDeps
			task.Err = fmt.Errorf("not executed: dependencies failed: %s", strings.Join(failedDeps, ", "))
			s.logger.Warn("task blocked by failed dependencies", "task", id, "blocked_by", failedDeps)
			events.emit(Event{
				Type: EventTaskFailed, Time: s.now(), RunID: runID,
				Level: idx, TaskID: id, Agent: node.Agent, Error: task.Err.Error(),
			})
			continue
		}
		if !allCompleted {
			// Only reachable when cancellation left a dependency pending.
			continue
		}

		eg.Go(func() error {
			s.runTask(ctx, node, task, sem, runID, sessionID, events)
			return nil
		})
	}
	_ = eg.Wait()

	report := LevelReport{Index: idx}
	for _, id := range ids {
		switch result.Tasks[id].Status {
		case StatusCompleted:
			report.Succeeded = append(report.Succeeded, id)
		case StatusFailed:
			report.Failed = append(report.Failed, id)
		}
	}
	report.Duration = s.now().Sub(levelStart)

	s.logger.Info("level completed",
		"level", idx, "succeeded", len(report.Succeeded), "failed", len(report.Failed),
		"duration", report.Duration)
	events.emit(Event{
		Type: EventLevelComplete, Time: s.now(), RunID: runID,
		Level: idx, Succeeded: report.Succeeded, Failed: report.Failed,
		DurationMS: report.Duration.Milliseconds(),
	})

	return report
}

// runTask drives one task through join, recall, execute, and record. The
// admission slot is the only gate; once a task is past it, run cancellation
// no longer interrupts it.
func (s *Scheduler) runTask(ctx context.Context, node *graph.Node, task *TaskResult, sem chan struct{}, runID, sessionID string, events *dispatcher) {
	select {
	case sem <- struct{}{}:
		if ctx.Err() != nil {
			<-sem
			return
		}
		defer func() { <-sem }()
	case <-ctx.Done():
		return
	}

	// Dispatched units finish cooperatively: session I/O and execution run
	// on a context detached from run cancellation, bounded by the task's
	// own timeout.
	detached := context.WithoutCancel(ctx)
	unitStart := s.now()

	s.logger.Info("task started", "task", node.ID, "agent", node.Agent, "level", task.Level)
	events.emit(Event{
		Type: EventTaskStart, Time: s.now(), RunID: runID,
		Level: task.Level, TaskID: node.ID, Agent: node.Agent,
	})

	title := node.Description
	if title == "" {
		title = node.ID
	}
	if err := s.store.Join(detached, sessionID, node.ID, title, node.Agent); err != nil {
		s.logger.Warn("session join failed", "task", node.ID, "err", err)
	}

	recalled := s.recall(detached, sessionID, node.ID)
	req := agent.Request{
		TaskID:  node.ID,
		Agent:   node.Agent,
		Input:   buildInput(node.Description, recalled, s.recallCharBudget),
		Weights: node.Meta.Weights,
	}

	timeout := s.taskTimeout
	if node.Meta.TimeoutMS != nil {
		timeout = time.Duration(*node.Meta.TimeoutMS * float64(time.Millisecond))
	}
	maxRetries := 0
	if node.Meta.MaxRetries != nil {
		maxRetries = *node.Meta.MaxRetries
	}

	var resp *agent.Response
	var lastErr error
	retries := 0
	for attempt := 0; ; attempt++ {
		taskCtx, cancel := context.WithTimeout(detached, timeout)
		resp, lastErr = s.executor.Execute(taskCtx, req)
		cancel()

		if lastErr == nil {
			retries = attempt
			break
		}
		lastErr = classify(node.ID, timeout, lastErr)

		if attempt >= maxRetries || ctx.Err() != nil {
			retries = attempt
			break
		}
		s.logger.Warn("task attempt failed, retrying",
			"task", node.ID, "attempt", attempt+1, "max_retries", maxRetries, "err", lastErr)
		events.emit(Event{
			Type: EventTaskRetry, Time: s.now(), RunID: runID,
			Level: task.Level, TaskID: node.ID, Agent: node.Agent,
			Attempt: attempt + 1, Error: lastErr.Error(),
		})
	}

	task.Duration = s.now().Sub(unitStart)
	task.RetryCount = retries

	if lastErr != nil {
		task.Status = StatusFailed
		task.Err = lastErr
		s.logger.Error("task failed", "task", node.ID, "retries", retries, "err", lastErr)
		events.emit(Event{
			Type: EventTaskFailed, Time: s.now(), RunID: runID,
			Level: task.Level, TaskID: node.ID, Agent: node.Agent,
			Attempt: retries, DurationMS: task.Duration.Milliseconds(), Error: lastErr.Error(),
		})
		return
	}

	task.Output = resp.Output
	if err := s.store.Record(detached, sessionID, node.ID, resp.Output, resp.Duration); err != nil {
		s.logger.Warn("session record failed", "task", node.ID, "err", err)
	}
	task.Status = StatusCompleted

	s.logger.Info("task completed", "task", node.ID, "duration", task.Duration, "retries", retries)
	events.emit(Event{
		Type: EventTaskComplete, Time: s.now(), RunID: runID,
		Level: task.Level, TaskID: node.ID, Agent: node.Agent,
		Attempt: retries, DurationMS: task.Duration.Milliseconds(),
	})
}

// recall fetches prior session outputs, degrading to no context on any
// store failure.
func (s *Scheduler) recall(ctx context.Context, sessionID, taskID string) []session.Record {
	if s.recallLimit <= 0 {
		return nil
	}
	records, err := s.store.Recall(ctx, sessionID, taskID, s.recallLimit)
	if err != nil {
		s.logger.Warn("session recall failed, continuing without context", "task", taskID, "err", err)
		return nil
	}
	return records
}

// depState reports which of a node's dependencies failed and whether all of
// them completed.
func depState(node *graph.Node, result *RunResult) (failed []string, allCompleted bool) {
	allCompleted = true
	for _, dep := range node.Dependencies {
		switch result.Tasks[dep].Status {
		case StatusCompleted:
		case StatusFailed:
			failed = append(failed, dep)
			allCompleted = false
		default:
			allCompleted = false
		}
	}
	return failed, allCompleted
}

// classify maps a deadline expiry to a TimeoutError; other errors pass
// through untouched.
func classify(taskID string, timeout time.Duration, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{TaskID: taskID, Timeout: timeout}
	}
	return err
}

// buildInput assembles the enriched executor input: the task body followed
// by a delimited block of recalled outputs, each capped to the character
// budget so prompts stay bounded.
func buildInput(body string, records []session.Record, charBudget int) string {
	if len(records) == 0 {
		return body
	}

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n\n")
	b.WriteString(contextHeader)
	b.WriteString("\n")
	for _, r := range records {
		label := r.Title
		if label == "" {
			label = r.TaskID
		}
		fmt.Fprintf(&b, "[%s] %s:\n%s\n", r.TaskID, label, truncate(r.Output, charBudget))
	}
	b.WriteString(contextFooter)
	return b.String()
}

// truncate caps s at n bytes without splitting a rune. A budget of zero or
// less disables truncation.
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
