package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/reportdash/realtime/internal/model"
)

// job is the live state of one batch. Counters and results are guarded by
// mu; every update is a short critical section with no suspension inside,
// so completed+failed always equals len(results).
type job struct {
	mu sync.Mutex

	id        string
	owner     string // Empty: no pushes, polling only
	reportIDs []string

	status      model.BatchStatus
	ran         bool // Run claimed exactly once; terminal state is immutable
	completed   int
	failed      int
	results     map[string]model.ItemResult
	createdAt   time.Time
	completedAt time.Time
}

// snapshot copies the job state for external readers.
func (j *job) snapshot() model.BatchSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()

	results := make(map[string]model.ItemResult, len(j.results))
	for k, v := range j.results {
		results[k] = v
	}

	snap := model.BatchSnapshot{
		BatchID:       j.id,
		OwnerClientID: j.owner,
		ReportIDs:     append([]string(nil), j.reportIDs...),
		Status:        j.status,
		Completed:     j.completed,
		Failed:        j.failed,
		Results:       results,
		CreatedAt:     j.createdAt,
	}
	if !j.completedAt.IsZero() {
		t := j.completedAt
		snap.CompletedAt = &t
	}
	return snap
}

// Supervisor creates and owns batch jobs. Jobs are never deleted by the
// supervisor; retention is an external concern.
type Supervisor struct {
	cfg      Config
	renderer Renderer
	notifier Notifier
	logger   *slog.Logger

	mu   sync.RWMutex
	jobs map[string]*job
}

// NewSupervisor creates a job supervisor.
func NewSupervisor(cfg Config, renderer Renderer, notifier Notifier, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ItemConcurrency < 1 {
		cfg.ItemConcurrency = DefaultConfig().ItemConcurrency
	}
	return &Supervisor{
		cfg:      cfg,
		renderer: renderer,
		notifier: notifier,
		logger:   logger,
		jobs:     make(map[string]*job),
	}
}

// Create allocates a batch job for the given report IDs and returns its
// batch ID. The job is processing by the time Create returns; execution
// itself happens in Run. Duplicate report IDs are collapsed so each item
// gets exactly one result entry. ownerClientID may be empty, in which case
// no progress is pushed and polling is the only observation channel.
func (s *Supervisor) Create(reportIDs []string, ownerClientID string) (string, error) {
	ids := dedupe(reportIDs)
	if len(ids) == 0 {
		return "", ErrEmptyBatch
	}

	j := &job{
		id:        uuid.NewString(),
		owner:     ownerClientID,
		reportIDs: ids,
		status:    model.BatchPending,
		results:   make(map[string]model.ItemResult, len(ids)),
		createdAt: time.Now(),
	}
	// pending → processing before Create returns.
	j.status = model.BatchProcessing

	s.mu.Lock()
	s.jobs[j.id] = j
	s.mu.Unlock()

	s.logger.Info("batch job created",
		"batch_id", j.id,
		"reports", len(ids),
		"owner", ownerClientID,
	)
	return j.id, nil
}

// Run executes every item of the batch and blocks until the job is
// terminal. Items run concurrently up to the configured bound; completion
// order is unspecified. Callers wanting asynchronous execution run it in a
// goroutine of their own. A batch runs exactly once: a repeated Run
// returns ErrAlreadyRun and leaves the job untouched.
func (s *Supervisor) Run(ctx context.Context, batchID string) error {
	s.mu.RLock()
	j, ok := s.jobs[batchID]
	s.mu.RUnlock()
	if !ok {
		return ErrUnknownBatch
	}

	j.mu.Lock()
	if j.ran {
		j.mu.Unlock()
		return ErrAlreadyRun
	}
	j.ran = true
	j.mu.Unlock()

	start := time.Now()
	total := len(j.reportIDs)

	s.push(j, model.BatchProcessing, "batch report generation started", 0, "")

	g := new(errgroup.Group)
	g.SetLimit(s.cfg.ItemConcurrency)
	for _, reportID := range j.reportIDs {
		g.Go(func() error {
			s.runItem(ctx, j, reportID)
			return nil
		})
	}
	g.Wait()

	j.mu.Lock()
	if j.failed > 0 {
		j.status = model.BatchFailed
	} else {
		j.status = model.BatchCompleted
	}
	j.completedAt = time.Now()
	status := j.status
	completed, failed := j.completed, j.failed
	j.mu.Unlock()

	message := "batch report generation completed"
	if status == model.BatchFailed {
		message = fmt.Sprintf("batch report generation finished with %d failed reports", failed)
	}
	s.push(j, status, message, total, "")

	s.logger.Info("batch job finished",
		"batch_id", j.id,
		"status", status,
		"completed", completed,
		"failed", failed,
		"duration", time.Since(start),
	)
	return nil
}

// GetStatus returns a point-in-time snapshot of the job. Safe to call
// while the job is still processing.
func (s *Supervisor) GetStatus(batchID string) (model.BatchSnapshot, bool) {
	s.mu.RLock()
	j, ok := s.jobs[batchID]
	s.mu.RUnlock()
	if !ok {
		return model.BatchSnapshot{}, false
	}
	return j.snapshot(), true
}

// Counts returns the number of known jobs and how many are still running.
func (s *Supervisor) Counts() (total, running int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, j := range s.jobs {
		j.mu.Lock()
		if !j.status.Terminal() {
			running++
		}
		j.mu.Unlock()
	}
	return len(s.jobs), running
}

// runItem executes one report item: progress push, render, record. Item
// failures, including renderer panics, are recorded and contained here.
func (s *Supervisor) runItem(ctx context.Context, j *job, reportID string) {
	j.mu.Lock()
	processed := j.completed + j.failed
	j.mu.Unlock()

	total := len(j.reportIDs)
	s.push(j, model.BatchProcessing,
		fmt.Sprintf("processing report %s (%d/%d)", reportID, processed+1, total),
		processed, reportID)

	outputPath, err := s.render(ctx, reportID)

	j.mu.Lock()
	defer j.mu.Unlock()

	if err != nil {
		j.failed++
		j.results[reportID] = model.ItemResult{
			ReportID: reportID,
			Status:   model.ItemFailed,
			Error:    err.Error(),
		}
		s.logger.Warn("report item failed",
			"batch_id", j.id,
			"report_id", reportID,
			"error", err,
		)
		return
	}

	j.completed++
	j.results[reportID] = model.ItemResult{
		ReportID:   reportID,
		Status:     model.ItemCompleted,
		OutputPath: outputPath,
	}
}

// render invokes the external renderer, converting panics into per-item
// errors so a misbehaving renderer cannot take down the batch.
func (s *Supervisor) render(ctx context.Context, reportID string) (outputPath string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panic: %v", r)
		}
	}()
	return s.renderer.RenderReport(ctx, reportID)
}

// push emits one progress event to the job's owner, if any. Running
// counters ride along on every event.
func (s *Supervisor) push(j *job, status model.BatchStatus, message string, progress int, currentReport string) {
	if j.owner == "" || s.notifier == nil {
		return
	}

	e := model.NewBatchProgressEvent(j.id, status, message, progress, len(j.reportIDs))
	e.CurrentReport = currentReport

	j.mu.Lock()
	e.Completed = j.completed
	e.Failed = j.failed
	j.mu.Unlock()

	s.notifier.SendTo(j.owner, e)
}

// dedupe drops duplicate IDs while preserving submission order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
