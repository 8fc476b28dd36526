package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"printerp/internal/requestctx"
)

const (
	JobCommissionBulk = "commission_bulk"

	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// RunStore persists the job_runs log. An empty id from Start means the run
// is not tracked and Finish is skipped.
type RunStore interface {
	Start(ctx context.Context, jobType string) (string, error)
	Finish(ctx context.Context, runID, status string, details []byte) error
}

// RunLister pages through the run log.
type RunLister interface {
	List(ctx context.Context, limit, offset int) ([]Run, error)
}

type Observer interface {
	JobRun(jobType, status string)
}

type Service struct {
	runs     RunStore
	observer Observer
	logger   *slog.Logger
	queue    chan job
	now      func() time.Time
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(runs RunStore, observer Observer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		runs:     runs,
		observer: observer,
		logger:   logger,
		queue:    make(chan job, 128),
		now:      time.Now,
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) bool {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
		return true
	default:
		s.logger.Warn("job queue full", "jobType", jobType)
		return false
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				s.logger.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if s.runs != nil {
		id, err := s.runs.Start(ctx, j.Type)
		if err != nil {
			s.logger.Warn("job run insert failed", "jobType", j.Type, "err", err)
		}
		runID = id
	}

	started := s.now()
	details, err := j.Run(ctx)
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
	}
	requestctx.Logger(ctx, s.logger).Info("job run finished", "jobType", j.Type, "status", status, "duration", s.now().Sub(started))
	if s.observer != nil {
		s.observer.JobRun(j.Type, status)
	}

	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		s.logger.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if updErr := s.runs.Finish(ctx, runID, status, detailsJSON); updErr != nil {
			s.logger.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

// ScheduleCommissionBulk enqueues a bulk commission run for the current
// calendar month on every tick until ctx is done.
func (s *Service) ScheduleCommissionBulk(ctx context.Context, interval time.Duration, run func(ctx context.Context, period string) (any, error)) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				period := CurrentPeriod(s.now())
				s.Enqueue(JobCommissionBulk, func(ctx context.Context) (any, error) {
					return run(ctx, period)
				})
			}
		}
	}()
}

// CurrentPeriod formats t as a YYYY-MM commission period.
func CurrentPeriod(t time.Time) string {
	return t.UTC().Format("2006-01")
}
