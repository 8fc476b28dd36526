package jobs

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Run struct {
	ID          string          `json:"id"`
	JobType     string          `json:"jobType"`
	Status      string          `json:"status"`
	Details     json.RawMessage `json:"details,omitempty"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

type PgRunStore struct {
	DB *pgxpool.Pool
}

func NewPgRunStore(db *pgxpool.Pool) *PgRunStore {
	return &PgRunStore{DB: db}
}

func (s *PgRunStore) Start(ctx context.Context, jobType string) (string, error) {
	var runID string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id::text
  `, jobType, StatusRunning).Scan(&runID)
	return runID, err
}

func (s *PgRunStore) Finish(ctx context.Context, runID, status string, details []byte) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE job_runs
    SET status = $1, details_json = $2, completed_at = now()
    WHERE id::text = $3
  `, status, details, runID)
	return err
}

func (s *PgRunStore) List(ctx context.Context, limit, offset int) ([]Run, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id::text, job_type, status, details_json, started_at, completed_at
    FROM job_runs
    ORDER BY started_at DESC
    LIMIT $1 OFFSET $2
  `, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Run{}
	for rows.Next() {
		var run Run
		var details []byte
		if err := rows.Scan(&run.ID, &run.JobType, &run.Status, &details, &run.StartedAt, &run.CompletedAt); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			run.Details = details
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// MemoryRunStore keeps the run log in process, newest first.
type MemoryRunStore struct {
	mu   sync.Mutex
	seq  int
	runs []Run
	now  func() time.Time
}

func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{now: time.Now}
}

func (s *MemoryRunStore) Start(_ context.Context, jobType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	run := Run{ID: strconv.Itoa(s.seq), JobType: jobType, Status: StatusRunning, StartedAt: s.now()}
	s.runs = append([]Run{run}, s.runs...)
	return run.ID, nil
}

func (s *MemoryRunStore) Finish(_ context.Context, runID, status string, details []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.runs {
		if s.runs[i].ID == runID {
			completed := s.now()
			s.runs[i].Status = status
			s.runs[i].Details = append(json.RawMessage(nil), details...)
			s.runs[i].CompletedAt = &completed
			return nil
		}
	}
	return nil
}

func (s *MemoryRunStore) List(_ context.Context, limit, offset int) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Run{}
	if offset >= len(s.runs) {
		return out, nil
	}
	end := min(offset+limit, len(s.runs))
	return append(out, s.runs[offset:end]...), nil
}
