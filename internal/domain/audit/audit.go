package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	ActionCommissionBulkRun            = "commission.bulk_run"
	ActionCommissionStructureValidated = "commission.structure_validated"

	EntityCommissionPeriod    = "commission_period"
	EntityCommissionStructure = "commission_structure"
)

type Entry struct {
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	RequestID  string
	IP         string
	Before     any
	After      any
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

func (s *Service) Record(ctx context.Context, entry Entry) error {
	beforeJSON, err := marshalOptional(entry.Before)
	if err != nil {
		return err
	}
	afterJSON, err := marshalOptional(entry.After)
	if err != nil {
		return err
	}

	_, err = s.DB.Exec(ctx, `
    INSERT INTO audit_events (actor_user_id, action, entity_type, entity_id, before_json, after_json, request_id, ip)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
  `, entry.ActorID, entry.Action, entry.EntityType, entry.EntityID, beforeJSON, afterJSON, entry.RequestID, entry.IP)
	return err
}

func marshalOptional(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// LogRecorder writes audit entries to the process log. It stands in for
// Service when no database is configured.
type LogRecorder struct {
	Logger *slog.Logger
}

func (l LogRecorder) Record(_ context.Context, entry Entry) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("audit",
		"actorId", entry.ActorID,
		"action", entry.Action,
		"entityType", entry.EntityType,
		"entityId", entry.EntityID,
		"requestId", entry.RequestID,
		"ip", entry.IP,
	)
	return nil
}
