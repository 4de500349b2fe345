package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/aegis-ideas/internal/contracts"
)

// ErrRunNotFound is returned by GetRun for an unknown request ID
var ErrRunNotFound = errors.New("generation run not found")

// Repository persists finished generation runs and their processing steps
// ⭐ SSOT: Audit 데이터 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new audit repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Run is a stored generation run with its steps (step outputs are not stored)
type Run struct {
	RequestID      string                         `json:"requestId"`
	UserID         string                         `json:"userId"`
	Status         contracts.RunStatus            `json:"status"`
	Error          string                         `json:"error,omitempty"`
	Parameters     contracts.GenerationParameters `json:"parameters"`
	IdeasGenerated int                            `json:"ideasGenerated"`
	IdeasFiltered  int                            `json:"ideasFiltered"`
	IdeasReturned  int                            `json:"ideasReturned"`
	TotalMs        int64                          `json:"totalMs"`
	StartedAt      time.Time                      `json:"startedAt"`
	FinishedAt     time.Time                      `json:"finishedAt"`
	Steps          []contracts.ProcessingStep     `json:"steps"`
}

// runFromRecord flattens a run record into its stored form
func runFromRecord(rec *contracts.RunRecord) *Run {
	run := &Run{
		RequestID:  rec.Request.RequestID,
		UserID:     rec.Request.UserID,
		Status:     rec.Status,
		Error:      rec.Error,
		Parameters: rec.Request.Parameters,
		StartedAt:  rec.StartedAt,
		FinishedAt: rec.FinishedAt,
		Steps:      []contracts.ProcessingStep{},
	}

	if res := rec.Result; res != nil {
		run.IdeasGenerated = res.Metadata.TotalIdeasGenerated
		run.IdeasFiltered = res.Metadata.TotalIdeasFiltered
		run.IdeasReturned = len(res.Ideas)
		run.TotalMs = res.ProcessingMetrics.TotalProcessingTimeMs
		for _, s := range res.Metadata.ProcessingSteps {
			s.Output = nil
			run.Steps = append(run.Steps, s)
		}
	}
	return run
}

// RecordRun stores the run and its steps in one transaction.
// A reused request ID replaces the earlier run.
func (r *Repository) RecordRun(ctx context.Context, rec *contracts.RunRecord) error {
	run := runFromRecord(rec)

	paramsJSON, err := json.Marshal(run.Parameters)
	if err != nil {
		return fmt.Errorf("marshal parameters: %w", err)
	}

	runQuery := `
		INSERT INTO generation_runs (
			request_id, user_id, status, error, parameters,
			ideas_generated, ideas_filtered, ideas_returned, total_ms,
			started_at, finished_at
		) VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (request_id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			status = EXCLUDED.status,
			error = EXCLUDED.error,
			parameters = EXCLUDED.parameters,
			ideas_generated = EXCLUDED.ideas_generated,
			ideas_filtered = EXCLUDED.ideas_filtered,
			ideas_returned = EXCLUDED.ideas_returned,
			total_ms = EXCLUDED.total_ms,
			started_at = EXCLUDED.started_at,
			finished_at = EXCLUDED.finished_at
	`

	stepQuery := `
		INSERT INTO processing_steps (
			request_id, seq, phase, agent_name, status, error,
			start_time, end_time, duration_ms
		) VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9)
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, runQuery,
		run.RequestID, run.UserID, string(run.Status), run.Error, paramsJSON,
		run.IdeasGenerated, run.IdeasFiltered, run.IdeasReturned, run.TotalMs,
		run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.RequestID, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM processing_steps WHERE request_id = $1`, run.RequestID); err != nil {
		return fmt.Errorf("clear steps for %s: %w", run.RequestID, err)
	}

	for i, s := range run.Steps {
		_, err := tx.Exec(ctx, stepQuery,
			run.RequestID, i+1, string(s.Phase), s.AgentName, string(s.Status), s.Error,
			s.StartTime, s.EndTime, s.DurationMs,
		)
		if err != nil {
			return fmt.Errorf("insert step %s for %s: %w", s.Phase, run.RequestID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetRun loads a stored run with its steps in order
func (r *Repository) GetRun(ctx context.Context, requestID string) (*Run, error) {
	query := `
		SELECT user_id, status, COALESCE(error, ''), parameters,
			ideas_generated, ideas_filtered, ideas_returned, total_ms,
			started_at, finished_at
		FROM generation_runs
		WHERE request_id = $1
	`

	run := &Run{RequestID: requestID, Steps: []contracts.ProcessingStep{}}

	var status string
	var paramsJSON []byte
	err := r.pool.QueryRow(ctx, query, requestID).Scan(
		&run.UserID, &status, &run.Error, &paramsJSON,
		&run.IdeasGenerated, &run.IdeasFiltered, &run.IdeasReturned, &run.TotalMs,
		&run.StartedAt, &run.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, requestID)
		}
		return nil, fmt.Errorf("query run: %w", err)
	}
	run.Status = contracts.RunStatus(status)

	if err := json.Unmarshal(paramsJSON, &run.Parameters); err != nil {
		return nil, fmt.Errorf("unmarshal parameters: %w", err)
	}

	stepQuery := `
		SELECT phase, agent_name, status, COALESCE(error, ''), start_time, end_time, duration_ms
		FROM processing_steps
		WHERE request_id = $1
		ORDER BY seq
	`

	rows, err := r.pool.Query(ctx, stepQuery, requestID)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s contracts.ProcessingStep
		var phase, stepStatus string
		if err := rows.Scan(&phase, &s.AgentName, &stepStatus, &s.Error, &s.StartTime, &s.EndTime, &s.DurationMs); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		s.Phase = contracts.Phase(phase)
		s.Status = contracts.StepStatus(stepStatus)
		run.Steps = append(run.Steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}

	return run, nil
}
