package ideas

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

// PostgresRepository stores drafts in investment_ideas.
// The full idea is kept as JSONB; the scalar columns are for querying.
type PostgresRepository struct {
	db  *pgxpool.Pool
	now func() time.Time
}

// NewPostgresRepository creates a new PostgresRepository instance
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db, now: time.Now}
}

// CreateInvestmentIdea inserts a new draft
func (r *PostgresRepository) CreateInvestmentIdea(ctx context.Context, req *contracts.CreateIdeaRequest) (*contracts.InvestmentIdea, error) {
	// Postgres keeps microseconds; truncate so the returned idea matches a later read
	idea := newIdea(req, r.now().UTC().Truncate(time.Microsecond))

	body, err := json.Marshal(idea)
	if err != nil {
		return nil, fmt.Errorf("marshal idea: %w", err)
	}

	query := `
		INSERT INTO investment_ideas (
			id,
			version,
			title,
			created_by,
			strategy,
			time_horizon,
			confidence,
			risk_level,
			body,
			created_at,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.db.Exec(ctx, query,
		idea.ID,
		idea.Version,
		idea.Title,
		idea.CreatedBy,
		string(idea.Strategy),
		string(idea.TimeHorizon),
		idea.ConfidenceScore,
		string(idea.RiskLevel),
		body,
		idea.CreatedAt,
		idea.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert idea: %w", err)
	}

	return idea, nil
}

// GetInvestmentIdea loads a draft by ID
func (r *PostgresRepository) GetInvestmentIdea(ctx context.Context, id string) (*contracts.InvestmentIdea, error) {
	query := `
		SELECT body
		FROM investment_ideas
		WHERE id::text = $1
	`

	var body []byte
	if err := r.db.QueryRow(ctx, query, id).Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrIdeaNotFound, id)
		}
		return nil, fmt.Errorf("query idea: %w", err)
	}

	var idea contracts.InvestmentIdea
	if err := json.Unmarshal(body, &idea); err != nil {
		return nil, fmt.Errorf("unmarshal idea: %w", err)
	}
	return &idea, nil
}
