package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"filmflow/internal/domain"
	"filmflow/internal/infra"
	"filmflow/internal/sqlinline"
)

// GenerationRepositoryPG implements domain.GenerationRepository.
type GenerationRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewGenerationRepository creates a generation repository backed by PostgreSQL.
func NewGenerationRepository(sql infra.SQLExecutor) *GenerationRepositoryPG {
	return &GenerationRepositoryPG{sql: sql}
}

// Create inserts a new job record.
func (r *GenerationRepositoryPG) Create(ctx context.Context, g *domain.Generation) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertGeneration,
		g.ID,
		g.UserID,
		string(g.Type),
		g.Model,
		g.Prompt,
		nullableJSON(g.Settings),
		string(g.Status),
		g.SceneID,
		g.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert generation: %w", err)
	}
	return nil
}

// GetByID fetches a job by its identifier.
func (r *GenerationRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Generation, error) {
	g, err := scanGeneration(r.sql.QueryRow(ctx, sqlinline.QSelectGenerationByID, id))
	if err != nil {
		return nil, err
	}
	return g, nil
}

// ListByUser returns the newest jobs of userID, optionally only of typ.
func (r *GenerationRepositoryPG) ListByUser(ctx context.Context, userID string, typ domain.GenerationType, limit int) ([]domain.Generation, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListGenerationsByUser, userID, string(typ), limit)
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Generation, 0, limit)
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	return items, nil
}

// UpdateStatus applies change while the job is still in status from.
func (r *GenerationRepositoryPG) UpdateStatus(ctx context.Context, id string, from domain.GenerationStatus, change domain.StatusChange) (*domain.Generation, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QUpdateGenerationStatus,
		id,
		string(from),
		string(change.Status),
		change.OutputURL,
		change.ErrorMessage,
		change.CompletedAt,
	)
	return scanGeneration(row)
}

// ClaimPending moves the oldest pending job to PROCESSING. Concurrent workers
// never claim the same row.
func (r *GenerationRepositoryPG) ClaimPending(ctx context.Context) (*domain.Generation, error) {
	return scanGeneration(r.sql.QueryRow(ctx, sqlinline.QWorkerClaimGeneration))
}

func scanGeneration(row pgx.Row) (*domain.Generation, error) {
	var (
		g         domain.Generation
		typ       string
		status    string
		settings  []byte
		completed *time.Time
	)
	if err := row.Scan(
		&g.ID,
		&g.UserID,
		&typ,
		&g.Model,
		&g.Prompt,
		&settings,
		&status,
		&g.OutputURL,
		&g.ErrorMessage,
		&g.SceneID,
		&g.CreatedAt,
		&g.UpdatedAt,
		&completed,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan generation: %w", err)
	}
	g.Type = domain.GenerationType(typ)
	g.Status = domain.GenerationStatus(status)
	if len(settings) > 0 {
		g.Settings = json.RawMessage(settings)
	}
	g.CompletedAt = completed
	return &g, nil
}

func nullableJSON(b json.RawMessage) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}

var _ domain.GenerationRepository = (*GenerationRepositoryPG)(nil)
