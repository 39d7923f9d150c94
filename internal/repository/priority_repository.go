package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// PriorityRepository manages priority catalog persistence.
type PriorityRepository interface {
	Create(ctx context.Context, pri *domain.Priority) error
	Update(ctx context.Context, pri *domain.Priority) error
	GetByID(ctx context.Context, id string) (*domain.Priority, error)
	ListActive(ctx context.Context) ([]domain.Priority, error)
	List(ctx context.Context, includeInactive bool) ([]domain.Priority, error)
}

type priorityRepository struct {
	pool *pgxpool.Pool
}

// NewPriorityRepository builds the repository.
func NewPriorityRepository(pool *pgxpool.Pool) PriorityRepository {
	return &priorityRepository{pool: pool}
}

func (r *priorityRepository) Create(ctx context.Context, pri *domain.Priority) error {
	const query = `
        INSERT INTO priorities (name, rank, is_active)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		pri.Name,
		pri.Rank,
		pri.IsActive,
	).Scan(&pri.ID, &pri.CreatedAt, &pri.UpdatedAt)
}

func (r *priorityRepository) Update(ctx context.Context, pri *domain.Priority) error {
	const query = `
        UPDATE priorities SET name=$1, rank=$2, is_active=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		pri.Name,
		pri.Rank,
		pri.IsActive,
		pri.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *priorityRepository) GetByID(ctx context.Context, id string) (*domain.Priority, error) {
	const query = `
        SELECT id, name, rank, is_active, created_at, updated_at
        FROM priorities WHERE id=$1`
	var pri domain.Priority
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&pri.ID,
		&pri.Name,
		&pri.Rank,
		&pri.IsActive,
		&pri.CreatedAt,
		&pri.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &pri, nil
}

func (r *priorityRepository) ListActive(ctx context.Context) ([]domain.Priority, error) {
	return r.List(ctx, false)
}

func (r *priorityRepository) List(ctx context.Context, includeInactive bool) ([]domain.Priority, error) {
	query := `
        SELECT id, name, rank, is_active, created_at, updated_at
        FROM priorities`
	if !includeInactive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY rank ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Priority
	for rows.Next() {
		var pri domain.Priority
		if err := rows.Scan(&pri.ID, &pri.Name, &pri.Rank, &pri.IsActive, &pri.CreatedAt, &pri.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, pri)
	}
	return result, rows.Err()
}
