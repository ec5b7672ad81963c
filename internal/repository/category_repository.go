package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CategoryRepository manages the routing catalog.
type CategoryRepository interface {
	Create(ctx context.Context, cat *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	FindByCodeOrName(ctx context.Context, code, name string) (*domain.Category, error)
	ListActive(ctx context.Context) ([]domain.Category, error)
	SoftDelete(ctx context.Context, id string) error
}

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository builds the repository.
func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{pool: pool}
}

func (r *categoryRepository) Create(ctx context.Context, cat *domain.Category) error {
	const query = `
        INSERT INTO categories (code, name)
        VALUES ($1,$2)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, cat.Code, cat.Name).
		Scan(&cat.ID, &cat.CreatedAt, &cat.UpdatedAt)
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	const query = `
        SELECT id, code, name, created_at, updated_at, deleted_at
        FROM categories WHERE id=$1`
	var cat domain.Category
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&cat.ID, &cat.Code, &cat.Name, &cat.CreatedAt, &cat.UpdatedAt, &cat.DeletedAt,
	); err != nil {
		return nil, err
	}
	return &cat, nil
}

// FindByCodeOrName matches active categories case-insensitively; used
// for duplicate detection before create.
func (r *categoryRepository) FindByCodeOrName(ctx context.Context, code, name string) (*domain.Category, error) {
	const query = `
        SELECT id, code, name, created_at, updated_at, deleted_at
        FROM categories
        WHERE (LOWER(code)=LOWER($1) OR LOWER(name)=LOWER($2)) AND deleted_at IS NULL
        LIMIT 1`
	var cat domain.Category
	if err := r.pool.QueryRow(ctx, query, code, name).Scan(
		&cat.ID, &cat.Code, &cat.Name, &cat.CreatedAt, &cat.UpdatedAt, &cat.DeletedAt,
	); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *categoryRepository) ListActive(ctx context.Context) ([]domain.Category, error) {
	const query = `
        SELECT id, code, name, created_at, updated_at, deleted_at
        FROM categories WHERE deleted_at IS NULL ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var cat domain.Category
		if err := rows.Scan(&cat.ID, &cat.Code, &cat.Name, &cat.CreatedAt, &cat.UpdatedAt, &cat.DeletedAt); err != nil {
			return nil, err
		}
		result = append(result, cat)
	}
	return result, rows.Err()
}

func (r *categoryRepository) SoftDelete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE categories SET deleted_at=NOW(), updated_at=NOW() WHERE id=$1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
