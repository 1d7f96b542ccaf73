package categories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classifieds-board/backend/internal/models"
	"github.com/classifieds-board/backend/pkg/database"
)

var (
	// ErrNotFound is returned when the category does not exist.
	ErrNotFound = errors.New("category not found")
	// ErrInUse is returned when deleting a category that still has ads.
	ErrInUse = errors.New("category has ads")
)

// Repository handles category persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a categories repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all categories ordered by id.
func (r *Repository) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	list := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Create inserts a category.
func (r *Repository) Create(ctx context.Context, name string) (*models.Category, error) {
	c := models.Category{Name: name}
	if err := r.pool.QueryRow(ctx, `INSERT INTO categories (name) VALUES ($1) RETURNING id`, name).Scan(&c.ID); err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return &c, nil
}

// GetByID returns a category by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	var c models.Category
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM categories WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	return &c, nil
}

// Rename sets the category name in a single statement.
func (r *Repository) Rename(ctx context.Context, id int64, name string) (*models.Category, error) {
	var c models.Category
	err := r.pool.QueryRow(ctx, `UPDATE categories SET name = $2 WHERE id = $1 RETURNING id, name`, id, name).
		Scan(&c.ID, &c.Name)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("rename category %d: %w", id, err)
	}
	return &c, nil
}

// Delete removes a category. Categories referenced by ads are kept.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return ErrInUse
		}
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
