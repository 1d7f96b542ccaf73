package ads

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classifieds-board/backend/internal/models"
	"github.com/classifieds-board/backend/pkg/database"
)

var (
	// ErrNotFound is returned when the ad does not exist.
	ErrNotFound = errors.New("ad not found")
	// ErrAuthorNotFound is returned when creating an ad for an unknown user.
	ErrAuthorNotFound = errors.New("author not found")
	// ErrCategoryNotFound is returned when creating an ad in an unknown category.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrPriceOutOfRange is returned when the price does not fit NUMERIC(12, 2).
	ErrPriceOutOfRange = errors.New("price out of range")
)

const (
	authorConstraint   = "ads_author_id_fkey"
	categoryConstraint = "ads_category_id_fkey"
)

const listSelect = `SELECT a.id, a.name, a.price::float8, a.author_id, u.username, a.category_id, c.name,
		l.name, a.is_published, a.image, COUNT(*) OVER ()
	FROM ads a
	JOIN users u ON u.id = a.author_id
	JOIN categories c ON c.id = a.category_id
	LEFT JOIN locations l ON l.id = u.location_id`

const detailSelect = `SELECT a.id, a.name, a.author_id, u.username, a.category_id, c.name, a.price::float8,
		a.description, a.address, a.is_published, a.image
	FROM ads a
	JOIN users u ON u.id = a.author_id
	JOIN categories c ON c.id = a.category_id
	WHERE a.id = $1`

// Repository handles ad persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an ads repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// buildListQuery renders the list statement: predicates ANDed, price descending, id as tie-breaker.
func buildListQuery(preds []Predicate, limit, offset int) (string, []any) {
	var args []any
	bind := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	var b strings.Builder
	b.WriteString(listSelect)
	for i, p := range preds {
		if i == 0 {
			b.WriteString("\n\tWHERE ")
		} else {
			b.WriteString(" AND ")
		}
		b.WriteString(p.SQL(bind))
	}
	b.WriteString("\n\tORDER BY a.price DESC, a.id ASC")
	b.WriteString("\n\tLIMIT " + bind(limit) + " OFFSET " + bind(offset))
	return b.String(), args
}

// List returns one page of matching ads and the total number of matches.
// The total comes from a window function, so an empty page reports zero.
func (r *Repository) List(ctx context.Context, preds []Predicate, limit, offset int) ([]models.AdSummary, int, error) {
	query, args := buildListQuery(preds, limit, offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list ads: %w", err)
	}
	defer rows.Close()

	var (
		list  []models.AdSummary
		total int
	)
	for rows.Next() {
		var a models.AdSummary
		if err := rows.Scan(&a.ID, &a.Name, &a.Price, &a.AuthorID, &a.Author, &a.CategoryID, &a.Category,
			&a.Location, &a.IsPublished, &a.Image, &total); err != nil {
			return nil, 0, fmt.Errorf("scan ad: %w", err)
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list ads: %w", err)
	}
	return list, total, nil
}

// GetByID returns the ad document; Image holds the storage key.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.AdDetail, error) {
	var d models.AdDetail
	err := r.pool.QueryRow(ctx, detailSelect, id).Scan(&d.ID, &d.Name, &d.AuthorID, &d.Author, &d.CategoryID,
		&d.Category, &d.Price, &d.Description, &d.Address, &d.IsPublished, &d.Image)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get ad %d: %w", id, err)
	}
	return &d, nil
}

// Create inserts the ad and sets its ID.
func (r *Repository) Create(ctx context.Context, a *models.Ad) error {
	const q = `INSERT INTO ads (name, author_id, category_id, price, description, address, is_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.pool.QueryRow(ctx, q, a.Name, a.AuthorID, a.CategoryID, a.Price, a.Description, a.Address, a.IsPublished).
		Scan(&a.ID)
	if err != nil {
		if database.IsNumericOutOfRange(err) {
			return ErrPriceOutOfRange
		}
		if database.IsForeignKeyViolation(err) {
			switch database.ViolatedConstraint(err) {
			case authorConstraint:
				return ErrAuthorNotFound
			case categoryConstraint:
				return ErrCategoryNotFound
			}
		}
		return fmt.Errorf("insert ad: %w", err)
	}
	return nil
}

// SetImage stores a new image key and returns the key it replaced, if any.
func (r *Repository) SetImage(ctx context.Context, id int64, key string) (*string, error) {
	const q = `WITH old AS (
			SELECT id, image FROM ads WHERE id = $1 FOR UPDATE
		)
		UPDATE ads a SET image = $2
		FROM old
		WHERE a.id = old.id
		RETURNING old.image`
	var previous *string
	if err := r.pool.QueryRow(ctx, q, id, key).Scan(&previous); err != nil {
		if database.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("set ad %d image: %w", id, err)
	}
	return previous, nil
}
