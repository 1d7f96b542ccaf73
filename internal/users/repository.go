package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classifieds-board/backend/internal/models"
	"github.com/classifieds-board/backend/pkg/database"
)

var (
	// ErrNotFound is returned when the user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already taken")
)

const userSelect = `SELECT u.id, u.username, u.password_hash, u.first_name, u.last_name, l.name, u.created_at
	FROM users u
	LEFT JOIN locations l ON l.id = u.location_id`

// CreateParams holds the fields of a new user.
type CreateParams struct {
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Location     string
}

// Repository handles user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a users repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID returns a user by ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, userSelect+` WHERE u.id = $1`, id)
}

// GetByUsername returns a user by username.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, userSelect+` WHERE u.username = $1`, username)
}

func (r *Repository) getOne(ctx context.Context, q string, arg any) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, q, arg).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Location, &u.CreatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// Create inserts a user, creating the named location on first use.
func (r *Repository) Create(ctx context.Context, p CreateParams) (*models.User, error) {
	var created *models.User
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var locationID *int64
		if p.Location != "" {
			var id int64
			const upsert = `INSERT INTO locations (name) VALUES ($1)
				ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
				RETURNING id`
			if err := tx.QueryRow(ctx, upsert, p.Location).Scan(&id); err != nil {
				return fmt.Errorf("upsert location: %w", err)
			}
			locationID = &id
		}
		u := models.User{Username: p.Username, PasswordHash: p.PasswordHash, FirstName: p.FirstName, LastName: p.LastName}
		const insert = `INSERT INTO users (username, password_hash, first_name, last_name, location_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at`
		if err := tx.QueryRow(ctx, insert, p.Username, p.PasswordHash, p.FirstName, p.LastName, locationID).
			Scan(&u.ID, &u.CreatedAt); err != nil {
			if database.IsUniqueViolation(err) {
				return ErrUsernameTaken
			}
			return fmt.Errorf("insert user: %w", err)
		}
		if p.Location != "" {
			loc := p.Location
			u.Location = &loc
		}
		created = &u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
