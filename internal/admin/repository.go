// Package admin manages the admin credential record and token-based login.
package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Admin is the credential record behind the admin API. Normally exactly one
// exists; it is seeded on first boot.
type Admin struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ErrNotFound is returned when no admin matches the given username.
var ErrNotFound = errors.New("admin not found")

// ErrUsernameTaken is returned when the requested username already exists.
var ErrUsernameTaken = errors.New("username already exists")

// Repository handles admin credential persistence.
type Repository interface {
	GetByUsername(ctx context.Context, username string) (*Admin, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, username, passwordHash string) (*Admin, error)
	UpdatePassword(ctx context.Context, username, passwordHash string) error
	UpdateUsername(ctx context.Context, oldUsername, newUsername string) error
}

// PostgresRepository implements Repository on a pgx pool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgresRepository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByUsername fetches an admin by username.
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*Admin, error) {
	a := &Admin{}
	err := r.db.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at, updated_at
		 FROM admins WHERE username = $1`,
		username,
	).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get admin by username: %w", err)
	}
	return a, nil
}

// Count returns the number of admin records.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM admins`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}

// Create inserts a new admin and returns the created record.
func (r *PostgresRepository) Create(ctx context.Context, username, passwordHash string) (*Admin, error) {
	a := &Admin{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO admins (username, password_hash)
		 VALUES ($1, $2)
		 RETURNING id, username, password_hash, created_at, updated_at`,
		username, passwordHash,
	).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return a, nil
}

// UpdatePassword replaces the stored password hash for the username.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE admins SET password_hash = $2, updated_at = NOW() WHERE username = $1`,
		username, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateUsername renames an admin account.
func (r *PostgresRepository) UpdateUsername(ctx context.Context, oldUsername, newUsername string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE admins SET username = $2, updated_at = NOW() WHERE username = $1`,
		oldUsername, newUsername,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("update username: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// isUniqueViolation checks whether an error is a PostgreSQL unique_violation (code 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
