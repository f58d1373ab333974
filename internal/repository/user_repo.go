package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/indigenous-art-atlas/internal/database"
	"github.com/indigenous-art-atlas/internal/models"
)

// userRepo is the concrete implementation of UserRepository
type userRepo struct {
	db *database.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *database.DB) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, username, email, full_name, role, active, created_at, last_login_at`

// Create inserts a new user and sets its generated id
func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, email, full_name, role, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.FullName, string(user.Role), user.Active, user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}
	return user, nil
}

// List returns all users, newest first
func (r *userRepo) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// SetActive toggles a user's account and returns the updated user
func (r *userRepo) SetActive(ctx context.Context, id int64, active bool) (*models.User, error) {
	query := `UPDATE users SET active = $1 WHERE id = $2 RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRowContext(ctx, query, active, id))
	if err != nil {
		return nil, translateError(err)
	}
	return user, nil
}

// Count returns total and active user counts
func (r *userRepo) Count(ctx context.Context) (int, int, error) {
	var total, active int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE active) FROM users`,
	).Scan(&total, &active)
	return total, active, err
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var role string
	var lastLogin sql.NullTime
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.FullName,
		&role, &user.Active, &user.CreatedAt, &lastLogin)
	if err != nil {
		return nil, err
	}
	user.Role = models.Role(role)
	user.LastLoginAt = timePtr(lastLogin)
	return &user, nil
}
