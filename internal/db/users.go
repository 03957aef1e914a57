package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/devialdimp/bank-ledger/internal/models"
)

// creates a new user
func (p *Postgres) CreateUser(ctx context.Context, name, email, passwordHash, bio string) (*models.User, error) {
	query := `
	INSERT INTO users (name, email, password_hash, bio)
	VALUES ($1, $2, $3, $4)
	RETURNING id, name, email, password_hash, bio, created_at`

	var user models.User
	err := p.db.QueryRowContext(ctx, query, name, email, passwordHash, bio).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Bio, &user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return nil, models.ErrEmailTaken
		}
		return nil, storeErr("failed to create user", err)
	}

	return &user, nil
}

// retrieves a user by ID
func (p *Postgres) UserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
	SELECT id, name, email, password_hash, bio, created_at
	FROM users
	WHERE id = $1`

	var user models.User
	err := p.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Bio, &user.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrUserNotFound
		}
		return nil, storeErr("failed to get user", err)
	}

	return &user, nil
}

// retrieves a user by email, used by login
func (p *Postgres) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
	SELECT id, name, email, password_hash, bio, created_at
	FROM users
	WHERE email = $1`

	var user models.User
	err := p.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Bio, &user.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrUserNotFound
		}
		return nil, storeErr("failed to get user by email", err)
	}

	return &user, nil
}

// retrieves all users
func (p *Postgres) Users(ctx context.Context) ([]models.User, error) {
	query := `
	SELECT id, name, email, password_hash, bio, created_at
	FROM users
	ORDER BY id`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storeErr("failed to list users", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Bio, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to list users", err)
	}

	return users, nil
}
