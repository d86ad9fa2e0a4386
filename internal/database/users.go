package database

import (
	"context"
	"errors"

	"cloud-drive/internal/models"

	"github.com/jackc/pgx/v5"
)

var ErrUsernameTaken = errors.New("username is already taken")

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, display_name, created_at
		FROM users
		WHERE username = $1
	`
	var user models.User

	err := q.db.QueryRow(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.DisplayName,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (q *Queries) CreateUser(ctx context.Context, username, passwordHash string, displayName *string) (*models.User, error) {
	query := `
		INSERT INTO users (username, password_hash, display_name)
		VALUES ($1, $2, $3)
		RETURNING id, username, password_hash, display_name, created_at
	`
	var user models.User
	err := q.db.QueryRow(ctx, query, username, passwordHash, displayName).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.DisplayName,
		&user.CreatedAt,
	)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return &user, nil
}
