package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var _ UserRepository = (*UserRepo)(nil)

// UserRepo handles database operations for users
type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, username, name, profile_image_url, COALESCE(api_secret, ''), feed_url, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID, &user.Username, &user.Name, &user.ProfileImageURL,
		&user.APISecret, &user.FeedURL, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) getUserBy(ctx context.Context, column string, value any) (*User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+column+` = ?`, value)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}
	return user, nil
}

func (r *UserRepo) GetUser(ctx context.Context, id int64) (*User, error) {
	return r.getUserBy(ctx, "id", id)
}

func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return r.getUserBy(ctx, "username", username)
}

// GetUserByAPISecret returns nil for an empty secret so that users without
// API access can never be matched.
func (r *UserRepo) GetUserByAPISecret(ctx context.Context, secret string) (*User, error) {
	if secret == "" {
		return nil, nil
	}
	return r.getUserBy(ctx, "api_secret", secret)
}

func (r *UserRepo) GetUserCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get user count: %w", err)
	}
	return count, nil
}

func (r *UserRepo) CreateUser(ctx context.Context, user *User) error {
	now := time.Now().UTC()
	var secret sql.NullString
	if user.APISecret != "" {
		secret = sql.NullString{String: user.APISecret, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (username, name, profile_image_url, api_secret, feed_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, user.Username, user.Name, user.ProfileImageURL, secret, user.FeedURL, now, now)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read user id: %w", err)
	}

	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// UpsertUser registers the owner of an import source, updating the display
// name and feed URL of an existing user.
func (r *UserRepo) UpsertUser(ctx context.Context, username, name, feedURL string) (*User, error) {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (username, name, feed_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (username) DO UPDATE SET
			name = CASE WHEN excluded.name = '' THEN users.name ELSE excluded.name END,
			feed_url = excluded.feed_url,
			updated_at = excluded.updated_at
	`, username, name, feedURL, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return r.GetUserByUsername(ctx, username)
}
