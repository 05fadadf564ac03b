package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"photovault/api/v1/models"
	"photovault/api/v1/stores"

	"github.com/jackc/pgx/v5"
)

func (s *Store) CreateUser(ctx context.Context, user *models.User, passwordHash string) error {
	// check if username exists first
	var count int
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users WHERE username = $1", user.Username).Scan(&count)
	if err != nil {
		return fmt.Errorf("%w: failed to check username availability", stores.ErrDatabaseError)
	}

	if count > 0 {
		return fmt.Errorf("%w: username '%s' is already taken", stores.ErrUsernameExists, user.Username)
	}

	var displayNameValue interface{}
	if user.DisplayName != nil {
		displayNameValue = *user.DisplayName
	}

	now := time.Now()

	insertQuery := `
		INSERT INTO users (username, display_name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err = s.pool.QueryRow(ctx, insertQuery, user.Username, displayNameValue, passwordHash, now, now).Scan(&user.ID)
	if err != nil {
		// handle constraint violation as backup (race condition case)
		if strings.Contains(err.Error(), "unique constraint") {
			return fmt.Errorf("%w: username became unavailable", stores.ErrUsernameExists)
		}
		return fmt.Errorf("%w: failed to create user", stores.ErrDatabaseError)
	}

	user.CreatedAt = now
	user.UpdatedAt = now

	return nil
}

func (s *Store) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	query := `
		SELECT id, username, display_name, created_at, updated_at
		FROM users
		WHERE id = $1`

	var user models.User
	var displayName *string

	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.Username,
		&displayName,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, stores.ErrNoUserError
		}
		return nil, fmt.Errorf("%w: failed to retrieve user", stores.ErrDatabaseError)
	}

	user.DisplayName = displayName

	return &user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*stores.UserWithPassword, error) {
	query := `
		SELECT id, username, display_name, password_hash, created_at, updated_at
		FROM users
		WHERE username = $1`

	var user stores.UserWithPassword
	var displayName *string

	err := s.pool.QueryRow(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&displayName,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, stores.ErrNoUserError
		}
		return nil, fmt.Errorf("%w: failed to retrieve user", stores.ErrDatabaseError)
	}

	user.DisplayName = displayName

	return &user, nil
}

func (s *Store) UpdateUser(ctx context.Context, userID int64, user *models.User) error {
	// check the new username is not taken by someone else
	var count int
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users WHERE username = $1 AND id != $2", user.Username, userID).Scan(&count)
	if err != nil {
		return fmt.Errorf("%w: failed to check username availability", stores.ErrDatabaseError)
	}

	if count > 0 {
		return fmt.Errorf("%w: username '%s' is already taken", stores.ErrUsernameExists, user.Username)
	}

	var displayNameValue interface{}
	if user.DisplayName != nil {
		displayNameValue = *user.DisplayName
	}

	now := time.Now()

	updateQuery := `
		UPDATE users
		SET username = $1, display_name = $2, updated_at = $3
		WHERE id = $4`

	result, err := s.pool.Exec(ctx, updateQuery, user.Username, displayNameValue, now, userID)
	if err != nil {
		return fmt.Errorf("%w: failed to update user", stores.ErrDatabaseError)
	}

	if result.RowsAffected() == 0 {
		return stores.ErrNoUserError
	}

	user.ID = userID
	user.UpdatedAt = now

	return nil
}

func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to start transaction", stores.ErrDatabaseError)
	}
	defer tx.Rollback(ctx)

	// remove owned records before the account itself
	if _, err = tx.Exec(ctx, "DELETE FROM photos WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("%w: failed to delete user's photos", stores.ErrDatabaseError)
	}

	if _, err = tx.Exec(ctx, "DELETE FROM folders WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("%w: failed to delete user's folders", stores.ErrDatabaseError)
	}

	result, err := tx.Exec(ctx, "DELETE FROM users WHERE id = $1", userID)
	if err != nil {
		return fmt.Errorf("%w: failed to delete user", stores.ErrDatabaseError)
	}

	if result.RowsAffected() == 0 {
		return stores.ErrNoUserError
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: failed to commit deletion", stores.ErrDatabaseError)
	}

	return nil
}
