package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"photovault/api/v1/models"
	"photovault/api/v1/stores"

	"github.com/jackc/pgx/v5"
)

func (s *Store) CreateFolder(ctx context.Context, folder *models.Folder) error {
	var description interface{}
	if folder.Description != nil {
		description = *folder.Description
	}

	now := time.Now()

	query := `
		INSERT INTO folders(user_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := s.pool.QueryRow(ctx, query, folder.UserID, folder.Name, description, now, now).Scan(&folder.ID)
	if err != nil {
		return fmt.Errorf("%w: failed to insert folder", stores.ErrDatabaseError)
	}

	folder.CreatedAt = now
	folder.UpdatedAt = now

	return nil
}

func (s *Store) GetFolder(ctx context.Context, ownerID, folderID int64) (*models.Folder, error) {
	query := `
		SELECT id, user_id, name, description, created_at, updated_at
		FROM folders
		WHERE id = $1 AND user_id = $2`

	var folder models.Folder
	var description *string

	err := s.pool.QueryRow(ctx, query, folderID, ownerID).Scan(
		&folder.ID,
		&folder.UserID,
		&folder.Name,
		&description,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, stores.ErrNoFolderError
		}
		return nil, fmt.Errorf("%w: failed to get folder", stores.ErrDatabaseError)
	}

	folder.Description = description

	return &folder, nil
}

func (s *Store) ListFolders(ctx context.Context, ownerID int64, page, limit int) ([]models.Folder, int, error) {
	offset := (page - 1) * limit

	var total int
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM folders WHERE user_id = $1", ownerID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to get folder count", stores.ErrDatabaseError)
	}

	dataQuery := `
		SELECT id, user_id, name, description, created_at, updated_at
		FROM folders
		WHERE user_id = $1
		ORDER BY name ASC
		LIMIT $2 OFFSET $3`

	rows, err := s.pool.Query(ctx, dataQuery, ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to get folders", stores.ErrDatabaseError)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		var description *string

		err := rows.Scan(
			&folder.ID,
			&folder.UserID,
			&folder.Name,
			&description,
			&folder.CreatedAt,
			&folder.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: failed to scan folder data", stores.ErrDatabaseError)
		}

		folder.Description = description
		folders = append(folders, folder)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: failed to iterate folders", stores.ErrDatabaseError)
	}

	return folders, total, nil
}

func (s *Store) UpdateFolder(ctx context.Context, ownerID, folderID int64, folder *models.Folder) error {
	var descriptionValue interface{}
	if folder.Description != nil {
		descriptionValue = *folder.Description
	}

	now := time.Now()

	updateQuery := `
		UPDATE folders
		SET name = $1, description = $2, updated_at = $3
		WHERE id = $4 AND user_id = $5`

	result, err := s.pool.Exec(ctx, updateQuery, folder.Name, descriptionValue, now, folderID, ownerID)
	if err != nil {
		return fmt.Errorf("%w: failed to update folder", stores.ErrDatabaseError)
	}

	if result.RowsAffected() == 0 {
		return stores.ErrNoFolderError
	}

	folder.ID = folderID
	folder.UserID = ownerID
	folder.UpdatedAt = now

	return nil
}

// DeleteFolder removes the folder and all photos it contains in a single
// transaction, so a failure partway through leaves no orphaned photos.
func (s *Store) DeleteFolder(ctx context.Context, ownerID, folderID int64) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to start transaction", stores.ErrDatabaseError)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM folders WHERE id = $1 AND user_id = $2)", folderID, ownerID).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to check folder existence", stores.ErrDatabaseError)
	}

	if !exists {
		return 0, stores.ErrNoFolderError
	}

	photosResult, err := tx.Exec(ctx, "DELETE FROM photos WHERE folder_id = $1", folderID)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to delete photos in folder", stores.ErrDatabaseError)
	}

	result, err := tx.Exec(ctx, "DELETE FROM folders WHERE id = $1 AND user_id = $2", folderID, ownerID)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to delete folder", stores.ErrDatabaseError)
	}

	if result.RowsAffected() == 0 {
		return 0, stores.ErrNoFolderError
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%w: failed to commit deletion", stores.ErrDatabaseError)
	}

	return photosResult.RowsAffected(), nil
}
