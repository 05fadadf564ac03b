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

func (s *Store) CreatePhoto(ctx context.Context, photo *models.Photo) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction", stores.ErrDatabaseError)
	}
	defer tx.Rollback(ctx)

	// a photo may only be placed in a folder owned by the same user
	if photo.FolderID != nil {
		var exists bool
		err = tx.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM folders WHERE id = $1 AND user_id = $2)", *photo.FolderID, photo.UserID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("%w: failed to validate folder", stores.ErrDatabaseError)
		}
		if !exists {
			return stores.ErrNoFolderError
		}
	}

	var description interface{}
	if photo.Description != nil {
		description = *photo.Description
	}

	var folderID interface{}
	if photo.FolderID != nil {
		folderID = *photo.FolderID
	}

	now := time.Now()

	query := `
		INSERT INTO photos(user_id, folder_id, title, description, url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err = tx.QueryRow(ctx, query, photo.UserID, folderID, photo.Title, description, photo.URL, now, now).Scan(&photo.ID)
	if err != nil {
		return fmt.Errorf("%w: failed to insert photo", stores.ErrDatabaseError)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: failed to commit transaction", stores.ErrDatabaseError)
	}

	photo.CreatedAt = now
	photo.UpdatedAt = now

	return nil
}

func (s *Store) GetPhoto(ctx context.Context, ownerID, photoID int64) (*models.Photo, error) {
	query := `
		SELECT id, user_id, folder_id, title, description, url, created_at, updated_at
		FROM photos
		WHERE id = $1 AND user_id = $2`

	var photo models.Photo
	var folderID *int64
	var description *string

	err := s.pool.QueryRow(ctx, query, photoID, ownerID).Scan(
		&photo.ID,
		&photo.UserID,
		&folderID,
		&photo.Title,
		&description,
		&photo.URL,
		&photo.CreatedAt,
		&photo.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, stores.ErrNoPhotoError
		}
		return nil, fmt.Errorf("%w: failed to get photo", stores.ErrDatabaseError)
	}

	photo.FolderID = folderID
	photo.Description = description

	return &photo, nil
}

func (s *Store) ListPhotos(ctx context.Context, ownerID int64, folderID *int64, page, limit int) ([]models.Photo, int, error) {
	offset := (page - 1) * limit

	whereClause := "WHERE user_id = $1"
	args := []interface{}{ownerID}

	argPosition := 2
	if folderID != nil {
		whereClause += fmt.Sprintf(" AND folder_id = $%d", argPosition)
		args = append(args, *folderID)
		argPosition++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM photos %s", whereClause)
	var total int
	err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to get photo count", stores.ErrDatabaseError)
	}

	dataQuery := fmt.Sprintf(`
		SELECT id, user_id, folder_id, title, description, url, created_at, updated_at
		FROM photos %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, whereClause, argPosition, argPosition+1)

	queryArgs := append(args, limit, offset)
	rows, err := s.pool.Query(ctx, dataQuery, queryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to get photos", stores.ErrDatabaseError)
	}
	defer rows.Close()

	var photos []models.Photo
	for rows.Next() {
		var photo models.Photo
		var folderIDVal *int64
		var description *string

		err := rows.Scan(
			&photo.ID,
			&photo.UserID,
			&folderIDVal,
			&photo.Title,
			&description,
			&photo.URL,
			&photo.CreatedAt,
			&photo.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: failed to scan photo data", stores.ErrDatabaseError)
		}

		photo.FolderID = folderIDVal
		photo.Description = description

		photos = append(photos, photo)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: failed to iterate photos", stores.ErrDatabaseError)
	}

	return photos, total, nil
}

func (s *Store) UpdatePhoto(ctx context.Context, ownerID, photoID int64, photo *models.Photo) error {
	var descriptionValue interface{}
	if photo.Description != nil {
		descriptionValue = *photo.Description
	}

	now := time.Now()

	// folder_id is deliberately untouched here, moves go through MovePhotoToFolder
	updateQuery := `
		UPDATE photos
		SET title = $1, description = $2, url = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6
		RETURNING folder_id`

	var folderID *int64
	err := s.pool.QueryRow(ctx, updateQuery, photo.Title, descriptionValue, photo.URL, now, photoID, ownerID).Scan(&folderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return stores.ErrNoPhotoError
		}
		return fmt.Errorf("%w: failed to update photo", stores.ErrDatabaseError)
	}

	photo.ID = photoID
	photo.UserID = ownerID
	photo.FolderID = folderID
	photo.UpdatedAt = now

	return nil
}

func (s *Store) DeletePhoto(ctx context.Context, ownerID, photoID int64) error {
	result, err := s.pool.Exec(ctx, "DELETE FROM photos WHERE id = $1 AND user_id = $2", photoID, ownerID)
	if err != nil {
		return fmt.Errorf("%w: failed to delete photo", stores.ErrDatabaseError)
	}

	if result.RowsAffected() == 0 {
		return stores.ErrNoPhotoError
	}

	return nil
}

// MovePhotoToFolder reassigns a photo to a destination folder owned by the
// same user. The destination row is locked for the duration of the
// transaction so a concurrent cascade delete cannot leave the photo pointing
// at a folder that no longer exists.
func (s *Store) MovePhotoToFolder(ctx context.Context, ownerID, photoID int64, folderID *int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction", stores.ErrDatabaseError)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM photos WHERE id = $1 AND user_id = $2)", photoID, ownerID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%w: failed to check photo existence", stores.ErrDatabaseError)
	}

	if !exists {
		return stores.ErrNoPhotoError
	}

	// an absent folder_id resolves the same way as a folder that isn't there
	if folderID == nil {
		return stores.ErrNoFolderError
	}

	var destID int64
	err = tx.QueryRow(ctx, "SELECT id FROM folders WHERE id = $1 AND user_id = $2 FOR SHARE", *folderID, ownerID).Scan(&destID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return stores.ErrNoFolderError
		}
		return fmt.Errorf("%w: failed to validate destination folder", stores.ErrDatabaseError)
	}

	_, err = tx.Exec(ctx, "UPDATE photos SET folder_id = $1, updated_at = $2 WHERE id = $3 AND user_id = $4", destID, time.Now(), photoID, ownerID)
	if err != nil {
		return fmt.Errorf("%w: failed to move photo", stores.ErrDatabaseError)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: failed to commit move", stores.ErrDatabaseError)
	}

	return nil
}
