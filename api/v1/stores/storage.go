package stores

import (
	"context"
	"errors"

	"photovault/api/v1/models"
)

var (
	ErrNoUserError    = errors.New("user does not exist")
	ErrNoFolderError  = errors.New("folder does not exist")
	ErrNoPhotoError   = errors.New("photo does not exist")
	ErrUsernameExists = errors.New("username already exists")
	ErrDatabaseError  = errors.New("database error occurred")
)

// UserWithPassword carries the stored credential hash alongside the user
// record. It never crosses the handler boundary.
type UserWithPassword struct {
	models.User
	PasswordHash string
}

// Store is the persistence contract for the API. Every folder and photo
// method takes the owning user's ID and resolves records only within that
// user's set: a record owned by someone else is indistinguishable from a
// record that does not exist.
type Store interface {
	CreateUser(ctx context.Context, user *models.User, passwordHash string) error
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*UserWithPassword, error)
	UpdateUser(ctx context.Context, userID int64, user *models.User) error
	DeleteUser(ctx context.Context, userID int64) error

	CreateFolder(ctx context.Context, folder *models.Folder) error
	GetFolder(ctx context.Context, ownerID, folderID int64) (*models.Folder, error)
	ListFolders(ctx context.Context, ownerID int64, page, limit int) ([]models.Folder, int, error)
	UpdateFolder(ctx context.Context, ownerID, folderID int64, folder *models.Folder) error

	// DeleteFolder removes the folder and every photo it contains as one
	// transaction. It reports how many photos were removed with it.
	DeleteFolder(ctx context.Context, ownerID, folderID int64) (int64, error)

	CreatePhoto(ctx context.Context, photo *models.Photo) error
	GetPhoto(ctx context.Context, ownerID, photoID int64) (*models.Photo, error)
	ListPhotos(ctx context.Context, ownerID int64, folderID *int64, page, limit int) ([]models.Photo, int, error)

	// UpdatePhoto changes title, description and URL. The folder reference
	// is only ever changed through MovePhotoToFolder.
	UpdatePhoto(ctx context.Context, ownerID, photoID int64, photo *models.Photo) error
	DeletePhoto(ctx context.Context, ownerID, photoID int64) error

	// MovePhotoToFolder reassigns the photo's folder. The destination must
	// exist and belong to the same owner; a nil folderID behaves like a
	// folder that does not exist.
	MovePhotoToFolder(ctx context.Context, ownerID, photoID int64, folderID *int64) error
}
