// Package memory provides an in-memory Store used for tests and for running
// the API without a database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"photovault/api/v1/models"
	"photovault/api/v1/stores"

	"github.com/sirupsen/logrus"
)

type store struct {
	mu      sync.RWMutex
	users   map[int64]*stores.UserWithPassword
	folders map[int64]*models.Folder
	photos  map[int64]*models.Photo
	nextID  int64
}

func NewStore() stores.Store {
	return &store{
		users:   make(map[int64]*stores.UserWithPassword),
		folders: make(map[int64]*models.Folder),
		photos:  make(map[int64]*models.Photo),
	}
}

// callers must hold mu
func (s *store) allocID() int64 {
	s.nextID++
	return s.nextID
}

func paginate[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(items) {
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func (s *store) CreateUser(ctx context.Context, user *models.User, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username {
			return fmt.Errorf("%w: username '%s' is already taken", stores.ErrUsernameExists, user.Username)
		}
	}

	now := time.Now()
	user.ID = s.allocID()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := &stores.UserWithPassword{User: *user, PasswordHash: passwordHash}
	s.users[user.ID] = stored

	logrus.WithField("user_id", user.ID).Info("User created")

	return nil
}

func (s *store) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.users[userID]
	if !ok {
		return nil, stores.ErrNoUserError
	}

	user := stored.User
	return &user, nil
}

func (s *store) GetUserByUsername(ctx context.Context, username string) (*stores.UserWithPassword, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, stored := range s.users {
		if stored.Username == username {
			user := *stored
			return &user, nil
		}
	}

	return nil, stores.ErrNoUserError
}

func (s *store) UpdateUser(ctx context.Context, userID int64, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[userID]
	if !ok {
		return stores.ErrNoUserError
	}

	for id, existing := range s.users {
		if id != userID && existing.Username == user.Username {
			return fmt.Errorf("%w: username '%s' is already taken", stores.ErrUsernameExists, user.Username)
		}
	}

	stored.Username = user.Username
	stored.DisplayName = user.DisplayName
	stored.UpdatedAt = time.Now()

	user.ID = userID
	user.CreatedAt = stored.CreatedAt
	user.UpdatedAt = stored.UpdatedAt

	return nil
}

func (s *store) DeleteUser(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return stores.ErrNoUserError
	}

	for id, photo := range s.photos {
		if photo.UserID == userID {
			delete(s.photos, id)
		}
	}
	for id, folder := range s.folders {
		if folder.UserID == userID {
			delete(s.folders, id)
		}
	}
	delete(s.users, userID)

	return nil
}

func (s *store) CreateFolder(ctx context.Context, folder *models.Folder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	folder.ID = s.allocID()
	folder.CreatedAt = now
	folder.UpdatedAt = now

	stored := *folder
	s.folders[folder.ID] = &stored

	return nil
}

func (s *store) GetFolder(ctx context.Context, ownerID, folderID int64) (*models.Folder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.folders[folderID]
	if !ok || stored.UserID != ownerID {
		return nil, stores.ErrNoFolderError
	}

	folder := *stored
	return &folder, nil
}

func (s *store) ListFolders(ctx context.Context, ownerID int64, page, limit int) ([]models.Folder, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var folders []models.Folder
	for _, stored := range s.folders {
		if stored.UserID == ownerID {
			folders = append(folders, *stored)
		}
	}

	sort.Slice(folders, func(i, j int) bool {
		if folders[i].Name == folders[j].Name {
			return folders[i].ID < folders[j].ID
		}
		return folders[i].Name < folders[j].Name
	})

	total := len(folders)
	return paginate(folders, page, limit), total, nil
}

func (s *store) UpdateFolder(ctx context.Context, ownerID, folderID int64, folder *models.Folder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.folders[folderID]
	if !ok || stored.UserID != ownerID {
		return stores.ErrNoFolderError
	}

	stored.Name = folder.Name
	stored.Description = folder.Description
	stored.UpdatedAt = time.Now()

	folder.ID = folderID
	folder.UserID = ownerID
	folder.CreatedAt = stored.CreatedAt
	folder.UpdatedAt = stored.UpdatedAt

	return nil
}

func (s *store) DeleteFolder(ctx context.Context, ownerID, folderID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.folders[folderID]
	if !ok || stored.UserID != ownerID {
		return 0, stores.ErrNoFolderError
	}

	var deleted int64
	for id, photo := range s.photos {
		if photo.FolderID != nil && *photo.FolderID == folderID {
			delete(s.photos, id)
			deleted++
		}
	}
	delete(s.folders, folderID)

	logrus.WithFields(logrus.Fields{
		"folder_id":      folderID,
		"photos_deleted": deleted,
	}).Info("Folder deleted")

	return deleted, nil
}

func (s *store) CreatePhoto(ctx context.Context, photo *models.Photo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if photo.FolderID != nil {
		folder, ok := s.folders[*photo.FolderID]
		if !ok || folder.UserID != photo.UserID {
			return stores.ErrNoFolderError
		}
	}

	now := time.Now()
	photo.ID = s.allocID()
	photo.CreatedAt = now
	photo.UpdatedAt = now

	stored := *photo
	s.photos[photo.ID] = &stored

	return nil
}

func (s *store) GetPhoto(ctx context.Context, ownerID, photoID int64) (*models.Photo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.photos[photoID]
	if !ok || stored.UserID != ownerID {
		return nil, stores.ErrNoPhotoError
	}

	photo := *stored
	return &photo, nil
}

func (s *store) ListPhotos(ctx context.Context, ownerID int64, folderID *int64, page, limit int) ([]models.Photo, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var photos []models.Photo
	for _, stored := range s.photos {
		if stored.UserID != ownerID {
			continue
		}
		if folderID != nil && (stored.FolderID == nil || *stored.FolderID != *folderID) {
			continue
		}
		photos = append(photos, *stored)
	}

	sort.Slice(photos, func(i, j int) bool {
		if photos[i].CreatedAt.Equal(photos[j].CreatedAt) {
			return photos[i].ID > photos[j].ID
		}
		return photos[i].CreatedAt.After(photos[j].CreatedAt)
	})

	total := len(photos)
	return paginate(photos, page, limit), total, nil
}

func (s *store) UpdatePhoto(ctx context.Context, ownerID, photoID int64, photo *models.Photo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.photos[photoID]
	if !ok || stored.UserID != ownerID {
		return stores.ErrNoPhotoError
	}

	stored.Title = photo.Title
	stored.Description = photo.Description
	stored.URL = photo.URL
	stored.UpdatedAt = time.Now()

	photo.ID = photoID
	photo.UserID = ownerID
	photo.FolderID = stored.FolderID
	photo.CreatedAt = stored.CreatedAt
	photo.UpdatedAt = stored.UpdatedAt

	return nil
}

func (s *store) DeletePhoto(ctx context.Context, ownerID, photoID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.photos[photoID]
	if !ok || stored.UserID != ownerID {
		return stores.ErrNoPhotoError
	}

	delete(s.photos, photoID)
	return nil
}

func (s *store) MovePhotoToFolder(ctx context.Context, ownerID, photoID int64, folderID *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	photo, ok := s.photos[photoID]
	if !ok || photo.UserID != ownerID {
		return stores.ErrNoPhotoError
	}

	if folderID == nil {
		return stores.ErrNoFolderError
	}

	folder, ok := s.folders[*folderID]
	if !ok || folder.UserID != ownerID {
		return stores.ErrNoFolderError
	}

	id := folder.ID
	photo.FolderID = &id
	photo.UpdatedAt = time.Now()

	return nil
}
