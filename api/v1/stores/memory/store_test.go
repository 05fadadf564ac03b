package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"photovault/api/v1/models"
	"photovault/api/v1/stores"
)

func newTestUser(t *testing.T, s stores.Store, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username}
	if err := s.CreateUser(context.Background(), user, "hash"); err != nil {
		t.Fatalf("CreateUser(%q) failed: %v", username, err)
	}
	return user
}

func newTestFolder(t *testing.T, s stores.Store, ownerID int64, name string) *models.Folder {
	t.Helper()
	folder := &models.Folder{UserID: ownerID, Name: name}
	if err := s.CreateFolder(context.Background(), folder); err != nil {
		t.Fatalf("CreateFolder(%q) failed: %v", name, err)
	}
	return folder
}

func newTestPhoto(t *testing.T, s stores.Store, ownerID int64, title string, folderID *int64) *models.Photo {
	t.Helper()
	photo := &models.Photo{UserID: ownerID, Title: title, URL: "https://img.example/" + title, FolderID: folderID}
	if err := s.CreatePhoto(context.Background(), photo); err != nil {
		t.Fatalf("CreatePhoto(%q) failed: %v", title, err)
	}
	return photo
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	newTestUser(t, s, "alice")

	err := s.CreateUser(ctx, &models.User{Username: "alice"}, "hash")
	if !errors.Is(err, stores.ErrUsernameExists) {
		t.Errorf("expected ErrUsernameExists, got %v", err)
	}
}

func TestGetFolder_ScopedToOwner(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")
	folder := newTestFolder(t, s, alice.ID, "Private")

	if _, err := s.GetFolder(ctx, alice.ID, folder.ID); err != nil {
		t.Errorf("owner lookup failed: %v", err)
	}

	_, err := s.GetFolder(ctx, bob.ID, folder.ID)
	if !errors.Is(err, stores.ErrNoFolderError) {
		t.Errorf("foreign folder should be ErrNoFolderError, got %v", err)
	}
}

func TestDeleteFolder_CascadeCount(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	alice := newTestUser(t, s, "alice")
	folder := newTestFolder(t, s, alice.ID, "Trip")
	other := newTestFolder(t, s, alice.ID, "Other")

	for i := 0; i < 3; i++ {
		newTestPhoto(t, s, alice.ID, fmt.Sprintf("in-%d", i), &folder.ID)
	}
	kept := newTestPhoto(t, s, alice.ID, "kept", &other.ID)
	loose := newTestPhoto(t, s, alice.ID, "loose", nil)

	deleted, err := s.DeleteFolder(ctx, alice.ID, folder.ID)
	if err != nil {
		t.Fatalf("DeleteFolder() failed: %v", err)
	}
	if deleted != 3 {
		t.Errorf("deleted photo count = %d, want 3", deleted)
	}

	if _, err := s.GetFolder(ctx, alice.ID, folder.ID); !errors.Is(err, stores.ErrNoFolderError) {
		t.Errorf("folder should be gone, got %v", err)
	}

	// photos elsewhere are untouched
	if _, err := s.GetPhoto(ctx, alice.ID, kept.ID); err != nil {
		t.Errorf("photo in another folder was deleted: %v", err)
	}
	if _, err := s.GetPhoto(ctx, alice.ID, loose.ID); err != nil {
		t.Errorf("unassigned photo was deleted: %v", err)
	}

	// no orphaned references to the deleted folder remain
	photos, _, err := s.ListPhotos(ctx, alice.ID, nil, 1, 100)
	if err != nil {
		t.Fatalf("ListPhotos() failed: %v", err)
	}
	for _, p := range photos {
		if p.FolderID != nil && *p.FolderID == folder.ID {
			t.Errorf("photo %d still references deleted folder", p.ID)
		}
	}
}

func TestDeleteFolder_ForeignOwner(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")
	folder := newTestFolder(t, s, alice.ID, "Private")
	photo := newTestPhoto(t, s, alice.ID, "beach", &folder.ID)

	_, err := s.DeleteFolder(ctx, bob.ID, folder.ID)
	if !errors.Is(err, stores.ErrNoFolderError) {
		t.Fatalf("expected ErrNoFolderError, got %v", err)
	}

	// nothing was deleted
	if _, err := s.GetFolder(ctx, alice.ID, folder.ID); err != nil {
		t.Errorf("folder should survive: %v", err)
	}
	if _, err := s.GetPhoto(ctx, alice.ID, photo.ID); err != nil {
		t.Errorf("photo should survive: %v", err)
	}
}

func TestMovePhotoToFolder(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	alice := newTestUser(t, s, "alice")
	folder := newTestFolder(t, s, alice.ID, "Trip")
	photo := newTestPhoto(t, s, alice.ID, "beach", nil)

	if err := s.MovePhotoToFolder(ctx, alice.ID, photo.ID, &folder.ID); err != nil {
		t.Fatalf("MovePhotoToFolder() failed: %v", err)
	}

	got, err := s.GetPhoto(ctx, alice.ID, photo.ID)
	if err != nil {
		t.Fatalf("GetPhoto() failed: %v", err)
	}
	if got.FolderID == nil || *got.FolderID != folder.ID {
		t.Errorf("photo folder = %v, want %d", got.FolderID, folder.ID)
	}
}

func TestMovePhotoToFolder_NilFolder(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	alice := newTestUser(t, s, "alice")
	photo := newTestPhoto(t, s, alice.ID, "beach", nil)

	err := s.MovePhotoToFolder(ctx, alice.ID, photo.ID, nil)
	if !errors.Is(err, stores.ErrNoFolderError) {
		t.Errorf("expected ErrNoFolderError for nil folder, got %v", err)
	}

	got, _ := s.GetPhoto(ctx, alice.ID, photo.ID)
	if got.FolderID != nil {
		t.Errorf("photo should be unchanged after failed move")
	}
}

func TestMovePhotoToFolder_ForeignFolder(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")
	bobFolder := newTestFolder(t, s, bob.ID, "Bob's")
	photo := newTestPhoto(t, s, alice.ID, "beach", nil)

	err := s.MovePhotoToFolder(ctx, alice.ID, photo.ID, &bobFolder.ID)
	if !errors.Is(err, stores.ErrNoFolderError) {
		t.Errorf("expected ErrNoFolderError for foreign folder, got %v", err)
	}
}

func TestCreatePhoto_ForeignFolderRejected(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")
	bobFolder := newTestFolder(t, s, bob.ID, "Bob's")

	photo := &models.Photo{UserID: alice.ID, Title: "sneaky", URL: "https://img.example/x", FolderID: &bobFolder.ID}
	err := s.CreatePhoto(ctx, photo)
	if !errors.Is(err, stores.ErrNoFolderError) {
		t.Errorf("expected ErrNoFolderError, got %v", err)
	}
}

func TestListPhotos_FolderFilter(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	alice := newTestUser(t, s, "alice")
	folder := newTestFolder(t, s, alice.ID, "Trip")
	newTestPhoto(t, s, alice.ID, "in", &folder.ID)
	newTestPhoto(t, s, alice.ID, "out", nil)

	photos, total, err := s.ListPhotos(ctx, alice.ID, &folder.ID, 1, 20)
	if err != nil {
		t.Fatalf("ListPhotos() failed: %v", err)
	}
	if total != 1 || len(photos) != 1 {
		t.Fatalf("expected 1 photo in folder, got %d (total %d)", len(photos), total)
	}
	if photos[0].Title != "in" {
		t.Errorf("wrong photo in filtered list: %q", photos[0].Title)
	}
}

func TestDeleteUser_RemovesOwnedRecords(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")
	folder := newTestFolder(t, s, alice.ID, "Trip")
	newTestPhoto(t, s, alice.ID, "beach", &folder.ID)
	bobPhoto := newTestPhoto(t, s, bob.ID, "bob's", nil)

	if err := s.DeleteUser(ctx, alice.ID); err != nil {
		t.Fatalf("DeleteUser() failed: %v", err)
	}

	if _, err := s.GetUser(ctx, alice.ID); !errors.Is(err, stores.ErrNoUserError) {
		t.Errorf("user should be gone, got %v", err)
	}

	photos, _, err := s.ListPhotos(ctx, bob.ID, nil, 1, 20)
	if err != nil {
		t.Fatalf("ListPhotos() failed: %v", err)
	}
	if len(photos) != 1 || photos[0].ID != bobPhoto.ID {
		t.Errorf("bob's records should be untouched")
	}
}

func TestConcurrentCreateFolder(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	alice := newTestUser(t, s, "alice")

	numGoroutines := 10
	var wg sync.WaitGroup
	idsMutex := sync.Mutex{}
	ids := make(map[int64]bool)

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()

			folder := &models.Folder{UserID: alice.ID, Name: fmt.Sprintf("folder-%d", index)}
			if err := s.CreateFolder(ctx, folder); err != nil {
				t.Errorf("concurrent CreateFolder() failed: %v", err)
				return
			}

			idsMutex.Lock()
			if ids[folder.ID] {
				t.Errorf("duplicate folder ID generated: %d", folder.ID)
			}
			ids[folder.ID] = true
			idsMutex.Unlock()
		}(i)
	}

	wg.Wait()

	_, total, err := s.ListFolders(ctx, alice.ID, 1, 100)
	if err != nil {
		t.Fatalf("ListFolders() failed: %v", err)
	}
	if total != numGoroutines {
		t.Errorf("expected %d folders, got %d", numGoroutines, total)
	}
}

func TestListFolders_Pagination(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	alice := newTestUser(t, s, "alice")
	for i := 0; i < 5; i++ {
		newTestFolder(t, s, alice.ID, fmt.Sprintf("folder-%d", i))
	}

	firstPage, total, err := s.ListFolders(ctx, alice.ID, 1, 2)
	if err != nil {
		t.Fatalf("ListFolders() failed: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(firstPage) != 2 {
		t.Errorf("first page length = %d, want 2", len(firstPage))
	}

	lastPage, _, err := s.ListFolders(ctx, alice.ID, 3, 2)
	if err != nil {
		t.Fatalf("ListFolders() failed: %v", err)
	}
	if len(lastPage) != 1 {
		t.Errorf("last page length = %d, want 1", len(lastPage))
	}

	empty, _, err := s.ListFolders(ctx, alice.ID, 4, 2)
	if err != nil {
		t.Fatalf("ListFolders() failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("out-of-range page should be empty, got %d items", len(empty))
	}
}
