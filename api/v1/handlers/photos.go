package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"photovault/api/v1/middleware"
	"photovault/api/v1/models"
	"photovault/api/v1/stores"
)

const (
	MaxPhotoTitleLength       = 200
	MaxPhotoDescriptionLength = 500
)

type PhotoHandler struct {
	Store stores.Store
}

type movePhotoRequest struct {
	FolderID *int64 `json:"folder_id"`
}

type statusResponse struct {
	Status string `json:"status"`
}

func (h *PhotoHandler) CreatePhoto(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var newPhoto models.Photo
	err := json.NewDecoder(r.Body).Decode(&newPhoto)
	if err != nil {
		SendError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	// Set user ID from authenticated user (prevent user ID spoofing)
	newPhoto.UserID = user.ID

	if err := h.validatePhoto(&newPhoto); err != nil {
		SendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = h.Store.CreatePhoto(r.Context(), &newPhoto)
	if err != nil {
		if errors.Is(err, stores.ErrNoFolderError) {
			SendError(w, "Folder not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, stores.ErrDatabaseError) {
			SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
			return
		}
		SendError(w, "An unexpected error occurred", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(newPhoto)
}

func (h *PhotoHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	photoID, err := parseIDParam(r)
	if err != nil {
		SendError(w, "Invalid photo ID", http.StatusBadRequest)
		return
	}

	gotPhoto, err := h.Store.GetPhoto(r.Context(), user.ID, photoID)
	if err != nil {
		if errors.Is(err, stores.ErrNoPhotoError) {
			SendError(w, "Photo not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, stores.ErrDatabaseError) {
			SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
			return
		}
		SendError(w, "An unexpected error occurred", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(gotPhoto)
}

func (h *PhotoHandler) GetPhotos(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	page, limit := parsePagination(r)

	// Optional folder filter on top of the ownership scope. A value that
	// doesn't parse is ignored rather than rejected.
	var folderID *int64
	if folderStr := r.URL.Query().Get("folder"); folderStr != "" {
		if fid, err := strconv.ParseInt(folderStr, 10, 64); err == nil {
			folderID = &fid
		}
	}

	photos, total, err := h.Store.ListPhotos(r.Context(), user.ID, folderID, page, limit)
	if err != nil {
		if errors.Is(err, stores.ErrDatabaseError) {
			SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
			return
		}
		SendError(w, "An unexpected error occurred", http.StatusInternalServerError)
		return
	}

	if photos == nil {
		photos = []models.Photo{}
	}

	SendPaginatedData(w, photos, NewPaginationInfo(page, limit, total), http.StatusOK)
}

func (h *PhotoHandler) UpdatePhoto(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	photoID, err := parseIDParam(r)
	if err != nil {
		SendError(w, "Invalid photo ID", http.StatusBadRequest)
		return
	}

	current, err := h.Store.GetPhoto(r.Context(), user.ID, photoID)
	if err != nil {
		if errors.Is(err, stores.ErrNoPhotoError) {
			SendError(w, "Photo not found", http.StatusNotFound)
			return
		}
		SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		return
	}

	// Decode over the current record so PATCH keeps unmentioned fields
	updated := *current
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		SendError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	updated.UserID = user.ID

	if err := h.validatePhoto(&updated); err != nil {
		SendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = h.Store.UpdatePhoto(r.Context(), user.ID, photoID, &updated)
	if err != nil {
		if errors.Is(err, stores.ErrNoPhotoError) {
			SendError(w, "Photo not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, stores.ErrDatabaseError) {
			SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
			return
		}
		SendError(w, "An unexpected error occurred", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(updated)
}

func (h *PhotoHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	photoID, err := parseIDParam(r)
	if err != nil {
		SendError(w, "Invalid photo ID", http.StatusBadRequest)
		return
	}

	err = h.Store.DeletePhoto(r.Context(), user.ID, photoID)
	if err != nil {
		if errors.Is(err, stores.ErrNoPhotoError) {
			SendError(w, "Photo not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, stores.ErrDatabaseError) {
			SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
			return
		}
		SendError(w, "An unexpected error occurred", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MovePhotoToFolder reassigns a photo to another folder owned by the caller.
// A missing or unknown folder_id reports "Folder not found", the same as a
// folder owned by someone else.
func (h *PhotoHandler) MovePhotoToFolder(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	photoID, err := parseIDParam(r)
	if err != nil {
		SendError(w, "Invalid photo ID", http.StatusBadRequest)
		return
	}

	var req movePhotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		SendError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	err = h.Store.MovePhotoToFolder(r.Context(), user.ID, photoID, req.FolderID)
	if err != nil {
		if errors.Is(err, stores.ErrNoPhotoError) {
			SendError(w, "Photo not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, stores.ErrNoFolderError) {
			SendError(w, "Folder not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, stores.ErrDatabaseError) {
			SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
			return
		}
		SendError(w, "An unexpected error occurred", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(statusResponse{Status: "photo moved"})
}

func (h *PhotoHandler) validatePhoto(photo *models.Photo) error {
	photo.Title = strings.TrimSpace(photo.Title)

	if photo.Title == "" {
		return errors.New("photo title is required")
	}

	if utf8.RuneCountInString(photo.Title) > MaxPhotoTitleLength {
		return errors.New("photo title is too long")
	}

	if strings.TrimSpace(photo.URL) == "" {
		return errors.New("photo url is required")
	}

	if photo.Description != nil && utf8.RuneCountInString(*photo.Description) > MaxPhotoDescriptionLength {
		return errors.New("photo description is too long")
	}

	return nil
}
