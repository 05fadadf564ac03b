package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"photovault/api/v1/middleware"
	"photovault/api/v1/models"
	"photovault/api/v1/stores"
)

const (
	MaxFolderNameLength        = 100
	MaxFolderDescriptionLength = 500
)

type FolderHandler struct {
	Store stores.Store
}

func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var newFolder models.Folder
	err := json.NewDecoder(r.Body).Decode(&newFolder)
	if err != nil {
		SendError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	// Set user ID from authenticated user (prevent user ID spoofing)
	newFolder.UserID = user.ID

	if err := h.validateFolder(&newFolder); err != nil {
		SendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = h.Store.CreateFolder(r.Context(), &newFolder)
	if err != nil {
		if errors.Is(err, stores.ErrDatabaseError) {
			SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
			return
		}
		SendError(w, "An unexpected error occurred", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(newFolder)
}

func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	folderID, err := parseIDParam(r)
	if err != nil {
		SendError(w, "Invalid folder ID", http.StatusBadRequest)
		return
	}

	gotFolder, err := h.Store.GetFolder(r.Context(), user.ID, folderID)
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

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(gotFolder)
}

func (h *FolderHandler) GetFolders(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	page, limit := parsePagination(r)

	folders, total, err := h.Store.ListFolders(r.Context(), user.ID, page, limit)
	if err != nil {
		if errors.Is(err, stores.ErrDatabaseError) {
			SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
			return
		}
		SendError(w, "An unexpected error occurred", http.StatusInternalServerError)
		return
	}

	if folders == nil {
		folders = []models.Folder{}
	}

	SendPaginatedData(w, folders, NewPaginationInfo(page, limit, total), http.StatusOK)
}

func (h *FolderHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	folderID, err := parseIDParam(r)
	if err != nil {
		SendError(w, "Invalid folder ID", http.StatusBadRequest)
		return
	}

	current, err := h.Store.GetFolder(r.Context(), user.ID, folderID)
	if err != nil {
		if errors.Is(err, stores.ErrNoFolderError) {
			SendError(w, "Folder not found", http.StatusNotFound)
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

	if err := h.validateFolder(&updated); err != nil {
		SendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = h.Store.UpdateFolder(r.Context(), user.ID, folderID, &updated)
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

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(updated)
}

// DeleteFolder removes a folder and every photo inside it. It backs both
// DELETE /folders/{id} and the explicit delete_folder action; folder
// deletion always cascades.
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	folderID, err := parseIDParam(r)
	if err != nil {
		SendError(w, "Invalid folder ID", http.StatusBadRequest)
		return
	}

	_, err = h.Store.DeleteFolder(r.Context(), user.ID, folderID)
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

	w.WriteHeader(http.StatusNoContent)
}

func (h *FolderHandler) validateFolder(folder *models.Folder) error {
	folder.Name = strings.TrimSpace(folder.Name)

	if folder.Name == "" {
		return errors.New("folder name is required")
	}

	if utf8.RuneCountInString(folder.Name) > MaxFolderNameLength {
		return errors.New("folder name is too long")
	}

	if folder.Description != nil && utf8.RuneCountInString(*folder.Description) > MaxFolderDescriptionLength {
		return errors.New("folder description is too long")
	}

	return nil
}

func parsePagination(r *http.Request) (page, limit int) {
	query := r.URL.Query()

	page = 1
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	limit = 20
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	return page, limit
}
