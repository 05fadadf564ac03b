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

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	MaxUsernameLength = 50
	MinPasswordLength = 8
	MaxDisplayNameLen = 100
)

type UserHandler struct {
	Store          stores.Store
	AuthMiddleware *middleware.AuthMiddleware
}

// CreateUser registers a new account. This is the only write that does not
// require authentication.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if err := validateRegistration(&req); err != nil {
		SendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		SendError(w, "Failed to process password", http.StatusInternalServerError)
		return
	}

	user := models.User{
		Username:    strings.TrimSpace(req.Username),
		DisplayName: req.DisplayName,
	}

	err = h.Store.CreateUser(r.Context(), &user, string(hashedPassword))
	if err != nil {
		if errors.Is(err, stores.ErrUsernameExists) {
			SendError(w, "Username already exists", http.StatusConflict)
			return
		}
		if errors.Is(err, stores.ErrDatabaseError) {
			SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
			return
		}
		SendError(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	token, err := h.AuthMiddleware.GenerateToken(&user)
	if err != nil {
		SendError(w, "Failed to generate authentication token", http.StatusInternalServerError)
		return
	}

	response := models.AuthResponse{
		Token: token,
		User:  toUserResponse(&user),
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

// GetUsers lists user records visible to the caller, which is always exactly
// the caller's own record.
func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	SendData(w, []models.UserResponse{toUserResponse(user)}, http.StatusOK)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	userID, err := parseIDParam(r)
	if err != nil {
		SendError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	// Other users' records are invisible, not forbidden
	if userID != user.ID {
		SendError(w, "User not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(toUserResponse(user))
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	userID, err := parseIDParam(r)
	if err != nil {
		SendError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if userID != user.ID {
		SendError(w, "User not found", http.StatusNotFound)
		return
	}

	// Decode over the current record so PATCH keeps unmentioned fields
	updated := *user
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		SendError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	updated.Username = strings.TrimSpace(updated.Username)
	if updated.Username == "" {
		SendError(w, "Username is required", http.StatusBadRequest)
		return
	}
	if utf8.RuneCountInString(updated.Username) > MaxUsernameLength {
		SendError(w, "Username is too long", http.StatusBadRequest)
		return
	}

	err = h.Store.UpdateUser(r.Context(), user.ID, &updated)
	if err != nil {
		if errors.Is(err, stores.ErrUsernameExists) {
			SendError(w, "Username already exists", http.StatusConflict)
			return
		}
		if errors.Is(err, stores.ErrNoUserError) {
			SendError(w, "User not found", http.StatusNotFound)
			return
		}
		SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(toUserResponse(&updated))
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	userID, err := parseIDParam(r)
	if err != nil {
		SendError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if userID != user.ID {
		SendError(w, "User not found", http.StatusNotFound)
		return
	}

	err = h.Store.DeleteUser(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, stores.ErrNoUserError) {
			SendError(w, "User not found", http.StatusNotFound)
			return
		}
		SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toUserResponse(user *models.User) models.UserResponse {
	return models.UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func validateRegistration(req *models.RegisterRequest) error {
	if strings.TrimSpace(req.Username) == "" {
		return errors.New("username is required")
	}

	if utf8.RuneCountInString(req.Username) > MaxUsernameLength {
		return errors.New("username is too long")
	}

	if strings.TrimSpace(req.Password) == "" {
		return errors.New("password is required")
	}

	if len(req.Password) < MinPasswordLength {
		return errors.New("password must be at least 8 characters long")
	}

	if req.DisplayName != nil && utf8.RuneCountInString(*req.DisplayName) > MaxDisplayNameLen {
		return errors.New("display name is too long")
	}

	return nil
}
