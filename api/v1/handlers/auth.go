package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"photovault/api/v1/middleware"
	"photovault/api/v1/models"
	"photovault/api/v1/stores"

	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	Store          stores.Store
	AuthMiddleware *middleware.AuthMiddleware
}

func NewAuthHandler(store stores.Store, authMiddleware *middleware.AuthMiddleware) *AuthHandler {
	return &AuthHandler{
		Store:          store,
		AuthMiddleware: authMiddleware,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var loginReq models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		SendError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if err := h.validateLogin(&loginReq); err != nil {
		SendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.Store.GetUserByUsername(r.Context(), loginReq.Username)
	if err != nil {
		// Use generic message to prevent username enumeration
		time.Sleep(100 * time.Millisecond) // delay to prevent timing attacks
		SendError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(loginReq.Password))
	if err != nil {
		time.Sleep(100 * time.Millisecond)
		SendError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	token, err := h.AuthMiddleware.GenerateToken(&user.User)
	if err != nil {
		SendError(w, "Failed to generate authentication token", http.StatusInternalServerError)
		return
	}

	response := models.AuthResponse{
		Token: token,
		User:  toUserResponse(&user.User),
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(toUserResponse(user))
}

// validateLogin validates login input
func (h *AuthHandler) validateLogin(req *models.LoginRequest) error {
	if strings.TrimSpace(req.Username) == "" {
		return errors.New("username is required")
	}

	if strings.TrimSpace(req.Password) == "" {
		return errors.New("password is required")
	}

	return nil
}
