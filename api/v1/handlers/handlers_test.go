package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"photovault/api/v1/middleware"
	"photovault/api/v1/models"
	"photovault/api/v1/stores"
	"photovault/api/v1/stores/memory"
)

const testJWTSecret = "test-secret-do-not-use-in-production"

func newTestRouter(t *testing.T) (http.Handler, stores.Store) {
	t.Helper()
	store := memory.NewStore()
	authMiddleware := middleware.NewAuthMiddleware(store, testJWTSecret)
	return NewRouter(store, authMiddleware), store
}

// doRequest performs a request against the router, optionally authenticated
func doRequest(t *testing.T, router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// registerUser creates an account through the public registration route and
// returns the issued token plus the created user
func registerUser(t *testing.T, router http.Handler, username string) (string, models.UserResponse) {
	t.Helper()

	body := `{"username": "` + username + `", "password": "correct horse battery"}`
	rec := doRequest(t, router, http.MethodPost, "/api/users", "", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("registration failed for %q: status %d, body %s", username, rec.Code, rec.Body.String())
	}

	var resp models.AuthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode registration response: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("registration returned empty token")
	}

	return resp.Token, resp.User
}

func createFolder(t *testing.T, router http.Handler, token, name string) models.Folder {
	t.Helper()

	rec := doRequest(t, router, http.MethodPost, "/api/folders", token, `{"name": "`+name+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("folder creation failed: status %d, body %s", rec.Code, rec.Body.String())
	}

	var folder models.Folder
	if err := json.NewDecoder(rec.Body).Decode(&folder); err != nil {
		t.Fatalf("failed to decode folder response: %v", err)
	}
	return folder
}

func createPhoto(t *testing.T, router http.Handler, token, body string) models.Photo {
	t.Helper()

	rec := doRequest(t, router, http.MethodPost, "/api/photos", token, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("photo creation failed: status %d, body %s", rec.Code, rec.Body.String())
	}

	var photo models.Photo
	if err := json.NewDecoder(rec.Body).Decode(&photo); err != nil {
		t.Fatalf("failed to decode photo response: %v", err)
	}
	return photo
}

func listPhotos(t *testing.T, router http.Handler, token, query string) []models.Photo {
	t.Helper()

	rec := doRequest(t, router, http.MethodGet, "/api/photos"+query, token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("photo listing failed: status %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data []models.Photo `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode photo list: %v", err)
	}
	return resp.Data
}
