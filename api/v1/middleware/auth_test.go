package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"photovault/api/v1/models"
	"photovault/api/v1/stores/memory"
)

const testSecret = "test-secret"

func newTestMiddleware(t *testing.T) (*AuthMiddleware, *models.User) {
	t.Helper()

	store := memory.NewStore()
	user := &models.User{Username: "alice"}
	if err := store.CreateUser(context.Background(), user, "hash"); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}

	return NewAuthMiddleware(store, testSecret), user
}

func TestGenerateAndValidateToken(t *testing.T) {
	am, user := newTestMiddleware(t)

	token, err := am.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}
	if token == "" {
		t.Fatal("GenerateToken() returned empty token")
	}

	claims, err := am.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() failed: %v", err)
	}

	if claims.UserID != user.ID {
		t.Errorf("claims user ID = %d, want %d", claims.UserID, user.ID)
	}
	if claims.Username != user.Username {
		t.Errorf("claims username = %q, want %q", claims.Username, user.Username)
	}
}

func TestGenerateToken_NilUser(t *testing.T) {
	am, _ := newTestMiddleware(t)

	if _, err := am.GenerateToken(nil); err == nil {
		t.Error("GenerateToken(nil) should fail")
	}
}

func TestValidateToken_Errors(t *testing.T) {
	am, user := newTestMiddleware(t)

	otherSecret := NewAuthMiddleware(am.Store, "a different secret")
	foreignToken, err := otherSecret.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"garbage token", "not.a.jwt"},
		{"wrong secret", foreignToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := am.ValidateToken(tt.token); err == nil {
				t.Errorf("ValidateToken(%q) should fail", tt.token)
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	am, user := newTestMiddleware(t)

	token, err := am.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	var seenUser *models.User
	handler := am.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser, _ = GetUserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc123", http.StatusUnauthorized},
		{"malformed bearer", "Bearer", http.StatusUnauthorized},
		{"invalid token", "Bearer garbage", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seenUser = nil

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusOK {
				if seenUser == nil || seenUser.ID != user.ID {
					t.Errorf("handler did not receive the authenticated user")
				}
			}
		})
	}
}

func TestRequireAuth_DeletedUser(t *testing.T) {
	am, user := newTestMiddleware(t)

	token, err := am.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	if err := am.Store.DeleteUser(context.Background(), user.ID); err != nil {
		t.Fatalf("DeleteUser() failed: %v", err)
	}

	handler := am.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("token for a deleted user should be rejected, got %d", rec.Code)
	}
}
