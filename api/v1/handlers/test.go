package handlers

import (
	"encoding/json"
	"net/http"
)

// TestAPIHandler is an unauthenticated smoke-check endpoint
func TestAPIHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"message": "API is working!",
	})
}
