package main

import (
	"context"
	"net/http"

	"photovault/api/v1/handlers"
	"photovault/api/v1/middleware"
	"photovault/api/v1/stores/postgres"
	"photovault/config"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	store, err := postgres.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}
	defer store.Close()

	authMiddleware := middleware.NewAuthMiddleware(store, cfg.JWTSecret)

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Mount("/", handlers.NewRouter(store, authMiddleware))

	logrus.WithField("port", cfg.Port).Info("Starting server")
	err = http.ListenAndServe(":"+cfg.Port, r)
	if err != nil {
		logrus.Fatalf("server failed: %v", err)
	}
}
