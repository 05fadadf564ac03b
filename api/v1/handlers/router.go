package handlers

import (
	"photovault/api/v1/middleware"
	"photovault/api/v1/stores"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires every API route. Registration, login and the test
// endpoint are public; everything else sits behind RequireAuth.
func NewRouter(store stores.Store, authMiddleware *middleware.AuthMiddleware) *chi.Mux {
	userHandler := &UserHandler{Store: store, AuthMiddleware: authMiddleware}
	authHandler := NewAuthHandler(store, authMiddleware)
	folderHandler := &FolderHandler{Store: store}
	photoHandler := &PhotoHandler{Store: store}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Get("/", HomeHandler)
	r.Get("/health", HealthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/test", TestAPIHandler)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.With(authMiddleware.RequireAuth).Get("/me", authHandler.Me)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.CreateUser)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireAuth)
				r.Get("/", userHandler.GetUsers)
				r.Get("/{id}", userHandler.GetUser)
				r.Put("/{id}", userHandler.UpdateUser)
				r.Patch("/{id}", userHandler.UpdateUser)
				r.Delete("/{id}", userHandler.DeleteUser)
			})
		})

		r.Route("/folders", func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)
			r.Post("/", folderHandler.CreateFolder)
			r.Get("/", folderHandler.GetFolders)
			r.Get("/{id}", folderHandler.GetFolder)
			r.Put("/{id}", folderHandler.UpdateFolder)
			r.Patch("/{id}", folderHandler.UpdateFolder)
			r.Delete("/{id}", folderHandler.DeleteFolder)
			r.Delete("/{id}/delete_folder", folderHandler.DeleteFolder)
		})

		r.Route("/photos", func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)
			r.Post("/", photoHandler.CreatePhoto)
			r.Get("/", photoHandler.GetPhotos)
			r.Get("/{id}", photoHandler.GetPhoto)
			r.Put("/{id}", photoHandler.UpdatePhoto)
			r.Patch("/{id}", photoHandler.UpdatePhoto)
			r.Delete("/{id}", photoHandler.DeletePhoto)
			r.Post("/{id}/move_to_folder", photoHandler.MovePhotoToFolder)
		})
	})

	return r
}
