// Package router sets up all HTTP routes and middleware chains for the
// Pressroom API. The path layout is kept exactly as the frontend expects
// it, including the doubled segment in the category update route.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"pressroom/internal/handlers"
	"pressroom/internal/middleware"
	"pressroom/internal/token"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(tokens *token.Service, limiter *middleware.RateLimiter, posts *handlers.Posts, categories *handlers.Categories, comments *handlers.Comments, auth *handlers.Auth, frontendOrigin string) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(limiter.Middleware)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{frontendOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)

	authenticate := middleware.Authenticate(tokens)

	// Health check.
	r.Get("/health", healthHandler)

	r.Route("/post", func(r chi.Router) {
		// Public reads.
		r.Get("/getPost", posts.List)
		r.Get("/getPostByID/{postID}", posts.GetByID)

		// Mutations need a valid token and the admin role; ownership is
		// checked inside the handler after the fetch.
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.RequireAdmin)
			r.Post("/create/{userID}", posts.Create)
			r.Put("/updatePost/{userID}/{postID}", posts.Update)
			r.Delete("/deletePost/{userID}/{postID}", posts.Delete)
		})
	})

	r.Route("/category", func(r chi.Router) {
		// The category picker loads before sign-in.
		r.Get("/get", categories.List)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.RequireAdmin)
			r.Post("/create", categories.Create)
			r.Patch("/category/{categoryID}", categories.Update)
			r.Delete("/delete/{categoryID}", categories.Delete)
		})
	})

	// Any signed-in user may comment; no role gate.
	r.Route("/comment", func(r chi.Router) {
		r.Use(authenticate)
		r.Post("/create", comments.Create)
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/register", auth.Register)
		r.Post("/login", auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/logout", auth.Logout)
			r.Post("/2fa/setup", auth.TwoFASetup)
			r.Post("/2fa/verify", auth.TwoFAVerify)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
