package api

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes registers the blog API. Reads are public; every write checks
// the caller's identity inside the handler.
func setupRoutes(r chi.Router, handlers *routeHandlers, maxBody int64) {
	r.Get("/healthz", handlers.healthHandler.getHealth())

	r.Route("/api", func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)

		r.Group(func(r chi.Router) {
			r.Use(limitBodySize(maxBody))

			r.Get("/blog-posts", handlers.blogPostHandler.getAllBlogPosts())
			r.Get("/blog-posts/{blogPostID}", handlers.blogPostHandler.getBlogPost())
			r.Post("/blog-posts", handlers.blogPostHandler.createBlogPost())
			r.Put("/blog-posts", handlers.blogPostHandler.updateBlogPost())
			r.Put("/blog-posts/{blogPostID}", handlers.blogPostHandler.updateBlogPost())
			r.Delete("/blog-posts", handlers.blogPostHandler.deleteBlogPost())
			r.Delete("/blog-posts/{blogPostID}", handlers.blogPostHandler.deleteBlogPost())

			r.Post("/set-admin", handlers.adminHandler.setAdmin())
			r.Get("/me", handlers.adminHandler.getMe())

			r.Post("/contact", handlers.contactHandler.sendContact())
		})

		// multipart bodies are capped by the image store's own limit
		r.Post("/uploads/images", handlers.uploadHandler.uploadImage())
	})
}
