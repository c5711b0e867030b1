package api

import (
	"context"
	"io"
	"time"

	"github.com/rpupo63/portfolio-blog-backend/auth"
	"github.com/rpupo63/portfolio-blog-backend/blog"
	"github.com/rpupo63/portfolio-blog-backend/services"
	"github.com/rpupo63/portfolio-blog-backend/validators"
)

// ImageUploader stores uploaded cover images.
type ImageUploader interface {
	Upload(ctx context.Context, name string, body io.Reader) (*services.StoredImage, error)
	MaxBytes() int64
}

// ContactSender delivers contact form messages.
type ContactSender interface {
	SendContact(ctx context.Context, msg validators.ContactInput) error
}

// Dependencies are the collaborators of the HTTP API. Roles, Images and
// Mailer are optional; the routes they back answer 503 when nil.
type Dependencies struct {
	Posts  *blog.Service
	Gate   auth.Gate
	Roles  auth.RoleAssigner
	Images ImageUploader
	Mailer ContactSender
}

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps Dependencies, startupTime time.Time) *routeHandlers {
	return &routeHandlers{
		blogPostHandler: newBlogPostHandler(deps.Posts, deps.Gate),
		adminHandler:    newAdminHandler(deps.Gate, deps.Roles),
		uploadHandler:   newUploadHandler(deps.Gate, deps.Images),
		contactHandler:  newContactHandler(deps.Mailer),
		healthHandler:   newHealthHandler(startupTime),
	}
}
