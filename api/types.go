package api

import (
	"github.com/rpupo63/portfolio-blog-backend/auth"
	"github.com/rpupo63/portfolio-blog-backend/models"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	blogPostHandler blogPostHandler
	adminHandler    adminHandler
	uploadHandler   uploadHandler
	contactHandler  contactHandler
	healthHandler   healthHandler
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	Error   string            `json:"error"`
	Status  string            `json:"status"`
	Field   string            `json:"field,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Details string            `json:"details,omitempty"`
	Cause   string            `json:"cause,omitempty"`
}

// BlogPostView is a stored post plus the fields derived for readers.
type BlogPostView struct {
	models.BlogPost
	Excerpt     string `json:"excerpt"`
	ContentHTML string `json:"contentHtml,omitempty"`
}

func newBlogPostView(post *models.BlogPost) BlogPostView {
	return BlogPostView{BlogPost: *post, Excerpt: post.Excerpt()}
}

// DeleteBlogPostResponse echoes the removed post.
type DeleteBlogPostResponse struct {
	Message string       `json:"message"`
	Post    BlogPostView `json:"post"`
}

// SetAdminResponse reports a role change.
type SetAdminResponse struct {
	Message  string         `json:"message"`
	Identity *auth.Identity `json:"identity,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	StartedAt string `json:"startedAt"`
}
