package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-blog-backend/auth"
	"github.com/rpupo63/portfolio-blog-backend/blog"
	"github.com/rpupo63/portfolio-blog-backend/services"
	"github.com/rpupo63/portfolio-blog-backend/validators"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type blogPostHandler struct {
	responder Responder
	logger    zerolog.Logger
	posts     *blog.Service
	gate      auth.Gate
}

func newBlogPostHandler(posts *blog.Service, gate auth.Gate) blogPostHandler {
	logger := log.With().Str("handlerName", "blogPostHandler").Logger()

	return blogPostHandler{
		responder: NewResponder(logger),
		logger:    logger,
		posts:     posts,
		gate:      gate,
	}
}

// pathID returns the {blogPostID} route parameter, or uuid.Nil when the
// route has none.
func pathID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "blogPostID")
	if raw == "" {
		return uuid.Nil, nil
	}
	return validators.ParseID(raw)
}

// getAllBlogPosts lists every post, newest first.
// @Router /api/blog-posts [get]
func (h blogPostHandler) getAllBlogPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := h.posts.List(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		views := make([]BlogPostView, 0, len(posts))
		for _, post := range posts {
			views = append(views, newBlogPostView(post))
		}
		h.responder.WriteJSON(w, views)
	}
}

// getBlogPost returns one post with its content rendered to HTML.
// @Router /api/blog-posts/{blogPostID} [get]
func (h blogPostHandler) getBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post, err := h.posts.Get(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		view := newBlogPostView(post)
		view.ContentHTML, err = services.RenderMarkdown(post.Content)
		if err != nil {
			h.logger.Warn().Err(err).Str("postID", post.ID.String()).Msg("Failed to render blog post content")
		}
		h.responder.WriteJSON(w, view)
	}
}

// createBlogPost stores a new post. Admin only.
// @Router /api/blog-posts [post]
func (h blogPostHandler) createBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := h.gate.Identify(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := auth.RequireAdmin(identity); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		body, err := readBody(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post, err := h.posts.Create(r.Context(), identity, body)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		w.Header().Set("Location", "/api/blog-posts/"+post.ID.String())
		h.responder.WriteJSONStatus(w, http.StatusCreated, newBlogPostView(post))
	}
}

// updateBlogPost replaces the editable fields of a post. The id comes from
// the path when present, otherwise from the body. Admin only.
// @Router /api/blog-posts/{blogPostID} [put]
func (h blogPostHandler) updateBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := h.gate.Identify(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := auth.RequireAdmin(identity); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		body, err := readBody(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post, err := h.posts.Update(r.Context(), identity, body, id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, newBlogPostView(post))
	}
}

// deleteBlogPost removes a post addressed by path or by an {id} body.
// Admin only.
// @Router /api/blog-posts/{blogPostID} [delete]
func (h blogPostHandler) deleteBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := h.gate.Identify(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := auth.RequireAdmin(identity); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if id == uuid.Nil {
			body, err := readBody(r)
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			if id, err = validators.ParseDeleteRequest(body); err != nil {
				h.responder.WriteError(w, err)
				return
			}
		}

		post, err := h.posts.Delete(r.Context(), identity, id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, DeleteBlogPostResponse{
			Message: "Blog post deleted successfully",
			Post:    newBlogPostView(post),
		})
	}
}
