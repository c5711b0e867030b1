// Package blog composes the authorization checks, payload validation and the
// post repository into the operations the HTTP API exposes.
package blog

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-blog-backend/auth"
	"github.com/rpupo63/portfolio-blog-backend/errs"
	"github.com/rpupo63/portfolio-blog-backend/models"
	"github.com/rpupo63/portfolio-blog-backend/validators"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Repository persists blog posts.
type Repository interface {
	List(ctx context.Context) ([]*models.BlogPost, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error)
	Add(ctx context.Context, fields models.BlogPostFields, authorID string) (*models.BlogPost, error)
	Update(ctx context.Context, id uuid.UUID, fields models.BlogPostFields) (*models.BlogPost, error)
	Delete(ctx context.Context, id uuid.UUID) (*models.BlogPost, error)
}

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:   repo,
		logger: log.With().Str("component", "blogService").Logger(),
	}
}

// List returns every post, newest first. It is public.
func (s *Service) List(ctx context.Context) ([]*models.BlogPost, error) {
	return s.repo.List(ctx)
}

// Get returns one post. It is public.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	return s.repo.FindByID(ctx, id)
}

// Create validates raw and stores a new post authored by identity.
func (s *Service) Create(ctx context.Context, identity *auth.Identity, raw []byte) (*models.BlogPost, error) {
	if err := auth.RequireAdmin(identity); err != nil {
		return nil, err
	}

	input, err := validators.ParseBlogPost(raw, validators.OpCreate)
	if err != nil {
		return nil, err
	}

	post, err := s.repo.Add(ctx, input.Fields, identity.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("postID", post.ID.String()).Str("identityID", identity.ID).Msg("Created blog post")
	return post, nil
}

// Update validates raw and replaces the mutable fields of the post. pathID is
// uuid.Nil when the id is only carried in the body; otherwise both must agree
// when the body names one.
func (s *Service) Update(ctx context.Context, identity *auth.Identity, raw []byte, pathID uuid.UUID) (*models.BlogPost, error) {
	if err := auth.RequireAdmin(identity); err != nil {
		return nil, err
	}

	op := validators.OpUpdate
	if pathID != uuid.Nil {
		op = validators.OpReplace
	}
	input, err := validators.ParseBlogPost(raw, op)
	if err != nil {
		return nil, err
	}

	id := input.ID
	if pathID != uuid.Nil {
		if input.ID != uuid.Nil && input.ID != pathID {
			return nil, errs.NewBadRequestError("id in body does not match id in path")
		}
		id = pathID
	}

	post, err := s.repo.Update(ctx, id, input.Fields)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("postID", post.ID.String()).Str("identityID", identity.ID).Msg("Updated blog post")
	return post, nil
}

// Delete removes the post permanently and returns it.
func (s *Service) Delete(ctx context.Context, identity *auth.Identity, id uuid.UUID) (*models.BlogPost, error) {
	if err := auth.RequireAdmin(identity); err != nil {
		return nil, err
	}

	post, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("postID", post.ID.String()).Str("identityID", identity.ID).Msg("Deleted blog post")
	return post, nil
}
