package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-blog-backend/errs"
	"github.com/rpupo63/portfolio-blog-backend/models"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

const blogPostEntity = "blog post"

type BlogPostRepo struct {
	db  *gorm.DB
	now func() time.Time
}

func NewBlogPostRepo(db *gorm.DB) *BlogPostRepo {
	return &BlogPostRepo{db: db, now: time.Now}
}

// WithClock returns a copy of the repository that stamps records with now.
func (r *BlogPostRepo) WithClock(now func() time.Time) *BlogPostRepo {
	return &BlogPostRepo{db: r.db, now: now}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *BlogPostRepo) GetDB() *gorm.DB {
	return r.db
}

func (r *BlogPostRepo) timestamp() time.Time {
	// postgres keeps microseconds; truncate so a reloaded record compares equal
	return r.now().UTC().Truncate(time.Microsecond)
}

// List returns all blog posts, newest first
func (r *BlogPostRepo) List(ctx context.Context) ([]*models.BlogPost, error) {
	var blogPosts []*models.BlogPost
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&blogPosts).Error
	if err != nil {
		return nil, errs.NewDatabaseError("find", "blog posts", err)
	}
	return blogPosts, nil
}

// FindByID returns a blog post by its ID
func (r *BlogPostRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	return r.findByID(r.db.WithContext(ctx), id)
}

func (r *BlogPostRepo) findByID(db *gorm.DB, id uuid.UUID) (*models.BlogPost, error) {
	var blogPost models.BlogPost
	err := db.First(&blogPost, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound(blogPostEntity)
	}
	if err != nil {
		return nil, errs.NewDatabaseError("find", blogPostEntity, err)
	}
	return &blogPost, nil
}

// Add inserts a new blog post. The repository assigns the id and createdAt.
func (r *BlogPostRepo) Add(ctx context.Context, fields models.BlogPostFields, authorID string) (*models.BlogPost, error) {
	fields.ApplyDefaults()

	blogPost := &models.BlogPost{
		ID:         uuid.New(),
		Title:      fields.Title,
		Content:    fields.Content,
		ImageURL:   fields.ImageURL,
		AuthorName: fields.AuthorName,
		AuthorID:   authorID,
		Status:     fields.Status,
		CreatedAt:  r.timestamp(),
	}

	if err := r.db.WithContext(ctx).Create(blogPost).Error; err != nil {
		return nil, errs.NewDatabaseError("create", blogPostEntity, err)
	}
	return blogPost, nil
}

// Update replaces the mutable fields of an existing blog post. id and
// createdAt are never written. An empty status keeps the stored one.
func (r *BlogPostRepo) Update(ctx context.Context, id uuid.UUID, fields models.BlogPostFields) (*models.BlogPost, error) {
	if fields.AuthorName == "" {
		fields.AuthorName = models.DefaultAuthorName
	}

	updates := map[string]any{
		"title":       fields.Title,
		"content":     fields.Content,
		"image_url":   fields.ImageURL,
		"author_name": fields.AuthorName,
		"updated_at":  r.timestamp(),
	}
	if fields.Status != "" {
		updates["status"] = fields.Status
	}

	result := r.db.WithContext(ctx).
		Model(&models.BlogPost{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return nil, errs.NewDatabaseError("update", blogPostEntity, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, errs.NewNotFound(blogPostEntity)
	}

	// Read back from the primary; a replica may not have the write yet.
	return r.findByID(r.db.WithContext(ctx).Clauses(dbresolver.Write), id)
}

// Delete removes a blog post from the database by id and returns it
func (r *BlogPostRepo) Delete(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	db := r.db.WithContext(ctx).Clauses(dbresolver.Write)

	blogPost, err := r.findByID(db, id)
	if err != nil {
		return nil, err
	}

	result := db.Delete(&models.BlogPost{}, "id = ?", id)
	if result.Error != nil {
		return nil, errs.NewDatabaseError("delete", blogPostEntity, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, errs.NewNotFound(blogPostEntity)
	}
	return blogPost, nil
}
