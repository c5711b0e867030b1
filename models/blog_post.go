package models

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	DefaultAuthorName = "Anonymous"

	StatusDraft     = "Draft"
	StatusPublished = "Published"

	// ExcerptLength is the number of characters of content shown in listings.
	ExcerptLength = 100
)

// BlogPost represents a complete blog post with metadata
type BlogPost struct {
	ID         uuid.UUID  `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Title      string     `json:"title" db:"title" gorm:"type:varchar(100);not null"`
	Content    string     `json:"content" db:"content" gorm:"type:text;not null"`
	ImageURL   *string    `json:"imageUrl,omitempty" db:"image_url" gorm:"type:text"`
	AuthorName string     `json:"authorName" db:"author_name" gorm:"type:text;not null;default:'Anonymous'"`
	AuthorID   string     `json:"authorId,omitempty" db:"author_id" gorm:"type:text"`
	Status     string     `json:"status" db:"status" gorm:"type:text;not null;default:'Draft'"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at" gorm:"not null;index:idx_blog_posts_created_at;autoCreateTime:false"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty" db:"updated_at" gorm:"autoUpdateTime:false"`
}

// Excerpt returns the first ExcerptLength characters of the content.
func (p BlogPost) Excerpt() string {
	return Truncate(p.Content, ExcerptLength)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// BlogPostFields are the mutable fields of a post. Both create and update
// write exactly these.
type BlogPostFields struct {
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	ImageURL   *string `json:"imageUrl,omitempty"`
	AuthorName string  `json:"authorName,omitempty"`
	Status     string  `json:"status,omitempty"`
}

// ApplyDefaults fills the values a post gets when the client omits them.
func (f *BlogPostFields) ApplyDefaults() {
	if f.AuthorName == "" {
		f.AuthorName = DefaultAuthorName
	}
	if f.Status == "" {
		f.Status = StatusDraft
	}
}
