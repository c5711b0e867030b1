package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-blog-backend/auth"
	"github.com/rpupo63/portfolio-blog-backend/models"
)

// ErrNotAdmin means the signed-in identity may not use the admin console.
var ErrNotAdmin = errors.New("admin role required")

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) (bool, error)

func (f ConfirmFunc) Confirm(prompt string) (bool, error) {
	return f(prompt)
}

// Console is the state of the admin view. Every mutation is followed by a
// full reload of the list; nothing is patched locally.
type Console struct {
	client   *Client
	confirm  Confirmer
	Identity *auth.Identity
	Posts    []Post
}

func NewConsole(client *Client, confirm Confirmer) *Console {
	return &Console{client: client, confirm: confirm}
}

// Open checks the caller's role and loads the posts. A non-admin gets
// ErrNotAdmin and no list.
func (c *Console) Open(ctx context.Context) error {
	identity, err := c.client.Me(ctx)
	if err != nil {
		return err
	}
	if !identity.IsAdmin() {
		return ErrNotAdmin
	}
	c.Identity = identity
	return c.Refresh(ctx)
}

func (c *Console) Refresh(ctx context.Context) error {
	posts, err := c.client.ListPosts(ctx)
	if err != nil {
		return err
	}
	c.Posts = posts
	return nil
}

// Save creates the post when id is uuid.Nil and updates it otherwise.
func (c *Console) Save(ctx context.Context, id uuid.UUID, fields models.BlogPostFields) (*Post, error) {
	var (
		post *Post
		err  error
	)
	if id == uuid.Nil {
		post, err = c.client.CreatePost(ctx, fields)
	} else {
		post, err = c.client.UpdatePost(ctx, id, fields)
	}
	if err != nil {
		return nil, err
	}
	return post, c.Refresh(ctx)
}

// Remove deletes the post after the operator confirms. It reports whether a
// delete was sent.
func (c *Console) Remove(ctx context.Context, id uuid.UUID) (bool, error) {
	prompt := fmt.Sprintf("Delete post %s?", id)
	for _, post := range c.Posts {
		if post.ID == id {
			prompt = fmt.Sprintf("Delete %q?", post.Title)
			break
		}
	}

	ok, err := c.confirm.Confirm(prompt)
	if err != nil || !ok {
		return false, err
	}

	if _, err := c.client.DeletePost(ctx, id); err != nil {
		return false, err
	}
	return true, c.Refresh(ctx)
}
