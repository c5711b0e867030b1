package validators

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-blog-backend/errs"
	"github.com/rpupo63/portfolio-blog-backend/models"
)

const (
	TitleMaxLength = 100
)

// Operation selects the rule set for a blog post payload.
type Operation int

const (
	// OpCreate ignores any id in the body.
	OpCreate Operation = iota
	// OpUpdate requires the id in the body.
	OpUpdate
	// OpReplace is an update addressed by path; a body id is optional.
	OpReplace
)

// BlogPostInput is a validated blog post payload.
type BlogPostInput struct {
	// ID is uuid.Nil for OpCreate and for an OpReplace body without id.
	ID     uuid.UUID
	Fields models.BlogPostFields
}

type blogPostPayload struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	ImageURL   string `json:"imageUrl"`
	AuthorName string `json:"authorName"`
	Status     string `json:"status"`
}

func (p blogPostPayload) validate(op Operation) error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ID,
			validation.When(op == OpUpdate, validation.Required.Error("id is required for updates")),
			validation.When(op != OpCreate, is.UUID),
		),
		validation.Field(&p.Title,
			validation.Required,
			validation.RuneLength(1, TitleMaxLength),
		),
		validation.Field(&p.Content,
			validation.Required,
		),
		validation.Field(&p.Status,
			validation.In(models.StatusDraft, models.StatusPublished),
		),
	)
}

// ParseBlogPost validates a create or update body:
// {id?, title, content, imageUrl?, authorName?, status?}.
func ParseBlogPost(raw []byte, op Operation) (BlogPostInput, error) {
	body, err := decodeObject(raw, "blog post")
	if err != nil {
		return BlogPostInput{}, err
	}

	var payload blogPostPayload
	if op != OpCreate {
		payload.ID, _ = body.str("id")
	}
	payload.Title, _ = body.str("title")
	payload.Content, _ = body.str("content")
	payload.ImageURL, _ = body.str("imageUrl")
	payload.AuthorName, _ = body.str("authorName")
	payload.Status, _ = body.str("status")

	if err := body.result(payload.validate(op)); err != nil {
		return BlogPostInput{}, err
	}

	input := BlogPostInput{
		Fields: models.BlogPostFields{
			Title:      payload.Title,
			Content:    payload.Content,
			AuthorName: payload.AuthorName,
			Status:     payload.Status,
		},
	}
	if payload.ImageURL != "" {
		imageURL := payload.ImageURL
		input.Fields.ImageURL = &imageURL
	}
	if op != OpCreate && payload.ID != "" {
		input.ID = uuid.MustParse(payload.ID)
	}
	return input, nil
}

type idPayload struct {
	ID string `json:"id"`
}

// ParseDeleteRequest validates a {id} body.
func ParseDeleteRequest(raw []byte) (uuid.UUID, error) {
	body, err := decodeObject(raw, "delete request")
	if err != nil {
		return uuid.Nil, err
	}

	var payload idPayload
	payload.ID, _ = body.str("id")

	err = body.result(validation.ValidateStruct(&payload,
		validation.Field(&payload.ID, validation.Required, is.UUID),
	))
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.MustParse(payload.ID), nil
}

// ParseID validates an id taken from the request path.
func ParseID(value string) (uuid.UUID, error) {
	if err := validation.Validate(value, validation.Required, is.UUID); err != nil {
		return uuid.Nil, errs.NewValidationError(map[string]string{"id": err.Error()})
	}
	return uuid.MustParse(value), nil
}
