package validators

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-blog-backend/errs"
	"github.com/stretchr/testify/require"
)

func validationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	var apiErr *errs.ApiErr
	require.True(t, errors.As(err, &apiErr), "expected *errs.ApiErr, got %v", err)
	require.True(t, errs.IsValidationError(err))
	return apiErr.Fields
}

func TestParseBlogPost(t *testing.T) {
	t.Run("should accept a minimal create payload", func(t *testing.T) {
		req := require.New(t)

		input, err := ParseBlogPost([]byte(`{"title":"A","content":"B"}`), OpCreate)

		req.NoError(err)
		req.Equal(uuid.Nil, input.ID)
		req.Equal("A", input.Fields.Title)
		req.Equal("B", input.Fields.Content)
		req.Nil(input.Fields.ImageURL)
		req.Empty(input.Fields.AuthorName)
	})

	t.Run("should keep optional fields", func(t *testing.T) {
		req := require.New(t)

		input, err := ParseBlogPost([]byte(`{"title":"A","content":"B","imageUrl":"blob:abc","authorName":"Bahar","status":"Published"}`), OpCreate)

		req.NoError(err)
		req.Equal("blob:abc", *input.Fields.ImageURL)
		req.Equal("Bahar", input.Fields.AuthorName)
		req.Equal("Published", input.Fields.Status)
	})

	t.Run("should report every missing field", func(t *testing.T) {
		req := require.New(t)

		_, err := ParseBlogPost([]byte(`{}`), OpCreate)

		fields := validationFields(t, err)
		req.Len(fields, 2)
		req.Contains(fields, "title")
		req.Contains(fields, "content")
	})

	t.Run("should reject titles longer than 100 characters", func(t *testing.T) {
		req := require.New(t)
		body := `{"title":"` + strings.Repeat("x", 101) + `","content":"B"}`

		_, err := ParseBlogPost([]byte(body), OpCreate)

		fields := validationFields(t, err)
		req.Contains(fields, "title")
		req.NotContains(fields, "content")
	})

	t.Run("should count title characters not bytes", func(t *testing.T) {
		req := require.New(t)
		body := `{"title":"` + strings.Repeat("é", 100) + `","content":"B"}`

		_, err := ParseBlogPost([]byte(body), OpCreate)

		req.NoError(err)
	})

	t.Run("should reject non string fields", func(t *testing.T) {
		req := require.New(t)

		_, err := ParseBlogPost([]byte(`{"title":42,"content":"B","authorName":["x"]}`), OpCreate)

		fields := validationFields(t, err)
		req.Equal("must be a string", fields["title"])
		req.Equal("must be a string", fields["authorName"])
	})

	t.Run("should treat null optional fields as absent", func(t *testing.T) {
		req := require.New(t)

		input, err := ParseBlogPost([]byte(`{"title":"A","content":"B","imageUrl":null}`), OpCreate)

		req.NoError(err)
		req.Nil(input.Fields.ImageURL)
	})

	t.Run("should reject an unknown status", func(t *testing.T) {
		req := require.New(t)

		_, err := ParseBlogPost([]byte(`{"title":"A","content":"B","status":"Archived"}`), OpCreate)

		req.Contains(validationFields(t, err), "status")
	})

	t.Run("should require an id for updates only", func(t *testing.T) {
		req := require.New(t)

		_, err := ParseBlogPost([]byte(`{"title":"A","content":"B"}`), OpUpdate)
		req.Contains(validationFields(t, err), "id")

		_, err = ParseBlogPost([]byte(`{"id":"not-a-uuid","title":"A","content":"B"}`), OpUpdate)
		req.Contains(validationFields(t, err), "id")

		id := uuid.New()
		input, err := ParseBlogPost([]byte(`{"id":"`+id.String()+`","title":"A","content":"B"}`), OpUpdate)
		req.NoError(err)
		req.Equal(id, input.ID)
	})

	t.Run("should ignore any id on create", func(t *testing.T) {
		req := require.New(t)

		input, err := ParseBlogPost([]byte(`{"id":5,"title":"A","content":"B"}`), OpCreate)
		req.NoError(err)
		req.Equal(uuid.Nil, input.ID)

		input, err = ParseBlogPost([]byte(`{"id":"`+uuid.NewString()+`","title":"A","content":"B"}`), OpCreate)
		req.NoError(err)
		req.Equal(uuid.Nil, input.ID)
	})

	t.Run("should make the body id optional for path addressed updates", func(t *testing.T) {
		req := require.New(t)

		input, err := ParseBlogPost([]byte(`{"title":"A","content":"B"}`), OpReplace)
		req.NoError(err)
		req.Equal(uuid.Nil, input.ID)

		_, err = ParseBlogPost([]byte(`{"id":"x","title":"A","content":"B"}`), OpReplace)
		req.Contains(validationFields(t, err), "id")
	})

	t.Run("should reject bodies that are not objects", func(t *testing.T) {
		req := require.New(t)

		for _, body := range []string{``, `null`, `[]`, `"title"`, `{"title":`} {
			_, err := ParseBlogPost([]byte(body), OpCreate)
			req.True(errs.IsMalformedPayloadError(err), "body %q", body)
		}
	})
}

func TestParseDeleteRequest(t *testing.T) {
	req := require.New(t)
	id := uuid.New()

	parsed, err := ParseDeleteRequest([]byte(`{"id":"` + id.String() + `"}`))
	req.NoError(err)
	req.Equal(id, parsed)

	_, err = ParseDeleteRequest([]byte(`{}`))
	req.Contains(validationFields(t, err), "id")
}

func TestParseID(t *testing.T) {
	req := require.New(t)
	id := uuid.New()

	parsed, err := ParseID(id.String())
	req.NoError(err)
	req.Equal(id, parsed)

	_, err = ParseID("42")
	req.Contains(validationFields(t, err), "id")
}

func TestParseAdminRequest(t *testing.T) {
	req := require.New(t)

	email, err := ParseAdminRequest([]byte(`{"email":" artist@example.com "}`))
	req.NoError(err)
	req.Equal("artist@example.com", email)

	_, err = ParseAdminRequest([]byte(`{"email":"nope"}`))
	req.Contains(validationFields(t, err), "email")
}

func TestParseContactRequest(t *testing.T) {
	req := require.New(t)

	input, err := ParseContactRequest([]byte(`{"name":"Ada","email":"ada@example.com","message":"Is the blue print for sale?"}`))
	req.NoError(err)
	req.Equal("Ada", input.Name)

	_, err = ParseContactRequest([]byte(`{"email":"ada"}`))
	fields := validationFields(t, err)
	req.Len(fields, 3)
}
