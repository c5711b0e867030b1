package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-blog-backend/auth"
	"github.com/rpupo63/portfolio-blog-backend/blog"
	"github.com/rpupo63/portfolio-blog-backend/database"
	"github.com/rpupo63/portfolio-blog-backend/errs"
	"github.com/rpupo63/portfolio-blog-backend/models"
	"github.com/rpupo63/portfolio-blog-backend/services"
	"github.com/rpupo63/portfolio-blog-backend/validators"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeImages struct {
	names []string
}

func (f *fakeImages) Upload(_ context.Context, name string, body io.Reader) (*services.StoredImage, error) {
	data, _ := io.ReadAll(body)
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		return nil, errs.NewUnsupportedMediaTypeError("text/plain", []string{"image/*"})
	}
	f.names = append(f.names, name)
	return &services.StoredImage{URL: "https://cdn.example.com/blog-images/" + name, Key: "blog-images/" + name, ContentType: "image/png", Size: int64(len(data))}, nil
}

func (f *fakeImages) MaxBytes() int64 {
	return 1 << 20
}

type fakeMailer struct {
	sent []validators.ContactInput
}

func (f *fakeMailer) SendContact(_ context.Context, msg validators.ContactInput) error {
	f.sent = append(f.sent, msg)
	return nil
}

type testAPI struct {
	router   *chi.Mux
	resolver *auth.JWTResolver
	images   *fakeImages
	mailer   *fakeMailer
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	req := require.New(t)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	req.NoError(err)
	sqlDB, err := db.DB()
	req.NoError(err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	req.NoError(models.Migrate(db))

	store := database.New(db)
	resolver := auth.NewJWTResolver("test-secret", "portfolio", store.RoleGrantRepo())
	images := &fakeImages{}
	mailer := &fakeMailer{}

	router := newRouter(Dependencies{
		Posts:  blog.NewService(store.BlogPostRepo()),
		Gate:   auth.NewGate(resolver),
		Roles:  resolver,
		Images: images,
		Mailer: mailer,
	}, withConfig(map[string]string{"ACCEPTED_ORIGINS": "https://site.example.com"}), withStartupTime(time.Now()))

	return &testAPI{router: router, resolver: resolver, images: images, mailer: mailer}
}

func (a *testAPI) token(t *testing.T, role, email string) string {
	t.Helper()
	token, err := a.resolver.IssueToken(auth.Identity{ID: uuid.NewString(), Email: email, Role: role}, time.Hour)
	require.NoError(t, err)
	return token
}

func (a *testAPI) do(method, path, token string, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, path, reader)
	r.Header.Set("Content-Type", "application/json")
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (a *testAPI) listPosts(t *testing.T) []BlogPostView {
	t.Helper()
	w := a.do(http.MethodGet, "/api/blog-posts", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	return decode[[]BlogPostView](t, w)
}

func TestBlogPostRoutes(t *testing.T) {
	t.Run("should list nothing as an empty array", func(t *testing.T) {
		req := require.New(t)
		api := newTestAPI(t)

		w := api.do(http.MethodGet, "/api/blog-posts", "", "")

		req.Equal(http.StatusOK, w.Code)
		req.JSONEq(`[]`, w.Body.String())
	})

	t.Run("should create a post as admin", func(t *testing.T) {
		req := require.New(t)
		api := newTestAPI(t)
		admin := api.token(t, auth.RoleAdmin, "artist@example.com")

		w := api.do(http.MethodPost, "/api/blog-posts", admin, `{"title":"A","content":"B"}`)

		req.Equal(http.StatusCreated, w.Code, w.Body.String())
		created := decode[BlogPostView](t, w)
		req.Equal("/api/blog-posts/"+created.ID.String(), w.Header().Get("Location"))
		req.Equal("Anonymous", created.AuthorName)
		req.Equal("B", created.Excerpt)

		posts := api.listPosts(t)
		req.Len(posts, 1)
		req.Equal(created.ID, posts[0].ID)
	})

	t.Run("should cut the excerpt from the raw content", func(t *testing.T) {
		req := require.New(t)
		api := newTestAPI(t)
		admin := api.token(t, auth.RoleAdmin, "artist@example.com")
		content := `Tom & Jerry's "show" -- <b>1 < 2</b> ` + strings.Repeat("é", 120)
		body, err := json.Marshal(map[string]string{"title": "A", "content": content})
		req.NoError(err)

		w := api.do(http.MethodPost, "/api/blog-posts", admin, string(body))

		req.Equal(http.StatusCreated, w.Code, w.Body.String())
		want := string([]rune(content)[:100])
		created := decode[BlogPostView](t, w)
		req.Equal(want, created.Excerpt)
		req.Equal(content, created.Content)

		posts := api.listPosts(t)
		req.Len(posts, 1)
		req.Equal(want, posts[0].Excerpt)
	})

	t.Run("should reject writes without a token and keep the store unchanged", func(t *testing.T) {
		req := require.New(t)
		api := newTestAPI(t)

		w := api.do(http.MethodPost, "/api/blog-posts", "", `{"title":"A","content":"B"}`)
		req.Equal(http.StatusUnauthorized, w.Code)

		w = api.do(http.MethodPost, "/api/blog-posts", "not-a-token", `{"title":"A","content":"B"}`)
		req.Equal(http.StatusUnauthorized, w.Code)

		req.Empty(api.listPosts(t))
	})

	t.Run("should forbid writes by non admins", func(t *testing.T) {
		req := require.New(t)
		api := newTestAPI(t)
		member := api.token(t, "member", "fan@example.com")

		w := api.do(http.MethodPost, "/api/blog-posts", member, `{"title":"A","content":"B"}`)

		req.Equal(http.StatusForbidden, w.Code)
		req.Empty(api.listPosts(t))
	})

	t.Run("should report every invalid field", func(t *testing.T) {
		req := require.New(t)
		api := newTestAPI(t)
		admin := api.token(t, auth.RoleAdmin, "artist@example.com")

		w := api.do(http.MethodPost, "/api/blog-posts", admin, `{"title":"","status":"Archived"}`)

		req.Equal(http.StatusBadRequest, w.Code)
		body := decode[ErrorResponse](t, w)
		req.Contains(body.Fields, "title")
		req.Contains(body.Fields, "content")
		req.Contains(body.Fields, "status")
		req.Empty(api.listPosts(t))
	})

	t.Run("should reject malformed json", func(t *testing.T) {
		req := require.New(t)
		api := newTestAPI(t)
		admin := api.token(t, auth.RoleAdmin, "artist@example.com")

		w := api.do(http.MethodPost, "/api/blog-posts", admin, `{"title":`)

		req.Equal(http.StatusBadRequest, w.Code)
	})

	t.Run("should render a single post", func(t *testing.T) {
		req := require.New(t)
		api := newTestAPI(t)
		admin := api.token(t, auth.RoleAdmin, "artist@example.com")
		created := decode[BlogPostView](t, api.do(http.MethodPost, "/api/blog-posts", admin, `{"title":"A","content":"**bold**"}`))

		w := api.do(http.MethodGet, "/api/blog-posts/"+created.ID.String(), "", "")

		req.Equal(http.StatusOK, w.Code)
		view := decode[BlogPostView](t, w)
		req.Equal("**bold**", view.Content)
		req.Contains(view.ContentHTML, "<strong>bold</strong>")
	})

	t.Run("should answer 400 and 404 for bad ids", func(t *testing.T) {
		req := require.New(t)
		api := newTestAPI(t)

		req.Equal(http.StatusBadRequest, api.do(http.MethodGet, "/api/blog-posts/42", "", "").Code)
		req.Equal(http.StatusNotFound, api.do(http.MethodGet, "/api/blog-posts/"+uuid.NewString(), "", "").Code)
	})

	t.Run("should update by body id and by path id", func(t *testing.T) {
		req := require.New(t)
		api := newTestAPI(t)
		admin := api.token(t, auth.RoleAdmin, "artist@example.com")
		created := decode[BlogPostView](t, api.do(http.MethodPost, "/api/blog-posts", admin, `{"title":"A","content":"B"}`))
		id := created.ID.String()

		w := api.do(http.MethodPut, "/api/blog-posts", admin, `{"id":"`+id+`","title":"C","content":"B"}`)
		req.Equal(http.StatusOK, w.Code, w.Body.String())
		updated := decode[BlogPostView](t, w)
		req.Equal("C", updated.Title)
		req.True(created.CreatedAt.Equal(updated.CreatedAt))

		w = api.do(http.MethodPut, "/api/blog-posts/"+id, admin, `{"title":"D","content":"B"}`)
		req.Equal(http.StatusOK, w.Code, w.Body.String())
		req.Equal("D", decode[BlogPostView](t, w).Title)

		w = api.do(http.MethodPut, "/api/blog-posts/"+id, admin, `{"id":"`+uuid.NewString()+`","title":"E","content":"B"}`)
		req.Equal(http.StatusBadRequest, w.Code)
	})

	t.Run("should answer 404 when updating an unknown post", func(t *testing.T) {
		req := require.New(t)
		api := newTestAPI(t)
		admin := api.token(t, auth.RoleAdmin, "artist@example.com")

		w := api.do(http.MethodPut, "/api/blog-posts", admin, `{"id":"`+uuid.NewString()+`","title":"C","content":"B"}`)

		req.Equal(http.StatusNotFound, w.Code)
	})

	t.Run("should delete by body id and by path id", func(t *testing.T) {
		req := require.New(t)
		api := newTestAPI(t)
		admin := api.token(t, auth.RoleAdmin, "artist@example.com")
		first := decode[BlogPostView](t, api.do(http.MethodPost, "/api/blog-posts", admin, `{"title":"first","content":"c"}`))
		second := decode[BlogPostView](t, api.do(http.MethodPost, "/api/blog-posts", admin, `{"title":"second","content":"c"}`))

		w := api.do(http.MethodDelete, "/api/blog-posts", admin, `{"id":"`+first.ID.String()+`"}`)
		req.Equal(http.StatusOK, w.Code, w.Body.String())
		deleted := decode[DeleteBlogPostResponse](t, w)
		req.Equal(first.ID, deleted.Post.ID)
		req.NotEmpty(deleted.Message)

		w = api.do(http.MethodDelete, "/api/blog-posts/"+second.ID.String(), admin, "")
		req.Equal(http.StatusOK, w.Code)

		req.Empty(api.listPosts(t))
		req.Equal(http.StatusNotFound, api.do(http.MethodDelete, "/api/blog-posts/"+second.ID.String(), admin, "").Code)
	})

	t.Run("should not delete without admin", func(t *testing.T) {
		req := require.New(t)
		api := newTestAPI(t)
		admin := api.token(t, auth.RoleAdmin, "artist@example.com")
		created := decode[BlogPostView](t, api.do(http.MethodPost, "/api/blog-posts", admin, `{"title":"A","content":"B"}`))

		req.Equal(http.StatusUnauthorized, api.do(http.MethodDelete, "/api/blog-posts/"+created.ID.String(), "", "").Code)
		req.Equal(http.StatusForbidden, api.do(http.MethodDelete, "/api/blog-posts/"+created.ID.String(), api.token(t, "member", "fan@example.com"), "").Code)
		req.Len(api.listPosts(t), 1)
	})

	t.Run("should reject bodies over the size cap", func(t *testing.T) {
		req := require.New(t)
		api := newTestAPI(t)
		admin := api.token(t, auth.RoleAdmin, "artist@example.com")
		content := strings.Repeat("x", 2<<20)

		w := api.do(http.MethodPost, "/api/blog-posts", admin, `{"title":"A","content":"`+content+`"}`)

		req.Equal(http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("should check the role before reading the body on every write", func(t *testing.T) {
		req := require.New(t)
		api := newTestAPI(t)
		member := api.token(t, "member", "fan@example.com")
		oversized := `{"title":"A","content":"` + strings.Repeat("x", 2<<20) + `"}`
		id := uuid.NewString()

		req.Equal(http.StatusUnauthorized, api.do(http.MethodPost, "/api/blog-posts", "", oversized).Code)
		req.Equal(http.StatusForbidden, api.do(http.MethodPost, "/api/blog-posts", member, oversized).Code)
		req.Equal(http.StatusForbidden, api.do(http.MethodPut, "/api/blog-posts/"+id, member, oversized).Code)
		req.Equal(http.StatusForbidden, api.do(http.MethodDelete, "/api/blog-posts", member, oversized).Code)
		req.Empty(api.listPosts(t))
	})
}

func TestAdminRoutes(t *testing.T) {
	t.Run("should require admin to grant admin", func(t *testing.T) {
		req := require.New(t)
		api := newTestAPI(t)
		member := api.token(t, "member", "fan@example.com")

		req.Equal(http.StatusUnauthorized, api.do(http.MethodPost, "/api/set-admin", "", `{"email":"fan@example.com"}`).Code)
		req.Equal(http.StatusForbidden, api.do(http.MethodPost, "/api/set-admin", member, `{"email":"fan@example.com"}`).Code)

		// the member is still not allowed to write
		req.Equal(http.StatusForbidden, api.do(http.MethodPost, "/api/blog-posts", member, `{"title":"A","content":"B"}`).Code)
	})

	t.Run("should let an admin promote another identity", func(t *testing.T) {
		req := require.New(t)
		api := newTestAPI(t)
		admin := api.token(t, auth.RoleAdmin, "artist@example.com")
		member := api.token(t, "member", "fan@example.com")

		w := api.do(http.MethodPost, "/api/set-admin", admin, `{"email":"fan@example.com"}`)
		req.Equal(http.StatusOK, w.Code, w.Body.String())
		req.Equal(auth.RoleAdmin, decode[SetAdminResponse](t, w).Identity.Role)

		w = api.do(http.MethodPost, "/api/blog-posts", member, `{"title":"A","content":"B"}`)
		req.Equal(http.StatusCreated, w.Code)
	})

	t.Run("should validate the email", func(t *testing.T) {
		req := require.New(t)
		api := newTestAPI(t)
		admin := api.token(t, auth.RoleAdmin, "artist@example.com")

		w := api.do(http.MethodPost, "/api/set-admin", admin, `{"email":"nope"}`)

		req.Equal(http.StatusBadRequest, w.Code)
		req.Contains(decode[ErrorResponse](t, w).Fields, "email")
	})

	t.Run("should return the caller identity", func(t *testing.T) {
		req := require.New(t)
		api := newTestAPI(t)
		admin := api.token(t, auth.RoleAdmin, "artist@example.com")

		req.Equal(http.StatusUnauthorized, api.do(http.MethodGet, "/api/me", "", "").Code)

		w := api.do(http.MethodGet, "/api/me", admin, "")
		req.Equal(http.StatusOK, w.Code)
		me := decode[auth.Identity](t, w)
		req.Equal("artist@example.com", me.Email)
		req.True(me.IsAdmin())
	})
}

func multipartBody(t *testing.T, field, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestUploadRoute(t *testing.T) {
	upload := func(api *testAPI, token string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/uploads/images", body)
		r.Header.Set("Content-Type", contentType)
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		api.router.ServeHTTP(w, r)
		return w
	}

	t.Run("should store images for admins", func(t *testing.T) {
		req := require.New(t)
		api := newTestAPI(t)
		body, contentType := multipartBody(t, "file", "cover.png", []byte("\x89PNG\r\n\x1a\n"))

		w := upload(api, api.token(t, auth.RoleAdmin, "artist@example.com"), body, contentType)

		req.Equal(http.StatusCreated, w.Code, w.Body.String())
		req.Equal("https://cdn.example.com/blog-images/cover.png", decode[services.StoredImage](t, w).URL)
		req.Equal([]string{"cover.png"}, api.images.names)
	})

	t.Run("should reject non images", func(t *testing.T) {
		req := require.New(t)
		api := newTestAPI(t)
		body, contentType := multipartBody(t, "file", "notes.txt", []byte("hello"))

		w := upload(api, api.token(t, auth.RoleAdmin, "artist@example.com"), body, contentType)

		req.Equal(http.StatusUnsupportedMediaType, w.Code)
	})

	t.Run("should require the file field", func(t *testing.T) {
		req := require.New(t)
		api := newTestAPI(t)
		body, contentType := multipartBody(t, "other", "cover.png", []byte("\x89PNG"))

		w := upload(api, api.token(t, auth.RoleAdmin, "artist@example.com"), body, contentType)

		req.Equal(http.StatusBadRequest, w.Code)
	})

	t.Run("should require admin", func(t *testing.T) {
		req := require.New(t)
		api := newTestAPI(t)
		body, contentType := multipartBody(t, "file", "cover.png", []byte("\x89PNG"))

		w := upload(api, api.token(t, "member", "fan@example.com"), body, contentType)

		req.Equal(http.StatusForbidden, w.Code)
		req.Empty(api.images.names)
	})
}

func TestContactRoute(t *testing.T) {
	t.Run("should forward valid messages", func(t *testing.T) {
		req := require.New(t)
		api := newTestAPI(t)

		w := api.do(http.MethodPost, "/api/contact", "", `{"name":"Ada","email":"ada@example.com","message":"Hello"}`)

		req.Equal(http.StatusAccepted, w.Code)
		req.Len(api.mailer.sent, 1)
		req.Equal("Ada", api.mailer.sent[0].Name)
	})

	t.Run("should not send invalid messages", func(t *testing.T) {
		req := require.New(t)
		api := newTestAPI(t)

		w := api.do(http.MethodPost, "/api/contact", "", `{"name":"Ada"}`)

		req.Equal(http.StatusBadRequest, w.Code)
		req.Empty(api.mailer.sent)
	})

	t.Run("should answer 503 without a mailer", func(t *testing.T) {
		req := require.New(t)
		router := newRouter(Dependencies{}, withStartupTime(time.Now()))
		r := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{"name":"Ada","email":"ada@example.com","message":"Hello"}`))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, r)

		req.Equal(http.StatusServiceUnavailable, w.Code)
	})
}

func TestHealthAndCORS(t *testing.T) {
	t.Run("should report health", func(t *testing.T) {
		req := require.New(t)
		api := newTestAPI(t)

		w := api.do(http.MethodGet, "/healthz", "", "")

		req.Equal(http.StatusOK, w.Code)
		req.Equal("ok", decode[HealthResponse](t, w).Status)
	})

	t.Run("should answer preflights from allowed origins", func(t *testing.T) {
		req := require.New(t)
		api := newTestAPI(t)
		r := httptest.NewRequest(http.MethodOptions, "/api/blog-posts", nil)
		r.Header.Set("Origin", "https://site.example.com")
		r.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()

		api.router.ServeHTTP(w, r)

		req.Equal("https://site.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("should block preflights from other origins", func(t *testing.T) {
		req := require.New(t)
		api := newTestAPI(t)
		r := httptest.NewRequest(http.MethodOptions, "/api/blog-posts", nil)
		r.Header.Set("Origin", "https://evil.example.com")
		r.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()

		api.router.ServeHTTP(w, r)

		req.Equal(http.StatusForbidden, w.Code)
		req.Empty(w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestResponderHidesUnexpectedErrors(t *testing.T) {
	req := require.New(t)
	w := httptest.NewRecorder()

	NewResponder(zerolog.Nop()).WriteError(w, io.ErrUnexpectedEOF)

	req.Equal(http.StatusInternalServerError, w.Code)
	body := decode[ErrorResponse](t, w)
	req.Equal("Internal Server Error", body.Error)
	req.Empty(body.Details)
}
