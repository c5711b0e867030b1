// Package client talks to the blog API on behalf of the admin tooling.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-blog-backend/auth"
	"github.com/rpupo63/portfolio-blog-backend/models"
)

// Post is a blog post as the API returns it.
type Post struct {
	models.BlogPost
	Excerpt     string `json:"excerpt"`
	ContentHTML string `json:"contentHtml,omitempty"`
}

// Image is the result of an upload.
type Image struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int               `json:"-"`
	Message    string            `json:"error"`
	Details    string            `json:"details"`
	Fields     map[string]string `json:"fields"`
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithHTTPClient replaces the transport, mostly for tests.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	c.httpClient = httpClient
	return c
}

func (c *Client) ListPosts(ctx context.Context) ([]Post, error) {
	var posts []Post
	err := c.doJSON(ctx, http.MethodGet, "/api/blog-posts", nil, &posts)
	return posts, err
}

func (c *Client) GetPost(ctx context.Context, id uuid.UUID) (*Post, error) {
	var post Post
	if err := c.doJSON(ctx, http.MethodGet, "/api/blog-posts/"+id.String(), nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) CreatePost(ctx context.Context, fields models.BlogPostFields) (*Post, error) {
	var post Post
	if err := c.doJSON(ctx, http.MethodPost, "/api/blog-posts", fields, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) UpdatePost(ctx context.Context, id uuid.UUID, fields models.BlogPostFields) (*Post, error) {
	var post Post
	if err := c.doJSON(ctx, http.MethodPut, "/api/blog-posts/"+id.String(), fields, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) DeletePost(ctx context.Context, id uuid.UUID) (*Post, error) {
	var resp struct {
		Message string `json:"message"`
		Post    Post   `json:"post"`
	}
	if err := c.doJSON(ctx, http.MethodDelete, "/api/blog-posts/"+id.String(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Post, nil
}

// Me returns the identity the client's token resolves to.
func (c *Client) Me(ctx context.Context) (*auth.Identity, error) {
	var identity auth.Identity
	if err := c.doJSON(ctx, http.MethodGet, "/api/me", nil, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

func (c *Client) SetAdmin(ctx context.Context, email string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/set-admin", map[string]string{"email": email}, nil)
}

func (c *Client) UploadImage(ctx context.Context, name string, body io.Reader) (*Image, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, body); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/uploads/images", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var image Image
	if err := c.do(req, &image); err != nil {
		return nil, err
	}
	return &image, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if json.Unmarshal(data, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
