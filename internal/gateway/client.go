// Package gateway is the typed HTTP client of the portal API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/harrylevesque/schoolportal/internal/auth"
	"github.com/harrylevesque/schoolportal/internal/models"
)

// Config holds client configuration.
type Config struct {
	BaseURL string
	// ProbeTimeout bounds Probe.
	ProbeTimeout time.Duration
	// RequestTimeout bounds every other call; 0 leaves them unbounded.
	RequestTimeout time.Duration
	Token          string
}

// DefaultConfig returns the defaults used by the CLI.
func DefaultConfig() Config {
	return Config{
		BaseURL:        "http://localhost:3000",
		ProbeTimeout:   3 * time.Second,
		RequestTimeout: 10 * time.Second,
	}
}

// Client talks to the portal API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cfg        Config
}

func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
		cfg:        cfg,
	}
}

// BaseURL returns the server root, without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// SetToken sets the bearer token sent with every request.
func (c *Client) SetToken(token string) { c.cfg.Token = token }

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status   int
	Message  string
	TipoErro string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

type envelope struct {
	Success  bool            `json:"success"`
	Data     json.RawMessage `json:"data"`
	Message  string          `json:"message"`
	Error    string          `json:"error"`
	Usuario  *models.User    `json:"usuario"`
	TipoErro string          `json:"tipo_erro"`
	Token    string          `json:"token"`
}

// Probe reports whether the API answers GET /api/content/config with 2xx
// within ProbeTimeout.
func (c *Client) Probe(ctx context.Context) bool {
	if c.cfg.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.ProbeTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/content/config", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// doRequest sends body as JSON and decodes the envelope. Non-2xx answers
// become *APIError.
func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*envelope, error) {
	if c.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()
	}

	req, err := c.createRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if decodeErr == nil {
			if env.Message != "" {
				apiErr.Message = env.Message
			} else if env.Error != "" {
				apiErr.Message = env.Error
			}
			apiErr.TipoErro = env.TipoErro
		}
		return &env, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decoding response: %w", decodeErr)
	}
	return &env, nil
}

func (c *Client) createRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	return req, nil
}

// getData fetches path and decodes the envelope's data into out.
func (c *Client) getData(ctx context.Context, path string, out any) error {
	env, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return decodeData(env, out)
}

func decodeData(env *envelope, out any) error {
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decoding data: %w", err)
	}
	return nil
}

// Content

func (c *Client) Texts(ctx context.Context) (models.SiteTexts, error) {
	var v models.SiteTexts
	err := c.getData(ctx, "/api/content/texts", &v)
	return v, err
}

func (c *Client) SchoolInfo(ctx context.Context) (models.SchoolInfo, error) {
	var v models.SchoolInfo
	err := c.getData(ctx, "/api/content/school-info", &v)
	return v, err
}

func (c *Client) Courses(ctx context.Context) (models.CourseCatalog, error) {
	var v models.CourseCatalog
	err := c.getData(ctx, "/api/content/courses", &v)
	return v, err
}

func (c *Client) Config(ctx context.Context) (models.SiteConfig, error) {
	var v models.SiteConfig
	err := c.getData(ctx, "/api/content/config", &v)
	return v, err
}

func (c *Client) Images(ctx context.Context) ([]models.Asset, error) {
	var v []models.Asset
	err := c.getData(ctx, "/api/assets/images", &v)
	return v, err
}

func (c *Client) Videos(ctx context.Context) ([]models.Asset, error) {
	var v []models.Asset
	err := c.getData(ctx, "/api/assets/videos", &v)
	return v, err
}

func (c *Client) LogoURL() string { return c.baseURL + "/api/assets/logo" }

func (c *Client) ImageURL(filename string) string {
	return c.baseURL + "/api/assets/images/" + url.PathEscape(filename)
}

func (c *Client) VideoURL(filename string) string {
	return c.baseURL + "/api/assets/videos/" + url.PathEscape(filename)
}

// LoadSiteBundle fetches texts, school info, courses and config concurrently.
// If any fetch fails the bundle is nil and the first error is returned.
func (c *Client) LoadSiteBundle(ctx context.Context) (*models.ContentBundle, error) {
	var b models.ContentBundle
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		b.Texts, err = c.Texts(gctx)
		return err
	})
	g.Go(func() (err error) {
		b.SchoolInfo, err = c.SchoolInfo(gctx)
		return err
	})
	g.Go(func() (err error) {
		b.Courses, err = c.Courses(gctx)
		return err
	})
	g.Go(func() (err error) {
		b.Config, err = c.Config(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Courses

func (c *Client) ListCourses(ctx context.Context) ([]models.Course, error) {
	cat, err := c.Courses(ctx)
	return cat.Courses, err
}

func (c *Client) CreateCourse(ctx context.Context, p models.CoursePatch) (models.Course, error) {
	var out models.Course
	env, err := c.doRequest(ctx, http.MethodPost, "/api/content/courses", p)
	if err != nil {
		return out, err
	}
	err = decodeData(env, &out)
	return out, err
}

func (c *Client) UpdateCourse(ctx context.Context, id models.CourseID, p models.CoursePatch) (models.Course, error) {
	var out models.Course
	env, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/api/content/courses/%d", id), p)
	if err != nil {
		return out, err
	}
	err = decodeData(env, &out)
	return out, err
}

func (c *Client) DeleteCourse(ctx context.Context, id models.CourseID) (models.Course, error) {
	var out models.Course
	env, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/content/courses/%d", id), nil)
	if err != nil {
		return out, err
	}
	err = decodeData(env, &out)
	return out, err
}

// Auth

// LoginResult is a credential check answered by the API.
type LoginResult struct {
	auth.Result
	Token string
}

// Login posts the credentials. Rejections carrying a tipo_erro are returned as
// a Result, not as an error.
func (c *Client) Login(ctx context.Context, usuario, senha string) (LoginResult, error) {
	env, err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", map[string]string{"usuario": usuario, "senha": senha})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.TipoErro != "" {
			return LoginResult{Result: auth.Result{Outcome: auth.Outcome(apiErr.TipoErro)}}, nil
		}
		return LoginResult{}, err
	}
	if !env.Success || env.Usuario == nil {
		return LoginResult{}, errors.New("unexpected login response")
	}
	u := env.Usuario.WithoutSecret()
	return LoginResult{Result: auth.Result{Outcome: auth.OutcomeSuccess, User: &u}, Token: env.Token}, nil
}

// Users

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var v []models.User
	err := c.getData(ctx, "/api/users", &v)
	return v, err
}

func (c *Client) GetUser(ctx context.Context, id string) (models.User, error) {
	var v models.User
	err := c.getData(ctx, "/api/users/"+url.PathEscape(id), &v)
	return v, err
}

// NewUser is the create-user payload.
type NewUser struct {
	Name     string      `json:"nome"`
	Username string      `json:"usuario"`
	Email    string      `json:"email"`
	Secret   string      `json:"senha"`
	Role     models.Role `json:"tipo,omitempty"`
}

func (c *Client) CreateUser(ctx context.Context, in NewUser) (models.User, error) {
	var out models.User
	env, err := c.doRequest(ctx, http.MethodPost, "/api/users", in)
	if err != nil {
		return out, err
	}
	err = decodeData(env, &out)
	return out, err
}

// DeleteUser removes a user and returns the removed id, name and username.
func (c *Client) DeleteUser(ctx context.Context, id string) (models.User, error) {
	var out models.User
	env, err := c.doRequest(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(id), nil)
	if err != nil {
		return out, err
	}
	err = decodeData(env, &out)
	return out, err
}

func (c *Client) ChangePassword(ctx context.Context, id, secret string) error {
	_, err := c.doRequest(ctx, http.MethodPut, "/api/users/"+url.PathEscape(id)+"/password", map[string]string{"novaSenha": secret})
	return err
}

// SendContact submits the contact form.
func (c *Client) SendContact(ctx context.Context, name, email, message string) error {
	_, err := c.doRequest(ctx, http.MethodPost, "/api/contact", map[string]string{
		"nome":     name,
		"email":    email,
		"mensagem": message,
	})
	return err
}
