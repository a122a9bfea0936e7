// Package github is a minimal GitHub REST v3 client covering the
// operations chronogit needs: token validation, repository lookup,
// creation, and deletion. API failures carry recovery steps so the CLI
// can tell the user what to fix.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.github.com"

const userAgent = "chronogit/1.0"

// Client talks to the GitHub REST API on behalf of one user.
type Client struct {
	httpClient *http.Client
	baseURL    string
	username   string
	token      string
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root, such as a
// GitHub Enterprise instance or a test server.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithTimeout overrides the default 30 second request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger attaches a logger for request-level debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a client authenticated as username with token.
func NewClient(username, token string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		username:   username,
		token:      token,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// User is the authenticated user's profile.
type User struct {
	Login       string `json:"login"`
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
}

// Repository is a GitHub repository as returned by the API.
type Repository struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Description   string `json:"description"`
	Private       bool   `json:"private"`
	HTMLURL       string `json:"html_url"`
	CloneURL      string `json:"clone_url"`
	SSHURL        string `json:"ssh_url"`
	DefaultBranch string `json:"default_branch"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// Branch is one branch of a repository.
type Branch struct {
	Name      string `json:"name"`
	Protected bool   `json:"protected"`
	Commit    struct {
		SHA string `json:"sha"`
		URL string `json:"url"`
	} `json:"commit"`
}

// CreateRepositoryRequest is the payload for repository creation.
type CreateRepositoryRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Private       bool   `json:"private"`
	AutoInit      bool   `json:"auto_init"`
	DefaultBranch string `json:"default_branch,omitempty"`
}

// TokenInfo reports the result of validating a token.
type TokenInfo struct {
	Valid              bool
	Scopes             []string
	User               *User
	RateLimitRemaining int
}

// ValidateToken checks the token against /user and reports its scopes
// and remaining rate limit. An invalid token is not an error; it yields
// TokenInfo with Valid false.
func (c *Client) ValidateToken(ctx context.Context) (*TokenInfo, error) {
	resp, err := c.do(ctx, http.MethodGet, "/user", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	info := &TokenInfo{
		Scopes:             parseScopes(resp.Header.Get("X-OAuth-Scopes")),
		RateLimitRemaining: -1,
	}
	if v, err := strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining")); err == nil {
		info.RateLimitRemaining = v
	}

	if resp.StatusCode == http.StatusOK {
		var user User
		if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
			return nil, fmt.Errorf("failed to parse user response: %w", err)
		}
		info.Valid = true
		info.User = &user
	}
	return info, nil
}

// GetUser returns the authenticated user, failing if the token is
// invalid.
func (c *Client) GetUser(ctx context.Context) (*User, error) {
	info, err := c.ValidateToken(ctx)
	if err != nil {
		return nil, err
	}
	if !info.Valid || info.User == nil {
		return nil, &APIError{
			StatusCode: http.StatusUnauthorized,
			Message:    "GitHub token validation failed",
			Recovery:   recoveryInvalidToken,
		}
	}
	return info.User, nil
}

// CheckPermissions validates the token and verifies it carries the repo
// scope. Fine-grained tokens report no classic scopes, so an empty
// scope list is accepted.
func (c *Client) CheckPermissions(ctx context.Context) ([]string, error) {
	info, err := c.ValidateToken(ctx)
	if err != nil {
		return nil, err
	}
	if !info.Valid {
		return nil, &APIError{
			StatusCode: http.StatusUnauthorized,
			Message:    "GitHub token validation failed",
			Recovery:   recoveryInvalidToken,
		}
	}
	if len(info.Scopes) > 0 && !hasScope(info.Scopes, "repo") {
		return nil, &APIError{
			StatusCode: http.StatusForbidden,
			Message:    "token is missing the repo scope",
			Recovery:   recoveryMissingScope,
		}
	}
	return info.Scopes, nil
}

// RepositoryExists reports whether username/name exists and is visible
// to the token.
func (c *Client) RepositoryExists(ctx context.Context, name string) (bool, error) {
	resp, err := c.do(ctx, http.MethodGet, "/repos/"+c.username+"/"+name, nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, c.apiError(resp, "check repository "+name)
	}
}

// GetRepository fetches username/name.
func (c *Client) GetRepository(ctx context.Context, name string) (*Repository, error) {
	resp, err := c.do(ctx, http.MethodGet, "/repos/"+c.username+"/"+name, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError(resp, "get repository "+name)
	}
	var repo Repository
	if err := json.NewDecoder(resp.Body).Decode(&repo); err != nil {
		return nil, fmt.Errorf("failed to parse repository response: %w", err)
	}
	return &repo, nil
}

// CreateRepository creates a repository for the authenticated user.
func (c *Client) CreateRepository(ctx context.Context, req CreateRepositoryRequest) (*Repository, error) {
	resp, err := c.do(ctx, http.MethodPost, "/user/repos", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, c.apiError(resp, "create repository "+req.Name)
	}
	var repo Repository
	if err := json.NewDecoder(resp.Body).Decode(&repo); err != nil {
		return nil, fmt.Errorf("failed to parse repository response: %w", err)
	}
	c.logger.Info("created repository", zap.String("repo", repo.FullName))
	return &repo, nil
}

// CreateRepositoryWithDefaults creates an auto-initialized repository
// with main as the default branch.
func (c *Client) CreateRepositoryWithDefaults(ctx context.Context, name, description string, private bool) (*Repository, error) {
	return c.CreateRepository(ctx, CreateRepositoryRequest{
		Name:          name,
		Description:   description,
		Private:       private,
		AutoInit:      true,
		DefaultBranch: "main",
	})
}

// ListBranches lists the branches of username/name.
func (c *Client) ListBranches(ctx context.Context, name string) ([]Branch, error) {
	resp, err := c.do(ctx, http.MethodGet, "/repos/"+c.username+"/"+name+"/branches", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError(resp, "list branches of "+name)
	}
	var branches []Branch
	if err := json.NewDecoder(resp.Body).Decode(&branches); err != nil {
		return nil, fmt.Errorf("failed to parse branches response: %w", err)
	}
	return branches, nil
}

// DeleteRepository permanently deletes username/name.
func (c *Client) DeleteRepository(ctx context.Context, name string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/repos/"+c.username+"/"+name, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return c.apiError(resp, "delete repository "+name)
	}
	c.logger.Warn("deleted repository", zap.String("repo", c.username+"/"+name))
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("github api request", zap.String("method", method), zap.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github api request failed: %w", err)
	}
	return resp, nil
}

func parseScopes(header string) []string {
	if strings.TrimSpace(header) == "" {
		return nil
	}
	parts := strings.Split(header, ",")
	scopes := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

func hasScope(scopes []string, want string) bool {
	for _, s := range scopes {
		if s == want {
			return true
		}
	}
	return false
}
