package github

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// APIError is a failed GitHub API call. Recovery holds user-facing
// steps to resolve the error.
type APIError struct {
	StatusCode int
	Message    string
	DocsURL    string
	Recovery   []string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github api: %s (HTTP %d)", e.Message, e.StatusCode)
}

// Retryable reports whether retrying the call later may succeed.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

var (
	recoveryInvalidToken = []string{
		"Check that your GitHub token is correct and has not expired",
		"Generate a new token at https://github.com/settings/tokens",
		"Set it via the CHRONOGIT_TOKEN environment variable or the config file",
	}
	recoveryMissingScope = []string{
		"Regenerate your token with the 'repo' scope enabled",
		"Fine-grained tokens need read and write access to repository contents",
	}
	recoveryForbidden = []string{
		"Check that the token owner has access to this repository",
		"Organization repositories may require SSO authorization for the token",
	}
	recoveryRateLimited = []string{
		"Wait for the rate limit window to reset and retry",
		"Authenticated requests get a higher rate limit than anonymous ones",
	}
	recoveryConflict = []string{
		"Pick a different repository name, or reuse the existing repository",
	}
	recoveryServerError = []string{
		"GitHub may be having an incident, check https://www.githubstatus.com",
		"Retry in a few minutes",
	}
)

// apiError turns a non-success response into an *APIError with recovery
// steps appropriate to the status code.
func (c *Client) apiError(resp *http.Response, operation string) error {
	var body struct {
		Message string `json:"message"`
		DocsURL string `json:"documentation_url"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = json.Unmarshal(raw, &body)

	message := body.Message
	if message == "" {
		message = strings.TrimSpace(string(raw))
	}
	if message == "" {
		message = resp.Status
	}

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("%s: %s", operation, message),
		DocsURL:    body.DocsURL,
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		apiErr.Recovery = recoveryInvalidToken
	case resp.StatusCode == http.StatusForbidden:
		apiErr.Recovery = recoveryForbidden
	case resp.StatusCode == http.StatusUnprocessableEntity:
		apiErr.Recovery = recoveryConflict
	case resp.StatusCode == http.StatusTooManyRequests:
		apiErr.Recovery = recoveryRateLimited
	case resp.StatusCode >= 500:
		apiErr.Recovery = recoveryServerError
	}
	return apiErr
}
