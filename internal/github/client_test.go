package github

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient("octocat", "tok123", WithBaseURL(server.URL))
}

// =============================================================================
// Token Validation Tests
// =============================================================================

func TestValidateTokenSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user", r.URL.Path)
		assert.Equal(t, "token tok123", r.Header.Get("Authorization"))

		w.Header().Set("X-OAuth-Scopes", "repo, read:org")
		w.Header().Set("X-RateLimit-Remaining", "4999")
		json.NewEncoder(w).Encode(User{Login: "octocat", ID: 1})
	})

	info, err := client.ValidateToken(context.Background())
	require.NoError(t, err)
	assert.True(t, info.Valid)
	assert.Equal(t, []string{"repo", "read:org"}, info.Scopes)
	assert.Equal(t, 4999, info.RateLimitRemaining)
	require.NotNil(t, info.User)
	assert.Equal(t, "octocat", info.User.Login)
}

func TestValidateTokenRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	info, err := client.ValidateToken(context.Background())
	require.NoError(t, err, "invalid token is a result, not an error")
	assert.False(t, info.Valid)
	assert.Nil(t, info.User)
}

func TestGetUserWithInvalidToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.GetUser(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.NotEmpty(t, apiErr.Recovery)
}

func TestCheckPermissionsMissingScope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-OAuth-Scopes", "gist")
		json.NewEncoder(w).Encode(User{Login: "octocat"})
	})

	_, err := client.CheckPermissions(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

func TestCheckPermissionsFineGrainedToken(t *testing.T) {
	// Fine-grained tokens return no X-OAuth-Scopes header at all.
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(User{Login: "octocat"})
	})

	scopes, err := client.CheckPermissions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, scopes)
}

// =============================================================================
// Repository Lookup Tests
// =============================================================================

func TestRepositoryExists(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/repos/octocat/exists" {
			json.NewEncoder(w).Encode(Repository{Name: "exists"})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	exists, err := client.RepositoryExists(context.Background(), "exists")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = client.RepositoryExists(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepositoryExistsAuthFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Bad credentials"})
	})

	_, err := client.RepositoryExists(context.Background(), "repo")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "Bad credentials")
	assert.False(t, apiErr.Retryable())
}

func TestGetRepository(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octocat/hello-world", r.URL.Path)
		json.NewEncoder(w).Encode(Repository{
			Name:          "hello-world",
			FullName:      "octocat/hello-world",
			DefaultBranch: "main",
			CloneURL:      "https://github.com/octocat/hello-world.git",
		})
	})

	repo, err := client.GetRepository(context.Background(), "hello-world")
	require.NoError(t, err)
	assert.Equal(t, "octocat/hello-world", repo.FullName)
	assert.Equal(t, "main", repo.DefaultBranch)
}

// =============================================================================
// Repository Creation Tests
// =============================================================================

func TestCreateRepository(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/user/repos", r.URL.Path)

		var req CreateRepositoryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "time-travel", req.Name)
		assert.True(t, req.AutoInit)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Repository{Name: req.Name, FullName: "octocat/" + req.Name})
	})

	repo, err := client.CreateRepositoryWithDefaults(context.Background(), "time-travel", "history", false)
	require.NoError(t, err)
	assert.Equal(t, "octocat/time-travel", repo.FullName)
}

func TestCreateRepositoryConflict(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"message": "name already exists on this account"})
	})

	_, err := client.CreateRepository(context.Background(), CreateRepositoryRequest{Name: "dupe"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.NotEmpty(t, apiErr.Recovery)
}

func TestCreateRepositoryRateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.CreateRepository(context.Background(), CreateRepositoryRequest{Name: "x"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.Retryable())
}

// =============================================================================
// Branch and Deletion Tests
// =============================================================================

func TestListBranches(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octocat/hello-world/branches", r.URL.Path)
		json.NewEncoder(w).Encode([]Branch{
			{Name: "main", Protected: true},
			{Name: "develop"},
		})
	})

	branches, err := client.ListBranches(context.Background(), "hello-world")
	require.NoError(t, err)
	require.Len(t, branches, 2)
	assert.Equal(t, "main", branches[0].Name)
	assert.True(t, branches[0].Protected)
}

func TestDeleteRepository(t *testing.T) {
	var deleted bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/repos/octocat/old-repo", r.URL.Path)
		deleted = true
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteRepository(context.Background(), "old-repo"))
	assert.True(t, deleted)
}

func TestDeleteRepositoryForbidden(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"message": "Must have admin rights"})
	})

	err := client.DeleteRepository(context.Background(), "protected")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "admin rights")
}
