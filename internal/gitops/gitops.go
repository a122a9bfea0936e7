// Package gitops performs the repository-side work of time travel:
// cloning or initializing a workspace, creating commits with backdated
// author and committer timestamps, and pushing the result. Timestamps
// are injected through GIT_AUTHOR_DATE and GIT_COMMITTER_DATE so the
// system git produces exactly the dates the generator computed.
package gitops

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"chronogit/internal/gitctx"
)

// Credentials authenticate https clones and pushes.
type Credentials struct {
	Username string
	Token    string
}

// CommitSpec describes one backdated commit.
type CommitSpec struct {
	Timestamp time.Time
	Author    gitctx.Identity
	Committer gitctx.Identity
	Message   string
	Files     []string
}

// CommitResult reports a created commit.
type CommitResult struct {
	CommitID  string
	Timestamp time.Time
	Files     []string
	Message   string
}

// CloneSpec describes a repository to clone into the workspace.
type CloneSpec struct {
	URL         string
	Branch      string
	Credentials *Credentials
}

// Repository is a local working copy managed by Operations.
type Repository struct {
	Path   string
	Branch string
	Head   string
}

// Operations runs git against a temporary workspace. Close removes the
// workspace and everything cloned into it.
type Operations struct {
	workspace string
	logger    *zap.Logger
}

// New creates an Operations with a fresh temporary workspace.
func New(logger *zap.Logger) (*Operations, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	workspace, err := os.MkdirTemp("", "chronogit-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return &Operations{workspace: workspace, logger: logger}, nil
}

// Workspace returns the temporary directory holding cloned repositories.
func (o *Operations) Workspace() string {
	return o.workspace
}

// Close removes the temporary workspace.
func (o *Operations) Close() error {
	if o.workspace == "" {
		return nil
	}
	err := os.RemoveAll(o.workspace)
	o.workspace = ""
	return err
}

// Clone clones the repository described by spec into the workspace.
func (o *Operations) Clone(ctx context.Context, spec CloneSpec) (*Repository, error) {
	name, err := RepoNameFromURL(spec.URL)
	if err != nil {
		return nil, err
	}
	local := filepath.Join(o.workspace, name)

	url := spec.URL
	if spec.Credentials != nil {
		url = AuthenticatedURL(spec.URL, spec.Credentials)
	}

	args := []string{"clone"}
	if spec.Branch != "" {
		args = append(args, "--branch", spec.Branch)
	}
	args = append(args, url, local)

	o.logger.Debug("cloning repository",
		zap.String("url", spec.URL),
		zap.String("branch", spec.Branch),
		zap.String("path", local))

	if out, err := o.run(ctx, "", args...); err != nil {
		return nil, classifyCloneError(err, out)
	}

	repo := &Repository{Path: local}
	if branch, err := o.run(ctx, local, "rev-parse", "--abbrev-ref", "HEAD"); err == nil {
		repo.Branch = strings.TrimSpace(branch)
	}
	if head, err := o.run(ctx, local, "rev-parse", "HEAD"); err == nil {
		repo.Head = strings.TrimSpace(head)
	}
	return repo, nil
}

// Init creates a new empty repository in the workspace.
func (o *Operations) Init(ctx context.Context, name, branch string) (*Repository, error) {
	if branch == "" {
		branch = "main"
	}
	local := filepath.Join(o.workspace, name)
	if err := os.MkdirAll(local, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create repository directory: %w", err)
	}
	if _, err := o.run(ctx, local, "init", "--initial-branch", branch); err != nil {
		return nil, fmt.Errorf("git init failed: %w", err)
	}
	return &Repository{Path: local, Branch: branch}, nil
}

// Open wraps an existing local repository.
func (o *Operations) Open(ctx context.Context, path string) (*Repository, error) {
	out, err := o.run(ctx, path, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %s", path)
	}
	repo := &Repository{Path: strings.TrimSpace(out)}
	if branch, err := o.run(ctx, repo.Path, "rev-parse", "--abbrev-ref", "HEAD"); err == nil {
		repo.Branch = strings.TrimSpace(branch)
	}
	return repo, nil
}

// WriteFile creates a file (and any parent directories) inside the
// repository working tree.
func (o *Operations) WriteFile(repo *Repository, relPath, content string) error {
	full := filepath.Join(repo.Path, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directories: %w", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", relPath, err)
	}
	return nil
}

// Commit stages the listed files and creates a commit whose author and
// committer dates are the given timestamp. The timestamp must be UTC.
func (o *Operations) Commit(ctx context.Context, repo *Repository, spec CommitSpec) (*CommitResult, error) {
	if len(spec.Files) == 0 {
		return nil, fmt.Errorf("commit needs at least one file")
	}

	addArgs := append([]string{"add", "--"}, spec.Files...)
	if _, err := o.run(ctx, repo.Path, addArgs...); err != nil {
		return nil, fmt.Errorf("git add failed: %w", err)
	}

	stamp := spec.Timestamp.UTC().Format(time.RFC3339)
	cmd := exec.CommandContext(ctx, "git",
		"-c", "user.name="+spec.Committer.Name,
		"-c", "user.email="+spec.Committer.Email,
		"commit",
		"--author", spec.Author.String(),
		"--date", stamp,
		"-m", spec.Message,
	)
	cmd.Dir = repo.Path
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_DATE="+stamp,
		"GIT_COMMITTER_DATE="+stamp,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("git commit failed: %w\n%s", err, out)
	}

	head, err := o.run(ctx, repo.Path, "rev-parse", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("failed to read new commit id: %w", err)
	}
	repo.Head = strings.TrimSpace(head)

	o.logger.Debug("created backdated commit",
		zap.String("commit", repo.Head),
		zap.Time("timestamp", spec.Timestamp))

	return &CommitResult{
		CommitID:  repo.Head,
		Timestamp: spec.Timestamp,
		Files:     spec.Files,
		Message:   spec.Message,
	}, nil
}

// Push pushes branch to the named remote.
func (o *Operations) Push(ctx context.Context, repo *Repository, remote, branch string, creds *Credentials, force bool) error {
	args := []string{"push"}
	if force {
		args = append(args, "--force")
	}
	target := remote
	if creds != nil {
		if url, err := o.run(ctx, repo.Path, "remote", "get-url", remote); err == nil {
			target = AuthenticatedURL(strings.TrimSpace(url), creds)
		}
	}
	args = append(args, target, fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))

	out, err := o.run(ctx, repo.Path, args...)
	if err != nil {
		return classifyPushError(err, out)
	}
	return nil
}

// AddRemote configures a remote on the repository, replacing any
// existing remote of the same name.
func (o *Operations) AddRemote(ctx context.Context, repo *Repository, name, url string) error {
	o.run(ctx, repo.Path, "remote", "remove", name) //nolint:errcheck
	if _, err := o.run(ctx, repo.Path, "remote", "add", name, url); err != nil {
		return fmt.Errorf("failed to add remote %s: %w", name, err)
	}
	return nil
}

func (o *Operations) run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return string(out), nil
}

// GenerateContent produces the markdown file body for a time travel
// commit at the given timestamp.
func GenerateContent(year int, repoName string) string {
	return fmt.Sprintf(`# Time Travel Commit for %d

This file was created to show activity in the year %d on my GitHub profile.

Repository: %s
Generated: %s

## About Time Travel Commits

This commit was backdated to create historical activity on GitHub.
The actual creation time may differ from the commit timestamp.
`, year, year, repoName, time.Now().UTC().Format("2006-01-02 15:04:05 UTC"))
}

// FileNameForTimestamp names the file carrying one backdated commit.
// Timestamps within the same repository never collide because the
// generator spreads them across distinct days and hours.
func FileNameForTimestamp(ts time.Time) string {
	return fmt.Sprintf("timetravel-%s.md", ts.UTC().Format("2006-01-02-15"))
}

// RepoNameFromURL extracts the repository name from a clone URL.
func RepoNameFromURL(url string) (string, error) {
	trimmed := strings.TrimSuffix(strings.TrimRight(strings.TrimSpace(url), "/"), ".git")
	trimmed = strings.TrimSuffix(trimmed, "/")
	idx := strings.LastIndexAny(trimmed, "/:")
	name := trimmed
	if idx >= 0 {
		name = trimmed[idx+1:]
	}
	if name == "" {
		return "", fmt.Errorf("invalid repository URL: %s", url)
	}
	return name, nil
}

// AuthenticatedURL embeds basic-auth credentials into an https clone
// URL. Non-https URLs are returned unchanged.
func AuthenticatedURL(url string, creds *Credentials) string {
	if creds == nil || !strings.HasPrefix(url, "https://") {
		return url
	}
	return "https://" + creds.Username + ":" + creds.Token + "@" + strings.TrimPrefix(url, "https://")
}

func classifyCloneError(err error, out string) error {
	lower := strings.ToLower(out)
	switch {
	case strings.Contains(lower, "authentication") || strings.Contains(lower, "401"):
		return fmt.Errorf("clone failed: authentication failed, check your GitHub token: %w", err)
	case strings.Contains(lower, "not found") || strings.Contains(lower, "404"):
		return fmt.Errorf("clone failed: repository not found, check the URL and permissions: %w", err)
	case strings.Contains(lower, "could not resolve") || strings.Contains(lower, "timed out"):
		return fmt.Errorf("clone failed: network error, check your internet connection: %w", err)
	default:
		return fmt.Errorf("clone failed: %w\n%s", err, strings.TrimSpace(out))
	}
}

func classifyPushError(err error, out string) error {
	lower := strings.ToLower(out)
	switch {
	case strings.Contains(lower, "authentication") || strings.Contains(lower, "401"):
		return fmt.Errorf("push failed: authentication failed, check your GitHub token permissions: %w", err)
	case strings.Contains(lower, "403") || strings.Contains(lower, "forbidden"):
		return fmt.Errorf("push failed: forbidden, check repository permissions or branch protection: %w", err)
	case strings.Contains(lower, "non-fast-forward") || strings.Contains(lower, "fetch first"):
		return fmt.Errorf("push rejected: remote has newer history, use --force to overwrite: %w", err)
	case strings.Contains(lower, "could not resolve") || strings.Contains(lower, "timed out"):
		return fmt.Errorf("push failed: network error, check your internet connection: %w", err)
	default:
		return fmt.Errorf("push failed: %w\n%s", err, strings.TrimSpace(out))
	}
}
