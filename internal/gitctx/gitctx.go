// Package gitctx inspects the local git repository around a working
// directory: branch, file status, configured identity, and remotes. It
// shells out to the git binary rather than linking a git library, so it
// sees exactly what the user's git sees (includeIf configs, credential
// helpers, worktrees).
package gitctx

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

// Identity is the committer identity from git config.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (id Identity) String() string {
	return fmt.Sprintf("%s <%s>", id.Name, id.Email)
}

// Remote is one configured remote.
type Remote struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	IsGitHub bool   `json:"is_github"`
	Owner    string `json:"owner,omitempty"`
	Repo     string `json:"repo,omitempty"`
}

// Context is everything chronogit knows about the repository it was
// invoked from.
type Context struct {
	IsGitRepo       bool          `json:"is_git_repo"`
	RepoPath        string        `json:"repo_path,omitempty"`
	CurrentBranch   string        `json:"current_branch,omitempty"`
	Branches        []string      `json:"branches,omitempty"`
	StagedFiles     []string      `json:"staged_files,omitempty"`
	ModifiedFiles   []string      `json:"modified_files,omitempty"`
	UntrackedFiles  []string      `json:"untracked_files,omitempty"`
	Identity        *Identity     `json:"identity,omitempty"`
	Remotes         []Remote      `json:"remotes,omitempty"`
	HasGitHubRemote bool          `json:"has_github_remote"`
	HeadCommit      string        `json:"head_commit,omitempty"`
	DetectionTime   time.Duration `json:"-"`
}

// HasStagedFiles reports whether anything is staged.
func (c *Context) HasStagedFiles() bool { return len(c.StagedFiles) > 0 }

// IsClean reports whether the working tree has no staged, modified, or
// untracked files.
func (c *Context) IsClean() bool {
	return len(c.StagedFiles) == 0 && len(c.ModifiedFiles) == 0 && len(c.UntrackedFiles) == 0
}

// GitHubRemote returns the GitHub remote to use, preferring origin.
func (c *Context) GitHubRemote() *Remote {
	var fallback *Remote
	for i := range c.Remotes {
		r := &c.Remotes[i]
		if !r.IsGitHub {
			continue
		}
		if r.Name == "origin" {
			return r
		}
		if fallback == nil {
			fallback = r
		}
	}
	return fallback
}

// Summary renders a one-line state summary for logs and prompts.
func (c *Context) Summary() string {
	if !c.IsGitRepo {
		return "Not a git repository"
	}
	branch := c.CurrentBranch
	if branch == "" {
		branch = "(detached HEAD)"
	}
	return fmt.Sprintf("Branch: %s | Staged: %d | Modified: %d | Untracked: %d | Detection: %dms",
		branch, len(c.StagedFiles), len(c.ModifiedFiles), len(c.UntrackedFiles),
		c.DetectionTime.Milliseconds())
}

// Detector runs git queries against a working directory. The detected
// context is cached for the lifetime of the detector, which matches one
// CLI invocation.
type Detector struct {
	dir    string
	cached *Context
}

// NewDetector creates a detector rooted at dir. Empty dir means the
// process working directory.
func NewDetector(dir string) *Detector {
	return &Detector{dir: dir}
}

// Detect gathers the repository context. A directory outside any git
// repository is not an error; it yields a context with IsGitRepo false.
func (d *Detector) Detect(ctx context.Context) (*Context, error) {
	if d.cached != nil {
		return d.cached, nil
	}

	start := time.Now()
	gc := &Context{}

	topLevel, err := d.git(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		gc.DetectionTime = time.Since(start)
		d.cached = gc
		return gc, nil
	}
	gc.IsGitRepo = true
	gc.RepoPath = topLevel

	if branch, err := d.git(ctx, "rev-parse", "--abbrev-ref", "HEAD"); err == nil && branch != "HEAD" {
		gc.CurrentBranch = branch
	}
	if head, err := d.git(ctx, "rev-parse", "HEAD"); err == nil {
		gc.HeadCommit = head
	}
	if out, err := d.git(ctx, "branch", "--all", "--format=%(refname:short)"); err == nil {
		gc.Branches = splitLines(out)
	}
	if out, err := d.git(ctx, "status", "--porcelain"); err == nil {
		gc.StagedFiles, gc.ModifiedFiles, gc.UntrackedFiles = ParseStatus(out)
	}

	name, nameErr := d.git(ctx, "config", "user.name")
	email, emailErr := d.git(ctx, "config", "user.email")
	if nameErr == nil && emailErr == nil && name != "" && email != "" {
		gc.Identity = &Identity{Name: name, Email: email}
	}

	if out, err := d.git(ctx, "remote", "-v"); err == nil {
		gc.Remotes = ParseRemotes(out)
		for _, r := range gc.Remotes {
			if r.IsGitHub {
				gc.HasGitHubRemote = true
				break
			}
		}
	}

	gc.DetectionTime = time.Since(start)
	d.cached = gc
	return gc, nil
}

// ClearCache discards the cached context so the next Detect re-queries git.
func (d *Detector) ClearCache() {
	d.cached = nil
}

func (d *Detector) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	if d.dir != "" {
		cmd.Dir = d.dir
	}
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// ParseStatus splits `git status --porcelain` output into staged,
// modified, and untracked paths. A path can appear in both staged and
// modified when it has index and worktree changes.
func ParseStatus(out string) (staged, modified, untracked []string) {
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		index, worktree := line[0], line[1]
		path := strings.TrimSpace(line[3:])
		// Renames are reported as "old -> new"; keep the new path.
		if i := strings.Index(path, " -> "); i >= 0 {
			path = path[i+4:]
		}

		if index == '?' && worktree == '?' {
			untracked = append(untracked, path)
			continue
		}
		if index != ' ' && index != '?' {
			staged = append(staged, path)
		}
		if worktree != ' ' && worktree != '?' {
			modified = append(modified, path)
		}
	}
	return staged, modified, untracked
}

// ParseRemotes parses `git remote -v` output. Each remote appears twice
// (fetch and push); only the fetch line is kept.
func ParseRemotes(out string) []Remote {
	var remotes []Remote
	seen := make(map[string]bool)
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		name, url := fields[0], fields[1]
		if seen[name] {
			continue
		}
		seen[name] = true

		r := Remote{Name: name, URL: url}
		if owner, repo, ok := ParseGitHubURL(url); ok {
			r.IsGitHub = true
			r.Owner = owner
			r.Repo = repo
		}
		remotes = append(remotes, r)
	}
	return remotes
}

var githubURLRe = regexp.MustCompile(`(?:git@github\.com:|https://github\.com/|ssh://git@github\.com/)([^/]+)/([^/]+?)(?:\.git)?/?$`)

// ParseGitHubURL extracts the owner and repository name from a GitHub
// remote URL in ssh or https form.
func ParseGitHubURL(url string) (owner, repo string, ok bool) {
	m := githubURLRe.FindStringSubmatch(strings.TrimSpace(url))
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

func splitLines(out string) []string {
	if out == "" {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
