// Package plan turns a time travel request into an ordered list of
// operations that can be previewed, confirmed, and executed. The dry
// run path renders the plan without touching GitHub or any repository.
package plan

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"chronogit/internal/gitctx"
	"chronogit/internal/gitops"
)

// Operation is one step of a time travel plan. Implementations are the
// planned counterparts of the gitops and github calls the executor
// makes.
type Operation interface {
	Describe() string
	isOperation()
}

// ValidateToken checks the GitHub token before anything else runs.
type ValidateToken struct {
	Username string
}

// CheckRepository verifies the target repository exists.
type CheckRepository struct {
	Username   string
	Repository string
}

// CreateRepository creates the target repository when it is missing.
type CreateRepository struct {
	Repository  string
	Description string
	Private     bool
}

// CloneRepository clones the target into the temporary workspace.
type CloneRepository struct {
	Repository string
	Branch     string
	URL        string
}

// CreateFile writes one time travel file into the working tree.
type CreateFile struct {
	Filename string
	Preview  string
}

// CreateCommit creates one backdated commit.
type CreateCommit struct {
	Timestamp time.Time
	Author    gitctx.Identity
	Message   string
	Files     []string
}

// PushCommits pushes the branch to the remote.
type PushCommits struct {
	Repository string
	Branch     string
	Force      bool
}

// Cleanup removes the temporary workspace.
type Cleanup struct {
	Path string
}

func (ValidateToken) isOperation()    {}
func (CheckRepository) isOperation()  {}
func (CreateRepository) isOperation() {}
func (CloneRepository) isOperation()  {}
func (CreateFile) isOperation()       {}
func (CreateCommit) isOperation()     {}
func (PushCommits) isOperation()      {}
func (Cleanup) isOperation()          {}

func (o ValidateToken) Describe() string {
	return fmt.Sprintf("Validate GitHub token for user %q", o.Username)
}

func (o CheckRepository) Describe() string {
	return fmt.Sprintf("Check if repository %s/%s exists", o.Username, o.Repository)
}

func (o CreateRepository) Describe() string {
	visibility := "public"
	if o.Private {
		visibility = "private"
	}
	return fmt.Sprintf("Create %s repository %q", visibility, o.Repository)
}

func (o CloneRepository) Describe() string {
	return fmt.Sprintf("Clone %q (branch %s) from %s", o.Repository, o.Branch, o.URL)
}

func (o CreateFile) Describe() string {
	return fmt.Sprintf("Create file %q", o.Filename)
}

func (o CreateCommit) Describe() string {
	return fmt.Sprintf("Create backdated commit at %s", o.Timestamp.UTC().Format(time.RFC3339))
}

func (o PushCommits) Describe() string {
	verb := "Push"
	if o.Force {
		verb = "Force push"
	}
	return fmt.Sprintf("%s branch %s to %s", verb, o.Branch, o.Repository)
}

func (o Cleanup) Describe() string {
	return fmt.Sprintf("Clean up temporary files under %s", o.Path)
}

// Request describes the time travel run to plan.
type Request struct {
	Username   string
	Repository string
	Branch     string
	Author     gitctx.Identity
	Timestamps []time.Time
	CreateRepo bool
	Private    bool
	Force      bool
	Expression string
}

// Summary condenses the plan for display.
type Summary struct {
	TotalOperations   int
	Years             []int
	Repository        string
	FilesToCreate     []string
	CommitsToCreate   int
	EstimatedDuration time.Duration
}

// Plan is an ordered, immutable preview of a time travel run.
type Plan struct {
	ID            string
	Request       Request
	Operations    []Operation
	Summary       Summary
	Risks         []string
	Confirmations []string
	CreatedAt     time.Time
}

// Build expands a request into a plan. Timestamps must come from the
// generator and be in ascending or list order; the plan preserves them
// as given.
func Build(req Request) (*Plan, error) {
	if req.Repository == "" {
		return nil, fmt.Errorf("plan needs a repository name")
	}
	if len(req.Timestamps) == 0 {
		return nil, fmt.Errorf("plan needs at least one timestamp")
	}
	if req.Branch == "" {
		req.Branch = "main"
	}

	var ops []Operation
	ops = append(ops, ValidateToken{Username: req.Username})
	ops = append(ops, CheckRepository{Username: req.Username, Repository: req.Repository})
	if req.CreateRepo {
		ops = append(ops, CreateRepository{
			Repository:  req.Repository,
			Description: "Repository with historical activity",
			Private:     req.Private,
		})
	}
	ops = append(ops, CloneRepository{
		Repository: req.Repository,
		Branch:     req.Branch,
		URL:        fmt.Sprintf("https://github.com/%s/%s.git", req.Username, req.Repository),
	})

	var files []string
	for _, ts := range req.Timestamps {
		filename := gitops.FileNameForTimestamp(ts)
		files = append(files, filename)

		content := gitops.GenerateContent(ts.Year(), req.Repository)
		ops = append(ops, CreateFile{Filename: filename, Preview: preview(content)})
		ops = append(ops, CreateCommit{
			Timestamp: ts,
			Author:    req.Author,
			Message:   fmt.Sprintf("Time travel commit for %d", ts.Year()),
			Files:     []string{filename},
		})
	}

	ops = append(ops, PushCommits{Repository: req.Repository, Branch: req.Branch, Force: req.Force})
	ops = append(ops, Cleanup{Path: "$TMPDIR/chronogit-*"})

	p := &Plan{
		ID:         uuid.NewString(),
		Request:    req,
		Operations: ops,
		Summary: Summary{
			TotalOperations:   len(ops),
			Years:             distinctYears(req.Timestamps),
			Repository:        req.Username + "/" + req.Repository,
			FilesToCreate:     files,
			CommitsToCreate:   len(req.Timestamps),
			EstimatedDuration: time.Duration(len(req.Timestamps)) * 10 * time.Second,
		},
		CreatedAt: time.Now().UTC(),
	}
	p.Risks = identifyRisks(req)
	p.Confirmations = identifyConfirmations(req)
	return p, nil
}

func preview(content string) string {
	lines := 0
	for i, r := range content {
		if r == '\n' {
			lines++
			if lines == 3 {
				return content[:i] + "\n..."
			}
		}
	}
	return content
}

func distinctYears(stamps []time.Time) []int {
	seen := make(map[int]bool)
	var years []int
	for _, ts := range stamps {
		y := ts.UTC().Year()
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Ints(years)
	return years
}

func identifyRisks(req Request) []string {
	var risks []string
	if req.Force {
		risks = append(risks, "Force push will overwrite remote history, this cannot be undone")
	}
	if len(req.Timestamps) > 10 {
		risks = append(risks, fmt.Sprintf("Creating %d commits may trigger GitHub rate limits", len(req.Timestamps)))
	}
	for _, ts := range req.Timestamps {
		if ts.Year() < 1990 {
			risks = append(risks, fmt.Sprintf("Very old years (before 1990, e.g. %d) may look suspicious on your profile", ts.Year()))
			break
		}
	}
	if req.CreateRepo {
		risks = append(risks, "A new repository will be created on your GitHub account")
	}
	return risks
}

func identifyConfirmations(req Request) []string {
	var confirmations []string
	if req.CreateRepo {
		confirmations = append(confirmations, fmt.Sprintf("Create new repository %q", req.Repository))
	}
	if n := len(distinctYears(req.Timestamps)); n > 5 {
		confirmations = append(confirmations, fmt.Sprintf("Process %d years of commits", n))
	}
	if req.Force {
		confirmations = append(confirmations, fmt.Sprintf("Force push to %s", req.Repository))
	}
	return confirmations
}
