// Package executor carries out time travel plans: it validates the
// token, prepares the repository, creates the backdated commits, and
// pushes. Plans for different repositories run concurrently with a
// bounded worker count; commits within one repository stay sequential
// because each commit parents the previous one.
package executor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"chronogit/internal/github"
	"chronogit/internal/gitops"
	"chronogit/internal/plan"
)

// maxConcurrentPlans bounds how many repositories are processed at once.
const maxConcurrentPlans = 4

// GitHubAPI is the slice of the GitHub client the executor needs.
type GitHubAPI interface {
	CheckPermissions(ctx context.Context) ([]string, error)
	RepositoryExists(ctx context.Context, name string) (bool, error)
	CreateRepositoryWithDefaults(ctx context.Context, name, description string, private bool) (*github.Repository, error)
}

// GitBackend is the slice of gitops the executor needs.
type GitBackend interface {
	Clone(ctx context.Context, spec gitops.CloneSpec) (*gitops.Repository, error)
	Init(ctx context.Context, name, branch string) (*gitops.Repository, error)
	WriteFile(repo *gitops.Repository, relPath, content string) error
	Commit(ctx context.Context, repo *gitops.Repository, spec gitops.CommitSpec) (*gitops.CommitResult, error)
	AddRemote(ctx context.Context, repo *gitops.Repository, name, url string) error
	Push(ctx context.Context, repo *gitops.Repository, remote, branch string, creds *gitops.Credentials, force bool) error
}

// Result reports one executed plan.
type Result struct {
	PlanID     string
	Repository string
	Commits    []gitops.CommitResult
	Pushed     bool
	Duration   time.Duration
}

// Executor runs plans. DryRun true stops before any state changes.
type Executor struct {
	github GitHubAPI
	git    GitBackend
	creds  *gitops.Credentials
	logger *zap.Logger
	DryRun bool
}

// New builds an executor over the given backends.
func New(github GitHubAPI, git GitBackend, creds *gitops.Credentials, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{github: github, git: git, creds: creds, logger: logger}
}

// Run executes a single plan.
func (e *Executor) Run(ctx context.Context, p *plan.Plan) (*Result, error) {
	start := time.Now()
	req := p.Request

	e.logger.Info("executing plan",
		zap.String("plan", p.ID),
		zap.String("repository", p.Summary.Repository),
		zap.Int("commits", p.Summary.CommitsToCreate),
		zap.Bool("dry_run", e.DryRun))

	if e.DryRun {
		return &Result{PlanID: p.ID, Repository: p.Summary.Repository, Duration: time.Since(start)}, nil
	}

	if _, err := e.github.CheckPermissions(ctx); err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	exists, err := e.github.RepositoryExists(ctx, req.Repository)
	if err != nil {
		return nil, err
	}

	cloneURL := fmt.Sprintf("https://github.com/%s/%s.git", req.Username, req.Repository)
	if !exists {
		if !req.CreateRepo {
			return nil, fmt.Errorf("repository %s/%s does not exist, rerun with --create to create it",
				req.Username, req.Repository)
		}
		created, err := e.github.CreateRepositoryWithDefaults(ctx, req.Repository,
			"Repository with historical activity", req.Private)
		if err != nil {
			return nil, err
		}
		cloneURL = created.CloneURL
		e.logger.Info("created repository", zap.String("repository", created.FullName))
	}

	repo, err := e.git.Clone(ctx, gitops.CloneSpec{
		URL:         cloneURL,
		Branch:      req.Branch,
		Credentials: e.creds,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{PlanID: p.ID, Repository: p.Summary.Repository}
	for _, op := range p.Operations {
		commit, ok := op.(plan.CreateCommit)
		if !ok {
			continue
		}
		for _, file := range commit.Files {
			content := gitops.GenerateContent(commit.Timestamp.Year(), req.Repository)
			if err := e.git.WriteFile(repo, file, content); err != nil {
				return nil, err
			}
		}
		created, err := e.git.Commit(ctx, repo, gitops.CommitSpec{
			Timestamp: commit.Timestamp,
			Author:    commit.Author,
			Committer: commit.Author,
			Message:   commit.Message,
			Files:     commit.Files,
		})
		if err != nil {
			return nil, err
		}
		result.Commits = append(result.Commits, *created)
		e.logger.Debug("created commit",
			zap.String("commit", created.CommitID),
			zap.Time("timestamp", created.Timestamp))
	}

	if err := e.git.Push(ctx, repo, "origin", req.Branch, e.creds, req.Force); err != nil {
		return nil, err
	}
	result.Pushed = true
	result.Duration = time.Since(start)

	e.logger.Info("plan complete",
		zap.String("plan", p.ID),
		zap.Int("commits", len(result.Commits)),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// RunAll executes plans concurrently, one goroutine per repository with
// a bounded worker count. The first failure cancels the remaining
// plans.
func (e *Executor) RunAll(ctx context.Context, plans []*plan.Plan) ([]*Result, error) {
	results := make([]*Result, len(plans))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentPlans)

	for i, p := range plans {
		g.Go(func() error {
			result, err := e.Run(ctx, p)
			if err != nil {
				return fmt.Errorf("plan for %s: %w", p.Summary.Repository, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
