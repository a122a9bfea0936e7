package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"

	"chronogit/internal/gitctx"
	"chronogit/internal/github"
	"chronogit/internal/gitops"
	"chronogit/internal/plan"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// =============================================================================
// Fakes
// =============================================================================

type fakeGitHub struct {
	mu          sync.Mutex
	exists      bool
	permsErr    error
	createdRepo string
	calls       []string
}

func (f *fakeGitHub) CheckPermissions(ctx context.Context) ([]string, error) {
	f.record("check_permissions")
	return []string{"repo"}, f.permsErr
}

func (f *fakeGitHub) RepositoryExists(ctx context.Context, name string) (bool, error) {
	f.record("repository_exists")
	return f.exists, nil
}

func (f *fakeGitHub) CreateRepositoryWithDefaults(ctx context.Context, name, description string, private bool) (*github.Repository, error) {
	f.record("create_repository")
	f.mu.Lock()
	f.createdRepo = name
	f.mu.Unlock()
	return &github.Repository{
		FullName:      "octocat/" + name,
		CloneURL:      "https://github.com/octocat/" + name + ".git",
		DefaultBranch: "main",
	}, nil
}

func (f *fakeGitHub) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

type fakeGit struct {
	mu        sync.Mutex
	commits   []gitops.CommitSpec
	files     []string
	pushed    bool
	commitErr error
}

func (f *fakeGit) Clone(ctx context.Context, spec gitops.CloneSpec) (*gitops.Repository, error) {
	return &gitops.Repository{Path: "/tmp/fake", Branch: spec.Branch}, nil
}

func (f *fakeGit) Init(ctx context.Context, name, branch string) (*gitops.Repository, error) {
	return &gitops.Repository{Path: "/tmp/fake/" + name, Branch: branch}, nil
}

func (f *fakeGit) WriteFile(repo *gitops.Repository, relPath, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files = append(f.files, relPath)
	return nil
}

func (f *fakeGit) Commit(ctx context.Context, repo *gitops.Repository, spec gitops.CommitSpec) (*gitops.CommitResult, error) {
	if f.commitErr != nil {
		return nil, f.commitErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commits = append(f.commits, spec)
	return &gitops.CommitResult{
		CommitID:  fmt.Sprintf("sha%d", len(f.commits)),
		Timestamp: spec.Timestamp,
		Files:     spec.Files,
		Message:   spec.Message,
	}, nil
}

func (f *fakeGit) AddRemote(ctx context.Context, repo *gitops.Repository, name, url string) error {
	return nil
}

func (f *fakeGit) Push(ctx context.Context, repo *gitops.Repository, remote, branch string, creds *gitops.Credentials, force bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushed = true
	return nil
}

func testPlan(t *testing.T, repo string) *plan.Plan {
	t.Helper()
	p, err := plan.Build(plan.Request{
		Username:   "octocat",
		Repository: repo,
		Branch:     "main",
		Author:     gitctx.Identity{Name: "Time Traveler", Email: "timetraveler@example.com"},
		Timestamps: []time.Time{
			time.Date(1990, time.March, 15, 9, 0, 0, 0, time.UTC),
			time.Date(1990, time.June, 26, 12, 0, 0, 0, time.UTC),
		},
	})
	if err != nil {
		t.Fatalf("plan.Build failed: %v", err)
	}
	return p
}

// =============================================================================
// Single Plan Execution Tests
// =============================================================================

func TestRunCreatesCommitsAndPushes(t *testing.T) {
	gh := &fakeGitHub{exists: true}
	git := &fakeGit{}
	exec := New(gh, git, nil, zap.NewNop())

	result, err := exec.Run(context.Background(), testPlan(t, "history"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.Commits) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(result.Commits))
	}
	if !result.Pushed {
		t.Error("expected a push")
	}
	if !git.pushed {
		t.Error("backend push not called")
	}

	// Commits must be created in plan order.
	if !git.commits[0].Timestamp.Before(git.commits[1].Timestamp) {
		t.Error("commits created out of order")
	}
	// Each commit writes its file first.
	if len(git.files) != 2 {
		t.Errorf("expected 2 files written, got %v", git.files)
	}
}

func TestRunDryRunTouchesNothing(t *testing.T) {
	gh := &fakeGitHub{exists: true}
	git := &fakeGit{}
	exec := New(gh, git, nil, zap.NewNop())
	exec.DryRun = true

	result, err := exec.Run(context.Background(), testPlan(t, "history"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(gh.calls) != 0 {
		t.Errorf("dry run should not call GitHub, got %v", gh.calls)
	}
	if len(git.commits) != 0 || git.pushed {
		t.Error("dry run should not touch git")
	}
	if result.PlanID == "" {
		t.Error("dry run should still report the plan id")
	}
}

func TestRunMissingRepositoryWithoutCreate(t *testing.T) {
	gh := &fakeGitHub{exists: false}
	exec := New(gh, &fakeGit{}, nil, zap.NewNop())

	_, err := exec.Run(context.Background(), testPlan(t, "missing"))
	if err == nil {
		t.Fatal("expected an error for missing repository")
	}
	if got := err.Error(); !strings.Contains(got, "--create") {
		t.Errorf("error should mention --create, got %q", got)
	}
}

func TestRunCreatesMissingRepository(t *testing.T) {
	gh := &fakeGitHub{exists: false}
	git := &fakeGit{}
	exec := New(gh, git, nil, zap.NewNop())

	p := testPlan(t, "fresh")
	p.Request.CreateRepo = true

	if _, err := exec.Run(context.Background(), p); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if gh.createdRepo != "fresh" {
		t.Errorf("expected repository creation, got %q", gh.createdRepo)
	}
}

func TestRunFailsOnInvalidToken(t *testing.T) {
	gh := &fakeGitHub{permsErr: errors.New("bad credentials")}
	exec := New(gh, &fakeGit{}, nil, zap.NewNop())

	_, err := exec.Run(context.Background(), testPlan(t, "history"))
	if err == nil {
		t.Fatal("expected token validation failure")
	}
}

// =============================================================================
// Concurrent Execution Tests
// =============================================================================

func TestRunAll(t *testing.T) {
	gh := &fakeGitHub{exists: true}
	git := &fakeGit{}
	exec := New(gh, git, nil, zap.NewNop())

	plans := []*plan.Plan{
		testPlan(t, "repo-a"),
		testPlan(t, "repo-b"),
		testPlan(t, "repo-c"),
	}

	results, err := exec.RunAll(context.Background(), plans)
	if err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, result := range results {
		if result == nil {
			t.Fatalf("result %d is nil", i)
		}
		if result.PlanID != plans[i].ID {
			t.Errorf("result %d has plan %q, want %q", i, result.PlanID, plans[i].ID)
		}
	}
}

func TestRunAllPropagatesFailure(t *testing.T) {
	gh := &fakeGitHub{exists: true}
	git := &fakeGit{commitErr: errors.New("disk full")}
	exec := New(gh, git, nil, zap.NewNop())

	_, err := exec.RunAll(context.Background(), []*plan.Plan{testPlan(t, "repo-a")})
	if err == nil {
		t.Fatal("expected commit failure to propagate")
	}
	if !strings.Contains(err.Error(), "repo-a") {
		t.Errorf("error should name the repository, got %q", err)
	}
}

