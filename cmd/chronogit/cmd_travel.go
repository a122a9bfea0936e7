package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chronogit/internal/dateparse"
	"chronogit/internal/executor"
	"chronogit/internal/gitctx"
	"chronogit/internal/github"
	"chronogit/internal/gitops"
	"chronogit/internal/plan"
	"chronogit/internal/session"
	"chronogit/internal/timegen"
)

var (
	travelUser    string
	travelToken   string
	travelRepo    string
	travelBranch  string
	travelCreate  bool
	travelPrivate bool
	travelForce   bool
	travelDryRun  bool
	travelYes     bool
	travelHour    int
	travelFlat    bool
	travelTimeout time.Duration
)

// travelCmd is the main workhorse: parse, generate, plan, confirm,
// execute, push.
var travelCmd = &cobra.Command{
	Use:   "travel [expression]",
	Short: "Create backdated commits for the given dates",
	Long: `Creates backdated commits on a GitHub repository for the dates the
expression describes, then pushes them.

Examples:
  chronogit travel 1990 --repo my-history
  chronogit travel 1990-1995 --repo my-history --create
  chronogit travel "June 1990" --repo my-history --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runTravel,
}

func init() {
	travelCmd.Flags().StringVarP(&travelUser, "user", "u", "", "GitHub username (default: from config)")
	travelCmd.Flags().StringVar(&travelToken, "token", "", "GitHub token (default: from config or CHRONOGIT_TOKEN)")
	travelCmd.Flags().StringVarP(&travelRepo, "repo", "r", "", "Repository name (default: current repo's GitHub remote)")
	travelCmd.Flags().StringVarP(&travelBranch, "branch", "b", "", "Branch to push to (default: from config)")
	travelCmd.Flags().BoolVar(&travelCreate, "create", false, "Create the repository if it does not exist")
	travelCmd.Flags().BoolVar(&travelPrivate, "private", false, "Make a created repository private")
	travelCmd.Flags().BoolVar(&travelForce, "force", false, "Force push, overwriting remote history")
	travelCmd.Flags().BoolVar(&travelDryRun, "dry-run", false, "Preview the plan without making changes")
	travelCmd.Flags().BoolVarP(&travelYes, "yes", "y", false, "Skip the confirmation prompt")
	travelCmd.Flags().IntVar(&travelHour, "hour", -1, "Fixed commit hour 0-23 (default: from config)")
	travelCmd.Flags().BoolVar(&travelFlat, "no-distribute", false, "Use the fixed hour for every commit")
	travelCmd.Flags().DurationVar(&travelTimeout, "timeout", 10*time.Minute, "Operation timeout")
}

func runTravel(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), travelTimeout)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	p, err := buildPlan(ctx, args[0])
	if err != nil {
		return err
	}

	opts := plan.DefaultRenderOptions()
	fmt.Println(plan.Render(p, opts))

	if travelDryRun {
		fmt.Println("Dry run complete. No changes were made.")
		return nil
	}

	if !travelYes && !confirm(p) {
		fmt.Println("Operation cancelled.")
		return nil
	}

	token := resolveToken()
	if token == "" {
		return fmt.Errorf("no GitHub token configured, set CHRONOGIT_TOKEN or use --token")
	}

	ghClient := github.NewClient(p.Request.Username, token,
		github.WithBaseURL(cfg.GitHub.BaseURL),
		github.WithTimeout(cfg.GitHub.TimeoutDuration()),
		github.WithLogger(logger))

	ops, err := gitops.New(logger)
	if err != nil {
		return err
	}
	defer ops.Close()

	creds := &gitops.Credentials{Username: p.Request.Username, Token: token}
	exec := executor.New(ghClient, ops, creds, logger)

	result, err := exec.Run(ctx, p)
	if err != nil {
		return err
	}

	fmt.Printf("Created %d commits on %s and pushed to %s.\n",
		len(result.Commits), result.Repository, p.Request.Branch)

	recordSession(p)
	return nil
}

// buildPlan turns the expression and flags into a plan, pulling
// defaults from config, git context, and the session.
func buildPlan(ctx context.Context, expression string) (*plan.Plan, error) {
	expr, err := dateparse.Parse(expression)
	if err != nil {
		return nil, formatParseError(err)
	}

	gen := timegenConfig()
	if travelHour >= 0 {
		gen.DefaultHour = travelHour
	}
	if travelFlat {
		gen.DistributeTimes = false
	}
	stamps, err := timegen.Generate(expr, gen)
	if err != nil {
		return nil, err
	}

	username := travelUser
	if username == "" {
		username = cfg.GitHub.Username
	}

	repoName := travelRepo
	detector := gitctx.NewDetector("")
	if gc, err := detector.Detect(ctx); err == nil && gc.IsGitRepo {
		if remote := gc.GitHubRemote(); remote != nil {
			if repoName == "" {
				repoName = remote.Repo
			}
			if username == "" {
				username = remote.Owner
			}
		}
	}
	if username == "" {
		return nil, fmt.Errorf("no GitHub username configured, use --user or set CHRONOGIT_USERNAME")
	}
	if repoName == "" {
		return nil, fmt.Errorf("no repository given and no GitHub remote found, use --repo")
	}

	branch := travelBranch
	if branch == "" {
		branch = cfg.Git.DefaultBranch
	}

	return plan.Build(plan.Request{
		Username:   username,
		Repository: repoName,
		Branch:     branch,
		Author:     gitctx.Identity{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail},
		Timestamps: stamps,
		CreateRepo: travelCreate,
		Private:    travelPrivate,
		Force:      travelForce,
		Expression: expression,
	})
}

func resolveToken() string {
	if travelToken != "" {
		return travelToken
	}
	return cfg.GitHub.Token
}

func confirm(p *plan.Plan) bool {
	if len(p.Risks) > 0 {
		fmt.Println("Review the risks above before continuing.")
	}
	fmt.Print("Proceed with these operations? [y/N]: ")
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// recordSession learns from a successful run so the interactive
// workflow can suggest these choices next time.
func recordSession(p *plan.Plan) {
	mgr, err := session.NewManager("")
	if err != nil {
		return
	}
	for _, year := range p.Summary.Years {
		mgr.LearnYear(year)
	}
	mgr.LearnRepository(p.Request.Repository)
	mgr.LearnUsername(p.Request.Username)

	cwd, _ := os.Getwd()
	mgr.UpdateContext(cwd, p.Request.Repository, p.Request.Branch,
		p.Request.Author.String(), true)
	mgr.Cleanup()
	if err := mgr.Save(); err != nil {
		logger.Warn("failed to save session", zap.Error(err))
	}
}
