package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"chronogit/cmd/chronogit/ui"
	"chronogit/internal/dateparse"
	"chronogit/internal/executor"
	"chronogit/internal/gitctx"
	"chronogit/internal/github"
	"chronogit/internal/gitops"
	"chronogit/internal/plan"
	"chronogit/internal/session"
	"chronogit/internal/timegen"
)

// interactiveCmd launches the guided workflow. It is also the default
// when chronogit runs with no subcommand.
var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Run the guided time travel workflow",
	RunE:  runInteractive,
}

func runInteractive(cmd *cobra.Command, args []string) error {
	// The TUI owns the terminal, so logging goes to a quiet logger
	// unless verbose was requested.
	if logger == nil {
		zcfg := zap.NewProductionConfig()
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return err
		}
		defer logger.Sync()
	}

	ctx := context.Background()
	defaults := interactiveDefaults(ctx)

	model := ui.NewModel(defaults, func(c ui.Choices) (string, error) {
		p, err := planFromChoices(c)
		if err != nil {
			return "", err
		}
		opts := plan.DefaultRenderOptions()
		return plan.Render(p, opts), nil
	})

	program := tea.NewProgram(model, tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("interactive workflow failed: %w", err)
	}

	choices := final.(ui.Model).Choices()
	if !choices.Confirmed {
		fmt.Println("Operation cancelled.")
		return nil
	}

	token := choices.Token
	if token == "" {
		token = cfg.GitHub.Token
	}
	if token == "" {
		return fmt.Errorf("no GitHub token provided")
	}

	p, err := planFromChoices(choices)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	ghClient := github.NewClient(choices.Username, token,
		github.WithBaseURL(cfg.GitHub.BaseURL),
		github.WithTimeout(cfg.GitHub.TimeoutDuration()),
		github.WithLogger(logger))

	ops, err := gitops.New(logger)
	if err != nil {
		return err
	}
	defer ops.Close()

	creds := &gitops.Credentials{Username: choices.Username, Token: token}
	exec := executor.New(ghClient, ops, creds, logger)

	result, err := exec.Run(runCtx, p)
	if err != nil {
		return err
	}

	fmt.Printf("Created %d commits on %s and pushed to %s.\n",
		len(result.Commits), result.Repository, p.Request.Branch)

	recordSession(p)
	return nil
}

// interactiveDefaults gathers prefills from config, the session, and
// the surrounding git repository.
func interactiveDefaults(ctx context.Context) ui.Defaults {
	defaults := ui.Defaults{
		Username: cfg.GitHub.Username,
		HasToken: cfg.GitHub.Token != "",
		Branch:   cfg.Git.DefaultBranch,
		Hour:     cfg.Timestamps.DefaultHour,
	}

	if mgr, err := session.NewManager(""); err == nil {
		cwd, _ := os.Getwd()
		s := mgr.Suggest(cwd)
		defaults.Years = s.Years
		if s.Repository != "" {
			defaults.Repository = s.Repository
		}
		if defaults.Username == "" {
			defaults.Username = s.GitHubUsername
		}
		if s.Branch != "" {
			defaults.Branch = s.Branch
		}
		defaults.Hour = s.Hour
	}

	if gc, err := gitctx.NewDetector("").Detect(ctx); err == nil && gc.IsGitRepo {
		if remote := gc.GitHubRemote(); remote != nil {
			if defaults.Repository == "" {
				defaults.Repository = remote.Repo
			}
			if defaults.Username == "" {
				defaults.Username = remote.Owner
			}
		}
	}
	return defaults
}

// planFromChoices builds a plan from the wizard's answers.
func planFromChoices(c ui.Choices) (*plan.Plan, error) {
	expr, err := dateparse.Parse(c.Expression)
	if err != nil {
		return nil, err
	}
	stamps, err := timegen.Generate(expr, timegenConfig())
	if err != nil {
		return nil, err
	}
	return plan.Build(plan.Request{
		Username:   c.Username,
		Repository: c.Repository,
		Branch:     c.Branch,
		Author:     gitctx.Identity{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail},
		Timestamps: stamps,
		CreateRepo: c.Create,
		Force:      c.Force,
		Expression: c.Expression,
	})
}
