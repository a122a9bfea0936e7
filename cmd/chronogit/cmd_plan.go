package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"chronogit/internal/plan"
)

var planMarkdown bool

// planCmd shows the full plan for an expression without executing it.
// It shares the travel flags so a plan can be promoted to a real run by
// swapping the subcommand.
var planCmd = &cobra.Command{
	Use:   "plan [expression]",
	Short: "Show the execution plan for a date expression",
	Long: `Builds and displays the full operation plan for a time travel run
without making any changes. Equivalent to 'travel --dry-run' with richer
output options.

Examples:
  chronogit plan 1990-1995 --repo my-history
  chronogit plan 1990 --repo my-history --markdown`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().AddFlagSet(travelCmd.Flags())
	planCmd.Flags().BoolVar(&planMarkdown, "markdown", false, "Render the plan as markdown")
}

func runPlan(cmd *cobra.Command, args []string) error {
	p, err := buildPlan(context.Background(), args[0])
	if err != nil {
		return err
	}

	if planMarkdown {
		fmt.Print(plan.RenderMarkdown(p))
		return nil
	}

	opts := plan.DefaultRenderOptions()
	opts.ShowPreviews = true
	fmt.Println(plan.Render(p, opts))
	return nil
}
