package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chronogit/internal/session"
)

// sessionsCmd inspects and maintains the learned session state.
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect learned preferences and recent repositories",
	RunE:  showSessions,
}

var sessionsCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Drop recent repositories older than 30 days",
	RunE:  cleanupSessions,
}

var sessionsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard all learned preferences and history",
	RunE:  resetSessions,
}

func init() {
	sessionsCmd.AddCommand(sessionsCleanupCmd)
	sessionsCmd.AddCommand(sessionsResetCmd)
}

func showSessions(cmd *cobra.Command, args []string) error {
	mgr, err := session.NewManager("")
	if err != nil {
		return err
	}

	data := mgr.Data()
	stats := mgr.Stats()

	fmt.Println("chronogit session")
	fmt.Println("=================")
	fmt.Printf("Session ID:        %s\n", data.Metadata.SessionID)
	fmt.Printf("Total runs:        %d\n", stats.TotalExecutions)
	fmt.Printf("Days since first:  %d\n", stats.DaysSinceFirstUse)
	fmt.Println()

	fmt.Println("Preferences:")
	fmt.Printf("  Preferred hour:   %d:00 UTC\n", data.Preferences.PreferredHour)
	fmt.Printf("  Preferred branch: %s\n", data.Preferences.PreferredBranch)
	if data.Preferences.GitHubUsername != "" {
		fmt.Printf("  GitHub username:  %s\n", data.Preferences.GitHubUsername)
	}
	if len(data.Preferences.FavoriteYears) > 0 {
		fmt.Printf("  Favorite years:   %s\n", joinInts(data.Preferences.FavoriteYears))
	}
	if len(data.Preferences.FavoriteRepos) > 0 {
		fmt.Printf("  Favorite repos:   %s\n", strings.Join(data.Preferences.FavoriteRepos, ", "))
	}

	if len(data.RecentContexts) > 0 {
		fmt.Println("\nRecent repositories:")
		for _, rc := range data.RecentContexts {
			repo := rc.Repository
			if repo == "" {
				repo = "(none)"
			}
			fmt.Printf("  %s  repo=%s branch=%s runs=%d\n",
				rc.WorkingDir, repo, rc.Branch, rc.SuccessCount)
		}
	}
	return nil
}

func cleanupSessions(cmd *cobra.Command, args []string) error {
	mgr, err := session.NewManager("")
	if err != nil {
		return err
	}
	before := len(mgr.Data().RecentContexts)
	mgr.Cleanup()
	after := len(mgr.Data().RecentContexts)
	if err := mgr.Save(); err != nil {
		return err
	}
	fmt.Printf("Removed %d stale context(s), %d remaining.\n", before-after, after)
	return nil
}

func resetSessions(cmd *cobra.Command, args []string) error {
	mgr, err := session.NewManager("")
	if err != nil {
		return err
	}
	mgr.Reset()
	if err := mgr.Save(); err != nil {
		return err
	}
	fmt.Println("Session state reset.")
	return nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ", ")
}
