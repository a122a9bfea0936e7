// Package session persists user preferences and recent repository contexts
// across chronogit runs, so the interactive workflow can suggest what the
// user picked last time. State is one small JSON document under
// ~/.chronogit/session.json, written atomically.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// formatVersion guards future migrations of the on-disk document.
const formatVersion = 1

// Retention limits for learned preferences.
const (
	maxFavoriteYears  = 10
	maxFavoriteRepos  = 5
	maxRecentContexts = 10
	contextTTL        = 30 * 24 * time.Hour
)

// Data is the persisted session document.
type Data struct {
	Preferences    Preferences     `json:"preferences"`
	RecentContexts []RecentContext `json:"recent_contexts"`
	Metadata       Metadata        `json:"metadata"`
}

// Preferences are learned from the user's choices over time.
type Preferences struct {
	FavoriteYears   []int    `json:"favorite_years"`
	PreferredHour   int      `json:"preferred_hour"`
	FavoriteRepos   []string `json:"favorite_repos"`
	GitHubUsername  string   `json:"github_username,omitempty"`
	PreferredBranch string   `json:"preferred_branch,omitempty"`
}

// RecentContext records a working directory chronogit was used from.
type RecentContext struct {
	WorkingDir   string `json:"working_dir"`
	Repository   string `json:"repository,omitempty"`
	Branch       string `json:"branch,omitempty"`
	Identity     string `json:"identity,omitempty"`
	LastUsed     int64  `json:"last_used"`
	SuccessCount int    `json:"success_count"`
}

// Metadata tracks session lifetime counters.
type Metadata struct {
	SessionID       string `json:"session_id"`
	TotalExecutions int    `json:"total_executions"`
	FirstUse        int64  `json:"first_use"`
	LastUse         int64  `json:"last_use"`
	Version         int    `json:"version"`
}

// Suggestions is what the interactive workflow asks for before prompting.
type Suggestions struct {
	Repository     string
	Branch         string
	Identity       string
	Hour           int
	Years          []int
	Repositories   []string
	GitHubUsername string
}

// Stats summarizes session history for `chronogit sessions`.
type Stats struct {
	TotalExecutions   int
	DaysSinceFirstUse int
	RecentContexts    int
	FavoriteYears     int
}

// Manager loads, mutates, and saves the session document.
type Manager struct {
	path string
	data Data
	now  func() time.Time
}

// NewManager loads the session document from path, starting fresh when the
// file is missing or unreadable. A corrupt session file is never fatal.
func NewManager(path string) (*Manager, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home directory: %w", err)
		}
		path = filepath.Join(home, ".chronogit", "session.json")
	}

	m := &Manager{path: path, now: time.Now}

	data, err := os.ReadFile(path)
	if err != nil || json.Unmarshal(data, &m.data) != nil {
		m.data = newData(m.now())
	}
	if m.data.Metadata.Version == 0 {
		m.data = newData(m.now())
	}

	return m, nil
}

func newData(now time.Time) Data {
	return Data{
		Preferences: Preferences{
			PreferredHour:   18,
			PreferredBranch: "main",
		},
		Metadata: Metadata{
			SessionID: uuid.NewString(),
			FirstUse:  now.Unix(),
			LastUse:   now.Unix(),
			Version:   formatVersion,
		},
	}
}

// Data returns the current session document.
func (m *Manager) Data() Data {
	return m.data
}

// Path returns the backing file path.
func (m *Manager) Path() string {
	return m.path
}

// Save bumps the execution counters and writes the document atomically
// (write to a temp file, then rename over the target).
func (m *Manager) Save() error {
	m.data.Metadata.LastUse = m.now().Unix()
	m.data.Metadata.TotalExecutions++

	out, err := json.MarshalIndent(m.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o600); err != nil {
		return fmt.Errorf("failed to write session temp file: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

// LearnYear records a year choice, keeping the most recent maxFavoriteYears.
func (m *Manager) LearnYear(year int) {
	for _, y := range m.data.Preferences.FavoriteYears {
		if y == year {
			return
		}
	}
	m.data.Preferences.FavoriteYears = append(m.data.Preferences.FavoriteYears, year)
	if n := len(m.data.Preferences.FavoriteYears); n > maxFavoriteYears {
		m.data.Preferences.FavoriteYears = m.data.Preferences.FavoriteYears[n-maxFavoriteYears:]
	}
}

// LearnRepository records a repository choice, keeping the most recent
// maxFavoriteRepos.
func (m *Manager) LearnRepository(repo string) {
	for _, r := range m.data.Preferences.FavoriteRepos {
		if r == repo {
			return
		}
	}
	m.data.Preferences.FavoriteRepos = append(m.data.Preferences.FavoriteRepos, repo)
	if n := len(m.data.Preferences.FavoriteRepos); n > maxFavoriteRepos {
		m.data.Preferences.FavoriteRepos = m.data.Preferences.FavoriteRepos[n-maxFavoriteRepos:]
	}
}

// LearnHour records the preferred commit hour; out-of-range values are
// ignored.
func (m *Manager) LearnHour(hour int) {
	if hour >= 0 && hour <= 23 {
		m.data.Preferences.PreferredHour = hour
	}
}

// LearnUsername records the GitHub username.
func (m *Manager) LearnUsername(username string) {
	if username != "" {
		m.data.Preferences.GitHubUsername = username
	}
}

// UpdateContext adds or refreshes the recent-context entry for workingDir.
func (m *Manager) UpdateContext(workingDir, repo, branch, identity string, success bool) {
	now := m.now().Unix()

	for i := range m.data.RecentContexts {
		ctx := &m.data.RecentContexts[i]
		if ctx.WorkingDir != workingDir {
			continue
		}
		ctx.LastUsed = now
		if success {
			ctx.SuccessCount++
		}
		if repo != "" {
			ctx.Repository = repo
		}
		if branch != "" {
			ctx.Branch = branch
		}
		if identity != "" {
			ctx.Identity = identity
		}
		return
	}

	entry := RecentContext{
		WorkingDir: workingDir,
		Repository: repo,
		Branch:     branch,
		Identity:   identity,
		LastUsed:   now,
	}
	if success {
		entry.SuccessCount = 1
	}
	m.data.RecentContexts = append(m.data.RecentContexts, entry)

	if len(m.data.RecentContexts) > maxRecentContexts {
		sort.Slice(m.data.RecentContexts, func(i, j int) bool {
			return m.data.RecentContexts[i].LastUsed > m.data.RecentContexts[j].LastUsed
		})
		m.data.RecentContexts = m.data.RecentContexts[:maxRecentContexts]
	}
}

// Suggest builds suggestions for the given working directory from recent
// contexts and learned preferences.
func (m *Manager) Suggest(workingDir string) Suggestions {
	s := Suggestions{
		Hour:           m.data.Preferences.PreferredHour,
		Years:          append([]int(nil), m.data.Preferences.FavoriteYears...),
		Repositories:   append([]string(nil), m.data.Preferences.FavoriteRepos...),
		GitHubUsername: m.data.Preferences.GitHubUsername,
		Branch:         m.data.Preferences.PreferredBranch,
	}

	for _, ctx := range m.data.RecentContexts {
		if ctx.WorkingDir == workingDir {
			s.Repository = ctx.Repository
			if ctx.Branch != "" {
				s.Branch = ctx.Branch
			}
			s.Identity = ctx.Identity
			break
		}
	}

	return s
}

// Cleanup drops recent contexts that have not been touched within the
// retention window.
func (m *Manager) Cleanup() {
	cutoff := m.now().Add(-contextTTL).Unix()
	kept := m.data.RecentContexts[:0]
	for _, ctx := range m.data.RecentContexts {
		if ctx.LastUsed > cutoff {
			kept = append(kept, ctx)
		}
	}
	m.data.RecentContexts = kept
}

// Reset discards all session state and starts a fresh document.
func (m *Manager) Reset() {
	m.data = newData(m.now())
}

// Stats summarizes the session for display.
func (m *Manager) Stats() Stats {
	days := int(m.now().Unix()-m.data.Metadata.FirstUse) / (24 * 60 * 60)
	return Stats{
		TotalExecutions:   m.data.Metadata.TotalExecutions,
		DaysSinceFirstUse: days,
		RecentContexts:    len(m.data.RecentContexts),
		FavoriteYears:     len(m.data.Preferences.FavoriteYears),
	}
}
