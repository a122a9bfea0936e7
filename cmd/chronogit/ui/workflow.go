package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"chronogit/internal/dateparse"
)

// step is the wizard position.
type step int

const (
	stepExpression step = iota
	stepRepository
	stepUsername
	stepToken
	stepBranch
	stepOptions
	stepReview
	stepDone
)

// Defaults prefill the wizard from config, git context, and session
// suggestions.
type Defaults struct {
	Expression string
	Repository string
	Username   string
	HasToken   bool
	Branch     string
	Hour       int
	Years      []int
}

// Choices is what the wizard collected. Confirmed false means the user
// backed out.
type Choices struct {
	Expression string
	Repository string
	Username   string
	Token      string
	Branch     string
	Create     bool
	Force      bool
	Confirmed  bool
}

// BuildPreview renders the plan summary shown at the review step.
type BuildPreview func(c Choices) (string, error)

// Model is the bubbletea model for the workflow.
type Model struct {
	styles   Styles
	step     step
	input    textinput.Model
	preview  viewport.Model
	defaults Defaults
	choices  Choices
	buildFn  BuildPreview
	errMsg   string
	quitting bool
}

// NewModel builds the workflow model.
func NewModel(defaults Defaults, buildFn BuildPreview) Model {
	ti := textinput.New()
	ti.Placeholder = "1990, 1990-1995, June 1990, ..."
	ti.SetValue(defaults.Expression)
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 40

	vp := viewport.New(80, 20)

	return Model{
		styles:   DefaultStyles(),
		step:     stepExpression,
		input:    ti,
		preview:  vp,
		defaults: defaults,
		buildFn:  buildFn,
		choices: Choices{
			Repository: defaults.Repository,
			Username:   defaults.Username,
			Branch:     defaults.Branch,
		},
	}
}

// Choices returns the collected answers after the program exits.
func (m Model) Choices() Choices {
	return m.choices
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.preview.Width = msg.Width - 4
		m.preview.Height = msg.Height - 8
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.choices.Confirmed = false
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.advance()
		}

		if m.step == stepOptions {
			return m.handleOptionKey(msg)
		}
		if m.step == stepReview {
			switch msg.String() {
			case "y", "Y":
				m.choices.Confirmed = true
				m.quitting = true
				return m, tea.Quit
			case "n", "N":
				m.choices.Confirmed = false
				m.quitting = true
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.preview, cmd = m.preview.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// advance validates the current field and moves to the next step.
func (m Model) advance() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	m.errMsg = ""

	switch m.step {
	case stepExpression:
		if _, err := dateparse.Parse(value); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.choices.Expression = value
		m.toInput(stepRepository, m.choices.Repository, "repository name")

	case stepRepository:
		if value == "" {
			m.errMsg = "repository name is required"
			return m, nil
		}
		m.choices.Repository = value
		m.toInput(stepUsername, m.choices.Username, "GitHub username")

	case stepUsername:
		if value == "" {
			m.errMsg = "username is required"
			return m, nil
		}
		m.choices.Username = value
		m.toInput(stepToken, "", "GitHub token")
		m.input.EchoMode = textinput.EchoPassword
		if m.defaults.HasToken {
			m.input.Placeholder = "(keep configured token)"
		}

	case stepToken:
		if value == "" && !m.defaults.HasToken {
			m.errMsg = "a GitHub token is required"
			return m, nil
		}
		m.choices.Token = value
		m.input.EchoMode = textinput.EchoNormal
		m.toInput(stepBranch, m.choices.Branch, "branch")

	case stepBranch:
		if value != "" {
			m.choices.Branch = value
		}
		m.step = stepOptions

	case stepOptions:
		preview, err := m.buildFn(m.choices)
		if err != nil {
			m.errMsg = err.Error()
			m.step = stepExpression
			m.toInput(stepExpression, m.choices.Expression, "date expression")
			return m, nil
		}
		m.preview.SetContent(preview)
		m.step = stepReview
	}

	return m, nil
}

func (m *Model) toInput(next step, value, placeholder string) {
	m.step = next
	m.input.SetValue(value)
	m.input.Placeholder = placeholder
	m.input.CursorEnd()
}

func (m Model) handleOptionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "c":
		m.choices.Create = !m.choices.Create
	case "f":
		m.choices.Force = !m.choices.Force
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("chronogit — interactive time travel"))
	b.WriteString("\n")
	b.WriteString(m.styles.Subtitle.Render("Create backdated commits for your GitHub profile"))
	b.WriteString("\n\n")

	switch m.step {
	case stepExpression:
		b.WriteString(m.styles.Prompt.Render("Which dates?"))
		b.WriteString("\n" + m.input.View() + "\n")
		if len(m.defaults.Years) > 0 {
			b.WriteString(m.styles.Hint.Render(
				fmt.Sprintf("Recent years: %s", joinYears(m.defaults.Years))) + "\n")
		}
		b.WriteString(m.styles.Hint.Render("A year, month, date, range, or list of years") + "\n")

	case stepRepository:
		b.WriteString(m.styles.Prompt.Render("Which repository?"))
		b.WriteString("\n" + m.input.View() + "\n")

	case stepUsername:
		b.WriteString(m.styles.Prompt.Render("GitHub username?"))
		b.WriteString("\n" + m.input.View() + "\n")

	case stepToken:
		b.WriteString(m.styles.Prompt.Render("GitHub token?"))
		b.WriteString("\n" + m.input.View() + "\n")
		if m.defaults.HasToken {
			b.WriteString(m.styles.Hint.Render("Leave empty to use the configured token") + "\n")
		}

	case stepBranch:
		b.WriteString(m.styles.Prompt.Render("Branch?"))
		b.WriteString("\n" + m.input.View() + "\n")

	case stepOptions:
		b.WriteString(m.styles.Prompt.Render("Options"))
		b.WriteString("\n")
		b.WriteString(checkbox("c", "Create repository if missing", m.choices.Create))
		b.WriteString(checkbox("f", "Force push", m.choices.Force))
		if m.choices.Force {
			b.WriteString(m.styles.Warning.Render("  Force push overwrites remote history") + "\n")
		}
		b.WriteString(m.styles.Hint.Render("Press enter to review the plan") + "\n")

	case stepReview:
		b.WriteString(m.styles.Box.Render(m.preview.View()))
		b.WriteString("\n")
		b.WriteString(m.styles.Prompt.Render("Proceed? (y/n)") + "\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n" + m.styles.Error.Render(m.errMsg) + "\n")
	}
	b.WriteString("\n" + m.styles.Hint.Render("enter: continue • esc: quit"))
	return b.String()
}

func checkbox(key, label string, checked bool) string {
	mark := "[ ]"
	if checked {
		mark = "[x]"
	}
	return fmt.Sprintf("  %s %s (%s)\n", mark, label, key)
}

func joinYears(years []int) string {
	parts := make([]string, 0, len(years))
	for _, y := range years {
		parts = append(parts, fmt.Sprintf("%d", y))
	}
	return strings.Join(parts, ", ")
}
