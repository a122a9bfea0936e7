package plan

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2196F3"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFC107"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4db6ac"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f2f2f2"))
	riskStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// RenderOptions control how much of the plan is shown.
type RenderOptions struct {
	ShowOperations bool
	ShowPreviews   bool
	ShowRisks      bool
}

// DefaultRenderOptions shows everything except file previews.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{ShowOperations: true, ShowRisks: true}
}

// Render produces the terminal preview of the plan.
func Render(p *Plan, opts RenderOptions) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Dry Run - Preview of Operations"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("No changes will be made to your repositories"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Operation Summary"))
	b.WriteString("\n")
	writeField(&b, "Total Operations", fmt.Sprintf("%d", p.Summary.TotalOperations))
	writeField(&b, "Years to Process", formatYears(p.Summary.Years))
	writeField(&b, "Repository", p.Summary.Repository)
	writeField(&b, "Files to Create", fmt.Sprintf("%d", len(p.Summary.FilesToCreate)))
	writeField(&b, "Commits to Create", fmt.Sprintf("%d", p.Summary.CommitsToCreate))
	writeField(&b, "Estimated Duration", fmt.Sprintf("~%d seconds", int(p.Summary.EstimatedDuration.Seconds())))
	b.WriteString("\n")

	if opts.ShowRisks && len(p.Risks) > 0 {
		b.WriteString(sectionStyle.Render("Potential Risks"))
		b.WriteString("\n")
		for _, risk := range p.Risks {
			b.WriteString("  " + riskStyle.Render("• "+risk) + "\n")
		}
		b.WriteString("\n")
	}

	if len(p.Confirmations) > 0 {
		b.WriteString(sectionStyle.Render("Confirmations Needed"))
		b.WriteString("\n")
		for _, c := range p.Confirmations {
			b.WriteString("  • " + c + "\n")
		}
		b.WriteString("\n")
	}

	if opts.ShowOperations {
		b.WriteString(headerStyle.Render("Detailed Operations"))
		b.WriteString("\n")
		for i, op := range p.Operations {
			b.WriteString(fmt.Sprintf("  %s %s\n",
				stepStyle.Render(fmt.Sprintf("%d.", i+1)), op.Describe()))
			if create, ok := op.(CreateFile); ok && opts.ShowPreviews {
				for _, line := range strings.Split(create.Preview, "\n") {
					b.WriteString("      " + dimStyle.Render(line) + "\n")
				}
			}
			if commit, ok := op.(CreateCommit); ok {
				b.WriteString("      " + dimStyle.Render("Author: "+commit.Author.String()) + "\n")
				b.WriteString("      " + dimStyle.Render("Message: "+commit.Message) + "\n")
			}
		}
	}

	return b.String()
}

// Markdown renders the plan as a markdown document, for piping into
// files or issues.
func Markdown(p *Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Time Travel Plan\n\n")
	fmt.Fprintf(&b, "Plan `%s`, created %s.\n\n", p.ID, p.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "## Summary\n\n")
	fmt.Fprintf(&b, "| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Repository | %s |\n", p.Summary.Repository)
	fmt.Fprintf(&b, "| Years | %s |\n", formatYears(p.Summary.Years))
	fmt.Fprintf(&b, "| Commits | %d |\n", p.Summary.CommitsToCreate)
	fmt.Fprintf(&b, "| Operations | %d |\n\n", p.Summary.TotalOperations)

	if len(p.Risks) > 0 {
		fmt.Fprintf(&b, "## Risks\n\n")
		for _, risk := range p.Risks {
			fmt.Fprintf(&b, "- %s\n", risk)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Operations\n\n")
	for i, op := range p.Operations {
		fmt.Fprintf(&b, "%d. %s\n", i+1, op.Describe())
	}
	return b.String()
}

// RenderMarkdown renders the markdown form of the plan through glamour
// for rich terminal output. Falls back to plain markdown when the
// renderer cannot be built.
func RenderMarkdown(p *Plan) string {
	md := Markdown(p)
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}

func writeField(b *strings.Builder, label, value string) {
	b.WriteString("  " + labelStyle.Render(label+":") + " " + valueStyle.Render(value) + "\n")
}

func formatYears(years []int) string {
	switch len(years) {
	case 0:
		return "none"
	case 1:
		return fmt.Sprintf("%d", years[0])
	default:
		return fmt.Sprintf("%d years (%d-%d)", len(years), years[0], years[len(years)-1])
	}
}
