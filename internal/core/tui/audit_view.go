package tui

import (
	"fmt"
	"strings"

	"github.com/Lin-Jiong-HDU/guardrail/internal/core/audit"
	"github.com/charmbracelet/lipgloss"
)

// Renderer handles TUI rendering
type Renderer struct {
	style *StyleConfig
}

// StyleConfig defines visual styles
type StyleConfig struct {
	TitleColor    lipgloss.Color
	SubtleColor   lipgloss.Color
	ErrorColor    lipgloss.Color
	SuccessColor  lipgloss.Color
	WarningColor  lipgloss.Color
	SelectedColor lipgloss.Color
	BorderColor   lipgloss.Color
}

// DefaultStyleConfig returns the default style configuration
func DefaultStyleConfig() *StyleConfig {
	return &StyleConfig{
		TitleColor:    lipgloss.Color("10"),  // Green
		SubtleColor:   lipgloss.Color("241"), // Grey
		ErrorColor:    lipgloss.Color("9"),   // Red
		SuccessColor:  lipgloss.Color("10"),  // Green
		WarningColor:  lipgloss.Color("11"),  // Yellow
		SelectedColor: lipgloss.Color("12"),  // Blue
		BorderColor:   lipgloss.Color("8"),   // Dark grey
	}
}

// NewRenderer creates a new TUI renderer
func NewRenderer() *Renderer {
	return &Renderer{style: DefaultStyleConfig()}
}

const maxInputWidth = 60

// Render renders the record list
func (r *Renderer) Render(m model) string {
	var b strings.Builder

	b.WriteString(r.renderHeader(m))
	b.WriteString("\n")

	visible := m.visible()
	if len(visible) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(r.style.SubtleColor).Render("\n  No records\n"))
	} else {
		for i, rec := range visible {
			b.WriteString(r.renderRecord(rec, i == m.cursor))
		}
	}

	b.WriteString(r.renderFooter(m))
	return b.String()
}

func (r *Renderer) renderHeader(m model) string {
	title := lipgloss.NewStyle().
		Foreground(r.style.TitleColor).
		Bold(true).
		Render("guardrail audit log")

	filter := lipgloss.NewStyle().
		Foreground(r.style.SubtleColor).
		Render(fmt.Sprintf("filter: %s (%d of %d)", filterName(filters[m.filter]), len(m.visible()), len(m.records)))

	border := lipgloss.NewStyle().
		Foreground(r.style.BorderColor).
		Render(strings.Repeat("─", 62))

	return title + "  " + filter + "\n" + border
}

func (r *Renderer) renderRecord(rec audit.Record, selected bool) string {
	cursor := " "
	if selected {
		cursor = lipgloss.NewStyle().Foreground(r.style.SelectedColor).Render(">")
	}

	input := rec.Input
	if runes := []rune(input); len(runes) > maxInputWidth {
		input = string(runes[:maxInputWidth-3]) + "..."
	}

	return fmt.Sprintf("  %s [%s] %s %-17s %s\n",
		cursor,
		r.renderStatus(rec.Status),
		lipgloss.NewStyle().Foreground(r.style.SubtleColor).Render(rec.CreatedAt.Format("01-02 15:04:05")),
		rec.Operation,
		input)
}

func (r *Renderer) renderStatus(status audit.Status) string {
	var symbol string
	var color lipgloss.Color

	switch status {
	case audit.StatusAccepted:
		symbol = " "
		color = r.style.SubtleColor
	case audit.StatusRejected:
		symbol = "✗"
		color = r.style.ErrorColor
	case audit.StatusExecuting:
		symbol = "⋯"
		color = r.style.WarningColor
	case audit.StatusCompleted:
		symbol = "✓"
		color = r.style.SuccessColor
	case audit.StatusFailed:
		symbol = "!"
		color = r.style.ErrorColor
	default:
		symbol = "?"
		color = r.style.SubtleColor
	}

	return lipgloss.NewStyle().Foreground(color).Render(symbol)
}

// RenderDetail renders a single record
func (r *Renderer) RenderDetail(rec audit.Record) string {
	label := lipgloss.NewStyle().Foreground(r.style.SubtleColor).Width(11)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(r.style.TitleColor).Bold(true).Render("Record "+rec.ID) + "\n\n")

	row := func(name, value string) {
		if value == "" {
			return
		}
		b.WriteString(label.Render(name) + value + "\n")
	}
	row("status", r.renderStatus(rec.Status)+" "+string(rec.Status))
	row("operation", rec.Operation)
	row("input", rec.Input)
	row("command", rec.Command)
	row("kind", string(rec.Kind))
	row("reason", rec.Reason)
	row("created", rec.CreatedAt.Format("2006-01-02 15:04:05"))
	row("updated", rec.UpdatedAt.Format("2006-01-02 15:04:05"))

	if rec.Result != nil {
		row("exit code", fmt.Sprint(rec.Result.ExitCode))
		row("error", rec.Result.Error)
		if rec.Result.Output != "" {
			b.WriteString("\n" + lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(r.style.BorderColor).
				Padding(0, 1).
				Render(rec.Result.Output) + "\n")
		}
	}

	b.WriteString("\n" + lipgloss.NewStyle().Foreground(r.style.SubtleColor).Render("esc back  q quit") + "\n")
	return b.String()
}

func (r *Renderer) renderFooter(m model) string {
	return "\n" + lipgloss.NewStyle().Foreground(r.style.SubtleColor).Render(m.keys.View()) + "\n"
}
