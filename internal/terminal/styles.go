package terminal

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// StyleConfig defines visual styles
type StyleConfig struct {
	TitleColor   lipgloss.Color
	SubtleColor  lipgloss.Color
	ErrorColor   lipgloss.Color
	SuccessColor lipgloss.Color
	WarningColor lipgloss.Color
}

// DefaultStyleConfig returns the default style configuration
func DefaultStyleConfig() *StyleConfig {
	return &StyleConfig{
		TitleColor:   lipgloss.Color("12"),  // Blue
		SubtleColor:  lipgloss.Color("241"), // Grey
		ErrorColor:   lipgloss.Color("9"),   // Red
		SuccessColor: lipgloss.Color("10"),  // Green
		WarningColor: lipgloss.Color("11"),  // Yellow
	}
}

// Accepted formats a positive verdict for field.
func (s *StyleConfig) Accepted(field, value string) string {
	mark := lipgloss.NewStyle().Foreground(s.SuccessColor).Bold(true).Render("✓ " + field)
	return fmt.Sprintf("%s %s", mark, value)
}

// Rejected formats a rejection with its kind and reason.
func (s *StyleConfig) Rejected(field, kind, reason string) string {
	mark := lipgloss.NewStyle().Foreground(s.ErrorColor).Bold(true).Render("✗ " + field)
	tag := lipgloss.NewStyle().Foreground(s.SubtleColor).Render("[" + kind + "]")
	return fmt.Sprintf("%s %s %s", mark, tag, reason)
}

// Title formats a section heading.
func (s *StyleConfig) Title(text string) string {
	return lipgloss.NewStyle().Foreground(s.TitleColor).Bold(true).Render(text)
}

// Warning formats a caution line.
func (s *StyleConfig) Warning(text string) string {
	return lipgloss.NewStyle().Foreground(s.WarningColor).Render(text)
}

// Subtle formats secondary text.
func (s *StyleConfig) Subtle(text string) string {
	return lipgloss.NewStyle().Foreground(s.SubtleColor).Render(text)
}
