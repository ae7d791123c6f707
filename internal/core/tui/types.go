package tui

import (
	"github.com/Lin-Jiong-HDU/guardrail/internal/core/audit"
	tea "github.com/charmbracelet/bubbletea"
)

// ReloadFunc fetches the current audit records
type ReloadFunc func() []audit.Record

// RecordsLoadedMsg is sent when records are reloaded
type RecordsLoadedMsg struct {
	Records []audit.Record
}

// Model is the interface for the TUI model
type Model interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (tea.Model, tea.Cmd)
	View() string
}
