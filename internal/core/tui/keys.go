package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// keyMap defines key bindings for the TUI
type keyMap struct {
	Up     key
	Down   key
	Top    key
	Bottom key
	Filter key
	Reload key
	Detail key
	Quit   key
}

// key represents a key binding with help text
type key struct {
	tea.Key
	help string
}

// shortHelp returns key bindings for the status bar
func (k keyMap) shortHelp() []key {
	return []key{k.Filter, k.Detail, k.Reload, k.Quit}
}

// fullHelp returns all key bindings
func (k keyMap) fullHelp() []key {
	return []key{
		k.Up, k.Down, k.Top, k.Bottom,
		k.Filter, k.Detail, k.Reload, k.Quit,
	}
}

// String returns the full help text
func (k keyMap) String() string {
	parts := make([]string, 0, len(k.fullHelp()))
	for _, b := range k.fullHelp() {
		parts = append(parts, b.help)
	}
	return strings.Join(parts, "  ")
}

// View returns the short help for the status bar
func (k keyMap) View() string {
	var s strings.Builder
	for _, b := range k.shortHelp() {
		s.WriteString("[" + b.help + "] ")
	}
	return strings.TrimSpace(s.String())
}

// defaultKeyMap creates the default key bindings
func defaultKeyMap() keyMap {
	return keyMap{
		Up: key{
			Key:  tea.Key{Type: tea.KeyRunes, Runes: []rune{'k'}},
			help: "↑/k up",
		},
		Down: key{
			Key:  tea.Key{Type: tea.KeyRunes, Runes: []rune{'j'}},
			help: "↓/j down",
		},
		Top: key{
			Key:  tea.Key{Type: tea.KeyRunes, Runes: []rune{'g'}},
			help: "gg top",
		},
		Bottom: key{
			Key:  tea.Key{Type: tea.KeyRunes, Runes: []rune{'G'}},
			help: "G bottom",
		},
		Filter: key{
			Key:  tea.Key{Type: tea.KeyTab},
			help: "tab filter",
		},
		Reload: key{
			Key:  tea.Key{Type: tea.KeyRunes, Runes: []rune{'r'}},
			help: "r reload",
		},
		Detail: key{
			Key:  tea.Key{Type: tea.KeyEnter},
			help: "enter details",
		},
		Quit: key{
			Key:  tea.Key{Type: tea.KeyRunes, Runes: []rune{'q'}},
			help: "q quit",
		},
	}
}
