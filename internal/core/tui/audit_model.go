package tui

import (
	"github.com/Lin-Jiong-HDU/guardrail/internal/core/audit"
	tea "github.com/charmbracelet/bubbletea"
)

// filters are cycled with tab; the empty status shows everything.
var filters = []audit.Status{
	"",
	audit.StatusRejected,
	audit.StatusFailed,
	audit.StatusCompleted,
	audit.StatusExecuting,
	audit.StatusAccepted,
}

// model is the Bubble Tea model for the audit log browser
type model struct {
	records       []audit.Record
	filter        int
	cursor        int
	keys          keyMap
	showingDetail bool
	reload        ReloadFunc
	pendingG      bool // Tracks if 'g' was pressed for 'gg' command
	width         int
	height        int
	renderer      *Renderer
}

// NewModel creates a browser over records. reload may be nil.
func NewModel(records []audit.Record, reload ReloadFunc) Model {
	return model{
		records:  records,
		keys:     defaultKeyMap(),
		reload:   reload,
		renderer: NewRenderer(),
	}
}

// Init initializes the model
func (m model) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case RecordsLoadedMsg:
		m.records = msg.Records
		m.clampCursor()
		return m, nil
	}

	return m, nil
}

func (m model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC, msg.String() == "q":
		return m, tea.Quit
	case msg.Type == tea.KeyEsc:
		if m.showingDetail {
			m.showingDetail = false
			return m, nil
		}
		return m, tea.Quit
	case msg.Type == tea.KeyEnter:
		if _, ok := m.Selected(); ok {
			m.showingDetail = !m.showingDetail
		}
		return m, nil
	case msg.Type == tea.KeyTab:
		m.filter = (m.filter + 1) % len(filters)
		m.cursor = 0
		m.pendingG = false
		return m, nil
	}

	visible := len(m.visible())

	switch msg.String() {
	case "k", "up":
		m.pendingG = false
		if m.cursor > 0 {
			m.cursor--
		}
	case "j", "down":
		m.pendingG = false
		if m.cursor < visible-1 {
			m.cursor++
		}
	case "g":
		if m.pendingG {
			m.cursor = 0
			m.pendingG = false
		} else {
			m.pendingG = true
		}
	case "G":
		m.pendingG = false
		if visible > 0 {
			m.cursor = visible - 1
		}
	case "r":
		m.pendingG = false
		if m.reload != nil {
			reload := m.reload
			return m, func() tea.Msg {
				return RecordsLoadedMsg{Records: reload()}
			}
		}
	default:
		m.pendingG = false
	}

	return m, nil
}

// View renders the UI
func (m model) View() string {
	if m.showingDetail {
		if r, ok := m.Selected(); ok {
			return m.renderer.RenderDetail(r)
		}
	}
	return m.renderer.Render(m)
}

// Selected returns the record under the cursor.
func (m model) Selected() (audit.Record, bool) {
	visible := m.visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return audit.Record{}, false
	}
	return visible[m.cursor], true
}

// visible returns the records matching the filter, newest first.
func (m model) visible() []audit.Record {
	status := filters[m.filter]
	out := make([]audit.Record, 0, len(m.records))
	for i := len(m.records) - 1; i >= 0; i-- {
		if status == "" || m.records[i].Status == status {
			out = append(out, m.records[i])
		}
	}
	return out
}

func (m *model) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func filterName(status audit.Status) string {
	if status == "" {
		return "all"
	}
	return string(status)
}
