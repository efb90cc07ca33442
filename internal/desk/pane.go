package desk

import tea "github.com/charmbracelet/bubbletea"

// pane is the content hosted inside a window.
type pane interface {
	// Update handles a key or mouse message routed to the window.
	Update(msg tea.Msg) tea.Cmd
	// View renders the body at exactly width x height cells.
	View(width, height int) []string
	Focus()
	Blur()
}

// contentRef is the window content reference the manager stores.
type contentRef struct {
	kind string // "view", "write" or "edit"
	slug string
}
