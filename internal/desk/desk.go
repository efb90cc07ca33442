// Package desk is a terminal desktop for algonotes: a post list on the
// desktop, posts opened in draggable and resizable windows, and a dock.
// Window state lives in a window.Manager; pointer input runs through a
// window.Gesture.
package desk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/algonotes/internal/client"
	"github.com/starford/algonotes/internal/models"
	"github.com/starford/algonotes/internal/sse"
	"github.com/starford/algonotes/internal/window"
)

const (
	listTop     = 3 // header, filter and a spacer sit above the items
	cascadeStep = 6
)

type focusTarget int

const (
	focusList focusTarget = iota
	focusFilter
	focusWindow
)

// Options configures the desk.
type Options struct {
	// MinSize floors window sizes in cells.
	MinSize window.Size
	// DoubleClick is the title bar double activation interval.
	DoubleClick time.Duration
	Logger      *slog.Logger
}

// Model is the bubbletea model of the desk.
type Model struct {
	ctx    context.Context
	api    API
	logger *slog.Logger

	wm      *window.Manager
	gesture *window.Gesture
	chrome  window.Chrome
	panes   map[window.ID]pane
	opened  int

	width, height int

	posts    []models.PostSummary
	selected int
	filter   textinput.Model
	query    string
	focus    focusTarget
	status   string
}

// New creates a desk backed by api.
func New(ctx context.Context, api API, opts Options) Model {
	if opts.MinSize == (window.Size{}) {
		opts.MinSize = window.Size{W: 40, H: 10}
	}
	if opts.DoubleClick == 0 {
		opts.DoubleClick = 400 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	filter := textinput.New()
	filter.Prompt = ""
	filter.Placeholder = "search"

	chrome := window.CellChrome
	return Model{
		ctx:    ctx,
		api:    api,
		logger: opts.Logger,
		wm: window.NewManager(window.Config{
			BaseZ:           1,
			MinSize:         opts.MinSize,
			DefaultPosition: window.Point{X: 2, Y: 1},
			DefaultSize:     window.Size{W: 80, H: 24},
			Viewport:        window.Size{W: 80, H: 24},
			MaximizeInsets:  window.Insets{Left: 1, Right: 1},
		}),
		gesture: window.NewGesture(chrome, window.WithDoubleActivation(opts.DoubleClick)),
		chrome:  chrome,
		panes:   make(map[window.ID]pane),
		filter:  filter,
	}
}

// Run starts the desk full screen and blocks until it quits or ctx ends.
func Run(ctx context.Context, api API, opts Options) error {
	p := tea.NewProgram(New(ctx, api, opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.reload(), subscribe(m.ctx, m.api))
}

func (m Model) reload() tea.Cmd {
	return loadPosts(m.ctx, m.api, client.Filter{Query: m.query})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.wm.SetViewport(window.Size{W: msg.Width, H: m.deskHeight()})

	case tea.KeyMsg:
		m, cmd = m.handleKey(msg)

	case tea.MouseMsg:
		m, cmd = m.handleMouse(msg)

	case postsLoadedMsg:
		if msg.err != nil {
			m.fail("list posts", msg.err)
			break
		}
		m.posts = msg.posts
		m.selected = clamp(m.selected, 0, len(m.posts)-1)

	case postLoadedMsg:
		if v, ok := m.panes[msg.win].(*viewerPane); ok {
			v.setPost(msg.post, msg.err)
			if msg.post != nil {
				m.wm.SetTitle(msg.win, msg.post.Title)
			}
		}

	case submitMsg:
		cmd = savePost(m.ctx, m.api, msg)

	case savedMsg:
		cmd = m.handleSaved(msg)

	case editRequestMsg:
		cmd = m.openForm(msg.post)

	case deleteRequestMsg:
		cmd = deletePost(m.ctx, m.api, msg.slug)

	case deletedMsg:
		if msg.err != nil {
			m.fail("delete "+msg.slug, msg.err)
			break
		}
		for _, w := range m.wm.Windows() {
			if ref, ok := w.Content.(contentRef); ok && ref.slug == msg.slug {
				m.closeWindow(w.ID)
			}
		}
		m.status = "deleted " + msg.slug
		cmd = m.reload()

	case closeRequestMsg:
		m.closeWindow(msg.win)

	case eventsReadyMsg:
		cmd = waitEvent(msg.ch)

	case eventMsg:
		cmd = tea.Batch(waitEvent(msg.ch), m.handleEvent(msg.ev))

	default:
		if m.focus == focusFilter {
			m.filter, cmd = m.filter.Update(msg)
		} else if p, ok := m.focusedPane(); ok {
			cmd = p.Update(msg)
		}
	}

	m.syncFocus()
	return m, cmd
}

func (m *Model) fail(op string, err error) {
	m.logger.Warn("desk: "+op+" failed", slog.String("error", err.Error()))
	m.status = op + ": " + errMessage(err)
}

func errMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

func (m *Model) handleSaved(msg savedMsg) tea.Cmd {
	form, ok := m.panes[msg.win].(*formPane)
	if !ok {
		return nil
	}
	form.saved(msg.err)
	if msg.err != nil {
		m.logger.Warn("desk: save failed", slog.String("error", msg.err.Error()))
		return nil
	}

	oldSlug, newSlug := form.slug, msg.res.Slug
	cmds := []tea.Cmd{m.reload()}

	// A rename moves every viewer of the old slug.
	if oldSlug != "" && oldSlug != newSlug {
		for _, w := range m.wm.Windows() {
			if ref, ok := w.Content.(contentRef); ok && ref.kind == "view" && ref.slug == oldSlug {
				m.wm.SetContent(w.ID, contentRef{kind: "view", slug: newSlug})
				if v, ok := m.panes[w.ID].(*viewerPane); ok {
					v.slug = newSlug
				}
			}
		}
	}
	for _, w := range m.wm.Windows() {
		if ref, ok := w.Content.(contentRef); ok && ref.kind == "view" && ref.slug == newSlug {
			cmds = append(cmds, loadPost(m.ctx, m.api, w.ID, newSlug))
		}
	}

	// An edit returns to the viewer it came from; otherwise the form window
	// turns into a viewer of the saved post.
	m.status = "saved " + newSlug
	if id, ok := m.find(contentRef{kind: "view", slug: newSlug}); ok {
		m.closeWindow(msg.win)
		m.focusWindow(id)
		return tea.Batch(cmds...)
	}
	v := newViewerPane(msg.win, newSlug)
	m.panes[msg.win] = v
	m.wm.SetContent(msg.win, contentRef{kind: "view", slug: newSlug})
	m.wm.SetTitle(msg.win, newSlug)
	cmds = append(cmds, loadPost(m.ctx, m.api, msg.win, newSlug))
	return tea.Batch(cmds...)
}

func (m *Model) handleEvent(ev client.Event) tea.Cmd {
	if !strings.HasPrefix(ev.Type, "post.") {
		return nil
	}
	cmds := []tea.Cmd{m.reload()}
	for _, w := range m.wm.Windows() {
		ref, ok := w.Content.(contentRef)
		if !ok || ref.kind != "view" || ref.slug != ev.Slug {
			continue
		}
		switch ev.Type {
		case sse.TypePostUpdated, sse.TypePostCreated:
			cmds = append(cmds, loadPost(m.ctx, m.api, w.ID, ev.Slug))
		case sse.TypePostDeleted:
			if v, ok := m.panes[w.ID].(*viewerPane); ok {
				v.setPost(nil, fmt.Errorf("%s was deleted", ev.Slug))
			}
		}
	}
	return tea.Batch(cmds...)
}

// Keyboard.

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.focus {
	case focusFilter:
		switch key {
		case "enter", "esc":
			m.focus = focusList
			m.filter.Blur()
			if key == "enter" {
				m.query = strings.TrimSpace(m.filter.Value())
				m.selected = 0
				cmd := m.reload()
				return m, cmd
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		return m, cmd

	case focusWindow:
		if top, ok := m.wm.Top(); ok {
			cmd := m.windowKey(top, msg)
			return m, cmd
		}
		m.focus = focusList
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.selected = clamp(m.selected-1, 0, len(m.posts)-1)
	case "down", "j":
		m.selected = clamp(m.selected+1, 0, len(m.posts)-1)
	case "enter", "o":
		if m.selected < len(m.posts) {
			cmd := m.openViewer(m.posts[m.selected].Slug)
			return m, cmd
		}
	case "n", "ctrl+o":
		cmd := m.openForm(nil)
		return m, cmd
	case "/":
		m.focus = focusFilter
		cmd := m.filter.Focus()
		return m, cmd
	case "r":
		cmd := m.reload()
		return m, cmd
	case "tab", "f6":
		if top, ok := m.wm.Top(); ok {
			m.focusWindow(top.ID)
		}
	}
	return m, nil
}

func (m *Model) windowKey(top window.Window, msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+x", "f4":
		m.closeWindow(top.ID)
	case "f2":
		m.wm.Minimize(top.ID, true)
		m.focusNext()
	case "f3":
		m.wm.ToggleMaximize(top.ID)
	case "f6":
		m.cycle()
	case "ctrl+g":
		m.focus = focusList
	case "ctrl+o":
		return m.openForm(nil)
	case "ctrl+up":
		m.moveBy(top, 0, -1)
	case "ctrl+down":
		m.moveBy(top, 0, 1)
	case "ctrl+left":
		m.moveBy(top, -2, 0)
	case "ctrl+right":
		m.moveBy(top, 2, 0)
	case "shift+up":
		m.resizeBy(top, 0, -1)
	case "shift+down":
		m.resizeBy(top, 0, 1)
	case "shift+left":
		m.resizeBy(top, -2, 0)
	case "shift+right":
		m.resizeBy(top, 2, 0)
	default:
		if p, ok := m.panes[top.ID]; ok {
			return p.Update(msg)
		}
	}
	return nil
}

func (m *Model) moveBy(w window.Window, dx, dy int) {
	if w.Maximized {
		return
	}
	pos := w.Position.Add(window.Point{X: dx, Y: dy})
	m.wm.UpdateGeometry(w.ID, &pos, nil)
}

func (m *Model) resizeBy(w window.Window, dw, dh int) {
	if w.Maximized {
		return
	}
	size := window.Size{W: w.Size.W + dw, H: w.Size.H + dh}
	m.wm.UpdateGeometry(w.ID, nil, &size)
}

// cycle brings the bottom-most visible window to front.
func (m *Model) cycle() {
	for _, w := range m.wm.Windows() {
		if !w.Minimized {
			m.focusWindow(w.ID)
			return
		}
	}
}

// Mouse.

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	p := window.Point{X: msg.X, Y: msg.Y}

	if msg.Y == m.height-1 && msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		cmd := m.dockClick(msg.X)
		return m, cmd
	}

	switch msg.Action {
	case tea.MouseActionMotion:
		if m.gesture.State() != window.Idle {
			m.gesture.PointerMove(m.wm, p)
			return m, nil
		}
	case tea.MouseActionRelease:
		if m.gesture.State() != window.Idle {
			m.gesture.PointerUp()
			return m, nil
		}
	}

	if msg.Action != tea.MouseActionPress {
		return m, nil
	}

	if msg.Button != tea.MouseButtonLeft {
		// Wheel and other buttons go to the window underneath or the list.
		if w, ok := m.wm.WindowAt(p); ok {
			if pn, ok := m.panes[w.ID]; ok {
				return m, pn.Update(localMouse(msg, w))
			}
			return m, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.selected = clamp(m.selected-1, 0, len(m.posts)-1)
		case tea.MouseButtonWheelDown:
			m.selected = clamp(m.selected+1, 0, len(m.posts)-1)
		}
		return m, nil
	}

	hit := m.gesture.PointerDown(m.wm, p)
	switch hit.Region {
	case window.RegionNone:
		m.focus = focusList
		if idx, ok := m.listIndexAt(p); ok {
			m.selected = idx
			cmd := m.openViewer(m.posts[idx].Slug)
			return m, cmd
		}
	case window.RegionClose:
		m.closeWindow(hit.Window)
	case window.RegionMinimize:
		m.focusNext()
	case window.RegionBody:
		m.focusWindow(hit.Window)
		if w, ok := m.wm.Get(hit.Window); ok {
			if pn, ok := m.panes[w.ID]; ok {
				return m, pn.Update(localMouse(msg, w))
			}
		}
	default:
		m.focusWindow(hit.Window)
	}
	return m, nil
}

// localMouse translates a mouse event into body coordinates of w.
func localMouse(msg tea.MouseMsg, w window.Window) tea.MouseMsg {
	msg.X -= w.Position.X + 1
	msg.Y -= w.Position.Y + 1
	return msg
}

func (m *Model) dockClick(x int) tea.Cmd {
	top, hasTop := m.wm.Top()
	active := window.ID(0)
	if hasTop && m.focus == focusWindow {
		active = top.ID
	}
	it, ok := dockHit(layoutDock(m.wm.Windows(), active, m.width), x)
	if !ok {
		return nil
	}
	switch it.kind {
	case dockPosts:
		m.focus = focusList
	case dockWrite:
		return m.openForm(nil)
	case dockWindow:
		if it.active {
			m.wm.Minimize(it.win, true)
			m.focusNext()
		} else {
			m.focusWindow(it.win)
		}
	}
	return nil
}

func (m Model) listIndexAt(p window.Point) (int, bool) {
	if p.X >= m.listWidth() || p.Y < listTop || p.Y >= m.deskHeight() {
		return 0, false
	}
	idx := m.listOffset() + p.Y - listTop
	if idx < 0 || idx >= len(m.posts) {
		return 0, false
	}
	return idx, true
}

// Windows.

func (m *Model) find(ref contentRef) (window.ID, bool) {
	for _, w := range m.wm.Windows() {
		if w.Content == ref {
			return w.ID, true
		}
	}
	return 0, false
}

func (m *Model) openWindow(title string, ref contentRef) window.ID {
	k := m.opened % cascadeStep
	m.opened++
	x := min(m.listWidth()+1+2*k, max(m.width-20, 0))
	y := 1 + k
	pos := window.Point{X: x, Y: y}
	size := window.Size{
		W: min(m.width-x-1, 96),
		H: min(m.deskHeight()-y-1, 32),
	}
	id := m.wm.Open(window.Descriptor{Title: title, Content: ref, Position: &pos, Size: &size})
	m.focusWindow(id)
	return id
}

func (m *Model) openViewer(slug string) tea.Cmd {
	ref := contentRef{kind: "view", slug: slug}
	if id, ok := m.find(ref); ok {
		m.focusWindow(id)
		return nil
	}
	id := m.openWindow(slug, ref)
	m.panes[id] = newViewerPane(id, slug)
	return loadPost(m.ctx, m.api, id, slug)
}

func (m *Model) openForm(post *models.Post) tea.Cmd {
	if post == nil {
		id := m.openWindow("New post", contentRef{kind: "write"})
		m.panes[id] = newFormPane(id, nil)
		return nil
	}
	ref := contentRef{kind: "edit", slug: post.Slug}
	if id, ok := m.find(ref); ok {
		m.focusWindow(id)
		return nil
	}
	id := m.openWindow("Edit: "+post.Title, ref)
	m.panes[id] = newFormPane(id, post)
	return nil
}

func (m *Model) closeWindow(id window.ID) {
	m.wm.Close(id)
	delete(m.panes, id)
	m.focusNext()
}

func (m *Model) focusWindow(id window.ID) {
	m.wm.Minimize(id, false)
	m.wm.BringToFront(id)
	m.focus = focusWindow
}

// focusNext hands focus to the topmost visible window, or the list.
func (m *Model) focusNext() {
	for id := range m.panes {
		if _, ok := m.wm.Get(id); !ok {
			delete(m.panes, id)
		}
	}
	if _, ok := m.wm.Top(); ok {
		m.focus = focusWindow
		return
	}
	m.focus = focusList
}

func (m Model) focusedPane() (pane, bool) {
	if m.focus != focusWindow {
		return nil, false
	}
	top, ok := m.wm.Top()
	if !ok {
		return nil, false
	}
	p, ok := m.panes[top.ID]
	return p, ok
}

func (m *Model) syncFocus() {
	focused, _ := m.focusedPane()
	for _, p := range m.panes {
		if p == focused {
			p.Focus()
		} else {
			p.Blur()
		}
	}
}

// Layout.

func (m Model) deskHeight() int { return max(m.height-1, 0) }

func (m Model) listWidth() int {
	return clamp(m.width/3, min(24, m.width), min(40, m.width))
}

func (m Model) listOffset() int {
	visible := m.deskHeight() - listTop
	if visible <= 0 || m.selected < visible {
		return 0
	}
	return m.selected - visible + 1
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}

// View.

func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return "loading…"
	}
	c := newCanvas(m.width, m.height)
	c.paint(0, 0, m.desktopLines())

	top, hasTop := m.wm.Top()
	focused := hasTop && m.focus == focusWindow
	for _, w := range m.wm.Windows() {
		if w.Minimized {
			continue
		}
		var body []string
		if p, ok := m.panes[w.ID]; ok {
			body = p.View(w.Size.W-2, w.Size.H-2)
		}
		c.paint(w.Position.X, w.Position.Y, frame(w, m.chrome, body, focused && w.ID == top.ID))
	}

	active := window.ID(0)
	if focused {
		active = top.ID
	}
	dock := renderDock(layoutDock(m.wm.Windows(), active, m.width), m.status, m.width)
	c.paint(0, m.height-1, []string{dock})
	return c.String()
}

func (m Model) desktopLines() []string {
	lw := m.listWidth()
	h := m.deskHeight()
	lines := make([]string, 0, h)

	header := headerStyle.Render(fit(fmt.Sprintf(" algonotes · %d posts", len(m.posts)), lw))
	lines = append(lines, header)

	var filterLine string
	switch {
	case m.focus == focusFilter:
		filterLine = " / " + m.filter.View()
	case m.query != "":
		filterLine = mutedStyle.Render(" / " + m.query)
	default:
		filterLine = mutedStyle.Render(" / search · n new · q quit")
	}
	lines = append(lines, fit(filterLine, lw), "")

	offset := m.listOffset()
	for i := offset; i < len(m.posts) && len(lines) < h; i++ {
		lines = append(lines, m.postLine(m.posts[i], i == m.selected, lw))
	}
	if len(m.posts) == 0 && len(lines) < h {
		lines = append(lines, mutedStyle.Render(fit(" no posts", lw)))
	}

	out := make([]string, h)
	for i := range out {
		line := ""
		if i < len(lines) {
			line = lines[i]
		}
		out[i] = deskStyle.Render(fit(line, m.width))
	}
	return out
}

func (m Model) postLine(p models.PostSummary, selected bool, width int) string {
	const diffWidth = 7
	title := fit(" "+p.Title, max(width-diffWidth, 0))
	diff := strings.Repeat(" ", diffWidth)
	if p.Difficulty != nil {
		diff = fit(*p.Difficulty, diffWidth)
	}
	if selected && m.focus != focusWindow {
		return selectedStyle.Render(title + diff)
	}
	if p.Difficulty != nil {
		if st, ok := difficultyStyles[*p.Difficulty]; ok {
			diff = st.Render(diff)
		}
	}
	return itemStyle.Render(title) + diff
}
