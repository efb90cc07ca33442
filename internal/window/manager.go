// Package window keeps the state of floating windows on a desktop surface:
// the registry, stacking order, minimize and maximize modes, geometry
// clamps and the pointer gesture machine that drags and resizes them.
//
// Nothing here draws. Coordinates are abstract units, so the same manager
// serves pixel and terminal-cell front ends. A Manager is owned by one
// event loop and is not safe for concurrent use.
package window

import "sort"

// Config tunes a Manager. Zero fields take the values of DefaultConfig, so
// a BaseZ of 0 starts at 1000 and all-zero MaximizeInsets mean the default
// insets; pass at least one non-zero inset for an edge-to-edge layout.
type Config struct {
	// BaseZ is the stacking index given to the first window.
	BaseZ int
	// MinSize floors every window size.
	MinSize         Size
	DefaultPosition Point
	DefaultSize     Size
	// Viewport is the drawable area used by maximize.
	Viewport Size
	// MaximizeInsets are kept free around a maximized window.
	MaximizeInsets Insets
}

// DefaultConfig returns the browser-sized defaults.
func DefaultConfig() Config {
	return Config{
		BaseZ:           1000,
		MinSize:         Size{W: 400, H: 300},
		DefaultPosition: Point{X: 100, Y: 100},
		DefaultSize:     Size{W: 800, H: 600},
		Viewport:        Size{W: 1280, H: 800},
		MaximizeInsets:  Insets{Left: 20, Top: 20, Right: 20, Bottom: 80},
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BaseZ == 0 {
		c.BaseZ = d.BaseZ
	}
	if c.MinSize == (Size{}) {
		c.MinSize = d.MinSize
	}
	if c.DefaultPosition == (Point{}) {
		c.DefaultPosition = d.DefaultPosition
	}
	if c.DefaultSize == (Size{}) {
		c.DefaultSize = d.DefaultSize
	}
	if c.Viewport == (Size{}) {
		c.Viewport = d.Viewport
	}
	if c.MaximizeInsets == (Insets{}) {
		c.MaximizeInsets = d.MaximizeInsets
	}
	return c
}

// Manager is the registry of open windows.
//
// Every operation on an id that is not open is a silent no-op: callers may
// race a close against other updates.
type Manager struct {
	cfg     Config
	windows []*Window
	nextID  ID
	nextZ   int
}

// NewManager creates an empty Manager.
func NewManager(cfg Config) *Manager {
	cfg = cfg.withDefaults()
	return &Manager{
		cfg:    cfg,
		nextID: 1,
		nextZ:  cfg.BaseZ,
	}
}

// Config returns the effective configuration.
func (m *Manager) Config() Config { return m.cfg }

// Open registers a window above all others and returns its id.
func (m *Manager) Open(d Descriptor) ID {
	pos, size := m.cfg.DefaultPosition, m.cfg.DefaultSize
	if d.Position != nil {
		pos = *d.Position
	}
	if d.Size != nil {
		size = *d.Size
	}
	pos, size = m.clamp(pos, size)

	w := &Window{
		ID:       m.nextID,
		Title:    d.Title,
		Content:  d.Content,
		Position: pos,
		Size:     size,
		Z:        m.nextZ,
		initial:  geometry{pos: pos, size: size},
	}
	m.nextID++
	m.nextZ++
	m.windows = append(m.windows, w)
	return w.ID
}

// Close removes a window.
func (m *Manager) Close(id ID) {
	for i, w := range m.windows {
		if w.ID == id {
			m.windows = append(m.windows[:i], m.windows[i+1:]...)
			return
		}
	}
}

// Minimize sets or clears the minimized flag.
func (m *Manager) Minimize(id ID, minimized bool) {
	if w := m.find(id); w != nil {
		w.Minimized = minimized
	}
}

// Maximize fills the viewport (true) or restores the geometry the window
// had before it was maximized (false). Restoring a window that was never
// maximized from its current geometry falls back to its initial geometry.
func (m *Manager) Maximize(id ID, maximized bool) {
	w := m.find(id)
	if w == nil || w.Maximized == maximized {
		return
	}
	if maximized {
		w.saved = &geometry{pos: w.Position, size: w.Size}
		w.Position, w.Size = m.MaximizedGeometry()
		w.Maximized = true
		return
	}
	g := w.initial
	if w.saved != nil {
		g = *w.saved
	}
	w.Position, w.Size = g.pos, g.size
	w.saved = nil
	w.Maximized = false
}

// ToggleMaximize flips the maximized state, as a double activation of the
// title bar does.
func (m *Manager) ToggleMaximize(id ID) {
	if w := m.find(id); w != nil {
		m.Maximize(id, !w.Maximized)
	}
}

// BringToFront stacks a window above every other.
func (m *Manager) BringToFront(id ID) {
	if w := m.find(id); w != nil {
		w.Z = m.nextZ
		m.nextZ++
	}
}

// UpdateGeometry moves and/or resizes a window. Nil arguments leave that
// part unchanged. The top edge is kept at or below 0 and the size at or
// above the configured minimum.
func (m *Manager) UpdateGeometry(id ID, pos *Point, size *Size) {
	w := m.find(id)
	if w == nil {
		return
	}
	p, s := w.Position, w.Size
	if pos != nil {
		p = *pos
	}
	if size != nil {
		s = *size
	}
	w.Position, w.Size = m.clamp(p, s)
}

// SetViewport changes the drawable area and refits maximized windows.
func (m *Manager) SetViewport(vp Size) {
	m.cfg.Viewport = vp
	pos, size := m.MaximizedGeometry()
	for _, w := range m.windows {
		if w.Maximized {
			w.Position, w.Size = pos, size
		}
	}
}

// MaximizedGeometry is the geometry a maximized window takes in the
// current viewport.
func (m *Manager) MaximizedGeometry() (Point, Size) {
	in := m.cfg.MaximizeInsets
	pos := Point{X: in.Left, Y: in.Top}
	size := Size{
		W: m.cfg.Viewport.W - in.Left - in.Right,
		H: m.cfg.Viewport.H - in.Top - in.Bottom,
	}
	return pos, size.Floor(m.cfg.MinSize)
}

// Get returns a snapshot of one window.
func (m *Manager) Get(id ID) (Window, bool) {
	if w := m.find(id); w != nil {
		return *w, true
	}
	return Window{}, false
}

// Windows returns snapshots of every open window, bottom to top.
func (m *Manager) Windows() []Window {
	out := make([]Window, len(m.windows))
	for i, w := range m.windows {
		out[i] = *w
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Z < out[j].Z })
	return out
}

// Top returns the topmost window that is not minimized.
func (m *Manager) Top() (Window, bool) {
	var top *Window
	for _, w := range m.windows {
		if !w.Minimized && (top == nil || w.Z > top.Z) {
			top = w
		}
	}
	if top == nil {
		return Window{}, false
	}
	return *top, true
}

// WindowAt returns the topmost visible window containing p.
func (m *Manager) WindowAt(p Point) (Window, bool) {
	var hit *Window
	for _, w := range m.windows {
		if !w.Minimized && w.Contains(p) && (hit == nil || w.Z > hit.Z) {
			hit = w
		}
	}
	if hit == nil {
		return Window{}, false
	}
	return *hit, true
}

// Len returns the number of open windows.
func (m *Manager) Len() int { return len(m.windows) }

// SetTitle renames a window.
func (m *Manager) SetTitle(id ID, title string) {
	if w := m.find(id); w != nil {
		w.Title = title
	}
}

// SetContent replaces the content reference of a window.
func (m *Manager) SetContent(id ID, content any) {
	if w := m.find(id); w != nil {
		w.Content = content
	}
}

func (m *Manager) find(id ID) *Window {
	for _, w := range m.windows {
		if w.ID == id {
			return w
		}
	}
	return nil
}

func (m *Manager) clamp(pos Point, size Size) (Point, Size) {
	if pos.Y < 0 {
		pos.Y = 0
	}
	return pos, size.Floor(m.cfg.MinSize)
}
