package window

import (
	"fmt"
	"time"
)

// GestureState is the phase of the pointer gesture machine.
type GestureState int

const (
	Idle GestureState = iota
	Dragging
	Resizing
)

func (s GestureState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	}
	return fmt.Sprintf("GestureState(%d)", int(s))
}

// Transition is reported to the observer on every state change.
type Transition struct {
	From, To GestureState
	Window   ID
}

// Hit describes what a pointer press landed on.
type Hit struct {
	Window ID
	Region Region
}

// GestureOption configures a Gesture.
type GestureOption func(*Gesture)

// WithObserver calls fn on entering and leaving Dragging and Resizing.
func WithObserver(fn func(Transition)) GestureOption {
	return func(g *Gesture) { g.observer = fn }
}

// WithDoubleActivation sets how close two title presses must be to toggle
// maximize. Zero disables double activation.
func WithDoubleActivation(d time.Duration) GestureOption {
	return func(g *Gesture) { g.double = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) GestureOption {
	return func(g *Gesture) { g.now = now }
}

// Gesture turns pointer presses, moves and releases into window operations.
// A gesture tracks at most one window from PointerDown to PointerUp.
type Gesture struct {
	chrome   Chrome
	observer func(Transition)
	double   time.Duration
	now      func() time.Time

	state  GestureState
	target ID

	// Dragging: pointer minus window position at press time.
	offset Point
	// Resizing: pointer and size at press time.
	startPointer Point
	startSize    Size

	lastTitle   ID
	lastTitleAt time.Time
}

// NewGesture creates an idle gesture machine for the given chrome.
func NewGesture(chrome Chrome, opts ...GestureOption) *Gesture {
	g := &Gesture{
		chrome: chrome,
		double: 400 * time.Millisecond,
		now:    time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// State returns the current phase.
func (g *Gesture) State() GestureState { return g.state }

// Target returns the window being dragged or resized, if any.
func (g *Gesture) Target() (ID, bool) {
	return g.target, g.state != Idle
}

// PointerDown handles a press at p. The window under the pointer is brought
// to front, then the region decides the rest: the title bar starts a drag
// (or toggles maximize on a double activation), the resize handle starts a
// resize, and the buttons minimize, toggle maximize or close.
func (g *Gesture) PointerDown(m *Manager, p Point) Hit {
	if g.state != Idle {
		g.enter(Idle)
	}

	w, ok := m.WindowAt(p)
	if !ok {
		return Hit{}
	}
	m.BringToFront(w.ID)

	region := w.RegionAt(p, g.chrome)
	switch region {
	case RegionTitle:
		now := g.now()
		if g.double > 0 && g.lastTitle == w.ID && now.Sub(g.lastTitleAt) <= g.double {
			g.lastTitle = 0
			m.ToggleMaximize(w.ID)
			break
		}
		g.lastTitle, g.lastTitleAt = w.ID, now
		if !w.Maximized {
			g.target = w.ID
			g.offset = p.Sub(w.Position)
			g.enter(Dragging)
		}
	case RegionResize:
		g.target = w.ID
		g.startPointer = p
		g.startSize = w.Size
		g.enter(Resizing)
	case RegionMinimize:
		m.Minimize(w.ID, true)
	case RegionMaximize:
		m.ToggleMaximize(w.ID)
	case RegionClose:
		m.Close(w.ID)
	}
	return Hit{Window: w.ID, Region: region}
}

// PointerMove applies pointer motion to the tracked window. It does nothing
// while idle, and ends the gesture if the window has been closed.
func (g *Gesture) PointerMove(m *Manager, p Point) {
	if g.state == Idle {
		return
	}
	w, ok := m.Get(g.target)
	if !ok {
		g.enter(Idle)
		return
	}
	switch g.state {
	case Dragging:
		pos := p.Sub(g.offset)
		m.UpdateGeometry(w.ID, &pos, nil)
	case Resizing:
		delta := p.Sub(g.startPointer)
		size := Size{W: g.startSize.W + delta.X, H: g.startSize.H + delta.Y}
		m.UpdateGeometry(w.ID, nil, &size)
	}
}

// PointerUp ends any gesture. Calling it while idle does nothing.
func (g *Gesture) PointerUp() {
	if g.state != Idle {
		g.enter(Idle)
	}
}

func (g *Gesture) enter(s GestureState) {
	from, id := g.state, g.target
	g.state = s
	if s == Idle {
		g.target = 0
	}
	if g.observer != nil {
		g.observer(Transition{From: from, To: s, Window: id})
	}
}
