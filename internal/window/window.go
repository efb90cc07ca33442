package window

import "fmt"

// ID identifies an open window. IDs are never reused within a Manager.
type ID int

// State is the render mode of a window.
type State int

const (
	Normal State = iota
	Minimized
	Maximized
)

func (s State) String() string {
	switch s {
	case Normal:
		return "normal"
	case Minimized:
		return "minimized"
	case Maximized:
		return "maximized"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Descriptor is what a caller supplies to Open. A nil Position or Size
// falls back to the manager defaults; the origin is a valid position.
type Descriptor struct {
	Title    string
	Content  any
	Position *Point
	Size     *Size
}

// Window is a snapshot of one managed window. Mutating a snapshot has no
// effect on the manager.
type Window struct {
	ID        ID
	Title     string
	Content   any
	Position  Point
	Size      Size
	Z         int
	Minimized bool
	Maximized bool

	initial geometry
	saved   *geometry
}

// State reports the render mode. A minimized window reports Minimized even
// when it is also maximized underneath.
func (w Window) State() State {
	switch {
	case w.Minimized:
		return Minimized
	case w.Maximized:
		return Maximized
	}
	return Normal
}

// Contains reports whether p lies inside the window's surface.
func (w Window) Contains(p Point) bool {
	return p.X >= w.Position.X && p.X < w.Position.X+w.Size.W &&
		p.Y >= w.Position.Y && p.Y < w.Position.Y+w.Size.H
}
