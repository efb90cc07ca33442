package window

// Point is a position in viewport coordinates. The unit is whatever the
// consumer draws in: pixels for a browser, cells for a terminal.
type Point struct {
	X, Y int
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Size is a width and height.
type Size struct {
	W, H int
}

// Floor raises each dimension of s to at least floor.
func (s Size) Floor(floor Size) Size {
	if s.W < floor.W {
		s.W = floor.W
	}
	if s.H < floor.H {
		s.H = floor.H
	}
	return s
}

// Insets are margins kept free around a maximized window.
type Insets struct {
	Left, Top, Right, Bottom int
}

type geometry struct {
	pos  Point
	size Size
}
