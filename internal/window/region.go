package window

// Region is a part of a window's surface that reacts to the pointer.
type Region int

const (
	RegionNone Region = iota
	RegionTitle
	RegionMinimize
	RegionMaximize
	RegionClose
	RegionResize
	RegionBody
)

func (r Region) String() string {
	switch r {
	case RegionTitle:
		return "title"
	case RegionMinimize:
		return "minimize"
	case RegionMaximize:
		return "maximize"
	case RegionClose:
		return "close"
	case RegionResize:
		return "resize"
	case RegionBody:
		return "body"
	}
	return "none"
}

// Chrome describes the decorations drawn around window content, in the same
// unit as the window geometry.
type Chrome struct {
	// TitleHeight is the height of the title bar at the top of the window.
	TitleHeight int
	// Buttons are the title bar controls, left to right, ending ButtonInset
	// units before the right edge.
	Buttons     []Region
	ButtonWidth int
	ButtonInset int
	// HandleSize is the side of the square resize handle in the
	// bottom-right corner.
	HandleSize int
}

// PixelChrome matches a browser-style window frame.
var PixelChrome = Chrome{
	TitleHeight: 32,
	Buttons:     []Region{RegionMinimize, RegionMaximize, RegionClose},
	ButtonWidth: 20,
	ButtonInset: 8,
	HandleSize:  16,
}

// CellChrome matches a terminal window frame: a one-row title bar with
// three-cell buttons and a one-cell resize corner.
var CellChrome = Chrome{
	TitleHeight: 1,
	Buttons:     []Region{RegionMinimize, RegionMaximize, RegionClose},
	ButtonWidth: 3,
	ButtonInset: 1,
	HandleSize:  1,
}

// ButtonsStart is the x offset, relative to the window, of the first title
// bar button.
func (c Chrome) ButtonsStart(width int) int {
	return width - c.ButtonInset - len(c.Buttons)*c.ButtonWidth
}

// RegionAt hit-tests p against w. Points outside the window give RegionNone.
func (w Window) RegionAt(p Point, c Chrome) Region {
	if !w.Contains(p) {
		return RegionNone
	}
	local := p.Sub(w.Position)

	if local.Y < c.TitleHeight {
		start := c.ButtonsStart(w.Size.W)
		if c.ButtonWidth > 0 && local.X >= start && local.X < start+len(c.Buttons)*c.ButtonWidth {
			return c.Buttons[(local.X-start)/c.ButtonWidth]
		}
		return RegionTitle
	}

	if c.HandleSize > 0 && !w.Maximized &&
		local.X >= w.Size.W-c.HandleSize && local.Y >= w.Size.H-c.HandleSize {
		return RegionResize
	}
	return RegionBody
}
