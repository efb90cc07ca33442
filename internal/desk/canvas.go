package desk

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/starford/algonotes/internal/window"
)

// canvas is a fixed-size grid of styled lines. Layers are painted bottom to
// top; anything falling outside the canvas is clipped.
type canvas struct {
	width, height int
	lines         []string
}

func newCanvas(width, height int) *canvas {
	c := &canvas{width: width, height: height, lines: make([]string, height)}
	blank := strings.Repeat(" ", max(width, 0))
	for i := range c.lines {
		c.lines[i] = blank
	}
	return c
}

// fit pads or cuts s to exactly width cells.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := ansi.StringWidth(s)
	if w > width {
		return ansi.Cut(s, 0, width)
	}
	return s + strings.Repeat(" ", width-w)
}

// paint draws block with its top-left corner at (x, y). The block is
// clipped on every side, so x and y may be negative.
func (c *canvas) paint(x, y int, block []string) {
	for i, line := range block {
		row := y + i
		if row < 0 || row >= c.height {
			continue
		}
		lw := ansi.StringWidth(line)
		from, to := 0, lw
		if x < 0 {
			from = -x
		}
		if x+to > c.width {
			to = c.width - x
		}
		if from >= to {
			continue
		}
		visible := line
		if from > 0 || to < lw {
			visible = ansi.Cut(line, from, to)
		}
		start := max(x, 0)
		base := c.lines[row]
		c.lines[row] = ansi.Cut(base, 0, start) + visible + ansi.Cut(base, start+(to-from), c.width)
	}
}

func (c *canvas) String() string {
	return strings.Join(c.lines, "\n")
}

// frame renders a window of w x h cells: a title bar with buttons laid out
// by chrome, side borders, and a bottom border whose right corner is the
// resize handle. body must already be sized to (w-2) x (h-2).
func frame(w window.Window, chrome window.Chrome, body []string, focused bool) []string {
	width, height := w.Size.W, w.Size.H
	if width < 2 || height < 2 {
		return nil
	}
	titleStyle, border := titleBlurredStyle, frameStyle
	if focused {
		titleStyle, border = titleFocusedStyle, frameFocusedStyle
	}

	out := make([]string, 0, height)

	start := chrome.ButtonsStart(width)
	var buttons strings.Builder
	for _, b := range chrome.Buttons {
		buttons.WriteString(buttonLabel(b, w.Maximized, chrome.ButtonWidth))
	}
	label := fit(" "+w.Title, max(start, 0))
	tail := strings.Repeat(" ", max(chrome.ButtonInset, 0))
	out = append(out, titleStyle.Render(fit(label+buttons.String()+tail, width)))

	side := border.Render("│")
	for i := 0; i < height-2; i++ {
		line := ""
		if i < len(body) {
			line = body[i]
		}
		out = append(out, side+fit(line, width-2)+side)
	}

	corner := "┘"
	if !w.Maximized {
		corner = "◢"
	}
	out = append(out, border.Render("└"+strings.Repeat("─", width-2)+corner))
	return out
}

func buttonLabel(r window.Region, maximized bool, width int) string {
	var s string
	switch r {
	case window.RegionMinimize:
		s = "[_]"
	case window.RegionMaximize:
		s = "[□]"
		if maximized {
			s = "[▫]"
		}
	case window.RegionClose:
		s = "[x]"
	}
	return fit(s, width)
}

// block splits s into exactly height lines of exactly width cells.
func block(s string, width, height int) []string {
	lines := strings.Split(s, "\n")
	out := make([]string, height)
	for i := range out {
		if i < len(lines) {
			out[i] = fit(lines[i], width)
		} else {
			out[i] = strings.Repeat(" ", max(width, 0))
		}
	}
	return out
}
