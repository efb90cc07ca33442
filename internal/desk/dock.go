package desk

import (
	"sort"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/starford/algonotes/internal/window"
)

type dockKind int

const (
	dockPosts dockKind = iota
	dockWrite
	dockWindow
)

// dockItem is one clickable label in the dock row, spanning cells [x0, x1).
type dockItem struct {
	kind      dockKind
	win       window.ID
	label     string
	x0, x1    int
	minimized bool
	active    bool
}

const dockLabelMax = 20

// layoutDock places the fixed launchers followed by one entry per open
// window in opening order. Entries that do not fit are dropped.
func layoutDock(wins []window.Window, active window.ID, width int) []dockItem {
	sorted := append([]window.Window(nil), wins...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	items := []dockItem{
		{kind: dockPosts, label: " ≡ posts "},
		{kind: dockWrite, label: " + write "},
	}
	for _, w := range sorted {
		title := w.Title
		if ansi.StringWidth(title) > dockLabelMax {
			title = ansi.Truncate(title, dockLabelMax, "…")
		}
		items = append(items, dockItem{
			kind:      dockWindow,
			win:       w.ID,
			label:     " " + title + " ",
			minimized: w.Minimized,
			active:    w.ID == active && !w.Minimized,
		})
	}

	x := 0
	out := items[:0]
	for _, it := range items {
		lw := ansi.StringWidth(it.label)
		if x+lw > width {
			break
		}
		it.x0, it.x1 = x, x+lw
		out = append(out, it)
		x += lw + 1
	}
	return out
}

// dockHit returns the item under column x.
func dockHit(items []dockItem, x int) (dockItem, bool) {
	for _, it := range items {
		if x >= it.x0 && x < it.x1 {
			return it, true
		}
	}
	return dockItem{}, false
}

func renderDock(items []dockItem, status string, width int) string {
	var b strings.Builder
	x := 0
	for _, it := range items {
		if it.x0 > x {
			b.WriteString(dockStyle.Render(strings.Repeat(" ", it.x0-x)))
		}
		style := dockStyle
		switch {
		case it.active:
			style = dockActiveStyle
		case it.minimized:
			style = dockMinStyle
		}
		b.WriteString(style.Render(it.label))
		x = it.x1
	}

	rest := width - x
	if rest <= 0 {
		return fit(b.String(), width)
	}
	if status != "" && ansi.StringWidth(status)+1 < rest {
		pad := rest - ansi.StringWidth(status) - 1
		b.WriteString(dockStyle.Render(strings.Repeat(" ", pad) + status + " "))
	} else {
		b.WriteString(dockStyle.Render(strings.Repeat(" ", rest)))
	}
	return b.String()
}
