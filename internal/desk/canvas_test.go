package desk

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/starford/algonotes/internal/window"
)

func TestFit(t *testing.T) {
	if got := fit("abc", 5); got != "abc  " {
		t.Errorf("pad: got %q", got)
	}
	if got := fit("abcdef", 3); got != "abc" {
		t.Errorf("cut: got %q", got)
	}
	if got := fit("abc", 0); got != "" {
		t.Errorf("zero width: got %q", got)
	}
}

func TestCanvas_PaintClips(t *testing.T) {
	c := newCanvas(6, 3)
	c.paint(-2, -1, []string{"xxxx", "abcd", "efgh"})
	c.paint(4, 2, []string{"123"})

	want := []string{
		"cd    ",
		"gh    ",
		"    12",
	}
	if got := c.String(); got != strings.Join(want, "\n") {
		t.Errorf("got\n%s\nwant\n%s", got, strings.Join(want, "\n"))
	}
}

func TestCanvas_PaintOutside(t *testing.T) {
	c := newCanvas(4, 2)
	c.paint(10, 0, []string{"zz"})
	c.paint(0, 5, []string{"zz"})
	if got := c.String(); got != "    \n    " {
		t.Errorf("got %q", got)
	}
}

func TestFrame_Size(t *testing.T) {
	for _, maximized := range []bool{false, true} {
		w := window.Window{
			ID:        1,
			Title:     "Two Sum",
			Position:  window.Point{X: 3, Y: 2},
			Size:      window.Size{W: 30, H: 8},
			Maximized: maximized,
		}
		lines := frame(w, window.CellChrome, []string{"body"}, true)
		if len(lines) != 8 {
			t.Fatalf("maximized=%v: got %d lines, want 8", maximized, len(lines))
		}
		for i, l := range lines {
			if got := ansi.StringWidth(l); got != 30 {
				t.Errorf("maximized=%v: line %d width = %d, want 30", maximized, i, got)
			}
		}
		if !strings.Contains(ansi.Strip(lines[0]), "Two Sum") {
			t.Errorf("title bar %q lacks the title", ansi.Strip(lines[0]))
		}
	}
}

func TestFrame_ButtonsMatchHitTest(t *testing.T) {
	w := window.Window{Size: window.Size{W: 30, H: 8}}
	title := ansi.Strip(frame(w, window.CellChrome, nil, false)[0])

	start := window.CellChrome.ButtonsStart(w.Size.W)
	labels := map[window.Region]string{
		window.RegionMinimize: "[_]",
		window.RegionClose:    "[x]",
	}
	for i, r := range window.CellChrome.Buttons {
		want, ok := labels[r]
		if !ok {
			continue
		}
		x := start + i*window.CellChrome.ButtonWidth
		if got := ansi.Cut(title, x, x+window.CellChrome.ButtonWidth); got != want {
			t.Errorf("%v at %d: got %q, want %q", r, x, got, want)
		}
	}
}

func TestBlock(t *testing.T) {
	got := block("a\nb\nc", 2, 2)
	if len(got) != 2 || got[0] != "a " || got[1] != "b " {
		t.Errorf("got %q", got)
	}
	got = block("a", 1, 3)
	if len(got) != 3 || got[2] != " " {
		t.Errorf("padding rows: got %q", got)
	}
}
