package window

import "testing"

func TestRegionAt_Pixel(t *testing.T) {
	w := Window{Position: Point{X: 100, Y: 100}, Size: Size{W: 400, H: 300}}
	c := PixelChrome
	// Buttons span x in [100+400-8-60, 100+400-8) = [432, 492).
	cases := []struct {
		p    Point
		want Region
	}{
		{Point{X: 99, Y: 150}, RegionNone},
		{Point{X: 500, Y: 150}, RegionNone},
		{Point{X: 150, Y: 100}, RegionTitle},
		{Point{X: 431, Y: 131}, RegionTitle},
		{Point{X: 432, Y: 110}, RegionMinimize},
		{Point{X: 451, Y: 110}, RegionMinimize},
		{Point{X: 452, Y: 110}, RegionMaximize},
		{Point{X: 472, Y: 110}, RegionClose},
		{Point{X: 491, Y: 110}, RegionClose},
		{Point{X: 495, Y: 110}, RegionTitle},
		{Point{X: 150, Y: 132}, RegionBody},
		{Point{X: 484, Y: 384}, RegionResize},
		{Point{X: 499, Y: 399}, RegionResize},
		{Point{X: 483, Y: 399}, RegionBody},
	}
	for _, tc := range cases {
		if got := w.RegionAt(tc.p, c); got != tc.want {
			t.Errorf("RegionAt(%+v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestRegionAt_Cell(t *testing.T) {
	w := Window{Position: Point{X: 0, Y: 0}, Size: Size{W: 20, H: 6}}
	c := CellChrome
	// Buttons occupy x 10..18 on row 0; close is 16..18.
	if got := w.RegionAt(Point{X: 17, Y: 0}, c); got != RegionClose {
		t.Errorf("close = %v", got)
	}
	if got := w.RegionAt(Point{X: 10, Y: 0}, c); got != RegionMinimize {
		t.Errorf("minimize = %v", got)
	}
	if got := w.RegionAt(Point{X: 19, Y: 0}, c); got != RegionTitle {
		t.Errorf("inset = %v", got)
	}
	if got := w.RegionAt(Point{X: 19, Y: 5}, c); got != RegionResize {
		t.Errorf("corner = %v", got)
	}
	if got := w.RegionAt(Point{X: 5, Y: 3}, c); got != RegionBody {
		t.Errorf("body = %v", got)
	}
}

func TestRegionAt_MaximizedHasNoResizeHandle(t *testing.T) {
	w := Window{Size: Size{W: 400, H: 300}, Maximized: true}
	if got := w.RegionAt(Point{X: 399, Y: 299}, PixelChrome); got != RegionBody {
		t.Errorf("corner of maximized = %v, want body", got)
	}
}

func TestStateStrings(t *testing.T) {
	if Normal.String() != "normal" || Minimized.String() != "minimized" || Maximized.String() != "maximized" {
		t.Error("state names")
	}
	if Dragging.String() != "dragging" || RegionClose.String() != "close" {
		t.Error("gesture/region names")
	}
}
