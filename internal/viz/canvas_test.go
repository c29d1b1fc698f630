package viz

import (
	"strings"
	"testing"
)

func TestCanvasSetAndUnset(t *testing.T) {
	c := NewCanvas(4, 4)

	c.Set(3, 5)
	if !c.Dot(3, 5) {
		t.Error("set dot not lit")
	}
	if c.Dot(2, 5) || c.Dot(3, 4) {
		t.Error("neighboring dots lit")
	}
	c.Unset(3, 5)
	if c.Dot(3, 5) {
		t.Error("unset dot still lit")
	}
}

func TestCanvasIgnoresOutOfBounds(t *testing.T) {
	c := NewCanvas(4, 4)

	c.Set(-1, 0)
	c.Set(0, -1)
	c.Set(4*2, 0)
	c.Set(0, 4*4)

	lit := 0
	c.EachDot(func(x, y int) { lit++ })
	if lit != 0 {
		t.Fatalf("out-of-bounds set lit %d dots", lit)
	}
}

func TestCanvasDrawLineEndpoints(t *testing.T) {
	c := NewCanvas(10, 10)
	c.DrawLine(0, 0, 19, 39)

	if !c.Dot(0, 0) {
		t.Error("line start not drawn")
	}
	if !c.Dot(19, 39) {
		t.Error("line end not drawn")
	}
}

func TestCanvasEachDot(t *testing.T) {
	c := NewCanvas(4, 4)
	want := map[[2]int]bool{{0, 0}: true, {1, 3}: true, {6, 14}: true}
	for p := range want {
		c.Set(p[0], p[1])
	}

	got := map[[2]int]bool{}
	c.EachDot(func(x, y int) { got[[2]int{x, y}] = true })
	if len(got) != len(want) {
		t.Fatalf("visited %d dots, want %d", len(got), len(want))
	}
	for p := range want {
		if !got[p] {
			t.Errorf("dot %v not visited", p)
		}
	}
}

func TestCanvasMarkOverlay(t *testing.T) {
	c := NewCanvas(3, 2)
	c.Set(0, 0)
	c.Mark(0, 0, '●')

	lines := strings.Split(c.String(), "\n")
	if []rune(lines[0])[0] != '●' {
		t.Error("overlay glyph did not win over the dot layer")
	}

	marks := 0
	c.EachMark(func(col, row int, glyph rune) {
		marks++
		if col != 0 || row != 0 || glyph != '●' {
			t.Errorf("mark at (%d,%d) = %c", col, row, glyph)
		}
	})
	if marks != 1 {
		t.Fatalf("got %d marks, want 1", marks)
	}

	c.Clear()
	c.EachMark(func(int, int, rune) { t.Error("clear left an overlay glyph") })
}

func TestCanvasString(t *testing.T) {
	c := NewCanvas(3, 2)
	out := c.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	for _, line := range lines {
		if len([]rune(line)) != 3 {
			t.Errorf("line %q has %d runes, want 3", line, len([]rune(line)))
		}
	}
}

func TestWireframeAddBox(t *testing.T) {
	wf := NewWireframe()
	wf.AddBox(Vec3{}, Vec3{1, 1, 1}, nil, '█')

	if len(wf.Edges) != 12 {
		t.Errorf("box has %d edges, want 12", len(wf.Edges))
	}
}

func TestWireframeAddArrow(t *testing.T) {
	wf := NewWireframe()
	wf.AddArrow(Vec3{}, Vec3{0, 0, 2}, '→')

	// shaft plus two head strokes
	if len(wf.Edges) != 3 {
		t.Errorf("arrow has %d edges, want 3", len(wf.Edges))
	}

	wf.Clear()
	wf.AddArrow(Vec3{1, 1, 1}, Vec3{1, 1, 1}, '→')
	if len(wf.Edges) != 1 {
		t.Errorf("degenerate arrow has %d edges, want shaft only", len(wf.Edges))
	}
}

func TestWireframeGroundGrid(t *testing.T) {
	wf := NewWireframe()
	wf.AddGroundGrid(2, 1, '·')

	// 5 lines per direction for extent 2 at step 1
	if len(wf.Edges) != 10 {
		t.Errorf("grid has %d edges, want 10", len(wf.Edges))
	}
	for _, e := range wf.Edges {
		if e.Start.Y != 0 || e.End.Y != 0 {
			t.Fatal("grid line left the ground plane")
		}
	}
}

func TestRenderBoxMarksCanvas(t *testing.T) {
	c := NewCanvas(width, height)
	wf := NewWireframe()
	wf.AddBox(Vec3{}, Vec3{0.5, 0.5, 0.5}, nil, '█')

	cam := NewCamera()
	cam.Position = Vec3{0, 0, 6}
	Render3D(c, wf, cam)

	marked := 0
	c.EachDot(func(x, y int) { marked++ })
	if marked == 0 {
		t.Error("rendering a box left the canvas empty")
	}
}

func TestRenderPointUsesOverlay(t *testing.T) {
	c := NewCanvas(width, height)
	wf := NewWireframe()
	wf.AddPoint(Vec3{}, '●')

	cam := NewCamera()
	cam.Position = Vec3{0, 0, 6}
	Render3D(c, wf, cam)

	found := false
	c.EachMark(func(col, row int, glyph rune) {
		if glyph == '●' {
			found = true
		}
	})
	if !found {
		t.Error("point glyph missing from the overlay")
	}
}
