package main

import (
	"log/slog"
	"testing"

	"golang.org/x/image/font/basicfont"

	"github.com/gogpu/uiglue/backend/soft"
	"github.com/gogpu/uiglue/frame"
)

func TestFontAtlas(t *testing.T) {
	a := newFontAtlas(basicfont.Face7x13)
	if a.cellW != 7 || a.cellH != 13 {
		t.Fatalf("cell = %dx%d, want 7x13", a.cellW, a.cellH)
	}
	if w, h := a.img.Width(), a.img.Height(); w != 16*7 || h != whiteSize+6*13 {
		t.Errorf("atlas = %dx%d", w, h)
	}
	for y := 0; y < whiteSize; y++ {
		for x := 0; x < whiteSize; x++ {
			if c := a.img.At(x, y); c != 1 {
				t.Errorf("white block (%d,%d) = %v, want 1", x, y, c)
			}
		}
	}

	covered := func(r rune) bool {
		cell := a.cell(r)
		for y := cell.Min.Y; y < cell.Max.Y; y++ {
			for x := cell.Min.X; x < cell.Max.X; x++ {
				if a.img.At(x, y) > 0 {
					return true
				}
			}
		}
		return false
	}
	if !covered('A') {
		t.Error("glyph A has no coverage")
	}
	if covered(' ') {
		t.Error("space has coverage")
	}
}

func TestAddText(t *testing.T) {
	a := newFontAtlas(basicfont.Face7x13)
	var m frame.Mesh
	a.addText(&m, "a b", 10, 20, frame.White)
	if len(m.Vertices) != 8 || len(m.Indices) != 12 {
		t.Fatalf("mesh has %d vertices, %d indices; want 8, 12", len(m.Vertices), len(m.Indices))
	}
	if got := m.Vertices[4].Pos; got != frame.P2(24, 20) {
		t.Errorf("second glyph at %v, want (24, 20)", got)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if got := a.textWidth("a b"); got != 21 {
		t.Errorf("textWidth = %v, want 21", got)
	}
}

func TestSceneTextures(t *testing.T) {
	sc := newScene(newFontAtlas(basicfont.Face7x13), nil)

	first := sc.next(640, 480)
	if len(first.Textures.Set) != 2 {
		t.Fatalf("first frame sets %d textures, want 2", len(first.Textures.Set))
	}
	for _, s := range first.Textures.Set {
		if !s.Delta.IsWhole() {
			t.Errorf("first frame delta for %v is partial", s.ID)
		}
	}

	second := sc.next(640, 480)
	if len(second.Textures.Set) != 1 || second.Textures.Set[0].Delta.IsWhole() {
		t.Fatalf("second frame sets %+v, want one partial delta", second.Textures.Set)
	}
	for i, p := range second.Primitives {
		if err := p.Mesh.Validate(); err != nil {
			t.Errorf("primitive %d: %v", i, err)
		}
	}
}

func near(a, b frame.Color32, tol int) bool {
	for i := range a {
		d := int(a[i]) - int(b[i])
		if d < -tol || d > tol {
			return false
		}
	}
	return true
}

func TestPaintFramesSoft(t *testing.T) {
	const w, h = 640, 480
	dev, err := soft.New(soft.Config{Width: w, Height: h})
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Close()

	cfg := defaultConfig()
	if err := paintFrames(dev, cfg, slog.New(slog.DiscardHandler), imageFrames); err != nil {
		t.Fatalf("paintFrames: %v", err)
	}

	checks := []struct {
		name string
		x, y int
		want frame.Color32
	}{
		{"background", 2, 2, background},
		{"panel", 20, 300, panel},
		{"checker corner", w - 196, 60, frame.White},
		{"checker patch", w - 180, 76, highlight},
	}
	for _, c := range checks {
		if got := dev.At(c.x, c.y); !near(got, c.want, 2) {
			t.Errorf("%s at (%d,%d) = %v, want %v", c.name, c.x, c.y, got, c.want)
		}
	}

	// The right half of the clipped line stays panel colored.
	for y := 240; y < 253; y++ {
		for x := 170; x < 290; x++ {
			if got := dev.At(x, y); !near(got, panel, 2) {
				t.Fatalf("clipped text leaked at (%d,%d): %v", x, y, got)
			}
		}
	}
	lit := false
	for y := 240; y < 253 && !lit; y++ {
		for x := 28; x < 150; x++ {
			if dev.At(x, y).R() > 128 {
				lit = true
				break
			}
		}
	}
	if !lit {
		t.Error("visible half of the clipped line was not drawn")
	}

	// The user texture is a gradient with constant blue.
	if got := dev.At(w-72, 104); got.A() != 255 || int(got.B())-128 > 3 || 128-int(got.B()) > 3 {
		t.Errorf("user texture pixel = %v, want blue near 128", got)
	}
}
