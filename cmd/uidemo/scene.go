package main

import (
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/uiglue/frame"
	"github.com/gogpu/uiglue/texture"
)

// checkerID is the managed texture patched a little every frame.
const checkerID = 1

var (
	background = frame.RGB(27, 27, 27)
	panel      = frame.RGB(40, 40, 48)
	highlight  = frame.RGB(255, 160, 0)
	nearest    = frame.TextureOptions{Magnification: frame.FilterNearest, Minification: frame.FilterNearest}
)

// scene builds the demo frames. The first frame uploads the managed
// textures, later frames patch the checker texture.
type scene struct {
	font *fontAtlas
	user *frame.TextureID
	n    int
}

func newScene(font *fontAtlas, user *frame.TextureID) *scene {
	return &scene{font: font, user: user}
}

// next returns the output of the next frame for a screen of w x h points.
func (s *scene) next(w, h float32) frame.FullOutput {
	var out frame.FullOutput
	if s.n == 0 {
		out.Textures.Set = append(out.Textures.Set, s.font.set(), frame.TextureSet{
			ID:    frame.ManagedTexture(checkerID),
			Delta: frame.WholeDelta(checker(8, frame.White, frame.RGB(60, 60, 200)), nearest),
		})
	} else {
		k := 2 * (s.n % 4)
		out.Textures.Set = append(out.Textures.Set, frame.TextureSet{
			ID:    frame.ManagedTexture(checkerID),
			Delta: frame.PartialDelta(k, k, frame.NewColorImage(2, 2, highlight), nearest),
		})
	}
	out.Primitives = s.primitives(w, h)
	s.n++
	return out
}

func (s *scene) primitives(w, h float32) []frame.ClippedPrimitive {
	screen := frame.RectFromMinMax(0, 0, w, h)
	white := s.font.whiteUV()
	var prims []frame.ClippedPrimitive
	add := func(clip frame.Rect, m frame.Mesh) {
		prims = append(prims, frame.ClippedPrimitive{ClipRect: clip, Mesh: m})
	}

	var solid frame.Mesh
	solid.AddRect(screen, white, background)
	solid.AddRect(frame.RectFromMinMax(16, 16, w-16, h-16), white, panel)
	// Overlapping translucent squares show premultiplied blending.
	for i, c := range []frame.Color32{
		frame.RGBAPremultiplied(160, 0, 0, 160),
		frame.RGBAPremultiplied(0, 160, 0, 160),
		frame.RGBAPremultiplied(0, 0, 160, 160),
	} {
		x := 32 + float32(i)*40
		solid.AddRect(frame.RectFromMinMax(x, 56, x+80, 136), white, c)
	}
	base := uint32(len(solid.Vertices)) //nolint:gosec // small mesh
	solid.Vertices = append(solid.Vertices,
		frame.Vertex{Pos: frame.P2(40, 220), UV: white.Min, Color: frame.RGB(255, 0, 0)},
		frame.Vertex{Pos: frame.P2(200, 220), UV: white.Min, Color: frame.RGB(0, 255, 0)},
		frame.Vertex{Pos: frame.P2(120, 160), UV: white.Min, Color: frame.RGB(0, 0, 255)},
	)
	solid.AddTriangle(base, base+1, base+2)
	add(screen, solid)

	var text frame.Mesh
	text.Texture = frame.FontTexture
	s.font.addText(&text, "uiglue demo", 28, 26, frame.White)
	s.font.addText(&text, fmt.Sprintf("frame %d", s.n), 28, h-40, frame.WhiteAlpha(180))
	add(screen, text)

	// Only part of this line lies inside its clip rectangle.
	var clipped frame.Mesh
	line := "clipped by the scissor box: 0123456789"
	s.font.addText(&clipped, line, 28, 240, highlight)
	add(frame.RectFromMinMax(28, 236, 28+s.font.textWidth(line)/2, 260), clipped)

	var check frame.Mesh
	check.Texture = frame.ManagedTexture(checkerID)
	check.AddRect(frame.RectFromMinMax(w-200, 56, w-136, 120), frame.RectFromMinMax(0, 0, 1, 1), frame.White)
	add(screen, check)

	if s.user != nil {
		var img frame.Mesh
		img.Texture = *s.user
		img.AddRect(frame.RectFromMinMax(w-120, 56, w-24, 152), frame.RectFromMinMax(0, 0, 1, 1), frame.White)
		add(screen, img)
	}
	return prims
}

// checker returns an n x n checkerboard of 1-texel squares.
func checker(n int, a, b frame.Color32) *frame.ColorImage {
	img := frame.NewColorImage(n, n, a)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if (x+y)%2 == 1 {
				img.Set(x, y, b)
			}
		}
	}
	return img
}

// gradientTexture is the caller-owned texture shown next to the checker.
func gradientTexture(size int) *texture.RGBA8 {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(255 * x / (size - 1)), //nolint:gosec // x < size
				G: uint8(255 * y / (size - 1)), //nolint:gosec // y < size
				B: 128,
				A: 255,
			})
		}
	}
	return texture.FromImage(img, frame.DefaultTextureOptions)
}
