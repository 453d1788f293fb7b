package main

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/uiglue/frame"
)

const (
	firstGlyph = ' '
	lastGlyph  = '~'
	atlasCols  = 16

	// whiteSize is the side of the fully covered block at the top-left
	// of the atlas that solid shapes sample.
	whiteSize = 2
)

// fontAtlas is a coverage atlas of the printable ASCII glyphs of a
// fixed-width face, laid out on a grid below a small white block.
type fontAtlas struct {
	img          *frame.FontImage
	cellW, cellH int
}

func newFontAtlas(face font.Face) *fontAtlas {
	m := face.Metrics()
	adv, _ := face.GlyphAdvance('M')
	a := &fontAtlas{cellW: adv.Ceil(), cellH: m.Height.Ceil()}
	rows := int(lastGlyph-firstGlyph+atlasCols) / atlasCols
	a.img = frame.NewFontImage(atlasCols*a.cellW, whiteSize+rows*a.cellH)

	for y := 0; y < whiteSize; y++ {
		for x := 0; x < whiteSize; x++ {
			a.img.Set(x, y, 1)
		}
	}
	ascent := m.Ascent.Ceil()
	for r := rune(firstGlyph); r <= lastGlyph; r++ {
		cell := a.cell(r)
		dr, mask, maskp, _, ok := face.Glyph(fixed.P(cell.Min.X, cell.Min.Y+ascent), r)
		if !ok {
			continue
		}
		clip := dr.Intersect(cell)
		for y := clip.Min.Y; y < clip.Max.Y; y++ {
			for x := clip.Min.X; x < clip.Max.X; x++ {
				_, _, _, cov := mask.At(maskp.X+x-dr.Min.X, maskp.Y+y-dr.Min.Y).RGBA()
				a.img.Set(x, y, float32(cov)/0xffff)
			}
		}
	}
	return a
}

// cell returns the atlas rectangle of r, in texels from the top-left.
func (a *fontAtlas) cell(r rune) image.Rectangle {
	i := int(r - firstGlyph)
	x := (i % atlasCols) * a.cellW
	y := whiteSize + (i/atlasCols)*a.cellH
	return image.Rect(x, y, x+a.cellW, y+a.cellH)
}

// uv maps a texel rectangle to normalized texture coordinates.
func (a *fontAtlas) uv(r image.Rectangle) frame.Rect {
	w, h := float32(a.img.Width()), float32(a.img.Height())
	return frame.RectFromMinMax(float32(r.Min.X)/w, float32(r.Min.Y)/h, float32(r.Max.X)/w, float32(r.Max.Y)/h)
}

// whiteUV is a rectangle of texture coordinates inside the white block.
func (a *fontAtlas) whiteUV() frame.Rect {
	return a.uv(image.Rect(whiteSize/2, whiteSize/2, whiteSize/2, whiteSize/2))
}

// set returns the delta uploading the whole atlas as the font texture.
func (a *fontAtlas) set() frame.TextureSet {
	return frame.TextureSet{
		ID:    frame.FontTexture,
		Delta: frame.WholeDelta(a.img, frame.DefaultTextureOptions),
	}
}

// addText appends one quad per glyph of s, starting with the top-left
// corner at x, y in points. Runes outside the atlas are skipped.
func (a *fontAtlas) addText(m *frame.Mesh, s string, x, y float32, c frame.Color32) {
	for _, r := range s {
		if r >= firstGlyph && r <= lastGlyph && r != ' ' {
			rect := frame.RectFromMinMax(x, y, x+float32(a.cellW), y+float32(a.cellH))
			m.AddRect(rect, a.uv(a.cell(r)), c)
		}
		x += float32(a.cellW)
	}
}

// textWidth returns the width of s in points.
func (a *fontAtlas) textWidth(s string) float32 {
	return float32(len([]rune(s)) * a.cellW)
}
