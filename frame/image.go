package frame

import (
	"fmt"

	"github.com/chewxy/math32"
)

// ImageData is the pixel payload of an ImageDelta: either a *ColorImage
// or a *FontImage. Rows are stored top row first.
type ImageData interface {
	// Width returns the image width in pixels.
	Width() int

	// Height returns the image height in pixels.
	Height() int

	imageData()
}

// ColorImage is an image of premultiplied sRGBA pixels.
type ColorImage struct {
	Size   [2]int
	Pixels []Color32
}

// NewColorImage returns a width x height image filled with fill.
func NewColorImage(width, height int, fill Color32) *ColorImage {
	pixels := make([]Color32, width*height)
	for i := range pixels {
		pixels[i] = fill
	}
	return &ColorImage{Size: [2]int{width, height}, Pixels: pixels}
}

// Width returns the image width in pixels.
func (img *ColorImage) Width() int { return img.Size[0] }

// Height returns the image height in pixels.
func (img *ColorImage) Height() int { return img.Size[1] }

// At returns the pixel at column x of row y (row 0 is the top row).
func (img *ColorImage) At(x, y int) Color32 {
	return img.Pixels[y*img.Size[0]+x]
}

// Set stores c at column x of row y.
func (img *ColorImage) Set(x, y int, c Color32) {
	img.Pixels[y*img.Size[0]+x] = c
}

func (*ColorImage) imageData() {}

// FontImage is a single-channel coverage image in [0, 1], as produced
// for the font atlas.
type FontImage struct {
	Size   [2]int
	Pixels []float32
}

// NewFontImage returns a blank width x height coverage image.
func NewFontImage(width, height int) *FontImage {
	return &FontImage{Size: [2]int{width, height}, Pixels: make([]float32, width*height)}
}

// Width returns the image width in pixels.
func (img *FontImage) Width() int { return img.Size[0] }

// Height returns the image height in pixels.
func (img *FontImage) Height() int { return img.Size[1] }

// At returns the coverage at column x of row y (row 0 is the top row).
func (img *FontImage) At(x, y int) float32 {
	return img.Pixels[y*img.Size[0]+x]
}

// Set stores coverage c at column x of row y.
func (img *FontImage) Set(x, y int, c float32) {
	img.Pixels[y*img.Size[0]+x] = c
}

// SRGBAPixels converts the coverage values to premultiplied white.
// Coverage is encoded with c^(gamma/2.2); gamma 1.0 gives text that
// reads well with linear blending into an sRGB framebuffer.
func (img *FontImage) SRGBAPixels(gamma float32) []Color32 {
	out := make([]Color32, len(img.Pixels))
	for i, c := range img.Pixels {
		out[i] = CoverageToColor(c, gamma)
	}
	return out
}

func (*FontImage) imageData() {}

// CoverageToColor encodes a single coverage value as premultiplied white.
func CoverageToColor(coverage, gamma float32) Color32 {
	return WhiteAlpha(FastRound(math32.Pow(coverage, gamma/2.2) * 255))
}

// FastRound rounds r to the nearest byte, saturating at 0 and 255.
func FastRound(r float32) uint8 {
	v := math32.Floor(r + 0.5)
	switch {
	case v != v || v <= 0: // NaN or negative
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}

// imageString is used by ImageDelta.String.
func imageString(img ImageData) string {
	switch img.(type) {
	case *ColorImage:
		return fmt.Sprintf("Color(%dx%d)", img.Width(), img.Height())
	case *FontImage:
		return fmt.Sprintf("Font(%dx%d)", img.Width(), img.Height())
	case nil:
		return "nil"
	default:
		return fmt.Sprintf("%T(%dx%d)", img, img.Width(), img.Height())
	}
}
