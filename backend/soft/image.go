package soft

import (
	"image"
	"image/png"
	"io"
	"os"

	"github.com/gogpu/uiglue/frame"
)

// Clear fills the whole framebuffer with c, ignoring the scissor box.
func (d *Device) Clear(c frame.Color32) {
	for i := 0; i < len(d.pix); i += 4 {
		copy(d.pix[i:i+4], c[:])
	}
}

// At returns the pixel at (x, y) with a top-left origin. Pixels outside
// the framebuffer are transparent.
func (d *Device) At(x, y int) frame.Color32 {
	if x < 0 || y < 0 || x >= d.width || y >= d.height {
		return frame.Transparent
	}
	i := ((d.height-1-y)*d.width + x) * 4
	return frame.Color32{d.pix[i], d.pix[i+1], d.pix[i+2], d.pix[i+3]}
}

// Image returns a top-down copy of the framebuffer. The pixels are
// premultiplied, as image.RGBA expects.
func (d *Device) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, d.width, d.height))
	rowBytes := d.width * 4
	for y := 0; y < d.height; y++ {
		src := (d.height - 1 - y) * rowBytes
		copy(img.Pix[y*img.Stride:y*img.Stride+rowBytes], d.pix[src:src+rowBytes])
	}
	return img
}

// EncodePNG writes the framebuffer as PNG to w.
func (d *Device) EncodePNG(w io.Writer) error {
	return png.Encode(w, d.Image())
}

// SavePNG saves the framebuffer to a PNG file.
func (d *Device) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	if err := d.EncodePNG(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
