// Package texture manages the painter's textures: CPU-resident RGBA8
// images that are uploaded lazily and patched incrementally.
//
// Pixels are stored bottom row first, the way the rasterizer expects
// them. Toolkit images arrive top row first and are flipped on the way in.
package texture

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/uiglue/frame"
	"github.com/gogpu/uiglue/raster"
)

// FontGamma is the gamma used to encode font coverage. It is fixed.
const FontGamma = 1.0

// RGBA8 is a texture with 8-bit premultiplied sRGBA texels.
//
// The GPU texture is created on the first Handle or Activate and kept in
// sync with the CPU copy: partial updates are uploaded as a single
// sub-rectangle, whole updates recreate the GPU texture.
type RGBA8 struct {
	width, height int
	pix           []byte
	opts          frame.TextureOptions

	dev    raster.Device
	handle raster.Texture

	// dirty is the region, in bottom-up texels, changed since upload.
	dirty    raster.Region
	hasDirty bool
}

// FromPixels creates a texture from bottom-up pixels.
// It panics unless len(pixels) == width*height.
func FromPixels(width, height int, pixels []frame.Color32) *RGBA8 {
	if width <= 0 || height <= 0 || len(pixels) != width*height {
		panic(fmt.Sprintf("texture: %d pixels for a %dx%d texture", len(pixels), width, height))
	}
	t := &RGBA8{
		width:  width,
		height: height,
		pix:    make([]byte, width*height*4),
		opts:   frame.DefaultTextureOptions,
	}
	for i, c := range pixels {
		copy(t.pix[i*4:i*4+4], c[:])
	}
	return t
}

// FromImage creates a texture from any image, converting it to
// premultiplied RGBA first.
func FromImage(img image.Image, opts frame.TextureOptions) *RGBA8 {
	b := img.Bounds()
	src, ok := img.(*image.RGBA)
	if !ok || src.Rect.Min != (image.Point{}) || src.Stride != b.Dx()*4 {
		src = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		xdraw.Copy(src, image.Point{}, img, b, xdraw.Src, nil)
	}

	t := &RGBA8{
		width:  b.Dx(),
		height: b.Dy(),
		pix:    make([]byte, b.Dx()*b.Dy()*4),
		opts:   opts,
	}
	row := t.width * 4
	for y := 0; y < t.height; y++ {
		dst := (t.height - 1 - y) * row
		copy(t.pix[dst:dst+row], src.Pix[y*src.Stride:])
	}
	return t
}

// FromDelta creates a texture from a whole-image delta. A partial delta
// cannot establish an image and yields (nil, false).
func FromDelta(d frame.ImageDelta) (*RGBA8, bool) {
	if !d.IsWhole() {
		return nil, false
	}
	w, h := d.Image.Width(), d.Image.Height()
	t := &RGBA8{
		width:  w,
		height: h,
		pix:    make([]byte, w*h*4),
		opts:   d.Options,
	}
	t.writeImage(0, 0, d.Image)
	return t, true
}

// Width returns the width in texels.
func (t *RGBA8) Width() int { return t.width }

// Height returns the height in texels.
func (t *RGBA8) Height() int { return t.height }

// Options returns the sampling options.
func (t *RGBA8) Options() frame.TextureOptions { return t.opts }

// Uploaded reports whether a GPU texture currently exists.
func (t *RGBA8) Uploaded() bool { return t.dev != nil }

// Pixel returns the texel at column x of stored row y (row 0 is the bottom).
func (t *RGBA8) Pixel(x, y int) frame.Color32 {
	i := (y*t.width + x) * 4
	return frame.Color32{t.pix[i], t.pix[i+1], t.pix[i+2], t.pix[i+3]}
}

// Pixels returns a copy of the texels in storage order.
func (t *RGBA8) Pixels() []frame.Color32 {
	out := make([]frame.Color32, t.width*t.height)
	for i := range out {
		copy(out[i][:], t.pix[i*4:i*4+4])
	}
	return out
}

// Update applies a delta. A whole delta replaces the image and its
// options; a partial delta patches the rectangle at Pos, which must lie
// inside the texture.
func (t *RGBA8) Update(d frame.ImageDelta) {
	if d.IsWhole() {
		fresh, _ := FromDelta(d)
		t.Release()
		t.width, t.height = fresh.width, fresh.height
		t.pix = fresh.pix
		t.opts = fresh.opts
		return
	}

	if d.Options != t.opts {
		// Sampler state changed: the next upload recreates the texture.
		t.opts = d.Options
		t.Release()
	}
	x, y := d.Pos[0], d.Pos[1]
	t.writeImage(x, y, d.Image)
	if t.dev != nil {
		t.markDirty(raster.Region{
			X:      x,
			Y:      t.height - y - d.Image.Height(),
			Width:  d.Image.Width(),
			Height: d.Image.Height(),
		})
	}
}

// writeImage copies a top-down image with its top-left corner at (x0, y0)
// in top-down coordinates. Row y of img lands in stored row H - y0 - y - 1.
func (t *RGBA8) writeImage(x0, y0 int, img frame.ImageData) {
	w, h := img.Width(), img.Height()
	if x0 < 0 || y0 < 0 || x0+w > t.width || y0+h > t.height {
		panic(fmt.Sprintf("texture: %dx%d patch at (%d, %d) outside %dx%d texture",
			w, h, x0, y0, t.width, t.height))
	}

	switch img := img.(type) {
	case *frame.ColorImage:
		if len(img.Pixels) != w*h {
			panic(fmt.Sprintf("texture: color image has %d pixels, want %d", len(img.Pixels), w*h))
		}
		for y := 0; y < h; y++ {
			row := t.height - y0 - y - 1
			for x := 0; x < w; x++ {
				c := img.Pixels[y*w+x]
				i := (row*t.width + x0 + x) * 4
				copy(t.pix[i:i+4], c[:])
			}
		}
	case *frame.FontImage:
		if len(img.Pixels) != w*h {
			panic(fmt.Sprintf("texture: font image has %d pixels, want %d", len(img.Pixels), w*h))
		}
		for y := 0; y < h; y++ {
			row := t.height - y0 - y - 1
			for x := 0; x < w; x++ {
				c := frame.CoverageToColor(img.Pixels[y*w+x], FontGamma)
				i := (row*t.width + x0 + x) * 4
				copy(t.pix[i:i+4], c[:])
			}
		}
	default:
		panic(fmt.Sprintf("texture: unsupported image type %T", img))
	}
}

func (t *RGBA8) markDirty(r raster.Region) {
	if !t.hasDirty {
		t.dirty = r
		t.hasDirty = true
		return
	}
	minX := min(t.dirty.X, r.X)
	minY := min(t.dirty.Y, r.Y)
	maxX := max(t.dirty.X+t.dirty.Width, r.X+r.Width)
	maxY := max(t.dirty.Y+t.dirty.Height, r.Y+r.Height)
	t.dirty = raster.Region{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Handle returns the GPU texture, creating it on dev and uploading the
// pixels if needed. Pending partial updates are flushed first.
func (t *RGBA8) Handle(dev raster.Device) (raster.Texture, error) {
	if t.dev != nil && t.dev != dev {
		// Moving to another device: drop the old texture.
		t.Release()
	}
	if t.dev == nil {
		h, err := dev.CreateTexture(raster.TextureDesc{
			Width:     t.width,
			Height:    t.height,
			MinFilter: filter(t.opts.Minification),
			MagFilter: filter(t.opts.Magnification),
		}, t.pix)
		if err != nil {
			return 0, fmt.Errorf("texture: upload %dx%d: %w", t.width, t.height, err)
		}
		t.dev = dev
		t.handle = h
		t.hasDirty = false
		return h, nil
	}
	if t.hasDirty {
		dev.UpdateTexture(t.handle, t.dirty, t.region(t.dirty))
		t.hasDirty = false
	}
	return t.handle, nil
}

// region returns the tightly packed texels of r.
func (t *RGBA8) region(r raster.Region) []byte {
	row := r.Width * 4
	out := make([]byte, row*r.Height)
	for y := 0; y < r.Height; y++ {
		src := ((r.Y+y)*t.width + r.X) * 4
		copy(out[y*row:(y+1)*row], t.pix[src:src+row])
	}
	return out
}

// Activate binds the texture to a sampler slot of dev, uploading it
// first if needed. It panics if slot is outside [0, raster.MaxTextureSlots).
func (t *RGBA8) Activate(dev raster.Device, slot int) error {
	raster.CheckSlot(slot)
	h, err := t.Handle(dev)
	if err != nil {
		return err
	}
	dev.ActiveTexture(slot)
	dev.BindTexture(h)
	return nil
}

// Release frees the GPU texture. The CPU copy stays, so the texture can
// be activated again.
func (t *RGBA8) Release() {
	if t.dev == nil {
		return
	}
	t.dev.DeleteTexture(t.handle)
	t.dev = nil
	t.handle = 0
	t.hasDirty = false
}

func filter(f frame.TextureFilter) raster.Filter {
	if f == frame.FilterNearest {
		return raster.FilterNearest
	}
	return raster.FilterLinear
}
