// Package pipeline draws clipped toolkit primitives through a raster.Device.
//
// Every primitive is drawn under the same forced rasterizer state
// (no culling, no depth test, scissor on, premultiplied blending, sRGB
// framebuffer). The caller's toggles are captured before and restored
// after each primitive on every exit path.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/chewxy/math32"

	"github.com/gogpu/uiglue/frame"
	"github.com/gogpu/uiglue/imm"
	"github.com/gogpu/uiglue/raster"
)

// Names shared with the UI shader program.
const (
	AttribPos      = "in_pos"
	AttribUV       = "in_uv"
	AttribColor    = "in_color"
	UniformScreen  = "u_screen_size"
	UniformSampler = "u_sampler"
)

// ErrSkipped wraps the cause of every skipped primitive.
var ErrSkipped = errors.New("pipeline: primitive skipped")

// Textures binds managed textures by toolkit ID.
type Textures interface {
	Activate(id uint64, slot int) error
}

// Drawer draws primitive lists. It owns a vertex batch whose buffer is
// reused from frame to frame.
type Drawer struct {
	dev    raster.Device
	prog   raster.Program
	slot   int
	batch  *imm.Batch
	logger *slog.Logger
}

// New returns a Drawer using prog and binding textures to slot.
// A nil logger is allowed.
func New(dev raster.Device, prog raster.Program, slot int, logger *slog.Logger) *Drawer {
	raster.CheckSlot(slot)
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Drawer{
		dev:    dev,
		prog:   prog,
		slot:   slot,
		batch:  imm.NewBatch(dev, logger),
		logger: logger,
	}
}

// Batch returns the vertex batch used for drawing.
func (d *Drawer) Batch() *imm.Batch {
	return d.batch
}

// Draw draws prims in order. A primitive that cannot be drawn is skipped
// and the frame continues; the causes are joined into the returned error.
func (d *Drawer) Draw(prims []frame.ClippedPrimitive, textures Textures, screen frame.Screen) error {
	var errs []error
	prepared := false
	for i := range prims {
		p := &prims[i]
		if err := p.Mesh.Validate(); err != nil {
			errs = append(errs, d.skip(i, p, err))
			continue
		}
		if !prepared {
			d.prepare(screen)
			prepared = true
		}
		if err := d.bind(p.Mesh.Texture, textures); err != nil {
			errs = append(errs, d.skip(i, p, err))
			continue
		}
		d.drawPrimitive(p, screen)
	}
	return errors.Join(errs...)
}

func (d *Drawer) skip(i int, p *frame.ClippedPrimitive, cause error) error {
	d.logger.Warn("pipeline: primitive skipped",
		slog.Int("index", i),
		slog.String("texture", p.Mesh.Texture.String()),
		slog.String("err", cause.Error()))
	return fmt.Errorf("%w: primitive %d: %w", ErrSkipped, i, cause)
}

// prepare selects the program and sets the per-frame uniforms.
func (d *Drawer) prepare(screen frame.Screen) {
	w, h := screen.SizeInPoints()
	d.dev.UseProgram(d.prog)
	d.prog.SetUniform2f(UniformScreen, w, h)
	d.prog.SetUniform1i(UniformSampler, int32(d.slot)) //nolint:gosec // slot < MaxTextureSlots
}

// bind resolves the texture reference and binds it to the sampler slot.
func (d *Drawer) bind(id frame.TextureID, textures Textures) error {
	if id.IsManaged() {
		return textures.Activate(id.ID, d.slot)
	}
	d.dev.ActiveTexture(d.slot)
	d.dev.BindTexture(raster.Texture(id.ID)) //nolint:gosec // user handles are rasterizer handles
	return nil
}

// drawPrimitive draws one validated primitive under the forced state.
func (d *Drawer) drawPrimitive(p *frame.ClippedPrimitive, screen frame.Screen) {
	snap := raster.Capture(d.dev)
	defer snap.Restore(d.dev)

	d.dev.Disable(raster.CullFace)
	d.dev.Disable(raster.DepthTest)
	d.dev.Enable(raster.ScissorTest)
	d.dev.Enable(raster.Blend)
	d.dev.BlendFunc(raster.BlendOne, raster.BlendOneMinusSrcAlpha)
	d.dev.Enable(raster.FramebufferSRGB)

	d.dev.Scissor(ScissorFor(p.ClipRect, screen.PixelsPerPoint, screen.Width, screen.Height))

	f := d.batch.ClearedFormat()
	pos := f.AddAttribute(AttribPos, imm.F32, 2, imm.FetchFloat)
	uv := f.AddAttribute(AttribUV, imm.F32, 2, imm.FetchFloat)
	col := f.AddAttribute(AttribColor, imm.F32, 4, imm.FetchFloat)

	mesh := &p.Mesh
	d.batch.Begin(raster.Triangles, len(mesh.Indices), d.prog)
	for _, idx := range mesh.Indices {
		v := &mesh.Vertices[idx]
		d.batch.Attr2f(uv, v.UV.X, 1-v.UV.Y)
		d.batch.Attr4f(col, float32(v.Color[0]), float32(v.Color[1]), float32(v.Color[2]), float32(v.Color[3]))
		d.batch.Vertex2f(pos, v.Pos.X, v.Pos.Y)
	}
	d.batch.End()
}

// ScissorFor converts a clip rectangle in points to a scissor box in
// device pixels with a bottom-left origin.
func ScissorFor(clip frame.Rect, pixelsPerPoint float32, screenWidth, screenHeight int) raster.ScissorBox {
	w, h := float32(screenWidth), float32(screenHeight)

	minX := clamp(clip.Min.X*pixelsPerPoint, 0, w)
	minY := clamp(clip.Min.Y*pixelsPerPoint, 0, h)
	maxX := clamp(clip.Max.X*pixelsPerPoint, minX, w)
	maxY := clamp(clip.Max.Y*pixelsPerPoint, minY, h)

	minX, minY = math32.Round(minX), math32.Round(minY)
	maxX, maxY = math32.Round(maxX), math32.Round(maxY)

	return raster.ScissorBox{
		X:      int32(minX),
		Y:      int32(h - maxY),
		Width:  int32(maxX - minX),
		Height: int32(maxY - minY),
	}
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(v, hi))
}
