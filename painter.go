package uiglue

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/uiglue/frame"
	"github.com/gogpu/uiglue/internal/pipeline"
	"github.com/gogpu/uiglue/raster"
	"github.com/gogpu/uiglue/shaders"
	"github.com/gogpu/uiglue/texture"
)

// Painter draws toolkit frames through a raster.Device. It owns the UI
// shader program and the managed texture table.
//
// Painter is not safe for concurrent use; all calls must come from the
// goroutine owning the rasterizer context.
type Painter struct {
	dev    raster.Device
	prog   raster.Program
	table  *texture.Table
	drawer *pipeline.Drawer
	logger *slog.Logger
	closed bool
}

// New compiles the UI program on dev and returns a Painter. Program
// creation errors are returned wrapped.
func New(dev raster.Device, opts ...Option) (*Painter, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, fmt.Errorf("%w: %d", err, o.slot)
	}
	logger := o.logger
	if logger == nil {
		logger = Logger()
	}

	prog, err := dev.NewProgram(shaders.UI())
	if err != nil {
		return nil, fmt.Errorf("uiglue: create UI program: %w", err)
	}
	for _, name := range []string{pipeline.AttribPos, pipeline.AttribUV, pipeline.AttribColor} {
		logger.Debug("uiglue: program attribute",
			slog.String("name", name),
			slog.Int("location", prog.AttribLocation(name)))
	}

	return &Painter{
		dev:    dev,
		prog:   prog,
		table:  texture.NewTable(dev, logger),
		drawer: pipeline.New(dev, prog, o.slot, logger),
		logger: logger,
	}, nil
}

// Paint draws one frame of toolkit output on the currently bound
// framebuffer and returns the toolkit's platform output unmodified.
//
// Texture updates are applied before drawing and frees after, since a
// texture freed in this frame may still be used by its primitives. A
// primitive that cannot be drawn is skipped; the causes are joined into
// the returned error after the whole frame was drawn.
func (p *Painter) Paint(out frame.FullOutput, screen frame.Screen) (frame.PlatformOutput, error) {
	if p.closed {
		return out.Platform, ErrClosed
	}
	p.table.Apply(out.Textures)
	defer p.table.ApplyFrees(out.Textures)

	if screen.Width <= 0 || screen.Height <= 0 {
		// Minimized window.
		p.logger.Debug("uiglue: empty screen, frame not drawn",
			slog.Int("width", screen.Width), slog.Int("height", screen.Height))
		return out.Platform, nil
	}

	fd, framed := p.dev.(raster.FrameDevice)
	if framed {
		if err := fd.BeginFrame(); err != nil {
			return out.Platform, fmt.Errorf("uiglue: begin frame: %w", err)
		}
	}

	var errs []error
	if err := p.drawer.Draw(out.Primitives, p.table, screen); err != nil {
		errs = append(errs, err)
	}
	if framed {
		if err := fd.EndFrame(); err != nil {
			errs = append(errs, fmt.Errorf("uiglue: end frame: %w", err))
		}
	}
	return out.Platform, errors.Join(errs...)
}

// UserTexture uploads a caller-owned texture and returns a reference that
// primitives can use. The painter borrows the texture: the caller keeps
// ownership and must Release it.
func (p *Painter) UserTexture(t *texture.RGBA8) (frame.TextureID, error) {
	if p.closed {
		return frame.TextureID{}, ErrClosed
	}
	h, err := t.Handle(p.dev)
	if err != nil {
		return frame.TextureID{}, fmt.Errorf("uiglue: upload user texture: %w", err)
	}
	return frame.UserTexture(uint64(h)), nil
}

// Textures returns the managed texture table.
func (p *Painter) Textures() *texture.Table {
	return p.table
}

// Close releases every managed texture and the UI program. Close is
// idempotent.
func (p *Painter) Close() {
	if p.closed {
		return
	}
	p.closed = true
	p.table.Close()
	p.dev.DeleteProgram(p.prog)
}
