package soft

import (
	"fmt"
	"strings"

	"github.com/gogpu/uiglue/backend"
	"github.com/gogpu/uiglue/raster"
)

// Names the built-in program binds.
const (
	attribPos      = "in_pos"
	attribUV       = "in_uv"
	attribColor    = "in_color"
	uniformScreen  = "u_screen_size"
	uniformSampler = "u_sampler"
)

// Config configures a Device.
type Config struct {
	// Width and Height are the framebuffer size in pixels.
	Width, Height int
}

// Device is a CPU rasterizer. It is not safe for concurrent use.
type Device struct {
	width, height int
	pix           []byte // RGBA8, bottom row first

	enabled  [len(raster.Caps)]bool
	blendSrc raster.BlendFactor
	blendDst raster.BlendFactor
	scissor  raster.ScissorBox

	slot     int
	bound    [raster.MaxTextureSlots]raster.Texture
	textures map[raster.Texture]*softTexture
	nextTex  raster.Texture

	program  *Program
	nextProg int

	raster triangleRaster
}

var _ raster.Device = (*Device)(nil)

// New returns a device with a transparent black framebuffer, every
// toggle disabled and the GL default blend function (ONE, ZERO).
func New(cfg Config) (*Device, error) {
	if err := (backend.Config{Width: cfg.Width, Height: cfg.Height}).Validate(); err != nil {
		return nil, fmt.Errorf("soft: %dx%d: %w", cfg.Width, cfg.Height, err)
	}
	return &Device{
		width:    cfg.Width,
		height:   cfg.Height,
		pix:      make([]byte, cfg.Width*cfg.Height*4),
		blendSrc: raster.BlendOne,
		blendDst: raster.BlendZero,
		scissor:  raster.ScissorBox{Width: int32(cfg.Width), Height: int32(cfg.Height)}, //nolint:gosec // validated sizes
		textures: make(map[raster.Texture]*softTexture),
	}, nil
}

// Size returns the framebuffer size.
func (d *Device) Size() (width, height int) {
	return d.width, d.height
}

// Close releases the framebuffer and every texture.
func (d *Device) Close() error {
	d.pix = nil
	clear(d.textures)
	d.program = nil
	return nil
}

// IsEnabled implements raster.Device.
func (d *Device) IsEnabled(c raster.Cap) bool {
	return d.enabled[c]
}

// Enable implements raster.Device.
func (d *Device) Enable(c raster.Cap) {
	d.enabled[c] = true
}

// Disable implements raster.Device.
func (d *Device) Disable(c raster.Cap) {
	d.enabled[c] = false
}

// BlendFunc implements raster.Device.
func (d *Device) BlendFunc(src, dst raster.BlendFactor) {
	d.blendSrc, d.blendDst = src, dst
}

// Scissor implements raster.Device.
func (d *Device) Scissor(box raster.ScissorBox) {
	d.scissor = box
}

// softTexture is a texture object: bottom-up RGBA8 texels plus filters.
type softTexture struct {
	desc raster.TextureDesc
	pix  []byte
}

// CreateTexture implements raster.Device.
func (d *Device) CreateTexture(desc raster.TextureDesc, pix []byte) (raster.Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 || len(pix) != desc.Width*desc.Height*4 {
		return 0, fmt.Errorf("soft: %w: %dx%d with %d bytes", raster.ErrTextureSize, desc.Width, desc.Height, len(pix))
	}
	d.nextTex++
	d.textures[d.nextTex] = &softTexture{desc: desc, pix: append([]byte(nil), pix...)}
	return d.nextTex, nil
}

// UpdateTexture implements raster.Device. It panics on an unknown
// texture or a region outside the texture.
func (d *Device) UpdateTexture(tex raster.Texture, region raster.Region, pix []byte) {
	t, ok := d.textures[tex]
	if !ok {
		panic(fmt.Sprintf("soft: UpdateTexture of unknown texture %d", tex))
	}
	if region.X < 0 || region.Y < 0 || region.X+region.Width > t.desc.Width || region.Y+region.Height > t.desc.Height {
		panic(fmt.Sprintf("soft: region %+v outside %dx%d texture", region, t.desc.Width, t.desc.Height))
	}
	if len(pix) != region.Width*region.Height*4 {
		panic(fmt.Sprintf("soft: %d bytes for %dx%d region", len(pix), region.Width, region.Height))
	}
	rowBytes := region.Width * 4
	for y := 0; y < region.Height; y++ {
		dst := ((region.Y+y)*t.desc.Width + region.X) * 4
		copy(t.pix[dst:dst+rowBytes], pix[y*rowBytes:])
	}
}

// DeleteTexture implements raster.Device. Slots bound to the texture
// fall back to no texture.
func (d *Device) DeleteTexture(tex raster.Texture) {
	delete(d.textures, tex)
	for i, b := range d.bound {
		if b == tex {
			d.bound[i] = 0
		}
	}
}

// ActiveTexture implements raster.Device.
func (d *Device) ActiveTexture(slot int) {
	raster.CheckSlot(slot)
	d.slot = slot
}

// BindTexture implements raster.Device.
func (d *Device) BindTexture(tex raster.Texture) {
	d.bound[d.slot] = tex
}

// Program is the built-in UI program. Attribute locations are fixed:
// in_pos 0, in_uv 1, in_color 2.
type Program struct {
	id        int
	screen    [2]float32
	samplerID int32
}

var attribLocations = map[string]int{
	attribPos:   0,
	attribUV:    1,
	attribColor: 2,
}

// AttribLocation implements raster.Program.
func (p *Program) AttribLocation(name string) int {
	if loc, ok := attribLocations[name]; ok {
		return loc
	}
	return -1
}

// SetUniform2f implements raster.Program. Unknown uniforms are ignored,
// as GL ignores location -1.
func (p *Program) SetUniform2f(name string, x, y float32) {
	if name == uniformScreen {
		p.screen = [2]float32{x, y}
	}
}

// SetUniform1i implements raster.Program.
func (p *Program) SetUniform1i(name string, v int32) {
	if name == uniformSampler {
		p.samplerID = v
	}
}

// NewProgram implements raster.Device. Sources are checked for the
// interface of the built-in program: GLSL must declare its attributes,
// WGSL must have both entry points. Anything else fails with
// raster.ErrShaderCompile.
func (d *Device) NewProgram(src raster.ShaderSource) (raster.Program, error) {
	switch {
	case src.Vertex != "":
		for _, name := range []string{attribPos, attribUV, attribColor, uniformScreen} {
			if !strings.Contains(src.Vertex, name) {
				return nil, fmt.Errorf("soft: %w: vertex stage does not declare %s", raster.ErrShaderCompile, name)
			}
		}
	case src.WGSL != "":
		if !strings.Contains(src.WGSL, "@vertex") || !strings.Contains(src.WGSL, "@fragment") {
			return nil, fmt.Errorf("soft: %w: missing entry point", raster.ErrShaderCompile)
		}
	default:
		return nil, fmt.Errorf("soft: %w: empty program", raster.ErrShaderCompile)
	}
	d.nextProg++
	return &Program{id: d.nextProg}, nil
}

// UseProgram implements raster.Device.
func (d *Device) UseProgram(p raster.Program) {
	prog, _ := p.(*Program)
	d.program = prog
}

// DeleteProgram implements raster.Device.
func (d *Device) DeleteProgram(p raster.Program) {
	if prog, ok := p.(*Program); ok && d.program == prog {
		d.program = nil
	}
}
