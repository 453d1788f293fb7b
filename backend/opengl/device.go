//go:build !nogl

package opengl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/gogpu/uiglue/backend"
	"github.com/gogpu/uiglue/frame"
	"github.com/gogpu/uiglue/raster"
)

var capEnums = [len(raster.Caps)]uint32{
	raster.CullFace:        gl.CULL_FACE,
	raster.DepthTest:       gl.DEPTH_TEST,
	raster.ScissorTest:     gl.SCISSOR_TEST,
	raster.Blend:           gl.BLEND,
	raster.FramebufferSRGB: gl.FRAMEBUFFER_SRGB,
}

func blendEnum(f raster.BlendFactor) uint32 {
	switch f {
	case raster.BlendOne:
		return gl.ONE
	case raster.BlendSrcAlpha:
		return gl.SRC_ALPHA
	case raster.BlendOneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	default:
		return gl.ZERO
	}
}

func filterEnum(f raster.Filter) int32 {
	if f == raster.FilterNearest {
		return gl.NEAREST
	}
	return gl.LINEAR
}

// Device is a raster.Device on the current GL context.
type Device struct {
	vao     uint32
	vbo     uint32
	vboSize int
}

var _ raster.Device = (*Device)(nil)

// New loads the GL function pointers of the current context and creates
// the vertex array and buffer used by DrawArrays.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("opengl: init: %w", err)
	}
	d := &Device{}
	gl.GenVertexArrays(1, &d.vao)
	gl.GenBuffers(1, &d.vbo)
	return d, nil
}

func init() {
	backend.Register(backend.GL, func(backend.Config) (backend.Device, error) {
		dev, err := New()
		if err != nil {
			return nil, err
		}
		return dev, nil
	})
}

// Close deletes the vertex array and buffer.
func (d *Device) Close() error {
	if d.vbo != 0 {
		gl.DeleteBuffers(1, &d.vbo)
	}
	if d.vao != 0 {
		gl.DeleteVertexArrays(1, &d.vao)
	}
	d.vao, d.vbo, d.vboSize = 0, 0, 0
	return nil
}

// Viewport maps clip space onto the width x height framebuffer. Call it
// when the window's framebuffer is resized.
func (d *Device) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height)) //nolint:gosec // framebuffer sizes
}

// Clear fills the bound framebuffer with c, ignoring the scissor box.
// With GL_FRAMEBUFFER_SRGB enabled the color is taken as linear.
func (d *Device) Clear(c frame.Color32) {
	scissor := gl.IsEnabled(gl.SCISSOR_TEST)
	if scissor {
		gl.Disable(gl.SCISSOR_TEST)
	}
	gl.ClearColor(float32(c.R())/255, float32(c.G())/255, float32(c.B())/255, float32(c.A())/255)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	if scissor {
		gl.Enable(gl.SCISSOR_TEST)
	}
}

// IsEnabled implements raster.Device.
func (d *Device) IsEnabled(c raster.Cap) bool {
	return gl.IsEnabled(capEnums[c])
}

// Enable implements raster.Device.
func (d *Device) Enable(c raster.Cap) {
	gl.Enable(capEnums[c])
}

// Disable implements raster.Device.
func (d *Device) Disable(c raster.Cap) {
	gl.Disable(capEnums[c])
}

// BlendFunc implements raster.Device.
func (d *Device) BlendFunc(src, dst raster.BlendFactor) {
	gl.BlendFunc(blendEnum(src), blendEnum(dst))
}

// Scissor implements raster.Device.
func (d *Device) Scissor(box raster.ScissorBox) {
	gl.Scissor(box.X, box.Y, box.Width, box.Height)
}

// CreateTexture implements raster.Device. The texture is RGBA8 (not
// sRGB: the fragment stage decodes texels itself) with clamp-to-edge
// wrapping.
func (d *Device) CreateTexture(desc raster.TextureDesc, pix []byte) (raster.Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 || len(pix) != desc.Width*desc.Height*4 {
		return 0, fmt.Errorf("opengl: %w: %dx%d with %d bytes", raster.ErrTextureSize, desc.Width, desc.Height, len(pix))
	}
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filterEnum(desc.MinFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filterEnum(desc.MagFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, unpackAlignment(desc.Width*4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(desc.Width), int32(desc.Height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix)) //nolint:gosec // positive sizes

	if code := gl.GetError(); code != gl.NO_ERROR {
		gl.DeleteTextures(1, &tex)
		return 0, fmt.Errorf("opengl: glTexImage2D %dx%d: error 0x%x", desc.Width, desc.Height, code)
	}
	return raster.Texture(tex), nil
}

// UpdateTexture implements raster.Device.
func (d *Device) UpdateTexture(tex raster.Texture, region raster.Region, pix []byte) {
	if len(pix) != region.Width*region.Height*4 {
		panic(fmt.Sprintf("opengl: %d bytes for %dx%d region", len(pix), region.Width, region.Height))
	}
	if len(pix) == 0 {
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, unpackAlignment(region.Width*4))
	//nolint:gosec // region lies inside the texture
	gl.TexSubImage2D(gl.TEXTURE_2D, 0,
		int32(region.X), int32(region.Y), int32(region.Width), int32(region.Height),
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
}

// DeleteTexture implements raster.Device.
func (d *Device) DeleteTexture(tex raster.Texture) {
	t := uint32(tex)
	gl.DeleteTextures(1, &t)
}

// ActiveTexture implements raster.Device.
func (d *Device) ActiveTexture(slot int) {
	raster.CheckSlot(slot)
	gl.ActiveTexture(gl.TEXTURE0 + uint32(slot)) //nolint:gosec // checked above
}

// BindTexture implements raster.Device.
func (d *Device) BindTexture(tex raster.Texture) {
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
}

// Program is a linked GL program.
type Program struct {
	id       uint32
	uniforms map[string]int32
}

// AttribLocation implements raster.Program.
func (p *Program) AttribLocation(name string) int {
	return int(gl.GetAttribLocation(p.id, gl.Str(name+"\x00")))
}

func (p *Program) uniform(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
	p.uniforms[name] = loc
	return loc
}

// SetUniform2f implements raster.Program. The program must be current.
func (p *Program) SetUniform2f(name string, x, y float32) {
	gl.Uniform2f(p.uniform(name), x, y)
}

// SetUniform1i implements raster.Program. The program must be current.
func (p *Program) SetUniform1i(name string, v int32) {
	gl.Uniform1i(p.uniform(name), v)
}

// NewProgram implements raster.Device. It compiles and links the GLSL
// stages of src; the WGSL source is not used.
func (d *Device) NewProgram(src raster.ShaderSource) (raster.Program, error) {
	vs, err := compileShader(gl.VERTEX_SHADER, src.Vertex)
	if err != nil {
		return nil, fmt.Errorf("opengl: vertex stage: %w", err)
	}
	defer gl.DeleteShader(vs)
	fs, err := compileShader(gl.FRAGMENT_SHADER, src.Fragment)
	if err != nil {
		return nil, fmt.Errorf("opengl: fragment stage: %w", err)
	}
	defer gl.DeleteShader(fs)

	id := gl.CreateProgram()
	gl.AttachShader(id, vs)
	gl.AttachShader(id, fs)
	gl.LinkProgram(id)

	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(id, logLength, nil, gl.Str(log))
		gl.DeleteProgram(id)
		return nil, fmt.Errorf("opengl: %w: %s", raster.ErrProgramLink, strings.TrimRight(log, "\x00"))
	}
	return &Program{id: id, uniforms: make(map[string]int32)}, nil
}

func compileShader(shaderType uint32, source string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%w: %s", raster.ErrShaderCompile, strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

// UseProgram implements raster.Device. A nil program unbinds.
func (d *Device) UseProgram(p raster.Program) {
	if prog, ok := p.(*Program); ok && prog != nil {
		gl.UseProgram(prog.id)
		return
	}
	gl.UseProgram(0)
}

// DeleteProgram implements raster.Device.
func (d *Device) DeleteProgram(p raster.Program) {
	if prog, ok := p.(*Program); ok && prog != nil {
		gl.DeleteProgram(prog.id)
	}
}

// DrawArrays implements raster.Device. The data is streamed into the
// device's vertex buffer, which grows but never shrinks.
func (d *Device) DrawArrays(topology raster.Topology, layout raster.VertexLayout, data []byte, count int) {
	if count <= 0 || len(data) == 0 || topology != raster.Triangles {
		return
	}
	gl.BindVertexArray(d.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)
	if len(data) > d.vboSize {
		gl.BufferData(gl.ARRAY_BUFFER, len(data), gl.Ptr(data), gl.STREAM_DRAW)
		d.vboSize = len(data)
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(data), gl.Ptr(data))
	}

	for _, a := range layout.Attribs {
		loc := uint32(a.Location) //nolint:gosec // locations come from AttribLocation
		gl.EnableVertexAttribArray(loc)
		gl.VertexAttribPointer(loc, int32(a.Components), gl.FLOAT, false, int32(layout.Stride), gl.PtrOffset(a.Offset)) //nolint:gosec // small values
	}
	gl.DrawArrays(gl.TRIANGLES, 0, int32(count)) //nolint:gosec // bounded by the batch
	for _, a := range layout.Attribs {
		gl.DisableVertexAttribArray(uint32(a.Location)) //nolint:gosec // see above
	}
	gl.BindVertexArray(0)
}
