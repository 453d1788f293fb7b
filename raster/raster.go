// Package raster defines the stateful immediate-mode rasterizer the UI
// painter draws through.
//
// The contract mirrors a classic fixed-function GPU API: a small set of
// global toggles, a blend function, a scissor box, texture units and a
// linked shader program. Coordinates handed to the rasterizer use a
// bottom-left origin (scissor boxes, texture rows), like OpenGL.
//
// Implementations live under backend/. A Device is not safe for
// concurrent use.
package raster

import (
	"errors"
	"fmt"
)

// MaxTextureSlots is the number of sampler slots a Device exposes.
const MaxTextureSlots = 32

// Errors returned by Device implementations.
var (
	// ErrShaderCompile is returned when a shader stage fails to compile.
	ErrShaderCompile = errors.New("raster: shader compilation failed")

	// ErrProgramLink is returned when the program fails to link.
	ErrProgramLink = errors.New("raster: program link failed")

	// ErrTextureSize is returned for a texture with a non-positive size or
	// a pixel buffer that does not match it.
	ErrTextureSize = errors.New("raster: invalid texture size")
)

// Cap is a global rasterizer toggle.
type Cap uint8

const (
	// CullFace discards back-facing triangles.
	CullFace Cap = iota

	// DepthTest discards fragments failing the depth comparison.
	DepthTest

	// ScissorTest discards fragments outside the scissor box.
	ScissorTest

	// Blend blends fragments into the framebuffer using the blend function.
	Blend

	// FramebufferSRGB makes blending happen in linear space and
	// re-encodes the result as sRGB on write.
	FramebufferSRGB

	numCaps
)

// Caps lists every toggle in declaration order.
var Caps = [numCaps]Cap{CullFace, DepthTest, ScissorTest, Blend, FramebufferSRGB}

// String returns the toggle name.
func (c Cap) String() string {
	switch c {
	case CullFace:
		return "CullFace"
	case DepthTest:
		return "DepthTest"
	case ScissorTest:
		return "ScissorTest"
	case Blend:
		return "Blend"
	case FramebufferSRGB:
		return "FramebufferSRGB"
	default:
		return fmt.Sprintf("Cap(%d)", uint8(c))
	}
}

// BlendFactor scales a source or destination color during blending.
type BlendFactor uint8

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
)

// String returns the factor name.
func (f BlendFactor) String() string {
	switch f {
	case BlendZero:
		return "Zero"
	case BlendOne:
		return "One"
	case BlendSrcAlpha:
		return "SrcAlpha"
	case BlendOneMinusSrcAlpha:
		return "OneMinusSrcAlpha"
	default:
		return fmt.Sprintf("BlendFactor(%d)", uint8(f))
	}
}

// Topology is the primitive assembly mode of a draw.
type Topology uint8

const (
	// Triangles treats every three vertices as one triangle.
	Triangles Topology = iota
)

// String returns the topology name.
func (t Topology) String() string {
	if t == Triangles {
		return "Triangles"
	}
	return fmt.Sprintf("Topology(%d)", uint8(t))
}

// Filter is a texture sampling filter.
type Filter uint8

const (
	FilterLinear Filter = iota
	FilterNearest
)

// Texture is a rasterizer texture handle. The zero value is no texture.
type Texture uint32

// TextureDesc describes an RGBA8 texture. Textures always clamp to edge.
type TextureDesc struct {
	Width, Height int
	MinFilter     Filter
	MagFilter     Filter
}

// Region is a rectangle of texels, with row 0 the bottom row.
type Region struct {
	X, Y, Width, Height int
}

// ScissorBox is a rectangle in device pixels, with y = 0 the bottom row
// of the framebuffer.
type ScissorBox struct {
	X, Y, Width, Height int32
}

// VertexAttrib binds a float attribute of an interleaved vertex buffer to
// a program attribute location.
type VertexAttrib struct {
	Location   int
	Components int
	Offset     int
}

// VertexLayout describes interleaved float vertex data.
type VertexLayout struct {
	Stride  int
	Attribs []VertexAttrib
}

// ShaderSource holds the program source for every backend family.
// GLSL backends use Vertex and Fragment, WebGPU backends use WGSL.
type ShaderSource struct {
	Vertex   string
	Fragment string
	WGSL     string
}

// Program is a linked shader program.
type Program interface {
	// AttribLocation returns the location of a vertex attribute, or -1
	// when the program has no active attribute of that name.
	AttribLocation(name string) int

	// SetUniform2f sets a vec2 uniform. Unknown names are ignored.
	SetUniform2f(name string, x, y float32)

	// SetUniform1i sets an int or sampler uniform. Unknown names are ignored.
	SetUniform1i(name string, v int32)
}

// Device is the immediate-mode rasterizer.
//
// Calls that carry data (CreateTexture, UpdateTexture, DrawArrays) copy it
// before returning; callers may reuse their buffers.
type Device interface {
	IsEnabled(c Cap) bool
	Enable(c Cap)
	Disable(c Cap)
	BlendFunc(src, dst BlendFactor)
	Scissor(box ScissorBox)

	// CreateTexture creates a texture from bottom-up RGBA8 pixels,
	// len(pix) == Width*Height*4.
	CreateTexture(desc TextureDesc, pix []byte) (Texture, error)

	// UpdateTexture replaces a region of tex with tightly packed
	// bottom-up RGBA8 rows.
	UpdateTexture(tex Texture, region Region, pix []byte)

	DeleteTexture(tex Texture)

	// ActiveTexture selects the sampler slot BindTexture binds to.
	// It panics if slot is outside [0, MaxTextureSlots).
	ActiveTexture(slot int)
	BindTexture(tex Texture)

	NewProgram(src ShaderSource) (Program, error)
	UseProgram(p Program)
	DeleteProgram(p Program)

	// DrawArrays draws count vertices from interleaved data.
	DrawArrays(topology Topology, layout VertexLayout, data []byte, count int)
}

// FrameDevice is implemented by devices that record a frame's commands
// and submit them at the end, rather than executing each call at once.
type FrameDevice interface {
	Device
	BeginFrame() error
	EndFrame() error
}

// CheckSlot panics if slot is not a valid sampler slot.
func CheckSlot(slot int) {
	if slot < 0 || slot >= MaxTextureSlots {
		panic(fmt.Sprintf("raster: texture slot %d outside [0, %d)", slot, MaxTextureSlots))
	}
}
