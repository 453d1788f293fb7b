// Package rastertest provides a raster.Device that records every call,
// for tests of code drawing through package raster.
package rastertest

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/uiglue/raster"
)

// DefaultAttribs are the vertex attributes of programs created by a
// Recorder unless ProgramAttribs is set. Locations follow slice order.
var DefaultAttribs = []string{"in_pos", "in_uv", "in_color"}

// ErrInjected is returned by calls a test asked to fail.
var ErrInjected = errors.New("rastertest: injected failure")

// Texture is the recorded state of one texture.
type Texture struct {
	Desc    raster.TextureDesc
	Pix     []byte
	Updates []raster.Region
}

// Program is a recorded program.
type Program struct {
	ID       int
	Source   raster.ShaderSource
	Uniforms map[string][]float32
	Deleted  bool

	attribs map[string]int
}

// AttribLocation implements raster.Program.
func (p *Program) AttribLocation(name string) int {
	if loc, ok := p.attribs[name]; ok {
		return loc
	}
	return -1
}

// SetUniform2f implements raster.Program.
func (p *Program) SetUniform2f(name string, x, y float32) {
	p.Uniforms[name] = []float32{x, y}
}

// SetUniform1i implements raster.Program.
func (p *Program) SetUniform1i(name string, v int32) {
	p.Uniforms[name] = []float32{float32(v)}
}

// Draw is one recorded DrawArrays call with the state it ran under.
type Draw struct {
	Topology raster.Topology
	Layout   raster.VertexLayout
	Data     []byte
	Count    int

	State    raster.Snapshot
	Scissor  raster.ScissorBox
	BlendSrc raster.BlendFactor
	BlendDst raster.BlendFactor
	Slot     int
	Texture  raster.Texture
	Program  *Program
}

// Attrib decodes the float components of the attribute bound to location
// for vertex i. It returns nil if the layout has no such location.
func (d *Draw) Attrib(i, location int) []float32 {
	for _, a := range d.Layout.Attribs {
		if a.Location != location {
			continue
		}
		base := i*d.Layout.Stride + a.Offset
		out := make([]float32, a.Components)
		for c := range out {
			bits := binary.LittleEndian.Uint32(d.Data[base+c*4:])
			out[c] = math.Float32frombits(bits)
		}
		return out
	}
	return nil
}

// Recorder is a raster.Device that keeps state in memory and logs every
// call that changes it.
type Recorder struct {
	// ProgramAttribs overrides DefaultAttribs for new programs.
	ProgramAttribs []string

	// FailTextures makes CreateTexture return ErrInjected.
	FailTextures bool

	// FailPrograms makes NewProgram return ErrInjected.
	FailPrograms bool

	// Calls logs state-changing calls in order, e.g. "Enable(Blend)".
	Calls []string

	// Draws logs DrawArrays calls in order.
	Draws []Draw

	// Textures holds live textures by handle.
	Textures map[raster.Texture]*Texture

	// Deleted counts DeleteTexture calls per handle.
	Deleted map[raster.Texture]int

	enabled  [len(raster.Caps)]bool
	blendSrc raster.BlendFactor
	blendDst raster.BlendFactor
	scissor  raster.ScissorBox
	slot     int
	bound    [raster.MaxTextureSlots]raster.Texture
	program  *Program
	nextTex  raster.Texture
	nextProg int
}

var _ raster.Device = (*Recorder)(nil)

// New returns an empty Recorder with every toggle disabled.
func New() *Recorder {
	return &Recorder{
		Textures: make(map[raster.Texture]*Texture),
		Deleted:  make(map[raster.Texture]int),
		blendSrc: raster.BlendOne,
		blendDst: raster.BlendZero,
	}
}

// Reset forgets the logged calls and draws but keeps the device state.
func (r *Recorder) Reset() {
	r.Calls = r.Calls[:0]
	r.Draws = r.Draws[:0]
}

func (r *Recorder) logf(format string, args ...any) {
	r.Calls = append(r.Calls, fmt.Sprintf(format, args...))
}

// IsEnabled implements raster.Device. It is not logged.
func (r *Recorder) IsEnabled(c raster.Cap) bool {
	return r.enabled[c]
}

// Enable implements raster.Device.
func (r *Recorder) Enable(c raster.Cap) {
	r.logf("Enable(%s)", c)
	r.enabled[c] = true
}

// Disable implements raster.Device.
func (r *Recorder) Disable(c raster.Cap) {
	r.logf("Disable(%s)", c)
	r.enabled[c] = false
}

// BlendFunc implements raster.Device.
func (r *Recorder) BlendFunc(src, dst raster.BlendFactor) {
	r.logf("BlendFunc(%s, %s)", src, dst)
	r.blendSrc, r.blendDst = src, dst
}

// Scissor implements raster.Device.
func (r *Recorder) Scissor(box raster.ScissorBox) {
	r.logf("Scissor(%d, %d, %d, %d)", box.X, box.Y, box.Width, box.Height)
	r.scissor = box
}

// CreateTexture implements raster.Device.
func (r *Recorder) CreateTexture(desc raster.TextureDesc, pix []byte) (raster.Texture, error) {
	if r.FailTextures {
		return 0, ErrInjected
	}
	if desc.Width <= 0 || desc.Height <= 0 || len(pix) != desc.Width*desc.Height*4 {
		return 0, fmt.Errorf("%w: %dx%d with %d bytes", raster.ErrTextureSize, desc.Width, desc.Height, len(pix))
	}
	r.nextTex++
	tex := r.nextTex
	r.Textures[tex] = &Texture{Desc: desc, Pix: append([]byte(nil), pix...)}
	r.logf("CreateTexture(%d, %dx%d)", tex, desc.Width, desc.Height)
	return tex, nil
}

// UpdateTexture implements raster.Device. It panics on an unknown
// texture or a region outside the texture.
func (r *Recorder) UpdateTexture(tex raster.Texture, region raster.Region, pix []byte) {
	t, ok := r.Textures[tex]
	if !ok {
		panic(fmt.Sprintf("rastertest: UpdateTexture of unknown texture %d", tex))
	}
	if region.X < 0 || region.Y < 0 || region.X+region.Width > t.Desc.Width || region.Y+region.Height > t.Desc.Height {
		panic(fmt.Sprintf("rastertest: region %+v outside %dx%d texture", region, t.Desc.Width, t.Desc.Height))
	}
	if len(pix) != region.Width*region.Height*4 {
		panic(fmt.Sprintf("rastertest: %d bytes for %dx%d region", len(pix), region.Width, region.Height))
	}
	rowBytes := region.Width * 4
	for y := 0; y < region.Height; y++ {
		dst := ((region.Y+y)*t.Desc.Width + region.X) * 4
		copy(t.Pix[dst:dst+rowBytes], pix[y*rowBytes:])
	}
	t.Updates = append(t.Updates, region)
	r.logf("UpdateTexture(%d, %+v)", tex, region)
}

// DeleteTexture implements raster.Device.
func (r *Recorder) DeleteTexture(tex raster.Texture) {
	delete(r.Textures, tex)
	r.Deleted[tex]++
	for i, b := range r.bound {
		if b == tex {
			r.bound[i] = 0
		}
	}
	r.logf("DeleteTexture(%d)", tex)
}

// ActiveTexture implements raster.Device.
func (r *Recorder) ActiveTexture(slot int) {
	raster.CheckSlot(slot)
	r.logf("ActiveTexture(%d)", slot)
	r.slot = slot
}

// BindTexture implements raster.Device.
func (r *Recorder) BindTexture(tex raster.Texture) {
	r.logf("BindTexture(%d)", tex)
	r.bound[r.slot] = tex
}

// Bound returns the texture bound to slot.
func (r *Recorder) Bound(slot int) raster.Texture {
	return r.bound[slot]
}

// NewProgram implements raster.Device.
func (r *Recorder) NewProgram(src raster.ShaderSource) (raster.Program, error) {
	if r.FailPrograms {
		return nil, ErrInjected
	}
	names := r.ProgramAttribs
	if names == nil {
		names = DefaultAttribs
	}
	r.nextProg++
	p := &Program{
		ID:       r.nextProg,
		Source:   src,
		Uniforms: make(map[string][]float32),
		attribs:  make(map[string]int, len(names)),
	}
	for i, n := range names {
		p.attribs[n] = i
	}
	r.logf("NewProgram(%d)", p.ID)
	return p, nil
}

// UseProgram implements raster.Device.
func (r *Recorder) UseProgram(p raster.Program) {
	prog, _ := p.(*Program)
	r.program = prog
	if prog == nil {
		r.logf("UseProgram(nil)")
		return
	}
	r.logf("UseProgram(%d)", prog.ID)
}

// DeleteProgram implements raster.Device.
func (r *Recorder) DeleteProgram(p raster.Program) {
	prog, ok := p.(*Program)
	if !ok {
		return
	}
	prog.Deleted = true
	if r.program == prog {
		r.program = nil
	}
	r.logf("DeleteProgram(%d)", prog.ID)
}

// DrawArrays implements raster.Device.
func (r *Recorder) DrawArrays(topology raster.Topology, layout raster.VertexLayout, data []byte, count int) {
	r.Draws = append(r.Draws, Draw{
		Topology: topology,
		Layout: raster.VertexLayout{
			Stride:  layout.Stride,
			Attribs: append([]raster.VertexAttrib(nil), layout.Attribs...),
		},
		Data:     append([]byte(nil), data...),
		Count:    count,
		State:    raster.Capture(r),
		Scissor:  r.scissor,
		BlendSrc: r.blendSrc,
		BlendDst: r.blendDst,
		Slot:     r.slot,
		Texture:  r.bound[r.slot],
		Program:  r.program,
	})
	r.logf("DrawArrays(%s, %d)", topology, count)
}
