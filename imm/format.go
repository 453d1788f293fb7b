// Package imm implements an immediate-mode vertex batch: a runtime vertex
// format, per-attribute writes in any order, and one upload plus one draw
// per batch.
//
// Typical use:
//
//	f := b.ClearedFormat()
//	pos := f.AddAttribute("in_pos", imm.F32, 2, imm.FetchFloat)
//	col := f.AddAttribute("in_color", imm.F32, 4, imm.FetchFloat)
//	b.Begin(raster.Triangles, 3, prog)
//	for _, v := range verts {
//		b.Attr4f(col, v.R, v.G, v.B, v.A)
//		b.Vertex2f(pos, v.X, v.Y)
//	}
//	b.End()
//
// Contract violations (wrong counts, stale handles, writes outside a
// batch) panic: they are caller bugs, not runtime conditions.
package imm

import "fmt"

// MaxAttributes is the capacity of a Format.
const MaxAttributes = 16

// CompType is the scalar type of an attribute component.
type CompType uint8

const (
	// F32 is a 32-bit float component.
	F32 CompType = iota
)

// Size returns the component size in bytes.
func (c CompType) Size() int {
	switch c {
	case F32:
		return 4
	default:
		panic(fmt.Sprintf("imm: unsupported component type %d", c))
	}
}

// FetchMode tells the rasterizer how components reach the shader.
type FetchMode uint8

const (
	// FetchFloat passes float components unchanged.
	FetchFloat FetchMode = iota

	// FetchIntToFloatUnit normalizes integer components to [0, 1].
	// Only meaningful for integer component types.
	FetchIntToFloatUnit
)

// Attribute describes one named vertex attribute.
type Attribute struct {
	Name  string
	Comp  CompType
	Count int
	Fetch FetchMode

	// Offset in bytes from the start of the vertex.
	Offset int
}

// AttrHandle refers to an attribute of the Format that issued it.
// Handles from before the last ClearedFormat are rejected.
type AttrHandle struct {
	index uint8
	gen   uint32
}

// Format is an ordered attribute list. Offsets are assigned in
// declaration order, so the stride is the sum of attribute sizes.
type Format struct {
	attrs  [MaxAttributes]Attribute
	n      int
	stride int
	gen    uint32
	locked bool
}

// AddAttribute appends an attribute and returns its handle.
// It panics while a batch is open, on a duplicate name, on a component
// count outside 1..4 or when the format is full.
func (f *Format) AddAttribute(name string, comp CompType, count int, fetch FetchMode) AttrHandle {
	if f.locked {
		panic("imm: AddAttribute during an open batch")
	}
	if count < 1 || count > 4 {
		panic(fmt.Sprintf("imm: attribute %q has %d components, want 1..4", name, count))
	}
	if f.n == MaxAttributes {
		panic(fmt.Sprintf("imm: format full (%d attributes)", MaxAttributes))
	}
	for i := 0; i < f.n; i++ {
		if f.attrs[i].Name == name {
			panic(fmt.Sprintf("imm: duplicate attribute %q", name))
		}
	}
	f.attrs[f.n] = Attribute{
		Name:   name,
		Comp:   comp,
		Count:  count,
		Fetch:  fetch,
		Offset: f.stride,
	}
	h := AttrHandle{index: uint8(f.n), gen: f.gen} //nolint:gosec // n < MaxAttributes
	f.n++
	f.stride += comp.Size() * count
	return h
}

// Len returns the number of attributes.
func (f *Format) Len() int { return f.n }

// Stride returns the vertex size in bytes.
func (f *Format) Stride() int { return f.stride }

// Attribute returns the i-th attribute.
func (f *Format) Attribute(i int) Attribute {
	if i < 0 || i >= f.n {
		panic(fmt.Sprintf("imm: attribute index %d out of range [0, %d)", i, f.n))
	}
	return f.attrs[i]
}

// reset empties the format and invalidates every issued handle.
func (f *Format) reset() {
	for i := 0; i < f.n; i++ {
		f.attrs[i] = Attribute{}
	}
	f.n = 0
	f.stride = 0
	f.gen++
	f.locked = false
}

// lookup validates h and returns its attribute.
func (f *Format) lookup(h AttrHandle) *Attribute {
	if h.gen != f.gen || int(h.index) >= f.n {
		panic("imm: stale attribute handle")
	}
	return &f.attrs[h.index]
}
