package imm

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"

	"github.com/gogpu/uiglue/raster"
)

// Batch builds interleaved vertex data for one draw call at a time.
// The client-side buffer is reused across batches and only ever grows.
//
// A Batch is not safe for concurrent use.
type Batch struct {
	dev    raster.Device
	logger *slog.Logger

	format Format
	layout raster.VertexLayout

	staging []byte
	open    bool

	topology raster.Topology
	expected int
	vertex   int

	// written has bit i set once attribute i of the current vertex was written.
	written uint32
	full    uint32
}

// NewBatch returns a Batch drawing to dev. A nil logger is allowed.
func NewBatch(dev raster.Device, logger *slog.Logger) *Batch {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Batch{dev: dev, logger: logger}
}

// ClearedFormat empties the vertex format and returns it for the next
// batch. Handles issued before the call become invalid.
func (b *Batch) ClearedFormat() *Format {
	if b.open {
		panic("imm: ClearedFormat during an open batch")
	}
	b.format.reset()
	return &b.format
}

// Format returns the current vertex format.
func (b *Batch) Format() *Format {
	return &b.format
}

// Capacity returns the size of the client-side buffer in bytes.
func (b *Batch) Capacity() int {
	return cap(b.staging)
}

// Begin opens a batch of count vertices. Attributes are bound to the
// program's attribute locations by name; attributes the program does not
// use are written but not bound.
func (b *Batch) Begin(topology raster.Topology, count int, prog raster.Program) {
	if b.open {
		panic("imm: Begin during an open batch")
	}
	if b.format.n == 0 {
		panic("imm: Begin with an empty vertex format")
	}
	if count <= 0 {
		panic(fmt.Sprintf("imm: Begin with vertex count %d", count))
	}

	needed := count * b.format.stride
	if cap(b.staging) < needed {
		b.logger.Debug("imm: growing vertex buffer",
			slog.Int("from", cap(b.staging)), slog.Int("to", needed))
		b.staging = make([]byte, needed)
	} else {
		b.staging = b.staging[:needed]
	}

	b.layout.Stride = b.format.stride
	b.layout.Attribs = b.layout.Attribs[:0]
	for i := 0; i < b.format.n; i++ {
		a := &b.format.attrs[i]
		loc := prog.AttribLocation(a.Name)
		if loc < 0 {
			continue
		}
		b.layout.Attribs = append(b.layout.Attribs, raster.VertexAttrib{
			Location:   loc,
			Components: a.Count,
			Offset:     a.Offset,
		})
	}

	b.format.locked = true
	b.open = true
	b.topology = topology
	b.expected = count
	b.vertex = 0
	b.written = 0
	b.full = uint32(1)<<uint(b.format.n) - 1
}

// Attr1f writes a one-component attribute of the current vertex.
func (b *Batch) Attr1f(h AttrHandle, x float32) {
	off := b.offset(h, 1)
	putFloat(b.staging[off:], x)
}

// Attr2f writes a two-component attribute of the current vertex.
func (b *Batch) Attr2f(h AttrHandle, x, y float32) {
	off := b.offset(h, 2)
	putFloat(b.staging[off:], x)
	putFloat(b.staging[off+4:], y)
}

// Attr3f writes a three-component attribute of the current vertex.
func (b *Batch) Attr3f(h AttrHandle, x, y, z float32) {
	off := b.offset(h, 3)
	putFloat(b.staging[off:], x)
	putFloat(b.staging[off+4:], y)
	putFloat(b.staging[off+8:], z)
}

// Attr4f writes a four-component attribute of the current vertex.
func (b *Batch) Attr4f(h AttrHandle, x, y, z, w float32) {
	off := b.offset(h, 4)
	putFloat(b.staging[off:], x)
	putFloat(b.staging[off+4:], y)
	putFloat(b.staging[off+8:], z)
	putFloat(b.staging[off+12:], w)
}

// Vertex2f writes the position attribute and completes the current vertex.
func (b *Batch) Vertex2f(h AttrHandle, x, y float32) {
	b.Attr2f(h, x, y)
	b.commit()
}

// Vertex3f writes the position attribute and completes the current vertex.
func (b *Batch) Vertex3f(h AttrHandle, x, y, z float32) {
	b.Attr3f(h, x, y, z)
	b.commit()
}

// End draws the batch with a single upload and draw call.
// It panics if fewer vertices than announced by Begin were completed.
func (b *Batch) End() {
	if !b.open {
		panic("imm: End without Begin")
	}
	if b.vertex != b.expected {
		panic(fmt.Sprintf("imm: End after %d of %d vertices", b.vertex, b.expected))
	}
	if b.written != 0 {
		panic("imm: End with a partially written vertex")
	}
	b.dev.DrawArrays(b.topology, b.layout, b.staging, b.expected)

	b.staging = b.staging[:0]
	b.open = false
	b.format.locked = false
}

// offset validates a write of n components through h and returns the
// byte offset of the attribute in the current vertex.
func (b *Batch) offset(h AttrHandle, n int) int {
	if !b.open {
		panic("imm: attribute write outside Begin/End")
	}
	a := b.format.lookup(h)
	if a.Count != n {
		panic(fmt.Sprintf("imm: attribute %q has %d components, got %d", a.Name, a.Count, n))
	}
	if b.vertex >= b.expected {
		panic(fmt.Sprintf("imm: more than %d vertices", b.expected))
	}
	bit := uint32(1) << h.index
	if b.written&bit != 0 {
		panic(fmt.Sprintf("imm: attribute %q written twice for vertex %d", a.Name, b.vertex))
	}
	b.written |= bit
	return b.vertex*b.format.stride + a.Offset
}

// commit completes the current vertex.
func (b *Batch) commit() {
	if b.written != b.full {
		for i := 0; i < b.format.n; i++ {
			if b.written&(1<<uint(i)) == 0 {
				panic(fmt.Sprintf("imm: vertex %d is missing attribute %q", b.vertex, b.format.attrs[i].Name))
			}
		}
	}
	b.vertex++
	b.written = 0
}

func putFloat(buf []byte, v float32) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(v))
}
