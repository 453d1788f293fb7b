//go:build !nogpu

package wgpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/uiglue/frame"
	"github.com/gogpu/uiglue/internal/color"
	"github.com/gogpu/uiglue/raster"
)

const (
	// uniformSize is the Uniforms struct of the UI shader: screen size
	// plus padding.
	uniformSize = 16

	// uniformStride is the minimum uniform buffer offset alignment.
	uniformStride = 256
)

// drawCmd is a recorded DrawArrays call with the state it was made under.
type drawCmd struct {
	key      pipelineKey
	pipeline hal.RenderPipeline
	tex      *gpuTexture
	offset   uint64 // into the frame vertex buffer
	count    uint32
	scissor  [4]uint32 // x, y, width, height with a top-left origin
	screen   [2]float32
}

// BeginFrame implements raster.FrameDevice. Draws are recorded until
// EndFrame.
func (d *Device) BeginFrame() error {
	if d.closed {
		return ErrClosed
	}
	d.recording = true
	return nil
}

// EndFrame implements raster.FrameDevice. It submits the recorded draws
// in one render pass and waits for the GPU. Errors of calls made since
// the last EndFrame are returned with it.
func (d *Device) EndFrame() error {
	if d.closed {
		return ErrClosed
	}
	d.recording = false
	err := errors.Join(d.err, d.flush())
	d.err = nil
	return err
}

// DrawArrays implements raster.Device. Without a current program
// nothing is drawn. A trailing partial triangle is ignored.
func (d *Device) DrawArrays(topology raster.Topology, layout raster.VertexLayout, data []byte, count int) {
	if d.closed || d.program == nil || topology != raster.Triangles {
		return
	}
	if layout.Stride <= 0 || len(data) < layout.Stride*count {
		panic(fmt.Sprintf("wgpu: %d bytes for %d vertices of stride %d", len(data), count, layout.Stride))
	}
	count -= count % 3
	p := d.program
	if count <= 0 || p.screen[0] <= 0 || p.screen[1] <= 0 {
		return
	}
	rect, ok := scissorRect(d.scissor, d.enabled[raster.ScissorTest], d.target.width, d.target.height)
	if !ok {
		return
	}

	key := d.currentKey(layout)
	pipe, err := d.pipeline(key, layout)
	if err != nil {
		d.fail(err)
		return
	}
	tex, err := d.boundTexture()
	if err != nil {
		d.fail(err)
		return
	}

	offset := uint64(len(d.vertices))
	d.vertices = append(d.vertices, data[:layout.Stride*count]...)
	for len(d.vertices)%4 != 0 {
		d.vertices = append(d.vertices, 0)
	}
	d.draws = append(d.draws, drawCmd{
		key:      key,
		pipeline: pipe,
		tex:      tex,
		offset:   offset,
		count:    uint32(count), //nolint:gosec // count > 0
		scissor:  rect,
		screen:   p.screen,
	})
	if !d.recording {
		if err := d.flush(); err != nil {
			d.fail(err)
		}
	}
}

// Clear fills the whole target with c, ignoring the scissor box. Inside
// a frame the clear is ordered after the draws recorded so far.
func (d *Device) Clear(c frame.Color32) {
	if len(d.draws) > 0 {
		if err := d.flush(); err != nil {
			d.fail(err)
		}
	}
	v := clearValue(c, d.target.format.IsSrgb())
	d.clear = &v
	if !d.recording {
		if err := d.flush(); err != nil {
			d.fail(err)
		}
	}
}

// clearValue converts a premultiplied sRGB color to the value a render
// pass stores. sRGB targets take linear values and encode them.
func clearValue(c frame.Color32, srgbTarget bool) gputypes.Color {
	ch := func(v uint8) float64 {
		if srgbTarget {
			return float64(color.SRGBToLinearFast(v))
		}
		return float64(v) / 255
	}
	return gputypes.Color{R: ch(c.R()), G: ch(c.G()), B: ch(c.B()), A: float64(c.A()) / 255}
}

// scissorRect converts a bottom-left scissor box to a WebGPU scissor
// rectangle clipped to the target. ok is false when nothing is visible.
func scissorRect(box raster.ScissorBox, enabled bool, width, height int) (r [4]uint32, ok bool) {
	x0, y0, x1, y1 := 0, 0, width, height
	if enabled {
		x0 = max(x0, int(box.X))
		y0 = max(y0, int(box.Y))
		x1 = min(x1, int(box.X)+int(box.Width))
		y1 = min(y1, int(box.Y)+int(box.Height))
	}
	if x1 <= x0 || y1 <= y0 {
		return r, false
	}
	return [4]uint32{uint32(x0), uint32(height - y1), uint32(x1 - x0), uint32(y1 - y0)}, true //nolint:gosec // clipped to the target
}

// flushIfUses submits the recorded draws if any of them samples t.
func (d *Device) flushIfUses(t *gpuTexture) {
	for _, dc := range d.draws {
		if dc.tex == t {
			if err := d.flush(); err != nil {
				d.fail(err)
			}
			return
		}
	}
}

// flush submits the recorded draws and pending clear in one render pass.
func (d *Device) flush() error {
	if len(d.draws) == 0 && d.clear == nil {
		return nil
	}
	draws, clearColor := d.draws, d.clear
	defer func() {
		d.draws = d.draws[:0]
		d.vertices = d.vertices[:0]
		d.clear = nil
	}()

	if len(draws) > 0 {
		if err := d.upload(draws); err != nil {
			return err
		}
	}
	groups, err := d.bindGroups(draws)
	defer func() {
		for _, g := range groups {
			d.dev.DestroyBindGroup(g)
		}
	}()
	if err != nil {
		return err
	}

	encoder, err := d.dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "uiglue_frame"})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("uiglue_frame"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	att := hal.RenderPassColorAttachment{
		View:    d.target.view,
		LoadOp:  gputypes.LoadOpLoad,
		StoreOp: gputypes.StoreOpStore,
	}
	if clearColor != nil {
		att.LoadOp = gputypes.LoadOpClear
		att.ClearValue = *clearColor
	}
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label:            "uiglue_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{att},
	})
	rp.SetViewport(0, 0, float32(d.target.width), float32(d.target.height), 0, 1)
	for i, dc := range draws {
		rp.SetPipeline(dc.pipeline)
		rp.SetBindGroup(0, groups[i], nil)
		rp.SetVertexBuffer(0, d.vbuf, dc.offset)
		rp.SetScissorRect(dc.scissor[0], dc.scissor[1], dc.scissor[2], dc.scissor[3])
		rp.Draw(dc.count, 1, 0, 0)
	}
	rp.End()

	cmd, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer d.dev.FreeCommandBuffer(cmd)

	if _, err := d.queue.Submit([]hal.CommandBuffer{cmd}); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	if err := d.dev.WaitIdle(); err != nil {
		return fmt.Errorf("wgpu: wait for GPU: %w", err)
	}
	d.stats.Frames++
	d.stats.Draws += len(draws)
	d.releaseRetired()
	return nil
}

// upload writes the frame's vertices and per-draw uniforms.
func (d *Device) upload(draws []drawCmd) error {
	if err := d.ensureBuffer(&d.vbuf, &d.vbufSize, uint64(len(d.vertices)),
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst, "uiglue_vertices"); err != nil {
		return err
	}
	if err := d.queue.WriteBuffer(d.vbuf, 0, d.vertices); err != nil {
		return fmt.Errorf("wgpu: write vertices: %w", err)
	}

	uniforms := packUniforms(draws)
	if err := d.ensureBuffer(&d.ubuf, &d.ubufSize, uint64(len(uniforms)),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst, "uiglue_uniforms"); err != nil {
		return err
	}
	if err := d.queue.WriteBuffer(d.ubuf, 0, uniforms); err != nil {
		return fmt.Errorf("wgpu: write uniforms: %w", err)
	}
	return nil
}

// packUniforms lays out one Uniforms struct per draw at uniformStride.
func packUniforms(draws []drawCmd) []byte {
	buf := make([]byte, len(draws)*uniformStride)
	for i, dc := range draws {
		base := i * uniformStride
		binary.LittleEndian.PutUint32(buf[base:], math.Float32bits(dc.screen[0]))
		binary.LittleEndian.PutUint32(buf[base+4:], math.Float32bits(dc.screen[1]))
	}
	return buf
}

// ensureBuffer grows *buf to at least need bytes, rounded up to a power
// of two.
func (d *Device) ensureBuffer(buf *hal.Buffer, size *uint64, need uint64, usage gputypes.BufferUsage, label string) error {
	if *buf != nil && *size >= need {
		return nil
	}
	n := uint64(1024)
	for n < need {
		n *= 2
	}
	b, err := d.dev.CreateBuffer(&hal.BufferDescriptor{Label: label, Size: n, Usage: usage})
	if err != nil {
		return fmt.Errorf("wgpu: create %s buffer: %w", label, err)
	}
	if *buf != nil {
		d.dev.DestroyBuffer(*buf)
	}
	*buf, *size = b, n
	return nil
}

// bindGroups creates one bind group per draw: its uniforms, texture view
// and sampler.
func (d *Device) bindGroups(draws []drawCmd) ([]hal.BindGroup, error) {
	groups := make([]hal.BindGroup, 0, len(draws))
	for i, dc := range draws {
		g, err := d.dev.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:  "uiglue_bind_group",
			Layout: d.bindLayout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{
					Buffer: d.ubuf.NativeHandle(),
					Offset: uint64(i * uniformStride), //nolint:gosec // i >= 0
					Size:   uniformSize,
				}},
				{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: dc.tex.view.NativeHandle()}},
				{Binding: 2, Resource: gputypes.SamplerBinding{Sampler: dc.tex.sampler.NativeHandle()}},
			},
		})
		if err != nil {
			return groups, fmt.Errorf("wgpu: create bind group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, nil
}
