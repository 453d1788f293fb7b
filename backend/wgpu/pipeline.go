//go:build !nogpu

package wgpu

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/uiglue/raster"
)

// pipelineKey is the rasterizer state a render pipeline bakes in.
type pipelineKey struct {
	program  int
	layout   string
	format   gputypes.TextureFormat
	blend    bool
	src, dst raster.BlendFactor
	cull     bool
	encode   bool // shader-side sRGB encoding
}

func layoutKey(l raster.VertexLayout) string {
	return fmt.Sprintf("%d%v", l.Stride, l.Attribs)
}

func blendFactor(f raster.BlendFactor) gputypes.BlendFactor {
	switch f {
	case raster.BlendOne:
		return gputypes.BlendFactorOne
	case raster.BlendSrcAlpha:
		return gputypes.BlendFactorSrcAlpha
	case raster.BlendOneMinusSrcAlpha:
		return gputypes.BlendFactorOneMinusSrcAlpha
	default:
		return gputypes.BlendFactorZero
	}
}

func vertexFormat(components int) (gputypes.VertexFormat, error) {
	switch components {
	case 1:
		return gputypes.VertexFormatFloat32, nil
	case 2:
		return gputypes.VertexFormatFloat32x2, nil
	case 3:
		return gputypes.VertexFormatFloat32x3, nil
	case 4:
		return gputypes.VertexFormatFloat32x4, nil
	default:
		return 0, fmt.Errorf("wgpu: %d float components per attribute", components)
	}
}

func vertexBufferLayout(l raster.VertexLayout) (gputypes.VertexBufferLayout, error) {
	out := gputypes.VertexBufferLayout{
		ArrayStride: uint64(l.Stride), //nolint:gosec // stride > 0
		StepMode:    gputypes.VertexStepModeVertex,
	}
	for _, a := range l.Attribs {
		if a.Location < 0 {
			continue
		}
		f, err := vertexFormat(a.Components)
		if err != nil {
			return out, err
		}
		out.Attributes = append(out.Attributes, gputypes.VertexAttribute{
			Format:         f,
			Offset:         uint64(a.Offset),   //nolint:gosec // offsets are non-negative
			ShaderLocation: uint32(a.Location), //nolint:gosec // checked above
		})
	}
	return out, nil
}

// currentKey returns the pipeline key for a draw with layout under the
// current state.
func (d *Device) currentKey(layout raster.VertexLayout) pipelineKey {
	k := pipelineKey{
		program: d.program.id,
		layout:  layoutKey(layout),
		format:  d.target.format,
		blend:   d.enabled[raster.Blend],
		cull:    d.enabled[raster.CullFace],
		encode:  d.enabled[raster.FramebufferSRGB] && !d.target.format.IsSrgb(),
	}
	if k.blend {
		k.src, k.dst = d.blendSrc, d.blendDst
	}
	return k
}

// pipeline returns the cached render pipeline for key, creating it on
// first use.
func (d *Device) pipeline(key pipelineKey, layout raster.VertexLayout) (hal.RenderPipeline, error) {
	if p, ok := d.pipelines.Get(key); ok {
		return p, nil
	}
	vbl, err := vertexBufferLayout(layout)
	if err != nil {
		return nil, err
	}

	target := gputypes.ColorTargetState{Format: key.format, WriteMask: gputypes.ColorWriteMaskAll}
	if key.blend {
		c := gputypes.BlendComponent{
			SrcFactor: blendFactor(key.src),
			DstFactor: blendFactor(key.dst),
			Operation: gputypes.BlendOperationAdd,
		}
		target.Blend = &gputypes.BlendState{Color: c, Alpha: c}
	}
	primitive := gputypes.PrimitiveState{
		Topology:  gputypes.PrimitiveTopologyTriangleList,
		FrontFace: gputypes.FrontFaceCCW,
		CullMode:  gputypes.CullModeNone,
	}
	if key.cull {
		primitive.CullMode = gputypes.CullModeBack
	}
	fragment := entryFragment
	if key.encode {
		fragment = entryFragmentSRGB
	}

	p, err := d.dev.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "uiglue_pipeline",
		Layout: d.pipeLayout,
		Vertex: hal.VertexState{
			Module:     d.program.module,
			EntryPoint: entryVertex,
			Buffers:    []gputypes.VertexBufferLayout{vbl},
		},
		Primitive:   primitive,
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
		Fragment: &hal.FragmentState{
			Module:     d.program.module,
			EntryPoint: fragment,
			Targets:    []gputypes.ColorTargetState{target},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create render pipeline: %w", err)
	}
	d.pipelines.Add(key, p)
	d.logger.Debug("wgpu: pipeline created",
		slog.Bool("blend", key.blend),
		slog.Bool("cull", key.cull),
		slog.Bool("encode", key.encode),
		slog.String("format", key.format.String()))
	return p, nil
}

// retirePipeline takes a pipeline evicted from the cache. Recorded draws
// may still use it, so it is destroyed after the next submit.
func (d *Device) retirePipeline(_ pipelineKey, p hal.RenderPipeline) {
	d.retired = append(d.retired, p)
}

func (d *Device) releaseRetired() {
	for _, p := range d.retired {
		d.dev.DestroyRenderPipeline(p)
	}
	d.retired = d.retired[:0]
}
