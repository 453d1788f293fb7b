package soft

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/chewxy/math32"

	"github.com/gogpu/uiglue/internal/color"
	"github.com/gogpu/uiglue/raster"
)

// varyings are the outputs of the vertex stage.
type varyings struct {
	pos   vec2
	uv    [2]float32
	color [4]float32 // linear premultiplied
}

// DrawArrays implements raster.Device. It runs the built-in UI program on
// count vertices of data. Without a current program nothing is drawn.
func (d *Device) DrawArrays(topology raster.Topology, layout raster.VertexLayout, data []byte, count int) {
	if d.program == nil || topology != raster.Triangles {
		return
	}
	if layout.Stride <= 0 || len(data) < layout.Stride*count {
		panic(fmt.Sprintf("soft: %d bytes for %d vertices of stride %d", len(data), count, layout.Stride))
	}
	screen := d.program.screen
	if screen[0] <= 0 || screen[1] <= 0 {
		return
	}
	clip := d.clipBounds()
	if clip.empty() {
		return
	}

	var tex *softTexture
	if slot := int(d.program.samplerID); slot >= 0 && slot < raster.MaxTextureSlots {
		tex = d.textures[d.bound[slot]]
	}

	var tri [3]varyings
	for i := 0; i+2 < count; i += 3 {
		for k := range tri {
			tri[k] = d.vertexStage(layout, data, i+k, screen)
		}
		d.drawTriangle(&tri, tex, clip)
	}
}

// clipBounds intersects the framebuffer with the scissor box.
func (d *Device) clipBounds() bounds {
	b := bounds{x1: d.width, y1: d.height}
	if d.enabled[raster.ScissorTest] {
		s := d.scissor
		b.x0 = max(b.x0, int(s.X))
		b.y0 = max(b.y0, int(s.Y))
		b.x1 = min(b.x1, int(s.X)+int(s.Width))
		b.y1 = min(b.y1, int(s.Y)+int(s.Height))
	}
	return b
}

// attrib reads the attribute at location for vertex i. Components the
// layout does not provide keep the GL defaults (0, 0, 0, 1).
func attrib(layout raster.VertexLayout, data []byte, i, location int) [4]float32 {
	out := [4]float32{0, 0, 0, 1}
	for _, a := range layout.Attribs {
		if a.Location != location {
			continue
		}
		base := i*layout.Stride + a.Offset
		for c := 0; c < a.Components && c < 4; c++ {
			out[c] = math.Float32frombits(binary.LittleEndian.Uint32(data[base+c*4:]))
		}
		break
	}
	return out
}

// vertexStage maps a vertex from points to framebuffer pixels and
// decodes its color.
func (d *Device) vertexStage(layout raster.VertexLayout, data []byte, i int, screen [2]float32) varyings {
	pos := attrib(layout, data, i, 0)
	uv := attrib(layout, data, i, 1)
	c := attrib(layout, data, i, 2)

	return varyings{
		pos: vec2{
			x: pos[0] / screen[0] * float32(d.width),
			y: (1 - pos[1]/screen[1]) * float32(d.height),
		},
		uv: [2]float32{uv[0], uv[1]},
		color: [4]float32{
			color.SRGBToLinear(c[0] / 255),
			color.SRGBToLinear(c[1] / 255),
			color.SRGBToLinear(c[2] / 255),
			c[3] / 255,
		},
	}
}

func (d *Device) drawTriangle(tri *[3]varyings, tex *softTexture, clip bounds) {
	v := [3]vec2{tri[0].pos, tri[1].pos, tri[2].pos}
	area := signedArea(v[0], v[1], v[2])
	if d.enabled[raster.CullFace] && area < 0 {
		return // clockwise is the back face
	}

	filter := raster.FilterLinear
	if tex != nil {
		filter = tex.filterFor(tri, area)
	}

	d.raster.fill(v, clip, func(x, y int, w0, w1, w2 float32) {
		var src [4]float32
		for k := range src {
			src[k] = tri[0].color[k]*w0 + tri[1].color[k]*w1 + tri[2].color[k]*w2
		}
		u := tri[0].uv[0]*w0 + tri[1].uv[0]*w1 + tri[2].uv[0]*w2
		t := tri[0].uv[1]*w0 + tri[1].uv[1]*w1 + tri[2].uv[1]*w2

		texel := [4]float32{0, 0, 0, 1}
		if tex != nil {
			texel = tex.sample(u, t, filter)
		}
		src[0] *= color.SRGBToLinear(texel[0])
		src[1] *= color.SRGBToLinear(texel[1])
		src[2] *= color.SRGBToLinear(texel[2])
		src[3] *= texel[3]

		d.writePixel(x, y, src)
	})
}

// writePixel blends src into the framebuffer and stores the result.
func (d *Device) writePixel(x, y int, src [4]float32) {
	i := (y*d.width + x) * 4
	px := d.pix[i : i+4 : i+4]
	srgb := d.enabled[raster.FramebufferSRGB]

	out := src
	if d.enabled[raster.Blend] {
		var dst [4]float32
		for k := 0; k < 3; k++ {
			if srgb {
				dst[k] = color.SRGBToLinearFast(px[k])
			} else {
				dst[k] = float32(px[k]) / 255
			}
		}
		dst[3] = float32(px[3]) / 255

		fs := blendFactor(d.blendSrc, src)
		fd := blendFactor(d.blendDst, src)
		for k := range out {
			out[k] = src[k]*fs + dst[k]*fd
		}
	}

	for k := 0; k < 3; k++ {
		if srgb {
			px[k] = color.LinearToSRGBFast(out[k])
		} else {
			px[k] = unorm8(out[k])
		}
	}
	px[3] = unorm8(out[3])
}

func blendFactor(f raster.BlendFactor, src [4]float32) float32 {
	switch f {
	case raster.BlendOne:
		return 1
	case raster.BlendSrcAlpha:
		return src[3]
	case raster.BlendOneMinusSrcAlpha:
		return 1 - src[3]
	default:
		return 0
	}
}

// unorm8 converts [0, 1] to a byte with rounding.
func unorm8(v float32) uint8 {
	v = math32.Max(0, math32.Min(v, 1))
	return uint8(v*255 + 0.5)
}

// filterFor picks the magnification or minification filter from the
// texel to pixel area ratio of the triangle.
func (t *softTexture) filterFor(tri *[3]varyings, area float32) raster.Filter {
	a := vec2{tri[0].uv[0] * float32(t.desc.Width), tri[0].uv[1] * float32(t.desc.Height)}
	b := vec2{tri[1].uv[0] * float32(t.desc.Width), tri[1].uv[1] * float32(t.desc.Height)}
	c := vec2{tri[2].uv[0] * float32(t.desc.Width), tri[2].uv[1] * float32(t.desc.Height)}
	if math32.Abs(signedArea(a, b, c)) > math32.Abs(area) {
		return t.desc.MinFilter
	}
	return t.desc.MagFilter
}

// sample reads the texture at (u, v) with clamp-to-edge addressing.
// v = 0 is the first stored row. Channels are returned in [0, 1].
func (t *softTexture) sample(u, v float32, f raster.Filter) [4]float32 {
	w, h := t.desc.Width, t.desc.Height
	if f == raster.FilterNearest {
		return t.texel(int(math32.Floor(u*float32(w))), int(math32.Floor(v*float32(h))))
	}

	fx := u*float32(w) - 0.5
	fy := v*float32(h) - 0.5
	x0, y0 := math32.Floor(fx), math32.Floor(fy)
	ax, ay := fx-x0, fy-y0
	ix, iy := int(x0), int(y0)

	c00 := t.texel(ix, iy)
	c10 := t.texel(ix+1, iy)
	c01 := t.texel(ix, iy+1)
	c11 := t.texel(ix+1, iy+1)

	var out [4]float32
	for k := range out {
		top := c00[k] + (c10[k]-c00[k])*ax
		bottom := c01[k] + (c11[k]-c01[k])*ax
		out[k] = top + (bottom-top)*ay
	}
	return out
}

func (t *softTexture) texel(x, y int) [4]float32 {
	x = min(max(x, 0), t.desc.Width-1)
	y = min(max(y, 0), t.desc.Height-1)
	i := (y*t.desc.Width + x) * 4
	p := t.pix[i : i+4 : i+4]
	return [4]float32{
		float32(p[0]) / 255,
		float32(p[1]) / 255,
		float32(p[2]) / 255,
		float32(p[3]) / 255,
	}
}
