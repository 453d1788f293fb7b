package soft_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image/png"
	"math"
	"testing"

	"github.com/gogpu/uiglue"
	"github.com/gogpu/uiglue/backend"
	"github.com/gogpu/uiglue/backend/soft"
	"github.com/gogpu/uiglue/frame"
	"github.com/gogpu/uiglue/raster"
	"github.com/gogpu/uiglue/shaders"
)

const width, height = 100, 80

var screen = frame.Screen{Width: width, Height: height, PixelsPerPoint: 1}

func newDevice(t *testing.T) *soft.Device {
	t.Helper()
	dev, err := soft.New(soft.Config{Width: width, Height: height})
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	dev.Clear(frame.Black)
	return dev
}

func newPainter(t *testing.T, dev raster.Device) *uiglue.Painter {
	t.Helper()
	p, err := uiglue.New(dev)
	if err != nil {
		t.Fatalf("uiglue.New() = %v", err)
	}
	t.Cleanup(p.Close)
	return p
}

// whiteFont is a font texture whose every texel is fully covered.
func whiteFont() frame.TexturesDelta {
	img := frame.NewFontImage(4, 4)
	for i := range img.Pixels {
		img.Pixels[i] = 1
	}
	return frame.TexturesDelta{Set: []frame.TextureSet{
		{ID: frame.FontTexture, Delta: frame.WholeDelta(img, frame.DefaultTextureOptions)},
	}}
}

func rect(r frame.Rect, uv frame.Rect, c frame.Color32, tex frame.TextureID, clip frame.Rect) frame.ClippedPrimitive {
	var m frame.Mesh
	m.AddRect(r, uv, c)
	m.Texture = tex
	return frame.ClippedPrimitive{ClipRect: clip, Mesh: m}
}

var (
	full   = frame.RectFromMinMax(0, 0, width, height)
	fullUV = frame.RectFromMinMax(0, 0, 1, 1)
)

func inside(x, y int, r frame.Rect) bool {
	return float32(x) >= r.Min.X && float32(x) < r.Max.X && float32(y) >= r.Min.Y && float32(y) < r.Max.Y
}

func TestNewInvalidSize(t *testing.T) {
	if _, err := soft.New(soft.Config{Width: 0, Height: 10}); !errors.Is(err, backend.ErrInvalidSize) {
		t.Errorf("New(0x10) = %v, want ErrInvalidSize", err)
	}
}

func TestRegistered(t *testing.T) {
	dev, err := backend.Open(backend.Soft, backend.Config{Width: 2, Height: 2})
	if err != nil {
		t.Fatalf("Open(soft) = %v", err)
	}
	if _, ok := dev.(*soft.Device); !ok {
		t.Errorf("Open(soft) = %T", dev)
	}
	_ = dev.Close()
}

func TestNewProgram(t *testing.T) {
	dev := newDevice(t)
	if _, err := dev.NewProgram(shaders.UI()); err != nil {
		t.Errorf("NewProgram(UI) = %v", err)
	}
	if _, err := dev.NewProgram(raster.ShaderSource{WGSL: shaders.UIWGSL}); err != nil {
		t.Errorf("NewProgram(WGSL only) = %v", err)
	}
	bad := raster.ShaderSource{Vertex: "void main() {}", Fragment: "void main() {}"}
	if _, err := dev.NewProgram(bad); !errors.Is(err, raster.ErrShaderCompile) {
		t.Errorf("NewProgram(bad) = %v, want ErrShaderCompile", err)
	}
	if _, err := dev.NewProgram(raster.ShaderSource{}); !errors.Is(err, raster.ErrShaderCompile) {
		t.Errorf("NewProgram(empty) = %v, want ErrShaderCompile", err)
	}
}

func TestPaintOpaqueRect(t *testing.T) {
	dev := newDevice(t)
	p := newPainter(t, dev)

	r := frame.RectFromMinMax(10, 10, 50, 40)
	out := frame.FullOutput{
		Textures:   whiteFont(),
		Primitives: []frame.ClippedPrimitive{rect(r, fullUV, frame.White, frame.FontTexture, full)},
	}
	if _, err := p.Paint(out, screen); err != nil {
		t.Fatalf("Paint() = %v", err)
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			want := frame.Black
			if inside(x, y, r) {
				want = frame.White
			}
			if got := dev.At(x, y); got != want {
				t.Fatalf("pixel (%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestPaintTranslucentNoDoubleBlend(t *testing.T) {
	dev := newDevice(t)
	p := newPainter(t, dev)

	r := frame.RectFromMinMax(5, 5, 95, 75)
	c := frame.RGBAPremultiplied(128, 0, 0, 128)
	out := frame.FullOutput{
		Textures:   whiteFont(),
		Primitives: []frame.ClippedPrimitive{rect(r, fullUV, c, frame.FontTexture, full)},
	}
	if _, err := p.Paint(out, screen); err != nil {
		t.Fatal(err)
	}

	// Premultiplied 50% red over opaque black, blended in linear light:
	// the sRGB value comes back unchanged. A pixel on the quad diagonal
	// blended twice would be much brighter.
	for y := 5; y < 75; y++ {
		for x := 5; x < 95; x++ {
			got := dev.At(x, y)
			if got.R() < 127 || got.R() > 129 || got.G() != 0 || got.A() != 255 {
				t.Fatalf("pixel (%d, %d) = %v, want ~(128, 0, 0, 255)", x, y, got)
			}
		}
	}
}

func TestPaintScissor(t *testing.T) {
	dev := newDevice(t)
	p := newPainter(t, dev)

	clip := frame.RectFromMinMax(20, 10, 60, 30)
	out := frame.FullOutput{
		Textures:   whiteFont(),
		Primitives: []frame.ClippedPrimitive{rect(full, fullUV, frame.White, frame.FontTexture, clip)},
	}
	if _, err := p.Paint(out, screen); err != nil {
		t.Fatal(err)
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if got, want := dev.At(x, y) == frame.White, inside(x, y, clip); got != want {
				t.Fatalf("pixel (%d, %d) painted = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestPaintHiDPI(t *testing.T) {
	dev := newDevice(t)
	p := newPainter(t, dev)

	// 50x40 points on a 100x80 pixel framebuffer.
	hidpi := frame.Screen{Width: width, Height: height, PixelsPerPoint: 2}
	r := frame.RectFromMinMax(5, 5, 10, 10)
	out := frame.FullOutput{
		Textures:   whiteFont(),
		Primitives: []frame.ClippedPrimitive{rect(r, fullUV, frame.White, frame.FontTexture, frame.RectFromMinMax(0, 0, 50, 40))},
	}
	if _, err := p.Paint(out, hidpi); err != nil {
		t.Fatal(err)
	}
	pixels := frame.RectFromMinMax(10, 10, 20, 20)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if got, want := dev.At(x, y) == frame.White, inside(x, y, pixels); got != want {
				t.Fatalf("pixel (%d, %d) painted = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestPaintTextureOrientation(t *testing.T) {
	dev := newDevice(t)
	p := newPainter(t, dev)

	// Top row red, bottom row blue.
	img := frame.NewColorImage(1, 2, frame.Transparent)
	img.Set(0, 0, frame.RGB(255, 0, 0))
	img.Set(0, 1, frame.RGB(0, 0, 255))
	nearest := frame.TextureOptions{Magnification: frame.FilterNearest, Minification: frame.FilterNearest}

	out := frame.FullOutput{
		Textures: frame.TexturesDelta{Set: []frame.TextureSet{
			{ID: frame.ManagedTexture(1), Delta: frame.WholeDelta(img, nearest)},
		}},
		Primitives: []frame.ClippedPrimitive{rect(full, fullUV, frame.White, frame.ManagedTexture(1), full)},
	}
	if _, err := p.Paint(out, screen); err != nil {
		t.Fatal(err)
	}
	if got := dev.At(50, 10); got != frame.RGB(255, 0, 0) {
		t.Errorf("top = %v, want red", got)
	}
	if got := dev.At(50, 70); got != frame.RGB(0, 0, 255) {
		t.Errorf("bottom = %v, want blue", got)
	}
}

func TestPaintOrderAndState(t *testing.T) {
	dev := newDevice(t)
	dev.Enable(raster.CullFace)
	p := newPainter(t, dev)

	r := frame.RectFromMinMax(10, 10, 30, 30)
	out := frame.FullOutput{
		Textures: whiteFont(),
		Primitives: []frame.ClippedPrimitive{
			rect(r, fullUV, frame.RGB(255, 0, 0), frame.FontTexture, full),
			{ClipRect: full}, // skipped
			rect(r, fullUV, frame.RGB(0, 255, 0), frame.FontTexture, full),
		},
	}
	if _, err := p.Paint(out, screen); !errors.Is(err, frame.ErrEmptyMesh) {
		t.Fatalf("Paint() = %v, want ErrEmptyMesh", err)
	}
	// Later primitives are drawn over earlier ones, with culling off.
	if got := dev.At(20, 20); got != frame.RGB(0, 255, 0) {
		t.Errorf("pixel = %v, want green", got)
	}
	if !dev.IsEnabled(raster.CullFace) || dev.IsEnabled(raster.Blend) || dev.IsEnabled(raster.FramebufferSRGB) {
		t.Error("toggles not restored after the frame")
	}
}

func appendFloat(b []byte, f float32) []byte {
	return binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
}

func TestCullFace(t *testing.T) {
	dev := newDevice(t)
	prog, err := dev.NewProgram(shaders.UI())
	if err != nil {
		t.Fatal(err)
	}
	dev.UseProgram(prog)
	prog.SetUniform2f("u_screen_size", width, height)
	prog.SetUniform1i("u_sampler", 0)

	// (0,0) (100,0) (0,80) in points is clockwise once y points up.
	var data []byte
	for _, f := range []float32{
		0, 0, 0, 0, 255, 255, 255, 255,
		100, 0, 0, 0, 255, 255, 255, 255,
		0, 80, 0, 0, 255, 255, 255, 255,
	} {
		data = appendFloat(data, f)
	}
	rev := append(append(append([]byte(nil), data[0:32]...), data[64:96]...), data[32:64]...)
	layout := raster.VertexLayout{Stride: 32, Attribs: []raster.VertexAttrib{
		{Location: 0, Components: 2, Offset: 0},
		{Location: 1, Components: 2, Offset: 8},
		{Location: 2, Components: 4, Offset: 16},
	}}

	// No texture is bound, so every fragment is (0, 0, 0, 1).
	dev.Enable(raster.CullFace)
	dev.Clear(frame.White)
	dev.DrawArrays(raster.Triangles, layout, data, 3)
	if got := dev.At(10, 10); got != frame.White {
		t.Errorf("back face drawn: pixel = %v", got)
	}
	dev.DrawArrays(raster.Triangles, layout, rev, 3)
	if got := dev.At(10, 10); got != frame.Black {
		t.Errorf("front face not drawn: pixel = %v", got)
	}

	dev.Disable(raster.CullFace)
	dev.Clear(frame.White)
	dev.DrawArrays(raster.Triangles, layout, data, 3)
	if got := dev.At(10, 10); got != frame.Black {
		t.Errorf("pixel = %v with culling off, want black", got)
	}
}

func TestEncodePNG(t *testing.T) {
	dev := newDevice(t)
	dev.Clear(frame.RGB(1, 2, 3))
	var buf bytes.Buffer
	if err := dev.EncodePNG(&buf); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != width || b.Dy() != height {
		t.Errorf("bounds = %v", b)
	}
}
