//go:build !nogpu

package wgpu

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image/png"
	"math"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/uiglue"
	"github.com/gogpu/uiglue/backend"
	"github.com/gogpu/uiglue/frame"
	"github.com/gogpu/uiglue/raster"
	"github.com/gogpu/uiglue/shaders"
)

// createNoopDevice creates a noop HAL device for testing.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// newTestDevice returns a 64x48 device with the UI program in use.
func newTestDevice(t *testing.T) (*Device, *Program) {
	t.Helper()
	return newTestDeviceConfig(t, Config{Width: 64, Height: 48})
}

func newTestDeviceConfig(t *testing.T, cfg Config) (*Device, *Program) {
	t.Helper()
	dev, queue, cleanup := createNoopDevice(t)
	t.Cleanup(cleanup)

	d, err := New(dev, queue, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	p, err := d.NewProgram(shaders.UI())
	if err != nil {
		t.Fatalf("NewProgram: %v", err)
	}
	d.UseProgram(p)
	p.SetUniform2f(uniformScreen, 64, 48)
	p.SetUniform1i(uniformSampler, 0)
	return d, p.(*Program)
}

var uiLayout = raster.VertexLayout{
	Stride: 32,
	Attribs: []raster.VertexAttrib{
		{Location: 0, Components: 2, Offset: 0},
		{Location: 1, Components: 2, Offset: 8},
		{Location: 2, Components: 4, Offset: 16},
	},
}

// triangle returns one white triangle in points.
func triangle() []byte {
	var buf []byte
	put := func(vs ...float32) {
		for _, v := range vs {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
		}
	}
	put(0, 0, 0, 0, 255, 255, 255, 255)
	put(10, 0, 1, 0, 255, 255, 255, 255)
	put(0, 10, 0, 1, 255, 255, 255, 255)
	return buf
}

func TestNewErrors(t *testing.T) {
	dev, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	if _, err := New(nil, queue, Config{Width: 1, Height: 1}); !errors.Is(err, ErrNilDevice) {
		t.Errorf("New(nil device) = %v, want ErrNilDevice", err)
	}
	if _, err := New(dev, queue, Config{Width: 0, Height: 10}); !errors.Is(err, backend.ErrInvalidSize) {
		t.Errorf("New(0x10) = %v, want ErrInvalidSize", err)
	}
	if _, err := New(dev, queue, Config{Width: 4, Height: 4, Format: gputypes.TextureFormatRGBA16Float}); !errors.Is(err, ErrFormat) {
		t.Errorf("New(RGBA16Float) = %v, want ErrFormat", err)
	}
}

func TestNewProgramErrors(t *testing.T) {
	d, _ := newTestDevice(t)

	if _, err := d.NewProgram(raster.ShaderSource{Vertex: "void main() {}"}); !errors.Is(err, raster.ErrShaderCompile) {
		t.Errorf("NewProgram(GLSL only) = %v, want ErrShaderCompile", err)
	}
	src := shaders.UI()
	src.WGSL = "@vertex fn vs_main() {}"
	if _, err := d.NewProgram(src); !errors.Is(err, raster.ErrProgramLink) {
		t.Errorf("NewProgram(no fragment) = %v, want ErrProgramLink", err)
	}
}

func TestProgramAttribLocations(t *testing.T) {
	_, p := newTestDevice(t)
	for name, want := range map[string]int{attribPos: 0, attribUV: 1, attribColor: 2, "in_normal": -1} {
		if got := p.AttribLocation(name); got != want {
			t.Errorf("AttribLocation(%q) = %d, want %d", name, got, want)
		}
	}
}

func TestFrameRecordsUntilEnd(t *testing.T) {
	d, _ := newTestDevice(t)

	if err := d.BeginFrame(); err != nil {
		t.Fatal(err)
	}
	d.DrawArrays(raster.Triangles, uiLayout, triangle(), 3)
	d.Enable(raster.Blend)
	d.BlendFunc(raster.BlendOne, raster.BlendOneMinusSrcAlpha)
	d.DrawArrays(raster.Triangles, uiLayout, triangle(), 3)

	if s := d.Stats(); s.Frames != 0 {
		t.Fatalf("submitted %d passes before EndFrame", s.Frames)
	}
	if err := d.EndFrame(); err != nil {
		t.Fatalf("EndFrame: %v", err)
	}
	s := d.Stats()
	if s.Frames != 1 || s.Draws != 2 {
		t.Errorf("stats = %+v, want one pass with two draws", s)
	}
	if s.Pipelines != 2 {
		t.Errorf("pipelines = %d, want 2 (blend off and on)", s.Pipelines)
	}
}

func TestPipelineCacheBound(t *testing.T) {
	d, _ := newTestDeviceConfig(t, Config{Width: 64, Height: 48, MaxPipelines: 1})

	if err := d.BeginFrame(); err != nil {
		t.Fatal(err)
	}
	d.DrawArrays(raster.Triangles, uiLayout, triangle(), 3)
	d.Enable(raster.Blend)
	d.BlendFunc(raster.BlendOne, raster.BlendOneMinusSrcAlpha)
	d.DrawArrays(raster.Triangles, uiLayout, triangle(), 3)

	if len(d.retired) != 1 {
		t.Fatalf("retired = %d pipelines, want the evicted one kept until submit", len(d.retired))
	}
	if err := d.EndFrame(); err != nil {
		t.Fatalf("EndFrame: %v", err)
	}
	if s := d.Stats(); s.Pipelines != 1 || s.Draws != 2 {
		t.Errorf("stats = %+v, want one cached pipeline and two draws", s)
	}
	if len(d.retired) != 0 {
		t.Errorf("retired = %d pipelines after submit, want 0", len(d.retired))
	}
}

func TestDeleteProgramDropsPipelines(t *testing.T) {
	d, p := newTestDevice(t)
	d.DrawArrays(raster.Triangles, uiLayout, triangle(), 3)
	if s := d.Stats(); s.Pipelines != 1 {
		t.Fatalf("pipelines = %d, want 1", s.Pipelines)
	}
	d.DeleteProgram(p)
	if s := d.Stats(); s.Pipelines != 0 || len(d.retired) != 0 {
		t.Errorf("pipelines = %d, retired = %d after DeleteProgram", s.Pipelines, len(d.retired))
	}
	d.DrawArrays(raster.Triangles, uiLayout, triangle(), 3)
	if s := d.Stats(); s.Draws != 1 {
		t.Errorf("draws = %d, want 1: nothing drawn once the program is deleted", s.Draws)
	}
}

func TestDrawOutsideFrameSubmits(t *testing.T) {
	d, _ := newTestDevice(t)
	d.DrawArrays(raster.Triangles, uiLayout, triangle(), 3)
	d.DrawArrays(raster.Triangles, uiLayout, triangle(), 3)
	if s := d.Stats(); s.Frames != 2 || s.Draws != 2 {
		t.Errorf("stats = %+v, want two passes", s)
	}
	if s := d.Stats(); s.Pipelines != 1 {
		t.Errorf("pipelines = %d, want the cached one reused", s.Pipelines)
	}
}

func TestDrawSkips(t *testing.T) {
	d, p := newTestDevice(t)

	d.Enable(raster.ScissorTest)
	d.Scissor(raster.ScissorBox{X: 100, Y: 100, Width: 10, Height: 10})
	d.DrawArrays(raster.Triangles, uiLayout, triangle(), 3)
	d.Disable(raster.ScissorTest)

	d.DrawArrays(raster.Triangles, uiLayout, triangle(), 2)

	p.SetUniform2f(uniformScreen, 0, 0)
	d.DrawArrays(raster.Triangles, uiLayout, triangle(), 3)

	if s := d.Stats(); s.Frames != 0 {
		t.Errorf("stats = %+v, want nothing submitted", s)
	}
}

func TestDrawShortDataPanics(t *testing.T) {
	d, _ := newTestDevice(t)
	defer func() {
		if recover() == nil {
			t.Error("DrawArrays with short data did not panic")
		}
	}()
	d.DrawArrays(raster.Triangles, uiLayout, triangle()[:40], 3)
}

func TestTextureLifecycle(t *testing.T) {
	d, _ := newTestDevice(t)

	if _, err := d.CreateTexture(raster.TextureDesc{Width: 2, Height: 2}, make([]byte, 15)); !errors.Is(err, raster.ErrTextureSize) {
		t.Errorf("CreateTexture(short) = %v, want ErrTextureSize", err)
	}
	tex, err := d.CreateTexture(raster.TextureDesc{Width: 2, Height: 2}, make([]byte, 16))
	if err != nil {
		t.Fatal(err)
	}
	d.ActiveTexture(0)
	d.BindTexture(tex)
	if d.Stats().Textures != 1 {
		t.Errorf("textures = %d, want 1", d.Stats().Textures)
	}

	// An update of a texture sampled by a recorded draw submits the draw first.
	if err := d.BeginFrame(); err != nil {
		t.Fatal(err)
	}
	d.DrawArrays(raster.Triangles, uiLayout, triangle(), 3)
	d.UpdateTexture(tex, raster.Region{X: 1, Y: 1, Width: 1, Height: 1}, []byte{1, 2, 3, 4})
	if got := d.Stats().Frames; got != 1 {
		t.Errorf("passes after update = %d, want 1", got)
	}
	if err := d.EndFrame(); err != nil {
		t.Fatal(err)
	}
	if got := d.Stats().Frames; got != 1 {
		t.Errorf("passes after EndFrame = %d, want 1", got)
	}

	d.DeleteTexture(tex)
	if d.bound[0] != 0 {
		t.Error("deleted texture still bound")
	}
	if d.Stats().Textures != 0 {
		t.Errorf("textures = %d, want 0", d.Stats().Textures)
	}
}

func TestUpdateTextureOutOfBounds(t *testing.T) {
	d, _ := newTestDevice(t)
	tex, err := d.CreateTexture(raster.TextureDesc{Width: 2, Height: 2}, make([]byte, 16))
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if recover() == nil {
			t.Error("UpdateTexture outside the texture did not panic")
		}
	}()
	d.UpdateTexture(tex, raster.Region{X: 1, Y: 1, Width: 2, Height: 1}, make([]byte, 8))
}

func TestScissorRect(t *testing.T) {
	tests := []struct {
		name    string
		box     raster.ScissorBox
		enabled bool
		want    [4]uint32
		ok      bool
	}{
		{"disabled", raster.ScissorBox{X: 5, Y: 5, Width: 1, Height: 1}, false, [4]uint32{0, 0, 100, 50}, true},
		{"flipped", raster.ScissorBox{X: 10, Y: 0, Width: 20, Height: 10}, true, [4]uint32{10, 40, 20, 10}, true},
		{"top row", raster.ScissorBox{X: 0, Y: 40, Width: 100, Height: 10}, true, [4]uint32{0, 0, 100, 10}, true},
		{"clipped", raster.ScissorBox{X: -10, Y: 45, Width: 30, Height: 30}, true, [4]uint32{0, 0, 20, 5}, true},
		{"outside", raster.ScissorBox{X: 200, Y: 0, Width: 10, Height: 10}, true, [4]uint32{}, false},
		{"empty", raster.ScissorBox{X: 10, Y: 10}, true, [4]uint32{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := scissorRect(tt.box, tt.enabled, 100, 50)
			if ok != tt.ok || got != tt.want {
				t.Errorf("scissorRect() = %v, %v; want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestPipelineKey(t *testing.T) {
	d, _ := newTestDevice(t)

	k := d.currentKey(uiLayout)
	if k.blend || k.encode || k.cull {
		t.Errorf("default key = %+v", k)
	}

	d.Enable(raster.FramebufferSRGB)
	d.BlendFunc(raster.BlendOne, raster.BlendOneMinusSrcAlpha)
	k = d.currentKey(uiLayout)
	if !k.encode {
		t.Error("sRGB toggle on a linear target does not encode in the shader")
	}
	if k.src != 0 || k.dst != 0 {
		t.Error("blend factors keyed while blending is off")
	}

	view, err := d.dev.CreateTextureView(d.offscreen, &hal.TextureViewDescriptor{})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.SetTarget(view, 64, 48, gputypes.TextureFormatBGRA8UnormSrgb); err != nil {
		t.Fatal(err)
	}
	if k := d.currentKey(uiLayout); k.encode {
		t.Error("sRGB target encodes twice")
	}
}

func TestClearValue(t *testing.T) {
	c := frame.RGBAPremultiplied(255, 188, 0, 128)

	v := clearValue(c, false)
	if v.R != 1 || math.Abs(v.G-188.0/255) > 1e-6 || v.B != 0 || math.Abs(v.A-128.0/255) > 1e-6 {
		t.Errorf("linear target clear = %+v", v)
	}
	v = clearValue(c, true)
	if math.Abs(v.G-0.5) > 0.01 {
		t.Errorf("sRGB target clear G = %v, want about 0.5", v.G)
	}
}

func TestClearSubmits(t *testing.T) {
	d, _ := newTestDevice(t)
	d.Clear(frame.Black)
	if got := d.Stats().Frames; got != 1 {
		t.Errorf("passes = %d, want 1", got)
	}
}

func TestImage(t *testing.T) {
	d, _ := newTestDevice(t)
	d.DrawArrays(raster.Triangles, uiLayout, triangle(), 3)

	img, err := d.Image()
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("bounds = %v, want 64x48", b)
	}

	var buf bytes.Buffer
	if err := d.EncodePNG(&buf); err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Errorf("decode: %v", err)
	}

	view, err := d.dev.CreateTextureView(d.offscreen, &hal.TextureViewDescriptor{})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.SetTarget(view, 64, 48, gputypes.TextureFormatRGBA8Unorm); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Image(); !errors.Is(err, ErrNoReadback) {
		t.Errorf("Image() on a host view = %v, want ErrNoReadback", err)
	}
}

func TestCompileSPIRV(t *testing.T) {
	words, err := compileSPIRV(`@vertex
fn vs_main() -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}`)
	if err != nil {
		t.Fatalf("compileSPIRV: %v", err)
	}
	if len(words) == 0 || words[0] != 0x07230203 {
		t.Errorf("missing SPIR-V magic: %x", words[:min(len(words), 1)])
	}
	if _, err := compileSPIRV("fn broken("); !errors.Is(err, raster.ErrShaderCompile) {
		t.Errorf("compileSPIRV(broken) = %v, want ErrShaderCompile", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	d, _ := newTestDevice(t)
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
	if err := d.BeginFrame(); !errors.Is(err, ErrClosed) {
		t.Errorf("BeginFrame after Close = %v, want ErrClosed", err)
	}
}

// provider is a host application exposing its HAL device.
type provider struct {
	dev   hal.Device
	queue hal.Queue
}

func (p provider) Device() gpucontext.Device { return p.dev }
func (p provider) Queue() gpucontext.Queue { return p.queue }
func (p provider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }
func (p provider) Adapter() gpucontext.Adapter { return nil }
func (p provider) AdapterInfo() gpucontext.AdapterInfo { return gpucontext.AdapterInfo{} }
func (p provider) HalDevice() any { return p.dev }
func (p provider) HalQueue() any { return p.queue }

// opaque hides the HAL accessors.
type opaque struct{ gpucontext.DeviceProvider }

func TestNewFromProvider(t *testing.T) {
	dev, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	d, err := NewFromProvider(provider{dev: dev, queue: queue}, Config{Width: 8, Height: 8})
	if err != nil {
		t.Fatalf("NewFromProvider: %v", err)
	}
	defer d.Close()
	if d.cfg.Format != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("format = %s, want the surface format", d.cfg.Format)
	}

	if _, err := NewFromProvider(opaque{provider{dev: dev, queue: queue}}, Config{Width: 8, Height: 8}); !errors.Is(err, ErrNoHAL) {
		t.Errorf("NewFromProvider(opaque) = %v, want ErrNoHAL", err)
	}
}

func TestPickAdapter(t *testing.T) {
	adapters := []hal.ExposedAdapter{
		{Info: gputypes.AdapterInfo{Name: "cpu", DeviceType: gputypes.DeviceTypeCPU}},
		{Info: gputypes.AdapterInfo{Name: "igpu", DeviceType: gputypes.DeviceTypeIntegratedGPU}},
		{Info: gputypes.AdapterInfo{Name: "dgpu", DeviceType: gputypes.DeviceTypeDiscreteGPU}},
	}
	if got := pickAdapter(adapters); got == nil || got.Info.Name != "dgpu" {
		t.Errorf("pickAdapter() = %v, want dgpu", got)
	}
	if got := pickAdapter(adapters[:2]); got == nil || got.Info.Name != "igpu" {
		t.Errorf("pickAdapter(no discrete) = %v, want igpu", got)
	}
	if got := pickAdapter(adapters[:1]); got != nil {
		t.Errorf("pickAdapter(cpu only) = %v, want nil", got.Info.Name)
	}
}

func TestPainterFrame(t *testing.T) {
	dev, queue, cleanup := createNoopDevice(t)
	defer cleanup()
	d, err := New(dev, queue, Config{Width: 200, Height: 100})
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	p, err := uiglue.New(d)
	if err != nil {
		t.Fatalf("uiglue.New: %v", err)
	}
	defer p.Close()

	img := frame.NewFontImage(4, 4)
	var m frame.Mesh
	m.AddRect(frame.RectFromMinMax(10, 10, 60, 40), frame.RectFromMinMax(0, 0, 1, 1), frame.RGB(200, 30, 30))
	out := frame.FullOutput{
		Textures: frame.TexturesDelta{Set: []frame.TextureSet{
			{ID: frame.FontTexture, Delta: frame.WholeDelta(img, frame.DefaultTextureOptions)},
		}},
		Primitives: []frame.ClippedPrimitive{
			{ClipRect: frame.RectFromMinMax(0, 0, 200, 100), Mesh: m},
			{ClipRect: frame.RectFromMinMax(0, 0, 20, 20), Mesh: m},
		},
	}
	if _, err := p.Paint(out, frame.Screen{Width: 200, Height: 100, PixelsPerPoint: 1}); err != nil {
		t.Fatalf("Paint: %v", err)
	}
	s := d.Stats()
	if s.Frames != 1 || s.Draws != 2 {
		t.Errorf("stats = %+v, want one pass with two draws", s)
	}
	// The painter restores the caller's state after every primitive.
	if d.IsEnabled(raster.Blend) || d.IsEnabled(raster.ScissorTest) {
		t.Error("painter left its state enabled")
	}
}
