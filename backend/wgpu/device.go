//go:build !nogpu

package wgpu

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/uiglue/backend"
	"github.com/gogpu/uiglue/internal/cache"
	"github.com/gogpu/uiglue/raster"
)

// DefaultMaxPipelines is the render pipeline cache size used when
// Config.MaxPipelines is zero.
const DefaultMaxPipelines = 64

// Errors returned by the device.
var (
	// ErrNilDevice is returned when the HAL device or queue is nil.
	ErrNilDevice = errors.New("wgpu: nil HAL device or queue")

	// ErrNoHAL is returned by NewFromProvider when the provider does not
	// expose its HAL device and queue.
	ErrNoHAL = errors.New("wgpu: provider does not expose HAL types")

	// ErrFormat is returned for a target format other than 8-bit RGBA or BGRA.
	ErrFormat = errors.New("wgpu: unsupported target format")

	// ErrNoReadback is returned by Image while drawing into a host view.
	ErrNoReadback = errors.New("wgpu: target is not readable")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("wgpu: device closed")
)

// Config configures a Device.
type Config struct {
	// Width and Height are the offscreen target size in pixels.
	Width, Height int

	// Format is the offscreen target format. Zero selects RGBA8Unorm.
	Format gputypes.TextureFormat

	// SPIRV makes NewProgram hand SPIR-V compiled by naga to the HAL
	// instead of WGSL source.
	SPIRV bool

	// MaxPipelines bounds the render pipeline cache. The least recently
	// used pipeline is destroyed once more are needed. Zero selects
	// DefaultMaxPipelines.
	MaxPipelines int

	// Logger receives device diagnostics. Nil discards them.
	Logger *slog.Logger
}

func (c *Config) validate() error {
	if err := (backend.Config{Width: c.Width, Height: c.Height}).Validate(); err != nil {
		return fmt.Errorf("wgpu: %dx%d: %w", c.Width, c.Height, err)
	}
	if c.Format == gputypes.TextureFormatUndefined {
		c.Format = gputypes.TextureFormatRGBA8Unorm
	}
	if !supportedFormat(c.Format) {
		return fmt.Errorf("%w: %s", ErrFormat, c.Format)
	}
	if c.MaxPipelines <= 0 {
		c.MaxPipelines = DefaultMaxPipelines
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return nil
}

func supportedFormat(f gputypes.TextureFormat) bool {
	switch f {
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8UnormSrgb,
		gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb:
		return true
	}
	return false
}

func isBGRA(f gputypes.TextureFormat) bool {
	return f == gputypes.TextureFormatBGRA8Unorm || f == gputypes.TextureFormatBGRA8UnormSrgb
}

// Stats counts the work a device has submitted.
type Stats struct {
	Frames    int // submitted render passes
	Draws     int // replayed draw calls
	Pipelines int // cached render pipelines
	Textures  int // live textures
}

// renderTarget is the view render passes draw into.
type renderTarget struct {
	view          hal.TextureView
	width, height int
	format        gputypes.TextureFormat
}

// Device is a raster.Device on a HAL device. It is not safe for
// concurrent use.
type Device struct {
	dev    hal.Device
	queue  hal.Queue
	cfg    Config
	logger *slog.Logger

	// release frees what the device opened itself (adapter, instance).
	release func()
	closed  bool

	enabled  [len(raster.Caps)]bool
	blendSrc raster.BlendFactor
	blendDst raster.BlendFactor
	scissor  raster.ScissorBox

	slot     int
	bound    [raster.MaxTextureSlots]raster.Texture
	textures map[raster.Texture]*gpuTexture
	nextTex  raster.Texture
	samplers map[samplerKey]hal.Sampler
	blank    *gpuTexture

	program  *Program
	nextProg int

	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipelines  *cache.LRU[pipelineKey, hal.RenderPipeline]
	retired    []hal.RenderPipeline // evicted, destroyed after the next submit

	target    renderTarget
	offscreen hal.Texture
	offView   hal.TextureView

	vbuf     hal.Buffer
	vbufSize uint64
	ubuf     hal.Buffer
	ubufSize uint64

	recording bool
	draws     []drawCmd
	vertices  []byte
	clear     *gputypes.Color
	err       error

	stats Stats
}

var _ raster.FrameDevice = (*Device)(nil)

// New returns a device drawing with the given HAL device and queue into
// an offscreen target of cfg's size. The caller keeps ownership of the
// HAL device.
func New(dev hal.Device, queue hal.Queue, cfg Config) (*Device, error) {
	if dev == nil || queue == nil {
		return nil, ErrNilDevice
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	d := &Device{
		dev:      dev,
		queue:    queue,
		cfg:      cfg,
		logger:   cfg.Logger,
		blendSrc: raster.BlendOne,
		blendDst: raster.BlendZero,
		scissor:  raster.ScissorBox{Width: int32(cfg.Width), Height: int32(cfg.Height)}, //nolint:gosec // validated sizes
		textures: make(map[raster.Texture]*gpuTexture),
		samplers: make(map[samplerKey]hal.Sampler),
	}
	d.pipelines = cache.New(cfg.MaxPipelines, d.retirePipeline)
	if err := d.init(); err != nil {
		d.destroy()
		return nil, err
	}
	return d, nil
}

// NewFromProvider returns a device sharing the GPU device of a host
// application. The provider must expose HalDevice() and HalQueue()
// returning hal.Device and hal.Queue. The target format defaults to the
// provider's surface format.
func NewFromProvider(provider gpucontext.DeviceProvider, cfg Config) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	dev, ok := hp.HalDevice().(hal.Device)
	if !ok || dev == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}
	if cfg.Format == gputypes.TextureFormatUndefined && supportedFormat(provider.SurfaceFormat()) {
		cfg.Format = provider.SurfaceFormat()
	}
	return New(dev, queue, cfg)
}

// init creates the offscreen target and the pipeline layout shared by
// every program.
func (d *Device) init() error {
	tex, err := d.dev.CreateTexture(&hal.TextureDescriptor{
		Label:         "uiglue_target",
		Size:          hal.Extent3D{Width: uint32(d.cfg.Width), Height: uint32(d.cfg.Height), DepthOrArrayLayers: 1}, //nolint:gosec // validated sizes
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        d.cfg.Format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc | gputypes.TextureUsageTextureBinding,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create target: %w", err)
	}
	d.offscreen = tex
	view, err := d.dev.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           "uiglue_target_view",
		Format:          d.cfg.Format,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create target view: %w", err)
	}
	d.offView = view
	d.target = renderTarget{view: view, width: d.cfg.Width, height: d.cfg.Height, format: d.cfg.Format}

	layout, err := d.dev.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "uiglue_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform, MinBindingSize: uniformSize},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create bind group layout: %w", err)
	}
	d.bindLayout = layout

	pl, err := d.dev.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "uiglue_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{layout},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}
	d.pipeLayout = pl
	return nil
}

// SetTarget makes render passes draw into a host view, such as the
// current swapchain texture, of the given size and format. A nil view
// switches back to the offscreen target. Pending draws are submitted to
// the previous target first.
func (d *Device) SetTarget(view hal.TextureView, width, height int, format gputypes.TextureFormat) error {
	if err := d.flush(); err != nil {
		return err
	}
	if view == nil {
		d.target = renderTarget{view: d.offView, width: d.cfg.Width, height: d.cfg.Height, format: d.cfg.Format}
		return nil
	}
	if err := (backend.Config{Width: width, Height: height}).Validate(); err != nil {
		return fmt.Errorf("wgpu: target %dx%d: %w", width, height, err)
	}
	if !supportedFormat(format) {
		return fmt.Errorf("%w: %s", ErrFormat, format)
	}
	d.target = renderTarget{view: view, width: width, height: height, format: format}
	return nil
}

// Size returns the size of the current target.
func (d *Device) Size() (width, height int) {
	return d.target.width, d.target.height
}

// Stats returns the device counters.
func (d *Device) Stats() Stats {
	s := d.stats
	s.Pipelines = d.pipelines.Len()
	s.Textures = len(d.textures)
	return s
}

// Close submits pending draws and releases every GPU resource the device
// created. It is safe to call more than once.
func (d *Device) Close() error {
	if d.closed {
		return nil
	}
	err := d.flush()
	d.destroy()
	d.closed = true
	return err
}

func (d *Device) destroy() {
	if d.dev == nil {
		return
	}
	_ = d.dev.WaitIdle()
	for id, t := range d.textures {
		t.destroy(d.dev)
		delete(d.textures, id)
	}
	if d.blank != nil {
		d.blank.destroy(d.dev)
		d.blank = nil
	}
	for k, s := range d.samplers {
		d.dev.DestroySampler(s)
		delete(d.samplers, k)
	}
	d.pipelines.Purge()
	d.releaseRetired()
	if d.program != nil {
		d.program.destroy(d.dev)
		d.program = nil
	}
	if d.pipeLayout != nil {
		d.dev.DestroyPipelineLayout(d.pipeLayout)
		d.pipeLayout = nil
	}
	if d.bindLayout != nil {
		d.dev.DestroyBindGroupLayout(d.bindLayout)
		d.bindLayout = nil
	}
	if d.vbuf != nil {
		d.dev.DestroyBuffer(d.vbuf)
		d.vbuf = nil
	}
	if d.ubuf != nil {
		d.dev.DestroyBuffer(d.ubuf)
		d.ubuf = nil
	}
	if d.offView != nil {
		d.dev.DestroyTextureView(d.offView)
		d.offView = nil
	}
	if d.offscreen != nil {
		d.dev.DestroyTexture(d.offscreen)
		d.offscreen = nil
	}
	if d.release != nil {
		d.release()
		d.release = nil
	}
}

// IsEnabled implements raster.Device.
func (d *Device) IsEnabled(c raster.Cap) bool {
	return d.enabled[c]
}

// Enable implements raster.Device.
func (d *Device) Enable(c raster.Cap) {
	d.enabled[c] = true
}

// Disable implements raster.Device.
func (d *Device) Disable(c raster.Cap) {
	d.enabled[c] = false
}

// BlendFunc implements raster.Device.
func (d *Device) BlendFunc(src, dst raster.BlendFactor) {
	d.blendSrc, d.blendDst = src, dst
}

// Scissor implements raster.Device.
func (d *Device) Scissor(box raster.ScissorBox) {
	d.scissor = box
}

// fail records an error of a call that cannot return one. It is returned
// by the next EndFrame.
func (d *Device) fail(err error) {
	d.logger.Error("wgpu: draw failed", slog.String("err", err.Error()))
	d.err = errors.Join(d.err, err)
}
