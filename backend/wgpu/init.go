//go:build !nogpu

package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/uiglue/backend"
)

// gpuBackends are the HAL backends Open tries, in order. Backends other
// than Vulkan are used when the application registers them.
var gpuBackends = []gputypes.Backend{
	gputypes.BackendVulkan,
	gputypes.BackendMetal,
	gputypes.BackendDX12,
	gputypes.BackendGL,
}

func init() {
	backend.Register(backend.WGPU, func(cfg backend.Config) (backend.Device, error) {
		dev, err := Open(Config{Width: cfg.Width, Height: cfg.Height})
		if err != nil {
			return nil, err
		}
		return dev, nil
	})
}

// Open opens a GPU adapter of the first usable HAL backend and returns a
// device owning it. Close releases the adapter.
func Open(cfg Config) (*Device, error) {
	var errs []error
	for _, variant := range gpuBackends {
		b, ok := hal.GetBackend(variant)
		if !ok {
			continue
		}
		d, err := openBackend(b, cfg)
		if err == nil {
			return d, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", variant, err))
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("wgpu: %w: no GPU HAL backend registered", backend.ErrBackendNotAvailable)
	}
	return nil, fmt.Errorf("wgpu: %w: %w", backend.ErrBackendNotAvailable, errors.Join(errs...))
}

func openBackend(b hal.Backend, cfg Config) (*Device, error) {
	instance, err := b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	selected := pickAdapter(adapters)
	if selected == nil {
		instance.Destroy()
		return nil, errors.New("no GPU adapters found")
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}
	d, err := New(openDev.Device, openDev.Queue, cfg)
	if err != nil {
		openDev.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	d.release = func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	d.logger.Info("wgpu: device opened",
		"backend", b.Variant().String(),
		"adapter", selected.Info.Name)
	return d, nil
}

// pickAdapter prefers a discrete, then an integrated GPU. CPU adapters
// are skipped.
func pickAdapter(adapters []hal.ExposedAdapter) *hal.ExposedAdapter {
	var fallback *hal.ExposedAdapter
	for i := range adapters {
		switch adapters[i].Info.DeviceType {
		case gputypes.DeviceTypeDiscreteGPU:
			return &adapters[i]
		case gputypes.DeviceTypeCPU:
			continue
		default:
			if fallback == nil {
				fallback = &adapters[i]
			}
		}
	}
	return fallback
}
