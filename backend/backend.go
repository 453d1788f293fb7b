package backend

import (
	"errors"
	"io"

	"github.com/gogpu/uiglue/raster"
)

// Backend names.
const (
	// Soft is the CPU rasterizer (backend/soft). Always available.
	Soft = "soft"

	// GL draws with OpenGL 3.3 core on the current context (backend/opengl).
	GL = "gl"

	// WGPU emulates the rasterizer over gogpu/wgpu (backend/wgpu).
	WGPU = "wgpu"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered or none of the defaults could be opened.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrInvalidSize is returned by factories for a non-positive target size.
	ErrInvalidSize = errors.New("backend: invalid target size")
)

// Config is the configuration passed to every factory.
type Config struct {
	// Width and Height are the size of the render target in device
	// pixels. Backends drawing into a caller-owned framebuffer (gl) use
	// them only for readback.
	Width, Height int
}

// Validate reports whether the target size is usable.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return ErrInvalidSize
	}
	return nil
}

// Device is a rasterizer opened through the registry. Close releases the
// backend's own resources; the device must not be used afterwards.
type Device interface {
	raster.Device
	io.Closer
}
