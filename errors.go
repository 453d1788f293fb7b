package uiglue

import "errors"

// Errors returned by Painter.
var (
	// ErrNilDevice is returned by New when no rasterizer is given.
	ErrNilDevice = errors.New("uiglue: nil raster device")

	// ErrSamplerSlot is returned by New for a sampler slot outside
	// [0, raster.MaxTextureSlots).
	ErrSamplerSlot = errors.New("uiglue: sampler slot out of range")

	// ErrClosed is returned when a closed Painter is used.
	ErrClosed = errors.New("uiglue: painter closed")
)
