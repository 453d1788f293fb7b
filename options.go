package uiglue

import (
	"log/slog"

	"github.com/gogpu/uiglue/raster"
)

// DefaultSamplerSlot is the sampler slot textures are bound to unless
// [WithSamplerSlot] is given. High slots stay clear of the slots a host
// application usually binds its own textures to.
const DefaultSamplerSlot = 31

// Option configures a Painter during creation.
//
// Example:
//
//	p, err := uiglue.New(dev,
//	    uiglue.WithLogger(logger),
//	    uiglue.WithSamplerSlot(0),
//	)
type Option func(*options)

// options holds optional configuration for Painter creation.
type options struct {
	logger *slog.Logger
	slot   int
}

// defaultOptions returns the default painter options.
func defaultOptions() options {
	return options{
		logger: nil, // package logger at New time
		slot:   DefaultSamplerSlot,
	}
}

// WithLogger sets the logger of the painter, its texture table and its
// draw pipeline. Without it the package logger from [SetLogger] is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithSamplerSlot sets the sampler slot every primitive's texture is
// bound to. New fails with [ErrSamplerSlot] for a slot outside
// [0, raster.MaxTextureSlots).
func WithSamplerSlot(slot int) Option {
	return func(o *options) {
		o.slot = slot
	}
}

func (o *options) validate() error {
	if o.slot < 0 || o.slot >= raster.MaxTextureSlots {
		return ErrSamplerSlot
	}
	return nil
}
