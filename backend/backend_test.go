package backend

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/uiglue/raster/rastertest"
)

type testDevice struct {
	*rastertest.Recorder
	closed bool
}

func (d *testDevice) Close() error {
	d.closed = true
	return nil
}

func register(t *testing.T, name string, f Factory) {
	t.Helper()
	Register(name, f)
	t.Cleanup(func() { Unregister(name) })
}

func TestRegistry(t *testing.T) {
	var got Config
	register(t, "test-ok", func(cfg Config) (Device, error) {
		got = cfg
		return &testDevice{Recorder: rastertest.New()}, nil
	})

	if !IsRegistered("test-ok") {
		t.Fatal("IsRegistered(test-ok) = false")
	}
	if !slices.Contains(Available(), "test-ok") {
		t.Errorf("Available() = %v", Available())
	}
	if !slices.IsSorted(Available()) {
		t.Errorf("Available() not sorted: %v", Available())
	}

	dev, err := Open("test-ok", Config{Width: 4, Height: 3})
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	if got != (Config{Width: 4, Height: 3}) {
		t.Errorf("factory got %+v", got)
	}
	if err := dev.Close(); err != nil {
		t.Error(err)
	}

	Unregister("test-ok")
	if _, err := Open("test-ok", Config{}); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Open(unregistered) = %v, want ErrBackendNotAvailable", err)
	}
}

func TestDefaultFallsBack(t *testing.T) {
	if IsRegistered(WGPU) || IsRegistered(Soft) {
		t.Skip("real backends registered in this binary")
	}
	register(t, WGPU, func(Config) (Device, error) {
		return nil, errors.New("no adapter")
	})
	register(t, Soft, func(Config) (Device, error) {
		return &testDevice{Recorder: rastertest.New()}, nil
	})

	dev, name, err := Default(Config{Width: 1, Height: 1})
	if err != nil {
		t.Fatalf("Default() = %v", err)
	}
	if name != Soft || dev == nil {
		t.Errorf("Default() = %v, %q; want soft", dev, name)
	}
}

func TestDefaultNoneAvailable(t *testing.T) {
	if IsRegistered(WGPU) || IsRegistered(Soft) {
		t.Skip("real backends registered in this binary")
	}
	register(t, Soft, func(Config) (Device, error) {
		return nil, ErrInvalidSize
	})
	_, _, err := Default(Config{})
	if !errors.Is(err, ErrBackendNotAvailable) || !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Default() = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		cfg  Config
		want error
	}{
		{Config{Width: 1, Height: 1}, nil},
		{Config{Width: 0, Height: 1}, ErrInvalidSize},
		{Config{Width: 1, Height: -1}, ErrInvalidSize},
	}
	for _, tt := range tests {
		if err := tt.cfg.Validate(); !errors.Is(err, tt.want) {
			t.Errorf("%+v.Validate() = %v, want %v", tt.cfg, err, tt.want)
		}
	}
}
