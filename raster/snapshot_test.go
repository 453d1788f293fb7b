package raster_test

import (
	"testing"

	"github.com/gogpu/uiglue/raster"
	"github.com/gogpu/uiglue/raster/rastertest"
)

func TestSnapshotRestore(t *testing.T) {
	dev := rastertest.New()
	dev.Enable(raster.CullFace)
	dev.Enable(raster.DepthTest)

	snap := raster.Capture(dev)
	if !snap.Enabled(raster.CullFace) || snap.Enabled(raster.Blend) {
		t.Fatalf("Capture = %v", snap)
	}

	dev.Disable(raster.CullFace)
	dev.Disable(raster.DepthTest)
	dev.Enable(raster.ScissorTest)
	dev.Enable(raster.Blend)
	dev.Enable(raster.FramebufferSRGB)

	snap.Restore(dev)

	if got := raster.Capture(dev); got != snap {
		t.Errorf("after Restore = %v, want %v", got, snap)
	}
}

func TestSnapshotRestoreNoChanges(t *testing.T) {
	dev := rastertest.New()
	dev.Enable(raster.Blend)

	snap := raster.Capture(dev)
	dev.Reset()
	snap.Restore(dev)

	if n := len(dev.Calls); n != 0 {
		t.Errorf("Restore of unchanged state made %d calls: %v", n, dev.Calls)
	}
}

func TestSnapshotString(t *testing.T) {
	dev := rastertest.New()
	if got := raster.Capture(dev).String(); got != "{}" {
		t.Errorf("String() = %q, want {}", got)
	}
	dev.Enable(raster.FramebufferSRGB)
	dev.Enable(raster.CullFace)
	if got := raster.Capture(dev).String(); got != "{CullFace FramebufferSRGB}" {
		t.Errorf("String() = %q", got)
	}
}

func TestCheckSlot(t *testing.T) {
	tests := []struct {
		slot      int
		wantPanic bool
	}{
		{0, false},
		{31, false},
		{-1, true},
		{raster.MaxTextureSlots, true},
	}
	for _, tt := range tests {
		func() {
			defer func() {
				if r := recover(); (r != nil) != tt.wantPanic {
					t.Errorf("CheckSlot(%d) panic = %v, want panic %v", tt.slot, r, tt.wantPanic)
				}
			}()
			raster.CheckSlot(tt.slot)
		}()
	}
}
