//go:build !nogpu

package wgpu

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// copyPitchAlignment is the row alignment texture-to-buffer copies need.
const copyPitchAlignment = 256

// Image submits pending draws and reads the offscreen target back as a
// top-down image. It fails with ErrNoReadback while a host view is the
// target.
func (d *Device) Image() (*image.RGBA, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if d.target.view != d.offView {
		return nil, ErrNoReadback
	}
	if err := d.flush(); err != nil {
		return nil, err
	}

	w, h := uint32(d.cfg.Width), uint32(d.cfg.Height) //nolint:gosec // validated sizes
	bytesPerRow := w * 4
	aligned := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	size := uint64(aligned) * uint64(h)

	staging, err := d.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "uiglue_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	defer d.dev.DestroyBuffer(staging)

	encoder, err := d.dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "uiglue_readback"})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("uiglue_readback"); err != nil {
		return nil, fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: d.offscreen,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(d.offscreen, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{BytesPerRow: aligned, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: d.offscreen, Aspect: gputypes.TextureAspectAll},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: d.offscreen,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
	cmd, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer d.dev.FreeCommandBuffer(cmd)

	if _, err := d.queue.Submit([]hal.CommandBuffer{cmd}); err != nil {
		return nil, fmt.Errorf("wgpu: submit: %w", err)
	}
	if err := d.dev.WaitIdle(); err != nil {
		return nil, fmt.Errorf("wgpu: wait for GPU: %w", err)
	}

	mapping, err := d.dev.MapBuffer(staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("wgpu: map staging buffer: %w", err)
	}
	src := unsafe.Slice((*byte)(mapping.Ptr), size)

	img := image.NewRGBA(image.Rect(0, 0, d.cfg.Width, d.cfg.Height))
	for y := 0; y < d.cfg.Height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+int(bytesPerRow)]
		copy(row, src[y*int(aligned):])
		if isBGRA(d.cfg.Format) {
			for i := 0; i < len(row); i += 4 {
				row[i], row[i+2] = row[i+2], row[i]
			}
		}
	}
	if err := d.dev.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("wgpu: unmap staging buffer: %w", err)
	}
	return img, nil
}

// EncodePNG writes the offscreen target as PNG to w.
func (d *Device) EncodePNG(w io.Writer) error {
	img, err := d.Image()
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}
