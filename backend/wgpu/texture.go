//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/uiglue/raster"
)

// gpuTexture is an RGBA8Unorm texture with its view and sampler.
type gpuTexture struct {
	desc    raster.TextureDesc
	tex     hal.Texture
	view    hal.TextureView
	sampler hal.Sampler
}

func (t *gpuTexture) destroy(dev hal.Device) {
	if t.view != nil {
		dev.DestroyTextureView(t.view)
	}
	if t.tex != nil {
		dev.DestroyTexture(t.tex)
	}
	t.view, t.tex = nil, nil
}

type samplerKey struct {
	min, mag raster.Filter
}

func filterMode(f raster.Filter) gputypes.FilterMode {
	if f == raster.FilterNearest {
		return gputypes.FilterModeNearest
	}
	return gputypes.FilterModeLinear
}

// sampler returns the clamp-to-edge sampler for the given filters.
func (d *Device) sampler(minFilter, magFilter raster.Filter) (hal.Sampler, error) {
	key := samplerKey{min: minFilter, mag: magFilter}
	if s, ok := d.samplers[key]; ok {
		return s, nil
	}
	s, err := d.dev.CreateSampler(&hal.SamplerDescriptor{
		Label:        "uiglue_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    filterMode(magFilter),
		MinFilter:    filterMode(minFilter),
		MipmapFilter: gputypes.FilterModeNearest,
		LodMaxClamp:  32,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create sampler: %w", err)
	}
	d.samplers[key] = s
	return s, nil
}

func (d *Device) newTexture(desc raster.TextureDesc, pix []byte) (*gpuTexture, error) {
	size := hal.Extent3D{Width: uint32(desc.Width), Height: uint32(desc.Height), DepthOrArrayLayers: 1} //nolint:gosec // validated sizes
	tex, err := d.dev.CreateTexture(&hal.TextureDescriptor{
		Label:         "uiglue_texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture: %w", err)
	}
	t := &gpuTexture{desc: desc, tex: tex}
	t.view, err = d.dev.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           "uiglue_texture_view",
		Format:          gputypes.TextureFormatRGBA8Unorm,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		t.destroy(d.dev)
		return nil, fmt.Errorf("wgpu: create texture view: %w", err)
	}
	if t.sampler, err = d.sampler(desc.MinFilter, desc.MagFilter); err != nil {
		t.destroy(d.dev)
		return nil, err
	}
	if err := d.write(tex, raster.Region{Width: desc.Width, Height: desc.Height}, pix); err != nil {
		t.destroy(d.dev)
		return nil, err
	}
	return t, nil
}

// write uploads tightly packed rows into region. Row 0 of the data lands
// in texel row region.Y, which is the row sampled at v = 0 for region.Y 0.
func (d *Device) write(tex hal.Texture, region raster.Region, pix []byte) error {
	x, y := uint32(region.X), uint32(region.Y)          //nolint:gosec // checked by callers
	w, h := uint32(region.Width), uint32(region.Height) //nolint:gosec // checked by callers
	err := d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, Origin: hal.Origin3D{X: x, Y: y}, Aspect: gputypes.TextureAspectAll},
		pix,
		&hal.ImageDataLayout{BytesPerRow: w * 4, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("wgpu: write texture: %w", err)
	}
	return nil
}

// CreateTexture implements raster.Device.
func (d *Device) CreateTexture(desc raster.TextureDesc, pix []byte) (raster.Texture, error) {
	if d.closed {
		return 0, ErrClosed
	}
	if desc.Width <= 0 || desc.Height <= 0 || len(pix) != desc.Width*desc.Height*4 {
		return 0, fmt.Errorf("wgpu: %w: %dx%d with %d bytes", raster.ErrTextureSize, desc.Width, desc.Height, len(pix))
	}
	t, err := d.newTexture(desc, pix)
	if err != nil {
		return 0, err
	}
	d.nextTex++
	d.textures[d.nextTex] = t
	return d.nextTex, nil
}

// UpdateTexture implements raster.Device. It panics on an unknown
// texture or a region outside the texture. Draws already recorded with
// the texture are submitted first so they sample the old contents.
func (d *Device) UpdateTexture(tex raster.Texture, region raster.Region, pix []byte) {
	t, ok := d.textures[tex]
	if !ok {
		panic(fmt.Sprintf("wgpu: UpdateTexture of unknown texture %d", tex))
	}
	if region.X < 0 || region.Y < 0 || region.X+region.Width > t.desc.Width || region.Y+region.Height > t.desc.Height {
		panic(fmt.Sprintf("wgpu: region %+v outside %dx%d texture", region, t.desc.Width, t.desc.Height))
	}
	if len(pix) != region.Width*region.Height*4 {
		panic(fmt.Sprintf("wgpu: %d bytes for %dx%d region", len(pix), region.Width, region.Height))
	}
	if region.Width == 0 || region.Height == 0 {
		return
	}
	d.flushIfUses(t)
	if err := d.write(t.tex, region, pix); err != nil {
		d.fail(err)
	}
}

// DeleteTexture implements raster.Device. Slots bound to the texture
// fall back to no texture.
func (d *Device) DeleteTexture(tex raster.Texture) {
	t, ok := d.textures[tex]
	if !ok {
		return
	}
	d.flushIfUses(t)
	t.destroy(d.dev)
	delete(d.textures, tex)
	for i, b := range d.bound {
		if b == tex {
			d.bound[i] = 0
		}
	}
}

// ActiveTexture implements raster.Device.
func (d *Device) ActiveTexture(slot int) {
	raster.CheckSlot(slot)
	d.slot = slot
}

// BindTexture implements raster.Device.
func (d *Device) BindTexture(tex raster.Texture) {
	d.bound[d.slot] = tex
}

// boundTexture returns the texture the current program samples. Without
// one it returns an opaque black texel, as GL samples an incomplete
// texture.
func (d *Device) boundTexture() (*gpuTexture, error) {
	if p := d.program; p != nil && p.samplerSlot >= 0 && p.samplerSlot < raster.MaxTextureSlots {
		if t, ok := d.textures[d.bound[p.samplerSlot]]; ok {
			return t, nil
		}
	}
	if d.blank == nil {
		t, err := d.newTexture(raster.TextureDesc{Width: 1, Height: 1, MinFilter: raster.FilterNearest, MagFilter: raster.FilterNearest},
			[]byte{0, 0, 0, 255})
		if err != nil {
			return nil, err
		}
		d.blank = t
	}
	return d.blank, nil
}
