package frame

import "fmt"

// TextureFilter selects how texels are sampled.
type TextureFilter uint8

const (
	// FilterLinear interpolates between neighbouring texels.
	FilterLinear TextureFilter = iota

	// FilterNearest picks the closest texel.
	FilterNearest
)

// String returns the filter name.
func (f TextureFilter) String() string {
	switch f {
	case FilterLinear:
		return "Linear"
	case FilterNearest:
		return "Nearest"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(f))
	}
}

// TextureOptions controls sampling of a managed texture. Textures always
// clamp to the edge.
type TextureOptions struct {
	Magnification TextureFilter
	Minification  TextureFilter
}

// DefaultTextureOptions is linear filtering in both directions.
var DefaultTextureOptions = TextureOptions{
	Magnification: FilterLinear,
	Minification:  FilterLinear,
}

// ImageDelta is a full or partial change of a texture's pixels.
type ImageDelta struct {
	// Image holds the new pixels.
	Image ImageData

	// Options are the sampling options of the whole texture.
	Options TextureOptions

	// Pos is the top-left corner, in texels from the top-left of the
	// texture, where Image is written. Nil means Image replaces the
	// whole texture.
	Pos *[2]int
}

// WholeDelta returns a delta replacing the whole texture.
func WholeDelta(img ImageData, opts TextureOptions) ImageDelta {
	return ImageDelta{Image: img, Options: opts}
}

// PartialDelta returns a delta patching the rectangle at (x, y).
func PartialDelta(x, y int, img ImageData, opts TextureOptions) ImageDelta {
	return ImageDelta{Image: img, Options: opts, Pos: &[2]int{x, y}}
}

// IsWhole reports whether the delta replaces the whole texture.
func (d ImageDelta) IsWhole() bool {
	return d.Pos == nil
}

// String returns a string representation of the delta.
func (d ImageDelta) String() string {
	if d.Pos == nil {
		return fmt.Sprintf("Whole(%s)", imageString(d.Image))
	}
	return fmt.Sprintf("Partial(%s at %d,%d)", imageString(d.Image), d.Pos[0], d.Pos[1])
}

// TextureSet pairs a managed texture with the delta to apply to it.
type TextureSet struct {
	ID    TextureID
	Delta ImageDelta
}

// TexturesDelta lists the texture changes of one frame. Set entries are
// applied before painting, Free entries after painting.
type TexturesDelta struct {
	Set  []TextureSet
	Free []TextureID
}

// IsEmpty reports whether the delta changes nothing.
func (d *TexturesDelta) IsEmpty() bool {
	return len(d.Set) == 0 && len(d.Free) == 0
}

// Append adds the changes of other after the changes of d.
func (d *TexturesDelta) Append(other TexturesDelta) {
	d.Set = append(d.Set, other.Set...)
	d.Free = append(d.Free, other.Free...)
}

// Clear empties both lists, keeping their storage.
func (d *TexturesDelta) Clear() {
	d.Set = d.Set[:0]
	d.Free = d.Free[:0]
}
