// Package color converts between sRGB and linear light.
//
// The byte conversions use lookup tables: 256 entries for decoding and
// 4096 entries (12 bits, enough for 8-bit output) for encoding. They are
// used by the CPU rasterizer for every blended pixel.
package color

import "github.com/chewxy/math32"

// sRGBToLinearLUT maps an sRGB byte to linear [0, 1].
var sRGBToLinearLUT [256]float32

// linearToSRGBLUT maps linear [0, 1] in 4096 steps to an sRGB byte.
var linearToSRGBLUT [4096]uint8

func init() {
	for i := range sRGBToLinearLUT {
		sRGBToLinearLUT[i] = SRGBToLinear(float32(i) / 255)
	}
	for i := range linearToSRGBLUT {
		s := LinearToSRGB(float32(i) / 4095)
		//nolint:gosec // G115: clamped to [0,255] below
		linearToSRGBLUT[i] = uint8(math32.Min(math32.Max(s*255+0.5, 0), 255))
	}
}

// SRGBToLinear decodes an sRGB value in [0, 1].
func SRGBToLinear(s float32) float32 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return math32.Pow((s+0.055)/1.055, 2.4)
}

// LinearToSRGB encodes a linear value in [0, 1].
func LinearToSRGB(l float32) float32 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*math32.Pow(l, 1/2.4) - 0.055
}

// SRGBToLinearFast decodes an sRGB byte with the lookup table.
//
//	r := SRGBToLinearFast(128) // ~0.2159 (not 0.5!)
func SRGBToLinearFast(s uint8) float32 {
	return sRGBToLinearLUT[s]
}

// LinearToSRGBFast encodes linear light to an sRGB byte with the lookup
// table. Input is clamped to [0, 1].
//
//	s := LinearToSRGBFast(0.5) // 188 (not 128!)
func LinearToSRGBFast(l float32) uint8 {
	if !(l > 0) { // also NaN
		return 0
	}
	if l >= 1 {
		return 255
	}
	return linearToSRGBLUT[int(l*4095+0.5)]
}
