// Package frame defines the per-frame data handed over by a UI toolkit:
// clipped triangle meshes in paint order, texture deltas and the
// platform output that the painter passes back untouched.
//
// # Coordinate System
//
// All geometry is in points with the origin at the top-left corner and Y
// increasing downwards. Texture coordinates follow the same convention:
// (0, 0) is the top-left texel and (1, 1) the bottom-right one. Pixel
// rows of images are stored top row first.
//
// Conversion to the bottom-left origin used by rasterizers happens in the
// texture and pipeline packages, never here.
//
// # Colors
//
// [Color32] is premultiplied-alpha sRGBA with 8 bits per channel, exactly
// as the toolkit produces it.
package frame
