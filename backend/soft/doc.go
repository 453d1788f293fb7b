// Package soft implements raster.Device on the CPU.
//
// The device renders into an in-memory RGBA8 framebuffer with a
// bottom-left origin, like a GL default framebuffer. Triangles are
// scanline-converted with pixel-center sampling and a half-open rule on
// both axes, so triangles sharing an edge never touch the same pixel
// twice. With FramebufferSRGB enabled the framebuffer is treated as sRGB
// encoded: blending happens in linear light and the result is re-encoded.
//
// Programs are not compiled. Every program runs the built-in UI shader
// (position in points, sRGB vertex color, texture modulation), which is
// what the GLSL and WGSL sources of the UI program describe.
//
// The device has no depth buffer; DepthTest has no effect.
package soft
