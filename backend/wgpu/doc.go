// Package wgpu implements raster.Device over the gogpu/wgpu HAL.
//
// WebGPU has no global rasterizer state, so the device emulates it. Every
// DrawArrays call is recorded together with the toggles, blend function,
// scissor box, bound texture and program uniforms current at the time of
// the call. EndFrame uploads the vertex data of all recorded draws into
// one buffer and replays them in a single render pass that loads the
// existing target contents. Render pipelines are created on demand and
// cached by the state they bake in (vertex layout, blending, culling and
// sRGB encoding). The cache is bounded by Config.MaxPipelines; an evicted
// pipeline lives until the draws recorded with it are submitted.
//
// Outside BeginFrame/EndFrame each DrawArrays call is submitted on its own.
//
// Texture rows are stored bottom-up exactly as handed in, so texture
// coordinate v = 0 addresses the first row in both GL and WebGPU. Scissor
// boxes arrive with a bottom-left origin and are flipped to the top-left
// origin WebGPU uses.
//
// FramebufferSRGB on a linear target is emulated by encoding in the
// fragment shader (fs_main_encode). On an sRGB target the hardware
// encodes and blends in linear light. The device has no depth buffer;
// DepthTest has no effect.
//
// The device renders into an offscreen RGBA8 texture unless a host view
// is set with SetTarget. Image reads the offscreen target back.
package wgpu
