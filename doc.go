// Package uiglue paints the output of an immediate-mode UI toolkit with a
// stateful immediate-mode rasterizer.
//
// # Overview
//
// Each frame the toolkit produces a list of clipped primitives (small
// indexed triangle meshes, each with a texture reference and a clip
// rectangle) and a texture delta describing atlas changes. A [Painter]
// applies the delta to its texture table, draws the primitives in paint
// order and hands the toolkit's platform output back to the caller.
//
// # Quick Start
//
//	dev, err := soft.New(soft.Config{Width: 800, Height: 600})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	p, err := uiglue.New(dev)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	platform, err := p.Paint(out, frame.Screen{Width: 800, Height: 600, PixelsPerPoint: 1})
//
// # Architecture
//
//   - frame: the toolkit contract (meshes, texture deltas, output)
//   - raster: the rasterizer contract and the toggle snapshot
//   - imm: the reusable vertex batch
//   - texture: RGBA8 atlas textures and the managed texture table
//   - backend: the backend registry; backend/soft, backend/opengl and
//     backend/wgpu implement the rasterizer
//   - platform/glfwscale: pixels per point of a GLFW window
//
// # Rasterizer State
//
// The painter never leaves its own state behind: the five global toggles
// (face culling, depth test, scissor test, blending, sRGB framebuffer) are
// captured before and restored after every primitive. Blend function,
// scissor box, bound textures and the current program are left as the
// last primitive set them, as with any immediate-mode GL painter.
//
// # Logging
//
// uiglue is silent by default. Use [SetLogger] or [WithLogger] to receive
// log/slog records.
package uiglue
