// Package backend provides a registry of rasterizer implementations.
//
// Backends register a factory from an init() function and are selected at
// runtime by name:
//
//	import (
//		"github.com/gogpu/uiglue/backend"
//		_ "github.com/gogpu/uiglue/backend/soft"
//	)
//
//	dev, err := backend.Open(backend.Soft, backend.Config{Width: 800, Height: 600})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer dev.Close()
//
// # Available Backends
//
//   - "soft": CPU scanline rasterizer, renders into an in-memory image
//   - "gl": OpenGL 3.3 core on the caller's current context, see backend/opengl (build tag !nogl)
//   - "wgpu": gogpu/wgpu HAL, renders into an offscreen texture (build tag !nogpu)
package backend
