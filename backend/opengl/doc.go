// Package opengl implements raster.Device with OpenGL 3.3 core through
// go-gl.
//
// The device draws into whatever framebuffer is bound on the GL context
// current on the calling thread; creating the context (for example with
// GLFW) is the caller's job. All methods must be called on that thread.
//
// CreateTexture and UpdateTexture bind the texture on the active texture
// unit, as any GL texture upload does.
//
// Build with -tags nogl to leave the package out of cgo-free builds.
package opengl
