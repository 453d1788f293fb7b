// Package shaders embeds the UI mesh shader program.
package shaders

import (
	_ "embed"

	"github.com/gogpu/uiglue/raster"
)

// Shader sources.
var (
	//go:embed ui.vert
	UIVertex string

	//go:embed ui.frag
	UIFragment string

	//go:embed ui.wgsl
	UIWGSL string
)

// UI returns the UI mesh program for every backend family.
func UI() raster.ShaderSource {
	return raster.ShaderSource{
		Vertex:   UIVertex,
		Fragment: UIFragment,
		WGSL:     UIWGSL,
	}
}
