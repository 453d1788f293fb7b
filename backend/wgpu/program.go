//go:build !nogpu

package wgpu

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/uiglue/raster"
)

// Names and entry points of the UI program.
const (
	attribPos      = "in_pos"
	attribUV       = "in_uv"
	attribColor    = "in_color"
	uniformScreen  = "u_screen_size"
	uniformSampler = "u_sampler"

	entryVertex       = "vs_main"
	entryFragment     = "fs_main"
	entryFragmentSRGB = "fs_main_encode"
)

// Vertex input locations of the UI program.
var attribLocations = map[string]int{
	attribPos:   0,
	attribUV:    1,
	attribColor: 2,
}

// Program is a WGSL shader module holding the UI entry points. Uniform
// values are captured by every recorded draw.
type Program struct {
	id          int
	module      hal.ShaderModule
	screen      [2]float32
	samplerSlot int32
}

// AttribLocation implements raster.Program.
func (p *Program) AttribLocation(name string) int {
	if loc, ok := attribLocations[name]; ok {
		return loc
	}
	return -1
}

// SetUniform2f implements raster.Program.
func (p *Program) SetUniform2f(name string, x, y float32) {
	if name == uniformScreen {
		p.screen = [2]float32{x, y}
	}
}

// SetUniform1i implements raster.Program.
func (p *Program) SetUniform1i(name string, v int32) {
	if name == uniformSampler {
		p.samplerSlot = v
	}
}

func (p *Program) destroy(dev hal.Device) {
	if p.module != nil {
		dev.DestroyShaderModule(p.module)
		p.module = nil
	}
}

// NewProgram implements raster.Device. Only the WGSL source is used.
func (d *Device) NewProgram(src raster.ShaderSource) (raster.Program, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if src.WGSL == "" {
		return nil, fmt.Errorf("wgpu: %w: no WGSL source", raster.ErrShaderCompile)
	}
	for _, entry := range []string{entryVertex, entryFragment, entryFragmentSRGB} {
		if !strings.Contains(src.WGSL, "fn "+entry) {
			return nil, fmt.Errorf("wgpu: %w: missing entry point %s", raster.ErrProgramLink, entry)
		}
	}

	desc := &hal.ShaderModuleDescriptor{Label: "uiglue_ui"}
	if d.cfg.SPIRV {
		spirv, err := compileSPIRV(src.WGSL)
		if err != nil {
			return nil, err
		}
		desc.Source.SPIRV = spirv
	} else {
		desc.Source.WGSL = src.WGSL
	}
	module, err := d.dev.CreateShaderModule(desc)
	if err != nil {
		return nil, fmt.Errorf("wgpu: %w: %w", raster.ErrShaderCompile, err)
	}
	d.nextProg++
	return &Program{id: d.nextProg, module: module}, nil
}

// compileSPIRV translates WGSL to SPIR-V words.
func compileSPIRV(wgsl string) ([]uint32, error) {
	code, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("wgpu: %w: %w", raster.ErrShaderCompile, err)
	}
	if len(code)%4 != 0 {
		return nil, fmt.Errorf("wgpu: %w: SPIR-V size %d is not a multiple of 4", raster.ErrShaderCompile, len(code))
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	return words, nil
}

// UseProgram implements raster.Device.
func (d *Device) UseProgram(p raster.Program) {
	prog, _ := p.(*Program)
	d.program = prog
}

// DeleteProgram implements raster.Device. Pipelines built from the
// program are destroyed after pending draws are submitted.
func (d *Device) DeleteProgram(p raster.Program) {
	prog, ok := p.(*Program)
	if !ok || prog.module == nil {
		return
	}
	for _, dc := range d.draws {
		if dc.key.program == prog.id {
			if err := d.flush(); err != nil {
				d.fail(err)
			}
			break
		}
	}
	d.pipelines.EvictFunc(func(k pipelineKey, _ hal.RenderPipeline) bool {
		return k.program == prog.id
	})
	if len(d.draws) == 0 {
		d.releaseRetired()
	}
	prog.destroy(d.dev)
	if d.program == prog {
		d.program = nil
	}
}
