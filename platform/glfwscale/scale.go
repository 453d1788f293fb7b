// Package glfwscale derives the UI scale of a GLFW window from the
// monitor it is on.
//
// A point is 1/72 inch, so pixels per point is the monitor's pixels per
// inch divided by 72. Monitors that do not report a physical size fall
// back to the window content scale.
package glfwscale

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	pointsPerInch = 72
	mmPerInch     = 25.4
)

// Monitor is the geometry of one connected monitor.
type Monitor struct {
	X, Y          int // position in screen coordinates
	Width, Height int // video mode size in pixels
	PhysicalWidth int // in millimetres, 0 when unknown
}

// Contains reports whether the screen position x, y lies on m. Edges are
// inclusive on both ends.
func (m Monitor) Contains(x, y int) bool {
	return x >= m.X && x <= m.X+m.Width && y >= m.Y && y <= m.Y+m.Height
}

// PixelsPerPoint returns the pixels per point of m, or fallback when the
// monitor size is unknown.
func (m Monitor) PixelsPerPoint(fallback float32) float32 {
	if m.PhysicalWidth <= 0 || m.Width <= 0 {
		return fallback
	}
	ppi := float32(m.Width) / (float32(m.PhysicalWidth) / mmPerInch)
	ppp := ppi / pointsPerInch
	if math32.IsNaN(ppp) || math32.IsInf(ppp, 0) || ppp <= 0 {
		return fallback
	}
	return ppp
}

// Current returns the index of the first monitor containing x, y, or 0.
func Current(monitors []Monitor, x, y int) int {
	for i, m := range monitors {
		if m.Contains(x, y) {
			return i
		}
	}
	return 0
}

// Monitors reads the connected monitors. GLFW must be initialized.
func Monitors() []Monitor {
	mons := glfw.GetMonitors()
	out := make([]Monitor, 0, len(mons))
	for _, mon := range mons {
		vm := mon.GetVideoMode()
		if vm == nil {
			continue
		}
		x, y := mon.GetPos()
		pw, _ := mon.GetPhysicalSize()
		out = append(out, Monitor{X: x, Y: y, Width: vm.Width, Height: vm.Height, PhysicalWidth: pw})
	}
	return out
}

// PixelsPerPoint returns the pixels per point for win on the monitor its
// position lies on. It must be called from the main thread.
func PixelsPerPoint(win *glfw.Window) float32 {
	fallback := contentScale(win)
	mons := Monitors()
	if len(mons) == 0 {
		return fallback
	}
	x, y := win.GetPos()
	return mons[Current(mons, x, y)].PixelsPerPoint(fallback)
}

// contentScale is the window's horizontal content scale, at least 1.
func contentScale(win *glfw.Window) float32 {
	sx, _ := win.GetContentScale()
	if math32.IsNaN(sx) || sx < 1 {
		return 1
	}
	return sx
}

// ScreenSize returns the framebuffer size of win in device pixels.
func ScreenSize(win *glfw.Window) (width, height int) {
	return win.GetFramebufferSize()
}
