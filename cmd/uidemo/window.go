//go:build !nogl

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"golang.org/x/image/font/basicfont"

	"github.com/gogpu/uiglue"
	"github.com/gogpu/uiglue/backend/opengl"
	"github.com/gogpu/uiglue/frame"
	"github.com/gogpu/uiglue/platform/glfwscale"
)

func init() {
	// GLFW event handling must run on the main thread.
	runtime.LockOSThread()
}

// runWindow draws the demo into a GLFW window until it is closed.
func runWindow(cfg config, logger *slog.Logger) (err error) {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.ScaleToMonitor, glfw.True)
	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, "uidemo", nil, nil)
	if err != nil {
		return fmt.Errorf("glfw: %w", err)
	}
	defer win.Destroy()
	win.MakeContextCurrent()
	glfw.SwapInterval(1)

	dev, err := opengl.New()
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, dev.Close()) }()

	p, err := uiglue.New(dev, uiglue.WithLogger(logger))
	if err != nil {
		return err
	}
	defer p.Close()

	user := gradientTexture(64)
	defer user.Release()
	userID, err := p.UserTexture(user)
	if err != nil {
		return err
	}
	sc := newScene(newFontAtlas(basicfont.Face7x13), &userID)

	for !win.ShouldClose() {
		ppp := cfg.PixelsPerPoint
		if ppp <= 0 {
			ppp = glfwscale.PixelsPerPoint(win)
		}
		width, height := glfwscale.ScreenSize(win)
		screen := frame.Screen{Width: width, Height: height, PixelsPerPoint: ppp}
		w, h := screen.SizeInPoints()

		dev.Viewport(width, height)
		dev.Clear(frame.Black)
		if _, err := p.Paint(sc.next(w, h), screen); err != nil {
			logger.Warn("uidemo: frame painted with errors", slog.Any("err", err))
		}
		win.SwapBuffers()
		glfw.PollEvents()
	}
	return nil
}
