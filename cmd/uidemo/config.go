package main

import (
	"errors"
	"flag"
	"fmt"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/uiglue/backend"
)

// autoBackend lets the registry pick the best backend that opens.
const autoBackend = "auto"

// config is the demo configuration. Values come from the defaults, then
// the TOML file given with -config, then flags set on the command line.
type config struct {
	Backend        string  `toml:"backend"`
	Width          int     `toml:"width"`
	Height         int     `toml:"height"`
	PixelsPerPoint float32 `toml:"pixels_per_point"`
	Output         string  `toml:"output"`
	Window         bool    `toml:"window"`
	Verbose        bool    `toml:"verbose"`
}

func defaultConfig() config {
	return config{
		Backend: autoBackend,
		Width:   640,
		Height:  480,
		Output:  "uidemo.png",
	}
}

func (c config) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", c.Width, c.Height)
	}
	if c.PixelsPerPoint < 0 {
		return fmt.Errorf("invalid pixels_per_point %v", c.PixelsPerPoint)
	}
	if c.Window {
		return nil
	}
	if !slices.Contains([]string{autoBackend, backend.Soft, backend.WGPU}, c.Backend) {
		return fmt.Errorf("backend %q cannot render to an image", c.Backend)
	}
	if c.Output == "" {
		return errors.New("no output file")
	}
	return nil
}

// pixelsPerPoint is the scale used when rendering to an image, where no
// monitor is involved.
func (c config) pixelsPerPoint() float32 {
	if c.PixelsPerPoint <= 0 {
		return 1
	}
	return c.PixelsPerPoint
}

func parseArgs(args []string) (config, error) {
	cfg := defaultConfig()
	fs := flag.NewFlagSet("uidemo", flag.ContinueOnError)
	var (
		path    = fs.String("config", "", "TOML config file")
		name    = fs.String("backend", cfg.Backend, "backend: auto, soft or wgpu")
		width   = fs.Int("width", cfg.Width, "framebuffer width in pixels")
		height  = fs.Int("height", cfg.Height, "framebuffer height in pixels")
		ppp     = fs.Float64("ppp", 0, "pixels per point, 0 for the monitor scale")
		output  = fs.String("output", cfg.Output, "output PNG file")
		window  = fs.Bool("window", false, "open a GLFW window and draw with OpenGL")
		verbose = fs.Bool("v", false, "debug logging")
	)
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if *path != "" {
		if _, err := toml.DecodeFile(*path, &cfg); err != nil {
			return cfg, fmt.Errorf("read config %s: %w", *path, err)
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			cfg.Backend = *name
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "ppp":
			cfg.PixelsPerPoint = float32(*ppp)
		case "output":
			cfg.Output = *output
		case "window":
			cfg.Window = *window
		case "v":
			cfg.Verbose = *verbose
		}
	})
	return cfg, cfg.validate()
}
