// Command uidemo paints a synthetic UI frame through uiglue.
//
// By default it renders offscreen with the best available backend and
// writes a PNG. With -window it opens a GLFW window and draws with
// OpenGL every frame.
package main

import (
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/uiglue"
)

func main() {
	cfg, err := parseArgs(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("uidemo: %v", err)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	uiglue.SetLogger(logger)

	if cfg.Window {
		err = runWindow(cfg, logger)
	} else {
		err = renderImage(cfg, logger)
	}
	if err != nil {
		log.Fatalf("uidemo: %v", err)
	}
}
