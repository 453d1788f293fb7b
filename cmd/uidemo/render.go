package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/image/font/basicfont"

	"github.com/gogpu/uiglue"
	"github.com/gogpu/uiglue/backend"
	_ "github.com/gogpu/uiglue/backend/soft"
	_ "github.com/gogpu/uiglue/backend/wgpu"
	"github.com/gogpu/uiglue/frame"
)

// imageFrames is the number of frames painted before the readback, so
// the second one exercises a partial texture update.
const imageFrames = 2

// clearer is implemented by every built-in backend.
type clearer interface {
	Clear(c frame.Color32)
}

type pngEncoder interface {
	EncodePNG(w io.Writer) error
}

func openBackend(cfg config) (backend.Device, string, error) {
	bcfg := backend.Config{Width: cfg.Width, Height: cfg.Height}
	if cfg.Backend == autoBackend {
		return backend.Default(bcfg)
	}
	dev, err := backend.Open(cfg.Backend, bcfg)
	return dev, cfg.Backend, err
}

// renderImage paints the demo offscreen and writes the result as PNG.
func renderImage(cfg config, logger *slog.Logger) (err error) {
	dev, name, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, dev.Close()) }()
	enc, ok := dev.(pngEncoder)
	if !ok {
		return fmt.Errorf("backend %s cannot read back its target", name)
	}

	if err := paintFrames(dev, cfg, logger, imageFrames); err != nil {
		return err
	}

	f, err := os.Create(cfg.Output)
	if err != nil {
		return err
	}
	if err := enc.EncodePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", cfg.Output, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("uidemo: image written",
		slog.String("backend", name),
		slog.String("output", cfg.Output),
		slog.Int("width", cfg.Width),
		slog.Int("height", cfg.Height))
	return nil
}

// paintFrames draws n demo frames on dev. Every frame is drawn in full;
// the primitive errors of all frames are returned together.
func paintFrames(dev backend.Device, cfg config, logger *slog.Logger, n int) error {
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
	screen := frame.Screen{Width: cfg.Width, Height: cfg.Height, PixelsPerPoint: cfg.pixelsPerPoint()}
	w, h := screen.SizeInPoints()
	var errs []error
	for i := 0; i < n; i++ {
		if c, ok := dev.(clearer); ok {
			c.Clear(frame.Black)
		}
		if _, err := p.Paint(sc.next(w, h), screen); err != nil {
			errs = append(errs, fmt.Errorf("frame %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
