//go:build nogl

package main

import (
	"errors"
	"log/slog"
)

func runWindow(config, *slog.Logger) error {
	return errors.New("built with -tags nogl: no window support")
}
