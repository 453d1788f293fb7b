package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseArgsDefaults(t *testing.T) {
	cfg, err := parseArgs(nil)
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if cfg != defaultConfig() {
		t.Errorf("cfg = %+v, want %+v", cfg, defaultConfig())
	}
	if got := cfg.pixelsPerPoint(); got != 1 {
		t.Errorf("pixelsPerPoint = %v, want 1", got)
	}
}

func TestParseArgsFileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uidemo.toml")
	data := `backend = "soft"
width = 320
height = 200
pixels_per_point = 2.0
output = "from-file.png"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := parseArgs([]string{"-config", path, "-height", "100"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	want := config{
		Backend:        "soft",
		Width:          320,
		Height:         100,
		PixelsPerPoint: 2,
		Output:         "from-file.png",
	}
	if cfg != want {
		t.Errorf("cfg = %+v, want %+v", cfg, want)
	}
}

func TestParseArgsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero width", []string{"-width", "0"}},
		{"negative scale", []string{"-ppp", "-1"}},
		{"gl offscreen", []string{"-backend", "gl"}},
		{"unknown backend", []string{"-backend", "vulkan"}},
		{"no output", []string{"-output", ""}},
		{"missing file", []string{"-config", "does-not-exist.toml"}},
		{"unknown flag", []string{"-frobnicate"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseArgs(tt.args); err == nil {
				t.Errorf("parseArgs(%q) succeeded", tt.args)
			}
		})
	}
}

func TestParseArgsWindowAcceptsAnyBackend(t *testing.T) {
	cfg, err := parseArgs([]string{"-window", "-backend", "gl"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if !cfg.Window {
		t.Error("Window = false")
	}
}
