package opengl

import "testing"

func TestUnpackAlignment(t *testing.T) {
	tests := []struct {
		rowBytes int
		want     int32
	}{
		{16, 8},
		{8, 8},
		{12, 4},
		{4, 4},
		{6, 2},
		{3, 1},
		{1, 1},
	}
	for _, tt := range tests {
		if got := unpackAlignment(tt.rowBytes); got != tt.want {
			t.Errorf("unpackAlignment(%d) = %d, want %d", tt.rowBytes, got, tt.want)
		}
	}
}
