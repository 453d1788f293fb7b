package frame

// PlatformOutput is the toolkit's request to the platform layer
// (clipboard, cursor, links). The painter never interprets it and hands
// it back unchanged.
type PlatformOutput struct {
	CursorIcon string
	OpenURL    string
	CopiedText string
}

// FullOutput is everything the toolkit produces for one frame.
type FullOutput struct {
	// Platform is returned to the caller unmodified.
	Platform PlatformOutput

	// Textures are the texture changes of this frame.
	Textures TexturesDelta

	// Primitives in paint order. Later primitives may overlap earlier ones.
	Primitives []ClippedPrimitive
}

// Screen describes the framebuffer a frame is painted into.
type Screen struct {
	// Width and Height are the framebuffer size in device pixels.
	Width, Height int

	// PixelsPerPoint maps toolkit points to device pixels.
	PixelsPerPoint float32
}

// SizeInPoints returns the framebuffer size in points.
func (s Screen) SizeInPoints() (float32, float32) {
	ppp := s.PixelsPerPoint
	if ppp <= 0 {
		ppp = 1
	}
	return float32(s.Width) / ppp, float32(s.Height) / ppp
}
