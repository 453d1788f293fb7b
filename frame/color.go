package frame

// Color32 is a premultiplied-alpha sRGBA color, 8 bits per channel.
type Color32 [4]uint8

// Common colors.
var (
	Transparent = Color32{0, 0, 0, 0}
	Black       = Color32{0, 0, 0, 255}
	White       = Color32{255, 255, 255, 255}
)

// RGBAPremultiplied returns a color from already premultiplied channels.
func RGBAPremultiplied(r, g, b, a uint8) Color32 {
	return Color32{r, g, b, a}
}

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color32 {
	return Color32{r, g, b, 255}
}

// WhiteAlpha returns white premultiplied by a: (a, a, a, a).
func WhiteAlpha(a uint8) Color32 {
	return Color32{a, a, a, a}
}

// R returns the red channel.
func (c Color32) R() uint8 { return c[0] }

// G returns the green channel.
func (c Color32) G() uint8 { return c[1] }

// B returns the blue channel.
func (c Color32) B() uint8 { return c[2] }

// A returns the alpha channel.
func (c Color32) A() uint8 { return c[3] }
