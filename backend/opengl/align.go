package opengl

// unpackAlignment returns the largest GL_UNPACK_ALIGNMENT (8, 4, 2 or 1)
// dividing the byte length of one pixel row.
func unpackAlignment(rowBytes int) int32 {
	switch {
	case rowBytes%8 == 0:
		return 8
	case rowBytes%4 == 0:
		return 4
	case rowBytes%2 == 0:
		return 2
	default:
		return 1
	}
}
