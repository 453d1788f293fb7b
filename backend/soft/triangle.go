package soft

import "github.com/chewxy/math32"

// vec2 is a point in framebuffer space: x to the right, y up, one unit
// per pixel. Pixel (x, y) covers [x, x+1) x [y, y+1).
type vec2 struct {
	x, y float32
}

// edge is a non-horizontal triangle edge with y0 < y1.
type edge struct {
	x0, y0 float32
	y1     float32
	dxdy   float32
}

// newEdge returns the edge from p0 to p1. Horizontal edges never cross a
// scanline and are reported as false.
func newEdge(p0, p1 vec2) (edge, bool) {
	if p0.y == p1.y {
		return edge{}, false
	}
	if p0.y > p1.y {
		p0, p1 = p1, p0
	}
	return edge{
		x0:   p0.x,
		y0:   p0.y,
		y1:   p1.y,
		dxdy: (p1.x - p0.x) / (p1.y - p0.y),
	}, true
}

// isActiveAt reports whether the scanline at y crosses the edge. The
// interval is half-open so a vertex shared by two edges is counted once.
func (e *edge) isActiveAt(y float32) bool {
	return y >= e.y0 && y < e.y1
}

func (e *edge) xAtY(y float32) float32 {
	return e.x0 + (y-e.y0)*e.dxdy
}

// bounds is a half-open pixel rectangle.
type bounds struct {
	x0, y0, x1, y1 int
}

func (b bounds) empty() bool {
	return b.x0 >= b.x1 || b.y0 >= b.y1
}

// fragment receives one covered pixel and the barycentric weights of the
// triangle's vertices at its center.
type fragment func(x, y int, w0, w1, w2 float32)

// triangleRaster scan-converts triangles. It keeps its edge list between
// calls.
type triangleRaster struct {
	edges []edge
}

// signedArea returns twice the signed area of the triangle, positive for
// counter-clockwise vertices.
func signedArea(a, b, c vec2) float32 {
	return (b.x-a.x)*(c.y-a.y) - (b.y-a.y)*(c.x-a.x)
}

// fill calls frag for every pixel of clip whose center lies inside the
// triangle. Centers on the left or bottom boundary are inside, centers
// on the right or top boundary are not.
func (r *triangleRaster) fill(v [3]vec2, clip bounds, frag fragment) {
	area := signedArea(v[0], v[1], v[2])
	if area == 0 || clip.empty() {
		return
	}

	r.edges = r.edges[:0]
	for i := range v {
		if e, ok := newEdge(v[i], v[(i+1)%3]); ok {
			r.edges = append(r.edges, e)
		}
	}

	yMin := math32.Min(v[0].y, math32.Min(v[1].y, v[2].y))
	yMax := math32.Max(v[0].y, math32.Max(v[1].y, v[2].y))
	rowStart := max(firstCenter(yMin), clip.y0)
	rowEnd := min(firstCenter(yMax), clip.y1)

	inv := 1 / area
	for row := rowStart; row < rowEnd; row++ {
		cy := float32(row) + 0.5

		var xs [2]float32
		n := 0
		for i := range r.edges {
			if r.edges[i].isActiveAt(cy) && n < len(xs) {
				xs[n] = r.edges[i].xAtY(cy)
				n++
			}
		}
		if n != 2 {
			continue
		}
		xl, xr := math32.Min(xs[0], xs[1]), math32.Max(xs[0], xs[1])
		colStart := max(firstCenter(xl), clip.x0)
		colEnd := min(firstCenter(xr), clip.x1)

		for col := colStart; col < colEnd; col++ {
			p := vec2{float32(col) + 0.5, cy}
			w0 := signedArea(v[1], v[2], p) * inv
			w1 := signedArea(v[2], v[0], p) * inv
			frag(col, row, w0, w1, 1-w0-w1)
		}
	}
}

// firstCenter returns the first pixel index whose center is >= c.
func firstCenter(c float32) int {
	return int(math32.Ceil(c - 0.5))
}
