package frame

import "fmt"

// Pos2 is a position in points (or a texture coordinate for Vertex.UV).
type Pos2 struct {
	X, Y float32
}

// P2 is shorthand for Pos2{X: x, Y: y}.
func P2(x, y float32) Pos2 {
	return Pos2{X: x, Y: y}
}

// Rect is an axis-aligned rectangle in points.
// Min is the top-left corner, Max the bottom-right one.
type Rect struct {
	Min, Max Pos2
}

// RectFromMinMax creates a Rect from its two corners.
func RectFromMinMax(minX, minY, maxX, maxY float32) Rect {
	return Rect{Min: Pos2{X: minX, Y: minY}, Max: Pos2{X: maxX, Y: maxY}}
}

// Width returns Max.X - Min.X.
func (r Rect) Width() float32 { return r.Max.X - r.Min.X }

// Height returns Max.Y - Min.Y.
func (r Rect) Height() float32 { return r.Max.Y - r.Min.Y }

// IsPositive reports whether the rectangle has a non-zero area.
func (r Rect) IsPositive() bool {
	return r.Min.X < r.Max.X && r.Min.Y < r.Max.Y
}

// Contains reports whether p lies inside r (max edges exclusive).
func (r Rect) Contains(p Pos2) bool {
	return p.X >= r.Min.X && p.X < r.Max.X && p.Y >= r.Min.Y && p.Y < r.Max.Y
}

// String returns a string representation of the rectangle.
func (r Rect) String() string {
	return fmt.Sprintf("Rect(%g,%g %g,%g)", r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
}
