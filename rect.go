package quill

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Rect is an axis-aligned rectangle. W and H may be negative; a rectangle
// with a negative extent is "flipped" and spans from its origin backwards.
// Renderers use flipped rectangles to mirror a shape without changing the
// shader, e.g. to point a rounded corner arc in a different direction.
type Rect struct {
	X, Y, W, H float32
}

// NewRect creates a rectangle.
func NewRect(x, y, w, h float32) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Contains reports whether the point lies inside r. The left and top edges
// are inclusive, the right and bottom edges exclusive. Contains expects a
// non-flipped rect; call Normalize first otherwise.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && y >= r.Y && x < r.X+r.W && y < r.Y+r.H
}

// VFlip mirrors r vertically: the origin moves to the bottom edge and the
// height is negated.
func (r Rect) VFlip() Rect {
	return Rect{X: r.X, Y: r.Y + r.H, W: r.W, H: -r.H}
}

// HFlip mirrors r horizontally.
func (r Rect) HFlip() Rect {
	return Rect{X: r.X + r.W, Y: r.Y, W: -r.W, H: r.H}
}

// HVFlip mirrors r in both directions.
func (r Rect) HVFlip() Rect {
	return r.VFlip().HFlip()
}

// Normalize returns the rectangle covering the same area with non-negative
// extents.
func (r Rect) Normalize() Rect {
	if r.W < 0 {
		r.X += r.W
		r.W = -r.W
	}
	if r.H < 0 {
		r.Y += r.H
		r.H = -r.H
	}
	return r
}

// Min returns the top-left corner of the normalized rect.
func (r Rect) Min() (x, y float32) {
	n := r.Normalize()
	return n.X, n.Y
}

// Max returns the bottom-right corner of the normalized rect.
func (r Rect) Max() (x, y float32) {
	n := r.Normalize()
	return n.X + n.W, n.Y + n.H
}

// Empty reports whether r covers no area.
func (r Rect) Empty() bool {
	return r.W == 0 || r.H == 0
}

// Edge identifies one side of a rectangle, clockwise from the top.
type Edge int

// Edges in clockwise order. The numbering matches the indices of
// RectBlueprint.Borders.
const (
	EdgeTop Edge = iota
	EdgeRight
	EdgeBottom
	EdgeLeft
)

func (e Edge) String() string {
	switch e {
	case EdgeTop:
		return "top"
	case EdgeRight:
		return "right"
	case EdgeBottom:
		return "bottom"
	case EdgeLeft:
		return "left"
	}
	return fmt.Sprintf("Edge(%d)", int(e))
}

// Edge returns a strip of the given thickness lying inside r along edge e.
// Right and bottom strips are expressed as flipped rects anchored on the
// far side. Edge panics for an unknown edge.
func (r Rect) Edge(e Edge, size float32) Rect {
	switch e {
	case EdgeTop:
		return Rect{X: r.X, Y: r.Y, W: r.W, H: size}
	case EdgeRight:
		return Rect{X: r.X + r.W, Y: r.Y, W: -size, H: r.H}
	case EdgeBottom:
		return Rect{X: r.X, Y: r.Y + r.H, W: r.W, H: -size}
	case EdgeLeft:
		return Rect{X: r.X, Y: r.Y, W: size, H: r.H}
	}
	panic("quill: unknown edge " + e.String())
}

// Corner identifies one corner of a rectangle, clockwise from top-left.
// Corner i sits between edge i-1 and edge i.
type Corner int

// Corners in clockwise order.
const (
	CornerTopLeft Corner = iota
	CornerTopRight
	CornerBottomRight
	CornerBottomLeft
)

// Edges returns the two edges meeting at c, in clockwise order.
func (c Corner) Edges() (Edge, Edge) {
	return Edge((int(c) + 3) % 4), Edge(c)
}

// NineSlice splits a rectangle into a 3×3 grid: four corner cells of the
// corner radius, four edge cells and a centre cell.
type NineSlice struct {
	// Horiz holds the four column boundaries, Vert the four row boundaries.
	Horiz [4]float32
	Vert  [4]float32
}

// NewNineSlice slices r with the given corner radius. The radius is clamped
// to [0, min(|w|,|h|)/2] so the cells never overlap.
func NewNineSlice(r Rect, radius float32) NineSlice {
	limit := math32.Min(math32.Abs(r.W), math32.Abs(r.H)) / 2
	radius = math32.Max(0, math32.Min(radius, limit))
	return NineSlice{
		Horiz: [4]float32{r.X, r.X + radius, r.X + r.W - radius, r.X + r.W},
		Vert:  [4]float32{r.Y, r.Y + radius, r.Y + r.H - radius, r.Y + r.H},
	}
}

// Cell returns the cell at column col and row row (both 0..2).
func (n NineSlice) Cell(col, row int) Rect {
	return Rect{
		X: n.Horiz[col],
		Y: n.Vert[row],
		W: n.Horiz[col+1] - n.Horiz[col],
		H: n.Vert[row+1] - n.Vert[row],
	}
}

// Center returns the middle cell.
func (n NineSlice) Center() Rect {
	return n.Cell(1, 1)
}

// EdgeRect returns the border strip of the given width on edge e. The strip
// spans the edge cell only; corners are drawn separately.
func (n NineSlice) EdgeRect(e Edge, width float32) Rect {
	switch e {
	case EdgeTop:
		return n.Cell(1, 0).Edge(EdgeTop, width)
	case EdgeRight:
		return n.Cell(2, 1).Edge(EdgeRight, width)
	case EdgeBottom:
		return n.Cell(1, 2).Edge(EdgeBottom, width)
	case EdgeLeft:
		return n.Cell(0, 1).Edge(EdgeLeft, width)
	}
	panic("quill: unknown edge " + e.String())
}

// CornerRect returns corner cell c, flipped so that its origin is the
// corner's inner point and its extents point outwards. A quarter-circle
// drawn around the local origin then lands in the right place for every
// corner.
func (n NineSlice) CornerRect(c Corner) Rect {
	switch c {
	case CornerTopLeft:
		return n.Cell(0, 0).HVFlip()
	case CornerTopRight:
		return n.Cell(2, 0).VFlip()
	case CornerBottomRight:
		return n.Cell(2, 2)
	case CornerBottomLeft:
		return n.Cell(0, 2).HFlip()
	}
	panic(fmt.Sprintf("quill: unknown corner %d", int(c)))
}

// Corners returns the four oriented corner cells.
func (n NineSlice) Corners() [4]Rect {
	var out [4]Rect
	for c := CornerTopLeft; c <= CornerBottomLeft; c++ {
		out[c] = n.CornerRect(c)
	}
	return out
}

// Edges returns the four edge cells (not strips) in clockwise order.
func (n NineSlice) Edges() [4]Rect {
	return [4]Rect{n.Cell(1, 0), n.Cell(2, 1), n.Cell(1, 2), n.Cell(0, 1)}
}
