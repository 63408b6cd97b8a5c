// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/quill"
	"github.com/gogpu/quill/gpu"
)

type rectProgram struct {
	id         gpu.Program
	vertex     gpu.AttribLocation
	mvp        gpu.UniformLocation
	col        gpu.UniformLocation
	pos        gpu.UniformLocation
	size       gpu.UniformLocation
	innerRad   gpu.UniformLocation
	smoothness gpu.UniformLocation
}

func newRectProgram(b gpu.Backend, fragment string) (rectProgram, error) {
	l, err := compileProgram(b, rectVertexSource, fragment)
	if err != nil {
		return rectProgram{}, err
	}
	p := rectProgram{
		vertex:     l.attrib("vertex"),
		mvp:        l.uniform("mvp"),
		col:        l.uniform("col"),
		pos:        l.uniform("pos"),
		size:       l.uniform("size"),
		innerRad:   l.uniform("inner_rad"),
		smoothness: l.uniform("smoothness"),
	}
	p.id, err = l.done()
	return p, err
}

// RectRenderer draws rectangles as a nine-slice: quarter discs in the
// corners and plain quads everywhere else.
type RectRenderer struct {
	b      gpu.Backend
	buf    gpu.Buffer
	round  rectProgram
	square rectProgram
}

// NewRectRenderer compiles the rect programs.
func NewRectRenderer(b gpu.Backend) (*RectRenderer, error) {
	round, err := newRectProgram(b, roundFragmentSource)
	if err != nil {
		return nil, err
	}
	square, err := newRectProgram(b, squareFragmentSource)
	if err != nil {
		b.DestroyProgram(round.id)
		return nil, err
	}
	buf := b.NewBuffer(2)
	b.SetBufferData(buf, unitQuad)
	return &RectRenderer{b: b, buf: buf, round: round, square: square}, nil
}

// Draw draws rb with the projection mvp. Fill cells come first, then the
// border arcs of corners whose two edges both have a border, then the
// border strips.
func (r *RectRenderer) Draw(mvp *[16]float32, rb *quill.RectBlueprint) {
	n := quill.NewNineSlice(rb.Rect, rb.CornerRadius)
	radius := n.Horiz[1] - n.Horiz[0] // clamped

	for c := quill.CornerTopLeft; c <= quill.CornerBottomLeft; c++ {
		r.arc(mvp, rb, n.CornerRect(c), rb.Color, 0)
	}
	for row := range 3 {
		for col := range 3 {
			if row == 1 || col == 1 {
				r.quad(mvp, rb, n.Cell(col, row), rb.Color)
			}
		}
	}

	if !rb.HasBorder() {
		return
	}
	inner := radius - rb.BorderWidth
	for c := quill.CornerTopLeft; c <= quill.CornerBottomLeft; c++ {
		prev, next := c.Edges()
		if rb.Borders[prev] && rb.Borders[next] {
			r.arc(mvp, rb, n.CornerRect(c), rb.BorderColor, inner)
		}
	}
	for e := quill.EdgeTop; e <= quill.EdgeLeft; e++ {
		if rb.Borders[e] {
			r.quad(mvp, rb, n.EdgeRect(e, rb.BorderWidth), rb.BorderColor)
		}
	}
}

// arc draws a quarter disc filling cell, hollowed out inside inner pixels.
// Zero-sized cells (square corners) are skipped.
func (r *RectRenderer) arc(mvp *[16]float32, rb *quill.RectBlueprint, cell quill.Rect, col quill.Color, inner float32) {
	if cell.Empty() {
		return
	}
	size := (math32.Abs(cell.W) + math32.Abs(cell.H)) / 2
	p := &r.round
	r.b.UseProgram(p.id)
	r.b.BindBuffer(r.buf, p.vertex, 0, 2)
	r.b.SetUniform(p.mvp, mvp[:]...)
	r.b.SetUniform(p.col, rgba(col, rb.Alpha)...)
	r.b.SetUniform(p.pos, cell.X, cell.Y)
	r.b.SetUniform(p.size, cell.W, cell.H)
	r.b.SetUniform(p.innerRad, inner/size)
	r.b.SetUniform(p.smoothness, 1/size)
	r.b.Draw(0, quadVertices)
}

func (r *RectRenderer) quad(mvp *[16]float32, rb *quill.RectBlueprint, cell quill.Rect, col quill.Color) {
	if cell.Empty() {
		return
	}
	p := &r.square
	r.b.UseProgram(p.id)
	r.b.BindBuffer(r.buf, p.vertex, 0, 2)
	r.b.SetUniform(p.mvp, mvp[:]...)
	r.b.SetUniform(p.col, rgba(col, rb.Alpha)...)
	r.b.SetUniform(p.pos, cell.X, cell.Y)
	r.b.SetUniform(p.size, cell.W, cell.H)
	r.b.Draw(0, quadVertices)
}

// Destroy releases the programs and the quad buffer.
func (r *RectRenderer) Destroy() {
	r.b.DestroyProgram(r.round.id)
	r.b.DestroyProgram(r.square.id)
	r.b.DestroyBuffer(r.buf)
}

func rgba(c quill.Color, alpha float32) []float32 {
	v := c.RGBA(alpha)
	return v[:]
}
