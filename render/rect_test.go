// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/gogpu/quill"
	"github.com/gogpu/quill/recording"
)

func newRectRenderer(t *testing.T) (*RectRenderer, *recording.Backend) {
	t.Helper()
	b := recording.New()
	r, err := NewRectRenderer(b)
	if err != nil {
		t.Fatal(err)
	}
	return r, b
}

func drawsBy(draws []recording.DrawCall, r *RectRenderer) (round, square []recording.DrawCall) {
	for _, d := range draws {
		switch d.Program {
		case r.round.id:
			round = append(round, d)
		case r.square.id:
			square = append(square, d)
		}
	}
	return round, square
}

func TestRectRendererDrawCounts(t *testing.T) {
	base := quill.RectBlueprint{
		Rect:         quill.NewRect(0, 0, 100, 50),
		Color:        0x2a2939,
		BorderColor:  0xff84c6,
		BorderWidth:  4,
		CornerRadius: 10,
		Alpha:        1,
	}
	tests := []struct {
		name       string
		radius     float32
		borders    [4]bool
		wantRound  int
		wantSquare int
	}{
		{"rounded fill", 10, [4]bool{}, 4, 5},
		{"square fill", 0, [4]bool{}, 0, 1},
		{"all borders", 10, quill.AllBorders, 8, 9},
		{"top and right", 10, [4]bool{quill.EdgeTop: true, quill.EdgeRight: true}, 5, 7},
		{"opposite edges", 10, [4]bool{quill.EdgeTop: true, quill.EdgeBottom: true}, 4, 7},
		{"square with borders", 0, quill.AllBorders, 0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, b := newRectRenderer(t)
			rb := base
			rb.CornerRadius = tt.radius
			rb.Borders = tt.borders

			mvp := orthographic(200, 100)
			b.BeginFrame()
			r.Draw(&mvp, &rb)
			round, square := drawsBy(b.Draws(), r)
			if len(round) != tt.wantRound || len(square) != tt.wantSquare {
				t.Errorf("draws = %d round, %d square; want %d, %d",
					len(round), len(square), tt.wantRound, tt.wantSquare)
			}
		})
	}
}

func TestRectRendererGeometry(t *testing.T) {
	r, b := newRectRenderer(t)
	rb := quill.RectBlueprint{
		Rect:         quill.NewRect(0, 0, 100, 50),
		Color:        0xff0000,
		BorderColor:  0x0000ff,
		BorderWidth:  4,
		CornerRadius: 10,
		Borders:      [4]bool{quill.EdgeTop: true, quill.EdgeRight: true},
		Alpha:        0.5,
	}
	mvp := orthographic(100, 50)
	b.BeginFrame()
	r.Draw(&mvp, &rb)
	round, square := drawsBy(b.Draws(), r)

	center := square[2] // row 1 is drawn left to right after the top edge cell
	if pos, size := center.Uniform("pos"), center.Uniform("size"); pos[0] != 10 || pos[1] != 10 || size[0] != 80 || size[1] != 30 {
		t.Errorf("centre cell = %v %v, want [10 10] [80 30]", pos, size)
	}
	if col := center.Uniform("col"); col[0] != 1 || col[2] != 0 || col[3] != 0.5 {
		t.Errorf("fill colour = %v", col)
	}

	tl := round[0]
	if pos, size := tl.Uniform("pos"), tl.Uniform("size"); pos[0] != 10 || pos[1] != 10 || size[0] != -10 || size[1] != -10 {
		t.Errorf("top-left corner = %v %v, want flipped cell at the inner point", pos, size)
	}
	if inner := tl.Uniform("inner_rad"); inner[0] != 0 {
		t.Errorf("fill corner inner radius = %v", inner)
	}

	border := round[4]
	if inner := border.Uniform("inner_rad"); inner[0] != 0.6 {
		t.Errorf("border arc inner radius = %v, want 0.6", inner)
	}
	if col := border.Uniform("col"); col[2] != 1 {
		t.Errorf("border colour = %v", col)
	}
	if pos := border.Uniform("pos"); pos[0] != 90 || pos[1] != 10 {
		t.Errorf("border arc at %v, want the top-right corner", pos)
	}

	top := square[5]
	if pos, size := top.Uniform("pos"), top.Uniform("size"); pos[0] != 10 || pos[1] != 0 || size[0] != 80 || size[1] != 4 {
		t.Errorf("top border strip = %v %v", pos, size)
	}
}

func TestOrthographic(t *testing.T) {
	m := orthographic(100, 50)
	apply := func(x, y float32) (float32, float32) {
		return m[0]*x + m[4]*y + m[12], m[1]*x + m[5]*y + m[13]
	}
	tests := []struct{ x, y, wx, wy float32 }{
		{0, 0, -1, 1},
		{100, 50, 1, -1},
		{50, 25, 0, 0},
	}
	for _, tt := range tests {
		if gx, gy := apply(tt.x, tt.y); math32.Abs(gx-tt.wx) > 1e-6 || math32.Abs(gy-tt.wy) > 1e-6 {
			t.Errorf("(%v,%v) -> (%v,%v), want (%v,%v)", tt.x, tt.y, gx, gy, tt.wx, tt.wy)
		}
	}
}
