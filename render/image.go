// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"

	"github.com/gogpu/quill"
	"github.com/gogpu/quill/gpu"
)

// ErrImageClosed is reported for draws of a closed ImageSource.
var ErrImageClosed = errors.New("render: image source is closed")

// ImageRenderer draws textures as screen-aligned quads.
type ImageRenderer struct {
	b        gpu.Backend
	buf      gpu.Buffer
	program  gpu.Program
	vertex   gpu.AttribLocation
	texCoord gpu.AttribLocation
	mvp      gpu.UniformLocation
	pos      gpu.UniformLocation
	size     gpu.UniformLocation
}

// NewImageRenderer compiles the image program.
func NewImageRenderer(b gpu.Backend) (*ImageRenderer, error) {
	l, err := compileProgram(b, imageVertexSource, imageFragmentSource)
	if err != nil {
		return nil, err
	}
	r := &ImageRenderer{
		b:        b,
		vertex:   l.attrib("vertex"),
		texCoord: l.attrib("tex_coord"),
		mvp:      l.uniform("mvp"),
		pos:      l.uniform("pos"),
		size:     l.uniform("size"),
	}
	if r.program, err = l.done(); err != nil {
		return nil, err
	}
	r.buf = b.NewBuffer(4)
	b.SetBufferData(r.buf, texQuad)
	return r, nil
}

// Draw stretches img over rect. The texture is sampled with the filter it
// was created with; image sources use nearest filtering.
func (r *ImageRenderer) Draw(mvp *[16]float32, rect quill.Rect, img *quill.ImageSource) error {
	if img == nil {
		return ErrImageClosed
	}
	tex := img.Texture()
	if tex == 0 {
		return ErrImageClosed
	}
	r.b.UseProgram(r.program)
	r.b.BindBuffer(r.buf, r.vertex, 0, 2)
	r.b.BindBuffer(r.buf, r.texCoord, 2, 2)
	r.b.BindTexture(tex)
	r.b.SetUniform(r.mvp, mvp[:]...)
	r.b.SetUniform(r.pos, rect.X, rect.Y)
	r.b.SetUniform(r.size, rect.W, rect.H)
	r.b.Draw(0, quadVertices)
	return nil
}

// Destroy releases the program and the quad buffer.
func (r *ImageRenderer) Destroy() {
	r.b.DestroyProgram(r.program)
	r.b.DestroyBuffer(r.buf)
}
