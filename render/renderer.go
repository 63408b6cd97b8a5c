// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/quill"
	"github.com/gogpu/quill/gpu"
	"github.com/gogpu/quill/text"
)

// FrameStats counts the draws of the last completed frame.
type FrameStats struct {
	Rects  int
	Texts  int
	Images int
	Errors int
}

// Renderer draws quill blueprints through a gpu.Backend. It composes a
// RectRenderer, an ImageRenderer and a TextRenderer.
//
// Blueprint coordinates are logical pixels. Resize sets the framebuffer
// size in physical pixels and the scale between the two; text is
// rasterized at physical resolution.
//
// Thread Safety: Renderer is NOT thread-safe. Drive a frame from one
// goroutine.
type Renderer struct {
	backend gpu.Backend
	opts    options

	rects  *RectRenderer
	images *ImageRenderer
	text   TextRenderer

	width, height int
	dpi           float32
	logical       [16]float32
	physical      [16]float32

	frame  FrameStats
	last   FrameStats
	err    error
	closed bool
}

var _ quill.Drawer = (*Renderer)(nil)

// New compiles every program on b. Shader failures are returned as
// *gpu.ShaderCompileError. The backend stays owned by the caller.
func New(b gpu.Backend, opts ...Option) (*Renderer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.resolver == nil {
		o.resolver = text.NewResolver()
	}
	quill.PropagateLogger(b)

	r := &Renderer{backend: b, opts: o, dpi: 1}

	var err error
	if r.rects, err = NewRectRenderer(b); err != nil {
		return nil, fmt.Errorf("render: rect renderer: %w", err)
	}
	if r.images, err = NewImageRenderer(b); err != nil {
		r.rects.Destroy()
		return nil, fmt.Errorf("render: image renderer: %w", err)
	}
	if o.glyphCache {
		r.text, err = NewCachedTextRenderer(b, o.resolver, o.boldPasses, o.shear, o.maxPageSize)
	} else {
		r.text, err = NewDirectTextRenderer(b, o.resolver, o.boldPasses, o.shear)
	}
	if err != nil {
		r.rects.Destroy()
		r.images.Destroy()
		return nil, fmt.Errorf("render: text renderer: %w", err)
	}
	quill.Logger().Info("render: renderer created", "glyph_cache", o.glyphCache)
	return r, nil
}

// Resolver returns the font resolver used for Text blueprints.
func (r *Renderer) Resolver() *text.Resolver { return r.opts.resolver }

// TextRenderer returns the active text renderer.
func (r *Renderer) TextRenderer() TextRenderer { return r.text }

// GlyphCache returns the glyph cache, or nil when the direct text renderer
// is in use.
func (r *Renderer) GlyphCache() *GlyphCache {
	if c, ok := r.text.(*CachedTextRenderer); ok {
		return c.Cache()
	}
	return nil
}

// Resize implements quill.Drawer. A dpi of zero or less is treated as 1.
func (r *Renderer) Resize(width, height int, dpi float32) {
	if dpi <= 0 {
		dpi = 1
	}
	r.width, r.height, r.dpi = width, height, dpi
	r.physical = orthographic(float32(width), float32(height))
	r.logical = orthographic(float32(width)/dpi, float32(height)/dpi)
	r.backend.Viewport(width, height)
}

// BeginFrame implements quill.Drawer.
func (r *Renderer) BeginFrame() {
	r.frame = FrameStats{}
	r.err = nil
	r.backend.BeginFrame()
	r.text.BeginFrame()
}

// EndFrame implements quill.Drawer. It submits the frame and returns the
// first draw error of the frame, if any.
func (r *Renderer) EndFrame() error {
	err := r.backend.EndFrame()
	r.text.EndFrame()
	r.last = r.frame
	quill.Logger().Debug("render: frame",
		"rects", r.frame.Rects, "texts", r.frame.Texts,
		"images", r.frame.Images, "errors", r.frame.Errors)
	if r.err != nil {
		return r.err
	}
	return err
}

// LastFrame returns the statistics of the last completed frame.
func (r *Renderer) LastFrame() FrameStats { return r.last }

// Clear implements quill.Drawer.
func (r *Renderer) Clear() {
	c := r.opts.clearColor.RGBA(1)
	r.backend.Clear(c[0], c[1], c[2], c[3])
}

// DrawRect implements quill.Drawer.
func (r *Renderer) DrawRect(rb *quill.RectBlueprint) {
	r.frame.Rects++
	r.rects.Draw(&r.logical, rb)
}

// DrawText implements quill.Drawer.
func (r *Renderer) DrawText(tb *quill.TextBlueprint) {
	r.frame.Texts++
	r.fail(r.text.Draw(&r.physical, r.dpi, tb))
}

// DrawImage implements quill.Drawer.
func (r *Renderer) DrawImage(rect quill.Rect, img *quill.ImageSource) {
	r.frame.Images++
	r.fail(r.images.Draw(&r.logical, rect, img))
}

func (r *Renderer) fail(err error) {
	if err == nil {
		return
	}
	r.frame.Errors++
	if r.err == nil {
		r.err = err
	}
	quill.Logger().Warn("render: draw failed", "err", err)
}

// Close implements quill.Drawer. Calls after the first do nothing.
func (r *Renderer) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.text.Destroy()
	r.images.Destroy()
	r.rects.Destroy()
}
