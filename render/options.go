// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/quill"
	"github.com/gogpu/quill/text"
)

// Option configures a Renderer during creation.
//
// Example:
//
//	r, err := render.New(backend,
//	    render.WithGlyphCache(false),
//	    render.WithBoldPasses(3))
type Option func(*options)

type options struct {
	glyphCache  bool
	boldPasses  int
	shear       float32
	resolver    *text.Resolver
	clearColor  quill.Color
	maxPageSize int
}

func defaultOptions() options {
	return options{
		glyphCache:  true,
		boldPasses:  DefaultBoldPasses,
		shear:       DefaultItalicShear,
		maxPageSize: DefaultMaxPageSize,
	}
}

// WithGlyphCache selects the cached text renderer (true, the default) or
// the direct one.
func WithGlyphCache(enabled bool) Option {
	return func(o *options) {
		o.glyphCache = enabled
	}
}

// WithBoldPasses sets the number of stamps per axis for synthetic bold.
// Values below 1 are treated as 1, which disables synthetic bold.
func WithBoldPasses(n int) Option {
	return func(o *options) {
		o.boldPasses = max(n, 1)
	}
}

// WithItalicShear sets the horizontal shear of synthetic italics, in
// pixels per pixel of height above the baseline.
func WithItalicShear(shear float32) Option {
	return func(o *options) {
		o.shear = shear
	}
}

// WithResolver sets the font resolver used to compute Text blueprints.
// By default a resolver over the system fonts is created.
func WithResolver(rs *text.Resolver) Option {
	return func(o *options) {
		o.resolver = rs
	}
}

// WithClearColor sets the colour used by Clear.
func WithClearColor(c quill.Color) Option {
	return func(o *options) {
		o.clearColor = c
	}
}

// WithMaxPageSize bounds the side of glyph cache pages.
func WithMaxPageSize(n int) Option {
	return func(o *options) {
		o.maxPageSize = n
	}
}
