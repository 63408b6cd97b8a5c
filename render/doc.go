// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render draws quill blueprints through a gpu.Backend.
//
// The package RECEIVES a backend from the host application, it does NOT
// create a GPU device itself. The same renderers run on the wgpu backend
// and on the in-memory recording backend.
//
// # Renderers
//
//   - RectRenderer: nine-slice rectangles with rounded corners and borders
//   - ImageRenderer: textured quads sampled with nearest filtering
//   - DirectTextRenderer: one texture and one draw per glyph
//   - CachedTextRenderer: glyphs packed into a growable GlyphCache, one
//     draw per cache page
//
// [Renderer] composes them and implements quill.Drawer.
//
// # Usage
//
//	r, err := render.New(backend, render.WithGlyphCache(true))
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	r.Resize(1280, 720, 1)
//	r.BeginFrame()
//	r.Clear()
//	r.DrawText(&quill.TextBlueprint{Text: text.NewText("Hello"), Size: 32})
//	err = r.EndFrame()
//
// # Synthetic styles
//
// Segments the font cannot style itself are styled synthetically: italics
// by shearing the glyph quad around the baseline, bold by stamping the
// glyph on an N×N grid of one pixel offsets.
//
// # Architecture
//
//	           quill.Drawer
//	                │
//	                ▼
//	         render.Renderer
//	      ┌─────────┼──────────┐
//	      │         │          │
//	      ▼         ▼          ▼
//	    Rect      Image      Text ──► text.Resolver / GlyphCache
//	      │         │          │
//	      └─────────┼──────────┘
//	                ▼
//	           gpu.Backend
//
// # Thread Safety
//
// Renderers are NOT thread-safe. Each renderer should be used from a single
// goroutine, or external synchronization must be used.
package render
