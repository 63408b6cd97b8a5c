// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogpu/quill/gpu"
	"github.com/gogpu/quill/recording"
	"github.com/gogpu/quill/text"
)

func glyph(id, w, h int, content text.Content) GlyphRequest {
	data := make([]byte, w*h*content.BytesPerPixel())
	for i := range data {
		data[i] = byte(id + i)
	}
	return GlyphRequest{
		Key: GlyphKey{Glyph: text.GlyphID(id), Size: 16 * 64},
		Image: text.GlyphImage{
			GlyphID:   text.GlyphID(id),
			Placement: text.Placement{Width: w, Height: h},
			Content:   content,
			Data:      data,
		},
	}
}

func isPow2(n int) bool { return n > 0 && n&(n-1) == 0 }

func TestGlyphCacheStartsAtOne(t *testing.T) {
	c := NewGlyphCache(recording.New(), 0)
	st := c.Stats()
	if st.Mask.Dimension != 1 || st.Color.Dimension != 1 {
		t.Errorf("initial dimensions = %d, %d, want 1", st.Mask.Dimension, st.Color.Dimension)
	}
	if c.Texture(text.Mask) != 0 {
		t.Error("texture created before the first glyph")
	}
}

func TestGlyphCacheGrowsByDoubling(t *testing.T) {
	b := recording.New()
	c := NewGlyphCache(b, 0)
	c.BeginFrame()

	req := glyph(1, 10, 10, text.Mask)
	if err := c.EnsurePacked([]GlyphRequest{req}); err != nil {
		t.Fatal(err)
	}
	st := c.Stats().Mask
	if st.Dimension != 16 || st.Grows != 4 || st.Generation != 4 || st.Packed != 1 {
		t.Errorf("stats = %+v, want 16 after 4 grows", st)
	}
	if want := 100.0 / 256; st.Utilization != want {
		t.Errorf("utilization = %v, want %v", st.Utilization, want)
	}
	if n := b.Count(recording.CmdCreateTexture); n != 1 {
		t.Errorf("created %d textures, want 1", n)
	}

	ts, ok := b.Texture(c.Texture(text.Mask))
	if !ok || ts.Width != 16 || ts.Format != gpu.R8 {
		t.Fatalf("page texture = %+v", ts)
	}
	region, content, ok := c.Lookup(req.Key)
	if !ok || content != text.Mask {
		t.Fatalf("Lookup = %v, %v, %v", region, content, ok)
	}
	for y := range region.H {
		for x := range region.W {
			want := req.Image.Data[y*region.W+x]
			if got := ts.At(region.X+x, region.Y+y)[0]; got != want {
				t.Fatalf("pixel (%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestGlyphCacheMonotonicGrowth(t *testing.T) {
	b := recording.New()
	c := NewGlyphCache(b, 0)
	c.BeginFrame()

	var used []GlyphKey
	prev := c.Dimension(text.Mask)
	for i := range 40 {
		req := glyph(i+1, 3+i%7, 5+i%11, text.Mask)
		used = append(used, req.Key)
		if err := c.EnsurePacked([]GlyphRequest{req}); err != nil {
			t.Fatal(err)
		}
		dim := c.Dimension(text.Mask)
		if dim < prev || !isPow2(dim) {
			t.Fatalf("dimension went %d -> %d", prev, dim)
		}
		prev = dim

		for _, key := range used {
			r, _, ok := c.Lookup(key)
			if !ok {
				t.Fatalf("glyph %d not resident after call %d", key.Glyph, i)
			}
			if r.X < 0 || r.Y < 0 || r.X+r.W > dim || r.Y+r.H > dim {
				t.Fatalf("glyph %d region %+v outside %d page", key.Glyph, r, dim)
			}
		}
	}
	if live := b.LiveTextures(); len(live) != 1 || live[0] != c.Texture(text.Mask) {
		t.Errorf("live textures = %v, want only the current page", live)
	}
}

func TestGlyphCacheGrowKeepsFrameGlyphsOnly(t *testing.T) {
	c := NewGlyphCache(recording.New(), 0)

	old := glyph(1, 4, 4, text.Mask)
	c.BeginFrame()
	if err := c.EnsurePacked([]GlyphRequest{old}); err != nil {
		t.Fatal(err)
	}
	c.EndFrame()

	c.BeginFrame()
	kept := glyph(2, 4, 4, text.Mask)
	if err := c.EnsurePacked([]GlyphRequest{kept}); err != nil {
		t.Fatal(err)
	}
	gen := c.Stats().Mask.Generation
	if err := c.EnsurePacked([]GlyphRequest{glyph(3, 30, 30, text.Mask)}); err != nil {
		t.Fatal(err)
	}
	if c.Stats().Mask.Generation == gen {
		t.Fatal("large glyph did not grow the page")
	}
	if _, _, ok := c.Lookup(kept.Key); !ok {
		t.Error("glyph used this frame was dropped by the grow")
	}
	if _, _, ok := c.Lookup(old.Key); ok {
		t.Error("glyph from an earlier frame survived the grow")
	}
}

func TestGlyphCachePages(t *testing.T) {
	b := recording.New()
	c := NewGlyphCache(b, 0)
	c.BeginFrame()

	color := glyph(7, 2, 2, text.Color)
	empty := glyph(8, 0, 0, text.Mask)
	if err := c.EnsurePacked([]GlyphRequest{color, empty}); err != nil {
		t.Fatal(err)
	}
	if _, content, ok := c.Lookup(color.Key); !ok || content != text.Color {
		t.Errorf("colour glyph lookup = %v, %v", content, ok)
	}
	if _, _, ok := c.Lookup(empty.Key); ok {
		t.Error("empty glyph was packed")
	}
	st := c.Stats()
	if st.Mask.Dimension != 1 || c.Texture(text.Mask) != 0 {
		t.Errorf("mask page touched: %+v", st.Mask)
	}
	ts, _ := b.Texture(c.Texture(text.Color))
	if ts.Format != gpu.RGBA8 {
		t.Errorf("colour page format = %v", ts.Format)
	}
	r, _, _ := c.Lookup(color.Key)
	if got := ts.At(r.X, r.Y); !bytes.Equal(got, color.Image.Data[:4]) {
		t.Errorf("colour pixel = %v, want %v", got, color.Image.Data[:4])
	}
}

func TestGlyphCacheTooLarge(t *testing.T) {
	c := NewGlyphCache(recording.New(), 8)
	c.BeginFrame()
	err := c.EnsurePacked([]GlyphRequest{glyph(1, 10, 10, text.Mask)})
	if !errors.Is(err, ErrGlyphTooLarge) {
		t.Errorf("err = %v, want ErrGlyphTooLarge", err)
	}
}

func TestGlyphCacheUsableAfterTooLarge(t *testing.T) {
	b := recording.New()
	c := NewGlyphCache(b, 32)

	small := glyph(1, 4, 4, text.Mask)
	c.BeginFrame()
	if err := c.EnsurePacked([]GlyphRequest{small}); err != nil {
		t.Fatal(err)
	}
	c.EndFrame()

	c.BeginFrame()
	err := c.EnsurePacked([]GlyphRequest{small, glyph(2, 64, 64, text.Mask)})
	if !errors.Is(err, ErrGlyphTooLarge) {
		t.Fatalf("err = %v, want ErrGlyphTooLarge", err)
	}
	if _, _, ok := c.Lookup(small.Key); !ok {
		t.Error("glyph of the current frame lost after overflow")
	}
	c.EndFrame()

	c.BeginFrame()
	next := glyph(3, 4, 4, text.Mask)
	if err := c.EnsurePacked([]GlyphRequest{next}); err != nil {
		t.Fatalf("cache still failing after overflow: %v", err)
	}
	if _, _, ok := c.Lookup(next.Key); !ok {
		t.Error("glyph packed after overflow is not resident")
	}
	c.EndFrame()
	if live := b.LiveTextures(); len(live) != 1 {
		t.Errorf("live textures = %v, want one page", live)
	}
}

func TestGlyphCacheShedsQueueThatCannotFit(t *testing.T) {
	c := NewGlyphCache(recording.New(), 16)
	c.BeginFrame()

	// Each glyph fits a 16px page on its own, but not together.
	var reqs []GlyphRequest
	for i := range 4 {
		reqs = append(reqs, glyph(i+1, 12, 12, text.Mask))
	}
	if err := c.EnsurePacked(reqs); !errors.Is(err, ErrGlyphTooLarge) {
		t.Fatalf("err = %v, want ErrGlyphTooLarge", err)
	}
	if st := c.Stats(); st.Mask.Packed != 0 || st.Used != 0 {
		t.Errorf("stats after shedding = %+v", st)
	}
	if err := c.EnsurePacked(reqs[:1]); err != nil {
		t.Errorf("single glyph after shedding: %v", err)
	}
}

func TestGlyphCacheTrim(t *testing.T) {
	b := recording.New()
	c := NewGlyphCache(b, 0)

	c.BeginFrame()
	var reqs []GlyphRequest
	for i := range 30 {
		reqs = append(reqs, glyph(i+1, 12, 12, text.Mask))
	}
	if err := c.EnsurePacked(reqs); err != nil {
		t.Fatal(err)
	}
	c.EndFrame()
	big := c.Dimension(text.Mask)

	c.BeginFrame()
	small := reqs[0]
	if err := c.EnsurePacked([]GlyphRequest{small}); err != nil {
		t.Fatal(err)
	}
	c.EndFrame()
	c.Trim()

	if dim := c.Dimension(text.Mask); dim >= big || dim != 16 {
		t.Errorf("dimension after trim = %d (was %d), want 16", dim, big)
	}
	if _, _, ok := c.Lookup(small.Key); !ok {
		t.Error("used glyph dropped by Trim")
	}
	if _, _, ok := c.Lookup(reqs[1].Key); ok {
		t.Error("unused glyph kept by Trim")
	}
	if live := b.LiveTextures(); len(live) != 1 {
		t.Errorf("live textures after trim = %v", live)
	}
}

func TestRegionUV(t *testing.T) {
	u0, v0, u1, v1 := Region{X: 4, Y: 8, W: 4, H: 8}.UV(16)
	if u0 != 0.25 || v0 != 0.5 || u1 != 0.5 || v1 != 1 {
		t.Errorf("UV = %v %v %v %v", u0, v0, u1, v1)
	}
}
