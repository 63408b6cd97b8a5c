// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/quill"
	"github.com/gogpu/quill/gpu"
	"github.com/gogpu/quill/internal/pack"
	"github.com/gogpu/quill/text"
)

// ErrGlyphTooLarge is returned when the glyphs of one frame do not fit the
// largest allowed cache page.
var ErrGlyphTooLarge = errors.New("render: glyphs do not fit the maximum cache page")

// Glyph cache defaults.
const (
	// DefaultMaxPageSize bounds the side of a cache page.
	DefaultMaxPageSize = 8192

	glyphPadding = 1
)

// GlyphKey identifies a rasterized glyph in the cache.
type GlyphKey struct {
	Font     text.FontKey
	Glyph    text.GlyphID
	Size     int32 // 1/64 px
	Subpixel uint8
}

// KeyFor returns the cache key of a glyph image rendered from f at size.
func KeyFor(f *text.Font, size float32, img text.GlyphImage) GlyphKey {
	return GlyphKey{
		Font:     f.Key(),
		Glyph:    img.GlyphID,
		Size:     int32(size*64 + 0.5),
		Subpixel: img.Subpixel,
	}
}

// GlyphRequest asks the cache to hold a glyph.
type GlyphRequest struct {
	Key   GlyphKey
	Image text.GlyphImage
}

// Region is a glyph's rectangle inside its page, in pixels.
type Region struct {
	X, Y, W, H int
}

// UV returns the region's texture coordinates in a page of side dim.
func (r Region) UV(dim int) (u0, v0, u1, v1 float32) {
	d := float32(dim)
	return float32(r.X) / d, float32(r.Y) / d, float32(r.X+r.W) / d, float32(r.Y+r.H) / d
}

// PageStats describes one cache page.
type PageStats struct {
	Format     gpu.PixelFormat
	Dimension  int
	Generation int // increments whenever every placement is discarded
	Packed     int
	Grows      int
	// Utilization is the fraction of the page covered by glyphs.
	Utilization float64
}

// CacheStats describes both cache pages.
type CacheStats struct {
	Mask  PageStats
	Color PageStats
	// Used is the number of glyphs used in the current frame.
	Used int
}

type placement struct {
	region Region
	image  text.GlyphImage
}

// page is one square texture, D×D, that D starts at 1 and doubles.
type page struct {
	format     gpu.PixelFormat
	dim        int
	tex        gpu.Texture
	shelf      *pack.Shelf
	placed     map[GlyphKey]placement
	queue      []GlyphRequest
	queued     map[GlyphKey]struct{}
	generation int
	grows      int
}

func newPage(format gpu.PixelFormat) *page {
	return &page{
		format: format,
		dim:    1,
		shelf:  pack.NewShelf(1, glyphPadding),
		placed: make(map[GlyphKey]placement),
		queued: make(map[GlyphKey]struct{}),
	}
}

func (p *page) enqueue(req GlyphRequest) {
	if _, ok := p.placed[req.Key]; ok {
		return
	}
	if _, ok := p.queued[req.Key]; ok {
		return
	}
	p.queued[req.Key] = struct{}{}
	p.queue = append(p.queue, req)
}

// GlyphCache packs glyph bitmaps into two growable pages: an R8 page for
// masks and an RGBA page for colour glyphs.
//
// A page that overflows discards every placement, doubles its side and
// packs again every glyph used in the current frame together with the
// pending ones. A glyph returned by Lookup therefore always refers to the
// current page texture.
type GlyphCache struct {
	b       gpu.Backend
	maxSize int
	pages   [2]*page // indexed by text.Content
	used    map[GlyphKey]text.Content
}

// NewGlyphCache creates an empty cache. maxSize bounds the page side; zero
// selects DefaultMaxPageSize.
func NewGlyphCache(b gpu.Backend, maxSize int) *GlyphCache {
	if maxSize <= 0 {
		maxSize = DefaultMaxPageSize
	}
	return &GlyphCache{
		b:       b,
		maxSize: maxSize,
		pages:   [2]*page{text.Mask: newPage(gpu.R8), text.Color: newPage(gpu.RGBA8)},
		used:    make(map[GlyphKey]text.Content),
	}
}

// BeginFrame starts a new working set.
func (c *GlyphCache) BeginFrame() {
	clear(c.used)
}

// EndFrame closes the working set. Glyphs that were not used this frame
// stay packed until the next grow or Trim.
func (c *GlyphCache) EndFrame() {
	st := c.Stats()
	quill.Logger().Debug("render: glyph cache frame",
		"used", st.Used,
		"mask_dim", st.Mask.Dimension, "mask_packed", st.Mask.Packed,
		"mask_utilization", st.Mask.Utilization,
		"color_dim", st.Color.Dimension, "color_packed", st.Color.Packed,
		"color_utilization", st.Color.Utilization)
}

// EnsurePacked makes every requested glyph resident. Empty glyphs are
// ignored.
func (c *GlyphCache) EnsurePacked(reqs []GlyphRequest) error {
	var touched [2]bool
	for _, req := range reqs {
		if req.Image.Empty() {
			continue
		}
		content := req.Image.Content
		c.used[req.Key] = content
		c.pages[content].enqueue(req)
		touched[content] = true
	}
	for content, p := range c.pages {
		if !touched[content] && len(p.queue) == 0 {
			continue
		}
		if err := c.flush(p); err != nil {
			return err
		}
	}
	return nil
}

// flush packs and uploads the queue of p, growing the page until
// everything fits. When the page cannot grow any further the queue is
// shed and ErrGlyphTooLarge returned; the page stays usable.
func (c *GlyphCache) flush(p *page) error {
	if len(p.queue) == 0 {
		return nil
	}
	for {
		regions, ok := p.pack()
		if ok {
			return c.upload(p, regions)
		}
		if p.dim*2 > c.maxSize {
			err := fmt.Errorf("%w: %d glyphs, page %d", ErrGlyphTooLarge, len(p.queue), p.dim)
			c.shed(p)
			if ferr := c.flush(p); ferr != nil {
				quill.Logger().Warn("render: glyph cache repack", "err", ferr)
			}
			return err
		}
		c.grow(p, p.dim*2)
	}
}

// shed drops queued glyphs after an overflow at the maximum page size:
// those larger than a page when there are any, otherwise the whole queue.
// The page is then reset to its current size with the glyphs of the
// current frame queued again.
func (c *GlyphCache) shed(p *page) {
	keep := p.queue[:0]
	for _, req := range p.queue {
		pl := req.Image.Placement
		if pl.Width > c.maxSize || pl.Height > c.maxSize {
			delete(c.used, req.Key)
			continue
		}
		keep = append(keep, req)
	}
	if len(keep) == len(p.queue) {
		for _, req := range keep {
			delete(c.used, req.Key)
		}
		keep = keep[:0]
	}
	p.queue = keep
	c.reset(p, p.dim)
}

// pack places the queue, tallest first, on top of the existing placements.
func (p *page) pack() ([]Region, bool) {
	order := make([]int, len(p.queue))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return p.queue[b].Image.Placement.Height - p.queue[a].Image.Placement.Height
	})

	regions := make([]Region, len(p.queue))
	for _, i := range order {
		pl := p.queue[i].Image.Placement
		r, ok := p.shelf.Place(pl.Width, pl.Height)
		if !ok {
			return nil, false
		}
		regions[i] = Region(r)
	}
	return regions, true
}

func (c *GlyphCache) upload(p *page, regions []Region) error {
	if p.tex == 0 {
		tex, err := c.b.CreateTexture(p.dim, p.dim, p.format, gpu.Nearest, nil)
		if err != nil {
			return fmt.Errorf("render: create glyph page: %w", err)
		}
		p.tex = tex
	}
	for i, req := range p.queue {
		r := regions[i]
		if err := c.b.UpdateTexture(p.tex, r.X, r.Y, r.W, r.H, req.Image.Data); err != nil {
			return fmt.Errorf("render: upload glyph %d: %w", req.Key.Glyph, err)
		}
		p.placed[req.Key] = placement{region: r, image: req.Image}
	}
	p.queue = p.queue[:0]
	clear(p.queued)
	return nil
}

// grow discards every placement of p, resizes it to dim and re-queues the
// glyphs of the current frame.
func (c *GlyphCache) grow(p *page, dim int) {
	quill.Logger().Debug("render: glyph cache page grows",
		"format", p.format, "from", p.dim, "to", dim)
	p.grows++
	c.reset(p, dim)
}

func (c *GlyphCache) reset(p *page, dim int) {
	keep := p.queue
	for key, pl := range p.placed {
		if _, ok := c.used[key]; ok {
			keep = append(keep, GlyphRequest{Key: key, Image: pl.image})
		}
	}

	if p.tex != 0 {
		c.b.DestroyTexture(p.tex)
		p.tex = 0
	}
	p.dim = dim
	p.generation++
	p.shelf.Reset(dim)
	clear(p.placed)
	clear(p.queued)
	p.queue = nil
	for _, req := range keep {
		p.enqueue(req)
	}
}

// Lookup returns the region of a resident glyph and the content of the page
// holding it.
func (c *GlyphCache) Lookup(key GlyphKey) (Region, text.Content, bool) {
	for content, p := range c.pages {
		if pl, ok := p.placed[key]; ok {
			return pl.region, text.Content(content), true
		}
	}
	return Region{}, 0, false
}

// Texture returns the texture of the page for content, zero before the
// first upload.
func (c *GlyphCache) Texture(content text.Content) gpu.Texture {
	return c.pages[content].tex
}

// Dimension returns the side of the page for content.
func (c *GlyphCache) Dimension(content text.Content) int {
	return c.pages[content].dim
}

// Trim drops every glyph not used in the current frame and shrinks each
// page to the smallest power of two that can hold the remaining glyphs,
// packing them again. Call Trim between frames.
func (c *GlyphCache) Trim() {
	for content, p := range c.pages {
		total, side := 0, 1
		count := 0
		for key, pl := range p.placed {
			if used, ok := c.used[key]; !ok || used != text.Content(content) {
				continue
			}
			w := pl.region.W + glyphPadding
			h := pl.region.H + glyphPadding
			total += w * h
			side = max(side, w, h)
			count++
		}
		for _, req := range p.queue {
			pl := req.Image.Placement
			w, h := pl.Width+glyphPadding, pl.Height+glyphPadding
			total += w * h
			side = max(side, w, h)
			count++
		}
		dim := pack.SideFor(total, side)
		if dim >= p.dim && count == len(p.placed)+len(p.queue) {
			continue
		}
		c.reset(p, dim)
		if err := c.flush(p); err != nil {
			quill.Logger().Warn("render: glyph cache trim", "err", err)
		}
	}
}

// Stats returns page statistics.
func (c *GlyphCache) Stats() CacheStats {
	stats := func(p *page) PageStats {
		return PageStats{
			Format:      p.format,
			Dimension:   p.dim,
			Generation:  p.generation,
			Packed:      len(p.placed),
			Grows:       p.grows,
			Utilization: p.shelf.Utilization(),
		}
	}
	return CacheStats{
		Mask:  stats(c.pages[text.Mask]),
		Color: stats(c.pages[text.Color]),
		Used:  len(c.used),
	}
}

// Destroy releases both page textures.
func (c *GlyphCache) Destroy() {
	for _, p := range c.pages {
		if p.tex != 0 {
			c.b.DestroyTexture(p.tex)
			p.tex = 0
		}
	}
}
