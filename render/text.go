// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/quill"
	"github.com/gogpu/quill/gpu"
	"github.com/gogpu/quill/text"
)

// Text renderer defaults.
const (
	DefaultBoldPasses  = 5
	DefaultItalicShear = 0.2
)

// TextRenderer is implemented by the direct and the cached text renderer.
type TextRenderer interface {
	BeginFrame()
	// Draw draws tb. mvp projects physical pixels; scale converts the
	// blueprint's logical units into physical pixels.
	Draw(mvp *[16]float32, scale float32, tb *quill.TextBlueprint) error
	EndFrame()
	Destroy()
}

// glyphRun is the rasterized glyphs of one segment.
type glyphRun struct {
	seg    text.Segment
	size   float32 // physical pixels
	images []text.GlyphImage
}

// textLayout is a blueprint laid out in physical pixels.
type textLayout struct {
	baseline float32
	runs     []glyphRun
}

// segmentsOf returns the source string and segments of tb. An uncomputed
// Text is computed with rs and the blueprint style; a plain string is one
// segment in the blueprint font.
func segmentsOf(tb *quill.TextBlueprint, rs *text.Resolver) (string, []text.Segment) {
	if tb.Text != nil {
		if !tb.Text.Computed() {
			tb.Text.Compute(tb.Size, tb.Style, rs)
		}
		segs, _ := tb.Text.Segments()
		return tb.Text.String(), segs
	}
	if tb.Font == nil || tb.String == "" {
		return tb.String, nil
	}
	return tb.String, []text.Segment{{Start: 0, End: len(tb.String), Font: tb.Font, Size: tb.Size}}
}

// layoutText shapes and rasterizes every segment. All segments share one
// baseline, one ascent below the blueprint's top edge, using the tallest
// ascent of the segment fonts. The pen moves between segments by the
// segment font's string width; inside a segment the shaper positions the
// glyphs.
func layoutText(tb *quill.TextBlueprint, rs *text.Resolver, scale float32) textLayout {
	src, segs := segmentsOf(tb, rs)
	if len(segs) == 0 {
		return textLayout{}
	}
	var ascent float32
	for _, seg := range segs {
		ascent = math32.Max(ascent, seg.Font.Baseline(seg.Size*scale))
	}
	l := textLayout{
		baseline: tb.Y*scale + ascent,
		runs:     make([]glyphRun, 0, len(segs)),
	}
	x := tb.X * scale
	for _, seg := range segs {
		s := seg.Text(src)
		size := seg.Size * scale
		l.runs = append(l.runs, glyphRun{
			seg:    seg,
			size:   size,
			images: seg.Font.Render(s, x, l.baseline, size),
		})
		x += seg.Font.StringWidth(s, size)
	}
	return l
}

// stamps returns the number of stamps per axis for a segment.
func stamps(seg text.Segment, passes int) int {
	if seg.ForceBold && passes > 1 {
		return passes
	}
	return 1
}

func shearFor(seg text.Segment, shear float32) float32 {
	if seg.ForceItalic {
		return shear
	}
	return 0
}

func formatFor(c text.Content) gpu.PixelFormat {
	if c == text.Color {
		return gpu.RGBA8
	}
	return gpu.R8
}

func flag(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

// DirectTextRenderer uploads every glyph into its own texture and draws it
// with one draw call per bold stamp. The textures live until the end of
// the frame.
type DirectTextRenderer struct {
	b        gpu.Backend
	resolver *text.Resolver
	passes   int
	shear    float32

	buf        gpu.Buffer
	program    gpu.Program
	vertex     gpu.AttribLocation
	texCoord   gpu.AttribLocation
	mvp        gpu.UniformLocation
	col        gpu.UniformLocation
	pos        gpu.UniformLocation
	size       gpu.UniformLocation
	shearLoc   gpu.UniformLocation
	baseline   gpu.UniformLocation
	colorGlyph gpu.UniformLocation

	transient []gpu.Texture
}

// NewDirectTextRenderer compiles the glyph program. passes is the number
// of bold stamps per axis and shear the synthetic italic slant.
func NewDirectTextRenderer(b gpu.Backend, rs *text.Resolver, passes int, shear float32) (*DirectTextRenderer, error) {
	l, err := compileProgram(b, textVertexSource, textFragmentSource)
	if err != nil {
		return nil, err
	}
	r := &DirectTextRenderer{
		b:          b,
		resolver:   rs,
		passes:     passes,
		shear:      shear,
		vertex:     l.attrib("vertex"),
		texCoord:   l.attrib("tex_coord"),
		mvp:        l.uniform("mvp"),
		col:        l.uniform("col"),
		pos:        l.uniform("pos"),
		size:       l.uniform("size"),
		shearLoc:   l.uniform("shear"),
		baseline:   l.uniform("baseline"),
		colorGlyph: l.uniform("color_glyph"),
	}
	if r.program, err = l.done(); err != nil {
		return nil, err
	}
	r.buf = b.NewBuffer(4)
	b.SetBufferData(r.buf, texQuad)
	return r, nil
}

// BeginFrame implements TextRenderer.
func (r *DirectTextRenderer) BeginFrame() {}

// Draw implements TextRenderer.
func (r *DirectTextRenderer) Draw(mvp *[16]float32, scale float32, tb *quill.TextBlueprint) error {
	l := layoutText(tb, r.resolver, scale)
	if len(l.runs) == 0 {
		return nil
	}

	r.b.UseProgram(r.program)
	r.b.BindBuffer(r.buf, r.vertex, 0, 2)
	r.b.BindBuffer(r.buf, r.texCoord, 2, 2)
	r.b.SetUniform(r.mvp, mvp[:]...)
	r.b.SetUniform(r.col, rgba(tb.Color, tb.Alpha)...)
	r.b.SetUniform(r.baseline, l.baseline)

	for _, run := range l.runs {
		n := stamps(run.seg, r.passes)
		r.b.SetUniform(r.shearLoc, shearFor(run.seg, r.shear))
		for _, img := range run.images {
			if img.Empty() {
				continue
			}
			pl := img.Placement
			tex, err := r.b.CreateTexture(pl.Width, pl.Height, formatFor(img.Content), gpu.Nearest, img.Data)
			if err != nil {
				return err
			}
			r.transient = append(r.transient, tex)
			r.b.BindTexture(tex)
			r.b.SetUniform(r.size, float32(pl.Width), float32(pl.Height))
			r.b.SetUniform(r.colorGlyph, flag(img.Content == text.Color))
			for ix := range n {
				for iy := range n {
					r.b.SetUniform(r.pos, img.X+float32(ix), img.Y+float32(iy))
					r.b.Draw(0, quadVertices)
				}
			}
		}
	}
	return nil
}

// EndFrame implements TextRenderer. It releases the glyph textures of the
// frame.
func (r *DirectTextRenderer) EndFrame() {
	for _, tex := range r.transient {
		r.b.DestroyTexture(tex)
	}
	r.transient = r.transient[:0]
}

// Destroy implements TextRenderer.
func (r *DirectTextRenderer) Destroy() {
	r.EndFrame()
	r.b.DestroyProgram(r.program)
	r.b.DestroyBuffer(r.buf)
}

// CachedTextRenderer packs glyphs into a GlyphCache and draws every cache
// page with a single draw call. Shear and bold stamps are baked into the
// vertices.
type CachedTextRenderer struct {
	b        gpu.Backend
	resolver *text.Resolver
	passes   int
	shear    float32
	cache    *GlyphCache

	buf        gpu.Buffer
	program    gpu.Program
	position   gpu.AttribLocation
	texCoord   gpu.AttribLocation
	mvp        gpu.UniformLocation
	col        gpu.UniformLocation
	colorGlyph gpu.UniformLocation

	reqs     []GlyphRequest
	vertices [2][]float32
}

// NewCachedTextRenderer compiles the batch program and creates an empty
// glyph cache whose pages are at most maxPage pixels wide.
func NewCachedTextRenderer(b gpu.Backend, rs *text.Resolver, passes int, shear float32, maxPage int) (*CachedTextRenderer, error) {
	l, err := compileProgram(b, batchVertexSource, batchFragmentSource)
	if err != nil {
		return nil, err
	}
	r := &CachedTextRenderer{
		b:          b,
		resolver:   rs,
		passes:     passes,
		shear:      shear,
		cache:      NewGlyphCache(b, maxPage),
		position:   l.attrib("position"),
		texCoord:   l.attrib("tex_coord"),
		mvp:        l.uniform("mvp"),
		col:        l.uniform("col"),
		colorGlyph: l.uniform("color_glyph"),
	}
	if r.program, err = l.done(); err != nil {
		return nil, err
	}
	r.buf = b.NewBuffer(4)
	return r, nil
}

// Cache returns the glyph cache.
func (r *CachedTextRenderer) Cache() *GlyphCache { return r.cache }

// BeginFrame implements TextRenderer.
func (r *CachedTextRenderer) BeginFrame() {
	r.cache.BeginFrame()
}

// Draw implements TextRenderer.
func (r *CachedTextRenderer) Draw(mvp *[16]float32, scale float32, tb *quill.TextBlueprint) error {
	l := layoutText(tb, r.resolver, scale)
	if len(l.runs) == 0 {
		return nil
	}

	r.reqs = r.reqs[:0]
	for _, run := range l.runs {
		for _, img := range run.images {
			if !img.Empty() {
				r.reqs = append(r.reqs, GlyphRequest{Key: KeyFor(run.seg.Font, run.size, img), Image: img})
			}
		}
	}
	if err := r.cache.EnsurePacked(r.reqs); err != nil {
		return err
	}

	r.vertices[text.Mask] = r.vertices[text.Mask][:0]
	r.vertices[text.Color] = r.vertices[text.Color][:0]
	for _, run := range l.runs {
		n := stamps(run.seg, r.passes)
		shear := shearFor(run.seg, r.shear)
		for _, img := range run.images {
			if img.Empty() {
				continue
			}
			region, content, ok := r.cache.Lookup(KeyFor(run.seg.Font, run.size, img))
			if !ok {
				continue
			}
			u0, v0, u1, v1 := region.UV(r.cache.Dimension(content))
			w, h := float32(region.W), float32(region.H)
			for ix := range n {
				for iy := range n {
					x, y := img.X+float32(ix), img.Y+float32(iy)
					r.vertices[content] = appendQuad(r.vertices[content], x, y, w, h, shear, l.baseline, u0, v0, u1, v1)
				}
			}
		}
	}

	for content, verts := range r.vertices {
		if len(verts) == 0 {
			continue
		}
		r.b.SetBufferData(r.buf, verts)
		r.b.UseProgram(r.program)
		r.b.BindBuffer(r.buf, r.position, 0, 2)
		r.b.BindBuffer(r.buf, r.texCoord, 2, 2)
		r.b.BindTexture(r.cache.Texture(text.Content(content)))
		r.b.SetUniform(r.mvp, mvp[:]...)
		r.b.SetUniform(r.col, rgba(tb.Color, tb.Alpha)...)
		r.b.SetUniform(r.colorGlyph, flag(text.Content(content) == text.Color))
		r.b.Draw(0, len(verts)/4)
	}
	return nil
}

// appendQuad appends the two triangles of a glyph quad. Points are shifted
// right in proportion to their height above the baseline.
func appendQuad(dst []float32, x, y, w, h, shear, baseline, u0, v0, u1, v1 float32) []float32 {
	sx := func(px, py float32) float32 { return px + shear*(baseline-py) }
	x0, y0, x1, y1 := x, y, x+w, y+h
	return append(dst,
		sx(x0, y0), y0, u0, v0,
		sx(x1, y0), y0, u1, v0,
		sx(x1, y1), y1, u1, v1,
		sx(x0, y0), y0, u0, v0,
		sx(x1, y1), y1, u1, v1,
		sx(x0, y1), y1, u0, v1,
	)
}

// EndFrame implements TextRenderer.
func (r *CachedTextRenderer) EndFrame() {
	r.cache.EndFrame()
}

// Destroy implements TextRenderer.
func (r *CachedTextRenderer) Destroy() {
	r.cache.Destroy()
	r.b.DestroyProgram(r.program)
	r.b.DestroyBuffer(r.buf)
}
