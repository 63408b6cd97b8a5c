package text

import (
	"bytes"
	"image"
	_ "image/jpeg" // bitmap strikes
	_ "image/png"  // bitmap strikes

	"github.com/chewxy/math32"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/font/opentype"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // bitmap strikes
	"golang.org/x/image/vector"

	"github.com/gogpu/quill/cache"
)

// SubpixelBuckets is the number of horizontal sub-pixel positions a glyph
// is rasterized at.
const SubpixelBuckets = 4

// rasterKey identifies a rasterized glyph. Fonts with equal content share
// entries.
type rasterKey struct {
	font   FontKey
	gid    GlyphID
	size   int32 // 1/64 px
	bucket uint8
}

var rasterCache = cache.New[rasterKey, GlyphImage](512, nil)

// SubpixelBucket quantizes the fractional part of x to one of
// SubpixelBuckets positions.
func SubpixelBucket(x float32) uint8 {
	frac := x - math32.Floor(x)
	b := int(frac * SubpixelBuckets)
	if b >= SubpixelBuckets {
		b = SubpixelBuckets - 1
	}
	return uint8(b)
}

// Render shapes s and rasterizes every glyph. The pen starts at x with the
// baseline at y (y grows downwards) and advances by the shaper's advances.
// Glyphs that cannot be rasterized are replaced by .notdef.
func (f *Font) Render(s string, x, y, size float32) []GlyphImage {
	glyphs := f.shape(s, size)
	if len(glyphs) == 0 {
		return nil
	}
	out := make([]GlyphImage, 0, len(glyphs))
	pen := x
	for _, g := range glyphs {
		ox := pen + g.xOffset
		oy := y - g.yOffset
		ix := math32.Floor(ox)

		img := f.GlyphOffset(g.id, size, ox-ix)
		img.X = ix + float32(img.Placement.Left)
		img.Y = math32.Round(oy) - float32(img.Placement.Top)
		out = append(out, img)
		pen += g.advance
	}
	return out
}

// Glyph rasterizes glyph gid at size pixels with its origin on a pixel
// boundary. Results are memoized.
func (f *Font) Glyph(gid GlyphID, size float32) GlyphImage {
	return f.GlyphOffset(gid, size, 0)
}

// GlyphOffset rasterizes glyph gid with its origin shifted right by dx
// (quantized to 1/SubpixelBuckets of a pixel). Results are memoized.
func (f *Font) GlyphOffset(gid GlyphID, size, dx float32) GlyphImage {
	bucket := SubpixelBucket(dx)
	key := rasterKey{font: f.key, gid: gid, size: int32(size*64 + 0.5), bucket: bucket}
	return rasterCache.GetOrCreate(key, func() GlyphImage {
		shift := float32(bucket) / SubpixelBuckets
		img, ok := f.rasterize(gid, size, shift)
		if !ok && gid != 0 {
			logger().Debug("text: glyph not renderable, using notdef",
				"font", f.String(), "glyph", gid)
			img, _ = f.rasterize(0, size, shift)
		}
		img.Subpixel = bucket
		return img
	})
}

// rasterize draws one glyph. Colour bitmap strikes are preferred over
// outlines; SVG glyphs are drawn from their fallback outline. It reports
// false when the font has no drawable data for gid.
func (f *Font) rasterize(gid GlyphID, size, dx float32) (GlyphImage, bool) {
	if size <= 0 {
		return GlyphImage{GlyphID: gid}, true
	}
	ppem := uint16(math32.Ceil(size))

	f.mu.Lock()
	f.face.SetPpem(ppem, ppem)
	data := f.face.GlyphData(font.GID(gid))
	ext, hasExt := f.face.GlyphExtents(font.GID(gid))
	f.mu.Unlock()

	sc := f.scale(size)
	switch d := data.(type) {
	case font.GlyphOutline:
		return rasterOutline(gid, d, sc, dx), true
	case font.GlyphSVG:
		return rasterOutline(gid, d.Outline, sc, dx), true
	case font.GlyphBitmap:
		if hasExt {
			if img, ok := rasterBitmap(gid, d, ext, sc); ok {
				return img, true
			}
		}
		if d.Outline != nil {
			return rasterOutline(gid, *d.Outline, sc, dx), true
		}
	}
	return GlyphImage{GlyphID: gid}, false
}

// rasterOutline fills an outline given in font units into a coverage mask.
func rasterOutline(gid GlyphID, o font.GlyphOutline, sc, dx float32) GlyphImage {
	img := GlyphImage{GlyphID: gid, Content: Mask}
	if len(o.Segments) == 0 {
		return img
	}

	minX, minY := math32.Inf(1), math32.Inf(1)
	maxX, maxY := math32.Inf(-1), math32.Inf(-1)
	for i := range o.Segments {
		for _, p := range o.Segments[i].ArgsSlice() {
			x, y := p.X*sc+dx, -p.Y*sc
			minX, maxX = math32.Min(minX, x), math32.Max(maxX, x)
			minY, maxY = math32.Min(minY, y), math32.Max(maxY, y)
		}
	}
	left, top := int(math32.Floor(minX)), int(math32.Floor(minY))
	w, h := int(math32.Ceil(maxX))-left, int(math32.Ceil(maxY))-top
	if w <= 0 || h <= 0 {
		return img
	}

	ox, oy := dx-float32(left), -float32(top)
	pt := func(p opentype.SegmentPoint) (float32, float32) {
		return p.X*sc + ox, -p.Y*sc + oy
	}
	r := vector.NewRasterizer(w, h)
	open := false
	for _, s := range o.Segments {
		switch s.Op {
		case opentype.SegmentOpMoveTo:
			if open {
				r.ClosePath()
			}
			r.MoveTo(pt(s.Args[0]))
			open = true
		case opentype.SegmentOpLineTo:
			r.LineTo(pt(s.Args[0]))
		case opentype.SegmentOpQuadTo:
			bx, by := pt(s.Args[0])
			cx, cy := pt(s.Args[1])
			r.QuadTo(bx, by, cx, cy)
		case opentype.SegmentOpCubeTo:
			bx, by := pt(s.Args[0])
			cx, cy := pt(s.Args[1])
			ex, ey := pt(s.Args[2])
			r.CubeTo(bx, by, cx, cy, ex, ey)
		}
	}
	if open {
		r.ClosePath()
	}

	dst := image.NewAlpha(image.Rect(0, 0, w, h))
	r.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})

	img.Placement = Placement{Left: left, Top: -top, Width: w, Height: h}
	img.Data = dst.Pix
	return img
}

// rasterBitmap scales a bitmap strike to the glyph's extents at the
// requested size. Encoded strikes become colour images; 1-bit strikes
// become masks.
func rasterBitmap(gid GlyphID, b font.GlyphBitmap, ext font.GlyphExtents, sc float32) (GlyphImage, bool) {
	left := int(math32.Round(ext.XBearing * sc))
	top := int(math32.Round(ext.YBearing * sc))
	w := int(math32.Round(ext.Width * sc))
	h := int(math32.Round(-ext.Height * sc))
	if w <= 0 || h <= 0 {
		return GlyphImage{}, false
	}
	place := Placement{Left: left, Top: top, Width: w, Height: h}

	switch b.Format {
	case font.PNG, font.JPG, font.TIFF:
		src, _, err := image.Decode(bytes.NewReader(b.Data))
		if err != nil {
			logger().Debug("text: undecodable bitmap strike", "glyph", gid, "err", err)
			return GlyphImage{}, false
		}
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
		return GlyphImage{GlyphID: gid, Placement: place, Content: Color, Data: dst.Pix}, true

	case font.BlackAndWhite:
		if b.Width <= 0 || b.Height <= 0 || len(b.Data)*8 < b.Width*b.Height {
			return GlyphImage{}, false
		}
		src := image.NewAlpha(image.Rect(0, 0, b.Width, b.Height))
		for i := range src.Pix {
			if b.Data[i/8]>>(7-uint(i%8))&1 != 0 {
				src.Pix[i] = 0xFF
			}
		}
		dst := image.NewAlpha(image.Rect(0, 0, w, h))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
		return GlyphImage{GlyphID: gid, Placement: place, Content: Mask, Data: dst.Pix}, true
	}
	return GlyphImage{}, false
}
