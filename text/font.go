package text

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"os"
	"sync"

	"github.com/go-text/typesetting/font"
)

// FontKey is a comparable identity of a font's content: two fonts with the
// same key are Equal with overwhelming probability. Use it for map keys.
type FontKey struct {
	Digest uint64
	Len    int
	Index  int
}

// Font is a parsed font face together with its file bytes.
//
// A Font either borrows bytes owned by the caller ([FromData]) or owns them
// ([FromOwnedBytes], [LoadFile]). Either way the parsed face references the
// bytes for the Font's whole lifetime. Fonts are immutable and safe for
// concurrent use.
type Font struct {
	data  []byte
	index int
	owned bool
	path  string

	// mu guards face: go-text faces cache per-glyph state internally.
	mu   sync.Mutex
	face *font.Face

	desc     font.Description
	key      FontKey
	upem     float32
	ascent   float32 // font units, positive up
	descent  float32 // font units, negative below the baseline
	lineGap  float32
	coverage *coverageMemo
}

// FromData parses the face at index from data. The font borrows data: the
// caller must keep it unmodified for as long as the Font is used.
func FromData(data []byte, index int) (*Font, error) {
	return newFont(data, index, false)
}

// FromOwnedBytes parses the face at index from data and takes ownership of
// the slice. The caller must not use data afterwards.
func FromOwnedBytes(data []byte, index int) (*Font, error) {
	return newFont(data, index, true)
}

// LoadFile reads a font file and parses the face at index. Collections
// (.ttc) hold several faces; plain font files accept only index 0.
func LoadFile(path string, index int) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FontLoadError{Path: path, Index: index, Err: err}
	}
	f, err := newFont(data, index, true)
	if err != nil {
		if le, ok := err.(*FontLoadError); ok {
			le.Path = path
		}
		return nil, err
	}
	f.path = path
	return f, nil
}

func newFont(data []byte, index int, owned bool) (*Font, error) {
	if len(data) == 0 {
		return nil, &FontLoadError{Index: index, Err: ErrEmptyFontData}
	}
	faces, err := font.ParseTTC(bytes.NewReader(data))
	if err != nil {
		return nil, &FontLoadError{Index: index, Err: err}
	}
	if index < 0 || index >= len(faces) {
		return nil, &FontLoadError{Index: index, Err: fmt.Errorf("%w: %d of %d", ErrFaceIndex, index, len(faces))}
	}

	face := faces[index]
	f := &Font{
		data:     data,
		index:    index,
		owned:    owned,
		face:     face,
		desc:     face.Describe(),
		key:      FontKey{Digest: digest(data), Len: len(data), Index: index},
		upem:     float32(face.Upem()),
		coverage: newCoverageMemo(),
	}
	if f.upem <= 0 {
		f.upem = 1000
	}
	if ext, ok := face.FontHExtents(); ok {
		f.ascent, f.descent, f.lineGap = ext.Ascender, ext.Descender, ext.LineGap
	} else {
		f.ascent, f.descent = 0.8*f.upem, -0.2*f.upem
	}
	return f, nil
}

func digest(data []byte) uint64 {
	h := fnv.New64a()
	h.Write(data)
	return h.Sum64()
}

// Key returns the content identity of f.
func (f *Font) Key() FontKey { return f.key }

// Index returns the face index inside the font file.
func (f *Font) Index() int { return f.index }

// Owned reports whether f owns its bytes.
func (f *Font) Owned() bool { return f.owned }

// Path returns the file the font was loaded from, or "".
func (f *Font) Path() string { return f.path }

// Family returns the family name from the font's name table.
func (f *Font) Family() string { return f.desc.Family }

// IsBold reports whether the face is a bold (weight 600 or more) design.
func (f *Font) IsBold() bool { return float32(f.desc.Aspect.Weight) >= boldThreshold }

// IsItalic reports whether the face is an italic or oblique design.
func (f *Font) IsItalic() bool { return f.desc.Aspect.Style == font.StyleItalic }

// Equal reports whether f and other are the same face of byte-identical
// font data. Fonts loaded separately from the same file are Equal.
func (f *Font) Equal(other *Font) bool {
	if f == other {
		return true
	}
	if f == nil || other == nil || f.key != other.key {
		return false
	}
	return bytes.Equal(f.data, other.data)
}

func (f *Font) String() string {
	return fmt.Sprintf("%s#%d(%016x)", f.desc.Family, f.index, f.key.Digest)
}

// GlyphIndex returns the glyph mapped to r by the character map, or 0.
func (f *Font) GlyphIndex(r rune) GlyphID {
	gid, ok := f.face.NominalGlyph(r)
	if !ok {
		return 0
	}
	return GlyphID(gid)
}

// Has reports whether the character map maps r to a real glyph.
func (f *Font) Has(r rune) bool {
	if present, checked := f.coverage.get(r); checked {
		return present
	}
	present := f.GlyphIndex(r) != 0
	f.coverage.set(r, present)
	return present
}

func (f *Font) scale(size float32) float32 {
	return size / f.upem
}

// AdvanceWidth returns the horizontal advance of r at size pixels. Missing
// characters use the advance of .notdef.
func (f *Font) AdvanceWidth(r rune, size float32) float32 {
	gid := font.GID(f.GlyphIndex(r))
	f.mu.Lock()
	adv := f.face.HorizontalAdvance(gid)
	f.mu.Unlock()
	return adv * f.scale(size)
}

// StringWidth sums the advances of the runes of s. It applies no kerning
// or shaping, so it is an estimate: Render positions glyphs with the
// shaper's advances.
func (f *Font) StringWidth(s string, size float32) float32 {
	sc := f.scale(size)
	var w float32
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range s {
		gid, _ := f.face.NominalGlyph(r)
		w += f.face.HorizontalAdvance(gid) * sc
	}
	return w
}

// Baseline returns the distance from the top of a line box to the
// baseline: the ascender at size pixels.
func (f *Font) Baseline(size float32) float32 {
	return f.ascent * f.scale(size)
}

// LineHeight returns ascender - descender + line gap at size pixels.
func (f *Font) LineHeight(size float32) float32 {
	return (f.ascent - f.descent + f.lineGap) * f.scale(size)
}
