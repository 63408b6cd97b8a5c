package text

import (
	"fmt"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/gogpu/quill/text/emoji"
)

// Style is the requested style of a string.
type Style struct {
	Slant Slant
	Bold  bool
	// ItalicEmoji and BoldEmoji decide whether emoji and other symbols
	// whose glyphs cannot be restyled are synthetically slanted or
	// emboldened when the text is.
	ItalicEmoji bool
	BoldEmoji   bool
	Family      Family
	Preferred   string
}

func (st Style) query(prev *Font) Query {
	return Query{
		Slant:     st.Slant,
		Bold:      st.Bold,
		Family:    st.Family,
		Preferred: st.Preferred,
		Previous:  prev,
	}
}

// Segment is a span [Start, End) of a source string drawn with one font at
// one size and with the same synthetic styling.
type Segment struct {
	Start, End  int
	Font        *Font
	Size        float32
	ForceItalic bool
	ForceBold   bool
}

// Text returns the part of src the segment covers.
func (s Segment) Text(src string) string {
	return src[s.Start:s.End]
}

// Len returns the span length in bytes.
func (s Segment) Len() int {
	return s.End - s.Start
}

// CanCombine reports whether next continues s: same font, size and flags,
// and next starts where s ends.
func (s Segment) CanCombine(next Segment) bool {
	return s.Font.Equal(next.Font) &&
		s.Size == next.Size &&
		s.ForceItalic == next.ForceItalic &&
		s.ForceBold == next.ForceBold &&
		s.End == next.Start
}

// Combine extends s over next. It panics if the spans are not contiguous.
func (s *Segment) Combine(next Segment) {
	if s.End != next.Start {
		panic(fmt.Sprintf("text: combining non-contiguous segments [%d,%d) and [%d,%d)",
			s.Start, s.End, next.Start, next.End))
	}
	s.End = next.End
}

// Segment splits s into maximal runs of grapheme clusters that share font,
// size and synthetic style. Concatenating the runs' texts yields s.
func (rs *Resolver) Segment(s string, size float32, style Style) []Segment {
	var (
		segs []Segment
		prev *Font
	)
	state := -1
	rest := s
	offset := 0
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		start := offset
		offset += len(cluster)

		seg := rs.segmentFor(cluster, start, offset, size, style, prev)
		prev = seg.Font
		if n := len(segs); n > 0 && segs[n-1].CanCombine(seg) {
			segs[n-1].Combine(seg)
			continue
		}
		segs = append(segs, seg)
	}
	return segs
}

func (rs *Resolver) segmentFor(cluster string, start, end int, size float32, style Style, prev *Font) Segment {
	r, _ := utf8.DecodeRuneInString(cluster)
	q := style.query(prev)
	f := rs.Resolve(r, q)

	seg := Segment{Start: start, End: end, Font: f, Size: size}
	if rs.NonModifiable(cluster, q) {
		seg.ForceItalic = style.Slant.Slanted() && style.ItalicEmoji
		seg.ForceBold = style.Bold && style.BoldEmoji
	} else {
		seg.ForceItalic = style.Slant.Slanted() && !f.IsItalic()
		seg.ForceBold = style.Bold && !f.IsBold()
	}
	return seg
}

// probeSize is the pixel size glyphs are compared at.
const probeSize = 16

// NonModifiable reports whether cluster is a symbol whose look does not
// change between upright and italic faces, such as an emoji. Emoji
// sequences and emoji-presentation characters are non-modifiable outright.
// Other clusters are resolved upright and italic: when that yields two
// different fonts that rasterize the cluster to the same bitmap (within 1%
// of its ink), the italic face only repeats the upright symbol. When both
// resolve to the same font the family simply lacks an italic face and the
// cluster can be slanted like any letter. Blank glyphs are modifiable.
func (rs *Resolver) NonModifiable(cluster string, q Query) bool {
	if cluster == "" {
		return false
	}
	if emoji.Classify(cluster).IsEmoji() {
		return true
	}
	key := nonModKey{cluster: cluster, bold: q.Bold, family: q.Family, preferred: q.Preferred}
	return rs.nonMod.GetOrCreate(key, func() bool {
		r, _ := utf8.DecodeRuneInString(cluster)
		base := Query{Bold: q.Bold, Family: q.Family, Preferred: q.Preferred}
		upright := rs.Resolve(r, base)
		base.Slant = SlantItalic
		italic := rs.Resolve(r, base)
		if upright.Equal(italic) {
			return false
		}
		return sameGlyph(upright, italic, r)
	})
}

// sameGlyph compares the bitmaps of r in two fonts.
func sameGlyph(a, b *Font, r rune) bool {
	ga := a.Glyph(a.GlyphIndex(r), probeSize)
	gb := b.Glyph(b.GlyphIndex(r), probeSize)
	if ga.Empty() || gb.Empty() || ga.Content != gb.Content || ga.Placement != gb.Placement {
		return false
	}
	var diff uint64
	for i := range ga.Data {
		d := int(ga.Data[i]) - int(gb.Data[i])
		if d < 0 {
			d = -d
		}
		diff += uint64(d)
	}
	return diff*100 <= ga.Coverage()
}
