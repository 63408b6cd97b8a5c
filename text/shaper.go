package text

import (
	"sync"
	"unicode"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// shaperPool pools HarfBuzz shapers. A shaper keeps scratch buffers and is
// not safe for concurrent use, but reusing one across calls is cheap.
var shaperPool = sync.Pool{
	New: func() any { return &shaping.HarfbuzzShaper{} },
}

var english = language.NewLanguage("en")

// shapedGlyph is one glyph of a shaped run, in pixels. Offsets follow the
// font convention: y grows upwards.
type shapedGlyph struct {
	id      GlyphID
	cluster int // rune index of the first character of the cluster
	xOffset float32
	yOffset float32
	advance float32
}

// shape runs HarfBuzz over s at size pixels, left to right.
func (f *Font) shape(s string, size float32) []shapedGlyph {
	if s == "" || size <= 0 {
		return nil
	}
	runes := []rune(s)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      f.face,
		Size:      toFixed(size),
		Script:    detectScript(runes),
		Language:  english,
	}

	hb := shaperPool.Get().(*shaping.HarfbuzzShaper)
	f.mu.Lock()
	out := hb.Shape(input)
	f.mu.Unlock()
	shaperPool.Put(hb)

	glyphs := make([]shapedGlyph, len(out.Glyphs))
	for i, g := range out.Glyphs {
		glyphs[i] = shapedGlyph{
			id:      GlyphID(g.GlyphID),
			cluster: g.ClusterIndex,
			xOffset: fromFixed(g.XOffset),
			yOffset: fromFixed(g.YOffset),
			advance: fromFixed(g.XAdvance),
		}
	}
	return glyphs
}

// detectScript returns the script of the first rune that belongs to a
// specific script. Text made only of common characters (digits,
// punctuation, symbols) is shaped as Latin.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if unicode.Is(unicode.Common, r) || unicode.Is(unicode.Inherited, r) {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func toFixed(v float32) fixed.Int26_6 {
	return fixed.Int26_6(v*64 + 0.5)
}

func fromFixed(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
