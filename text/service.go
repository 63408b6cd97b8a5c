package text

import (
	"golang.org/x/text/cases"
)

// FaceQuery asks a FontService for a face.
type FaceQuery struct {
	// Families in order of preference. Generic names such as "serif" are
	// allowed. An empty list matches any family.
	Families []string
	Slant    Slant
	Weight   int
	// Rune is the character the caller needs. Services use it to choose
	// among candidates; the returned font may still lack it.
	Rune rune
}

// FontService finds installed fonts. Implementations must be safe for
// concurrent use.
type FontService interface {
	// Match returns the best font for q, or false when the service has
	// nothing to offer.
	Match(q FaceQuery) (*Font, bool)
}

// foldFamily normalizes a family name for comparison.
func foldFamily(name string) string {
	return cases.Fold().String(name)
}

// StaticFonts is a FontService over a fixed list of fonts. It is useful
// for applications that ship their own fonts and for tests.
//
// A font matches a family when its family name equals the query name
// ignoring case; the generic names match fonts registered for them with
// AddGeneric.
type StaticFonts struct {
	fonts    []*Font
	generics map[string][]*Font
}

// NewStaticFonts returns a service offering fonts.
func NewStaticFonts(fonts ...*Font) *StaticFonts {
	return &StaticFonts{fonts: fonts, generics: make(map[string][]*Font)}
}

// AddGeneric registers fonts as members of a generic family. They are also
// added to the service.
func (s *StaticFonts) AddGeneric(family Family, fonts ...*Font) {
	key := family.String()
	s.generics[key] = append(s.generics[key], fonts...)
	s.fonts = append(s.fonts, fonts...)
}

// Match implements FontService. Within a family the candidate that covers
// q.Rune with the closest style wins; families are tried in order.
func (s *StaticFonts) Match(q FaceQuery) (*Font, bool) {
	if len(q.Families) == 0 {
		return best(s.fonts, q)
	}
	for _, name := range q.Families {
		folded := foldFamily(name)
		var members []*Font
		if g, ok := s.generics[folded]; ok {
			members = g
		} else {
			for _, f := range s.fonts {
				if foldFamily(f.Family()) == folded {
					members = append(members, f)
				}
			}
		}
		if f, ok := best(members, q); ok {
			return f, true
		}
	}
	return nil, false
}

// best picks the candidate with the lowest style distance, preferring
// fonts that have q.Rune.
func best(fonts []*Font, q FaceQuery) (*Font, bool) {
	var (
		pick  *Font
		score = -1
	)
	for _, f := range fonts {
		sc := styleDistance(f, q.Slant, q.Weight)
		if !f.Has(q.Rune) {
			sc += 10000
		}
		if pick == nil || sc < score {
			pick, score = f, sc
		}
	}
	return pick, pick != nil
}

// styleDistance scores how far f is from the requested slant and weight.
// A slant mismatch outweighs any weight difference.
func styleDistance(f *Font, slant Slant, weight int) int {
	d := int(f.desc.Aspect.Weight) - weight
	if d < 0 {
		d = -d
	}
	if f.IsItalic() != slant.Slanted() {
		d += 1000
	}
	return d
}
