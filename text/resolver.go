package text

import (
	"sync"

	"github.com/gogpu/quill/cache"
)

// Query describes the font wanted for one character.
type Query struct {
	Slant  Slant
	Bold   bool
	Family Family
	// Preferred is a concrete family name tried before the generic Family.
	Preferred string
	// Previous is the font used for the preceding character. It is tried
	// first so runs of text stay in one font.
	Previous *Font
}

func (q Query) weight() int {
	if q.Bold {
		return WeightBold
	}
	return WeightRegular
}

// satisfiedBy reports whether f has the slant and weight q asks for.
func (q Query) satisfiedBy(f *Font) bool {
	return f.IsItalic() == q.Slant.Slanted() && f.IsBold() == q.Bold
}

type resolveKey struct {
	r         rune
	slant     Slant
	bold      bool
	family    Family
	preferred string
	previous  string // family of the previous font
}

type nonModKey struct {
	cluster   string
	bold      bool
	family    Family
	preferred string
}

type resolverOptions struct {
	service  FontService
	cacheDir string
	fallback *Font
}

// ResolverOption configures a Resolver.
type ResolverOption func(*resolverOptions)

// WithFontService sets the service fonts are looked up in. The default is
// a SystemFonts service.
func WithFontService(svc FontService) ResolverOption {
	return func(o *resolverOptions) {
		o.service = svc
	}
}

// WithCacheDir sets the directory the default SystemFonts service keeps
// its font index in.
func WithCacheDir(dir string) ResolverOption {
	return func(o *resolverOptions) {
		o.cacheDir = dir
	}
}

// WithFallback replaces the bundled fallback fonts with f.
func WithFallback(f *Font) ResolverOption {
	return func(o *resolverOptions) {
		o.fallback = f
	}
}

// Resolver picks a concrete Font for every character.
//
// The search goes from the previous font, through the preferred family, to
// the generic family. A matched font that lacks the character sends the
// search on with the next family, then with no family at all, and finally
// to a bundled fallback font. Results are memoized; a Resolver is safe for
// concurrent use.
type Resolver struct {
	service  FontService
	fallback *Font

	resolved *cache.Cache[resolveKey, *Font]
	nonMod   *cache.Cache[nonModKey, bool]

	warnOnce sync.Once
}

// NewResolver creates a Resolver.
func NewResolver(opts ...ResolverOption) *Resolver {
	var o resolverOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.service == nil {
		o.service = NewSystemFonts(o.cacheDir)
	}
	return &Resolver{
		service:  o.service,
		fallback: o.fallback,
		resolved: cache.New[resolveKey, *Font](256, nil),
		nonMod:   cache.New[nonModKey, bool](256, nil),
	}
}

// Resolve returns the font to draw r with. It never returns nil; when no
// installed font has r the fallback font is returned and r renders as
// .notdef.
func (rs *Resolver) Resolve(r rune, q Query) *Font {
	if p := q.Previous; p != nil && p.Has(r) && q.satisfiedBy(p) {
		return p
	}
	key := resolveKey{r: r, slant: q.Slant, bold: q.Bold, family: q.Family, preferred: q.Preferred}
	if q.Previous != nil {
		key.previous = q.Previous.Family()
	}
	return rs.resolved.GetOrCreate(key, func() *Font {
		return rs.search(r, q)
	})
}

// search walks the candidate families, dropping the first one after each
// query, and finishes with a query for any family. It queries the service
// at most len(families)+1 times.
func (rs *Resolver) search(r rune, q Query) *Font {
	families := candidateFamilies(q)
	matched := false
	for i := 0; i <= len(families); i++ {
		f, ok := rs.service.Match(FaceQuery{
			Families: families[i:],
			Slant:    q.Slant,
			Weight:   q.weight(),
			Rune:     r,
		})
		if !ok {
			continue
		}
		matched = true
		if f.Has(r) {
			return f
		}
	}
	if !matched {
		rs.warnOnce.Do(func() {
			logger().Warn("text: no system font matched, using bundled fallback",
				"families", families, "slant", q.Slant, "bold", q.Bold)
		})
	} else {
		logger().Debug("text: no font covers character", "rune", r)
	}
	return rs.fallbackFor(q)
}

func (rs *Resolver) fallbackFor(q Query) *Font {
	if rs.fallback != nil {
		return rs.fallback
	}
	return Fallback(q.Family, q.Slant, q.Bold)
}

// candidateFamilies lists the previous font's family, the preferred family
// and the generic family, skipping empty names and case-insensitive
// duplicates.
func candidateFamilies(q Query) []string {
	names := make([]string, 0, 3)
	if q.Previous != nil {
		names = append(names, q.Previous.Family())
	}
	names = append(names, q.Preferred, q.Family.String())

	out := names[:0]
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		k := foldFamily(n)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, n)
	}
	return out
}
