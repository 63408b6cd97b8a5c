package text

import (
	"reflect"
	"sync"
	"testing"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/go-fonts/latin-modern/lmroman10regular"
)

// countingService records the queries it receives.
type countingService struct {
	mu      sync.Mutex
	inner   FontService
	queries []FaceQuery
}

func (c *countingService) Match(q FaceQuery) (*Font, bool) {
	c.mu.Lock()
	c.queries = append(c.queries, q)
	c.mu.Unlock()
	return c.inner.Match(q)
}

type testFonts struct {
	regular, bold, italic, mono *Font
}

func loadTestFonts(t *testing.T) testFonts {
	t.Helper()
	return testFonts{
		regular: mustFont(t, goregular.TTF),
		bold:    mustFont(t, gobold.TTF),
		italic:  mustFont(t, goitalic.TTF),
		mono:    mustFont(t, gomono.TTF),
	}
}

func sansService(fonts ...*Font) *StaticFonts {
	s := NewStaticFonts()
	s.AddGeneric(SansSerif, fonts...)
	return s
}

func TestResolveStyle(t *testing.T) {
	tf := loadTestFonts(t)
	rs := NewResolver(WithFontService(sansService(tf.regular, tf.bold, tf.italic)))

	tests := []struct {
		name string
		q    Query
		want *Font
	}{
		{"regular", Query{}, tf.regular},
		{"bold", Query{Bold: true}, tf.bold},
		{"italic", Query{Slant: SlantItalic}, tf.italic},
		{"oblique matches italic", Query{Slant: SlantOblique}, tf.italic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rs.Resolve('a', tt.q); got != tt.want {
				t.Errorf("Resolve = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveNoMatchUsesBundledFallback(t *testing.T) {
	rs := NewResolver(WithFontService(NewStaticFonts()))
	got := rs.Resolve('a', Query{Family: Monospace, Preferred: "Does Not Exist"})
	if want := Fallback(Monospace, SlantUpright, false); got != want {
		t.Errorf("Resolve = %v, want bundled %v", got, want)
	}
	if !got.Has('a') {
		t.Error("fallback lacks 'a'")
	}
}

func TestResolveMissingRuneIsBounded(t *testing.T) {
	tf := loadTestFonts(t)
	svc := &countingService{inner: sansService(tf.regular)}
	rs := NewResolver(WithFontService(svc), WithFallback(tf.mono))

	got := rs.Resolve('\U0001F4A5', Query{Preferred: "Go"})
	if got != tf.mono {
		t.Errorf("Resolve = %v, want the configured fallback", got)
	}
	// Families "Go" and "sans-serif", then no family: three queries.
	if len(svc.queries) != 3 {
		t.Fatalf("service queried %d times, want 3", len(svc.queries))
	}
	if n := len(svc.queries[2].Families); n != 0 {
		t.Errorf("last query has %d families, want none", n)
	}

	// Memoized: no further queries.
	rs.Resolve('\U0001F4A5', Query{Preferred: "Go"})
	if len(svc.queries) != 3 {
		t.Errorf("memoized resolution queried the service again")
	}
}

func TestResolveAnyFamilyAfterNarrowingFails(t *testing.T) {
	tf := loadTestFonts(t)
	roman := mustFont(t, lmroman10regular.TTF)
	const r = '\u018e' // Latin Modern has it, Go does not
	if tf.regular.Has(r) || !roman.Has(r) {
		t.Fatalf("test fonts changed coverage of %U", r)
	}
	svc := &countingService{inner: NewStaticFonts(tf.regular, roman)}
	rs := NewResolver(WithFontService(svc), WithFallback(tf.mono))

	got := rs.Resolve(r, Query{Family: Monospace, Preferred: tf.regular.Family()})
	if got != roman {
		t.Errorf("Resolve = %v, want %v", got, roman)
	}
	// "Go" matches without the rune, "monospace" matches nothing, the
	// query for any family finds Latin Modern.
	if len(svc.queries) != 3 {
		t.Fatalf("service queried %d times, want 3", len(svc.queries))
	}
	if n := len(svc.queries[2].Families); n != 0 {
		t.Errorf("last query has %d families, want none", n)
	}
}

func TestResolvePreviousFontContinuity(t *testing.T) {
	tf := loadTestFonts(t)
	svc := &countingService{inner: sansService(tf.regular)}
	rs := NewResolver(WithFontService(svc))

	got := rs.Resolve('x', Query{Previous: tf.mono})
	if got != tf.mono {
		t.Errorf("Resolve = %v, want previous font", got)
	}
	if len(svc.queries) != 0 {
		t.Errorf("previous font shortcut still queried the service")
	}

	// A previous font of the wrong style is not reused.
	if got := rs.Resolve('x', Query{Bold: true, Previous: tf.mono}); got == tf.mono {
		t.Error("regular previous font reused for a bold query")
	}
}

func TestCandidateFamilies(t *testing.T) {
	tf := loadTestFonts(t)
	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{"generic only", Query{Family: Serif}, []string{"serif"}},
		{"preferred first", Query{Preferred: "Inter", Family: Monospace}, []string{"Inter", "monospace"}},
		{"case-insensitive duplicate", Query{Preferred: "SANS-SERIF"}, []string{"SANS-SERIF"}},
		{"previous first", Query{Previous: tf.regular, Preferred: tf.regular.Family()}, []string{tf.regular.Family(), "sans-serif"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := candidateFamilies(tt.q); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("candidateFamilies = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStaticFontsMatchByFamilyName(t *testing.T) {
	tf := loadTestFonts(t)
	svc := NewStaticFonts(tf.regular, tf.mono)

	got, ok := svc.Match(FaceQuery{Families: []string{"nope", tf.mono.Family()}, Weight: WeightRegular, Rune: 'a'})
	if !ok || got != tf.mono {
		t.Errorf("Match = %v, %v; want mono", got, ok)
	}
	if _, ok := svc.Match(FaceQuery{Families: []string{"nope"}}); ok {
		t.Error("unknown family matched")
	}
	if got, ok := svc.Match(FaceQuery{Rune: 'a', Weight: WeightRegular}); !ok || got == nil {
		t.Error("empty family list should match any font")
	}
}

func TestFallbackSlots(t *testing.T) {
	tests := []struct {
		family Family
		slant  Slant
		bold   bool
		italic bool
	}{
		{SansSerif, SlantUpright, false, false},
		{SansSerif, SlantItalic, true, true},
		{Monospace, SlantUpright, true, false},
		{Serif, SlantItalic, false, true},
		{Fantasy, SlantUpright, false, false},
	}
	for _, tt := range tests {
		f := Fallback(tt.family, tt.slant, tt.bold)
		if f == nil {
			t.Fatalf("Fallback(%v, %v, %v) = nil", tt.family, tt.slant, tt.bold)
		}
		if f.IsBold() != tt.bold || f.IsItalic() != tt.italic {
			t.Errorf("Fallback(%v, %v, %v): bold=%v italic=%v", tt.family, tt.slant, tt.bold, f.IsBold(), f.IsItalic())
		}
	}
	if n := len(Bundled()); n != 12 {
		t.Errorf("Bundled() has %d fonts, want 12", n)
	}
	if !Fallback(SansSerif, SlantUpright, false).Equal(mustFont(t, goregular.TTF)) {
		t.Error("sans fallback is not Go Regular")
	}
}
