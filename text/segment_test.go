package text

import (
	"strings"
	"testing"
)

func TestSegmentSingleFont(t *testing.T) {
	tf := loadTestFonts(t)
	rs := NewResolver(WithFontService(sansService(tf.regular)))

	segs := rs.Segment("AB", 16, Style{})
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1: %+v", len(segs), segs)
	}
	if s := segs[0]; s.Start != 0 || s.End != 2 || s.Font != tf.regular || s.Size != 16 {
		t.Errorf("segment = %+v", s)
	}
}

func TestSegmentFontChange(t *testing.T) {
	tf := loadTestFonts(t)
	// The emoji is in no font, so it lands on the fallback; the italic
	// request keeps the letters off the fallback.
	rs := NewResolver(WithFontService(sansService(tf.regular, tf.italic)), WithFallback(tf.mono))
	src := "A\U0001F4A5B"

	segs := rs.Segment(src, 16, Style{Slant: SlantItalic})
	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3: %+v", len(segs), segs)
	}
	want := []struct {
		text string
		font *Font
	}{
		{"A", tf.italic},
		{"\U0001F4A5", tf.mono},
		{"B", tf.italic},
	}
	for i, w := range want {
		if got := segs[i].Text(src); got != w.text {
			t.Errorf("segment %d text = %q, want %q", i, got, w.text)
		}
		if segs[i].Font != w.font {
			t.Errorf("segment %d font = %v, want %v", i, segs[i].Font, w.font)
		}
		if segs[i].ForceItalic {
			t.Errorf("segment %d is force-italic", i)
		}
	}
}

func TestSegmentSyntheticFlags(t *testing.T) {
	tf := loadTestFonts(t)
	rs := NewResolver(WithFontService(sansService(tf.regular)), WithFallback(tf.regular))
	src := "a\U0001F600b"

	tests := []struct {
		name      string
		style     Style
		wantCount int
		letters   [2]bool // ForceItalic, ForceBold of the letters
		emoji     [2]bool
	}{
		{"plain", Style{}, 1, [2]bool{false, false}, [2]bool{false, false}},
		{"italic, emoji upright", Style{Slant: SlantItalic}, 3, [2]bool{true, false}, [2]bool{false, false}},
		{"italic, emoji too", Style{Slant: SlantItalic, ItalicEmoji: true}, 1, [2]bool{true, false}, [2]bool{true, false}},
		{"bold, emoji upright", Style{Bold: true}, 3, [2]bool{false, true}, [2]bool{false, false}},
		{"emoji flags alone do nothing", Style{ItalicEmoji: true, BoldEmoji: true}, 1, [2]bool{}, [2]bool{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := rs.Segment(src, 12, tt.style)
			if len(segs) != tt.wantCount {
				t.Fatalf("got %d segments, want %d: %+v", len(segs), tt.wantCount, segs)
			}
			first := segs[0]
			if got := [2]bool{first.ForceItalic, first.ForceBold}; got != tt.letters {
				t.Errorf("letter flags = %v, want %v", got, tt.letters)
			}
			if len(segs) == 3 {
				mid := segs[1]
				if got := [2]bool{mid.ForceItalic, mid.ForceBold}; got != tt.emoji {
					t.Errorf("emoji flags = %v, want %v", got, tt.emoji)
				}
			}
		})
	}
}

func TestSegmentProperties(t *testing.T) {
	tf := loadTestFonts(t)
	rs := NewResolver(WithFontService(sansService(tf.regular, tf.italic, tf.bold)), WithFallback(tf.mono))
	inputs := []string{
		"",
		"hello, world",
		"A\U0001F4A5B",
		"été \U0001F468\u200d\U0001F469\u200d\U0001F467 ok",
		"mixed 中文 text",
		"\U0001F1EB\U0001F1F7\U0001F1E9\U0001F1EA",
		"tab\tand\nnewline",
	}
	styles := []Style{
		{},
		{Slant: SlantItalic},
		{Bold: true, BoldEmoji: true},
		{Slant: SlantItalic, Bold: true, ItalicEmoji: true},
	}
	for _, in := range inputs {
		for _, st := range styles {
			segs := rs.Segment(in, 14, st)

			var b strings.Builder
			for _, s := range segs {
				if s.Len() <= 0 {
					t.Errorf("%q: empty segment %+v", in, s)
				}
				b.WriteString(s.Text(in))
			}
			if b.String() != in {
				t.Errorf("%q %+v: segments rebuild %q", in, st, b.String())
			}
			for i := 1; i < len(segs); i++ {
				if segs[i-1].CanCombine(segs[i]) {
					t.Errorf("%q %+v: segments %d and %d could merge", in, st, i-1, i)
				}
			}
		}
	}
}

func TestSegmentCombine(t *testing.T) {
	tf := loadTestFonts(t)
	a := Segment{Start: 0, End: 2, Font: tf.regular, Size: 10}
	b := Segment{Start: 2, End: 5, Font: mustFont(t, tf.regular.data), Size: 10}

	if !a.CanCombine(b) {
		t.Fatal("contiguous equal segments cannot combine")
	}
	a.Combine(b)
	if a.Start != 0 || a.End != 5 {
		t.Errorf("combined = [%d,%d)", a.Start, a.End)
	}

	tests := []struct {
		name string
		next Segment
	}{
		{"gap", Segment{Start: 6, End: 7, Font: tf.regular, Size: 10}},
		{"other font", Segment{Start: 5, End: 6, Font: tf.bold, Size: 10}},
		{"other size", Segment{Start: 5, End: 6, Font: tf.regular, Size: 11}},
		{"other flags", Segment{Start: 5, End: 6, Font: tf.regular, Size: 10, ForceBold: true}},
	}
	for _, tt := range tests {
		if a.CanCombine(tt.next) {
			t.Errorf("%s: CanCombine = true", tt.name)
		}
	}
}

func TestSegmentCombinePanicsOnGap(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Combine of non-contiguous spans did not panic")
		}
	}()
	a := Segment{Start: 0, End: 1}
	a.Combine(Segment{Start: 2, End: 3})
}

func TestNonModifiable(t *testing.T) {
	tf := loadTestFonts(t)
	withItalic := NewResolver(WithFontService(sansService(tf.regular, tf.italic)))
	uprightOnly := NewResolver(WithFontService(sansService(tf.regular)))

	tests := []struct {
		name    string
		rs      *Resolver
		cluster string
		want    bool
	}{
		{"emoji", uprightOnly, "\U0001F4A5", true},
		{"zwj sequence", withItalic, "\U0001F468\u200d\U0001F469", true},
		{"letter with italic face", withItalic, "A", false},
		{"letter without italic face", uprightOnly, "A", false},
		{"space", withItalic, " ", false},
		{"empty", withItalic, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rs.NonModifiable(tt.cluster, Query{}); got != tt.want {
				t.Errorf("NonModifiable(%q) = %v, want %v", tt.cluster, got, tt.want)
			}
		})
	}
}
