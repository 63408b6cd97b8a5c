package text

import "testing"

func TestTextStates(t *testing.T) {
	tf := loadTestFonts(t)
	rs := NewResolver(WithFontService(sansService(tf.regular)))

	txt := NewText("hello")
	if txt.Computed() {
		t.Fatal("new Text is computed")
	}
	if segs, ok := txt.Segments(); ok || segs != nil {
		t.Fatalf("uncomputed Segments() = %v, %v", segs, ok)
	}

	txt.Compute(16, Style{}, rs)
	first, ok := txt.Segments()
	if !ok || len(first) != 1 {
		t.Fatalf("computed Segments() = %v, %v", first, ok)
	}

	txt.Compute(16, Style{}, rs)
	second, _ := txt.Segments()
	if len(second) != len(first) || second[0] != first[0] {
		t.Errorf("recompute changed segments: %+v vs %+v", first, second)
	}

	txt.SetText("bye")
	if txt.Computed() || txt.String() != "bye" {
		t.Errorf("after SetText: computed=%v string=%q", txt.Computed(), txt.String())
	}

	txt.SetText("")
	txt.Compute(16, Style{}, rs)
	if segs, ok := txt.Segments(); !ok || len(segs) != 0 {
		t.Errorf("empty string segments = %v, %v", segs, ok)
	}
}
