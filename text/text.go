package text

// Text is a string together with its segments. It starts uncomputed;
// Compute fills in the segments and SetText discards them again.
type Text struct {
	s        string
	segments []Segment
	computed bool
}

// NewText returns an uncomputed Text for s.
func NewText(s string) *Text {
	return &Text{s: s}
}

// String returns the source string.
func (t *Text) String() string { return t.s }

// SetText replaces the string and invalidates the segments.
func (t *Text) SetText(s string) {
	t.s = s
	t.segments = nil
	t.computed = false
}

// Compute segments the string. Computing again with the same arguments and
// resolver state gives the same segments.
func (t *Text) Compute(size float32, style Style, rs *Resolver) {
	t.segments = rs.Segment(t.s, size, style)
	t.computed = true
}

// Computed reports whether the segments are available.
func (t *Text) Computed() bool { return t.computed }

// Segments returns the computed segments, or false when the Text is
// uncomputed. An empty string computes to zero segments.
func (t *Text) Segments() ([]Segment, bool) {
	return t.segments, t.computed
}
