package emoji

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		cluster string
		want    Kind
	}{
		{"empty", "", None},
		{"letter", "A", None},
		{"combining accent", "é", None},
		{"digit", "7", None},
		{"collision", "\U0001F4A5", Presentation},
		{"grinning face", "\U0001F600", Presentation},
		{"watch", "\u231A", Presentation},
		{"flag", "\U0001F1EB\U0001F1F7", Presentation},
		{"heart text default", "\u2764", Symbol},
		{"copyright", "\u00A9", Symbol},
		{"heart with emoji selector", "\u2764\uFE0F", Sequence},
		{"face with text selector", "\U0001F600\uFE0E", Symbol},
		{"thumbs up skin tone", "\U0001F44D\U0001F3FD", Sequence},
		{"family zwj", "\U0001F468\u200D\U0001F469\u200D\U0001F467", Sequence},
		{"keycap", "1\uFE0F\u20E3", Sequence},
		{"lone zwj", "\u200D", None},
		{"tag flag", "\U0001F3F4\U000E0067\U000E0062\U000E007F", Sequence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.cluster); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.cluster, got, tt.want)
			}
		})
	}
}

func TestKindIsEmoji(t *testing.T) {
	tests := []struct {
		k    Kind
		want bool
	}{
		{None, false},
		{Symbol, false},
		{Presentation, true},
		{Sequence, true},
	}
	for _, tt := range tests {
		if got := tt.k.IsEmoji(); got != tt.want {
			t.Errorf("%v.IsEmoji() = %v, want %v", tt.k, got, tt.want)
		}
	}
	if Kind(42).String() != "Unknown" {
		t.Errorf("Kind(42).String() = %q", Kind(42).String())
	}
}

func TestRuneHelpers(t *testing.T) {
	if !IsModifier('\U0001F3FB') || IsModifier('\U0001F3FA') {
		t.Error("IsModifier range")
	}
	if !IsRegional('\U0001F1E6') || IsRegional('A') {
		t.Error("IsRegional range")
	}
	if !IsTag(CancelTag) || IsTag('\U000E0080') {
		t.Error("IsTag range")
	}
	for _, r := range "0123456789#*" {
		if !IsKeycapBase(r) {
			t.Errorf("IsKeycapBase(%q) = false", r)
		}
	}
	if IsKeycapBase('a') {
		t.Error("IsKeycapBase('a') = true")
	}
}
