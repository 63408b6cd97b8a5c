package emoji

import "unicode"

// Kind is the emoji classification of a grapheme cluster.
type Kind uint8

const (
	// None is ordinary text.
	None Kind = iota
	// Symbol is a character that has an emoji form but defaults to text
	// presentation (Emoji=Yes, Emoji_Presentation=No).
	Symbol
	// Presentation is a character that defaults to emoji presentation.
	Presentation
	// Sequence is a multi-rune emoji: ZWJ, keycap, flag, modifier, tag or a
	// symbol forced to emoji presentation with U+FE0F.
	Sequence
)

func (k Kind) String() string {
	switch k {
	case None:
		return "None"
	case Symbol:
		return "Symbol"
	case Presentation:
		return "Presentation"
	case Sequence:
		return "Sequence"
	}
	return "Unknown"
}

// IsEmoji reports whether k always renders as an emoji.
func (k Kind) IsEmoji() bool {
	return k == Presentation || k == Sequence
}

// Special code points.
const (
	ZWJ             = '\u200D'
	TextSelector    = '\uFE0E'
	EmojiSelector   = '\uFE0F'
	EnclosingKeycap = '\u20E3'
	CancelTag       = '\U000E007F'

	firstTag      = '\U000E0020'
	firstModifier = '\U0001F3FB'
	lastModifier  = '\U0001F3FF'
	firstRegional = '\U0001F1E6'
	lastRegional  = '\U0001F1FF'
)

// Classify returns the kind of a single grapheme cluster. An explicit text
// selector (U+FE0E) wins over everything except a ZWJ.
func Classify(cluster string) Kind {
	var (
		n                  int
		first              rune
		zwj, sequence      bool
		presenting, symbol bool
		textSel            bool
	)
	for _, r := range cluster {
		if n == 0 {
			first = r
		}
		n++
		switch {
		case r == ZWJ:
			zwj = true
		case r == EmojiSelector, r == EnclosingKeycap, IsModifier(r), IsTag(r):
			sequence = true
		case r == TextSelector:
			textSel = true
		case IsPresentation(r):
			presenting = true
		case unicode.Is(textDefault, r):
			symbol = true
		}
	}
	pictographic := presenting || symbol
	switch {
	case n == 0:
		return None
	case zwj:
		if pictographic {
			return Sequence
		}
	case textSel:
		if pictographic {
			return Symbol
		}
	case sequence:
		if pictographic || IsKeycapBase(first) {
			return Sequence
		}
	case presenting:
		return Presentation
	case symbol:
		return Symbol
	}
	return None
}

// IsModifier reports whether r is a Fitzpatrick skin tone modifier.
func IsModifier(r rune) bool { return r >= firstModifier && r <= lastModifier }

// IsRegional reports whether r is a regional indicator letter.
func IsRegional(r rune) bool { return r >= firstRegional && r <= lastRegional }

// IsTag reports whether r is a tag character, including CANCEL TAG.
func IsTag(r rune) bool { return r >= firstTag && r <= CancelTag }

// IsKeycapBase reports whether r can start a keycap sequence.
func IsKeycapBase(r rune) bool {
	return (r >= '0' && r <= '9') || r == '#' || r == '*'
}

// IsPresentation reports whether r defaults to emoji presentation.
func IsPresentation(r rune) bool {
	return IsRegional(r) || unicode.Is(presentation, r)
}

// presentation lists the blocks and code points with Emoji_Presentation=Yes.
var presentation = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x231A, Hi: 0x231B, Stride: 1},
		{Lo: 0x23E9, Hi: 0x23EC, Stride: 1},
		{Lo: 0x23F0, Hi: 0x23F3, Stride: 3},
		{Lo: 0x25FD, Hi: 0x25FE, Stride: 1},
		{Lo: 0x2614, Hi: 0x2615, Stride: 1},
		{Lo: 0x2648, Hi: 0x2653, Stride: 1},
		{Lo: 0x267F, Hi: 0x2693, Stride: 20},
		{Lo: 0x26A1, Hi: 0x26A1, Stride: 1},
		{Lo: 0x26AA, Hi: 0x26AB, Stride: 1},
		{Lo: 0x26BD, Hi: 0x26BE, Stride: 1},
		{Lo: 0x26C4, Hi: 0x26C5, Stride: 1},
		{Lo: 0x26CE, Hi: 0x26D4, Stride: 6},
		{Lo: 0x26EA, Hi: 0x26EA, Stride: 1},
		{Lo: 0x26F2, Hi: 0x26F3, Stride: 1},
		{Lo: 0x26F5, Hi: 0x26FA, Stride: 5},
		{Lo: 0x26FD, Hi: 0x26FD, Stride: 1},
		{Lo: 0x2705, Hi: 0x2705, Stride: 1},
		{Lo: 0x270A, Hi: 0x270B, Stride: 1},
		{Lo: 0x2728, Hi: 0x2728, Stride: 1},
		{Lo: 0x274C, Hi: 0x274E, Stride: 2},
		{Lo: 0x2753, Hi: 0x2755, Stride: 1},
		{Lo: 0x2757, Hi: 0x2757, Stride: 1},
		{Lo: 0x2795, Hi: 0x2797, Stride: 1},
		{Lo: 0x27B0, Hi: 0x27BF, Stride: 15},
		{Lo: 0x2B1B, Hi: 0x2B1C, Stride: 1},
		{Lo: 0x2B50, Hi: 0x2B55, Stride: 5},
	},
	R32: []unicode.Range32{
		{Lo: 0x1F004, Hi: 0x1F004, Stride: 1},
		{Lo: 0x1F0CF, Hi: 0x1F0CF, Stride: 1},
		{Lo: 0x1F18E, Hi: 0x1F18E, Stride: 1},
		{Lo: 0x1F191, Hi: 0x1F19A, Stride: 1},
		{Lo: 0x1F201, Hi: 0x1F201, Stride: 1},
		{Lo: 0x1F21A, Hi: 0x1F22F, Stride: 21},
		{Lo: 0x1F232, Hi: 0x1F236, Stride: 1},
		{Lo: 0x1F238, Hi: 0x1F23A, Stride: 1},
		{Lo: 0x1F250, Hi: 0x1F251, Stride: 1},
		{Lo: 0x1F300, Hi: 0x1F320, Stride: 1},
		{Lo: 0x1F32D, Hi: 0x1F335, Stride: 1},
		{Lo: 0x1F337, Hi: 0x1F37C, Stride: 1},
		{Lo: 0x1F37E, Hi: 0x1F393, Stride: 1},
		{Lo: 0x1F3A0, Hi: 0x1F3CA, Stride: 1},
		{Lo: 0x1F3CF, Hi: 0x1F3D3, Stride: 1},
		{Lo: 0x1F3E0, Hi: 0x1F3F0, Stride: 1},
		{Lo: 0x1F3F4, Hi: 0x1F3F4, Stride: 1},
		{Lo: 0x1F3F8, Hi: 0x1F43E, Stride: 1},
		{Lo: 0x1F440, Hi: 0x1F440, Stride: 1},
		{Lo: 0x1F442, Hi: 0x1F4FC, Stride: 1},
		{Lo: 0x1F4FF, Hi: 0x1F53D, Stride: 1},
		{Lo: 0x1F54B, Hi: 0x1F54E, Stride: 1},
		{Lo: 0x1F550, Hi: 0x1F567, Stride: 1},
		{Lo: 0x1F57A, Hi: 0x1F57A, Stride: 1},
		{Lo: 0x1F595, Hi: 0x1F596, Stride: 1},
		{Lo: 0x1F5A4, Hi: 0x1F5A4, Stride: 1},
		{Lo: 0x1F5FB, Hi: 0x1F64F, Stride: 1},
		{Lo: 0x1F680, Hi: 0x1F6C5, Stride: 1},
		{Lo: 0x1F6CC, Hi: 0x1F6CC, Stride: 1},
		{Lo: 0x1F6D0, Hi: 0x1F6D2, Stride: 1},
		{Lo: 0x1F6D5, Hi: 0x1F6D7, Stride: 1},
		{Lo: 0x1F6DC, Hi: 0x1F6DF, Stride: 1},
		{Lo: 0x1F6EB, Hi: 0x1F6EC, Stride: 1},
		{Lo: 0x1F6F4, Hi: 0x1F6FC, Stride: 1},
		{Lo: 0x1F7E0, Hi: 0x1F7EB, Stride: 1},
		{Lo: 0x1F7F0, Hi: 0x1F7F0, Stride: 1},
		{Lo: 0x1F90C, Hi: 0x1F93A, Stride: 1},
		{Lo: 0x1F93C, Hi: 0x1F945, Stride: 1},
		{Lo: 0x1F947, Hi: 0x1F9FF, Stride: 1},
		{Lo: 0x1FA70, Hi: 0x1FA7C, Stride: 1},
		{Lo: 0x1FA80, Hi: 0x1FA89, Stride: 1},
		{Lo: 0x1FA8F, Hi: 0x1FAC6, Stride: 1},
		{Lo: 0x1FACE, Hi: 0x1FADC, Stride: 1},
		{Lo: 0x1FADF, Hi: 0x1FAE9, Stride: 1},
		{Lo: 0x1FAF0, Hi: 0x1FAF8, Stride: 1},
	},
}

// textDefault lists emoji that default to text presentation.
var textDefault = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x00A9, Hi: 0x00AE, Stride: 5},
		{Lo: 0x203C, Hi: 0x2049, Stride: 13},
		{Lo: 0x2122, Hi: 0x2139, Stride: 23},
		{Lo: 0x2194, Hi: 0x2199, Stride: 1},
		{Lo: 0x21A9, Hi: 0x21AA, Stride: 1},
		{Lo: 0x2328, Hi: 0x23CF, Stride: 167},
		{Lo: 0x23ED, Hi: 0x23EF, Stride: 1},
		{Lo: 0x23F1, Hi: 0x23F2, Stride: 1},
		{Lo: 0x23F8, Hi: 0x23FA, Stride: 1},
		{Lo: 0x24C2, Hi: 0x24C2, Stride: 1},
		{Lo: 0x25AA, Hi: 0x25AB, Stride: 1},
		{Lo: 0x25B6, Hi: 0x25C0, Stride: 10},
		{Lo: 0x25FB, Hi: 0x25FC, Stride: 1},
		{Lo: 0x2600, Hi: 0x2604, Stride: 1},
		{Lo: 0x260E, Hi: 0x2611, Stride: 3},
		{Lo: 0x2618, Hi: 0x261D, Stride: 5},
		{Lo: 0x2620, Hi: 0x2620, Stride: 1},
		{Lo: 0x2622, Hi: 0x2623, Stride: 1},
		{Lo: 0x2626, Hi: 0x262A, Stride: 4},
		{Lo: 0x262E, Hi: 0x262F, Stride: 1},
		{Lo: 0x2638, Hi: 0x263A, Stride: 1},
		{Lo: 0x2640, Hi: 0x2642, Stride: 2},
		{Lo: 0x265F, Hi: 0x2660, Stride: 1},
		{Lo: 0x2663, Hi: 0x2663, Stride: 1},
		{Lo: 0x2665, Hi: 0x2666, Stride: 1},
		{Lo: 0x2668, Hi: 0x2668, Stride: 1},
		{Lo: 0x267B, Hi: 0x267E, Stride: 3},
		{Lo: 0x2692, Hi: 0x2692, Stride: 1},
		{Lo: 0x2694, Hi: 0x2697, Stride: 1},
		{Lo: 0x2699, Hi: 0x2699, Stride: 1},
		{Lo: 0x269B, Hi: 0x269C, Stride: 1},
		{Lo: 0x26A0, Hi: 0x26A0, Stride: 1},
		{Lo: 0x26A7, Hi: 0x26A7, Stride: 1},
		{Lo: 0x26B0, Hi: 0x26B1, Stride: 1},
		{Lo: 0x26C8, Hi: 0x26C8, Stride: 1},
		{Lo: 0x26CF, Hi: 0x26D1, Stride: 2},
		{Lo: 0x26D3, Hi: 0x26D3, Stride: 1},
		{Lo: 0x26E9, Hi: 0x26E9, Stride: 1},
		{Lo: 0x26F0, Hi: 0x26F1, Stride: 1},
		{Lo: 0x26F4, Hi: 0x26F4, Stride: 1},
		{Lo: 0x26F7, Hi: 0x26F9, Stride: 1},
		{Lo: 0x2702, Hi: 0x2702, Stride: 1},
		{Lo: 0x2708, Hi: 0x2709, Stride: 1},
		{Lo: 0x270C, Hi: 0x270D, Stride: 1},
		{Lo: 0x270F, Hi: 0x270F, Stride: 1},
		{Lo: 0x2712, Hi: 0x2716, Stride: 2},
		{Lo: 0x271D, Hi: 0x2721, Stride: 4},
		{Lo: 0x2733, Hi: 0x2734, Stride: 1},
		{Lo: 0x2744, Hi: 0x2747, Stride: 3},
		{Lo: 0x2763, Hi: 0x2764, Stride: 1},
		{Lo: 0x27A1, Hi: 0x27A1, Stride: 1},
		{Lo: 0x2934, Hi: 0x2935, Stride: 1},
		{Lo: 0x2B05, Hi: 0x2B07, Stride: 1},
		{Lo: 0x3030, Hi: 0x303D, Stride: 13},
		{Lo: 0x3297, Hi: 0x3299, Stride: 2},
	},
	R32: []unicode.Range32{
		{Lo: 0x1F170, Hi: 0x1F171, Stride: 1},
		{Lo: 0x1F17E, Hi: 0x1F17F, Stride: 1},
		{Lo: 0x1F202, Hi: 0x1F202, Stride: 1},
		{Lo: 0x1F237, Hi: 0x1F237, Stride: 1},
		{Lo: 0x1F321, Hi: 0x1F321, Stride: 1},
		{Lo: 0x1F324, Hi: 0x1F32C, Stride: 1},
		{Lo: 0x1F336, Hi: 0x1F37D, Stride: 71},
		{Lo: 0x1F396, Hi: 0x1F397, Stride: 1},
		{Lo: 0x1F399, Hi: 0x1F39B, Stride: 1},
		{Lo: 0x1F39E, Hi: 0x1F39F, Stride: 1},
		{Lo: 0x1F3CB, Hi: 0x1F3CE, Stride: 1},
		{Lo: 0x1F3D4, Hi: 0x1F3DF, Stride: 1},
		{Lo: 0x1F3F3, Hi: 0x1F3F5, Stride: 2},
		{Lo: 0x1F3F7, Hi: 0x1F3F7, Stride: 1},
		{Lo: 0x1F43F, Hi: 0x1F441, Stride: 2},
		{Lo: 0x1F4FD, Hi: 0x1F4FD, Stride: 1},
		{Lo: 0x1F549, Hi: 0x1F54A, Stride: 1},
		{Lo: 0x1F56F, Hi: 0x1F570, Stride: 1},
		{Lo: 0x1F573, Hi: 0x1F579, Stride: 1},
		{Lo: 0x1F587, Hi: 0x1F587, Stride: 1},
		{Lo: 0x1F58A, Hi: 0x1F58D, Stride: 1},
		{Lo: 0x1F590, Hi: 0x1F590, Stride: 1},
		{Lo: 0x1F5A5, Hi: 0x1F5A8, Stride: 3},
		{Lo: 0x1F5B1, Hi: 0x1F5B2, Stride: 1},
		{Lo: 0x1F5BC, Hi: 0x1F5BC, Stride: 1},
		{Lo: 0x1F5C2, Hi: 0x1F5C4, Stride: 1},
		{Lo: 0x1F5D1, Hi: 0x1F5D3, Stride: 1},
		{Lo: 0x1F5DC, Hi: 0x1F5DE, Stride: 1},
		{Lo: 0x1F5E1, Hi: 0x1F5E3, Stride: 2},
		{Lo: 0x1F5E8, Hi: 0x1F5EF, Stride: 7},
		{Lo: 0x1F5F3, Hi: 0x1F5FA, Stride: 7},
		{Lo: 0x1F6CB, Hi: 0x1F6CB, Stride: 1},
		{Lo: 0x1F6CD, Hi: 0x1F6CF, Stride: 1},
		{Lo: 0x1F6E0, Hi: 0x1F6E5, Stride: 1},
		{Lo: 0x1F6E9, Hi: 0x1F6E9, Stride: 1},
		{Lo: 0x1F6F0, Hi: 0x1F6F3, Stride: 3},
	},
	LatinOffset: 1,
}
