// Package emoji classifies grapheme clusters that render as emoji.
//
// The text segmenter uses it to find clusters whose look cannot be changed
// by synthetic styling: shearing or stamping a colour pictograph does not
// produce an italic or bold pictograph, so such clusters follow separate
// style switches.
//
// Classification works on whole clusters rather than single runes because
// emoji are frequently sequences:
//
//	👍🏽      base + skin tone modifier
//	👨‍👩‍👧    ZWJ sequence
//	🇫🇷      regional indicator pair
//	1️⃣      keycap sequence
//	❤️      text-default symbol + U+FE0F
//
// A bare text-default symbol such as ❤ or ☺ is reported as [Symbol]: it may
// or may not be drawn as an emoji depending on the font, and callers decide
// by comparing glyphs.
package emoji
