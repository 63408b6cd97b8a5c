// Package text loads fonts, resolves a font for every character of a string
// and splits the string into runs that can be drawn with one font and one
// synthetic style.
//
// The pipeline is:
//
//   - [Font] owns or borrows font file bytes and answers metric queries,
//     shapes runs with HarfBuzz (go-text/typesetting) and rasterizes glyphs.
//   - [Resolver] picks a concrete Font for a character, walking from the
//     previously used font through the preferred and generic families of a
//     [FontService] down to a bundled fallback.
//   - [Segment] resolves every grapheme cluster and greedily merges
//     neighbours that share font, size and synthetic style flags.
//   - [Text] caches the segments of a string until the string changes.
//
// Fonts are immutable after loading and safe to share between goroutines.
// Segment lists are plain values; drawing them is the job of the render
// package.
package text
