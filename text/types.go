package text

// Slant selects the slope of a face.
type Slant uint8

const (
	// SlantUpright is a normal, upright face.
	SlantUpright Slant = iota
	// SlantItalic is a cursive italic face.
	SlantItalic
	// SlantOblique is a slanted face. Matching treats it like italic.
	SlantOblique
)

// Slanted reports whether s asks for a non-upright face.
func (s Slant) Slanted() bool { return s != SlantUpright }

func (s Slant) String() string {
	switch s {
	case SlantUpright:
		return "upright"
	case SlantItalic:
		return "italic"
	case SlantOblique:
		return "oblique"
	}
	return "unknown"
}

// Family is a generic font family.
type Family uint8

// Generic families, named as in CSS.
const (
	SansSerif Family = iota
	Serif
	Monospace
	Cursive
	Fantasy
)

// String returns the generic family name understood by system font
// matching ("sans-serif", "serif", ...).
func (f Family) String() string {
	switch f {
	case SansSerif:
		return "sans-serif"
	case Serif:
		return "serif"
	case Monospace:
		return "monospace"
	case Cursive:
		return "cursive"
	case Fantasy:
		return "fantasy"
	}
	return "sans-serif"
}

// Weights on the OpenType scale.
const (
	WeightRegular = 400
	WeightBold    = 700

	// boldThreshold is the lowest weight treated as bold.
	boldThreshold = 600
)

// Content is the pixel layout of a rasterized glyph.
type Content uint8

const (
	// Mask is one coverage byte per pixel.
	Mask Content = iota
	// Color is four bytes per pixel, straight-alpha RGBA.
	Color
)

// BytesPerPixel returns the size of one pixel.
func (c Content) BytesPerPixel() int {
	if c == Color {
		return 4
	}
	return 1
}

func (c Content) String() string {
	if c == Color {
		return "color"
	}
	return "mask"
}

// GlyphID is a glyph index inside a font. Glyph 0 is .notdef.
type GlyphID uint32

// Placement locates a glyph bitmap relative to the glyph origin on the
// baseline. Left grows to the right, Top is the distance from the baseline
// up to the first bitmap row.
type Placement struct {
	Left, Top     int
	Width, Height int
}

// GlyphImage is a rasterized glyph.
//
// Data holds Height rows of Width pixels in the Content layout. Images are
// shared between callers through the raster cache and must not be modified.
type GlyphImage struct {
	GlyphID   GlyphID
	Placement Placement
	Content   Content
	Data      []byte
	// Subpixel is the horizontal sub-pixel bucket the glyph was
	// rasterized at.
	Subpixel uint8

	// X and Y are the top-left corner of the bitmap in target pixels, with y
	// growing downwards. They are set by Font.Render and zero otherwise.
	X, Y float32
}

// Empty reports whether the image has no pixels (e.g. a space).
func (g GlyphImage) Empty() bool {
	return g.Placement.Width <= 0 || g.Placement.Height <= 0
}

// Coverage returns the sum of the glyph's alpha values.
func (g GlyphImage) Coverage() uint64 {
	var sum uint64
	switch g.Content {
	case Color:
		for i := 3; i < len(g.Data); i += 4 {
			sum += uint64(g.Data[i])
		}
	default:
		for _, v := range g.Data {
			sum += uint64(v)
		}
	}
	return sum
}
