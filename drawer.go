package quill

import "github.com/gogpu/quill/text"

// Drawer is the per-frame drawing surface. Implementations are not safe for
// concurrent use: one goroutine drives BeginFrame, the draw calls and
// EndFrame.
//
// Draw calls do not return errors. A failed draw is skipped and the first
// failure of the frame is reported by EndFrame.
type Drawer interface {
	// Resize sets the viewport size in physical pixels and the display
	// scale factor.
	Resize(width, height int, dpi float32)
	BeginFrame()
	EndFrame() error
	// Clear fills the viewport with the drawer's clear colour.
	Clear()
	DrawRect(rb *RectBlueprint)
	DrawText(tb *TextBlueprint)
	DrawImage(r Rect, img *ImageSource)
	// Close releases every GPU resource owned by the drawer. Image sources
	// are owned by the caller and are not released.
	Close()
}

// RectBlueprint describes a rectangle with optional rounded corners and
// per-edge borders.
type RectBlueprint struct {
	Rect         Rect
	Color        Color
	BorderColor  Color
	BorderWidth  float32
	CornerRadius float32
	// Borders enables the border on each edge, indexed by Edge.
	Borders [4]bool
	// Alpha is the opacity of the fill and the border, in [0, 1].
	Alpha float32
}

// HasBorder reports whether any border is drawn.
func (rb *RectBlueprint) HasBorder() bool {
	if rb.BorderWidth <= 0 {
		return false
	}
	for _, b := range rb.Borders {
		if b {
			return true
		}
	}
	return false
}

// AllBorders is a Borders value with every edge enabled.
var AllBorders = [4]bool{true, true, true, true}

// TextBlueprint describes a run of text. Either Text is set, or String
// together with Font and Size describe a single segment drawn in one font.
//
// X and Y are the top-left of the text box; the baseline sits one ascent
// below Y.
type TextBlueprint struct {
	Text *text.Text

	String string
	Font   *text.Font

	Size  float32
	X, Y  float32
	Color Color
	Alpha float32
	// Style is used when Text has to be computed by the drawer.
	Style text.Style
}
