// Package quill is a small immediate-mode 2D drawing library for GPU surfaces.
//
// # Overview
//
// quill draws three kinds of primitives: rectangles with rounded corners and
// per-edge borders, shaped text, and bitmap images. A caller (typically a
// retained-mode UI layer) drives a [Drawer] once per frame:
//
//	d.BeginFrame()
//	d.Clear()
//	d.DrawRect(&quill.RectBlueprint{...})
//	d.DrawText(&quill.TextBlueprint{...})
//	d.DrawImage(rect, img)
//	err := d.EndFrame()
//
// The concrete Drawer lives in the render package; it talks to the GPU only
// through the gpu.Backend contract, so the same renderers run on the wgpu
// backend (backend/wgpu) and on the in-memory recording backend (recording).
//
// # Text
//
// Text is segmented into runs of one font, size and synthetic style by the
// text package. Fonts are resolved per character with a fallback chain that
// ends at a bundled font, so rendering never fails because a font is missing.
//
// # Coordinate System
//
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//   - Rect extents may be negative (flipped rectangles)
package quill

// Version is the current version of the library.
const Version = "0.1.0"
