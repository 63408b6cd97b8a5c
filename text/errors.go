package text

import (
	"errors"
	"fmt"
)

// Sentinel errors for the text package.
var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("text: empty font data")

	// ErrFaceIndex is returned when the requested face does not exist in
	// the font file.
	ErrFaceIndex = errors.New("text: face index out of range")
)

// FontLoadError reports a font that could not be loaded.
type FontLoadError struct {
	Path  string // empty for in-memory fonts
	Index int
	Err   error
}

func (e *FontLoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("text: load font (face %d): %v", e.Index, e.Err)
	}
	return fmt.Sprintf("text: load font %s (face %d): %v", e.Path, e.Index, e.Err)
}

func (e *FontLoadError) Unwrap() error {
	return e.Err
}
