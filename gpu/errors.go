package gpu

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by backends.
var (
	// ErrUnknownProgram is returned for a program handle the backend does
	// not know.
	ErrUnknownProgram = errors.New("gpu: unknown program")

	// ErrUnknownTexture is returned for a released or foreign texture.
	ErrUnknownTexture = errors.New("gpu: unknown texture")

	// ErrTextureBounds is returned when an update does not fit the texture.
	ErrTextureBounds = errors.New("gpu: update outside texture bounds")

	// ErrPixelData is returned when the pixel slice does not match the
	// declared dimensions and format.
	ErrPixelData = errors.New("gpu: pixel data size mismatch")

	// ErrFrameNotStarted is returned by EndFrame without BeginFrame.
	ErrFrameNotStarted = errors.New("gpu: frame not started")

	// ErrReleased is returned by a backend after Destroy.
	ErrReleased = errors.New("gpu: backend released")
)

// ShaderStage names the shader source a diagnostic refers to.
type ShaderStage string

// Shader stages.
const (
	StageVertex   ShaderStage = "vertex"
	StageFragment ShaderStage = "fragment"
	StageLink     ShaderStage = "link"
)

// ShaderCompileError reports a shader that failed to compile or link.
// Log carries the diagnostic text from the compiler.
type ShaderCompileError struct {
	Stage ShaderStage
	Log   string
	Err   error
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("gpu: could not compile %s shader: %s", e.Stage, e.Log)
}

func (e *ShaderCompileError) Unwrap() error {
	return e.Err
}

// CheckPixels verifies that pixels holds exactly w×h pixels of format f.
func CheckPixels(w, h int, f PixelFormat, pixels []byte) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrPixelData, w, h)
	}
	if pixels == nil {
		return nil
	}
	if want := w * h * f.BytesPerPixel(); len(pixels) != want {
		return fmt.Errorf("%w: got %d bytes, want %d for %dx%d %s", ErrPixelData, len(pixels), want, w, h, f)
	}
	return nil
}
