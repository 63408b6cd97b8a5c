package quill

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"sync"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"golang.org/x/image/draw"

	"github.com/gogpu/quill/gpu"
)

// ErrImageSize is returned for images with a zero or negative dimension.
var ErrImageSize = errors.New("quill: invalid image size")

// ImageSource is a bitmap uploaded to a GPU texture. The texture is
// released by Close, exactly once.
type ImageSource struct {
	backend gpu.Backend
	width   int
	height  int

	mu       sync.Mutex
	tex      gpu.Texture
	released bool
}

// NewImageSource uploads w×h straight-alpha RGBA pixels.
func NewImageSource(b gpu.Backend, w, h int, rgba []byte) (*ImageSource, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageSize, w, h)
	}
	if len(rgba) != w*h*4 {
		return nil, fmt.Errorf("%w: got %d bytes for %dx%d RGBA", gpu.ErrPixelData, len(rgba), w, h)
	}
	tex, err := b.CreateTexture(w, h, gpu.RGBA8, gpu.Nearest, rgba)
	if err != nil {
		return nil, fmt.Errorf("quill: upload image: %w", err)
	}
	return &ImageSource{backend: b, width: w, height: h, tex: tex}, nil
}

// NewImageSourceFrom uploads any image, converting it to straight RGBA.
func NewImageSourceFrom(b gpu.Backend, img image.Image) (*ImageSource, error) {
	bounds := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)
	}
	return NewImageSource(b, bounds.Dx(), bounds.Dy(), nrgba.Pix)
}

// DecodeImage decodes a PNG, JPEG, GIF, BMP, TIFF or WebP image from r and
// uploads it.
func DecodeImage(b gpu.Backend, r io.Reader) (*ImageSource, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("quill: decode image: %w", err)
	}
	src, err := NewImageSourceFrom(b, img)
	if err != nil {
		return nil, fmt.Errorf("quill: %s image: %w", format, err)
	}
	return src, nil
}

// Width returns the width in pixels.
func (s *ImageSource) Width() int { return s.width }

// Height returns the height in pixels.
func (s *ImageSource) Height() int { return s.height }

// Texture returns the texture handle, or zero once the source is closed.
func (s *ImageSource) Texture() gpu.Texture {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tex
}

// Close releases the texture. Calls after the first do nothing.
func (s *ImageSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return nil
	}
	s.released = true
	s.backend.DestroyTexture(s.tex)
	s.tex = 0
	return nil
}
