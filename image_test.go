package quill

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/gogpu/quill/gpu"
	"github.com/gogpu/quill/recording"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(2, 1, color.NRGBA{B: 255, A: 128})
	return img
}

func TestNewImageSource(t *testing.T) {
	b := recording.New()
	src, err := NewImageSource(b, 2, 1, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	if err != nil {
		t.Fatal(err)
	}
	if src.Width() != 2 || src.Height() != 1 {
		t.Errorf("size = %dx%d", src.Width(), src.Height())
	}
	ts, ok := b.Texture(src.Texture())
	if !ok || ts.Format != gpu.RGBA8 || ts.Filter != gpu.Nearest {
		t.Fatalf("texture state = %+v", ts)
	}
	if got := ts.At(1, 0); !bytes.Equal(got, []byte{5, 6, 7, 8}) {
		t.Errorf("pixel (1,0) = %v", got)
	}
}

func TestNewImageSourceErrors(t *testing.T) {
	b := recording.New()
	tests := []struct {
		name string
		w, h int
		pix  []byte
		want error
	}{
		{"zero width", 0, 1, nil, ErrImageSize},
		{"negative height", 1, -1, nil, ErrImageSize},
		{"short pixels", 2, 2, make([]byte, 15), gpu.ErrPixelData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewImageSource(b, tt.w, tt.h, tt.pix); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeImage(t *testing.T) {
	encoders := []struct {
		name   string
		encode func(*bytes.Buffer, image.Image) error
	}{
		{"png", func(w *bytes.Buffer, m image.Image) error { return png.Encode(w, m) }},
		{"bmp", func(w *bytes.Buffer, m image.Image) error { return bmp.Encode(w, m) }},
	}
	for _, enc := range encoders {
		t.Run(enc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := enc.encode(&buf, testImage()); err != nil {
				t.Fatal(err)
			}
			b := recording.New()
			src, err := DecodeImage(b, &buf)
			if err != nil {
				t.Fatal(err)
			}
			if src.Width() != 3 || src.Height() != 2 {
				t.Fatalf("size = %dx%d", src.Width(), src.Height())
			}
			ts, _ := b.Texture(src.Texture())
			if got := ts.At(0, 0); !bytes.Equal(got, []byte{255, 0, 0, 255}) {
				t.Errorf("pixel (0,0) = %v", got)
			}
		})
	}
}

func TestDecodeImageGarbage(t *testing.T) {
	if _, err := DecodeImage(recording.New(), bytes.NewReader([]byte("not an image"))); err == nil {
		t.Error("DecodeImage accepted garbage")
	}
}

func TestNewImageSourceFromSubImage(t *testing.T) {
	b := recording.New()
	sub := testImage().SubImage(image.Rect(2, 1, 3, 2))
	src, err := NewImageSourceFrom(b, sub)
	if err != nil {
		t.Fatal(err)
	}
	ts, _ := b.Texture(src.Texture())
	if got := ts.At(0, 0); !bytes.Equal(got, []byte{0, 0, 255, 128}) {
		t.Errorf("pixel = %v", got)
	}
}

func TestImageSourceCloseOnce(t *testing.T) {
	b := recording.New()
	src, err := NewImageSource(b, 1, 1, make([]byte, 4))
	if err != nil {
		t.Fatal(err)
	}
	tex := src.Texture()
	for range 3 {
		if err := src.Close(); err != nil {
			t.Fatal(err)
		}
	}
	if n := b.Count(recording.CmdDestroyTexture); n != 1 {
		t.Errorf("DestroyTexture called %d times, want 1", n)
	}
	if ts, _ := b.Texture(tex); !ts.Destroyed {
		t.Error("texture not destroyed")
	}
	if src.Texture() != 0 {
		t.Error("Texture() after Close is not zero")
	}
}
