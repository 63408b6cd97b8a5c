// Command quilldemo draws a bordered panel with a line of text and reports
// what reached the backend.
//
// By default the frames go to the recording backend. With --gpu they are
// rendered offscreen on a Vulkan device and --output saves the last frame.
package main

import (
	"fmt"
	"image/png"
	"log/slog"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/gogpu/quill"
	"github.com/gogpu/quill/backend/wgpu"
	"github.com/gogpu/quill/gpu"
	"github.com/gogpu/quill/recording"
	"github.com/gogpu/quill/render"
	"github.com/gogpu/quill/text"
)

type options struct {
	Width   int     `long:"width" default:"1280" description:"viewport width in physical pixels"`
	Height  int     `long:"height" default:"720" description:"viewport height in physical pixels"`
	DPI     float32 `long:"dpi" default:"1" description:"display scale factor"`
	Text    string  `long:"text" default:"Hello world!" description:"text to draw"`
	Size    float32 `long:"size" default:"100" description:"font size in logical pixels"`
	Italic  bool    `long:"italic" description:"request an italic face"`
	Bold    bool    `long:"bold" description:"request a bold face"`
	Direct  bool    `long:"direct" description:"upload every glyph on its own instead of using the glyph cache"`
	Frames  int     `long:"frames" default:"3" description:"number of frames to draw"`
	GPU     bool    `long:"gpu" description:"render on a Vulkan device instead of recording"`
	Output  string  `long:"output" description:"PNG file for the last frame (requires --gpu)"`
	Verbose bool    `long:"verbose" short:"v" description:"log frame details"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}
	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "quilldemo:", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if opts.Verbose {
		quill.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	var (
		backend gpu.Backend
		device  *wgpu.Backend
		rec     *recording.Backend
	)
	if opts.GPU {
		b, err := wgpu.Open()
		if err != nil {
			return err
		}
		fmt.Println("device:", b.Info())
		device, backend = b, b
	} else {
		rec = recording.New()
		backend = rec
	}
	defer backend.Destroy()

	r, err := render.New(backend,
		render.WithGlyphCache(!opts.Direct),
		render.WithClearColor(0x1e1e2e))
	if err != nil {
		return err
	}
	defer r.Close()
	r.Resize(opts.Width, opts.Height, opts.DPI)

	style := text.Style{Bold: opts.Bold}
	if opts.Italic {
		style.Slant = text.SlantItalic
	}
	txt := text.NewText(opts.Text)

	w := float32(opts.Width) / opts.DPI
	h := float32(opts.Height) / opts.DPI
	for i := range opts.Frames {
		r.BeginFrame()
		r.Clear()
		r.DrawRect(&quill.RectBlueprint{
			Rect:         quill.NewRect(w/2-200, h/2-200, 400, 400),
			Color:        0x2a2939,
			BorderColor:  0xff84c6,
			BorderWidth:  4,
			CornerRadius: 10,
			Borders:      quill.AllBorders,
			Alpha:        1,
		})
		r.DrawText(&quill.TextBlueprint{
			Text:  txt,
			Size:  opts.Size,
			X:     20,
			Y:     h/2 - 300,
			Color: 0xffffff,
			Alpha: 1,
			Style: style,
		})
		if err := r.EndFrame(); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}

	st := r.LastFrame()
	fmt.Printf("last frame: %d rects, %d texts, %d images\n", st.Rects, st.Texts, st.Images)
	if segs, ok := txt.Segments(); ok {
		for _, seg := range segs {
			fmt.Printf("segment %q: %s bold=%t italic=%t\n",
				seg.Text(txt.String()), seg.Font, seg.ForceBold, seg.ForceItalic)
		}
	}
	if rec != nil {
		fmt.Printf("draw calls: %d over %d frames, live textures: %d\n",
			rec.Count(recording.CmdDraw), rec.Frames(), len(rec.LiveTextures()))
	}
	if c := r.GlyphCache(); c != nil {
		cs := c.Stats()
		fmt.Printf("glyph cache: mask %dx%d (%d glyphs, %d grows), color %dx%d (%d glyphs)\n",
			cs.Mask.Dimension, cs.Mask.Dimension, cs.Mask.Packed, cs.Mask.Grows,
			cs.Color.Dimension, cs.Color.Dimension, cs.Color.Packed)
	}

	if opts.Output == "" {
		return nil
	}
	if device == nil {
		return fmt.Errorf("--output requires --gpu")
	}
	f, err := os.Create(opts.Output)
	if err != nil {
		return err
	}
	if err := png.Encode(f, device.Image()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
