package recording

import (
	"fmt"
	"maps"
	"slices"

	"github.com/gogpu/quill/gpu"
)

// Option configures a recording Backend.
type Option func(*Backend)

// WithCompileHook installs a function that runs after reflection for every
// CompileProgram call; a non-nil error fails the compile. Tests use it to
// simulate driver compile failures.
func WithCompileHook(f func(vertex, fragment string) error) Option {
	return func(b *Backend) {
		b.compileHook = f
	}
}

type program struct {
	iface    *gpu.ProgramInterface
	uniforms [][]float32
}

type buffer struct {
	components int
	data       []float32
}

type attribBinding struct {
	buf           gpu.Buffer
	offset, count int
}

// Backend is a gpu.Backend that records calls in memory.
type Backend struct {
	compileHook func(vertex, fragment string) error

	next     uint32
	programs map[gpu.Program]*program
	buffers  map[gpu.Buffer]*buffer
	textures map[gpu.Texture]*TextureState

	current  gpu.Program
	bound    gpu.Texture
	attribs  map[gpu.AttribLocation]attribBinding
	counts   [cmdCount]int
	width    int
	height   int
	inFrame  bool
	frames   int
	draws    []DrawCall
	last     []DrawCall
	clearRGB [4]float32
	closed   bool
}

var _ gpu.Backend = (*Backend)(nil)

// New creates an empty recording backend.
func New(opts ...Option) *Backend {
	b := &Backend{
		programs: make(map[gpu.Program]*program),
		buffers:  make(map[gpu.Buffer]*buffer),
		textures: make(map[gpu.Texture]*TextureState),
		attribs:  make(map[gpu.AttribLocation]attribBinding),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Backend) id() uint32 {
	b.next++
	return b.next
}

// CompileProgram implements gpu.Backend.
func (b *Backend) CompileProgram(vertex, fragment string) (gpu.Program, error) {
	b.counts[CmdCompileProgram]++
	iface, err := gpu.ReflectProgram(vertex, fragment)
	if err != nil {
		return 0, err
	}
	if b.compileHook != nil {
		if err := b.compileHook(vertex, fragment); err != nil {
			return 0, err
		}
	}
	p := gpu.Program(b.id())
	b.programs[p] = &program{iface: iface, uniforms: make([][]float32, len(iface.Uniforms))}
	return p, nil
}

// DestroyProgram implements gpu.Backend.
func (b *Backend) DestroyProgram(p gpu.Program) {
	b.counts[CmdDestroyProgram]++
	delete(b.programs, p)
	if b.current == p {
		b.current = 0
	}
}

// AttribLocation implements gpu.Backend.
func (b *Backend) AttribLocation(p gpu.Program, name string) (gpu.AttribLocation, bool) {
	prog, ok := b.programs[p]
	if !ok {
		return 0, false
	}
	a, ok := prog.iface.Attribute(name)
	return gpu.AttribLocation(a.Location), ok
}

// UniformLocation implements gpu.Backend.
func (b *Backend) UniformLocation(p gpu.Program, name string) (gpu.UniformLocation, bool) {
	prog, ok := b.programs[p]
	if !ok {
		return 0, false
	}
	i, ok := prog.iface.UniformIndex(name)
	return gpu.UniformLocation(i), ok
}

// UseProgram implements gpu.Backend.
func (b *Backend) UseProgram(p gpu.Program) {
	b.counts[CmdUseProgram]++
	if _, ok := b.programs[p]; !ok {
		panic(fmt.Sprintf("recording: UseProgram(%d): %v", p, gpu.ErrUnknownProgram))
	}
	b.current = p
}

// SetUniform implements gpu.Backend.
func (b *Backend) SetUniform(loc gpu.UniformLocation, values ...float32) {
	b.counts[CmdSetUniform]++
	prog, ok := b.programs[b.current]
	if !ok {
		panic("recording: SetUniform without a current program")
	}
	u := prog.iface.Uniforms[loc]
	if len(values) != u.Components {
		panic(fmt.Sprintf("recording: uniform %s takes %d values, got %d", u.Name, u.Components, len(values)))
	}
	prog.uniforms[loc] = slices.Clone(values)
}

// NewBuffer implements gpu.Backend.
func (b *Backend) NewBuffer(components int) gpu.Buffer {
	b.counts[CmdNewBuffer]++
	id := gpu.Buffer(b.id())
	b.buffers[id] = &buffer{components: components}
	return id
}

// SetBufferData implements gpu.Backend.
func (b *Backend) SetBufferData(buf gpu.Buffer, data []float32) {
	b.counts[CmdSetBufferData]++
	bb, ok := b.buffers[buf]
	if !ok {
		panic(fmt.Sprintf("recording: SetBufferData on unknown buffer %d", buf))
	}
	if len(data)%bb.components != 0 {
		panic(fmt.Sprintf("recording: %d floats is not a multiple of %d components", len(data), bb.components))
	}
	bb.data = slices.Clone(data)
}

// BindBuffer implements gpu.Backend.
func (b *Backend) BindBuffer(buf gpu.Buffer, loc gpu.AttribLocation, offset, count int) {
	b.counts[CmdBindBuffer]++
	if _, ok := b.buffers[buf]; !ok {
		panic(fmt.Sprintf("recording: BindBuffer on unknown buffer %d", buf))
	}
	b.attribs[loc] = attribBinding{buf: buf, offset: offset, count: count}
}

// DestroyBuffer implements gpu.Backend.
func (b *Backend) DestroyBuffer(buf gpu.Buffer) {
	b.counts[CmdDestroyBuffer]++
	delete(b.buffers, buf)
}

// CreateTexture implements gpu.Backend.
func (b *Backend) CreateTexture(w, h int, format gpu.PixelFormat, filter gpu.Filter, pixels []byte) (gpu.Texture, error) {
	b.counts[CmdCreateTexture]++
	if b.closed {
		return 0, gpu.ErrReleased
	}
	if err := gpu.CheckPixels(w, h, format, pixels); err != nil {
		return 0, err
	}
	data := make([]byte, w*h*format.BytesPerPixel())
	copy(data, pixels)
	t := gpu.Texture(b.id())
	b.textures[t] = &TextureState{Width: w, Height: h, Format: format, Filter: filter, Pixels: data}
	return t, nil
}

// UpdateTexture implements gpu.Backend.
func (b *Backend) UpdateTexture(t gpu.Texture, x, y, w, h int, pixels []byte) error {
	b.counts[CmdUpdateTexture]++
	if b.closed {
		return gpu.ErrReleased
	}
	ts, ok := b.textures[t]
	if !ok || ts.Destroyed {
		return fmt.Errorf("%w: %d", gpu.ErrUnknownTexture, t)
	}
	if x < 0 || y < 0 || x+w > ts.Width || y+h > ts.Height {
		return fmt.Errorf("%w: %dx%d at (%d,%d) in %dx%d", gpu.ErrTextureBounds, w, h, x, y, ts.Width, ts.Height)
	}
	if err := gpu.CheckPixels(w, h, ts.Format, pixels); err != nil {
		return err
	}
	bpp := ts.Format.BytesPerPixel()
	for row := 0; row < h; row++ {
		dst := ((y+row)*ts.Width + x) * bpp
		src := row * w * bpp
		copy(ts.Pixels[dst:dst+w*bpp], pixels[src:src+w*bpp])
	}
	ts.Updates++
	return nil
}

// BindTexture implements gpu.Backend.
func (b *Backend) BindTexture(t gpu.Texture) {
	b.counts[CmdBindTexture]++
	if ts, ok := b.textures[t]; !ok || ts.Destroyed {
		panic(fmt.Sprintf("recording: BindTexture(%d): %v", t, gpu.ErrUnknownTexture))
	}
	b.bound = t
}

// DestroyTexture implements gpu.Backend. Destroying a texture twice is a
// contract violation and panics.
func (b *Backend) DestroyTexture(t gpu.Texture) {
	b.counts[CmdDestroyTexture]++
	if b.closed {
		return
	}
	ts, ok := b.textures[t]
	if !ok {
		panic(fmt.Sprintf("recording: DestroyTexture(%d): %v", t, gpu.ErrUnknownTexture))
	}
	if ts.Destroyed {
		panic(fmt.Sprintf("recording: texture %d destroyed twice", t))
	}
	ts.Destroyed = true
	if b.bound == t {
		b.bound = 0
	}
}

// Draw implements gpu.Backend.
func (b *Backend) Draw(first, count int) {
	b.counts[CmdDraw]++
	prog, ok := b.programs[b.current]
	if !ok {
		panic("recording: Draw without a current program")
	}
	d := DrawCall{
		Program:    b.current,
		Texture:    b.bound,
		First:      first,
		Count:      count,
		Uniforms:   make(map[string][]float32, len(prog.uniforms)),
		Attributes: make(map[string][]float32, len(prog.iface.Attributes)),
	}
	if ts, ok := b.textures[b.bound]; ok {
		d.TextureFormat = ts.Format
	}
	for i, u := range prog.iface.Uniforms {
		if prog.uniforms[i] != nil {
			d.Uniforms[u.Name] = prog.uniforms[i]
		}
	}
	for _, a := range prog.iface.Attributes {
		bind, ok := b.attribs[gpu.AttribLocation(a.Location)]
		if !ok {
			continue
		}
		buf := b.buffers[bind.buf]
		if buf == nil {
			continue
		}
		rows := len(buf.data) / buf.components
		if first+count > rows {
			panic(fmt.Sprintf("recording: draw of %d vertices from %d exceeds %d rows", count, first, rows))
		}
		vals := make([]float32, 0, count*bind.count)
		for r := first; r < first+count; r++ {
			row := buf.data[r*buf.components : (r+1)*buf.components]
			vals = append(vals, row[bind.offset:bind.offset+bind.count]...)
		}
		d.Attributes[a.Name] = vals
	}
	b.draws = append(b.draws, d)
}

// Viewport implements gpu.Backend.
func (b *Backend) Viewport(w, h int) {
	b.counts[CmdViewport]++
	b.width, b.height = w, h
}

// Clear implements gpu.Backend.
func (b *Backend) Clear(r, g, bl, a float32) {
	b.counts[CmdClear]++
	b.clearRGB = [4]float32{r, g, bl, a}
}

// BeginFrame implements gpu.Backend.
func (b *Backend) BeginFrame() {
	b.counts[CmdBeginFrame]++
	b.inFrame = true
	b.draws = b.draws[:0]
}

// EndFrame implements gpu.Backend.
func (b *Backend) EndFrame() error {
	b.counts[CmdEndFrame]++
	if !b.inFrame {
		return gpu.ErrFrameNotStarted
	}
	b.inFrame = false
	b.frames++
	b.last = slices.Clone(b.draws)
	return nil
}

// Destroy implements gpu.Backend. Texture releases after Destroy are
// ignored.
func (b *Backend) Destroy() {
	b.closed = true
	clear(b.programs)
	clear(b.buffers)
	for _, ts := range b.textures {
		ts.Destroyed = true
	}
	b.current, b.bound = 0, 0
}

// Draws returns the draw calls of the frame in progress, or of the last
// completed frame when no frame is in progress.
func (b *Backend) Draws() []DrawCall {
	if b.inFrame {
		return b.draws
	}
	return b.last
}

// Count returns how many times a call was made.
func (b *Backend) Count(c CommandType) int {
	return b.counts[c]
}

// Frames returns the number of completed frames.
func (b *Backend) Frames() int {
	return b.frames
}

// Texture returns the recorded state of t.
func (b *Backend) Texture(t gpu.Texture) (*TextureState, bool) {
	ts, ok := b.textures[t]
	return ts, ok
}

// LiveTextures returns the handles of textures that are not destroyed,
// sorted ascending.
func (b *Backend) LiveTextures() []gpu.Texture {
	var out []gpu.Texture
	for _, t := range slices.Sorted(maps.Keys(b.textures)) {
		if !b.textures[t].Destroyed {
			out = append(out, t)
		}
	}
	return out
}

// ViewportSize returns the size set by the last Viewport call.
func (b *Backend) ViewportSize() (w, h int) {
	return b.width, b.height
}

// ClearColor returns the colour of the last Clear call.
func (b *Backend) ClearColor() [4]float32 {
	return b.clearRGB
}
