// Package gpu defines the graphics backend contract that quill's renderers
// are written against.
//
// A Backend is an explicit context value: every renderer receives the
// backend it draws with, so several independent renderers (or a GPU and a
// recording backend side by side) can coexist in one process. The contract
// is deliberately small and stateful in the style of a classic immediate
// GPU API: compile a program, look up attribute and uniform locations, bind
// buffers and textures, set uniforms and issue draw calls.
//
// Shaders are written in WGSL. A program is a pair of sources: the vertex
// source must define `vs_main`, the fragment source `fs_main`. Both declare
// the same `Uniforms` struct bound at @group(0) @binding(0); textures sit at
// binding 1 and the sampler at binding 2. [ReflectProgram] extracts the
// vertex inputs and the uniform layout from the sources.
package gpu

// Program identifies a compiled shader program. The zero value is invalid.
type Program uint32

// Buffer identifies a vertex buffer. The zero value is invalid.
type Buffer uint32

// Texture identifies a 2D texture. The zero value is invalid.
type Texture uint32

// AttribLocation is the location of a vertex input within a program.
type AttribLocation int

// UniformLocation is the index of a uniform field within a program.
type UniformLocation int

// PixelFormat is the layout of texture pixels.
type PixelFormat int

const (
	// R8 stores one coverage byte per pixel (glyph masks).
	R8 PixelFormat = iota
	// RGBA8 stores four bytes per pixel, straight alpha.
	RGBA8
)

// BytesPerPixel returns the size of one pixel in f.
func (f PixelFormat) BytesPerPixel() int {
	if f == R8 {
		return 1
	}
	return 4
}

func (f PixelFormat) String() string {
	switch f {
	case R8:
		return "R8"
	case RGBA8:
		return "RGBA8"
	}
	return "PixelFormat(?)"
}

// Filter selects texture sampling.
type Filter int

const (
	// Nearest picks the closest texel. Used for glyphs and images so that
	// pixel-aligned bitmaps stay crisp.
	Nearest Filter = iota
	// Linear interpolates between texels.
	Linear
)

// Backend is the graphics command layer consumed by the renderers.
//
// Backends are not safe for concurrent use; a frame is built on one
// goroutine between BeginFrame and EndFrame.
type Backend interface {
	// CompileProgram compiles a vertex and a fragment source into a program.
	// Compile and link failures are reported as *ShaderCompileError.
	CompileProgram(vertex, fragment string) (Program, error)
	// DestroyProgram releases a program.
	DestroyProgram(p Program)
	// AttribLocation returns the location of a vertex input by name.
	AttribLocation(p Program, name string) (AttribLocation, bool)
	// UniformLocation returns the location of a uniform field by name.
	UniformLocation(p Program, name string) (UniformLocation, bool)
	// UseProgram makes p current for subsequent uniform and draw calls.
	UseProgram(p Program)
	// SetUniform sets a uniform of the current program. The number of
	// values must match the field type (1, 2, 4 or 16 floats).
	SetUniform(loc UniformLocation, values ...float32)

	// NewBuffer creates a vertex buffer whose rows hold the given number of
	// float components.
	NewBuffer(components int) Buffer
	// SetBufferData replaces the contents of b. len(data) must be a multiple
	// of the buffer's component count.
	SetBufferData(b Buffer, data []float32)
	// BindBuffer feeds count components, starting at component offset of
	// each row of b, into the attribute at loc.
	BindBuffer(b Buffer, loc AttribLocation, offset, count int)
	// DestroyBuffer releases b.
	DestroyBuffer(b Buffer)

	// CreateTexture creates a w×h texture. pixels may be nil for an
	// uninitialised texture.
	CreateTexture(w, h int, format PixelFormat, filter Filter, pixels []byte) (Texture, error)
	// UpdateTexture overwrites a sub-rectangle of t.
	UpdateTexture(t Texture, x, y, w, h int, pixels []byte) error
	// BindTexture makes t the texture sampled by subsequent draws.
	BindTexture(t Texture)
	// DestroyTexture releases t. Draws already recorded in the current frame
	// still see the texture.
	DestroyTexture(t Texture)

	// Draw renders count vertices as a triangle list starting at first.
	Draw(first, count int)
	// Viewport sets the framebuffer size in pixels.
	Viewport(w, h int)
	// Clear clears the framebuffer to the given straight-alpha colour.
	Clear(r, g, b, a float32)

	// BeginFrame starts recording a frame.
	BeginFrame()
	// EndFrame submits the frame.
	EndFrame() error
	// Destroy releases every resource owned by the backend.
	Destroy()
}
