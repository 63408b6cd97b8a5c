package wgpu

import (
	"fmt"
	"image"
	"log/slog"
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/quill/gpu"
)

type program struct {
	iface    *gpu.ProgramInterface
	vs, fs   hal.ShaderModule
	layout   hal.PipelineLayout
	pipeline hal.RenderPipeline
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

type texture struct {
	width, height int
	format        gpu.PixelFormat
	filter        gpu.Filter
	tex           hal.Texture
	view          hal.TextureView
}

// drawCmd is a recorded draw. Offsets point into the frame arenas.
type drawCmd struct {
	prog          *program
	tex           *texture
	vertexOffset  int
	vertexCount   int
	uniformOffset int
}

// Backend is a gpu.Backend on a gogpu/wgpu HAL device.
//
// Thread Safety: Backend is NOT thread-safe.
type Backend struct {
	device   hal.Device
	queue    hal.Queue
	instance hal.Instance
	owned    bool
	info     GPUInfo
	opts     options

	bindLayout hal.BindGroupLayout
	samplers   [2]hal.Sampler // indexed by gpu.Filter
	white      *texture

	programs map[gpu.Program]*program
	buffers  map[gpu.Buffer]*buffer
	textures map[gpu.Texture]*texture
	attribs  map[gpu.AttribLocation]attribBinding
	current  gpu.Program
	bound    gpu.Texture
	nextID   uint32

	width, height int
	target        *texture

	inFrame   bool
	clear     *gputypes.Color
	draws     []drawCmd
	vertices  []byte
	uniforms  []byte
	graveyard  []*texture
	graveProgs []*program
	last       *image.RGBA

	closed bool
}

var _ gpu.Backend = (*Backend)(nil)

// NewWithDevice creates a backend on an existing device and queue, which
// stay owned by the caller.
func NewWithDevice(device hal.Device, queue hal.Queue, opts ...Option) (*Backend, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.format != gputypes.TextureFormatRGBA8Unorm && o.format != gputypes.TextureFormatBGRA8Unorm {
		return nil, fmt.Errorf("wgpu: unsupported target format %v", o.format)
	}
	b := &Backend{
		device:   device,
		queue:    queue,
		opts:     o,
		programs: make(map[gpu.Program]*program),
		buffers:  make(map[gpu.Buffer]*buffer),
		textures: make(map[gpu.Texture]*texture),
		attribs:  make(map[gpu.AttribLocation]attribBinding),
	}
	if err := b.init(); err != nil {
		b.releaseShared()
		return nil, err
	}
	return b, nil
}

// init creates the objects shared by every program: the bind group layout
// (uniforms, texture, sampler), the samplers and a 1×1 white texture bound
// when a draw has no texture.
func (b *Backend) init() error {
	layout, err := b.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "quill_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create bind group layout: %w", err)
	}
	b.bindLayout = layout

	for _, f := range []gpu.Filter{gpu.Nearest, gpu.Linear} {
		mode := filterMode(f)
		s, err := b.device.CreateSampler(&hal.SamplerDescriptor{
			Label:        "quill_sampler_" + fmt.Sprint(f),
			AddressModeU: gputypes.AddressModeClampToEdge,
			AddressModeV: gputypes.AddressModeClampToEdge,
			AddressModeW: gputypes.AddressModeClampToEdge,
			MagFilter:    mode,
			MinFilter:    mode,
			MipmapFilter: mode,
		})
		if err != nil {
			return fmt.Errorf("wgpu: create sampler: %w", err)
		}
		b.samplers[f] = s
	}

	b.white, err = b.newTexture(1, 1, gpu.RGBA8, gpu.Nearest, []byte{255, 255, 255, 255})
	return err
}

// SetLogger implements the logger hook used by quill.PropagateLogger.
func (b *Backend) SetLogger(l *slog.Logger) { SetLogger(l) }

// Info describes the adapter of a backend created by Open. It is zero for
// shared devices.
func (b *Backend) Info() GPUInfo { return b.info }

func (b *Backend) id() uint32 {
	b.nextID++
	return b.nextID
}

// compileStage compiles one WGSL source to SPIR-V words.
func compileStage(stage gpu.ShaderStage, src string) ([]uint32, error) {
	spirv, err := naga.Compile(src)
	if err != nil {
		return nil, &gpu.ShaderCompileError{Stage: stage, Log: err.Error(), Err: err}
	}
	return spirvWords(spirv), nil
}

func (b *Backend) shaderModule(stage gpu.ShaderStage, src string) (hal.ShaderModule, error) {
	code, err := compileStage(stage, src)
	if err != nil {
		return nil, err
	}
	m, err := b.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "quill_" + string(stage),
		Source: hal.ShaderSource{SPIRV: code},
	})
	if err != nil {
		return nil, &gpu.ShaderCompileError{Stage: stage, Log: err.Error(), Err: err}
	}
	return m, nil
}

var alphaBlend = gputypes.BlendState{
	Color: gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorSrcAlpha,
		DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
		Operation: gputypes.BlendOperationAdd,
	},
	Alpha: gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorOne,
		DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
		Operation: gputypes.BlendOperationAdd,
	},
}

// CompileProgram implements gpu.Backend.
func (b *Backend) CompileProgram(vertex, fragment string) (gpu.Program, error) {
	if b.closed {
		return 0, gpu.ErrReleased
	}
	iface, err := gpu.ReflectProgram(vertex, fragment)
	if err != nil {
		return 0, err
	}
	p := &program{iface: iface, uniforms: make([][]float32, len(iface.Uniforms))}
	if err := b.createPipeline(p, vertex, fragment); err != nil {
		b.destroyProgram(p)
		return 0, err
	}
	id := gpu.Program(b.id())
	b.programs[id] = p
	return id, nil
}

func (b *Backend) createPipeline(p *program, vertex, fragment string) error {
	var err error
	if p.vs, err = b.shaderModule(gpu.StageVertex, vertex); err != nil {
		return err
	}
	if p.fs, err = b.shaderModule(gpu.StageFragment, fragment); err != nil {
		return err
	}
	p.layout, err = b.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "quill_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{b.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}
	blend := alphaBlend
	p.pipeline, err = b.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "quill_pipeline",
		Layout: p.layout,
		Vertex: hal.VertexState{
			Module:     p.vs,
			EntryPoint: gpu.VertexEntryPoint,
			Buffers:    vertexLayout(p.iface.Attributes),
		},
		Fragment: &hal.FragmentState{
			Module:     p.fs,
			EntryPoint: gpu.FragmentEntryPoint,
			Targets: []gputypes.ColorTargetState{{
				Format:    b.opts.format,
				Blend:     &blend,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return &gpu.ShaderCompileError{Stage: gpu.StageLink, Log: err.Error(), Err: err}
	}
	return nil
}

func (b *Backend) destroyProgram(p *program) {
	if p.pipeline != nil {
		b.device.DestroyRenderPipeline(p.pipeline)
	}
	if p.layout != nil {
		b.device.DestroyPipelineLayout(p.layout)
	}
	if p.fs != nil {
		b.device.DestroyShaderModule(p.fs)
	}
	if p.vs != nil {
		b.device.DestroyShaderModule(p.vs)
	}
}

// DestroyProgram implements gpu.Backend. Draws already recorded keep the
// pipeline until the frame is submitted.
func (b *Backend) DestroyProgram(id gpu.Program) {
	p, ok := b.programs[id]
	if !ok || b.closed {
		return
	}
	delete(b.programs, id)
	if b.current == id {
		b.current = 0
	}
	if b.inFrame && slices.ContainsFunc(b.draws, func(d drawCmd) bool { return d.prog == p }) {
		b.graveProgs = append(b.graveProgs, p)
		return
	}
	b.destroyProgram(p)
}

// AttribLocation implements gpu.Backend.
func (b *Backend) AttribLocation(id gpu.Program, name string) (gpu.AttribLocation, bool) {
	p, ok := b.programs[id]
	if !ok {
		return 0, false
	}
	a, ok := p.iface.Attribute(name)
	return gpu.AttribLocation(a.Location), ok
}

// UniformLocation implements gpu.Backend.
func (b *Backend) UniformLocation(id gpu.Program, name string) (gpu.UniformLocation, bool) {
	p, ok := b.programs[id]
	if !ok {
		return 0, false
	}
	i, ok := p.iface.UniformIndex(name)
	return gpu.UniformLocation(i), ok
}

// UseProgram implements gpu.Backend.
func (b *Backend) UseProgram(id gpu.Program) {
	b.current = id
}

// SetUniform implements gpu.Backend.
func (b *Backend) SetUniform(loc gpu.UniformLocation, values ...float32) {
	p, ok := b.programs[b.current]
	if !ok || int(loc) < 0 || int(loc) >= len(p.uniforms) {
		logger().Warn("wgpu: uniform set without a matching program", "location", loc)
		return
	}
	p.uniforms[loc] = append(p.uniforms[loc][:0], values...)
}

// NewBuffer implements gpu.Backend.
func (b *Backend) NewBuffer(components int) gpu.Buffer {
	id := gpu.Buffer(b.id())
	b.buffers[id] = &buffer{components: max(components, 1)}
	return id
}

// SetBufferData implements gpu.Backend. Vertex data stays on the CPU until
// a draw snapshots it.
func (b *Backend) SetBufferData(id gpu.Buffer, data []float32) {
	if buf, ok := b.buffers[id]; ok {
		buf.data = append(buf.data[:0], data...)
	}
}

// BindBuffer implements gpu.Backend.
func (b *Backend) BindBuffer(id gpu.Buffer, loc gpu.AttribLocation, offset, count int) {
	b.attribs[loc] = attribBinding{buf: id, offset: offset, count: count}
}

// DestroyBuffer implements gpu.Backend.
func (b *Backend) DestroyBuffer(id gpu.Buffer) {
	delete(b.buffers, id)
}

func (b *Backend) newTexture(w, h int, format gpu.PixelFormat, filter gpu.Filter, pixels []byte) (*texture, error) {
	tf := textureFormat(format)
	tex, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "quill_texture",
		Size:          hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        tf,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture: %w", err)
	}
	view, err := b.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "quill_texture_view",
		Format:        tf,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		b.device.DestroyTexture(tex)
		return nil, fmt.Errorf("wgpu: create texture view: %w", err)
	}
	t := &texture{width: w, height: h, format: format, filter: filter, tex: tex, view: view}
	if pixels != nil {
		b.write(t, 0, 0, w, h, pixels)
	}
	return t, nil
}

func (b *Backend) write(t *texture, x, y, w, h int, pixels []byte) {
	bpp := t.format.BytesPerPixel()
	b.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: uint32(x), Y: uint32(y)},
		},
		pixels,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(w * bpp),
			RowsPerImage: uint32(h),
		},
		&hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
	)
}

func (b *Backend) destroyTexture(t *texture) {
	b.device.DestroyTextureView(t.view)
	b.device.DestroyTexture(t.tex)
}

// CreateTexture implements gpu.Backend.
func (b *Backend) CreateTexture(w, h int, format gpu.PixelFormat, filter gpu.Filter, pixels []byte) (gpu.Texture, error) {
	if b.closed {
		return 0, gpu.ErrReleased
	}
	if err := gpu.CheckPixels(w, h, format, pixels); err != nil {
		return 0, err
	}
	t, err := b.newTexture(w, h, format, filter, pixels)
	if err != nil {
		return 0, err
	}
	id := gpu.Texture(b.id())
	b.textures[id] = t
	return id, nil
}

// UpdateTexture implements gpu.Backend. The upload is queued immediately,
// ahead of the frame's draws.
func (b *Backend) UpdateTexture(id gpu.Texture, x, y, w, h int, pixels []byte) error {
	if b.closed {
		return gpu.ErrReleased
	}
	t, ok := b.textures[id]
	if !ok {
		return fmt.Errorf("%w: %d", gpu.ErrUnknownTexture, id)
	}
	if x < 0 || y < 0 || x+w > t.width || y+h > t.height {
		return fmt.Errorf("%w: %dx%d at (%d,%d) in %dx%d", gpu.ErrTextureBounds, w, h, x, y, t.width, t.height)
	}
	if err := gpu.CheckPixels(w, h, t.format, pixels); err != nil {
		return err
	}
	b.write(t, x, y, w, h, pixels)
	return nil
}

// BindTexture implements gpu.Backend. Unknown textures unbind.
func (b *Backend) BindTexture(id gpu.Texture) {
	if _, ok := b.textures[id]; !ok {
		logger().Warn("wgpu: bind of unknown texture", "texture", id)
		id = 0
	}
	b.bound = id
}

// DestroyTexture implements gpu.Backend.
func (b *Backend) DestroyTexture(id gpu.Texture) {
	if b.closed {
		return
	}
	t, ok := b.textures[id]
	if !ok {
		logger().Warn("wgpu: release of unknown texture", "texture", id)
		return
	}
	delete(b.textures, id)
	if b.bound == id {
		b.bound = 0
	}
	if b.inFrame {
		b.graveyard = append(b.graveyard, t)
		return
	}
	b.destroyTexture(t)
}

// Draw implements gpu.Backend. The vertex rows and uniform values are
// copied, so buffers and uniforms may change before the next draw.
func (b *Backend) Draw(first, count int) {
	if !b.inFrame {
		logger().Warn("wgpu: draw outside a frame")
		return
	}
	p, ok := b.programs[b.current]
	if !ok {
		logger().Warn("wgpu: draw without a program")
		return
	}
	if count <= 0 {
		return
	}

	attrs := p.iface.Attributes
	sources := make([]vertexSource, len(attrs))
	for i, a := range attrs {
		bind, ok := b.attribs[gpu.AttribLocation(a.Location)]
		if !ok {
			continue
		}
		if buf, ok := b.buffers[bind.buf]; ok {
			sources[i] = vertexSource{data: buf.data, components: buf.components, offset: bind.offset, count: bind.count}
		}
	}
	vertexOffset := len(b.vertices)
	var err error
	b.vertices, err = gatherVertices(b.vertices, attrs, sources, first, count)
	if err != nil {
		b.vertices = b.vertices[:vertexOffset]
		logger().Warn("wgpu: draw dropped", "err", err)
		return
	}

	uniformOffset := alignUp(len(b.uniforms), uniformAlignment)
	b.uniforms = append(b.uniforms, make([]byte, uniformOffset-len(b.uniforms))...)
	b.uniforms = packUniforms(b.uniforms, p.iface, p.uniforms)

	tex := b.white
	if t, ok := b.textures[b.bound]; ok {
		tex = t
	}
	b.draws = append(b.draws, drawCmd{
		prog:          p,
		tex:           tex,
		vertexOffset:  vertexOffset,
		vertexCount:   count,
		uniformOffset: uniformOffset,
	})
}

// Viewport implements gpu.Backend. It resizes the render target.
func (b *Backend) Viewport(w, h int) {
	if b.closed || w <= 0 || h <= 0 || (w == b.width && h == b.height && b.target != nil) {
		return
	}
	if err := b.resizeTarget(w, h); err != nil {
		logger().Warn("wgpu: resize render target", "err", err)
	}
}

func (b *Backend) resizeTarget(w, h int) error {
	tex, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "quill_target",
		Size:          hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        b.opts.format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return err
	}
	view, err := b.device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: "quill_target_view"})
	if err != nil {
		b.device.DestroyTexture(tex)
		return err
	}
	if b.target != nil {
		if b.inFrame {
			b.graveyard = append(b.graveyard, b.target)
		} else {
			b.destroyTexture(b.target)
		}
	}
	b.target = &texture{width: w, height: h, format: gpu.RGBA8, tex: tex, view: view}
	b.width, b.height = w, h
	return nil
}

// Clear implements gpu.Backend. The target is cleared when the frame's
// render pass begins; without Clear it keeps the previous frame.
func (b *Backend) Clear(r, g, bl, a float32) {
	b.clear = &gputypes.Color{R: float64(r), G: float64(g), B: float64(bl), A: float64(a)}
}

// BeginFrame implements gpu.Backend.
func (b *Backend) BeginFrame() {
	b.inFrame = true
	b.clear = nil
	b.draws = b.draws[:0]
	b.vertices = b.vertices[:0]
	b.uniforms = b.uniforms[:0]
}

// EndFrame implements gpu.Backend. It submits the recorded draws, waits
// for the GPU and reads the target back.
func (b *Backend) EndFrame() error {
	if b.closed {
		return gpu.ErrReleased
	}
	if !b.inFrame {
		return gpu.ErrFrameNotStarted
	}
	b.inFrame = false
	defer b.bury()
	if b.target == nil {
		return nil
	}
	return b.submit()
}

// bury releases the textures and programs destroyed during the frame.
func (b *Backend) bury() {
	for _, t := range b.graveyard {
		b.destroyTexture(t)
	}
	for _, p := range b.graveProgs {
		b.destroyProgram(p)
	}
	clear(b.graveyard)
	clear(b.graveProgs)
	b.graveyard = b.graveyard[:0]
	b.graveProgs = b.graveProgs[:0]
}

// Image returns a copy of the last frame read back from the target, or nil
// before the first frame.
func (b *Backend) Image() *image.RGBA {
	if b.last == nil {
		return nil
	}
	img := *b.last
	img.Pix = slices.Clone(b.last.Pix)
	return &img
}

// Destroy implements gpu.Backend. Texture releases after Destroy are
// ignored.
func (b *Backend) Destroy() {
	if b.closed {
		return
	}
	b.closed = true
	b.bury()
	for id, p := range b.programs {
		b.destroyProgram(p)
		delete(b.programs, id)
	}
	for id, t := range b.textures {
		b.destroyTexture(t)
		delete(b.textures, id)
	}
	if b.target != nil {
		b.destroyTexture(b.target)
		b.target = nil
	}
	b.releaseShared()
	if b.owned {
		b.device.Destroy()
		if b.instance != nil {
			b.instance.Destroy()
		}
	}
	b.device, b.queue = nil, nil
}

func (b *Backend) releaseShared() {
	if b.white != nil {
		b.destroyTexture(b.white)
		b.white = nil
	}
	for i, s := range b.samplers {
		if s != nil {
			b.device.DestroySampler(s)
			b.samplers[i] = nil
		}
	}
	if b.bindLayout != nil {
		b.device.DestroyBindGroupLayout(b.bindLayout)
		b.bindLayout = nil
	}
}
