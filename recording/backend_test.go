package recording

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/quill/gpu"
)

const vs = `
struct Uniforms {
    col: vec4<f32>,
    pos: vec2<f32>,
}
@group(0) @binding(0) var<uniform> u: Uniforms;

struct VertexInput {
    @location(0) vertex: vec2<f32>,
    @location(1) tex_coord: vec2<f32>,
}

@vertex
fn vs_main(in: VertexInput) -> @builtin(position) vec4<f32> {
    return vec4<f32>(in.vertex + u.pos, 0.0, 1.0);
}
`

const fs = `
struct Uniforms {
    col: vec4<f32>,
    pos: vec2<f32>,
}
@group(0) @binding(0) var<uniform> u: Uniforms;

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return u.col;
}
`

func TestBackendDrawSnapshot(t *testing.T) {
	b := New()
	p, err := b.CompileProgram(vs, fs)
	if err != nil {
		t.Fatalf("CompileProgram: %v", err)
	}
	vloc, ok := b.AttribLocation(p, "vertex")
	if !ok {
		t.Fatal("vertex attribute not found")
	}
	tloc, _ := b.AttribLocation(p, "tex_coord")
	col, ok := b.UniformLocation(p, "col")
	if !ok {
		t.Fatal("col uniform not found")
	}

	buf := b.NewBuffer(4)
	b.SetBufferData(buf, []float32{
		0, 0, 10, 20,
		1, 0, 11, 21,
		1, 1, 12, 22,
	})

	b.BeginFrame()
	b.UseProgram(p)
	b.BindBuffer(buf, vloc, 0, 2)
	b.BindBuffer(buf, tloc, 2, 2)
	b.SetUniform(col, 1, 0, 0, 1)
	b.Draw(1, 2)
	if err := b.EndFrame(); err != nil {
		t.Fatalf("EndFrame: %v", err)
	}

	draws := b.Draws()
	if len(draws) != 1 {
		t.Fatalf("got %d draws, want 1", len(draws))
	}
	d := draws[0]
	if !slices.Equal(d.Attributes["vertex"], []float32{1, 0, 1, 1}) {
		t.Errorf("vertex = %v", d.Attributes["vertex"])
	}
	if !slices.Equal(d.Attributes["tex_coord"], []float32{11, 21, 12, 22}) {
		t.Errorf("tex_coord = %v", d.Attributes["tex_coord"])
	}
	if !slices.Equal(d.Uniform("col"), []float32{1, 0, 0, 1}) {
		t.Errorf("col = %v", d.Uniform("col"))
	}
	if d.Uniform("pos") != nil {
		t.Errorf("unset uniform pos = %v, want nil", d.Uniform("pos"))
	}
	if b.Count(CmdDraw) != 1 || b.Frames() != 1 {
		t.Errorf("Count(Draw)=%d Frames=%d", b.Count(CmdDraw), b.Frames())
	}
}

func TestBackendCompileErrors(t *testing.T) {
	b := New()
	_, err := b.CompileProgram("fn nope() {}", fs)
	var sce *gpu.ShaderCompileError
	if !errors.As(err, &sce) {
		t.Fatalf("error = %v, want *gpu.ShaderCompileError", err)
	}

	hookErr := &gpu.ShaderCompileError{Stage: gpu.StageFragment, Log: "driver says no"}
	b = New(WithCompileHook(func(string, string) error { return hookErr }))
	if _, err := b.CompileProgram(vs, fs); !errors.Is(err, hookErr) {
		t.Errorf("error = %v, want hook error", err)
	}
}

func TestBackendTextures(t *testing.T) {
	b := New()
	tex, err := b.CreateTexture(4, 4, gpu.R8, gpu.Nearest, nil)
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	if err := b.UpdateTexture(tex, 1, 2, 2, 1, []byte{7, 9}); err != nil {
		t.Fatalf("UpdateTexture: %v", err)
	}
	ts, _ := b.Texture(tex)
	if ts.At(1, 2)[0] != 7 || ts.At(2, 2)[0] != 9 || ts.At(0, 0)[0] != 0 {
		t.Errorf("pixels = %v", ts.Pixels)
	}

	if err := b.UpdateTexture(tex, 3, 3, 2, 2, make([]byte, 4)); !errors.Is(err, gpu.ErrTextureBounds) {
		t.Errorf("out of bounds update error = %v", err)
	}
	if _, err := b.CreateTexture(2, 2, gpu.RGBA8, gpu.Nearest, make([]byte, 3)); !errors.Is(err, gpu.ErrPixelData) {
		t.Errorf("short pixel data error = %v", err)
	}

	if got := b.LiveTextures(); len(got) != 1 || got[0] != tex {
		t.Errorf("LiveTextures = %v", got)
	}
	b.DestroyTexture(tex)
	if got := b.LiveTextures(); len(got) != 0 {
		t.Errorf("LiveTextures after destroy = %v", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("second DestroyTexture did not panic")
		}
	}()
	b.DestroyTexture(tex)
}

func TestBackendEndFrameWithoutBegin(t *testing.T) {
	b := New()
	if err := b.EndFrame(); !errors.Is(err, gpu.ErrFrameNotStarted) {
		t.Errorf("EndFrame() = %v, want ErrFrameNotStarted", err)
	}
}

func TestBackendDestroyIgnoresLateReleases(t *testing.T) {
	b := New()
	tex, _ := b.CreateTexture(1, 1, gpu.RGBA8, gpu.Nearest, nil)
	b.Destroy()
	b.DestroyTexture(tex) // must not panic

	if _, err := b.CreateTexture(1, 1, gpu.R8, gpu.Nearest, nil); !errors.Is(err, gpu.ErrReleased) {
		t.Errorf("CreateTexture after Destroy = %v, want ErrReleased", err)
	}
	if err := b.UpdateTexture(tex, 0, 0, 1, 1, []byte{1, 2, 3, 4}); !errors.Is(err, gpu.ErrReleased) {
		t.Errorf("UpdateTexture after Destroy = %v, want ErrReleased", err)
	}
}
