package gpu

import (
	"errors"
	"slices"
	"testing"
)

const testVertex = `
struct Uniforms {
    mvp: mat4x4<f32>,
    col: vec4<f32>,
    pos: vec2<f32>,
    smoothness: f32,
    size: vec2<f32>,
}
@group(0) @binding(0) var<uniform> u: Uniforms;

struct VertexInput {
    @location(0) vertex: vec2<f32>,
    @location(1) tex_coord: vec2<f32>,
}

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

// entry point
@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.position = u.mvp * vec4<f32>(u.pos + in.vertex * u.size, 0.0, 1.0);
    out.uv = in.tex_coord;
    return out;
}
`

const testFragment = `
struct Uniforms {
    mvp: mat4x4<f32>,
    col: vec4<f32>,
    pos: vec2<f32>,
    smoothness: f32,
    size: vec2<f32>,
}
@group(0) @binding(0) var<uniform> u: Uniforms;

@fragment
fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
    return u.col;
}
`

func TestReflectProgram(t *testing.T) {
	pi, err := ReflectProgram(testVertex, testFragment)
	if err != nil {
		t.Fatalf("ReflectProgram: %v", err)
	}

	wantAttrs := []Attribute{
		{Name: "vertex", Location: 0, Components: 2},
		{Name: "tex_coord", Location: 1, Components: 2},
	}
	if len(pi.Attributes) != len(wantAttrs) {
		t.Fatalf("got %d attributes, want %d", len(pi.Attributes), len(wantAttrs))
	}
	for i, want := range wantAttrs {
		if pi.Attributes[i] != want {
			t.Errorf("attribute %d = %+v, want %+v", i, pi.Attributes[i], want)
		}
	}

	wantUniforms := []struct {
		name   string
		offset int
		n      int
	}{
		{"mvp", 0, 16},
		{"col", 64, 4},
		{"pos", 80, 2},
		{"smoothness", 88, 1},
		{"size", 96, 2},
	}
	for _, want := range wantUniforms {
		i, ok := pi.UniformIndex(want.name)
		if !ok {
			t.Errorf("uniform %q not found", want.name)
			continue
		}
		u := pi.Uniforms[i]
		if u.Offset != want.offset || u.Components != want.n {
			t.Errorf("uniform %q = offset %d n %d, want offset %d n %d", want.name, u.Offset, u.Components, want.offset, want.n)
		}
	}
	if pi.UniformSize != 112 {
		t.Errorf("UniformSize = %d, want 112", pi.UniformSize)
	}
	if _, ok := pi.Attribute("missing"); ok {
		t.Error("Attribute(missing) reported ok")
	}
}

func TestReflectProgramLocationArguments(t *testing.T) {
	const vertex = `
@vertex
fn vs_main(@location(0) p: vec2<f32>, @builtin(vertex_index) i: u32, @location(2) w: f32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(p, w, 1.0);
}
`
	pi, err := ReflectProgram(vertex, testFragment)
	if err != nil {
		t.Fatalf("ReflectProgram: %v", err)
	}
	want := []Attribute{
		{Name: "p", Location: 0, Components: 2},
		{Name: "w", Location: 2, Components: 1},
	}
	if !slices.Equal(pi.Attributes, want) {
		t.Errorf("Attributes = %+v, want %+v", pi.Attributes, want)
	}
	// Only the fragment shader declares the uniforms.
	if i, ok := pi.UniformIndex("size"); !ok || pi.Uniforms[i].Offset != 96 {
		t.Errorf("uniform size missing or misplaced: %+v", pi.Uniforms)
	}
	if pi.UniformSize != 112 {
		t.Errorf("UniformSize = %d, want 112", pi.UniformSize)
	}
}

func TestReflectProgramErrors(t *testing.T) {
	tests := []struct {
		name     string
		vertex   string
		fragment string
		stage    ShaderStage
	}{
		{"no vertex entry", "fn main() {}", testFragment, StageVertex},
		{"no fragment entry", testVertex, "@fragment fn other() {}", StageFragment},
		{
			"uniform mismatch",
			testVertex,
			`struct Uniforms {
    a: f32,
}
@group(0) @binding(0) var<uniform> u: Uniforms;

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(u.a);
}`,
			StageLink,
		},
		{
			"bad uniform type",
			`struct Uniforms {
    m: mat3x3<f32>,
}
@group(0) @binding(0) var<uniform> u: Uniforms;

@vertex
fn vs_main() -> @builtin(position) vec4<f32> {
    return vec4<f32>(u.m[0], 1.0);
}`,
			"@fragment\nfn fs_main() {}",
			StageLink,
		},
		{"vertex syntax error", "@vertex fn vs_main( {", testFragment, StageVertex},
		{"fragment syntax error", testVertex, "@fragment fn fs_main() -> {", StageFragment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReflectProgram(tt.vertex, tt.fragment)
			var sce *ShaderCompileError
			if !errors.As(err, &sce) {
				t.Fatalf("error = %v, want *ShaderCompileError", err)
			}
			if sce.Stage != tt.stage {
				t.Errorf("stage = %s, want %s", sce.Stage, tt.stage)
			}
		})
	}
}

func TestCheckPixels(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		f       PixelFormat
		n       int
		wantErr bool
	}{
		{"r8 exact", 4, 2, R8, 8, false},
		{"rgba exact", 4, 2, RGBA8, 32, false},
		{"rgba short", 4, 2, RGBA8, 31, true},
		{"zero size", 0, 2, R8, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPixels(tt.w, tt.h, tt.f, make([]byte, tt.n))
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckPixels() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrPixelData) {
				t.Errorf("error %v does not wrap ErrPixelData", err)
			}
		})
	}
	if err := CheckPixels(2, 2, R8, nil); err != nil {
		t.Errorf("nil pixels should be accepted, got %v", err)
	}
}
