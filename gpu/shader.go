package gpu

import (
	"fmt"
	"slices"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

// Entry point names every program must define.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// Attribute describes one vertex input of a program.
type Attribute struct {
	Name       string
	Location   int
	Components int
}

// Uniform describes one field of a program's Uniforms struct.
type Uniform struct {
	Name       string
	Type       string
	Offset     int // byte offset in the uniform buffer
	Components int // float count
}

// ProgramInterface is the reflected interface of a program.
type ProgramInterface struct {
	Attributes []Attribute
	Uniforms   []Uniform
	// UniformSize is the size of the uniform buffer in bytes, rounded up
	// to 16.
	UniformSize int
}

// Attribute returns the vertex input with the given name.
func (pi *ProgramInterface) Attribute(name string) (Attribute, bool) {
	i := slices.IndexFunc(pi.Attributes, func(a Attribute) bool { return a.Name == name })
	if i < 0 {
		return Attribute{}, false
	}
	return pi.Attributes[i], true
}

// UniformIndex returns the index of the named uniform field.
func (pi *ProgramInterface) UniformIndex(name string) (int, bool) {
	i := slices.IndexFunc(pi.Uniforms, func(u Uniform) bool { return u.Name == name })
	return i, i >= 0
}

// uniformTypes lists the WGSL types a Uniforms field may have.
var uniformTypes = map[string]bool{
	"f32":         true,
	"vec2<f32>":   true,
	"vec4<f32>":   true,
	"mat4x4<f32>": true,
}

// ReflectProgram extracts the vertex inputs (the @location arguments of
// the vertex entry point, directly or as struct members) and the layout of
// the uniform buffer from a pair of WGSL sources. Both sources are parsed
// and lowered with naga; field offsets come from its type layout. Problems
// are reported as *ShaderCompileError so backends without a real compiler
// still reject bad programs the way a driver would.
func ReflectProgram(vertex, fragment string) (*ProgramInterface, error) {
	vm, err := lower(StageVertex, vertex)
	if err != nil {
		return nil, err
	}
	fm, err := lower(StageFragment, fragment)
	if err != nil {
		return nil, err
	}

	vs := entryPoint(vm, ir.StageVertex, VertexEntryPoint)
	if vs == nil {
		return nil, &ShaderCompileError{Stage: StageVertex, Log: "missing @vertex fn " + VertexEntryPoint}
	}
	if entryPoint(fm, ir.StageFragment, FragmentEntryPoint) == nil {
		return nil, &ShaderCompileError{Stage: StageFragment, Log: "missing @fragment fn " + FragmentEntryPoint}
	}

	pi := &ProgramInterface{}
	if pi.Attributes, err = vertexInputs(vm, vs); err != nil {
		return nil, err
	}

	vu, vsize, err := uniforms(vm)
	if err != nil {
		return nil, err
	}
	fu, fsize, err := uniforms(fm)
	if err != nil {
		return nil, err
	}
	switch {
	case vu == nil:
		vu, vsize = fu, fsize
	case fu != nil && (!slices.Equal(vu, fu) || vsize != fsize):
		return nil, &ShaderCompileError{Stage: StageLink, Log: "Uniforms struct differs between vertex and fragment shader"}
	}
	pi.Uniforms = vu
	pi.UniformSize = alignUp(vsize, 16)
	return pi, nil
}

func lower(stage ShaderStage, src string) (*ir.Module, error) {
	ast, err := naga.Parse(src)
	if err != nil {
		return nil, &ShaderCompileError{Stage: stage, Log: err.Error()}
	}
	m, err := naga.LowerWithSource(ast, src)
	if err != nil {
		return nil, &ShaderCompileError{Stage: stage, Log: err.Error()}
	}
	return m, nil
}

func entryPoint(m *ir.Module, stage ir.ShaderStage, name string) *ir.EntryPoint {
	for i := range m.EntryPoints {
		if ep := &m.EntryPoints[i]; ep.Stage == stage && ep.Name == name {
			return ep
		}
	}
	return nil
}

func vertexInputs(m *ir.Module, ep *ir.EntryPoint) ([]Attribute, error) {
	var attrs []Attribute
	add := func(name string, b *ir.Binding, th ir.TypeHandle) error {
		if b == nil {
			return nil
		}
		loc, ok := (*b).(ir.LocationBinding)
		if !ok {
			return nil
		}
		typ, n := describe(m, th)
		if n == 0 || n > 4 {
			return &ShaderCompileError{Stage: StageVertex, Log: fmt.Sprintf("unsupported vertex input type %q for %s", typ, name)}
		}
		attrs = append(attrs, Attribute{Name: name, Location: int(loc.Location), Components: n})
		return nil
	}
	for _, arg := range ep.Function.Arguments {
		if st, ok := m.Types[arg.Type].Inner.(ir.StructType); ok {
			for _, mem := range st.Members {
				if err := add(mem.Name, mem.Binding, mem.Type); err != nil {
					return nil, err
				}
			}
			continue
		}
		if err := add(arg.Name, arg.Binding, arg.Type); err != nil {
			return nil, err
		}
	}
	return attrs, nil
}

// uniforms returns the fields of the module's uniform buffer and its size,
// or nil when the module declares none.
func uniforms(m *ir.Module) ([]Uniform, int, error) {
	for _, gv := range m.GlobalVariables {
		if gv.Space != ir.SpaceUniform {
			continue
		}
		st, ok := m.Types[gv.Type].Inner.(ir.StructType)
		if !ok {
			return nil, 0, &ShaderCompileError{Stage: StageLink, Log: fmt.Sprintf("uniform %s is not a struct", gv.Name)}
		}
		out := make([]Uniform, 0, len(st.Members))
		for _, mem := range st.Members {
			typ, n := describe(m, mem.Type)
			if !uniformTypes[typ] {
				return nil, 0, &ShaderCompileError{Stage: StageLink, Log: fmt.Sprintf("unsupported uniform type %q for %s", typ, mem.Name)}
			}
			out = append(out, Uniform{Name: mem.Name, Type: typ, Offset: int(mem.Offset), Components: n})
		}
		return out, int(st.Span), nil
	}
	return nil, 0, nil
}

// describe returns the WGSL spelling of a float scalar, vector or matrix
// type and its float count. Other types report zero components.
func describe(m *ir.Module, th ir.TypeHandle) (string, int) {
	switch t := m.Types[th].Inner.(type) {
	case ir.ScalarType:
		if t.Kind == ir.ScalarFloat && t.Width == 4 {
			return "f32", 1
		}
	case ir.VectorType:
		if t.Scalar.Kind == ir.ScalarFloat && t.Scalar.Width == 4 {
			return fmt.Sprintf("vec%d<f32>", t.Size), int(t.Size)
		}
	case ir.MatrixType:
		if t.Scalar.Kind == ir.ScalarFloat && t.Scalar.Width == 4 {
			return fmt.Sprintf("mat%dx%d<f32>", t.Columns, t.Rows), int(t.Columns) * int(t.Rows)
		}
	}
	if name := m.Types[th].Name; name != "" {
		return name, 0
	}
	return fmt.Sprintf("%T", m.Types[th].Inner), 0
}

func alignUp(v, a int) int {
	return (v + a - 1) &^ (a - 1)
}
