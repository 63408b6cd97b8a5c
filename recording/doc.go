// Package recording provides a gpu.Backend that records every call in
// memory instead of talking to a GPU.
//
// The recording backend is used for headless rendering statistics and as
// the test double for quill's renderers. It keeps full texture contents and
// snapshots every draw call (program, bound texture, uniform values and the
// vertex rows consumed), so tests can assert on what would have reached the
// GPU.
//
// Programs are checked with gpu.ReflectProgram, so malformed shaders fail
// with the same *gpu.ShaderCompileError a real backend reports.
//
// # Example
//
//	b := recording.New()
//	r, err := render.New(b)
//	...
//	r.BeginFrame()
//	r.DrawRect(&bp)
//	_ = r.EndFrame()
//	for _, d := range b.Draws() {
//	    fmt.Println(d.Program, d.Uniforms["col"])
//	}
package recording
