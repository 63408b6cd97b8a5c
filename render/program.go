// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/quill/gpu"
)

// locator looks up the locations of a freshly compiled program. The first
// missing name is kept as a link error.
type locator struct {
	b   gpu.Backend
	p   gpu.Program
	err error
}

func compileProgram(b gpu.Backend, vertex, fragment string) (*locator, error) {
	p, err := b.CompileProgram(vertex, fragment)
	if err != nil {
		return nil, err
	}
	return &locator{b: b, p: p}, nil
}

func (l *locator) attrib(name string) gpu.AttribLocation {
	loc, ok := l.b.AttribLocation(l.p, name)
	if !ok && l.err == nil {
		l.err = &gpu.ShaderCompileError{Stage: gpu.StageLink, Log: "no vertex input named " + name}
	}
	return loc
}

func (l *locator) uniform(name string) gpu.UniformLocation {
	loc, ok := l.b.UniformLocation(l.p, name)
	if !ok && l.err == nil {
		l.err = &gpu.ShaderCompileError{Stage: gpu.StageLink, Log: "no uniform named " + name}
	}
	return loc
}

// done returns the program, or releases it and returns the lookup error.
func (l *locator) done() (gpu.Program, error) {
	if l.err != nil {
		l.b.DestroyProgram(l.p)
		return 0, l.err
	}
	return l.p, nil
}

// Unit quads drawn as two triangles. texQuad rows are x, y, u, v.
var (
	unitQuad = []float32{
		0, 0, 1, 0, 1, 1,
		0, 0, 1, 1, 0, 1,
	}
	texQuad = []float32{
		0, 0, 0, 0, 1, 0, 1, 0, 1, 1, 1, 1,
		0, 0, 0, 0, 1, 1, 1, 1, 0, 1, 0, 1,
	}
)

const quadVertices = 6

// orthographic returns the column-major projection mapping (0,0)-(w,h)
// with y down onto clip space, depth range -1..1.
func orthographic(w, h float32) [16]float32 {
	const near, far = -1, 1
	var m [16]float32
	if w == 0 || h == 0 {
		return m
	}
	m[0] = 2 / w
	m[5] = -2 / h
	m[10] = -2 / (far - near)
	m[12] = -1
	m[13] = 1
	m[14] = -(far + near) / (far - near)
	m[15] = 1
	return m
}
