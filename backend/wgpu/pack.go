package wgpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/quill/gpu"
)

const (
	// uniformAlignment is the minUniformBufferOffsetAlignment every WebGPU
	// device supports.
	uniformAlignment = 256

	// copyPitchAlignment is the required bytesPerRow alignment of
	// texture-to-buffer copies.
	copyPitchAlignment = 256
)

func alignUp(v, a int) int {
	return (v + a - 1) / a * a
}

// packUniforms appends the uniform block of a program to dst, laid out at
// the offsets reflected from its WGSL. Uniforms that were never set stay
// zero.
func packUniforms(dst []byte, iface *gpu.ProgramInterface, values [][]float32) []byte {
	start := len(dst)
	dst = append(dst, make([]byte, iface.UniformSize)...)
	for i, u := range iface.Uniforms {
		if i >= len(values) {
			break
		}
		for j, f := range values[i] {
			if j == u.Components {
				break
			}
			binary.LittleEndian.PutUint32(dst[start+u.Offset+4*j:], math.Float32bits(f))
		}
	}
	return dst
}

// vertexStride is the byte size of one interleaved vertex of a program.
func vertexStride(attrs []gpu.Attribute) int {
	n := 0
	for _, a := range attrs {
		n += a.Components
	}
	return n * 4
}

var vertexFormats = [...]gputypes.VertexFormat{
	1: gputypes.VertexFormatFloat32,
	2: gputypes.VertexFormatFloat32x2,
	3: gputypes.VertexFormatFloat32x3,
	4: gputypes.VertexFormatFloat32x4,
}

// vertexLayout returns the buffer layout matching gatherVertices: one
// interleaved buffer with the attributes in declaration order.
func vertexLayout(attrs []gpu.Attribute) []gputypes.VertexBufferLayout {
	out := make([]gputypes.VertexAttribute, 0, len(attrs))
	offset := 0
	for _, a := range attrs {
		out = append(out, gputypes.VertexAttribute{
			Format:         vertexFormats[a.Components],
			Offset:         uint64(offset),
			ShaderLocation: uint32(a.Location),
		})
		offset += a.Components * 4
	}
	return []gputypes.VertexBufferLayout{{
		ArrayStride: uint64(offset),
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes:  out,
	}}
}

// vertexSource is the buffer slice bound to one attribute. A zero value
// feeds zeros.
type vertexSource struct {
	data       []float32
	components int // floats per buffer row
	offset     int
	count      int
}

// gatherVertices appends rows [first, first+count) of every attribute
// source to dst, interleaved in attribute order. sources[i] feeds attrs[i].
func gatherVertices(dst []byte, attrs []gpu.Attribute, sources []vertexSource, first, count int) ([]byte, error) {
	for i, src := range sources {
		if src.data == nil {
			continue
		}
		if rows := len(src.data) / src.components; first+count > rows {
			return dst, fmt.Errorf("wgpu: attribute %s: draw of %d vertices from %d exceeds %d rows",
				attrs[i].Name, count, first, rows)
		}
	}
	var word [4]byte
	for r := first; r < first+count; r++ {
		for i, a := range attrs {
			src := sources[i]
			for c := range a.Components {
				var f float32
				if src.data != nil && c < src.count {
					f = src.data[r*src.components+src.offset+c]
				}
				binary.LittleEndian.PutUint32(word[:], math.Float32bits(f))
				dst = append(dst, word[:]...)
			}
		}
	}
	return dst, nil
}

func textureFormat(f gpu.PixelFormat) gputypes.TextureFormat {
	if f == gpu.R8 {
		return gputypes.TextureFormatR8Unorm
	}
	return gputypes.TextureFormatRGBA8Unorm
}

func filterMode(f gpu.Filter) gputypes.FilterMode {
	if f == gpu.Linear {
		return gputypes.FilterModeLinear
	}
	return gputypes.FilterModeNearest
}

// spirvWords converts little-endian SPIR-V bytes into words.
func spirvWords(b []byte) []uint32 {
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return words
}

// unpadRows strips the row padding of a texture copy with the given pitch.
func unpadRows(src []byte, w, h, bpp, pitch int) []byte {
	row := w * bpp
	if pitch == row {
		return src[:row*h]
	}
	out := make([]byte, row*h)
	for y := range h {
		copy(out[y*row:(y+1)*row], src[y*pitch:y*pitch+row])
	}
	return out
}

// swizzleBGRA swaps the red and blue channels of 4-byte pixels in place.
func swizzleBGRA(p []byte) {
	for i := 0; i+3 < len(p); i += 4 {
		p[i], p[i+2] = p[i+2], p[i]
	}
}
