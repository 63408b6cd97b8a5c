// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import _ "embed"

// Embedded WGSL shader sources.

//go:embed shaders/rect.vert.wgsl
var rectVertexSource string

//go:embed shaders/round.frag.wgsl
var roundFragmentSource string

//go:embed shaders/square.frag.wgsl
var squareFragmentSource string

//go:embed shaders/image.vert.wgsl
var imageVertexSource string

//go:embed shaders/image.frag.wgsl
var imageFragmentSource string

//go:embed shaders/text.vert.wgsl
var textVertexSource string

//go:embed shaders/text.frag.wgsl
var textFragmentSource string

//go:embed shaders/batch.vert.wgsl
var batchVertexSource string

//go:embed shaders/batch.frag.wgsl
var batchFragmentSource string
