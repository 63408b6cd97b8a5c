// Package wgpu implements gpu.Backend on top of the gogpu/wgpu HAL.
//
// Each program becomes a render pipeline. WGSL sources are compiled to
// SPIR-V with gogpu/naga, so compile errors surface as
// *gpu.ShaderCompileError when the program is created, not at draw time.
//
// The backend renders into an offscreen target of the viewport size. Draw
// calls made between BeginFrame and EndFrame are recorded together with a
// snapshot of their vertex rows and uniform values. EndFrame encodes them
// into one render pass, submits it, waits for the GPU and reads the target
// back; Pixels returns the result.
//
// # Device
//
// The backend either shares the device of a host application:
//
//	b, err := wgpu.New(provider) // provider is a gpucontext.DeviceProvider
//
// or opens its own:
//
//	b, err := wgpu.Open()
//
// A shared device is never destroyed by the backend.
//
// # Textures
//
// Textures released with DestroyTexture during a frame stay alive until
// the frame has been submitted, so draws recorded before the release still
// sample them.
package wgpu
