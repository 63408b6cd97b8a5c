package wgpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// frameResources are the GPU objects built for one submission.
type frameResources struct {
	vertBuf    hal.Buffer
	uniformBuf hal.Buffer
	bindGroups []hal.BindGroup
}

func (r *frameResources) destroy(device hal.Device) {
	for _, bg := range r.bindGroups {
		device.DestroyBindGroup(bg)
	}
	if r.uniformBuf != nil {
		device.DestroyBuffer(r.uniformBuf)
	}
	if r.vertBuf != nil {
		device.DestroyBuffer(r.vertBuf)
	}
}

func (b *Backend) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	b.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

func (b *Backend) buildResources() (*frameResources, error) {
	res := &frameResources{}
	if len(b.draws) == 0 {
		return res, nil
	}
	var err error
	res.vertBuf, err = b.createAndUploadBuffer("quill_vertices", b.vertices,
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return res, err
	}
	res.uniformBuf, err = b.createAndUploadBuffer("quill_uniforms", b.uniforms,
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return res, err
	}
	res.bindGroups = make([]hal.BindGroup, 0, len(b.draws))
	for _, d := range b.draws {
		bg, err := b.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:  "quill_bind",
			Layout: b.bindLayout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{
					Buffer: res.uniformBuf.NativeHandle(),
					Offset: uint64(d.uniformOffset),
					Size:   uint64(d.prog.iface.UniformSize),
				}},
				{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: d.tex.view.NativeHandle()}},
				{Binding: 2, Resource: gputypes.SamplerBinding{Sampler: b.samplers[d.tex.filter].NativeHandle()}},
			},
		})
		if err != nil {
			return res, fmt.Errorf("create bind group: %w", err)
		}
		res.bindGroups = append(res.bindGroups, bg)
	}
	return res, nil
}

// submit encodes the frame into one render pass, copies the target into a
// staging buffer, submits, waits and reads the pixels back.
func (b *Backend) submit() error {
	res, err := b.buildResources()
	defer res.destroy(b.device)
	if err != nil {
		return fmt.Errorf("wgpu: %w", err)
	}

	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "quill_encoder"})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("quill_frame"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	attachment := hal.RenderPassColorAttachment{
		View:    b.target.view,
		LoadOp:  gputypes.LoadOpLoad,
		StoreOp: gputypes.StoreOpStore,
	}
	if b.clear != nil {
		attachment.LoadOp = gputypes.LoadOpClear
		attachment.ClearValue = *b.clear
	}
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label:            "quill_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{attachment},
	})
	for i, d := range b.draws {
		rp.SetPipeline(d.prog.pipeline)
		rp.SetBindGroup(0, res.bindGroups[i], nil)
		rp.SetVertexBuffer(0, res.vertBuf, uint64(d.vertexOffset))
		rp.Draw(uint32(d.vertexCount), 1, 0, 0)
	}
	rp.End()

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: b.target.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	w, h := b.target.width, b.target.height
	pitch := alignUp(w*4, copyPitchAlignment)
	staging, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "quill_staging",
		Size:  uint64(pitch * h),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	defer b.device.DestroyBuffer(staging)

	encoder.CopyTextureToBuffer(b.target.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: uint32(pitch), RowsPerImage: uint32(h)},
		TextureBase:  hal.ImageCopyTexture{Texture: b.target.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: b.target.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	fence, err := b.device.CreateFence()
	if err != nil {
		return fmt.Errorf("wgpu: create fence: %w", err)
	}
	defer b.device.DestroyFence(fence)

	if err := b.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	ok, err := b.device.Wait(fence, 1, b.opts.timeout)
	if err != nil || !ok {
		return fmt.Errorf("wgpu: wait for GPU: ok=%v err=%w", ok, err)
	}

	readback := make([]byte, pitch*h)
	if err := b.queue.ReadBuffer(staging, 0, readback); err != nil {
		return fmt.Errorf("wgpu: readback: %w", err)
	}
	pix := unpadRows(readback, w, h, 4, pitch)
	if b.opts.format == gputypes.TextureFormatBGRA8Unorm {
		swizzleBGRA(pix)
	}
	b.last = &image.RGBA{Pix: pix, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}
	logger().Debug("wgpu: frame submitted", "draws", len(b.draws), "vertex_bytes", len(b.vertices))
	return nil
}
