package wgpu

import (
	"time"

	"github.com/gogpu/gputypes"
)

// Option configures a Backend during creation.
type Option func(*options)

type options struct {
	format  gputypes.TextureFormat
	timeout time.Duration
}

func defaultOptions() options {
	return options{
		format:  gputypes.TextureFormatRGBA8Unorm,
		timeout: 5 * time.Second,
	}
}

// WithTargetFormat sets the format of the render target. RGBA8Unorm (the
// default) and BGRA8Unorm are supported; Pixels always returns RGBA.
func WithTargetFormat(f gputypes.TextureFormat) Option {
	return func(o *options) {
		o.format = f
	}
}

// WithFenceTimeout bounds how long EndFrame waits for the GPU.
func WithFenceTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}
