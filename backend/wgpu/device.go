package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan" // register the Vulkan HAL backend
)

// ErrNoDevice is returned when no usable GPU device can be obtained.
var ErrNoDevice = errors.New("wgpu: no GPU device")

// GPUInfo describes the adapter a backend opened.
type GPUInfo struct {
	Name       string
	DeviceType gputypes.DeviceType
}

func (g GPUInfo) String() string {
	return fmt.Sprintf("%s (%v)", g.Name, g.DeviceType)
}

// halProvider is implemented by device providers that expose their HAL
// objects, such as gogpu applications.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// New creates a backend on the device shared by a host application. The
// provider must expose its HAL device and queue; the backend never
// destroys them.
func New(provider gpucontext.DeviceProvider, opts ...Option) (*Backend, error) {
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("%w: provider does not expose HAL types", ErrNoDevice)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: provider HalDevice is not hal.Device", ErrNoDevice)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: provider HalQueue is not hal.Queue", ErrNoDevice)
	}
	return NewWithDevice(device, queue, opts...)
}

// Open creates a backend on a device of its own, preferring a discrete or
// integrated GPU. Destroy releases the device.
func Open(opts ...Option) (*Backend, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not available", ErrNoDevice)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %w", ErrNoDevice, err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: no adapters found", ErrNoDevice)
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	open, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("%w: open device: %w", ErrNoDevice, err)
	}

	b, err := NewWithDevice(open.Device, open.Queue, opts...)
	if err != nil {
		open.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	b.instance = instance
	b.owned = true
	b.info = GPUInfo{Name: selected.Info.Name, DeviceType: selected.Info.DeviceType}
	logger().Info("wgpu: device opened", "gpu", b.info.String())
	return b, nil
}
