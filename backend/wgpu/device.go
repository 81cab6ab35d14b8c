//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// GPUInfo contains information about the selected GPU adapter.
type GPUInfo struct {
	// Name is the GPU name (e.g., "NVIDIA GeForce RTX 3080").
	Name string
	// DeviceType is the type of GPU (discrete, integrated, etc.).
	DeviceType gputypes.DeviceType
}

// String returns a human-readable description of the GPU.
func (g *GPUInfo) String() string {
	return fmt.Sprintf("%s (%v)", g.Name, g.DeviceType)
}

// deviceState holds the HAL device, queue and (when self-created) the
// owning instance. When the device comes from an external provider the
// instance is nil and Destroy leaves the device alone.
type deviceState struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	info     *GPUInfo
	external bool
}

// openOwnDevice creates a device through the Vulkan HAL backend, preferring
// a discrete or integrated GPU adapter.
func openOwnDevice() (*deviceState, error) {
	halBackend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("wgpu: vulkan backend not available")
	}
	instance, err := halBackend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}
	return &deviceState{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		info: &GPUInfo{
			Name:       selected.Info.Name,
			DeviceType: selected.Info.DeviceType,
		},
	}, nil
}

// adoptProviderDevice extracts the HAL device and queue from a shared
// device provider (e.g., a windowing host). The provider must additionally
// implement HalDevice() any and HalQueue() any returning hal.Device and
// hal.Queue.
func adoptProviderDevice(provider gpucontext.DeviceProvider) (*deviceState, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("wgpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("wgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("wgpu: provider HalQueue is not hal.Queue")
	}
	return &deviceState{
		device:   device,
		queue:    queue,
		external: true,
	}, nil
}

// Destroy releases the device and instance when they are owned by this
// state. Externally provided devices are left untouched.
func (d *deviceState) Destroy() {
	if d == nil {
		return
	}
	if !d.external && d.device != nil {
		d.device.Destroy()
	}
	if d.instance != nil {
		d.instance.Destroy()
	}
	d.device = nil
	d.queue = nil
	d.instance = nil
}
