package wgpu

import "github.com/gogpu/gpucontext"

// DeviceHandle provides GPU device access from a host application.
//
// Host frameworks (e.g. a gogpu window) implement DeviceHandle and pass
// it to SetDeviceProvider so the backend renders on the shared device
// instead of opening its own adapter. The provider must additionally
// implement gpucontext.HalProvider for direct HAL access.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, giving this
// package a local name for the interface while staying compatible with
// the gpucontext ecosystem.
type DeviceHandle = gpucontext.DeviceProvider

// UseDevice is a typed convenience wrapper around SetDeviceProvider for
// providers implementing DeviceHandle.
func (b *Backend) UseDevice(handle DeviceHandle) error {
	return b.SetDeviceProvider(handle)
}
