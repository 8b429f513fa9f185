// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package wgpu provides the GPU rendering backend on the wgpu HAL. Pass
// kernels are WGSL compute shaders compiled through naga to SPIR-V and
// dispatched over storage buffers of packed RGBA8 pixels.
//
// Import for side effects to register it:
//
//	import _ "github.com/gogpu/darkroom/backend/wgpu"
package wgpu

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/darkroom"
	"github.com/gogpu/darkroom/effect"
	"github.com/gogpu/darkroom/internal/cache"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Priority places this backend above the software fallback.
const Priority = 10

// submitTimeout bounds a single pass dispatch or readback.
const submitTimeout = 5 * time.Second

func init() {
	darkroom.RegisterBackend("wgpu", Priority, func() darkroom.Backend { return New() })
}

// Backend executes pass kernels on a GPU through the wgpu HAL.
type Backend struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	// externalDevice is true when the device came from a shared provider
	// and must not be destroyed on Close.
	externalDevice bool

	// layouts[0] is the plain kernel layout, layouts[1] adds the LUT
	// binding.
	layouts     [2]hal.BindGroupLayout
	pipeLayouts [2]hal.PipelineLayout

	pipelines *cache.Cache[*passPipeline]

	initialized bool
}

// New creates an uninitialized wgpu backend.
func New() *Backend {
	return &Backend{pipelines: cache.New[*passPipeline]()}
}

// Name implements darkroom.Backend.
func (b *Backend) Name() string { return "wgpu" }

// Init implements darkroom.Backend. It acquires a Vulkan adapter,
// preferring discrete then integrated GPUs, builds the shared bind group
// layouts, and compiles every catalog kernel so a broken kernel fails
// construction instead of a later render.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.initialized {
		return nil
	}
	if b.device == nil {
		if err := b.acquireDevice(); err != nil {
			return err
		}
	}
	if err := b.createLayouts(); err != nil {
		b.teardown()
		return err
	}
	if err := b.compileKernels(); err != nil {
		b.teardown()
		return err
	}
	b.initialized = true
	return nil
}

// compileKernels builds the pipeline for every catalog pass kind plus the
// final blit. The cache makes this a one-time cost; Apply only ever hits.
func (b *Backend) compileKernels() error {
	for _, d := range effect.Catalog() {
		for _, kind := range d.SubPasses {
			if _, err := b.pipelineFor(kind, d.NeedsLUT); err != nil {
				return err
			}
		}
	}
	_, err := b.pipelineFor(effect.KindBlit, false)
	return err
}

func (b *Backend) acquireDevice() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return errors.New("wgpu: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("wgpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU {
			selected = &adapters[i]
			break
		}
		if selected == nil && adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
		}
	}
	if selected == nil {
		instance.Destroy()
		return errors.New("wgpu: no usable GPU adapter")
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return fmt.Errorf("wgpu: open adapter: %w", err)
	}
	b.instance = instance
	b.device = openDev.Device
	b.queue = openDev.Queue
	return nil
}

func (b *Backend) createLayouts() error {
	base := []gputypes.BindGroupLayoutEntry{
		{Binding: 0, Visibility: gputypes.ShaderStageCompute,
			Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
		{Binding: 1, Visibility: gputypes.ShaderStageCompute,
			Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
		{Binding: 2, Visibility: gputypes.ShaderStageCompute,
			Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
	}
	withLUT := append(append([]gputypes.BindGroupLayoutEntry{}, base...),
		gputypes.BindGroupLayoutEntry{Binding: 3, Visibility: gputypes.ShaderStageCompute,
			Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}})

	for i, entries := range [][]gputypes.BindGroupLayoutEntry{base, withLUT} {
		layout, err := b.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("darkroom_pass_layout_%d", i),
			Entries: entries,
		})
		if err != nil {
			return fmt.Errorf("wgpu: create bind group layout: %w", err)
		}
		b.layouts[i] = layout

		pipeLayout, err := b.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
			Label:            fmt.Sprintf("darkroom_pipe_layout_%d", i),
			BindGroupLayouts: []hal.BindGroupLayout{layout},
		})
		if err != nil {
			return fmt.Errorf("wgpu: create pipeline layout: %w", err)
		}
		b.pipeLayouts[i] = pipeLayout
	}
	return nil
}

// SetDeviceProvider switches the backend to a shared GPU device from an
// external provider (e.g. a gogpu window). The provider must implement
// gpucontext.HalProvider, exposing HalDevice() any and HalQueue() any.
// Must be called before Init.
func (b *Backend) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return errors.New("wgpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return errors.New("wgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return errors.New("wgpu: provider HalQueue is not hal.Queue")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.initialized {
		return errors.New("wgpu: device provider must be set before Init")
	}
	b.device = device
	b.queue = queue
	b.externalDevice = true
	return nil
}

// Close implements darkroom.Backend.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.teardown()
	b.initialized = false
	return nil
}

func (b *Backend) teardown() {
	if b.device != nil {
		b.pipelines.Purge(func(p *passPipeline) { p.destroy(b.device) })
		for i := range b.layouts {
			if b.pipeLayouts[i] != nil {
				b.device.DestroyPipelineLayout(b.pipeLayouts[i])
				b.pipeLayouts[i] = nil
			}
			if b.layouts[i] != nil {
				b.device.DestroyBindGroupLayout(b.layouts[i])
				b.layouts[i] = nil
			}
		}
		if !b.externalDevice {
			b.device.Destroy()
		}
		b.device = nil
		b.queue = nil
	}
	if b.instance != nil {
		b.instance.Destroy()
		b.instance = nil
	}
}

// Caps implements darkroom.Backend.
func (b *Backend) Caps() darkroom.Caps {
	return darkroom.Caps{Accelerated: true, MaxDim: 16384}
}

// Apply implements darkroom.Backend: one compute dispatch per pass.
func (b *Backend) Apply(pass effect.Pass, src, dst darkroom.Texture, l darkroom.LUT) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return errors.New("wgpu: backend not initialized")
	}
	st, err := b.own(src)
	if err != nil {
		return err
	}
	dt, err := b.own(dst)
	if err != nil {
		return err
	}
	if st == dt {
		return errors.New("wgpu: pass source and destination must differ")
	}
	if st.w != dt.w || st.h != dt.h {
		return fmt.Errorf("wgpu: pass size mismatch %dx%d -> %dx%d", st.w, st.h, dt.w, dt.h)
	}

	var lutBuf hal.Buffer
	if pass.NeedsLUT {
		gl, ok := l.(*lut)
		if !ok || gl == nil {
			return errors.New("wgpu: pass needs a lut from this backend")
		}
		if !gl.valid {
			return errors.New("wgpu: lut was never uploaded")
		}
		lutBuf = gl.buf
	}

	pipe, err := b.pipelineFor(pass.Kind, pass.NeedsLUT)
	if err != nil {
		return err
	}
	return b.dispatch(pipe, pass, st, dt, lutBuf)
}
