package wgpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/darkroom"
	"github.com/gogpu/darkroom/effect"
	"github.com/gogpu/darkroom/internal/cache"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// paramsSize is the byte size of the Params uniform block shared by every
// kernel: width, height, amount, time, the texel step, and padding to a
// 16-byte multiple.
const paramsSize = 32

// passPipeline is one compiled kernel: shader module plus compute
// pipeline, shared across renders and cached by source hash.
type passPipeline struct {
	module   hal.ShaderModule
	pipeline hal.ComputePipeline
	withLUT  bool
}

func (p *passPipeline) destroy(device hal.Device) {
	if p.pipeline != nil {
		device.DestroyComputePipeline(p.pipeline)
	}
	if p.module != nil {
		device.DestroyShaderModule(p.module)
	}
}

// compileToSPIRV lowers a WGSL kernel to SPIR-V words through naga.
func compileToSPIRV(src string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: wgpu kernel: %w", darkroom.ErrShader, err)
	}
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}

// pipelineFor returns the compiled pipeline for a pass kind, building it
// on first use. Callers hold b.mu.
func (b *Backend) pipelineFor(kind effect.Kind, withLUT bool) (*passPipeline, error) {
	src, err := effect.KernelSource(kind)
	if err != nil {
		return nil, err
	}
	return b.pipelines.GetOrCreate(cache.Hash(src), func() (*passPipeline, error) {
		code, err := compileToSPIRV(src)
		if err != nil {
			return nil, err
		}
		module, err := b.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
			Label:  "darkroom_" + kind.String(),
			Source: hal.ShaderSource{SPIRV: code},
		})
		if err != nil {
			return nil, fmt.Errorf("%w: create shader module: %w", darkroom.ErrShader, err)
		}

		layoutIdx := 0
		if withLUT {
			layoutIdx = 1
		}
		pipeline, err := b.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
			Label:   "darkroom_" + kind.String(),
			Layout:  b.pipeLayouts[layoutIdx],
			Compute: hal.ComputeState{Module: module, EntryPoint: "main"},
		})
		if err != nil {
			b.device.DestroyShaderModule(module)
			return nil, fmt.Errorf("%w: create compute pipeline: %w", darkroom.ErrShader, err)
		}
		return &passPipeline{module: module, pipeline: pipeline, withLUT: withLUT}, nil
	})
}

// packParams serializes the uniform block for one dispatch.
func packParams(pass effect.Pass, w, h int) []byte {
	buf := make([]byte, paramsSize)
	binary.LittleEndian.PutUint32(buf[0:], uint32(w))
	binary.LittleEndian.PutUint32(buf[4:], uint32(h))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(pass.Amount))
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(effect.GrainTime))
	binary.LittleEndian.PutUint32(buf[16:], math.Float32bits(1/float32(w)))
	binary.LittleEndian.PutUint32(buf[20:], math.Float32bits(1/float32(h)))
	return buf
}

// dispatch encodes and submits one pass. Callers hold b.mu.
func (b *Backend) dispatch(pipe *passPipeline, pass effect.Pass, src, dst *texture, lutBuf hal.Buffer) error {
	uniformBuf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "darkroom_params",
		Size:  paramsSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create uniform buffer: %w", err)
	}
	defer b.device.DestroyBuffer(uniformBuf)
	b.queue.WriteBuffer(uniformBuf, 0, packParams(pass, src.w, src.h))

	pixelBufSize := uint64(src.w) * uint64(src.h) * 4
	entries := []gputypes.BindGroupEntry{
		{Binding: 0, Resource: gputypes.BufferBinding{Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: paramsSize}},
		{Binding: 1, Resource: gputypes.BufferBinding{Buffer: src.buf.NativeHandle(), Offset: 0, Size: pixelBufSize}},
		{Binding: 2, Resource: gputypes.BufferBinding{Buffer: dst.buf.NativeHandle(), Offset: 0, Size: pixelBufSize}},
	}
	layoutIdx := 0
	if pipe.withLUT {
		layoutIdx = 1
		entries = append(entries, gputypes.BindGroupEntry{
			Binding: 3,
			Resource: gputypes.BufferBinding{
				Buffer: lutBuf.NativeHandle(), Offset: 0, Size: effect.LUTSize * 4,
			},
		})
	}
	bindGroup, err := b.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "darkroom_" + pass.Kind.String(),
		Layout:  b.layouts[layoutIdx],
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create bind group: %w", err)
	}
	defer b.device.DestroyBindGroup(bindGroup)

	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "darkroom_pass"})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("darkroom_" + pass.Kind.String()); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	computePass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "darkroom_" + pass.Kind.String()})
	computePass.SetPipeline(pipe.pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)
	computePass.Dispatch((uint32(src.w)+7)/8, (uint32(src.h)+7)/8, 1)
	computePass.End()
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	return b.submitAndWait(cmdBuf)
}
