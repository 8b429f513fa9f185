package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/darkroom"
	"github.com/gogpu/darkroom/effect"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// texture is a storage buffer of packed RGBA8 pixels, one u32 per pixel
// in little-endian channel order. The host byte layout of that u32 array
// is exactly the RGBA byte stream, so uploads and downloads need no
// repacking. Output textures carry a staging buffer for readback.
type texture struct {
	backend *Backend
	w, h    int

	buf     hal.Buffer
	staging hal.Buffer // nil until first Read

	disposed bool
}

func (t *texture) Width() int  { return t.w }
func (t *texture) Height() int { return t.h }

func (t *texture) Dispose() error {
	if t.disposed {
		return nil
	}
	t.disposed = true
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if t.backend.device != nil {
		if t.buf != nil {
			t.backend.device.DestroyBuffer(t.buf)
		}
		if t.staging != nil {
			t.backend.device.DestroyBuffer(t.staging)
		}
	}
	t.buf, t.staging = nil, nil
	return nil
}

// lut is a 256-entry packed RGBA tone table in a storage buffer.
type lut struct {
	backend  *Backend
	buf      hal.Buffer
	valid    bool
	disposed bool
}

func (l *lut) Upload(data *[effect.LUTSize * 4]byte) error {
	l.backend.mu.Lock()
	defer l.backend.mu.Unlock()
	if l.disposed || l.buf == nil {
		return errors.New("wgpu: upload to disposed lut")
	}
	l.backend.queue.WriteBuffer(l.buf, 0, data[:])
	l.valid = true
	return nil
}

func (l *lut) Dispose() error {
	if l.disposed {
		return nil
	}
	l.disposed = true
	l.valid = false
	l.backend.mu.Lock()
	defer l.backend.mu.Unlock()
	if l.backend.device != nil && l.buf != nil {
		l.backend.device.DestroyBuffer(l.buf)
	}
	l.buf = nil
	return nil
}

// NewTexture implements darkroom.Backend.
func (b *Backend) NewTexture(width, height int, usage darkroom.TextureUsage) (darkroom.Texture, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return nil, errors.New("wgpu: backend not initialized")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("wgpu: invalid texture size %dx%d", width, height)
	}
	size := uint64(width) * uint64(height) * 4

	buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "darkroom_texture",
		Size:  size,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture buffer: %w", err)
	}

	t := &texture{backend: b, w: width, h: height, buf: buf}
	if usage == darkroom.UsageOutput {
		staging, err := b.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "darkroom_staging",
			Size:  size,
			Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			b.device.DestroyBuffer(buf)
			return nil, fmt.Errorf("wgpu: create staging buffer: %w", err)
		}
		t.staging = staging
	}
	return t, nil
}

// NewLUT implements darkroom.Backend.
func (b *Backend) NewLUT() (darkroom.LUT, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return nil, errors.New("wgpu: backend not initialized")
	}
	buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "darkroom_lut",
		Size:  effect.LUTSize * 4,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create lut buffer: %w", err)
	}
	return &lut{backend: b, buf: buf}, nil
}

// Write implements darkroom.Backend.
func (b *Backend) Write(t darkroom.Texture, pix []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	gt, err := b.own(t)
	if err != nil {
		return err
	}
	if len(pix) != gt.w*gt.h*4 {
		return fmt.Errorf("wgpu: write of %d bytes into %dx%d texture", len(pix), gt.w, gt.h)
	}
	b.queue.WriteBuffer(gt.buf, 0, pix)
	return nil
}

// Read implements darkroom.Backend. Reading copies the storage buffer to
// a mappable staging buffer under a fence, then maps it back.
func (b *Backend) Read(t darkroom.Texture, pix []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	gt, err := b.own(t)
	if err != nil {
		return err
	}
	size := uint64(gt.w) * uint64(gt.h) * 4
	if uint64(len(pix)) != size {
		return fmt.Errorf("wgpu: read of %d bytes from %dx%d texture", len(pix), gt.w, gt.h)
	}
	if gt.staging == nil {
		staging, err := b.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "darkroom_staging",
			Size:  size,
			Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("wgpu: create staging buffer: %w", err)
		}
		gt.staging = staging
	}

	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "darkroom_read"})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("darkroom_read"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	encoder.CopyBufferToBuffer(gt.buf, gt.staging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: size},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	if err := b.submitAndWait(cmdBuf); err != nil {
		return err
	}
	if err := b.queue.ReadBuffer(gt.staging, 0, pix); err != nil {
		return fmt.Errorf("wgpu: readback: %w", err)
	}
	return nil
}

func (b *Backend) own(t darkroom.Texture) (*texture, error) {
	if !b.initialized {
		return nil, errors.New("wgpu: backend not initialized")
	}
	gt, ok := t.(*texture)
	if !ok || gt == nil {
		return nil, errors.New("wgpu: texture belongs to another backend")
	}
	if gt.disposed {
		return nil, errors.New("wgpu: texture is disposed")
	}
	return gt, nil
}

func (b *Backend) submitAndWait(cmdBuf hal.CommandBuffer) error {
	fence, err := b.device.CreateFence()
	if err != nil {
		return fmt.Errorf("wgpu: create fence: %w", err)
	}
	defer b.device.DestroyFence(fence)
	if err := b.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	ok, err := b.device.Wait(fence, 1, submitTimeout)
	if err != nil || !ok {
		return fmt.Errorf("wgpu: wait for GPU: ok=%v err=%w", ok, err)
	}
	return nil
}
