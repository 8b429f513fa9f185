// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package software provides the pure-Go rendering backend. It is the
// reference implementation of every pass kernel: the wgpu backend's WGSL
// kernels are written to match this package's arithmetic, including the
// per-pass quantization back to 8 bits.
//
// Import for side effects to register it:
//
//	import _ "github.com/gogpu/darkroom/backend/software"
package software

import (
	"errors"
	"fmt"

	"github.com/gogpu/darkroom"
	"github.com/gogpu/darkroom/effect"
)

// Priority places the software backend below accelerated backends in the
// registry, so it is selected only as a fallback.
const Priority = 0

func init() {
	darkroom.RegisterBackend("software", Priority, func() darkroom.Backend { return New() })
}

// Backend executes pass kernels on the CPU. Always available.
type Backend struct {
	initialized bool
	closed      bool
}

// New creates an uninitialized software backend.
func New() *Backend {
	return &Backend{}
}

// Name implements darkroom.Backend.
func (b *Backend) Name() string { return "software" }

// Init implements darkroom.Backend. The software backend has no native
// resources; Init only arms the lifecycle checks.
func (b *Backend) Init() error {
	if b.closed {
		return errors.New("software: backend is closed")
	}
	b.initialized = true
	return nil
}

// Close implements darkroom.Backend.
func (b *Backend) Close() error {
	b.initialized = false
	b.closed = true
	return nil
}

// Caps implements darkroom.Backend.
func (b *Backend) Caps() darkroom.Caps {
	return darkroom.Caps{Accelerated: false, MaxDim: 0}
}

// texture is a plain RGBA8 pixel buffer.
type texture struct {
	w, h     int
	pix      []byte
	disposed bool
}

func (t *texture) Width() int  { return t.w }
func (t *texture) Height() int { return t.h }

func (t *texture) Dispose() error {
	t.disposed = true
	t.pix = nil
	return nil
}

// lut is a CPU copy of the tone table.
type lut struct {
	table    [effect.LUTSize * 4]byte
	valid    bool
	disposed bool
}

func (l *lut) Upload(data *[effect.LUTSize * 4]byte) error {
	if l.disposed {
		return errors.New("software: upload to disposed lut")
	}
	l.table = *data
	l.valid = true
	return nil
}

func (l *lut) Dispose() error {
	l.disposed = true
	l.valid = false
	return nil
}

// NewTexture implements darkroom.Backend.
func (b *Backend) NewTexture(width, height int, _ darkroom.TextureUsage) (darkroom.Texture, error) {
	if !b.initialized {
		return nil, errors.New("software: backend not initialized")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("software: invalid texture size %dx%d", width, height)
	}
	return &texture{w: width, h: height, pix: make([]byte, width*height*4)}, nil
}

// NewLUT implements darkroom.Backend.
func (b *Backend) NewLUT() (darkroom.LUT, error) {
	if !b.initialized {
		return nil, errors.New("software: backend not initialized")
	}
	return &lut{}, nil
}

// Write implements darkroom.Backend.
func (b *Backend) Write(t darkroom.Texture, pix []byte) error {
	st, err := b.own(t)
	if err != nil {
		return err
	}
	if len(pix) != len(st.pix) {
		return fmt.Errorf("software: write of %d bytes into %dx%d texture", len(pix), st.w, st.h)
	}
	copy(st.pix, pix)
	return nil
}

// Read implements darkroom.Backend.
func (b *Backend) Read(t darkroom.Texture, pix []byte) error {
	st, err := b.own(t)
	if err != nil {
		return err
	}
	if len(pix) != len(st.pix) {
		return fmt.Errorf("software: read of %d bytes from %dx%d texture", len(pix), st.w, st.h)
	}
	copy(pix, st.pix)
	return nil
}

// Apply implements darkroom.Backend.
func (b *Backend) Apply(pass effect.Pass, src, dst darkroom.Texture, l darkroom.LUT) error {
	ss, err := b.own(src)
	if err != nil {
		return err
	}
	ds, err := b.own(dst)
	if err != nil {
		return err
	}
	if ss == ds {
		return errors.New("software: pass source and destination must differ")
	}
	if ss.w != ds.w || ss.h != ds.h {
		return fmt.Errorf("software: pass size mismatch %dx%d -> %dx%d", ss.w, ss.h, ds.w, ds.h)
	}

	var table *[effect.LUTSize * 4]byte
	if pass.NeedsLUT {
		sl, ok := l.(*lut)
		if !ok || sl == nil {
			return errors.New("software: pass needs a lut from this backend")
		}
		if !sl.valid {
			return errors.New("software: lut was never uploaded")
		}
		table = &sl.table
	}

	return runPass(pass, ss, ds, table)
}

func (b *Backend) own(t darkroom.Texture) (*texture, error) {
	if !b.initialized {
		return nil, errors.New("software: backend not initialized")
	}
	st, ok := t.(*texture)
	if !ok || st == nil {
		return nil, errors.New("software: texture belongs to another backend")
	}
	if st.disposed {
		return nil, errors.New("software: texture is disposed")
	}
	return st, nil
}
