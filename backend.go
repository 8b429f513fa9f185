// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package darkroom

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/darkroom/effect"
)

// TextureUsage distinguishes the roles a backend texture can serve. Some
// backends back different roles with different native resources (storage
// buffers vs. sampled textures), so the role is fixed at creation.
type TextureUsage int

const (
	// UsageSurface is the source image upload target.
	UsageSurface TextureUsage = iota

	// UsageScratch is an intermediate ping-pong target.
	UsageScratch

	// UsageOutput is the final readback target.
	UsageOutput
)

// Texture is an opaque backend-owned pixel target. Textures are created
// through a Backend and are only valid with the backend that made them.
type Texture interface {
	// Width and Height return the pixel dimensions fixed at creation.
	Width() int
	Height() int

	// Dispose releases the native resource. Safe to call twice.
	Dispose() error
}

// LUT is a backend-owned 256-entry RGBA lookup table sampled by the tone
// passes.
type LUT interface {
	// Upload replaces the table contents.
	Upload(data *[effect.LUTSize * 4]byte) error

	// Dispose releases the native resource. Safe to call twice.
	Dispose() error
}

// Caps describes what a backend can do, for logging and test skips.
type Caps struct {
	// Accelerated is true for backends that execute on a GPU.
	Accelerated bool

	// MaxDim is the largest supported texture edge in pixels, or 0 for
	// no limit beyond available memory.
	MaxDim int
}

// Backend executes the per-pass pixel kernels. A backend is used by one
// Pipeline at a time; implementations may assume single-goroutine access
// after Init returns.
//
// Backend packages register themselves via blank import:
//
//	import _ "github.com/gogpu/darkroom/backend/software"
//	import _ "github.com/gogpu/darkroom/backend/wgpu"
type Backend interface {
	// Name returns the backend name (e.g. "wgpu", "software").
	Name() string

	// Init acquires native resources. Called once before any other
	// method; an error here makes the registry try the next backend.
	Init() error

	// Close releases everything the backend owns. Textures created by
	// the backend are invalid afterwards.
	Close() error

	// Caps reports backend capabilities. Valid after Init.
	Caps() Caps

	// NewTexture allocates a width x height RGBA8 target.
	NewTexture(width, height int, usage TextureUsage) (Texture, error)

	// NewLUT allocates a tone lookup table.
	NewLUT() (LUT, error)

	// Write uploads packed RGBA8 pixels (4 bytes per pixel, row-major)
	// into a texture. len(pix) must be width*height*4.
	Write(t Texture, pix []byte) error

	// Read downloads a texture into pix; same layout as Write.
	Read(t Texture, pix []byte) error

	// Apply executes one pass: reads src, writes dst. lut is non-nil
	// only when pass.NeedsLUT. src and dst must be distinct.
	Apply(pass effect.Pass, src, dst Texture, lut LUT) error
}

// Factory constructs an uninitialized backend instance.
type Factory func() Backend

type registration struct {
	name     string
	priority int
	factory  Factory
}

var (
	backendMu sync.RWMutex
	backends  []registration
)

// RegisterBackend makes a backend constructor available to NewPipeline.
// Higher priority backends are tried first. Registering a name twice
// replaces the earlier entry; backend packages call this from init.
func RegisterBackend(name string, priority int, f Factory) {
	if f == nil {
		panic("darkroom: RegisterBackend with nil factory")
	}
	backendMu.Lock()
	defer backendMu.Unlock()
	for i := range backends {
		if backends[i].name == name {
			backends[i] = registration{name, priority, f}
			return
		}
	}
	backends = append(backends, registration{name, priority, f})
}

// Backends returns the registered backend names, highest priority first.
func Backends() []string {
	backendMu.RLock()
	defer backendMu.RUnlock()
	regs := make([]registration, len(backends))
	copy(regs, backends)
	sort.SliceStable(regs, func(i, j int) bool { return regs[i].priority > regs[j].priority })
	names := make([]string, len(regs))
	for i, r := range regs {
		names[i] = r.name
	}
	return names
}

// newBackend instantiates the named backend without initializing it.
func newBackend(name string) (Backend, error) {
	backendMu.RLock()
	defer backendMu.RUnlock()
	for _, r := range backends {
		if r.name == name {
			return r.factory(), nil
		}
	}
	return nil, fmt.Errorf("%w: backend %q not registered (missing blank import?)", ErrInitialization, name)
}

// openBackend initializes the named backend, or walks the registry in
// priority order when name is empty, returning the first backend whose
// Init succeeds.
func openBackend(name string) (Backend, error) {
	if name != "" {
		b, err := newBackend(name)
		if err != nil {
			return nil, err
		}
		if err := b.Init(); err != nil {
			return nil, fmt.Errorf("%w: backend %q init: %w", ErrInitialization, name, err)
		}
		return b, nil
	}

	var firstErr error
	for _, n := range Backends() {
		b, err := newBackend(n)
		if err != nil {
			continue
		}
		if err := b.Init(); err != nil {
			Logger().Warn("backend unavailable, trying next", "backend", n, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		return b, nil
	}
	if firstErr != nil {
		return nil, fmt.Errorf("%w: no backend available: %w", ErrInitialization, firstErr)
	}
	return nil, fmt.Errorf("%w: no backends registered (missing blank import?)", ErrInitialization)
}
