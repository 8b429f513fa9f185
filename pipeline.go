// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package darkroom

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/darkroom/analyze"
)

// pipelineState tracks the pipeline lifecycle. Transitions only move
// forward within a pipeline's life, except Rendered -> ImageLoaded when a
// new image or new settings arrive.
type pipelineState int

const (
	stateInitialized pipelineState = iota
	stateImageLoaded
	stateRendered
	stateDisposed
)

// Config controls pipeline construction. The zero value selects the
// highest-priority registered backend with automatic fallback.
type Config struct {
	// Backend forces a specific backend by name ("wgpu", "software").
	// Empty means: try registered backends in priority order and use
	// the first whose initialization succeeds.
	Backend string
}

// Pipeline is a color and tone adjustment engine bound to one backend.
// Load an image, adjust settings, render, read pixels:
//
//	p, err := darkroom.NewPipeline(darkroom.Config{})
//	...
//	p.LoadImage(img)
//	p.SetSettings(darkroom.Partial{Contrast: darkroom.Value(20)})
//	pm, err := p.Pixels()
//
// A Pipeline is safe for concurrent use; every method takes its lock.
type Pipeline struct {
	mu sync.Mutex

	backend  Backend
	rm       *resourceManager
	settings Settings
	state    pipelineState

	// source keeps a CPU copy of the loaded image for analysis and so
	// the surface can be restored after a resize.
	source *Pixmap
}

// NewPipeline creates a pipeline on the configured backend. With an empty
// Config.Backend, registered backends are probed in priority order and
// the first available one wins; the choice is logged.
func NewPipeline(cfg Config) (*Pipeline, error) {
	b, err := openBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}
	Logger().Info("pipeline ready",
		"backend", b.Name(),
		"accelerated", b.Caps().Accelerated)
	return &Pipeline{
		backend:  b,
		rm:       newResourceManager(b),
		settings: DefaultSettings(),
	}, nil
}

// BackendInUse returns the name of the backend this pipeline runs on.
func (p *Pipeline) BackendInUse() string {
	return p.backend.Name()
}

// LoadImage uploads img as the new source. Settings are preserved; the
// next Render applies them to the new image.
func (p *Pipeline) LoadImage(img image.Image) error {
	if img == nil {
		return fmt.Errorf("%w: nil image", ErrResource)
	}
	return p.LoadPixmap(FromImage(img))
}

// LoadPixmap uploads pm as the new source without an image conversion.
// The pipeline keeps a reference; callers must not mutate pm afterwards.
func (p *Pipeline) LoadPixmap(pm *Pixmap) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == stateDisposed {
		return ErrDisposed
	}
	if pm == nil || pm.Width() == 0 || pm.Height() == 0 {
		return fmt.Errorf("%w: empty pixmap", ErrResource)
	}
	if err := p.rm.ensureTargets(pm.Width(), pm.Height()); err != nil {
		return err
	}
	if err := p.backend.Write(p.rm.surface, pm.Data()); err != nil {
		return fmt.Errorf("%w: uploading source: %w", ErrResource, err)
	}
	p.source = pm
	p.state = stateImageLoaded
	Logger().Debug("image loaded", "width", pm.Width(), "height", pm.Height())
	return nil
}

// SetSettings merges the non-nil fields of part into the current
// settings, clamping each to its valid range. When an image is loaded the
// new settings are rendered immediately.
func (p *Pipeline) SetSettings(part Partial) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == stateDisposed {
		return ErrDisposed
	}
	p.settings = p.settings.Merged(part).Clamped()
	if p.state == stateInitialized {
		return nil
	}
	return p.renderLocked()
}

// ResetSettings restores every adjustment to its neutral value.
func (p *Pipeline) ResetSettings() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == stateDisposed {
		return ErrDisposed
	}
	p.settings = DefaultSettings()
	if p.state == stateInitialized {
		return nil
	}
	return p.renderLocked()
}

// Settings returns a copy of the current adjustment values.
func (p *Pipeline) Settings() Settings {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settings
}

// Render applies the current settings to the loaded image. Rendering
// always starts from the original source pixels, never from a previous
// render's output.
func (p *Pipeline) Render() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.renderLocked()
}

func (p *Pipeline) renderLocked() error {
	switch p.state {
	case stateDisposed:
		return ErrDisposed
	case stateInitialized:
		return ErrNoImage
	}
	if err := compose(p.rm, p.settings); err != nil {
		return err
	}
	p.state = stateRendered
	return nil
}

// Pixels returns the rendered image as a new Pixmap, rendering first if
// settings changed since the last Render.
func (p *Pipeline) Pixels() (*Pixmap, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != stateRendered {
		if err := p.renderLocked(); err != nil {
			return nil, err
		}
	}
	pm := NewPixmap(p.rm.width, p.rm.height)
	if err := p.backend.Read(p.rm.out, pm.Data()); err != nil {
		return nil, fmt.Errorf("%w: reading output: %w", ErrResource, err)
	}
	return pm, nil
}

// Image returns the rendered image as an image.Image.
func (p *Pipeline) Image() (image.Image, error) {
	pm, err := p.Pixels()
	if err != nil {
		return nil, err
	}
	return pm.ToImage(), nil
}

// AutoFix analyzes the loaded image and applies suggested whites, blacks
// and vibrance corrections on top of the current settings. It returns the
// applied update so callers can display or persist it.
func (p *Pipeline) AutoFix() (Partial, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == stateDisposed {
		return Partial{}, ErrDisposed
	}
	if p.source == nil {
		return Partial{}, ErrNoImage
	}
	part, err := analyze.AutoFix(p.source)
	if err != nil {
		return Partial{}, fmt.Errorf("%w: auto fix: %w", ErrEngine, err)
	}
	p.settings = p.settings.Merged(part).Clamped()
	Logger().Debug("auto fix applied",
		"whites", logValue(part.Whites),
		"blacks", logValue(part.Blacks),
		"vibrance", logValue(part.Vibrance))
	if err := p.renderLocked(); err != nil {
		return Partial{}, err
	}
	return part, nil
}

// logValue renders an optional settings field for logging.
func logValue(v *float32) any {
	if v == nil {
		return "unset"
	}
	return *v
}

// Stats returns resource counters for this pipeline.
func (p *Pipeline) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rm.stats
}

// Dispose releases all backend resources and the backend itself. The
// pipeline is unusable afterwards; further calls return ErrDisposed.
// Dispose is idempotent.
func (p *Pipeline) Dispose() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == stateDisposed {
		return nil
	}
	err := errors.Join(p.rm.dispose(), p.backend.Close())
	p.state = stateDisposed
	p.source = nil
	return err
}
