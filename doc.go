// Package darkroom provides a multi-pass photographic adjustment engine.
//
// # Overview
//
// darkroom renders a chain of color and tone adjustments (vibrance,
// saturation, temperature, contrast, blur, vignette, grain, ...) onto an
// image as an ordered sequence of effect passes over two ping-ponged
// offscreen buffers. The same pass chain runs on either of two backends:
// a CPU rasterization backend ("software") and a compute backend ("wgpu")
// built on gogpu/wgpu.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/darkroom"
//
//	    _ "github.com/gogpu/darkroom/backend/software"
//	    _ "github.com/gogpu/darkroom/backend/wgpu"
//	)
//
//	p, err := darkroom.NewPipeline(darkroom.Config{})
//	if err != nil { ... }
//	defer p.Dispose()
//
//	p.LoadImage(img) // any image.Image
//	p.SetSettings(darkroom.Partial{Saturation: darkroom.Value(35)})
//	out, _ := p.Pixels()
//
// # Backends
//
// Backends self-register on import. The pipeline probes the preferred
// compute backend first and falls back to the software backend when the
// probe fails; BackendInUse reports the backend actually selected.
//
// # Determinism
//
// Rendering is deterministic: grain uses amplitude-scaled hash noise with a
// fixed time constant, and every effect's parameter mapping is a pure
// function of the Settings value. Rendering the same image with the same
// Settings always produces the same pixels on a given backend.
package darkroom

// Version information
const (
	// Version is the current version of the library
	Version = "0.2.0"
)
