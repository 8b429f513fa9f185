package darkroom

import "errors"

// Error taxonomy for pipeline operations. Concrete failures are wrapped
// around one of these sentinels so that callers can classify them with
// errors.Is without depending on backend-specific error values.
var (
	// ErrInitialization is returned when no backend could be initialized.
	// The pipeline probes the preferred backend once and falls back to the
	// software backend before giving up with this error.
	ErrInitialization = errors.New("darkroom: no backend could be initialized")

	// ErrResource is returned when a GPU-side allocation fails, typically
	// because the image dimensions exceed the backend's texture limit.
	// The pipeline remains usable for a differently sized image.
	ErrResource = errors.New("darkroom: resource allocation failed")

	// ErrShader is returned when an effect kernel fails to compile or its
	// pipeline fails to build. This indicates a programming defect in the
	// effect catalog, not a runtime input condition.
	ErrShader = errors.New("darkroom: shader compilation failed")

	// ErrEngine is returned when a render call fails mid-chain. The last
	// successfully rendered frame is preserved; the caller may retry.
	ErrEngine = errors.New("darkroom: render failed")

	// ErrDisposed is returned when operating on a disposed pipeline.
	ErrDisposed = errors.New("darkroom: pipeline has been disposed")

	// ErrNoImage is returned when rendering or reading pixels before an
	// image has been loaded.
	ErrNoImage = errors.New("darkroom: no image loaded")
)
