package darkroom

import (
	"errors"
	"fmt"

	"github.com/gogpu/darkroom/effect"
)

// Stats counts resource activity since the pipeline was created. Exposed
// so callers (and the reuse tests) can verify that repeated renders at a
// fixed size do not reallocate targets.
type Stats struct {
	// TextureAllocs counts texture creations, including replacements
	// after a resize.
	TextureAllocs int

	// LUTUploads counts tone table rebuilds. The table is rebuilt only
	// when the blacks value changes, not per render.
	LUTUploads int
}

// resourceManager owns every backend resource of one pipeline: the source
// surface, the two ping-pong scratch targets, the output target and the
// tone LUT. Targets are sized lazily and reused until the image size
// changes.
type resourceManager struct {
	backend Backend

	width, height int
	surface       Texture
	ping          [2]Texture
	out           Texture

	lut       LUT
	lutAmount float32
	lutValid  bool

	stats Stats
}

func newResourceManager(b Backend) *resourceManager {
	return &resourceManager{backend: b}
}

// ensureTargets (re)allocates the surface, scratch and output targets for
// the given size. A no-op when the size is unchanged.
func (rm *resourceManager) ensureTargets(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: invalid target size %dx%d", ErrResource, width, height)
	}
	if max := rm.backend.Caps().MaxDim; max > 0 && (width > max || height > max) {
		return fmt.Errorf("%w: %dx%d exceeds backend limit %d", ErrResource, width, height, max)
	}
	if width == rm.width && height == rm.height {
		return nil
	}

	if err := rm.disposeTargets(); err != nil {
		return err
	}

	alloc := func(usage TextureUsage) (Texture, error) {
		t, err := rm.backend.NewTexture(width, height, usage)
		if err != nil {
			return nil, fmt.Errorf("%w: allocating %dx%d target: %w", ErrResource, width, height, err)
		}
		rm.stats.TextureAllocs++
		return t, nil
	}

	var err error
	if rm.surface, err = alloc(UsageSurface); err != nil {
		return err
	}
	if rm.ping[0], err = alloc(UsageScratch); err != nil {
		return err
	}
	if rm.ping[1], err = alloc(UsageScratch); err != nil {
		return err
	}
	if rm.out, err = alloc(UsageOutput); err != nil {
		return err
	}
	rm.width, rm.height = width, height
	return nil
}

// ensureLUT returns the tone table for the given scaled blacks amount,
// rebuilding it only when the amount changed since the last upload.
func (rm *resourceManager) ensureLUT(amount float32) (LUT, error) {
	if rm.lut == nil {
		l, err := rm.backend.NewLUT()
		if err != nil {
			return nil, fmt.Errorf("%w: allocating tone table: %w", ErrResource, err)
		}
		rm.lut = l
	}
	if rm.lutValid && rm.lutAmount == amount {
		return rm.lut, nil
	}
	table := effect.BlacksCurve(amount)
	if err := rm.lut.Upload(&table); err != nil {
		return nil, fmt.Errorf("%w: uploading tone table: %w", ErrResource, err)
	}
	rm.lutAmount = amount
	rm.lutValid = true
	rm.stats.LUTUploads++
	return rm.lut, nil
}

func (rm *resourceManager) disposeTargets() error {
	var errs []error
	for _, t := range []Texture{rm.surface, rm.ping[0], rm.ping[1], rm.out} {
		if t != nil {
			errs = append(errs, t.Dispose())
		}
	}
	rm.surface, rm.ping[0], rm.ping[1], rm.out = nil, nil, nil, nil
	rm.width, rm.height = 0, 0
	return errors.Join(errs...)
}

// dispose releases every resource. Best effort: all resources are
// disposed even when some fail, and the failures are joined.
func (rm *resourceManager) dispose() error {
	errs := []error{rm.disposeTargets()}
	if rm.lut != nil {
		errs = append(errs, rm.lut.Dispose())
		rm.lut = nil
		rm.lutValid = false
	}
	return errors.Join(errs...)
}
