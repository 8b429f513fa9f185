package darkroom

import (
	"fmt"

	"github.com/gogpu/darkroom/effect"
)

// compose walks the resolved pass list over the resource manager's
// targets. The surface is never written, so every render starts from the
// original pixels; intermediate passes ping-pong between the two scratch
// targets and the final blit lands in the output target.
func compose(rm *resourceManager, s Settings) error {
	passes := effect.Passes(s)

	var lut LUT
	for _, p := range passes {
		if p.NeedsLUT {
			l, err := rm.ensureLUT(p.Amount)
			if err != nil {
				return err
			}
			lut = l
			break
		}
	}

	src := rm.surface
	next := 0
	for i, p := range passes {
		dst := rm.ping[next]
		if i == len(passes)-1 {
			dst = rm.out
		}

		var passLUT LUT
		if p.NeedsLUT {
			passLUT = lut
		}
		if err := rm.backend.Apply(p, src, dst, passLUT); err != nil {
			return fmt.Errorf("%w: pass %v: %w", ErrEngine, p.Kind, err)
		}

		src = dst
		next ^= 1
	}
	return nil
}
