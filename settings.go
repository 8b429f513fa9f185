package darkroom

import "github.com/gogpu/darkroom/effect"

// Settings is the full set of adjustment values. See the effect package
// for field ranges and activation semantics.
type Settings = effect.Settings

// Partial is a sparse settings update applied with Pipeline.SetSettings.
type Partial = effect.Partial

// DefaultSettings returns the neutral settings value.
func DefaultSettings() Settings { return effect.DefaultSettings() }

// Value returns a pointer to v, for building Partial literals.
func Value(v float32) *float32 { return effect.Value(v) }
