// Package effect defines the effect catalog: the fixed, ordered table of
// adjustment passes the pipeline executes, together with each effect's
// parameter scaling, activation rule, color matrices, convolution kernels,
// tone curve, and WGSL kernel source.
//
// The catalog is the single source of truth for every numeric contract of
// the engine. The software backend evaluates the same table the WGSL
// generator renders, so the two backends cannot drift apart on divisors,
// thresholds, or curve constants.
//
// Pass order is load-bearing: later effects are defined relative to the
// cumulative result of earlier ones (vignette and grain always sit on top
// of all tonal work), so the table must never be reordered.
package effect
