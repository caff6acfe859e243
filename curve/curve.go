// Package curve implements the pure shape functions used by automation
// point interpolation and fader fades (spec §4.4, Open Questions). A curve
// maps a ratio in [0,1] to a value in [0,1]; callers scale the result into
// whatever range they need.
package curve

import "math"

// Algorithm names the curve family. Linear is the default — it is what you
// get from the zero Options value.
type Algorithm int

const (
	Linear Algorithm = iota
	Exponential
	Superellipse
	Pulse
	// Vital is aliased to Superellipse below; Zrythm references a distinct
	// "Vital" shape but its numerics are not present anywhere in the
	// retrieved source, so this alias is the best available approximation.
	// TODO: replace with the real Vital curve if its formula turns up.
	Vital
)

// Options parameterizes a curve family. Curviness is in [-1,1]: 0 is the
// neutral/most-linear member of the family, negative/positive bend the
// curve the opposite way, mirroring the original's single "curviness"
// knob per automation point / fade.
type Options struct {
	Algorithm Algorithm
	Curviness float64
}

// Eval evaluates the curve at ratio, clamping ratio into [0,1] first.
func Eval(ratio float64, opts Options) float64 {
	if ratio < 0 {
		ratio = 0
	} else if ratio > 1 {
		ratio = 1
	}
	switch opts.Algorithm {
	case Exponential:
		return exponential(ratio, opts.Curviness)
	case Superellipse, Vital:
		return superellipse(ratio, opts.Curviness)
	case Pulse:
		return pulse(ratio, opts.Curviness)
	default:
		return ratio
	}
}

// exponential bends the line using curviness as the exponent's bias;
// curviness 0 is linear, positive bows the curve downward (slow start),
// negative bows it upward (fast start).
func exponential(ratio, curviness float64) float64 {
	if curviness == 0 {
		return ratio
	}
	k := curviness
	if k > 0.999 {
		k = 0.999
	} else if k < -0.999 {
		k = -0.999
	}
	exp := (1 + k) / (1 - k)
	return math.Pow(ratio, exp)
}

// superellipse follows the |x|^n + |y|^n = 1 family used for "S" shaped
// automation curves; n grows with |curviness| and the sign picks which
// quadrant's arc is used.
func superellipse(ratio, curviness float64) float64 {
	n := 2.0 + math.Abs(curviness)*8.0
	if curviness >= 0 {
		return 1 - math.Pow(1-math.Pow(ratio, n), 1/n)
	}
	return math.Pow(1-math.Pow(1-ratio, n), 1/n)
}

// pulse is a step function: 0 until the curviness-controlled threshold,
// then 1. Curviness in [-1,1] maps to a threshold in [0,1], with 0
// curviness at the midpoint.
func pulse(ratio, curviness float64) float64 {
	threshold := (curviness + 1) / 2
	if ratio < threshold {
		return 0
	}
	return 1
}
