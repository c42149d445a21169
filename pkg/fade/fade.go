// Package fade implements the time-based appear/disappear envelope shared by
// the animated layouts.
package fade

import "github.com/matzehuels/stacksketch/pkg/xform"

// Transition describes one fade cycle: fade in over In seconds, hold for Stay
// seconds, fade out over Out seconds. Each instance starts its cycle after a
// random delay of up to Jitter seconds.
type Transition struct {
	In     float32 `json:"in" toml:"in"`
	Stay   float32 `json:"stay" toml:"stay"`
	Out    float32 `json:"out" toml:"out"`
	Jitter float32 `json:"jitter" toml:"jitter"`
}

// Default returns the stock 2s in, 1s stay, 2s out cycle with 0.5s jitter.
func Default() Transition {
	return Transition{In: 2, Stay: 1, Out: 2, Jitter: 0.5}
}

// Valid reports whether all durations are non-negative.
func (t Transition) Valid() bool {
	return t.In >= 0 && t.Stay >= 0 && t.Out >= 0 && t.Jitter >= 0
}

// FadeInOut evaluates the envelope at time for an instance whose random
// delay draw is rand01. Both results are in [0, 1]; the visible amount is
// fadeIn - fadeOut.
func (t Transition) FadeInOut(time, rand01 float32) (fadeIn, fadeOut float32) {
	time -= rand01 * t.Jitter
	return t.FadeIn(time), t.FadeOut(time)
}

// FadeIn is 1 - (1 - x)^4 over [0, In], with x the normalized time.
func (t Transition) FadeIn(time float32) float32 {
	return 1 - quartic(1-ratio(time, t.In))
}

// FadeOut is x^4 over [In+Stay, In+Stay+Out].
func (t Transition) FadeOut(time float32) float32 {
	return quartic(ratio(time-t.In-t.Stay, t.Out))
}

// StayStart returns the time at which the hold phase begins.
func (t Transition) StayStart() float32 { return t.In }

// OutStart returns the time at which fading out begins.
func (t Transition) OutStart() float32 { return t.In + t.Stay }

// Total returns the length of a whole cycle including the maximum delay.
func (t Transition) Total() float32 { return t.In + t.Stay + t.Out + t.Jitter }

// ratio is saturate(x / d). A zero duration is a step at x = 0.
func ratio(x, d float32) float32 {
	if d <= 0 {
		if x >= 0 {
			return 1
		}
		return 0
	}
	return xform.Saturate(x / d)
}

func quartic(x float32) float32 {
	x *= x
	return x * x
}
