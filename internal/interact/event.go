// Package interact turns pointer gestures into animated dye drops painted
// through a double-buffered, frame-throttled loop.
package interact

import (
	"math"
	"time"

	"shibori/internal/core"
	"shibori/internal/palette"
	"shibori/internal/surface"
)

// DefaultFade is the share of peak opacity an event loses by the time it
// settles.
const DefaultFade = 0.35

// State is the lifecycle stage of a DiffusionEvent.
type State int

const (
	Spawned State = iota
	Animating
	Settled
)

func (s State) String() string {
	switch s {
	case Spawned:
		return "spawned"
	case Animating:
		return "animating"
	case Settled:
		return "settled"
	default:
		return "unknown"
	}
}

// DiffusionEvent is one dye drop spreading out from Center.
type DiffusionEvent struct {
	Center      core.Point
	MaxRadius   float64
	Color       palette.HSL
	PeakOpacity float64
	Start       time.Time
	Duration    time.Duration
}

// Progress returns elapsed time as a fraction of Duration in [0, 1]. Events
// without a positive duration are complete immediately.
func (e DiffusionEvent) Progress(now time.Time) float64 {
	if e.Duration <= 0 {
		return 1
	}
	return core.Clamp01(float64(now.Sub(e.Start)) / float64(e.Duration))
}

// Ease is the ease-out cubic curve 1-(1-p)^3 over clamped p.
func Ease(p float64) float64 {
	p = core.Clamp01(p)
	q := 1 - p
	return 1 - q*q*q
}

// State reports where the event is in its lifecycle at now.
func (e DiffusionEvent) State(now time.Time) State {
	p := e.Progress(now)
	switch {
	case p >= 1:
		return Settled
	case p <= 0:
		return Spawned
	default:
		return Animating
	}
}

// Radius returns the current disc radius in pixels.
func (e DiffusionEvent) Radius(now time.Time) float64 {
	if !(e.MaxRadius > 0) || math.IsInf(e.MaxRadius, 1) {
		return 0
	}
	return e.MaxRadius * Ease(e.Progress(now))
}

// Opacity returns the current center opacity. Degenerate events with no
// radius keep their full peak.
func (e DiffusionEvent) Opacity(now time.Time, fade float64) float64 {
	peak := core.Clamp01(e.PeakOpacity)
	if e.Radius(now) <= 0 {
		return peak
	}
	return peak * (1 - core.Clamp01(fade)*Ease(e.Progress(now)))
}

// Paint draws the event's current disc into dst using dst's blend mode.
func (e DiffusionEvent) Paint(dst surface.Surface, now time.Time, fade float64) {
	dst.FillRadial(surface.Fade(e.Center.X, e.Center.Y, e.Radius(now), e.Color.OrDefault(), e.Opacity(now, fade)))
}
