package interact

import (
	"image/color"
	"slices"
	"time"

	"shibori/internal/core"
	"shibori/internal/layers"
	"shibori/internal/palette"
	"shibori/internal/surface"
)

// Config sets the randomized shape of new events and the loop cadence.
type Config struct {
	BaseRadius    float64
	RadiusJitter  float64
	BaseOpacity   float64
	OpacityJitter float64
	HueJitter     float64
	Duration      time.Duration
	Color         palette.HSL
	Fade          float64
	Background    color.NRGBA
	FPS           int
}

// DefaultConfig returns the standard indigo drop.
func DefaultConfig() Config {
	return Config{
		BaseRadius:    40,
		RadiusJitter:  20,
		BaseOpacity:   0.55,
		OpacityJitter: 0.2,
		HueJitter:     8,
		Duration:      900 * time.Millisecond,
		Color:         palette.DefaultDye,
		Fade:          DefaultFade,
		Background:    layers.Paper,
		FPS:           60,
	}
}

// Loop owns an off-screen and a visible canvas. Gestures only append events
// and request a tick; every drawing happens inside the scheduled tick.
type Loop struct {
	cfg      Config
	clock    core.Clock
	sched    Scheduler
	rng      *core.RNG
	throttle *core.FrameThrottle

	offscreen *surface.Canvas
	visible   *surface.Canvas

	events []DiffusionEvent
	handle Handle
	dirty  bool
	closed bool
	frames int
}

// NewLoop creates a loop for a w×h canvas. A nil rng draws from an unseeded
// source.
func NewLoop(w, h int, cfg Config, clock core.Clock, sched Scheduler, rng *core.RNG) *Loop {
	if clock == nil {
		clock = core.SystemClock{}
	}
	if rng == nil {
		rng = core.NewUnseededRNG()
	}
	l := &Loop{
		cfg:       cfg,
		clock:     clock,
		sched:     sched,
		rng:       rng,
		throttle:  core.NewFrameThrottle(cfg.FPS),
		offscreen: surface.NewCanvas(w, h),
		visible:   surface.NewCanvas(w, h),
	}
	l.offscreen.Clear(cfg.Background)
	l.visible.Clear(cfg.Background)
	return l
}

func (l *Loop) Size() core.Size { return l.visible.Size() }

// Visible returns the on-screen canvas.
func (l *Loop) Visible() *surface.Canvas { return l.visible }

// Events returns a copy of the event list in paint order.
func (l *Loop) Events() []DiffusionEvent { return slices.Clone(l.events) }

// Frames reports how many frames have been drawn.
func (l *Loop) Frames() int { return l.frames }

// Scheduled reports whether a tick is pending.
func (l *Loop) Scheduled() bool { return l.handle != 0 }

// Active reports whether any event is still animating.
func (l *Loop) Active() bool { return l.activeAt(l.clock.Now()) }

func (l *Loop) activeAt(now time.Time) bool {
	for _, e := range l.events {
		if e.State(now) != Settled {
			return true
		}
	}
	return false
}

// Config returns the active configuration.
func (l *Loop) Config() Config { return l.cfg }

// Configure replaces the configuration. New values shape later clicks; a
// background or fade change is picked up on the next redraw.
func (l *Loop) Configure(cfg Config) {
	redraw := cfg.Background != l.cfg.Background || cfg.Fade != l.cfg.Fade
	l.cfg = cfg
	l.throttle.SetFPS(cfg.FPS)
	if redraw {
		l.Redraw()
	}
}

// Click spawns an event at (x, y). Points outside the canvas and clicks on a
// closed loop are ignored and report false.
func (l *Loop) Click(x, y float64) bool {
	if l.closed || !l.Size().Contains(x, y) {
		return false
	}
	c := l.cfg.Color
	c.H += l.rng.Jitter(l.cfg.HueJitter)
	e := DiffusionEvent{
		Center:      core.Point{X: x, Y: y},
		MaxRadius:   l.cfg.BaseRadius + l.rng.Float64()*l.cfg.RadiusJitter,
		PeakOpacity: core.Clamp01(l.cfg.BaseOpacity + l.rng.Float64()*l.cfg.OpacityJitter),
		Color:       c,
		Start:       l.clock.Now(),
		Duration:    l.cfg.Duration,
	}
	l.events = append(l.events, e)
	core.Logger().Debug("dye event", "x", x, "y", y, "radius", e.MaxRadius, "opacity", e.PeakOpacity)
	l.request()
	return true
}

// Undo removes the newest event and schedules a full redraw. It reports
// false when there is nothing to undo.
func (l *Loop) Undo() bool {
	if l.closed || len(l.events) == 0 {
		return false
	}
	l.events = l.events[:len(l.events)-1]
	l.dirty = true
	l.request()
	return true
}

// Clear drops every event and blanks both canvases.
func (l *Loop) Clear() {
	if l.closed {
		return
	}
	l.events = nil
	l.dirty = false
	l.cancel()
	l.offscreen.SetBlendMode(surface.Normal)
	l.offscreen.Clear(l.cfg.Background)
	l.visible.Clear(l.cfg.Background)
}

// Close cancels any pending tick and releases both canvases.
func (l *Loop) Close() {
	if l.closed {
		return
	}
	l.cancel()
	l.closed = true
	l.offscreen.Dispose()
	l.visible.Dispose()
}

// Redraw schedules a repaint even when nothing is animating.
func (l *Loop) Redraw() {
	if l.closed {
		return
	}
	l.dirty = true
	l.request()
}

// ExportRaster encodes the visible canvas.
func (l *Loop) ExportRaster(format string, quality int) ([]byte, error) {
	return layers.EncodeSurface(l.visible, format, quality)
}

func (l *Loop) request() {
	if l.closed || l.handle != 0 || l.sched == nil {
		return
	}
	l.handle = l.sched.RequestTick(l.tick)
}

func (l *Loop) cancel() {
	if l.handle != 0 && l.sched != nil {
		l.sched.Cancel(l.handle)
	}
	l.handle = 0
}

func (l *Loop) tick(now time.Time) {
	l.handle = 0
	if l.closed {
		return
	}
	if !l.throttle.Ready(now) {
		l.request()
		return
	}
	if err := l.paint(now); err != nil {
		core.Logger().Warn("frame skipped", "err", err)
		return
	}
	l.dirty = false
	l.frames++
	if l.activeAt(now) {
		l.request()
	}
}

// paint rebuilds the off-screen canvas from the whole event list and copies
// it to the visible canvas in one blit.
func (l *Loop) paint(now time.Time) error {
	l.offscreen.SetBlendMode(surface.Normal)
	l.offscreen.Clear(l.cfg.Background)
	l.offscreen.SetBlendMode(surface.Multiply)
	for _, e := range l.events {
		e.Paint(l.offscreen, now, l.cfg.Fade)
	}
	l.offscreen.SetBlendMode(surface.Normal)
	return l.visible.Blit(l.offscreen)
}
