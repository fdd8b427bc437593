package interact

import (
	"bytes"
	"errors"
	"image/color"
	"math"
	"testing"
	"time"

	"shibori/internal/core"
	"shibori/internal/surface"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	clock *core.ManualClock
	queue *Queue
	loop  *Loop
}

func newHarness(w, h int, cfg Config, seed int64) *harness {
	clock := core.NewManualClock(epoch)
	q := NewQueue()
	return &harness{clock: clock, queue: q, loop: NewLoop(w, h, cfg, clock, q, core.NewRNG(seed))}
}

// settle advances the clock one frame at a time until the loop stops
// scheduling itself.
func (h *harness) settle(t *testing.T) {
	t.Helper()
	for i := 0; i < 500 && h.queue.Pending() > 0; i++ {
		h.clock.Advance(20 * time.Millisecond)
		h.queue.Fire(h.clock.Now())
	}
	if h.queue.Pending() > 0 {
		t.Fatalf("loop never went idle")
	}
}

func blankPixels(w, h int, cfg Config) []byte {
	c := surface.NewCanvas(w, h)
	c.Clear(cfg.Background)
	return c.Pixels()
}

func TestEventProgressAndEasing(t *testing.T) {
	e := DiffusionEvent{MaxRadius: 50, PeakOpacity: 0.8, Start: epoch, Duration: time.Second}
	cases := []struct {
		at    time.Duration
		p     float64
		state State
	}{
		{-time.Second, 0, Spawned},
		{0, 0, Spawned},
		{500 * time.Millisecond, 0.5, Animating},
		{time.Second, 1, Settled},
		{time.Hour, 1, Settled},
	}
	for _, tc := range cases {
		now := epoch.Add(tc.at)
		if got := e.Progress(now); got != tc.p {
			t.Fatalf("Progress(%v) = %v, want %v", tc.at, got, tc.p)
		}
		if got := e.State(now); got != tc.state {
			t.Fatalf("State(%v) = %v, want %v", tc.at, got, tc.state)
		}
	}
	if got := Ease(0.5); got != 0.875 {
		t.Fatalf("Ease(0.5) = %v", got)
	}
	half := epoch.Add(500 * time.Millisecond)
	if got := e.Radius(half); math.Abs(got-43.75) > 1e-9 {
		t.Fatalf("Radius at half = %v", got)
	}
	end := epoch.Add(time.Hour)
	if e.Radius(end) != 50 {
		t.Fatalf("radius not clamped at MaxRadius: %v", e.Radius(end))
	}
	if got := e.Opacity(end, DefaultFade); math.Abs(got-0.8*0.65) > 1e-9 {
		t.Fatalf("terminal opacity = %v", got)
	}
}

func TestDegenerateEvents(t *testing.T) {
	instant := DiffusionEvent{MaxRadius: 10, PeakOpacity: 1, Start: epoch}
	if instant.State(epoch) != Settled || instant.Radius(epoch) != 10 {
		t.Fatalf("zero duration event should settle at full radius")
	}
	dot := DiffusionEvent{MaxRadius: -4, PeakOpacity: 0.7, Start: epoch, Duration: time.Second}
	if dot.Radius(epoch.Add(time.Hour)) != 0 || dot.Opacity(epoch.Add(time.Hour), DefaultFade) != 0.7 {
		t.Fatalf("negative radius should be a full-peak dot")
	}
	nan := DiffusionEvent{MaxRadius: math.NaN(), PeakOpacity: math.NaN(), Duration: time.Second}
	if nan.Radius(epoch) != 0 || nan.Opacity(epoch, DefaultFade) != 0 {
		t.Fatalf("NaN geometry not clamped")
	}
}

func TestQueueDefersNestedRequests(t *testing.T) {
	q := NewQueue()
	var calls []string
	q.RequestTick(func(time.Time) {
		calls = append(calls, "a")
		q.RequestTick(func(time.Time) { calls = append(calls, "nested") })
	})
	dropped := q.RequestTick(func(time.Time) { calls = append(calls, "dropped") })
	q.Cancel(dropped)
	if ran := q.Fire(epoch); ran != 1 {
		t.Fatalf("first Fire ran %d callbacks", ran)
	}
	if len(calls) != 1 || q.Pending() != 1 {
		t.Fatalf("calls %v pending %d", calls, q.Pending())
	}
	q.Fire(epoch)
	if len(calls) != 2 || calls[1] != "nested" || q.Pending() != 0 {
		t.Fatalf("calls %v pending %d", calls, q.Pending())
	}
}

func TestClickOnlyEnqueues(t *testing.T) {
	h := newHarness(50, 50, DefaultConfig(), 1)
	before := h.loop.Visible().Pixels()
	if !h.loop.Click(25, 25) {
		t.Fatalf("click rejected")
	}
	if !bytes.Equal(before, h.loop.Visible().Pixels()) {
		t.Fatalf("click painted outside a tick")
	}
	if !h.loop.Scheduled() || h.queue.Pending() != 1 {
		t.Fatalf("click did not request a tick")
	}
	h.loop.Click(10, 10)
	if h.queue.Pending() != 1 {
		t.Fatalf("second click requested a duplicate tick")
	}
}

func TestOutOfBoundsClicksIgnored(t *testing.T) {
	h := newHarness(50, 40, DefaultConfig(), 1)
	for _, p := range [][2]float64{{-1, 5}, {50, 5}, {5, 40}, {math.NaN(), 3}, {3, math.Inf(1)}} {
		if h.loop.Click(p[0], p[1]) {
			t.Fatalf("click at %v accepted", p)
		}
	}
	if len(h.loop.Events()) != 0 || h.queue.Pending() != 0 {
		t.Fatalf("out of bounds click changed state")
	}
}

func TestThrottleSkipsSubFrameTicks(t *testing.T) {
	h := newHarness(30, 30, DefaultConfig(), 1)
	h.loop.Click(15, 15)
	h.queue.Fire(h.clock.Now())
	if h.loop.Frames() != 1 {
		t.Fatalf("first tick did not draw")
	}
	h.clock.Advance(5 * time.Millisecond)
	h.queue.Fire(h.clock.Now())
	if h.loop.Frames() != 1 || h.queue.Pending() != 1 {
		t.Fatalf("sub-frame tick drew (frames %d pending %d)", h.loop.Frames(), h.queue.Pending())
	}
	h.clock.Advance(12 * time.Millisecond)
	h.queue.Fire(h.clock.Now())
	if h.loop.Frames() != 2 {
		t.Fatalf("tick after a full frame did not draw")
	}
}

func TestThreeClicksThenTripleUndo(t *testing.T) {
	cfg := DefaultConfig()
	const w, hgt = 200, 150
	h := newHarness(w, hgt, cfg, 42)
	blank := blankPixels(w, hgt, cfg)
	blankPNG, err := h.loop.ExportRaster("png", 0)
	if err != nil {
		t.Fatalf("ExportRaster: %v", err)
	}

	centers := []core.Point{{X: 40, Y: 40}, {X: 160, Y: 40}, {X: 100, Y: 110}}
	for _, c := range centers {
		if !h.loop.Click(c.X, c.Y) {
			t.Fatalf("click at %v rejected", c)
		}
		h.clock.Advance(100 * time.Millisecond)
		h.queue.Fire(h.clock.Now())
	}
	h.settle(t)

	reach := cfg.BaseRadius + cfg.RadiusJitter + 1
	vis := h.loop.Visible()
	for y := 0; y < hgt; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			if bytes.Equal(vis.Image().Pix[i:i+4], blank[i:i+4]) {
				continue
			}
			near := false
			for _, c := range centers {
				if math.Hypot(float64(x)+0.5-c.X, float64(y)+0.5-c.Y) <= reach {
					near = true
				}
			}
			if !near {
				t.Fatalf("pixel (%d,%d) changed away from every click", x, y)
			}
		}
	}
	for _, c := range centers {
		i := (int(c.Y)*w + int(c.X)) * 4
		if bytes.Equal(vis.Image().Pix[i:i+4], blank[i:i+4]) {
			t.Fatalf("click center %v left blank", c)
		}
	}

	for i := 0; i < 3; i++ {
		if !h.loop.Undo() {
			t.Fatalf("undo %d failed", i)
		}
		h.settle(t)
	}
	if h.loop.Undo() {
		t.Fatalf("undo succeeded on an empty history")
	}
	if !bytes.Equal(vis.Pixels(), blank) {
		t.Fatalf("triple undo did not restore the blank canvas")
	}
	undonePNG, err := h.loop.ExportRaster("png", 0)
	if err != nil {
		t.Fatalf("ExportRaster: %v", err)
	}
	if !bytes.Equal(undonePNG, blankPNG) {
		t.Fatalf("exported raster differs from blank export")
	}
}

func TestUndoMatchesShorterHistory(t *testing.T) {
	cfg := DefaultConfig()
	points := []core.Point{{X: 20, Y: 30}, {X: 60, Y: 35}, {X: 45, Y: 70}, {X: 50, Y: 50}}

	full := newHarness(100, 100, cfg, 9)
	for _, p := range points {
		full.loop.Click(p.X, p.Y)
		full.clock.Advance(40 * time.Millisecond)
		full.queue.Fire(full.clock.Now())
	}
	full.settle(t)
	full.loop.Undo()
	full.settle(t)

	short := newHarness(100, 100, cfg, 9)
	for _, p := range points[:3] {
		short.loop.Click(p.X, p.Y)
	}
	short.settle(t)

	if !bytes.Equal(full.loop.Visible().Pixels(), short.loop.Visible().Pixels()) {
		t.Fatalf("undo result differs from replaying the shorter history")
	}
}

func TestClearBlanksBothBuffers(t *testing.T) {
	cfg := DefaultConfig()
	h := newHarness(40, 40, cfg, 3)
	h.loop.Click(20, 20)
	h.settle(t)
	h.loop.Click(10, 10)
	h.loop.Clear()
	if h.queue.Pending() != 0 || len(h.loop.Events()) != 0 {
		t.Fatalf("clear left work behind")
	}
	if !bytes.Equal(h.loop.Visible().Pixels(), blankPixels(40, 40, cfg)) {
		t.Fatalf("visible canvas not blank after clear")
	}
}

func TestCloseCancelsTick(t *testing.T) {
	h := newHarness(40, 40, DefaultConfig(), 3)
	h.loop.Click(20, 20)
	h.loop.Close()
	if h.queue.Pending() != 0 {
		t.Fatalf("close left a tick pending")
	}
	if h.loop.Click(5, 5) || h.loop.Undo() {
		t.Fatalf("closed loop accepted input")
	}
	if _, err := h.loop.ExportRaster("png", 0); !errors.Is(err, surface.ErrSurfaceUnavailable) {
		t.Fatalf("export after close: %v", err)
	}
}

func TestFrozenClockKeepsRedrawingStartState(t *testing.T) {
	cfg := DefaultConfig()
	h := newHarness(40, 40, cfg, 3)
	h.loop.Click(20, 20)
	for i := 0; i < 10; i++ {
		h.queue.Fire(h.clock.Now())
	}
	if h.loop.Frames() != 1 || h.queue.Pending() != 1 {
		t.Fatalf("frozen clock: frames %d pending %d", h.loop.Frames(), h.queue.Pending())
	}
	changed := 0
	blank := blankPixels(40, 40, cfg)
	px := h.loop.Visible().Pixels()
	for i := 0; i < len(px); i += 4 {
		if !bytes.Equal(px[i:i+4], blank[i:i+4]) {
			changed++
		}
	}
	if changed != 1 {
		t.Fatalf("start state should be a single dot, %d pixels changed", changed)
	}
}

func TestZeroDurationAndRadius(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Duration = 0
	cfg.BaseRadius = 0
	cfg.RadiusJitter = 0
	cfg.BaseOpacity = 1
	cfg.OpacityJitter = 0
	cfg.HueJitter = 0
	h := newHarness(20, 20, cfg, 3)
	h.loop.Click(7.5, 3.2)
	if h.loop.Events()[0].State(h.clock.Now()) != Settled {
		t.Fatalf("zero duration event not settled")
	}
	h.queue.Fire(h.clock.Now())
	if h.queue.Pending() != 0 || h.loop.Frames() != 1 {
		t.Fatalf("settled event kept the loop running")
	}
	dot := h.loop.Visible().RGBAAt(7, 3)
	want := cfg.Color.OrDefault()
	tint := color.RGBA{
		R: uint8(uint16(want.R) * uint16(cfg.Background.R) / 255),
		G: uint8(uint16(want.G) * uint16(cfg.Background.G) / 255),
		B: uint8(uint16(want.B) * uint16(cfg.Background.B) / 255),
		A: 255,
	}
	if dot != tint {
		t.Fatalf("dot = %v, want full-opacity multiply %v", dot, tint)
	}
	if h.loop.Visible().RGBAAt(8, 3) != h.loop.Visible().RGBAAt(0, 0) {
		t.Fatalf("dot spread to a neighbor")
	}
}
