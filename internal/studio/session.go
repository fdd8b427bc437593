package studio

import (
	"fmt"
	"image/color"
	"slices"
	"time"

	"shibori/internal/core"
	"shibori/internal/interact"
	"shibori/internal/layers"
	"shibori/internal/palette"
	"shibori/internal/pattern"
	"shibori/internal/render"
	"shibori/internal/surface"
)

// Mode selects what a click does.
type Mode int

const (
	// DyeMode drops animated dye at the click.
	DyeMode Mode = iota
	// PatternMode ties the pending pattern at the click.
	PatternMode
)

func (m Mode) String() string {
	if m == PatternMode {
		return "pattern"
	}
	return "dye"
}

// ParseMode reads "dye" or "pattern".
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "dye":
		return DyeMode, true
	case "pattern":
		return PatternMode, true
	}
	return DyeMode, false
}

// Operation tags recorded on finished layers.
const (
	OpDyeClick = "dye-click"
	OpMixed    = "mixed"
	OpEmpty    = "blank"
)

type tied struct {
	tp   pattern.TiePoint
	seed int64
}

// Session is one editing canvas: the dye loop and the pattern grid feed a
// scratch preview that sits above the finished layers. Layers hold only
// dye and pattern coverage; the rendered blank cloth is the stack backdrop.
type Session struct {
	cfg   Config
	mode  Mode
	clock core.Clock
	queue *interact.Queue

	dye       *interact.Loop
	grid      *core.Grid
	blank     *core.Grid
	ties      []tied
	history   []Mode
	renderer  *render.FrameRenderer
	paper     *surface.Canvas
	patternCv *surface.Canvas
	scratch   *surface.Canvas
	display   *surface.Canvas
	stack     *layers.Stack

	patternDirty bool
	displayDirty bool
	dyeFrames    int
	closed       bool
}

// NewSession builds a session from cfg. A nil clock uses the wall clock.
func NewSession(cfg Config, clock core.Clock) (*Session, error) {
	if clock == nil {
		clock = core.SystemClock{}
	}
	stops, err := palette.ParseStops(cfg.Params.Palette)
	if err != nil {
		return nil, fmt.Errorf("studio: palette: %w", err)
	}
	mapper, err := palette.NewMapper(stops)
	if err != nil {
		return nil, fmt.Errorf("studio: palette: %w", err)
	}
	w, h := max(cfg.Width, 1), max(cfg.Height, 1)
	cfg.Width, cfg.Height = w, h

	s := &Session{
		cfg:       cfg,
		clock:     clock,
		queue:     interact.NewQueue(),
		grid:      core.NewGrid(w, h),
		blank:     core.NewGrid(w, h),
		renderer:  render.NewFrameRenderer(mapper, cfg.Params.LUTSize),
		paper:     surface.NewCanvas(w, h),
		patternCv: surface.NewCanvas(w, h),
		scratch:   surface.NewCanvas(w, h),
		display:   surface.NewCanvas(w, h),
		stack:     layers.NewStack(w, h),
	}
	s.dye = interact.NewLoop(w, h, s.loopConfig(), clock, s.queue, core.NewRNG(cfg.Seed))
	s.stack.SetBackdrop(s.paper)
	s.stack.SetScratch(s.scratch)
	s.patternDirty = true
	if err := s.refresh(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) loopConfig() interact.Config {
	p := s.cfg.Params
	lc := interact.DefaultConfig()
	lc.BaseRadius = p.BaseRadius
	lc.RadiusJitter = p.RadiusJitter
	lc.BaseOpacity = p.BaseOpacity
	lc.OpacityJitter = p.OpacityJitter
	lc.HueJitter = p.HueJitter
	lc.Duration = time.Duration(p.DurationMS) * time.Millisecond
	lc.Fade = p.Fade
	lc.FPS = p.FPS
	lc.Background = color.NRGBA{}
	hsl, err := palette.ParseHSL(p.DyeColor)
	if err != nil {
		core.Logger().Warn("invalid dye color, using default", "spec", p.DyeColor, "err", err)
		hsl = palette.DefaultDye
	}
	lc.Color = hsl
	return lc
}

func (s *Session) renderOptions() render.Options {
	return render.Options{
		WeaveAmplitude: s.cfg.Params.WeaveAmplitude,
		GrainAmplitude: s.cfg.Params.GrainAmplitude,
		TextureSeed:    s.cfg.Params.TextureSeed,
	}
}

func (s *Session) bounds() pattern.Bounds {
	p := s.cfg.Params
	return pattern.Bounds{SymmetryMin: p.SymmetryMin, SymmetryMax: p.SymmetryMax, IrregularityMax: p.IrregularityMax}
}

// Name identifies the session on the HUD.
func (s *Session) Name() string { return "shibori" }

func (s *Session) Size() core.Size { return core.Size{W: s.cfg.Width, H: s.cfg.Height} }

func (s *Session) Config() Config { return s.cfg }

func (s *Session) Mode() Mode { return s.mode }

func (s *Session) SetMode(m Mode) { s.mode = m }

// PendingTiePoint is the tie point a PatternMode click will apply.
func (s *Session) PendingTiePoint() pattern.TiePoint {
	p := s.cfg.Params
	return pattern.TiePoint{
		X: 50, Y: 50,
		Pattern:      p.Pattern,
		Size:         p.Size,
		Intensity:    p.Intensity,
		Symmetry:     p.Symmetry,
		Irregularity: p.Irregularity,
	}
}

// Display is the composited view: finished layers plus the scratch preview.
func (s *Session) Display() *surface.Canvas { return s.display }

// Grid exposes the pattern concentration grid.
func (s *Session) Grid() *core.Grid { return s.grid }

// Events returns the dye events of the current scratch work.
func (s *Session) Events() []interact.DiffusionEvent { return s.dye.Events() }

// TiePoints returns the applied tie points of the current scratch work.
func (s *Session) TiePoints() []pattern.TiePoint {
	out := make([]pattern.TiePoint, len(s.ties))
	for i, t := range s.ties {
		out[i] = t.tp
	}
	return out
}

// Animating reports whether the dye loop still has frames to draw.
func (s *Session) Animating() bool { return s.dye.Scheduled() }

// Click acts at pixel (x, y) according to the current mode.
func (s *Session) Click(x, y float64) bool {
	if s.closed || !s.Size().Contains(x, y) {
		return false
	}
	switch s.mode {
	case PatternMode:
		tp := s.PendingTiePoint()
		tp.X = x / float64(s.cfg.Width) * 100
		tp.Y = y / float64(s.cfg.Height) * 100
		t := tied{tp: tp.Normalize(s.bounds()), seed: s.cfg.Seed + int64(len(s.ties)+1)*7919}
		if err := s.tie(t); err != nil {
			core.Logger().Warn("tie point rejected", "pattern", tp.Pattern, "err", err)
			return false
		}
		s.ties = append(s.ties, t)
		s.history = append(s.history, PatternMode)
		s.patternDirty = true
		return true
	default:
		if !s.dye.Click(x, y) {
			return false
		}
		s.history = append(s.history, DyeMode)
		return true
	}
}

func (s *Session) tie(t tied) error {
	if err := pattern.ApplyBounded(s.grid, t.tp, s.bounds(), core.NewRNG(t.seed)); err != nil {
		return err
	}
	pattern.Bleed(s.grid, s.cfg.Params.BleedIterations)
	return nil
}

// Undo reverts the newest dye drop or tie point.
func (s *Session) Undo() bool {
	if s.closed || len(s.history) == 0 {
		return false
	}
	last := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	if last == DyeMode {
		return s.dye.Undo()
	}
	s.ties = s.ties[:len(s.ties)-1]
	s.grid.Clear()
	for _, t := range s.ties {
		if err := s.tie(t); err != nil {
			core.Logger().Warn("tie point replay failed", "err", err)
		}
	}
	s.patternDirty = true
	return true
}

// Clear discards the scratch work. Finished layers are kept.
func (s *Session) Clear() {
	if s.closed {
		return
	}
	s.dye.Clear()
	s.grid.Clear()
	s.ties = nil
	s.history = nil
	s.patternDirty = true
}

// Tick drains the frame scheduler and rebuilds the display when anything
// changed. It reports whether the display was redrawn.
func (s *Session) Tick(now time.Time) bool {
	if s.closed {
		return false
	}
	s.queue.Fire(now)
	if f := s.dye.Frames(); f != s.dyeFrames {
		s.dyeFrames = f
		s.displayDirty = true
	}
	if !s.patternDirty && !s.displayDirty {
		return false
	}
	if err := s.refresh(); err != nil {
		core.Logger().Warn("display refresh failed", "err", err)
		return false
	}
	return true
}

// refresh renders the cloth and pattern if needed, rebuilds scratch as
// pattern coverage with the dye multiplied in, and composites the stack
// into the display.
func (s *Session) refresh() error {
	if s.patternDirty {
		opts := s.renderOptions()
		if err := s.renderer.Render(s.blank, s.paper, opts); err != nil {
			return err
		}
		if err := s.renderer.Render(s.grid, s.patternCv, opts); err != nil {
			return err
		}
		s.patternDirty = false
	}
	if err := s.scratch.Unblend(s.patternCv, s.paper); err != nil {
		return err
	}
	s.scratch.SetBlendMode(surface.Multiply)
	err := s.scratch.Draw(s.dye.Visible(), 1)
	s.scratch.SetBlendMode(surface.Normal)
	if err != nil {
		return err
	}
	if err := s.stack.Composite(s.display); err != nil {
		return err
	}
	s.displayDirty = false
	return nil
}

// FinishLayer freezes the scratch work into a new top layer and starts a
// fresh scratch.
func (s *Session) FinishLayer(name string) (layers.Info, error) {
	if s.closed {
		return layers.Info{}, surface.ErrSurfaceUnavailable
	}
	s.patternDirty = true
	if err := s.refresh(); err != nil {
		return layers.Info{}, err
	}
	opType, params := s.provenance()
	info, err := s.stack.FinalizeScratch(name, opType, params)
	if err != nil {
		return layers.Info{}, err
	}
	s.Clear()
	s.displayDirty = true
	if err := s.refresh(); err != nil {
		return info, err
	}
	core.Logger().Debug("layer finished", "id", info.ID, "type", opType)
	return info, nil
}

func (s *Session) provenance() (string, layers.Params) {
	events := s.dye.Events()
	kinds := map[pattern.Kind]bool{}
	ties := make([]map[string]any, 0, len(s.ties))
	for _, t := range s.ties {
		kinds[t.tp.Pattern] = true
		ties = append(ties, map[string]any{
			"x":            t.tp.X,
			"y":            t.tp.Y,
			"pattern":      string(t.tp.Pattern),
			"size":         t.tp.Size,
			"intensity":    t.tp.Intensity,
			"symmetry":     t.tp.Symmetry,
			"irregularity": t.tp.Irregularity,
			"seed":         t.seed,
		})
	}
	params := layers.Params{"events": len(events), "tiePoints": ties}
	switch {
	case len(events) > 0 && len(kinds) == 0:
		return OpDyeClick, params
	case len(events) == 0 && len(kinds) == 1:
		for k := range kinds {
			return "pattern-" + string(k), params
		}
	case len(events) == 0 && len(kinds) == 0:
		return OpEmpty, params
	}
	return OpMixed, params
}

// Layers returns the finished layers in ascending order.
func (s *Session) Layers() []layers.Info { return s.stack.Layers() }

// UpdateLayer forwards to the stack and schedules a recomposite.
func (s *Session) UpdateLayer(id string, p layers.Patch) bool {
	return s.touch(s.stack.UpdateLayer(id, p))
}

// RemoveLayer forwards to the stack and schedules a recomposite.
func (s *Session) RemoveLayer(id string) bool {
	return s.touch(s.stack.RemoveLayer(id))
}

// MoveLayer forwards to the stack and schedules a recomposite.
func (s *Session) MoveLayer(id string, dir layers.Direction) bool {
	return s.touch(s.stack.MoveLayer(id, dir))
}

func (s *Session) touch(changed bool) bool {
	if changed {
		s.displayDirty = true
	}
	return changed
}

// ExportRaster encodes the display as seen, scratch preview included.
func (s *Session) ExportRaster(format string, quality int) ([]byte, error) {
	return layers.EncodeSurface(s.display, format, quality)
}

// ExportComposite encodes the finished layers only.
func (s *Session) ExportComposite(format string, quality int) ([]byte, error) {
	return s.stack.ExportComposite(format, quality)
}

// ExportThumbnail encodes a downscaled PNG of the finished layers.
func (s *Session) ExportThumbnail(maxSide int) ([]byte, error) {
	return s.stack.ExportThumbnail(maxSide)
}

// ExportLayersData describes the finished layers.
func (s *Session) ExportLayersData(opts layers.ExportOptions) (layers.LayersData, error) {
	return s.stack.ExportLayersData(opts)
}

// ImportLayersData replaces the finished layers.
func (s *Session) ImportLayersData(d layers.LayersData) error {
	if err := s.stack.ImportLayersData(d); err != nil {
		return err
	}
	s.displayDirty = true
	return nil
}

// Close cancels pending frames and releases every canvas.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.dye.Close()
	for _, c := range []*surface.Canvas{s.paper, s.patternCv, s.scratch, s.display} {
		c.Dispose()
	}
	for _, in := range slices.Backward(s.stack.Layers()) {
		s.stack.RemoveLayer(in.ID)
	}
}
