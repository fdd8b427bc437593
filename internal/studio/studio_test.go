package studio

import (
	"bytes"
	"errors"
	"slices"
	"testing"
	"time"

	"shibori/internal/core"
	"shibori/internal/layers"
	"shibori/internal/palette"
	"shibori/internal/pattern"
	"shibori/internal/surface"
)

var epoch = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func TestFromMapParsesAndRepairs(t *testing.T) {
	cfg := FromMap(map[string]string{
		"w":                "64",
		"h":                "-3",
		"seed":             "99",
		"pattern":          " Arashi ",
		"size":             "250",
		"intensity":        "0.4",
		"symmetry_min":     "6",
		"symmetry_max":     "3",
		"bleed_iterations": "x",
		"fade":             "1.7",
		"weave":            "-1",
		"dye_color":        "#123456",
	})
	def := DefaultConfig()
	if cfg.Width != 64 || cfg.Height != def.Height || cfg.Seed != 99 {
		t.Fatalf("canvas fields = %dx%d seed %d", cfg.Width, cfg.Height, cfg.Seed)
	}
	p := cfg.Params
	if p.Pattern != pattern.Arashi || p.Size != 100 || p.Intensity != 0.4 {
		t.Fatalf("pattern fields = %+v", p)
	}
	if p.SymmetryMin != 6 || p.SymmetryMax != 6 {
		t.Fatalf("symmetry bounds not repaired: %d..%d", p.SymmetryMin, p.SymmetryMax)
	}
	if p.BleedIterations != def.Params.BleedIterations || p.WeaveAmplitude != def.Params.WeaveAmplitude {
		t.Fatalf("invalid values were not ignored: %+v", p)
	}
	if p.Fade != 1 || p.DyeColor != "#123456" {
		t.Fatalf("fade %v dye %q", p.Fade, p.DyeColor)
	}
	if FromMap(nil) != def {
		t.Fatalf("nil map should yield defaults")
	}
	if FromMap(map[string]string{"pattern": "tartan"}).Params.Pattern != def.Params.Pattern {
		t.Fatalf("unknown pattern accepted")
	}
}

func TestDefaultPaletteMatchesIndigo(t *testing.T) {
	stops, err := palette.ParseStops(DefaultPalette)
	if err != nil {
		t.Fatalf("ParseStops: %v", err)
	}
	if !slices.Equal(stops, palette.DefaultIndigo()) {
		t.Fatalf("default palette string drifted from the indigo ramp: %v", stops)
	}
}

func newSession(t *testing.T) (*Session, *core.ManualClock) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Width = 120
	cfg.Height = 90
	clock := core.NewManualClock(epoch)
	s, err := NewSession(cfg, clock)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	t.Cleanup(s.Close)
	return s, clock
}

func run(s *Session, clock *core.ManualClock) {
	for i := 0; i < 400; i++ {
		clock.Advance(20 * time.Millisecond)
		s.Tick(clock.Now())
		if !s.Animating() {
			return
		}
	}
}

func TestNewSessionRejectsBadPalette(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Params.Palette = "nonsense"
	if _, err := NewSession(cfg, nil); !errors.Is(err, palette.ErrInvalidColor) {
		t.Fatalf("err = %v", err)
	}
}

func TestDyeClickAndUndoRestoreDisplay(t *testing.T) {
	s, clock := newSession(t)
	blank := s.Display().Pixels()
	if !s.Click(60, 45) {
		t.Fatalf("click rejected")
	}
	run(s, clock)
	if bytes.Equal(blank, s.Display().Pixels()) {
		t.Fatalf("dye click left the display unchanged")
	}
	if !s.Undo() {
		t.Fatalf("undo failed")
	}
	run(s, clock)
	if !bytes.Equal(blank, s.Display().Pixels()) {
		t.Fatalf("undo did not restore the blank display")
	}
}

func TestPatternClickUsesPendingTiePoint(t *testing.T) {
	s, clock := newSession(t)
	blank := s.Display().Pixels()
	if !s.SetChoiceParameter("mode", "pattern") || s.Mode() != PatternMode {
		t.Fatalf("mode switch failed")
	}
	s.SetChoiceParameter("pattern", "kanoko")
	s.SetIntParameter("symmetry", 6)
	if !s.Click(30, 45) {
		t.Fatalf("pattern click rejected")
	}
	tps := s.TiePoints()
	if len(tps) != 1 || tps[0].Pattern != pattern.Kanoko || tps[0].Symmetry != 6 || tps[0].X != 25 || tps[0].Y != 50 {
		t.Fatalf("tie points = %+v", tps)
	}
	if s.Grid().Max() <= 0 {
		t.Fatalf("pattern click left the grid empty")
	}
	s.Tick(clock.Now())
	if bytes.Equal(blank, s.Display().Pixels()) {
		t.Fatalf("pattern click left the display unchanged")
	}
	s.Undo()
	s.Tick(clock.Now())
	if s.Grid().Max() != 0 || !bytes.Equal(blank, s.Display().Pixels()) {
		t.Fatalf("undo did not clear the tie point")
	}
}

func TestPatternUndoReplaysEarlierTiePoints(t *testing.T) {
	s, _ := newSession(t)
	s.SetMode(PatternMode)
	s.Click(30, 30)
	want := s.Grid().Clone()
	s.Click(80, 60)
	s.Undo()
	if !slices.Equal(want.Cells(), s.Grid().Cells()) {
		t.Fatalf("grid after undo differs from single tie point")
	}
}

func TestFinishLayerRecordsProvenance(t *testing.T) {
	s, clock := newSession(t)
	s.Click(20, 20)
	run(s, clock)
	dyed, err := s.FinishLayer("Drops")
	if err != nil {
		t.Fatalf("FinishLayer: %v", err)
	}
	if dyed.SourceOperationType != OpDyeClick || dyed.Name != "Drops" || dyed.Params["events"] != 1 {
		t.Fatalf("dye layer = %+v", dyed)
	}
	if len(s.Events()) != 0 {
		t.Fatalf("scratch events survived FinishLayer")
	}

	s.SetMode(PatternMode)
	s.Click(60, 45)
	tied, err := s.FinishLayer("")
	if err != nil {
		t.Fatalf("FinishLayer: %v", err)
	}
	if tied.SourceOperationType != "pattern-kumo" || tied.Order != 1 {
		t.Fatalf("pattern layer = %+v", tied)
	}

	d, err := s.ExportLayersData(layers.ExportOptions{})
	if err != nil {
		t.Fatalf("ExportLayersData: %v", err)
	}
	if len(d.Layers) != 2 || d.Layers[0].ID != dyed.ID || d.Layers[1].SourceOperationType != "pattern-kumo" {
		t.Fatalf("layers data = %+v", d.Layers)
	}
	if _, err := s.ExportComposite("png", 0); err != nil {
		t.Fatalf("ExportComposite: %v", err)
	}
}

func TestSecondLayerKeepsFirstDropVisible(t *testing.T) {
	s, clock := newSession(t)
	blank, blankFar := s.Display().RGBAAt(20, 20), s.Display().RGBAAt(100, 70)

	s.Click(20, 20)
	run(s, clock)
	first, err := s.FinishLayer("First")
	if err != nil {
		t.Fatalf("FinishLayer: %v", err)
	}
	dyed := s.Display().RGBAAt(20, 20)
	if dyed == blank {
		t.Fatalf("first drop left the cloth unchanged: %v", dyed)
	}
	surf, _ := s.stack.Surface(first.ID)
	if got := surf.(*surface.Canvas).RGBAAt(115, 85); got.A != 0 {
		t.Fatalf("finished layer covers undyed cloth: %v", got)
	}

	s.Click(100, 70)
	run(s, clock)
	if _, err := s.FinishLayer("Second"); err != nil {
		t.Fatalf("FinishLayer: %v", err)
	}
	if got := s.Display().RGBAAt(20, 20); got != dyed {
		t.Fatalf("finishing the second layer changed the first drop: %v, want %v", got, dyed)
	}
	if got := s.Display().RGBAAt(100, 70); got == blankFar || got.A != 255 {
		t.Fatalf("second drop missing: %v", got)
	}
}

func TestLayerOpsRecomposite(t *testing.T) {
	s, clock := newSession(t)
	s.SetMode(PatternMode)
	s.Click(60, 45)
	info, err := s.FinishLayer("Spider")
	if err != nil {
		t.Fatalf("FinishLayer: %v", err)
	}
	shown := s.Display().Pixels()
	hidden := false
	if !s.UpdateLayer(info.ID, layers.Patch{Visible: &hidden}) {
		t.Fatalf("UpdateLayer failed")
	}
	if !s.Tick(clock.Now()) {
		t.Fatalf("layer change did not redraw")
	}
	if bytes.Equal(shown, s.Display().Pixels()) {
		t.Fatalf("hiding the only layer left the display unchanged")
	}
	if s.UpdateLayer("missing", layers.Patch{Visible: &hidden}) || s.Tick(clock.Now()) {
		t.Fatalf("unknown layer caused a redraw")
	}
}

func TestSettersClampAndReject(t *testing.T) {
	s, _ := newSession(t)
	if !s.SetIntParameter("symmetry", 500) || s.Config().Params.Symmetry != s.Config().Params.SymmetryMax {
		t.Fatalf("symmetry not clamped: %d", s.Config().Params.Symmetry)
	}
	if !s.SetFloatParameter("intensity", 3) || s.Config().Params.Intensity != 1 {
		t.Fatalf("intensity not clamped")
	}
	if s.SetFloatParameter("nope", 1) || s.SetIntParameter("nope", 1) || s.SetChoiceParameter("pattern", "tartan") {
		t.Fatalf("unknown setter accepted")
	}
	if s.SetChoiceParameter("dye_color", "not a color") {
		t.Fatalf("invalid dye color accepted")
	}
	if !s.SetFloatParameter("radius", 12) {
		t.Fatalf("radius setter failed")
	}
	snap := s.Parameters()
	if p, ok := snap.Lookup("radius"); !ok || p.Value != "12" {
		t.Fatalf("snapshot radius = %+v", p)
	}
	if p, ok := snap.Lookup("pattern"); !ok || p.Value != "kumo" {
		t.Fatalf("snapshot pattern = %+v", p)
	}
}

func TestOutOfBoundsAndClosedSession(t *testing.T) {
	s, _ := newSession(t)
	if s.Click(-5, 10) || s.Click(10, 90) {
		t.Fatalf("out of bounds click accepted")
	}
	s.Close()
	if s.Click(10, 10) || s.Undo() || s.Tick(epoch) {
		t.Fatalf("closed session accepted input")
	}
	if _, err := s.FinishLayer("x"); err == nil {
		t.Fatalf("FinishLayer on closed session succeeded")
	}
}
