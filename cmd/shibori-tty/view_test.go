package main

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"shibori/internal/core"
	"shibori/internal/pattern"
	"shibori/internal/studio"
)

func newTestView(t *testing.T) *view {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(40, 13)

	cfg := studio.DefaultConfig()
	cfg.Width, cfg.Height = 40, 24
	s, err := studio.NewSession(cfg, core.NewManualClock(time.Unix(0, 0)))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	t.Cleanup(s.Close)
	return newView(screen, s, t.TempDir())
}

func TestCanvasPointMapsCellCenters(t *testing.T) {
	v := newTestView(t)
	x, y, ok := v.canvasPoint(0, 0)
	if !ok || x != 0.5 || y != 1 {
		t.Fatalf("canvasPoint(0,0) = %v,%v,%v", x, y, ok)
	}
	x, y, ok = v.canvasPoint(39, 11)
	if !ok || x != 39.5 || y != 23 {
		t.Fatalf("canvasPoint(39,11) = %v,%v,%v", x, y, ok)
	}
	for _, c := range [][2]int{{40, 0}, {0, 12}, {-1, 3}} {
		if _, _, ok := v.canvasPoint(c[0], c[1]); ok {
			t.Fatalf("canvasPoint(%d,%d) accepted", c[0], c[1])
		}
	}
}

func TestMouseClicksOnPressOnly(t *testing.T) {
	v := newTestView(t)
	v.handle(tcell.NewEventKey(tcell.KeyRune, 'm', tcell.ModNone))
	if v.session.Mode() != studio.PatternMode {
		t.Fatalf("m did not switch mode")
	}
	v.handle(tcell.NewEventMouse(10, 5, tcell.Button1, tcell.ModNone))
	v.handle(tcell.NewEventMouse(12, 5, tcell.Button1, tcell.ModNone))
	if n := len(v.session.TiePoints()); n != 1 {
		t.Fatalf("drag produced %d tie points", n)
	}
	v.handle(tcell.NewEventMouse(12, 5, tcell.ButtonNone, tcell.ModNone))
	v.handle(tcell.NewEventMouse(30, 8, tcell.Button1, tcell.ModNone))
	if n := len(v.session.TiePoints()); n != 2 {
		t.Fatalf("second press produced %d tie points", n)
	}
	v.handle(tcell.NewEventKey(tcell.KeyRune, 'u', tcell.ModNone))
	if n := len(v.session.TiePoints()); n != 1 {
		t.Fatalf("undo left %d tie points", n)
	}
}

func TestKeysAdjustSession(t *testing.T) {
	v := newTestView(t)
	before := v.session.Config().Params.Pattern
	v.handle(tcell.NewEventKey(tcell.KeyRune, 'p', tcell.ModNone))
	after := v.session.Config().Params.Pattern
	if after == before || !pattern.Known(after) {
		t.Fatalf("pattern cycle %q -> %q", before, after)
	}
	sym := v.session.Config().Params.Symmetry
	v.handle(tcell.NewEventKey(tcell.KeyRune, ']', tcell.ModNone))
	if got := v.session.Config().Params.Symmetry; got != sym+1 {
		t.Fatalf("symmetry = %d, want %d", got, sym+1)
	}
	if !strings.Contains(v.status, string(after)) {
		t.Fatalf("status %q does not name %q", v.status, after)
	}
	if v.handle(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Fatalf("q did not quit")
	}
	if v.handle(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Fatalf("escape did not quit")
	}
}

func TestDrawUsesHalfBlocks(t *testing.T) {
	v := newTestView(t)
	v.draw()
	screen := v.screen.(tcell.SimulationScreen)
	if r, _, _, _ := screen.GetContent(3, 4); r != '▀' {
		t.Fatalf("canvas cell = %q", r)
	}
	var status []rune
	for col := 0; col < 5; col++ {
		r, _, _, _ := screen.GetContent(col, 12)
		status = append(status, r)
	}
	if string(status) != "dye |" {
		t.Fatalf("status row = %q", string(status))
	}
}
